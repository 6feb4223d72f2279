package tally

import (
	"context"
	"database/sql"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"gorm.io/gorm"

	"ledger-gateway/internal/model"
	"ledger-gateway/internal/utils"
)

// ledgerStore is the persistence surface of the sink, append-only.
type ledgerStore interface {
	Migrate() error
	MaxAlteredOn() (time.Time, bool, error)
	Append(rows []model.SinkLedger) error
}

// Sink persists full exports incrementally: only records altered strictly
// after the stored maximum date are appended.
//
// The recency check uses one global maximum across all ledgers, not a
// per-ledger comparison. An updated ledger whose date does not exceed the
// overall maximum is skipped. Known limitation, kept until the intended
// semantics are clarified.
type Sink struct {
	store   ledgerStore
	migrate sync.Once
}

func NewSink(db *gorm.DB) *Sink {
	return &Sink{store: &gormStore{db: db}}
}

func newSinkWithStore(store ledgerStore) *Sink {
	return &Sink{store: store}
}

// Persist appends every record newer than the stored global maximum and
// returns how many were inserted, possibly zero.
func (s *Sink) Persist(records []model.LedgerRecord) (int, error) {
	var migrateErr error
	s.migrate.Do(func() { migrateErr = s.store.Migrate() })
	if migrateErr != nil {
		return 0, utils.NewAppError(utils.ErrCodeSyncFailed, migrateErr, "creating sink table")
	}

	max, haveMax, err := s.store.MaxAlteredOn()
	if err != nil {
		return 0, utils.NewAppError(utils.ErrCodeSyncFailed, err, "reading stored maximum date")
	}

	var staged []model.SinkLedger
	for i := range records {
		rec := &records[i]
		if !rec.HasDate() {
			continue
		}
		if haveMax && !rec.AlteredOnDate.After(max) {
			continue
		}
		staged = append(staged, model.SinkLedger{
			LedgerName:     rec.Name,
			Parent:         rec.Parent,
			OpeningBalance: utils.ParseBalance(rec.OpeningBalance),
			ClosingBalance: utils.ParseBalance(rec.ClosingBalance),
			AlteredOn:      rec.AlteredOnDate,
		})
	}
	if len(staged) == 0 {
		return 0, nil
	}
	if err := s.store.Append(staged); err != nil {
		return 0, utils.NewAppError(utils.ErrCodeSyncFailed, err, "appending staged records")
	}
	return len(staged), nil
}

type gormStore struct {
	db *gorm.DB
}

func (s *gormStore) Migrate() error {
	return s.db.AutoMigrate(&model.SinkLedger{})
}

func (s *gormStore) MaxAlteredOn() (time.Time, bool, error) {
	var max sql.NullTime
	err := s.db.Model(&model.SinkLedger{}).Select("MAX(altered_on)").Scan(&max).Error
	if err != nil {
		return time.Time{}, false, err
	}
	return max.Time, max.Valid, nil
}

func (s *gormStore) Append(rows []model.SinkLedger) error {
	return s.db.Create(&rows).Error
}

// FetchFunc produces a fresh full export for the poller.
type FetchFunc func(ctx context.Context) ([]model.LedgerRecord, error)

// Poller drives the periodic full-export sync. A tick that arrives while
// the previous run is still in flight is skipped, never overlapped.
type Poller struct {
	interval time.Duration
	fetch    FetchFunc
	sink     *Sink
	logger   *log.Logger

	running atomic.Bool
}

func NewPoller(interval time.Duration, fetch FetchFunc, sink *Sink, logger *log.Logger) *Poller {
	return &Poller{interval: interval, fetch: fetch, sink: sink, logger: logger}
}

// Run blocks until ctx is cancelled.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

func (p *Poller) tick(ctx context.Context) {
	if !p.running.CompareAndSwap(false, true) {
		p.logger.Printf("Ledger sync still in flight, skipping tick")
		return
	}
	defer p.running.Store(false)

	records, err := p.fetch(ctx)
	if err != nil {
		p.logger.Printf("Ledger sync fetch failed: %v", err)
		return
	}
	n, err := p.sink.Persist(records)
	if err != nil {
		p.logger.Printf("Ledger sync persist failed: %v", err)
		return
	}
	if n > 0 {
		p.logger.Printf("Inserted %d new records into the database.", n)
	} else {
		p.logger.Printf("No new data to insert.")
	}
}
