package model

import "time"

// LedgerRecord is one accounting ledger as returned by the legacy gateway.
// Display fields keep the normalized wire forms (dd/mm/yy dates, currency
// balances); parsed fields back sorting and persistence.
type LedgerRecord struct {
	Name           string `json:"name"`
	Parent         string `json:"parent"`
	Address        string `json:"address,omitempty"`
	State          string `json:"state,omitempty"`
	Country        string `json:"country,omitempty"`
	PinCode        string `json:"pinCode,omitempty"`
	Email          string `json:"email,omitempty"`
	Phone          string `json:"phone,omitempty"`
	Mobile         string `json:"mobile,omitempty"`
	GSTIN          string `json:"gstin,omitempty"`
	OpeningBalance string `json:"openingBalance"`
	ClosingBalance string `json:"closingBalance"`
	AlteredOn      string `json:"alteredOn"` // dd/mm/yy display form

	// AlteredOnDate is the parsed AlteredOn; zero when unparsable.
	AlteredOnDate time.Time `json:"-"`
}

// HasDate reports whether the record carries a parsable last-altered date.
func (l *LedgerRecord) HasDate() bool {
	return !l.AlteredOnDate.IsZero()
}

// SinkLedger is the relational sink row for incremental persistence.
// Rows are append-only; this engine never updates or deletes them.
type SinkLedger struct {
	ID             uint      `gorm:"primaryKey" json:"-"`
	LedgerName     string    `gorm:"column:ledger_name;type:text" json:"ledgerName"`
	Parent         string    `gorm:"column:parent;type:text" json:"parent"`
	OpeningBalance float64   `gorm:"column:opening_balance" json:"openingBalance"`
	ClosingBalance float64   `gorm:"column:closing_balance" json:"closingBalance"`
	AlteredOn      time.Time `gorm:"column:altered_on;type:date" json:"alteredOn"`
}

// TableName keeps the sink table name fixed across gorm naming strategies.
func (SinkLedger) TableName() string {
	return "tally_ledger_data"
}
