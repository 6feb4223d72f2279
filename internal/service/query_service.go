package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"gorm.io/gorm"

	"ledger-gateway/internal/database/metadata"
	"ledger-gateway/internal/executor"
	"ledger-gateway/internal/model"
	"ledger-gateway/internal/resolver"
	"ledger-gateway/internal/synthesizer"
	"ledger-gateway/internal/tally"
	"ledger-gateway/internal/utils"
)

// schemaQuestions short-circuit resolution entirely.
var schemaQuestions = map[string]bool{
	"show tables": true, "show schema": true, "tables": true, "schema": true,
}

// Deps wires the query service. Exactly one backend executor is set,
// matching the configured source kind; the rest stay nil.
type Deps struct {
	Kind      model.BackendKind
	Schema    *metadata.SnapshotHolder
	SQL       *executor.SQLExecutor
	Tabular   *executor.TabularExecutor
	Tally     *tally.Client
	Sink      *tally.Sink
	SinkDB    *gorm.DB
	Extractor *metadata.Extractor
	Generator Generator
	Logger    *log.Logger
}

// QueryService turns free-form questions into executed, formatted answers.
type QueryService struct {
	deps Deps
}

func NewQueryService(deps Deps) *QueryService {
	if deps.Logger == nil {
		deps.Logger = log.Default()
	}
	return &QueryService{deps: deps}
}

// Ask resolves and executes one question. All failures convert to a typed
// response; nothing exceptional crosses this boundary.
func (s *QueryService) Ask(ctx context.Context, req *model.AskRequest) *model.AskResponse {
	req.ApplyDefaults()
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, time.Duration(req.Timeout)*time.Second)
	defer cancel()

	resp := &model.AskResponse{
		Metadata: model.AskMetadata{
			Backend:    string(s.deps.Kind),
			ExecutedAt: start,
		},
	}

	question := strings.TrimSpace(req.Question)
	if schemaQuestions[strings.ToLower(question)] {
		resp.Success = true
		resp.Answer = s.SchemaInfo()
		resp.Metadata.ExecutionTimeMs = time.Since(start).Milliseconds()
		return resp
	}

	// Synced ledger rows get a dedicated rule chain before the generic
	// pipeline.
	if s.deps.SinkDB != nil {
		if rows, err := s.ledgerRows(ctx); err == nil && len(rows) > 0 {
			if answer, handled := NewLedgerAnswerer(rows).Answer(question); handled {
				resp.Success = true
				resp.Answer = answer
				resp.Metadata.Statement = "ledger-rules"
				resp.Metadata.ExecutionTimeMs = time.Since(start).Milliseconds()
				return resp
			}
		}
	}

	switch s.deps.Kind {
	case model.BackendTally:
		s.askTally(ctx, question, resp)
	case model.BackendTabular:
		s.askTabular(ctx, question, resp)
	default:
		s.askRelational(ctx, question, resp)
	}
	resp.Metadata.ExecutionTimeMs = time.Since(start).Milliseconds()
	return resp
}

func (s *QueryService) askRelational(ctx context.Context, question string, resp *model.AskResponse) {
	rq := synthesizer.Resolve(question, s.deps.Schema.Get())
	resp.Resolved = rq

	res, stmt, err := s.deps.SQL.Execute(ctx, rq)
	resp.Metadata.Statement = stmt
	if err != nil {
		fail(resp, err)
		return
	}
	resp.Success = true
	resp.Answer = executor.FormatResult(rq, res)
	resp.Metadata.RowCount = len(res.Rows)
}

func (s *QueryService) askTabular(ctx context.Context, question string, resp *model.AskResponse) {
	rq := synthesizer.Resolve(question, s.deps.Schema.Get())
	resp.Resolved = rq

	// With no rule match and no criteria the resolver is guessing; let the
	// generator suggest a plan, still executed inside the same sandbox.
	if rq.Defaulted && len(rq.Criteria) == 0 && s.deps.Generator != nil {
		if s.askFallback(ctx, question, resp) {
			return
		}
	}

	res, stmt, err := s.deps.Tabular.Execute(ctx, rq)
	resp.Metadata.Statement = stmt
	if err != nil {
		fail(resp, err)
		return
	}
	resp.Success = true
	resp.Answer = executor.FormatResult(rq, res)
	resp.Metadata.RowCount = len(res.Rows)
}

func (s *QueryService) askFallback(ctx context.Context, question string, resp *model.AskResponse) bool {
	frame := s.deps.Tabular.Frame()

	line, err := s.deps.Generator.GeneratePlan(ctx, frame.Columns, question)
	if err != nil {
		s.deps.Logger.Printf("Plan generator failed: %v", err)
		return false
	}
	plan, err := synthesizer.ParsePlan(line)
	if err != nil {
		s.deps.Logger.Printf("Rejected generated plan %q: %v", line, err)
		return false
	}

	res, stmt, err := s.deps.Tabular.RunPlan(ctx, plan)
	resp.Metadata.Statement = stmt
	resp.Metadata.UsedFallback = true
	if err != nil {
		fail(resp, err)
		return true
	}
	resp.Success = true
	resp.Answer = executor.FormatResult(resp.Resolved, res)
	resp.Metadata.RowCount = len(res.Rows)
	return true
}

func (s *QueryService) askTally(ctx context.Context, question string, resp *model.AskResponse) {
	cmd := synthesizer.PlanTally(question, resolver.Classify(question))
	resp.Metadata.Statement = tallyStatement(cmd)

	answer, rows, err := s.runTally(ctx, cmd)
	if err != nil {
		fail(resp, err)
		return
	}
	resp.Success = true
	resp.Answer = answer
	resp.Metadata.RowCount = rows
}

func (s *QueryService) runTally(ctx context.Context, cmd synthesizer.TallyCommand) (string, int, error) {
	client := s.deps.Tally

	switch cmd.Op {
	case synthesizer.TallyCompanies:
		names, err := client.Companies(ctx)
		if err != nil {
			return "", 0, err
		}
		if len(names) == 0 {
			return "", 0, utils.NewNoData("no companies loaded")
		}
		return strings.Join(names, "\n"), len(names), nil

	case synthesizer.TallyLedgers:
		names, err := client.LedgerNames(ctx)
		if err != nil {
			return "", 0, err
		}
		if len(names) == 0 {
			return "", 0, utils.NewNoData("no ledgers found")
		}
		return strings.Join(names, "\n"), len(names), nil

	case synthesizer.TallyMax, synthesizer.TallyMin,
		synthesizer.TallySum, synthesizer.TallyAvg:
		value, err := client.Scalar(ctx, cmd)
		if err != nil {
			return "", 0, err
		}
		return fmt.Sprintf("%s %s: %s",
			scalarLabel(cmd.Op), cmd.Field, utils.FormatBalance(value)), 1, nil

	case synthesizer.TallyCount:
		value, err := client.Scalar(ctx, cmd)
		if err != nil {
			return "", 0, err
		}
		return fmt.Sprintf("Total ledgers: %s", utils.FormatValue(value)), 1, nil
	}

	records, err := client.FullExport(ctx)
	if err != nil {
		return "", 0, err
	}
	if s.deps.Sink != nil {
		if n, err := s.deps.Sink.Persist(records); err != nil {
			s.deps.Logger.Printf("Ledger sync persist failed: %v", err)
		} else if n > 0 {
			s.deps.Logger.Printf("Inserted %d new records into the database.", n)
		}
	}
	return tally.FormatLedgerTable(records), len(records), nil
}

func scalarLabel(op synthesizer.TallyOp) string {
	switch op {
	case synthesizer.TallyMax:
		return "Maximum"
	case synthesizer.TallyMin:
		return "Minimum"
	case synthesizer.TallySum:
		return "Total"
	}
	return "Average"
}

func tallyStatement(cmd synthesizer.TallyCommand) string {
	if cmd.Field != "" {
		return fmt.Sprintf("%s:%s", cmd.Op, cmd.Field)
	}
	return string(cmd.Op)
}

// RunTallyOperation executes one named gateway operation directly, the
// backing call for the explicit operation endpoint.
func (s *QueryService) RunTallyOperation(ctx context.Context, op, field string) (string, error) {
	if s.deps.Tally == nil {
		return "", utils.NewAppError(utils.ErrCodeInvalidRequest, nil, "no Tally source configured")
	}

	tallyOp := synthesizer.TallyOp(strings.ToLower(strings.TrimSpace(op)))
	switch tallyOp {
	case synthesizer.TallyCompanies, synthesizer.TallyLedgers, synthesizer.TallyMax,
		synthesizer.TallyMin, synthesizer.TallySum, synthesizer.TallyAvg,
		synthesizer.TallyCount, synthesizer.TallyFull:
	default:
		return "", utils.NewAppError(utils.ErrCodeInvalidRequest, nil,
			fmt.Sprintf("unknown operation %q", op))
	}

	if field == "" {
		field = synthesizer.FieldClosingBalance
	}
	answer, _, err := s.runTally(ctx, synthesizer.TallyCommand{Op: tallyOp, Field: field})
	return answer, err
}

// SyncNow runs one immediate full-export sync against the sink.
func (s *QueryService) SyncNow(ctx context.Context) (int, error) {
	if s.deps.Tally == nil || s.deps.Sink == nil {
		return 0, utils.NewAppError(utils.ErrCodeInvalidRequest, nil, "sync requires a Tally source and a sink")
	}
	records, err := s.deps.Tally.FullExport(ctx)
	if err != nil {
		return 0, err
	}
	return s.deps.Sink.Persist(records)
}

// SchemaInfo renders the live catalog snapshot.
func (s *QueryService) SchemaInfo() string {
	catalog := s.deps.Schema.Get()
	if catalog.Empty() {
		return "No schema information"
	}

	var b strings.Builder
	for _, name := range catalog.Tables() {
		table, _ := catalog.Table(name)
		fmt.Fprintf(&b, "Table: %s\n  Columns: %s\n", name, strings.Join(table.Columns, ", "))
	}
	return strings.TrimRight(b.String(), "\n")
}

// Catalog returns the live snapshot for API consumers.
func (s *QueryService) Catalog() *metadata.Catalog {
	return s.deps.Schema.Get()
}

// RefreshSchema re-introspects the source and swaps the snapshot wholesale.
func (s *QueryService) RefreshSchema(ctx context.Context) error {
	switch {
	case s.deps.Extractor != nil:
		catalog, err := s.deps.Extractor.Discover(ctx)
		s.deps.Schema.Swap(catalog)
		return err
	case s.deps.Tabular != nil:
		s.deps.Schema.Swap(s.deps.Tabular.Frame().Catalog())
		return nil
	}
	return nil
}

func (s *QueryService) ledgerRows(ctx context.Context) ([]model.SinkLedger, error) {
	var rows []model.SinkLedger
	err := s.deps.SinkDB.WithContext(ctx).Find(&rows).Error
	return rows, err
}

// fail converts an execution error into the response shape. An empty
// result is an answer, not a failure.
func fail(resp *model.AskResponse, err error) {
	if utils.IsErrorType(err, utils.ErrCodeNoData) {
		resp.Success = true
		resp.Answer = "No data found."
		return
	}

	resp.Success = false
	if appErr, ok := err.(*utils.AppError); ok {
		resp.Error = &model.QueryError{
			Code:    appErr.Code,
			Message: appErr.Message,
			Details: appErr.Details,
		}
		if appErr.Code == utils.ErrCodeProtocolDisabled {
			resp.Answer = appErr.Details
		}
		return
	}
	resp.Error = &model.QueryError{
		Code:    utils.ErrCodeInternalError,
		Message: err.Error(),
	}
}
