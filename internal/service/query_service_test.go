package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"ledger-gateway/internal/database/metadata"
	"ledger-gateway/internal/executor"
	"ledger-gateway/internal/model"
)

type fakeGenerator struct {
	line string
	err  error
}

func (g *fakeGenerator) GeneratePlan(ctx context.Context, columns []string, question string) (string, error) {
	return g.line, g.err
}

func tabularService(gen Generator) *QueryService {
	frame := executor.NewFrame("ledgers",
		[]string{"ledger_name", "parent", "closing_balance"},
		[][]string{
			{"Acme Traders", "Bank Accounts", "1000.50"},
			{"Globex", "Bank Accounts", "2500"},
			{"Initech", "Cash-in-Hand", "2500"},
			{"Umbrella", "Sundry Debtors", "0"},
		})

	holder := metadata.NewSnapshotHolder()
	holder.Swap(frame.Catalog())

	return NewQueryService(Deps{
		Kind:      model.BackendTabular,
		Schema:    holder,
		Tabular:   executor.NewTabularExecutor(frame),
		Generator: gen,
	})
}

func TestAskSchemaShortCircuit(t *testing.T) {
	svc := tabularService(nil)

	resp := svc.Ask(context.Background(), &model.AskRequest{Question: "show tables"})
	if !resp.Success {
		t.Fatalf("expected success, got %+v", resp.Error)
	}
	if !strings.Contains(resp.Answer, "Table: ledgers") {
		t.Errorf("got %q", resp.Answer)
	}
	if !strings.Contains(resp.Answer, "closing_balance") {
		t.Errorf("columns missing: %q", resp.Answer)
	}
}

func TestAskTabularAggregate(t *testing.T) {
	svc := tabularService(nil)

	resp := svc.Ask(context.Background(), &model.AskRequest{Question: "total closing_balance"})
	if !resp.Success {
		t.Fatalf("expected success, got %+v", resp.Error)
	}
	if resp.Answer != "Total closing_balance: 6,000.50" {
		t.Errorf("got %q", resp.Answer)
	}
	if resp.Metadata.UsedFallback {
		t.Error("rule-resolved question must not use the fallback")
	}
	if resp.Metadata.Backend != "tabular" {
		t.Errorf("backend: got %s", resp.Metadata.Backend)
	}
}

func TestAskFallbackPlanExecuted(t *testing.T) {
	svc := tabularService(&fakeGenerator{line: "count:ledger_name"})

	resp := svc.Ask(context.Background(), &model.AskRequest{Question: "zorp gnarl"})
	if !resp.Success {
		t.Fatalf("expected success, got %+v", resp.Error)
	}
	if !resp.Metadata.UsedFallback {
		t.Error("expected the generated plan to run")
	}
	if resp.Answer != "4" {
		t.Errorf("got %q", resp.Answer)
	}
}

func TestAskFallbackRejectedPlanFallsThrough(t *testing.T) {
	// A plan outside the vocabulary is rejected and the default
	// resolution answers instead.
	svc := tabularService(&fakeGenerator{line: "import os"})

	resp := svc.Ask(context.Background(), &model.AskRequest{Question: "zorp gnarl"})
	if !resp.Success {
		t.Fatalf("expected success, got %+v", resp.Error)
	}
	if resp.Metadata.UsedFallback {
		t.Error("rejected plan must not count as fallback")
	}
	if resp.Metadata.RowCount != 4 {
		t.Errorf("row count: got %d", resp.Metadata.RowCount)
	}
}

func TestAskFallbackGeneratorErrorFallsThrough(t *testing.T) {
	svc := tabularService(&fakeGenerator{err: errors.New("model unavailable")})

	resp := svc.Ask(context.Background(), &model.AskRequest{Question: "zorp gnarl"})
	if !resp.Success {
		t.Fatalf("expected success, got %+v", resp.Error)
	}
	if resp.Metadata.UsedFallback {
		t.Error("generator failure must fall through silently")
	}
}
