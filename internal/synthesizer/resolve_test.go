package synthesizer

import (
	"reflect"
	"testing"

	"ledger-gateway/internal/database/metadata"
	"ledger-gateway/internal/model"
)

func TestResolveAggregateQuestion(t *testing.T) {
	rq := Resolve("total closing_balance for 2024", testCatalog())

	if rq.Table != "ledger_data" {
		t.Errorf("table: got %s", rq.Table)
	}
	if rq.Intent != model.IntentSum {
		t.Errorf("intent: got %s", rq.Intent)
	}
	if rq.AggColumn != "closing_balance" {
		t.Errorf("agg column: got %s", rq.AggColumn)
	}
	if len(rq.Criteria) != 0 {
		t.Errorf("criteria: got %v", rq.Criteria)
	}
	if rq.Limit != 0 {
		t.Errorf("aggregates are never capped, got limit %d", rq.Limit)
	}
}

func TestResolveGrandTotalOverride(t *testing.T) {
	rq := Resolve("sum of invoice total", testCatalog())

	if rq.Table != "invoices" {
		t.Errorf("table: got %s", rq.Table)
	}
	if rq.Intent != model.IntentSum {
		t.Errorf("intent: got %s", rq.Intent)
	}
	if rq.AggColumn != "total_amount" {
		t.Errorf("grand total phrase must pick total_amount, got %s", rq.AggColumn)
	}
}

func TestPopulateColumnsRankedColumnGrandTotal(t *testing.T) {
	// The grand-total phrase sits left of " of ", but the override reads
	// the whole question, so it still steers the ranking column.
	table := &metadata.TableSchema{
		Name:    "invoices",
		Columns: []string{"invoice_number", "quantity", "total_amount"},
		Numeric: []string{"quantity", "total_amount"},
	}
	rq := &model.ResolvedQuery{Table: "invoices", Intent: model.IntentConditionalMaxCol}

	populateColumns(rq, "total amount of the highest quantity", table)

	if rq.AggColumn != "total_amount" {
		t.Errorf("agg column: got %s, want total_amount", rq.AggColumn)
	}
}

func TestResolveDisplayMultiple(t *testing.T) {
	rq := Resolve("display ledger_name and parent", testCatalog())

	if rq.Intent != model.IntentDisplayMultiple {
		t.Fatalf("intent: got %s", rq.Intent)
	}
	if want := []string{"ledger_name", "parent"}; !reflect.DeepEqual(rq.Columns, want) {
		t.Errorf("columns: got %v, want %v", rq.Columns, want)
	}
	if rq.Limit != 10 {
		t.Errorf("unfiltered listing must be capped at 10, got %d", rq.Limit)
	}
}

func TestResolveCountTarget(t *testing.T) {
	rq := Resolve("how many ledgers", testCatalog())

	if rq.Intent != model.IntentCount {
		t.Fatalf("intent: got %s", rq.Intent)
	}
	if rq.Table != "ledger_data" {
		t.Errorf("table: got %s", rq.Table)
	}
	if rq.TargetColumn != "ledger_name" {
		t.Errorf("target: got %s", rq.TargetColumn)
	}
}

func TestResolveFilteredListingUncapped(t *testing.T) {
	rq := Resolve("parent bank balance", testCatalog())

	if rq.Intent != model.IntentDisplayColumn {
		t.Fatalf("intent: got %s", rq.Intent)
	}
	if v, ok := rq.Criteria.Get("parent"); !ok || v != "bank" {
		t.Errorf("criteria: got %v", rq.Criteria)
	}
	if rq.Limit != 0 {
		t.Errorf("filtered listing must not be capped, got %d", rq.Limit)
	}
}
