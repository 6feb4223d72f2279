package synthesizer

import (
	"strings"
	"testing"

	"ledger-gateway/internal/database/metadata"
	"ledger-gateway/internal/model"
)

func testCatalog() *metadata.Catalog {
	return metadata.NewCatalog([]*metadata.TableSchema{
		{
			Name:           "invoices",
			Columns:        []string{"invoice_number", "customer_name", "total_amount", "items", "created_at"},
			Numeric:        []string{"total_amount"},
			SemiStructured: []string{"items"},
		},
		{
			Name:    "ledger_data",
			Columns: []string{"ledger_name", "parent", "opening_balance", "closing_balance", "altered_on"},
			Numeric: []string{"opening_balance", "closing_balance"},
		},
	})
}

func mustTable(t *testing.T, name string) *metadata.TableSchema {
	t.Helper()
	table, ok := testCatalog().Table(name)
	if !ok {
		t.Fatalf("missing test table %s", name)
	}
	return table
}

func TestBuildSQLFullRecord(t *testing.T) {
	table := mustTable(t, "invoices")
	rq := &model.ResolvedQuery{
		Table:  "invoices",
		Intent: model.IntentFullRecord,
		Criteria: model.Criteria{
			{Column: "customer_name", Value: "acme"},
			{Column: "invoice_number", Value: "42"},
		},
	}

	got := BuildSQL(rq, table, DialectPostgres)
	want := "SELECT * FROM invoices WHERE customer_name ILIKE '%acme%' AND invoice_number = 42"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestBuildSQLConditionalMaxTiesSurface(t *testing.T) {
	table := mustTable(t, "ledger_data")
	rq := &model.ResolvedQuery{
		Table:     "ledger_data",
		Intent:    model.IntentConditionalMax,
		AggColumn: "closing_balance",
		Criteria:  model.Criteria{{Column: "parent", Value: "bank"}},
	}

	got := BuildSQL(rq, table, DialectPostgres)
	want := "SELECT * FROM ledger_data WHERE closing_balance = " +
		"(SELECT MAX(closing_balance) FROM ledger_data WHERE parent ILIKE '%bank%')" +
		" AND parent ILIKE '%bank%'"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestBuildSQLConditionalMinColProjection(t *testing.T) {
	table := mustTable(t, "ledger_data")
	rq := &model.ResolvedQuery{
		Table:        "ledger_data",
		Intent:       model.IntentConditionalMinCol,
		TargetColumn: "ledger_name",
		AggColumn:    "closing_balance",
	}

	got := BuildSQL(rq, table, DialectPostgres)
	want := "SELECT ledger_name FROM ledger_data WHERE closing_balance = " +
		"(SELECT MIN(closing_balance) FROM ledger_data)"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestBuildSQLAggregateAliases(t *testing.T) {
	table := mustTable(t, "ledger_data")
	tests := []struct {
		intent model.QueryIntent
		want   string
	}{
		{model.IntentMax, "SELECT MAX(closing_balance) AS max_value FROM ledger_data"},
		{model.IntentMin, "SELECT MIN(closing_balance) AS min_value FROM ledger_data"},
		{model.IntentSum, "SELECT SUM(closing_balance) AS total_sum FROM ledger_data"},
		{model.IntentAverage, "SELECT AVG(closing_balance) AS average_value FROM ledger_data"},
	}
	for _, tt := range tests {
		rq := &model.ResolvedQuery{
			Table: "ledger_data", Intent: tt.intent, AggColumn: "closing_balance",
		}
		if got := BuildSQL(rq, table, DialectPostgres); got != tt.want {
			t.Errorf("%s: got %q, want %q", tt.intent, got, tt.want)
		}
	}

	rq := &model.ResolvedQuery{
		Table: "ledger_data", Intent: model.IntentCount, TargetColumn: "ledger_name",
	}
	want := "SELECT COUNT(ledger_name) AS total_count FROM ledger_data"
	if got := BuildSQL(rq, table, DialectPostgres); got != want {
		t.Errorf("count: got %q, want %q", got, want)
	}
}

func TestBuildSQLSemiStructured(t *testing.T) {
	table := mustTable(t, "invoices")

	// Aggregation extracts the first element and casts to numeric.
	rq := &model.ResolvedQuery{
		Table: "invoices", Intent: model.IntentSum, AggColumn: "items",
	}
	want := "SELECT SUM((items->0->>'items')::numeric) AS total_sum FROM invoices"
	if got := BuildSQL(rq, table, DialectPostgres); got != want {
		t.Errorf("sum: got %q, want %q", got, want)
	}

	// Display projects the first element's description.
	rq = &model.ResolvedQuery{
		Table: "invoices", Intent: model.IntentDisplayColumn, TargetColumn: "items", Limit: 10,
	}
	want = "SELECT items->0->>'description' AS description FROM invoices LIMIT 10"
	if got := BuildSQL(rq, table, DialectPostgres); got != want {
		t.Errorf("display: got %q, want %q", got, want)
	}

	// Criteria on a semi-structured column extract before containment.
	rq = &model.ResolvedQuery{
		Table: "invoices", Intent: model.IntentFullRecord,
		Criteria: model.Criteria{{Column: "items", Value: "laptop"}},
	}
	want = "SELECT * FROM invoices WHERE items->0->>'items' ILIKE '%laptop%'"
	if got := BuildSQL(rq, table, DialectPostgres); got != want {
		t.Errorf("criteria: got %q, want %q", got, want)
	}
}

func TestBuildSQLMySQLContainment(t *testing.T) {
	table := mustTable(t, "invoices")
	rq := &model.ResolvedQuery{
		Table: "invoices", Intent: model.IntentFullRecord,
		Criteria: model.Criteria{{Column: "customer_name", Value: "Acme"}},
	}

	got := BuildSQL(rq, table, DialectMySQL)
	want := "SELECT * FROM invoices WHERE LOWER(customer_name) LIKE '%acme%'"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestBuildSQLListingCap(t *testing.T) {
	table := mustTable(t, "invoices")

	rq := &model.ResolvedQuery{
		Table: "invoices", Intent: model.IntentDisplayColumn,
		TargetColumn: "customer_name", Limit: 10,
	}
	if got := BuildSQL(rq, table, DialectPostgres); !strings.HasSuffix(got, " LIMIT 10") {
		t.Errorf("unfiltered listing must be capped, got %q", got)
	}

	rq = &model.ResolvedQuery{
		Table: "invoices", Intent: model.IntentDisplayColumn,
		TargetColumn: "customer_name",
		Criteria:     model.Criteria{{Column: "customer_name", Value: "acme"}},
	}
	if got := BuildSQL(rq, table, DialectPostgres); strings.Contains(got, "LIMIT") {
		t.Errorf("filtered listing must not be capped, got %q", got)
	}
}

func TestBuildSQLEscapesQuotes(t *testing.T) {
	table := mustTable(t, "invoices")
	rq := &model.ResolvedQuery{
		Table: "invoices", Intent: model.IntentFullRecord,
		Criteria: model.Criteria{{Column: "customer_name", Value: "o'brien"}},
	}

	got := BuildSQL(rq, table, DialectPostgres)
	want := "SELECT * FROM invoices WHERE customer_name ILIKE '%o''brien%'"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
