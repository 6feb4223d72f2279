package resolver

import (
	"testing"

	"ledger-gateway/internal/database/metadata"
)

func testCatalog() *metadata.Catalog {
	return metadata.NewCatalog([]*metadata.TableSchema{
		{
			Name:    "invoices",
			Columns: []string{"invoice_number", "customer_name", "total_amount", "items", "created_at"},
			Numeric: []string{"total_amount"},
			SemiStructured: []string{"items"},
		},
		{
			Name:    "ledger_data",
			Columns: []string{"ledger_name", "parent", "opening_balance", "closing_balance", "altered_on"},
			Numeric: []string{"opening_balance", "closing_balance"},
		},
	})
}

func TestResolveTableLiteralNameWins(t *testing.T) {
	catalog := testCatalog()

	// A catalog table named verbatim always wins, regardless of case.
	table := ResolveTable("show everything in LEDGER_DATA for 2024", catalog)
	if table != "ledger_data" {
		t.Errorf("expected ledger_data, got %s", table)
	}
}

func TestResolveTableSynonyms(t *testing.T) {
	catalog := testCatalog()

	tests := []struct {
		query string
		want  string
	}{
		{"show me all bills", "invoices"},
		{"what is the highest account balance", "ledger_data"},
		{"count all receipts", "invoices"},
	}
	for _, tt := range tests {
		if got := ResolveTable(tt.query, catalog); got != tt.want {
			t.Errorf("ResolveTable(%q) = %s, want %s", tt.query, got, tt.want)
		}
	}
}

func TestResolveTableFallbacks(t *testing.T) {
	catalog := testCatalog()

	// No table name, no synonym trigger: first catalog table.
	if got := ResolveTable("what happened yesterday", catalog); got != "invoices" {
		t.Errorf("expected first catalog table invoices, got %s", got)
	}

	// Empty catalog: the literal default.
	if got := ResolveTable("anything", metadata.EmptyCatalog()); got != "data" {
		t.Errorf("expected data, got %s", got)
	}
}

func TestResolveColumnPreferNumeric(t *testing.T) {
	catalog := testCatalog()
	table, _ := catalog.Table("ledger_data")

	// Numeric column literally present wins.
	if got := ResolveColumn("sum of closing_balance", table, true); got != "closing_balance" {
		t.Errorf("expected closing_balance, got %s", got)
	}

	// No numeric mention: first numeric column.
	if got := ResolveColumn("what is the largest", table, true); got != "opening_balance" {
		t.Errorf("expected opening_balance, got %s", got)
	}
}

func TestResolveColumnTiers(t *testing.T) {
	catalog := testCatalog()
	table, _ := catalog.Table("invoices")

	// Literal column mention.
	if got := ResolveColumn("show customer_name please", table, false); got != "customer_name" {
		t.Errorf("literal tier: got %s", got)
	}

	// Underscore part ("customer" of customer_name, len > 2).
	if got := ResolveColumn("which customer is this", table, false); got != "customer_name" {
		t.Errorf("underscore tier: got %s", got)
	}

	// Synonym table: "buyer" maps to the customer_name concept.
	if got := ResolveColumn("show the buyer", table, false); got != "customer_name" {
		t.Errorf("synonym tier: got %s", got)
	}

	// Nothing matches: first column.
	if got := ResolveColumn("xyzzy", table, false); got != "invoice_number" {
		t.Errorf("fallback tier: got %s", got)
	}
}

func TestResolveColumnNoTable(t *testing.T) {
	if got := ResolveColumn("anything", nil, false); got != "id" {
		t.Errorf("expected id, got %s", got)
	}
	if got := ResolveColumn("anything", nil, true); got != "amount" {
		t.Errorf("expected amount, got %s", got)
	}
}

func TestExtractYearAndDate(t *testing.T) {
	if year, ok := ExtractYear("total closing balance for 2024"); !ok || year != "2024" {
		t.Errorf("expected 2024, got %q (%v)", year, ok)
	}
	if _, ok := ExtractYear("total closing balance"); ok {
		t.Error("expected no year")
	}
	if date, ok := ExtractDate("entries on 2024-03-15 please"); !ok || date != "2024-03-15" {
		t.Errorf("expected 2024-03-15, got %q (%v)", date, ok)
	}
}
