package service

import (
	"strings"
	"testing"
	"time"

	"ledger-gateway/internal/model"
)

func sinkRow(name string, closing float64, date string) model.SinkLedger {
	t, _ := time.Parse("2006-01-02", date)
	return model.SinkLedger{
		LedgerName:     name,
		Parent:         "Sundry Debtors",
		ClosingBalance: closing,
		AlteredOn:      t,
	}
}

func TestAnswerTotalClosingBalanceForYear(t *testing.T) {
	a := NewLedgerAnswerer([]model.SinkLedger{
		sinkRow("Acme", 1000000.89, "2024-03-15"),
		sinkRow("Globex", 234567.00, "2024-06-01"),
		sinkRow("Old Co", 999.99, "2023-01-01"),
	})

	answer, handled := a.Answer("total closing balance for 2024")
	if !handled {
		t.Fatal("expected the sum rule to handle the question")
	}
	if answer != "Total closing balance for 2024: 1,234,567.89" {
		t.Errorf("got %q", answer)
	}
}

func TestAnswerLedgerSearchCaseInsensitive(t *testing.T) {
	a := NewLedgerAnswerer([]model.SinkLedger{
		sinkRow("ABC Traders", 500, "2024-03-15"),
		sinkRow("Other", 1, "2024-03-15"),
	})

	answer, handled := a.Answer("show ledger name = abc traders")
	if !handled {
		t.Fatal("expected the search rule to handle the question")
	}
	if !strings.Contains(answer, "1 results found for 'abc traders'") {
		t.Errorf("got %q", answer)
	}
	if !strings.Contains(answer, "ABC Traders") {
		t.Errorf("matched row missing: %q", answer)
	}
}

func TestAnswerLedgerSearchNormalizesWhitespace(t *testing.T) {
	a := NewLedgerAnswerer([]model.SinkLedger{
		sinkRow("ABC  Traders", 500, "2024-03-15"),
	})

	answer, handled := a.Answer("ledger name = ABC Traders")
	if !handled {
		t.Fatal("expected the search rule to handle the question")
	}
	if !strings.Contains(answer, "ABC  Traders") {
		t.Errorf("whitespace-normalized match missing: %q", answer)
	}
}

func TestAnswerLedgerSuggestions(t *testing.T) {
	a := NewLedgerAnswerer([]model.SinkLedger{
		sinkRow("ABC Traders", 500, "2024-03-15"),
		sinkRow("ABC Suppliers", 300, "2024-03-15"),
		sinkRow("XYZ", 100, "2024-03-15"),
	})

	answer, handled := a.Answer("ledger name = ABC")
	if !handled {
		t.Fatal("expected the search rule to handle the question")
	}
	if !strings.Contains(answer, "Did you mean one of these?") {
		t.Fatalf("got %q", answer)
	}
	if !strings.Contains(answer, "• ABC Traders") || !strings.Contains(answer, "• ABC Suppliers") {
		t.Errorf("suggestions missing: %q", answer)
	}
	if strings.Contains(answer, "XYZ") {
		t.Errorf("unrelated name suggested: %q", answer)
	}
}

func TestAnswerLedgerSearchStripsYearToken(t *testing.T) {
	a := NewLedgerAnswerer([]model.SinkLedger{
		sinkRow("Acme", 5000, "2024-03-15"),
		sinkRow("Acme", 4000, "2023-03-15"),
	})

	answer, handled := a.Answer("show ledger Acme 2024")
	if !handled {
		t.Fatal("expected the search rule to handle the question")
	}
	if !strings.Contains(answer, "1 results found for 'Acme' for 2024") {
		t.Errorf("got %q", answer)
	}
}

func TestExtractLedgerName(t *testing.T) {
	cases := map[string]string{
		"ledger name = ABC Traders":              "ABC Traders",
		"show ledger Acme 2024":                  "Acme",
		"show closing balance of Acme Traders":   "Acme Traders",
		"balance of Acme Traders 2024":           "Acme Traders",
		"show ledger name : 'Globex Industries'": "Globex Industries",
	}
	for query, want := range cases {
		if got := extractLedgerName(query); got != want {
			t.Errorf("extractLedgerName(%q) = %q, want %q", query, got, want)
		}
	}
}

func TestAnswerExtremumExcludesTaxAndSurfacesTies(t *testing.T) {
	a := NewLedgerAnswerer([]model.SinkLedger{
		sinkRow("CGST Payable", 99999, "2024-03-15"),
		sinkRow("Acme", 5000, "2024-03-15"),
		sinkRow("Globex", 5000, "2024-03-15"),
	})

	answer, handled := a.Answer("highest closing balance")
	if !handled {
		t.Fatal("expected the extremum rule to handle the question")
	}
	if strings.Contains(answer, "CGST") {
		t.Errorf("tax account must be excluded: %q", answer)
	}
	if !strings.Contains(answer, "Acme") || !strings.Contains(answer, "Globex") {
		t.Errorf("tied rows must both surface: %q", answer)
	}
}

func TestAnswerUnmatchedFallsThrough(t *testing.T) {
	a := NewLedgerAnswerer([]model.SinkLedger{
		sinkRow("Acme", 5000, "2024-03-15"),
	})

	if _, handled := a.Answer("completely unrelated question"); handled {
		t.Error("expected no rule to handle the question")
	}
}

func TestIsTaxLedger(t *testing.T) {
	for name, want := range map[string]bool{
		"CGST Payable":   true,
		"TDS Receivable": true,
		"Acme Traders":   false,
		"Output VAT":     true,
	} {
		if got := isTaxLedger(name); got != want {
			t.Errorf("isTaxLedger(%q) = %v, want %v", name, got, want)
		}
	}
}
