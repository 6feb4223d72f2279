package synthesizer

import (
	"testing"

	"ledger-gateway/internal/model"
)

func TestPlanTallyCompanyWordsWin(t *testing.T) {
	// Company vocabulary outranks the classified intent.
	cmd := PlanTally("how many companies are loaded", model.IntentCount)
	if cmd.Op != TallyCompanies {
		t.Errorf("got %s, want %s", cmd.Op, TallyCompanies)
	}
}

func TestPlanTallyIntentMapping(t *testing.T) {
	tests := []struct {
		query  string
		intent model.QueryIntent
		want   TallyCommand
	}{
		{"highest closing balance", model.IntentMax, TallyCommand{TallyMax, FieldClosingBalance}},
		{"lowest opening balance", model.IntentMin, TallyCommand{TallyMin, FieldOpeningBalance}},
		{"total balance", model.IntentSum, TallyCommand{TallySum, FieldClosingBalance}},
		{"average balance", model.IntentAverage, TallyCommand{TallyAvg, FieldClosingBalance}},
		{"how many ledgers", model.IntentCount, TallyCommand{TallyCount, ""}},
		{"full ledger details", model.IntentFullRecord, TallyCommand{TallyFull, FieldClosingBalance}},
		{"closing balance", model.IntentDisplayColumn, TallyCommand{TallyLedgers, ""}},
	}

	for _, tt := range tests {
		if got := PlanTally(tt.query, tt.intent); got != tt.want {
			t.Errorf("PlanTally(%q, %s) = %+v, want %+v", tt.query, tt.intent, got, tt.want)
		}
	}
}
