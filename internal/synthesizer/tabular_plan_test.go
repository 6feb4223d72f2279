package synthesizer

import (
	"reflect"
	"testing"

	"ledger-gateway/internal/model"
)

func TestPlanTabularMapping(t *testing.T) {
	tests := []struct {
		rq   model.ResolvedQuery
		want TabularPlan
	}{
		{
			model.ResolvedQuery{Intent: model.IntentSum, AggColumn: "closing_balance"},
			TabularPlan{Op: OpSum, Column: "closing_balance"},
		},
		{
			model.ResolvedQuery{Intent: model.IntentCount, TargetColumn: "ledger_name"},
			TabularPlan{Op: OpCount, Column: "ledger_name"},
		},
		{
			model.ResolvedQuery{Intent: model.IntentConditionalMax, AggColumn: "closing_balance"},
			TabularPlan{Op: OpArgMax, Column: "closing_balance"},
		},
		{
			model.ResolvedQuery{Intent: model.IntentConditionalMinCol,
				TargetColumn: "ledger_name", AggColumn: "closing_balance"},
			TabularPlan{Op: OpArgMin, Column: "closing_balance", Columns: []string{"ledger_name"}},
		},
		{
			model.ResolvedQuery{Intent: model.IntentFullRecord},
			TabularPlan{Op: OpFull},
		},
		{
			model.ResolvedQuery{Intent: model.IntentDisplayColumn, TargetColumn: "parent", Limit: 10},
			TabularPlan{Op: OpList, Columns: []string{"parent"}, Limit: 10},
		},
	}

	for _, tt := range tests {
		got := PlanTabular(&tt.rq)
		if !reflect.DeepEqual(*got, tt.want) {
			t.Errorf("%s: got %+v, want %+v", tt.rq.Intent, *got, tt.want)
		}
	}
}

func TestParsePlanGrammar(t *testing.T) {
	plan, err := ParsePlan("sum:closing_balance")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan.Op != OpSum || plan.Column != "closing_balance" {
		t.Errorf("got %+v", plan)
	}

	plan, err = ParsePlan("list:ledger_name,parent")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := []string{"ledger_name", "parent"}; !reflect.DeepEqual(plan.Columns, want) {
		t.Errorf("got %v, want %v", plan.Columns, want)
	}

	// Case and surrounding whitespace are normalized.
	plan, err = ParsePlan("  MAX:AMOUNT\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan.Op != OpMax || plan.Column != "amount" {
		t.Errorf("got %+v", plan)
	}

	if plan, err = ParsePlan("full"); err != nil || plan.Op != OpFull {
		t.Errorf("full: got %+v, %v", plan, err)
	}
}

func TestParsePlanRejectsOutsideVocabulary(t *testing.T) {
	for _, line := range []string{
		"",
		"drop table ledgers",
		"import os",
		"eval:1+1",
		"__import__('os')",
	} {
		if _, err := ParsePlan(line); err == nil {
			t.Errorf("ParsePlan(%q) must be rejected", line)
		}
	}
}
