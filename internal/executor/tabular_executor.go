package executor

import (
	"context"
	"strings"

	"ledger-gateway/internal/model"
	"ledger-gateway/internal/synthesizer"
)

// TabularExecutor answers questions from one in-memory frame. All
// execution goes through the closed plan vocabulary; there is no statement
// interpreter beyond it.
type TabularExecutor struct {
	frame *Frame
}

func NewTabularExecutor(frame *Frame) *TabularExecutor {
	return &TabularExecutor{frame: frame}
}

func (e *TabularExecutor) Kind() model.BackendKind {
	return model.BackendTabular
}

// Frame exposes the loaded frame so the service can publish its catalog.
func (e *TabularExecutor) Frame() *Frame {
	return e.frame
}

func (e *TabularExecutor) Execute(ctx context.Context, rq *model.ResolvedQuery) (*model.Result, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}
	plan := synthesizer.PlanTabular(rq)
	res, err := e.frame.Run(plan)
	return res, PlanString(plan), err
}

// RunPlan executes an already-validated plan, the entry point for
// model-generated fallback plans. Same sandbox, same vocabulary.
func (e *TabularExecutor) RunPlan(ctx context.Context, plan *synthesizer.TabularPlan) (*model.Result, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}
	res, err := e.frame.Run(plan)
	return res, PlanString(plan), err
}

// PlanString renders a plan back in the restricted grammar, for response
// metadata.
func PlanString(plan *synthesizer.TabularPlan) string {
	var b strings.Builder
	b.WriteString(string(plan.Op))
	switch {
	case len(plan.Columns) > 0:
		b.WriteByte(':')
		b.WriteString(strings.Join(plan.Columns, ","))
	case plan.Column != "":
		b.WriteByte(':')
		b.WriteString(plan.Column)
	}
	for _, c := range plan.Criteria {
		b.WriteString(" where ")
		b.WriteString(c.Column)
		b.WriteByte('~')
		b.WriteString(c.Value)
	}
	return b.String()
}
