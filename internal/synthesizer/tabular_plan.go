package synthesizer

import (
	"fmt"
	"strings"

	"ledger-gateway/internal/model"
	"ledger-gateway/internal/utils"
)

// TabularOp is one operation of the closed tabular vocabulary. In-memory
// sources never execute generated code; every question, including fallback
// plans produced by a language model, reduces to one of these.
type TabularOp string

const (
	OpSum    TabularOp = "sum"
	OpAvg    TabularOp = "avg"
	OpMax    TabularOp = "max"
	OpMin    TabularOp = "min"
	OpCount  TabularOp = "count"
	OpArgMax TabularOp = "argmax" // rows holding the maximum of Column
	OpArgMin TabularOp = "argmin" // rows holding the minimum of Column
	OpList   TabularOp = "list"   // project Columns
	OpFull   TabularOp = "full"   // every column, every matching row
)

var validTabularOps = map[TabularOp]bool{
	OpSum: true, OpAvg: true, OpMax: true, OpMin: true, OpCount: true,
	OpArgMax: true, OpArgMin: true, OpList: true, OpFull: true,
}

// TabularPlan is an executable operation against an in-memory frame.
type TabularPlan struct {
	Op       TabularOp
	Column   string   // aggregate or count column
	Columns  []string // projection for OpList
	Criteria model.Criteria
	Limit    int
}

// PlanTabular lowers a ResolvedQuery to the tabular vocabulary. The mapping
// is total: every intent has an operation.
func PlanTabular(rq *model.ResolvedQuery) *TabularPlan {
	plan := &TabularPlan{Criteria: rq.Criteria, Limit: rq.Limit}

	switch rq.Intent {
	case model.IntentSum:
		plan.Op, plan.Column = OpSum, rq.AggColumn
	case model.IntentAverage:
		plan.Op, plan.Column = OpAvg, rq.AggColumn
	case model.IntentMax:
		plan.Op, plan.Column = OpMax, rq.AggColumn
	case model.IntentMin:
		plan.Op, plan.Column = OpMin, rq.AggColumn
	case model.IntentCount:
		plan.Op, plan.Column = OpCount, rq.TargetColumn
	case model.IntentConditionalMax:
		plan.Op, plan.Column = OpArgMax, rq.AggColumn
	case model.IntentConditionalMin:
		plan.Op, plan.Column = OpArgMin, rq.AggColumn
	case model.IntentConditionalMaxCol:
		plan.Op, plan.Column = OpArgMax, rq.AggColumn
		plan.Columns = []string{rq.TargetColumn}
	case model.IntentConditionalMinCol:
		plan.Op, plan.Column = OpArgMin, rq.AggColumn
		plan.Columns = []string{rq.TargetColumn}
	case model.IntentFullRecord:
		plan.Op = OpFull
	case model.IntentDisplayMultiple:
		plan.Op = OpList
		plan.Columns = rq.Columns
		if len(plan.Columns) == 0 {
			plan.Columns = []string{rq.TargetColumn}
		}
	default: // DISPLAY_COLUMN, SEARCH
		plan.Op = OpList
		plan.Columns = []string{rq.TargetColumn}
	}
	return plan
}

// ParsePlan parses one line of the restricted plan grammar:
//
//	op[:column[,column...]]
//
// for example "sum:closing_balance", "list:name,parent" or "full". This is
// the only form a model-generated fallback may take; anything outside the
// vocabulary is rejected, never executed.
func ParsePlan(line string) (*TabularPlan, error) {
	line = strings.TrimSpace(strings.ToLower(line))
	if line == "" {
		return nil, utils.NewAppError(utils.ErrCodeMalformedWire, nil, "empty plan")
	}

	op := line
	args := ""
	if i := strings.IndexByte(line, ':'); i >= 0 {
		op, args = line[:i], line[i+1:]
	}
	if !validTabularOps[TabularOp(op)] {
		return nil, utils.NewAppError(utils.ErrCodeMalformedWire, nil,
			fmt.Sprintf("unknown plan operation %q", op))
	}

	plan := &TabularPlan{Op: TabularOp(op)}
	var cols []string
	for _, c := range strings.Split(args, ",") {
		if c = strings.TrimSpace(c); c != "" {
			cols = append(cols, c)
		}
	}
	switch plan.Op {
	case OpList:
		plan.Columns = cols
	case OpFull:
		// no arguments
	default:
		if len(cols) > 0 {
			plan.Column = cols[0]
		}
	}
	return plan, nil
}
