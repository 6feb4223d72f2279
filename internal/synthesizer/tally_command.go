package synthesizer

import (
	"regexp"
	"strings"

	"ledger-gateway/internal/model"
)

// TallyOp is one of the canned operations the legacy gateway client knows
// how to perform. Questions never reach the gateway as SQL; they lower to
// exactly one of these.
type TallyOp string

const (
	TallyCompanies TallyOp = "companies" // enumerate loaded companies
	TallyLedgers   TallyOp = "ledgers"   // enumerate ledger names
	TallyMax       TallyOp = "max"       // top ledger by field
	TallyMin       TallyOp = "min"       // bottom ledger by field
	TallySum       TallyOp = "sum"       // aggregate field over all ledgers
	TallyAvg       TallyOp = "avg"
	TallyCount     TallyOp = "count" // number of ledgers
	TallyFull      TallyOp = "full"  // full ledger export, every field
)

// TallyCommand pairs an operation with the balance field it acts on.
type TallyCommand struct {
	Op    TallyOp
	Field string
}

const (
	FieldClosingBalance = "ClosingBalance"
	FieldOpeningBalance = "OpeningBalance"
)

var companyPattern = regexp.MustCompile(`compan|firm|organi`)

// PlanTally lowers a question and its classified intent to a gateway
// command. Company vocabulary takes precedence over the intent; the balance
// field defaults to closing balance unless the question says opening.
func PlanTally(query string, intent model.QueryIntent) TallyCommand {
	queryLower := strings.ToLower(query)

	field := FieldClosingBalance
	if strings.Contains(queryLower, "opening") {
		field = FieldOpeningBalance
	}

	if companyPattern.MatchString(queryLower) {
		return TallyCommand{Op: TallyCompanies}
	}

	switch intent {
	case model.IntentMax, model.IntentConditionalMax, model.IntentConditionalMaxCol:
		return TallyCommand{Op: TallyMax, Field: field}
	case model.IntentMin, model.IntentConditionalMin, model.IntentConditionalMinCol:
		return TallyCommand{Op: TallyMin, Field: field}
	case model.IntentSum:
		return TallyCommand{Op: TallySum, Field: field}
	case model.IntentAverage:
		return TallyCommand{Op: TallyAvg, Field: field}
	case model.IntentCount:
		return TallyCommand{Op: TallyCount}
	case model.IntentFullRecord:
		return TallyCommand{Op: TallyFull, Field: field}
	}
	return TallyCommand{Op: TallyLedgers}
}
