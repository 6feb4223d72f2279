package resolver

import (
	"regexp"
	"strings"

	"ledger-gateway/internal/model"
)

// intentRule pairs one predicate with the intent it yields. English and
// transliterated Hindi synonyms coexist per rule.
type intentRule struct {
	pattern *regexp.Regexp
	intent  model.QueryIntent
}

// intentRules is scanned top to bottom; the first matching rule wins, so
// order is part of the contract and independently testable.
var intentRules = []intentRule{
	{regexp.MustCompile(`\b(record|jisme|usme|jis|uska|sabse|which|where|pura|full|complete)\b.*\b(highest|max|maximum|largest|biggest)\b`), model.IntentConditionalMax},
	{regexp.MustCompile(`\b(record|jisme|usme|jis|uska|sabse|which|where|pura|full|complete)\b.*\b(lowest|min|minimum|smallest|least)\b`), model.IntentConditionalMin},
	{regexp.MustCompile(`\b(highest|max|maximum|largest|biggest)\b.*\b(record|jisme|usme|jis|uska|sabse|which|where|pura|full|complete)\b`), model.IntentConditionalMax},
	{regexp.MustCompile(`\b(lowest|min|minimum|smallest|least)\b.*\b(record|jisme|usme|jis|uska|sabse|which|where|pura|full|complete)\b`), model.IntentConditionalMin},
	{regexp.MustCompile(`\b(find|search|show|get|fetch|where|with|having|contains|like|dekho|dikhao|show me)\b.*\b(value|equal|equals|=)\b`), model.IntentSearch},
	{regexp.MustCompile(`\b(all|records|rows|data|pura|complete|full)\b.*\b(where|with|having|contains|dekho|dikhao)\b`), model.IntentFullRecord},
	{regexp.MustCompile(`\b(highest|maximum|max|largest|biggest|sabse\s*(jyada|zyada|bada))\b`), model.IntentMax},
	{regexp.MustCompile(`\b(lowest|minimum|min|smallest|least|sabse\s*(kam|chota))\b`), model.IntentMin},
	{regexp.MustCompile(`\b(count|number|how\s*many|kitne|kitna)\b`), model.IntentCount},
	{regexp.MustCompile(`\b(average|avg|mean|ausat)\b`), model.IntentAverage},
	{regexp.MustCompile(`\b(total|sum|add|jod|yog)\b`), model.IntentSum},
	{regexp.MustCompile(`\b(show|list|display|view|all\s*data|dikhao|dekho|write|kya\s*likha|sab)\b.*\b(and|aur)\b`), model.IntentDisplayMultiple},
	{regexp.MustCompile(`\b(show|list|display|view|all\s*data|dikhao|dekho|write|kya\s*likha|sab)\b`), model.IntentFullRecord},
	{regexp.MustCompile(`\b(\w+)\b.*\bof\b.*\b(highest|max|maximum|largest|biggest)\b`), model.IntentConditionalMaxCol},
	{regexp.MustCompile(`\b(\w+)\b.*\bof\b.*\b(lowest|min|minimum|smallest|least)\b`), model.IntentConditionalMinCol},
	{regexp.MustCompile(`\b(which|what|konsa|kaun sa|kaunsi)\b.*\b(highest|max|largest|biggest)\b`), model.IntentConditionalMaxCol},
	{regexp.MustCompile(`\b(which|what|konsa|kaun sa|kaunsi)\b.*\b(lowest|min|smallest|least)\b`), model.IntentConditionalMinCol},
}

// The Sum rule only counts a total/sum word when it is not immediately
// followed by "amount": "total amount" names a column, not an aggregate.
// The guard is per occurrence, so "total amount and sum of balance" still
// carries a standalone sum word.
var (
	sumWord     = regexp.MustCompile(`\b(total|sum|add|jod|yog)\b`)
	amountAfter = regexp.MustCompile(`^\s*(amount|_amount)`)
)

func sumWordStandsAlone(queryLower string) bool {
	for _, loc := range sumWord.FindAllStringIndex(queryLower, -1) {
		if !amountAfter.MatchString(queryLower[loc[1]:]) {
			return true
		}
	}
	return false
}

// Classify maps a normalized question to exactly one intent. Total,
// deterministic, and order-dependent: the first matching rule wins; with
// no match the question defaults to DISPLAY_COLUMN.
func Classify(query string) model.QueryIntent {
	intent, _ := ClassifyDetail(query)
	return intent
}

// ClassifyDetail additionally reports whether a rule matched or the
// default closed the scan. Callers use the distinction to decide when the
// rule engine had nothing to go on.
func ClassifyDetail(query string) (model.QueryIntent, bool) {
	queryLower := strings.ToLower(query)
	for _, rule := range intentRules {
		if !rule.pattern.MatchString(queryLower) {
			continue
		}
		if rule.intent == model.IntentSum && !sumWordStandsAlone(queryLower) {
			continue
		}
		return rule.intent, true
	}
	return model.IntentDisplayColumn, false
}
