package resolver

import (
	"strings"

	"ledger-gateway/internal/database/metadata"
	"ledger-gateway/internal/model"
)

// stopWords are skipped during the criteria scan and never bound as values.
var stopWords = map[string]bool{
	"me": true, "hai": true, "kya": true, "ke": true, "ka": true, "ki": true,
	"ko": true, "se": true, "from": true, "in": true, "of": true, "the": true,
	"is": true, "are": true, "and": true, "aur": true, "with": true,
	"which": true, "has": true, "have": true, "had": true, "a": true,
	"an": true, "that": true, "this": true, "those": true, "these": true,
}

// aggKeywords mark aggregate vocabulary; they never start a filter.
var aggKeywords = map[string]bool{
	"highest": true, "lowest": true, "max": true, "min": true,
	"maximum": true, "minimum": true, "biggest": true, "smallest": true,
	"count": true, "sum": true, "total": true, "average": true, "avg": true,
}

// ExtractCriteria walks the question left to right and binds column ->
// value filter pairs. Numeric columns are never equality filters here, only
// aggregate targets, so a numeric column mention is skipped. Unrecognized
// tokens are silently ignored: best-effort extraction, not a full parse.
func ExtractCriteria(query string, table *metadata.TableSchema) model.Criteria {
	var criteria model.Criteria
	if table == nil {
		return criteria
	}

	words := strings.Fields(strings.ToLower(query))
	for i := 0; i < len(words); {
		word := words[i]
		if stopWords[word] || aggKeywords[word] {
			i++
			continue
		}
		if !table.HasColumn(word) {
			i++
			continue
		}
		if table.IsNumeric(word) {
			i++
			continue
		}
		if i < len(words)-1 && !stopWords[words[i+1]] {
			criteria = criteria.Put(word, words[i+1])
			i += 2
		} else {
			i++
		}
	}
	return criteria
}
