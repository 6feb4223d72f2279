package synthesizer

import (
	"strings"

	"ledger-gateway/internal/database/metadata"
	"ledger-gateway/internal/model"
	"ledger-gateway/internal/resolver"
)

// grandTotalPhrases override the aggregate column to the canonical grand
// total column when the question uses one of them and the table has it.
var grandTotalPhrases = []string{
	"total amount", "invoice total", "grand total", "final amount",
}

const grandTotalColumn = "total_amount"

// Resolve turns a free-form question into a deterministic ResolvedQuery
// against the given catalog snapshot: table, intent, target/aggregate
// columns and filter criteria. Resolution never fails; every tier ends in
// a fallback, so the result is always executable.
func Resolve(query string, catalog *metadata.Catalog) *model.ResolvedQuery {
	tableName := resolver.ResolveTable(query, catalog)
	table, _ := catalog.FindTable(tableName)

	intent, matched := resolver.ClassifyDetail(query)
	rq := &model.ResolvedQuery{
		Table:     tableName,
		Intent:    intent,
		Criteria:  resolver.ExtractCriteria(query, table),
		Defaulted: !matched,
	}

	populateColumns(rq, strings.ToLower(query), table)

	// Unfiltered listings are capped; everything else returns all matches.
	switch rq.Intent {
	case model.IntentDisplayColumn, model.IntentDisplayMultiple, model.IntentSearch:
		if len(rq.Criteria) == 0 {
			rq.Limit = 10
		}
	}

	return rq
}

// populateColumns fills the intent-specific column fields from the
// lowercased question.
func populateColumns(rq *model.ResolvedQuery, queryLower string, table *metadata.TableSchema) {
	switch rq.Intent {
	case model.IntentConditionalMax, model.IntentConditionalMin,
		model.IntentMax, model.IntentMin, model.IntentSum, model.IntentAverage:
		rq.AggColumn = aggregateColumn(queryLower, table)

	case model.IntentConditionalMaxCol, model.IntentConditionalMinCol:
		// "X of Y": the left side names what to show, the right side what
		// to rank by. Without " of " both resolve from the whole question.
		// The grand-total override still reads the whole question, so
		// "total amount" on the left steers the aggregate too.
		left, right := splitOnOf(queryLower)
		rq.TargetColumn = resolver.ResolveColumn(left, table, false)
		if col, ok := grandTotalOverride(queryLower, table); ok {
			rq.AggColumn = col
		} else {
			rq.AggColumn = resolver.ResolveColumn(right, table, true)
		}

	case model.IntentCount:
		rq.TargetColumn = resolver.ResolveColumn(queryLower, table, false)

	case model.IntentDisplayMultiple:
		rq.Columns = mentionedColumns(queryLower, table)
		if len(rq.Columns) == 0 {
			rq.TargetColumn = resolver.ResolveColumn(queryLower, table, false)
		}

	case model.IntentDisplayColumn, model.IntentSearch:
		rq.TargetColumn = resolver.ResolveColumn(queryLower, table, false)
	}
}

func grandTotalOverride(queryLower string, table *metadata.TableSchema) (string, bool) {
	if table == nil || !table.HasColumn(grandTotalColumn) {
		return "", false
	}
	for _, phrase := range grandTotalPhrases {
		if strings.Contains(queryLower, phrase) {
			return grandTotalColumn, true
		}
	}
	return "", false
}

func aggregateColumn(queryLower string, table *metadata.TableSchema) string {
	if col, ok := grandTotalOverride(queryLower, table); ok {
		return col
	}
	return resolver.ResolveColumn(queryLower, table, true)
}

func splitOnOf(queryLower string) (left, right string) {
	parts := strings.SplitN(queryLower, " of ", 2)
	if len(parts) == 2 {
		return parts[0], parts[1]
	}
	return queryLower, queryLower
}

func mentionedColumns(queryLower string, table *metadata.TableSchema) []string {
	if table == nil {
		return nil
	}
	var cols []string
	for _, col := range table.Columns {
		if strings.Contains(queryLower, strings.ToLower(col)) {
			cols = append(cols, col)
		}
	}
	return cols
}
