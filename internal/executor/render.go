package executor

import (
	"fmt"
	"strings"

	"ledger-gateway/internal/model"
	"ledger-gateway/internal/utils"
)

// FormatResult renders an execution result as the human-readable answer.
// Scalars get an intent-specific label; multi-column rows render as record
// blocks; single-column rows render one value per line. All cell values go
// through the shared numeric formatting.
func FormatResult(rq *model.ResolvedQuery, res *model.Result) string {
	if res.Empty() {
		return "No data found."
	}

	if res.Scalar {
		return scalarAnswer(rq, res.Value)
	}

	if len(res.Columns) == 1 {
		lines := make([]string, 0, len(res.Rows))
		for _, row := range res.Rows {
			lines = append(lines, utils.FormatValue(row[0]))
		}
		return strings.Join(lines, "\n")
	}

	return recordBlocks(res)
}

func scalarAnswer(rq *model.ResolvedQuery, value interface{}) string {
	formatted := utils.FormatValue(value)
	switch rq.Intent {
	case model.IntentMax:
		return fmt.Sprintf("Maximum %s: %s", rq.AggColumn, formatted)
	case model.IntentMin:
		return fmt.Sprintf("Minimum %s: %s", rq.AggColumn, formatted)
	case model.IntentSum:
		return fmt.Sprintf("Total %s: %s", rq.AggColumn, formatted)
	case model.IntentAverage:
		return fmt.Sprintf("Average %s: %s", rq.AggColumn, formatted)
	case model.IntentCount:
		return fmt.Sprintf("Total records: %s", formatted)
	}
	return formatted
}

// recordBlocks prints rows in the expanded psql style, one block per row
// with left-justified column names.
func recordBlocks(res *model.Result) string {
	var b strings.Builder
	for i, row := range res.Rows {
		fmt.Fprintf(&b, "-[ RECORD %d ]-\n", i+1)
		for j, col := range res.Columns {
			var cell string
			if j < len(row) {
				cell = utils.FormatValue(row[j])
			}
			fmt.Fprintf(&b, "%-20s | %s\n", col, cell)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
