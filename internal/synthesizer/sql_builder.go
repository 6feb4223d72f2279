package synthesizer

import (
	"fmt"
	"strings"

	"ledger-gateway/internal/database/metadata"
	"ledger-gateway/internal/model"
	"ledger-gateway/internal/utils"
)

// Dialect selects engine-specific SQL spellings.
type Dialect string

const (
	DialectPostgres Dialect = "postgresql"
	DialectMySQL    Dialect = "mysql"
)

// BuildSQL renders a ResolvedQuery as one SQL statement. Every intent has a
// fixed statement shape; only identifiers, literals and the WHERE clause
// vary. Free-text criteria compare by case-insensitive containment, numeric
// literals by equality. Conditional extrema re-test equality against a
// scalar subquery so ties surface as multiple rows.
func BuildSQL(rq *model.ResolvedQuery, table *metadata.TableSchema, dialect Dialect) string {
	conditions := buildConditions(rq.Criteria, table, dialect)
	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	switch rq.Intent {
	case model.IntentFullRecord:
		return fmt.Sprintf("SELECT * FROM %s%s", rq.Table, where)

	case model.IntentConditionalMax:
		return conditionalExtremum(rq, "*", "MAX", conditions, where, table, dialect)
	case model.IntentConditionalMin:
		return conditionalExtremum(rq, "*", "MIN", conditions, where, table, dialect)
	case model.IntentConditionalMaxCol:
		return conditionalExtremum(rq, rq.TargetColumn, "MAX", conditions, where, table, dialect)
	case model.IntentConditionalMinCol:
		return conditionalExtremum(rq, rq.TargetColumn, "MIN", conditions, where, table, dialect)

	case model.IntentMax:
		return aggregate(rq, "MAX", "max_value", where, table, dialect)
	case model.IntentMin:
		return aggregate(rq, "MIN", "min_value", where, table, dialect)
	case model.IntentSum:
		return aggregate(rq, "SUM", "total_sum", where, table, dialect)
	case model.IntentAverage:
		return aggregate(rq, "AVG", "average_value", where, table, dialect)

	case model.IntentCount:
		return fmt.Sprintf("SELECT COUNT(%s) AS total_count FROM %s%s",
			rq.TargetColumn, rq.Table, where)

	case model.IntentDisplayMultiple:
		cols := rq.Columns
		if len(cols) == 0 {
			cols = []string{rq.TargetColumn}
		}
		return fmt.Sprintf("SELECT %s FROM %s%s%s",
			strings.Join(cols, ", "), rq.Table, where, limitClause(rq))
	}

	// DISPLAY_COLUMN and SEARCH share the single-column projection shape.
	return fmt.Sprintf("SELECT %s FROM %s%s%s",
		projection(rq.TargetColumn, table, dialect), rq.Table, where, limitClause(rq))
}

// conditionalExtremum builds the two-level shape: the inner subquery finds
// the extreme value under the filters, the outer query returns every row
// equal to it. Both levels carry the same filters.
func conditionalExtremum(rq *model.ResolvedQuery, selectList, fn string,
	conditions []string, where string, table *metadata.TableSchema, dialect Dialect) string {

	aggExpr := numericExpr(rq.AggColumn, table, dialect)
	sub := fmt.Sprintf("SELECT %s(%s) FROM %s%s", fn, aggExpr, rq.Table, where)
	stmt := fmt.Sprintf("SELECT %s FROM %s WHERE %s = (%s)",
		selectList, rq.Table, aggExpr, sub)
	if len(conditions) > 0 {
		stmt += " AND " + strings.Join(conditions, " AND ")
	}
	return stmt
}

func aggregate(rq *model.ResolvedQuery, fn, alias, where string,
	table *metadata.TableSchema, dialect Dialect) string {
	return fmt.Sprintf("SELECT %s(%s) AS %s FROM %s%s",
		fn, numericExpr(rq.AggColumn, table, dialect), alias, rq.Table, where)
}

// numericExpr wraps a semi-structured column in a first-element path
// extraction cast to numeric; plain columns pass through.
func numericExpr(column string, table *metadata.TableSchema, dialect Dialect) string {
	if table == nil || !table.IsSemiStructured(column) {
		return column
	}
	if dialect == DialectMySQL {
		return fmt.Sprintf("CAST(JSON_UNQUOTE(JSON_EXTRACT(%s, '$[0].%s')) AS DECIMAL(18,2))",
			column, column)
	}
	return fmt.Sprintf("(%s->0->>'%s')::numeric", column, column)
}

// projection renders a display column. Semi-structured columns project the
// first element's description attribute instead of the raw document.
func projection(column string, table *metadata.TableSchema, dialect Dialect) string {
	if table == nil || !table.IsSemiStructured(column) {
		return column
	}
	if dialect == DialectMySQL {
		return fmt.Sprintf("JSON_UNQUOTE(JSON_EXTRACT(%s, '$[0].description')) AS description", column)
	}
	return fmt.Sprintf("%s->0->>'description' AS description", column)
}

func buildConditions(criteria model.Criteria, table *metadata.TableSchema, dialect Dialect) []string {
	var conditions []string
	for _, c := range criteria {
		value := escapeLiteral(c.Value)
		switch {
		case table != nil && table.IsSemiStructured(c.Column):
			conditions = append(conditions, containment(
				nestedTextExpr(c.Column, dialect), value, dialect))
		case utils.IsNumericLiteral(c.Value):
			conditions = append(conditions, fmt.Sprintf("%s = %s", c.Column, value))
		default:
			conditions = append(conditions, containment(c.Column, value, dialect))
		}
	}
	return conditions
}

func containment(expr, value string, dialect Dialect) string {
	if dialect == DialectMySQL {
		return fmt.Sprintf("LOWER(%s) LIKE '%%%s%%'", expr, strings.ToLower(value))
	}
	return fmt.Sprintf("%s ILIKE '%%%s%%'", expr, value)
}

func nestedTextExpr(column string, dialect Dialect) string {
	if dialect == DialectMySQL {
		return fmt.Sprintf("JSON_UNQUOTE(JSON_EXTRACT(%s, '$[0].%s'))", column, column)
	}
	return fmt.Sprintf("%s->0->>'%s'", column, column)
}

func limitClause(rq *model.ResolvedQuery) string {
	if rq.Limit > 0 {
		return fmt.Sprintf(" LIMIT %d", rq.Limit)
	}
	return ""
}

func escapeLiteral(v string) string {
	return strings.ReplaceAll(v, "'", "''")
}
