package executor

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ledger-gateway/internal/database/metadata"
	"ledger-gateway/internal/model"
	"ledger-gateway/internal/synthesizer"
	"ledger-gateway/internal/utils"
)

// SQLExecutor runs synthesized statements against a relational source
// through database/sql. It holds no schema of its own; every execution
// reads the live catalog snapshot.
type SQLExecutor struct {
	db      *sql.DB
	dialect synthesizer.Dialect
	schema  *metadata.SnapshotHolder
}

func NewSQLExecutor(db *sql.DB, dbType model.DatabaseType, schema *metadata.SnapshotHolder) *SQLExecutor {
	dialect := synthesizer.DialectPostgres
	if dbType == model.DatabaseTypeMySQL {
		dialect = synthesizer.DialectMySQL
	}
	return &SQLExecutor{db: db, dialect: dialect, schema: schema}
}

func (e *SQLExecutor) Kind() model.BackendKind {
	return model.BackendRelational
}

func (e *SQLExecutor) Execute(ctx context.Context, rq *model.ResolvedQuery) (*model.Result, string, error) {
	table, _ := e.schema.Get().FindTable(rq.Table)
	stmt := synthesizer.BuildSQL(rq, table, e.dialect)

	rows, err := e.db.QueryContext(ctx, stmt)
	if err != nil {
		return nil, stmt, wrapExecError(ctx, err, stmt)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, stmt, utils.NewBackendFailure(err, "reading column metadata")
	}

	var out [][]interface{}
	for rows.Next() {
		values := make([]interface{}, len(columns))
		ptrs := make([]interface{}, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, stmt, utils.NewBackendFailure(err, "scanning row")
		}
		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		out = append(out, values)
	}
	if err := rows.Err(); err != nil {
		return nil, stmt, wrapExecError(ctx, err, stmt)
	}

	result := &model.Result{Columns: columns, Rows: out}
	if rq.Intent.IsAggregate() {
		result.Scalar = true
		if len(out) > 0 && len(out[0]) > 0 {
			result.Value = out[0][0]
		}
	}
	return result, stmt, nil
}

func wrapExecError(ctx context.Context, err error, stmt string) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return utils.NewAppError(utils.ErrCodeQueryTimeout, err, stmt)
	}
	return utils.NewBackendFailure(err, fmt.Sprintf("statement: %s", stmt))
}
