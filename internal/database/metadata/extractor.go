package metadata

import (
	"context"
	"database/sql"
	"fmt"

	"ledger-gateway/internal/model"
)

// numericTypes is the fixed allow-list that classifies a column as numeric.
var numericTypes = map[string]bool{
	"integer":          true,
	"numeric":          true,
	"float":            true,
	"double precision": true,
	"decimal":          true,
	"bigint":           true,
	"smallint":         true,
	"int":              true,
	"double":           true,
}

// semiStructuredTypes classifies nested-document columns.
var semiStructuredTypes = map[string]bool{
	"jsonb": true,
	"json":  true,
}

// Extractor introspects table/column metadata from a relational source.
type Extractor struct {
	db     *sql.DB
	dbType model.DatabaseType
}

// NewExtractor creates an extractor bound to an open connection.
func NewExtractor(db *sql.DB, dbType model.DatabaseType) *Extractor {
	return &Extractor{db: db, dbType: dbType}
}

// Discover builds a catalog snapshot for the connected source. On any
// introspection failure it returns the empty catalog together with the
// error: degraded mode, never a fatal outcome for the request path.
func (e *Extractor) Discover(ctx context.Context) (*Catalog, error) {
	tables, err := e.listTables(ctx)
	if err != nil {
		return EmptyCatalog(), err
	}

	schemas := make([]*TableSchema, 0, len(tables))
	for _, name := range tables {
		ts, err := e.describeTable(ctx, name)
		if err != nil {
			return EmptyCatalog(), err
		}
		schemas = append(schemas, ts)
	}

	return NewCatalog(schemas), nil
}

func (e *Extractor) listTables(ctx context.Context) ([]string, error) {
	var query string
	if e.dbType == model.DatabaseTypeMySQL {
		query = "SELECT table_name FROM information_schema.tables WHERE table_schema = DATABASE()"
	} else {
		query = "SELECT table_name FROM information_schema.tables WHERE table_schema = 'public'"
	}

	rows, err := e.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan table name: %w", err)
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}

func (e *Extractor) describeTable(ctx context.Context, table string) (*TableSchema, error) {
	var query string
	if e.dbType == model.DatabaseTypeMySQL {
		query = "SELECT column_name, data_type FROM information_schema.columns WHERE table_name = ? AND table_schema = DATABASE() ORDER BY ordinal_position"
	} else {
		query = "SELECT column_name, data_type FROM information_schema.columns WHERE table_name = $1 ORDER BY ordinal_position"
	}

	rows, err := e.db.QueryContext(ctx, query, table)
	if err != nil {
		return nil, fmt.Errorf("failed to describe table %s: %w", table, err)
	}
	defer rows.Close()

	ts := &TableSchema{Name: table}
	for rows.Next() {
		var column, dataType string
		if err := rows.Scan(&column, &dataType); err != nil {
			return nil, fmt.Errorf("failed to scan column of %s: %w", table, err)
		}
		ts.Columns = append(ts.Columns, column)
		if numericTypes[dataType] {
			ts.Numeric = append(ts.Numeric, column)
		}
		if semiStructuredTypes[dataType] {
			ts.SemiStructured = append(ts.SemiStructured, column)
		}
	}
	return ts, rows.Err()
}
