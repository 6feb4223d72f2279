package metadata

import (
	"strings"
	"sync/atomic"
)

// TableSchema describes one table of the connected source.
type TableSchema struct {
	Name string `json:"name"`
	// Columns holds every column in introspection order, unique.
	Columns []string `json:"columns"`
	// Numeric is the subset of Columns classified numeric by the fixed
	// type allow-list.
	Numeric []string `json:"numeric,omitempty"`
	// SemiStructured is the subset holding nested documents (jsonb/json)
	// that need path extraction before relational use.
	SemiStructured []string `json:"semiStructured,omitempty"`
}

// HasColumn reports whether name is a column of the table (exact match).
func (t *TableSchema) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// IsNumeric reports whether name is a numeric column of the table.
func (t *TableSchema) IsNumeric(name string) bool {
	for _, c := range t.Numeric {
		if c == name {
			return true
		}
	}
	return false
}

// IsSemiStructured reports whether name holds nested documents.
func (t *TableSchema) IsSemiStructured(name string) bool {
	for _, c := range t.SemiStructured {
		if c == name {
			return true
		}
	}
	return false
}

// Catalog is an immutable, point-in-time snapshot of the schema of one
// connected source. It is built once per connection and shared by
// reference; reconnecting replaces the whole snapshot, never mutates it.
type Catalog struct {
	tables []string
	byName map[string]*TableSchema
}

// NewCatalog builds a snapshot from table schemas, preserving order.
func NewCatalog(tables []*TableSchema) *Catalog {
	c := &Catalog{byName: make(map[string]*TableSchema, len(tables))}
	for _, t := range tables {
		if _, dup := c.byName[t.Name]; dup {
			continue
		}
		c.tables = append(c.tables, t.Name)
		c.byName[t.Name] = t
	}
	return c
}

// EmptyCatalog is the degraded-mode snapshot used when introspection
// fails; downstream resolution falls back to hardcoded defaults.
func EmptyCatalog() *Catalog {
	return NewCatalog(nil)
}

// Tables returns table names in introspection order.
func (c *Catalog) Tables() []string {
	return c.tables
}

// Table returns the schema for an exact table name.
func (c *Catalog) Table(name string) (*TableSchema, bool) {
	t, ok := c.byName[name]
	return t, ok
}

// FindTable matches name case-insensitively.
func (c *Catalog) FindTable(name string) (*TableSchema, bool) {
	if t, ok := c.byName[name]; ok {
		return t, true
	}
	lower := strings.ToLower(name)
	for _, n := range c.tables {
		if strings.ToLower(n) == lower {
			return c.byName[n], true
		}
	}
	return nil, false
}

// Empty reports whether the snapshot holds no tables.
func (c *Catalog) Empty() bool {
	return len(c.tables) == 0
}

// SnapshotHolder publishes the live catalog snapshot. Readers share the
// current immutable value; a reconnect stores a new snapshot atomically.
type SnapshotHolder struct {
	current atomic.Pointer[Catalog]
}

// NewSnapshotHolder starts with an empty snapshot.
func NewSnapshotHolder() *SnapshotHolder {
	h := &SnapshotHolder{}
	h.current.Store(EmptyCatalog())
	return h
}

// Get returns the live snapshot.
func (h *SnapshotHolder) Get() *Catalog {
	return h.current.Load()
}

// Swap replaces the live snapshot wholesale.
func (h *SnapshotHolder) Swap(c *Catalog) {
	if c == nil {
		c = EmptyCatalog()
	}
	h.current.Store(c)
}
