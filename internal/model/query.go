package model

import (
	"time"
)

// QueryIntent is the classified semantic action a question requests.
// The set is closed; classification always yields exactly one of these.
type QueryIntent string

const (
	IntentFullRecord        QueryIntent = "FULL_RECORD"
	IntentConditionalMax    QueryIntent = "CONDITIONAL_MAX"
	IntentConditionalMin    QueryIntent = "CONDITIONAL_MIN"
	IntentConditionalMaxCol QueryIntent = "CONDITIONAL_MAX_COL"
	IntentConditionalMinCol QueryIntent = "CONDITIONAL_MIN_COL"
	IntentMax               QueryIntent = "MAX"
	IntentMin               QueryIntent = "MIN"
	IntentSum               QueryIntent = "SUM"
	IntentAverage           QueryIntent = "AVERAGE"
	IntentCount             QueryIntent = "COUNT"
	IntentDisplayMultiple   QueryIntent = "DISPLAY_MULTIPLE"
	IntentDisplayColumn     QueryIntent = "DISPLAY_COLUMN"
	IntentSearch            QueryIntent = "SEARCH"
)

// IsAggregate reports whether the intent produces a single scalar value.
func (qi QueryIntent) IsAggregate() bool {
	switch qi {
	case IntentMax, IntentMin, IntentSum, IntentAverage, IntentCount:
		return true
	}
	return false
}

// Criterion is a single column -> literal filter extracted from query text.
type Criterion struct {
	Column string `json:"column"`
	Value  string `json:"value"`
}

// Criteria is an ordered list of filters. Order follows the left-to-right
// scan of the question; a later binding for the same column overwrites the
// earlier one in place (see Put).
type Criteria []Criterion

// Put binds value to column. An existing binding for the same column is
// overwritten in place so scan order is preserved.
func (c Criteria) Put(column, value string) Criteria {
	for i := range c {
		if c[i].Column == column {
			c[i].Value = value
			return c
		}
	}
	return append(c, Criterion{Column: column, Value: value})
}

// Get returns the bound value for column.
func (c Criteria) Get(column string) (string, bool) {
	for i := range c {
		if c[i].Column == column {
			return c[i].Value, true
		}
	}
	return "", false
}

// ResolvedQuery is the deterministic resolution of a free-form question:
// everything the synthesizer needs to build a backend statement.
type ResolvedQuery struct {
	Table        string      `json:"table"`
	Intent       QueryIntent `json:"intent"`
	TargetColumn string      `json:"targetColumn,omitempty"`
	AggColumn    string      `json:"aggColumn,omitempty"`
	// Columns lists every literally mentioned column for DISPLAY_MULTIPLE.
	Columns  []string `json:"columns,omitempty"`
	Criteria Criteria `json:"criteria,omitempty"`
	Limit    int      `json:"limit,omitempty"` // 0 = uncapped

	// Defaulted marks a resolution where no classification rule matched;
	// the intent is the closing default rather than a real signal.
	Defaulted bool `json:"-"`
}

// AskRequest is a free-form question submitted to the gateway.
type AskRequest struct {
	Question string `json:"question" binding:"required" validate:"required,min=1,max=2000"`
	Timeout  int    `json:"timeout,omitempty" validate:"omitempty,min=1,max=300"` // seconds
}

// ApplyDefaults applies default values to the AskRequest.
func (ar *AskRequest) ApplyDefaults() {
	if ar.Timeout <= 0 {
		ar.Timeout = 30
	}
	if ar.Timeout > 300 {
		ar.Timeout = 300
	}
}

// AskResponse carries the formatted answer plus resolution metadata.
type AskResponse struct {
	Success  bool           `json:"success"`
	Answer   string         `json:"answer,omitempty"`
	Resolved *ResolvedQuery `json:"resolved,omitempty"`
	Error    *QueryError    `json:"error,omitempty"`
	Metadata AskMetadata    `json:"metadata"`
}

// AskMetadata contains execution metadata for an answered question.
type AskMetadata struct {
	Backend         string    `json:"backend,omitempty"`
	Statement       string    `json:"statement,omitempty"`
	RowCount        int       `json:"rowCount"`
	ExecutionTimeMs int64     `json:"executionTimeMs"`
	ExecutedAt      time.Time `json:"executedAt"`
	UsedFallback    bool      `json:"usedFallback,omitempty"`
}

// QueryError represents query-specific error information.
type QueryError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// Result is the normalized outcome of executing a synthesized statement on
// any backend. Scalar aggregates fill Value; row-shaped results fill Columns
// and Rows.
type Result struct {
	Columns []string        `json:"columns,omitempty"`
	Rows    [][]interface{} `json:"rows,omitempty"`
	Value   interface{}     `json:"value,omitempty"`
	Scalar  bool            `json:"scalar"`
}

// Empty reports whether the result carries no data at all.
func (r *Result) Empty() bool {
	if r == nil {
		return true
	}
	if r.Scalar {
		return r.Value == nil
	}
	return len(r.Rows) == 0
}
