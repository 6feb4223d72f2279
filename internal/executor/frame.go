package executor

import (
	"fmt"
	"strconv"
	"strings"

	"ledger-gateway/internal/database/metadata"
	"ledger-gateway/internal/model"
	"ledger-gateway/internal/synthesizer"
	"ledger-gateway/internal/utils"
)

// Frame is an immutable in-memory table loaded from a file source. Cells
// are kept as strings; a column counts as numeric when every non-empty cell
// parses as a number.
type Frame struct {
	Name    string
	Columns []string
	Rows    [][]string

	numeric map[string]bool
	index   map[string]int
}

// NewFrame builds a frame and classifies its columns. Short rows read from
// ragged files are padded so every row has one cell per column.
func NewFrame(name string, columns []string, rows [][]string) *Frame {
	f := &Frame{
		Name:    name,
		Columns: columns,
		numeric: make(map[string]bool, len(columns)),
		index:   make(map[string]int, len(columns)),
	}
	for i, col := range columns {
		f.index[strings.ToLower(col)] = i
	}

	f.Rows = make([][]string, 0, len(rows))
	for _, row := range rows {
		if len(row) < len(columns) {
			padded := make([]string, len(columns))
			copy(padded, row)
			row = padded
		}
		f.Rows = append(f.Rows, row[:len(columns)])
	}

	for i, col := range columns {
		f.numeric[col] = f.columnIsNumeric(i)
	}
	return f
}

func (f *Frame) columnIsNumeric(idx int) bool {
	seen := false
	for _, row := range f.Rows {
		cell := strings.TrimSpace(row[idx])
		if cell == "" {
			continue
		}
		if _, err := strconv.ParseFloat(cell, 64); err != nil {
			return false
		}
		seen = true
	}
	return seen
}

// Catalog exposes the frame as a single-table schema snapshot so the
// resolver treats file sources exactly like relational ones.
func (f *Frame) Catalog() *metadata.Catalog {
	var numeric []string
	for _, col := range f.Columns {
		if f.numeric[col] {
			numeric = append(numeric, col)
		}
	}
	return metadata.NewCatalog([]*metadata.TableSchema{{
		Name:    f.Name,
		Columns: f.Columns,
		Numeric: numeric,
	}})
}

func (f *Frame) columnIndex(name string) (int, bool) {
	i, ok := f.index[strings.ToLower(name)]
	return i, ok
}

// Run executes one operation of the closed tabular vocabulary. There is no
// other execution path for file sources; plans referencing unknown columns
// are rejected, not guessed.
func (f *Frame) Run(plan *synthesizer.TabularPlan) (*model.Result, error) {
	rows, err := f.filter(plan.Criteria)
	if err != nil {
		return nil, err
	}

	switch plan.Op {
	case synthesizer.OpSum, synthesizer.OpAvg, synthesizer.OpMax, synthesizer.OpMin:
		return f.aggregate(plan.Op, plan.Column, rows)
	case synthesizer.OpCount:
		return f.count(plan.Column, rows)
	case synthesizer.OpArgMax, synthesizer.OpArgMin:
		return f.argExtreme(plan, rows)
	case synthesizer.OpList:
		return f.project(plan.Columns, rows, plan.Limit)
	case synthesizer.OpFull:
		return f.project(f.Columns, rows, plan.Limit)
	}
	return nil, utils.NewAppError(utils.ErrCodeInternalError, nil,
		fmt.Sprintf("unhandled tabular operation %q", plan.Op))
}

// filter keeps rows matching every criterion: numeric columns compare by
// value equality, text columns by case-insensitive containment.
func (f *Frame) filter(criteria model.Criteria) ([][]string, error) {
	if len(criteria) == 0 {
		return f.Rows, nil
	}

	rows := f.Rows
	for _, c := range criteria {
		idx, ok := f.columnIndex(c.Column)
		if !ok {
			return nil, unknownColumn(c.Column)
		}

		var kept [][]string
		if f.numeric[f.Columns[idx]] && utils.IsNumericLiteral(c.Value) {
			want, _ := strconv.ParseFloat(c.Value, 64)
			for _, row := range rows {
				if v, err := strconv.ParseFloat(strings.TrimSpace(row[idx]), 64); err == nil && v == want {
					kept = append(kept, row)
				}
			}
		} else {
			needle := strings.ToLower(c.Value)
			for _, row := range rows {
				if strings.Contains(strings.ToLower(row[idx]), needle) {
					kept = append(kept, row)
				}
			}
		}
		rows = kept
	}
	return rows, nil
}

func (f *Frame) aggregate(op synthesizer.TabularOp, column string, rows [][]string) (*model.Result, error) {
	idx, ok := f.columnIndex(column)
	if !ok {
		return nil, unknownColumn(column)
	}

	var sum, max, min float64
	n := 0
	for _, row := range rows {
		v, err := strconv.ParseFloat(strings.TrimSpace(row[idx]), 64)
		if err != nil {
			continue
		}
		if n == 0 {
			max, min = v, v
		}
		if v > max {
			max = v
		}
		if v < min {
			min = v
		}
		sum += v
		n++
	}
	if n == 0 {
		return &model.Result{Scalar: true}, nil
	}

	var value float64
	switch op {
	case synthesizer.OpSum:
		value = sum
	case synthesizer.OpAvg:
		value = sum / float64(n)
	case synthesizer.OpMax:
		value = max
	case synthesizer.OpMin:
		value = min
	}
	return &model.Result{Scalar: true, Value: value}, nil
}

func (f *Frame) count(column string, rows [][]string) (*model.Result, error) {
	idx, ok := f.columnIndex(column)
	if !ok {
		return nil, unknownColumn(column)
	}
	n := 0
	for _, row := range rows {
		if strings.TrimSpace(row[idx]) != "" {
			n++
		}
	}
	return &model.Result{Scalar: true, Value: int64(n)}, nil
}

// argExtreme returns every row holding the extreme value, so ties surface
// as multiple rows just like the relational shape.
func (f *Frame) argExtreme(plan *synthesizer.TabularPlan, rows [][]string) (*model.Result, error) {
	idx, ok := f.columnIndex(plan.Column)
	if !ok {
		return nil, unknownColumn(plan.Column)
	}

	var extreme float64
	found := false
	for _, row := range rows {
		v, err := strconv.ParseFloat(strings.TrimSpace(row[idx]), 64)
		if err != nil {
			continue
		}
		if !found {
			extreme = v
			found = true
			continue
		}
		if plan.Op == synthesizer.OpArgMax && v > extreme {
			extreme = v
		}
		if plan.Op == synthesizer.OpArgMin && v < extreme {
			extreme = v
		}
	}
	if !found {
		return &model.Result{}, nil
	}

	var matched [][]string
	for _, row := range rows {
		if v, err := strconv.ParseFloat(strings.TrimSpace(row[idx]), 64); err == nil && v == extreme {
			matched = append(matched, row)
		}
	}

	columns := plan.Columns
	if len(columns) == 0 {
		columns = f.Columns
	}
	return f.projectRows(columns, matched, 0)
}

func (f *Frame) project(columns []string, rows [][]string, limit int) (*model.Result, error) {
	return f.projectRows(columns, rows, limit)
}

func (f *Frame) projectRows(columns []string, rows [][]string, limit int) (*model.Result, error) {
	indexes := make([]int, len(columns))
	for i, col := range columns {
		idx, ok := f.columnIndex(col)
		if !ok {
			return nil, unknownColumn(col)
		}
		indexes[i] = idx
	}

	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}

	out := make([][]interface{}, 0, len(rows))
	for _, row := range rows {
		cells := make([]interface{}, len(indexes))
		for i, idx := range indexes {
			cells[i] = row[idx]
		}
		out = append(out, cells)
	}
	return &model.Result{Columns: columns, Rows: out}, nil
}

func unknownColumn(name string) error {
	return utils.NewAppError(utils.ErrCodeNoEntityMatch, nil,
		fmt.Sprintf("no such column %q", name))
}
