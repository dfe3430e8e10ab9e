package model

import (
	"errors"
	"fmt"
	"time"
)

// Index labels the rows of a Table or Series.
//
// Exactly one of Steps or Times is populated:
//   - Steps holds the raw values of the TSS step column (no settings file given).
//   - Times holds calendar timestamps rebuilt from the settings file.
type Index struct {
	Steps []float64
	Times []time.Time
}

// StepIndex builds an index from raw step values.
func StepIndex(steps []float64) Index { return Index{Steps: steps} }

// TimeIndex builds an index from timestamps.
func TimeIndex(times []time.Time) Index { return Index{Times: times} }

// IsTime reports whether the index carries calendar timestamps.
func (ix Index) IsTime() bool { return ix.Times != nil }

func (ix Index) Len() int {
	if ix.IsTime() {
		return len(ix.Times)
	}
	return len(ix.Steps)
}

// X returns a numeric abscissa for row i: unix seconds for a time index,
// the raw step otherwise. Charts use it as their x coordinate.
func (ix Index) X(i int) float64 {
	if ix.IsTime() {
		return float64(ix.Times[i].Unix())
	}
	return ix.Steps[i]
}

// Label formats row i for text output (CSV, XLSX, JSON).
func (ix Index) Label(i int) string {
	if ix.IsTime() {
		return ix.Times[i].Format(time.RFC3339)
	}
	return fmtStep(ix.Steps[i])
}

// Equal reports whether ix and o are the same kind of index with the same
// labels.
func (ix Index) Equal(o Index) bool {
	if ix.IsTime() != o.IsTime() || ix.Len() != o.Len() {
		return false
	}
	for i := 0; i < ix.Len(); i++ {
		if ix.IsTime() {
			if !ix.Times[i].Equal(o.Times[i]) {
				return false
			}
		} else if ix.Steps[i] != o.Steps[i] {
			return false
		}
	}
	return true
}

func fmtStep(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%g", v)
}

// Frame is what a TSS read returns: a multi-column *Table or, when squeezed,
// a single named *Series.
type Frame interface {
	Len() int
	Names() []string
	RowIndex() Index
}

// Table is an ordered sequence of rows of named values.
// Columns never includes the step column of the source file.
type Table struct {
	Columns []string
	Index   Index
	Rows    [][]float64
}

var ErrColumnNotFound = errors.New("column not found")

func (t *Table) Len() int        { return len(t.Rows) }
func (t *Table) Names() []string { return t.Columns }
func (t *Table) RowIndex() Index { return t.Index }
func (t *Table) NumColumns() int { return len(t.Columns) }

// Column extracts one column as a Series sharing the table's index.
func (t *Table) Column(name string) (*Series, error) {
	for j, c := range t.Columns {
		if c != name {
			continue
		}
		vals := make([]float64, len(t.Rows))
		for i, row := range t.Rows {
			vals[i] = row[j]
		}
		return &Series{Name: c, Index: t.Index, Values: vals}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, name)
}

// Series is a single named column with its index.
type Series struct {
	Name   string
	Index  Index
	Values []float64
}

func (s *Series) Len() int        { return len(s.Values) }
func (s *Series) Names() []string { return []string{s.Name} }
func (s *Series) RowIndex() Index { return s.Index }

// Row returns the values of row i regardless of the concrete frame type.
func Row(f Frame, i int) []float64 {
	switch v := f.(type) {
	case *Table:
		return v.Rows[i]
	case *Series:
		return []float64{v.Values[i]}
	}
	return nil
}

var ErrIndexMismatch = errors.New("series indexes differ")

// Join lines up series sharing the same index into a Table whose columns
// are the series names, in argument order.
func Join(series ...*Series) (*Table, error) {
	if len(series) == 0 {
		return &Table{}, nil
	}
	first := series[0]
	t := &Table{Index: first.Index, Rows: make([][]float64, first.Len())}
	seen := make(map[string]bool, len(series))
	for _, s := range series {
		if s.Len() != first.Len() || s.Index.Len() != first.Index.Len() {
			return nil, fmt.Errorf("%w: %s has %d rows, %s has %d", ErrIndexMismatch, s.Name, s.Len(), first.Name, first.Len())
		}
		if !s.Index.Equal(first.Index) {
			return nil, fmt.Errorf("%w: %s and %s are not indexed by the same steps", ErrIndexMismatch, s.Name, first.Name)
		}
		if seen[s.Name] {
			return nil, fmt.Errorf("duplicate column %q", s.Name)
		}
		seen[s.Name] = true
		t.Columns = append(t.Columns, s.Name)
	}
	for i := range t.Rows {
		row := make([]float64, len(series))
		for j, s := range series {
			row[j] = s.Values[i]
		}
		t.Rows[i] = row
	}
	return t, nil
}

// Pick returns the named column of f, or f itself when f is a Series and
// name is empty or matches.
func Pick(f Frame, name string) (*Series, error) {
	switch v := f.(type) {
	case *Series:
		if name == "" || name == v.Name {
			return v, nil
		}
		return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, name)
	case *Table:
		if name == "" {
			if len(v.Columns) != 1 {
				return nil, fmt.Errorf("%w: table has %d columns, name one of %v", ErrColumnNotFound, len(v.Columns), v.Columns)
			}
			name = v.Columns[0]
		}
		return v.Column(name)
	}
	return nil, fmt.Errorf("unsupported frame %T", f)
}
