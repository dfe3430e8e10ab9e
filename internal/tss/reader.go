// Package tss reads PCRaster/LISFLOOD time-series (.tss) files.
//
// A TSS file looks like:
//
//	timeseries scalar settings.xml
//	3
//	timestep
//	1
//	2
//	1   12.5   3.0
//	2   12.9   3.1
//
// Line 1 is a free-text title, line 2 the number of columns N, followed by N
// column names (the first is always the step column) and whitespace-separated
// numeric rows with exactly N fields.
package tss

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"lisflood-diag/internal/data"
	"lisflood-diag/internal/model"
	"lisflood-diag/internal/settings"
)

var (
	// ErrMalformed is returned when the file does not follow the TSS layout.
	ErrMalformed = errors.New("malformed tss file")
	// ErrLengthMismatch is returned when the settings file describes a different
	// number of steps than the file contains.
	ErrLengthMismatch = errors.New("tss rows do not match settings time steps")
)

// DefaultMissingValue is the value PCRaster writes for missing data.
const DefaultMissingValue = 1e31

// ParseError reports a field that is not a number.
type ParseError struct {
	Line   int
	Column string
	Text   string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("tss line %d, column %q: cannot parse %q: %v", e.Line, e.Column, e.Text, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Options controls how a TSS file is turned into a frame.
type Options struct {
	// Settings is the settings XML of the run that wrote the file. When set,
	// the step column is replaced by calendar timestamps.
	Settings string
	// Timing is an already parsed clock; it takes precedence over Settings.
	Timing *settings.Timing
	// Squeeze returns a *model.Series when only one data column remains.
	Squeeze bool
	// MissingValue, if set, is replaced by NaN in data columns.
	MissingValue *float64
}

// DefaultOptions matches the behaviour of the notebook helpers: squeeze on,
// no settings file, missing values kept as written.
func DefaultOptions() *Options {
	return &Options{Squeeze: true}
}

func (o *Options) useTiming() bool { return o.Timing != nil || o.Settings != "" }

// Read reads a TSS file. It returns a *model.Table, or a *model.Series when
// opts.Squeeze is set and the file holds a single data column.
func Read(path string, opts *Options) (model.Frame, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	rc, err := data.Open(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	f, err := Decode(rc, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Decode reads a TSS stream. See Read.
func Decode(r io.Reader, opts *Options) (model.Frame, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	raw, err := parse(r)
	if err != nil {
		return nil, err
	}
	if opts.MissingValue != nil {
		raw.maskMissing(*opts.MissingValue)
	}

	table := &model.Table{Columns: raw.columns[1:], Rows: raw.dataRows()}
	if !opts.useTiming() {
		table.Index = model.StepIndex(raw.stepColumn())
	} else {
		tm := opts.Timing
		if tm == nil {
			if tm, err = settings.LoadTiming(opts.Settings); err != nil {
				return nil, err
			}
		}
		if table.Index, err = timeIndex(tm, len(table.Rows)); err != nil {
			return nil, err
		}
	}

	if opts.Squeeze && table.NumColumns() == 1 {
		return table.Column(table.Columns[0])
	}
	return table, nil
}

// timeIndex rebuilds the calendar of a run with rows steps.
func timeIndex(tm *settings.Timing, rows int) (model.Index, error) {
	times, err := tm.Range()
	if err != nil {
		return model.Index{}, err
	}
	if len(times) != rows {
		return model.Index{}, fmt.Errorf("%w: %d rows, %d steps from %s to %s",
			ErrLengthMismatch, rows, len(times),
			tm.StepStart.Format("2006-01-02 15:04"), tm.StepEnd.Format("2006-01-02 15:04"))
	}
	return model.TimeIndex(times), nil
}

type rawTable struct {
	columns []string
	rows    [][]float64
}

func (t *rawTable) stepColumn() []float64 {
	out := make([]float64, len(t.rows))
	for i, r := range t.rows {
		out[i] = r[0]
	}
	return out
}

func (t *rawTable) dataRows() [][]float64 {
	out := make([][]float64, len(t.rows))
	for i, r := range t.rows {
		out[i] = r[1:]
	}
	return out
}

func (t *rawTable) maskMissing(mv float64) {
	for _, r := range t.rows {
		for j := 1; j < len(r); j++ {
			if r[j] == mv {
				r[j] = math.NaN()
			}
		}
	}
}

func parse(r io.Reader) (*rawTable, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	line := 0
	next := func() (string, bool) {
		if !sc.Scan() {
			return "", false
		}
		line++
		return sc.Text(), true
	}

	if _, ok := next(); !ok {
		return nil, scanErr(sc, "missing title line")
	}
	countLine, ok := next()
	if !ok {
		return nil, scanErr(sc, "missing column count line")
	}
	n, err := strconv.Atoi(strings.TrimSpace(countLine))
	if err != nil {
		return nil, fmt.Errorf("%w: line 2: column count %q is not an integer", ErrMalformed, strings.TrimSpace(countLine))
	}
	if n < 1 {
		return nil, fmt.Errorf("%w: line 2: header declares %d columns", ErrMalformed, n)
	}

	t := &rawTable{columns: make([]string, 0, n)}
	seen := make(map[string]bool, n)
	for i := 0; i < n; i++ {
		text, ok := next()
		if !ok {
			if err := sc.Err(); err != nil {
				return nil, err
			}
			return nil, fmt.Errorf("%w: header declares %d columns but only %d names are listed", ErrMalformed, n, i)
		}
		name := strings.TrimSpace(text)
		if name == "" {
			return nil, fmt.Errorf("%w: line %d: empty column name", ErrMalformed, line)
		}
		if looksLikeRow(name) {
			return nil, fmt.Errorf("%w: line %d: expected column name %d of %d, found data row %q", ErrMalformed, line, i+1, n, name)
		}
		if seen[name] {
			return nil, fmt.Errorf("%w: line %d: duplicate column name %q", ErrMalformed, line, name)
		}
		seen[name] = true
		t.columns = append(t.columns, name)
	}

	for {
		text, ok := next()
		if !ok {
			break
		}
		fields := strings.Fields(text)
		if len(fields) == 0 {
			continue
		}
		if len(fields) != n {
			return nil, fmt.Errorf("%w: line %d: expected %d fields, found %d", ErrMalformed, line, n, len(fields))
		}
		row := make([]float64, n)
		for j, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, &ParseError{Line: line, Column: t.columns[j], Text: f, Err: err}
			}
			row[j] = v
		}
		t.rows = append(t.rows, row)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return t, nil
}

// looksLikeRow reports whether a header line is really a data row, which
// happens when the declared column count is larger than the names listed.
// Single numeric names are legal: LISFLOOD names gauge columns by their id.
func looksLikeRow(s string) bool {
	fields := strings.Fields(s)
	if len(fields) < 2 {
		return false
	}
	for _, f := range fields {
		if _, err := strconv.ParseFloat(f, 64); err != nil {
			return false
		}
	}
	return true
}

func scanErr(sc *bufio.Scanner, msg string) error {
	if err := sc.Err(); err != nil {
		return err
	}
	return fmt.Errorf("%w: %s", ErrMalformed, msg)
}
