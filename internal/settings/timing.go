package settings

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// Keys of the textvars that carry the simulation clock.
const (
	KeyCalendarDayStart = "CalendarDayStart"
	KeyDtSec            = "DtSec"
	KeyStepStart        = "StepStart"
	KeyStepEnd          = "StepEnd"
)

// ParseError reports a settings value that could not be converted.
type ParseError struct {
	Key   string
	Value string
	Want  string // "date", "integer" or "step number or date"
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("settings %s=%q: not a valid %s: %v", e.Key, e.Value, e.Want, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Timing is the simulation clock described by a settings file.
type Timing struct {
	CalendarDayStart time.Time `json:"calendar_day_start"`
	DtSec            int       `json:"dt_sec"`
	StepStart        time.Time `json:"step_start"`
	StepEnd          time.Time `json:"step_end"`
}

// Step is the duration of one model time step.
func (t *Timing) Step() time.Duration { return time.Duration(t.DtSec) * time.Second }

// Range lists every step timestamp between StepStart and StepEnd inclusive.
func (t *Timing) Range() ([]time.Time, error) {
	return DateRange(t.StepStart, t.StepEnd, t.Step())
}

// Steps is the number of timestamps in Range.
func (t *Timing) Steps() int {
	if t.DtSec <= 0 || t.StepEnd.Before(t.StepStart) {
		return 0
	}
	return int(t.StepEnd.Sub(t.StepStart)/t.Step()) + 1
}

// LoadTiming reads the simulation clock from a settings file.
func LoadTiming(path string) (*Timing, error) {
	doc, err := Load(path)
	if err != nil {
		return nil, err
	}
	tm, err := doc.Timing()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return tm, nil
}

// Timing extracts CalendarDayStart, DtSec, StepStart and StepEnd.
//
// StepStart and StepEnd may be either a step count from CalendarDayStart or a
// literal date. Dates are read day-first (01/02/2000 is 1 February).
func (d *Document) Timing() (*Timing, error) {
	rawOrigin, err := d.Expand(KeyCalendarDayStart)
	if err != nil {
		return nil, err
	}
	origin, err := ParseDate(rawOrigin)
	if err != nil {
		return nil, &ParseError{Key: KeyCalendarDayStart, Value: rawOrigin, Want: "date", Err: err}
	}

	rawDt, err := d.Expand(KeyDtSec)
	if err != nil {
		return nil, err
	}
	dt, err := strconv.Atoi(strings.TrimSpace(rawDt))
	if err != nil {
		return nil, &ParseError{Key: KeyDtSec, Value: rawDt, Want: "integer", Err: err}
	}
	if dt <= 0 {
		return nil, &ParseError{Key: KeyDtSec, Value: rawDt, Want: "integer", Err: errors.New("must be positive")}
	}

	tm := &Timing{CalendarDayStart: origin, DtSec: dt}
	if tm.StepStart, err = d.stepBoundary(KeyStepStart, origin, dt); err != nil {
		return nil, err
	}
	if tm.StepEnd, err = d.stepBoundary(KeyStepEnd, origin, dt); err != nil {
		return nil, err
	}
	return tm, nil
}

func (d *Document) stepBoundary(key string, origin time.Time, dtSec int) (time.Time, error) {
	raw, err := d.Expand(key)
	if err != nil {
		return time.Time{}, err
	}
	return StepTime(raw, origin, dtSec, key)
}

// StepTime converts a StepStart/StepEnd value: an integer n is read as
// origin + n*dtSec, anything else as a day-first date.
func StepTime(raw string, origin time.Time, dtSec int, key string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if n, err := strconv.Atoi(s); err == nil {
		if dtSec <= 0 {
			return time.Time{}, &ParseError{Key: key, Value: raw, Want: "step number or date", Err: errors.New("time step must be positive")}
		}
		if limit := int64(math.MaxInt64/time.Second) / int64(dtSec); int64(n) > limit || int64(n) < -limit {
			return time.Time{}, &ParseError{Key: key, Value: raw, Want: "step number or date", Err: errStepOverflow}
		}
		return origin.Add(time.Duration(n) * time.Duration(dtSec) * time.Second), nil
	}
	t, err := ParseDate(s)
	if err != nil {
		return time.Time{}, &ParseError{Key: key, Value: raw, Want: "step number or date", Err: err}
	}
	return t, nil
}

var errStepOverflow = errors.New("offset from CalendarDayStart is too large")

// Separators and clock suffixes of the numeric dates found in settings files.
var (
	dateSeps   = []string{"/", ".", "-"}
	dateClocks = []string{"", " 15:04", " 15:04:05"}
)

// ParseDate parses a settings date. Numeric dates are read day-first
// (01.02.2000 is 1 February) unless the first field cannot be a month day
// pair that way round, in which case they are read month-first
// (12/31/2019 is 31 December). Other layouts go through dateparse.
// Dates without a zone are UTC.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errors.New("empty date")
	}
	for _, sep := range dateSeps {
		for _, clock := range dateClocks {
			t, err := time.ParseInLocation("2"+sep+"1"+sep+"2006"+clock, s, time.UTC)
			if err == nil {
				return t, nil
			}
			if isMonthRange(err) {
				if t, err := time.ParseInLocation("1"+sep+"2"+sep+"2006"+clock, s, time.UTC); err == nil {
					return t, nil
				}
			}
		}
	}
	t, err := dateparse.ParseIn(s, time.UTC, dateparse.PreferMonthFirst(false))
	if err != nil && isMonthRange(err) {
		t, err = dateparse.ParseIn(s, time.UTC, dateparse.PreferMonthFirst(true))
	}
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

func isMonthRange(err error) bool {
	return strings.Contains(err.Error(), "month out of range")
}

// DateRange returns start, start+step, ... up to and including end.
// It is empty when end is before start.
func DateRange(start, end time.Time, step time.Duration) ([]time.Time, error) {
	if step <= 0 {
		return nil, fmt.Errorf("date range step must be positive, got %s", step)
	}
	if end.Before(start) {
		return []time.Time{}, nil
	}
	n := int(end.Sub(start)/step) + 1
	out := make([]time.Time, n)
	for i := range out {
		out[i] = start.Add(time.Duration(i) * step)
	}
	return out, nil
}
