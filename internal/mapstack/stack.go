// Package mapstack holds gridded model output (time × lat × lon) and the
// temporal/spatial aggregations the diagnostic charts are built from.
package mapstack

import (
	"errors"
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"lisflood-diag/internal/model"
)

var (
	ErrShape      = errors.New("map stack shape mismatch")
	ErrUnknownAgg = errors.New("unknown aggregation")
)

// Agg selects how values are reduced along a dimension.
type Agg string

const (
	Mean Agg = "mean"
	Sum  Agg = "sum"
)

// ParseAgg validates an aggregation name. Empty means Mean.
func ParseAgg(s string) (Agg, error) {
	switch Agg(s) {
	case "", Mean:
		return Mean, nil
	case Sum:
		return Sum, nil
	}
	return "", fmt.Errorf("%w: %q (must be mean or sum)", ErrUnknownAgg, s)
}

// Stack is a 3-D labelled array. Values are stored time-major:
// Values[(t*len(Lat)+i)*len(Lon)+j] is time t, latitude i, longitude j.
type Stack struct {
	Name   string
	Units  string
	Times  []time.Time
	Lat    []float64
	Lon    []float64
	Values []float64
}

// New builds a Stack after checking that values matches the coordinates.
func New(name, units string, times []time.Time, lat, lon, values []float64) (*Stack, error) {
	s := &Stack{Name: name, Units: units, Times: times, Lat: lat, Lon: lon, Values: values}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Stack) Validate() error {
	if len(s.Times) == 0 || len(s.Lat) == 0 || len(s.Lon) == 0 {
		return fmt.Errorf("%w: %s has an empty dimension (time=%d lat=%d lon=%d)",
			ErrShape, s.Name, len(s.Times), len(s.Lat), len(s.Lon))
	}
	if want := len(s.Times) * len(s.Lat) * len(s.Lon); len(s.Values) != want {
		return fmt.Errorf("%w: %s has %d values, expected %d", ErrShape, s.Name, len(s.Values), want)
	}
	return nil
}

// At returns the value at time t, latitude i, longitude j.
func (s *Stack) At(t, i, j int) float64 {
	return s.Values[(t*len(s.Lat)+i)*len(s.Lon)+j]
}

// Field is a 2-D lat × lon grid, row-major by latitude.
type Field struct {
	Name   string
	Units  string
	Lat    []float64
	Lon    []float64
	Values []float64
}

func (f *Field) At(i, j int) float64 { return f.Values[i*len(f.Lon)+j] }

// Range returns the min and max of the non-NaN cells. Both are NaN when every
// cell is NaN.
func (f *Field) Range() (lo, hi float64) {
	valid := dropNaN(f.Values)
	if len(valid) == 0 {
		return math.NaN(), math.NaN()
	}
	return floats.Min(valid), floats.Max(valid)
}

// MeanTime averages every cell over time, skipping NaN.
func (s *Stack) MeanTime() *Field { return s.reduceTime(Mean) }

// SumTime sums every cell over time, skipping NaN.
func (s *Stack) SumTime() *Field { return s.reduceTime(Sum) }

// MeanSpace averages each time slice over the grid, skipping NaN.
func (s *Stack) MeanSpace() *model.Series { return s.reduceSpace(Mean) }

// SumSpace sums each time slice over the grid, skipping NaN.
func (s *Stack) SumSpace() *model.Series { return s.reduceSpace(Sum) }

// AggregateTime reduces over time with agg.
func (s *Stack) AggregateTime(agg Agg) (*Field, error) {
	if agg != Mean && agg != Sum {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAgg, agg)
	}
	return s.reduceTime(agg), nil
}

// AggregateSpace reduces over lat and lon with agg.
func (s *Stack) AggregateSpace(agg Agg) (*model.Series, error) {
	if agg != Mean && agg != Sum {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAgg, agg)
	}
	return s.reduceSpace(agg), nil
}

func (s *Stack) reduceTime(agg Agg) *Field {
	ny, nx := len(s.Lat), len(s.Lon)
	out := &Field{Name: s.Name, Units: s.Units, Lat: s.Lat, Lon: s.Lon, Values: make([]float64, ny*nx)}
	cell := make([]float64, len(s.Times))
	for i := 0; i < ny; i++ {
		for j := 0; j < nx; j++ {
			for t := range s.Times {
				cell[t] = s.At(t, i, j)
			}
			out.Values[i*nx+j] = reduce(cell, agg)
		}
	}
	return out
}

func (s *Stack) reduceSpace(agg Agg) *model.Series {
	size := len(s.Lat) * len(s.Lon)
	vals := make([]float64, len(s.Times))
	for t := range s.Times {
		vals[t] = reduce(s.Values[t*size:(t+1)*size], agg)
	}
	return &model.Series{Name: s.Name, Index: model.TimeIndex(s.Times), Values: vals}
}

// reduce follows xarray's skipna defaults: an all-NaN mean is NaN, an
// all-NaN sum is 0.
func reduce(xs []float64, agg Agg) float64 {
	valid := dropNaN(xs)
	if agg == Sum {
		return floats.Sum(valid)
	}
	if len(valid) == 0 {
		return math.NaN()
	}
	return stat.Mean(valid, nil)
}

func dropNaN(xs []float64) []float64 {
	out := make([]float64, 0, len(xs))
	for _, v := range xs {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}
