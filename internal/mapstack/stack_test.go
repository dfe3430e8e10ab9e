package mapstack

import (
	"errors"
	"math"
	"testing"
	"time"
)

func testStack(t *testing.T) *Stack {
	t.Helper()
	times := []time.Time{
		time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2000, 1, 2, 0, 0, 0, 0, time.UTC),
	}
	// t0: 1 2 3 / 4 5 6   t1: 3 4 NaN / 6 7 8
	values := []float64{
		1, 2, 3, 4, 5, 6,
		3, 4, math.NaN(), 6, 7, 8,
	}
	s, err := New("pr", "mm/day", times, []float64{10, 11}, []float64{100, 101, 102}, values)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return s
}

func TestNewShapeMismatch(t *testing.T) {
	_, err := New("pr", "mm", []time.Time{time.Now()}, []float64{1, 2}, []float64{1}, []float64{1})
	if !errors.Is(err, ErrShape) {
		t.Errorf("Expected ErrShape, got %v", err)
	}
	_, err = New("pr", "mm", nil, []float64{1}, []float64{1}, nil)
	if !errors.Is(err, ErrShape) {
		t.Errorf("Expected ErrShape for empty time, got %v", err)
	}
}

func TestMeanTime(t *testing.T) {
	f := testStack(t).MeanTime()
	want := []float64{2, 3, 3, 5, 6, 7}
	for i, w := range want {
		if math.Abs(f.Values[i]-w) > 1e-12 {
			t.Errorf("Cell %d: expected %v, got %v", i, w, f.Values[i])
		}
	}
	if f.At(1, 2) != 7 {
		t.Errorf("Expected At(1,2)=7, got %v", f.At(1, 2))
	}
	lo, hi := f.Range()
	if lo != 2 || hi != 7 {
		t.Errorf("Expected range [2,7], got [%v,%v]", lo, hi)
	}
}

func TestSumTime(t *testing.T) {
	f := testStack(t).SumTime()
	want := []float64{4, 6, 3, 10, 12, 14}
	for i, w := range want {
		if f.Values[i] != w {
			t.Errorf("Cell %d: expected %v, got %v", i, w, f.Values[i])
		}
	}
}

func TestSpaceAggregates(t *testing.T) {
	s := testStack(t)
	mean := s.MeanSpace()
	if mean.Values[0] != 3.5 || mean.Values[1] != 5.6 {
		t.Errorf("Unexpected spatial means %v", mean.Values)
	}
	if !mean.Index.IsTime() || len(mean.Index.Times) != 2 {
		t.Errorf("Expected a 2-step time index")
	}
	sum := s.SumSpace()
	if sum.Values[0] != 21 || sum.Values[1] != 28 {
		t.Errorf("Unexpected spatial sums %v", sum.Values)
	}
}

func TestAllNaNReductions(t *testing.T) {
	nan := math.NaN()
	s, err := New("x", "", []time.Time{time.Now()}, []float64{0}, []float64{0, 1}, []float64{nan, nan})
	if err != nil {
		t.Fatal(err)
	}
	if v := s.MeanSpace().Values[0]; !math.IsNaN(v) {
		t.Errorf("Expected NaN mean, got %v", v)
	}
	if v := s.SumSpace().Values[0]; v != 0 {
		t.Errorf("Expected 0 sum, got %v", v)
	}
	lo, hi := s.MeanTime().Range()
	if !math.IsNaN(lo) || !math.IsNaN(hi) {
		t.Errorf("Expected NaN range, got [%v,%v]", lo, hi)
	}
}

func TestAggregateDispatch(t *testing.T) {
	s := testStack(t)
	if _, err := s.AggregateTime("median"); !errors.Is(err, ErrUnknownAgg) {
		t.Errorf("Expected ErrUnknownAgg, got %v", err)
	}
	if _, err := s.AggregateSpace("max"); !errors.Is(err, ErrUnknownAgg) {
		t.Errorf("Expected ErrUnknownAgg, got %v", err)
	}
	f, err := s.AggregateTime(Sum)
	if err != nil || f.Values[0] != 4 {
		t.Errorf("AggregateTime(sum) = %v, %v", f, err)
	}

	for in, want := range map[string]Agg{"": Mean, "mean": Mean, "sum": Sum} {
		got, err := ParseAgg(in)
		if err != nil || got != want {
			t.Errorf("ParseAgg(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseAgg("avg"); !errors.Is(err, ErrUnknownAgg) {
		t.Errorf("Expected ErrUnknownAgg, got %v", err)
	}
}
