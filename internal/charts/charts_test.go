package charts

import (
	"bytes"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"lisflood-diag/internal/mapstack"
	"lisflood-diag/internal/model"
)

func testStack(t *testing.T, name string, scale float64) *mapstack.Stack {
	t.Helper()
	start := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	times := make([]time.Time, 4)
	for i := range times {
		times[i] = start.AddDate(0, 0, i)
	}
	lat := []float64{11, 10.5, 10}
	lon := []float64{100, 100.5}
	values := make([]float64, len(times)*len(lat)*len(lon))
	for i := range values {
		values[i] = scale * float64(i+1)
	}
	values[3] = math.NaN()
	s, err := mapstack.New(name, "mm", times, lat, lon, values)
	if err != nil {
		t.Fatalf("mapstack.New failed: %v", err)
	}
	return s
}

func reservoirTable() *model.Table {
	start := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	t := &model.Table{Columns: []string{"inflow", "outflow", "filling"}}
	times := make([]time.Time, 10)
	for i := range times {
		times[i] = start.AddDate(0, 0, i)
		t.Rows = append(t.Rows, []float64{100 + 10*float64(i), 90 + 5*float64(i), 0.3 + 0.05*float64(i)})
	}
	t.Index = model.TimeIndex(times)
	return t
}

func ptr(v float64) *float64 { return &v }

func savePNG(t *testing.T, f *Figure) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "out.png")
	if err := f.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if info.Size() == 0 {
		t.Error("Expected non-empty PNG")
	}
}

func TestMapTimeSeries(t *testing.T) {
	f, err := MapTimeSeries(testStack(t, "pr", 1), MapOptions{Label: "precipitation (mm)", Cmap: "blues"})
	if err != nil {
		t.Fatalf("MapTimeSeries failed: %v", err)
	}
	if f.Width != inches(0, 12) || f.Height != inches(0, 4) {
		t.Errorf("Expected default 12x4 in, got %v x %v", f.Width, f.Height)
	}
	savePNG(t, f)
}

func TestMapTimeSeriesErrors(t *testing.T) {
	if _, err := MapTimeSeries(nil, MapOptions{}); !errors.Is(err, ErrInput) {
		t.Errorf("Expected ErrInput for nil stack, got %v", err)
	}
	if _, err := MapTimeSeries(testStack(t, "pr", 1), MapOptions{Agg: "max"}); !errors.Is(err, mapstack.ErrUnknownAgg) {
		t.Errorf("Expected ErrUnknownAgg, got %v", err)
	}
	if _, err := MapTimeSeries(testStack(t, "pr", 1), MapOptions{Cmap: "jet"}); !errors.Is(err, ErrInput) {
		t.Errorf("Expected ErrInput for unknown colour map, got %v", err)
	}
	thin, err := mapstack.New("pr", "mm", []time.Time{time.Unix(0, 0)}, []float64{1}, []float64{1, 2}, []float64{1, 2})
	if err != nil {
		t.Fatalf("mapstack.New failed: %v", err)
	}
	if _, err := MapTimeSeries(thin, MapOptions{}); !errors.Is(err, ErrInput) {
		t.Errorf("Expected ErrInput for a single-row grid, got %v", err)
	}
}

func TestReservoir(t *testing.T) {
	f, err := Reservoir(reservoirTable(), ReservoirOptions{
		Conservative: ptr(0.1),
		Normal:       ptr(0.5),
		Flood:        ptr(0.95),
		FlowMax:      300,
	})
	if err != nil {
		t.Fatalf("Reservoir failed: %v", err)
	}
	savePNG(t, f)

	// only some limits set
	f, err = Reservoir(reservoirTable(), ReservoirOptions{Normal: ptr(0.5), FlowMax: -1})
	if err != nil {
		t.Fatalf("Reservoir failed: %v", err)
	}
	var buf bytes.Buffer
	if err := f.Render(&buf, "svg"); err != nil {
		t.Fatalf("Render svg failed: %v", err)
	}
	if !bytes.Contains(buf.Bytes(), []byte("<svg")) {
		t.Error("Expected SVG output")
	}
}

func TestReservoirMissingColumn(t *testing.T) {
	tbl := reservoirTable()
	tbl.Columns[2] = "volume"
	if _, err := Reservoir(tbl, ReservoirOptions{}); !errors.Is(err, ErrInput) {
		t.Errorf("Expected ErrInput, got %v", err)
	}
	if _, err := Reservoir(&model.Table{}, ReservoirOptions{}); !errors.Is(err, ErrInput) {
		t.Errorf("Expected ErrInput for empty table, got %v", err)
	}
}

func TestMapStacks(t *testing.T) {
	stacks := []*mapstack.Stack{
		testStack(t, "pr", 1),
		testStack(t, "ta", 2),
		testStack(t, "e0", 0.5),
	}
	f, err := MapStacks(stacks, StacksOptions{Rows: 2, YLabel: "flux", VMin: ptr(0), LogY: true})
	if err != nil {
		t.Fatalf("MapStacks failed: %v", err)
	}
	// 3 stacks on 2 rows: 2 columns
	if f.Width != inches(0, 10) || f.Height != inches(0, 16) {
		t.Errorf("Expected 10x16 in, got %v x %v", f.Width, f.Height)
	}
	savePNG(t, f)
}

func TestMapStacksCyclesColours(t *testing.T) {
	var stacks []*mapstack.Stack
	for i := 0; i < len(stackCmaps)+2; i++ {
		stacks = append(stacks, testStack(t, "v", float64(i+1)))
	}
	f, err := MapStacks(stacks, StacksOptions{Agg: mapstack.Sum, YLim: &Range{Min: 0, Max: 500}})
	if err != nil {
		t.Fatalf("MapStacks failed: %v", err)
	}
	savePNG(t, f)
}

func TestMapStacksErrors(t *testing.T) {
	if _, err := MapStacks(nil, StacksOptions{}); !errors.Is(err, ErrInput) {
		t.Errorf("Expected ErrInput for no stacks, got %v", err)
	}
	s := testStack(t, "pr", -1)
	if _, err := MapStacks([]*mapstack.Stack{s}, StacksOptions{LogY: true}); !errors.Is(err, ErrInput) {
		t.Errorf("Expected ErrInput for log scale without positive values, got %v", err)
	}
}

func TestColorMap(t *testing.T) {
	for _, name := range append([]string{"", "viridis", "Coolwarm", "inferno"}, stackCmaps...) {
		cm, err := ColorMap(name)
		if err != nil {
			t.Errorf("ColorMap(%q) failed: %v", name, err)
			continue
		}
		cm.SetMin(0)
		cm.SetMax(1)
		if _, err := cm.At(0.5); err != nil {
			t.Errorf("ColorMap(%q).At failed: %v", name, err)
		}
	}
}

func TestFieldGridAscending(t *testing.T) {
	f := &mapstack.Field{
		Lat:    []float64{2, 1},
		Lon:    []float64{5, 6},
		Values: []float64{1, 2, 3, 4},
	}
	g := newFieldGrid(f)
	if g.Y(0) != 1 || g.Y(1) != 2 {
		t.Errorf("Expected ascending latitude, got %v %v", g.Y(0), g.Y(1))
	}
	// lat 1 is the second stored row
	if g.Z(0, 0) != 3 || g.Z(1, 1) != 2 {
		t.Errorf("Unexpected cell values %v %v", g.Z(0, 0), g.Z(1, 1))
	}
}

func TestSaveNeedsExtension(t *testing.T) {
	f, err := MapTimeSeries(testStack(t, "pr", 1), MapOptions{})
	if err != nil {
		t.Fatalf("MapTimeSeries failed: %v", err)
	}
	if err := f.Save(filepath.Join(t.TempDir(), "out")); !errors.Is(err, ErrInput) {
		t.Errorf("Expected ErrInput, got %v", err)
	}
}
