package mapstack

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/batchatco/go-native-netcdf/netcdf/api"
)

type attrs map[string]interface{}

func (a attrs) Keys() []string {
	keys := make([]string, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	return keys
}

func (a attrs) Get(key string) (interface{}, bool) {
	v, ok := a[key]
	return v, ok
}

func (a attrs) GetType(key string) (string, bool)   { return "", false }
func (a attrs) GetGoType(key string) (string, bool) { return "", false }

type fakeGroup map[string]*api.Variable

func (g fakeGroup) ListVariables() []string {
	names := []string{}
	for _, n := range []string{"time", "lat", "lon", "ta", "pr"} {
		if _, ok := g[n]; ok {
			names = append(names, n)
		}
	}
	return names
}

func (g fakeGroup) GetVariable(name string) (*api.Variable, error) {
	v, ok := g[name]
	if !ok {
		return nil, errors.New("no such variable")
	}
	return v, nil
}

func lisfloodGroup() fakeGroup {
	return fakeGroup{
		"time": {
			Values:     []float64{0, 1, 2},
			Dimensions: []string{"time"},
			Attributes: attrs{"units": "days since 1990-01-01 06:00:00", "calendar": "proleptic_gregorian"},
		},
		"lat": {Values: []float32{45.5, 45.0}, Dimensions: []string{"lat"}, Attributes: attrs{}},
		"lon": {Values: []float32{10.0, 10.5}, Dimensions: []string{"lon"}, Attributes: attrs{}},
		"ta": {
			Values: [][][]float32{
				{{1, 2}, {3, -9999}},
				{{2, 3}, {4, -9999}},
				{{3, 4}, {5, -9999}},
			},
			Dimensions: []string{"time", "lat", "lon"},
			Attributes: attrs{"units": "degC", "_FillValue": float32(-9999)},
		},
	}
}

func TestLoadMapStack(t *testing.T) {
	s, err := load(lisfloodGroup(), "")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if s.Name != "ta" || s.Units != "degC" {
		t.Errorf("Expected ta [degC], got %s [%s]", s.Name, s.Units)
	}
	if len(s.Times) != 3 || len(s.Lat) != 2 || len(s.Lon) != 2 {
		t.Fatalf("Unexpected shape %d×%d×%d", len(s.Times), len(s.Lat), len(s.Lon))
	}
	if want := time.Date(1990, 1, 2, 6, 0, 0, 0, time.UTC); !s.Times[1].Equal(want) {
		t.Errorf("Expected second time %v, got %v", want, s.Times[1])
	}
	if s.At(2, 1, 0) != 5 {
		t.Errorf("Expected At(2,1,0)=5, got %v", s.At(2, 1, 0))
	}
	if !math.IsNaN(s.At(0, 1, 1)) {
		t.Errorf("Expected fill value to become NaN, got %v", s.At(0, 1, 1))
	}
}

func TestLoadPicksVariable(t *testing.T) {
	g := lisfloodGroup()
	g["pr"] = &api.Variable{
		Values:     [][][]float64{{{0, 0}, {0, 0}}, {{1, 1}, {1, 1}}, {{2, 2}, {2, 2}}},
		Dimensions: []string{"time", "lat", "lon"},
		Attributes: attrs{"units": "mm", "scale_factor": 0.5, "add_offset": 1.0},
	}
	if _, err := load(g, ""); !errors.Is(err, ErrVariable) {
		t.Errorf("Expected ambiguity error, got %v", err)
	}
	s, err := load(g, "pr")
	if err != nil {
		t.Fatalf("load pr failed: %v", err)
	}
	if s.At(2, 0, 0) != 2 {
		t.Errorf("Expected packed value 2*0.5+1=2, got %v", s.At(2, 0, 0))
	}
	if _, err := load(g, "lat"); !errors.Is(err, ErrVariable) {
		t.Errorf("Expected dimension error for 1-D variable, got %v", err)
	}
}

func TestDecodeTimes(t *testing.T) {
	tests := []struct {
		units string
		off   float64
		want  time.Time
	}{
		{"days since 1990-01-01", 1.5, time.Date(1990, 1, 2, 12, 0, 0, 0, time.UTC)},
		{"hours since 2000-01-01 00:00:00", 6, time.Date(2000, 1, 1, 6, 0, 0, 0, time.UTC)},
		{"seconds since 1970-1-1", 86400, time.Date(1970, 1, 2, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		got, err := DecodeTimes(tt.units, []float64{tt.off})
		if err != nil {
			t.Errorf("DecodeTimes(%q) failed: %v", tt.units, err)
			continue
		}
		if !got[0].Equal(tt.want) {
			t.Errorf("DecodeTimes(%q, %v) = %v, want %v", tt.units, tt.off, got[0], tt.want)
		}
	}
	for _, bad := range []string{"days", "fortnights since 2000-01-01", "days since yesterday"} {
		if _, err := DecodeTimes(bad, []float64{0}); !errors.Is(err, ErrVariable) {
			t.Errorf("DecodeTimes(%q): expected ErrVariable, got %v", bad, err)
		}
	}
}
