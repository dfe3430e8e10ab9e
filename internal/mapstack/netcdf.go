package mapstack

import (
	"errors"
	"fmt"
	"math"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/batchatco/go-native-netcdf/netcdf/api"
)

var ErrVariable = errors.New("map stack variable")

// variableSource is the part of a NetCDF group the loader needs.
type variableSource interface {
	ListVariables() []string
	GetVariable(name string) (*api.Variable, error)
}

// Open loads a LISFLOOD map stack from a NetCDF file. variable names the data
// variable; when empty the file must contain exactly one 3-D variable.
func Open(path, variable string) (*Stack, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	nc, err := netcdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open netcdf %s: %w", path, err)
	}
	defer nc.Close()

	s, err := load(nc, variable)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

func load(src variableSource, variable string) (*Stack, error) {
	if variable == "" {
		name, err := pickVariable(src)
		if err != nil {
			return nil, err
		}
		variable = name
	}

	v, err := src.GetVariable(variable)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrVariable, variable, err)
	}
	if len(v.Dimensions) != 3 {
		return nil, fmt.Errorf("%w %q: expected 3 dimensions (time, lat, lon), got %v", ErrVariable, variable, v.Dimensions)
	}

	values, err := flatten(v.Values)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrVariable, variable, err)
	}
	applyPacking(values, v.Attributes)

	times, err := loadTimes(src, v.Dimensions[0])
	if err != nil {
		return nil, err
	}
	lat, err := loadCoord(src, v.Dimensions[1])
	if err != nil {
		return nil, err
	}
	lon, err := loadCoord(src, v.Dimensions[2])
	if err != nil {
		return nil, err
	}

	units, _ := attrString(v.Attributes, "units")
	return New(variable, units, times, lat, lon, values)
}

func pickVariable(src variableSource) (string, error) {
	var found []string
	for _, name := range src.ListVariables() {
		v, err := src.GetVariable(name)
		if err != nil {
			continue
		}
		if len(v.Dimensions) == 3 {
			found = append(found, name)
		}
	}
	switch len(found) {
	case 0:
		return "", fmt.Errorf("%w: no 3-D variable found", ErrVariable)
	case 1:
		return found[0], nil
	}
	return "", fmt.Errorf("%w: several 3-D variables (%s), pick one", ErrVariable, strings.Join(found, ", "))
}

func loadCoord(src variableSource, dim string) ([]float64, error) {
	v, err := src.GetVariable(dim)
	if err != nil {
		return nil, fmt.Errorf("%w: coordinate %q: %v", ErrVariable, dim, err)
	}
	return flatten(v.Values)
}

func loadTimes(src variableSource, dim string) ([]time.Time, error) {
	v, err := src.GetVariable(dim)
	if err != nil {
		return nil, fmt.Errorf("%w: time coordinate %q: %v", ErrVariable, dim, err)
	}
	offsets, err := flatten(v.Values)
	if err != nil {
		return nil, err
	}
	units, ok := attrString(v.Attributes, "units")
	if !ok {
		return nil, fmt.Errorf("%w: time coordinate %q has no units", ErrVariable, dim)
	}
	if cal, ok := attrString(v.Attributes, "calendar"); ok {
		switch strings.ToLower(cal) {
		case "standard", "gregorian", "proleptic_gregorian":
		default:
			return nil, fmt.Errorf("%w: unsupported calendar %q", ErrVariable, cal)
		}
	}
	return DecodeTimes(units, offsets)
}

// DecodeTimes converts CF "<unit> since <date>" offsets into timestamps.
func DecodeTimes(units string, offsets []float64) ([]time.Time, error) {
	parts := strings.SplitN(units, " since ", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("%w: time units %q are not \"<unit> since <date>\"", ErrVariable, units)
	}
	var unit time.Duration
	switch strings.ToLower(strings.TrimSpace(parts[0])) {
	case "days", "day", "d":
		unit = 24 * time.Hour
	case "hours", "hour", "h":
		unit = time.Hour
	case "minutes", "minute", "min":
		unit = time.Minute
	case "seconds", "second", "s":
		unit = time.Second
	default:
		return nil, fmt.Errorf("%w: unsupported time unit %q", ErrVariable, parts[0])
	}
	origin, err := parseEpoch(strings.TrimSpace(parts[1]))
	if err != nil {
		return nil, fmt.Errorf("%w: time origin %q: %v", ErrVariable, parts[1], err)
	}

	out := make([]time.Time, len(offsets))
	for i, o := range offsets {
		out[i] = origin.Add(time.Duration(math.Round(o * float64(unit))))
	}
	return out, nil
}

var epochLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006-1-2 15:04:05",
	"2006-1-2",
}

func parseEpoch(s string) (time.Time, error) {
	s = strings.TrimSuffix(strings.TrimSuffix(s, "Z"), " UTC")
	s = strings.TrimSuffix(s, ".0")
	var lastErr error
	for _, layout := range epochLayouts {
		t, err := time.ParseInLocation(layout, s, time.UTC)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// applyPacking honours the CF _FillValue, missing_value, scale_factor and
// add_offset attributes.
func applyPacking(values []float64, attrs api.AttributeMap) {
	fills := []float64{}
	for _, key := range []string{"_FillValue", "missing_value"} {
		if f, ok := attrFloat(attrs, key); ok {
			fills = append(fills, f)
		}
	}
	scale, hasScale := attrFloat(attrs, "scale_factor")
	offset, hasOffset := attrFloat(attrs, "add_offset")
	for i, v := range values {
		for _, f := range fills {
			if v == f || (math.Abs(f) > 1e30 && math.Abs(v-f) <= math.Abs(f)*1e-6) {
				v = math.NaN()
				break
			}
		}
		if hasScale {
			v *= scale
		}
		if hasOffset {
			v += offset
		}
		values[i] = v
	}
}

func attrString(attrs api.AttributeMap, key string) (string, bool) {
	if attrs == nil {
		return "", false
	}
	v, ok := attrs.Get(key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func attrFloat(attrs api.AttributeMap, key string) (float64, bool) {
	if attrs == nil {
		return 0, false
	}
	v, ok := attrs.Get(key)
	if !ok {
		return 0, false
	}
	if s, isStr := v.(string); isStr {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		return f, err == nil
	}
	vals, err := flatten(v)
	if err != nil || len(vals) == 0 {
		return 0, false
	}
	return vals[0], true
}

// flatten walks nested slices of any numeric type into a flat []float64 in
// row-major order.
func flatten(v interface{}) ([]float64, error) {
	var out []float64
	var walk func(rv reflect.Value) error
	walk = func(rv reflect.Value) error {
		switch rv.Kind() {
		case reflect.Slice, reflect.Array:
			for i := 0; i < rv.Len(); i++ {
				if err := walk(rv.Index(i)); err != nil {
					return err
				}
			}
		case reflect.Float32, reflect.Float64:
			out = append(out, rv.Float())
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			out = append(out, float64(rv.Int()))
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			out = append(out, float64(rv.Uint()))
		case reflect.Interface, reflect.Ptr:
			if rv.IsNil() {
				return errors.New("nil value")
			}
			return walk(rv.Elem())
		default:
			return fmt.Errorf("unsupported value type %s", rv.Type())
		}
		return nil
	}
	if v == nil {
		return nil, errors.New("nil value")
	}
	if err := walk(reflect.ValueOf(v)); err != nil {
		return nil, err
	}
	return out, nil
}
