package tss

import (
	"fmt"

	"lisflood-diag/internal/model"
	"lisflood-diag/internal/settings"
)

// ReservoirFiles names the three TSS outputs LISFLOOD writes for reservoirs
// (typically resIn.tss, resOut.tss and resFill.tss). Each holds one column
// per reservoir.
type ReservoirFiles struct {
	Inflow  string
	Outflow string
	Filling string
}

// ReadReservoir reads the column id from each reservoir file and joins them
// into a table with inflow, outflow and filling columns. An empty id is
// allowed when every file holds a single reservoir. The files must share
// the same step column; calendar timestamps from opts replace it after the
// join.
func ReadReservoir(files ReservoirFiles, id string, opts *Options) (*model.Table, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	tm := opts.Timing
	if tm == nil && opts.Settings != "" {
		var err error
		if tm, err = settings.LoadTiming(opts.Settings); err != nil {
			return nil, err
		}
	}
	o := Options{MissingValue: opts.MissingValue}

	parts := []struct{ name, path string }{
		{"inflow", files.Inflow},
		{"outflow", files.Outflow},
		{"filling", files.Filling},
	}
	series := make([]*model.Series, 0, len(parts))
	for _, p := range parts {
		f, err := Read(p.path, &o)
		if err != nil {
			return nil, err
		}
		s, err := model.Pick(f, id)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p.path, err)
		}
		series = append(series, &model.Series{Name: p.name, Index: s.Index, Values: s.Values})
	}
	t, err := model.Join(series...)
	if err != nil {
		return nil, err
	}
	if tm != nil {
		if t.Index, err = timeIndex(tm, t.Len()); err != nil {
			return nil, fmt.Errorf("%s: %w", files.Inflow, err)
		}
	}
	return t, nil
}
