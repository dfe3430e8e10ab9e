package charts

import (
	"fmt"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"lisflood-diag/internal/mapstack"
	"lisflood-diag/internal/model"
)

// StacksOptions configures MapStacks.
type StacksOptions struct {
	Agg    mapstack.Agg // spatial aggregate for the time series; default mean
	Rows   int          // map rows; default 1
	YLabel string
	VMin   *float64 // shared colour scale lower bound
	VMax   *float64
	YLim   *Range
	LogY   bool
	Width  float64 // inches; default 5 per map column
	Height float64 // inches; default 8 per map row
}

// MapStacks draws the time mean of each stack as its own map, in a grid of
// opts.Rows rows, above one panel holding the spatial aggregate of every
// stack over time. Stacks are expected to share units and time axis; the
// first stack provides both for the time panel.
func MapStacks(stacks []*mapstack.Stack, opts StacksOptions) (*Figure, error) {
	if len(stacks) == 0 {
		return nil, fmt.Errorf("%w: no map stacks", ErrInput)
	}
	agg := opts.Agg
	if agg == "" {
		agg = mapstack.Mean
	}
	nrows := opts.Rows
	if nrows <= 0 {
		nrows = 1
	}
	ncols := int(math.Ceil(float64(len(stacks)) / float64(nrows)))
	if len(stacks) < nrows {
		nrows = 1
		ncols = len(stacks)
	}

	maps := make([]*plot.Plot, len(stacks))
	bars := make([]*plot.Plot, len(stacks))
	ts := plot.New()
	ts.Legend.Top = true
	lines := 0
	for i, s := range stacks {
		if s == nil {
			return nil, fmt.Errorf("%w: map stack %d is nil", ErrInput, i)
		}
		if err := s.Validate(); err != nil {
			return nil, err
		}
		field := s.MeanTime()
		mp, cm, err := mapPlot(field, stackCmaps[i%len(stackCmaps)], vlimits(field, opts.VMin, opts.VMax), s.Name)
		if err != nil {
			return nil, err
		}
		maps[i] = mp
		bars[i] = colorBarPlot(cm, s.Units)

		series, err := s.AggregateSpace(agg)
		if err != nil {
			return nil, err
		}
		pts := seriesXY(series, opts.LogY)
		if len(pts) == 0 {
			continue
		}
		l, err := newLine(pts, seriesColor(i), 0.7)
		if err != nil {
			return nil, fmt.Errorf("time series %s: %w", s.Name, err)
		}
		ts.Add(l)
		ts.Legend.Add(s.Name, l)
		lines++
	}

	first := stacks[0]
	useTimeAxis(ts, model.TimeIndex(first.Times))
	ts.X.Min = float64(first.Times[0].Unix())
	ts.X.Max = float64(first.Times[len(first.Times)-1].Unix())
	ts.Y.Label.Text = fmt.Sprintf("%s [%s]", opts.YLabel, first.Units)
	if opts.LogY {
		if lines == 0 {
			return nil, fmt.Errorf("%w: no positive values for a log scale", ErrInput)
		}
		if opts.YLim != nil && opts.YLim.Min <= 0 {
			return nil, fmt.Errorf("%w: log scale needs a positive y limit, got %g", ErrInput, opts.YLim.Min)
		}
		ts.Y.Scale = plot.LogScale{}
		ts.Y.Tick.Marker = plot.LogTicks{Prec: -1}
	}
	applyRange(&ts.Y, opts.YLim)

	return &Figure{
		Width:  inches(opts.Width, 5*float64(ncols)),
		Height: inches(opts.Height, 8*float64(nrows)),
		draw: func(dc draw.Canvas) {
			rows := float64(nrows + 1)
			for i := range maps {
				r, c := i/ncols, i%ncols
				x0, x1 := float64(c)/float64(ncols), float64(c+1)/float64(ncols)
				top := 1 - float64(r)/rows
				cell := region(dc, x0, x1, top-1/rows, top)
				maps[i].Draw(region(cell, 0, 1, 0.15, 1))
				bars[i].Draw(region(cell, 0.05, 0.95, 0, 0.15))
			}
			ts.Draw(draw.Crop(region(dc, 0, 1, 0, 1/rows), vg.Points(4), -vg.Points(4), 0, 0))
		},
	}, nil
}

// vlimits returns the colour scale for f with vmin/vmax overriding the
// data range on their own side.
func vlimits(f *mapstack.Field, vmin, vmax *float64) *Range {
	if vmin == nil && vmax == nil {
		return nil
	}
	lo, hi := f.Range()
	if vmin != nil {
		lo = *vmin
	}
	if vmax != nil {
		hi = *vmax
	}
	return &Range{Min: lo, Max: hi}
}
