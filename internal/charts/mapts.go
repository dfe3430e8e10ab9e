package charts

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg/draw"

	"lisflood-diag/internal/mapstack"
)

// MapOptions configures MapTimeSeries. Zero values fall back to the
// defaults noted on each field.
type MapOptions struct {
	Agg       mapstack.Agg // temporal aggregate for the map; default mean
	Cmap      string       // default "viridis"
	Label     string       // colour bar and y label; default stack name
	LineWidth float64      // points; default 1
	Color     color.Color  // time series colour; default royalblue
	XLim      *Range       // unix seconds
	YLim      *Range
	Width     float64 // inches; default 12
	Height    float64 // inches; default 4
}

// MapTimeSeries lays out the temporal aggregate of a stack as a map (left
// third) next to its spatial mean time series (right two thirds).
func MapTimeSeries(s *mapstack.Stack, opts MapOptions) (*Figure, error) {
	if s == nil {
		return nil, fmt.Errorf("%w: nil map stack", ErrInput)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	agg := opts.Agg
	if agg == "" {
		agg = mapstack.Mean
	}
	field, err := s.AggregateTime(agg)
	if err != nil {
		return nil, err
	}
	label := opts.Label
	if label == "" {
		label = s.Name
	}

	mp, cm, err := mapPlot(field, opts.Cmap, nil, "")
	if err != nil {
		return nil, err
	}
	cb := colorBarPlot(cm, label)

	lw := opts.LineWidth
	if lw <= 0 {
		lw = 1
	}
	c := opts.Color
	if c == nil {
		c = seriesColor(0)
	}
	mean := s.MeanSpace()
	line, err := newLine(seriesXY(mean, false), c, lw)
	if err != nil {
		return nil, fmt.Errorf("time series %s: %w", s.Name, err)
	}
	ts := plot.New()
	ts.Add(line)
	useTimeAxis(ts, mean.Index)
	if opts.Label != "" {
		ts.Y.Label.Text = opts.Label
	}
	applyRange(&ts.X, opts.XLim)
	applyRange(&ts.Y, opts.YLim)

	return &Figure{
		Width:  inches(opts.Width, 12),
		Height: inches(opts.Height, 4),
		draw: func(dc draw.Canvas) {
			mp.Draw(region(dc, 0, 1.0/3, 0.2, 1))
			cb.Draw(region(dc, 0.02, 1.0/3-0.02, 0, 0.2))
			ts.Draw(region(dc, 1.0/3, 1, 0, 1))
		},
	}, nil
}
