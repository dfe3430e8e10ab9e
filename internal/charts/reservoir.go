package charts

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"lisflood-diag/internal/model"
)

// Column names LISFLOOD uses in reservoir output tables.
const (
	ColInflow  = "inflow"
	ColOutflow = "outflow"
	ColFilling = "filling"
)

// ReservoirOptions configures Reservoir. Each limit is a relative filling
// (0..1) and is drawn only when set.
type ReservoirOptions struct {
	Conservative *float64
	Normal       *float64
	Flood        *float64
	FlowMax      float64 // upper flow axis limit in m3/s; default 5000, negative means automatic
	Width        float64 // inches; default 16
	Height       float64 // inches; default 4
}

// Reservoir plots inflow and outflow above the relative filling of a
// reservoir, with the conservative, normal and flood limits as reference
// lines. The two panels share the time axis.
func Reservoir(t *model.Table, opts ReservoirOptions) (*Figure, error) {
	if t == nil || t.Len() == 0 {
		return nil, fmt.Errorf("%w: empty reservoir table", ErrInput)
	}
	cols := make(map[string]*model.Series, 3)
	for _, name := range []string{ColInflow, ColOutflow, ColFilling} {
		s, err := t.Column(name)
		if err != nil {
			return nil, fmt.Errorf("%w: reservoir table: %v", ErrInput, err)
		}
		cols[name] = s
	}
	xmin, xmax := t.Index.X(0), t.Index.X(t.Len()-1)

	flow := plot.New()
	flow.Y.Label.Text = "flow (m3/s)"
	flow.Legend.Top = true
	useTimeAxis(flow, t.Index)
	for i, name := range []string{ColInflow, ColOutflow} {
		l, err := newLine(seriesXY(cols[name], false), seriesColor(i), 1)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		flow.Add(l)
		flow.Legend.Add(name, l)
	}
	flow.X.Min, flow.X.Max = xmin, xmax
	switch {
	case opts.FlowMax == 0:
		flow.Y.Min, flow.Y.Max = 0, 5000
	case opts.FlowMax > 0:
		flow.Y.Min, flow.Y.Max = 0, opts.FlowMax
	}

	fill := plot.New()
	fill.Y.Label.Text = "relative filling (-)"
	fill.Legend.Top = true
	useTimeAxis(fill, t.Index)
	area, err := newLine(seriesXY(cols[ColFilling], false), color.RGBA{R: 128, G: 128, B: 128, A: 255}, 0.5)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ColFilling, err)
	}
	area.FillColor = color.NRGBA{R: 128, G: 128, B: 128, A: 40}
	fill.Add(area)
	fill.Legend.Add(ColFilling, area)

	limits := []struct {
		label  string
		value  *float64
		dashes []vg.Length
	}{
		{"conservative fil.", opts.Conservative, []vg.Length{vg.Points(1), vg.Points(2)}},
		{"normal fil.", opts.Normal, []vg.Length{vg.Points(5), vg.Points(3)}},
		{"flood fil.", opts.Flood, nil},
	}
	for _, lim := range limits {
		if lim.value == nil {
			continue
		}
		l, err := newLine(plotter.XYs{{X: xmin, Y: *lim.value}, {X: xmax, Y: *lim.value}}, color.Black, 0.5)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", lim.label, err)
		}
		l.LineStyle.Dashes = lim.dashes
		fill.Add(l)
		fill.Legend.Add(lim.label, l)
	}
	fill.X.Min, fill.X.Max = xmin, xmax
	fill.Y.Min, fill.Y.Max = 0, 1

	return &Figure{
		Width:  inches(opts.Width, 16),
		Height: inches(opts.Height, 4),
		draw: func(dc draw.Canvas) {
			panels := plot.Align([][]*plot.Plot{{flow}, {fill}}, draw.Tiles{Rows: 2, Cols: 1, PadY: vg.Points(4)}, dc)
			flow.Draw(panels[0][0])
			fill.Draw(panels[1][0])
		},
	}, nil
}
