// Package charts renders the diagnostic figures: aggregated maps next to
// time series, reservoir behaviour, and multi-variable map stack overviews.
package charts

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"lisflood-diag/internal/model"
)

var ErrInput = errors.New("invalid chart input")

// Range is an optional axis limit.
type Range struct {
	Min, Max float64
}

// Figure is a rendered layout waiting to be written out.
type Figure struct {
	Width, Height vg.Length
	draw          func(dc draw.Canvas)
}

// Render draws the figure in format (png, svg, pdf, jpg, eps, tif).
func (f *Figure) Render(w io.Writer, format string) error {
	c, err := draw.NewFormattedCanvas(f.Width, f.Height, strings.ToLower(format))
	if err != nil {
		return err
	}
	f.draw(draw.New(c))
	_, err = c.WriteTo(w)
	return err
}

// Save writes the figure to path, picking the format from the extension.
func (f *Figure) Save(path string) error {
	format := strings.TrimPrefix(filepath.Ext(path), ".")
	if format == "" {
		return fmt.Errorf("%w: %s has no file extension", ErrInput, path)
	}
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := f.Render(out, format); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func inches(v, def float64) vg.Length {
	if v <= 0 {
		v = def
	}
	return vg.Length(v) * vg.Inch
}

// region crops dc to the given fractions of its width and height, measured
// from the bottom-left corner.
func region(dc draw.Canvas, x0, x1, y0, y1 float64) draw.Canvas {
	w := dc.Max.X - dc.Min.X
	h := dc.Max.Y - dc.Min.Y
	return draw.Crop(dc,
		vg.Length(x0)*w, -vg.Length(1-x1)*w,
		vg.Length(y0)*h, -vg.Length(1-y1)*h)
}

// Named line colours, in the order used when several series share a panel.
var seriesColors = []color.Color{
	color.RGBA{R: 65, G: 105, B: 225, A: 255},  // royalblue
	color.RGBA{R: 34, G: 139, B: 34, A: 255},   // forestgreen
	color.RGBA{R: 178, G: 34, B: 34, A: 255},   // firebrick
	color.RGBA{R: 128, G: 0, B: 128, A: 255},   // purple
	color.RGBA{R: 255, G: 165, B: 0, A: 255},   // orange
	color.RGBA{R: 128, G: 128, B: 128, A: 255}, // grey
}

func seriesColor(i int) color.Color { return seriesColors[i%len(seriesColors)] }

// seriesXY converts a series to plot points, dropping NaN values and, for
// log axes, non-positive ones.
func seriesXY(s *model.Series, logY bool) plotter.XYs {
	pts := make(plotter.XYs, 0, s.Len())
	for i, v := range s.Values {
		if math.IsNaN(v) || math.IsInf(v, 0) || (logY && v <= 0) {
			continue
		}
		pts = append(pts, plotter.XY{X: s.Index.X(i), Y: v})
	}
	return pts
}

func newLine(pts plotter.XYs, c color.Color, width float64) (*plotter.Line, error) {
	l, err := plotter.NewLine(pts)
	if err != nil {
		return nil, err
	}
	l.LineStyle.Color = c
	l.LineStyle.Width = vg.Points(width)
	return l, nil
}

func useTimeAxis(p *plot.Plot, ix model.Index) {
	if ix.IsTime() {
		p.X.Tick.Marker = plot.TimeTicks{Format: "2006-01-02"}
	}
}

func applyRange(ax *plot.Axis, r *Range) {
	if r == nil {
		return
	}
	ax.Min, ax.Max = r.Min, r.Max
}
