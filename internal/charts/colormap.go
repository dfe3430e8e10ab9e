package charts

import (
	"fmt"
	"image/color"
	"math"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"

	"lisflood-diag/internal/mapstack"
)

const paletteSize = 255

// single-hue ramps, darkest first (luminance must increase)
var ramps = map[string][]color.Color{
	"blues":   {rgb(8, 48, 107), rgb(66, 146, 198), rgb(247, 251, 255)},
	"greens":  {rgb(0, 68, 27), rgb(65, 171, 93), rgb(247, 252, 245)},
	"reds":    {rgb(103, 0, 13), rgb(239, 59, 44), rgb(255, 245, 240)},
	"purples": {rgb(63, 0, 125), rgb(128, 125, 186), rgb(252, 251, 253)},
	"oranges": {rgb(127, 39, 4), rgb(241, 105, 19), rgb(255, 245, 235)},
	"greys":   {rgb(0, 0, 0), rgb(115, 115, 115), rgb(255, 255, 255)},
}

// stackCmaps is the colour map sequence for MapStacks panels.
var stackCmaps = []string{"blues", "greens", "reds", "purples", "oranges", "greys"}

func rgb(r, g, b uint8) color.Color { return color.RGBA{R: r, G: g, B: b, A: 255} }

// ColorMap resolves a colour map name. Single-hue ramps go from light (low)
// to dark (high).
func ColorMap(name string) (palette.ColorMap, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	switch key {
	case "", "viridis", "kindlmann":
		return moreland.ExtendedKindlmann(), nil
	case "blackbody", "inferno":
		return moreland.ExtendedBlackBody(), nil
	case "coolwarm", "bluered", "rdbu":
		return moreland.SmoothBlueRed(), nil
	}
	if controls, ok := ramps[key]; ok {
		cm, err := moreland.NewLuminance(controls)
		if err != nil {
			return nil, err
		}
		return palette.Reverse(cm), nil
	}
	return nil, fmt.Errorf("%w: unknown colour map %q", ErrInput, name)
}

// fieldGrid adapts a mapstack.Field to plotter.GridXYZ with both axes
// ascending, whatever order the file stored them in.
type fieldGrid struct {
	f            *mapstack.Field
	flipY, flipX bool
}

func newFieldGrid(f *mapstack.Field) fieldGrid {
	return fieldGrid{
		f:     f,
		flipY: len(f.Lat) > 1 && f.Lat[0] > f.Lat[len(f.Lat)-1],
		flipX: len(f.Lon) > 1 && f.Lon[0] > f.Lon[len(f.Lon)-1],
	}
}

func (g fieldGrid) Dims() (c, r int) { return len(g.f.Lon), len(g.f.Lat) }

func (g fieldGrid) row(r int) int {
	if g.flipY {
		return len(g.f.Lat) - 1 - r
	}
	return r
}

func (g fieldGrid) col(c int) int {
	if g.flipX {
		return len(g.f.Lon) - 1 - c
	}
	return c
}

func (g fieldGrid) Z(c, r int) float64 { return g.f.At(g.row(r), g.col(c)) }
func (g fieldGrid) X(c int) float64    { return g.f.Lon[g.col(c)] }
func (g fieldGrid) Y(r int) float64    { return g.f.Lat[g.row(r)] }

// mapPlot draws a field as a heat map with axes hidden. vmin/vmax override
// the data range when set.
func mapPlot(f *mapstack.Field, cmap string, limits *Range, title string) (*plot.Plot, palette.ColorMap, error) {
	if len(f.Lat) < 2 || len(f.Lon) < 2 {
		return nil, nil, fmt.Errorf("%w: map %s needs at least 2×2 cells, got %d×%d", ErrInput, f.Name, len(f.Lat), len(f.Lon))
	}
	cm, err := ColorMap(cmap)
	if err != nil {
		return nil, nil, err
	}

	lo, hi := f.Range()
	if limits != nil {
		lo, hi = limits.Min, limits.Max
	}
	if math.IsNaN(lo) || math.IsNaN(hi) {
		lo, hi = 0, 1
	}
	if hi <= lo {
		lo, hi = lo-0.5, hi+0.5
	}
	cm.SetMin(lo)
	cm.SetMax(hi)

	hm := plotter.NewHeatMap(newFieldGrid(f), cm.Palette(paletteSize))
	hm.Min, hm.Max = lo, hi
	hm.NaN = color.Transparent
	hm.Underflow = hm.Palette.Colors()[0]
	hm.Overflow = hm.Palette.Colors()[paletteSize-1]

	p := plot.New()
	p.Title.Text = title
	p.Add(hm)
	p.HideAxes()
	return p, cm, nil
}

func colorBarPlot(cm palette.ColorMap, label string) *plot.Plot {
	p := plot.New()
	p.Add(&plotter.ColorBar{ColorMap: cm, Colors: paletteSize})
	p.HideY()
	p.X.Label.Text = label
	return p
}
