package main

import (
	"flag"
	"fmt"
	"image/color"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"lisflood-diag/internal/charts"
	"lisflood-diag/internal/config"
	"lisflood-diag/internal/export"
	"lisflood-diag/internal/mapstack"
	"lisflood-diag/internal/model"
	"lisflood-diag/internal/settings"
	"lisflood-diag/internal/tss"
)

func main() {
	log.SetFlags(0)
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "read":
		cmdRead(os.Args[2:])
	case "timing":
		cmdTiming(os.Args[2:])
	case "plot-map":
		cmdPlotMap(os.Args[2:])
	case "plot-reservoir":
		cmdPlotReservoir(os.Args[2:])
	case "plot-stacks":
		cmdPlotStacks(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Println("usage:")
	fmt.Println("  cli read --tss dis.tss [--settings settings.xml] [--csv out.csv | --xlsx out.xlsx]")
	fmt.Println("  cli timing --settings settings.xml")
	fmt.Println("  cli plot-map --nc pr.nc [--var pr] [--agg mean|sum] --out pr.png")
	fmt.Println("  cli plot-reservoir --inflow resIn.tss --outflow resOut.tss --filling resFill.tss [--id 102] --out res.png")
	fmt.Println("  cli plot-stacks --nc pr.nc,e0.nc,ta.nc [--rows 1] [--log] --out stacks.png")
	fmt.Println("")
	fmt.Println("notes:")
	fmt.Println("  - read, plot-map and plot-reservoir accept --config config.yaml for reader and chart defaults")
	fmt.Println("  - .gz and .zst inputs are decompressed on the fly (TSS and settings only)")
	fmt.Println("  - NetCDF variables may be selected per file as path.nc:variable")
}

func cmdRead(args []string) {
	fs := flag.NewFlagSet("read", flag.ExitOnError)
	cfgPath := fs.String("config", "", "Optional YAML config")
	tssPath := fs.String("tss", "", "Path to TSS file")
	settingsPath := fs.String("settings", "", "Optional settings XML for calendar timestamps")
	noSqueeze := fs.Bool("no-squeeze", false, "Always return a table, even for one column")
	missing := optionalFloat(fs, "missing", "Value to treat as missing (e.g. 1e31)")
	csvOut := fs.String("csv", "", "Write CSV to this path")
	xlsxOut := fs.String("xlsx", "", "Write XLSX to this path")
	sheet := fs.String("sheet", "", "XLSX sheet name (default Sheet1)")
	n := fs.Int("n", 10, "Rows to print when no output file is given")
	_ = fs.Parse(args)

	if *tssPath == "" {
		fmt.Println("--tss is required")
		os.Exit(2)
	}
	cfg := loadConfig(*cfgPath)

	opts := cfg.ReaderOptions()
	opts.Settings = *settingsPath
	if *noSqueeze {
		opts.Squeeze = false
	}
	if *missing != nil {
		opts.MissingValue = *missing
	}
	frame, err := tss.Read(*tssPath, opts)
	must(err)

	wrote := false
	if *csvOut != "" {
		must(ensureDir(*csvOut))
		must(export.WriteCSV(*csvOut, frame))
		fmt.Printf("Wrote %d rows to %s\n", frame.Len(), *csvOut)
		wrote = true
	}
	if *xlsxOut != "" {
		must(ensureDir(*xlsxOut))
		must(export.WriteXLSX(*xlsxOut, frame, *sheet))
		fmt.Printf("Wrote %d rows to %s\n", frame.Len(), *xlsxOut)
		wrote = true
	}
	if !wrote {
		printFrame(frame, *n)
	}
}

func cmdTiming(args []string) {
	fs := flag.NewFlagSet("timing", flag.ExitOnError)
	settingsPath := fs.String("settings", "", "Path to settings XML")
	_ = fs.Parse(args)

	if *settingsPath == "" {
		fmt.Println("--settings is required")
		os.Exit(2)
	}
	tm, err := settings.LoadTiming(*settingsPath)
	must(err)

	fmt.Printf("CalendarDayStart %s\n", tm.CalendarDayStart.Format("2006-01-02 15:04"))
	fmt.Printf("DtSec            %d\n", tm.DtSec)
	fmt.Printf("StepStart        %s\n", tm.StepStart.Format("2006-01-02 15:04"))
	fmt.Printf("StepEnd          %s\n", tm.StepEnd.Format("2006-01-02 15:04"))
	fmt.Printf("Steps            %d\n", tm.Steps())
}

func cmdPlotMap(args []string) {
	fs := flag.NewFlagSet("plot-map", flag.ExitOnError)
	cfgPath := fs.String("config", "", "Optional YAML config")
	ncPath := fs.String("nc", "", "Path to NetCDF map stack")
	variable := fs.String("var", "", "Variable name (default: the only 3-D variable)")
	agg := fs.String("agg", "mean", "Temporal aggregate for the map: mean or sum")
	cmap := fs.String("cmap", "", "Colour map (default from config)")
	label := fs.String("label", "", "Colour bar and y axis label")
	lineColor := fs.String("color", "", "Line colour as #rrggbb")
	ylim := optionalRange(fs, "ylim", "Y axis limits as min,max")
	outPath := fs.String("out", "map.png", "Output image (png, svg, pdf)")
	_ = fs.Parse(args)

	if *ncPath == "" {
		fmt.Println("--nc is required")
		os.Exit(2)
	}
	cfg := loadConfig(*cfgPath)

	a, err := mapstack.ParseAgg(*agg)
	must(err)
	s, err := mapstack.Open(*ncPath, *variable)
	must(err)

	opts := cfg.MapOptions()
	opts.Agg = a
	opts.Label = *label
	opts.YLim = *ylim
	if *cmap != "" {
		opts.Cmap = *cmap
	}
	if *lineColor != "" {
		c, err := parseHexColor(*lineColor)
		must(err)
		opts.Color = c
	}
	fig, err := charts.MapTimeSeries(s, opts)
	must(err)
	save(fig, *outPath)
}

func cmdPlotReservoir(args []string) {
	fs := flag.NewFlagSet("plot-reservoir", flag.ExitOnError)
	cfgPath := fs.String("config", "", "Optional YAML config")
	inflow := fs.String("inflow", "", "TSS of reservoir inflow (m3/s)")
	outflow := fs.String("outflow", "", "TSS of reservoir outflow (m3/s)")
	filling := fs.String("filling", "", "TSS of relative reservoir filling (-)")
	id := fs.String("id", "", "Reservoir column (optional when each file holds one reservoir)")
	settingsPath := fs.String("settings", "", "Optional settings XML for calendar timestamps")
	clim := optionalFloat(fs, "clim", "Conservative filling limit (0-1)")
	nlim := optionalFloat(fs, "nlim", "Normal filling limit (0-1)")
	flim := optionalFloat(fs, "flim", "Flood filling limit (0-1)")
	flowMax := fs.Float64("flow-max", 0, "Upper flow axis limit (0=config default, <0=automatic)")
	outPath := fs.String("out", "reservoir.png", "Output image (png, svg, pdf)")
	_ = fs.Parse(args)

	if *inflow == "" || *outflow == "" || *filling == "" {
		fmt.Println("--inflow, --outflow and --filling are required")
		os.Exit(2)
	}
	cfg := loadConfig(*cfgPath)

	opts := cfg.ReaderOptions()
	opts.Settings = *settingsPath
	table, err := tss.ReadReservoir(tss.ReservoirFiles{Inflow: *inflow, Outflow: *outflow, Filling: *filling}, *id, opts)
	must(err)

	ropts := cfg.ReservoirOptions()
	for _, o := range []struct {
		flag **float64
		dst  **float64
	}{{clim, &ropts.Conservative}, {nlim, &ropts.Normal}, {flim, &ropts.Flood}} {
		if *o.flag != nil {
			*o.dst = *o.flag
		}
	}
	if *flowMax != 0 {
		ropts.FlowMax = *flowMax
	}
	fig, err := charts.Reservoir(table, ropts)
	must(err)
	save(fig, *outPath)
}

func cmdPlotStacks(args []string) {
	fs := flag.NewFlagSet("plot-stacks", flag.ExitOnError)
	ncPaths := fs.String("nc", "", "Comma-separated NetCDF files, each optionally path:variable")
	rows := fs.Int("rows", 1, "Rows of maps")
	agg := fs.String("agg", "mean", "Spatial aggregate for the time series: mean or sum")
	ylabel := fs.String("ylabel", "", "Time series y label (units are appended)")
	vmin := optionalFloat(fs, "vmin", "Colour scale minimum")
	vmax := optionalFloat(fs, "vmax", "Colour scale maximum")
	ylim := optionalRange(fs, "ylim", "Y axis limits as min,max")
	logY := fs.Bool("log", false, "Logarithmic y axis")
	outPath := fs.String("out", "stacks.png", "Output image (png, svg, pdf)")
	_ = fs.Parse(args)

	specs := splitPaths(*ncPaths)
	if len(specs) == 0 {
		fmt.Println("--nc is required")
		os.Exit(2)
	}
	a, err := mapstack.ParseAgg(*agg)
	must(err)

	stacks := make([]*mapstack.Stack, 0, len(specs))
	for _, spec := range specs {
		path, variable := splitVariable(spec)
		s, err := mapstack.Open(path, variable)
		must(err)
		stacks = append(stacks, s)
	}
	fig, err := charts.MapStacks(stacks, charts.StacksOptions{
		Agg:    a,
		Rows:   *rows,
		YLabel: *ylabel,
		VMin:   *vmin,
		VMax:   *vmax,
		YLim:   *ylim,
		LogY:   *logY,
	})
	must(err)
	save(fig, *outPath)
}

func loadConfig(path string) *config.Config {
	if path == "" {
		return config.Default()
	}
	cfg, err := config.Load(path)
	must(err)
	return cfg
}

func save(fig *charts.Figure, path string) {
	must(ensureDir(path))
	must(fig.Save(path))
	fmt.Printf("Wrote %s\n", path)
}

func printFrame(f model.Frame, n int) {
	fmt.Printf("%-22s", export.IndexHeader(f))
	for _, name := range f.Names() {
		fmt.Printf(" %12s", name)
	}
	fmt.Println()
	ix := f.RowIndex()
	rows := f.Len()
	if n > 0 && n < rows {
		rows = n
	}
	for i := 0; i < rows; i++ {
		fmt.Printf("%-22s", ix.Label(i))
		for _, v := range model.Row(f, i) {
			fmt.Printf(" %12.4f", v)
		}
		fmt.Println()
	}
	if rows < f.Len() {
		fmt.Printf("... %d more rows\n", f.Len()-rows)
	}
}

func must(err error) {
	if err != nil {
		log.Fatalf("error: %v", err)
	}
}

// ensure output dir exists
func ensureDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}

func splitPaths(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// splitVariable splits "file.nc:var". A colon inside a Windows drive letter
// is left alone.
func splitVariable(spec string) (string, string) {
	i := strings.LastIndex(spec, ":")
	if i <= 1 || strings.ContainsAny(spec[i+1:], `/\`) {
		return spec, ""
	}
	return spec[:i], spec[i+1:]
}

// optionalFloat registers a float flag that stays nil unless given.
func optionalFloat(fs *flag.FlagSet, name, usage string) **float64 {
	p := new(*float64)
	fs.Func(name, usage, func(s string) error {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return err
		}
		*p = &v
		return nil
	})
	return p
}

// optionalRange registers a "min,max" flag that stays nil unless given.
func optionalRange(fs *flag.FlagSet, name, usage string) **charts.Range {
	p := new(*charts.Range)
	fs.Func(name, usage, func(s string) error {
		lo, hi, ok := strings.Cut(s, ",")
		if !ok {
			return fmt.Errorf("expected min,max, got %q", s)
		}
		r := &charts.Range{}
		var err error
		if r.Min, err = strconv.ParseFloat(strings.TrimSpace(lo), 64); err != nil {
			return err
		}
		if r.Max, err = strconv.ParseFloat(strings.TrimSpace(hi), 64); err != nil {
			return err
		}
		*p = r
		return nil
	})
	return p
}

func parseHexColor(s string) (color.Color, error) {
	v, err := strconv.ParseUint(strings.TrimPrefix(s, "#"), 16, 32)
	if err != nil || len(strings.TrimPrefix(s, "#")) != 6 {
		return nil, fmt.Errorf("invalid colour %q (want #rrggbb)", s)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
}
