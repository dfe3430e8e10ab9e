package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"lisflood-diag/internal/charts"
	"lisflood-diag/internal/export"
	"lisflood-diag/internal/mapstack"
	"lisflood-diag/internal/model"
	"lisflood-diag/internal/settings"
	"lisflood-diag/internal/tss"
)

const demoSettings = `<?xml version="1.0" encoding="UTF-8"?>
<lfsettings>
<lfuser>
<textvar name="CalendarDayStart" value="01/01/2000 00:00"/>
<textvar name="DtSec" value="86400"/>
<textvar name="StepStart" value="1"/>
<textvar name="StepEnd" value="%d"/>
</lfuser>
</lfsettings>
`

// Demo:
// - Write a synthetic LISFLOOD run (settings.xml plus reservoir TSS files)
// - Read it back with calendar timestamps
// - Render the reservoir, map/time-series and map stack charts
func main() {
	outDir := flag.String("out", "results/demo", "Directory for the synthetic run and charts")
	days := flag.Int("days", 365, "Number of daily steps to simulate")
	flag.Parse()

	if *days < 2 {
		fmt.Println("--days must be at least 2")
		os.Exit(2)
	}
	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		panic(err)
	}
	path := func(name string) string { return filepath.Join(*outDir, name) }

	if err := os.WriteFile(path("settings.xml"), []byte(fmt.Sprintf(demoSettings, *days)), 0o644); err != nil {
		panic(err)
	}
	tm, err := settings.LoadTiming(path("settings.xml"))
	if err != nil {
		panic(err)
	}
	fmt.Printf("Simulation %s .. %s (%d steps)\n",
		tm.StepStart.Format("2006-01-02"), tm.StepEnd.Format("2006-01-02"), tm.Steps())

	// Reservoir run
	in, out, fill := reservoirRun(*days)
	steps := make([]float64, *days)
	for i := range steps {
		steps[i] = float64(i + 1)
	}
	for name, vals := range map[string][]float64{"resIn.tss": in, "resOut.tss": out, "resFill.tss": fill} {
		s := &model.Series{Name: "1", Index: model.StepIndex(steps), Values: vals}
		if err := tss.Write(path(name), "timeseries scalar settings.xml", s); err != nil {
			panic(err)
		}
	}
	table, err := tss.ReadReservoir(tss.ReservoirFiles{
		Inflow:  path("resIn.tss"),
		Outflow: path("resOut.tss"),
		Filling: path("resFill.tss"),
	}, "", &tss.Options{Timing: tm})
	if err != nil {
		panic(err)
	}
	if err := export.WriteCSV(path("reservoir.csv"), table); err != nil {
		panic(err)
	}
	clim, nlim, flim := 0.1, 0.5, 0.95
	fig, err := charts.Reservoir(table, charts.ReservoirOptions{
		Conservative: &clim,
		Normal:       &nlim,
		Flood:        &flim,
		FlowMax:      -1,
	})
	if err != nil {
		panic(err)
	}
	save(fig, path("reservoir.png"))

	// Map stacks
	times, err := settings.DateRange(tm.StepStart, tm.StepEnd, tm.Step())
	if err != nil {
		panic(err)
	}
	pr := syntheticStack("pr", "mm/day", times, 4, 0)
	e0 := syntheticStack("e0", "mm/day", times, 2.5, math.Pi/2)
	ta := syntheticStack("ta", "mm/day", times, 1, math.Pi)

	fig, err = charts.MapTimeSeries(pr, charts.MapOptions{Label: "precipitation (mm/day)", Cmap: "blues"})
	if err != nil {
		panic(err)
	}
	save(fig, path("pr.png"))

	fig, err = charts.MapStacks([]*mapstack.Stack{pr, e0, ta}, charts.StacksOptions{YLabel: "flux"})
	if err != nil {
		panic(err)
	}
	save(fig, path("stacks.png"))
}

// reservoirRun is a toy seasonal reservoir: a sinusoidal inflow, outflow
// that follows the filling, and a mass balance on a 500 hm3 storage.
func reservoirRun(days int) (in, out, fill []float64) {
	const capacity = 500e6 // m3
	storage := 0.5 * capacity
	in = make([]float64, days)
	out = make([]float64, days)
	fill = make([]float64, days)
	for i := 0; i < days; i++ {
		season := math.Sin(2 * math.Pi * float64(i) / 365)
		in[i] = 800 + 600*season
		f := storage / capacity
		out[i] = 300 + 900*math.Max(f-0.3, 0)
		storage = math.Min(math.Max(storage+(in[i]-out[i])*86400, 0), capacity)
		fill[i] = storage / capacity
	}
	return in, out, fill
}

func syntheticStack(name, units string, times []time.Time, amp, phase float64) *mapstack.Stack {
	lat := []float64{14, 13.5, 13, 12.5, 12, 11.5}
	lon := []float64{104, 104.5, 105, 105.5, 106}
	values := make([]float64, 0, len(times)*len(lat)*len(lon))
	for t := range times {
		season := 1 + math.Sin(2*math.Pi*float64(t)/365+phase)
		for i := range lat {
			for j := range lon {
				gradient := 1 + 0.1*float64(i) + 0.05*float64(j)
				values = append(values, amp*season*gradient)
			}
		}
	}
	s, err := mapstack.New(name, units, times, lat, lon, values)
	if err != nil {
		panic(err)
	}
	return s
}

func save(fig *charts.Figure, path string) {
	if err := fig.Save(path); err != nil {
		panic(err)
	}
	fmt.Printf("Wrote %s\n", path)
}
