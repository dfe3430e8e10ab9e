package models

// TimingRequest is the query of GET /api/v1/timing
type TimingRequest struct {
	Settings string `form:"settings" binding:"required"` // settings XML, relative to the data dir
}

// TimeSeriesRequest is the query of GET /api/v1/timeseries
type TimeSeriesRequest struct {
	Path     string `form:"path" binding:"required"` // TSS file, relative to the data dir
	Settings string `form:"settings,omitempty"`     // optional settings XML for calendar timestamps
	Squeeze  *bool  `form:"squeeze,omitempty"`      // default: reader config
	Limit    int    `form:"limit,omitempty"`        // 0 = all rows
}

// MapStackRequest is the query of GET /api/v1/mapstack
type MapStackRequest struct {
	Path     string `form:"path" binding:"required"` // NetCDF file, relative to the data dir
	Variable string `form:"variable,omitempty"`     // default: the only 3-D variable
	Agg      string `form:"agg,omitempty"`          // "mean" (default) or "sum"
}

// ReservoirPlotRequest is the query of GET /api/v1/plots/reservoir
type ReservoirPlotRequest struct {
	Inflow   string   `form:"inflow" binding:"required"`
	Outflow  string   `form:"outflow" binding:"required"`
	Filling  string   `form:"filling" binding:"required"`
	ID       string   `form:"id,omitempty"` // reservoir column; may be empty for single-reservoir files
	Settings string   `form:"settings,omitempty"`
	CLim     *float64 `form:"clim,omitempty"`
	NLim     *float64 `form:"nlim,omitempty"`
	FLim     *float64 `form:"flim,omitempty"`
	FlowMax  float64  `form:"flow_max,omitempty"`
	Format   string   `form:"format,omitempty"` // png (default), svg, pdf
}

// MapPlotRequest is the query of GET /api/v1/plots/map
type MapPlotRequest struct {
	Path     string `form:"path" binding:"required"`
	Variable string `form:"variable,omitempty"`
	Agg      string `form:"agg,omitempty"`
	Cmap     string `form:"cmap,omitempty"`
	Label    string `form:"label,omitempty"`
	Format   string `form:"format,omitempty"`
}
