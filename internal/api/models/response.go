package models

import "time"

// TimingResponse describes the simulation clock of a settings file
type TimingResponse struct {
	CalendarDayStart time.Time `json:"calendar_day_start"`
	DtSec            int       `json:"dt_sec"`
	StepStart        time.Time `json:"step_start"`
	StepEnd          time.Time `json:"step_end"`
	Steps            int       `json:"steps"`
}

// TimeSeriesResponse is a TSS file as JSON
type TimeSeriesResponse struct {
	Index   string          `json:"index"` // "time" or "step"
	Columns []string        `json:"columns"`
	Rows    []TimeSeriesRow `json:"rows"`
	Count   int             `json:"count"` // rows in the file, before any limit
}

// TimeSeriesRow is one row; missing values are null
type TimeSeriesRow struct {
	Index  string     `json:"index"`
	Values []*float64 `json:"values"`
}

// MapStackResponse summarises a NetCDF map stack
type MapStackResponse struct {
	Name   string        `json:"name"`
	Units  string        `json:"units"`
	Agg    string        `json:"agg"`
	Shape  [3]int        `json:"shape"` // time, lat, lon
	Lat    []float64     `json:"lat"`
	Lon    []float64     `json:"lon"`
	Min    *float64      `json:"min"` // range of the temporal aggregate
	Max    *float64      `json:"max"`
	Series []SeriesPoint `json:"series"` // spatial aggregate over time
}

// SeriesPoint is one timestamped value; missing values are null
type SeriesPoint struct {
	Time  time.Time `json:"time"`
	Value *float64  `json:"value"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}
