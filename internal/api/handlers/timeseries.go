package handlers

import (
	"net/http"

	"lisflood-diag/internal/api/models"
	"lisflood-diag/internal/export"
	"lisflood-diag/internal/model"
	"lisflood-diag/internal/tss"

	"github.com/gin-gonic/gin"
)

// GetTimeSeries handles GET /api/v1/timeseries
func (h *Handler) GetTimeSeries(c *gin.Context) {
	var req models.TimeSeriesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c, "INVALID_REQUEST", err)
		return
	}
	if err := h.resolveAll(&req.Path, &req.Settings); err != nil {
		h.respondError(c, err)
		return
	}

	opts := h.cfg.ReaderOptions()
	opts.Settings = req.Settings
	if req.Squeeze != nil {
		opts.Squeeze = *req.Squeeze
	}
	frame, err := tss.Read(req.Path, opts)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, buildTimeSeriesResponse(frame, req.Limit))
}

func buildTimeSeriesResponse(f model.Frame, limit int) models.TimeSeriesResponse {
	n := f.Len()
	if limit > 0 && limit < n {
		n = limit
	}
	ix := f.RowIndex()
	rows := make([]models.TimeSeriesRow, n)
	for i := 0; i < n; i++ {
		vals := model.Row(f, i)
		out := make([]*float64, len(vals))
		for j, v := range vals {
			out[j] = nullable(v)
		}
		rows[i] = models.TimeSeriesRow{Index: ix.Label(i), Values: out}
	}
	return models.TimeSeriesResponse{
		Index:   export.IndexHeader(f),
		Columns: f.Names(),
		Rows:    rows,
		Count:   f.Len(),
	}
}
