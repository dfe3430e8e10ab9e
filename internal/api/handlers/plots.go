package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"lisflood-diag/internal/api/models"
	"lisflood-diag/internal/charts"
	"lisflood-diag/internal/mapstack"
	"lisflood-diag/internal/tss"

	"github.com/gin-gonic/gin"
)

var contentTypes = map[string]string{
	"png": "image/png",
	"svg": "image/svg+xml",
	"pdf": "application/pdf",
}

func imageFormat(format string) (string, string, error) {
	f := strings.ToLower(format)
	if f == "" {
		f = "png"
	}
	ct, ok := contentTypes[f]
	if !ok {
		return "", "", fmt.Errorf("unsupported format %q (png, svg or pdf)", format)
	}
	return f, ct, nil
}

// PlotReservoir handles GET /api/v1/plots/reservoir
func (h *Handler) PlotReservoir(c *gin.Context) {
	var req models.ReservoirPlotRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c, "INVALID_REQUEST", err)
		return
	}
	format, contentType, err := imageFormat(req.Format)
	if err != nil {
		badRequest(c, "INVALID_FORMAT", err)
		return
	}
	if err := h.resolveAll(&req.Inflow, &req.Outflow, &req.Filling, &req.Settings); err != nil {
		h.respondError(c, err)
		return
	}

	opts := h.cfg.ReaderOptions()
	opts.Settings = req.Settings
	table, err := tss.ReadReservoir(tss.ReservoirFiles{
		Inflow:  req.Inflow,
		Outflow: req.Outflow,
		Filling: req.Filling,
	}, req.ID, opts)
	if err != nil {
		h.respondError(c, err)
		return
	}

	ropts := h.cfg.ReservoirOptions()
	if req.CLim != nil {
		ropts.Conservative = req.CLim
	}
	if req.NLim != nil {
		ropts.Normal = req.NLim
	}
	if req.FLim != nil {
		ropts.Flood = req.FLim
	}
	if req.FlowMax != 0 {
		ropts.FlowMax = req.FlowMax
	}
	fig, err := charts.Reservoir(table, ropts)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.render(c, fig, format, contentType)
}

// PlotMap handles GET /api/v1/plots/map
func (h *Handler) PlotMap(c *gin.Context) {
	var req models.MapPlotRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c, "INVALID_REQUEST", err)
		return
	}
	format, contentType, err := imageFormat(req.Format)
	if err != nil {
		badRequest(c, "INVALID_FORMAT", err)
		return
	}
	agg, err := mapstack.ParseAgg(req.Agg)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if err := h.resolveAll(&req.Path); err != nil {
		h.respondError(c, err)
		return
	}

	s, err := mapstack.Open(req.Path, req.Variable)
	if err != nil {
		h.respondError(c, err)
		return
	}
	mopts := h.cfg.MapOptions()
	mopts.Agg = agg
	mopts.Label = req.Label
	if req.Cmap != "" {
		mopts.Cmap = req.Cmap
	}
	fig, err := charts.MapTimeSeries(s, mopts)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.render(c, fig, format, contentType)
}

func (h *Handler) render(c *gin.Context, fig *charts.Figure, format, contentType string) {
	var buf bytes.Buffer
	if err := fig.Render(&buf, format); err != nil {
		h.respondError(c, err)
		return
	}
	c.Data(http.StatusOK, contentType, buf.Bytes())
}
