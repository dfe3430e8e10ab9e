package handlers

import (
	"net/http"

	"lisflood-diag/internal/api/models"
	"lisflood-diag/internal/mapstack"

	"github.com/gin-gonic/gin"
)

// GetMapStack handles GET /api/v1/mapstack
func (h *Handler) GetMapStack(c *gin.Context) {
	var req models.MapStackRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c, "INVALID_REQUEST", err)
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
	c.JSON(http.StatusOK, buildMapStackResponse(s, agg))
}

func buildMapStackResponse(s *mapstack.Stack, agg mapstack.Agg) models.MapStackResponse {
	// agg was validated by ParseAgg
	field, _ := s.AggregateTime(agg)
	series, _ := s.AggregateSpace(agg)
	lo, hi := field.Range()

	points := make([]models.SeriesPoint, len(s.Times))
	for i, t := range s.Times {
		points[i] = models.SeriesPoint{Time: t, Value: nullable(series.Values[i])}
	}
	return models.MapStackResponse{
		Name:   s.Name,
		Units:  s.Units,
		Agg:    string(agg),
		Shape:  [3]int{len(s.Times), len(s.Lat), len(s.Lon)},
		Lat:    s.Lat,
		Lon:    s.Lon,
		Min:    nullable(lo),
		Max:    nullable(hi),
		Series: points,
	}
}
