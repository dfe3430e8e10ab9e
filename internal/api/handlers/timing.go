package handlers

import (
	"net/http"

	"lisflood-diag/internal/api/models"
	"lisflood-diag/internal/settings"

	"github.com/gin-gonic/gin"
)

// GetTiming handles GET /api/v1/timing
func (h *Handler) GetTiming(c *gin.Context) {
	var req models.TimingRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c, "INVALID_REQUEST", err)
		return
	}
	if err := h.resolveAll(&req.Settings); err != nil {
		h.respondError(c, err)
		return
	}

	tm, err := settings.LoadTiming(req.Settings)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.TimingResponse{
		CalendarDayStart: tm.CalendarDayStart,
		DtSec:            tm.DtSec,
		StepStart:        tm.StepStart,
		StepEnd:          tm.StepEnd,
		Steps:            tm.Steps(),
	})
}
