// Package api wires the HTTP surface: read-only JSON views of LISFLOOD
// outputs and rendered diagnostic charts.
package api

import (
	"net/http"

	"lisflood-diag/internal/api/handlers"
	"lisflood-diag/internal/api/middleware"
	"lisflood-diag/internal/config"

	"github.com/gin-gonic/gin"
)

// NewRouter builds the gin engine for cfg.
func NewRouter(cfg *config.Config) *gin.Engine {
	router := gin.New()

	// Apply middleware
	router.Use(middleware.Logger())
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.CORS())

	h := handlers.NewHandler(cfg)

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "data_dir": h.DataDir()})
	})

	// API routes
	v1 := router.Group("/api/v1")
	{
		v1.GET("/timing", h.GetTiming)
		v1.GET("/timeseries", h.GetTimeSeries)
		v1.GET("/mapstack", h.GetMapStack)

		v1.GET("/plots/reservoir", h.PlotReservoir)
		v1.GET("/plots/map", h.PlotMap)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"code": "NOT_FOUND", "message": "Not found"}})
	})
	return router
}
