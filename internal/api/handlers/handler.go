package handlers

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"math"
	"net/http"
	"path/filepath"
	"strings"

	"lisflood-diag/internal/api/models"
	"lisflood-diag/internal/charts"
	"lisflood-diag/internal/config"
	"lisflood-diag/internal/mapstack"
	"lisflood-diag/internal/model"
	"lisflood-diag/internal/settings"
	"lisflood-diag/internal/tss"

	"github.com/gin-gonic/gin"
)

var errUnsafePath = errors.New("path must stay inside the data directory")

// Handler serves the read and plot endpoints. Every file parameter is
// resolved against the configured data directory.
type Handler struct {
	dataDir string
	cfg     *config.Config
}

// NewHandler creates a handler for cfg.Server.DataDir
func NewHandler(cfg *config.Config) *Handler {
	if cfg == nil {
		cfg = config.Default()
	}
	dir := cfg.Server.DataDir
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	log.Printf("Handler: using data directory: %s", dir)
	return &Handler{dataDir: dir, cfg: cfg}
}

// DataDir returns the absolute data directory
func (h *Handler) DataDir() string {
	return h.dataDir
}

// resolve maps a request path onto the data directory, rejecting absolute
// paths and any path that climbs out of it.
func (h *Handler) resolve(rel string) (string, error) {
	if rel == "" {
		return "", nil
	}
	if !filepath.IsLocal(filepath.FromSlash(rel)) {
		return "", fmt.Errorf("%w: %q", errUnsafePath, rel)
	}
	return filepath.Join(h.dataDir, filepath.FromSlash(rel)), nil
}

// resolveAll resolves every pointer in place, stopping at the first bad path
func (h *Handler) resolveAll(paths ...*string) error {
	for _, p := range paths {
		abs, err := h.resolve(*p)
		if err != nil {
			return err
		}
		*p = abs
	}
	return nil
}

func badRequest(c *gin.Context, code string, err error) {
	c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    code,
			Message: err.Error(),
		},
	})
}

// respondError maps reader and chart errors onto HTTP statuses
func (h *Handler) respondError(c *gin.Context, err error) {
	status, code := classify(err)
	if status == http.StatusInternalServerError {
		log.Printf("Handler: %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.JSON(status, models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    code,
			Message: h.scrub(err.Error()),
			Details: errorDetails(err),
		},
	})
}

// errorDetails exposes the location of a parse failure so clients can
// point at the offending line or setting.
func errorDetails(err error) map[string]interface{} {
	var tssErr *tss.ParseError
	if errors.As(err, &tssErr) {
		return map[string]interface{}{
			"line":   tssErr.Line,
			"column": tssErr.Column,
			"text":   tssErr.Text,
		}
	}
	var settingsErr *settings.ParseError
	if errors.As(err, &settingsErr) {
		return map[string]interface{}{
			"key":   settingsErr.Key,
			"value": settingsErr.Value,
			"want":  settingsErr.Want,
		}
	}
	return nil
}

func classify(err error) (int, string) {
	var settingsErr *settings.ParseError
	var tssErr *tss.ParseError
	switch {
	case errors.Is(err, errUnsafePath):
		return http.StatusBadRequest, "INVALID_PATH"
	case errors.Is(err, fs.ErrNotExist):
		return http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, mapstack.ErrUnknownAgg):
		return http.StatusBadRequest, "INVALID_AGG"
	case errors.As(err, &settingsErr),
		errors.Is(err, settings.ErrKeyNotFound),
		errors.Is(err, settings.ErrMalformed):
		return http.StatusUnprocessableEntity, "INVALID_SETTINGS"
	case errors.As(err, &tssErr),
		errors.Is(err, tss.ErrMalformed),
		errors.Is(err, tss.ErrLengthMismatch):
		return http.StatusUnprocessableEntity, "INVALID_TSS"
	case errors.Is(err, mapstack.ErrShape),
		errors.Is(err, mapstack.ErrVariable):
		return http.StatusUnprocessableEntity, "INVALID_MAPSTACK"
	case errors.Is(err, model.ErrColumnNotFound),
		errors.Is(err, model.ErrIndexMismatch),
		errors.Is(err, charts.ErrInput):
		return http.StatusUnprocessableEntity, "INVALID_INPUT"
	}
	return http.StatusInternalServerError, "INTERNAL_ERROR"
}

// scrub hides the absolute data directory from error messages
func (h *Handler) scrub(msg string) string {
	return strings.ReplaceAll(msg, h.dataDir+string(filepath.Separator), "")
}

func nullable(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
