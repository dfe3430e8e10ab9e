package middleware

import (
	"fmt"
	"log"
	"net/http"

	"lisflood-diag/internal/api/models"

	"github.com/gin-gonic/gin"
)

// ErrorHandler turns panics in handlers (typically from the plotting
// backend) into a JSON 500 instead of dropping the connection.
func ErrorHandler() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		log.Printf("panic serving %s %s: %v", c.Request.Method, c.Request.URL.Path, recovered)
		msg := "An unexpected error occurred"
		switch v := recovered.(type) {
		case string:
			msg = v
		case error:
			msg = v.Error()
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "INTERNAL_ERROR",
				Message: fmt.Sprintf("internal error: %s", msg),
			},
		})
	})
}
