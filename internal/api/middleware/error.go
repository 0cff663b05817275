package middleware

import (
	"fmt"
	"net/http"

	"bifacial-compare/internal/api/models"
	"bifacial-compare/internal/log"

	"github.com/gin-gonic/gin"
)

// ErrorHandler turns a panic inside a handler into a 500 with the usual error body.
// Only string panics are echoed back; anything else stays in the log.
func ErrorHandler() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		log.Errorw("panic recovered",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"panic", fmt.Sprint(recovered),
		)
		msg := "An unexpected error occurred"
		if s, ok := recovered.(string); ok {
			msg = s
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "INTERNAL_ERROR",
				Message: msg,
			},
		})
	})
}
