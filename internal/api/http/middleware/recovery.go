package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dtroode/profilekeeper/internal/logger"
)

// Recovery turns a handler panic into a 500 response.
func Recovery(logger *logger.Logger) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, recovered any) {
		logger.Error("HTTP handler panicked",
			"path", c.Request.URL.Path,
			"request_id", c.GetString(RequestIDKey),
			"panic", fmt.Sprint(recovered))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	})
}
