package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dtroode/profilekeeper/internal/logger"
)

// Logging logs every HTTP request once it has been served.
type Logging struct {
	logger *logger.Logger
}

func NewLogging(logger *logger.Logger) *Logging {
	return &Logging{logger: logger}
}

func (l *Logging) Handle(c *gin.Context) {
	start := time.Now()
	path := c.Request.URL.Path

	c.Next()

	status := c.Writer.Status()
	args := []any{
		"method", c.Request.Method,
		"path", path,
		"status", status,
		"duration_ms", time.Since(start).Milliseconds(),
		"client_ip", c.ClientIP(),
		"request_id", c.GetString(RequestIDKey),
	}
	if len(c.Errors) > 0 {
		args = append(args, "errors", c.Errors.String())
	}

	switch {
	case status >= 500:
		l.logger.Error("HTTP request completed", args...)
	case status >= 400:
		l.logger.Warn("HTTP request completed", args...)
	default:
		l.logger.Info("HTTP request completed", args...)
	}
}
