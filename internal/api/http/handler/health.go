package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dtroode/profilekeeper/internal/logger"
	"github.com/dtroode/profilekeeper/internal/model"
)

// Health reports whether the profile store is reachable.
type Health struct {
	checker model.HealthChecker
	backend string
	timeout time.Duration
	logger  *logger.Logger
}

func NewHealth(checker model.HealthChecker, backend string, timeout time.Duration, logger *logger.Logger) *Health {
	return &Health{checker: checker, backend: backend, timeout: timeout, logger: logger}
}

func (h *Health) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	if err := h.checker.Ping(ctx); err != nil {
		h.logger.Warn("HTTP health: store ping failed", "backend", h.backend, "error", err.Error())
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "backend": h.backend})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok", "backend": h.backend})
}
