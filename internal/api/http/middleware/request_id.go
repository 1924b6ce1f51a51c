package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// RequestIDHeader carries the request id in both directions.
	RequestIDHeader = "X-Request-ID"
	// RequestIDKey is the gin context key of the request id.
	RequestIDKey = "request_id"
)

const maxRequestIDLength = 128

// RequestID reuses the caller's X-Request-ID or assigns a new one.
func RequestID(c *gin.Context) {
	id := c.GetHeader(RequestIDHeader)
	if id == "" || len(id) > maxRequestIDLength {
		id = uuid.NewString()
	}

	c.Set(RequestIDKey, id)
	c.Header(RequestIDHeader, id)
	c.Next()
}
