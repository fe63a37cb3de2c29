package server

import (
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/hongyanca/coding-plan-quota-query/internal/logging"
)

const requestIDHeader = "X-Request-ID"

// requestID reuses an inbound X-Request-ID or assigns a new one, and echoes
// it on the response.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDHeader, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// requestLogger attaches a request-scoped logger to the request context and
// logs one line per request once the handler returns.
func requestLogger(base *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		logger := base.With("request_id", c.GetString(requestIDHeader))
		c.Request = c.Request.WithContext(logging.WithLogger(c.Request.Context(), logger))

		c.Next()

		fields := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start).Round(time.Millisecond),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, "err", c.Errors.String())
			logger.Error("request failed", fields...)
			return
		}
		logger.Info("request", fields...)
	}
}
