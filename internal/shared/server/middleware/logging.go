package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"legallens-backend/internal/shared/telemetry"
)

// Context keys handlers set to enrich the request log.
const (
	OperationKey = "operation"
	OutcomeKey   = "outcome"
	operatorKey  = "operator"
)

// Logging emits a structured log per request.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.EqualFold(c.Request.Method, "OPTIONS") {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		latency := time.Since(start)

		operation, _ := c.Get(OperationKey)
		outcome, _ := c.Get(OutcomeKey)
		_, operator := c.Get(operatorKey)

		telemetry.Info("request.complete", map[string]any{
			"request_id":  RequestIDFromContext(c),
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status":      c.Writer.Status(),
			"duration_ms": float64(latency.Microseconds()) / 1000.0,
			"operation":   operation,
			"outcome":     outcome,
			"operator":    operator,
			"client_ip":   c.ClientIP(),
			"user_agent":  c.Request.UserAgent(),
		})
	}
}
