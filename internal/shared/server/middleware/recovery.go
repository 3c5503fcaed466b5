package middleware

import (
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"legallens-backend/internal/shared/metrics"
	"legallens-backend/internal/shared/server/respond"
	"legallens-backend/internal/shared/telemetry"
)

// Recovery turns a handler panic into a 500 with the error envelope. The
// stack goes to the log, never to the client.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				metrics.IncPanic()
				telemetry.Error("http.panic", map[string]any{
					"request_id": RequestIDFromContext(c),
					"error":      rec,
					"stack":      string(debug.Stack()),
					"path":       c.Request.URL.Path,
					"method":     c.Request.Method,
				})
				respond.Internal(c, "Unexpected server error")
			}
		}()
		c.Next()
	}
}
