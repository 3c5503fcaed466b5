package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"legallens-backend/internal/shared/server/respond"
)

// AdminTokenHeader carries the operator token for admin routes.
const AdminTokenHeader = "X-Admin-Token"

// AdminToken guards a route group with a shared token. With no token
// configured the routes answer 404 so they are invisible.
func AdminToken(token string) gin.HandlerFunc {
	token = strings.TrimSpace(token)
	return func(c *gin.Context) {
		if token == "" {
			respond.NotFound(c, "Endpoint not found")
			return
		}
		got := strings.TrimSpace(c.GetHeader(AdminTokenHeader))
		if got == "" || subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid admin token", nil)
			return
		}
		c.Set(operatorKey, true)
		c.Next()
	}
}
