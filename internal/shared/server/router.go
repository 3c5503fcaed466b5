package server

import (
	"github.com/gin-gonic/gin"

	"legallens-backend/internal/shared/config"
	"legallens-backend/internal/shared/metrics"
	"legallens-backend/internal/shared/server/middleware"
	"legallens-backend/internal/shared/server/respond"
)

// Rate limit groups.
const (
	RateGroupDefault   = "DEFAULT"
	RateGroupDocuments = "DOCUMENTS"
)

// RouteRegistrar attaches a handler's routes to the API group.
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// RouterDeps carries the handlers mounted under /api/v1. Nil handlers are skipped.
type RouterDeps struct {
	Config           config.Config
	HealthHandler    RouteRegistrar
	AnalysisHandler  RouteRegistrar
	DocumentsHandler RouteRegistrar
	LookupsHandler   RouteRegistrar
	AdminHandler     RouteRegistrar
	RateLimiter      *middleware.RateLimiter
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.RateLimit(rateLimitConfig(deps)),
	)

	r.NoRoute(func(c *gin.Context) {
		respond.NotFound(c, "Endpoint not found")
	})

	api := r.Group("/api/v1")
	api.GET("/metrics", metrics.Handler())
	for _, h := range []RouteRegistrar{
		deps.HealthHandler,
		deps.AnalysisHandler,
		deps.DocumentsHandler,
		deps.LookupsHandler,
		deps.AdminHandler,
	} {
		if h != nil {
			h.RegisterRoutes(api)
		}
	}

	return r
}

func rateLimitConfig(deps RouterDeps) middleware.RateLimitConfig {
	rps := deps.Config.RateLimitRPS
	burst := deps.Config.RateLimitBurst
	docBurst := burst / 4
	if docBurst < 1 {
		docBurst = 1
	}
	return middleware.RateLimitConfig{
		DefaultGroup: RateGroupDefault,
		Limiter:      deps.RateLimiter,
		GroupFor: func(c *gin.Context) string {
			if c.FullPath() == "/api/v1/documents/analyze" {
				return RateGroupDocuments
			}
			return RateGroupDefault
		},
		Rules: map[string]middleware.RateLimitRule{
			RateGroupDefault:   {Rate: rps, Burst: burst},
			RateGroupDocuments: {Rate: rps / 4, Burst: docBurst},
		},
	}
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
