package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"calorievision-backend/internal/catalog"
	"calorievision-backend/internal/services/health"
	"calorievision-backend/internal/sessions"
	"calorievision-backend/internal/shared/config"
	"calorievision-backend/internal/shared/metrics"
	"calorievision-backend/internal/shared/server/middleware"
	"calorievision-backend/internal/shared/server/respond"
)

// Rate limit groups.
const (
	GroupDefault = "DEFAULT"
	GroupPolling = "POLLING"
	GroupAnalyze = "ANALYZE"
	// GroupUnlimited has no rule and is never limited.
	GroupUnlimited = "UNLIMITED"
)

// RouterDeps bundles the handlers the router mounts.
type RouterDeps struct {
	Config         config.Config
	Health         *health.Service
	CatalogHandler *catalog.Handler
	SessionHandler *sessions.Handler
	RateLimits     map[string]middleware.RateLimitRule
	RateLimiter    *middleware.RateLimiter
}

// DefaultRateLimits allows fast status polling and keeps analysis starts scarce.
func DefaultRateLimits() map[string]middleware.RateLimitRule {
	return map[string]middleware.RateLimitRule{
		GroupDefault: {Rate: 5, Burst: 20},
		GroupPolling: {Rate: 10, Burst: 30},
		GroupAnalyze: {Rate: 1, Burst: 5},
	}
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	rules := deps.RateLimits
	if rules == nil {
		rules = DefaultRateLimits()
	}

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.RateLimit(middleware.RateLimitConfig{
			Rules:        rules,
			DefaultGroup: GroupDefault,
			GroupFor:     rateLimitGroup,
			Limiter:      deps.RateLimiter,
		}),
	)

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		if deps.Health == nil {
			respond.JSON(c, http.StatusOK, gin.H{"ok": true})
			return
		}
		respond.OK(c, deps.Health.Status(c.Request.Context()))
	})
	api.GET("/metrics", metrics.Handler())
	if deps.CatalogHandler != nil {
		deps.CatalogHandler.RegisterRoutes(api)
	}
	if deps.SessionHandler != nil {
		deps.SessionHandler.RegisterRoutes(api)
	}

	r.NoRoute(func(c *gin.Context) {
		respond.Error(c, http.StatusNotFound, respond.CodeNotFound, "route not found", nil)
	})

	return r
}

func rateLimitGroup(c *gin.Context) string {
	switch c.FullPath() {
	case "/api/v1/health", "/api/v1/metrics":
		return GroupUnlimited
	case "/api/v1/sessions/:id":
		if c.Request.Method == http.MethodGet {
			return GroupPolling
		}
	case "/api/v1/sessions/:id/analyze", "/api/v1/sessions/:id/retry":
		return GroupAnalyze
	}
	return GroupDefault
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
