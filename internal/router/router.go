package router

import (
	"pipenotify/internal/config"
	"pipenotify/internal/domain/notification"
	"pipenotify/internal/middleware"

	"github.com/gin-gonic/gin"
)

const apiPrefix = "/api/v1"

// New builds the dispatch API: GET /health is open to everyone, the
// pipeline and delivery routes under /api/v1 require an API key.
func New(cfg *config.Config, h *notification.Handler) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(edgeMiddleware(cfg)...)

	r.GET("/health", h.Health)
	h.RegisterRoutes(r.Group(apiPrefix, middleware.Auth(cfg.Auth.APIKeys)))

	return r
}

// edgeMiddleware runs on every request, before any credential is checked.
// RequestID comes first so rejected requests still carry an ID.
func edgeMiddleware(cfg *config.Config) []gin.HandlerFunc {
	limiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)

	chain := []gin.HandlerFunc{
		gin.Recovery(),
		middleware.RequestID(),
		middleware.CORS(cfg.CORS.AllowedOrigins, cfg.CORS.AllowedMethods, cfg.CORS.AllowedHeaders),
		limiter.Middleware(),
	}
	if cfg.Server.Mode != gin.TestMode {
		chain = append(chain, gin.Logger())
	}
	return chain
}
