package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"medrecord-backend/internal/analyses"
	googleauth "medrecord-backend/internal/auth"
	"medrecord-backend/internal/batches"
	"medrecord-backend/internal/reports"
	"medrecord-backend/internal/shared/config"
	"medrecord-backend/internal/shared/metrics"
	"medrecord-backend/internal/shared/server/middleware"
	"medrecord-backend/internal/shared/server/respond"
	"medrecord-backend/internal/whodata"
)

// RouterDeps carries the handlers the router wires up. Nil handlers are
// skipped so partial wiring works in tests.
type RouterDeps struct {
	Config          config.Config
	AnalysisHandler *analyses.Handler
	BatchHandler    *batches.Handler
	ReportHandler   *reports.Handler
	WHODataHandler  *whodata.Handler
	GoogleAuth      *googleauth.GoogleService
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	cfg := deps.Config
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(cfg.CORSAllowOrigin),
		middleware.Auth(cfg.Env),
		middleware.RateLimit(uploadRateLimit()),
	)

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})

	if deps.GoogleAuth != nil {
		deps.GoogleAuth.RegisterRoutes(api)
	}
	if deps.AnalysisHandler != nil {
		deps.AnalysisHandler.RegisterRoutes(api)
	}
	if deps.BatchHandler != nil {
		deps.BatchHandler.RegisterRoutes(api)
	}
	if deps.ReportHandler != nil {
		deps.ReportHandler.RegisterRoutes(api)
	}
	if deps.WHODataHandler != nil {
		deps.WHODataHandler.RegisterRoutes(api)
	}

	return r
}

// uploadRateLimit throttles the CSV upload endpoints per principal.
func uploadRateLimit() middleware.RateLimitConfig {
	return middleware.RateLimitConfig{
		Rules: map[string]middleware.RateLimitRule{
			"UPLOAD": {Rate: 0.5, Burst: 5},
		},
		GroupFor: func(c *gin.Context) string {
			if c.Request.Method == http.MethodPost && strings.HasPrefix(c.Request.URL.Path, "/api/v1/upload-") {
				return "UPLOAD"
			}
			return ""
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
