package api

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/finprobe/finprobe/api/handler"
	"github.com/finprobe/finprobe/api/middleware"
	"github.com/finprobe/finprobe/config"
	"github.com/finprobe/finprobe/detector"
	"github.com/finprobe/finprobe/fetcher"
)

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:  Recovery → Logger
//	API:     Auth (if enabled) → RateLimit
//
// The health endpoint sits outside auth so monitoring probes need no key.
func NewRouter(d *detector.Detector, f *fetcher.Fetcher, cfg *config.Config, startTime time.Time) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	v1 := r.Group("/api/v1")

	// Health endpoint stays outside auth.
	v1.GET("/health", handler.Health(f, startTime))

	// Protected group: auth then rate limit.
	protected := v1.Group("")
	if cfg.Auth.Enabled {
		protected.Use(middleware.Auth(cfg.Auth.APIKeys))
	}
	protected.Use(middleware.RateLimit(cfg.RateLimit))

	// Analyze
	protected.POST("/analyze", handler.Analyze(d))

	return r
}
