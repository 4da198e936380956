// Package http assembles the admin HTTP surface of the engine.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/complytrack/complytrack/internal/infrastructure/monitoring/logging"
	"github.com/complytrack/complytrack/internal/interfaces/http/handlers"
	"github.com/complytrack/complytrack/internal/interfaces/http/middleware"
)

// RouterConfig aggregates the handlers and infrastructure the route tree
// needs.  Nil handlers leave their routes unregistered.
type RouterConfig struct {
	EngineHandler   *handlers.EngineHandler
	TimelineHandler *handlers.TimelineHandler
	HealthHandler   *handlers.HealthHandler

	Logger         logging.Logger
	Mode           string // gin mode: "debug" | "release" | "test"
	MetricsHandler http.Handler
	MetricsPath    string
}

// NewRouter builds the complete route tree.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}

	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.RequestLogger(cfg.Logger))

	if cfg.HealthHandler != nil {
		r.GET("/healthz", cfg.HealthHandler.Liveness)
		r.GET("/readyz", cfg.HealthHandler.Readiness)
	}

	if cfg.MetricsHandler != nil {
		path := cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.GET(path, gin.WrapH(cfg.MetricsHandler))
	}

	api := r.Group("/api/v1")
	if h := cfg.EngineHandler; h != nil {
		api.POST("/passes", h.RunAll)
		api.POST("/passes/:frequency", h.RunPass)
		api.POST("/backfills", h.Backfill)
		api.GET("/duplicates", h.ListDuplicates)
		api.POST("/duplicates/cleanup", h.RemoveDuplicates)
		api.GET("/triggers", h.TriggerStatus)
		api.POST("/triggers/:name/run", h.FireTrigger)
	}
	if h := cfg.TimelineHandler; h != nil {
		api.GET("/records", h.List)
		api.GET("/records/count", h.CountByYear)
	}

	return r
}
