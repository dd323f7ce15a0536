package handler

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/visitnote/visit-summary/pkg/config"
	"github.com/visitnote/visit-summary/pkg/validator"
)

const healthCheckTimeout = 2 * time.Second

// HealthCheck probes one dependency
type HealthCheck func(ctx context.Context) error

// Router holds all handlers
type Router struct {
	cfg            *config.Config
	summaryHandler *Summary
	auth           echo.MiddlewareFunc
	metrics        http.Handler
	checks         map[string]HealthCheck
}

// NewRouter creates a new router with all handlers. auth guards every /v1
// route; metrics may be nil.
func NewRouter(cfg *config.Config, summaryHandler *Summary, auth echo.MiddlewareFunc, metrics http.Handler) *Router {
	return &Router{
		cfg:            cfg,
		summaryHandler: summaryHandler,
		auth:           auth,
		metrics:        metrics,
		checks:         make(map[string]HealthCheck),
	}
}

// AddHealthCheck registers a dependency probe reported by /health
func (rt *Router) AddHealthCheck(name string, check HealthCheck) {
	rt.checks[name] = check
}

// Setup configures all application routes
func (rt *Router) Setup(e *echo.Echo) {
	e.Validator = validator.New()

	e.GET("/health", rt.healthCheck)
	if rt.metrics != nil {
		e.GET("/metrics", echo.WrapHandler(rt.metrics))
	}

	v1 := e.Group("/v1")
	if rt.auth != nil {
		v1.Use(rt.auth)
	}

	rt.setupFormRoutes(v1)
}

// setupFormRoutes configures visit summary routes
func (rt *Router) setupFormRoutes(g *echo.Group) {
	forms := g.Group("/forms")

	forms.GET("/:id/summary", rt.summaryHandler.GetSummary)
	forms.POST("/:id/summarize", rt.summaryHandler.Summarize)
	forms.DELETE("/:id/summary", rt.summaryHandler.DeleteSummary)
}

// healthCheck reports service status. A failing dependency marks the
// service degraded but does not fail the probe.
func (rt *Router) healthCheck(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), healthCheckTimeout)
	defer cancel()

	names := make([]string, 0, len(rt.checks))
	for name := range rt.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	status := "ok"
	deps := make(map[string]string, len(names))
	for _, name := range names {
		if err := rt.checks[name](ctx); err != nil {
			deps[name] = err.Error()
			status = "degraded"
			continue
		}
		deps[name] = "ok"
	}

	environment := ""
	if rt.cfg != nil {
		environment = rt.cfg.Server.Environment
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":       status,
		"environment":  environment,
		"dependencies": deps,
		"time":         time.Now().UTC().Format(time.RFC3339),
	})
}
