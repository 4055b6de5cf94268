// Package http holds the contracts between the composition root, the router
// and the domain modules.
package http

import (
	"context"
	"net/http"

	"educare/internal/events"
	"educare/platform/config"
	"educare/platform/logger"

	"github.com/gin-gonic/gin"
)

// Module is a bounded context that mounts its own routes.
type Module interface {
	Name() string
	RegisterRoutes(ctx *RouterContext)
}

// EventSubscriber is implemented by modules that react to domain events.
type EventSubscriber interface {
	RegisterHandlers(bus events.Bus)
}

// RouterContext carries the route groups a module may mount on.
type RouterContext struct {
	Engine *gin.Engine
	// V1 is /api/v1 without authentication.
	V1 *gin.RouterGroup
	// Protected requires a valid bearer token.
	Protected *gin.RouterGroup
	// Admin is /api/v1/admin, limited to admin and owner.
	Admin  *gin.RouterGroup
	Logger *logger.Logger
}

// RouterConfig is the slice of configuration the router reads.
type RouterConfig interface {
	config.HTTPConfig
	config.JWTConfig
}

type HealthChecker interface {
	Ping(ctx context.Context) error
}

// MetricsProvider is implemented by platform/metrics.Collector.
type MetricsProvider interface {
	Handler() http.Handler
	Middleware() gin.HandlerFunc
}

// App is assembled by cmd/api and handed to the router.
type App struct {
	Config RouterConfig
	Logger *logger.Logger
	// Health backs /api/health; nil skips the database ping.
	Health HealthChecker
	// Metrics serves /metrics and instruments requests when set.
	Metrics  MetricsProvider
	EventBus events.Bus
	Modules  []Module
}

// SubscribeAll registers event handlers for every module that has them.
func (a *App) SubscribeAll() {
	if a.EventBus == nil {
		return
	}
	for _, module := range a.Modules {
		if sub, ok := module.(EventSubscriber); ok {
			sub.RegisterHandlers(a.EventBus)
			a.Logger.Debug("module event handlers registered", "module", module.Name())
		}
	}
}
