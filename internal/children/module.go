// Package children provides the children bounded context: child records,
// their quiz sessions and the progress derived from them.
package children

import (
	"educare/internal/children/handler"
	"educare/internal/children/repository"
	"educare/internal/children/service"
	"educare/internal/events"
	apphttp "educare/internal/http"
	"educare/platform/httpkit"
	"educare/platform/logger"
	"educare/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the children bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

var _ apphttp.Module = (*Module)(nil)

// NewModule creates and initializes the children module.
func NewModule(pool *pgxpool.Pool, scopes service.ScopeResolver, bus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	return newModule(repository.New(pool), scopes, bus, val, log)
}

func newModule(repo repository.Repository, scopes service.ScopeResolver, bus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	svc := service.New(repo, scopes, bus, log)
	return &Module{handler: handler.New(svc, val), service: svc}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "children"
}

// Service returns the service layer for other modules.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts children routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/children", httpkit.RequireRoles(ctx.Logger, httpkit.AllRoles...))
	group.GET("", m.handler.List)
	group.POST("", m.handler.Create)
	group.GET("/:id", m.handler.Get)
	group.PUT("/:id", m.handler.Update)
	group.DELETE("/:id", m.handler.Delete)
	group.GET("/:id/quiz-sessions", m.handler.ListQuizSessions)
	group.POST("/:id/quiz-sessions", m.handler.RecordQuizSession)
}
