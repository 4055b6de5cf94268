// Package chat provides team chat groups and their messages. Live delivery
// happens through the notification module's event stream.
package chat

import (
	"educare/internal/chat/handler"
	"educare/internal/chat/repository"
	"educare/internal/chat/service"
	"educare/internal/events"
	apphttp "educare/internal/http"
	"educare/platform/logger"
	"educare/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the chat bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
}

var _ apphttp.Module = (*Module)(nil)

// NewModule creates and initializes the chat module.
func NewModule(pool *pgxpool.Pool, scopes service.ScopeResolver, bus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	return newModule(repository.New(pool), scopes, bus, val, log)
}

func newModule(repo repository.Repository, scopes service.ScopeResolver, bus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	svc := service.New(repo, scopes, bus, log)
	return &Module{handler: handler.New(svc, val)}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "chat"
}

// RegisterRoutes mounts chat routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	groups := ctx.Protected.Group("/chat/groups")
	groups.GET("", m.handler.ListGroups)
	groups.POST("", m.handler.CreateGroup)
	groups.GET("/:id", m.handler.GetGroup)
	groups.DELETE("/:id", m.handler.DeleteGroup)
	groups.GET("/:id/messages", m.handler.ListMessages)
	groups.POST("/:id/messages", m.handler.PostMessage)
}
