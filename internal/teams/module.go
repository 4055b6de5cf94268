// Package teams provides the teams bounded context: teams, their licenses
// and memberships.
package teams

import (
	"educare/internal/events"
	apphttp "educare/internal/http"
	"educare/internal/teams/handler"
	"educare/internal/teams/repository"
	"educare/internal/teams/service"
	"educare/platform/httpkit"
	"educare/platform/logger"
	"educare/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the teams bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    repository.Repository
}

var _ apphttp.Module = (*Module)(nil)

// NewModule creates and initializes the teams module.
func NewModule(pool *pgxpool.Pool, scopes service.ScopeResolver, directory service.Directory, bus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	return newModule(repository.New(pool), scopes, directory, bus, val, log)
}

func newModule(repo repository.Repository, scopes service.ScopeResolver, directory service.Directory, bus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	svc := service.New(repo, scopes, directory, bus, log)
	return &Module{handler: handler.New(svc, val), service: svc, repo: repo}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "teams"
}

// Service returns the service layer for other modules.
func (m *Module) Service() *service.Service {
	return m.service
}

// Repository exposes membership storage to background jobs.
func (m *Module) Repository() repository.Repository {
	return m.repo
}

// RegisterRoutes mounts teams routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/teams")
	group.GET("", m.handler.List)
	group.POST("", httpkit.RequireRoles(ctx.Logger, httpkit.RoleAdmin, httpkit.RoleOwner), m.handler.Create)
	group.GET("/:id", m.handler.Get)
	group.PUT("/:id", m.handler.Update)
	group.DELETE("/:id", m.handler.Delete)
	group.GET("/:id/members", m.handler.ListMembers)
	group.POST("/:id/members", m.handler.Invite)
	group.PUT("/:id/members/:userId", m.handler.UpdateMember)
	group.DELETE("/:id/members/:userId", m.handler.RemoveMember)
	group.GET("/:id/invitable-users", m.handler.InvitableUsers)
}
