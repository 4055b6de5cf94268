// Package users provides the user directory bounded context.
package users

import (
	apphttp "educare/internal/http"
	"educare/internal/users/handler"
	"educare/internal/users/repository"
	"educare/internal/users/service"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the users bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

var _ apphttp.Module = (*Module)(nil)

// NewModule creates the users module.
func NewModule(pool *pgxpool.Pool) *Module {
	return newModule(repository.New(pool))
}

func newModule(repo repository.Repository) *Module {
	svc := service.New(repo)
	return &Module{handler: handler.New(svc), service: svc}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "users"
}

// Service returns the directory service for other modules.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts admin user routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Admin.GET("/users", m.handler.List)
}
