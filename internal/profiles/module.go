// Package profiles provides the user profile bounded context.
package profiles

import (
	apphttp "educare/internal/http"
	"educare/internal/profiles/handler"
	"educare/internal/profiles/repository"
	"educare/internal/profiles/service"
	"educare/platform/logger"
	"educare/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the profiles bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
}

var _ apphttp.Module = (*Module)(nil)

// NewModule creates the profiles module.
func NewModule(pool *pgxpool.Pool, val *validator.Validator, log *logger.Logger) *Module {
	return newModule(repository.New(pool), val, log)
}

func newModule(repo repository.Repository, val *validator.Validator, log *logger.Logger) *Module {
	return &Module{handler: handler.New(service.New(repo, log), val)}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "profiles"
}

// RegisterRoutes mounts profile routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.GET("/profiles/me", m.handler.GetMe)
	ctx.Protected.PUT("/profiles/me", m.handler.UpdateMe)
}
