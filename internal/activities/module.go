// Package activities provides activity recommendations and each user's
// planned and completed activities.
package activities

import (
	"educare/internal/activities/handler"
	"educare/internal/activities/provider"
	"educare/internal/activities/repository"
	"educare/internal/activities/service"
	apphttp "educare/internal/http"
	"educare/platform/config"
	"educare/platform/logger"
	"educare/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the activities module implementing http.Module.
type Module struct {
	handler *handler.Handler
}

var _ apphttp.Module = (*Module)(nil)

// NewModule creates the activities module with the provider selected by cfg.
func NewModule(pool *pgxpool.Pool, children service.ChildLookup, cfg config.ActivitiesConfig, val *validator.Validator, log *logger.Logger) (*Module, error) {
	p, err := provider.New(cfg.GetActivitiesSource(), pool)
	if err != nil {
		return nil, err
	}
	log.Info("activities provider selected", "source", cfg.GetActivitiesSource())
	return newModule(p, repository.New(pool), children, val, log), nil
}

func newModule(p provider.Provider, repo repository.Repository, children service.ChildLookup, val *validator.Validator, log *logger.Logger) *Module {
	svc := service.New(p, repo, children, log)
	return &Module{handler: handler.New(svc, val)}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "activities"
}

// RegisterRoutes mounts activity routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/activities")
	group.GET("/recommendations", m.handler.Recommendations)
	group.GET("/mine", m.handler.List)
	group.POST("/mine", m.handler.Create)
	group.PUT("/mine/:id", m.handler.Update)
	group.DELETE("/mine/:id", m.handler.Delete)
}
