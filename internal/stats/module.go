// Package stats serves the administrator statistics overview.
package stats

import (
	apphttp "educare/internal/http"
	"educare/platform/httpkit"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the statistics module implementing http.Module.
type Module struct {
	service *Service
}

var _ apphttp.Module = (*Module)(nil)

// NewModule creates the statistics module.
func NewModule(pool *pgxpool.Pool) *Module {
	return newModule(NewRepository(pool))
}

func newModule(repo Repository) *Module {
	return &Module{service: NewService(repo)}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "stats"
}

// RegisterRoutes mounts the statistics route on the admin group.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Admin.GET("/statistics", m.get)
}

// get handles GET /api/v1/admin/statistics
func (m *Module) get(c *gin.Context) {
	result, err := m.service.Collect(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}
