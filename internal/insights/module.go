// Package insights produces AI-assisted progress insights for children and
// caches them until the child's progress changes.
package insights

import (
	"context"

	"educare/internal/events"
	apphttp "educare/internal/http"
	"educare/platform/logger"
)

// Module wires the insights route and cache invalidation.
type Module struct {
	handler *Handler
	service *Service
	log     *logger.Logger
}

var _ apphttp.Module = (*Module)(nil)

// NewModule creates the insights module around svc.
func NewModule(svc *Service, log *logger.Logger) *Module {
	return &Module{handler: &Handler{svc: svc}, service: svc, log: log}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "insights"
}

// RegisterRoutes mounts the insights route under children.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.GET("/children/:id/insights", m.handler.Get)
}

// RegisterHandlers invalidates cached insights when progress changes.
func (m *Module) RegisterHandlers(bus events.Bus) {
	events.Listen(bus, m.handleProgressChanged)
}

func (m *Module) handleProgressChanged(ctx context.Context, e events.ChildProgressChanged) error {
	if err := m.service.Invalidate(ctx, e.ChildID); err != nil {
		m.log.WithContext(ctx).Warn("insights invalidation failed", "childId", e.ChildID, "error", err)
		return err
	}
	return nil
}
