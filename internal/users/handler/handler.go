package handler

import (
	"educare/internal/users/repository"
	"educare/internal/users/service"
	"educare/platform/httpkit"
	"educare/platform/query"

	"github.com/gin-gonic/gin"
)

// Handler handles HTTP requests for the user directory.
type Handler struct {
	svc *service.Service
}

// New creates a new users handler.
func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// List returns a page of users.
// GET /api/v1/admin/users
func (h *Handler) List(c *gin.Context) {
	spec := query.Parse(c.Request.URL.Query(), repository.ListConfig)
	users, pagination, err := h.svc.List(c.Request.Context(), spec)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.List(c, users, pagination)
}
