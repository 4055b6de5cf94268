package handler

import (
	"net/http"

	"educare/internal/activities/repository"
	"educare/internal/activities/service"
	"educare/internal/activities/transport"
	"educare/platform/httpkit"
	"educare/platform/query"
	"educare/platform/validator"

	"github.com/gin-gonic/gin"
)

// Handler handles HTTP requests for activities.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new activities handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// Recommendations handles GET /api/v1/activities/recommendations
func (h *Handler) Recommendations(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	var q transport.RecommendationsQuery
	if !httpkit.BindQuery(c, h.val, &q) {
		return
	}

	result, err := h.svc.Recommend(c.Request.Context(), identity, q)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// List handles GET /api/v1/activities/mine
func (h *Handler) List(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	spec := query.Parse(c.Request.URL.Query(), repository.ListConfig)
	items, pagination, err := h.svc.List(c.Request.Context(), identity, spec)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.List(c, items, pagination)
}

// Create handles POST /api/v1/activities/mine
func (h *Handler) Create(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	var req transport.CreateUserActivityRequest
	if !httpkit.BindJSON(c, h.val, &req) {
		return
	}

	result, err := h.svc.Create(c.Request.Context(), identity, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, result)
}

// Update handles PUT /api/v1/activities/mine/:id
func (h *Handler) Update(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	id, ok := httpkit.ParamUUID(c, "id")
	if !ok {
		return
	}

	var req transport.UpdateUserActivityRequest
	if !httpkit.BindJSON(c, h.val, &req) {
		return
	}

	result, err := h.svc.Update(c.Request.Context(), identity, id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Delete handles DELETE /api/v1/activities/mine/:id
func (h *Handler) Delete(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	id, ok := httpkit.ParamUUID(c, "id")
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), identity, id); httpkit.HandleError(c, err) {
		return
	}
	httpkit.Message(c, http.StatusOK, "activity removed")
}
