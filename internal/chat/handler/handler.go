package handler

import (
	"net/http"

	"educare/internal/chat/repository"
	"educare/internal/chat/service"
	"educare/internal/chat/transport"
	"educare/platform/httpkit"
	"educare/platform/query"
	"educare/platform/validator"

	"github.com/gin-gonic/gin"
)

// Handler handles HTTP requests for team chat.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new chat handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// ListGroups handles GET /api/v1/chat/groups
func (h *Handler) ListGroups(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	spec := query.Parse(c.Request.URL.Query(), repository.GroupListConfig)
	items, pagination, err := h.svc.ListGroups(c.Request.Context(), identity, spec)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.List(c, items, pagination)
}

// CreateGroup handles POST /api/v1/chat/groups
func (h *Handler) CreateGroup(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	var req transport.CreateGroupRequest
	if !httpkit.BindJSON(c, h.val, &req) {
		return
	}

	result, err := h.svc.CreateGroup(c.Request.Context(), identity, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, result)
}

// GetGroup handles GET /api/v1/chat/groups/:id
func (h *Handler) GetGroup(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	id, ok := httpkit.ParamUUID(c, "id")
	if !ok {
		return
	}

	result, err := h.svc.GetGroup(c.Request.Context(), identity, id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// DeleteGroup handles DELETE /api/v1/chat/groups/:id
func (h *Handler) DeleteGroup(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	id, ok := httpkit.ParamUUID(c, "id")
	if !ok {
		return
	}

	if err := h.svc.DeleteGroup(c.Request.Context(), identity, id); httpkit.HandleError(c, err) {
		return
	}
	httpkit.Message(c, http.StatusOK, "chat group deleted")
}

// ListMessages handles GET /api/v1/chat/groups/:id/messages
func (h *Handler) ListMessages(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	id, ok := httpkit.ParamUUID(c, "id")
	if !ok {
		return
	}

	spec := query.Parse(c.Request.URL.Query(), repository.MessageListConfig)
	items, pagination, err := h.svc.ListMessages(c.Request.Context(), identity, id, spec)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.List(c, items, pagination)
}

// PostMessage handles POST /api/v1/chat/groups/:id/messages
func (h *Handler) PostMessage(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	id, ok := httpkit.ParamUUID(c, "id")
	if !ok {
		return
	}

	var req transport.PostMessageRequest
	if !httpkit.BindJSON(c, h.val, &req) {
		return
	}

	result, err := h.svc.PostMessage(c.Request.Context(), identity, id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, result)
}
