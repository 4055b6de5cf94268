package handler

import (
	"net/http"

	"educare/internal/children/repository"
	"educare/internal/children/service"
	"educare/internal/children/transport"
	"educare/platform/httpkit"
	"educare/platform/query"
	"educare/platform/validator"

	"github.com/gin-gonic/gin"
)

// Handler handles HTTP requests for children.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new children handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// List returns the children visible to the caller.
// GET /api/v1/children
func (h *Handler) List(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	spec := query.Parse(c.Request.URL.Query(), repository.ListConfig)
	page, err := h.svc.List(c.Request.Context(), identity, spec)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.List(c, page.Items, page.Pagination)
}

// Get returns one child.
// GET /api/v1/children/:id
func (h *Handler) Get(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	id, ok := httpkit.ParamUUID(c, "id")
	if !ok {
		return
	}

	result, err := h.svc.Get(c.Request.Context(), identity, id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Create registers a child.
// POST /api/v1/children
func (h *Handler) Create(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	var req transport.CreateChildRequest
	if !httpkit.BindJSON(c, h.val, &req) {
		return
	}

	result, err := h.svc.Create(c.Request.Context(), identity, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, result)
}

// Update changes a child.
// PUT /api/v1/children/:id
func (h *Handler) Update(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	id, ok := httpkit.ParamUUID(c, "id")
	if !ok {
		return
	}

	var req transport.UpdateChildRequest
	if !httpkit.BindJSON(c, h.val, &req) {
		return
	}

	result, err := h.svc.Update(c.Request.Context(), identity, id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Delete removes a child.
// DELETE /api/v1/children/:id
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
	httpkit.Message(c, http.StatusOK, "child deleted")
}

// ListQuizSessions returns a child's quiz sessions.
// GET /api/v1/children/:id/quiz-sessions
func (h *Handler) ListQuizSessions(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	id, ok := httpkit.ParamUUID(c, "id")
	if !ok {
		return
	}

	spec := query.Parse(c.Request.URL.Query(), repository.QuizListConfig)
	page, err := h.svc.ListQuizSessions(c.Request.Context(), identity, id, spec)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.List(c, page.Items, page.Pagination)
}

// RecordQuizSession stores a completed quiz.
// POST /api/v1/children/:id/quiz-sessions
func (h *Handler) RecordQuizSession(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	id, ok := httpkit.ParamUUID(c, "id")
	if !ok {
		return
	}

	var req transport.CreateQuizSessionRequest
	if !httpkit.BindJSON(c, h.val, &req) {
		return
	}

	result, err := h.svc.RecordQuizSession(c.Request.Context(), identity, id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, result)
}
