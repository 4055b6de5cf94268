package handler

import (
	"net/http"

	"educare/internal/teams/repository"
	"educare/internal/teams/service"
	"educare/internal/teams/transport"
	"educare/platform/httpkit"
	"educare/platform/query"
	"educare/platform/validator"

	"github.com/gin-gonic/gin"
)

// Handler handles HTTP requests for teams and memberships.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new teams handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// List returns the teams visible to the caller.
// GET /api/v1/teams
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

// Get returns one team.
// GET /api/v1/teams/:id
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

// Create creates a team.
// POST /api/v1/teams
func (h *Handler) Create(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	var req transport.CreateTeamRequest
	if !httpkit.BindJSON(c, h.val, &req) {
		return
	}

	result, err := h.svc.Create(c.Request.Context(), identity, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, result)
}

// Update changes a team.
// PUT /api/v1/teams/:id
func (h *Handler) Update(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	id, ok := httpkit.ParamUUID(c, "id")
	if !ok {
		return
	}

	var req transport.UpdateTeamRequest
	if !httpkit.BindJSON(c, h.val, &req) {
		return
	}

	result, err := h.svc.Update(c.Request.Context(), identity, id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Delete removes a team.
// DELETE /api/v1/teams/:id
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
	httpkit.Message(c, http.StatusOK, "team deleted")
}

// ListMembers returns a team's memberships.
// GET /api/v1/teams/:id/members
func (h *Handler) ListMembers(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	id, ok := httpkit.ParamUUID(c, "id")
	if !ok {
		return
	}

	result, err := h.svc.ListMembers(c.Request.Context(), identity, id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Invite invites a user.
// POST /api/v1/teams/:id/members
func (h *Handler) Invite(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	id, ok := httpkit.ParamUUID(c, "id")
	if !ok {
		return
	}

	var req transport.InviteMemberRequest
	if !httpkit.BindJSON(c, h.val, &req) {
		return
	}

	result, err := h.svc.Invite(c.Request.Context(), identity, id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, result)
}

// UpdateMember changes a membership.
// PUT /api/v1/teams/:id/members/:userId
func (h *Handler) UpdateMember(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	id, ok := httpkit.ParamUUID(c, "id")
	if !ok {
		return
	}
	userID, ok := httpkit.ParamUUID(c, "userId")
	if !ok {
		return
	}

	var req transport.UpdateMemberRequest
	if !httpkit.BindJSON(c, h.val, &req) {
		return
	}

	result, err := h.svc.UpdateMember(c.Request.Context(), identity, id, userID, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// RemoveMember deletes a membership.
// DELETE /api/v1/teams/:id/members/:userId
func (h *Handler) RemoveMember(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	id, ok := httpkit.ParamUUID(c, "id")
	if !ok {
		return
	}
	userID, ok := httpkit.ParamUUID(c, "userId")
	if !ok {
		return
	}

	if err := h.svc.RemoveMember(c.Request.Context(), identity, id, userID); httpkit.HandleError(c, err) {
		return
	}
	httpkit.Message(c, http.StatusOK, "member removed")
}

// InvitableUsers searches users that can still be invited.
// GET /api/v1/teams/:id/invitable-users
func (h *Handler) InvitableUsers(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	id, ok := httpkit.ParamUUID(c, "id")
	if !ok {
		return
	}

	var q transport.InvitableUsersQuery
	if !httpkit.BindQuery(c, h.val, &q) {
		return
	}

	result, err := h.svc.InvitableUsers(c.Request.Context(), identity, id, q)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}
