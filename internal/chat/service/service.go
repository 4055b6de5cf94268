// Package service provides business logic for team chat.
package service

import (
	"context"

	"educare/internal/access"
	"educare/internal/chat/repository"
	"educare/internal/chat/transport"
	"educare/internal/events"
	"educare/platform/apperr"
	"educare/platform/httpkit"
	"educare/platform/logger"
	"educare/platform/query"
	"educare/platform/sanitize"

	"github.com/google/uuid"
)

// ScopeResolver derives row-level visibility for an identity.
type ScopeResolver interface {
	Resolve(ctx context.Context, id httpkit.Identity) (access.Scope, error)
}

// Service provides business logic for chat groups and messages.
type Service struct {
	repo   repository.Repository
	scopes ScopeResolver
	bus    events.Bus
	log    *logger.Logger
}

// New creates a new chat service.
func New(repo repository.Repository, scopes ScopeResolver, bus events.Bus, log *logger.Logger) *Service {
	return &Service{repo: repo, scopes: scopes, bus: bus, log: log}
}

// ListGroups returns the groups of the caller's teams.
func (s *Service) ListGroups(ctx context.Context, id httpkit.Identity, spec query.Spec) ([]transport.GroupResponse, query.Pagination, error) {
	scope, err := s.scopes.Resolve(ctx, id)
	if err != nil {
		return nil, query.Pagination{}, err
	}

	groups, total, err := s.repo.ListGroups(ctx, spec, scope.TeamPredicate("g.team_id"))
	if err != nil {
		return nil, query.Pagination{}, err
	}

	out := make([]transport.GroupResponse, 0, len(groups))
	for _, g := range groups {
		out = append(out, toGroupResponse(g))
	}
	return out, query.NewPagination(total, spec), nil
}

// GetGroup returns one group of the caller's teams.
func (s *Service) GetGroup(ctx context.Context, id httpkit.Identity, groupID uuid.UUID) (transport.GroupResponse, error) {
	group, _, err := s.visibleGroup(ctx, id, groupID)
	if err != nil {
		return transport.GroupResponse{}, err
	}
	return toGroupResponse(group), nil
}

// CreateGroup creates a group in a team the caller belongs to.
func (s *Service) CreateGroup(ctx context.Context, id httpkit.Identity, req transport.CreateGroupRequest) (transport.GroupResponse, error) {
	scope, err := s.scopes.Resolve(ctx, id)
	if err != nil {
		return transport.GroupResponse{}, err
	}
	if err := scope.RequireTeam(req.TeamID); err != nil {
		return transport.GroupResponse{}, err
	}

	group, err := s.repo.CreateGroup(ctx, repository.CreateGroupParams{
		TeamID:      req.TeamID,
		Name:        sanitize.Line(req.Name),
		Description: sanitize.Text(req.Description),
		CreatedBy:   scope.UserID,
	})
	if err != nil {
		return transport.GroupResponse{}, err
	}

	s.log.WithContext(ctx).Info("chat group created", "id", group.ID, "teamId", group.TeamID)
	return toGroupResponse(group), nil
}

// DeleteGroup removes a group. Only its creator and admins may do so.
func (s *Service) DeleteGroup(ctx context.Context, id httpkit.Identity, groupID uuid.UUID) error {
	group, scope, err := s.visibleGroup(ctx, id, groupID)
	if err != nil {
		return err
	}
	if !scope.Unrestricted() && (group.CreatedBy == nil || *group.CreatedBy != scope.UserID) {
		return apperr.Forbidden("only the group creator may delete this group")
	}
	return s.repo.DeleteGroup(ctx, groupID)
}

// ListMessages returns one page of a group's messages.
func (s *Service) ListMessages(ctx context.Context, id httpkit.Identity, groupID uuid.UUID, spec query.Spec) ([]transport.MessageResponse, query.Pagination, error) {
	if _, _, err := s.visibleGroup(ctx, id, groupID); err != nil {
		return nil, query.Pagination{}, err
	}

	messages, total, err := s.repo.ListMessages(ctx, groupID, spec)
	if err != nil {
		return nil, query.Pagination{}, err
	}

	out := make([]transport.MessageResponse, 0, len(messages))
	for _, m := range messages {
		out = append(out, toMessageResponse(m))
	}
	return out, query.NewPagination(total, spec), nil
}

// PostMessage stores a message and announces it to the team.
func (s *Service) PostMessage(ctx context.Context, id httpkit.Identity, groupID uuid.UUID, req transport.PostMessageRequest) (transport.MessageResponse, error) {
	group, scope, err := s.visibleGroup(ctx, id, groupID)
	if err != nil {
		return transport.MessageResponse{}, err
	}

	content := sanitize.Text(req.Content)
	if content == "" {
		return transport.MessageResponse{}, apperr.Validation("message content is required")
	}

	msg, err := s.repo.CreateMessage(ctx, repository.CreateMessageParams{
		GroupID:  groupID,
		SenderID: scope.UserID,
		Content:  content,
	})
	if err != nil {
		return transport.MessageResponse{}, err
	}

	if s.bus != nil {
		s.bus.Publish(ctx, events.ChatMessagePosted{
			BaseEvent: events.NewBaseEvent(),
			MessageID: msg.ID,
			GroupID:   groupID,
			TeamID:    group.TeamID,
			SenderID:  scope.UserID,
			Content:   msg.Content,
		})
	}
	return toMessageResponse(msg), nil
}

// visibleGroup loads a group and hides it when its team is out of scope.
func (s *Service) visibleGroup(ctx context.Context, id httpkit.Identity, groupID uuid.UUID) (repository.Group, access.Scope, error) {
	scope, err := s.scopes.Resolve(ctx, id)
	if err != nil {
		return repository.Group{}, access.Scope{}, err
	}
	group, err := s.repo.GetGroup(ctx, groupID)
	if err != nil {
		return repository.Group{}, access.Scope{}, err
	}
	if !scope.CanAccessTeam(group.TeamID) {
		return repository.Group{}, access.Scope{}, apperr.NotFound("chat group not found")
	}
	return group, scope, nil
}

func toGroupResponse(g repository.Group) transport.GroupResponse {
	return transport.GroupResponse{
		ID:            g.ID,
		TeamID:        g.TeamID,
		Name:          g.Name,
		Description:   g.Description,
		CreatedBy:     g.CreatedBy,
		MessageCount:  g.MessageCount,
		LastMessageAt: g.LastMessageAt,
		CreatedAt:     g.CreatedAt,
		UpdatedAt:     g.UpdatedAt,
	}
}

func toMessageResponse(m repository.Message) transport.MessageResponse {
	return transport.MessageResponse{
		ID:         m.ID,
		GroupID:    m.GroupID,
		SenderID:   m.SenderID,
		SenderName: m.SenderName,
		Content:    m.Content,
		CreatedAt:  m.CreatedAt,
	}
}
