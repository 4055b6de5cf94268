// Package service provides business logic for children and their quiz
// sessions. Visibility is derived from the caller's access scope.
package service

import (
	"context"
	"strings"
	"time"

	"educare/internal/access"
	"educare/internal/children/repository"
	"educare/internal/children/transport"
	"educare/internal/events"
	"educare/platform/apperr"
	"educare/platform/httpkit"
	"educare/platform/logger"
	"educare/platform/query"

	"github.com/google/uuid"
)

// ScopeResolver derives row-level visibility for an identity.
type ScopeResolver interface {
	Resolve(ctx context.Context, id httpkit.Identity) (access.Scope, error)
}

// Page is one page of list results.
type Page[T any] struct {
	Items      []T
	Pagination query.Pagination
}

// Service provides business logic for children.
type Service struct {
	repo   repository.Repository
	scopes ScopeResolver
	bus    events.Bus
	log    *logger.Logger
	now    func() time.Time
}

// New creates a new children service.
func New(repo repository.Repository, scopes ScopeResolver, bus events.Bus, log *logger.Logger) *Service {
	return &Service{repo: repo, scopes: scopes, bus: bus, log: log, now: time.Now}
}

// List returns the children visible to the identity.
func (s *Service) List(ctx context.Context, id httpkit.Identity, spec query.Spec) (Page[transport.ChildResponse], error) {
	scope, err := s.scopes.Resolve(ctx, id)
	if err != nil {
		return Page[transport.ChildResponse]{}, err
	}

	items, total, err := s.repo.List(ctx, spec, scope.ChildPredicate("c"))
	if err != nil {
		return Page[transport.ChildResponse]{}, err
	}

	out := make([]transport.ChildResponse, 0, len(items))
	for _, item := range items {
		out = append(out, ToResponse(item))
	}
	return Page[transport.ChildResponse]{Items: out, Pagination: query.NewPagination(total, spec)}, nil
}

// Get returns a visible child.
func (s *Service) Get(ctx context.Context, id httpkit.Identity, childID uuid.UUID) (transport.ChildResponse, error) {
	child, _, err := s.visibleChild(ctx, id, childID)
	if err != nil {
		return transport.ChildResponse{}, err
	}
	return ToResponse(child), nil
}

// Child returns a visible child record for other modules.
func (s *Service) Child(ctx context.Context, id httpkit.Identity, childID uuid.UUID) (repository.Child, error) {
	child, _, err := s.visibleChild(ctx, id, childID)
	return child, err
}

// Create registers a child. Parents always own the children they create;
// team roles must place the child in one of their teams.
func (s *Service) Create(ctx context.Context, id httpkit.Identity, req transport.CreateChildRequest) (transport.ChildResponse, error) {
	scope, err := s.scopes.Resolve(ctx, id)
	if err != nil {
		return transport.ChildResponse{}, err
	}

	fields := repository.Fields{
		TeamID:    req.TeamID,
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Gender:    req.Gender,
		Notes:     req.Notes,
	}
	if fields.Gender == "" {
		fields.Gender = "unspecified"
	}
	if fields.BirthDate, err = parseDate(req.BirthDate); err != nil {
		return transport.ChildResponse{}, err
	}

	switch {
	case scope.Role == httpkit.RoleParent:
		if req.ParentID != nil && *req.ParentID != scope.UserID {
			return transport.ChildResponse{}, apperr.Forbidden("parents may only register their own children")
		}
		fields.ParentID = scope.UserID
	case req.ParentID == nil:
		return transport.ChildResponse{}, apperr.Validation("parent_id is required")
	default:
		fields.ParentID = *req.ParentID
	}

	if err := s.checkTeam(scope, fields.TeamID); err != nil {
		return transport.ChildResponse{}, err
	}

	child, err := s.repo.Create(ctx, repository.CreateParams{Fields: fields, CreatedBy: scope.UserID})
	if err != nil {
		return transport.ChildResponse{}, err
	}

	s.log.WithContext(ctx).Info("child created", "id", child.ID, "parentId", child.ParentID)
	return ToResponse(child), nil
}

// Update changes a visible child.
func (s *Service) Update(ctx context.Context, id httpkit.Identity, childID uuid.UUID, req transport.UpdateChildRequest) (transport.ChildResponse, error) {
	current, scope, err := s.visibleChild(ctx, id, childID)
	if err != nil {
		return transport.ChildResponse{}, err
	}

	fields := repository.Fields{
		ParentID:  current.ParentID,
		TeamID:    current.TeamID,
		FirstName: current.FirstName,
		LastName:  current.LastName,
		BirthDate: current.BirthDate,
		Gender:    current.Gender,
		Notes:     current.Notes,
	}

	if req.ParentID != nil && *req.ParentID != current.ParentID {
		if scope.Role == httpkit.RoleParent {
			return transport.ChildResponse{}, apperr.Forbidden("parents may not reassign children")
		}
		fields.ParentID = *req.ParentID
	}
	if req.ClearTeam {
		fields.TeamID = nil
	} else if req.TeamID != nil {
		fields.TeamID = req.TeamID
	}
	if err := s.checkTeam(scope, fields.TeamID); err != nil {
		return transport.ChildResponse{}, err
	}

	if req.FirstName != nil {
		fields.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		fields.LastName = strings.TrimSpace(*req.LastName)
	}
	if req.BirthDate != nil {
		if fields.BirthDate, err = parseDate(req.BirthDate); err != nil {
			return transport.ChildResponse{}, err
		}
	}
	if req.Gender != nil {
		fields.Gender = *req.Gender
	}
	if req.Notes != nil {
		fields.Notes = *req.Notes
	}

	child, err := s.repo.Update(ctx, repository.UpdateParams{Fields: fields, ID: childID, UpdatedBy: scope.UserID})
	if err != nil {
		return transport.ChildResponse{}, err
	}
	return ToResponse(child), nil
}

// Delete removes a visible child.
func (s *Service) Delete(ctx context.Context, id httpkit.Identity, childID uuid.UUID) error {
	scope, err := s.scopes.Resolve(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, childID, scope.ChildPredicate("c")); err != nil {
		return err
	}
	s.log.WithContext(ctx).Info("child deleted", "id", childID)
	return nil
}

// ListQuizSessions returns one page of a visible child's quiz sessions.
func (s *Service) ListQuizSessions(ctx context.Context, id httpkit.Identity, childID uuid.UUID, spec query.Spec) (Page[transport.QuizSessionResponse], error) {
	if _, _, err := s.visibleChild(ctx, id, childID); err != nil {
		return Page[transport.QuizSessionResponse]{}, err
	}

	sessions, total, err := s.repo.ListQuizSessions(ctx, childID, spec)
	if err != nil {
		return Page[transport.QuizSessionResponse]{}, err
	}

	out := make([]transport.QuizSessionResponse, 0, len(sessions))
	for _, qs := range sessions {
		out = append(out, toQuizResponse(qs))
	}
	return Page[transport.QuizSessionResponse]{Items: out, Pagination: query.NewPagination(total, spec)}, nil
}

// RecentQuizSessions returns up to limit of the child's latest sessions
// without a visibility check. Callers must have checked access.
func (s *Service) RecentQuizSessions(ctx context.Context, childID uuid.UUID, limit int) ([]repository.QuizSession, error) {
	spec := query.Spec{Page: 1, Limit: limit, SortColumn: "completed_at", Order: query.Desc}
	sessions, _, err := s.repo.ListQuizSessions(ctx, childID, spec)
	return sessions, err
}

// RecordQuizSession stores a quiz result and announces the child's new progress.
func (s *Service) RecordQuizSession(ctx context.Context, id httpkit.Identity, childID uuid.UUID, req transport.CreateQuizSessionRequest) (transport.QuizSessionRecorded, error) {
	child, _, err := s.visibleChild(ctx, id, childID)
	if err != nil {
		return transport.QuizSessionRecorded{}, err
	}

	completedAt := s.now()
	if req.CompletedAt != nil {
		completedAt = *req.CompletedAt
	}

	session, err := s.repo.CreateQuizSession(ctx, repository.CreateQuizSessionParams{
		ChildID:     childID,
		QuizName:    strings.TrimSpace(req.QuizName),
		Score:       req.Score,
		MaxScore:    req.MaxScore,
		CompletedAt: completedAt,
	})
	if err != nil {
		return transport.QuizSessionRecorded{}, err
	}

	progress := repository.ProgressPercent(child.ScoreTotal+int64(req.Score), child.MaxTotal+int64(req.MaxScore))
	if s.bus != nil {
		s.bus.Publish(ctx, events.ChildProgressChanged{
			BaseEvent: events.NewBaseEvent(),
			ChildID:   childID,
			ParentID:  child.ParentID,
			Progress:  progress,
		})
	}

	return transport.QuizSessionRecorded{Session: toQuizResponse(session), Progress: progress}, nil
}

func (s *Service) visibleChild(ctx context.Context, id httpkit.Identity, childID uuid.UUID) (repository.Child, access.Scope, error) {
	scope, err := s.scopes.Resolve(ctx, id)
	if err != nil {
		return repository.Child{}, access.Scope{}, err
	}
	child, err := s.repo.GetByID(ctx, childID, scope.ChildPredicate("c"))
	if err != nil {
		return repository.Child{}, access.Scope{}, err
	}
	return child, scope, nil
}

// checkTeam requires team roles to keep children inside their own teams.
func (s *Service) checkTeam(scope access.Scope, teamID *uuid.UUID) error {
	if scope.Unrestricted() {
		return nil
	}
	if teamID == nil {
		if scope.Role == httpkit.RoleParent {
			return nil
		}
		return apperr.Validation("team_id is required")
	}
	return scope.RequireTeam(*teamID)
}

// ToResponse converts a child record to its client representation.
func ToResponse(c repository.Child) transport.ChildResponse {
	resp := transport.ChildResponse{
		ID:           c.ID,
		ParentID:     c.ParentID,
		TeamID:       c.TeamID,
		FirstName:    c.FirstName,
		LastName:     c.LastName,
		Gender:       c.Gender,
		Notes:        c.Notes,
		Progress:     c.Progress(),
		QuizSessions: c.SessionCount,
		CreatedBy:    c.CreatedBy,
		UpdatedBy:    c.UpdatedBy,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
	if c.BirthDate != nil {
		formatted := c.BirthDate.Format(transport.DateLayout)
		resp.BirthDate = &formatted
	}
	return resp
}

func toQuizResponse(q repository.QuizSession) transport.QuizSessionResponse {
	return transport.QuizSessionResponse{
		ID:          q.ID,
		ChildID:     q.ChildID,
		QuizName:    q.QuizName,
		Score:       q.Score,
		MaxScore:    q.MaxScore,
		CompletedAt: q.CompletedAt,
		CreatedAt:   q.CreatedAt,
	}
}

func parseDate(raw *string) (*time.Time, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	t, err := time.Parse(transport.DateLayout, strings.TrimSpace(*raw))
	if err != nil {
		return nil, apperr.Validation("birth_date must be formatted as YYYY-MM-DD")
	}
	return &t, nil
}
