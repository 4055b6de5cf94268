// Package service provides activity recommendations and the caller's own
// activity list.
package service

import (
	"context"
	"strings"
	"time"

	"educare/internal/activities/provider"
	"educare/internal/activities/repository"
	"educare/internal/activities/transport"
	childrenrepo "educare/internal/children/repository"
	"educare/platform/apperr"
	"educare/platform/httpkit"
	"educare/platform/logger"
	"educare/platform/query"

	"github.com/google/uuid"
)

// ChildLookup returns a child visible to the identity.
type ChildLookup interface {
	Child(ctx context.Context, id httpkit.Identity, childID uuid.UUID) (childrenrepo.Child, error)
}

// Service provides business logic for activities.
type Service struct {
	provider provider.Provider
	repo     repository.Repository
	children ChildLookup
	log      *logger.Logger
	now      func() time.Time
}

// New creates a new activities service.
func New(p provider.Provider, repo repository.Repository, children ChildLookup, log *logger.Logger) *Service {
	return &Service{provider: p, repo: repo, children: children, log: log, now: time.Now}
}

// Recommend returns activities matching the query. A child id stands in for
// age_months using the child's birth date.
func (s *Service) Recommend(ctx context.Context, id httpkit.Identity, q transport.RecommendationsQuery) ([]transport.ActivityResponse, error) {
	if err := httpkit.Authorize(id); err != nil {
		return nil, err
	}

	rq := provider.RecommendationQuery{AgeMonths: q.AgeMonths, Category: strings.TrimSpace(q.Category), Limit: q.Limit}
	if q.ChildID != "" && rq.AgeMonths == nil {
		childID, err := uuid.Parse(q.ChildID)
		if err != nil {
			return nil, apperr.Validation("invalid child_id")
		}
		child, err := s.children.Child(ctx, id, childID)
		if err != nil {
			return nil, err
		}
		if child.BirthDate != nil {
			age := childrenrepo.AgeInMonths(*child.BirthDate, s.now())
			rq.AgeMonths = &age
		}
	}

	return s.provider.Recommend(ctx, rq)
}

// List returns one page of the caller's activities.
func (s *Service) List(ctx context.Context, id httpkit.Identity, spec query.Spec) ([]transport.UserActivityResponse, query.Pagination, error) {
	if err := httpkit.Authorize(id); err != nil {
		return nil, query.Pagination{}, err
	}

	items, total, err := s.repo.List(ctx, id.UserID(), spec)
	if err != nil {
		return nil, query.Pagination{}, err
	}

	out := make([]transport.UserActivityResponse, 0, len(items))
	for _, a := range items {
		out = append(out, toResponse(a))
	}
	return out, query.NewPagination(total, spec), nil
}

// Create adds an activity from the provider to the caller's list.
func (s *Service) Create(ctx context.Context, id httpkit.Identity, req transport.CreateUserActivityRequest) (transport.UserActivityResponse, error) {
	if err := httpkit.Authorize(id); err != nil {
		return transport.UserActivityResponse{}, err
	}

	activity, err := s.provider.Get(ctx, req.ActivityID)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return transport.UserActivityResponse{}, apperr.Validation("unknown activity_id")
		}
		return transport.UserActivityResponse{}, err
	}
	if err := s.checkChild(ctx, id, req.ChildID); err != nil {
		return transport.UserActivityResponse{}, err
	}

	fields := repository.Fields{
		ChildID:    req.ChildID,
		ActivityID: activity.ID,
		Title:      strings.TrimSpace(req.Title),
		Status:     req.Status,
		Notes:      strings.TrimSpace(req.Notes),
	}
	if fields.Title == "" {
		fields.Title = activity.Title
	}
	if fields.Status == "" {
		fields.Status = repository.StatusPlanned
	}

	created, err := s.repo.Create(ctx, id.UserID(), fields)
	if err != nil {
		return transport.UserActivityResponse{}, err
	}
	s.log.WithContext(ctx).Info("activity added", "id", created.ID, "activityId", created.ActivityID)
	return toResponse(created), nil
}

// Update changes one of the caller's activities.
func (s *Service) Update(ctx context.Context, id httpkit.Identity, activityID uuid.UUID, req transport.UpdateUserActivityRequest) (transport.UserActivityResponse, error) {
	if err := httpkit.Authorize(id); err != nil {
		return transport.UserActivityResponse{}, err
	}

	current, err := s.repo.Get(ctx, id.UserID(), activityID)
	if err != nil {
		return transport.UserActivityResponse{}, err
	}

	fields := repository.Fields{
		ChildID:    current.ChildID,
		ActivityID: current.ActivityID,
		Title:      current.Title,
		Status:     current.Status,
		Notes:      current.Notes,
	}
	if req.ClearChild {
		fields.ChildID = nil
	} else if req.ChildID != nil {
		if err := s.checkChild(ctx, id, req.ChildID); err != nil {
			return transport.UserActivityResponse{}, err
		}
		fields.ChildID = req.ChildID
	}
	if req.Title != nil {
		fields.Title = strings.TrimSpace(*req.Title)
	}
	if req.Status != nil {
		fields.Status = *req.Status
	}
	if req.Notes != nil {
		fields.Notes = strings.TrimSpace(*req.Notes)
	}

	updated, err := s.repo.Update(ctx, id.UserID(), activityID, fields)
	if err != nil {
		return transport.UserActivityResponse{}, err
	}
	return toResponse(updated), nil
}

// Delete removes one of the caller's activities.
func (s *Service) Delete(ctx context.Context, id httpkit.Identity, activityID uuid.UUID) error {
	if err := httpkit.Authorize(id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id.UserID(), activityID)
}

func (s *Service) checkChild(ctx context.Context, id httpkit.Identity, childID *uuid.UUID) error {
	if childID == nil {
		return nil
	}
	_, err := s.children.Child(ctx, id, *childID)
	return err
}

func toResponse(a repository.UserActivity) transport.UserActivityResponse {
	return transport.UserActivityResponse{
		ID:          a.ID,
		ChildID:     a.ChildID,
		ActivityID:  a.ActivityID,
		Title:       a.Title,
		Status:      a.Status,
		Notes:       a.Notes,
		CompletedAt: a.CompletedAt,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}
