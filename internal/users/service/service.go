// Package service provides the user directory consumed by admin listings
// and team invitations.
package service

import (
	"context"

	"educare/internal/users/repository"
	"educare/internal/users/transport"
	"educare/platform/query"

	"github.com/google/uuid"
)

const (
	defaultInvitableLimit = 10
	maxInvitableLimit     = 50
)

// Service provides user directory operations.
type Service struct {
	repo repository.Repository
}

// New creates a new users service.
func New(repo repository.Repository) *Service {
	return &Service{repo: repo}
}

// List returns one page of users.
func (s *Service) List(ctx context.Context, spec query.Spec) ([]transport.UserResponse, query.Pagination, error) {
	users, total, err := s.repo.List(ctx, spec)
	if err != nil {
		return nil, query.Pagination{}, err
	}
	return ToResponses(users), query.NewPagination(total, spec), nil
}

// GetByID returns a user.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (repository.User, error) {
	return s.repo.GetByID(ctx, id)
}

// GetByEmail returns a user by email.
func (s *Service) GetByEmail(ctx context.Context, email string) (repository.User, error) {
	return s.repo.GetByEmail(ctx, email)
}

// SearchInvitable returns users that can still be invited to the team.
func (s *Service) SearchInvitable(ctx context.Context, teamID uuid.UUID, term string, limit int) ([]transport.UserResponse, error) {
	if limit <= 0 {
		limit = defaultInvitableLimit
	}
	limit = min(limit, maxInvitableLimit)

	users, err := s.repo.SearchInvitable(ctx, teamID, term, limit)
	if err != nil {
		return nil, err
	}
	return ToResponses(users), nil
}

// ToResponses converts users to their client representation.
func ToResponses(users []repository.User) []transport.UserResponse {
	out := make([]transport.UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, transport.UserResponse{
			ID:        u.ID,
			Email:     u.Email,
			FullName:  u.FullName,
			Role:      u.Role,
			CreatedAt: u.CreatedAt,
			UpdatedAt: u.UpdatedAt,
		})
	}
	return out
}
