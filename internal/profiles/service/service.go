// Package service provides business logic for user profiles.
package service

import (
	"context"
	"errors"
	"strings"

	"educare/internal/profiles/repository"
	"educare/internal/profiles/transport"
	"educare/platform/apperr"
	"educare/platform/logger"
	"educare/platform/phone"

	"github.com/google/uuid"
)

const defaultLocale = "en"

// Service provides business logic for profiles.
type Service struct {
	repo repository.Repository
	log  *logger.Logger
}

// New creates a new profiles service.
func New(repo repository.Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// Get returns the user's profile, or defaults when none is stored.
func (s *Service) Get(ctx context.Context, userID uuid.UUID) (transport.ProfileResponse, error) {
	p, err := s.load(ctx, userID)
	if err != nil {
		return transport.ProfileResponse{}, err
	}
	return toResponse(p), nil
}

// Update applies the present fields. Phone numbers are stored in E.164,
// interpreting national numbers in the profile locale's region.
func (s *Service) Update(ctx context.Context, userID uuid.UUID, req transport.UpdateProfileRequest) (transport.ProfileResponse, error) {
	p, err := s.load(ctx, userID)
	if err != nil {
		return transport.ProfileResponse{}, err
	}

	if req.DisplayName != nil {
		p.DisplayName = strings.TrimSpace(*req.DisplayName)
	}
	if req.Bio != nil {
		p.Bio = strings.TrimSpace(*req.Bio)
	}
	if req.Locale != nil {
		p.Locale = strings.TrimSpace(*req.Locale)
	}
	if req.Phone != nil {
		normalized, err := phone.NormalizeE164(*req.Phone, phone.RegionFromLocale(p.Locale))
		if errors.Is(err, phone.ErrInvalidNumber) {
			return transport.ProfileResponse{}, apperr.Validation("phone must be a valid phone number")
		}
		if err != nil {
			return transport.ProfileResponse{}, err
		}
		p.Phone = nil
		if normalized != "" {
			p.Phone = &normalized
		}
	}

	saved, err := s.repo.Upsert(ctx, p)
	if err != nil {
		return transport.ProfileResponse{}, err
	}
	s.log.WithContext(ctx).Info("profile updated", "userId", userID)
	return toResponse(saved), nil
}

func (s *Service) load(ctx context.Context, userID uuid.UUID) (repository.Profile, error) {
	p, err := s.repo.Get(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return repository.Profile{UserID: userID, Locale: defaultLocale}, nil
	}
	return p, err
}

func toResponse(p repository.Profile) transport.ProfileResponse {
	resp := transport.ProfileResponse{
		UserID:      p.UserID,
		DisplayName: p.DisplayName,
		Phone:       p.Phone,
		Bio:         p.Bio,
		Locale:      p.Locale,
	}
	if !p.UpdatedAt.IsZero() {
		updated := p.UpdatedAt
		resp.UpdatedAt = &updated
	}
	return resp
}
