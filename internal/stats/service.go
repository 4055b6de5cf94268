package stats

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

// Statistics is the platform overview shown to administrators.
type Statistics struct {
	UsersByRole    []RoleCount `json:"users_by_role"`
	TotalUsers     int         `json:"total_users"`
	Children       int         `json:"children"`
	Teams          int         `json:"teams"`
	MediaResources int         `json:"media_resources"`
	MediaViews     int64       `json:"media_views"`
	QuizSessions   int         `json:"quiz_sessions"`
	GeneratedAt    time.Time   `json:"generated_at"`
}

// Service gathers statistics.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService creates a statistics service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Collect runs every aggregate concurrently. The first failure cancels the
// rest and is returned.
func (s *Service) Collect(ctx context.Context) (Statistics, error) {
	var out Statistics
	var media MediaTotals

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		out.UsersByRole, err = s.repo.UsersByRole(ctx)
		return err
	})
	g.Go(func() (err error) {
		out.Children, err = s.repo.CountChildren(ctx)
		return err
	})
	g.Go(func() (err error) {
		out.Teams, err = s.repo.CountTeams(ctx)
		return err
	})
	g.Go(func() (err error) {
		media, err = s.repo.MediaTotals(ctx)
		return err
	})
	g.Go(func() (err error) {
		out.QuizSessions, err = s.repo.CountQuizSessions(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return Statistics{}, err
	}

	for _, rc := range out.UsersByRole {
		out.TotalUsers += rc.Count
	}
	if out.UsersByRole == nil {
		out.UsersByRole = []RoleCount{}
	}
	out.MediaResources = media.Resources
	out.MediaViews = media.Views
	out.GeneratedAt = s.now().UTC()
	return out, nil
}
