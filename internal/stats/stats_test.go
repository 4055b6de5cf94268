package stats

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"educare/internal/http/routertest"
	"educare/platform/httpkit"
)

type fakeRepo struct {
	teamsErr error
}

func (fakeRepo) UsersByRole(ctx context.Context) ([]RoleCount, error) {
	return []RoleCount{{Role: "admin", Count: 1}, {Role: "parent", Count: 4}}, nil
}

func (fakeRepo) CountChildren(ctx context.Context) (int, error) { return 6, nil }

func (r fakeRepo) CountTeams(ctx context.Context) (int, error) { return 2, r.teamsErr }

func (fakeRepo) MediaTotals(ctx context.Context) (MediaTotals, error) {
	return MediaTotals{Resources: 3, Views: 42}, nil
}

func (fakeRepo) CountQuizSessions(ctx context.Context) (int, error) { return 9, nil }

func TestStatisticsAggregatesEverySource(t *testing.T) {
	h := routertest.New(newModule(fakeRepo{}))
	h.AsRole(httpkit.RoleAdmin)

	rec := h.Do(http.MethodGet, "/api/v1/admin/statistics", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	got := routertest.Decode[Statistics](t, rec).Data
	if got.TotalUsers != 5 || got.Children != 6 || got.Teams != 2 || got.MediaResources != 3 || got.MediaViews != 42 || got.QuizSessions != 9 {
		t.Fatalf("unexpected statistics %+v", got)
	}
	if len(got.UsersByRole) != 2 || got.GeneratedAt.IsZero() {
		t.Fatalf("unexpected breakdown %+v", got)
	}
}

func TestStatisticsRequireAdmin(t *testing.T) {
	h := routertest.New(newModule(fakeRepo{}))
	h.AsRole(httpkit.RoleEducator)
	if rec := h.Do(http.MethodGet, "/api/v1/admin/statistics", nil); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestStatisticsFailWhenOneQueryFails(t *testing.T) {
	boom := errors.New("connection reset")
	_, err := NewService(fakeRepo{teamsErr: boom}).Collect(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("expected the failing query's error, got %v", err)
	}

	h := routertest.New(newModule(fakeRepo{teamsErr: boom}))
	h.AsRole(httpkit.RoleOwner)
	if rec := h.Do(http.MethodGet, "/api/v1/admin/statistics", nil); rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}
