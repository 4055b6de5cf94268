package users

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"educare/internal/http/routertest"
	"educare/internal/users/repository"
	"educare/internal/users/transport"
	"educare/platform/apperr"
	"educare/platform/httpkit"
	"educare/platform/query"

	"github.com/google/uuid"
)

type fakeRepo struct {
	users     []repository.User
	lastSpec  query.Spec
	lastLimit int
}

func (r *fakeRepo) List(ctx context.Context, spec query.Spec) ([]repository.User, int, error) {
	r.lastSpec = spec
	var out []repository.User
	for _, u := range r.users {
		if role, ok := spec.FilterValue("role"); ok && u.Role != role {
			continue
		}
		if spec.Search != "" && !strings.Contains(strings.ToLower(u.Email+" "+u.FullName), strings.ToLower(spec.Search)) {
			continue
		}
		out = append(out, u)
	}
	return query.Window(out, spec), len(out), nil
}

func (r *fakeRepo) GetByID(ctx context.Context, id uuid.UUID) (repository.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			return u, nil
		}
	}
	return repository.User{}, apperr.NotFound("user not found")
}

func (r *fakeRepo) GetByEmail(ctx context.Context, email string) (repository.User, error) {
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return repository.User{}, apperr.NotFound("user not found")
}

func (r *fakeRepo) SearchInvitable(ctx context.Context, teamID uuid.UUID, term string, limit int) ([]repository.User, error) {
	r.lastLimit = limit
	return r.users, nil
}

func seededRepo() *fakeRepo {
	return &fakeRepo{users: []repository.User{
		{ID: uuid.New(), Email: "ana@example.com", FullName: "Ana Admin", Role: httpkit.RoleAdmin},
		{ID: uuid.New(), Email: "pia@example.com", FullName: "Pia Parent", Role: httpkit.RoleParent},
		{ID: uuid.New(), Email: "ed@example.com", FullName: "Ed Educator", Role: httpkit.RoleEducator},
	}}
}

func TestAdminListFiltersAndSearches(t *testing.T) {
	repo := seededRepo()
	h := routertest.New(newModule(repo))
	h.AsRole(httpkit.RoleOwner)

	resp := routertest.Decode[[]transport.UserResponse](t, h.Do(http.MethodGet, "/api/v1/admin/users?role=parent", nil))
	if len(resp.Data) != 1 || resp.Data[0].Email != "pia@example.com" {
		t.Fatalf("expected the parent only, got %+v", resp.Data)
	}

	resp = routertest.Decode[[]transport.UserResponse](t, h.Do(http.MethodGet, "/api/v1/admin/users?search=EDUCATOR", nil))
	if len(resp.Data) != 1 || resp.Pagination.Total != 1 {
		t.Fatalf("expected one search hit, got %+v", resp.Data)
	}
}

func TestAdminListRequiresAdminRole(t *testing.T) {
	h := routertest.New(newModule(seededRepo()))
	h.AsRole(httpkit.RoleProfessional)
	if rec := h.Do(http.MethodGet, "/api/v1/admin/users", nil); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestSearchInvitableClampsLimit(t *testing.T) {
	repo := seededRepo()
	svc := newModule(repo).Service()

	if _, err := svc.SearchInvitable(context.Background(), uuid.New(), "a", 0); err != nil {
		t.Fatal(err)
	}
	if repo.lastLimit != 10 {
		t.Fatalf("expected default limit 10, got %d", repo.lastLimit)
	}
	if _, err := svc.SearchInvitable(context.Background(), uuid.New(), "a", 500); err != nil {
		t.Fatal(err)
	}
	if repo.lastLimit != 50 {
		t.Fatalf("expected limit capped at 50, got %d", repo.lastLimit)
	}
}
