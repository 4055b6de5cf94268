package children

import (
	"context"
	"net/http"
	"slices"
	"sync"
	"testing"
	"time"

	"educare/internal/access"
	"educare/internal/children/repository"
	"educare/internal/children/transport"
	"educare/internal/events"
	"educare/internal/http/routertest"
	"educare/platform/apperr"
	"educare/platform/httpkit"
	"educare/platform/logger"
	"educare/platform/query"
	"educare/platform/validator"

	"github.com/google/uuid"
)

type memberships map[uuid.UUID][]uuid.UUID

func (m memberships) ActiveTeamIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	return m[userID], nil
}

type fakeRepo struct {
	mu       sync.Mutex
	children map[uuid.UUID]repository.Child
	sessions []repository.QuizSession
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{children: make(map[uuid.UUID]repository.Child)}
}

// matches evaluates the scope predicates produced by access.Scope.
func matches(c repository.Child, p query.Predicate) bool {
	switch p.SQL {
	case "":
		return true
	case "c.parent_id = ?":
		return c.ParentID == p.Args[0].(uuid.UUID)
	case "c.team_id = ANY(?)":
		return c.TeamID != nil && slices.Contains(p.Args[0].([]uuid.UUID), *c.TeamID)
	}
	panic("unexpected predicate " + p.SQL)
}

func (r *fakeRepo) withTotals(c repository.Child) repository.Child {
	c.ScoreTotal, c.MaxTotal, c.SessionCount = 0, 0, 0
	for _, s := range r.sessions {
		if s.ChildID == c.ID {
			c.ScoreTotal += int64(s.Score)
			c.MaxTotal += int64(s.MaxScore)
			c.SessionCount++
		}
	}
	return c
}

func (r *fakeRepo) List(ctx context.Context, spec query.Spec, scope query.Predicate) ([]repository.Child, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []repository.Child
	for _, c := range r.children {
		if matches(c, scope) {
			out = append(out, r.withTotals(c))
		}
	}
	slices.SortFunc(out, func(a, b repository.Child) int { return a.CreatedAt.Compare(b.CreatedAt) })
	return query.Window(out, spec), len(out), nil
}

func (r *fakeRepo) GetByID(ctx context.Context, id uuid.UUID, scope query.Predicate) (repository.Child, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.children[id]
	if !ok || !matches(c, scope) {
		return repository.Child{}, apperr.NotFound("child not found")
	}
	return r.withTotals(c), nil
}

func (r *fakeRepo) Create(ctx context.Context, params repository.CreateParams) (repository.Child, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	createdBy := params.CreatedBy
	c := repository.Child{
		ID: uuid.New(), ParentID: params.ParentID, TeamID: params.TeamID,
		FirstName: params.FirstName, LastName: params.LastName, BirthDate: params.BirthDate,
		Gender: params.Gender, Notes: params.Notes, CreatedBy: &createdBy,
		CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}
	r.children[c.ID] = c
	return c, nil
}

func (r *fakeRepo) Update(ctx context.Context, params repository.UpdateParams) (repository.Child, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.children[params.ID]
	if !ok {
		return repository.Child{}, apperr.NotFound("child not found")
	}
	c.ParentID, c.TeamID, c.FirstName, c.LastName = params.ParentID, params.TeamID, params.FirstName, params.LastName
	c.BirthDate, c.Gender, c.Notes = params.BirthDate, params.Gender, params.Notes
	r.children[c.ID] = c
	return r.withTotals(c), nil
}

func (r *fakeRepo) Delete(ctx context.Context, id uuid.UUID, scope query.Predicate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.children[id]
	if !ok || !matches(c, scope) {
		return apperr.NotFound("child not found")
	}
	delete(r.children, id)
	return nil
}

func (r *fakeRepo) ListQuizSessions(ctx context.Context, childID uuid.UUID, spec query.Spec) ([]repository.QuizSession, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []repository.QuizSession
	for _, s := range r.sessions {
		if s.ChildID == childID {
			out = append(out, s)
		}
	}
	return query.Window(out, spec), len(out), nil
}

func (r *fakeRepo) CreateQuizSession(ctx context.Context, params repository.CreateQuizSessionParams) (repository.QuizSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := repository.QuizSession{
		ID: uuid.New(), ChildID: params.ChildID, QuizName: params.QuizName,
		Score: params.Score, MaxScore: params.MaxScore, CompletedAt: params.CompletedAt, CreatedAt: time.Now(),
	}
	r.sessions = append(r.sessions, s)
	return s, nil
}

type fixture struct {
	repo    *fakeRepo
	members memberships
	bus     *events.InMemoryBus
	h       *routertest.Harness
}

func newFixture() *fixture {
	f := &fixture{repo: newFakeRepo(), members: memberships{}, bus: events.NewInMemoryBus(logger.Discard())}
	m := newModule(f.repo, access.NewResolver(f.members), f.bus, validator.New(), logger.Discard())
	f.h = routertest.New(m)
	return f
}

func (f *fixture) createChild(t *testing.T, body map[string]any) transport.ChildResponse {
	t.Helper()
	rec := f.h.Do(http.MethodPost, "/api/v1/children", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create child: expected 201, got %d (%s)", rec.Code, rec.Body.String())
	}
	return routertest.Decode[transport.ChildResponse](t, rec).Data
}

func TestProgressPercent(t *testing.T) {
	cases := []struct {
		score, max int64
		want       int
	}{
		{0, 0, 0},
		{1, 3, 33},
		{2, 3, 67},
		{10, 10, 100},
	}
	for _, tc := range cases {
		if got := repository.ProgressPercent(tc.score, tc.max); got != tc.want {
			t.Errorf("ProgressPercent(%d, %d) = %d, want %d", tc.score, tc.max, got, tc.want)
		}
	}
}

func TestQuizSessionsDriveProgress(t *testing.T) {
	f := newFixture()
	f.h.AsRole(httpkit.RoleParent)

	var mu sync.Mutex
	var published []events.ChildProgressChanged
	f.bus.Subscribe(events.ChildProgressChanged{}.EventName(), events.HandlerFunc(func(ctx context.Context, e events.Event) error {
		mu.Lock()
		defer mu.Unlock()
		published = append(published, e.(events.ChildProgressChanged))
		return nil
	}))

	child := f.createChild(t, map[string]any{"first_name": "Mila", "birth_date": "2021-04-03"})
	if child.Progress != 0 || child.BirthDate == nil || *child.BirthDate != "2021-04-03" {
		t.Fatalf("unexpected new child %+v", child)
	}

	path := "/api/v1/children/" + child.ID.String()
	for _, quiz := range []map[string]any{
		{"quiz_name": "Colors", "score": 8, "max_score": 10},
		{"quiz_name": "Shapes", "score": 1, "max_score": 2},
	} {
		if rec := f.h.Do(http.MethodPost, path+"/quiz-sessions", quiz); rec.Code != http.StatusCreated {
			t.Fatalf("record quiz: expected 201, got %d (%s)", rec.Code, rec.Body.String())
		}
	}
	f.bus.Wait()

	got := routertest.Decode[transport.ChildResponse](t, f.h.Do(http.MethodGet, path, nil)).Data
	if got.Progress != 75 || got.QuizSessions != 2 {
		t.Fatalf("expected progress 75 over 2 sessions, got %d over %d", got.Progress, got.QuizSessions)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(published) != 2 {
		t.Fatalf("expected 2 progress events, got %d", len(published))
	}
	values := []int{published[0].Progress, published[1].Progress}
	slices.Sort(values)
	if !slices.Equal(values, []int{75, 80}) {
		t.Fatalf("expected progress 80 then 75, got %v", values)
	}
	if published[0].ParentID != child.ParentID {
		t.Fatalf("expected event for parent %s, got %s", child.ParentID, published[0].ParentID)
	}
}

func TestQuizScoreCannotExceedMax(t *testing.T) {
	f := newFixture()
	f.h.AsRole(httpkit.RoleParent)
	child := f.createChild(t, map[string]any{"first_name": "Noah"})

	rec := f.h.Do(http.MethodPost, "/api/v1/children/"+child.ID.String()+"/quiz-sessions",
		map[string]any{"quiz_name": "Numbers", "score": 11, "max_score": 10})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestParentsOnlySeeTheirOwnChildren(t *testing.T) {
	f := newFixture()

	owner := f.h.AsRole(httpkit.RoleParent)
	child := f.createChild(t, map[string]any{"first_name": "Ava"})
	if child.ParentID != owner {
		t.Fatalf("expected child owned by creator, got %s", child.ParentID)
	}

	f.h.AsRole(httpkit.RoleParent)
	if rec := f.h.Do(http.MethodGet, "/api/v1/children/"+child.ID.String(), nil); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for another parent's child, got %d", rec.Code)
	}
	if rec := f.h.Do(http.MethodDelete, "/api/v1/children/"+child.ID.String(), nil); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 deleting another parent's child, got %d", rec.Code)
	}
	if rec := f.h.Do(http.MethodPost, "/api/v1/children", map[string]any{"first_name": "Eve", "parent_id": owner}); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 registering a child for someone else, got %d", rec.Code)
	}

	resp := routertest.Decode[[]transport.ChildResponse](t, f.h.Do(http.MethodGet, "/api/v1/children", nil))
	if len(resp.Data) != 1 || resp.Pagination.Total != 1 {
		t.Fatalf("expected only the caller's own child, got %+v", resp.Data)
	}
}

func TestEducatorsWorkWithinTheirTeams(t *testing.T) {
	f := newFixture()
	parent := uuid.New()
	team, otherTeam := uuid.New(), uuid.New()

	educator := f.h.AsRole(httpkit.RoleEducator)
	f.members[educator] = []uuid.UUID{team}

	if rec := f.h.Do(http.MethodPost, "/api/v1/children", map[string]any{"first_name": "Leo", "parent_id": parent}); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without team, got %d", rec.Code)
	}
	if rec := f.h.Do(http.MethodPost, "/api/v1/children", map[string]any{"first_name": "Leo", "parent_id": parent, "team_id": otherTeam}); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for foreign team, got %d", rec.Code)
	}
	child := f.createChild(t, map[string]any{"first_name": "Leo", "parent_id": parent, "team_id": team})

	other := f.h.AsRole(httpkit.RoleEducator)
	f.members[other] = []uuid.UUID{otherTeam}
	if rec := f.h.Do(http.MethodGet, "/api/v1/children/"+child.ID.String(), nil); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 outside team, got %d", rec.Code)
	}

	f.h.AsRole(httpkit.RoleAdmin)
	rec := f.h.Do(http.MethodPut, "/api/v1/children/"+child.ID.String(), map[string]any{"first_name": "Leon", "clear_team": true})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected admin update to succeed, got %d (%s)", rec.Code, rec.Body.String())
	}
	if updated := routertest.Decode[transport.ChildResponse](t, rec).Data; updated.FirstName != "Leon" || updated.TeamID != nil {
		t.Fatalf("unexpected update result %+v", updated)
	}
}
