package insights

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	childrenrepo "educare/internal/children/repository"
	"educare/internal/events"
	"educare/internal/http/routertest"
	"educare/platform/apperr"
	"educare/platform/httpkit"
	"educare/platform/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type fakeChildren struct {
	child    childrenrepo.Child
	sessions []childrenrepo.QuizSession
}

func (f *fakeChildren) Child(ctx context.Context, id httpkit.Identity, childID uuid.UUID) (childrenrepo.Child, error) {
	if childID != f.child.ID || id.UserID() != f.child.ParentID {
		return childrenrepo.Child{}, apperr.NotFound("child not found")
	}
	return f.child, nil
}

func (f *fakeChildren) RecentQuizSessions(ctx context.Context, childID uuid.UUID, limit int) ([]childrenrepo.QuizSession, error) {
	return f.sessions, nil
}

type fakeGenerator struct {
	calls   atomic.Int32
	release chan struct{}
	err     error
}

func (g *fakeGenerator) Generate(ctx context.Context, prompt string) (Advice, error) {
	g.calls.Add(1)
	if g.release != nil {
		<-g.release
	}
	if g.err != nil {
		return Advice{}, g.err
	}
	return Advice{Summary: "Doing well", Strengths: []string{"colors"}, Suggestions: []string{"practice shapes"}}, nil
}

type lookups struct{ hits, misses atomic.Int32 }

func (l *lookups) InsightsLookup(hit bool) {
	if hit {
		l.hits.Add(1)
		return
	}
	l.misses.Add(1)
}

func newRedisCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisCache(rdb), mr
}

func newChild() *fakeChildren {
	birth := time.Date(2022, 1, 10, 0, 0, 0, 0, time.UTC)
	return &fakeChildren{
		child: childrenrepo.Child{
			ID: uuid.New(), ParentID: uuid.New(), FirstName: "Mila", LastName: "Jansen",
			BirthDate: &birth, ScoreTotal: 9, MaxTotal: 12, SessionCount: 2,
		},
		sessions: []childrenrepo.QuizSession{
			{QuizName: "Colors", Score: 8, MaxScore: 10, CompletedAt: time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)},
			{QuizName: "Shapes", Score: 1, MaxScore: 2, CompletedAt: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
		},
	}
}

func TestRedisCacheRoundTripAndExpiry(t *testing.T) {
	cache, mr := newRedisCache(t)
	ctx := context.Background()
	id := uuid.New()

	if _, ok, err := cache.Get(ctx, id); ok || err != nil {
		t.Fatalf("expected clean miss, got ok=%v err=%v", ok, err)
	}
	if err := cache.Set(ctx, Insight{ChildID: id, Progress: 40, Advice: Advice{Summary: "hi"}}, time.Minute); err != nil {
		t.Fatal(err)
	}
	got, ok, err := cache.Get(ctx, id)
	if err != nil || !ok || got.Progress != 40 || got.Summary != "hi" {
		t.Fatalf("unexpected cached value %+v ok=%v err=%v", got, ok, err)
	}

	mr.FastForward(2 * time.Minute)
	if _, ok, _ := cache.Get(ctx, id); ok {
		t.Fatal("expected entry to expire")
	}

	mr.Set(cacheKey(id), "not json")
	if _, ok, err := cache.Get(ctx, id); ok || err != nil {
		t.Fatalf("expected unreadable entry to be a miss, got ok=%v err=%v", ok, err)
	}
}

func TestConcurrentMissesShareOneGeneration(t *testing.T) {
	cache, _ := newRedisCache(t)
	children := newChild()
	gen := &fakeGenerator{release: make(chan struct{})}
	metrics := &lookups{}
	svc := NewService(children, gen, cache, metrics, time.Hour, logger.Discard())
	parent := httpkit.NewIdentity(children.child.ParentID, httpkit.RoleParent)

	var wg sync.WaitGroup
	results := make([]Insight, 8)
	errs := make([]error, 8)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = svc.Get(context.Background(), parent, children.child.ID)
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(gen.release)
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
		if results[i].Summary != "Doing well" || results[i].Progress != 75 {
			t.Fatalf("call %d: unexpected insight %+v", i, results[i])
		}
	}
	if n := gen.calls.Load(); n != 1 {
		t.Fatalf("expected one generation, got %d", n)
	}

	cached, err := svc.Get(context.Background(), parent, children.child.ID)
	if err != nil || !cached.Cached {
		t.Fatalf("expected cached insight, got %+v (%v)", cached, err)
	}
	if metrics.hits.Load() < 1 || metrics.misses.Load() < 1 {
		t.Fatalf("expected hits and misses to be recorded, got %d/%d", metrics.hits.Load(), metrics.misses.Load())
	}
}

func TestProgressChangeInvalidatesCache(t *testing.T) {
	cache, _ := newRedisCache(t)
	children := newChild()
	gen := &fakeGenerator{}
	svc := NewService(children, gen, cache, nil, time.Hour, logger.Discard())
	bus := events.NewInMemoryBus(logger.Discard())
	m := NewModule(svc, logger.Discard())
	m.RegisterHandlers(bus)

	h := routertest.New(m)
	h.As(httpkit.NewIdentity(children.child.ParentID, httpkit.RoleParent))
	path := "/api/v1/children/" + children.child.ID.String() + "/insights"

	for range 2 {
		if rec := h.Do(http.MethodGet, path, nil); rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
		}
	}
	if n := gen.calls.Load(); n != 1 {
		t.Fatalf("expected second request to hit the cache, got %d generations", n)
	}

	bus.Publish(context.Background(), events.ChildProgressChanged{
		BaseEvent: events.NewBaseEvent(), ChildID: children.child.ID, ParentID: children.child.ParentID, Progress: 80,
	})
	bus.Wait()

	got := routertest.Decode[Insight](t, h.Do(http.MethodGet, path, nil)).Data
	if got.Cached || gen.calls.Load() != 2 {
		t.Fatalf("expected regeneration after progress change, got cached=%v calls=%d", got.Cached, gen.calls.Load())
	}

	h.AsRole(httpkit.RoleParent)
	if rec := h.Do(http.MethodGet, path, nil); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for another parent, got %d", rec.Code)
	}
}

func TestInsightsDisabledAndUpstreamFailure(t *testing.T) {
	children := newChild()
	parent := httpkit.NewIdentity(children.child.ParentID, httpkit.RoleParent)

	disabled := NewService(children, nil, nil, nil, 0, logger.Discard())
	if _, err := disabled.Get(context.Background(), parent, children.child.ID); !apperr.Is(err, apperr.KindUnavailable) {
		t.Fatalf("expected unavailable, got %v", err)
	}

	cache, mr := newRedisCache(t)
	failing := NewService(children, &fakeGenerator{err: apperr.BadGateway("upstream down")}, cache, nil, 0, logger.Discard())
	if _, err := failing.Get(context.Background(), parent, children.child.ID); !apperr.Is(err, apperr.KindBadGateway) {
		t.Fatalf("expected bad gateway, got %v", err)
	}
	if len(mr.Keys()) != 0 {
		t.Fatalf("expected failures not to be cached, got keys %v", mr.Keys())
	}

	mr.Close()
	ok := NewService(children, &fakeGenerator{}, cache, nil, 0, logger.Discard())
	if _, err := ok.Get(context.Background(), parent, children.child.ID); err != nil {
		t.Fatalf("expected generation to proceed without redis, got %v", err)
	}
}

func TestBuildPromptOmitsLastName(t *testing.T) {
	children := newChild()
	prompt := BuildPrompt(children.child, children.sessions, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC))

	for _, want := range []string{"Child: Mila", "Age: 26 months", "Overall progress: 75% over 2 quiz sessions", "- Colors on 2024-03-02: 8/10 (80%)"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}
	if strings.Contains(prompt, "Jansen") {
		t.Error("prompt must not contain the last name")
	}
}

func TestInvalidateDuringGenerationSkipsWriteBack(t *testing.T) {
	cache, mr := newRedisCache(t)
	children := newChild()
	gen := &fakeGenerator{release: make(chan struct{})}
	svc := NewService(children, gen, cache, nil, time.Hour, logger.Discard())
	parent := httpkit.NewIdentity(children.child.ParentID, httpkit.RoleParent)

	done := make(chan error, 1)
	go func() {
		_, err := svc.Get(context.Background(), parent, children.child.ID)
		done <- err
	}()
	for gen.calls.Load() == 0 {
		time.Sleep(time.Millisecond)
	}

	if err := svc.Invalidate(context.Background(), children.child.ID); err != nil {
		t.Fatal(err)
	}
	close(gen.release)
	if err := <-done; err != nil {
		t.Fatalf("expected the in-flight caller to get its insight, got %v", err)
	}
	if len(mr.Keys()) != 0 {
		t.Fatalf("expected no stale write-back, got keys %v", mr.Keys())
	}

	got, err := svc.Get(context.Background(), parent, children.child.ID)
	if err != nil || got.Cached || gen.calls.Load() != 2 {
		t.Fatalf("expected a fresh generation, got cached=%v calls=%d err=%v", got.Cached, gen.calls.Load(), err)
	}
	if len(mr.Keys()) != 1 {
		t.Fatalf("expected the fresh insight to be cached, got keys %v", mr.Keys())
	}
}
