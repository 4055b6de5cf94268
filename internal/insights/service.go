package insights

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	childrenrepo "educare/internal/children/repository"
	"educare/platform/apperr"
	"educare/platform/httpkit"
	"educare/platform/logger"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

const (
	recentSessions  = 10
	generateTimeout = 45 * time.Second
	defaultCacheTTL = 6 * time.Hour
	errInsightsOff  = "insights are not configured"
)

// Advice is the model's structured answer.
type Advice struct {
	Summary     string   `json:"summary"`
	Strengths   []string `json:"strengths"`
	Suggestions []string `json:"suggestions"`
}

// Insight is the advice for one child together with the data it was based on.
type Insight struct {
	ChildID      uuid.UUID `json:"child_id"`
	Progress     int       `json:"progress"`
	QuizSessions int       `json:"quiz_sessions"`
	Advice
	GeneratedAt time.Time `json:"generated_at"`
	Cached      bool      `json:"cached"`
}

// Generator turns a prompt into advice.
type Generator interface {
	Generate(ctx context.Context, prompt string) (Advice, error)
}

// ChildSource provides the child data an insight is built from.
type ChildSource interface {
	Child(ctx context.Context, id httpkit.Identity, childID uuid.UUID) (childrenrepo.Child, error)
	RecentQuizSessions(ctx context.Context, childID uuid.UUID, limit int) ([]childrenrepo.QuizSession, error)
}

// Metrics records cache effectiveness.
type Metrics interface {
	InsightsLookup(hit bool)
}

// Service produces cached insights. Concurrent misses for the same child
// share one generation.
type Service struct {
	children ChildSource
	gen      Generator
	cache    Cache
	metrics  Metrics
	ttl      time.Duration
	log      *logger.Logger
	flight   singleflight.Group
	now      func() time.Time

	// versions counts invalidations per child. A generation started under
	// an older version is returned to its callers but never cached.
	mu       sync.Mutex
	versions map[uuid.UUID]uint64
}

// NewService creates the service. A nil generator disables insights.
func NewService(children ChildSource, gen Generator, cache Cache, metrics Metrics, ttl time.Duration, log *logger.Logger) *Service {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &Service{
		children: children,
		gen:      gen,
		cache:    cache,
		metrics:  metrics,
		ttl:      ttl,
		log:      log,
		now:      time.Now,
		versions: make(map[uuid.UUID]uint64),
	}
}

// Get returns the insight for a visible child.
func (s *Service) Get(ctx context.Context, id httpkit.Identity, childID uuid.UUID) (Insight, error) {
	if s.gen == nil {
		return Insight{}, apperr.Unavailable(errInsightsOff)
	}

	child, err := s.children.Child(ctx, id, childID)
	if err != nil {
		return Insight{}, err
	}

	if insight, ok := s.lookup(ctx, childID); ok {
		s.record(true)
		return insight, nil
	}
	s.record(false)

	version := s.version(childID)
	v, err, _ := s.flight.Do(childID.String()+":"+strconv.FormatUint(version, 10), func() (any, error) {
		// A flight that finished between our lookup and Do already cached it.
		if insight, ok := s.lookup(ctx, childID); ok {
			return insight, nil
		}

		genCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), generateTimeout)
		defer cancel()
		return s.generate(genCtx, child, version)
	})
	if err != nil {
		return Insight{}, err
	}
	return v.(Insight), nil
}

// Invalidate drops the cached insight for a child. Generations already in
// flight for the child will not write their result back.
func (s *Service) Invalidate(ctx context.Context, childID uuid.UUID) error {
	s.mu.Lock()
	s.versions[childID]++
	s.mu.Unlock()

	if s.cache == nil {
		return nil
	}
	return s.cache.Delete(ctx, childID)
}

func (s *Service) version(childID uuid.UUID) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.versions[childID]
}

func (s *Service) generate(ctx context.Context, child childrenrepo.Child, version uint64) (Insight, error) {
	sessions, err := s.children.RecentQuizSessions(ctx, child.ID, recentSessions)
	if err != nil {
		return Insight{}, err
	}

	advice, err := s.gen.Generate(ctx, BuildPrompt(child, sessions, s.now()))
	if err != nil {
		s.log.WithContext(ctx).Error("insight generation failed", "childId", child.ID, "error", err)
		return Insight{}, err
	}

	insight := Insight{
		ChildID:      child.ID,
		Progress:     child.Progress(),
		QuizSessions: child.SessionCount,
		Advice:       advice,
		GeneratedAt:  s.now().UTC(),
	}

	if s.cache != nil {
		s.store(ctx, insight, version)
	}
	return insight, nil
}

// store caches insight unless the child was invalidated since version was
// read. The lock spans the write so Invalidate either sees it and deletes
// it, or bumps the version first.
func (s *Service) store(ctx context.Context, insight Insight, version uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.versions[insight.ChildID] != version {
		s.log.WithContext(ctx).Debug("insight invalidated during generation; not caching", "childId", insight.ChildID)
		return
	}
	cached := insight
	cached.Cached = true
	if err := s.cache.Set(ctx, cached, s.ttl); err != nil {
		s.log.WithContext(ctx).Warn("insights cache write failed", "childId", insight.ChildID, "error", err)
	}
}

func (s *Service) lookup(ctx context.Context, childID uuid.UUID) (Insight, bool) {
	if s.cache == nil {
		return Insight{}, false
	}
	insight, ok, err := s.cache.Get(ctx, childID)
	if err != nil {
		s.log.WithContext(ctx).Warn("insights cache read failed", "childId", childID, "error", err)
		return Insight{}, false
	}
	return insight, ok
}

func (s *Service) record(hit bool) {
	if s.metrics != nil {
		s.metrics.InsightsLookup(hit)
	}
}

// BuildPrompt describes the child's recent results. Only the first name and
// age leave the system.
func BuildPrompt(child childrenrepo.Child, sessions []childrenrepo.QuizSession, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Child: %s\n", child.FirstName)
	if child.BirthDate != nil {
		fmt.Fprintf(&b, "Age: %d months\n", childrenrepo.AgeInMonths(*child.BirthDate, now))
	}
	fmt.Fprintf(&b, "Overall progress: %d%% over %d quiz sessions\n", child.Progress(), child.SessionCount)

	if len(sessions) == 0 {
		b.WriteString("No quiz sessions recorded yet.\n")
		return b.String()
	}

	b.WriteString("Recent quiz sessions (newest first):\n")
	for _, qs := range sessions {
		fmt.Fprintf(&b, "- %s on %s: %d/%d (%d%%)\n",
			qs.QuizName, qs.CompletedAt.Format(time.DateOnly), qs.Score, qs.MaxScore,
			childrenrepo.ProgressPercent(int64(qs.Score), int64(qs.MaxScore)))
	}
	return b.String()
}
