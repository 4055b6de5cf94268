package repository

import (
	"context"
	"math"
	"time"

	"educare/platform/query"

	"github.com/google/uuid"
)

// Child is a child record with its aggregated quiz totals.
type Child struct {
	ID        uuid.UUID
	ParentID  uuid.UUID
	TeamID    *uuid.UUID
	FirstName string
	LastName  string
	BirthDate *time.Time
	Gender    string
	Notes     string
	CreatedBy *uuid.UUID
	UpdatedBy *uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time

	ScoreTotal   int64
	MaxTotal     int64
	SessionCount int
}

// Progress is the rounded percentage of points scored over all quiz
// sessions, 0 when the child has none.
func (c Child) Progress() int {
	return ProgressPercent(c.ScoreTotal, c.MaxTotal)
}

// ProgressPercent returns round(100 * score / max), 0 when max is 0.
func ProgressPercent(score, maxScore int64) int {
	if maxScore <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(score) / float64(maxScore)))
}

// AgeInMonths counts completed months between birth and now.
func AgeInMonths(birth, now time.Time) int {
	months := (now.Year()-birth.Year())*12 + int(now.Month()) - int(birth.Month())
	if now.Day() < birth.Day() {
		months--
	}
	return max(months, 0)
}

// QuizSession is one completed quiz.
type QuizSession struct {
	ID          uuid.UUID
	ChildID     uuid.UUID
	QuizName    string
	Score       int
	MaxScore    int
	CompletedAt time.Time
	CreatedAt   time.Time
}

// Fields are the writable columns of a child.
type Fields struct {
	ParentID  uuid.UUID
	TeamID    *uuid.UUID
	FirstName string
	LastName  string
	BirthDate *time.Time
	Gender    string
	Notes     string
}

// CreateParams contains parameters for creating a child.
type CreateParams struct {
	Fields
	CreatedBy uuid.UUID
}

// UpdateParams contains the full replacement state of a child.
type UpdateParams struct {
	Fields
	ID        uuid.UUID
	UpdatedBy uuid.UUID
}

// CreateQuizSessionParams contains parameters for recording a quiz.
type CreateQuizSessionParams struct {
	ChildID     uuid.UUID
	QuizName    string
	Score       int
	MaxScore    int
	CompletedAt time.Time
}

// ListConfig exposes child columns to the shared query builder.
var ListConfig = query.Config{
	Filters: map[string]string{
		"gender":    "c.gender",
		"team_id":   "c.team_id",
		"parent_id": "c.parent_id",
	},
	SearchFields: []string{"c.first_name", "c.last_name"},
	Sorts: map[string]string{
		"first_name": "c.first_name",
		"last_name":  "c.last_name",
		"birth_date": "c.birth_date",
		"created_at": "c.created_at",
	},
	DefaultSort: "c.created_at",
}

// QuizListConfig pages quiz sessions, newest first.
var QuizListConfig = query.Config{
	Filters: map[string]string{"quiz_name": "quiz_name"},
	Sorts: map[string]string{
		"completed_at": "completed_at",
		"score":        "score",
	},
	DefaultSort: "completed_at",
}

// ChildReader provides read operations for children.
type ChildReader interface {
	List(ctx context.Context, spec query.Spec, scope query.Predicate) ([]Child, int, error)
	GetByID(ctx context.Context, id uuid.UUID, scope query.Predicate) (Child, error)
}

// ChildWriter provides write operations for children.
type ChildWriter interface {
	Create(ctx context.Context, params CreateParams) (Child, error)
	Update(ctx context.Context, params UpdateParams) (Child, error)
	Delete(ctx context.Context, id uuid.UUID, scope query.Predicate) error
}

// QuizStore reads and records quiz sessions.
type QuizStore interface {
	ListQuizSessions(ctx context.Context, childID uuid.UUID, spec query.Spec) ([]QuizSession, int, error)
	CreateQuizSession(ctx context.Context, params CreateQuizSessionParams) (QuizSession, error)
}

// Repository combines all children repository operations.
type Repository interface {
	ChildReader
	ChildWriter
	QuizStore
}
