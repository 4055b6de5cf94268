package transport

import (
	"time"

	"github.com/google/uuid"
)

// DateLayout is the wire format of birth dates.
const DateLayout = "2006-01-02"

// CreateChildRequest registers a child. Parents may omit parent_id.
type CreateChildRequest struct {
	ParentID  *uuid.UUID `json:"parent_id"`
	TeamID    *uuid.UUID `json:"team_id"`
	FirstName string     `json:"first_name" validate:"required,max=100"`
	LastName  string     `json:"last_name" validate:"max=100"`
	BirthDate *string    `json:"birth_date" validate:"omitempty,datetime=2006-01-02"`
	Gender    string     `json:"gender" validate:"omitempty,oneof=male female other unspecified"`
	Notes     string     `json:"notes" validate:"max=5000"`
}

// UpdateChildRequest changes only the fields that are present. An empty
// birth_date clears it.
type UpdateChildRequest struct {
	ParentID  *uuid.UUID `json:"parent_id"`
	TeamID    *uuid.UUID `json:"team_id"`
	ClearTeam bool       `json:"clear_team"`
	FirstName *string    `json:"first_name" validate:"omitempty,min=1,max=100"`
	LastName  *string    `json:"last_name" validate:"omitempty,max=100"`
	BirthDate *string    `json:"birth_date" validate:"omitempty,datetime=2006-01-02"`
	Gender    *string    `json:"gender" validate:"omitempty,oneof=male female other unspecified"`
	Notes     *string    `json:"notes" validate:"omitempty,max=5000"`
}

// ChildResponse is the client representation of a child.
type ChildResponse struct {
	ID           uuid.UUID  `json:"id"`
	ParentID     uuid.UUID  `json:"parent_id"`
	TeamID       *uuid.UUID `json:"team_id,omitempty"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	BirthDate    *string    `json:"birth_date,omitempty"`
	Gender       string     `json:"gender"`
	Notes        string     `json:"notes"`
	Progress     int        `json:"progress"`
	QuizSessions int        `json:"quiz_sessions"`
	CreatedBy    *uuid.UUID `json:"created_by,omitempty"`
	UpdatedBy    *uuid.UUID `json:"updated_by,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// CreateQuizSessionRequest records a completed quiz.
type CreateQuizSessionRequest struct {
	QuizName    string     `json:"quiz_name" validate:"required,max=200"`
	Score       int        `json:"score" validate:"gte=0,ltefield=MaxScore"`
	MaxScore    int        `json:"max_score" validate:"required,gt=0"`
	CompletedAt *time.Time `json:"completed_at"`
}

// QuizSessionResponse is the client representation of a quiz session.
type QuizSessionResponse struct {
	ID          uuid.UUID `json:"id"`
	ChildID     uuid.UUID `json:"child_id"`
	QuizName    string    `json:"quiz_name"`
	Score       int       `json:"score"`
	MaxScore    int       `json:"max_score"`
	CompletedAt time.Time `json:"completed_at"`
	CreatedAt   time.Time `json:"created_at"`
}

// QuizSessionRecorded is returned after recording a quiz, with the child's
// updated progress.
type QuizSessionRecorded struct {
	Session  QuizSessionResponse `json:"session"`
	Progress int                 `json:"progress"`
}
