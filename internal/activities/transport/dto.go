package transport

import (
	"time"

	"educare/internal/activities/provider"

	"github.com/google/uuid"
)

// RecommendationsQuery filters GET /activities/recommendations.
type RecommendationsQuery struct {
	AgeMonths *int       `form:"age_months" validate:"omitempty,min=0,max=216"`
	ChildID   string     `form:"child_id" validate:"omitempty,uuid"`
	Category  string     `form:"category" validate:"max=50"`
	Limit     int        `form:"limit" validate:"omitempty,min=1,max=50"`
}

// ActivityResponse is a recommended activity.
type ActivityResponse = provider.Activity

// CreateUserActivityRequest adds an activity to the caller's list. Title
// defaults to the catalog title.
type CreateUserActivityRequest struct {
	ActivityID string     `json:"activity_id" validate:"required,max=100"`
	ChildID    *uuid.UUID `json:"child_id"`
	Title      string     `json:"title" validate:"max=200"`
	Status     string     `json:"status" validate:"omitempty,oneof=planned in_progress completed"`
	Notes      string     `json:"notes" validate:"max=2000"`
}

// UpdateUserActivityRequest changes only the fields that are present.
type UpdateUserActivityRequest struct {
	ChildID    *uuid.UUID `json:"child_id"`
	ClearChild bool       `json:"clear_child"`
	Title      *string    `json:"title" validate:"omitempty,min=1,max=200"`
	Status     *string    `json:"status" validate:"omitempty,oneof=planned in_progress completed"`
	Notes      *string    `json:"notes" validate:"omitempty,max=2000"`
}

// UserActivityResponse is the client representation of a user activity.
type UserActivityResponse struct {
	ID          uuid.UUID  `json:"id"`
	ChildID     *uuid.UUID `json:"child_id,omitempty"`
	ActivityID  string     `json:"activity_id"`
	Title       string     `json:"title"`
	Status      string     `json:"status"`
	Notes       string     `json:"notes"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
