// Package repository persists the activities users plan and complete.
package repository

import (
	"context"
	"fmt"
	"time"

	"educare/platform/apperr"
	"educare/platform/db"
	"educare/platform/query"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const notFoundMessage = "activity not found"

// Statuses of a user activity.
const (
	StatusPlanned    = "planned"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
)

const userActivitySelect = `
	SELECT ua.id, ua.user_id, ua.child_id, ua.activity_id, ua.title, ua.status, ua.notes,
		ua.completed_at, ua.created_at, ua.updated_at
	FROM user_activities ua `

// UserActivity is an activity on a user's list.
type UserActivity struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	ChildID     *uuid.UUID
	ActivityID  string
	Title       string
	Status      string
	Notes       string
	CompletedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Fields are the writable columns of a user activity.
type Fields struct {
	ChildID    *uuid.UUID
	ActivityID string
	Title      string
	Status     string
	Notes      string
}

// ListConfig exposes user activity columns to the shared query builder.
var ListConfig = query.Config{
	Filters: map[string]string{
		"status":   "ua.status",
		"child_id": "ua.child_id",
	},
	SearchFields: []string{"ua.title", "ua.notes"},
	Sorts: map[string]string{
		"title":        "ua.title",
		"status":       "ua.status",
		"created_at":   "ua.created_at",
		"completed_at": "ua.completed_at",
	},
	DefaultSort: "ua.created_at",
}

// Repository stores user activities. Every call is bound to its owner.
type Repository interface {
	List(ctx context.Context, userID uuid.UUID, spec query.Spec) ([]UserActivity, int, error)
	Get(ctx context.Context, userID, id uuid.UUID) (UserActivity, error)
	Create(ctx context.Context, userID uuid.UUID, f Fields) (UserActivity, error)
	Update(ctx context.Context, userID, id uuid.UUID, f Fields) (UserActivity, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

// Repo implements Repository with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new user activity repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

var _ Repository = (*Repo)(nil)

// List returns one page of the user's activities.
func (r *Repo) List(ctx context.Context, userID uuid.UUID, spec query.Spec) ([]UserActivity, int, error) {
	stmt := query.NewStatement().Where("ua.user_id = ?", userID).Apply(spec)

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM user_activities ua `+stmt.WhereSQL(), stmt.Args()...).Scan(&total); err != nil {
		return nil, 0, db.WrapError("count user activities", err, notFoundMessage)
	}

	page, args := stmt.PageSQL(spec)
	rows, err := r.pool.Query(ctx, userActivitySelect+stmt.WhereSQL()+" "+stmt.OrderSQL(spec, "ua.id")+" "+page, args...)
	if err != nil {
		return nil, 0, db.WrapError("list user activities", err, notFoundMessage)
	}
	items, err := pgx.CollectRows(rows, pgx.RowToStructByPos[UserActivity])
	if err != nil {
		return nil, 0, fmt.Errorf("collect user activities: %w", err)
	}
	return items, total, nil
}

// Get returns one of the user's activities.
func (r *Repo) Get(ctx context.Context, userID, id uuid.UUID) (UserActivity, error) {
	rows, err := r.pool.Query(ctx, userActivitySelect+`WHERE ua.id = $1 AND ua.user_id = $2`, id, userID)
	if err != nil {
		return UserActivity{}, fmt.Errorf("get user activity: %w", err)
	}
	a, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByPos[UserActivity])
	if err != nil {
		return UserActivity{}, db.WrapError("get user activity", err, notFoundMessage)
	}
	return a, nil
}

// Create adds an activity to the user's list.
func (r *Repo) Create(ctx context.Context, userID uuid.UUID, f Fields) (UserActivity, error) {
	rows, err := r.pool.Query(ctx, `
		INSERT INTO user_activities (user_id, child_id, activity_id, title, status, notes, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, CASE WHEN $5 = 'completed' THEN now() END)
		RETURNING id, user_id, child_id, activity_id, title, status, notes, completed_at, created_at, updated_at`,
		userID, f.ChildID, f.ActivityID, f.Title, f.Status, f.Notes,
	)
	if err != nil {
		return UserActivity{}, db.WrapError("create user activity", err, notFoundMessage)
	}
	a, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByPos[UserActivity])
	if err != nil {
		return UserActivity{}, db.WrapError("create user activity", err, notFoundMessage)
	}
	return a, nil
}

// Update replaces the writable state. completed_at follows the status.
func (r *Repo) Update(ctx context.Context, userID, id uuid.UUID, f Fields) (UserActivity, error) {
	rows, err := r.pool.Query(ctx, `
		UPDATE user_activities SET
			child_id = $3,
			title = $4,
			status = $5,
			notes = $6,
			completed_at = CASE WHEN $5 = 'completed' THEN COALESCE(completed_at, now()) END,
			updated_at = now()
		WHERE id = $1 AND user_id = $2
		RETURNING id, user_id, child_id, activity_id, title, status, notes, completed_at, created_at, updated_at`,
		id, userID, f.ChildID, f.Title, f.Status, f.Notes,
	)
	if err != nil {
		return UserActivity{}, db.WrapError("update user activity", err, notFoundMessage)
	}
	a, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByPos[UserActivity])
	if err != nil {
		return UserActivity{}, db.WrapError("update user activity", err, notFoundMessage)
	}
	return a, nil
}

// Delete removes one of the user's activities.
func (r *Repo) Delete(ctx context.Context, userID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM user_activities WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete user activity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(notFoundMessage)
	}
	return nil
}
