package stats

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RoleCount is the number of users holding a role.
type RoleCount struct {
	Role  string `json:"role"`
	Count int    `json:"count"`
}

// MediaTotals aggregates the media library.
type MediaTotals struct {
	Resources int   `json:"resources"`
	Views     int64 `json:"views"`
}

// Repository runs the aggregate queries. Each call is independent so they
// can run concurrently on the pool.
type Repository interface {
	UsersByRole(ctx context.Context) ([]RoleCount, error)
	CountChildren(ctx context.Context) (int, error)
	CountTeams(ctx context.Context) (int, error)
	MediaTotals(ctx context.Context) (MediaTotals, error)
	CountQuizSessions(ctx context.Context) (int, error)
}

// Repo implements Repository with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

var _ Repository = (*Repo)(nil)

// NewRepository creates a statistics repository.
func NewRepository(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// UsersByRole counts users per role.
func (r *Repo) UsersByRole(ctx context.Context) ([]RoleCount, error) {
	rows, err := r.pool.Query(ctx, `SELECT role, COUNT(*) FROM users GROUP BY role ORDER BY role`)
	if err != nil {
		return nil, fmt.Errorf("count users by role: %w", err)
	}
	counts, err := pgx.CollectRows(rows, pgx.RowToStructByPos[RoleCount])
	if err != nil {
		return nil, fmt.Errorf("collect role counts: %w", err)
	}
	return counts, nil
}

// CountChildren counts child records.
func (r *Repo) CountChildren(ctx context.Context) (int, error) {
	return r.count(ctx, "children")
}

// CountTeams counts teams.
func (r *Repo) CountTeams(ctx context.Context) (int, error) {
	return r.count(ctx, "teams")
}

// CountQuizSessions counts recorded quiz sessions.
func (r *Repo) CountQuizSessions(ctx context.Context) (int, error) {
	return r.count(ctx, "quiz_sessions")
}

// MediaTotals counts media resources and their views.
func (r *Repo) MediaTotals(ctx context.Context) (MediaTotals, error) {
	var t MediaTotals
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*), COALESCE(SUM(view_count), 0) FROM media_resources`).Scan(&t.Resources, &t.Views)
	if err != nil {
		return MediaTotals{}, fmt.Errorf("media totals: %w", err)
	}
	return t, nil
}

// count runs COUNT(*) on a fixed table name from this file.
func (r *Repo) count(ctx context.Context, table string) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM `+table).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}
