package provider

import (
	"context"
	"fmt"
	"strings"

	"educare/platform/apperr"
	"educare/platform/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const activitySelect = `
	SELECT id::text, title, description, category, min_age_months, max_age_months, duration_minutes
	FROM activities `

// RepositoryProvider serves activities from the activities table.
type RepositoryProvider struct {
	pool *pgxpool.Pool
}

var _ Provider = (*RepositoryProvider)(nil)

// NewRepositoryProvider creates a database-backed provider.
func NewRepositoryProvider(pool *pgxpool.Pool) *RepositoryProvider {
	return &RepositoryProvider{pool: pool}
}

// Recommend filters activities by age and category, ordered by title.
func (p *RepositoryProvider) Recommend(ctx context.Context, q RecommendationQuery) ([]Activity, error) {
	var conds []string
	var args []any
	if q.AgeMonths != nil {
		args = append(args, *q.AgeMonths)
		conds = append(conds, fmt.Sprintf("min_age_months <= $%d AND max_age_months >= $%d", len(args), len(args)))
	}
	if q.Category != "" {
		args = append(args, q.Category)
		conds = append(conds, fmt.Sprintf("lower(category) = lower($%d)", len(args)))
	}

	sql := activitySelect
	if len(conds) > 0 {
		sql += "WHERE " + strings.Join(conds, " AND ") + " "
	}
	args = append(args, q.EffectiveLimit())
	sql += fmt.Sprintf("ORDER BY title, id LIMIT $%d", len(args))

	rows, err := p.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("recommend activities: %w", err)
	}
	activities, err := pgx.CollectRows(rows, pgx.RowToStructByPos[Activity])
	if err != nil {
		return nil, fmt.Errorf("collect activities: %w", err)
	}
	return activities, nil
}

// Get returns one activity. Non-UUID ids cannot exist in the table.
func (p *RepositoryProvider) Get(ctx context.Context, id string) (Activity, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return Activity{}, apperr.NotFound("activity not found")
	}

	rows, err := p.pool.Query(ctx, activitySelect+`WHERE id = $1`, parsed)
	if err != nil {
		return Activity{}, fmt.Errorf("get activity: %w", err)
	}
	a, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByPos[Activity])
	if err != nil {
		return Activity{}, db.WrapError("get activity", err, "activity not found")
	}
	return a, nil
}

// New selects the provider for source.
func New(source string, pool *pgxpool.Pool) (Provider, error) {
	switch source {
	case "", SourceStatic:
		return NewStaticProvider()
	case SourceDatabase:
		return NewRepositoryProvider(pool), nil
	default:
		return nil, fmt.Errorf("unknown activities source %q", source)
	}
}
