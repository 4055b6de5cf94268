package repository

import (
	"context"
	"fmt"

	"educare/platform/apperr"
	"educare/platform/db"
	"educare/platform/query"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const childNotFoundMessage = "child not found"

const childSelect = `
	SELECT c.id, c.parent_id, c.team_id, c.first_name, c.last_name, c.birth_date, c.gender, c.notes,
		c.created_by, c.updated_by, c.created_at, c.updated_at,
		COALESCE(q.score_total, 0), COALESCE(q.max_total, 0), COALESCE(q.sessions, 0)
	FROM children c
	LEFT JOIN (
		SELECT child_id, SUM(score) AS score_total, SUM(max_score) AS max_total, COUNT(*) AS sessions
		FROM quiz_sessions
		GROUP BY child_id
	) q ON q.child_id = c.id `

const quizColumns = `id, child_id, quiz_name, score, max_score, completed_at, created_at`

// Repo implements the Repository interface with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new children repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

// List returns one page of children visible under scope.
func (r *Repo) List(ctx context.Context, spec query.Spec, scope query.Predicate) ([]Child, int, error) {
	stmt := query.NewStatement().Add(scope).Apply(spec)

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM children c `+stmt.WhereSQL(), stmt.Args()...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count children: %w", err)
	}

	page, args := stmt.PageSQL(spec)
	rows, err := r.pool.Query(ctx, childSelect+stmt.WhereSQL()+" "+stmt.OrderSQL(spec, "c.id")+" "+page, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list children: %w", err)
	}
	defer rows.Close()

	items := make([]Child, 0, spec.Limit)
	for rows.Next() {
		child, err := scanChild(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan child: %w", err)
		}
		items = append(items, child)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate children: %w", err)
	}
	return items, total, nil
}

// GetByID retrieves a child visible under scope.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID, scope query.Predicate) (Child, error) {
	stmt := query.NewStatement().Where("c.id = ?", id).Add(scope)
	child, err := scanChild(r.pool.QueryRow(ctx, childSelect+stmt.WhereSQL(), stmt.Args()...))
	if err != nil {
		return Child{}, wrap("get child", err)
	}
	return child, nil
}

// Create inserts a child and returns it with empty quiz totals.
func (r *Repo) Create(ctx context.Context, params CreateParams) (Child, error) {
	f := params.Fields
	var id uuid.UUID
	err := r.pool.QueryRow(ctx, `
		INSERT INTO children (parent_id, team_id, first_name, last_name, birth_date, gender, notes, created_by, updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
		RETURNING id`,
		f.ParentID, f.TeamID, f.FirstName, f.LastName, f.BirthDate, f.Gender, f.Notes, params.CreatedBy,
	).Scan(&id)
	if err != nil {
		return Child{}, wrap("create child", err)
	}
	return r.GetByID(ctx, id, query.Predicate{})
}

// Update replaces the writable state of a child.
func (r *Repo) Update(ctx context.Context, params UpdateParams) (Child, error) {
	f := params.Fields
	tag, err := r.pool.Exec(ctx, `
		UPDATE children SET
			parent_id = $2,
			team_id = $3,
			first_name = $4,
			last_name = $5,
			birth_date = $6,
			gender = $7,
			notes = $8,
			updated_by = $9,
			updated_at = now()
		WHERE id = $1`,
		params.ID, f.ParentID, f.TeamID, f.FirstName, f.LastName, f.BirthDate, f.Gender, f.Notes, params.UpdatedBy,
	)
	if err != nil {
		return Child{}, wrap("update child", err)
	}
	if tag.RowsAffected() == 0 {
		return Child{}, apperr.NotFound(childNotFoundMessage)
	}
	return r.GetByID(ctx, params.ID, query.Predicate{})
}

// Delete removes a child visible under scope. Quiz sessions cascade.
func (r *Repo) Delete(ctx context.Context, id uuid.UUID, scope query.Predicate) error {
	stmt := query.NewStatement().Where("c.id = ?", id).Add(scope)
	tag, err := r.pool.Exec(ctx, `DELETE FROM children c `+stmt.WhereSQL(), stmt.Args()...)
	if err != nil {
		return fmt.Errorf("delete child: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(childNotFoundMessage)
	}
	return nil
}

// ListQuizSessions returns one page of a child's quiz sessions.
func (r *Repo) ListQuizSessions(ctx context.Context, childID uuid.UUID, spec query.Spec) ([]QuizSession, int, error) {
	stmt := query.NewStatement().Where("child_id = ?", childID).Apply(spec)

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM quiz_sessions `+stmt.WhereSQL(), stmt.Args()...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count quiz sessions: %w", err)
	}

	page, args := stmt.PageSQL(spec)
	rows, err := r.pool.Query(ctx,
		`SELECT `+quizColumns+` FROM quiz_sessions `+stmt.WhereSQL()+" "+stmt.OrderSQL(spec, "id")+" "+page, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list quiz sessions: %w", err)
	}
	defer rows.Close()

	sessions := make([]QuizSession, 0, spec.Limit)
	for rows.Next() {
		var s QuizSession
		if err := rows.Scan(&s.ID, &s.ChildID, &s.QuizName, &s.Score, &s.MaxScore, &s.CompletedAt, &s.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan quiz session: %w", err)
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate quiz sessions: %w", err)
	}
	return sessions, total, nil
}

// CreateQuizSession records a completed quiz.
func (r *Repo) CreateQuizSession(ctx context.Context, params CreateQuizSessionParams) (QuizSession, error) {
	var s QuizSession
	err := r.pool.QueryRow(ctx, `
		INSERT INTO quiz_sessions (child_id, quiz_name, score, max_score, completed_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+quizColumns,
		params.ChildID, params.QuizName, params.Score, params.MaxScore, params.CompletedAt,
	).Scan(&s.ID, &s.ChildID, &s.QuizName, &s.Score, &s.MaxScore, &s.CompletedAt, &s.CreatedAt)
	if err != nil {
		return QuizSession{}, wrap("create quiz session", err)
	}
	return s, nil
}

func scanChild(row pgx.Row) (Child, error) {
	var c Child
	err := row.Scan(
		&c.ID, &c.ParentID, &c.TeamID, &c.FirstName, &c.LastName, &c.BirthDate, &c.Gender, &c.Notes,
		&c.CreatedBy, &c.UpdatedBy, &c.CreatedAt, &c.UpdatedAt,
		&c.ScoreTotal, &c.MaxTotal, &c.SessionCount,
	)
	return c, err
}

func wrap(op string, err error) error {
	return db.WrapError(op, err, childNotFoundMessage)
}
