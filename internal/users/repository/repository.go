// Package repository provides PostgreSQL access to the user directory.
package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"educare/platform/db"
	"educare/platform/query"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userNotFoundMessage = "user not found"

const userColumns = `id, email, full_name, role, created_at, updated_at`

// User is a directory entry. Accounts are provisioned by the identity
// provider; this service only reads them.
type User struct {
	ID        uuid.UUID
	Email     string
	FullName  string
	Role      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ListConfig exposes user columns to the shared query builder.
var ListConfig = query.Config{
	Filters:      map[string]string{"role": "role"},
	SearchFields: []string{"email", "full_name"},
	Sorts: map[string]string{
		"email":      "email",
		"full_name":  "full_name",
		"created_at": "created_at",
	},
}

// Repository reads users.
type Repository interface {
	List(ctx context.Context, spec query.Spec) ([]User, int, error)
	GetByID(ctx context.Context, id uuid.UUID) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	// SearchInvitable returns users matching term that are not yet members
	// of the team.
	SearchInvitable(ctx context.Context, teamID uuid.UUID, term string, limit int) ([]User, error)
}

// Repo implements the Repository interface with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new users repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

var _ Repository = (*Repo)(nil)

// List returns one page of users.
func (r *Repo) List(ctx context.Context, spec query.Spec) ([]User, int, error) {
	stmt := query.NewStatement().Apply(spec)

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users `+stmt.WhereSQL(), stmt.Args()...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	page, args := stmt.PageSQL(spec)
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users `+stmt.WhereSQL()+" "+stmt.OrderSQL(spec, "id")+" "+page, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	users, err := collectUsers(rows)
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// GetByID retrieves a user by id.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		return User{}, db.WrapError("get user", err, userNotFoundMessage)
	}
	return u, nil
}

// GetByEmail retrieves a user by case-insensitive email.
func (r *Repo) GetByEmail(ctx context.Context, email string) (User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, strings.TrimSpace(email)))
	if err != nil {
		return User{}, db.WrapError("get user by email", err, userNotFoundMessage)
	}
	return u, nil
}

// SearchInvitable lists non-members of teamID whose email or name matches term.
func (r *Repo) SearchInvitable(ctx context.Context, teamID uuid.UUID, term string, limit int) ([]User, error) {
	stmt := query.NewStatement().
		Where("NOT EXISTS (SELECT 1 FROM team_members tm WHERE tm.team_id = ? AND tm.user_id = users.id)", teamID)
	spec := query.Spec{Search: strings.TrimSpace(term), SearchFields: ListConfig.SearchFields}
	stmt.Apply(spec)

	args := append(stmt.Args(), limit)
	rows, err := r.pool.Query(ctx,
		`SELECT `+userColumns+` FROM users `+stmt.WhereSQL()+fmt.Sprintf(` ORDER BY full_name, email LIMIT $%d`, len(args)),
		args...)
	if err != nil {
		return nil, fmt.Errorf("search invitable users: %w", err)
	}
	return collectUsers(rows)
}

func collectUsers(rows pgx.Rows) ([]User, error) {
	defer rows.Close()
	users := make([]User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return users, nil
}

func scanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.FullName, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}
