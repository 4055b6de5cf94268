// Package repository provides PostgreSQL access to user profiles.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"educare/platform/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when a user has no stored profile yet.
var ErrNotFound = errors.New("profile not found")

// Profile holds the editable details of a user.
type Profile struct {
	UserID      uuid.UUID
	DisplayName string
	Phone       *string
	Bio         string
	Locale      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Repository reads and writes profiles.
type Repository interface {
	Get(ctx context.Context, userID uuid.UUID) (Profile, error)
	Upsert(ctx context.Context, p Profile) (Profile, error)
}

// Repo implements the Repository interface with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new profiles repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

var _ Repository = (*Repo)(nil)

const profileColumns = `user_id, display_name, phone, bio, locale, created_at, updated_at`

// Get returns the stored profile or ErrNotFound.
func (r *Repo) Get(ctx context.Context, userID uuid.UUID) (Profile, error) {
	p, err := scanProfile(r.pool.QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE user_id = $1`, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return Profile{}, ErrNotFound
	}
	if err != nil {
		return Profile{}, fmt.Errorf("get profile: %w", err)
	}
	return p, nil
}

// Upsert creates or replaces the profile of p.UserID.
func (r *Repo) Upsert(ctx context.Context, p Profile) (Profile, error) {
	out, err := scanProfile(r.pool.QueryRow(ctx, `
		INSERT INTO profiles (user_id, display_name, phone, bio, locale)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO UPDATE SET
			display_name = EXCLUDED.display_name,
			phone = EXCLUDED.phone,
			bio = EXCLUDED.bio,
			locale = EXCLUDED.locale,
			updated_at = now()
		RETURNING `+profileColumns,
		p.UserID, p.DisplayName, p.Phone, p.Bio, p.Locale,
	))
	if err != nil {
		return Profile{}, db.WrapError("upsert profile", err, "user not found")
	}
	return out, nil
}

func scanProfile(row pgx.Row) (Profile, error) {
	var p Profile
	err := row.Scan(&p.UserID, &p.DisplayName, &p.Phone, &p.Bio, &p.Locale, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}
