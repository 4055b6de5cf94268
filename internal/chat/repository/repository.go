// Package repository provides PostgreSQL persistence for team chat.
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

const groupNotFoundMessage = "chat group not found"

const groupSelect = `
	SELECT g.id, g.team_id, g.name, g.description, g.created_by,
		(SELECT COUNT(*) FROM chat_messages m WHERE m.group_id = g.id),
		(SELECT MAX(m.created_at) FROM chat_messages m WHERE m.group_id = g.id),
		g.created_at, g.updated_at
	FROM chat_groups g `

const messageSelect = `
	SELECT m.id, m.group_id, m.sender_id, COALESCE(u.full_name, ''), m.content, m.created_at
	FROM chat_messages m
	LEFT JOIN users u ON u.id = m.sender_id `

// Repo implements the Repository interface with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new chat repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

var _ Repository = (*Repo)(nil)

// ListGroups returns one page of groups visible under scope.
func (r *Repo) ListGroups(ctx context.Context, spec query.Spec, scope query.Predicate) ([]Group, int, error) {
	stmt := query.NewStatement().Add(scope).Apply(spec)

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM chat_groups g `+stmt.WhereSQL(), stmt.Args()...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count chat groups: %w", err)
	}

	page, args := stmt.PageSQL(spec)
	rows, err := r.pool.Query(ctx, groupSelect+stmt.WhereSQL()+" "+stmt.OrderSQL(spec, "g.id")+" "+page, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list chat groups: %w", err)
	}
	groups, err := pgx.CollectRows(rows, scanGroup)
	if err != nil {
		return nil, 0, fmt.Errorf("collect chat groups: %w", err)
	}
	return groups, total, nil
}

// GetGroup retrieves one group.
func (r *Repo) GetGroup(ctx context.Context, id uuid.UUID) (Group, error) {
	rows, err := r.pool.Query(ctx, groupSelect+`WHERE g.id = $1`, id)
	if err != nil {
		return Group{}, fmt.Errorf("get chat group: %w", err)
	}
	g, err := pgx.CollectExactlyOneRow(rows, scanGroup)
	if err != nil {
		return Group{}, db.WrapError("get chat group", err, groupNotFoundMessage)
	}
	return g, nil
}

// CreateGroup inserts a group.
func (r *Repo) CreateGroup(ctx context.Context, params CreateGroupParams) (Group, error) {
	var id uuid.UUID
	err := r.pool.QueryRow(ctx, `
		INSERT INTO chat_groups (team_id, name, description, created_by)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		params.TeamID, params.Name, params.Description, params.CreatedBy,
	).Scan(&id)
	if err != nil {
		return Group{}, db.WrapError("create chat group", err, groupNotFoundMessage)
	}
	return r.GetGroup(ctx, id)
}

// DeleteGroup removes a group and its messages.
func (r *Repo) DeleteGroup(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM chat_groups WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete chat group: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(groupNotFoundMessage)
	}
	return nil
}

// ListMessages returns one page of a group's messages.
func (r *Repo) ListMessages(ctx context.Context, groupID uuid.UUID, spec query.Spec) ([]Message, int, error) {
	stmt := query.NewStatement().Where("m.group_id = ?", groupID).Apply(spec)

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM chat_messages m `+stmt.WhereSQL(), stmt.Args()...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count chat messages: %w", err)
	}

	page, args := stmt.PageSQL(spec)
	rows, err := r.pool.Query(ctx, messageSelect+stmt.WhereSQL()+" "+stmt.OrderSQL(spec, "m.id")+" "+page, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list chat messages: %w", err)
	}
	messages, err := pgx.CollectRows(rows, scanMessage)
	if err != nil {
		return nil, 0, fmt.Errorf("collect chat messages: %w", err)
	}
	return messages, total, nil
}

// CreateMessage stores a message and touches its group.
func (r *Repo) CreateMessage(ctx context.Context, params CreateMessageParams) (Message, error) {
	var m Message
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, `
			INSERT INTO chat_messages (group_id, sender_id, content)
			VALUES ($1, $2, $3)
			RETURNING id, group_id, sender_id, content, created_at`,
			params.GroupID, params.SenderID, params.Content,
		).Scan(&m.ID, &m.GroupID, &m.SenderID, &m.Content, &m.CreatedAt); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `UPDATE chat_groups SET updated_at = now() WHERE id = $1`, params.GroupID); err != nil {
			return err
		}
		return tx.QueryRow(ctx, `SELECT COALESCE(full_name, '') FROM users WHERE id = $1`, params.SenderID).Scan(&m.SenderName)
	})
	if err != nil {
		return Message{}, db.WrapError("create chat message", err, groupNotFoundMessage)
	}
	return m, nil
}

func scanGroup(row pgx.CollectableRow) (Group, error) {
	var g Group
	err := row.Scan(&g.ID, &g.TeamID, &g.Name, &g.Description, &g.CreatedBy, &g.MessageCount, &g.LastMessageAt, &g.CreatedAt, &g.UpdatedAt)
	return g, err
}

func scanMessage(row pgx.CollectableRow) (Message, error) {
	var m Message
	err := row.Scan(&m.ID, &m.GroupID, &m.SenderID, &m.SenderName, &m.Content, &m.CreatedAt)
	return m, err
}
