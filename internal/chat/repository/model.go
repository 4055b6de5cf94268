package repository

import (
	"context"
	"time"

	"educare/platform/query"

	"github.com/google/uuid"
)

// Group is a team chat group.
type Group struct {
	ID            uuid.UUID
	TeamID        uuid.UUID
	Name          string
	Description   string
	CreatedBy     *uuid.UUID
	MessageCount  int
	LastMessageAt *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Message is a chat message joined with its sender's name.
type Message struct {
	ID         uuid.UUID
	GroupID    uuid.UUID
	SenderID   uuid.UUID
	SenderName string
	Content    string
	CreatedAt  time.Time
}

// CreateGroupParams contains parameters for creating a group.
type CreateGroupParams struct {
	TeamID      uuid.UUID
	Name        string
	Description string
	CreatedBy   uuid.UUID
}

// CreateMessageParams contains parameters for storing a message.
type CreateMessageParams struct {
	GroupID  uuid.UUID
	SenderID uuid.UUID
	Content  string
}

// GroupListConfig exposes group columns to the shared query builder.
var GroupListConfig = query.Config{
	Filters:      map[string]string{"team_id": "g.team_id"},
	SearchFields: []string{"g.name", "g.description"},
	Sorts: map[string]string{
		"name":       "g.name",
		"created_at": "g.created_at",
	},
	DefaultSort: "g.created_at",
}

// MessageListConfig pages a group's messages, newest first.
var MessageListConfig = query.Config{
	SearchFields: []string{"m.content"},
	Sorts:        map[string]string{"created_at": "m.created_at"},
	DefaultSort:  "m.created_at",
	DefaultLimit: 50,
	MaxLimit:     200,
}

// GroupStore manages chat groups.
type GroupStore interface {
	ListGroups(ctx context.Context, spec query.Spec, scope query.Predicate) ([]Group, int, error)
	GetGroup(ctx context.Context, id uuid.UUID) (Group, error)
	CreateGroup(ctx context.Context, params CreateGroupParams) (Group, error)
	DeleteGroup(ctx context.Context, id uuid.UUID) error
}

// MessageStore manages chat messages.
type MessageStore interface {
	ListMessages(ctx context.Context, groupID uuid.UUID, spec query.Spec) ([]Message, int, error)
	CreateMessage(ctx context.Context, params CreateMessageParams) (Message, error)
}

// Repository combines all chat repository operations.
type Repository interface {
	GroupStore
	MessageStore
}
