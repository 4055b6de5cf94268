package transport

import (
	"time"

	"github.com/google/uuid"
)

// CreateGroupRequest creates a chat group inside a team.
type CreateGroupRequest struct {
	TeamID      uuid.UUID `json:"team_id" validate:"required"`
	Name        string    `json:"name" validate:"required,max=120"`
	Description string    `json:"description" validate:"max=1000"`
}

// PostMessageRequest posts a message to a group.
type PostMessageRequest struct {
	Content string `json:"content" validate:"required,max=4000"`
}

// GroupResponse is the client representation of a chat group.
type GroupResponse struct {
	ID            uuid.UUID  `json:"id"`
	TeamID        uuid.UUID  `json:"team_id"`
	Name          string     `json:"name"`
	Description   string     `json:"description"`
	CreatedBy     *uuid.UUID `json:"created_by,omitempty"`
	MessageCount  int        `json:"message_count"`
	LastMessageAt *time.Time `json:"last_message_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// MessageResponse is the client representation of a chat message.
type MessageResponse struct {
	ID         uuid.UUID `json:"id"`
	GroupID    uuid.UUID `json:"group_id"`
	SenderID   uuid.UUID `json:"sender_id"`
	SenderName string    `json:"sender_name"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}
