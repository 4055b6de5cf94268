// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"educare/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Teams Domain Events
// =============================================================================

// TeamMemberInvited is published when a user is invited to a team.
type TeamMemberInvited struct {
	BaseEvent
	TeamID      uuid.UUID `json:"teamId"`
	TeamName    string    `json:"teamName"`
	UserID      uuid.UUID `json:"userId"`
	Email       string    `json:"email"`
	FullName    string    `json:"fullName"`
	Role        string    `json:"role"`
	InvitedBy   uuid.UUID `json:"invitedBy"`
	InviterName string    `json:"inviterName"`
}

func (e TeamMemberInvited) EventName() string { return "teams.member.invited" }

// =============================================================================
// Chat Domain Events
// =============================================================================

// ChatMessagePosted is published after a message is stored in a team chat group.
type ChatMessagePosted struct {
	BaseEvent
	MessageID uuid.UUID `json:"messageId"`
	GroupID   uuid.UUID `json:"groupId"`
	TeamID    uuid.UUID `json:"teamId"`
	SenderID  uuid.UUID `json:"senderId"`
	Content   string    `json:"content"`
}

func (e ChatMessagePosted) EventName() string { return "chat.message.posted" }

// =============================================================================
// Children Domain Events
// =============================================================================

// ChildProgressChanged is published when quiz data affecting a child's
// progress is recorded.
type ChildProgressChanged struct {
	BaseEvent
	ChildID  uuid.UUID `json:"childId"`
	ParentID uuid.UUID `json:"parentId"`
	Progress int       `json:"progress"`
}

func (e ChildProgressChanged) EventName() string { return "children.progress.changed" }
