package transport

import (
	"time"

	"github.com/google/uuid"
)

// CreateTeamRequest creates a team. OwnerID defaults to the caller.
type CreateTeamRequest struct {
	Name             string     `json:"name" validate:"required,max=200"`
	Description      string     `json:"description" validate:"max=2000"`
	OwnerID          *uuid.UUID `json:"owner_id"`
	LicenseType      string     `json:"license_type" validate:"omitempty,oneof=free basic premium enterprise"`
	MaxMembers       int        `json:"max_members" validate:"omitempty,min=1,max=10000"`
	LicenseExpiresAt *time.Time `json:"license_expires_at"`
}

// UpdateTeamRequest changes only the fields that are present.
type UpdateTeamRequest struct {
	Name               *string    `json:"name" validate:"omitempty,min=1,max=200"`
	Description        *string    `json:"description" validate:"omitempty,max=2000"`
	OwnerID            *uuid.UUID `json:"owner_id"`
	LicenseType        *string    `json:"license_type" validate:"omitempty,oneof=free basic premium enterprise"`
	MaxMembers         *int       `json:"max_members" validate:"omitempty,min=1,max=10000"`
	LicenseExpiresAt   *time.Time `json:"license_expires_at"`
	ClearLicenseExpiry bool       `json:"clear_license_expiry"`
}

// InviteMemberRequest invites an existing user by id or email.
type InviteMemberRequest struct {
	UserID *uuid.UUID `json:"user_id" validate:"required_without=Email"`
	Email  string     `json:"email" validate:"omitempty,email"`
	Role   string     `json:"role" validate:"omitempty,oneof=admin professional educator parent member"`
}

// UpdateMemberRequest changes a membership. Invitees accept by setting
// status to active.
type UpdateMemberRequest struct {
	Role   *string `json:"role" validate:"omitempty,oneof=admin professional educator parent member"`
	Status *string `json:"status" validate:"omitempty,oneof=invited active"`
}

// InvitableUsersQuery searches users that may be invited.
type InvitableUsersQuery struct {
	Search string `form:"search" validate:"max=100"`
	Limit  int    `form:"limit" validate:"omitempty,min=1,max=50"`
}

// TeamResponse is the client representation of a team.
type TeamResponse struct {
	ID               uuid.UUID  `json:"id"`
	Name             string     `json:"name"`
	Description      string     `json:"description"`
	OwnerID          uuid.UUID  `json:"owner_id"`
	LicenseType      string     `json:"license_type"`
	MaxMembers       int        `json:"max_members"`
	LicenseExpiresAt *time.Time `json:"license_expires_at,omitempty"`
	LicenseExpired   bool       `json:"license_expired"`
	MemberCount      int        `json:"member_count"`
	CreatedBy        *uuid.UUID `json:"created_by,omitempty"`
	UpdatedBy        *uuid.UUID `json:"updated_by,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// MemberResponse is the client representation of a membership.
type MemberResponse struct {
	TeamID    uuid.UUID  `json:"team_id"`
	UserID    uuid.UUID  `json:"user_id"`
	Email     string     `json:"email"`
	FullName  string     `json:"full_name"`
	Role      string     `json:"role"`
	Status    string     `json:"status"`
	InvitedBy *uuid.UUID `json:"invited_by,omitempty"`
	JoinedAt  *time.Time `json:"joined_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}
