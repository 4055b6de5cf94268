package repository

import (
	"context"
	"time"

	"educare/platform/query"

	"github.com/google/uuid"
)

// Membership statuses.
const (
	StatusInvited = "invited"
	StatusActive  = "active"
)

// Member roles that may manage a team.
const (
	MemberRoleOwner = "owner"
	MemberRoleAdmin = "admin"
)

// Team is a care team with its license.
type Team struct {
	ID               uuid.UUID
	Name             string
	Description      string
	OwnerID          uuid.UUID
	LicenseType      string
	MaxMembers       int
	LicenseExpiresAt *time.Time
	MemberCount      int
	CreatedBy        *uuid.UUID
	UpdatedBy        *uuid.UUID
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// LicenseExpired reports whether the license ended before now.
func (t Team) LicenseExpired(now time.Time) bool {
	return t.LicenseExpiresAt != nil && !t.LicenseExpiresAt.After(now)
}

// Member is a team membership joined with the user's directory entry.
type Member struct {
	TeamID    uuid.UUID
	UserID    uuid.UUID
	Email     string
	FullName  string
	Role      string
	Status    string
	InvitedBy *uuid.UUID
	JoinedAt  *time.Time
	CreatedAt time.Time
}

// TeamFields are the writable columns of a team.
type TeamFields struct {
	Name             string
	Description      string
	OwnerID          uuid.UUID
	LicenseType      string
	MaxMembers       int
	LicenseExpiresAt *time.Time
}

// CreateTeamParams contains parameters for creating a team. The owner is
// added as an active member in the same transaction.
type CreateTeamParams struct {
	TeamFields
	CreatedBy uuid.UUID
}

// UpdateTeamParams contains the full replacement state of a team. When
// OwnerID changes, the previous owner is demoted to admin and AdmitOwner
// is consulted if the new owner does not yet hold a seat.
type UpdateTeamParams struct {
	TeamFields
	ID         uuid.UUID
	UpdatedBy  uuid.UUID
	AdmitOwner AdmitFunc
}

// InviteParams describes a new invitation.
type InviteParams struct {
	TeamID    uuid.UUID
	UserID    uuid.UUID
	Role      string
	InvitedBy uuid.UUID
}

// UpdateMemberParams changes a membership. JoinedAt is set when the
// membership becomes active.
type UpdateMemberParams struct {
	TeamID uuid.UUID
	UserID uuid.UUID
	Role   string
	Status string
}

// AdmitFunc decides whether an invite may be added given the locked team
// and the number of seats already taken.
type AdmitFunc func(team Team, seats int) error

// ListConfig exposes team columns to the shared query builder.
var ListConfig = query.Config{
	Filters: map[string]string{
		"license_type": "t.license_type",
		"owner_id":     "t.owner_id",
	},
	SearchFields: []string{"t.name", "t.description"},
	Sorts: map[string]string{
		"name":               "t.name",
		"created_at":         "t.created_at",
		"license_expires_at": "t.license_expires_at",
	},
	DefaultSort: "t.created_at",
}

// TeamReader provides read operations for teams.
type TeamReader interface {
	List(ctx context.Context, spec query.Spec, scope query.Predicate) ([]Team, int, error)
	GetByID(ctx context.Context, id uuid.UUID) (Team, error)
}

// TeamWriter provides write operations for teams.
type TeamWriter interface {
	Create(ctx context.Context, params CreateTeamParams) (Team, error)
	Update(ctx context.Context, params UpdateTeamParams) (Team, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// MemberStore manages team memberships.
type MemberStore interface {
	ListMembers(ctx context.Context, teamID uuid.UUID) ([]Member, error)
	GetMember(ctx context.Context, teamID, userID uuid.UUID) (Member, error)
	// Invite locks the team, asks admit about the current seat usage and
	// inserts the invitation.
	Invite(ctx context.Context, params InviteParams, admit AdmitFunc) (Member, error)
	UpdateMember(ctx context.Context, params UpdateMemberParams) (Member, error)
	RemoveMember(ctx context.Context, teamID, userID uuid.UUID) error
	ActiveMemberIDs(ctx context.Context, teamID uuid.UUID) ([]uuid.UUID, error)
	DeleteStaleInvites(ctx context.Context, before time.Time) (int64, error)
}

// Repository combines all teams repository operations.
type Repository interface {
	TeamReader
	TeamWriter
	MemberStore
}
