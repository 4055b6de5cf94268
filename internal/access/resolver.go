package access

import (
	"context"
	"fmt"

	"educare/platform/apperr"
	"educare/platform/httpkit"

	"github.com/google/uuid"
)

// MembershipReader returns the teams a user actively belongs to.
type MembershipReader interface {
	ActiveTeamIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
}

// Resolver derives a Scope from an authenticated identity.
type Resolver struct {
	members MembershipReader
}

// NewResolver creates a resolver backed by members.
func NewResolver(members MembershipReader) *Resolver {
	return &Resolver{members: members}
}

// Resolve computes the identity's scope. Admins and owners see everything;
// other roles see the teams they are active members of.
func (r *Resolver) Resolve(ctx context.Context, id httpkit.Identity) (Scope, error) {
	if err := httpkit.Authorize(id); err != nil {
		return Scope{}, err
	}

	scope := Scope{UserID: id.UserID(), Role: id.Role()}
	if id.HasRole(httpkit.RoleAdmin, httpkit.RoleOwner) {
		scope.All = true
		return scope, nil
	}

	teamIDs, err := r.members.ActiveTeamIDs(ctx, id.UserID())
	if err != nil {
		return Scope{}, fmt.Errorf("resolve scope: %w", err)
	}
	scope.TeamIDs = teamIDs
	return scope, nil
}

// RequireTeam returns a not-found error when the team is outside the scope,
// so callers cannot learn whether other teams exist.
func (s Scope) RequireTeam(teamID uuid.UUID) error {
	if !s.CanAccessTeam(teamID) {
		return apperr.NotFound("team not found")
	}
	return nil
}
