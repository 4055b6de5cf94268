// Package access centralizes row-level authorization. Every scoped query
// derives its visibility predicate from a Scope resolved here instead of
// branching on roles inside repositories.
package access

import (
	"slices"

	"educare/platform/httpkit"
	"educare/platform/query"

	"github.com/google/uuid"
)

// Scope describes which rows an identity may see.
type Scope struct {
	UserID uuid.UUID
	Role   string
	// All is set for roles with unrestricted visibility.
	All bool
	// TeamIDs are the teams with an active membership.
	TeamIDs []uuid.UUID
}

// Unrestricted reports whether the scope sees every row.
func (s Scope) Unrestricted() bool {
	return s.All
}

// ChildPredicate restricts children aliased as alias. Parents see their own
// children; team roles see children assigned to their teams.
func (s Scope) ChildPredicate(alias string) query.Predicate {
	if s.All {
		return query.Predicate{}
	}
	if s.Role == httpkit.RoleParent {
		return query.Predicate{SQL: alias + ".parent_id = ?", Args: []any{s.UserID}}
	}
	return query.Predicate{SQL: alias + ".team_id = ANY(?)", Args: []any{s.teamIDs()}}
}

// TeamPredicate restricts rows whose team id lives in column.
func (s Scope) TeamPredicate(column string) query.Predicate {
	if s.All {
		return query.Predicate{}
	}
	return query.Predicate{SQL: column + " = ANY(?)", Args: []any{s.teamIDs()}}
}

// OwnerPredicate restricts rows owned by the identity via column.
func (s Scope) OwnerPredicate(column string) query.Predicate {
	if s.All {
		return query.Predicate{}
	}
	return query.Predicate{SQL: column + " = ?", Args: []any{s.UserID}}
}

// CanAccessTeam reports whether the team is visible.
func (s Scope) CanAccessTeam(teamID uuid.UUID) bool {
	return s.All || slices.Contains(s.TeamIDs, teamID)
}

// CanSeeChild reports whether a child with the given owner and team is visible.
func (s Scope) CanSeeChild(parentID uuid.UUID, teamID *uuid.UUID) bool {
	if s.All {
		return true
	}
	if s.Role == httpkit.RoleParent {
		return parentID == s.UserID
	}
	return teamID != nil && slices.Contains(s.TeamIDs, *teamID)
}

func (s Scope) teamIDs() []uuid.UUID {
	if s.TeamIDs == nil {
		return []uuid.UUID{}
	}
	return s.TeamIDs
}
