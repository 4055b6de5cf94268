package access

import (
	"context"
	"errors"
	"testing"

	"educare/platform/apperr"
	"educare/platform/httpkit"
	"educare/platform/query"

	"github.com/google/uuid"
)

type fakeMemberships struct {
	ids   []uuid.UUID
	err   error
	calls int
}

func (f *fakeMemberships) ActiveTeamIDs(context.Context, uuid.UUID) ([]uuid.UUID, error) {
	f.calls++
	return f.ids, f.err
}

func TestResolveAdminSeesEverything(t *testing.T) {
	members := &fakeMemberships{}
	scope, err := NewResolver(members).Resolve(context.Background(), httpkit.NewIdentity(uuid.New(), httpkit.RoleOwner))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !scope.Unrestricted() || members.calls != 0 {
		t.Fatalf("expected unrestricted scope without membership lookup, got %+v (calls=%d)", scope, members.calls)
	}
	if p := scope.ChildPredicate("c"); p.SQL != "" {
		t.Fatalf("expected empty predicate, got %q", p.SQL)
	}
}

func TestResolveRejectsAnonymous(t *testing.T) {
	_, err := NewResolver(&fakeMemberships{}).Resolve(context.Background(), httpkit.Anonymous())
	if !apperr.Is(err, apperr.KindUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestResolvePropagatesMembershipFailure(t *testing.T) {
	boom := errors.New("db down")
	_, err := NewResolver(&fakeMemberships{err: boom}).Resolve(context.Background(), httpkit.NewIdentity(uuid.New(), httpkit.RoleEducator))
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}

func TestProfessionalScopeLimitsToTeams(t *testing.T) {
	team := uuid.New()
	scope, err := NewResolver(&fakeMemberships{ids: []uuid.UUID{team}}).
		Resolve(context.Background(), httpkit.NewIdentity(uuid.New(), httpkit.RoleProfessional))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	if !scope.CanAccessTeam(team) || scope.CanAccessTeam(uuid.New()) {
		t.Fatal("unexpected team visibility")
	}
	if err := scope.RequireTeam(uuid.New()); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found for foreign team, got %v", err)
	}

	stmt := query.NewStatement().Add(scope.ChildPredicate("c"))
	if stmt.WhereSQL() != "WHERE c.team_id = ANY($1)" {
		t.Fatalf("unexpected predicate %q", stmt.WhereSQL())
	}
	if !scope.CanSeeChild(uuid.New(), &team) || scope.CanSeeChild(uuid.New(), nil) {
		t.Fatal("unexpected child visibility")
	}
}

func TestParentScopeUsesOwnership(t *testing.T) {
	parentID := uuid.New()
	scope, err := NewResolver(&fakeMemberships{}).Resolve(context.Background(), httpkit.NewIdentity(parentID, httpkit.RoleParent))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	p := scope.ChildPredicate("c")
	if p.SQL != "c.parent_id = ?" || p.Args[0] != parentID {
		t.Fatalf("unexpected predicate %+v", p)
	}
	if !scope.CanSeeChild(parentID, nil) || scope.CanSeeChild(uuid.New(), nil) {
		t.Fatal("unexpected child visibility")
	}

	teamPred := scope.TeamPredicate("t.id")
	ids, ok := teamPred.Args[0].([]uuid.UUID)
	if !ok || ids == nil || len(ids) != 0 {
		t.Fatalf("expected empty non-nil team list, got %#v", teamPred.Args[0])
	}
}
