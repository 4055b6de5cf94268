package client

import (
	"context"
	"errors"
	"slices"
	"sync"

	"educare/internal/teams/transport"
	userstransport "educare/internal/users/transport"

	"github.com/google/uuid"
)

// Notifier surfaces user-facing messages for completed operations.
type Notifier interface {
	Success(message string)
	Error(message string)
}

// State is a snapshot of the manager.
type State struct {
	Teams   []transport.TeamResponse
	Loading bool
	Err     error
}

// Manager wraps the teams API with loading and error state. Every
// successful mutation is followed by a full reload of the team list.
// Calls are neither deduplicated nor cancelled, so when calls overlap the
// last response to arrive determines the list.
type Manager struct {
	api    *Client
	notify Notifier

	mu       sync.Mutex
	teams    []transport.TeamResponse
	inFlight int
	err      error
}

// NewManager creates a manager. notify may be nil.
func NewManager(api *Client, notify Notifier) *Manager {
	return &Manager{api: api, notify: notify}
}

// State returns a copy of the current state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return State{Teams: slices.Clone(m.teams), Loading: m.inFlight > 0, Err: m.err}
}

// Refresh reloads the team list.
func (m *Manager) Refresh(ctx context.Context) error {
	done := m.begin()
	teams, err := m.api.ListTeams(ctx)
	if err == nil {
		m.mu.Lock()
		m.teams = teams
		m.mu.Unlock()
	}
	done(err)
	if err != nil {
		m.failed("Could not load teams", err)
	}
	return err
}

// CreateTeam creates a team and reloads the list.
func (m *Manager) CreateTeam(ctx context.Context, req transport.CreateTeamRequest) (transport.TeamResponse, error) {
	var team transport.TeamResponse
	err := m.mutate(ctx, "Team created", "Could not create team", func() (err error) {
		team, err = m.api.CreateTeam(ctx, req)
		return err
	})
	return team, err
}

// UpdateTeam changes a team and reloads the list.
func (m *Manager) UpdateTeam(ctx context.Context, id uuid.UUID, req transport.UpdateTeamRequest) (transport.TeamResponse, error) {
	var team transport.TeamResponse
	err := m.mutate(ctx, "Team updated", "Could not update team", func() (err error) {
		team, err = m.api.UpdateTeam(ctx, id, req)
		return err
	})
	return team, err
}

// DeleteTeam removes a team and reloads the list.
func (m *Manager) DeleteTeam(ctx context.Context, id uuid.UUID) error {
	return m.mutate(ctx, "Team deleted", "Could not delete team", func() error {
		return m.api.DeleteTeam(ctx, id)
	})
}

// Members returns a team's memberships.
func (m *Manager) Members(ctx context.Context, teamID uuid.UUID) ([]transport.MemberResponse, error) {
	done := m.begin()
	members, err := m.api.ListMembers(ctx, teamID)
	done(err)
	if err != nil {
		m.failed("Could not load members", err)
	}
	return members, err
}

// InviteMember invites a user and reloads the list.
func (m *Manager) InviteMember(ctx context.Context, teamID uuid.UUID, req transport.InviteMemberRequest) (transport.MemberResponse, error) {
	var member transport.MemberResponse
	err := m.mutate(ctx, "Invitation sent", "Could not invite member", func() (err error) {
		member, err = m.api.InviteMember(ctx, teamID, req)
		return err
	})
	return member, err
}

// UpdateMember changes a membership and reloads the list.
func (m *Manager) UpdateMember(ctx context.Context, teamID, userID uuid.UUID, req transport.UpdateMemberRequest) (transport.MemberResponse, error) {
	var member transport.MemberResponse
	err := m.mutate(ctx, "Member updated", "Could not update member", func() (err error) {
		member, err = m.api.UpdateMember(ctx, teamID, userID, req)
		return err
	})
	return member, err
}

// RemoveMember deletes a membership and reloads the list.
func (m *Manager) RemoveMember(ctx context.Context, teamID, userID uuid.UUID) error {
	return m.mutate(ctx, "Member removed", "Could not remove member", func() error {
		return m.api.RemoveMember(ctx, teamID, userID)
	})
}

// SearchInvitable finds users that may be invited.
func (m *Manager) SearchInvitable(ctx context.Context, teamID uuid.UUID, term string) ([]userstransport.UserResponse, error) {
	done := m.begin()
	users, err := m.api.SearchInvitable(ctx, teamID, term, 0)
	done(err)
	if err != nil {
		m.failed("Could not search users", err)
	}
	return users, err
}

func (m *Manager) mutate(ctx context.Context, okMsg, failMsg string, call func() error) error {
	done := m.begin()
	err := call()
	done(err)
	if err != nil {
		m.failed(failMsg, err)
		return err
	}

	if m.notify != nil {
		m.notify.Success(okMsg)
	}
	// A failed reload is reported through state; the mutation itself succeeded.
	_ = m.Refresh(ctx)
	return nil
}

// begin marks a call in flight. The returned func records its outcome.
func (m *Manager) begin() func(error) {
	m.mu.Lock()
	m.inFlight++
	m.err = nil
	m.mu.Unlock()

	return func(err error) {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.inFlight--
		if err != nil {
			m.err = err
		}
	}
}

func (m *Manager) failed(prefix string, err error) {
	if m.notify == nil {
		return
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		m.notify.Error(prefix + ": " + apiErr.Message)
		return
	}
	m.notify.Error(prefix)
}
