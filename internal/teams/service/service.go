// Package service provides business logic for teams, their licenses and
// memberships.
package service

import (
	"context"
	"strings"
	"time"

	"educare/internal/access"
	"educare/internal/events"
	"educare/internal/teams/repository"
	"educare/internal/teams/transport"
	usersrepo "educare/internal/users/repository"
	userstransport "educare/internal/users/transport"
	"educare/platform/apperr"
	"educare/platform/httpkit"
	"educare/platform/logger"
	"educare/platform/query"

	"github.com/google/uuid"
)

const (
	defaultLicenseType = "free"
	defaultMaxMembers  = 5
	defaultMemberRole  = "member"
)

// ScopeResolver derives row-level visibility for an identity.
type ScopeResolver interface {
	Resolve(ctx context.Context, id httpkit.Identity) (access.Scope, error)
}

// Directory looks up users for invitations.
type Directory interface {
	GetByID(ctx context.Context, id uuid.UUID) (usersrepo.User, error)
	GetByEmail(ctx context.Context, email string) (usersrepo.User, error)
	SearchInvitable(ctx context.Context, teamID uuid.UUID, term string, limit int) ([]userstransport.UserResponse, error)
}

// Service provides business logic for teams.
type Service struct {
	repo      repository.Repository
	scopes    ScopeResolver
	directory Directory
	bus       events.Bus
	log       *logger.Logger
	now       func() time.Time
}

// New creates a new teams service.
func New(repo repository.Repository, scopes ScopeResolver, directory Directory, bus events.Bus, log *logger.Logger) *Service {
	return &Service{repo: repo, scopes: scopes, directory: directory, bus: bus, log: log, now: time.Now}
}

// List returns the teams visible to the identity.
func (s *Service) List(ctx context.Context, id httpkit.Identity, spec query.Spec) ([]transport.TeamResponse, query.Pagination, error) {
	scope, err := s.scopes.Resolve(ctx, id)
	if err != nil {
		return nil, query.Pagination{}, err
	}

	teams, total, err := s.repo.List(ctx, spec, scope.TeamPredicate("t.id"))
	if err != nil {
		return nil, query.Pagination{}, err
	}

	out := make([]transport.TeamResponse, 0, len(teams))
	for _, t := range teams {
		out = append(out, s.toTeamResponse(t))
	}
	return out, query.NewPagination(total, spec), nil
}

// Get returns a visible team.
func (s *Service) Get(ctx context.Context, id httpkit.Identity, teamID uuid.UUID) (transport.TeamResponse, error) {
	team, _, err := s.visibleTeam(ctx, id, teamID)
	if err != nil {
		return transport.TeamResponse{}, err
	}
	return s.toTeamResponse(team), nil
}

// Create creates a team owned by the caller unless an owner is named.
func (s *Service) Create(ctx context.Context, id httpkit.Identity, req transport.CreateTeamRequest) (transport.TeamResponse, error) {
	fields := repository.TeamFields{
		Name:             strings.TrimSpace(req.Name),
		Description:      strings.TrimSpace(req.Description),
		OwnerID:          id.UserID(),
		LicenseType:      req.LicenseType,
		MaxMembers:       req.MaxMembers,
		LicenseExpiresAt: req.LicenseExpiresAt,
	}
	if req.OwnerID != nil {
		fields.OwnerID = *req.OwnerID
	}
	if fields.LicenseType == "" {
		fields.LicenseType = defaultLicenseType
	}
	if fields.MaxMembers == 0 {
		fields.MaxMembers = defaultMaxMembers
	}

	team, err := s.repo.Create(ctx, repository.CreateTeamParams{TeamFields: fields, CreatedBy: id.UserID()})
	if err != nil {
		return transport.TeamResponse{}, err
	}

	s.log.WithContext(ctx).Info("team created", "id", team.ID, "license", team.LicenseType)
	return s.toTeamResponse(team), nil
}

// Update changes a team. Only its owner and admins may do so.
func (s *Service) Update(ctx context.Context, id httpkit.Identity, teamID uuid.UUID, req transport.UpdateTeamRequest) (transport.TeamResponse, error) {
	team, scope, err := s.visibleTeam(ctx, id, teamID)
	if err != nil {
		return transport.TeamResponse{}, err
	}
	if !isOwnerOrAdmin(scope, team) {
		return transport.TeamResponse{}, apperr.Forbidden("only the team owner may change the team")
	}

	fields := repository.TeamFields{
		Name:             team.Name,
		Description:      team.Description,
		OwnerID:          team.OwnerID,
		LicenseType:      team.LicenseType,
		MaxMembers:       team.MaxMembers,
		LicenseExpiresAt: team.LicenseExpiresAt,
	}
	if req.Name != nil {
		fields.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		fields.Description = strings.TrimSpace(*req.Description)
	}
	if req.OwnerID != nil {
		fields.OwnerID = *req.OwnerID
	}
	if req.LicenseType != nil {
		fields.LicenseType = *req.LicenseType
	}
	if req.MaxMembers != nil {
		if *req.MaxMembers < team.MemberCount {
			return transport.TeamResponse{}, apperr.Conflict("max_members cannot be lower than the current number of members")
		}
		fields.MaxMembers = *req.MaxMembers
	}
	if req.ClearLicenseExpiry {
		fields.LicenseExpiresAt = nil
	} else if req.LicenseExpiresAt != nil {
		fields.LicenseExpiresAt = req.LicenseExpiresAt
	}

	params := repository.UpdateTeamParams{TeamFields: fields, ID: teamID, UpdatedBy: scope.UserID}
	if fields.OwnerID != team.OwnerID {
		params.AdmitOwner = checkSeats
	}
	updated, err := s.repo.Update(ctx, params)
	if err != nil {
		return transport.TeamResponse{}, err
	}
	return s.toTeamResponse(updated), nil
}

// Delete removes a team. Only its owner and admins may do so.
func (s *Service) Delete(ctx context.Context, id httpkit.Identity, teamID uuid.UUID) error {
	team, scope, err := s.visibleTeam(ctx, id, teamID)
	if err != nil {
		return err
	}
	if !isOwnerOrAdmin(scope, team) {
		return apperr.Forbidden("only the team owner may delete the team")
	}
	if err := s.repo.Delete(ctx, teamID); err != nil {
		return err
	}
	s.log.WithContext(ctx).Info("team deleted", "id", teamID)
	return nil
}

// ListMembers returns the memberships of a visible team.
func (s *Service) ListMembers(ctx context.Context, id httpkit.Identity, teamID uuid.UUID) ([]transport.MemberResponse, error) {
	if _, _, err := s.visibleTeam(ctx, id, teamID); err != nil {
		return nil, err
	}
	members, err := s.repo.ListMembers(ctx, teamID)
	if err != nil {
		return nil, err
	}
	out := make([]transport.MemberResponse, 0, len(members))
	for _, m := range members {
		out = append(out, toMemberResponse(m))
	}
	return out, nil
}

// Invite adds an invitation. It fails with Forbidden when the team's license
// has expired and with Conflict when every seat is taken.
func (s *Service) Invite(ctx context.Context, id httpkit.Identity, teamID uuid.UUID, req transport.InviteMemberRequest) (transport.MemberResponse, error) {
	team, scope, err := s.managedTeam(ctx, id, teamID)
	if err != nil {
		return transport.MemberResponse{}, err
	}

	var invitee usersrepo.User
	if req.UserID != nil {
		invitee, err = s.directory.GetByID(ctx, *req.UserID)
	} else {
		invitee, err = s.directory.GetByEmail(ctx, req.Email)
	}
	if err != nil {
		return transport.MemberResponse{}, err
	}

	if _, err := s.repo.GetMember(ctx, teamID, invitee.ID); err == nil {
		return transport.MemberResponse{}, apperr.Conflict("user is already a member of this team")
	} else if !apperr.Is(err, apperr.KindNotFound) {
		return transport.MemberResponse{}, err
	}

	role := req.Role
	if role == "" {
		role = defaultMemberRole
	}

	now := s.now()
	member, err := s.repo.Invite(ctx, repository.InviteParams{
		TeamID:    teamID,
		UserID:    invitee.ID,
		Role:      role,
		InvitedBy: scope.UserID,
	}, func(locked repository.Team, seats int) error {
		return checkLicense(locked, seats, now)
	})
	if err != nil {
		return transport.MemberResponse{}, err
	}

	inviterName := ""
	if inviter, err := s.directory.GetByID(ctx, scope.UserID); err == nil {
		inviterName = inviter.FullName
	}

	if s.bus != nil {
		s.bus.Publish(ctx, events.TeamMemberInvited{
			BaseEvent:   events.NewBaseEvent(),
			TeamID:      team.ID,
			TeamName:    team.Name,
			UserID:      invitee.ID,
			Email:       invitee.Email,
			FullName:    invitee.FullName,
			Role:        role,
			InvitedBy:   scope.UserID,
			InviterName: inviterName,
		})
	}

	s.log.WithContext(ctx).Info("team member invited", "teamId", teamID, "userId", invitee.ID)
	return toMemberResponse(member), nil
}

// UpdateMember changes a membership. Managers may change roles; an invitee
// may accept their own invitation.
func (s *Service) UpdateMember(ctx context.Context, id httpkit.Identity, teamID, userID uuid.UUID, req transport.UpdateMemberRequest) (transport.MemberResponse, error) {
	if err := httpkit.Authorize(id); err != nil {
		return transport.MemberResponse{}, err
	}

	member, err := s.repo.GetMember(ctx, teamID, userID)
	if err != nil {
		return transport.MemberResponse{}, err
	}

	params := repository.UpdateMemberParams{TeamID: teamID, UserID: userID, Role: member.Role, Status: member.Status}
	if req.Status != nil {
		params.Status = *req.Status
	}
	if req.Role != nil {
		params.Role = *req.Role
	}

	selfAccept := id.UserID() == userID && req.Role == nil
	if !selfAccept {
		team, _, err := s.managedTeam(ctx, id, teamID)
		if err != nil {
			return transport.MemberResponse{}, err
		}
		if userID == team.OwnerID && (params.Role != member.Role || params.Status != member.Status) {
			return transport.MemberResponse{}, apperr.Forbidden("the team owner's membership cannot be changed")
		}
	} else if member.Status == repository.StatusActive && params.Status == repository.StatusInvited {
		return transport.MemberResponse{}, apperr.Validation("an active membership cannot return to invited")
	}

	updated, err := s.repo.UpdateMember(ctx, params)
	if err != nil {
		return transport.MemberResponse{}, err
	}
	return toMemberResponse(updated), nil
}

// RemoveMember deletes a membership. Managers may remove anyone except the
// team owner; members may leave.
func (s *Service) RemoveMember(ctx context.Context, id httpkit.Identity, teamID, userID uuid.UUID) error {
	if err := httpkit.Authorize(id); err != nil {
		return err
	}

	team, err := s.repo.GetByID(ctx, teamID)
	if err != nil {
		return err
	}
	if userID == team.OwnerID {
		return apperr.Forbidden("the team owner cannot be removed")
	}
	if id.UserID() != userID {
		if _, _, err := s.managedTeam(ctx, id, teamID); err != nil {
			return err
		}
	}

	if err := s.repo.RemoveMember(ctx, teamID, userID); err != nil {
		return err
	}
	s.log.WithContext(ctx).Info("team member removed", "teamId", teamID, "userId", userID)
	return nil
}

// InvitableUsers searches the directory for users not yet in the team.
func (s *Service) InvitableUsers(ctx context.Context, id httpkit.Identity, teamID uuid.UUID, q transport.InvitableUsersQuery) ([]userstransport.UserResponse, error) {
	if _, _, err := s.managedTeam(ctx, id, teamID); err != nil {
		return nil, err
	}
	return s.directory.SearchInvitable(ctx, teamID, q.Search, q.Limit)
}

// ActiveMemberIDs lists a team's active members for notification fan-out.
func (s *Service) ActiveMemberIDs(ctx context.Context, teamID uuid.UUID) ([]uuid.UUID, error) {
	return s.repo.ActiveMemberIDs(ctx, teamID)
}

func (s *Service) visibleTeam(ctx context.Context, id httpkit.Identity, teamID uuid.UUID) (repository.Team, access.Scope, error) {
	scope, err := s.scopes.Resolve(ctx, id)
	if err != nil {
		return repository.Team{}, access.Scope{}, err
	}
	if err := scope.RequireTeam(teamID); err != nil {
		return repository.Team{}, access.Scope{}, err
	}
	team, err := s.repo.GetByID(ctx, teamID)
	if err != nil {
		return repository.Team{}, access.Scope{}, err
	}
	return team, scope, nil
}

// managedTeam returns the team when the caller may manage its members:
// admins, the team owner and active members with an owner or admin role.
func (s *Service) managedTeam(ctx context.Context, id httpkit.Identity, teamID uuid.UUID) (repository.Team, access.Scope, error) {
	team, scope, err := s.visibleTeam(ctx, id, teamID)
	if err != nil {
		return repository.Team{}, access.Scope{}, err
	}
	if isOwnerOrAdmin(scope, team) {
		return team, scope, nil
	}

	member, err := s.repo.GetMember(ctx, teamID, scope.UserID)
	if err == nil && member.Status == repository.StatusActive &&
		(member.Role == repository.MemberRoleOwner || member.Role == repository.MemberRoleAdmin) {
		return team, scope, nil
	}
	if err != nil && !apperr.Is(err, apperr.KindNotFound) {
		return repository.Team{}, access.Scope{}, err
	}
	return repository.Team{}, access.Scope{}, apperr.Forbidden("you cannot manage this team's members")
}

func isOwnerOrAdmin(scope access.Scope, team repository.Team) bool {
	return scope.Unrestricted() || team.OwnerID == scope.UserID
}

func checkLicense(team repository.Team, seats int, now time.Time) error {
	if team.LicenseExpired(now) {
		return apperr.Forbidden("team license has expired")
	}
	return checkSeats(team, seats)
}

func checkSeats(team repository.Team, seats int) error {
	if seats >= team.MaxMembers {
		return apperr.Conflict("team member limit reached").
			WithDetails(map[string]int{"max_members": team.MaxMembers})
	}
	return nil
}

func (s *Service) toTeamResponse(t repository.Team) transport.TeamResponse {
	return transport.TeamResponse{
		ID:               t.ID,
		Name:             t.Name,
		Description:      t.Description,
		OwnerID:          t.OwnerID,
		LicenseType:      t.LicenseType,
		MaxMembers:       t.MaxMembers,
		LicenseExpiresAt: t.LicenseExpiresAt,
		LicenseExpired:   t.LicenseExpired(s.now()),
		MemberCount:      t.MemberCount,
		CreatedBy:        t.CreatedBy,
		UpdatedBy:        t.UpdatedBy,
		CreatedAt:        t.CreatedAt,
		UpdatedAt:        t.UpdatedAt,
	}
}

func toMemberResponse(m repository.Member) transport.MemberResponse {
	return transport.MemberResponse{
		TeamID:    m.TeamID,
		UserID:    m.UserID,
		Email:     m.Email,
		FullName:  m.FullName,
		Role:      m.Role,
		Status:    m.Status,
		InvitedBy: m.InvitedBy,
		JoinedAt:  m.JoinedAt,
		CreatedAt: m.CreatedAt,
	}
}
