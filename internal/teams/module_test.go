package teams

import (
	"context"
	"net/http"
	"slices"
	"sync"
	"testing"
	"time"

	"educare/internal/access"
	"educare/internal/events"
	"educare/internal/http/routertest"
	"educare/internal/teams/repository"
	"educare/internal/teams/transport"
	usersrepo "educare/internal/users/repository"
	userstransport "educare/internal/users/transport"
	"educare/platform/apperr"
	"educare/platform/httpkit"
	"educare/platform/logger"
	"educare/platform/query"
	"educare/platform/validator"

	"github.com/google/uuid"
)

type fakeRepo struct {
	mu      sync.Mutex
	teams   map[uuid.UUID]repository.Team
	members []repository.Member
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{teams: make(map[uuid.UUID]repository.Team)}
}

func (r *fakeRepo) withCount(t repository.Team) repository.Team {
	t.MemberCount = 0
	for _, m := range r.members {
		if m.TeamID == t.ID {
			t.MemberCount++
		}
	}
	return t
}

func (r *fakeRepo) List(ctx context.Context, spec query.Spec, scope query.Predicate) ([]repository.Team, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []repository.Team
	for _, t := range r.teams {
		if scope.SQL == "" || slices.Contains(scope.Args[0].([]uuid.UUID), t.ID) {
			out = append(out, r.withCount(t))
		}
	}
	slices.SortFunc(out, func(a, b repository.Team) int { return a.CreatedAt.Compare(b.CreatedAt) })
	return query.Window(out, spec), len(out), nil
}

func (r *fakeRepo) GetByID(ctx context.Context, id uuid.UUID) (repository.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.teams[id]
	if !ok {
		return repository.Team{}, apperr.NotFound("team not found")
	}
	return r.withCount(t), nil
}

func (r *fakeRepo) Create(ctx context.Context, params repository.CreateTeamParams) (repository.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f := params.TeamFields
	t := repository.Team{
		ID: uuid.New(), Name: f.Name, Description: f.Description, OwnerID: f.OwnerID,
		LicenseType: f.LicenseType, MaxMembers: f.MaxMembers, LicenseExpiresAt: f.LicenseExpiresAt,
		CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}
	r.teams[t.ID] = t
	r.members = append(r.members, repository.Member{TeamID: t.ID, UserID: f.OwnerID, Role: repository.MemberRoleOwner, Status: repository.StatusActive})
	return r.withCount(t), nil
}

func (r *fakeRepo) Update(ctx context.Context, params repository.UpdateTeamParams) (repository.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.teams[params.ID]
	if !ok {
		return repository.Team{}, apperr.NotFound("team not found")
	}
	f := params.TeamFields
	if t.OwnerID != f.OwnerID {
		seat := slices.IndexFunc(r.members, func(m repository.Member) bool { return m.TeamID == t.ID && m.UserID == f.OwnerID })
		if seat < 0 && params.AdmitOwner != nil {
			locked := r.withCount(t)
			locked.MaxMembers = f.MaxMembers
			if err := params.AdmitOwner(locked, locked.MemberCount); err != nil {
				return repository.Team{}, err
			}
		}
		for i, m := range r.members {
			if m.TeamID == t.ID && m.UserID == t.OwnerID && m.Role == repository.MemberRoleOwner {
				r.members[i].Role = repository.MemberRoleAdmin
			}
		}
		now := time.Now()
		owner := repository.Member{TeamID: t.ID, UserID: f.OwnerID, Role: repository.MemberRoleOwner, Status: repository.StatusActive, JoinedAt: &now}
		if seat < 0 {
			r.members = append(r.members, owner)
		} else {
			if r.members[seat].JoinedAt != nil {
				owner.JoinedAt = r.members[seat].JoinedAt
			}
			r.members[seat] = owner
		}
	}
	t.Name, t.Description, t.OwnerID = f.Name, f.Description, f.OwnerID
	t.LicenseType, t.MaxMembers, t.LicenseExpiresAt = f.LicenseType, f.MaxMembers, f.LicenseExpiresAt
	r.teams[t.ID] = t
	return r.withCount(t), nil
}

func (r *fakeRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.teams[id]; !ok {
		return apperr.NotFound("team not found")
	}
	delete(r.teams, id)
	r.members = slices.DeleteFunc(r.members, func(m repository.Member) bool { return m.TeamID == id })
	return nil
}

func (r *fakeRepo) ListMembers(ctx context.Context, teamID uuid.UUID) ([]repository.Member, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []repository.Member
	for _, m := range r.members {
		if m.TeamID == teamID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeRepo) GetMember(ctx context.Context, teamID, userID uuid.UUID) (repository.Member, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.members {
		if m.TeamID == teamID && m.UserID == userID {
			return m, nil
		}
	}
	return repository.Member{}, apperr.NotFound("team member not found")
}

func (r *fakeRepo) Invite(ctx context.Context, params repository.InviteParams, admit repository.AdmitFunc) (repository.Member, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.teams[params.TeamID]
	if !ok {
		return repository.Member{}, apperr.NotFound("team not found")
	}
	t = r.withCount(t)
	if err := admit(t, t.MemberCount); err != nil {
		return repository.Member{}, err
	}
	invitedBy := params.InvitedBy
	m := repository.Member{
		TeamID: params.TeamID, UserID: params.UserID, Role: params.Role,
		Status: repository.StatusInvited, InvitedBy: &invitedBy, CreatedAt: time.Now(),
	}
	r.members = append(r.members, m)
	return m, nil
}

func (r *fakeRepo) UpdateMember(ctx context.Context, params repository.UpdateMemberParams) (repository.Member, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, m := range r.members {
		if m.TeamID == params.TeamID && m.UserID == params.UserID {
			m.Role, m.Status = params.Role, params.Status
			if m.Status == repository.StatusActive && m.JoinedAt == nil {
				now := time.Now()
				m.JoinedAt = &now
			}
			r.members[i] = m
			return m, nil
		}
	}
	return repository.Member{}, apperr.NotFound("team member not found")
}

func (r *fakeRepo) RemoveMember(ctx context.Context, teamID, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	before := len(r.members)
	r.members = slices.DeleteFunc(r.members, func(m repository.Member) bool { return m.TeamID == teamID && m.UserID == userID })
	if len(r.members) == before {
		return apperr.NotFound("team member not found")
	}
	return nil
}

func (r *fakeRepo) ActiveMemberIDs(ctx context.Context, teamID uuid.UUID) ([]uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []uuid.UUID
	for _, m := range r.members {
		if m.TeamID == teamID && m.Status == repository.StatusActive {
			ids = append(ids, m.UserID)
		}
	}
	return ids, nil
}

// ActiveTeamIDs lets the fake back the scope resolver.
func (r *fakeRepo) ActiveTeamIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []uuid.UUID
	for _, m := range r.members {
		if m.UserID == userID && m.Status == repository.StatusActive {
			ids = append(ids, m.TeamID)
		}
	}
	return ids, nil
}

func (r *fakeRepo) DeleteStaleInvites(ctx context.Context, before time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := len(r.members)
	r.members = slices.DeleteFunc(r.members, func(m repository.Member) bool {
		return m.Status == repository.StatusInvited && m.CreatedAt.Before(before)
	})
	return int64(n - len(r.members)), nil
}

type fakeDirectory map[uuid.UUID]usersrepo.User

func (d fakeDirectory) add(role, name string) uuid.UUID {
	id := uuid.New()
	d[id] = usersrepo.User{ID: id, Email: name + "@example.com", FullName: name, Role: role}
	return id
}

func (d fakeDirectory) GetByID(ctx context.Context, id uuid.UUID) (usersrepo.User, error) {
	if u, ok := d[id]; ok {
		return u, nil
	}
	return usersrepo.User{}, apperr.NotFound("user not found")
}

func (d fakeDirectory) GetByEmail(ctx context.Context, email string) (usersrepo.User, error) {
	for _, u := range d {
		if u.Email == email {
			return u, nil
		}
	}
	return usersrepo.User{}, apperr.NotFound("user not found")
}

func (d fakeDirectory) SearchInvitable(ctx context.Context, teamID uuid.UUID, term string, limit int) ([]userstransport.UserResponse, error) {
	out := []userstransport.UserResponse{}
	for _, u := range d {
		out = append(out, userstransport.UserResponse{ID: u.ID, Email: u.Email, FullName: u.FullName, Role: u.Role})
	}
	return out, nil
}

type fixture struct {
	repo *fakeRepo
	dir  fakeDirectory
	bus  *events.InMemoryBus
	h    *routertest.Harness
}

func newFixture() *fixture {
	f := &fixture{repo: newFakeRepo(), dir: fakeDirectory{}, bus: events.NewInMemoryBus(logger.Discard())}
	m := newModule(f.repo, access.NewResolver(f.repo), f.dir, f.bus, validator.New(), logger.Discard())
	f.h = routertest.New(m)
	return f
}

func (f *fixture) as(userID uuid.UUID) {
	f.h.As(httpkit.NewIdentity(userID, f.dir[userID].Role))
}

func (f *fixture) createTeam(t *testing.T, body map[string]any) transport.TeamResponse {
	t.Helper()
	rec := f.h.Do(http.MethodPost, "/api/v1/teams", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create team: expected 201, got %d (%s)", rec.Code, rec.Body.String())
	}
	return routertest.Decode[transport.TeamResponse](t, rec).Data
}

func TestInviteRespectsSeatLimit(t *testing.T) {
	f := newFixture()
	owner := f.dir.add(httpkit.RoleOwner, "olivia")
	first := f.dir.add(httpkit.RoleEducator, "eli")
	f.dir.add(httpkit.RoleParent, "pam")

	var mu sync.Mutex
	var invited []events.TeamMemberInvited
	f.bus.Subscribe(events.TeamMemberInvited{}.EventName(), events.HandlerFunc(func(ctx context.Context, e events.Event) error {
		mu.Lock()
		defer mu.Unlock()
		invited = append(invited, e.(events.TeamMemberInvited))
		return nil
	}))

	f.as(owner)
	team := f.createTeam(t, map[string]any{"name": "Sunflowers", "max_members": 2})
	if team.MemberCount != 1 || team.LicenseType != "free" || team.OwnerID != owner {
		t.Fatalf("unexpected new team %+v", team)
	}

	path := "/api/v1/teams/" + team.ID.String() + "/members"
	if rec := f.h.Do(http.MethodPost, path, map[string]any{"user_id": first, "role": "educator"}); rec.Code != http.StatusCreated {
		t.Fatalf("expected first invite 201, got %d (%s)", rec.Code, rec.Body.String())
	}
	if rec := f.h.Do(http.MethodPost, path, map[string]any{"email": "pam@example.com"}); rec.Code != http.StatusConflict {
		t.Fatalf("expected seat limit 409, got %d", rec.Code)
	}
	if rec := f.h.Do(http.MethodPost, path, map[string]any{"user_id": first}); rec.Code != http.StatusConflict {
		t.Fatalf("expected duplicate invite 409, got %d", rec.Code)
	}
	f.bus.Wait()

	mu.Lock()
	defer mu.Unlock()
	if len(invited) != 1 || invited[0].UserID != first || invited[0].InviterName != "olivia" || invited[0].TeamName != "Sunflowers" {
		t.Fatalf("unexpected invite events %+v", invited)
	}
}

func TestExpiredLicenseBlocksInvites(t *testing.T) {
	f := newFixture()
	owner := f.dir.add(httpkit.RoleOwner, "olivia")
	invitee := f.dir.add(httpkit.RoleEducator, "eli")

	f.as(owner)
	team := f.createTeam(t, map[string]any{
		"name":               "Tulips",
		"license_expires_at": time.Now().Add(-time.Hour).Format(time.RFC3339),
	})
	if !team.LicenseExpired {
		t.Fatal("expected license to be reported as expired")
	}

	rec := f.h.Do(http.MethodPost, "/api/v1/teams/"+team.ID.String()+"/members", map[string]any{"user_id": invitee})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for expired license, got %d", rec.Code)
	}
}

func TestInviteeAcceptsAndGainsVisibility(t *testing.T) {
	f := newFixture()
	owner := f.dir.add(httpkit.RoleOwner, "olivia")
	invitee := f.dir.add(httpkit.RoleEducator, "eli")

	f.as(owner)
	team := f.createTeam(t, map[string]any{"name": "Daisies"})
	teamPath := "/api/v1/teams/" + team.ID.String()
	if rec := f.h.Do(http.MethodPost, teamPath+"/members", map[string]any{"user_id": invitee, "role": "educator"}); rec.Code != http.StatusCreated {
		t.Fatalf("invite: expected 201, got %d", rec.Code)
	}

	f.as(invitee)
	if rec := f.h.Do(http.MethodGet, teamPath, nil); rec.Code != http.StatusNotFound {
		t.Fatalf("expected pending invitee to see 404, got %d", rec.Code)
	}
	if rec := f.h.Do(http.MethodPut, teamPath+"/members/"+invitee.String(), map[string]any{"role": "admin"}); rec.Code != http.StatusNotFound {
		t.Fatalf("expected invitee role change to be refused, got %d", rec.Code)
	}

	rec := f.h.Do(http.MethodPut, teamPath+"/members/"+invitee.String(), map[string]any{"status": "active"})
	if rec.Code != http.StatusOK {
		t.Fatalf("accept: expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	if m := routertest.Decode[transport.MemberResponse](t, rec).Data; m.Status != "active" || m.JoinedAt == nil {
		t.Fatalf("unexpected accepted membership %+v", m)
	}

	if rec := f.h.Do(http.MethodGet, teamPath, nil); rec.Code != http.StatusOK {
		t.Fatalf("expected active member to see team, got %d", rec.Code)
	}
	list := routertest.Decode[[]transport.TeamResponse](t, f.h.Do(http.MethodGet, "/api/v1/teams", nil))
	if len(list.Data) != 1 || list.Pagination.Total != 1 {
		t.Fatalf("expected exactly the joined team, got %+v", list.Data)
	}
	if rec := f.h.Do(http.MethodPost, teamPath+"/members", map[string]any{"user_id": owner}); rec.Code != http.StatusForbidden {
		t.Fatalf("expected educator member invite to be refused, got %d", rec.Code)
	}
	if rec := f.h.Do(http.MethodPut, teamPath, map[string]any{"name": "Mine"}); rec.Code != http.StatusForbidden {
		t.Fatalf("expected member update to be refused, got %d", rec.Code)
	}

	if rec := f.h.Do(http.MethodDelete, teamPath+"/members/"+invitee.String(), nil); rec.Code != http.StatusOK {
		t.Fatalf("expected member to leave, got %d", rec.Code)
	}
	if rec := f.h.Do(http.MethodGet, teamPath, nil); rec.Code != http.StatusNotFound {
		t.Fatalf("expected former member to lose visibility, got %d", rec.Code)
	}
}

func TestOwnerMembershipIsProtected(t *testing.T) {
	f := newFixture()
	owner := f.dir.add(httpkit.RoleOwner, "olivia")
	f.as(owner)
	team := f.createTeam(t, map[string]any{"name": "Roses", "max_members": 3})
	teamPath := "/api/v1/teams/" + team.ID.String()

	if rec := f.h.Do(http.MethodDelete, teamPath+"/members/"+owner.String(), nil); rec.Code != http.StatusForbidden {
		t.Fatalf("expected owner removal 403, got %d", rec.Code)
	}
	if rec := f.h.Do(http.MethodPut, teamPath+"/members/"+owner.String(), map[string]any{"role": "member"}); rec.Code != http.StatusForbidden {
		t.Fatalf("expected owner demotion 403, got %d", rec.Code)
	}
	if rec := f.h.Do(http.MethodPut, teamPath+"/members/"+owner.String(), map[string]any{"status": "invited"}); rec.Code != http.StatusForbidden {
		t.Fatalf("expected owner status reset 403, got %d", rec.Code)
	}

	invitee := f.dir.add(httpkit.RoleEducator, "eli")
	if rec := f.h.Do(http.MethodPost, teamPath+"/members", map[string]any{"user_id": invitee}); rec.Code != http.StatusCreated {
		t.Fatalf("invite: expected 201, got %d", rec.Code)
	}
	if rec := f.h.Do(http.MethodPut, teamPath, map[string]any{"max_members": 1}); rec.Code != http.StatusConflict {
		t.Fatalf("expected shrinking below member count 409, got %d", rec.Code)
	}
	if rec := f.h.Do(http.MethodPut, teamPath, map[string]any{"max_members": 2, "license_type": "premium"}); rec.Code != http.StatusOK {
		t.Fatalf("expected update to succeed, got %d", rec.Code)
	}

	members := routertest.Decode[[]transport.MemberResponse](t, f.h.Do(http.MethodGet, teamPath+"/members", nil)).Data
	if len(members) != 2 {
		t.Fatalf("expected 2 members, got %d", len(members))
	}
}

func TestOnlyAdminsCreateTeams(t *testing.T) {
	f := newFixture()
	f.h.AsRole(httpkit.RoleEducator)
	if rec := f.h.Do(http.MethodPost, "/api/v1/teams", map[string]any{"name": "Nope"}); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	f.h.AsRole(httpkit.RoleAdmin)
	if rec := f.h.Do(http.MethodPost, "/api/v1/teams", map[string]any{"description": "no name"}); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without name, got %d", rec.Code)
	}
}

func TestStaleInvitesAreDeleted(t *testing.T) {
	repo := newFakeRepo()
	team, _ := repo.Create(context.Background(), repository.CreateTeamParams{TeamFields: repository.TeamFields{Name: "x", OwnerID: uuid.New(), MaxMembers: 5}})
	if _, err := repo.Invite(context.Background(), repository.InviteParams{TeamID: team.ID, UserID: uuid.New()}, func(repository.Team, int) error { return nil }); err != nil {
		t.Fatal(err)
	}
	n, err := repo.DeleteStaleInvites(context.Background(), time.Now().Add(time.Minute))
	if err != nil || n != 1 {
		t.Fatalf("expected one stale invite removed, got %d (%v)", n, err)
	}
}

func TestAdminCannotResetDelegatedOwnerToInvited(t *testing.T) {
	f := newFixture()
	admin := f.dir.add(httpkit.RoleOwner, "ada")
	lead := f.dir.add(httpkit.RoleEducator, "lena")

	f.as(admin)
	team := f.createTeam(t, map[string]any{"name": "Lilies", "owner_id": lead})
	teamPath := "/api/v1/teams/" + team.ID.String()

	rec := f.h.Do(http.MethodPut, teamPath+"/members/"+lead.String(), map[string]any{"status": "invited"})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 resetting the owner's membership, got %d (%s)", rec.Code, rec.Body.String())
	}

	f.as(lead)
	if rec := f.h.Do(http.MethodGet, teamPath, nil); rec.Code != http.StatusOK {
		t.Fatalf("expected owner to keep visibility, got %d", rec.Code)
	}
}

func TestOwnershipTransferDemotesPreviousOwner(t *testing.T) {
	f := newFixture()
	first := f.dir.add(httpkit.RoleProfessional, "pia")
	second := f.dir.add(httpkit.RoleEducator, "eli")
	outsider := f.dir.add(httpkit.RoleEducator, "otto")
	admin := f.dir.add(httpkit.RoleAdmin, "ada")

	f.as(admin)
	team := f.createTeam(t, map[string]any{"name": "Poppies", "owner_id": first, "max_members": 2})
	teamPath := "/api/v1/teams/" + team.ID.String()
	if rec := f.h.Do(http.MethodPost, teamPath+"/members", map[string]any{"user_id": second}); rec.Code != http.StatusCreated {
		t.Fatalf("invite: expected 201, got %d", rec.Code)
	}

	if rec := f.h.Do(http.MethodPut, teamPath, map[string]any{"owner_id": outsider}); rec.Code != http.StatusConflict {
		t.Fatalf("expected transfer into a full team 409, got %d (%s)", rec.Code, rec.Body.String())
	}

	f.as(first)
	rec := f.h.Do(http.MethodPut, teamPath, map[string]any{"owner_id": second})
	if rec.Code != http.StatusOK {
		t.Fatalf("transfer: expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	if got := routertest.Decode[transport.TeamResponse](t, rec).Data; got.OwnerID != second || got.MemberCount != 2 {
		t.Fatalf("unexpected team after transfer %+v", got)
	}

	roles := map[uuid.UUID]string{}
	for _, m := range routertest.Decode[[]transport.MemberResponse](t, f.h.Do(http.MethodGet, teamPath+"/members", nil)).Data {
		roles[m.UserID] = m.Role
	}
	if roles[first] != repository.MemberRoleAdmin || roles[second] != repository.MemberRoleOwner {
		t.Fatalf("unexpected roles after transfer %v", roles)
	}

	if rec := f.h.Do(http.MethodPut, teamPath, map[string]any{"owner_id": first}); rec.Code != http.StatusForbidden {
		t.Fatalf("expected previous owner to lose owner rights, got %d", rec.Code)
	}
	if rec := f.h.Do(http.MethodDelete, teamPath, nil); rec.Code != http.StatusForbidden {
		t.Fatalf("expected previous owner delete 403, got %d", rec.Code)
	}
}
