package repository

import (
	"context"
	"fmt"
	"time"

	"educare/platform/apperr"
	"educare/platform/db"
	"educare/platform/query"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	teamNotFoundMessage   = "team not found"
	memberNotFoundMessage = "team member not found"
)

const teamSelect = `
	SELECT t.id, t.name, t.description, t.owner_id, t.license_type, t.max_members, t.license_expires_at,
		(SELECT COUNT(*) FROM team_members tm WHERE tm.team_id = t.id),
		t.created_by, t.updated_by, t.created_at, t.updated_at
	FROM teams t `

const memberSelect = `
	SELECT tm.team_id, tm.user_id, u.email, u.full_name, tm.role, tm.status, tm.invited_by, tm.joined_at, tm.created_at
	FROM team_members tm
	JOIN users u ON u.id = tm.user_id `

// Repo implements the Repository interface with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new teams repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

// List returns one page of teams visible under scope.
func (r *Repo) List(ctx context.Context, spec query.Spec, scope query.Predicate) ([]Team, int, error) {
	stmt := query.NewStatement().Add(scope).Apply(spec)

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM teams t `+stmt.WhereSQL(), stmt.Args()...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count teams: %w", err)
	}

	page, args := stmt.PageSQL(spec)
	rows, err := r.pool.Query(ctx, teamSelect+stmt.WhereSQL()+" "+stmt.OrderSQL(spec, "t.id")+" "+page, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list teams: %w", err)
	}
	defer rows.Close()

	teams := make([]Team, 0, spec.Limit)
	for rows.Next() {
		t, err := scanTeam(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan team: %w", err)
		}
		teams = append(teams, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate teams: %w", err)
	}
	return teams, total, nil
}

// GetByID retrieves a team.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (Team, error) {
	t, err := scanTeam(r.pool.QueryRow(ctx, teamSelect+`WHERE t.id = $1`, id))
	if err != nil {
		return Team{}, db.WrapError("get team", err, teamNotFoundMessage)
	}
	return t, nil
}

// Create inserts the team and its owner's active membership.
func (r *Repo) Create(ctx context.Context, params CreateTeamParams) (Team, error) {
	var id uuid.UUID
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		f := params.TeamFields
		if err := tx.QueryRow(ctx, `
			INSERT INTO teams (name, description, owner_id, license_type, max_members, license_expires_at, created_by, updated_by)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
			RETURNING id`,
			f.Name, f.Description, f.OwnerID, f.LicenseType, f.MaxMembers, f.LicenseExpiresAt, params.CreatedBy,
		).Scan(&id); err != nil {
			return err
		}

		_, err := tx.Exec(ctx, `
			INSERT INTO team_members (team_id, user_id, role, status, invited_by, joined_at)
			VALUES ($1, $2, 'owner', 'active', $3, now())`,
			id, f.OwnerID, params.CreatedBy,
		)
		return err
	})
	if err != nil {
		return Team{}, db.WrapError("create team", err, teamNotFoundMessage)
	}
	return r.GetByID(ctx, id)
}

// Update replaces the writable state of a team. A new owner gets an active
// owner membership in the same transaction.
func (r *Repo) Update(ctx context.Context, params UpdateTeamParams) (Team, error) {
	f := params.TeamFields
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		locked, err := scanTeam(tx.QueryRow(ctx, teamSelect+`
			WHERE t.id = $1
			FOR UPDATE OF t`, params.ID))
		if err != nil {
			return err
		}

		if _, err := tx.Exec(ctx, `
			UPDATE teams SET
				name = $2,
				description = $3,
				owner_id = $4,
				license_type = $5,
				max_members = $6,
				license_expires_at = $7,
				updated_by = $8,
				updated_at = now()
			WHERE id = $1`,
			params.ID, f.Name, f.Description, f.OwnerID, f.LicenseType, f.MaxMembers, f.LicenseExpiresAt, params.UpdatedBy,
		); err != nil {
			return err
		}
		if locked.OwnerID == f.OwnerID {
			return nil
		}

		if _, err := tx.Exec(ctx, `
			UPDATE team_members SET role = 'admin'
			WHERE team_id = $1 AND user_id = $2 AND role = 'owner'`,
			params.ID, locked.OwnerID,
		); err != nil {
			return err
		}

		var seated bool
		if err := tx.QueryRow(ctx, `
			SELECT EXISTS (SELECT 1 FROM team_members WHERE team_id = $1 AND user_id = $2)`,
			params.ID, f.OwnerID,
		).Scan(&seated); err != nil {
			return err
		}
		if !seated && params.AdmitOwner != nil {
			locked.MaxMembers = f.MaxMembers
			if err := params.AdmitOwner(locked, locked.MemberCount); err != nil {
				return err
			}
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO team_members (team_id, user_id, role, status, invited_by, joined_at)
			VALUES ($1, $2, 'owner', 'active', $3, now())
			ON CONFLICT (team_id, user_id) DO UPDATE
			SET role = 'owner', status = 'active', joined_at = COALESCE(team_members.joined_at, now())`,
			params.ID, f.OwnerID, params.UpdatedBy,
		)
		return err
	})
	if err != nil {
		if apperr.GetKind(err) != apperr.KindUnknown {
			return Team{}, err
		}
		return Team{}, db.WrapError("update team", err, teamNotFoundMessage)
	}
	return r.GetByID(ctx, params.ID)
}

// Delete removes a team; memberships and chat groups cascade.
func (r *Repo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM teams WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete team: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(teamNotFoundMessage)
	}
	return nil
}

// ListMembers returns every membership of a team, owners first.
func (r *Repo) ListMembers(ctx context.Context, teamID uuid.UUID) ([]Member, error) {
	rows, err := r.pool.Query(ctx, memberSelect+`
		WHERE tm.team_id = $1
		ORDER BY (tm.role = 'owner') DESC, tm.status, u.full_name, u.email`, teamID)
	if err != nil {
		return nil, fmt.Errorf("list team members: %w", err)
	}
	defer rows.Close()

	members := make([]Member, 0)
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("scan team member: %w", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate team members: %w", err)
	}
	return members, nil
}

// GetMember returns one membership.
func (r *Repo) GetMember(ctx context.Context, teamID, userID uuid.UUID) (Member, error) {
	m, err := scanMember(r.pool.QueryRow(ctx, memberSelect+`WHERE tm.team_id = $1 AND tm.user_id = $2`, teamID, userID))
	if err != nil {
		return Member{}, db.WrapError("get team member", err, memberNotFoundMessage)
	}
	return m, nil
}

// Invite inserts an invitation while holding a row lock on the team so
// concurrent invites cannot exceed the seat limit.
func (r *Repo) Invite(ctx context.Context, params InviteParams, admit AdmitFunc) (Member, error) {
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		team, err := scanTeam(tx.QueryRow(ctx, teamSelect+`WHERE t.id = $1 FOR UPDATE OF t`, params.TeamID))
		if err != nil {
			return err
		}
		if err := admit(team, team.MemberCount); err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO team_members (team_id, user_id, role, status, invited_by)
			VALUES ($1, $2, $3, 'invited', $4)`,
			params.TeamID, params.UserID, params.Role, params.InvitedBy,
		)
		return err
	})
	if err != nil {
		if apperr.GetKind(err) != apperr.KindUnknown {
			return Member{}, err
		}
		return Member{}, db.WrapError("invite team member", err, teamNotFoundMessage)
	}
	return r.GetMember(ctx, params.TeamID, params.UserID)
}

// UpdateMember changes role and status. joined_at is stamped the first
// time the membership becomes active.
func (r *Repo) UpdateMember(ctx context.Context, params UpdateMemberParams) (Member, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE team_members SET
			role = $3,
			status = $4,
			joined_at = CASE WHEN $4 = 'active' THEN COALESCE(joined_at, now()) ELSE joined_at END
		WHERE team_id = $1 AND user_id = $2`,
		params.TeamID, params.UserID, params.Role, params.Status,
	)
	if err != nil {
		return Member{}, db.WrapError("update team member", err, memberNotFoundMessage)
	}
	if tag.RowsAffected() == 0 {
		return Member{}, apperr.NotFound(memberNotFoundMessage)
	}
	return r.GetMember(ctx, params.TeamID, params.UserID)
}

// RemoveMember deletes a membership.
func (r *Repo) RemoveMember(ctx context.Context, teamID, userID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM team_members WHERE team_id = $1 AND user_id = $2`, teamID, userID)
	if err != nil {
		return fmt.Errorf("remove team member: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(memberNotFoundMessage)
	}
	return nil
}

// ActiveMemberIDs returns the user ids of a team's active members.
func (r *Repo) ActiveMemberIDs(ctx context.Context, teamID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT user_id FROM team_members WHERE team_id = $1 AND status = 'active'`, teamID)
	if err != nil {
		return nil, fmt.Errorf("query active members: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
	if err != nil {
		return nil, fmt.Errorf("collect active members: %w", err)
	}
	return ids, nil
}

// DeleteStaleInvites removes invitations created before the cutoff that
// were never accepted.
func (r *Repo) DeleteStaleInvites(ctx context.Context, before time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM team_members WHERE status = 'invited' AND created_at < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("delete stale invites: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanTeam(row pgx.Row) (Team, error) {
	var t Team
	err := row.Scan(
		&t.ID, &t.Name, &t.Description, &t.OwnerID, &t.LicenseType, &t.MaxMembers, &t.LicenseExpiresAt,
		&t.MemberCount, &t.CreatedBy, &t.UpdatedBy, &t.CreatedAt, &t.UpdatedAt,
	)
	return t, err
}

func scanMember(row pgx.Row) (Member, error) {
	var m Member
	err := row.Scan(&m.TeamID, &m.UserID, &m.Email, &m.FullName, &m.Role, &m.Status, &m.InvitedBy, &m.JoinedAt, &m.CreatedAt)
	return m, err
}
