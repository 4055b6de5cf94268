package repository

import (
	"context"
	"fmt"

	"educare/platform/db"
	"educare/platform/query"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const mediaNotFoundMessage = "media resource not found"

const mediaColumns = `id, title, description, resource_type, content, category, is_public,
	file_key, file_name, mime_type, file_size, tts_enabled, tts_endpoint, tts_voice,
	view_count, created_by, updated_by, created_at, updated_at`

// Repo implements the Repository interface with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new media repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

// List returns one page of resources matching spec and the total match count.
func (r *Repo) List(ctx context.Context, spec query.Spec, scope query.Predicate) ([]MediaResource, int, error) {
	stmt := query.NewStatement().Add(scope).Apply(spec)

	var total int
	countSQL := `SELECT COUNT(*) FROM media_resources ` + stmt.WhereSQL()
	if err := r.pool.QueryRow(ctx, countSQL, stmt.Args()...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count media resources: %w", err)
	}

	page, args := stmt.PageSQL(spec)
	listSQL := `SELECT ` + mediaColumns + ` FROM media_resources ` + stmt.WhereSQL() + ` ` +
		stmt.OrderSQL(spec, "id") + ` ` + page

	rows, err := r.pool.Query(ctx, listSQL, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list media resources: %w", err)
	}
	defer rows.Close()

	items := make([]MediaResource, 0, spec.Limit)
	for rows.Next() {
		item, err := scanResource(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan media resource: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate media resources: %w", err)
	}

	return items, total, nil
}

// GetByID retrieves a resource visible under scope.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID, scope query.Predicate) (MediaResource, error) {
	stmt := query.NewStatement().Where("id = ?", id).Add(scope)
	row := r.pool.QueryRow(ctx, `SELECT `+mediaColumns+` FROM media_resources `+stmt.WhereSQL(), stmt.Args()...)

	item, err := scanResource(row)
	if err != nil {
		return MediaResource{}, wrap("get media resource", err)
	}
	return item, nil
}

// IncrementViews bumps view_count in a single statement so concurrent
// readers never lose an increment.
func (r *Repo) IncrementViews(ctx context.Context, id uuid.UUID, scope query.Predicate) (MediaResource, error) {
	stmt := query.NewStatement().Where("id = ?", id).Add(scope)
	sql := `UPDATE media_resources SET view_count = view_count + 1 ` + stmt.WhereSQL() + ` RETURNING ` + mediaColumns

	item, err := scanResource(r.pool.QueryRow(ctx, sql, stmt.Args()...))
	if err != nil {
		return MediaResource{}, wrap("increment media views", err)
	}
	return item, nil
}

// Create inserts a new resource.
func (r *Repo) Create(ctx context.Context, params CreateParams) (MediaResource, error) {
	sql := `
		INSERT INTO media_resources (
			title, description, resource_type, content, category, is_public,
			file_key, file_name, mime_type, file_size, tts_enabled, tts_endpoint, tts_voice,
			created_by, updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $14)
		RETURNING ` + mediaColumns

	f := params.Fields
	item, err := scanResource(r.pool.QueryRow(ctx, sql,
		f.Title, f.Description, f.ResourceType, f.Content, f.Category, f.IsPublic,
		f.FileKey, f.FileName, f.MimeType, f.FileSize, f.TTSEnabled, f.TTSEndpoint, f.TTSVoice,
		params.CreatedBy,
	))
	if err != nil {
		return MediaResource{}, wrap("create media resource", err)
	}
	return item, nil
}

// Update replaces the writable state of an existing resource.
func (r *Repo) Update(ctx context.Context, params UpdateParams) (MediaResource, error) {
	sql := `
		UPDATE media_resources SET
			title = $2,
			description = $3,
			resource_type = $4,
			content = $5,
			category = $6,
			is_public = $7,
			file_key = $8,
			file_name = $9,
			mime_type = $10,
			file_size = $11,
			tts_enabled = $12,
			tts_endpoint = $13,
			tts_voice = $14,
			updated_by = $15,
			updated_at = now()
		WHERE id = $1
		RETURNING ` + mediaColumns

	f := params.Fields
	item, err := scanResource(r.pool.QueryRow(ctx, sql,
		params.ID, f.Title, f.Description, f.ResourceType, f.Content, f.Category, f.IsPublic,
		f.FileKey, f.FileName, f.MimeType, f.FileSize, f.TTSEnabled, f.TTSEndpoint, f.TTSVoice,
		params.UpdatedBy,
	))
	if err != nil {
		return MediaResource{}, wrap("update media resource", err)
	}
	return item, nil
}

// Delete removes a resource and returns the deleted row.
func (r *Repo) Delete(ctx context.Context, id uuid.UUID) (MediaResource, error) {
	item, err := scanResource(r.pool.QueryRow(ctx,
		`DELETE FROM media_resources WHERE id = $1 RETURNING `+mediaColumns, id))
	if err != nil {
		return MediaResource{}, wrap("delete media resource", err)
	}
	return item, nil
}

func scanResource(row pgx.Row) (MediaResource, error) {
	var m MediaResource
	err := row.Scan(
		&m.ID, &m.Title, &m.Description, &m.ResourceType, &m.Content, &m.Category, &m.IsPublic,
		&m.FileKey, &m.FileName, &m.MimeType, &m.FileSize, &m.TTSEnabled, &m.TTSEndpoint, &m.TTSVoice,
		&m.ViewCount, &m.CreatedBy, &m.UpdatedBy, &m.CreatedAt, &m.UpdatedAt,
	)
	return m, err
}

func wrap(op string, err error) error {
	return db.WrapError(op, err, mediaNotFoundMessage)
}
