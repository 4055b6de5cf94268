package repository

import (
	"context"
	"time"

	"educare/platform/query"

	"github.com/google/uuid"
)

// Resource types.
const (
	TypeText     = "text"
	TypeVideo    = "video"
	TypeAudio    = "audio"
	TypeImage    = "image"
	TypeDocument = "document"
	TypeLink     = "link"
)

// MediaResource is a piece of educational content, optionally backed by an
// uploaded file.
type MediaResource struct {
	ID           uuid.UUID
	Title        string
	Description  string
	ResourceType string
	Content      string
	Category     string
	IsPublic     bool
	FileKey      *string
	FileName     *string
	MimeType     *string
	FileSize     *int64
	TTSEnabled   bool
	TTSEndpoint  *string
	TTSVoice     *string
	ViewCount    int
	CreatedBy    *uuid.UUID
	UpdatedBy    *uuid.UUID
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Fields are the writable columns of a media resource.
type Fields struct {
	Title        string
	Description  string
	ResourceType string
	Content      string
	Category     string
	IsPublic     bool
	FileKey      *string
	FileName     *string
	MimeType     *string
	FileSize     *int64
	TTSEnabled   bool
	TTSEndpoint  *string
	TTSVoice     *string
}

// CreateParams contains parameters for creating a media resource.
type CreateParams struct {
	Fields
	CreatedBy uuid.UUID
}

// UpdateParams contains the full replacement state of a media resource.
type UpdateParams struct {
	Fields
	ID        uuid.UUID
	UpdatedBy uuid.UUID
}

// FieldsOf returns the writable state of r.
func FieldsOf(r MediaResource) Fields {
	return Fields{
		Title:        r.Title,
		Description:  r.Description,
		ResourceType: r.ResourceType,
		Content:      r.Content,
		Category:     r.Category,
		IsPublic:     r.IsPublic,
		FileKey:      r.FileKey,
		FileName:     r.FileName,
		MimeType:     r.MimeType,
		FileSize:     r.FileSize,
		TTSEnabled:   r.TTSEnabled,
		TTSEndpoint:  r.TTSEndpoint,
		TTSVoice:     r.TTSVoice,
	}
}

// ListConfig exposes media columns to the shared query builder.
var ListConfig = query.Config{
	Filters: map[string]string{
		"resource_type": "resource_type",
		"category":      "category",
		"is_public":     "is_public",
		"created_by":    "created_by",
	},
	SearchFields: []string{"title", "description"},
	Sorts: map[string]string{
		"title":      "title",
		"created_at": "created_at",
		"updated_at": "updated_at",
		"view_count": "view_count",
	},
}

// MediaReader provides read operations for media resources.
type MediaReader interface {
	List(ctx context.Context, spec query.Spec, scope query.Predicate) ([]MediaResource, int, error)
	GetByID(ctx context.Context, id uuid.UUID, scope query.Predicate) (MediaResource, error)
}

// MediaWriter provides write operations for media resources.
type MediaWriter interface {
	// IncrementViews atomically bumps view_count and returns the updated row.
	IncrementViews(ctx context.Context, id uuid.UUID, scope query.Predicate) (MediaResource, error)
	Create(ctx context.Context, params CreateParams) (MediaResource, error)
	Update(ctx context.Context, params UpdateParams) (MediaResource, error)
	// Delete removes the row and returns it so attached files can be cleaned up.
	Delete(ctx context.Context, id uuid.UUID) (MediaResource, error)
}

// Repository combines all media resource repository operations.
type Repository interface {
	MediaReader
	MediaWriter
}
