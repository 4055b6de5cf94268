package transport

import (
	"encoding/json"
	"time"

	"educare/internal/adapters/storage"
	"educare/platform/query"

	"github.com/google/uuid"
)

// CreateResourceRequest is accepted as JSON or as multipart form fields
// alongside an optional `file` part.
type CreateResourceRequest struct {
	Title        string `json:"title" form:"title" validate:"required,max=255"`
	Description  string `json:"description" form:"description" validate:"max=5000"`
	ResourceType string `json:"resource_type" form:"resource_type" validate:"required,oneof=text video audio image document link"`
	Content      string `json:"content" form:"content"`
	Category     string `json:"category" form:"category" validate:"max=100"`
	IsPublic     *bool  `json:"is_public" form:"is_public"`
	TTSEnabled   bool   `json:"tts_enabled" form:"tts_enabled"`
	TTSEndpoint  string `json:"tts_endpoint" form:"tts_endpoint" validate:"omitempty,url,max=2048"`
	TTSVoice     string `json:"tts_voice" form:"tts_voice" validate:"max=100"`
}

// UpdateResourceRequest changes only the fields that are present.
type UpdateResourceRequest struct {
	Title        *string `json:"title" form:"title" validate:"omitempty,min=1,max=255"`
	Description  *string `json:"description" form:"description" validate:"omitempty,max=5000"`
	ResourceType *string `json:"resource_type" form:"resource_type" validate:"omitempty,oneof=text video audio image document link"`
	Content      *string `json:"content" form:"content"`
	Category     *string `json:"category" form:"category" validate:"omitempty,max=100"`
	IsPublic     *bool   `json:"is_public" form:"is_public"`
	TTSEnabled   *bool   `json:"tts_enabled" form:"tts_enabled"`
	TTSEndpoint  *string `json:"tts_endpoint" form:"tts_endpoint" validate:"omitempty,url,max=2048"`
	TTSVoice     *string `json:"tts_voice" form:"tts_voice" validate:"omitempty,max=100"`
}

// ResourceRules is the final state of a resource checked by the
// cross-field rules registered in RegisterRules.
type ResourceRules struct {
	ResourceType string `json:"resource_type"`
	Content      string `json:"content"`
	TTSEnabled   bool   `json:"tts_enabled"`
	TTSEndpoint  string `json:"tts_endpoint"`
}

// ResourceResponse is the client representation of a media resource.
type ResourceResponse struct {
	ID           uuid.UUID  `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	ResourceType string     `json:"resource_type"`
	Content      string     `json:"content"`
	Category     string     `json:"category"`
	IsPublic     bool       `json:"is_public"`
	FileName     *string    `json:"file_name,omitempty"`
	MimeType     *string    `json:"mime_type,omitempty"`
	FileSize     *int64     `json:"file_size,omitempty"`
	HasFile      bool       `json:"has_file"`
	TTSEnabled   bool       `json:"tts_enabled"`
	TTSEndpoint  *string    `json:"tts_endpoint,omitempty"`
	TTSVoice     *string    `json:"tts_voice,omitempty"`
	ViewCount    int        `json:"view_count"`
	CreatedBy    *uuid.UUID `json:"created_by,omitempty"`
	UpdatedBy    *uuid.UUID `json:"updated_by,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// ListResourcesResponse is one page of resources.
type ListResourcesResponse struct {
	Items      []ResourceResponse `json:"items"`
	Pagination query.Pagination   `json:"pagination"`
}

// DownloadResponse wraps a presigned download URL.
type DownloadResponse = storage.PresignedURL

// TTSRequest is forwarded to the speech endpoint. When ResourceID is set the
// resource's own endpoint and voice are used.
type TTSRequest struct {
	Text       string     `json:"text" validate:"required,max=5000"`
	Voice      string     `json:"voice,omitempty" validate:"max=100"`
	Language   string     `json:"language,omitempty" validate:"omitempty,bcp47_language_tag"`
	ResourceID *uuid.UUID `json:"resource_id,omitempty"`
}

// TTSResponse carries the upstream JSON body unchanged.
type TTSResponse = json.RawMessage
