package transport

import (
	"time"

	"github.com/google/uuid"
)

// UpdateProfileRequest changes only the fields that are present. An empty
// phone clears it.
type UpdateProfileRequest struct {
	DisplayName *string `json:"display_name" validate:"omitempty,max=100"`
	Phone       *string `json:"phone" validate:"omitempty,max=32"`
	Bio         *string `json:"bio" validate:"omitempty,max=2000"`
	Locale      *string `json:"locale" validate:"omitempty,bcp47_language_tag"`
}

// ProfileResponse is the client representation of a profile.
type ProfileResponse struct {
	UserID      uuid.UUID  `json:"user_id"`
	DisplayName string     `json:"display_name"`
	Phone       *string    `json:"phone,omitempty"`
	Bio         string     `json:"bio"`
	Locale      string     `json:"locale"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}
