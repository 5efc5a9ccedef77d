package dto

import (
	"time"

	"github.com/google/uuid"
)

type UserProfileResponse struct {
	Id          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	FullName    string    `json:"full_name"`
	DisplayName string    `json:"display_name"`
	Timezone    string    `json:"timezone"`
	Status      string    `json:"status"`
	AvatarURL   string    `json:"avatar_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type UpdateProfileRequest struct {
	FullName    *string `json:"full_name" validate:"omitempty,min=3"`
	DisplayName *string `json:"display_name"`
	Timezone    *string `json:"timezone"`
}

type UploadAvatarResponse struct {
	AvatarURL string `json:"avatar_url"`
}

// ExportedNote is the per-note shape inside the export envelope. Paths are
// exported as-is; signed urls would expire before the export is useful.
type ExportedNote struct {
	Id          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Content     string     `json:"content"`
	Tags        []string   `json:"tags"`
	Attachments []string   `json:"attachments"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at"`
}

type ExportNotesResponse struct {
	ExportedAt time.Time      `json:"exportedAt"`
	UserId     uuid.UUID      `json:"userId"`
	Notes      []ExportedNote `json:"notes"`
}

type DeleteAccountResponse struct {
	Deleted bool `json:"deleted"`
}
