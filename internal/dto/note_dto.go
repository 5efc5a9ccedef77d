package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateNoteRequest struct {
	Title   string   `json:"title" validate:"required"`
	Content string   `json:"content"`
	Tags    []string `json:"tags"`
}

type CreateNoteResponse struct {
	Id uuid.UUID `json:"id"`
}

// AttachmentResponse carries both the stored path (the stable identifier) and
// a signed url resolved at read time. The url is empty when resolution fails.
type AttachmentResponse struct {
	Id   string `json:"id"`
	Name string `json:"name"`
	Path string `json:"path"`
	Size int64  `json:"size"`
	Type string `json:"type"`
	URL  string `json:"url,omitempty"`
}

type NoteListItemResponse struct {
	Id           uuid.UUID  `json:"id"`
	Title        string     `json:"title"`
	Preview      string     `json:"preview"`
	Tags         []string   `json:"tags"`
	ThumbnailURL string     `json:"thumbnail_url,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    *time.Time `json:"updated_at"`
}

type ListNotesResponse struct {
	Notes []NoteListItemResponse `json:"notes"`
	Total int64                  `json:"total"`
}

type ShowNoteResponse struct {
	Id           uuid.UUID            `json:"id"`
	Title        string               `json:"title"`
	Content      string               `json:"content"`
	Tags         []string             `json:"tags"`
	Attachments  []AttachmentResponse `json:"attachments"`
	ThumbnailURL string               `json:"thumbnail_url,omitempty"`
	CreatedAt    time.Time            `json:"created_at"`
	UpdatedAt    *time.Time           `json:"updated_at"`
}

type UpdateNoteRequest struct {
	Id      uuid.UUID
	Title   *string   `json:"title" validate:"omitempty,min=1"`
	Content *string   `json:"content"`
	Tags    *[]string `json:"tags"`
}

type UpdateNoteResponse struct {
	Id uuid.UUID `json:"id"`
}

type SearchNotesResponse struct {
	Id        uuid.UUID  `json:"id"`
	Title     string     `json:"title"`
	Preview   string     `json:"preview"`
	Tags      []string   `json:"tags"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

type AddAttachmentResponse struct {
	Attachment AttachmentResponse `json:"attachment"`
}

type SetThumbnailResponse struct {
	Id           uuid.UUID `json:"id"`
	ThumbnailURL string    `json:"thumbnail_url,omitempty"`
}
