package dto

import "github.com/google/uuid"

// IndexNotePreviewMessage asks the indexer to recompute the cached plain-text
// preview of one note.
type IndexNotePreviewMessage struct {
	NoteId uuid.UUID `json:"note_id"`
}
