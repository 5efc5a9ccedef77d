package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NoteOwnedByUser struct {
	UserID uuid.UUID
}

func (s NoteOwnedByUser) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("notes.user_id = ?", s.UserID)
}

type ByTitle struct {
	Title string
}

func (s ByTitle) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("title = ?", s.Title)
}

// ByTag matches notes whose jsonb tags array contains the given tag.
type ByTag struct {
	Tag string
}

func (s ByTag) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("tags @> ?", `["`+s.Tag+`"]`)
}
