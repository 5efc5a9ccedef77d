package specification

import "gorm.io/gorm"

// NoteSearchQuery filters notes by title or content explicitly
type NoteSearchQuery struct {
	Query string
}

func (s NoteSearchQuery) Apply(db *gorm.DB) *gorm.DB {
	// % and _ in the query keep their ILIKE wildcard meaning; they are
	// not escaped as literals.
	pattern := "%" + s.Query + "%"
	// Using ILIKE for Postgres (case insensitive)
	return db.Where("title ILIKE ? OR content ILIKE ?", pattern, pattern)
}
