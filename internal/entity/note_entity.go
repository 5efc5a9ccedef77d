package entity

import (
	"time"

	"github.com/google/uuid"
)

// NoteAttachment describes one file attached to a note. Path is the object
// store key (or an external URL carried over from import); Id mirrors Path so
// clients have a stable handle for removal.
type NoteAttachment struct {
	Id   string `json:"id"`
	Name string `json:"name"`
	Path string `json:"path"`
	Size int64  `json:"size"`
	Type string `json:"type"`
}

type Note struct {
	Id            uuid.UUID
	Title         string
	Content       string
	Tags          []string
	Attachments   []NoteAttachment
	ThumbnailPath string
	UserId        uuid.UUID
	CreatedAt     time.Time
	UpdatedAt     *time.Time
	DeletedAt     *time.Time
	IsDeleted     bool
}

// StoragePaths collects every object store key the note owns. External URLs
// and empty paths are skipped, so the result is safe to feed straight into
// storage deletion.
func (n *Note) StoragePaths(isExternal func(string) bool) []string {
	paths := make([]string, 0, len(n.Attachments)+1)
	if n.ThumbnailPath != "" && !isExternal(n.ThumbnailPath) {
		paths = append(paths, n.ThumbnailPath)
	}
	for _, a := range n.Attachments {
		if a.Path != "" && !isExternal(a.Path) {
			paths = append(paths, a.Path)
		}
	}
	return paths
}
