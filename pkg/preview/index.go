// Package preview maintains memoized plain-text previews for loaded notes.
// Filtering as the user types must not re-parse every note's HTML on every
// keystroke; a note's preview is recomputed only when that note's version
// changes.
package preview

import (
	"strings"
	"sync"
	"time"

	"ai-notes-be/pkg/htmltext"

	"github.com/google/uuid"
)

type entry struct {
	version time.Time // note's UpdatedAt when the preview was derived
	title   string
	text    string
}

// Index caches one derived preview per note id.
type Index struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]entry
}

func NewIndex() *Index {
	return &Index{
		entries: make(map[uuid.UUID]entry),
	}
}

// Put derives and stores the preview for a note. The HTML is only re-parsed
// when the stored version differs from the given one.
func (i *Index) Put(id uuid.UUID, title, htmlContent string, version time.Time) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if e, ok := i.entries[id]; ok && e.version.Equal(version) && e.title == title {
		return
	}

	i.entries[id] = entry{
		version: version,
		title:   title,
		text:    htmltext.ToPlainText(htmlContent),
	}
}

// Preview returns the cached plain-text preview for a note, or "" if the note
// has not been indexed yet.
func (i *Index) Preview(id uuid.UUID) string {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.entries[id].text
}

// Matches reports whether a note's title or cached preview contains the query
// as a case-insensitive substring. An empty query matches everything.
func (i *Index) Matches(id uuid.UUID, query string) bool {
	normalized := strings.ToLower(strings.TrimSpace(query))
	if normalized == "" {
		return true
	}

	i.mu.RLock()
	e := i.entries[id]
	i.mu.RUnlock()

	haystack := strings.ToLower(e.title + " " + e.text)
	return strings.Contains(haystack, normalized)
}

// Forget drops a note's cached preview (on delete).
func (i *Index) Forget(id uuid.UUID) {
	i.mu.Lock()
	defer i.mu.Unlock()
	delete(i.entries, id)
}

// Len returns the number of indexed notes.
func (i *Index) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.entries)
}
