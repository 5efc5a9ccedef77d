package preview

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestPutAndPreview(t *testing.T) {
	idx := NewIndex()
	id := uuid.New()
	v1 := time.Now()

	idx.Put(id, "Groceries", "<ul><li>Coffee</li><li>Milk</li></ul>", v1)
	assert.Equal(t, "Coffee Milk", idx.Preview(id))
	assert.Equal(t, 1, idx.Len())
}

func TestPutSkipsRecomputeForSameVersion(t *testing.T) {
	idx := NewIndex()
	id := uuid.New()
	v1 := time.Now()

	idx.Put(id, "Note", "<p>original</p>", v1)
	// Same version: content change must be ignored, the cached text stands.
	idx.Put(id, "Note", "<p>changed but same version</p>", v1)
	assert.Equal(t, "original", idx.Preview(id))

	// New version: recompute.
	idx.Put(id, "Note", "<p>changed</p>", v1.Add(time.Second))
	assert.Equal(t, "changed", idx.Preview(id))
}

func TestPutRecomputesOnTitleChange(t *testing.T) {
	idx := NewIndex()
	id := uuid.New()
	v1 := time.Now()

	idx.Put(id, "Old title", "<p>body</p>", v1)
	idx.Put(id, "New title", "<p>body</p>", v1)
	assert.True(t, idx.Matches(id, "new title"))
	assert.False(t, idx.Matches(id, "old title"))
}

func TestMatches(t *testing.T) {
	idx := NewIndex()
	id := uuid.New()
	idx.Put(id, "Meeting Notes", "<p>Discussed the Q1 roadmap</p>", time.Now())

	assert.True(t, idx.Matches(id, "roadmap"))
	assert.True(t, idx.Matches(id, "MEETING"))
	assert.True(t, idx.Matches(id, "  q1  "))
	assert.True(t, idx.Matches(id, ""), "empty query matches everything")
	assert.False(t, idx.Matches(id, "budget"))
}

func TestMatchesUnknownId(t *testing.T) {
	idx := NewIndex()
	assert.True(t, idx.Matches(uuid.New(), ""))
	assert.False(t, idx.Matches(uuid.New(), "anything"))
}

func TestForget(t *testing.T) {
	idx := NewIndex()
	id := uuid.New()
	idx.Put(id, "Note", "<p>text</p>", time.Now())
	idx.Forget(id)

	assert.Equal(t, "", idx.Preview(id))
	assert.Equal(t, 0, idx.Len())
}
