package storage

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestBuildObjectKeyShape(t *testing.T) {
	userID := uuid.New()
	noteID := uuid.New()

	key := BuildObjectKey(userID, "attachments", noteID.String(), "report.pdf", "application/pdf")

	parts := strings.Split(key, "/")
	assert.Len(t, parts, 4)
	assert.Equal(t, userID.String(), parts[0])
	assert.Equal(t, "attachments", parts[1])
	assert.Equal(t, noteID.String(), parts[2])
	assert.True(t, strings.HasSuffix(parts[3], ".pdf"))

	// Random file segment must be a parseable uuid.
	fileName := strings.TrimSuffix(parts[3], ".pdf")
	_, err := uuid.Parse(fileName)
	assert.NoError(t, err)
}

func TestBuildObjectKeySanitizesSegments(t *testing.T) {
	userID := uuid.New()

	key := BuildObjectKey(userID, "att/ach..ments", "it em!", "x.png", "image/png")

	parts := strings.Split(key, "/")
	assert.Len(t, parts, 4)
	assert.Equal(t, "att-ach--ments", parts[1])
	assert.Equal(t, "it-em-", parts[2])
}

func TestBuildObjectKeyUniquePerCall(t *testing.T) {
	userID := uuid.New()
	a := BuildObjectKey(userID, "avatars", userID.String(), "me.png", "image/png")
	b := BuildObjectKey(userID, "avatars", userID.String(), "me.png", "image/png")
	assert.NotEqual(t, a, b)
}

func TestFileExtension(t *testing.T) {
	tests := []struct {
		filename string
		mimeType string
		expected string
	}{
		{"photo.JPG", "image/png", "jpg"}, // filename wins over mime
		{"archive.tar.gz", "", "gz"},
		{"noext", "image/webp", "webp"},
		{"noext", "application/x-zip-compressed", "zip"},
		{"", "audio/mpeg", "mp3"},
		{"", "application/unknown", "bin"},
		{"trailingdot.", "", "bin"},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s_%s", tt.filename, tt.mimeType), func(t *testing.T) {
			assert.Equal(t, tt.expected, fileExtension(tt.filename, tt.mimeType))
		})
	}
}

func TestIsExternal(t *testing.T) {
	assert.True(t, IsExternal("https://example.com/a.png"))
	assert.True(t, IsExternal("http://example.com/a.png"))
	assert.True(t, IsExternal("blob:abc123"))
	assert.True(t, IsExternal("data:image/png;base64,xyz"))
	assert.False(t, IsExternal("user-id/attachments/note-id/file.png"))
	assert.False(t, IsExternal(""))
}
