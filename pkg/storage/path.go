package storage

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// Object keys are namespaced per user, per feature, per item:
// {userId}/{feature}/{itemId}/{randomId}.{ext}. The random file name keeps
// keys content-addressed by identifier rather than the original filename.

var unsafeSegment = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

var mimeExtensions = map[string]string{
	"image/jpeg":                   "jpg",
	"image/png":                    "png",
	"image/gif":                    "gif",
	"image/webp":                   "webp",
	"image/svg+xml":                "svg",
	"application/pdf":              "pdf",
	"text/plain":                   "txt",
	"text/markdown":                "md",
	"application/zip":              "zip",
	"application/x-zip-compressed": "zip",
	"application/json":             "json",
	"audio/mpeg":                   "mp3",
	"video/mp4":                    "mp4",
}

// BuildObjectKey assembles the storage key for a new upload. The extension is
// taken from the original filename when present, falling back to the MIME
// type, then to "bin".
func BuildObjectKey(userID uuid.UUID, feature, itemID, filename, mimeType string) string {
	safeFeature := unsafeSegment.ReplaceAllString(feature, "-")
	safeItem := unsafeSegment.ReplaceAllString(itemID, "-")
	ext := fileExtension(filename, mimeType)

	return fmt.Sprintf("%s/%s/%s/%s.%s", userID.String(), safeFeature, safeItem, uuid.New().String(), ext)
}

func fileExtension(filename, mimeType string) string {
	if idx := strings.LastIndex(filename, "."); idx >= 0 && idx < len(filename)-1 {
		ext := strings.ToLower(strings.TrimSpace(filename[idx+1:]))
		if ext != "" {
			return ext
		}
	}
	if ext, ok := mimeExtensions[mimeType]; ok {
		return ext
	}
	return "bin"
}
