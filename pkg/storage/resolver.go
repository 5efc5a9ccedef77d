package storage

import (
	"context"
	"time"

	"ai-notes-be/internal/pkg/logger"

	"github.com/patrickmn/go-cache"
)

// Cache entries expire before the signed URL itself does, so a URL handed out
// from the cache cannot lapse mid-use.
const resolverCacheTTL = 55 * time.Minute

// Resolver maps storage paths to display URLs usable directly in an image
// tag. Resolution results are cached per path; entries are evicted on expiry
// only.
type Resolver struct {
	storage ObjectStorage
	cache   *cache.Cache
	logger  logger.ILogger
}

func NewResolver(storage ObjectStorage, log logger.ILogger) *Resolver {
	return &Resolver{
		storage: storage,
		cache:   cache.New(resolverCacheTTL, 10*time.Minute),
		logger:  log,
	}
}

// Resolve returns a URL for the given path. Absolute URLs, blob references,
// and data URIs pass through untouched. Failures are logged and yield "";
// the caller falls back to a default image. Resolve never returns an error.
func (r *Resolver) Resolve(ctx context.Context, path string) string {
	if path == "" {
		return ""
	}
	if IsExternal(path) {
		return path
	}

	if cached, found := r.cache.Get(path); found {
		return cached.(string)
	}

	url, err := r.storage.SignedGetURL(ctx, path)
	if err != nil {
		r.logger.Error("storage", "Failed to obtain signed URL", map[string]interface{}{
			"path":  path,
			"error": err.Error(),
		})
		return ""
	}

	r.cache.Set(path, url, cache.DefaultExpiration)
	return url
}
