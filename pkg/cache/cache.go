// Package cache provides byte-oriented caches for description results.
//
// Describing an icon is the slow, rate-limited and billed step of tagging.
// Sprites are re-uploaded often with few changes, so results are cached by
// the hash of the icon's raster together with the hint and model:
//
//   - [FileCache]: JSON files under the user cache directory (CLI default)
//   - [RedisCache]: a shared Redis instance (multi-process servers)
//   - [NullCache]: caching disabled
//
// Keys are built by a [Keyer]; [ScopedKeyer] prefixes them so several
// deployments can share one Redis database.
//
//	c, _ := cache.NewFileCache(cache.DefaultDir())
//	key := cache.NewDefaultKeyer().TagKey(cache.Hash(png), cache.TagKeyOpts{Model: "gemini-2.5-flash"})
//	data, hit, err := c.Get(ctx, key)
package cache

import (
	"context"
	"os"
	"path/filepath"
	"time"
)

// Cache stores opaque byte values with an optional time-to-live.
type Cache interface {
	// Get returns the value for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of 0 means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the cache's resources.
	Close() error
}

// TTLs for cached values.
const (
	// TTLTag is how long a description stays valid. Descriptions only depend
	// on the pixels and the model, so they are kept for a long time.
	TTLTag = 30 * 24 * time.Hour
)

// DefaultDir returns the file cache location, $XDG_CACHE_HOME/spritetag or
// its platform equivalent. It falls back to ~/.cache/spritetag.
func DefaultDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "spritetag")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cache", "spritetag")
}

// =============================================================================
// Keys
// =============================================================================

// Keyer builds cache keys.
type Keyer interface {
	// TagKey identifies the description of one raster.
	TagKey(rasterHash string, opts TagKeyOpts) string
}

// TagKeyOpts are the inputs besides the raster that influence a description.
type TagKeyOpts struct {
	Model  string `json:"model"`
	Hint   string `json:"hint,omitempty"`
	Prompt string `json:"prompt,omitempty"` // prompt revision
}

// DefaultKeyer builds unscoped keys of the form "<kind>:<sha256>".
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// TagKey hashes the raster hash with the options.
func (DefaultKeyer) TagKey(rasterHash string, opts TagKeyOpts) string {
	return hashKey("tag", rasterHash, opts)
}
