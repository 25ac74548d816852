package tagging

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/spritetag/pkg/cache"
	"github.com/matzehuels/spritetag/pkg/observability"
)

// Cached is a [Describer] that serves repeated rasters from a cache.
// Cache errors are logged and otherwise ignored; the inner describer is the
// source of truth. Failure sentinels are never stored.
type Cached struct {
	Inner  Describer
	Cache  cache.Cache
	Keyer  cache.Keyer
	Model  string
	TTL    time.Duration
	Logger *log.Logger
}

// NewCached wraps inner. A nil keyer uses [cache.NewDefaultKeyer]; a nil
// cache disables caching.
func NewCached(inner Describer, c cache.Cache, keyer cache.Keyer, model string, logger *log.Logger) *Cached {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	return &Cached{Inner: inner, Cache: c, Keyer: keyer, Model: model, TTL: cache.TTLTag, Logger: logger}
}

// Describe returns the cached description for the raster and hint, or asks
// the inner describer and stores a successful result.
func (c *Cached) Describe(ctx context.Context, rasterURI, hint string) Description {
	logger := c.Logger
	if logger == nil {
		logger = log.Default()
	}
	hooks := observability.Cache()

	key := c.Keyer.TagKey(cache.Hash([]byte(rasterURI)), cache.TagKeyOpts{
		Model:  c.Model,
		Hint:   hint,
		Prompt: PromptRevision,
	})

	if data, ok, err := c.Cache.Get(ctx, key); err != nil {
		logger.Warn("cache read failed", "err", err)
	} else if ok {
		var d Description
		if err := json.Unmarshal(data, &d); err == nil && d.Title != "" {
			hooks.OnCacheHit(ctx, key)
			if d.Keywords == nil {
				d.Keywords = []string{}
			}
			return d
		}
		logger.Warn("ignoring corrupt cache entry", "key", key)
	}
	hooks.OnCacheMiss(ctx, key)

	d := c.Inner.Describe(ctx, rasterURI, hint)
	if d.Failed() {
		return d
	}

	data, err := json.Marshal(d)
	if err != nil {
		return d
	}
	if err := c.Cache.Set(ctx, key, data, c.TTL); err != nil {
		logger.Warn("cache write failed", "err", err)
		return d
	}
	hooks.OnCacheSet(ctx, key, len(data))
	return d
}
