package config

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/spritetag/pkg/cache"
	"github.com/matzehuels/spritetag/pkg/render"
	"github.com/matzehuels/spritetag/pkg/render/backends"
)

// redisKeyPrefix scopes keys in a shared Redis database.
const redisKeyPrefix = "spritetag:"

// OpenCache returns the configured description cache and its keyer.
// A file cache that cannot be created degrades to no caching with a warning.
func (c Config) OpenCache(ctx context.Context, logger *log.Logger) (cache.Cache, cache.Keyer, error) {
	switch c.Cache {
	case CacheNone:
		return cache.NewNullCache(), cache.NewDefaultKeyer(), nil
	case CacheRedis:
		rc, err := cache.NewRedisCache(ctx, c.RedisAddr)
		if err != nil {
			return nil, nil, err
		}
		return rc, cache.NewScopedKeyer(cache.NewDefaultKeyer(), redisKeyPrefix), nil
	default:
		fc, err := cache.NewFileCache(c.CacheDir)
		if err != nil {
			if logger != nil {
				logger.Warn("file cache unavailable, caching disabled", "err", err)
			}
			return cache.NewNullCache(), cache.NewDefaultKeyer(), nil
		}
		return fc, cache.NewDefaultKeyer(), nil
	}
}

// OpenBackend returns the configured rendering backend.
func (c Config) OpenBackend(ctx context.Context, logger *log.Logger) (render.Backend, error) {
	return backends.Open(ctx, c.Backend, backends.Options{ChromeURL: c.ChromeURL, Logger: logger})
}
