// Package config loads spritetag settings.
//
// Settings are resolved in three layers, later layers winning:
//
//  1. Built-in defaults ([Default])
//  2. An optional TOML file (default ~/.config/spritetag/config.toml)
//  3. Environment variables
//
// Command-line flags are applied on top by the CLI.
//
// # Environment
//
//	API_KEY                   Gemini API key (GEMINI_API_KEY is accepted as a fallback)
//	SPRITETAG_MODEL           model name (default gemini-2.5-flash)
//	SPRITETAG_BACKEND         native | chrome | rsvg (default native)
//	SPRITETAG_CHROME_URL      DevTools URL of a running browser
//	SPRITETAG_RASTER_SIZE     PNG edge length sent for tagging (default 128)
//	SPRITETAG_CACHE           file | redis | none (default file)
//	SPRITETAG_CACHE_DIR       file cache directory
//	SPRITETAG_REDIS_ADDR      host:port of the Redis cache
//	SPRITETAG_LISTEN          HTTP listen address (default :8080)
//	SPRITETAG_RECOVER_DELAY   how long empty/critical statuses stay visible (default 4s)
//	SPRITETAG_SESSION_TTL     how long finished server sessions are kept (default 1h)
//
// # File
//
//	api_key = "..."
//	backend = "chrome"
//	chrome_url = "ws://127.0.0.1:9222/devtools/browser/..."
//	cache = "redis"
//	redis_addr = "localhost:6379"
//	recover_delay = "2s"
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"

	spriteerrors "github.com/matzehuels/spritetag/pkg/errors"
	"github.com/matzehuels/spritetag/pkg/integrations/gemini"
	"github.com/matzehuels/spritetag/pkg/pipeline"
	"github.com/matzehuels/spritetag/pkg/render/backends"
)

// Cache kinds.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"
)

// Defaults.
const (
	DefaultListen     = ":8080"
	DefaultSessionTTL = time.Hour
)

// Config holds all settings shared by the CLI and the server.
type Config struct {
	APIKey       string        `toml:"api_key" env:"API_KEY"`
	Model        string        `toml:"model" env:"SPRITETAG_MODEL"`
	Backend      string        `toml:"backend" env:"SPRITETAG_BACKEND"`
	ChromeURL    string        `toml:"chrome_url" env:"SPRITETAG_CHROME_URL"`
	RasterSize   int           `toml:"raster_size" env:"SPRITETAG_RASTER_SIZE"`
	Cache        string        `toml:"cache" env:"SPRITETAG_CACHE"`
	CacheDir     string        `toml:"cache_dir" env:"SPRITETAG_CACHE_DIR"`
	RedisAddr    string        `toml:"redis_addr" env:"SPRITETAG_REDIS_ADDR"`
	Listen       string        `toml:"listen" env:"SPRITETAG_LISTEN"`
	RecoverDelay time.Duration `toml:"recover_delay" env:"SPRITETAG_RECOVER_DELAY"`
	SessionTTL   time.Duration `toml:"session_ttl" env:"SPRITETAG_SESSION_TTL"`
}

// fallbackEnv holds variables consulted only when the primary one is unset.
type fallbackEnv struct {
	GeminiAPIKey string `env:"GEMINI_API_KEY"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Model:        gemini.DefaultModel,
		Backend:      backends.Default,
		RasterSize:   pipeline.DefaultRasterSize,
		Cache:        CacheFile,
		Listen:       DefaultListen,
		RecoverDelay: pipeline.DefaultRecoverDelay,
		SessionTTL:   DefaultSessionTTL,
	}
}

// DefaultPath returns ~/.config/spritetag/config.toml (or the platform
// equivalent), or "" if no config directory is known.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "spritetag", "config.toml")
}

// Load resolves the configuration. An empty path reads [DefaultPath] if it
// exists; an explicit path must exist. The result is not validated.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			if explicit || !errors.Is(err, fs.ErrNotExist) {
				return Config{}, spriteerrors.Wrap(spriteerrors.ErrCodeInvalidConfig, err, "read config %s", path)
			}
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return Config{}, spriteerrors.Wrap(spriteerrors.ErrCodeInvalidConfig, err, "parse env")
	}
	if cfg.APIKey == "" {
		var fb fallbackEnv
		if err := env.Parse(&fb); err == nil {
			cfg.APIKey = fb.GeminiAPIKey
		}
	}
	return cfg, nil
}

// Validate checks names and ranges. A missing API key is not an error;
// tagging then reports failures per icon.
func (c Config) Validate() error {
	if !backends.Valid(c.Backend) {
		return spriteerrors.New(spriteerrors.ErrCodeInvalidConfig, "unknown backend %q (want one of %v)", c.Backend, backends.Names)
	}
	switch c.Cache {
	case CacheFile, CacheNone, "":
	case CacheRedis:
		if c.RedisAddr == "" {
			return spriteerrors.New(spriteerrors.ErrCodeInvalidConfig, "cache %q requires redis_addr", CacheRedis)
		}
	default:
		return spriteerrors.New(spriteerrors.ErrCodeInvalidConfig, "unknown cache %q (want %s, %s or %s)", c.Cache, CacheFile, CacheRedis, CacheNone)
	}
	if c.RasterSize <= 0 {
		return spriteerrors.New(spriteerrors.ErrCodeInvalidConfig, "raster size must be positive, got %d", c.RasterSize)
	}
	if c.RecoverDelay < 0 {
		return spriteerrors.New(spriteerrors.ErrCodeInvalidConfig, "recover delay must not be negative")
	}
	return nil
}

// HasAPIKey reports whether a tagging credential is configured.
func (c Config) HasAPIKey() bool { return c.APIKey != "" }

// String renders the config for display with the API key masked.
func (c Config) String() string {
	key := "(unset)"
	if c.APIKey != "" {
		key = "****"
	}
	return fmt.Sprintf("model=%s backend=%s cache=%s raster=%d api_key=%s", c.Model, c.Backend, c.Cache, c.RasterSize, key)
}
