// Package cli implements the spritetag command-line interface.
package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/spritetag/pkg/buildinfo"
	"github.com/matzehuels/spritetag/pkg/cache"
	"github.com/matzehuels/spritetag/pkg/config"
	"github.com/matzehuels/spritetag/pkg/integrations/gemini"
	"github.com/matzehuels/spritetag/pkg/pipeline"
	"github.com/matzehuels/spritetag/pkg/raster"
	"github.com/matzehuels/spritetag/pkg/render"
	"github.com/matzehuels/spritetag/pkg/sprite"
	"github.com/matzehuels/spritetag/pkg/tagging"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = buildinfo.Name

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Persistent flags.
	configPath string
	backend    string
	verbose    bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Spritetag splits SVG sprites into icons and tags them with AI",
		Long: `Spritetag decomposes an SVG sprite sheet into standalone icons, renders each
icon to a small bitmap and asks a vision model for a title and search keywords.
The tagged catalog can be searched, browsed interactively or served over HTTP.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.verbose {
				c.SetLogLevel(LogDebug)
				registerLogHooks(c.Logger)
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	flags := root.PersistentFlags()
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	flags.StringVarP(&c.configPath, "config", "c", "", "config file (default "+config.DefaultPath()+")")
	flags.StringVar(&c.backend, "backend", "", "rendering backend: native, chrome or rsvg")

	root.AddCommand(c.extractCommand())
	root.AddCommand(c.tagCommand())
	root.AddCommand(c.searchCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Configuration
// =============================================================================

// loadConfig resolves the configuration and applies flag overrides.
func (c *CLI) loadConfig() (config.Config, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return config.Config{}, err
	}
	if c.backend != "" {
		cfg.Backend = c.backend
	}
	if cfg.CacheDir == "" {
		cfg.CacheDir = cache.DefaultDir()
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	c.Logger.Debug("configuration loaded", "config", cfg.String())
	return cfg, nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// env bundles the collaborators opened for one command.
type env struct {
	cfg     config.Config
	backend render.Backend
	cache   cache.Cache
	runner  *pipeline.Runner
}

// Close releases the backend and the cache.
func (e *env) Close() {
	if e.backend != nil {
		_ = e.backend.Close()
	}
	if e.cache != nil {
		_ = e.cache.Close()
	}
}

// openEnv opens the rendering backend and the description cache and wires
// them into a pipeline runner. The caller must Close the result.
func (c *CLI) openEnv(ctx context.Context, cfg config.Config) (*env, error) {
	backend, err := cfg.OpenBackend(ctx, c.Logger)
	if err != nil {
		return nil, err
	}
	store, keyer, err := cfg.OpenCache(ctx, c.Logger)
	if err != nil {
		_ = backend.Close()
		return nil, err
	}
	c.Logger.Debug("backend ready", "backend", backend.Name(), "cache", cfg.Cache)

	tagger := tagging.NewCached(c.newTagger(cfg), store, keyer, cfg.Model, c.Logger)
	runner := pipeline.NewRunner(
		sprite.NewDecomposer(backend, c.Logger),
		raster.NewProjector(backend),
		tagger,
		c.Logger,
	)
	runner.RasterSize = cfg.RasterSize
	runner.RecoverDelay = cfg.RecoverDelay

	return &env{cfg: cfg, backend: backend, cache: store, runner: runner}, nil
}

// newTagger returns a tagger backed by Gemini. Without an API key every
// icon is marked as failed.
func (c *CLI) newTagger(cfg config.Config) *tagging.Tagger {
	if !cfg.HasAPIKey() {
		c.Logger.Error("no API key configured, icons will be marked as failed", "env", "API_KEY")
		return tagging.NewTagger(nil, c.Logger)
	}
	return tagging.NewTagger(gemini.NewClient(cfg.APIKey, cfg.Model), c.Logger)
}
