package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/spritetag/pkg/cache"
	"github.com/matzehuels/spritetag/pkg/config"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the description cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear all cached icon descriptions",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if cfg.Cache != config.CacheFile {
				printWarning("Cache %q is not a file cache; nothing to clear", cfg.Cache)
				return nil
			}

			dir := cacheDir(cfg)
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				printInfo("Cache is empty")
				return nil
			}

			count, err := clearFileCache(dir)
			if err != nil {
				return err
			}
			printSuccess("Cleared %d cached entries", count)
			printDetail("Directory: %s", dir)
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			fmt.Println(cacheDir(cfg))
			return nil
		},
	}
}

// cacheDir returns the configured file cache directory, or the XDG default.
func cacheDir(cfg config.Config) string {
	if cfg.CacheDir != "" {
		return cfg.CacheDir
	}
	return cache.DefaultDir()
}

// clearFileCache removes every entry below dir and reports how many there were.
func clearFileCache(dir string) (int, error) {
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return 0, fmt.Errorf("open cache: %w", err)
	}
	defer fc.Close()

	n, err := fc.Len()
	if err != nil {
		return 0, err
	}
	if err := fc.Clear(); err != nil {
		return 0, fmt.Errorf("clear cache: %w", err)
	}
	return n, nil
}
