package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/spritetag/pkg/io"
	"github.com/matzehuels/spritetag/pkg/pipeline"
	"github.com/matzehuels/spritetag/pkg/sprite"
)

// tagCommand creates the tag command.
func (c *CLI) tagCommand() *cobra.Command {
	var (
		output   string
		iconsDir string
	)

	cmd := &cobra.Command{
		Use:   "tag FILE",
		Short: "Extract icons from a sprite and tag them with AI",
		Long: `Extract icons from an SVG sprite and describe each one with a title and
search keywords. Icons are processed one at a time; an icon that cannot be
described is kept and marked as failed.

The Gemini API key is read from API_KEY (or GEMINI_API_KEY) or the config file.
Descriptions are cached, so tagging the same sprite again is fast.`,
		Example: `  spritetag tag icons.svg
  spritetag tag icons.svg -o catalog.json --icons out/`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runTag(cmd.Context(), args[0], output, iconsDir)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "catalog file (default: <file>.json)")
	cmd.Flags().StringVar(&iconsDir, "icons", "", "also write each icon as an .svg file into this directory")
	return cmd
}

func (c *CLI) runTag(ctx context.Context, path, output, iconsDir string) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	up, err := readUpload(path)
	if err != nil {
		return err
	}

	e, err := c.openEnv(ctx, cfg)
	if err != nil {
		return err
	}
	defer e.Close()

	// Statuses are printed once, so there is nothing to keep visible.
	e.runner.RecoverDelay = 0
	rec := &recordingDecomposer{inner: e.runner.Decomposer}
	e.runner.Decomposer = rec

	spinner := newSpinnerWithContext(ctx, pipeline.MsgExtracting)
	spinner.Start()
	prog := newProgress(c.Logger)
	icons, err := e.runner.Process(ctx, up, spinnerPublisher(spinner))
	spinner.Stop()
	if err != nil {
		return err
	}
	if len(icons) == 0 {
		printWarning("%s", pipeline.MsgEmpty)
		return nil
	}
	prog.done(fmt.Sprintf("Tagged %d icons", len(icons)))

	if output == "" {
		output = sprite.BaseName(filepath.Base(path)) + ".json"
	}
	catalog := io.Catalog{Source: up.Name, Strategy: rec.strategy, Icons: icons}
	if err := io.ExportJSON(catalog, output); err != nil {
		return err
	}

	printSuccess("Tagged %d icons", len(icons))
	printTagStats(len(icons), countFailed(icons))
	printFile(output)
	if iconsDir != "" {
		if _, err := io.WriteIcons(iconsDir, icons); err != nil {
			return err
		}
		printFile(iconsDir)
	}
	printNewline()
	printNextStep("Search it", fmt.Sprintf("%s search %s TERM", appName, output))
	printNextStep("Browse it", fmt.Sprintf("%s browse %s", appName, output))
	return nil
}

// spinnerPublisher mirrors status messages in the spinner.
func spinnerPublisher(s *Spinner) pipeline.Publisher {
	return pipeline.PublisherFunc(func(ev pipeline.Event) {
		if ev.Kind == pipeline.EventStatus && ev.Progress.Message != "" {
			s.SetMessage(ev.Progress.Message)
		}
	})
}

// recordingDecomposer remembers which strategy produced the icons.
type recordingDecomposer struct {
	inner    pipeline.Decomposer
	strategy string
}

func (r *recordingDecomposer) Decompose(ctx context.Context, src, name string) (sprite.Result, error) {
	res, err := r.inner.Decompose(ctx, src, name)
	r.strategy = res.Strategy
	return res, err
}

func countFailed(icons []pipeline.TaggedIcon) int {
	n := 0
	for _, icon := range icons {
		if icon.Failed() {
			n++
		}
	}
	return n
}
