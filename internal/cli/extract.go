package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/spritetag/pkg/io"
	"github.com/matzehuels/spritetag/pkg/pipeline"
	"github.com/matzehuels/spritetag/pkg/render"
	"github.com/matzehuels/spritetag/pkg/sprite"
)

// extractCommand creates the extract command.
func (c *CLI) extractCommand() *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "extract FILE",
		Short: "Split an SVG sprite into standalone icon files",
		Long: `Extract icons from an SVG sprite without tagging them.

Symbols are extracted first. Sprites without symbols are split by their
top-level groups, and anything else is kept as a single icon.`,
		Example: `  spritetag extract icons.svg
  spritetag extract icons.svg -o out/`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runExtract(cmd, args[0], outDir)
		},
	}

	cmd.Flags().StringVarP(&outDir, "output", "o", "", "output directory (default: <file>-icons)")
	return cmd
}

func (c *CLI) runExtract(cmd *cobra.Command, path, outDir string) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	up, err := readUpload(path)
	if err != nil {
		return err
	}

	backend, err := cfg.OpenBackend(ctx, logger)
	if err != nil {
		return err
	}
	defer backend.Close()

	res, err := decompose(cmd, backend, up)
	if err != nil {
		return err
	}
	if res.Empty() {
		printWarning("%s", pipeline.MsgEmpty)
		return nil
	}

	if outDir == "" {
		outDir = sprite.BaseName(filepath.Base(path)) + "-icons"
	}
	tagged := make([]pipeline.TaggedIcon, len(res.Icons))
	for i, icon := range res.Icons {
		tagged[i] = pipeline.TaggedIcon{Icon: icon}
	}
	files, err := io.WriteIcons(outDir, tagged)
	if err != nil {
		return err
	}

	printSuccess("Extracted %d icons", len(files))
	printStats(len(files), res.Strategy)
	printDetail("Directory: %s", outDir)
	printNewline()
	printNextStep("Tag them", fmt.Sprintf("%s tag %s", appName, path))
	return nil
}

// decompose runs the decomposer behind a spinner.
func decompose(cmd *cobra.Command, m render.Measurer, up pipeline.Upload) (sprite.Result, error) {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	spinner := newSpinnerWithContext(ctx, pipeline.MsgExtracting)
	spinner.Start()
	prog := newProgress(logger)
	res, err := sprite.NewDecomposer(m, logger).Decompose(ctx, up.Content, up.Name)
	spinner.Stop()
	if err != nil {
		return sprite.Result{}, err
	}
	prog.done(fmt.Sprintf("Decomposed %s", up.Name))
	return res, nil
}

// readUpload reads a sprite file from disk.
func readUpload(path string) (pipeline.Upload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return pipeline.Upload{}, fmt.Errorf("read %s: %w", path, err)
	}
	return pipeline.Upload{Name: filepath.Base(path), Content: string(data)}, nil
}
