package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/spritetag/pkg/io"
	"github.com/matzehuels/spritetag/pkg/pipeline"
)

// searchCommand creates the search command.
func (c *CLI) searchCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "search CATALOG [TERM]",
		Short: "Search a tagged catalog",
		Long: `Print the icons of a catalog whose title, id or keywords contain TERM.
Matching is case-insensitive. Without TERM every icon is listed.`,
		Example: `  spritetag search icons.json arrow
  spritetag search icons.json "chevron left" --json`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			term := ""
			if len(args) == 2 {
				term = args[1]
			}
			return runSearch(args[0], term, asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print matches as a JSON catalog")
	return cmd
}

func runSearch(path, term string, asJSON bool) error {
	catalog, err := io.ImportJSON(path)
	if err != nil {
		return err
	}
	matches := pipeline.Filter(catalog.Icons, term)

	if asJSON {
		catalog.Icons = matches
		return io.WriteJSON(catalog, os.Stdout)
	}

	if len(matches) == 0 {
		printInfo("No icons match %q", term)
		return nil
	}
	fmt.Println(iconTable(matches, -1).Render())
	printDetail("%d of %d icons", len(matches), len(catalog.Icons))
	return nil
}

// iconTable lays out icons as a table. The row at index cursor is
// highlighted; pass -1 for none.
func iconTable(icons []pipeline.TaggedIcon, cursor int) *table.Table {
	rows := make([][]string, len(icons))
	for i, icon := range icons {
		rows[i] = []string{icon.ID, icon.Title, strings.Join(icon.Keywords, ", ")}
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("ID", "Title", "Keywords").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if row < 0 || row >= len(icons) {
				return lipgloss.NewStyle()
			}

			base := lipgloss.NewStyle().Padding(0, 1)
			switch {
			case row == cursor:
				base = base.Foreground(colorCyan).Bold(true)
			case icons[row].Failed():
				base = base.Foreground(colorRed)
			case col == 0 || col == 2:
				base = base.Foreground(colorGray)
			}
			return base
		})
}
