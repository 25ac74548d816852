package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/spritetag/pkg/io"
	"github.com/matzehuels/spritetag/pkg/pipeline"
)

// browseCommand creates the browse command.
func (c *CLI) browseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "browse CATALOG",
		Short: "Browse a tagged catalog with a live filter",
		Long: `Open an interactive view of a catalog. Typing filters the icons by title,
id or keyword as you type. Press enter to print the selected icon's SVG
markup to stdout.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := io.ImportJSON(args[0])
			if err != nil {
				return err
			}
			if len(catalog.Icons) == 0 {
				printInfo("Catalog is empty")
				return nil
			}

			p := tea.NewProgram(newBrowseModel(catalog.Icons), tea.WithContext(cmd.Context()))
			final, err := p.Run()
			if err != nil {
				return err
			}
			if m, ok := final.(browseModel); ok && m.Selected != nil {
				fmt.Println(m.Selected.SVG)
			}
			return nil
		},
	}
}

var (
	browsePromptStyle = lipgloss.NewStyle().Foreground(colorCyan)
	browseQueryStyle  = lipgloss.NewStyle().Foreground(colorWhite)
	browseDimStyle    = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// browseModel - Interactive live-filter catalog view
// =============================================================================

// browseModel is the bubbletea model for the browse command. The visible
// set is recomputed with [pipeline.Filter] on every change of the query.
type browseModel struct {
	All      []pipeline.TaggedIcon
	Shown    []pipeline.TaggedIcon
	Query    string
	Cursor   int
	Offset   int
	Height   int
	Selected *pipeline.TaggedIcon
}

func newBrowseModel(icons []pipeline.TaggedIcon) browseModel {
	return browseModel{
		All:    icons,
		Shown:  pipeline.Filter(icons, ""),
		Height: 15,
	}
}

func (m browseModel) Init() tea.Cmd {
	return nil
}

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyUp:
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case tea.KeyDown:
			if m.Cursor < len(m.Shown)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case tea.KeyEnter:
			if len(m.Shown) == 0 {
				return m, nil
			}
			icon := m.Shown[m.Cursor]
			m.Selected = &icon
			return m, tea.Quit
		case tea.KeyBackspace:
			if r := []rune(m.Query); len(r) > 0 {
				m = m.setQuery(string(r[:len(r)-1]))
			}
		case tea.KeySpace:
			m = m.setQuery(m.Query + " ")
		case tea.KeyRunes:
			m = m.setQuery(m.Query + string(msg.Runes))
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-9, 5)
	}
	return m, nil
}

// setQuery refilters and moves the cursor back to the first match.
func (m browseModel) setQuery(q string) browseModel {
	m.Query = q
	m.Shown = pipeline.Filter(m.All, q)
	m.Cursor = 0
	m.Offset = 0
	return m
}

func (m browseModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Browse Icons"))
	b.WriteString("\n")
	b.WriteString(browseDimStyle.Render("type to filter  ↑/↓ navigate  ⏎ print svg  esc quit"))
	b.WriteString("\n\n")
	b.WriteString(browsePromptStyle.Render("Search: "))
	b.WriteString(browseQueryStyle.Render(m.Query))
	b.WriteString(browsePromptStyle.Render("▏"))
	b.WriteString("\n")

	if len(m.Shown) == 0 {
		b.WriteString("\n")
		b.WriteString(browseDimStyle.Render(fmt.Sprintf("  No icons match %q", m.Query)))
		return b.String()
	}

	end := min(m.Offset+m.Height, len(m.Shown))
	b.WriteString(iconTable(m.Shown[m.Offset:end], m.Cursor-m.Offset).Render())
	b.WriteString("\n\n")
	b.WriteString(browseDimStyle.Render(fmt.Sprintf("  [%d/%d] of %d icons", m.Cursor+1, len(m.Shown), len(m.All))))

	return b.String()
}
