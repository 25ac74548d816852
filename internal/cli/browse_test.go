package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/spritetag/pkg/pipeline"
	"github.com/matzehuels/spritetag/pkg/sprite"
)

func browseIcons() []pipeline.TaggedIcon {
	return []pipeline.TaggedIcon{
		{Icon: sprite.NewIcon("arrow-left", "<svg/>", ""), Title: "Arrow Left", Keywords: []string{"back", "previous"}},
		{Icon: sprite.NewIcon("bell", "<svg/>", ""), Title: "Bell", Keywords: []string{"notification"}},
		{Icon: sprite.NewIcon("arrow-right", "<svg/>", ""), Title: "Arrow Right", Keywords: []string{"next"}},
	}
}

func typeText(m tea.Model, s string) tea.Model {
	for _, r := range s {
		if r == ' ' {
			m, _ = m.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
			continue
		}
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func TestBrowseModelFilter(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty query shows all", "", []string{"arrow-left", "bell", "arrow-right"}},
		{"title", "arrow", []string{"arrow-left", "arrow-right"}},
		{"keyword", "notif", []string{"bell"}},
		{"case insensitive", "BELL", []string{"bell"}},
		{"whitespace only shows all", "  ", []string{"arrow-left", "bell", "arrow-right"}},
		{"no match", "zzz", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := typeText(newBrowseModel(browseIcons()), tt.input).(browseModel)
			var got []string
			for _, icon := range m.Shown {
				got = append(got, icon.ID)
			}
			if strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Errorf("Shown = %v, want %v", got, tt.want)
			}
			if m.Query != tt.input {
				t.Errorf("Query = %q, want %q", m.Query, tt.input)
			}
		})
	}
}

func TestBrowseModelBackspace(t *testing.T) {
	m := typeText(newBrowseModel(browseIcons()), "bellx")
	if n := len(m.(browseModel).Shown); n != 0 {
		t.Fatalf("Shown = %d, want 0", n)
	}
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	bm := m.(browseModel)
	if bm.Query != "bell" || len(bm.Shown) != 1 {
		t.Errorf("after backspace: query %q, %d shown", bm.Query, len(bm.Shown))
	}
}

func TestBrowseModelNavigateAndSelect(t *testing.T) {
	var m tea.Model = newBrowseModel(browseIcons())
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyUp})
	if c := m.(browseModel).Cursor; c != 0 {
		t.Errorf("cursor moved above first row: %d", c)
	}
	for range 5 {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	}
	if c := m.(browseModel).Cursor; c != 2 {
		t.Errorf("cursor = %d, want 2", c)
	}

	m = typeText(m, "a")
	if c := m.(browseModel).Cursor; c != 0 {
		t.Errorf("typing should reset the cursor, got %d", c)
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	bm := m.(browseModel)
	if bm.Selected == nil || bm.Selected.ID != bm.Shown[1].ID {
		t.Fatalf("Selected = %+v", bm.Selected)
	}
	if cmd == nil {
		t.Error("enter should quit")
	}
}

func TestBrowseModelEnterWithoutMatches(t *testing.T) {
	m := typeText(newBrowseModel(browseIcons()), "zzz")
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.(browseModel).Selected != nil || cmd != nil {
		t.Error("enter with no matches should do nothing")
	}
}

func TestBrowseModelScroll(t *testing.T) {
	var icons []pipeline.TaggedIcon
	for i := range 20 {
		id := string(rune('a' + i))
		icons = append(icons, pipeline.TaggedIcon{Icon: sprite.NewIcon(id, "<svg/>", ""), Title: id})
	}
	var m tea.Model = newBrowseModel(icons)
	m, _ = m.Update(tea.WindowSizeMsg{Width: 80, Height: 14})
	if h := m.(browseModel).Height; h != 5 {
		t.Fatalf("Height = %d, want 5", h)
	}
	for range 7 {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	}
	bm := m.(browseModel)
	if bm.Cursor != 7 || bm.Offset != 3 {
		t.Errorf("cursor/offset = %d/%d, want 7/3", bm.Cursor, bm.Offset)
	}
}

func TestBrowseModelView(t *testing.T) {
	m := typeText(newBrowseModel(browseIcons()), "bell").(browseModel)
	view := m.View()
	for _, want := range []string{"Browse Icons", "bell", "Bell", "notification", "[1/1] of 3 icons"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q", want)
		}
	}

	m = typeText(m, "zzz").(browseModel)
	if !strings.Contains(m.View(), "No icons match") {
		t.Error("View() should report no matches")
	}
}
