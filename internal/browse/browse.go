// Package browse is an interactive viewer over a rendered report: the
// report sections on the left, the selected section scrolled on the right.
package browse

import (
	"context"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/dkoosis/cdashreport/pkg/pattern"
	"github.com/dkoosis/cdashreport/pkg/render"
)

// Section is one entry of the section list.
type Section struct {
	Title    string
	Patterns []pattern.Pattern
}

// Sections groups patterns into an overview section (everything that is
// not a table) followed by one section per table.
func Sections(patterns []pattern.Pattern) []Section {
	overview := Section{Title: "Overview"}
	var tables []Section
	for _, p := range patterns {
		if t, ok := p.(*pattern.DataTable); ok {
			tables = append(tables, Section{
				Title:    render.TableTitle(t.Title, t.Acronym, t.Total, t.Limit),
				Patterns: []pattern.Pattern{t},
			})
			continue
		}
		overview.Patterns = append(overview.Patterns, p)
	}
	return append([]Section{overview}, tables...)
}

// Run shows the sections until the user quits.
func Run(ctx context.Context, sections []Section, theme render.Theme, in io.Reader, out io.Writer) error {
	program := tea.NewProgram(New(sections, theme),
		tea.WithContext(ctx), tea.WithInput(in), tea.WithOutput(out), tea.WithAltScreen())
	_, err := program.Run()
	return err
}

// Model is the bubbletea model of the viewer.
type Model struct {
	sections  []Section
	theme     render.Theme
	selected  int
	viewport  viewport.Model
	ready     bool
	width     int
	height    int
	listWidth int
}

// New creates a viewer with the first section selected.
func New(sections []Section, theme render.Theme) Model {
	vp := viewport.New(0, 0)
	vp.SetContent("Loading report...")
	return Model{sections: sections, theme: theme, viewport: vp}
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "up", "k", "shift+tab":
			if m.selected > 0 {
				m.selected--
				m.refreshViewport()
			}
			return m, nil
		case "down", "j", "tab":
			if m.selected < len(m.sections)-1 {
				m.selected++
				m.refreshViewport()
			}
			return m, nil
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.listWidth = min(max(m.calculateListWidth(), 16), m.width/3)
		m.viewport.Width = max(m.width-m.listWidth-3, 10)
		m.viewport.Height = max(m.height-2, 3)
		m.ready = true
		m.refreshViewport()
		return m, nil
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *Model) calculateListWidth() int {
	w := 0
	for _, s := range m.sections {
		w = max(w, runewidth.StringWidth(s.Title))
	}
	return w + 2
}

func (m *Model) refreshViewport() {
	if m.selected < 0 || m.selected >= len(m.sections) {
		return
	}
	r := render.NewTerminal(m.theme, m.viewport.Width)
	m.viewport.SetContent(r.Render(m.sections[m.selected].Patterns))
	m.viewport.GotoTop()
}

func (m Model) View() string {
	if !m.ready {
		return "Loading report..."
	}
	lines := make([]string, 0, len(m.sections))
	for i, s := range m.sections {
		title := runewidth.Truncate(s.Title, m.listWidth-2, "...")
		if i == m.selected {
			lines = append(lines, m.theme.Primary.Bold(true).Render("▶ "+title))
			continue
		}
		lines = append(lines, m.theme.Muted.Render("  "+title))
	}
	list := lipgloss.NewStyle().Width(m.listWidth).Height(m.viewport.Height).Render(strings.Join(lines, "\n"))
	panels := lipgloss.JoinHorizontal(lipgloss.Top, list, " │ ", m.viewport.View())
	help := m.theme.Muted.Render("↑/↓ section • pgup/pgdn scroll • q quit")
	return lipgloss.JoinVertical(lipgloss.Left, panels, help)
}
