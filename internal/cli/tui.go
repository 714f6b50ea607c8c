package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/funnelkit/pkg/editor"
	"github.com/matzehuels/funnelkit/pkg/errors"
	"github.com/matzehuels/funnelkit/pkg/funnel"
)

// Canvas spacing for nodes dropped from the keyboard.
const (
	dropColumnWidth = 240
	dropRowHeight   = 120
)

var (
	statusOKStyle  = lipgloss.NewStyle().Foreground(colorGreen)
	statusErrStyle = lipgloss.NewStyle().Foreground(colorRed)
	markStyle      = lipgloss.NewStyle().Foreground(colorYellow).Bold(true)
	paletteStyle   = lipgloss.NewStyle().Foreground(colorGray)
)

// =============================================================================
// EditorModel - Interactive funnel editor
// =============================================================================

// EditorModel is the bubbletea model behind "funnelkit edit". Every key press
// goes straight to the session, so the screen always shows saved state.
type EditorModel struct {
	ctx       context.Context
	session   *editor.Session
	maxIssues int

	Funnel    editor.View
	Cursor    int
	Mark      string // node id picked as connection source
	Status    string
	StatusErr bool
}

// NewEditorModel creates an editor over s.
func NewEditorModel(ctx context.Context, s *editor.Session, maxIssues int) EditorModel {
	return EditorModel{
		ctx:       ctx,
		session:   s,
		maxIssues: maxIssues,
		Funnel:    s.View(),
	}
}

func (m EditorModel) Init() tea.Cmd {
	return nil
}

func (m EditorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch k := key.String(); k {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.Cursor > 0 {
			m.Cursor--
		}
	case "down", "j":
		if m.Cursor < len(m.Funnel.Nodes)-1 {
			m.Cursor++
		}
	case "1", "2", "3", "4", "5":
		m = m.drop(funnel.Types()[k[0]-'1'])
	case "c", "enter":
		m = m.connect()
	case "esc":
		if m.Mark != "" {
			m.Mark = ""
			m = m.ok("Connection cancelled")
		}
	case "d", "delete", "backspace":
		m = m.delete()
	case "X":
		m = m.clear()
	}
	return m, nil
}

func (m EditorModel) current() (editor.NodeView, bool) {
	if m.Cursor < 0 || m.Cursor >= len(m.Funnel.Nodes) {
		return editor.NodeView{}, false
	}
	return m.Funnel.Nodes[m.Cursor], true
}

func (m EditorModel) drop(t funnel.NodeType) EditorModel {
	col := 0
	for i, tt := range funnel.Types() {
		if tt == t {
			col = i
		}
	}
	row := 0
	for _, n := range m.Funnel.Nodes {
		if n.Type() == t {
			row++
		}
	}

	n, err := m.session.Drop(m.ctx, t, funnel.Position{X: float64(col * dropColumnWidth), Y: float64(row * dropRowHeight)})
	if err != nil {
		return m.fail(err)
	}
	m = m.refresh()
	m.Cursor = len(m.Funnel.Nodes) - 1
	return m.ok("Added " + n.Label())
}

func (m EditorModel) connect() EditorModel {
	cur, ok := m.current()
	if !ok {
		return m
	}
	if m.Mark == "" {
		m.Mark = cur.ID
		return m.ok(fmt.Sprintf("Connecting from %s: move to the target and press c", cur.Label()))
	}

	src, _ := m.Funnel.Node(m.Mark)
	m.Mark = ""
	if _, err := m.session.Connect(m.ctx, src.ID, cur.ID); err != nil {
		return m.fail(err)
	}
	m = m.refresh()
	return m.ok(fmt.Sprintf("Connected %s %s %s", src.Label(), iconArrow, cur.Label()))
}

func (m EditorModel) delete() EditorModel {
	cur, ok := m.current()
	if !ok {
		return m
	}
	_, edges, err := m.session.Delete(m.ctx, cur.ID)
	if err != nil {
		return m.fail(err)
	}
	if m.Mark == cur.ID {
		m.Mark = ""
	}
	m = m.refresh()
	if m.Cursor >= len(m.Funnel.Nodes) && m.Cursor > 0 {
		m.Cursor = len(m.Funnel.Nodes) - 1
	}
	return m.ok(fmt.Sprintf("Deleted %s and %d connections", cur.Label(), edges))
}

func (m EditorModel) clear() EditorModel {
	if err := m.session.Clear(m.ctx); err != nil {
		return m.fail(err)
	}
	m.Mark = ""
	m.Cursor = 0
	m = m.refresh()
	return m.ok("Cleared the funnel")
}

func (m EditorModel) refresh() EditorModel {
	m.Funnel = m.session.View()
	return m
}

func (m EditorModel) ok(msg string) EditorModel {
	m.Status, m.StatusErr = msg, false
	return m
}

// fail reports err and reloads the funnel so the screen shows what the
// session holds after the failed step.
func (m EditorModel) fail(err error) EditorModel {
	m = m.refresh()
	if m.Cursor >= len(m.Funnel.Nodes) {
		m.Cursor = max(len(m.Funnel.Nodes)-1, 0)
	}
	m.Status, m.StatusErr = errors.UserMessage(err), true
	return m
}

func (m EditorModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Funnel Editor") + " " + StyleDim.Render(m.session.Workspace()))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("1-5 add  ↑/↓ move  c connect  d delete  X clear  q quit"))
	b.WriteString("\n")
	b.WriteString(m.palette())
	b.WriteString("\n\n")

	if !m.Funnel.Empty {
		b.WriteString(nodeTable(m.Funnel, m.Cursor))
		b.WriteString("\n")
		for _, line := range edgeLines(m.Funnel) {
			b.WriteString("  " + line + "\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(issuePanel(m.Funnel.Report(), m.maxIssues))
	b.WriteString("\n\n")

	if m.Mark != "" {
		if src, ok := m.Funnel.Node(m.Mark); ok {
			b.WriteString(markStyle.Render("● "+src.Label()+" "+iconArrow+" ?") + "  ")
		}
	}
	switch {
	case m.Status == "":
	case m.StatusErr:
		b.WriteString(statusErrStyle.Render(iconError + " " + m.Status))
	default:
		b.WriteString(statusOKStyle.Render(m.Status))
	}
	b.WriteString("\n")

	return b.String()
}

func (m EditorModel) palette() string {
	parts := make([]string, 0, len(funnel.Types()))
	for i, t := range funnel.Types() {
		parts = append(parts, paletteStyle.Render(fmt.Sprintf("%d ", i+1))+typeBadge(t))
	}
	return strings.Join(parts, "   ")
}
