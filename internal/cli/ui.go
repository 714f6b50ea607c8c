package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/funnelkit/pkg/editor"
	"github.com/matzehuels/funnelkit/pkg/funnel"
	"github.com/matzehuels/funnelkit/pkg/validate"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorBlue   = lipgloss.Color("75")  // Light blue - links
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Public Styles
// =============================================================================

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleHighlight for emphasized values.
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleLink for URLs.
	StyleLink = lipgloss.NewStyle().Foreground(colorBlue).Underline(true)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleNumber for numeric values.
	StyleNumber = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleSuccess for success messages.
	StyleSuccess = lipgloss.NewStyle().Foreground(colorGreen)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)
)

// =============================================================================
// Internal Styles
// =============================================================================

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleClean  = lipgloss.NewStyle().Foreground(colorGreen)
	styleIssues = lipgloss.NewStyle().Foreground(colorYellow)

	styleCommand = lipgloss.NewStyle().Foreground(colorBlue)
	styleHeader  = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
)

// =============================================================================
// Icons
// =============================================================================

// headerRow is the row index lipgloss/table passes for the header.
const headerRow = -1

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
	iconNode    = "■"
)

// =============================================================================
// Status Output
// =============================================================================

// printSuccess prints a success message.
func printSuccess(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconSuccess.Render(iconSuccess) + " " + msg)
}

// printError prints an error message.
func printError(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconError.Render(iconError) + " " + msg)
}

// printWarning prints a warning message.
func printWarning(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconWarning.Render(iconWarning) + " " + StyleWarning.Render(msg))
}

// printInfo prints an info/status message.
func printInfo(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconInfo.Render(iconInfo) + " " + msg)
}

// printDetail prints a detail line (indented).
func printDetail(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println("  " + StyleDim.Render(msg))
}

// =============================================================================
// File Output
// =============================================================================

// printFile prints a file output line.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path))
}

// =============================================================================
// Key-Value Output
// =============================================================================

// printKeyValue prints a labeled value.
func printKeyValue(key, value string) {
	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(12)
	fmt.Println(keyStyle.Render(key) + " " + StyleValue.Render(value))
}

// =============================================================================
// Stats Display
// =============================================================================

// printStats prints funnel statistics on a single line.
func printStats(nodeCount, edgeCount int, status validate.Status) {
	parts := []string{
		fmt.Sprintf("%d nodes", nodeCount),
		fmt.Sprintf("%d edges", edgeCount),
	}

	st := statusStyle(status)
	line := "  "
	for i, part := range parts {
		if i > 0 {
			line += StyleDim.Render(" · ")
		}
		line += StyleDim.Render(part)
	}
	line += StyleDim.Render(" · ") + st.Render(string(status))
	fmt.Println(line)
}

func statusStyle(status validate.Status) lipgloss.Style {
	switch status {
	case validate.StatusClean:
		return styleClean
	case validate.StatusIssues:
		return styleIssues
	default:
		return StyleDim
	}
}

// =============================================================================
// Funnel Display
// =============================================================================

// typeStyle colours text with a node type's palette colour.
func typeStyle(t funnel.NodeType) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(funnel.ColorFor(t)))
}

// typeBadge renders a coloured square followed by the type's template label.
func typeBadge(t funnel.NodeType) string {
	tpl, ok := funnel.TemplateFor(t)
	name := string(t)
	if ok {
		name = tpl.Label
	}
	return typeStyle(t).Render(iconNode) + " " + name
}

// issueLine renders one issue with its severity icon.
func issueLine(is validate.Issue) string {
	if is.Severity == validate.SeverityError {
		return styleIconError.Render(iconError) + " " + is.Message
	}
	return styleIconWarning.Render(iconWarning) + " " + StyleWarning.Render(is.Message)
}

// issuePanel renders the first max issues (all when max is 0) followed by a
// "… and N more" line for the rest.
func issuePanel(r validate.Report, max int) string {
	switch r.Status {
	case validate.StatusEmpty:
		return StyleDim.Render("Drop a node to start building your funnel")
	case validate.StatusClean:
		return styleIconSuccess.Render(iconSuccess) + " Funnel looks good"
	}

	shown, hidden := r.Head(max)
	lines := make([]string, 0, len(shown)+2)
	lines = append(lines, StyleTitle.Render("Issues"))
	for _, is := range shown {
		lines = append(lines, issueLine(is))
	}
	if hidden > 0 {
		lines = append(lines, StyleDim.Render(fmt.Sprintf("… and %d more", hidden)))
	}
	return strings.Join(lines, "\n")
}

// printIssues prints the issue panel.
func printIssues(r validate.Report, max int) {
	fmt.Println(issuePanel(r, max))
}

// nodeTable renders the nodes of a view with their connection counts.
// The row at cursor (-1 for none) is highlighted.
func nodeTable(v editor.View, cursor int) string {
	in := map[string]int{}
	out := map[string]int{}
	for _, e := range v.Edges {
		out[e.Source]++
		in[e.Target]++
	}

	rows := make([][]string, 0, len(v.Nodes))
	for _, n := range v.Nodes {
		rows = append(rows, []string{
			typeBadge(n.Type()),
			n.Label(),
			n.ID,
			fmt.Sprintf("%d", in[n.ID]),
			fmt.Sprintf("%d", out[n.ID]),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Type", "Label", "ID", "In", "Out").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == headerRow:
				return styleHeader
			case row == cursor:
				return lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
			case col == 2:
				return StyleDim
			default:
				return lipgloss.NewStyle()
			}
		})
	return t.Render()
}

// edgeLines renders edges as "source → target" using node labels.
func edgeLines(v editor.View) []string {
	labels := make(map[string]string, len(v.Nodes))
	for _, n := range v.Nodes {
		labels[n.ID] = n.Label()
	}
	lines := make([]string, 0, len(v.Edges))
	for _, e := range v.Edges {
		arrow := lipgloss.NewStyle().Foreground(lipgloss.Color(e.Color)).Render(iconArrow)
		lines = append(lines, fmt.Sprintf("%s %s %s  %s", labels[e.Source], arrow, labels[e.Target], StyleDim.Render(e.ID)))
	}
	return lines
}

// =============================================================================
// Commands & Next Steps
// =============================================================================

// printNextStep prints a suggested next command.
func printNextStep(description, cmd string) {
	fmt.Println(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

// =============================================================================
// Utilities
// =============================================================================

// printInline prints a dim message without a trailing newline.
func printInline(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Print(StyleDim.Render(msg))
}

// printNewline prints an empty line.
func printNewline() {
	fmt.Println()
}
