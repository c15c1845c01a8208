package cli

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/term"
)

// Theme defines the color scheme for the live frame.
type Theme struct {
	Primary lipgloss.Color // borders, title, labels
	Dim     lipgloss.Color // status and help text
	Alert   lipgloss.Color // error status
}

// DefaultTheme is the default bright green theme.
var DefaultTheme = Theme{
	Primary: lipgloss.Color("#00ff9f"),
	Dim:     lipgloss.Color("#6e7681"),
	Alert:   lipgloss.Color("#ff5f87"),
}

// Styles holds all styles derived from a theme.
type Styles struct {
	Title  lipgloss.Style
	Label  lipgloss.Style
	Border lipgloss.Style
	Help   lipgloss.Style
	Alert  lipgloss.Style
}

// NewStyles creates styles from a theme.
func NewStyles(t Theme) Styles {
	return Styles{
		Title:  lipgloss.NewStyle().Bold(true).Foreground(t.Primary).Padding(0, 1),
		Label:  lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
		Border: lipgloss.NewStyle().Foreground(t.Primary),
		Help:   lipgloss.NewStyle().Foreground(t.Dim),
		Alert:  lipgloss.NewStyle().Bold(true).Foreground(t.Alert),
	}
}

// Section is a labeled block of lines. Fixed sections get exactly
// len(Content()) rows; the remaining height is shared by the others, each
// showing its most recent lines.
type Section struct {
	Label   string
	Content func() []string
	Fixed   bool
}

// Frame renders a bordered screen with a title, sections and help text.
type Frame struct {
	Styles   Styles
	Title    string
	Status   string
	Alert    bool // render Status with the alert style
	Sections []Section
	Help     string
}

// Render renders the frame to a string exactly height lines tall when the
// sections fit.
func (f Frame) Render(width, height int) string {
	if width < 8 || height < 4 {
		return "Loading..."
	}

	bc := f.Styles.Border
	maxContentWidth := width - 4

	var lines []string
	lines = append(lines, bc.Render("╭"+strings.Repeat("─", width-2)+"╮"))

	title := f.Styles.Title.Render(f.Title)
	statusStyle := f.Styles.Help
	if f.Alert {
		statusStyle = f.Styles.Alert
	}
	status := statusStyle.Render("[" + f.Status + "]")
	padding := max(0, width-5-lipgloss.Width(title)-lipgloss.Width(status))
	lines = append(lines, bc.Render("│")+" "+title+" "+status+
		strings.Repeat(" ", padding)+" "+bc.Render("│"))

	contents := make([][]string, len(f.Sections))
	fixedRows, flexible := 0, 0
	for i, sec := range f.Sections {
		contents[i] = sec.Content()
		if sec.Fixed {
			fixedRows += len(contents[i])
		} else {
			flexible++
		}
	}
	// top, title, one label row per section, bottom, help
	available := height - 4 - len(f.Sections) - fixedRows
	flexHeight := 0
	if flexible > 0 {
		flexHeight = max(available/flexible, 1)
	}

	for i, sec := range f.Sections {
		h := flexHeight
		if sec.Fixed {
			h = len(contents[i])
		}
		lines = append(lines, f.renderSection(bc, sec.Label, contents[i], h, width, maxContentWidth)...)
	}

	lines = append(lines, bc.Render("╰"+strings.Repeat("─", width-2)+"╯"))
	lines = append(lines, f.Styles.Help.Render(f.Help))
	return strings.Join(lines, "\n")
}

func (f Frame) renderSection(bc lipgloss.Style, label string, content []string, height, width, maxContentWidth int) []string {
	var lines []string

	// ├─Label────────┤
	labelText := f.Styles.Label.Render(label)
	padding := max(0, width-3-lipgloss.Width(labelText))
	lines = append(lines, bc.Render("├")+bc.Render("─")+labelText+
		bc.Render(strings.Repeat("─", padding))+bc.Render("┤"))

	start := max(0, len(content)-height)
	for i := range height {
		text := ""
		if idx := start + i; idx < len(content) {
			text = content[idx]
		}
		if maxContentWidth > 1 && lipgloss.Width(text) > maxContentWidth {
			text = truncateWidth(text, maxContentWidth-1) + "…"
		}
		lines = append(lines, bc.Render("│")+" "+text+
			strings.Repeat(" ", max(0, maxContentWidth-lipgloss.Width(text)))+" "+bc.Render("│"))
	}
	return lines
}

// truncateWidth cuts s to at most width display cells.
func truncateWidth(s string, width int) string {
	if width <= 0 {
		return ""
	}
	runes := []rune(s)
	current := 0
	for i, r := range runes {
		w := lipgloss.Width(string(r))
		if current+w > width {
			return string(runes[:i])
		}
		current += w
	}
	return s
}

// Wrap breaks s into lines of at most width cells on word boundaries.
func Wrap(s string, width int) []string {
	if width <= 0 {
		return []string{s}
	}
	var out []string
	var line strings.Builder
	for _, word := range strings.Fields(s) {
		switch {
		case line.Len() == 0:
		case lipgloss.Width(line.String())+1+lipgloss.Width(word) > width:
			out = append(out, line.String())
			line.Reset()
		default:
			line.WriteByte(' ')
		}
		line.WriteString(word)
	}
	if line.Len() > 0 || len(out) == 0 {
		out = append(out, line.String())
	}
	return out
}

// TerminalSize returns the size of the terminal on stdout, falling back to
// 80x24 when stdout is not a terminal.
func TerminalSize() (width, height int) {
	fd := os.Stdout.Fd()
	if term.IsTerminal(fd) {
		if w, h, err := term.GetSize(fd); err == nil && w > 0 && h > 0 {
			return w, h
		}
	}
	return 80, 24
}
