package cli

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Theme defines the colors used for rendered answers.
type Theme struct {
	Primary lipgloss.Color
	Dim     lipgloss.Color
	Error   lipgloss.Color
}

// DefaultTheme is the default bright green theme.
var DefaultTheme = Theme{
	Primary: lipgloss.Color("#00ff9f"),
	Dim:     lipgloss.Color("#6e7681"),
	Error:   lipgloss.Color("#ff5f5f"),
}

// Styles holds all styles derived from a theme.
type Styles struct {
	Title   lipgloss.Style
	Heading lipgloss.Style
	Box     lipgloss.Style
	Code    lipgloss.Style
	Help    lipgloss.Style
	Error   lipgloss.Style
}

func NewStyles(t Theme) Styles {
	return Styles{
		Title:   lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
		Heading: lipgloss.NewStyle().Bold(true).Underline(true).Foreground(t.Primary),
		Box:     lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(t.Primary).Padding(0, 1),
		Code:    lipgloss.NewStyle().Foreground(t.Dim),
		Help:    lipgloss.NewStyle().Foreground(t.Dim),
		Error:   lipgloss.NewStyle().Bold(true).Foreground(t.Error),
	}
}

// Renderer styles answers for a terminal of the given width. A zero Width
// means 80 columns.
type Renderer struct {
	Styles Styles
	Width  int
}

func NewRenderer(width int) Renderer {
	return Renderer{Styles: NewStyles(DefaultTheme), Width: width}
}

func (r Renderer) width() int {
	if r.Width <= 0 {
		return 80
	}
	return r.Width
}

// Solution renders a solved screenshot: the summary boxed under a title,
// then the answer with its section headings highlighted.
func (r Renderer) Solution(summary, answer string) string {
	var parts []string
	if summary = strings.TrimSpace(summary); summary != "" {
		body := r.Styles.Title.Render("Summary") + "\n" + summary
		parts = append(parts, r.Styles.Box.Width(r.width()-2).Render(body))
	}
	if answer = strings.TrimSpace(answer); answer != "" {
		parts = append(parts, r.Markdown(answer))
	}
	return strings.Join(parts, "\n\n")
}

// Markdown highlights "#" headings and dims fenced code. Everything else is
// passed through.
func (r Renderer) Markdown(text string) string {
	lines := strings.Split(text, "\n")
	inFence := false
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~"):
			inFence = !inFence
			lines[i] = r.Styles.Code.Render(line)
		case inFence:
			lines[i] = r.Styles.Code.Render(line)
		case strings.HasPrefix(trimmed, "#"):
			lines[i] = r.Styles.Heading.Render(strings.TrimSpace(strings.TrimLeft(trimmed, "#")))
		}
	}
	return strings.Join(lines, "\n")
}

// Footer is the dim status line printed after a streamed answer.
func (r Renderer) Footer(label string, elapsed time.Duration) string {
	return r.Styles.Help.Render("[" + label + " in " + FormatDuration(elapsed) + "]")
}

func (r Renderer) Error(err error) string {
	return r.Styles.Error.Render("error: ") + err.Error()
}
