package lipgloss

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/cppguts"
)

// Compile-time interface verification.
var _ cppguts.ReportFormatter = (*Formatter)(nil)

// Style converts a color pair into a lipgloss style bound to renderer.
func Style(r *lipgloss.Renderer, cp cppguts.ColorPair) lipgloss.Style {
	s := r.NewStyle()
	if cp.Foreground != "" {
		s = s.Foreground(lipgloss.Color(cp.Foreground))
	}
	if cp.Background != "" {
		s = s.Background(lipgloss.Color(cp.Background))
	}
	return s
}

// Formatter renders reports like cppguts.DefaultFormatter, colouring each
// line by the status or edit it describes.
type Formatter struct {
	Text     cppguts.DefaultFormatter
	theme    cppguts.Theme
	renderer *lipgloss.Renderer
}

// NewFormatter creates a Formatter. The renderer decides the color
// profile, so output to a pipe stays plain.
func NewFormatter(theme cppguts.Theme, renderer *lipgloss.Renderer) *Formatter {
	return &Formatter{theme: theme, renderer: renderer}
}

// Format renders the report with colors.
func (f *Formatter) Format(report *cppguts.Report) string {
	styles := f.theme.Styles()
	lines := strings.Split(strings.TrimSuffix(f.Text.Format(report), "\n"), "\n")

	var sb strings.Builder
	for _, line := range lines {
		sb.WriteString(Style(f.renderer, lineColors(styles, line)).Render(line))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// lineColors picks the colors for one line of DefaultFormatter output.
func lineColors(styles cppguts.Styles, line string) cppguts.ColorPair {
	if strings.HasPrefix(line, "--- ") || strings.HasPrefix(line, "+++ ") {
		return styles.Header
	}
	body := strings.TrimLeft(line, " ")
	if len(body) < 2 {
		return cppguts.ColorPair{}
	}
	edit := strings.HasPrefix(body[1:], " [")
	switch body[0] {
	case '=':
		return styles.Unchanged
	case '~':
		return styles.Modified
	case '+':
		if edit {
			return styles.Inserted
		}
		return styles.Added
	case '-':
		if edit {
			return styles.Deleted
		}
		return styles.Removed
	default:
		return cppguts.ColorPair{}
	}
}
