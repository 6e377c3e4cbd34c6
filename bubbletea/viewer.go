// Package bubbletea provides a terminal UI viewer for structural reports
// using the Bubble Tea framework.
package bubbletea

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/cppguts"
)

// language is the tokenizer language for statement text.
const language = "C++"

// row is one record of the report outline.
type row struct {
	result cppguts.MatchResult // Members stripped
	depth  int
}

// hasDetail reports whether the record has lines that can be folded.
func (r row) hasDetail() bool {
	return len(r.result.Edits) > 0 || len(r.result.Fields) > 0
}

// Model is the Bubble Tea model for browsing a report.
type Model struct {
	report *cppguts.Report
	rows   []row

	// Navigation state
	visible       []int        // indices into rows, after filtering
	cursor        int          // index into visible
	folded        map[int]bool // row index -> edits hidden
	hideUnchanged bool
	rowLines      []int // first content line of each visible row

	// Collaborators
	tokenizer  cppguts.Tokenizer
	wordDiffer cppguts.WordDiffer
	clipboard  cppguts.Clipboard

	// UI state
	viewport   viewport.Model
	help       help.Model
	keymap     KeyMap
	styles     cppguts.Styles
	palette    cppguts.Palette
	renderer   *lipgloss.Renderer
	width      int
	ready      bool
	pendingKey string
	message    string
}

// ModelOption configures a Model.
type ModelOption func(*modelConfig)

type modelConfig struct {
	renderer      *lipgloss.Renderer
	theme         cppguts.Theme
	tokenizer     cppguts.Tokenizer
	wordDiffer    cppguts.WordDiffer
	clipboard     cppguts.Clipboard
	hideUnchanged bool
}

// WithRenderer sets a custom lipgloss renderer for the model.
func WithRenderer(r *lipgloss.Renderer) ModelOption {
	return func(cfg *modelConfig) {
		cfg.renderer = r
	}
}

// WithTheme sets the theme for the model.
func WithTheme(t cppguts.Theme) ModelOption {
	return func(cfg *modelConfig) {
		cfg.theme = t
	}
}

// WithTokenizer sets the tokenizer used to highlight statement text.
func WithTokenizer(t cppguts.Tokenizer) ModelOption {
	return func(cfg *modelConfig) {
		cfg.tokenizer = t
	}
}

// WithWordDiffer highlights the changed words of substituted statements.
func WithWordDiffer(d cppguts.WordDiffer) ModelOption {
	return func(cfg *modelConfig) {
		cfg.wordDiffer = d
	}
}

// WithClipboard enables copying the selected record.
func WithClipboard(c cppguts.Clipboard) ModelOption {
	return func(cfg *modelConfig) {
		cfg.clipboard = c
	}
}

// WithHideUnchanged starts the viewer with unchanged records hidden.
func WithHideUnchanged() ModelOption {
	return func(cfg *modelConfig) {
		cfg.hideUnchanged = true
	}
}

// NewModel creates a new Model for the given report.
func NewModel(report *cppguts.Report, opts ...ModelOption) Model {
	cfg := &modelConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	var styles cppguts.Styles
	var palette cppguts.Palette
	if cfg.theme != nil {
		styles = cfg.theme.Styles()
		palette = cfg.theme.Palette()
	}

	if report == nil {
		report = &cppguts.Report{}
	}
	var rows []row
	var walk func(results []cppguts.MatchResult, depth int)
	walk = func(results []cppguts.MatchResult, depth int) {
		for _, r := range results {
			members := r.Members
			r.Members = nil
			rows = append(rows, row{result: r, depth: depth})
			walk(members, depth+1)
		}
	}
	walk(report.Results, 0)

	m := Model{
		report:        report,
		rows:          rows,
		folded:        make(map[int]bool),
		hideUnchanged: cfg.hideUnchanged,
		tokenizer:     cfg.tokenizer,
		wordDiffer:    cfg.wordDiffer,
		clipboard:     cfg.clipboard,
		help:          help.New(),
		keymap:        DefaultKeyMap(),
		styles:        styles,
		palette:       palette,
		renderer:      cfg.renderer,
	}
	m.filter()
	return m
}

// Selected returns the record under the cursor.
func (m Model) Selected() (cppguts.MatchResult, bool) {
	if len(m.visible) == 0 {
		return cppguts.MatchResult{}, false
	}
	return m.rows[m.visible[m.cursor]].result, true
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		m.message = ""

		// Handle multi-key sequences (gg for go to top)
		if m.pendingKey == "g" && key.Matches(msg, m.keymap.GotoTop) {
			m.pendingKey = ""
			m.moveTo(0)
			return m, nil
		}
		if key.Matches(msg, m.keymap.GotoTop) {
			m.pendingKey = "g"
			return m, nil
		}
		m.pendingKey = ""

		switch {
		case key.Matches(msg, m.keymap.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keymap.Up):
			m.moveTo(m.cursor - 1)
		case key.Matches(msg, m.keymap.Down):
			m.moveTo(m.cursor + 1)
		case key.Matches(msg, m.keymap.HalfPageUp):
			m.moveTo(m.cursor - max(m.viewport.Height/2, 1))
		case key.Matches(msg, m.keymap.HalfPageDown):
			m.moveTo(m.cursor + max(m.viewport.Height/2, 1))
		case key.Matches(msg, m.keymap.GotoBottom):
			m.moveTo(len(m.visible) - 1)
		case key.Matches(msg, m.keymap.NextChange):
			m.jumpChange(1)
		case key.Matches(msg, m.keymap.PrevChange):
			m.jumpChange(-1)
		case key.Matches(msg, m.keymap.Toggle):
			m.toggleFold()
		case key.Matches(msg, m.keymap.ToggleUnchanged):
			m.toggleUnchanged()
		case key.Matches(msg, m.keymap.Copy):
			m.copySelected()
		default:
			return m, nil
		}
		m.refresh()
		return m, nil

	case tea.WindowSizeMsg:
		statusBarHeight := 2
		m.width = msg.Width
		m.help.Width = msg.Width
		if !m.ready {
			m.viewport = viewport.New(msg.Width, max(msg.Height-statusBarHeight, 1))
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = max(msg.Height-statusBarHeight, 1)
		}
		m.refresh()
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.viewport.View(), m.statusBarView(), m.help.View(m.keymap))
}

// filter rebuilds the visible rows, keeping the cursor on the same record
// when it is still visible.
func (m *Model) filter() {
	selected := -1
	if len(m.visible) > 0 {
		selected = m.visible[m.cursor]
	}

	m.visible = make([]int, 0, len(m.rows))
	m.cursor = 0
	for i, r := range m.rows {
		if m.hideUnchanged && r.result.Status == cppguts.Unchanged {
			continue
		}
		if i <= selected {
			m.cursor = len(m.visible)
		}
		m.visible = append(m.visible, i)
	}
	if m.cursor >= len(m.visible) {
		m.cursor = max(len(m.visible)-1, 0)
	}
}

func (m *Model) moveTo(i int) {
	if len(m.visible) == 0 {
		return
	}
	m.cursor = min(max(i, 0), len(m.visible)-1)
}

// jumpChange moves the cursor to the next record in direction dir whose
// status is not unchanged.
func (m *Model) jumpChange(dir int) {
	for i := m.cursor + dir; i >= 0 && i < len(m.visible); i += dir {
		if m.rows[m.visible[i]].result.Status != cppguts.Unchanged {
			m.cursor = i
			return
		}
	}
}

func (m *Model) toggleFold() {
	if len(m.visible) == 0 {
		return
	}
	idx := m.visible[m.cursor]
	if m.rows[idx].hasDetail() {
		m.folded[idx] = !m.folded[idx]
	}
}

func (m *Model) toggleUnchanged() {
	m.hideUnchanged = !m.hideUnchanged
	m.filter()
}

func (m *Model) copySelected() {
	if m.clipboard == nil {
		m.message = "clipboard unavailable"
		return
	}
	res, ok := m.Selected()
	if !ok {
		return
	}
	text := (&cppguts.DefaultFormatter{}).Format(&cppguts.Report{
		OldName: m.report.OldName,
		NewName: m.report.NewName,
		Results: []cppguts.MatchResult{res},
	})
	if err := m.clipboard.Copy(text); err != nil {
		m.message = "copy failed: " + err.Error()
		return
	}
	m.message = "copied " + res.Key
}

// refresh re-renders the content and scrolls the cursor row into view.
func (m *Model) refresh() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderContent())
	if len(m.rowLines) == 0 {
		return
	}
	line := m.rowLines[m.cursor]
	switch {
	case line < m.viewport.YOffset:
		m.viewport.SetYOffset(line)
	case line >= m.viewport.YOffset+m.viewport.Height:
		m.viewport.SetYOffset(line - m.viewport.Height + 1)
	}
}

func (m Model) newStyle() lipgloss.Style {
	if m.renderer != nil {
		return m.renderer.NewStyle()
	}
	return lipgloss.NewStyle()
}

func (m Model) pairStyle(cp cppguts.ColorPair) lipgloss.Style {
	s := m.newStyle()
	if cp.Foreground != "" {
		s = s.Foreground(lipgloss.Color(cp.Foreground))
	}
	if cp.Background != "" {
		s = s.Background(lipgloss.Color(cp.Background))
	}
	return s
}

// renderContent renders the outline and records where each visible row
// starts.
func (m *Model) renderContent() string {
	var sb strings.Builder
	m.rowLines = make([]int, 0, len(m.visible))
	line := 0

	if len(m.visible) == 0 {
		sb.WriteString("(no records)\n")
		return sb.String()
	}

	for vi, idx := range m.visible {
		r := m.rows[idx]
		res := r.result
		indent := strings.Repeat("  ", r.depth)
		m.rowLines = append(m.rowLines, line)

		fold := " "
		if r.hasDetail() {
			fold = "▾"
			if m.folded[idx] {
				fold = "▸"
			}
		}
		text := fmt.Sprintf("%s%s %s %s %s%s", indent, fold, cppguts.StatusMarker(res.Status), res.Kind, res.Key, res.Location().Lines())
		if res.SignatureChanged {
			text += " (signature changed)"
		}
		style := m.pairStyle(m.styles.Status(res.Status))
		if vi == m.cursor {
			style = m.pairStyle(m.styles.Selected).Bold(true)
		}
		sb.WriteString(style.Render(text))
		sb.WriteByte('\n')
		line++

		if m.folded[idx] {
			continue
		}
		pad := indent + "      "
		for _, fc := range res.Fields {
			sb.WriteString(m.pairStyle(m.styles.Status(fc.Status)).Render(pad + fieldLine(fc)))
			sb.WriteByte('\n')
			line++
		}
		for _, e := range res.Edits {
			var oldSegs, newSegs []cppguts.Segment
			if e.Kind == cppguts.Substitute && m.wordDiffer != nil {
				oldSegs, newSegs = m.wordDiffer.Diff(e.OldText, e.NewText)
			}
			if e.Kind != cppguts.Insert {
				sb.WriteString(m.renderStatement(pad, "-", e.OldIndex, e.OldText, oldSegs, m.styles.Deleted))
				line++
			}
			if e.Kind != cppguts.Delete {
				sb.WriteString(m.renderStatement(pad, "+", e.NewIndex, e.NewText, newSegs, m.styles.Inserted))
				line++
			}
		}
	}
	return sb.String()
}

func fieldLine(fc cppguts.FieldChange) string {
	switch fc.Status {
	case cppguts.Added:
		return fmt.Sprintf("%s field %s: %s", cppguts.StatusMarker(fc.Status), fc.Name, fc.NewType)
	case cppguts.Removed:
		return fmt.Sprintf("%s field %s: %s", cppguts.StatusMarker(fc.Status), fc.Name, fc.OldType)
	default:
		return fmt.Sprintf("%s field %s: %s -> %s", cppguts.StatusMarker(fc.Status), fc.Name, fc.OldType, fc.NewType)
	}
}

// renderStatement renders one side of a statement edit on the edit
// background. Changed word segments are emphasized when given; otherwise
// the text is syntax highlighted when a tokenizer is set.
func (m Model) renderStatement(pad, marker string, index int, text string, segs []cppguts.Segment, colors cppguts.ColorPair) string {
	base := m.pairStyle(colors)
	prefix := base.Render(fmt.Sprintf("%s [%d] ", marker, index))

	var body string
	var tokens []cppguts.Token
	if m.tokenizer != nil && segs == nil {
		tokens = m.tokenizer.Tokenize(language, text)
	}
	switch {
	case segs != nil:
		var sb strings.Builder
		for _, seg := range segs {
			s := base
			if seg.Changed {
				s = s.Bold(true).Underline(true)
			}
			sb.WriteString(s.Render(seg.Text))
		}
		body = sb.String()
	case tokens == nil:
		body = base.Render(text)
	default:
		var sb strings.Builder
		for _, tok := range tokens {
			t := strings.TrimRight(tok.Text, "\n")
			if t == "" {
				continue
			}
			s := base
			if tok.Style.Foreground != "" {
				s = s.Foreground(lipgloss.Color(tok.Style.Foreground))
			}
			sb.WriteString(s.Bold(tok.Style.Bold).Render(t))
		}
		body = sb.String()
	}
	return pad + prefix + body + "\n"
}

// statusBarView renders the status bar with position and summary.
func (m Model) statusBarView() string {
	barStyle := m.newStyle().
		Background(lipgloss.Color(m.palette.UIBackground)).
		Foreground(lipgloss.Color(m.palette.Foreground))
	sepStyle := m.newStyle().
		Background(lipgloss.Color(m.palette.UIBackground)).
		Foreground(lipgloss.Color(m.palette.UIForeground))

	s := m.report.Summary()
	pos := fmt.Sprintf("%d/%d", min(m.cursor+1, len(m.visible)), len(m.visible))
	summary := fmt.Sprintf("=%d ~%d +%d -%d", s.Unchanged, s.Modified, s.Added, s.Removed)

	sep := sepStyle.Render(" │ ")
	content := barStyle.Render(m.report.OldName+" → "+m.report.NewName) + sep +
		barStyle.Render(pos) + sep +
		barStyle.Render(summary)
	if m.hideUnchanged {
		content += sep + barStyle.Render("unchanged hidden")
	}
	if m.message != "" {
		content += sep + barStyle.Render(m.message)
	}

	contentWidth := lipgloss.Width(content)
	if m.width > contentWidth {
		content += barStyle.Render(strings.Repeat(" ", m.width-contentWidth))
	}
	return content
}

// Compile-time interface verification.
var _ cppguts.Viewer = (*Viewer)(nil)

// Viewer implements cppguts.Viewer using a Bubble Tea TUI.
type Viewer struct {
	modelOpts   []ModelOption
	programOpts []tea.ProgramOption
}

// ViewerOption configures a Viewer.
type ViewerOption func(*Viewer)

// WithModelOptions sets the options used to build each Model.
func WithModelOptions(opts ...ModelOption) ViewerOption {
	return func(v *Viewer) {
		v.modelOpts = append(v.modelOpts, opts...)
	}
}

// WithProgramOptions adds Bubble Tea program options, such as custom
// input and output.
func WithProgramOptions(opts ...tea.ProgramOption) ViewerOption {
	return func(v *Viewer) {
		v.programOpts = append(v.programOpts, opts...)
	}
}

// NewViewer creates a new Viewer.
func NewViewer(opts ...ViewerOption) *Viewer {
	v := &Viewer{}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// View displays the report and blocks until the user exits or ctx is
// cancelled.
func (v *Viewer) View(ctx context.Context, report *cppguts.Report) error {
	m := NewModel(report, v.modelOpts...)
	opts := append([]tea.ProgramOption{
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	}, v.programOpts...)
	_, err := tea.NewProgram(m, opts...).Run()
	return err
}
