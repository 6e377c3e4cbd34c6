package bubbletea_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/exp/teatest"
	"github.com/fwojciec/cppguts"
	"github.com/fwojciec/cppguts/bubbletea"
	"github.com/fwojciec/cppguts/mock"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// asciiRenderer creates a lipgloss renderer that emits no escape codes.
func asciiRenderer() *lipgloss.Renderer {
	r := lipgloss.NewRenderer(io.Discard)
	r.SetColorProfile(termenv.Ascii)
	return r
}

// testReport flattens to Src, Src::add(int), Src::get() const, foo(int&),
// bar(), baz().
func testReport() *cppguts.Report {
	return &cppguts.Report{
		OldName: "old.h",
		NewName: "new.h",
		Results: []cppguts.MatchResult{
			{
				Key: "Src", Kind: cppguts.KindClass, Status: cppguts.Modified,
				NewSpan: cppguts.Span{End: 1, StartLine: 1, EndLine: 12},
				Members: []cppguts.MatchResult{
					{
						Key: "Src::add(int)", Kind: cppguts.KindMethod, Status: cppguts.Modified,
						NewSpan: cppguts.Span{End: 1, StartLine: 3, EndLine: 5},
						Edits: []cppguts.StatementEdit{{
							Kind:    cppguts.Substitute,
							OldText: "p.add(v);",
							NewText: "p.add(v)+10;",
						}},
					},
					{Key: "Src::get() const", Kind: cppguts.KindMethod, Status: cppguts.Unchanged},
				},
			},
			{Key: "foo(int&)", Kind: cppguts.KindFunction, Status: cppguts.Unchanged},
			{Key: "bar()", Kind: cppguts.KindFunction, Status: cppguts.Removed},
			{Key: "baz()", Kind: cppguts.KindFunction, Status: cppguts.Added},
		},
	}
}

// update feeds msg to m and returns the resulting model.
func update(t *testing.T, m tea.Model, msg tea.Msg) bubbletea.Model {
	t.Helper()
	next, _ := m.Update(msg)
	model, ok := next.(bubbletea.Model)
	require.True(t, ok)
	return model
}

func keys(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// readyModel returns a model that has received its first window size.
func readyModel(t *testing.T, report *cppguts.Report, opts ...bubbletea.ModelOption) bubbletea.Model {
	t.Helper()
	opts = append([]bubbletea.ModelOption{bubbletea.WithRenderer(asciiRenderer())}, opts...)
	return update(t, bubbletea.NewModel(report, opts...), tea.WindowSizeMsg{Width: 80, Height: 24})
}

func selectedKey(t *testing.T, m bubbletea.Model) string {
	t.Helper()
	res, ok := m.Selected()
	require.True(t, ok)
	return res.Key
}

func TestModel_Init(t *testing.T) {
	t.Parallel()

	m := bubbletea.NewModel(testReport())

	assert.Nil(t, m.Init(), "Init should return nil command")
}

func TestModel_ViewBeforeReady(t *testing.T) {
	t.Parallel()

	m := bubbletea.NewModel(&cppguts.Report{})

	assert.Contains(t, m.View(), "Loading", "View should show loading state before WindowSizeMsg")
}

func TestModel_ViewAfterReady(t *testing.T) {
	t.Parallel()

	m := bubbletea.NewModel(testReport(), bubbletea.WithRenderer(asciiRenderer()))
	tm := teatest.NewTestModel(t, m,
		teatest.WithInitialTermSize(80, 24),
	)

	teatest.WaitFor(t, tm.Output(), func(out []byte) bool {
		return bytes.Contains(out, []byte("Src::add(int)"))
	})

	tm.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	tm.WaitFinished(t, teatest.WithFinalTimeout(0))
}

func TestModel_QuitOnQ(t *testing.T) {
	t.Parallel()

	m := bubbletea.NewModel(&cppguts.Report{})
	tm := teatest.NewTestModel(t, m,
		teatest.WithInitialTermSize(80, 24),
	)

	tm.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})

	tm.WaitFinished(t, teatest.WithFinalTimeout(0))
}

func TestModel_QuitOnCtrlC(t *testing.T) {
	t.Parallel()

	m := bubbletea.NewModel(&cppguts.Report{})
	tm := teatest.NewTestModel(t, m,
		teatest.WithInitialTermSize(80, 24),
	)

	tm.Send(tea.KeyMsg{Type: tea.KeyCtrlC})

	tm.WaitFinished(t, teatest.WithFinalTimeout(0))
}

func TestModel_RendersRecords(t *testing.T) {
	t.Parallel()

	m := readyModel(t, testReport())
	view := m.View()

	assert.Contains(t, view, "~ class Src @1-12")
	assert.Contains(t, view, "▾ ~ method Src::add(int) @3-5")
	assert.Contains(t, view, "- [0] p.add(v);")
	assert.Contains(t, view, "+ [0] p.add(v)+10;")
	assert.Contains(t, view, "- function bar()")
	assert.Contains(t, view, "+ function baz()")
	assert.Contains(t, view, "old.h → new.h")
	assert.Contains(t, view, "1/6")
	assert.Contains(t, view, "=2 ~1 +1 -1")
}

func TestModel_EmptyReport(t *testing.T) {
	t.Parallel()

	m := readyModel(t, &cppguts.Report{})

	_, ok := m.Selected()
	assert.False(t, ok)
	assert.Contains(t, m.View(), "(no records)")

	m = update(t, m, keys("j"))
	m = update(t, m, keys("n"))
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	_, ok = m.Selected()
	assert.False(t, ok)
}

func TestModel_Navigation(t *testing.T) {
	t.Parallel()

	m := readyModel(t, testReport())
	assert.Equal(t, "Src", selectedKey(t, m))

	m = update(t, m, keys("j"))
	assert.Equal(t, "Src::add(int)", selectedKey(t, m))

	m = update(t, m, keys("k"))
	m = update(t, m, keys("k"))
	assert.Equal(t, "Src", selectedKey(t, m), "cursor stops at the first record")

	m = update(t, m, keys("G"))
	assert.Equal(t, "baz()", selectedKey(t, m))
	assert.Contains(t, m.View(), "6/6")

	m = update(t, m, keys("j"))
	assert.Equal(t, "baz()", selectedKey(t, m), "cursor stops at the last record")

	m = update(t, m, keys("g"))
	m = update(t, m, keys("g"))
	assert.Equal(t, "Src", selectedKey(t, m))
}

func TestModel_PendingGClearedOnOtherKey(t *testing.T) {
	t.Parallel()

	m := readyModel(t, testReport())

	m = update(t, m, keys("G"))
	m = update(t, m, keys("g"))
	m = update(t, m, keys("k"))
	m = update(t, m, keys("g"))

	assert.Equal(t, "bar()", selectedKey(t, m), "a single g after another key must not jump")
}

func TestModel_ChangeNavigation(t *testing.T) {
	t.Parallel()

	m := readyModel(t, testReport())

	m = update(t, m, keys("n"))
	assert.Equal(t, "Src::add(int)", selectedKey(t, m))

	m = update(t, m, keys("n"))
	assert.Equal(t, "bar()", selectedKey(t, m), "unchanged records are skipped")

	m = update(t, m, keys("n"))
	m = update(t, m, keys("n"))
	assert.Equal(t, "baz()", selectedKey(t, m), "stays on the last change")

	m = update(t, m, keys("N"))
	m = update(t, m, keys("N"))
	assert.Equal(t, "Src::add(int)", selectedKey(t, m))
}

func TestModel_ToggleUnchanged(t *testing.T) {
	t.Parallel()

	m := readyModel(t, testReport())
	m = update(t, m, keys("j"))
	m = update(t, m, keys("j"))
	m = update(t, m, keys("j"))
	require.Equal(t, "foo(int&)", selectedKey(t, m))

	m = update(t, m, keys("u"))

	view := m.View()
	assert.NotContains(t, view, "foo(int&)")
	assert.NotContains(t, view, "Src::get() const")
	assert.Contains(t, view, "unchanged hidden")
	assert.Equal(t, "Src::add(int)", selectedKey(t, m), "cursor falls back to the previous visible record")
	assert.Contains(t, view, "2/4")

	m = update(t, m, keys("u"))
	assert.Contains(t, m.View(), "foo(int&)")
	assert.Equal(t, "Src::add(int)", selectedKey(t, m))
}

func TestModel_WithHideUnchanged(t *testing.T) {
	t.Parallel()

	m := readyModel(t, testReport(), bubbletea.WithHideUnchanged())

	assert.NotContains(t, m.View(), "foo(int&)")
}

func TestModel_ToggleFold(t *testing.T) {
	t.Parallel()

	m := readyModel(t, testReport())
	m = update(t, m, keys("j"))
	require.Contains(t, m.View(), "p.add(v)+10;")

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.NotContains(t, m.View(), "p.add(v)+10;")
	assert.Contains(t, m.View(), "▸")

	m = update(t, m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	assert.Contains(t, m.View(), "p.add(v)+10;")
}

func TestModel_Copy(t *testing.T) {
	t.Parallel()

	var copied string
	clip := &mock.Clipboard{CopyFn: func(content string) error {
		copied = content
		return nil
	}}
	m := readyModel(t, testReport(), bubbletea.WithClipboard(clip))
	m = update(t, m, keys("j"))

	m = update(t, m, keys("y"))

	assert.Contains(t, copied, "--- old.h\n+++ new.h\n")
	assert.Contains(t, copied, "~ method Src::add(int) @3-5")
	assert.NotContains(t, copied, "bar()")
	assert.Contains(t, m.View(), "copied Src::add(int)")

	m = update(t, m, keys("j"))
	assert.NotContains(t, m.View(), "copied", "message clears on the next key")
}

func TestModel_CopyFailure(t *testing.T) {
	t.Parallel()

	t.Run("no clipboard", func(t *testing.T) {
		t.Parallel()

		m := readyModel(t, testReport())
		m = update(t, m, keys("y"))

		assert.Contains(t, m.View(), "clipboard unavailable")
	})

	t.Run("copy error", func(t *testing.T) {
		t.Parallel()

		clip := &mock.Clipboard{CopyFn: func(string) error {
			return errors.New("no display")
		}}
		m := readyModel(t, testReport(), bubbletea.WithClipboard(clip))
		m = update(t, m, keys("y"))

		assert.Contains(t, m.View(), "copy failed: no display")
	})
}

func TestModel_TokenizesStatements(t *testing.T) {
	t.Parallel()

	var languages []string
	tok := &mock.Tokenizer{TokenizeFn: func(language, source string) []cppguts.Token {
		languages = append(languages, language)
		return []cppguts.Token{{Text: strings.ToUpper(source) + "\n"}}
	}}

	m := readyModel(t, testReport(), bubbletea.WithTokenizer(tok))
	view := m.View()

	assert.Contains(t, view, "+ [0] P.ADD(V)+10;")
	assert.Contains(t, view, "- [0] P.ADD(V);")
	require.NotEmpty(t, languages)
	assert.Equal(t, "C++", languages[0])
}

func TestModel_WordDiff(t *testing.T) {
	t.Parallel()

	var calls [][2]string
	wd := &mock.WordDiffer{DiffFn: func(old, new string) ([]cppguts.Segment, []cppguts.Segment) {
		calls = append(calls, [2]string{old, new})
		return []cppguts.Segment{{Text: "p.add(v)"}, {Text: "<old>", Changed: true}},
			[]cppguts.Segment{{Text: "p.add(v)"}, {Text: "<new>", Changed: true}}
	}}
	tok := &mock.Tokenizer{TokenizeFn: func(language, source string) []cppguts.Token {
		t.Fatal("substitutions are rendered from word segments")
		return nil
	}}

	m := readyModel(t, testReport(), bubbletea.WithWordDiffer(wd), bubbletea.WithTokenizer(tok))
	view := m.View()

	require.NotEmpty(t, calls)
	assert.Equal(t, [2]string{"p.add(v);", "p.add(v)+10;"}, calls[0])
	assert.Contains(t, view, "- [0] p.add(v)<old>")
	assert.Contains(t, view, "+ [0] p.add(v)<new>")
}

func TestModel_KeepsCursorVisible(t *testing.T) {
	t.Parallel()

	report := &cppguts.Report{}
	for i := 0; i < 40; i++ {
		report.Results = append(report.Results, cppguts.MatchResult{
			Key:    "f" + strings.Repeat("x", i) + "()",
			Kind:   cppguts.KindFunction,
			Status: cppguts.Modified,
		})
	}
	m := update(t, bubbletea.NewModel(report, bubbletea.WithRenderer(asciiRenderer())), tea.WindowSizeMsg{Width: 120, Height: 10})

	m = update(t, m, keys("G"))

	assert.Contains(t, m.View(), report.Results[39].Key)
	assert.NotContains(t, m.View(), "function f()")
}

func TestModel_WindowResize(t *testing.T) {
	t.Parallel()

	m := readyModel(t, testReport())
	m = update(t, m, tea.WindowSizeMsg{Width: 40, Height: 6})

	lines := strings.Split(m.View(), "\n")
	assert.Len(t, lines, 6)
}

func TestViewer_ContextCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var in bytes.Buffer
	var out bytes.Buffer
	viewer := bubbletea.NewViewer(
		bubbletea.WithProgramOptions(
			tea.WithInput(&in),
			tea.WithOutput(&out),
		),
	)

	done := make(chan error, 1)
	go func() {
		done <- viewer.View(ctx, testReport())
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled, "viewer should return context.Canceled on cancellation")
	case <-time.After(1 * time.Second):
		t.Fatal("viewer did not exit after context cancellation")
	}
}

func TestViewer_ContextAlreadyCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var in bytes.Buffer
	var out bytes.Buffer
	viewer := bubbletea.NewViewer(
		bubbletea.WithModelOptions(bubbletea.WithHideUnchanged()),
		bubbletea.WithProgramOptions(
			tea.WithInput(&in),
			tea.WithOutput(&out),
		),
	)

	err := viewer.View(ctx, &cppguts.Report{})
	require.ErrorIs(t, err, context.Canceled, "viewer should return context.Canceled for pre-cancelled context")
}
