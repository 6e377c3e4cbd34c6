package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	lg "github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/cppguts"
	"github.com/fwojciec/cppguts/bubbletea"
	"github.com/fwojciec/cppguts/chroma"
	"github.com/fwojciec/cppguts/clipboard"
	"github.com/fwojciec/cppguts/config"
	"github.com/fwojciec/cppguts/extract"
	"github.com/fwojciec/cppguts/fs"
	"github.com/fwojciec/cppguts/git"
	"github.com/fwojciec/cppguts/jsonl"
	"github.com/fwojciec/cppguts/lipgloss"
	"github.com/fwojciec/cppguts/match"
	"github.com/fwojciec/cppguts/splice"
	"github.com/fwojciec/cppguts/worddiff"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
)

// ErrUsage is returned when the command line cannot be understood.
var ErrUsage = errors.New("usage error")

// ErrChanged is returned by "diff --exit-code" when the versions differ.
var ErrChanged = errors.New("versions differ")

const usage = `Usage: cppguts [--config PATH] [-v] COMMAND [ARGS]

Commands:
  diff OLD NEW         compare two versions of a C++ file
  diff --rev REV FILE  compare FILE at git revision REV with the working tree
  splice DEST SRC      replace the definitions in DEST with those from SRC
  dump FILE            list the declarations extracted from FILE
  view FILE.jsonl      browse a saved report
  view OLD NEW         browse the comparison of two files
  batch OLD NEW ...    compare several pairs in parallel
  init-config [PATH]   write a sample configuration file

Run "cppguts COMMAND --help" for the flags of a command.
`

// App encapsulates the application logic for testing.
type App struct {
	Stdout io.Writer
	Stderr io.Writer
	Config *config.Config
	Logger zerolog.Logger

	Renderer  *lg.Renderer             // Color profile of Stdout
	Detector  cppguts.LanguageDetector // Warns about non-C++ inputs
	Git       cppguts.GitRunner        // Reads the old side of "diff --rev"
	Saver     cppguts.ReportSaver      // Writes "diff --save" reports
	Loader    cppguts.ReportLoader     // Reads reports for "view"
	Viewer    cppguts.Viewer
	Clipboard cppguts.Clipboard // Nil when no clipboard is available

	// ConfigPath is where init-config writes when no path is given.
	ConfigPath string
}

// Run executes the command named by args[0].
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprint(a.Stderr, usage)
		return ErrUsage
	}
	cmd, args := args[0], args[1:]
	switch cmd {
	case "diff":
		return a.runDiff(ctx, args)
	case "splice":
		return a.runSplice(args)
	case "dump":
		return a.runDump(args)
	case "view":
		return a.runView(ctx, args)
	case "batch":
		return a.runBatch(ctx, args)
	case "init-config":
		return a.runInitConfig(args)
	case "help":
		fmt.Fprint(a.Stdout, usage)
		return nil
	default:
		fmt.Fprint(a.Stderr, usage)
		return fmt.Errorf("%w: unknown command %q", ErrUsage, cmd)
	}
}

// extractor returns an Extractor honoring parse.lenient_semicolons unless
// strict is forced.
func (a *App) extractor(strict bool) *extract.Extractor {
	return &extract.Extractor{Strict: strict || !a.Config.Parse.LenientSemicolons}
}

// comparer returns the pipeline used by diff, view and batch, cached on
// disk when cache.enabled is set.
func (a *App) comparer(strict bool) cppguts.Comparer {
	ex := a.extractor(strict)
	c := &match.Comparer{
		Extractor: ex,
		Matcher:   match.NewMatcher(),
	}
	if a.Config.Cache.Enabled {
		mode := "lenient"
		if ex.Strict {
			mode = "strict"
		}
		return fs.NewComparer(c, filepath.Join(a.Config.Cache.Dir, mode))
	}
	return c
}

// splicer returns the Splicer used by the splice command.
func (a *App) splicer(strict bool) *splice.Splicer {
	s := splice.NewSplicer()
	s.Extractor = a.extractor(strict)
	return s
}

// formatter renders text reports in the named theme.
func (a *App) formatter(themeName string, changedOnly bool) (cppguts.ReportFormatter, error) {
	theme, err := lipgloss.ThemeByName(themeName)
	if err != nil {
		return nil, err
	}
	f := lipgloss.NewFormatter(theme, a.Renderer)
	f.Text.ChangedOnly = changedOnly
	return f, nil
}

// checkLanguage logs a warning for paths that do not look like C or C++.
func (a *App) checkLanguage(paths ...string) {
	if a.Detector == nil {
		return
	}
	for _, p := range paths {
		if lang := a.Detector.DetectFromPath(p); !cppguts.IsCppLanguage(lang) {
			a.Logger.Warn().Str("file", p).Str("language", lang).Msg("input does not look like C++")
		}
	}
}

func main() {
	if err := run(); err != nil {
		if !errors.Is(err, ErrChanged) && !errors.Is(err, pflag.ErrHelp) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func run() error {
	global := pflag.NewFlagSet("cppguts", pflag.ContinueOnError)
	global.SetInterspersed(false)
	global.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	configPath := global.String("config", "", "configuration file (TOML)")
	verbose := global.BoolP("verbose", "v", false, "log debug messages")
	if err := global.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	level, err := cfg.LogLevel()
	if err != nil {
		return err
	}
	if *verbose {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	app := &App{
		Stdout:   os.Stdout,
		Stderr:   os.Stderr,
		Config:   cfg,
		Logger:   logger,
		Renderer: lg.NewRenderer(os.Stdout),
		Detector: chroma.NewDetector(),
		Git:      git.NewRunner(),
		Saver:    jsonl.NewSaver(),
		Loader:   jsonl.NewLoader(),
	}
	if paths := config.DefaultPaths(); len(paths) > 0 {
		app.ConfigPath = paths[len(paths)-1]
	}
	if sys := clipboard.NewSystem(); sys.Available() {
		app.Clipboard = sys
	}

	theme, err := lipgloss.ThemeByName(cfg.Report.Theme)
	if err != nil {
		return err
	}
	opts := []bubbletea.ModelOption{
		bubbletea.WithTheme(theme),
		bubbletea.WithWordDiffer(worddiff.NewDiffer()),
	}
	if tok, err := chroma.NewTokenizer(chroma.StyleFromPalette(theme.Palette())); err == nil {
		opts = append(opts, bubbletea.WithTokenizer(tok))
	}
	if app.Clipboard != nil {
		opts = append(opts, bubbletea.WithClipboard(app.Clipboard))
	}
	if cfg.Report.ChangedOnly {
		opts = append(opts, bubbletea.WithHideUnchanged())
	}
	app.Viewer = bubbletea.NewViewer(
		bubbletea.WithModelOptions(opts...),
		bubbletea.WithProgramOptions(tea.WithMouseCellMotion()),
	)

	return app.Run(ctx, global.Args())
}
