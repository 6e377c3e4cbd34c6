package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fwojciec/cppguts"
	"github.com/fwojciec/cppguts/config"
	"github.com/fwojciec/cppguts/fs"
	"github.com/fwojciec/cppguts/gitdiff"
	"github.com/fwojciec/cppguts/jsonl"
	"github.com/fwojciec/cppguts/match"
	"github.com/spf13/pflag"
)

func (a *App) newFlagSet(name, args string) *pflag.FlagSet {
	flags := pflag.NewFlagSet(name, pflag.ContinueOnError)
	flags.SetOutput(a.Stderr)
	flags.Usage = func() {
		fmt.Fprintf(a.Stderr, "Usage: cppguts %s %s\n\nFlags:\n", name, args)
		flags.PrintDefaults()
	}
	return flags
}

func readSource(path string) (cppguts.Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return cppguts.Source{}, err
	}
	return cppguts.Source{Name: path, Text: string(data)}, nil
}

func readPair(oldPath, newPath string) (cppguts.Pair, error) {
	old, err := readSource(oldPath)
	if err != nil {
		return cppguts.Pair{}, err
	}
	new, err := readSource(newPath)
	if err != nil {
		return cppguts.Pair{}, err
	}
	return cppguts.Pair{Old: old, New: new}, nil
}

// writeReport prints report to Stdout in the given format.
func (a *App) writeReport(report *cppguts.Report, format, theme string, changedOnly bool) error {
	switch format {
	case config.FormatText:
		f, err := a.formatter(theme, changedOnly)
		if err != nil {
			return err
		}
		_, err = io.WriteString(a.Stdout, f.Format(report))
		return err
	case config.FormatJSONL:
		return jsonl.Write(a.Stdout, report)
	default:
		return fmt.Errorf("%w: unknown format %q", ErrUsage, format)
	}
}

func (a *App) runDiff(ctx context.Context, args []string) error {
	flags := a.newFlagSet("diff", "[flags] OLD NEW | --rev REV FILE")
	rev := flags.String("rev", "", "compare FILE at this git revision with the working tree")
	repo := flags.String("repo", ".", "repository read by --rev")
	format := flags.String("format", a.Config.Report.Format, "output format: text or jsonl")
	theme := flags.String("theme", a.Config.Report.Theme, "color theme: dark or light")
	changed := flags.Bool("changed", a.Config.Report.ChangedOnly, "omit unchanged records")
	strict := flags.Bool("strict", false, `require ";" after class bodies`)
	save := flags.String("save", "", "also save the report as JSONL to this path")
	exitCode := flags.Bool("exit-code", false, "exit with status 1 when the versions differ")
	if err := flags.Parse(args); err != nil {
		return err
	}

	var pair cppguts.Pair
	switch {
	case *rev != "" && flags.NArg() == 1:
		path := flags.Arg(0)
		a.checkLanguage(path)
		text, err := a.Git.ShowFile(ctx, *repo, *rev, path)
		if err != nil {
			return err
		}
		new, err := readSource(path)
		if err != nil {
			return err
		}
		pair = cppguts.Pair{Old: cppguts.Source{Name: *rev + ":" + path, Text: text}, New: new}
	case *rev == "" && flags.NArg() == 2:
		a.checkLanguage(flags.Args()...)
		var err error
		if pair, err = readPair(flags.Arg(0), flags.Arg(1)); err != nil {
			return err
		}
	default:
		flags.Usage()
		return fmt.Errorf("%w: diff takes OLD NEW, or --rev REV FILE", ErrUsage)
	}

	report, err := a.comparer(*strict).Compare(ctx, pair)
	if err != nil {
		return err
	}
	s := report.Summary()
	a.Logger.Debug().
		Str("old", pair.Old.Name).
		Str("new", pair.New.Name).
		Int("modified", s.Modified).
		Int("added", s.Added).
		Int("removed", s.Removed).
		Msg("compared")

	if *save != "" {
		if err := a.Saver.Save(*save, report); err != nil {
			return err
		}
		a.Logger.Info().Str("path", *save).Msg("saved report")
	}
	if err := a.writeReport(report, *format, *theme, *changed); err != nil {
		return err
	}
	if *exitCode && s.Changed() {
		return ErrChanged
	}
	return nil
}

func (a *App) runSplice(args []string) error {
	flags := a.newFlagSet("splice", "[flags] DEST SRC")
	keepOld := flags.Bool("keep-old", a.Config.Splice.KeepOld, "keep DEST as DEST_OLD.EXT")
	deleteOld := flags.Bool("delete-old", false, "do not keep a copy of DEST")
	dryRun := flags.BoolP("dry-run", "n", false, "do not write DEST")
	showPatch := flags.BoolP("patch", "p", false, "print the change as a unified patch")
	copyPatch := flags.Bool("copy", false, "copy the patch to the clipboard")
	strict := flags.Bool("strict", false, `require ";" after class bodies`)
	if err := flags.Parse(args); err != nil {
		return err
	}
	if flags.NArg() != 2 {
		flags.Usage()
		return fmt.Errorf("%w: splice takes DEST SRC", ErrUsage)
	}

	dest, err := readSource(flags.Arg(0))
	if err != nil {
		return err
	}
	src, err := readSource(flags.Arg(1))
	if err != nil {
		return err
	}
	a.checkLanguage(dest.Name, src.Name)

	res, err := a.splicer(*strict).Splice(dest, src)
	if err != nil {
		return err
	}
	for _, key := range res.Replaced {
		a.Logger.Debug().Str("key", key).Msg("replaced definition")
	}

	if *showPatch {
		if _, err := io.WriteString(a.Stdout, res.Patch); err != nil {
			return err
		}
	}
	if *copyPatch {
		if a.Clipboard == nil {
			return errors.New("clipboard is not available")
		}
		if err := a.Clipboard.Copy(res.Patch); err != nil {
			return fmt.Errorf("copy patch: %w", err)
		}
	}
	if res.Text == dest.Text {
		fmt.Fprintf(a.Stderr, "%s is up to date\n", dest.Name)
		return nil
	}
	if *dryRun {
		stats, err := gitdiff.Stat(res.Patch)
		if err != nil {
			return fmt.Errorf("read patch: %w", err)
		}
		var added, deleted int
		for _, st := range stats {
			added += st.Added
			deleted += st.Deleted
		}
		fmt.Fprintf(a.Stderr, "would replace %d definitions in %s (+%d -%d lines)\n", len(res.Replaced), dest.Name, added, deleted)
		return nil
	}

	backup, err := fs.ReplaceFile(dest.Name, []byte(res.Text), *keepOld && !*deleteOld)
	if err != nil {
		return err
	}
	if backup != "" {
		fmt.Fprintf(a.Stderr, "replaced %d definitions in %s (previous version in %s)\n", len(res.Replaced), dest.Name, backup)
	} else {
		fmt.Fprintf(a.Stderr, "replaced %d definitions in %s\n", len(res.Replaced), dest.Name)
	}
	return nil
}

func (a *App) runDump(args []string) error {
	flags := a.newFlagSet("dump", "[flags] FILE")
	strict := flags.Bool("strict", false, `require ";" after class bodies`)
	name := flags.String("name", "", "only dump declarations with this qualified name or identity key")
	maxDepth := flags.Int("max-depth", 0, "nesting levels to dump, 0 for all")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if flags.NArg() != 1 {
		flags.Usage()
		return fmt.Errorf("%w: dump takes FILE", ErrUsage)
	}

	src, err := readSource(flags.Arg(0))
	if err != nil {
		return err
	}
	a.checkLanguage(src.Name)
	tu, err := a.extractor(*strict).Extract(src.Name, src.Text)
	if err != nil {
		return err
	}

	decls := tu.Decls
	if *name != "" {
		decls = selectDecls(decls, *name)
		if len(decls) == 0 {
			return fmt.Errorf("%s: no declaration named %q", src.Name, *name)
		}
	}

	var sb strings.Builder
	n := writeDecls(&sb, decls, 0, *maxDepth)
	fmt.Fprintf(&sb, "%d declarations\n", n)
	_, err = io.WriteString(a.Stdout, sb.String())
	return err
}

// selectDecls returns the declarations, at any depth, whose qualified
// name or key is name. Matches are returned whole, members included.
func selectDecls(decls []cppguts.Declaration, name string) []cppguts.Declaration {
	var out []cppguts.Declaration
	for _, d := range decls {
		if d.QualifiedName() == name || d.Key() == name {
			out = append(out, d)
			continue
		}
		out = append(out, selectDecls(d.Members, name)...)
	}
	return out
}

// writeDecls lists decls and their members down to maxDepth levels (all
// when maxDepth is 0), returning how many it wrote.
func writeDecls(sb *strings.Builder, decls []cppguts.Declaration, depth, maxDepth int) int {
	if maxDepth > 0 && depth >= maxDepth {
		return 0
	}
	n := 0
	indent := strings.Repeat("  ", depth)
	for i := range decls {
		d := &decls[i]
		n++
		fmt.Fprintf(sb, "%s%s %s%s", indent, d.Kind, d.Key(), d.Span.Lines())
		if q := qualifiers(d); len(q) > 0 {
			fmt.Fprintf(sb, " (%s)", strings.Join(q, " "))
		}
		if d.Kind.IsFunction() {
			if d.HasBody {
				fmt.Fprintf(sb, " [%d statements]", len(d.Body))
			} else {
				sb.WriteString(" [prototype]")
			}
		}
		sb.WriteByte('\n')
		for _, f := range d.Fields {
			fmt.Fprintf(sb, "%s  field %s: %s\n", indent, f.Name, f.Type)
		}
		n += writeDecls(sb, d.Members, depth+1, maxDepth)
	}
	return n
}

func qualifiers(d *cppguts.Declaration) []string {
	var q []string
	if d.ClassKey != "" && d.ClassKey != d.Kind.String() {
		q = append(q, d.ClassKey)
	}
	if d.Access != "" {
		q = append(q, d.Access)
	}
	if d.Inline {
		q = append(q, "inline")
	}
	if d.Static {
		q = append(q, "static")
	}
	if d.Virtual {
		q = append(q, "virtual")
	}
	if d.Pure {
		q = append(q, "pure")
	}
	if d.OutOfClass {
		q = append(q, "defined"+d.Definition.Lines())
	}
	if d.Attached {
		q = append(q, "attached")
	}
	return q
}

func (a *App) runView(ctx context.Context, args []string) error {
	flags := a.newFlagSet("view", "[flags] FILE.jsonl | OLD NEW")
	strict := flags.Bool("strict", false, `require ";" after class bodies`)
	if err := flags.Parse(args); err != nil {
		return err
	}

	var report *cppguts.Report
	var err error
	switch flags.NArg() {
	case 1:
		report, err = a.Loader.Load(flags.Arg(0))
	case 2:
		a.checkLanguage(flags.Args()...)
		var pair cppguts.Pair
		if pair, err = readPair(flags.Arg(0), flags.Arg(1)); err == nil {
			report, err = a.comparer(*strict).Compare(ctx, pair)
		}
	default:
		flags.Usage()
		return fmt.Errorf("%w: view takes FILE.jsonl, or OLD NEW", ErrUsage)
	}
	if err != nil {
		return err
	}
	if len(report.Results) == 0 {
		return fmt.Errorf("%w: nothing to view", cppguts.ErrNoChanges)
	}
	return a.Viewer.View(ctx, report)
}

func (a *App) runBatch(ctx context.Context, args []string) error {
	flags := a.newFlagSet("batch", "[flags] OLD NEW [OLD NEW ...]")
	workers := flags.IntP("workers", "j", a.Config.Batch.Workers, "pairs compared at the same time")
	format := flags.String("format", a.Config.Report.Format, "output format: text or jsonl")
	theme := flags.String("theme", a.Config.Report.Theme, "color theme: dark or light")
	changed := flags.Bool("changed", a.Config.Report.ChangedOnly, "omit unchanged records")
	strict := flags.Bool("strict", false, `require ";" after class bodies`)
	if err := flags.Parse(args); err != nil {
		return err
	}
	files := flags.Args()
	if len(files) == 0 || len(files)%2 != 0 {
		flags.Usage()
		return fmt.Errorf("%w: batch takes pairs of files", ErrUsage)
	}
	total := len(files) / 2

	var pairs []cppguts.Pair
	failed := 0
	for i := 0; i < len(files); i += 2 {
		pair, err := readPair(files[i], files[i+1])
		if err != nil {
			a.Logger.Error().Err(err).Str("old", files[i]).Str("new", files[i+1]).Msg("pair skipped")
			failed++
			continue
		}
		pairs = append(pairs, pair)
	}

	outcomes, err := match.CompareAll(ctx, a.comparer(*strict), pairs, *workers)
	if err != nil {
		return err
	}
	for _, o := range outcomes {
		if o.Err != nil {
			a.Logger.Error().Err(o.Err).Str("old", o.Pair.Old.Name).Str("new", o.Pair.New.Name).Msg("pair failed")
			failed++
			continue
		}
		s := o.Report.Summary()
		a.Logger.Info().
			Str("old", o.Pair.Old.Name).
			Str("new", o.Pair.New.Name).
			Bool("changed", s.Changed()).
			Msg("pair compared")
		if err := a.writeReport(o.Report, *format, *theme, *changed); err != nil {
			return err
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d pairs failed", failed, total)
	}
	return nil
}

func (a *App) runInitConfig(args []string) error {
	flags := a.newFlagSet("init-config", "[PATH]")
	if err := flags.Parse(args); err != nil {
		return err
	}
	path := a.ConfigPath
	switch flags.NArg() {
	case 0:
	case 1:
		path = flags.Arg(0)
	default:
		flags.Usage()
		return fmt.Errorf("%w: init-config takes at most one PATH", ErrUsage)
	}
	if path == "" {
		return fmt.Errorf("%w: no configuration path", ErrUsage)
	}
	if err := config.InitConfig(path); err != nil {
		return err
	}
	fmt.Fprintf(a.Stdout, "wrote %s\n", path)
	return nil
}
