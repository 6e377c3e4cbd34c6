// Package gitdiff produces unified patches with go-udiff and parses and
// applies them with bluekeyes/go-gitdiff.
package gitdiff

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/aymanbagabas/go-udiff"
	"github.com/bluekeyes/go-gitdiff/gitdiff"
	"github.com/fwojciec/cppguts"
)

// Compile-time interface verification.
var _ cppguts.Patcher = (*Patcher)(nil)

// Patcher creates and applies single-file unified patches.
type Patcher struct{}

// NewPatcher creates a new Patcher.
func NewPatcher() *Patcher {
	return &Patcher{}
}

// Unified returns a git-style patch turning old into new, or "" when the
// two are equal.
func (p *Patcher) Unified(name, old, new string) string {
	body := udiff.Unified("a/"+name, "b/"+name, old, new)
	if body == "" {
		return ""
	}
	return fmt.Sprintf("diff --git a/%s b/%s\n%s", name, name, body)
}

// Apply applies a single-file patch to original. An empty patch returns
// original unchanged.
func (p *Patcher) Apply(original, patch string) (string, error) {
	if strings.TrimSpace(patch) == "" {
		return original, nil
	}
	files, _, err := gitdiff.Parse(strings.NewReader(patch))
	if err != nil {
		return "", fmt.Errorf("parse patch: %w", err)
	}
	if len(files) != 1 {
		return "", fmt.Errorf("parse patch: want one file, got %d", len(files))
	}

	var out bytes.Buffer
	if err := gitdiff.Apply(&out, strings.NewReader(original), files[0]); err != nil {
		return "", fmt.Errorf("apply patch to %s: %w", files[0].OldName, err)
	}
	return out.String(), nil
}

// FileStat summarizes the changes a patch makes to one file.
type FileStat struct {
	Path    string
	Hunks   int
	Added   int
	Deleted int
}

// Stat parses a patch and counts its hunks and changed lines per file.
func Stat(patch string) ([]FileStat, error) {
	files, _, err := gitdiff.Parse(strings.NewReader(patch))
	if err != nil {
		return nil, err
	}

	stats := make([]FileStat, 0, len(files))
	for _, f := range files {
		stats = append(stats, convertFile(f))
	}
	return stats, nil
}

func convertFile(f *gitdiff.File) FileStat {
	st := FileStat{Path: f.NewName, Hunks: len(f.TextFragments)}
	if f.IsDelete {
		st.Path = f.OldName
	}
	for _, frag := range f.TextFragments {
		for _, l := range frag.Lines {
			switch l.Op {
			case gitdiff.OpAdd:
				st.Added++
			case gitdiff.OpDelete:
				st.Deleted++
			}
		}
	}
	return st
}
