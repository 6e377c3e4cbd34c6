// Package splice replaces function definitions in a destination buffer
// with the definitions of the same identity from a source buffer.
package splice

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/aymanbagabas/go-udiff"
	"github.com/fwojciec/cppguts"
	"github.com/fwojciec/cppguts/extract"
	"github.com/fwojciec/cppguts/gitdiff"
)

// ErrPatchMismatch is returned when the generated patch does not
// reproduce the spliced text.
var ErrPatchMismatch = errors.New("patch does not reproduce spliced text")

// Result is the outcome of a splice.
type Result struct {
	Text     string   // New destination text
	Replaced []string // Identity keys replaced, in source order
	Patch    string   // Unified patch from the old to the new destination
}

// Splicer copies definitions from one buffer into another.
type Splicer struct {
	Extractor cppguts.Extractor
	Patcher   cppguts.Patcher
}

// NewSplicer creates a Splicer backed by the default extractor and patcher.
func NewSplicer() *Splicer {
	return &Splicer{
		Extractor: extract.NewExtractor(),
		Patcher:   gitdiff.NewPatcher(),
	}
}

// Splice replaces, for every definition in src, the destination
// definition with the same identity key. Text outside the replaced
// definitions is kept byte for byte. It fails with
// cppguts.ErrNoMatchingDefinition when a source definition has no
// destination counterpart and with cppguts.ErrNoChanges when src defines
// nothing. The patch is applied back to the destination and must
// reproduce the new text.
func (s *Splicer) Splice(dest, src cppguts.Source) (*Result, error) {
	destTU, err := s.Extractor.Extract(dest.Name, dest.Text)
	if err != nil {
		return nil, err
	}
	srcTU, err := s.Extractor.Extract(src.Name, src.Text)
	if err != nil {
		return nil, err
	}

	var defs []*cppguts.Declaration
	srcTU.Walk(func(d *cppguts.Declaration) bool {
		if d.Kind.IsFunction() && d.HasBody && !d.Attached {
			defs = append(defs, d)
		}
		return true
	})
	if len(defs) == 0 {
		return nil, fmt.Errorf("%s: %w", src.Name, cppguts.ErrNoChanges)
	}

	targets := destTU.Definitions()
	edits := make([]udiff.Edit, 0, len(defs))
	replaced := make([]string, 0, len(defs))
	for _, d := range defs {
		key := d.Key()
		t, ok := targets[key]
		if !ok {
			return nil, fmt.Errorf("%s: %w: %s (%s defines %s)",
				src.Name, cppguts.ErrNoMatchingDefinition, key, dest.Name, strings.Join(sortedKeys(targets), ", "))
		}
		edits = append(edits, replacement(t, d, src.Text))
		replaced = append(replaced, key)
	}
	sort.Slice(edits, func(i, j int) bool { return edits[i].Start < edits[j].Start })

	text, err := udiff.Apply(dest.Text, edits)
	if err != nil {
		return nil, fmt.Errorf("splice into %s: %w", dest.Name, err)
	}
	patch := s.Patcher.Unified(dest.Name, dest.Text, text)
	if err := s.verify(dest, patch, text); err != nil {
		return nil, err
	}
	return &Result{
		Text:     text,
		Replaced: replaced,
		Patch:    patch,
	}, nil
}

// verify checks that patch turns the destination into text, so a patch
// written with --patch reproduces what splice writes.
func (s *Splicer) verify(dest cppguts.Source, patch, text string) error {
	if patch == "" {
		if text != dest.Text {
			return fmt.Errorf("splice into %s: %w", dest.Name, ErrPatchMismatch)
		}
		return nil
	}
	got, err := s.Patcher.Apply(dest.Text, patch)
	if err != nil {
		return fmt.Errorf("splice into %s: verify patch: %w", dest.Name, err)
	}
	if got != text {
		return fmt.Errorf("splice into %s: %w", dest.Name, ErrPatchMismatch)
	}
	return nil
}

// replacement swaps the whole definition when both sides write it in the
// same place, and only the body when one is in-class and the other is
// out-of-class, so the destination keeps its own declarator.
func replacement(target, def *cppguts.Declaration, srcText string) udiff.Edit {
	if outside(target) == outside(def) {
		span := target.DefinitionSpan()
		return udiff.Edit{Start: span.Start, End: span.End, New: def.DefinitionSpan().Text(srcText)}
	}
	return udiff.Edit{Start: target.BodySpan.Start, End: target.BodySpan.End, New: def.BodySpan.Text(srcText)}
}

// outside reports whether the definition text is written outside its
// class body.
func outside(d *cppguts.Declaration) bool {
	return d.OutOfClass || d.Kind == cppguts.KindOutOfClassMethodDef
}

func sortedKeys(defs map[string]*cppguts.Declaration) []string {
	keys := make([]string, 0, len(defs))
	for k := range defs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
