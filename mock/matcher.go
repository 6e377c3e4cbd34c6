package mock

import (
	"context"

	"github.com/fwojciec/cppguts"
)

// Compile-time interface verification.
var (
	_ cppguts.Matcher    = (*Matcher)(nil)
	_ cppguts.BodyDiffer = (*BodyDiffer)(nil)
	_ cppguts.Comparer   = (*Comparer)(nil)
)

// Matcher is a mock implementation of cppguts.Matcher.
type Matcher struct {
	MatchFn func(old, new *cppguts.TranslationUnit) (*cppguts.Report, error)
}

func (m *Matcher) Match(old, new *cppguts.TranslationUnit) (*cppguts.Report, error) {
	return m.MatchFn(old, new)
}

// BodyDiffer is a mock implementation of cppguts.BodyDiffer.
type BodyDiffer struct {
	DiffFn func(old, new []cppguts.Statement) []cppguts.StatementEdit
}

func (d *BodyDiffer) Diff(old, new []cppguts.Statement) []cppguts.StatementEdit {
	return d.DiffFn(old, new)
}

// Comparer is a mock implementation of cppguts.Comparer.
type Comparer struct {
	CompareFn func(ctx context.Context, pair cppguts.Pair) (*cppguts.Report, error)
}

func (c *Comparer) Compare(ctx context.Context, pair cppguts.Pair) (*cppguts.Report, error) {
	return c.CompareFn(ctx, pair)
}
