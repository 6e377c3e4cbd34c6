package mock

import (
	"github.com/fwojciec/cppguts"
)

// Compile-time interface verification.
var _ cppguts.WordDiffer = (*WordDiffer)(nil)

// WordDiffer is a mock implementation of cppguts.WordDiffer.
type WordDiffer struct {
	DiffFn func(old, new string) (oldSegs, newSegs []cppguts.Segment)
}

func (w *WordDiffer) Diff(old, new string) (oldSegs, newSegs []cppguts.Segment) {
	return w.DiffFn(old, new)
}
