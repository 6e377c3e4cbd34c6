package mock

import (
	"github.com/fwojciec/cppguts"
)

// Compile-time interface verification.
var _ cppguts.Patcher = (*Patcher)(nil)

// Patcher is a mock implementation of cppguts.Patcher.
type Patcher struct {
	UnifiedFn func(name, old, new string) string
	ApplyFn   func(original, patch string) (string, error)
}

func (p *Patcher) Unified(name, old, new string) string {
	return p.UnifiedFn(name, old, new)
}

func (p *Patcher) Apply(original, patch string) (string, error) {
	return p.ApplyFn(original, patch)
}
