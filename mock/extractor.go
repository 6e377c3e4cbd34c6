// Package mock provides test doubles for cppguts interfaces.
package mock

import (
	"github.com/fwojciec/cppguts"
)

// Compile-time interface verification.
var _ cppguts.Extractor = (*Extractor)(nil)

// Extractor is a mock implementation of cppguts.Extractor.
type Extractor struct {
	ExtractFn func(name, src string) (*cppguts.TranslationUnit, error)
}

func (e *Extractor) Extract(name, src string) (*cppguts.TranslationUnit, error) {
	return e.ExtractFn(name, src)
}
