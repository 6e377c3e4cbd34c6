package mock

import (
	"github.com/fwojciec/cppguts"
)

// Compile-time interface verification.
var _ cppguts.Tokenizer = (*Tokenizer)(nil)

// Tokenizer is a mock implementation of cppguts.Tokenizer.
type Tokenizer struct {
	TokenizeFn func(language, source string) []cppguts.Token
}

func (t *Tokenizer) Tokenize(language, source string) []cppguts.Token {
	return t.TokenizeFn(language, source)
}
