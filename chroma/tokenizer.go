// Package chroma provides C++ language detection and syntax highlighting
// using the chroma library.
package chroma

import (
	"errors"

	chromalib "github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/fwojciec/cppguts"
)

// Compile-time interface verification.
var _ cppguts.Tokenizer = (*Tokenizer)(nil)

// Cpp is the chroma lexer name used for statement text.
const Cpp = "C++"

// StyleFunc maps chroma token types to cppguts styles.
type StyleFunc func(chromalib.TokenType) cppguts.Style

// Tokenizer extracts syntax tokens using chroma.
type Tokenizer struct {
	styleFunc StyleFunc
}

// NewTokenizer creates a new chroma-based tokenizer with the given style function.
// Use StyleFromPalette to create a style function from a cppguts.Palette.
func NewTokenizer(styleFunc StyleFunc) (*Tokenizer, error) {
	if styleFunc == nil {
		return nil, errors.New("chroma: styleFunc cannot be nil")
	}
	return &Tokenizer{styleFunc: styleFunc}, nil
}

// Tokenize splits source into highlighted tokens for the given language.
// Returns nil if the language is not supported or an error occurs.
// Returns an empty slice for empty source.
func (t *Tokenizer) Tokenize(language, source string) []cppguts.Token {
	if source == "" {
		return []cppguts.Token{}
	}

	lexer := lexers.Get(language)
	if lexer == nil {
		return nil
	}
	lexer = chromalib.Coalesce(lexer)

	iterator, err := lexer.Tokenise(nil, source)
	if err != nil {
		return nil
	}

	var tokens []cppguts.Token
	for token := iterator(); token != chromalib.EOF; token = iterator() {
		tokens = append(tokens, cppguts.Token{
			Text:  token.Value,
			Style: t.styleFunc(token.Type),
		})
	}
	return tokens
}

// TokenizeStatement highlights one statement of C++ source.
func (t *Tokenizer) TokenizeStatement(text string) []cppguts.Token {
	return t.Tokenize(Cpp, text)
}
