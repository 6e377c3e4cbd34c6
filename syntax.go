package cppguts

// Token represents a syntax-highlighted segment of statement text.
type Token struct {
	Text  string // The text content of this token
	Style Style  // Visual style to apply
}

// Style represents the visual styling for a token.
type Style struct {
	Foreground string // Hex color code or empty for default
	Bold       bool
}

// Tokenizer splits source text into highlighted tokens.
type Tokenizer interface {
	// Tokenize splits source into tokens for the given language.
	// Returns nil if the language is not supported.
	Tokenize(language, source string) []Token
}

// LanguageDetector determines the programming language from a file path.
type LanguageDetector interface {
	// DetectFromPath returns the language name for the given path,
	// or an empty string if the language cannot be determined.
	DetectFromPath(path string) string
}

// IsCppLanguage reports whether a language name returned by a
// LanguageDetector is one the extractor understands.
func IsCppLanguage(name string) bool {
	return name == "C++" || name == "C"
}

// Segment is a run of statement text for word-level highlighting.
type Segment struct {
	Text    string // The text content of this segment
	Changed bool   // True if this segment differs between old/new versions
}

// WordDiffer computes word-level differences between two statements.
type WordDiffer interface {
	// Diff returns segments for both the old and new strings,
	// marking which portions changed between them.
	Diff(old, new string) (oldSegs, newSegs []Segment)
}
