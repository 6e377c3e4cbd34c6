// Package lexer splits C++ source into tokens with byte offsets.
//
// The scanner is lexical only: it recognizes identifiers, numbers, string
// and character literals (including raw strings), operators, punctuation,
// comments and preprocessor directives. Whitespace is skipped.
package lexer

import (
	"strings"
	"unicode/utf8"

	"github.com/fwojciec/cppguts"
)

// Kind classifies a token.
type Kind int

// Token kinds.
const (
	Ident Kind = iota
	Number
	String // String or character literal, prefix included
	Punct  // Operator or punctuation
	Comment
	Preproc // Whole directive line, continuations included
)

func (k Kind) String() string {
	switch k {
	case Ident:
		return "ident"
	case Number:
		return "number"
	case String:
		return "string"
	case Punct:
		return "punct"
	case Comment:
		return "comment"
	case Preproc:
		return "preproc"
	default:
		return "unknown"
	}
}

// Token is one lexical token.
type Token struct {
	Kind   Kind
	Text   string
	Offset int // Byte offset of the first byte
	Line   int // 1-based line of the first byte
}

// End returns the byte offset one past the token.
func (t Token) End() int {
	return t.Offset + len(t.Text)
}

// EndLine returns the line of the token's last byte.
func (t Token) EndLine() int {
	text := strings.TrimSuffix(t.Text, "\n")
	return t.Line + strings.Count(text, "\n")
}

// Is reports whether the token is punctuation or an identifier with the
// given text.
func (t Token) Is(text string) bool {
	return (t.Kind == Punct || t.Kind == Ident) && t.Text == text
}

// operators lists multi-character operators, longest first within each
// leading byte so the first match wins.
var operators = []string{
	"<=>", "<<=", ">>=", "->*", "...",
	"::", "->", "++", "--", "<<", ">>", "<=", ">=", "==", "!=", "&&", "||",
	"+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=", ".*", "##",
}

// stringPrefixes are identifier spellings that start a literal when
// immediately followed by a quote.
var stringPrefixes = map[string]bool{
	"L": true, "u": true, "U": true, "u8": true,
	"R": true, "LR": true, "uR": true, "UR": true, "u8R": true,
}

// Lex tokenizes src. name identifies the buffer in errors. Unterminated
// block comments and string or character literals fail with a
// *cppguts.ParseError.
func Lex(name, src string) ([]Token, error) {
	s := &scanner{name: name, src: src, line: 1}
	return s.run()
}

type scanner struct {
	name string
	src  string
	pos  int
	line int

	// lineStart is true while only whitespace has been seen on the
	// current line, which is where a directive may begin.
	lineStart bool
}

func (s *scanner) run() ([]Token, error) {
	tokens := make([]Token, 0, len(s.src)/4+1)
	s.lineStart = true

	for s.pos < len(s.src) {
		c := s.src[s.pos]
		start, line := s.pos, s.line

		switch {
		case c == '\n':
			s.pos++
			s.line++
			s.lineStart = true
			continue

		case isWhitespace(c):
			s.pos++
			continue

		case c == '#' && s.lineStart:
			s.scanDirective()
			tokens = append(tokens, s.token(Preproc, start, line))
			s.lineStart = true
			continue

		case c == '/' && s.peek(1) == '/':
			s.scanLineComment()
			tokens = append(tokens, s.token(Comment, start, line))

		case c == '/' && s.peek(1) == '*':
			if err := s.scanBlockComment(); err != nil {
				return nil, err
			}
			tokens = append(tokens, s.token(Comment, start, line))

		case isIdentifierStart(c):
			s.pos++
			for s.pos < len(s.src) && isIdentifierChar(s.src[s.pos]) {
				s.pos++
			}
			word := s.src[start:s.pos]
			if q := s.peek(0); (q == '"' || q == '\'') && stringPrefixes[word] {
				var err error
				if q == '"' && strings.HasSuffix(word, "R") {
					err = s.scanRawString(start)
				} else {
					err = s.scanQuoted(q, start)
				}
				if err != nil {
					return nil, err
				}
				tokens = append(tokens, s.token(String, start, line))
				break
			}
			tokens = append(tokens, s.token(Ident, start, line))

		case isDigit(c) || (c == '.' && isDigit(s.peek(1))):
			s.scanNumber()
			tokens = append(tokens, s.token(Number, start, line))

		case c == '"' || c == '\'':
			if err := s.scanQuoted(c, start); err != nil {
				return nil, err
			}
			tokens = append(tokens, s.token(String, start, line))

		case c < utf8.RuneSelf:
			s.pos += s.operatorLen()
			tokens = append(tokens, s.token(Punct, start, line))

		default:
			// Non-ASCII outside literals and comments: keep it as a single
			// rune so offsets stay on rune boundaries.
			_, size := utf8.DecodeRuneInString(s.src[s.pos:])
			s.pos += size
			tokens = append(tokens, s.token(Punct, start, line))
		}
		s.lineStart = false
	}

	return tokens, nil
}

func (s *scanner) token(kind Kind, start, line int) Token {
	return Token{Kind: kind, Text: s.src[start:s.pos], Offset: start, Line: line}
}

func (s *scanner) peek(n int) byte {
	if s.pos+n < len(s.src) {
		return s.src[s.pos+n]
	}
	return 0
}

func (s *scanner) errorf(offset, line int, expected string) error {
	return &cppguts.ParseError{File: s.name, Offset: offset, Line: line, Expected: expected}
}

// scanDirective consumes a preprocessor line up to, not including, the
// terminating newline. Backslash-newline continues the directive.
func (s *scanner) scanDirective() {
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		if c == '\\' && s.peek(1) == '\n' {
			s.pos += 2
			s.line++
			continue
		}
		if c == '\\' && s.peek(1) == '\r' && s.peek(2) == '\n' {
			s.pos += 3
			s.line++
			continue
		}
		if c == '\n' {
			return
		}
		if c == '/' && s.peek(1) == '*' {
			// A block comment may span lines inside a directive. An
			// unterminated one simply runs to the end of input here.
			if err := s.scanBlockComment(); err != nil {
				s.pos = len(s.src)
			}
			continue
		}
		s.pos++
	}
}

func (s *scanner) scanLineComment() {
	for s.pos < len(s.src) && s.src[s.pos] != '\n' {
		if s.src[s.pos] == '\\' && s.peek(1) == '\n' {
			s.pos += 2
			s.line++
			continue
		}
		s.pos++
	}
}

func (s *scanner) scanBlockComment() error {
	start, line := s.pos, s.line
	s.pos += 2
	for s.pos < len(s.src) {
		if s.src[s.pos] == '*' && s.peek(1) == '/' {
			s.pos += 2
			return nil
		}
		if s.src[s.pos] == '\n' {
			s.line++
		}
		s.pos++
	}
	return s.errorf(start, line, `"*/" closing block comment`)
}

// scanQuoted consumes a string or character literal starting at the quote
// under the cursor. A newline or end of input before the closing quote is
// an error.
func (s *scanner) scanQuoted(quote byte, start int) error {
	line := s.line
	s.pos++
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		switch {
		case c == '\\' && s.pos+1 < len(s.src):
			if s.src[s.pos+1] == '\n' {
				s.line++
			}
			s.pos += 2
			continue
		case c == quote:
			s.pos++
			return nil
		case c == '\n':
			return s.errorf(start, line, "closing "+string(quote))
		}
		s.pos++
	}
	return s.errorf(start, line, "closing "+string(quote))
}

// scanRawString consumes R"delim( ... )delim".
func (s *scanner) scanRawString(start int) error {
	line := s.line
	s.pos++ // opening quote
	open := strings.IndexByte(s.src[s.pos:], '(')
	if open < 0 || open > 16 {
		return s.errorf(start, line, `"(" opening raw string`)
	}
	delim := s.src[s.pos : s.pos+open]
	s.pos += open + 1
	closing := ")" + delim + `"`
	end := strings.Index(s.src[s.pos:], closing)
	if end < 0 {
		return s.errorf(start, line, closing+" closing raw string")
	}
	s.line += strings.Count(s.src[s.pos:s.pos+end], "\n")
	s.pos += end + len(closing)
	return nil
}

// scanNumber consumes an integer or floating literal with any suffix,
// digit separators and exponent signs.
func (s *scanner) scanNumber() {
	s.pos++
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		switch {
		case isIdentifierChar(c) || c == '.':
			if (c == 'e' || c == 'E' || c == 'p' || c == 'P') && (s.peek(1) == '+' || s.peek(1) == '-') {
				s.pos += 2
				continue
			}
			s.pos++
		case c == '\'' && isIdentifierChar(s.peek(1)):
			s.pos += 2
		default:
			return
		}
	}
}

func (s *scanner) operatorLen() int {
	rest := s.src[s.pos:]
	for _, op := range operators {
		if strings.HasPrefix(rest, op) {
			return len(op)
		}
	}
	return 1
}

func isIdentifierStart(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_' || c == '$'
}

func isIdentifierChar(c byte) bool {
	return isIdentifierStart(c) || isDigit(c)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isWhitespace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\f' || c == '\v'
}

// IsWord reports whether text starts and ends like an identifier or
// number, so that two adjacent words need a separating space.
func IsWord(text string) bool {
	return text != "" && isIdentifierChar(text[0]) && isIdentifierChar(text[len(text)-1])
}

// Join renders tokens in normalized form: a single space between two
// words or two operator tokens that would otherwise fuse, nothing
// elsewhere. Comments are skipped.
func Join(tokens []Token) string {
	texts := make([]string, 0, len(tokens))
	for _, t := range tokens {
		switch t.Kind {
		case Comment:
			continue
		case Preproc:
			texts = append(texts, strings.Join(strings.Fields(t.Text), " "))
		default:
			texts = append(texts, t.Text)
		}
	}
	return JoinText(texts)
}

// JoinText is Join for token texts that come from another tokenizer.
// Consecutive ">" close nested template argument lists and stay fused.
func JoinText(texts []string) string {
	var sb strings.Builder
	prev := ""
	for _, text := range texts {
		if text == "" {
			continue
		}
		if prev != "" && needsSpace(prev, text) {
			sb.WriteByte(' ')
		}
		sb.WriteString(text)
		prev = text
	}
	return sb.String()
}

func needsSpace(prev, next string) bool {
	a, b := prev[len(prev)-1], next[0]
	if isIdentifierChar(a) && isIdentifierChar(b) {
		return true
	}
	if prev == ">" && next == ">" {
		return false
	}
	return isOperatorChar(a) && isOperatorChar(b)
}

func isOperatorChar(c byte) bool {
	switch c {
	case '+', '-', '*', '/', '=', '<', '>', '!', '&', '|', '^', '%', ':', '.', '#':
		return true
	}
	return false
}
