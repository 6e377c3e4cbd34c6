// Package extract implements cppguts.Extractor on the tree-sitter C++
// grammar.
//
// The syntax tree supplies namespace, class and function boundaries,
// declarators and parameter lists. Two policies sit on top of it: class
// bodies may omit their closing ";" unless the Extractor is strict, and
// out-of-class method definitions are attached to their in-class
// prototypes once the whole buffer has been read.
package extract

import (
	"context"
	"sort"
	"strings"

	"github.com/fwojciec/cppguts"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/cpp"
)

// Compile-time interface verification.
var _ cppguts.Extractor = (*Extractor)(nil)

// Extractor parses C++ source into a cppguts.TranslationUnit.
type Extractor struct {
	// Strict rejects a class, struct, union or enum body whose closing
	// brace is not followed by ";". By default the brace alone ends the
	// block.
	Strict bool
}

// NewExtractor creates an Extractor that accepts missing semicolons after
// class bodies.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract parses src. name identifies the buffer in errors. On failure no
// translation unit is returned.
func (e *Extractor) Extract(name, src string) (*cppguts.TranslationUnit, error) {
	code, inserted, err := terminate(name, src, e.Strict)
	if err != nil {
		return nil, err
	}

	// Parsers are not safe for concurrent use; each call gets its own.
	ts := sitter.NewParser()
	ts.SetLanguage(cpp.GetLanguage())
	tree, err := ts.ParseCtx(context.Background(), nil, code)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	p := &parser{
		file:     name,
		src:      src,
		code:     code,
		inserted: inserted,
		lines:    lineStarts(src),
		written:  make(map[int]qualifier),
	}
	root := tree.RootNode()
	if err := p.syntaxError(root); err != nil {
		return nil, err
	}

	decls, _, err := p.parseScope(root, scope{})
	if err != nil {
		return nil, err
	}
	decls, err = p.resolve(decls)
	if err != nil {
		return nil, err
	}

	return &cppguts.TranslationUnit{Name: name, Source: src, Decls: decls}, nil
}

// scope is the lexical position of the parser. It is passed by value so
// each nested block gets its own copy.
type scope struct {
	names  []string // Enclosing namespace and class names, outermost first
	class  string   // Name of the class whose body is being parsed
	access string   // Current access for class members
}

func (s scope) qualified() string {
	return strings.Join(s.names, "::")
}

func (s scope) child(name string) scope {
	names := make([]string, len(s.names), len(s.names)+1)
	copy(names, s.names)
	return scope{names: append(names, name)}
}

// qualifier records where a qualified definition was written, for the
// resolution pass.
type qualifier struct {
	scope string // Lexical scope of the definition
	name  string // Qualifier as written, e.g. "Src" in Src::add
}

type parser struct {
	file string
	src  string
	code []byte // src with the semicolons added by terminate

	// inserted holds the offsets in code of added semicolons, ascending.
	inserted []int
	lines    []int // Offsets in src where each line starts

	// written maps a definition's start offset to its written qualifier.
	written map[int]qualifier
}

// syntaxError reports the first ERROR or MISSING node below n. Stray
// semicolons, as in "S(){};" inside a class, are accepted.
func (p *parser) syntaxError(n *sitter.Node) error {
	if n == nil {
		return nil
	}
	if n.IsMissing() {
		return p.errorAt(p.orig(n.StartByte()), quote(n.Type()))
	}
	if n.Type() == "ERROR" && strings.Trim(p.text(n), "; \t\r\n") != "" {
		return p.errorAt(p.orig(n.StartByte()), "valid C++ near "+quote(snippet(p.text(n))))
	}
	if !n.HasError() {
		return nil
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		if err := p.syntaxError(n.Child(i)); err != nil {
			return err
		}
	}
	return nil
}

func (p *parser) text(n *sitter.Node) string {
	return n.Content(p.code)
}

// orig maps an offset in p.code back to src.
func (p *parser) orig(offset uint32) int {
	o := int(offset)
	return o - sort.SearchInts(p.inserted, o)
}

func (p *parser) line(offset int) int {
	return sort.Search(len(p.lines), func(i int) bool { return p.lines[i] > offset })
}

// span covers the bytes of code in [start, end), trailing whitespace
// excluded, in src coordinates.
func (p *parser) span(start, end uint32) cppguts.Span {
	for end > start && isSpace(p.code[end-1]) {
		end--
	}
	a, b := p.orig(start), p.orig(end)
	last := b - 1
	if last < a {
		last = a
	}
	return cppguts.Span{Start: a, End: b, StartLine: p.line(a), EndLine: p.line(last)}
}

func (p *parser) nodeSpan(n *sitter.Node) cppguts.Span {
	return p.span(n.StartByte(), n.EndByte())
}

func (p *parser) errorAt(offset int, expected string) error {
	return &cppguts.ParseError{
		File:     p.file,
		Offset:   offset,
		Line:     strings.Count(p.src[:offset], "\n") + 1,
		Expected: expected,
	}
}

func lineStarts(src string) []int {
	starts := []int{0}
	for i := 0; i < len(src); i++ {
		if src[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

func snippet(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if len(s) > 24 {
		s = s[:24]
	}
	return strings.TrimSpace(s)
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v'
}

func quote(s string) string {
	return `"` + s + `"`
}
