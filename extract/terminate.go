package extract

import (
	"strconv"
	"strings"

	"github.com/fwojciec/cppguts"
	"github.com/fwojciec/cppguts/lexer"
)

var closers = map[string]string{"(": ")", "[": "]", "{": "}"}

// classKeys introduce a body that C++ requires to be followed by ";".
var classKeys = map[string]bool{"class": true, "struct": true, "union": true, "enum": true}

// terminate checks that src lexes and that its brackets balance, then
// finds class, struct, union and enum bodies whose closing brace is not
// followed by ";" or a declarator list. In strict mode the first such
// brace is an error. Otherwise a ";" is inserted after each one; the
// returned offsets locate the insertions in the returned code. Inserting
// never changes line numbers.
func terminate(name, src string, strict bool) ([]byte, []int, error) {
	all, err := lexer.Lex(name, src)
	if err != nil {
		return nil, nil, err
	}
	toks := make([]lexer.Token, 0, len(all))
	for _, t := range all {
		if t.Kind != lexer.Comment {
			toks = append(toks, t)
		}
	}

	b := &braces{file: name, src: src, toks: toks}
	if err := b.pair(); err != nil {
		return nil, nil, err
	}

	var missing []int
	for i, t := range toks {
		if !t.Is("{") || !b.isClassBody(i) {
			continue
		}
		closeIdx := b.match[i]
		if b.terminated(closeIdx + 1) {
			continue
		}
		if strict {
			return nil, nil, b.errorAt(closeIdx+1, `";" after closing brace`)
		}
		missing = append(missing, toks[closeIdx].End())
	}

	code := make([]byte, 0, len(src)+len(missing))
	inserted := make([]int, 0, len(missing))
	last := 0
	for _, at := range missing {
		code = append(code, src[last:at]...)
		inserted = append(inserted, len(code))
		code = append(code, ';')
		last = at
	}
	code = append(code, src[last:]...)
	return code, inserted, nil
}

// braces pairs the brackets of a token stream with comments removed.
type braces struct {
	file  string
	src   string
	toks  []lexer.Token
	match []int // Index of the matching bracket, -1 for other tokens
}

// pair matches every (), [] and {} pair, failing on the first unbalanced
// or mismatched bracket.
func (b *braces) pair() error {
	b.match = make([]int, len(b.toks))
	var stack []int
	for i, t := range b.toks {
		b.match[i] = -1
		if t.Kind != lexer.Punct {
			continue
		}
		switch t.Text {
		case "(", "[", "{":
			stack = append(stack, i)
		case ")", "]", "}":
			if len(stack) == 0 {
				return b.errorAt(i, "opening bracket before "+quote(t.Text))
			}
			open := stack[len(stack)-1]
			if want := closers[b.toks[open].Text]; want != t.Text {
				return b.errorAt(i, quote(want)+" closing "+quote(b.toks[open].Text)+" from line "+strconv.Itoa(b.toks[open].Line))
			}
			stack = stack[:len(stack)-1]
			b.match[open] = i
			b.match[i] = open
		}
	}
	if len(stack) > 0 {
		open := stack[len(stack)-1]
		return b.errorAt(len(b.toks), quote(closers[b.toks[open].Text])+" closing "+quote(b.toks[open].Text)+" from line "+strconv.Itoa(b.toks[open].Line))
	}
	return nil
}

// isClassBody reports whether the "{" at i opens the body of a class,
// struct, union or enum: a class-key starts the statement and no "=" or
// call parentheses stand between it and the brace.
func (b *braces) isClassBody(i int) bool {
	kw := -1
	for j := i - 1; j >= 0; j-- {
		t := b.toks[j]
		if m := b.match[j]; m >= 0 && m < j {
			j = m
			continue
		}
		if t.Is(";") || t.Is("{") || t.Is("}") || t.Kind == lexer.Preproc {
			break
		}
		if t.Is(":") && j > 0 && isAccess(b.toks[j-1].Text) {
			break
		}
		if kw < 0 && classKeys[t.Text] && t.Kind == lexer.Ident {
			kw = j
		}
	}
	if kw < 0 {
		return false
	}
	for j := kw + 1; j < i; j++ {
		t := b.toks[j]
		switch {
		case t.Is("="):
			return false
		case t.Is("(") && !isAttributeKeyword(b.toks[j-1].Text):
			return false
		case b.match[j] > j:
			j = b.match[j]
		}
	}
	return true
}

// terminated reports whether the tokens from i may follow a class body:
// ";", a declarator list, or the end of an enclosing expression.
func (b *braces) terminated(i int) bool {
	if i >= len(b.toks) {
		return false
	}
	t := b.toks[i]
	switch {
	case t.Is(";"), t.Is(")"), t.Is("]"), t.Is(","), t.Is(">"):
		return true
	case t.Is("*"), t.Is("&"), t.Is("&&"):
		return true
	case t.Kind != lexer.Ident || i+1 >= len(b.toks):
		return false
	}
	n := b.toks[i+1]
	return n.Is(";") || n.Is(",") || n.Is("=") || n.Is("[")
}

func (b *braces) errorAt(i int, expected string) error {
	offset := len(b.src)
	if i < len(b.toks) {
		offset = b.toks[i].Offset
	}
	return &cppguts.ParseError{
		File:     b.file,
		Offset:   offset,
		Line:     strings.Count(b.src[:offset], "\n") + 1,
		Expected: expected,
	}
}

func isAccess(word string) bool {
	return word == "public" || word == "protected" || word == "private"
}

func isAttributeKeyword(word string) bool {
	switch word {
	case "alignas", "__declspec", "__attribute__":
		return true
	}
	return false
}
