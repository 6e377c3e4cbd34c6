// Package worddiff splits the two sides of a substituted statement into
// changed and unchanged segments.
package worddiff

import (
	"github.com/fwojciec/cppguts"
	"github.com/fwojciec/cppguts/lexer"
	"github.com/fwojciec/cppguts/stmtdiff"
)

// Compile-time interface verification.
var _ cppguts.WordDiffer = (*Differ)(nil)

// similarityThreshold is the minimum ratio of common tokens for a
// token-level diff. Below it both sides are marked changed as a whole.
const similarityThreshold = 0.4

// Differ tokenizes statements with the C++ lexer and aligns the tokens
// with the statement differ.
type Differ struct {
	align *stmtdiff.Differ
}

// NewDiffer creates a new Differ instance.
func NewDiffer() *Differ {
	return &Differ{align: stmtdiff.NewDiffer()}
}

// Tokenize splits s into C++ tokens. The text between tokens is kept as
// tokens of its own, so the result always joins back into s. Text the
// lexer rejects, such as an unterminated literal, is a single token.
func (d *Differ) Tokenize(s string) []string {
	if s == "" {
		return nil
	}
	toks, err := lexer.Lex("", s)
	if err != nil {
		return []string{s}
	}

	out := make([]string, 0, 2*len(toks)+1)
	pos := 0
	for _, t := range toks {
		if t.Offset > pos {
			out = append(out, s[pos:t.Offset])
		}
		out = append(out, s[t.Offset:t.End()])
		pos = t.End()
	}
	if pos < len(s) {
		out = append(out, s[pos:])
	}
	return out
}

// Diff returns segments for both the old and new strings,
// marking which portions changed between them.
func (d *Differ) Diff(old, new string) (oldSegs, newSegs []cppguts.Segment) {
	switch {
	case old == "" && new == "":
		return nil, nil
	case old == "":
		return nil, []cppguts.Segment{{Text: new, Changed: true}}
	case new == "":
		return []cppguts.Segment{{Text: old, Changed: true}}, nil
	case old == new:
		seg := cppguts.Segment{Text: old}
		return []cppguts.Segment{seg}, []cppguts.Segment{seg}
	}

	oldTokens := d.Tokenize(old)
	newTokens := d.Tokenize(new)
	if !similar(oldTokens, newTokens) {
		return []cppguts.Segment{{Text: old, Changed: true}},
			[]cppguts.Segment{{Text: new, Changed: true}}
	}

	oldChanged := make([]bool, len(oldTokens))
	newChanged := make([]bool, len(newTokens))
	for _, e := range d.align.DiffNorms(oldTokens, newTokens) {
		if e.Kind != cppguts.Insert {
			oldChanged[e.OldIndex] = true
		}
		if e.Kind != cppguts.Delete {
			newChanged[e.NewIndex] = true
		}
	}
	return segments(oldTokens, oldChanged), segments(newTokens, newChanged)
}

// similar reports whether the token sequences overlap enough to be worth
// a token-level diff: 2*common / (len(old)+len(new)) reaches the threshold.
func similar(oldTokens, newTokens []string) bool {
	if len(oldTokens) == 0 || len(newTokens) == 0 {
		return false
	}
	counts := make(map[string]int, len(oldTokens))
	for _, t := range oldTokens {
		counts[t]++
	}
	common := 0
	for _, t := range newTokens {
		if counts[t] > 0 {
			counts[t]--
			common++
		}
	}
	return float64(2*common)/float64(len(oldTokens)+len(newTokens)) >= similarityThreshold
}

// segments merges runs of tokens with the same changed flag.
func segments(tokens []string, changed []bool) []cppguts.Segment {
	var segs []cppguts.Segment
	for i, t := range tokens {
		if n := len(segs); n > 0 && segs[n-1].Changed == changed[i] {
			segs[n-1].Text += t
			continue
		}
		segs = append(segs, cppguts.Segment{Text: t, Changed: changed[i]})
	}
	return segs
}
