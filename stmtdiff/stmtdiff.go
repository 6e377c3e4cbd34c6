// Package stmtdiff computes statement-level edits between two function
// bodies.
package stmtdiff

import (
	"github.com/fwojciec/cppguts"
)

// Compile-time interface verification.
var _ cppguts.BodyDiffer = (*Differ)(nil)

// Differ aligns statement sequences by their normalized text.
type Differ struct{}

// NewDiffer creates a new Differ instance.
func NewDiffer() *Differ {
	return &Differ{}
}

// Diff returns the edits that turn old into new. Statements are aligned
// on a longest common subsequence of their Norm fields; among alignments
// of equal length the one matching earliest in both sequences wins. The
// unmatched statements between two aligned ones are paired up as
// substitutions in order, and the surplus on the longer side becomes
// deletions or insertions at the end of the gap.
func (d *Differ) Diff(old, new []cppguts.Statement) []cppguts.StatementEdit {
	return d.DiffNorms(norms(old), norms(new))
}

// DiffNorms is Diff over already normalized statement text.
func (d *Differ) DiffNorms(old, new []string) []cppguts.StatementEdit {
	var edits []cppguts.StatementEdit
	i, j := 0, 0
	for _, mt := range align(old, new) {
		edits = appendGap(edits, old, new, i, mt.oldIdx, j, mt.newIdx)
		i, j = mt.oldIdx+1, mt.newIdx+1
	}
	return appendGap(edits, old, new, i, len(old), j, len(new))
}

func norms(stmts []cppguts.Statement) []string {
	out := make([]string, len(stmts))
	for i, s := range stmts {
		out[i] = s.Norm
	}
	return out
}

type match struct{ oldIdx, newIdx int }

// align returns the matched index pairs of a longest common subsequence,
// choosing the leftmost match whenever several keep the length optimal.
func align(a, b []string) []match {
	m, n := len(a), len(b)
	if m == 0 || n == 0 {
		return nil
	}

	// table[i*stride+j] is the LCS length of a[i:] and b[j:].
	stride := n + 1
	table := make([]int, (m+1)*stride)
	for i := m - 1; i >= 0; i-- {
		for j := n - 1; j >= 0; j-- {
			switch {
			case a[i] == b[j]:
				table[i*stride+j] = table[(i+1)*stride+j+1] + 1
			case table[(i+1)*stride+j] >= table[i*stride+j+1]:
				table[i*stride+j] = table[(i+1)*stride+j]
			default:
				table[i*stride+j] = table[i*stride+j+1]
			}
		}
	}

	matches := make([]match, 0, table[0])
	i, j := 0, 0
	for i < m && j < n {
		switch {
		case a[i] == b[j] && table[i*stride+j] == table[(i+1)*stride+j+1]+1:
			matches = append(matches, match{i, j})
			i++
			j++
		case table[(i+1)*stride+j] >= table[i*stride+j+1]:
			i++
		default:
			j++
		}
	}
	return matches
}

// appendGap emits the edits for the unmatched runs a[i:iEnd] and b[j:jEnd].
func appendGap(edits []cppguts.StatementEdit, a, b []string, i, iEnd, j, jEnd int) []cppguts.StatementEdit {
	for i < iEnd && j < jEnd {
		edits = append(edits, cppguts.StatementEdit{
			Kind:     cppguts.Substitute,
			OldIndex: i,
			NewIndex: j,
			OldText:  a[i],
			NewText:  b[j],
		})
		i++
		j++
	}
	for ; i < iEnd; i++ {
		edits = append(edits, cppguts.StatementEdit{
			Kind:     cppguts.Delete,
			OldIndex: i,
			NewIndex: jEnd,
			OldText:  a[i],
		})
	}
	for ; j < jEnd; j++ {
		edits = append(edits, cppguts.StatementEdit{
			Kind:     cppguts.Insert,
			OldIndex: iEnd,
			NewIndex: j,
			NewText:  b[j],
		})
	}
	return edits
}
