// Package match pairs the declarations of two translation units by
// identity key and classifies every key as unchanged, modified, added or
// removed.
package match

import (
	"fmt"

	"github.com/fwojciec/cppguts"
	"github.com/fwojciec/cppguts/stmtdiff"
)

// Compile-time interface verification.
var _ cppguts.Matcher = (*Matcher)(nil)

// Matcher implements cppguts.Matcher.
type Matcher struct {
	Differ cppguts.BodyDiffer
}

// NewMatcher creates a Matcher that diffs bodies with a stmtdiff.Differ.
func NewMatcher() *Matcher {
	return &Matcher{Differ: stmtdiff.NewDiffer()}
}

// Match compares old against new. Results follow the declaration order
// of old, with keys only present in new appended in their order. Classes
// and namespaces carry the results of their members.
func (m *Matcher) Match(old, new *cppguts.TranslationUnit) (*cppguts.Report, error) {
	if old == nil || new == nil {
		return nil, fmt.Errorf("match: %w", cppguts.ErrNoInput)
	}
	return &cppguts.Report{
		OldName: old.Name,
		NewName: new.Name,
		Results: m.matchScope(old.Decls, new.Decls),
	}, nil
}

// entry is one identity key in a scope. Reopened namespaces share an
// entry holding the union of their members.
type entry struct {
	key  string
	decl *cppguts.Declaration
}

// index lists the keyed declarations of one scope in source order.
func index(decls []cppguts.Declaration) ([]entry, map[string]*cppguts.Declaration) {
	var entries []entry
	byKey := make(map[string]*cppguts.Declaration, len(decls))
	for i := range decls {
		d := &decls[i]
		if d.Attached {
			continue
		}
		key := d.Key()
		if prev, ok := byKey[key]; ok && prev.Kind == cppguts.KindNamespace && d.Kind == cppguts.KindNamespace {
			prev.Members = append(append([]cppguts.Declaration{}, prev.Members...), d.Members...)
			continue
		}
		if d.Kind == cppguts.KindNamespace {
			// Copy so merging never writes into the translation unit.
			ns := *d
			d = &ns
		}
		byKey[key] = d
		entries = append(entries, entry{key: key, decl: d})
	}
	return entries, byKey
}

func (m *Matcher) matchScope(old, new []cppguts.Declaration) []cppguts.MatchResult {
	oldEntries, oldByKey := index(old)
	newEntries, newByKey := index(new)

	var results []cppguts.MatchResult
	for _, e := range oldEntries {
		n, ok := newByKey[e.key]
		switch {
		case !ok:
			results = append(results, single(e.decl, cppguts.Removed))
		case !sameKind(e.decl, n):
			results = append(results, single(e.decl, cppguts.Removed), single(n, cppguts.Added))
		default:
			results = append(results, m.compare(e.decl, n))
		}
	}
	for _, e := range newEntries {
		if _, ok := oldByKey[e.key]; !ok {
			results = append(results, single(e.decl, cppguts.Added))
		}
	}
	return results
}

func sameKind(a, b *cppguts.Declaration) bool {
	if a.Kind.IsFunction() && b.Kind.IsFunction() {
		return true
	}
	return a.Kind == b.Kind
}

// single builds the result for a declaration present on one side only.
// Members inherit the status.
func single(d *cppguts.Declaration, status cppguts.Status) cppguts.MatchResult {
	res := cppguts.MatchResult{Key: d.Key(), Kind: d.Kind, Status: status}
	if status == cppguts.Added {
		res.NewSpan = d.DefinitionSpan()
	} else {
		res.OldSpan = d.DefinitionSpan()
	}
	entries, _ := index(d.Members)
	for _, e := range entries {
		res.Members = append(res.Members, single(e.decl, status))
	}
	for _, f := range d.Fields {
		fc := cppguts.FieldChange{Name: f.Name, Status: status}
		if status == cppguts.Added {
			fc.NewType = f.Type
		} else {
			fc.OldType = f.Type
		}
		res.Fields = append(res.Fields, fc)
	}
	return res
}

func (m *Matcher) compare(o, n *cppguts.Declaration) cppguts.MatchResult {
	res := cppguts.MatchResult{
		Key:     o.Key(),
		Kind:    n.Kind,
		Status:  cppguts.Unchanged,
		OldSpan: o.DefinitionSpan(),
		NewSpan: n.DefinitionSpan(),
	}

	if !o.Kind.IsFunction() {
		res.Members = m.matchScope(o.Members, n.Members)
		res.Fields = compareFields(o.Fields, n.Fields)
		res.SignatureChanged = o.ClassKey != n.ClassKey
		if res.SignatureChanged || len(res.Fields) > 0 || anyChanged(res.Members) {
			res.Status = cppguts.Modified
		}
		return res
	}

	res.SignatureChanged = signatureChanged(o, n)
	if o.HasBody && n.HasBody {
		if edits := m.Differ.Diff(o.Body, n.Body); len(edits) > 0 {
			res.Edits = edits
		}
	}
	if res.SignatureChanged || len(res.Edits) > 0 || o.HasBody != n.HasBody {
		res.Status = cppguts.Modified
	}
	return res
}

func anyChanged(results []cppguts.MatchResult) bool {
	for _, r := range results {
		if r.Status != cppguts.Unchanged {
			return true
		}
	}
	return false
}

// signatureChanged compares the parts of a function signature that the
// identity key leaves out.
func signatureChanged(o, n *cppguts.Declaration) bool {
	if o.ReturnType != n.ReturnType ||
		o.Virtual != n.Virtual ||
		o.Static != n.Static ||
		o.Inline != n.Inline ||
		o.Pure != n.Pure ||
		len(o.Params) != len(n.Params) {
		return true
	}
	for i := range o.Params {
		if o.Params[i].Name != n.Params[i].Name || o.Params[i].Default != n.Params[i].Default {
			return true
		}
	}
	return false
}

// compareFields returns the member variables that differ by name or type.
func compareFields(old, new []cppguts.Field) []cppguts.FieldChange {
	newByName := make(map[string]cppguts.Field, len(new))
	for _, f := range new {
		newByName[f.Name] = f
	}
	oldByName := make(map[string]bool, len(old))

	var changes []cppguts.FieldChange
	for _, f := range old {
		oldByName[f.Name] = true
		nf, ok := newByName[f.Name]
		switch {
		case !ok:
			changes = append(changes, cppguts.FieldChange{Name: f.Name, Status: cppguts.Removed, OldType: f.Type})
		case nf.Type != f.Type:
			changes = append(changes, cppguts.FieldChange{Name: f.Name, Status: cppguts.Modified, OldType: f.Type, NewType: nf.Type})
		}
	}
	for _, f := range new {
		if !oldByName[f.Name] {
			changes = append(changes, cppguts.FieldChange{Name: f.Name, Status: cppguts.Added, NewType: f.Type})
		}
	}
	return changes
}
