package extract

import (
	"strings"

	"github.com/fwojciec/cppguts"
)

// resolve runs after the whole buffer has been parsed. It merges each
// out-of-class definition into the in-class prototype with the same
// identity key, drops free function prototypes that are redundant with a
// definition or an earlier prototype, and rejects duplicate identity keys.
func (p *parser) resolve(decls []cppguts.Declaration) ([]cppguts.Declaration, error) {
	classes := make(map[string]*cppguts.Declaration)
	namespaces := make(map[string]bool)
	var defs []*cppguts.Declaration

	err := walk(decls, func(d *cppguts.Declaration) error {
		switch d.Kind {
		case cppguts.KindClass:
			name := d.QualifiedName()
			if first, ok := classes[name]; ok {
				return &cppguts.IdentityAmbiguityError{File: p.file, Key: name, First: first.Span, Second: d.Span}
			}
			classes[name] = d
		case cppguts.KindNamespace:
			namespaces[d.QualifiedName()] = true
		case cppguts.KindOutOfClassMethodDef:
			defs = append(defs, d)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, def := range defs {
		if err := p.attach(def, classes, namespaces); err != nil {
			return nil, err
		}
	}

	defined := make(map[string]bool)
	_ = walk(decls, func(d *cppguts.Declaration) error {
		if d.Kind == cppguts.KindFunction && d.HasBody {
			defined[d.Key()] = true
		}
		return nil
	})
	decls = dropPrototypes(decls, defined, make(map[string]bool))

	bodies := make(map[string]cppguts.Span)
	protos := make(map[string]cppguts.Span)
	err = walk(decls, func(d *cppguts.Declaration) error {
		if !d.Kind.IsFunction() || d.Attached {
			return nil
		}
		key := d.Key()
		seen := protos
		if d.HasBody {
			seen = bodies
		} else if d.Kind != cppguts.KindMethod {
			return nil
		}
		if first, ok := seen[key]; ok {
			return &cppguts.IdentityAmbiguityError{File: p.file, Key: key, First: first, Second: d.Span}
		}
		seen[key] = d.Span
		return nil
	})
	if err != nil {
		return nil, err
	}

	return decls, nil
}

// attach resolves the written qualifier of def from its lexical scope
// outwards. A class qualifier merges def into the matching prototype; a
// namespace qualifier makes def a free function in that namespace. A
// qualifier naming nothing in this buffer leaves def as a standalone
// out-of-class definition, as in a .cpp file whose class lives in a header.
func (p *parser) attach(def *cppguts.Declaration, classes map[string]*cppguts.Declaration, namespaces map[string]bool) error {
	q := p.written[def.Span.Start]
	for s := q.scope; ; s = parentScope(s) {
		target := joinScope(s, q.name)
		if c, ok := classes[target]; ok {
			return p.attachToClass(def, c)
		}
		if namespaces[target] {
			def.Kind = cppguts.KindFunction
			def.Scope = target
			return nil
		}
		if s == "" {
			break
		}
	}
	def.Owner = def.Scope
	return nil
}

func (p *parser) attachToClass(def, class *cppguts.Declaration) error {
	owner := class.QualifiedName()
	def.Scope = owner
	def.Owner = owner
	key := def.Key()

	var candidates []*cppguts.Declaration
	for i := range class.Members {
		m := &class.Members[i]
		if m.Kind != cppguts.KindMethod || m.Name != def.Name {
			continue
		}
		if m.Key() != key {
			candidates = append(candidates, m)
			continue
		}
		if m.HasBody {
			return &cppguts.IdentityAmbiguityError{File: p.file, Key: key, First: m.Span, Second: def.Span}
		}
		m.HasBody = true
		m.Body = def.Body
		m.BodySpan = def.BodySpan
		m.Definition = def.Span
		m.OutOfClass = true
		def.Attached = true
		return nil
	}

	if len(candidates) > 0 {
		keys := make([]string, len(candidates))
		for i, c := range candidates {
			keys[i] = c.Key()
		}
		return &cppguts.MismatchedArityError{
			File:       p.file,
			Key:        key,
			Prototypes: keys,
			Prototype:  candidates[0].Span,
			Definition: def.Span,
		}
	}
	return nil
}

func dropPrototypes(decls []cppguts.Declaration, defined, seen map[string]bool) []cppguts.Declaration {
	out := decls[:0]
	for _, d := range decls {
		if d.Kind == cppguts.KindNamespace {
			d.Members = dropPrototypes(d.Members, defined, seen)
		}
		if d.Kind == cppguts.KindFunction && !d.HasBody {
			key := d.Key()
			if defined[key] || seen[key] {
				continue
			}
			seen[key] = true
		}
		out = append(out, d)
	}
	return out
}

func walk(decls []cppguts.Declaration, fn func(d *cppguts.Declaration) error) error {
	for i := range decls {
		if err := fn(&decls[i]); err != nil {
			return err
		}
		if err := walk(decls[i].Members, fn); err != nil {
			return err
		}
	}
	return nil
}

func parentScope(s string) string {
	if i := strings.LastIndex(s, "::"); i >= 0 {
		return s[:i]
	}
	return ""
}
