package extract

import (
	"strings"

	"github.com/fwojciec/cppguts"
	"github.com/fwojciec/cppguts/lexer"
	sitter "github.com/smacker/go-tree-sitter"
)

// specifiers are dropped from the return type and recorded as flags.
var specifiers = map[string]bool{
	"virtual": true, "static": true, "inline": true, "explicit": true,
	"constexpr": true, "consteval": true, "extern": true, "friend": true,
}

// declarators are the node types that may name an entity in a
// declaration.
var declarators = map[string]bool{
	"identifier": true, "field_identifier": true, "qualified_identifier": true,
	"destructor_name": true, "operator_name": true, "operator_cast": true,
	"template_function": true, "pointer_declarator": true,
	"reference_declarator": true, "array_declarator": true,
	"function_declarator": true, "parenthesized_declarator": true,
	"init_declarator": true, "attributed_declarator": true,
}

// atomic nodes are rendered from their source text instead of their
// children.
var atomic = map[string]bool{
	"string_literal": true, "raw_string_literal": true, "char_literal": true,
	"number_literal": true, "system_lib_string": true, "user_defined_literal": true,
}

// conditionals are preprocessor branches whose contents belong to the
// enclosing scope or block.
var conditionals = map[string]bool{
	"preproc_if": true, "preproc_ifdef": true, "preproc_else": true,
	"preproc_elif": true, "preproc_elifdef": true,
}

// parseScope reads the declarations among the children of list, a
// translation unit, declaration list, class body or preprocessor branch.
// Member variables are returned when sc is a class scope.
func (p *parser) parseScope(list *sitter.Node, sc scope) ([]cppguts.Declaration, []cppguts.Field, error) {
	var decls []cppguts.Declaration
	var fields []cppguts.Field

	for i := 0; i < int(list.ChildCount()); i++ {
		c := list.Child(i)
		if c.Type() == "access_specifier" {
			if sc.class != "" {
				sc.access = strings.TrimSpace(strings.TrimSuffix(p.text(c), ":"))
			}
			continue
		}
		if !c.IsNamed() || c.Type() == "comment" {
			continue
		}
		ds, fs, err := p.parseItem(c, c, sc)
		if err != nil {
			return nil, nil, err
		}
		decls = append(decls, ds...)
		if sc.class != "" {
			fields = append(fields, fs...)
		}
	}

	return decls, fields, nil
}

// parseItem reads one declaration node. outer is the node that spans the
// whole declaration, which differs from n when a template header comes
// first.
func (p *parser) parseItem(n, outer *sitter.Node, sc scope) ([]cppguts.Declaration, []cppguts.Field, error) {
	switch typ := n.Type(); {
	case typ == "namespace_definition":
		d, err := p.parseNamespace(n, sc)
		if err != nil {
			return nil, nil, err
		}
		return []cppguts.Declaration{*d}, nil, nil

	case typ == "linkage_specification":
		body := n.ChildByFieldName("body")
		if body == nil {
			return nil, nil, nil
		}
		if body.Type() == "declaration_list" {
			return p.parseScope(body, sc)
		}
		return p.parseItem(body, body, sc)

	case typ == "template_declaration":
		inner := templated(n)
		if inner == nil {
			return nil, nil, nil
		}
		return p.parseItem(inner, outer, sc)

	case conditionals[typ]:
		return p.parseScope(n, sc)

	case isClassSpecifier(typ):
		if n.ChildByFieldName("body") == nil {
			return nil, nil, nil
		}
		d, err := p.parseClass(n, outer, sc)
		if err != nil {
			return nil, nil, err
		}
		return []cppguts.Declaration{*d}, nil, nil

	case typ == "function_definition":
		fd := functionDeclarator(n.ChildByFieldName("declarator"))
		if fd == nil {
			return nil, nil, nil
		}
		d, err := p.parseFunction(n, outer, fd, sc)
		if err != nil {
			return nil, nil, err
		}
		return []cppguts.Declaration{*d}, nil, nil

	case typ == "declaration", typ == "field_declaration":
		return p.parseDeclaration(n, outer, sc)
	}

	// using, typedef, static_assert, friend, enum and directives.
	return nil, nil, nil
}

// parseDeclaration reads a declaration that is not a function
// definition: a class definition with declarators, prototypes or
// variables.
func (p *parser) parseDeclaration(n, outer *sitter.Node, sc scope) ([]cppguts.Declaration, []cppguts.Field, error) {
	var decls []cppguts.Declaration
	var fields []cppguts.Field

	typ := n.ChildByFieldName("type")
	if typ != nil && isClassSpecifier(typ.Type()) && typ.ChildByFieldName("body") != nil {
		d, err := p.parseClass(typ, outer, sc)
		if err != nil {
			return nil, nil, err
		}
		return []cppguts.Declaration{*d}, nil, nil
	}

	for _, d := range declaratorsOf(n, typ) {
		if fd := functionDeclarator(d); fd != nil {
			decl, err := p.parseFunction(n, outer, fd, sc)
			if err != nil {
				return nil, nil, err
			}
			decls = append(decls, *decl)
			continue
		}
		if sc.class == "" || n.Type() != "field_declaration" {
			continue
		}
		if f, ok := p.parseField(n, d); ok {
			fields = append(fields, f)
		}
	}
	return decls, fields, nil
}

func (p *parser) parseNamespace(n *sitter.Node, sc scope) (*cppguts.Declaration, error) {
	name := "(anonymous)"
	if nm := n.ChildByFieldName("name"); nm != nil {
		name = p.norm(nm, nil)
	}
	var members []cppguts.Declaration
	if body := n.ChildByFieldName("body"); body != nil {
		var err error
		members, _, err = p.parseScope(body, sc.child(name))
		if err != nil {
			return nil, err
		}
	}
	return &cppguts.Declaration{
		Kind:    cppguts.KindNamespace,
		Name:    name,
		Scope:   sc.qualified(),
		Span:    p.nodeSpan(n),
		Members: members,
	}, nil
}

// parseClass reads a class specifier with a body. The name keeps any
// template arguments, so a specialization X<int> is distinct from X.
func (p *parser) parseClass(n, outer *sitter.Node, sc scope) (*cppguts.Declaration, error) {
	key := strings.TrimSuffix(n.Type(), "_specifier")
	name := "(anonymous)"
	if nm := n.ChildByFieldName("name"); nm != nil {
		name = p.norm(nm, nil)
	}

	child := sc.child(name)
	child.class = name
	child.access = "private"
	if key != "class" {
		child.access = "public"
	}

	members, fields, err := p.parseScope(n.ChildByFieldName("body"), child)
	if err != nil {
		return nil, err
	}

	span := p.nodeSpan(outer)
	if next := n.NextSibling(); same(n, outer) && next != nil && next.Type() == ";" {
		span = p.span(n.StartByte(), next.EndByte())
	}
	d := &cppguts.Declaration{
		Kind:     cppguts.KindClass,
		ClassKey: key,
		Name:     name,
		Scope:    sc.qualified(),
		Span:     span,
		Members:  members,
		Fields:   fields,
	}
	if sc.class != "" {
		d.Access = sc.access
	}
	return d, nil
}

// parseFunction builds a function declaration from n, a definition or a
// prototype whose function declarator is fd.
func (p *parser) parseFunction(n, outer, fd *sitter.Node, sc scope) (*cppguts.Declaration, error) {
	d := &cppguts.Declaration{}

	nameNode, sig := fd.ChildByFieldName("declarator"), fd
	if fd.Type() == "operator_cast" {
		// operator T() keeps its parameters in an abstract declarator.
		nameNode, sig = fd, fd.ChildByFieldName("declarator")
	}
	qual, name, ok := p.declName(nameNode)
	if !ok || sig == nil {
		return nil, p.errorAt(p.orig(fd.StartByte()), "function name")
	}
	d.Name = name
	d.Params = p.parseParams(sig.ChildByFieldName("parameters"))

	// Specifiers and the return type precede the declarator.
	top := topDeclarator(n, fd)
	var ret []string
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		if top != nil && c.StartByte() >= top.StartByte() {
			break
		}
		if c.Type() == "comment" || c.Type() == "attribute_declaration" {
			continue
		}
		if word := strings.TrimSpace(p.text(c)); specifiers[word] {
			switch word {
			case "virtual":
				d.Virtual = true
			case "static":
				d.Static = true
			case "inline":
				d.Inline = true
			}
			continue
		}
		ret = p.leaves(c, nil, ret)
	}
	// Pointer and reference wrappers around the function declarator.
	if top != nil && !same(top, fd) {
		ret = p.leaves(top, func(c *sitter.Node) bool { return same(c, fd) }, ret)
	}
	d.ReturnType = lexer.JoinText(ret)

	for i := 0; i < int(sig.ChildCount()); i++ {
		c := sig.Child(i)
		switch c.Type() {
		case "type_qualifier":
			if p.text(c) == "const" {
				d.Const = true
			}
		case "ref_qualifier", "&", "&&":
			d.RefQual = p.norm(c, nil)
		case "trailing_return_type":
			d.ReturnType = p.norm(c, func(c *sitter.Node) bool { return c.Type() == "->" })
		}
	}

	d.Pure = p.isPure(n)
	if body := n.ChildByFieldName("body"); body != nil {
		d.HasBody = true
		d.BodySpan = p.nodeSpan(body)
		d.Body = p.statements(blockOf(body))
	}
	d.Span = p.nodeSpan(outer)

	switch {
	case sc.class != "":
		d.Kind = cppguts.KindMethod
		d.Scope = sc.qualified()
		d.Access = sc.access
	case qual != "":
		d.Kind = cppguts.KindOutOfClassMethodDef
		d.Scope = joinScope(sc.qualified(), qual)
		p.written[d.Span.Start] = qualifier{scope: sc.qualified(), name: qual}
	default:
		d.Kind = cppguts.KindFunction
		d.Scope = sc.qualified()
	}
	return d, nil
}

// declName splits a function's declarator name into its written
// qualifier and its unqualified name.
func (p *parser) declName(n *sitter.Node) (qual, name string, ok bool) {
	if n == nil {
		return "", "", false
	}
	switch n.Type() {
	case "identifier", "field_identifier", "type_identifier":
		return "", p.text(n), true
	case "destructor_name", "operator_name":
		return "", p.norm(n, nil), true
	case "template_function":
		return p.declName(n.ChildByFieldName("name"))
	case "operator_cast":
		return "", "operator " + p.norm(n.ChildByFieldName("type"), nil), true
	case "qualified_identifier":
		q, nm, ok := p.declName(n.ChildByFieldName("name"))
		if s := n.ChildByFieldName("scope"); s != nil {
			q = joinScope(p.norm(s, nil), q)
		}
		return q, nm, ok
	}
	return "", "", false
}

func (p *parser) parseParams(list *sitter.Node) []cppguts.Param {
	if list == nil {
		return nil
	}
	var params []cppguts.Param
	for i := 0; i < int(list.ChildCount()); i++ {
		c := list.Child(i)
		switch c.Type() {
		case "...":
			params = append(params, cppguts.Param{Type: "..."})
		case "parameter_declaration", "optional_parameter_declaration", "variadic_parameter_declaration":
			params = append(params, p.parseParam(c))
		}
	}
	if len(params) == 1 && params[0].Type == "void" && params[0].Name == "" {
		return nil
	}
	return params
}

// parseParam renders a parameter's type from every token except its name
// and default value.
func (p *parser) parseParam(n *sitter.Node) cppguts.Param {
	var param cppguts.Param
	nameNode := nameOf(n.ChildByFieldName("declarator"))
	if nameNode != nil {
		param.Name = p.text(nameNode)
	}
	end := n.EndByte()
	if def := n.ChildByFieldName("default_value"); def != nil {
		param.Default = p.norm(def, nil)
		for i := 0; i < int(n.ChildCount()); i++ {
			if c := n.Child(i); c.Type() == "=" {
				end = c.StartByte()
				break
			}
		}
	}
	param.Type = p.norm(n, func(c *sitter.Node) bool {
		return same(c, nameNode) || c.StartByte() >= end
	})
	return param
}

// parseField renders a member variable declared by d within the field
// declaration n. The type is every specifier before the first declarator
// plus d without its name.
func (p *parser) parseField(n, d *sitter.Node) (cppguts.Field, bool) {
	nameNode := nameOf(d)
	if nameNode == nil {
		return cppguts.Field{}, false
	}
	var typ []string
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		if declarators[c.Type()] && !same(c, n.ChildByFieldName("type")) {
			break
		}
		if word := p.text(c); word == "mutable" || word == "inline" || c.Type() == "comment" {
			continue
		}
		typ = p.leaves(c, nil, typ)
	}
	if d.Type() == "init_declarator" {
		d = d.ChildByFieldName("declarator")
	}
	typ = p.leaves(d, func(c *sitter.Node) bool { return same(c, nameNode) }, typ)
	return cppguts.Field{
		Name: p.text(nameNode),
		Type: lexer.JoinText(typ),
		Span: p.nodeSpan(n),
	}, true
}

// isPure reports whether a prototype ends in "= 0".
func (p *parser) isPure(n *sitter.Node) bool {
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		if c.Type() == "pure_virtual_clause" {
			return true
		}
		if c.Type() == "=" && i+1 < int(n.ChildCount()) && p.text(n.Child(i+1)) == "0" {
			return true
		}
	}
	return false
}

// leaves appends the token texts below n to out in source order,
// skipping comments and any subtree for which skip returns true.
func (p *parser) leaves(n *sitter.Node, skip func(*sitter.Node) bool, out []string) []string {
	if n == nil || (skip != nil && skip(n)) || n.Type() == "comment" {
		return out
	}
	if n.ChildCount() == 0 || atomic[n.Type()] || strings.HasPrefix(n.Type(), "preproc_") {
		if text := strings.Join(strings.Fields(p.text(n)), " "); text != "" {
			out = append(out, text)
		}
		return out
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		out = p.leaves(n.Child(i), skip, out)
	}
	return out
}

// norm renders n in normalized form.
func (p *parser) norm(n *sitter.Node, skip func(*sitter.Node) bool) string {
	return lexer.JoinText(p.leaves(n, skip, nil))
}

// templated returns the declaration a template header introduces.
func templated(n *sitter.Node) *sitter.Node {
	params := n.ChildByFieldName("parameters")
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		if same(c, params) || c.Type() == "comment" {
			continue
		}
		return c
	}
	return nil
}

// declaratorsOf returns the declarators of n in order, skipping its type
// and initializers.
func declaratorsOf(n, typ *sitter.Node) []*sitter.Node {
	var out []*sitter.Node
	afterEq := false
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		switch {
		case c.Type() == "=":
			afterEq = true
		case c.Type() == ",":
			afterEq = false
		case afterEq || same(c, typ):
		case declarators[c.Type()]:
			out = append(out, c)
		}
	}
	return out
}

// functionDeclarator returns the function declarator inside pointer and
// reference wrappers, or nil when d does not declare a function. A
// parenthesized name, as in "void (*cb)(int)", declares a pointer.
func functionDeclarator(d *sitter.Node) *sitter.Node {
	for d != nil {
		switch d.Type() {
		case "operator_cast":
			return d
		case "function_declarator":
			if inner := d.ChildByFieldName("declarator"); inner != nil && inner.Type() == "parenthesized_declarator" {
				return nil
			}
			return d
		case "pointer_declarator", "reference_declarator", "attributed_declarator":
			d = innerDeclarator(d)
		default:
			return nil
		}
	}
	return nil
}

// topDeclarator returns the child of n that contains fd.
func topDeclarator(n, fd *sitter.Node) *sitter.Node {
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		if c.StartByte() <= fd.StartByte() && c.EndByte() >= fd.EndByte() && declarators[c.Type()] {
			return c
		}
	}
	return nil
}

func innerDeclarator(d *sitter.Node) *sitter.Node {
	if inner := d.ChildByFieldName("declarator"); inner != nil {
		return inner
	}
	// Reference declarators carry no field name.
	if c := int(d.NamedChildCount()); c > 0 {
		return d.NamedChild(c - 1)
	}
	return nil
}

// nameOf returns the identifier a declarator declares, or nil for an
// abstract declarator.
func nameOf(d *sitter.Node) *sitter.Node {
	for d != nil {
		switch d.Type() {
		case "identifier", "field_identifier":
			return d
		case "pointer_declarator", "reference_declarator", "array_declarator",
			"function_declarator", "parenthesized_declarator", "init_declarator",
			"attributed_declarator":
			d = innerDeclarator(d)
		default:
			return nil
		}
	}
	return nil
}

// blockOf returns the compound statement of a function body, looking
// through a function-try-block.
func blockOf(body *sitter.Node) *sitter.Node {
	if body.Type() == "try_statement" {
		if b := body.ChildByFieldName("body"); b != nil {
			return b
		}
	}
	return body
}

func isClassSpecifier(typ string) bool {
	return typ == "class_specifier" || typ == "struct_specifier" || typ == "union_specifier"
}

// same reports whether a and b are the same node.
func same(a, b *sitter.Node) bool {
	if a == nil || b == nil {
		return false
	}
	return a.StartByte() == b.StartByte() && a.EndByte() == b.EndByte() && a.Type() == b.Type()
}

func joinScope(outer, inner string) string {
	switch {
	case outer == "":
		return inner
	case inner == "":
		return outer
	default:
		return outer + "::" + inner
	}
}
