package extract

import (
	"strings"

	"github.com/fwojciec/cppguts"
	sitter "github.com/smacker/go-tree-sitter"
)

// statements splits a compound statement into its top-level statements.
// The lines of a preprocessor conditional are statements of their own,
// interleaved with the statements they guard.
func (p *parser) statements(block *sitter.Node) []cppguts.Statement {
	var stmts []cppguts.Statement
	for i := 0; i < int(block.ChildCount()); i++ {
		c := block.Child(i)
		switch {
		case c.Type() == "comment", !c.IsNamed():
		case conditionals[c.Type()]:
			stmts = p.conditional(c, stmts)
		default:
			stmts = append(stmts, p.statement(c))
		}
	}
	return stmts
}

// conditional appends the directive lines of n and the statements they
// guard to stmts.
func (p *parser) conditional(n *sitter.Node, stmts []cppguts.Statement) []cppguts.Statement {
	header := n.ChildByFieldName("condition")
	if header == nil {
		header = n.ChildByFieldName("name")
	}
	if header == nil && n.ChildCount() > 0 {
		header = n.Child(0)
	}
	if header == nil {
		return stmts
	}
	stmts = append(stmts, p.directive(n.StartByte(), header.EndByte()))

	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		switch {
		case c.StartByte() < header.EndByte(), c.Type() == "comment":
		case strings.HasPrefix(c.Type(), "#"):
			stmts = append(stmts, p.directive(c.StartByte(), c.EndByte()))
		case conditionals[c.Type()]:
			stmts = p.conditional(c, stmts)
		case c.IsNamed():
			stmts = append(stmts, p.statement(c))
		}
	}
	return stmts
}

func (p *parser) statement(n *sitter.Node) cppguts.Statement {
	sp := p.nodeSpan(n)
	return cppguts.Statement{
		Text: sp.Text(p.src),
		Norm: p.norm(n, nil),
		Span: sp,
	}
}

func (p *parser) directive(start, end uint32) cppguts.Statement {
	sp := p.span(start, end)
	text := sp.Text(p.src)
	return cppguts.Statement{
		Text: text,
		Norm: strings.Join(strings.Fields(text), " "),
		Span: sp,
	}
}
