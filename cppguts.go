// Package cppguts provides domain types for structurally comparing two
// versions of a C++ translation unit.
package cppguts

import (
	"context"
	"fmt"
	"strings"
)

// Span locates a region of source text.
type Span struct {
	Start     int `json:"start"`      // Byte offset of the first byte
	End       int `json:"end"`        // Byte offset one past the last byte
	StartLine int `json:"start_line"` // 1-based line of Start
	EndLine   int `json:"end_line"`   // 1-based line of the last byte
}

// Text returns the slice of src covered by the span.
func (s Span) Text(src string) string {
	if s.Start < 0 || s.End > len(src) || s.Start > s.End {
		return ""
	}
	return src[s.Start:s.End]
}

// Lines formats the span's line range as " @12" or " @12-15", or "" for
// an unset span.
func (s Span) Lines() string {
	switch {
	case s.IsZero():
		return ""
	case s.StartLine == s.EndLine:
		return fmt.Sprintf(" @%d", s.StartLine)
	default:
		return fmt.Sprintf(" @%d-%d", s.StartLine, s.EndLine)
	}
}

// IsZero reports whether the span is unset.
func (s Span) IsZero() bool {
	return s == Span{}
}

// DeclKind identifies the variant of a Declaration.
type DeclKind int

// Declaration kinds.
const (
	KindFunction            DeclKind = iota // Free function at file or namespace scope
	KindNamespace                           // Namespace block
	KindClass                               // Class, struct or union
	KindOutOfClassMethodDef                 // ClassName::method(...) { ... } outside the class body
	KindMethod                              // Member function declared inside a class body
)

var declKindNames = [...]string{
	KindFunction:            "function",
	KindNamespace:           "namespace",
	KindClass:               "class",
	KindOutOfClassMethodDef: "out-of-class-method",
	KindMethod:              "method",
}

func (k DeclKind) String() string {
	if int(k) < len(declKindNames) {
		return declKindNames[k]
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (k DeclKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *DeclKind) UnmarshalText(b []byte) error {
	for i, name := range declKindNames {
		if name == string(b) {
			*k = DeclKind(i)
			return nil
		}
	}
	return &UnknownNameError{Type: "declaration kind", Name: string(b)}
}

// IsFunction reports whether declarations of this kind carry a parameter
// list and possibly a body.
func (k DeclKind) IsFunction() bool {
	return k == KindFunction || k == KindMethod || k == KindOutOfClassMethodDef
}

// Param is one entry of a parameter list.
type Param struct {
	Type    string `json:"type"`              // Normalized type, e.g. "const std::string&"
	Name    string `json:"name,omitempty"`    // Empty for unnamed parameters
	Default string `json:"default,omitempty"` // Default argument text, if any
}

// Field is a member variable of a class.
type Field struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Span Span   `json:"span"`
}

// Statement is one statement of a function body.
type Statement struct {
	Text string `json:"text"` // Raw source, comments included
	Norm string `json:"norm"` // Comment- and whitespace-insensitive form used for equality
	Span Span   `json:"span"`
}

// Declaration is a free function, namespace, class, method or out-of-class
// method definition extracted from a translation unit.
type Declaration struct {
	Kind       DeclKind `json:"kind"`
	Name       string   `json:"name"`            // Unqualified name, e.g. "add" or "~Src"
	Scope      string   `json:"scope,omitempty"` // Enclosing qualified scope, e.g. "ns::Src"
	ReturnType string   `json:"return_type,omitempty"`
	Params     []Param  `json:"params,omitempty"`

	Const    bool   `json:"const,omitempty"`
	Virtual  bool   `json:"virtual,omitempty"`
	Static   bool   `json:"static,omitempty"`
	Inline   bool   `json:"inline,omitempty"`
	Pure     bool   `json:"pure,omitempty"`   // "= 0"
	RefQual  string `json:"ref,omitempty"`    // "&" or "&&" after the parameter list
	Access   string `json:"access,omitempty"` // public, protected or private for members
	ClassKey string `json:"class_key,omitempty"`

	// HasBody distinguishes an empty body "{}" from a prototype.
	HasBody bool        `json:"has_body"`
	Body    []Statement `json:"body,omitempty"`

	Span     Span `json:"span"`      // Whole declaration as written in place
	BodySpan Span `json:"body_span"` // Braces included; zero without a body

	// Definition is the span of the out-of-class definition that supplied
	// Body for an in-class prototype.
	Definition Span `json:"definition"`
	OutOfClass bool `json:"out_of_class,omitempty"`

	// Owner is the qualified class name an out-of-class definition belongs
	// to. Attached is set once it has been merged into a prototype.
	Owner    string `json:"owner,omitempty"`
	Attached bool   `json:"attached,omitempty"`

	Members []Declaration `json:"members,omitempty"`
	Fields  []Field       `json:"fields,omitempty"`
}

// QualifiedName returns Scope::Name, or Name at file scope.
func (d *Declaration) QualifiedName() string {
	if d.Scope == "" {
		return d.Name
	}
	return d.Scope + "::" + d.Name
}

// ParamTypes returns the normalized parameter types in order.
func (d *Declaration) ParamTypes() []string {
	types := make([]string, len(d.Params))
	for i, p := range d.Params {
		types[i] = p.Type
	}
	return types
}

// Key returns the identity key used to pair declarations across versions:
// qualified name, parameter types and method qualifiers. Namespaces and
// classes are keyed by qualified name alone.
func (d *Declaration) Key() string {
	if !d.Kind.IsFunction() {
		return d.QualifiedName()
	}
	return FunctionKey(d.QualifiedName(), d.ParamTypes(), d.Const, d.RefQual)
}

// FunctionKey formats an identity key for a function-like declaration.
func FunctionKey(qualifiedName string, paramTypes []string, isConst bool, refQual string) string {
	var sb strings.Builder
	sb.WriteString(qualifiedName)
	sb.WriteByte('(')
	sb.WriteString(strings.Join(paramTypes, ","))
	sb.WriteByte(')')
	if isConst {
		sb.WriteString(" const")
	}
	sb.WriteString(refQual)
	return sb.String()
}

// DefinitionSpan returns the span of the text that defines the
// declaration's body: the out-of-class definition when there is one,
// otherwise the declaration itself.
func (d *Declaration) DefinitionSpan() Span {
	if d.OutOfClass {
		return d.Definition
	}
	return d.Span
}

// Norms returns the normalized text of each body statement.
func (d *Declaration) Norms() []string {
	norms := make([]string, len(d.Body))
	for i, s := range d.Body {
		norms[i] = s.Norm
	}
	return norms
}

// TranslationUnit is the ordered set of top-level declarations of one
// source buffer. It is immutable once returned by an Extractor.
type TranslationUnit struct {
	Name   string        `json:"name"` // Logical file identifier used in errors
	Source string        `json:"-"`
	Decls  []Declaration `json:"decls"`
}

// Walk calls fn for every declaration in source order, depth first.
// Returning false from fn skips the declaration's members.
func (tu *TranslationUnit) Walk(fn func(d *Declaration) bool) {
	walkDecls(tu.Decls, fn)
}

func walkDecls(decls []Declaration, fn func(d *Declaration) bool) {
	for i := range decls {
		if fn(&decls[i]) {
			walkDecls(decls[i].Members, fn)
		}
	}
}

// Definitions returns every declaration that carries a body, keyed by
// identity key. Out-of-class definitions already merged into a prototype
// are reported through the prototype.
func (tu *TranslationUnit) Definitions() map[string]*Declaration {
	defs := make(map[string]*Declaration)
	tu.Walk(func(d *Declaration) bool {
		if d.Kind.IsFunction() && d.HasBody && !d.Attached {
			defs[d.Key()] = d
		}
		return true
	})
	return defs
}

// Extractor parses source text into a TranslationUnit.
type Extractor interface {
	// Extract parses src. name identifies the buffer in errors.
	Extract(name, src string) (*TranslationUnit, error)
}

// BodyDiffer computes statement-level edits between two bodies.
type BodyDiffer interface {
	// Diff returns the ordered edits that turn old into new.
	// Statements compare equal when their Norm fields are equal.
	Diff(old, new []Statement) []StatementEdit
}

// Matcher pairs the declarations of two translation units.
type Matcher interface {
	Match(old, new *TranslationUnit) (*Report, error)
}

// Source is an in-memory buffer with its logical file identifier.
type Source struct {
	Name string
	Text string
}

// Pair is one (old, new) comparison job.
type Pair struct {
	Old Source
	New Source
}

// Comparer runs the full extract, match and diff pipeline on one pair.
type Comparer interface {
	Compare(ctx context.Context, pair Pair) (*Report, error)
}

// Viewer displays a report to the user.
type Viewer interface {
	// View displays the report and blocks until the user exits.
	View(ctx context.Context, report *Report) error
}

// GitRunner reads file contents from git history.
type GitRunner interface {
	// ShowFile returns the contents of path at revision rev in the
	// repository at repoPath.
	ShowFile(ctx context.Context, repoPath, rev, path string) (string, error)
}

// ReportSaver persists reports.
type ReportSaver interface {
	Save(path string, report *Report) error
}

// ReportLoader reads reports saved by a ReportSaver.
type ReportLoader interface {
	Load(path string) (*Report, error)
}

// Patcher produces and applies unified patches.
type Patcher interface {
	// Unified returns a unified diff turning old into new, or an empty
	// string when they are equal.
	Unified(name, old, new string) string
	// Apply applies a unified patch to original and returns the result.
	Apply(original, patch string) (string, error)
}

// Clipboard provides copy-to-clipboard functionality.
type Clipboard interface {
	Copy(content string) error
}
