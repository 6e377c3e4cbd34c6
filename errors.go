package cppguts

import (
	"errors"
	"fmt"
)

// ErrNoMatchingDefinition is returned by a splice when a source definition
// has no counterpart in the destination.
var ErrNoMatchingDefinition = errors.New("no matching definition")

// ErrNoChanges is returned when an operation finds nothing to do, such as
// a splice whose source holds no definitions.
var ErrNoChanges = errors.New("no changes")

// ErrNoInput is returned when a required translation unit or buffer is
// missing.
var ErrNoInput = errors.New("no input")

// ParseError reports malformed input. The whole extraction fails; no
// partial TranslationUnit is returned.
type ParseError struct {
	File     string // Logical file identifier
	Offset   int    // Byte offset of the offending input
	Line     int    // 1-based line of Offset
	Expected string // What the parser expected to find
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d: parse error at offset %d: expected %s", e.File, e.Line, e.Offset, e.Expected)
}

// IdentityAmbiguityError reports two declarations in one translation unit
// that resolve to the same identity key.
type IdentityAmbiguityError struct {
	File   string
	Key    string
	First  Span
	Second Span
}

// Error implements the error interface.
func (e *IdentityAmbiguityError) Error() string {
	return fmt.Sprintf("%s: %s declared at line %d and again at line %d",
		e.File, e.Key, e.First.StartLine, e.Second.StartLine)
}

// MismatchedArityError reports an out-of-class definition whose parameter
// list matches none of the same-named prototypes in its class.
type MismatchedArityError struct {
	File       string
	Key        string   // Key of the out-of-class definition
	Prototypes []string // Keys of the same-named in-class prototypes
	Prototype  Span     // First same-named prototype
	Definition Span
}

// Error implements the error interface.
func (e *MismatchedArityError) Error() string {
	return fmt.Sprintf("%s:%d: definition %s matches no prototype (line %d declares %v)",
		e.File, e.Definition.StartLine, e.Key, e.Prototype.StartLine, e.Prototypes)
}

// UnknownNameError is returned when decoding an unrecognized enum name.
type UnknownNameError struct {
	Type string
	Name string
}

// Error implements the error interface.
func (e *UnknownNameError) Error() string {
	return fmt.Sprintf("unknown %s %q", e.Type, e.Name)
}
