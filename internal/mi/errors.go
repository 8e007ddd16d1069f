package mi

import (
	"errors"
	"fmt"
)

// Errors returned by the value model and the parser.
var (
	// ErrSyntax is matched by every grammar error.
	ErrSyntax = errors.New("mi: syntax error")

	// ErrTypeMismatch indicates a typed accessor was used on a value of
	// another shape.
	ErrTypeMismatch = errors.New("mi: type mismatch")

	// ErrPropertyNotFound indicates a missing property name.
	ErrPropertyNotFound = errors.New("mi: property not found")

	// ErrIndexOutOfRange indicates a list index outside the list.
	ErrIndexOutOfRange = errors.New("mi: index out of range")
)

// TypeMismatchError reports a typed access on a value of another shape.
type TypeMismatchError struct {
	// Name is the property name or list index, if known.
	Name string
	Want ValueType
	Got  ValueType
}

func (e *TypeMismatchError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("mi: type mismatch: want %s, got %s", e.Want, e.Got)
	}
	return fmt.Sprintf("mi: type mismatch for %s: want %s, got %s", e.Name, e.Want, e.Got)
}

// Is reports ErrTypeMismatch as a match.
func (e *TypeMismatchError) Is(target error) bool {
	return target == ErrTypeMismatch
}

// UnexpectedTokenError reports a byte that does not fit the grammar.
type UnexpectedTokenError struct {
	// Production is the grammar rule being read.
	Production string
	// Expected describes what the rule accepts at this point.
	Expected string
	// Actual is the byte that was found.
	Actual byte
}

func (e *UnexpectedTokenError) Error() string {
	return fmt.Sprintf("mi: unexpected token in %s: expected %s but got %q", e.Production, e.Expected, e.Actual)
}

// Is reports ErrSyntax as a match.
func (e *UnexpectedTokenError) Is(target error) bool {
	return target == ErrSyntax
}

// UnexpectedEOFError reports an end of stream in the middle of a message.
type UnexpectedEOFError struct {
	Production string
}

func (e *UnexpectedEOFError) Error() string {
	return fmt.Sprintf("mi: unexpected end of stream in %s", e.Production)
}

// Is reports ErrSyntax as a match.
func (e *UnexpectedEOFError) Is(target error) bool {
	return target == ErrSyntax
}

// ReadError wraps a failure of the underlying byte source.
type ReadError struct {
	Err error
}

func (e *ReadError) Error() string {
	return "mi: read: " + e.Err.Error()
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

// IsSyntaxError reports whether err is a grammar error.
func IsSyntaxError(err error) bool {
	return errors.Is(err, ErrSyntax)
}
