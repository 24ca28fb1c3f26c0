package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyFieldName is returned when a key is declared without name.
	ErrEmptyFieldName = errors.New("field name cannot be empty")
	// ErrNotFound is returned when a lookup that requires a result finds
	// nothing.
	ErrNotFound = errors.New("document not found")
	// ErrCursorClosed is returned when trying to perform operations on a
	// closed [Cursor].
	ErrCursorClosed = errors.New("cursor is closed")
	// ErrScanBeforeNext is returned when calling [Cursor.Scan] before
	// calling [Cursor.Next].
	ErrScanBeforeNext = errors.New("called Scan before calling Next")
	// ErrTargetNil is returned when a nil value is given as decode target.
	ErrTargetNil = errors.New("target interface is nil")
	// ErrNonPointer is returned when a non-pointer value is given as decode
	// target.
	ErrNonPointer = errors.New("target must be a pointer")
	// ErrConstraintViolated is returned by an [Index] when an action
	// cannot be performed because of a unique constraint.
	ErrConstraintViolated = errors.New("unique constraint violated")
)

// ErrInvalidSpecification is returned when a query specification is not a map.
// It is a programming error and should not be retried.
type ErrInvalidSpecification struct {
	// Type is the name of the type received.
	Type string
	// Field is set when a nested entry (such as conditions) is invalid.
	Field string
}

// Error implements [error].
func (e ErrInvalidSpecification) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid specification: %q should be a map, got %s", e.Field, e.Type)
	}
	return fmt.Sprintf("invalid specification: expected a map, got %s", e.Type)
}

// ErrReservedFieldName is returned when a key is declared with the reserved
// identifier alias.
type ErrReservedFieldName struct {
	Name string
}

// Error implements [error].
func (e ErrReservedFieldName) Error() string {
	return fmt.Sprintf("%q is reserved as an alias of the identifier field", e.Name)
}

// ErrDuplicateModel is returned when a model name is registered twice.
type ErrDuplicateModel struct {
	Name string
}

// Error implements [error].
func (e ErrDuplicateModel) Error() string {
	return fmt.Sprintf("model %q is already registered", e.Name)
}

// ErrUnknownModel is returned when a schema references a model that was not
// declared.
type ErrUnknownModel struct {
	Name string
}

// Error implements [error].
func (e ErrUnknownModel) Error() string {
	return fmt.Sprintf("unknown model %q", e.Name)
}

// ErrUnknownType is returned when a type tag does not name any coder.
type ErrUnknownType struct {
	Tag string
}

// Error implements [error].
func (e ErrUnknownType) Error() string {
	return fmt.Sprintf("unknown type %q", e.Tag)
}

// ErrInvalidFinder is returned when a method name is not a dynamic finder.
type ErrInvalidFinder struct {
	Name string
}

// Error implements [error].
func (e ErrInvalidFinder) Error() string {
	return fmt.Sprintf("%q is not a dynamic finder", e.Name)
}

// ErrArgumentCount is returned when a dynamic finder is called with the wrong
// number of arguments.
type ErrArgumentCount struct {
	Want int
	Got  int
}

// Error implements [error].
func (e ErrArgumentCount) Error() string {
	return fmt.Sprintf("wrong number of arguments (%d for %d)", e.Got, e.Want)
}

// ErrDecode is returned by [Decoder.Decode] to wrap third party decoding
// errors.
type ErrDecode struct {
	Source any
	Target any
}

// Error implements [error].
func (e ErrDecode) Error() string {
	return fmt.Sprintf("cannot decode %T into %T", e.Source, e.Target)
}
