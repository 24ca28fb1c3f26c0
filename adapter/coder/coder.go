// Package coder contains the built-in [domain.Coder] implementations, which
// convert field values between their application and wire representations.
//
// Built-in coders are looked up by type tag through [Lookup]. The table is
// closed: custom types are supported by implementing [domain.Coder] and passing
// the implementation to a key directly.
package coder

import (
	"fmt"
	"maps"
	"slices"

	"github.com/vinicius-lino-figueiredo/godm/domain"
)

// Type tags of the built-in coders.
const (
	TagString     = "string"
	TagInteger    = "integer"
	TagFloat      = "float"
	TagBoolean    = "boolean"
	TagTime       = "time"
	TagDate       = "date"
	TagArray      = "array"
	TagHash       = "hash"
	TagSet        = "set"
	TagIdentifier = "object_id"
	TagBinary     = "binary"
)

var builtins = map[string]func() domain.Coder{
	TagString:     func() domain.Coder { return Text{} },
	TagInteger:    func() domain.Coder { return Integer{} },
	TagFloat:      func() domain.Coder { return Float{} },
	TagBoolean:    func() domain.Coder { return Boolean{} },
	TagTime:       func() domain.Coder { return NewTimestamp() },
	TagDate:       func() domain.Coder { return Date{} },
	TagArray:      func() domain.Coder { return Array{} },
	TagHash:       func() domain.Coder { return Hash{} },
	TagSet:        func() domain.Coder { return Set{} },
	TagIdentifier: func() domain.Coder { return Identifier{} },
	TagBinary:     func() domain.Coder { return Binary{} },
}

// Lookup returns the built-in coder registered under tag.
func Lookup(tag string) (domain.Coder, bool) {
	fn, ok := builtins[tag]
	if !ok {
		return nil, false
	}
	return fn(), true
}

// Tags returns the sorted list of built-in type tags.
func Tags() []string {
	return slices.Sorted(maps.Keys(builtins))
}

// TypeName returns the type name of c. Coders that do not implement
// [domain.TypeNamer] are named after their go type.
func TypeName(c domain.Coder) string {
	if c == nil {
		return Passthrough{}.TypeName()
	}
	if n, ok := c.(domain.TypeNamer); ok {
		return n.TypeName()
	}
	return fmt.Sprintf("%T", c)
}

// Passthrough is the coder of untyped keys. Values are stored as given.
type Passthrough struct{}

// TypeName implements [domain.TypeNamer].
func (Passthrough) TypeName() string { return "any" }

// ToWire implements [domain.Coder].
func (Passthrough) ToWire(v any) any { return v }

// FromWire implements [domain.Coder].
func (Passthrough) FromWire(v any) any { return v }
