package coder

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Identifier converts values to the store-native identifier, a [uuid.UUID].
// Blank or unparseable values become nil.
type Identifier struct{}

// TypeName implements [domain.TypeNamer].
func (Identifier) TypeName() string { return TagIdentifier }

// Identifier implements [domain.IdentifierCoder].
func (Identifier) Identifier() bool { return true }

// ToWire implements [domain.Coder].
func (Identifier) ToWire(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case uuid.UUID:
		return t
	case *uuid.UUID:
		if t == nil {
			return nil
		}
		return *t
	case [16]byte:
		return uuid.UUID(t)
	case []byte:
		id, err := uuid.FromBytes(t)
		if err != nil {
			return nil
		}
		return id
	case string:
		return parseIdentifier(t)
	case fmt.Stringer:
		return parseIdentifier(t.String())
	}
	return nil
}

// FromWire implements [domain.Coder].
func (Identifier) FromWire(v any) any { return v }

func parseIdentifier(s string) any {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil
	}
	return id
}

// Binary converts strings and byte slices to []byte.
type Binary struct{}

// TypeName implements [domain.TypeNamer].
func (Binary) TypeName() string { return TagBinary }

// ToWire implements [domain.Coder].
func (Binary) ToWire(v any) any {
	switch t := v.(type) {
	case []byte:
		return t
	case string:
		return []byte(t)
	}
	return nil
}

// FromWire implements [domain.Coder].
func (Binary) FromWire(v any) any { return v }
