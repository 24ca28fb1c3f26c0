// Package key contains the default [domain.Key] implementation.
package key

import (
	"strings"

	"github.com/vinicius-lino-figueiredo/godm/adapter/coder"
	"github.com/vinicius-lino-figueiredo/godm/domain"
)

// IDAlias is the reserved name that refers to the identifier field. It cannot
// be used as a key name.
const IDAlias = "id"

// Key implements [domain.Key].
type Key struct {
	name       string
	coder      domain.Coder
	options    domain.KeyOptions
	def        any
	hasDefault bool
}

// NewKey returns a new implementation of [domain.Key]. A nil coder stores
// values as given.
func NewKey(name string, c domain.Coder, opts ...domain.KeyOption) (domain.Key, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.ErrEmptyFieldName
	}
	if name == IDAlias {
		return nil, domain.ErrReservedFieldName{Name: name}
	}
	if c == nil {
		c = coder.Passthrough{}
	}

	var options domain.KeyOptions
	for _, opt := range opts {
		opt(&options)
	}

	k := &Key{
		name:       name,
		coder:      c,
		def:        options.Default,
		hasDefault: options.HasDefault,
	}
	options.Default, options.HasDefault = nil, false
	k.options = options

	return k, nil
}

// MustKey calls [NewKey] and panics on error. It is meant for package level
// model declarations.
func MustKey(name string, c domain.Coder, opts ...domain.KeyOption) domain.Key {
	k, err := NewKey(name, c, opts...)
	if err != nil {
		panic(err)
	}
	return k
}

// Name implements [domain.Key].
func (k *Key) Name() string { return k.name }

// Coder implements [domain.Key].
func (k *Key) Coder() domain.Coder { return k.coder }

// Options implements [domain.Key].
func (k *Key) Options() domain.KeyOptions { return k.options }

// Default implements [domain.Key].
func (k *Key) Default() (any, bool) { return k.def, k.hasDefault }

// Set implements [domain.Key].
func (k *Key) Set(value any) any {
	return k.coder.ToWire(value)
}

// Get implements [domain.Key].
func (k *Key) Get(value any) any {
	if value == nil && k.hasDefault {
		if producer, ok := k.def.(func() any); ok {
			return producer()
		}
		return k.def
	}
	return k.coder.FromWire(value)
}

// Embeddable implements [domain.Key].
func (k *Key) Embeddable() bool {
	_, ok := k.coder.(domain.EmbeddedCoder)
	return ok
}

// Number implements [domain.Key].
func (k *Key) Number() bool {
	n, ok := k.coder.(domain.NumberCoder)
	return ok && n.Number()
}

// Identifier implements [domain.Key].
func (k *Key) Identifier() bool {
	i, ok := k.coder.(domain.IdentifierCoder)
	return ok && i.Identifier()
}

// Equal implements [domain.Key]. Options are not compared.
func (k *Key) Equal(other domain.Key) bool {
	if other == nil {
		return false
	}
	return k.name == other.Name() && coder.TypeName(k.coder) == coder.TypeName(other.Coder())
}
