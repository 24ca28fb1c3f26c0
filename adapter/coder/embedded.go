package coder

import (
	"strings"

	"github.com/goccy/go-reflect"
	"github.com/vinicius-lino-figueiredo/godm/adapter/decoder"
	"github.com/vinicius-lino-figueiredo/godm/domain"
	"github.com/vinicius-lino-figueiredo/godm/pkg/structure"
)

// Embedded converts nested documents through the keys of their own registry.
type Embedded struct {
	registry  domain.Registry
	prototype reflect.Type
	pointer   bool
	decoder   domain.Decoder
}

// NewEmbedded returns a coder for documents declared by reg. If prototype is
// not nil, read values are decoded into new values of its type, otherwise they
// are returned as map[string]any.
func NewEmbedded(reg domain.Registry, prototype any) *Embedded {
	e := &Embedded{
		registry: reg,
		decoder:  decoder.NewDecoder(),
	}
	if prototype != nil {
		t := reflect.TypeOf(prototype)
		if t.Kind() == reflect.Ptr {
			e.pointer = true
			t = t.Elem()
		}
		e.prototype = t
	}
	return e
}

// TypeName implements [domain.TypeNamer].
func (e *Embedded) TypeName() string { return e.registry.Name() }

// Registry implements [domain.EmbeddedCoder].
func (e *Embedded) Registry() domain.Registry { return e.registry }

// ToWire implements [domain.Coder].
func (e *Embedded) ToWire(v any) any {
	if v == nil {
		return nil
	}
	if w, ok := v.(domain.WireMarshaler); ok {
		return w.ToWire()
	}
	seq, l, err := structure.Seq2(v)
	if err != nil {
		return nil
	}
	res := make(domain.M, l)
	for name, value := range seq {
		if key, ok := e.key(name); ok {
			res[key.Name()] = key.Set(value)
			continue
		}
		res[name] = value
	}
	return res
}

// key finds the key declared with name, falling back to a case insensitive
// comparison so exported struct fields match their keys.
func (e *Embedded) key(name string) (domain.Key, bool) {
	if key, ok := e.registry.Get(name); ok {
		return key, true
	}
	for n, key := range e.registry.Keys() {
		if strings.EqualFold(n, name) {
			return key, true
		}
	}
	return nil, false
}

// FromWire implements [domain.Coder].
func (e *Embedded) FromWire(v any) any {
	if v == nil {
		return nil
	}
	if e.isPrototype(v) {
		return v
	}
	m, ok := structure.ToMap(v)
	if !ok {
		return nil
	}

	doc := make(domain.M, len(m))
	for k, value := range m {
		doc[k] = value
	}
	for name, key := range e.registry.Keys() {
		value, found := m[name]
		if _, hasDefault := key.Default(); found || hasDefault {
			doc[name] = key.Get(value)
		}
	}

	if e.prototype == nil {
		return doc
	}

	target := reflect.New(e.prototype)
	if err := e.decoder.Decode(doc, target.Interface()); err != nil {
		return nil
	}
	if e.pointer {
		return target.Interface()
	}
	return target.Elem().Interface()
}

func (e *Embedded) isPrototype(v any) bool {
	if e.prototype == nil {
		return false
	}
	t := reflect.TypeOf(v)
	if t == e.prototype {
		return true
	}
	return t.Kind() == reflect.Ptr && t.Elem() == e.prototype
}
