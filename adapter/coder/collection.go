package coder

import (
	"maps"
	"slices"
	"strings"

	"github.com/vinicius-lino-figueiredo/godm/adapter/comparer"
	"github.com/vinicius-lino-figueiredo/godm/adapter/hasher"
	"github.com/vinicius-lino-figueiredo/godm/pkg/structure"
	"github.com/vinicius-lino-figueiredo/godm/pkg/uncomparable"
)

// Array converts values to []any. Maps become a list of [key, value] pairs
// sorted by key and scalars become a list with a single element.
type Array struct{}

// TypeName implements [domain.TypeNamer].
func (Array) TypeName() string { return TagArray }

// ToWire implements [domain.Coder].
func (Array) ToWire(v any) any {
	if v == nil {
		return []any{}
	}
	if l, ok := toList(v); ok {
		return l
	}
	if m, ok := structure.ToMap(v); ok {
		res := make([]any, 0, len(m))
		for _, k := range slices.Sorted(maps.Keys(m)) {
			res = append(res, []any{k, m[k]})
		}
		return res
	}
	return []any{v}
}

// FromWire implements [domain.Coder].
func (Array) FromWire(v any) any {
	if v == nil {
		return []any{}
	}
	return v
}

func toList(v any) ([]any, bool) {
	if !structure.IsList(v) {
		return nil, false
	}
	return structure.ToSlice(v)
}

// HashM is the application value of hash keys. Lookups fall back to a case
// insensitive key comparison.
type HashM map[string]any

// Get returns the value stored under key. If there is no exact match, the
// first key equal to it under case folding is used.
func (h HashM) Get(key string) (any, bool) {
	if v, ok := h[key]; ok {
		return v, true
	}
	for _, k := range slices.Sorted(maps.Keys(h)) {
		if strings.EqualFold(k, key) {
			return h[k], true
		}
	}
	return nil, false
}

// Has reports whether key can be found by [HashM.Get].
func (h HashM) Has(key string) bool {
	_, ok := h.Get(key)
	return ok
}

// Hash converts string-keyed maps to map[string]any.
type Hash struct{}

// TypeName implements [domain.TypeNamer].
func (Hash) TypeName() string { return TagHash }

// ToWire implements [domain.Coder].
func (Hash) ToWire(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case HashM:
		return map[string]any(t)
	}
	if m, ok := structure.ToMap(v); ok {
		return m
	}
	return nil
}

// FromWire implements [domain.Coder].
func (Hash) FromWire(v any) any {
	switch t := v.(type) {
	case nil:
		return HashM{}
	case HashM:
		return t
	}
	if m, ok := structure.ToMap(v); ok {
		return HashM(maps.Clone(m))
	}
	return v
}

// ValueSet is the application value of set keys. Values are kept in insertion
// order and compared by content, so documents and lists can be members.
type ValueSet struct {
	values *uncomparable.Map[struct{}]
}

// NewValueSet returns a set containing the given values.
func NewValueSet(values ...any) (*ValueSet, error) {
	s := &ValueSet{
		values: uncomparable.New[struct{}](hasher.NewHasher(), comparer.NewComparer()),
	}
	for _, v := range values {
		if err := s.Add(v); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Add adds v to the set.
func (s *ValueSet) Add(v any) error {
	return s.values.Set(v, struct{}{})
}

// Remove removes v from the set.
func (s *ValueSet) Remove(v any) error {
	return s.values.Delete(v)
}

// Contains reports whether v is a member of the set.
func (s *ValueSet) Contains(v any) (bool, error) {
	_, ok, err := s.values.Get(v)
	return ok, err
}

// Len returns the number of members.
func (s *ValueSet) Len() int {
	if s == nil || s.values == nil {
		return 0
	}
	return s.values.Len()
}

// Values returns the members in insertion order.
func (s *ValueSet) Values() []any {
	res := make([]any, 0, s.Len())
	if s.Len() == 0 {
		return res
	}
	for v := range s.values.Keys() {
		res = append(res, v)
	}
	return res
}

// Set converts values to de-duplicated lists, read back as [*ValueSet].
type Set struct{}

// TypeName implements [domain.TypeNamer].
func (Set) TypeName() string { return TagSet }

// ToWire implements [domain.Coder].
func (Set) ToWire(v any) any {
	switch t := v.(type) {
	case nil:
		return []any{}
	case *ValueSet:
		return t.Values()
	}
	l, ok := toList(v)
	if !ok {
		l = []any{v}
	}
	set, err := NewValueSet(l...)
	if err != nil {
		return l
	}
	return set.Values()
}

// FromWire implements [domain.Coder].
func (Set) FromWire(v any) any {
	switch t := v.(type) {
	case nil:
		set, _ := NewValueSet()
		return set
	case *ValueSet:
		return t
	}
	l, ok := toList(v)
	if !ok {
		l = []any{v}
	}
	set, err := NewValueSet(l...)
	if err != nil {
		return v
	}
	return set
}
