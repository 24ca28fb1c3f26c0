// Package comparer contains the default [domain.Comparer] implementation.
package comparer

import (
	"bytes"
	"cmp"
	"fmt"
	"math/big"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/vinicius-lino-figueiredo/godm/domain"
	"github.com/vinicius-lino-figueiredo/godm/pkg/structure"
)

// Comparer implements [domain.Comparer]. Values of different types are ordered
// as nil < numbers < strings < booleans < dates < identifiers < binary <
// arrays < documents.
type Comparer struct{}

// NewComparer returns a new implementation of [domain.Comparer].
func NewComparer() domain.Comparer {
	return &Comparer{}
}

// Comparable implements [domain.Comparer].
func (c *Comparer) Comparable(a, b any) bool {
	equal := false
	if _, ok := c.asNumber(a); ok {
		_, equal = c.asNumber(b)
		return equal
	}

	switch a.(type) {
	case string:
		_, equal = b.(string)
	case time.Time:
		_, equal = b.(time.Time)
	case uuid.UUID:
		_, equal = b.(uuid.UUID)
	default:
		return false
	}
	return equal
}

// Compare implements [domain.Comparer].
func (c *Comparer) Compare(a any, b any) (int, error) {

	// [nil] (null)
	if c, ok := c.checkNil(a, b); ok {
		return c, nil
	}

	// Numbers
	if c, ok := c.checkNumbers(a, b); ok {
		return c, nil
	}

	// Strings
	if c, ok := c.checkStrings(a, b); ok {
		return c, nil
	}

	// Booleans
	if c, ok := c.checkBooleans(a, b); ok {
		return c, nil
	}

	// Dates
	if c, ok := c.checkTime(a, b); ok {
		return c, nil
	}

	// Identifiers
	if c, ok := c.checkUUID(a, b); ok {
		return c, nil
	}

	// Binary
	if c, ok := c.checkBytes(a, b); ok {
		return c, nil
	}

	// Arrays
	if c, ok, err := c.checkArrays(a, b); err != nil || ok {
		return c, err
	}

	// Objects
	if c, ok, err := c.checkDocs(a, b); err != nil || ok {
		return c, err
	}

	return 0, fmt.Errorf("cannot compare unexpected types %T and %T", a, b)
}

func (c *Comparer) checkNil(a, b any) (int, bool) {
	if a == nil {
		if b == nil {
			return 0, true
		}
		return -1, true
	}
	if b == nil {
		return 1, true // no need to test if a == nil
	}
	return 0, false
}

func (c *Comparer) checkNumbers(a, b any) (int, bool) {
	if a, ok := c.asNumber(a); ok {
		// Using big.Float to safely compare float64 and int64 without
		// precision loss
		if b, ok := c.asNumber(b); ok {
			return a.Cmp(b), true
		}
		return -1, true
	}
	if _, ok := c.asNumber(b); ok {
		return 1, true
	}
	return 0, false
}

func (c *Comparer) checkStrings(a, b any) (int, bool) {
	if a, ok := a.(string); ok {
		if b, ok := b.(string); ok {
			return cmp.Compare(a, b), true
		}
		return -1, true
	}
	if _, ok := b.(string); ok {
		return 1, true
	}
	return 0, false
}

func (c *Comparer) checkBooleans(a, b any) (int, bool) {
	if a, ok := a.(bool); ok {
		if b, ok := b.(bool); ok {
			return c.compareBool(a, b), true
		}
		return -1, true
	}
	if _, ok := b.(bool); ok {
		return 1, true
	}
	return 0, false
}

func (c *Comparer) checkTime(a, b any) (int, bool) {
	if a, ok := a.(time.Time); ok {
		if b, ok := b.(time.Time); ok {
			return a.Compare(b), true
		}
		return -1, true
	}
	if _, ok := b.(time.Time); ok {
		return 1, true
	}
	return 0, false
}

func (c *Comparer) checkUUID(a, b any) (int, bool) {
	if a, ok := a.(uuid.UUID); ok {
		if b, ok := b.(uuid.UUID); ok {
			return bytes.Compare(a[:], b[:]), true
		}
		return -1, true
	}
	if _, ok := b.(uuid.UUID); ok {
		return 1, true
	}
	return 0, false
}

func (c *Comparer) checkBytes(a, b any) (int, bool) {
	if a, ok := a.([]byte); ok {
		if b, ok := b.([]byte); ok {
			return bytes.Compare(a, b), true
		}
		return -1, true
	}
	if _, ok := b.([]byte); ok {
		return 1, true
	}
	return 0, false
}

func (c *Comparer) checkArrays(a, b any) (int, bool, error) {
	if a, ok := c.asArray(a); ok {
		if b, ok := c.asArray(b); ok {
			comp, err := c.compareArray(a, b)
			return comp, true, err
		}
		return -1, true, nil
	}
	if _, ok := c.asArray(b); ok {
		return 1, true, nil
	}
	return 0, false, nil
}

func (c *Comparer) checkDocs(a, b any) (int, bool, error) {
	if a, ok := structure.ToMap(a); ok {
		if b, ok := structure.ToMap(b); ok {
			comp, err := c.compareDoc(a, b)
			return comp, true, err
		}
		return -1, true, nil
	}
	if _, ok := structure.ToMap(b); ok {
		return 1, true, nil
	}
	return 0, false, nil
}

func (c *Comparer) asArray(v any) ([]any, bool) {
	if !structure.IsList(v) {
		return nil, false
	}
	return structure.ToSlice(v)
}

func (c *Comparer) compareArray(a, b []any) (int, error) {
	minLength := min(len(a), len(b))

	var comp int
	var err error
	for i := range minLength {
		comp, err = c.Compare(a[i], b[i])
		if err != nil {
			return 0, err
		}

		if comp != 0 {
			return comp, nil
		}
	}

	// Common section was identical, longest one wins
	return cmp.Compare(len(a), len(b)), nil
}

func (c *Comparer) compareBool(a, b bool) int {
	if a == b {
		return 0
	}
	if a {
		return 1
	}
	return -1
}

func (c *Comparer) compareDoc(a, b map[string]any) (int, error) {
	aKeys := slices.Sorted(func(yield func(string) bool) {
		for k := range a {
			if !yield(k) {
				return
			}
		}
	})
	bKeys := slices.Sorted(func(yield func(string) bool) {
		for k := range b {
			if !yield(k) {
				return
			}
		}
	})

	var comp int
	var err error
	for i := range min(len(aKeys), len(bKeys)) {
		comp, err = c.Compare(a[aKeys[i]], b[bKeys[i]])
		if err != nil {
			return 0, err
		}

		if comp != 0 {
			return comp, nil
		}
	}

	if comp := cmp.Compare(len(a), len(b)); comp != 0 {
		return comp, nil
	}

	return slices.Compare(aKeys, bKeys), nil
}

func (c *Comparer) asNumber(v any) (*big.Float, bool) {
	r := big.NewFloat(0)
	switch n := v.(type) {
	case int:
		r.SetInt64(int64(n))
	case int8:
		r.SetInt64(int64(n))
	case int16:
		r.SetInt64(int64(n))
	case int32:
		r.SetInt64(int64(n))
	case int64:
		r.SetInt64(n)
	case uint:
		r.SetUint64(uint64(n))
	case uint8:
		r.SetUint64(uint64(n))
	case uint16:
		r.SetUint64(uint64(n))
	case uint32:
		r.SetUint64(uint64(n))
	case uint64:
		r.SetUint64(n)
	case float32:
		r.SetFloat64(float64(n))
	case float64:
		r.SetFloat64(n)
	default:
		return nil, false
	}
	return r, true
}
