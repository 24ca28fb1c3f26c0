// Package fieldnavigator contains the default [domain.FieldNavigator]
// implementation.
package fieldnavigator

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/vinicius-lino-figueiredo/godm/domain"
	"github.com/vinicius-lino-figueiredo/godm/pkg/structure"
)

// FieldNavigator implements [domain.FieldNavigator].
type FieldNavigator struct{}

// NewFieldNavigator returns a new instance of [domain.FieldNavigator].
func NewFieldNavigator() domain.FieldNavigator {
	return &FieldNavigator{}
}

// GetAddress implements [domain.FieldNavigator].
func (fn *FieldNavigator) GetAddress(field string) ([]string, error) {
	parts := strings.Split(field, ".")
	for _, part := range parts {
		if part == "" {
			return nil, fmt.Errorf("%w: %q", domain.ErrEmptyFieldName, field)
		}
	}
	return parts, nil
}

// GetField implements [domain.FieldNavigator].
func (fn *FieldNavigator) GetField(doc any, path ...string) ([]any, bool, error) {
	if doc == nil || len(path) == 0 {
		return nil, false, nil
	}

	curr := []any{doc}
	expanded := false
	for _, part := range path {
		next := make([]any, 0, len(curr))
		for _, item := range curr {
			if m, ok := structure.ToMap(item); ok {
				if v, ok := m[part]; ok {
					next = append(next, v)
				}
				continue
			}

			l, ok := structure.ToSlice(item)
			if !ok {
				continue
			}
			if i, err := strconv.Atoi(part); err == nil {
				if i >= 0 && i < len(l) {
					next = append(next, l[i])
				}
				continue
			}

			// the part is applied to every document in the list
			expanded = true
			for _, elem := range l {
				if m, ok := structure.ToMap(elem); ok {
					if v, ok := m[part]; ok {
						next = append(next, v)
					}
				}
			}
		}
		curr = next
	}
	return curr, expanded, nil
}
