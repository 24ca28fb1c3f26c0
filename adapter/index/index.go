// Package index contains the default [domain.Index] implementation.
package index

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"slices"

	"github.com/vinicius-lino-figueiredo/bst"
	"github.com/vinicius-lino-figueiredo/bst/adapter/avl"
	"github.com/vinicius-lino-figueiredo/godm/adapter/comparer"
	"github.com/vinicius-lino-figueiredo/godm/adapter/fieldnavigator"
	"github.com/vinicius-lino-figueiredo/godm/adapter/hasher"
	"github.com/vinicius-lino-figueiredo/godm/domain"
	"github.com/vinicius-lino-figueiredo/godm/pkg/structure"
	"github.com/vinicius-lino-figueiredo/godm/pkg/uncomparable"
)

// Index implements [domain.Index].
type Index struct {
	fieldName string
	addr      []string
	unique    bool
	sparse    bool
	// Exported to allow testing. Should not be a problem because Index is
	// used as interface.
	Tree           bst.BST[any, domain.M]
	comparer       domain.Comparer
	hasher         domain.Hasher
	fieldNavigator domain.FieldNavigator
}

// NewIndex returns a new implementation of [domain.Index] over fieldName,
// which may be a dotted path.
func NewIndex(fieldName string, opts ...Option) (domain.Index, error) {
	i := Index{fieldName: fieldName}
	for _, opt := range opts {
		opt(&i)
	}
	if i.comparer == nil {
		i.comparer = comparer.NewComparer()
	}
	if i.hasher == nil {
		i.hasher = hasher.NewHasher()
	}
	if i.fieldNavigator == nil {
		i.fieldNavigator = fieldnavigator.NewFieldNavigator()
	}

	addr, err := i.fieldNavigator.GetAddress(fieldName)
	if err != nil {
		return nil, err
	}
	i.addr = addr
	i.Tree = avl.NewBST(i.unique, 8, NewBSTComparer(i.comparer))
	return &i, nil
}

// FieldName implements [domain.Index].
func (i *Index) FieldName() string {
	return i.fieldName
}

// Unique implements [domain.Index].
func (i *Index) Unique() bool {
	return i.unique
}

// getKeys returns the distinct keys of doc. Each element of a list value is
// a key of its own.
func (i *Index) getKeys(doc domain.M) ([]any, error) {
	values, _, err := i.fieldNavigator.GetField(doc, i.addr...)
	if err != nil {
		return nil, err
	}

	keys := make([]any, 0, len(values))
	for _, v := range values {
		if structure.IsList(v) {
			l, _ := structure.ToSlice(v)
			keys = append(keys, l...)
			continue
		}
		keys = append(keys, v)
	}

	if i.sparse {
		keys = slices.DeleteFunc(keys, func(k any) bool { return k == nil })
	} else if len(keys) == 0 {
		keys = append(keys, nil)
	}

	slices.SortFunc(keys, i.compareThings)
	return slices.CompactFunc(keys, func(a, b any) bool { return i.compareThings(a, b) == 0 }), nil
}

// Insert implements [domain.Index]. Either every document is inserted or
// none is.
func (i *Index) Insert(ctx context.Context, docs ...domain.M) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	type kv struct {
		key any
		doc domain.M
	}

	inserted := make([]kv, 0, len(docs))

	var err error
DocInsertion:
	for _, d := range docs {
		var keys []any
		keys, err = i.getKeys(d)
		if err != nil {
			break
		}

		for _, k := range keys {
			if err = i.Tree.Insert(k, d); err != nil {
				if e := new(bst.ErrUniqueViolated); errors.As(err, e) {
					err = fmt.Errorf("%w: %w", domain.ErrConstraintViolated, err)
				}
				break DocInsertion
			}
			inserted = append(inserted, kv{key: k, doc: d})
		}
	}
	if err == nil {
		return nil
	}

	errs := make([]error, 1, len(inserted)+1)
	errs[0] = err
	for _, v := range inserted {
		if err := i.Tree.Delete(v.key, &v.doc); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Remove implements [domain.Index].
func (i *Index) Remove(ctx context.Context, docs ...domain.M) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	errs := make([]error, 0, len(docs))
	for _, d := range docs {
		keys, err := i.getKeys(d)
		if err != nil {
			return err
		}
		for _, k := range keys {
			if err := i.Tree.Delete(k, &d); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// GetMatching implements [domain.Index]. Documents are returned ordered by
// key, without repeating keys given more than once.
func (i *Index) GetMatching(value ...any) ([]domain.M, error) {
	found := uncomparable.New[[]domain.M](i.hasher, i.comparer)
	for _, v := range value {
		node, err := i.Tree.Search(v)
		if err != nil {
			return nil, err
		}
		if node == nil {
			continue
		}
		if err := found.Set(node.Key(), slices.Clone(node.Values())); err != nil {
			return nil, err
		}
	}

	keys := slices.Collect(found.Keys())
	slices.SortFunc(keys, i.compareThings)

	res := make([]domain.M, 0, len(keys))
	for _, k := range keys {
		docs, _, err := found.Get(k)
		if err != nil {
			return nil, err
		}
		res = append(res, docs...)
	}
	return res, nil
}

// GetBetweenBounds implements [domain.Index].
func (i *Index) GetBetweenBounds(ctx context.Context, bounds domain.M) (iter.Seq2[domain.M, error], error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	var qry bst.Query[any]
	for k, v := range bounds {
		switch k {
		case domain.OpGt:
			qry.GreaterThan = &bst.Bound[any]{Value: v, IncludeEqual: false}
		case domain.OpGte:
			qry.GreaterThan = &bst.Bound[any]{Value: v, IncludeEqual: true}
		case domain.OpLt:
			qry.LowerThan = &bst.Bound[any]{Value: v, IncludeEqual: false}
		case domain.OpLte:
			qry.LowerThan = &bst.Bound[any]{Value: v, IncludeEqual: true}
		}
	}

	return i.Tree.Query(qry), nil
}

// GetAll implements [domain.Index].
func (i *Index) GetAll() iter.Seq[domain.M] {
	return i.Tree.GetAll()
}

// GetNumberOfKeys implements [domain.Index].
func (i *Index) GetNumberOfKeys() int {
	return i.Tree.GetNumberOfKeys()
}

func (i *Index) compareThings(a any, b any) int {
	comp, _ := i.comparer.Compare(a, b)
	return comp
}
