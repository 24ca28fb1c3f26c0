// Package memstore contains an in-memory [domain.Store] implementation, used
// as reference store by tests and the command line.
package memstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"slices"
	"strings"

	"github.com/dolmen-go/contextio"
	"github.com/rs/zerolog"
	"github.com/vinicius-lino-figueiredo/godm/adapter/comparer"
	"github.com/vinicius-lino-figueiredo/godm/adapter/cursor"
	"github.com/vinicius-lino-figueiredo/godm/adapter/decoder"
	"github.com/vinicius-lino-figueiredo/godm/adapter/fieldnavigator"
	"github.com/vinicius-lino-figueiredo/godm/adapter/hasher"
	"github.com/vinicius-lino-figueiredo/godm/adapter/index"
	"github.com/vinicius-lino-figueiredo/godm/adapter/querier"
	"github.com/vinicius-lino-figueiredo/godm/domain"
	"github.com/vinicius-lino-figueiredo/godm/pkg/ctxsync"
	"github.com/vinicius-lino-figueiredo/godm/pkg/structure"
	"github.com/vinicius-lino-figueiredo/godm/pkg/uncomparable"
)

var (
	// ErrMissingIdentifier is returned when inserting a document without
	// identifier.
	ErrMissingIdentifier = errors.New("document has no identifier")
	// ErrIdentifierChange is returned when an update tries to change the
	// identifier of a document.
	ErrIdentifierChange = errors.New("identifier cannot be changed")
)

type collection struct {
	primary domain.Index
	// secondary indexes in creation order.
	secondary []domain.Index
}

func (c *collection) indexes() []domain.Index {
	return append([]domain.Index{c.primary}, c.secondary...)
}

func (c *collection) index(field string) domain.Index {
	for _, idx := range c.indexes() {
		if idx.FieldName() == field {
			return idx
		}
	}
	return nil
}

// Store implements [domain.Store].
type Store struct {
	mu              *ctxsync.Mutex
	collections     map[string]*collection
	identifierField string
	comparer        domain.Comparer
	hasher          domain.Hasher
	fieldNavigator  domain.FieldNavigator
	decoder         domain.Decoder
	querier         domain.Querier
	log             zerolog.Logger
}

// NewStore returns a new empty [Store].
func NewStore(opts ...Option) *Store {
	s := Store{
		mu:              ctxsync.NewMutex(),
		collections:     make(map[string]*collection),
		identifierField: "_id",
		log:             zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&s)
	}
	if s.comparer == nil {
		s.comparer = comparer.NewComparer()
	}
	if s.hasher == nil {
		s.hasher = hasher.NewHasher()
	}
	if s.fieldNavigator == nil {
		s.fieldNavigator = fieldnavigator.NewFieldNavigator()
	}
	if s.decoder == nil {
		s.decoder = decoder.NewDecoder()
	}
	if s.querier == nil {
		s.querier = querier.NewQuerier(
			querier.WithComparer(s.comparer),
			querier.WithFieldNavigator(s.fieldNavigator),
		)
	}
	return &s
}

func (s *Store) newIndex(field string, unique bool) (domain.Index, error) {
	return index.NewIndex(field,
		index.WithUnique(unique),
		index.WithSparse(field != s.identifierField),
		index.WithComparer(s.comparer),
		index.WithHasher(s.hasher),
		index.WithFieldNavigator(s.fieldNavigator),
	)
}

// collection returns the named collection, creating it when create is set.
func (s *Store) collection(name string, create bool) (*collection, error) {
	if c, ok := s.collections[name]; ok {
		return c, nil
	}
	if !create {
		return nil, nil
	}
	primary, err := s.newIndex(s.identifierField, true)
	if err != nil {
		return nil, err
	}
	c := &collection{primary: primary}
	s.collections[name] = c
	return c, nil
}

// EnsureIndex creates an index over field in the given collection. Existing
// documents are indexed right away. Calling it again for the same field does
// nothing.
func (s *Store) EnsureIndex(ctx context.Context, coll string, field string, unique bool) error {
	if err := s.mu.LockWithContext(ctx); err != nil {
		return err
	}
	defer s.mu.Unlock()

	c, err := s.collection(coll, true)
	if err != nil {
		return err
	}
	if c.index(field) != nil {
		return nil
	}

	idx, err := s.newIndex(field, unique)
	if err != nil {
		return err
	}
	if err := idx.Insert(ctx, slices.Collect(c.primary.GetAll())...); err != nil {
		return fmt.Errorf("indexing %q: %w", field, err)
	}
	c.secondary = append(c.secondary, idx)
	s.log.Debug().Str("collection", coll).Str("field", field).Bool("unique", unique).Msg("index created")
	return nil
}

// Find implements [domain.Store].
func (s *Store) Find(ctx context.Context, coll string, criteria domain.Criteria, opts domain.QueryOptions) (domain.Cursor, error) {
	if err := s.mu.LockWithContext(ctx); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	docs, err := s.query(ctx, coll, criteria, opts)
	if err != nil {
		return nil, err
	}
	res := make([]domain.M, len(docs))
	for n, doc := range docs {
		res[n] = deepCopy(doc)
	}
	return cursor.NewCursor(ctx, res, cursor.WithDecoder(s.decoder))
}

// Count implements [domain.Store].
func (s *Store) Count(ctx context.Context, coll string, criteria domain.Criteria) (int64, error) {
	if err := s.mu.LockWithContext(ctx); err != nil {
		return 0, err
	}
	defer s.mu.Unlock()

	docs, err := s.query(ctx, coll, criteria, domain.QueryOptions{})
	if err != nil {
		return 0, err
	}
	return int64(len(docs)), nil
}

// Insert implements [domain.Store]. Either every document is inserted or
// none is.
func (s *Store) Insert(ctx context.Context, coll string, docs ...domain.M) error {
	if err := s.mu.LockWithContext(ctx); err != nil {
		return err
	}
	defer s.mu.Unlock()

	toInsert := make([]domain.M, len(docs))
	for n, doc := range docs {
		if doc[s.identifierField] == nil {
			return ErrMissingIdentifier
		}
		toInsert[n] = deepCopy(doc)
	}

	c, err := s.collection(coll, true)
	if err != nil {
		return err
	}

	return s.insert(ctx, c, toInsert)
}

func (s *Store) insert(ctx context.Context, c *collection, docs []domain.M) error {
	var done []domain.Index
	for _, idx := range c.indexes() {
		if err := idx.Insert(ctx, docs...); err != nil {
			revert := context.WithoutCancel(ctx)
			for _, d := range done {
				_ = d.Remove(revert, docs...)
			}
			return err
		}
		done = append(done, idx)
	}
	return nil
}

func (s *Store) remove(ctx context.Context, c *collection, docs []domain.M) error {
	errs := make([]error, 0)
	for _, idx := range c.indexes() {
		if err := idx.Remove(ctx, docs...); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Update implements [domain.Store]. Changes are assigned field by field, and
// dotted fields create the nested documents they need. Unset fields are
// deleted, the identifier cannot be.
func (s *Store) Update(ctx context.Context, coll string, criteria domain.Criteria, changes domain.Changes) (int64, error) {
	if err := s.mu.LockWithContext(ctx); err != nil {
		return 0, err
	}
	defer s.mu.Unlock()

	c, err := s.collection(coll, false)
	if err != nil || c == nil {
		return 0, err
	}

	oldDocs, err := s.query(ctx, coll, criteria, domain.QueryOptions{})
	if err != nil {
		return 0, err
	}
	if len(oldDocs) == 0 {
		return 0, nil
	}

	newDocs := make([]domain.M, len(oldDocs))
	for n, old := range oldDocs {
		newDocs[n], err = s.applyChanges(old, changes)
		if err != nil {
			return 0, err
		}
	}

	if err := s.remove(ctx, c, oldDocs); err != nil {
		return 0, err
	}
	if err := s.insert(ctx, c, newDocs); err != nil {
		if rErr := s.insert(context.WithoutCancel(ctx), c, oldDocs); rErr != nil {
			return 0, errors.Join(err, rErr)
		}
		return 0, err
	}
	return int64(len(newDocs)), nil
}

func (s *Store) applyChanges(old domain.M, changes domain.Changes) (domain.M, error) {
	doc := deepCopy(old)
	for field, value := range changes.Set {
		if field == s.identifierField {
			comp, err := s.comparer.Compare(old[field], value)
			if err != nil {
				return nil, err
			}
			if comp != 0 {
				return nil, ErrIdentifierChange
			}
			continue
		}
		addr, err := s.fieldNavigator.GetAddress(field)
		if err != nil {
			return nil, err
		}
		setPath(doc, addr, deepCopyValue(value))
	}
	for _, field := range changes.Unset {
		if field == s.identifierField {
			return nil, ErrIdentifierChange
		}
		addr, err := s.fieldNavigator.GetAddress(field)
		if err != nil {
			return nil, err
		}
		unsetPath(doc, addr)
	}
	return doc, nil
}

// Remove implements [domain.Store].
func (s *Store) Remove(ctx context.Context, coll string, criteria domain.Criteria) (int64, error) {
	if err := s.mu.LockWithContext(ctx); err != nil {
		return 0, err
	}
	defer s.mu.Unlock()

	c, err := s.collection(coll, false)
	if err != nil || c == nil {
		return 0, err
	}

	docs, err := s.query(ctx, coll, criteria, domain.QueryOptions{})
	if err != nil {
		return 0, err
	}
	if err := s.remove(ctx, c, docs); err != nil {
		return 0, err
	}
	return int64(len(docs)), nil
}

// Export implements [domain.Store]. Documents are written as JSON lines in
// identifier order.
func (s *Store) Export(ctx context.Context, coll string, w io.Writer) error {
	if err := s.mu.LockWithContext(ctx); err != nil {
		return err
	}
	defer s.mu.Unlock()

	c, err := s.collection(coll, false)
	if err != nil || c == nil {
		return err
	}

	enc := json.NewEncoder(contextio.NewWriter(ctx, w))
	for doc := range c.primary.GetAll() {
		if err := enc.Encode(doc); err != nil {
			return err
		}
	}
	return nil
}

// query runs criteria against the collection. Indexed fields narrow the
// documents read before matching.
func (s *Store) query(ctx context.Context, coll string, criteria domain.Criteria, opts domain.QueryOptions) ([]domain.M, error) {
	c, err := s.collection(coll, false)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return make([]domain.M, 0), nil
	}

	data, err := s.candidates(ctx, c, criteria)
	if err != nil {
		return nil, err
	}
	return s.querier.Query(data, criteria, opts)
}

func (s *Store) candidates(ctx context.Context, c *collection, criteria domain.Criteria) (iter.Seq2[domain.M, error], error) {
	for field, cond := range criteria {
		if domain.IsOperator(field) {
			continue
		}
		idx := c.index(field)
		if idx == nil {
			continue
		}

		if values, ok := s.indexValues(cond); ok {
			s.log.Debug().Str("field", field).Msg("using index for equality")
			docs, err := idx.GetMatching(values...)
			if err != nil {
				return nil, err
			}
			return s.distinct(func(yield func(domain.M, error) bool) {
				for _, doc := range docs {
					if !yield(doc, nil) {
						return
					}
				}
			}), nil
		}

		if bounds, ok := s.indexBounds(cond); ok {
			s.log.Debug().Str("field", field).Msg("using index for range")
			seq, err := idx.GetBetweenBounds(ctx, bounds)
			if err != nil {
				return nil, err
			}
			return s.distinct(seq), nil
		}
	}

	return func(yield func(domain.M, error) bool) {
		for doc := range c.primary.GetAll() {
			if !yield(doc, nil) {
				return
			}
		}
	}, nil
}

// indexValues returns the keys to look up for equality conditions. Conditions
// that can match documents without the field, or whole lists, are not
// answered by indexes.
func (s *Store) indexValues(cond any) ([]any, bool) {
	m, isMap := structure.ToMap(cond)
	if !isMap {
		if !s.indexable(cond) {
			return nil, false
		}
		return []any{cond}, true
	}
	if len(m) != 1 {
		return nil, false
	}
	if v, ok := m[domain.OpEq]; ok && s.indexable(v) {
		return []any{v}, true
	}
	in, ok := m[domain.OpIn]
	if !ok {
		return nil, false
	}
	values, ok := structure.ToSlice(in)
	if !ok || !structure.IsList(in) {
		return nil, false
	}
	for _, v := range values {
		if !s.indexable(v) {
			return nil, false
		}
	}
	return values, true
}

func (s *Store) indexable(v any) bool {
	if v == nil || structure.IsList(v) || structure.IsMap(v) {
		return false
	}
	_, isFunc := v.(func(domain.M) (bool, error))
	return !isFunc && !isRegex(v)
}

func (s *Store) indexBounds(cond any) (domain.M, bool) {
	m, ok := structure.ToMap(cond)
	if !ok || len(m) == 0 {
		return nil, false
	}
	for op, v := range m {
		switch op {
		case domain.OpGt, domain.OpGte, domain.OpLt, domain.OpLte:
			if !s.indexable(v) {
				return nil, false
			}
		default:
			return nil, false
		}
	}
	return m, true
}

// distinct yields each document once, in the order given.
func (s *Store) distinct(docs iter.Seq2[domain.M, error]) iter.Seq2[domain.M, error] {
	return func(yield func(domain.M, error) bool) {
		seen := uncomparable.New[struct{}](s.hasher, s.comparer)
		for doc, err := range docs {
			if err != nil {
				yield(nil, err)
				return
			}
			id := doc[s.identifierField]
			if _, found, err := seen.Get(id); err != nil {
				yield(nil, err)
				return
			} else if found {
				continue
			}
			if err := seen.Set(id, struct{}{}); err != nil {
				yield(nil, err)
				return
			}
			if !yield(doc, nil) {
				return
			}
		}
	}
}

// Collections returns the names of the collections holding documents or
// indexes, sorted.
func (s *Store) Collections() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.collections))
	for name := range s.collections {
		names = append(names, name)
	}
	slices.SortFunc(names, strings.Compare)
	return names
}
