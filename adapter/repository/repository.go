// Package repository ties a model registry to a [domain.Store]: queries are
// normalized by a [domain.Builder] and results are loaded as documents.
package repository

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/rs/zerolog"
	"github.com/vinicius-lino-figueiredo/godm/adapter/criteria"
	"github.com/vinicius-lino-figueiredo/godm/adapter/document"
	"github.com/vinicius-lino-figueiredo/godm/adapter/finder"
	"github.com/vinicius-lino-figueiredo/godm/adapter/idgenerator"
	"github.com/vinicius-lino-figueiredo/godm/adapter/registry"
	"github.com/vinicius-lino-figueiredo/godm/adapter/timegetter"
	"github.com/vinicius-lino-figueiredo/godm/domain"
)

// hierarchy is implemented by registries that know their subtypes.
type hierarchy interface {
	DiscriminatorField() string
	Lookup(name string) (domain.Registry, bool)
}

// timestamped is implemented by registries that maintain timestamps.
type timestamped interface {
	Timestamped() bool
}

// indexer is implemented by stores that support indexes.
type indexer interface {
	EnsureIndex(ctx context.Context, collection string, field string, unique bool) error
}

// Repository loads and saves documents of a model.
type Repository struct {
	reg         domain.Registry
	store       domain.Store
	builder     domain.Builder
	idGenerator domain.IDGenerator
	timeGetter  domain.TimeGetter
	docOpts     []document.Option
	log         zerolog.Logger
}

// New returns a [Repository] for the model declared by reg.
func New(reg domain.Registry, store domain.Store, opts ...Option) *Repository {
	r := Repository{
		reg:   reg,
		store: store,
		log:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&r)
	}
	if r.builder == nil {
		r.builder = criteria.NewBuilder(reg, criteria.WithLogger(r.log))
	}
	if r.idGenerator == nil {
		r.idGenerator = idgenerator.NewIDGenerator(idgenerator.WithTimeOrdered(true))
	}
	if r.timeGetter == nil {
		r.timeGetter = timegetter.NewTimeGetter()
	}
	return &r
}

// Registry returns the registry of the model.
func (r *Repository) Registry() domain.Registry { return r.reg }

// New returns a new unsaved document of the model.
func (r *Repository) New() *document.Document {
	return document.New(r.reg, r.docOpts...)
}

// EnsureIndexes creates the indexes of keys declared as unique or indexed.
// Stores without index support are left as they are.
func (r *Repository) EnsureIndexes(ctx context.Context) error {
	idx, ok := r.store.(indexer)
	if !ok {
		return nil
	}
	for name, k := range r.reg.Keys() {
		opts := k.Options()
		if !opts.Unique && !opts.Index {
			continue
		}
		if err := idx.EnsureIndex(ctx, r.reg.Collection(), name, opts.Unique); err != nil {
			return err
		}
	}
	return nil
}

// Find returns every document matching spec.
func (r *Repository) Find(ctx context.Context, spec any) ([]*document.Document, error) {
	crit, opts, err := r.build(spec)
	if err != nil {
		return nil, err
	}
	return r.find(ctx, crit, opts)
}

// All is an alias of [Repository.Find].
func (r *Repository) All(ctx context.Context, spec any) ([]*document.Document, error) {
	return r.Find(ctx, spec)
}

// First returns the first document matching spec, or nil.
func (r *Repository) First(ctx context.Context, spec any) (*document.Document, error) {
	crit, opts, err := r.build(spec)
	if err != nil {
		return nil, err
	}
	opts.Limit = 1
	return r.one(ctx, crit, opts)
}

// Last returns the last document matching spec, or nil. The sort order of
// spec is reversed. Without one, documents are ordered by creation time for
// timestamped models and by identifier otherwise, which follows insertion
// order with the default time-ordered identifiers.
func (r *Repository) Last(ctx context.Context, spec any) (*document.Document, error) {
	crit, opts, err := r.build(spec)
	if err != nil {
		return nil, err
	}
	if len(opts.Sort) == 0 {
		field := r.reg.IdentifierFieldName()
		if ts, ok := r.reg.(timestamped); ok && ts.Timestamped() {
			field = registry.CreatedAtField
		}
		opts.Sort = domain.Sort{{Key: field, Order: domain.Ascending}}
	}
	reversed := make(domain.Sort, len(opts.Sort))
	for n, s := range opts.Sort {
		reversed[n] = domain.SortName{Key: s.Key, Order: -s.Order}
	}
	opts.Sort = reversed
	opts.Limit = 1
	return r.one(ctx, crit, opts)
}

// Count returns the number of documents matching spec. Modifiers in spec are
// ignored.
func (r *Repository) Count(ctx context.Context, spec any) (int64, error) {
	crit, _, err := r.build(spec)
	if err != nil {
		return 0, err
	}
	return r.store.Count(ctx, r.reg.Collection(), crit)
}

// build normalizes spec. A nil spec matches every document.
func (r *Repository) build(spec any) (domain.Criteria, domain.QueryOptions, error) {
	if spec == nil {
		spec = domain.M{}
	}
	return r.builder.Build(spec)
}

func (r *Repository) one(ctx context.Context, crit domain.Criteria, opts domain.QueryOptions) (*document.Document, error) {
	docs, err := r.find(ctx, crit, opts)
	if err != nil || len(docs) == 0 {
		return nil, err
	}
	return docs[0], nil
}

func (r *Repository) find(ctx context.Context, crit domain.Criteria, opts domain.QueryOptions) ([]*document.Document, error) {
	r.log.Debug().
		Str("model", r.reg.Name()).
		Interface("criteria", crit).
		Msg("find")

	cur, err := r.store.Find(ctx, r.reg.Collection(), crit, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close()

	res := make([]*document.Document, 0)
	for cur.Next() {
		var raw domain.M
		if err := cur.Scan(ctx, &raw); err != nil {
			return nil, err
		}
		res = append(res, document.FromWire(r.registryFor(raw), raw, r.docOpts...))
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

// registryFor returns the registry of the subtype named by the
// discriminator of raw, or the repository registry.
func (r *Repository) registryFor(raw domain.M) domain.Registry {
	h, ok := r.reg.(hierarchy)
	if !ok {
		return r.reg
	}
	name, ok := raw[h.DiscriminatorField()].(string)
	if !ok {
		return r.reg
	}
	if sub, ok := h.Lookup(name); ok {
		return sub
	}
	return r.reg
}

// Save stores doc. New documents receive an identifier and are inserted,
// persisted ones have their changed fields updated. Timestamped models get
// created_at on insertion and updated_at on every save.
func (r *Repository) Save(ctx context.Context, doc *document.Document) error {
	idField := r.reg.IdentifierFieldName()
	if doc.Get(idField) == nil {
		id, err := r.idGenerator.GenerateID()
		if err != nil {
			return fmt.Errorf("generating id: %w", err)
		}
		doc.Set(idField, id)
	}

	if ts, ok := r.reg.(timestamped); ok && ts.Timestamped() {
		now := r.timeGetter.GetTime()
		if doc.Get(registry.CreatedAtField) == nil {
			doc.Set(registry.CreatedAtField, now)
		}
		doc.Set(registry.UpdatedAtField, now)
	}

	if !doc.Persisted() {
		if err := r.store.Insert(ctx, r.reg.Collection(), doc.ToWire()); err != nil {
			return err
		}
		r.log.Debug().Str("model", r.reg.Name()).Msg("document inserted")
		doc.MarkPersisted()
		return nil
	}

	changes := doc.Changes()
	if len(changes) == 0 {
		return nil
	}
	wire := doc.ToWire()
	update := domain.Changes{Set: make(domain.M, len(changes))}
	for _, field := range slices.Sorted(maps.Keys(changes)) {
		if v, ok := wire[field]; ok {
			update.Set[field] = v
			continue
		}
		update.Unset = append(update.Unset, field)
	}

	n, err := r.store.Update(ctx, r.reg.Collection(), r.byID(wire), update)
	if err != nil {
		return err
	}
	if n == 0 {
		if err := r.store.Insert(ctx, r.reg.Collection(), wire); err != nil {
			return err
		}
	}
	r.log.Debug().Str("model", r.reg.Name()).Int("changes", len(changes)).Msg("document updated")
	doc.MarkPersisted()
	return nil
}

func (r *Repository) byID(wire domain.M) domain.Criteria {
	idField := r.reg.IdentifierFieldName()
	return domain.Criteria{idField: wire[idField]}
}

// Delete removes doc from the store.
func (r *Repository) Delete(ctx context.Context, doc *document.Document) error {
	_, err := r.store.Remove(ctx, r.reg.Collection(), r.byID(doc.ToWire()))
	return err
}

// DeleteAll removes every document matching spec and returns how many were
// removed.
func (r *Repository) DeleteAll(ctx context.Context, spec any) (int64, error) {
	crit, _, err := r.build(spec)
	if err != nil {
		return 0, err
	}
	return r.store.Remove(ctx, r.reg.Collection(), crit)
}

// FindDynamic runs a dynamic finder, such as find_by_name_and_age, with one
// argument per attribute and an optional map of query modifiers. Finders of
// a single document return at most one. Bang finders fail with
// [domain.ErrNotFound] when nothing is found.
func (r *Repository) FindDynamic(ctx context.Context, name string, args ...any) ([]*document.Document, error) {
	req, err := finder.Parse(name)
	if err != nil {
		return nil, err
	}
	return r.Run(ctx, req, args...)
}

// Run executes a finder request.
func (r *Repository) Run(ctx context.Context, req *finder.Request, args ...any) ([]*document.Document, error) {
	spec, err := req.Spec(args...)
	if err != nil {
		return nil, err
	}

	if req.Kind == domain.FindAll {
		return r.Find(ctx, spec)
	}

	var doc *document.Document
	if req.Kind == domain.FindLast {
		doc, err = r.Last(ctx, spec)
	} else {
		doc, err = r.First(ctx, spec)
	}
	if err != nil {
		return nil, err
	}

	if doc == nil {
		switch req.Kind {
		case domain.FindOrCreate, domain.FindOrInitialize:
			doc, err = r.initialize(ctx, req, args)
			if err != nil {
				return nil, err
			}
		default:
			if req.Bang {
				return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, req.Name())
			}
			return []*document.Document{}, nil
		}
	}
	return []*document.Document{doc}, nil
}

func (r *Repository) initialize(ctx context.Context, req *finder.Request, args []any) (*document.Document, error) {
	conditions, err := req.Conditions(args[:len(req.Attributes)]...)
	if err != nil {
		return nil, err
	}
	doc := r.New()
	if err := doc.SetAll(maps.Clone(conditions)); err != nil {
		return nil, err
	}
	if req.Kind == domain.FindOrCreate {
		if err := r.Save(ctx, doc); err != nil {
			return nil, err
		}
	}
	return doc, nil
}

// Load reads documents in any shape accepted by [document.Document.SetAll]
// and saves them as new documents.
func (r *Repository) Load(ctx context.Context, values ...any) ([]*document.Document, error) {
	res := make([]*document.Document, 0, len(values))
	for _, v := range values {
		doc := r.New()
		if err := doc.SetAll(v); err != nil {
			return nil, err
		}
		if err := r.Save(ctx, doc); err != nil {
			return nil, err
		}
		res = append(res, doc)
	}
	return res, nil
}
