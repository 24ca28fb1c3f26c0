// Package registry contains the default [domain.Registry] implementation.
//
// A registry holds the keys declared for a model in declaration order. Reads
// use an immutable snapshot that is replaced atomically on every write, so
// they never observe a partial declaration. Keys declared on a registry are
// also declared on every subtype registered so far, in registration order.
package registry

import (
	"iter"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
	"github.com/vinicius-lino-figueiredo/godm/adapter/coder"
	"github.com/vinicius-lino-figueiredo/godm/adapter/key"
	"github.com/vinicius-lino-figueiredo/godm/domain"
)

// Default field names.
const (
	DefaultIdentifierField    = "_id"
	DefaultDiscriminatorField = "_type"
	CreatedAtField            = "created_at"
	UpdatedAtField            = "updated_at"
)

// Registry implements [domain.Registry].
type Registry struct {
	name               string
	collection         string
	identifierField    string
	discriminatorField string
	identifierKey      bool
	timestamps         bool
	embeddable         bool
	log                zerolog.Logger

	parent *Registry

	// mu serializes writers. Readers only load snapshot.
	mu       sync.Mutex
	snapshot atomic.Pointer[snapshot]
	subtypes []*Registry

	// tree serializes subtype registration, only used on the root.
	tree sync.Mutex
}

type snapshot struct {
	names []string
	keys  map[string]domain.Key
}

func (s *snapshot) with(k domain.Key) *snapshot {
	res := &snapshot{
		names: slices.Clone(s.names),
		keys:  make(map[string]domain.Key, len(s.keys)+1),
	}
	for name, k := range s.keys {
		res.keys[name] = k
	}
	if _, ok := res.keys[k.Name()]; !ok {
		res.names = append(res.names, k.Name())
	}
	res.keys[k.Name()] = k
	return res
}

// New returns a new root [Registry]. Unless disabled with
// [WithIdentifierKey], the identifier field is declared as an identifier key.
func New(name string, opts ...Option) *Registry {
	r := &Registry{
		name:               name,
		collection:         name,
		identifierField:    DefaultIdentifierField,
		discriminatorField: DefaultDiscriminatorField,
		identifierKey:      true,
		log:                zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.snapshot.Store(&snapshot{keys: map[string]domain.Key{}})

	if r.identifierKey {
		r.declare(key.MustKey(r.identifierField, coder.Identifier{}))
	}
	r.declareTimestamps()
	return r
}

func (r *Registry) declareTimestamps() {
	if !r.timestamps {
		return
	}
	for _, name := range [...]string{CreatedAtField, UpdatedAtField} {
		if _, ok := r.Get(name); !ok {
			r.declare(key.MustKey(name, coder.NewTimestamp()))
		}
	}
}

// Subtype registers a polymorphic subtype stored in the same collection as the
// root. The subtype starts with a copy of the keys of r, and the discriminator
// key is declared on the root if it was not yet.
func (r *Registry) Subtype(name string, opts ...Option) (*Registry, error) {
	root := r.Root()
	root.tree.Lock()
	defer root.tree.Unlock()

	if root.find(name) != nil {
		return nil, domain.ErrDuplicateModel{Name: name}
	}

	if _, ok := root.Get(root.discriminatorField); !ok {
		root.declare(key.MustKey(root.discriminatorField, coder.Text{}))
	}

	child := &Registry{
		name:       name,
		timestamps: r.timestamps,
		embeddable: r.embeddable,
		log:        r.log,
	}
	for _, opt := range opts {
		opt(child)
	}
	child.parent = r
	child.collection = root.collection
	child.identifierField = root.identifierField
	child.discriminatorField = root.discriminatorField
	child.identifierKey = root.identifierKey

	r.mu.Lock()
	child.snapshot.Store(r.snapshot.Load())
	r.subtypes = append(r.subtypes, child)
	r.mu.Unlock()

	child.declareTimestamps()

	r.log.Debug().
		Str("model", r.name).
		Str("subtype", name).
		Msg("subtype registered")
	return child, nil
}

// find returns the registry named name in the tree starting at r.
func (r *Registry) find(name string) *Registry {
	if r.name == name {
		return r
	}
	for _, sub := range r.Subtypes() {
		if found := sub.find(name); found != nil {
			return found
		}
	}
	return nil
}

// Lookup returns the registry named name among r and its subtypes, at any
// depth.
func (r *Registry) Lookup(name string) (domain.Registry, bool) {
	if found := r.find(name); found != nil {
		return found, true
	}
	return nil, false
}

// DiscriminatorField returns the field that stores the subtype name of
// documents in the hierarchy of r.
func (r *Registry) DiscriminatorField() string { return r.discriminatorField }

// Declare implements [domain.Registry]. Redeclaring a name replaces the key in
// place. The key is also declared on every known subtype.
func (r *Registry) Declare(k domain.Key) error {
	if k == nil || k.Name() == "" {
		return domain.ErrEmptyFieldName
	}
	r.declare(k)
	return nil
}

func (r *Registry) declare(k domain.Key) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.snapshot.Store(r.snapshot.Load().with(k))
	r.log.Debug().
		Str("model", r.name).
		Str("key", k.Name()).
		Str("type", coder.TypeName(k.Coder())).
		Msg("key declared")

	for _, sub := range r.subtypes {
		sub.declare(k)
	}
}

// Name implements [domain.Registry].
func (r *Registry) Name() string { return r.name }

// Collection implements [domain.Registry].
func (r *Registry) Collection() string { return r.collection }

// IdentifierFieldName implements [domain.Registry].
func (r *Registry) IdentifierFieldName() string { return r.identifierField }

// Discriminator implements [domain.Registry].
func (r *Registry) Discriminator() (string, string, bool) {
	if r.parent == nil {
		return "", "", false
	}
	return r.discriminatorField, r.name, true
}

// Get implements [domain.Registry].
func (r *Registry) Get(name string) (domain.Key, bool) {
	k, ok := r.snapshot.Load().keys[name]
	return k, ok
}

// Keys implements [domain.Registry].
func (r *Registry) Keys() iter.Seq2[string, domain.Key] {
	snap := r.snapshot.Load()
	return func(yield func(string, domain.Key) bool) {
		for _, name := range snap.names {
			if !yield(name, snap.keys[name]) {
				return
			}
		}
	}
}

// Names returns the declared key names in declaration order.
func (r *Registry) Names() []string {
	return slices.Clone(r.snapshot.Load().names)
}

// Len implements [domain.Registry].
func (r *Registry) Len() int {
	return len(r.snapshot.Load().names)
}

// Parent returns the registry r is a subtype of, or nil.
func (r *Registry) Parent() *Registry { return r.parent }

// Root returns the topmost registry of the hierarchy of r.
func (r *Registry) Root() *Registry {
	root := r
	for root.parent != nil {
		root = root.parent
	}
	return root
}

// Subtypes returns the direct subtypes of r in registration order.
func (r *Registry) Subtypes() []*Registry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.subtypes)
}

// Embeddable reports whether the model is meant to be nested in other
// documents.
func (r *Registry) Embeddable() bool { return r.embeddable }

// Timestamped reports whether created_at and updated_at are maintained.
func (r *Registry) Timestamped() bool { return r.timestamps }
