// Package document contains model instances: attribute maps read and written
// through the keys of a registry.
package document

import (
	"iter"
	"maps"
	"reflect"

	"github.com/google/uuid"
	"github.com/vinicius-lino-figueiredo/godm/adapter/comparer"
	"github.com/vinicius-lino-figueiredo/godm/adapter/decoder"
	"github.com/vinicius-lino-figueiredo/godm/adapter/key"
	"github.com/vinicius-lino-figueiredo/godm/domain"
	"github.com/vinicius-lino-figueiredo/godm/pkg/structure"
)

// Change holds the application values of a changed field before and after the
// change.
type Change struct {
	Old any
	New any
}

// Document is an instance of a model. Attributes are stored in their wire
// representation. Fields without a declared key are dynamic and stored as
// given.
type Document struct {
	registry  domain.Registry
	attrs     domain.M
	changes   map[string]Change
	existed   map[string]bool
	persisted bool
	comparer  domain.Comparer
	decoder   domain.Decoder
	idAlias   string
}

func newDocument(reg domain.Registry, opts []Option) *Document {
	d := &Document{
		registry: reg,
		attrs:    make(domain.M),
		changes:  make(map[string]Change),
		existed:  make(map[string]bool),
		comparer: comparer.NewComparer(),
		decoder:  decoder.NewDecoder(),
		idAlias:  key.IDAlias,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// New returns a new, unsaved document of the model declared by reg. Keys with
// defaults are initialized and, for subtypes, the discriminator is written.
func New(reg domain.Registry, opts ...Option) *Document {
	d := newDocument(reg, opts)
	d.initialize()
	return d
}

// FromWire returns a persisted document loaded from a raw stored document.
// Declared keys missing from raw are initialized with their defaults.
func FromWire(reg domain.Registry, raw domain.M, opts ...Option) *Document {
	d := newDocument(reg, opts)
	for k, v := range raw {
		d.attrs[k] = v
	}
	d.initialize()
	d.persisted = true
	return d
}

func (d *Document) initialize() {
	for name, k := range d.registry.Keys() {
		if _, ok := d.attrs[name]; ok {
			continue
		}
		if _, ok := k.Default(); ok {
			d.attrs[name] = k.Set(k.Get(nil))
		}
	}
	if field, value, ok := d.registry.Discriminator(); ok {
		if _, set := d.attrs[field]; !set {
			d.attrs[field] = value
		}
	}
}

// Registry returns the registry of the model of d.
func (d *Document) Registry() domain.Registry { return d.registry }

func (d *Document) field(name string) string {
	if name == d.idAlias {
		return d.registry.IdentifierFieldName()
	}
	return name
}

// Get returns the application value of a field. Declared keys convert the
// stored value and fall back to their defaults.
func (d *Document) Get(field string) any {
	field = d.field(field)
	if k, ok := d.registry.Get(field); ok {
		return k.Get(d.attrs[field])
	}
	return d.attrs[field]
}

// Has reports whether the field is set.
func (d *Document) Has(field string) bool {
	_, ok := d.attrs[d.field(field)]
	return ok
}

// Set converts the value through the key declared for field and stores it.
// Undeclared fields become dynamic attributes.
func (d *Document) Set(field string, value any) {
	field = d.field(field)
	wire := value
	if k, ok := d.registry.Get(field); ok {
		wire = k.Set(value)
	}

	old, existed := d.attrs[field]
	if existed && d.equal(old, wire) {
		return
	}
	d.track(field, d.Get(field), existed)
	d.attrs[field] = wire
	d.settle(field)
}

// Unset removes a field.
func (d *Document) Unset(field string) {
	field = d.field(field)
	if _, ok := d.attrs[field]; !ok {
		return
	}
	d.track(field, d.Get(field), true)
	delete(d.attrs, field)
	d.settle(field)
}

// SetAll sets every entry of a map or every exported field of a struct.
func (d *Document) SetAll(attrs any) error {
	seq, _, err := structure.Seq2(attrs)
	if err != nil {
		return err
	}
	for name, value := range seq {
		d.Set(name, value)
	}
	return nil
}

// track records the value a field had before its first change and whether it
// was set at all.
func (d *Document) track(field string, old any, existed bool) {
	if _, ok := d.changes[field]; !ok {
		d.changes[field] = Change{Old: old}
		d.existed[field] = existed
	}
}

// settle forgets a change that restored the original value and presence.
func (d *Document) settle(field string) {
	c := d.changes[field]
	_, has := d.attrs[field]
	if has == d.existed[field] && d.equal(c.Old, d.Get(field)) {
		delete(d.changes, field)
		delete(d.existed, field)
	}
}

func (d *Document) equal(a, b any) bool {
	if c, err := d.comparer.Compare(a, b); err == nil {
		return c == 0
	}
	return reflect.DeepEqual(a, b)
}

// ID returns the identifier of the document, if it has one.
func (d *Document) ID() (uuid.UUID, bool) {
	id, ok := d.Get(d.registry.IdentifierFieldName()).(uuid.UUID)
	return id, ok
}

// Attributes returns the application values of every field: declared keys
// in declaration order, then dynamic attributes.
func (d *Document) Attributes() iter.Seq2[string, any] {
	return func(yield func(string, any) bool) {
		for name, k := range d.registry.Keys() {
			v, ok := d.attrs[name]
			if !ok {
				continue
			}
			if !yield(name, k.Get(v)) {
				return
			}
		}
		for name, v := range d.attrs {
			if _, declared := d.registry.Get(name); declared {
				continue
			}
			if !yield(name, v) {
				return
			}
		}
	}
}

// ToWire implements [domain.WireMarshaler].
func (d *Document) ToWire() domain.M {
	return maps.Clone(d.attrs)
}

// Decode decodes the application values of d into target.
func (d *Document) Decode(target any) error {
	return d.decoder.Decode(maps.Collect(d.Attributes()), target)
}

// Changed reports whether the field changed since the document was created,
// loaded or last saved.
func (d *Document) Changed(field string) bool {
	_, ok := d.changes[d.field(field)]
	return ok
}

// Changes returns the changed fields with their previous and current values.
func (d *Document) Changes() map[string]Change {
	res := make(map[string]Change, len(d.changes))
	for field, c := range d.changes {
		c.New = d.Get(field)
		res[field] = c
	}
	return res
}

// ClearChanges forgets every tracked change.
func (d *Document) ClearChanges() {
	clear(d.changes)
	clear(d.existed)
}

// Persisted reports whether the document was loaded or saved.
func (d *Document) Persisted() bool { return d.persisted }

// MarkPersisted flags the document as saved and clears its changes.
func (d *Document) MarkPersisted() {
	d.persisted = true
	d.ClearChanges()
}
