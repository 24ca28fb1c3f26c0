// Package godm maps document models onto query criteria for document stores.
//
// Models are declared as registries of typed keys. A registry turns
// user-friendly query specifications, such as M{"age": "21", "order": "name"},
// into normalized criteria and query options, converting values to their
// storage representation along the way. Repositories combine a registry with
// a [Store] to load, save and find documents.
package godm

import (
	"io"

	"github.com/vinicius-lino-figueiredo/godm/adapter/coder"
	"github.com/vinicius-lino-figueiredo/godm/adapter/criteria"
	"github.com/vinicius-lino-figueiredo/godm/adapter/key"
	"github.com/vinicius-lino-figueiredo/godm/adapter/memstore"
	"github.com/vinicius-lino-figueiredo/godm/adapter/registry"
	"github.com/vinicius-lino-figueiredo/godm/adapter/repository"
	"github.com/vinicius-lino-figueiredo/godm/adapter/schema"
	"github.com/vinicius-lino-figueiredo/godm/domain"
)

var (
	// ErrEmptyFieldName is returned when a key or field name is empty.
	ErrEmptyFieldName = domain.ErrEmptyFieldName
	// ErrNotFound is returned by bang finders that match no document.
	ErrNotFound = domain.ErrNotFound
	// ErrCursorClosed is returned when using a closed cursor.
	ErrCursorClosed = domain.ErrCursorClosed
	// ErrScanBeforeNext is returned when Scan is called before Next.
	ErrScanBeforeNext = domain.ErrScanBeforeNext
	// ErrTargetNil is returned when the decoding target is nil.
	ErrTargetNil = domain.ErrTargetNil
	// ErrNonPointer is returned when the decoding target is not a pointer.
	ErrNonPointer = domain.ErrNonPointer
	// ErrConstraintViolated is returned when a unique index rejects a value.
	ErrConstraintViolated = domain.ErrConstraintViolated
)

type (
	// ErrInvalidSpecification is returned when a query specification or
	// one of its clauses has an unexpected type.
	ErrInvalidSpecification = domain.ErrInvalidSpecification
	// ErrReservedFieldName is returned when declaring a key whose name is
	// reserved by the registry.
	ErrReservedFieldName = domain.ErrReservedFieldName
	// ErrDuplicateModel is returned when two models share a name.
	ErrDuplicateModel = domain.ErrDuplicateModel
	// ErrUnknownModel is returned when a model refers to one that was not
	// declared.
	ErrUnknownModel = domain.ErrUnknownModel
	// ErrUnknownType is returned for type tags with no registered coder.
	ErrUnknownType = domain.ErrUnknownType
	// ErrInvalidFinder is returned for names that are not dynamic finders.
	ErrInvalidFinder = domain.ErrInvalidFinder
	// ErrArgumentCount is returned when a finder receives the wrong number
	// of arguments.
	ErrArgumentCount = domain.ErrArgumentCount
	// ErrDecode is returned when a document cannot be decoded into a value.
	ErrDecode = domain.ErrDecode
)

// M is a generic document.
type M = domain.M

// Criteria is a normalized query condition document.
type Criteria = domain.Criteria

// QueryOptions holds the skip, limit, sort and projection of a query.
type QueryOptions = domain.QueryOptions

// Sort represents an ordered list of fields which should be used,
// respectively, to sort the results of a query.
type Sort = domain.Sort

// SortName represents a single field and the order which should be used to
// sort it, a positive value meaning ascending order and a negative value
// meaning descending order.
type SortName = domain.SortName

// Key is a typed field of a model.
type Key = domain.Key

// Coder converts values between user and storage representations.
type Coder = domain.Coder

// Registry holds the keys of a model.
type Registry = domain.Registry

// Store persists documents in named collections.
type Store = domain.Store

// Cursor provides iteration over query results.
type Cursor = domain.Cursor

// KeyOption configures a [Key].
type KeyOption = domain.KeyOption

// Key options, re-exported for convenience.
var (
	WithDefault  = domain.WithDefault
	WithRequired = domain.WithRequired
	WithUnique   = domain.WithUnique
	WithNumeric  = domain.WithNumeric
	WithIndex    = domain.WithIndex
	WithFormat   = domain.WithFormat
	WithLength   = domain.WithLength
	WithExtra    = domain.WithExtra
)

// NewModel creates a registry for a model named name. Options are the ones
// accepted by [registry.New], such as [registry.WithCollection] and
// [registry.WithTimestamps].
func NewModel(name string, opts ...registry.Option) *registry.Registry {
	return registry.New(name, opts...)
}

// NewKey creates a key whose coder is looked up by type tag, such as "string",
// "integer" or "object_id".
func NewKey(name, tag string, opts ...KeyOption) (Key, error) {
	c, ok := coder.Lookup(tag)
	if !ok {
		return nil, ErrUnknownType{Tag: tag}
	}
	return key.NewKey(name, c, opts...)
}

// Build converts a query specification into criteria and query options using
// the keys of reg.
func Build(reg Registry, spec any, opts ...criteria.Option) (Criteria, QueryOptions, error) {
	return criteria.NewBuilder(reg, opts...).Build(spec)
}

// NewStore creates an in-memory [Store].
func NewStore(opts ...memstore.Option) *memstore.Store {
	return memstore.NewStore(opts...)
}

// NewRepository creates a repository of documents of reg kept in store.
func NewRepository(reg Registry, store Store, opts ...repository.Option) *repository.Repository {
	return repository.New(reg, store, opts...)
}

// LoadSchema reads model declarations from a YAML document.
func LoadSchema(r io.Reader, opts ...schema.Option) (*schema.Schema, error) {
	return schema.Load(r, opts...)
}
