// Package domain contains domain-specific interfaces, entities and option types
// for godm.
//
// This package defines the core interfaces that must be implemented by
// adapters, such as coders, keys, field registries, criteria builders and
// document stores, as well as the functional options shared between them.
package domain

import (
	"context"
	"io"
	"iter"
	"time"

	"github.com/google/uuid"
)

// Coder converts a single field value between its application representation
// and its wire representation. Coders never fail: values that cannot be
// converted become nil.
type Coder interface {
	// ToWire converts an application value to the value stored in the
	// document store. It must accept values that are already in wire shape.
	ToWire(value any) any
	// FromWire converts a stored value back to its application
	// representation.
	FromWire(value any) any
}

// TypeNamer is implemented by coders that have a stable type name. Two keys
// with coders of the same name are considered to have the same type.
type TypeNamer interface {
	TypeName() string
}

// NumberCoder is implemented by the integer and floating-point coders.
type NumberCoder interface {
	Number() bool
}

// IdentifierCoder is implemented by the coder of the store-native identifier.
type IdentifierCoder interface {
	Identifier() bool
}

// EmbeddedCoder is a [Coder] for nested documents, composed of their own
// [Registry].
type EmbeddedCoder interface {
	Coder
	// Registry returns the field registry of the nested document.
	Registry() Registry
}

// WireMarshaler is implemented by values that know how to produce their own
// wire document.
type WireMarshaler interface {
	ToWire() M
}

// Key describes a declared field: a canonical name, a coder and its options.
// Keys are immutable and shared by every instance of a model.
type Key interface {
	// Name returns the canonical field name.
	Name() string
	// Coder returns the coder used by the key.
	Coder() Coder
	// Options returns the options given at declaration, without the
	// default value.
	Options() KeyOptions
	// Default returns the configured default value or producer, and
	// whether there is one.
	Default() (any, bool)
	// Set converts an application value to its wire representation.
	Set(value any) any
	// Get converts a wire value to its application representation,
	// returning the default value for nil when one is configured.
	Get(value any) any
	// Embeddable reports whether the key holds a nested document.
	Embeddable() bool
	// Number reports whether the key holds an integer or float.
	Number() bool
	// Identifier reports whether the key holds the store identifier.
	Identifier() bool
	// Equal reports whether both keys have the same name and type.
	Equal(Key) bool
}

// Registry is an insertion-ordered set of keys declared for a model type.
type Registry interface {
	// Name returns the model name.
	Name() string
	// Collection returns the name of the collection where documents of the
	// model are stored.
	Collection() string
	// Get returns the key declared with the given name.
	Get(name string) (Key, bool)
	// Keys returns the declared keys in declaration order.
	Keys() iter.Seq2[string, Key]
	// Len returns the number of declared keys.
	Len() int
	// IdentifierFieldName returns the canonical name of the primary
	// identifier field.
	IdentifierFieldName() string
	// Discriminator returns the field and value used to scope documents
	// of a polymorphic subtype stored in a shared collection. ok is false
	// for models that are not single-collection subtypes.
	Discriminator() (field string, value string, ok bool)
	// Declare adds or replaces a key.
	Declare(Key) error
}

// Builder converts loosely structured query specifications into normalized
// criteria and options.
type Builder interface {
	// Build partitions and normalizes the given specification.
	Build(spec any) (Criteria, QueryOptions, error)
}

// Comparer provides ordering and comparison operations for different data
// types.
type Comparer interface {
	// Compare returns -1, 0, or 1 based on the comparison of two values.
	Compare(any, any) (int, error)
	// Comparable returns true if two values can be compared.
	Comparable(any, any) bool
}

// Hasher generates hash values for data deduplication.
type Hasher interface {
	// Hash generates a hash value for the given data.
	Hash(any) (uint64, error)
}

// Decoder converts between different data representations.
type Decoder interface {
	// Decode converts from one data format to another.
	Decode(any, any) error
}

// FieldNavigator resolves dotted field paths in raw documents.
type FieldNavigator interface {
	// GetAddress splits a dotted field name into path parts.
	GetAddress(field string) ([]string, error)
	// GetField returns every value found following the path parts. Lists
	// are traversed by numeric parts, or expanded into their elements
	// otherwise, in which case expanded is true. Missing fields are not
	// included in the result.
	GetField(doc any, path ...string) (values []any, expanded bool, err error)
}

// Matcher evaluates whether documents match normalized criteria.
type Matcher interface {
	// SetQuery parses the criteria that will be used by the next calls to
	// Match.
	SetQuery(Criteria) error
	// Match returns true if the document matches the current criteria.
	Match(M) (bool, error)
}

// Projector restricts documents to a list of fields.
type Projector interface {
	// Project returns copies of the documents containing only the given
	// fields and the identifier. An empty list returns docs unchanged.
	Project(docs []M, fields []string) ([]M, error)
}

// Querier filters, sorts and paginates a sequence of documents.
type Querier interface {
	// Query returns the documents matching the given criteria and options.
	Query(data iter.Seq2[M, error], criteria Criteria, opts QueryOptions) ([]M, error)
}

// Index provides fast document lookups based on field values.
type Index interface {
	// FieldName returns the indexed field.
	FieldName() string
	// Unique reports whether the index rejects duplicated values.
	Unique() bool
	// Insert adds documents to the index.
	Insert(ctx context.Context, docs ...M) error
	// Remove removes documents from the index.
	Remove(ctx context.Context, docs ...M) error
	// GetMatching returns documents with the specified field values.
	GetMatching(value ...any) ([]M, error)
	// GetBetweenBounds returns documents whose key satisfies the range
	// operators ($gt, $gte, $lt, $lte) in bounds.
	GetBetweenBounds(ctx context.Context, bounds M) (iter.Seq2[M, error], error)
	// GetAll returns all documents in the index ordered by key.
	GetAll() iter.Seq[M]
	// GetNumberOfKeys returns the number of unique keys in the index.
	GetNumberOfKeys() int
}

// Cursor provides iteration over query results.
type Cursor interface {
	// Scan decodes the current document into target.
	Scan(ctx context.Context, target any) error
	// Next advances the cursor to the next document, returning true if
	// available.
	Next() bool
	// Err returns any error that occurred during iteration.
	Err() error
	// Close releases cursor resources and should be called when done.
	Close() error
}

// Store is the raw document store collaborator. It receives criteria and
// options already normalized by a [Builder].
type Store interface {
	// Find returns a cursor over the documents matching criteria.
	Find(ctx context.Context, collection string, criteria Criteria, opts QueryOptions) (Cursor, error)
	// Count returns the number of documents matching criteria.
	Count(ctx context.Context, collection string, criteria Criteria) (int64, error)
	// Insert stores new raw documents.
	Insert(ctx context.Context, collection string, docs ...M) error
	// Update applies changes to every document matching criteria and
	// returns how many were changed.
	Update(ctx context.Context, collection string, criteria Criteria, changes Changes) (int64, error)
	// Remove deletes every document matching criteria and returns how many
	// were removed.
	Remove(ctx context.Context, collection string, criteria Criteria) (int64, error)
	// Export writes every document of the collection to w.
	Export(ctx context.Context, collection string, w io.Writer) error
}

// IDGenerator creates new store-native identifiers.
type IDGenerator interface {
	// GenerateID returns a new identifier.
	GenerateID() (uuid.UUID, error)
}

// TimeGetter provides current time for timestamping operations.
type TimeGetter interface {
	// GetTime returns the current time.
	GetTime() time.Time
}
