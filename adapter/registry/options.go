package registry

import (
	"strings"

	"github.com/rs/zerolog"
	"github.com/vinicius-lino-figueiredo/godm/adapter/key"
)

// Option configures behavior through the functional options pattern.
type Option func(*Registry)

// WithCollection sets the collection name. Subtypes always use the collection
// of the root.
func WithCollection(c string) Option {
	return func(r *Registry) {
		if c != "" {
			r.collection = c
		}
	}
}

// WithIdentifierField sets the name of the identifier field. Default is "_id".
// Blank names and the reserved alias "id" are ignored.
func WithIdentifierField(f string) Option {
	return func(r *Registry) {
		if f = strings.TrimSpace(f); f != "" && f != key.IDAlias {
			r.identifierField = f
		}
	}
}

// WithIdentifierKey sets whether the identifier field is declared when the
// registry is created. Default is true.
func WithIdentifierKey(i bool) Option {
	return func(r *Registry) {
		r.identifierKey = i
	}
}

// WithDiscriminatorField sets the field that stores the subtype name. Default
// is "_type".
func WithDiscriminatorField(f string) Option {
	return func(r *Registry) {
		if f != "" {
			r.discriminatorField = f
		}
	}
}

// WithTimestamps declares created_at and updated_at keys, maintained on save.
func WithTimestamps(t bool) Option {
	return func(r *Registry) {
		r.timestamps = t
	}
}

// WithEmbeddable marks the model as a nested document type.
func WithEmbeddable(e bool) Option {
	return func(r *Registry) {
		r.embeddable = e
	}
}

// WithLogger sets the logger used to report declarations.
func WithLogger(l zerolog.Logger) Option {
	return func(r *Registry) {
		r.log = l
	}
}
