package repository

import (
	"github.com/rs/zerolog"
	"github.com/vinicius-lino-figueiredo/godm/adapter/document"
	"github.com/vinicius-lino-figueiredo/godm/domain"
)

// WithBuilder sets the [domain.Builder] that normalizes query
// specifications. Defaults to a criteria builder over the repository
// registry.
func WithBuilder(b domain.Builder) Option {
	return func(r *Repository) {
		r.builder = b
	}
}

// WithIDGenerator sets the [domain.IDGenerator] used by [Repository.Save].
// Default generates time-ordered UUIDs.
func WithIDGenerator(g domain.IDGenerator) Option {
	return func(r *Repository) {
		r.idGenerator = g
	}
}

// WithTimeGetter sets the [domain.TimeGetter] used to maintain timestamps.
func WithTimeGetter(t domain.TimeGetter) Option {
	return func(r *Repository) {
		r.timeGetter = t
	}
}

// WithDocumentOptions sets the options given to every loaded or initialized
// document.
func WithDocumentOptions(opts ...document.Option) Option {
	return func(r *Repository) {
		r.docOpts = append(r.docOpts, opts...)
	}
}

// WithLogger sets the logger. Defaults to [zerolog.Nop].
func WithLogger(l zerolog.Logger) Option {
	return func(r *Repository) {
		r.log = l
	}
}

// Option configures repository behavior through the functional options
// pattern.
type Option func(*Repository)
