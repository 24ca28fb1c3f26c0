package memstore

import (
	"github.com/rs/zerolog"
	"github.com/vinicius-lino-figueiredo/godm/domain"
)

// WithIdentifierField sets the field holding the primary key of stored
// documents.
func WithIdentifierField(f string) Option {
	return func(s *Store) {
		if f != "" {
			s.identifierField = f
		}
	}
}

// WithComparer sets the [domain.Comparer] shared by indexes and queries.
func WithComparer(c domain.Comparer) Option {
	return func(s *Store) {
		s.comparer = c
	}
}

// WithHasher sets the [domain.Hasher] used by indexes.
func WithHasher(h domain.Hasher) Option {
	return func(s *Store) {
		s.hasher = h
	}
}

// WithFieldNavigator sets the [domain.FieldNavigator] shared by indexes and
// queries.
func WithFieldNavigator(fn domain.FieldNavigator) Option {
	return func(s *Store) {
		s.fieldNavigator = fn
	}
}

// WithDecoder sets the [domain.Decoder] used by returned cursors.
func WithDecoder(d domain.Decoder) Option {
	return func(s *Store) {
		s.decoder = d
	}
}

// WithQuerier sets the [domain.Querier] that filters, sorts and paginates
// documents.
func WithQuerier(q domain.Querier) Option {
	return func(s *Store) {
		s.querier = q
	}
}

// WithLogger sets the logger. Defaults to [zerolog.Nop].
func WithLogger(l zerolog.Logger) Option {
	return func(s *Store) {
		s.log = l
	}
}

// Option configures store behavior through the functional options pattern.
type Option func(*Store)
