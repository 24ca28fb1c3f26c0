package index

import "github.com/vinicius-lino-figueiredo/godm/domain"

// WithUnique makes the index reject documents with a key already in use.
func WithUnique(u bool) Option {
	return func(i *Index) {
		i.unique = u
	}
}

// WithSparse makes the index skip documents without a value for the field.
func WithSparse(s bool) Option {
	return func(i *Index) {
		i.sparse = s
	}
}

// WithComparer sets the [domain.Comparer] used to order keys.
func WithComparer(c domain.Comparer) Option {
	return func(i *Index) {
		i.comparer = c
	}
}

// WithHasher sets the [domain.Hasher] used to group matching keys.
func WithHasher(h domain.Hasher) Option {
	return func(i *Index) {
		i.hasher = h
	}
}

// WithFieldNavigator sets the [domain.FieldNavigator] used to read keys.
func WithFieldNavigator(fn domain.FieldNavigator) Option {
	return func(i *Index) {
		i.fieldNavigator = fn
	}
}

// Option configures index behavior through the functional options pattern.
type Option func(*Index)
