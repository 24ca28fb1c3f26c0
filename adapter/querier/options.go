package querier

import "github.com/vinicius-lino-figueiredo/godm/domain"

// WithMatcher sets the matcher implementation for querier evaluations.
func WithMatcher(m domain.Matcher) Option {
	return func(q *Querier) {
		q.mtchr = m
	}
}

// WithComparer sets the comparer implementation for sorting operations.
func WithComparer(c domain.Comparer) Option {
	return func(q *Querier) {
		q.cmpr = c
	}
}

// WithFieldNavigator sets the field navigator used to read sort keys.
func WithFieldNavigator(f domain.FieldNavigator) Option {
	return func(q *Querier) {
		q.fn = f
	}
}

// WithProjector sets the implementation that will be used to project the
// resultant documents.
func WithProjector(p domain.Projector) Option {
	return func(q *Querier) {
		q.proj = p
	}
}

// WithCapacity sets the initial capacity of result slices.
func WithCapacity(c int) Option {
	return func(q *Querier) {
		q.capacity = max(c, 0)
	}
}

// Option configures querier behavior through the functional options
// pattern.
type Option func(*Querier)
