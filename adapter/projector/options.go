package projector

import "github.com/vinicius-lino-figueiredo/godm/domain"

// WithFieldNavigator sets the [domain.FieldNavigator] that will be used by
// [Projector].
func WithFieldNavigator(fn domain.FieldNavigator) Option {
	return func(p *Projector) {
		p.fn = fn
	}
}

// WithIdentifierField sets the field kept in every projected document.
func WithIdentifierField(f string) Option {
	return func(p *Projector) {
		if f != "" {
			p.identifierField = f
		}
	}
}

// Option configures projector behavior through the functional options pattern.
type Option func(*Projector)
