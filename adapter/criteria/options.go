package criteria

import (
	"github.com/rs/zerolog"
	"github.com/vinicius-lino-figueiredo/godm/domain"
)

// Option configures behavior through the functional options pattern.
type Option func(*Builder)

// WithLogger sets the logger. Conditions on undeclared fields are logged at
// debug level.
func WithLogger(l zerolog.Logger) Option {
	return func(b *Builder) {
		b.log = l
	}
}

// WithIDAlias sets the field name rewritten to the identifier field. Default
// is "id".
func WithIDAlias(a string) Option {
	return func(b *Builder) {
		if a != "" {
			b.idAlias = a
		}
	}
}

// WithTypedConditions makes every declared scalar key coerce the values it is
// compared to, not only identifier keys.
func WithTypedConditions(t bool) Option {
	return func(b *Builder) {
		b.typed = t
	}
}

// WithDecoder sets the decoder used to read skip and limit values.
func WithDecoder(d domain.Decoder) Option {
	return func(b *Builder) {
		b.decoder = d
	}
}
