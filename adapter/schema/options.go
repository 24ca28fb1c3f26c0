package schema

import (
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

type options struct {
	log      zerolog.Logger
	validate *validator.Validate
}

// WithLogger sets the logger given to the built registries.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) {
		o.log = l
	}
}

// WithValidator sets the validator used to check schema documents, allowing
// custom rules.
func WithValidator(v *validator.Validate) Option {
	return func(o *options) {
		if v != nil {
			o.validate = v
		}
	}
}

// Option configures schema loading through the functional options pattern.
type Option func(*options)
