package document

import "github.com/vinicius-lino-figueiredo/godm/domain"

// Option configures behavior through the functional options pattern.
type Option func(*Document)

// WithComparer sets the comparer used to detect changes.
func WithComparer(c domain.Comparer) Option {
	return func(d *Document) {
		d.comparer = c
	}
}

// WithDecoder sets the decoder used by [Document.Decode].
func WithDecoder(dec domain.Decoder) Option {
	return func(d *Document) {
		d.decoder = dec
	}
}

// WithIDAlias sets the field name that refers to the identifier field.
// Default is "id".
func WithIDAlias(a string) Option {
	return func(d *Document) {
		if a != "" {
			d.idAlias = a
		}
	}
}
