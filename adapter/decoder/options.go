package decoder

// Option configures behavior through the functional options pattern.
type Option func(*Decoder)

// WithWeaklyTypedInput enables weak conversions, such as strings to numbers.
func WithWeaklyTypedInput(w bool) Option {
	return func(d *Decoder) {
		d.weak = w
	}
}
