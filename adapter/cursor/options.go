package cursor

import "github.com/vinicius-lino-figueiredo/godm/domain"

// Option configures behavior through the functional options pattern.
type Option func(*Cursor)

// WithDecoder sets the decoder used by [Cursor.Scan].
func WithDecoder(d domain.Decoder) Option {
	return func(c *Cursor) {
		if d != nil {
			c.dec = d
		}
	}
}
