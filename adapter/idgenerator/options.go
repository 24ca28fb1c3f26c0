package idgenerator

import "io"

// Option configures behavior through the functional options pattern.
type Option func(*IDGenerator)

// WithReader sets the source of random bytes. Default is [crypto/rand.Reader].
func WithReader(r io.Reader) Option {
	return func(i *IDGenerator) {
		if r != nil {
			i.reader = r
		}
	}
}

// WithTimeOrdered makes the generator produce version 7 UUIDs, which sort by
// creation time. Default is false.
func WithTimeOrdered(t bool) Option {
	return func(i *IDGenerator) {
		i.timeOrdered = t
	}
}
