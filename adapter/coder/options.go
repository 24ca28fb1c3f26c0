package coder

import "time"

// TimestampOption configures a [Timestamp] through the functional options
// pattern.
type TimestampOption func(*Timestamp)

// WithLocation sets the location read values are expressed in. Stored values
// are always UTC.
func WithLocation(loc *time.Location) TimestampOption {
	return func(t *Timestamp) {
		t.location = loc
	}
}
