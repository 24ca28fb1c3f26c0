package timegetter

import "time"

// Option configures behavior through the functional options pattern.
type Option func(*TimeGetter)

// WithClock sets the function used to read the current time. Default is
// [time.Now].
func WithClock(now func() time.Time) Option {
	return func(t *TimeGetter) {
		if now != nil {
			t.now = now
		}
	}
}
