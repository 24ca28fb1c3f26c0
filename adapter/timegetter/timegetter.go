// Package timegetter contains the default [domain.TimeGetter] implementation.
package timegetter

import (
	"time"

	"github.com/vinicius-lino-figueiredo/godm/domain"
)

// TimeGetter implements [domain.TimeGetter]. Times are in UTC with
// millisecond precision, the precision kept by stored timestamps.
type TimeGetter struct {
	now func() time.Time
}

// NewTimeGetter returns a new implementation of domain.TimeGetter.
func NewTimeGetter(opts ...Option) domain.TimeGetter {
	t := &TimeGetter{now: time.Now}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// GetTime implements [domain.TimeGetter].
func (t *TimeGetter) GetTime() time.Time {
	return t.now().UTC().Truncate(time.Millisecond)
}
