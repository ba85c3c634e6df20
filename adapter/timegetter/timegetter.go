// Package timegetter contains the default [domain.TimeGetter] implementation.
package timegetter

import (
	"time"

	"github.com/vinicius-lino-figueiredo/bucketdb/domain"
)

// TimeGetter implements [domain.TimeGetter]. Times are in UTC and truncated to
// milliseconds, the precision kept by exported snapshots.
type TimeGetter struct {
	now func() time.Time
}

// NewTimeGetter returns a new implementation of domain.TimeGetter.
func NewTimeGetter(opts ...Option) domain.TimeGetter {
	t := TimeGetter{now: time.Now}
	for _, opt := range opts {
		opt(&t)
	}
	return &t
}

// GetTime implements [domain.TimeGetter].
func (t *TimeGetter) GetTime() time.Time {
	return t.now().UTC().Truncate(time.Millisecond)
}

// WithClock replaces the clock read by [TimeGetter].
func WithClock(now func() time.Time) Option {
	return func(t *TimeGetter) {
		t.now = now
	}
}

// Option configures behavior through the functional options pattern.
type Option func(*TimeGetter)
