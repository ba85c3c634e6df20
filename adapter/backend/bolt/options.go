package bolt

import "time"

// WithTimeout sets how long [Open] waits for the file lock. Defaults to ten
// seconds.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
	}
}

// WithNoSync skips fsync after each commit. Only meant for tests.
func WithNoSync(noSync bool) Option {
	return func(o *options) {
		o.noSync = noSync
	}
}

type options struct {
	timeout time.Duration
	noSync  bool
}

// Option configures backend behavior through the functional options pattern.
type Option func(*options)
