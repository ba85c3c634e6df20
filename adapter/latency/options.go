package latency

import "time"

// WithDelay sets the fixed latency added before every operation. Defaults to
// zero.
func WithDelay(d time.Duration) Option {
	return func(s *Store) {
		s.delay = d
	}
}

// WithJitter adds a random extra latency in [0, j) to every operation.
func WithJitter(j time.Duration) Option {
	return func(s *Store) {
		s.jitter = j
	}
}

// WithLogf sets the function failures are reported to. Defaults to
// [log.Printf]. A nil function silences the store.
func WithLogf(logf func(format string, args ...any)) Option {
	return func(s *Store) {
		s.logf = logf
		if logf == nil {
			s.logf = func(string, ...any) {}
		}
	}
}

// WithVerbose also logs when operations are scheduled, started and canceled.
func WithVerbose(v bool) Option {
	return func(s *Store) {
		s.verbose = v
	}
}

// Option configures the async store through the functional options pattern.
type Option func(*Store)
