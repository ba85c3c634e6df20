package idgenerator

import "io"

// WithReader sets the source of random bytes. Defaults to crypto/rand.
func WithReader(r io.Reader) Option {
	return func(i *IDGenerator) {
		i.reader = r
	}
}

// WithTimeOrdered makes the generator return version 7 UUIDs, which sort by
// creation time, instead of purely random version 4 ones.
func WithTimeOrdered(ordered bool) Option {
	return func(i *IDGenerator) {
		i.timeOrdered = ordered
	}
}

// Option configures an [IDGenerator].
type Option func(*IDGenerator)
