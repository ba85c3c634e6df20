package query

import "github.com/vinicius-lino-figueiredo/bucketdb/domain"

// WithMatcher sets the [domain.Matcher] used to evaluate predicates.
func WithMatcher(m domain.Matcher) Option {
	return func(q *Query) {
		q.matcher = m
	}
}

// WithCursorFactory sets the factory used by [Query.Cursor].
func WithCursorFactory(cf domain.CursorFactory) Option {
	return func(q *Query) {
		q.cursorFactory = cf
	}
}

// Option configures query behavior through the functional options pattern.
type Option func(*Query)
