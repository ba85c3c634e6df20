// Package query contains the default [domain.Query] builder and a generic
// in-memory sequence used to order, transform and pick query results.
package query

import (
	"context"

	"github.com/vinicius-lino-figueiredo/bucketdb/adapter/cursor"
	"github.com/vinicius-lino-figueiredo/bucketdb/adapter/matcher"
	"github.com/vinicius-lino-figueiredo/bucketdb/domain"
)

// Source provides the documents a [Query] filters.
type Source interface {
	GetAll(ctx context.Context, bucket string) ([]domain.Document, error)
}

// Query implements [domain.Query]. Builder methods change the receiver and
// return it, so calls can be chained.
type Query struct {
	src           Source
	bucket        string
	matcher       domain.Matcher
	cursorFactory domain.CursorFactory
	and           []domain.Predicate
	funcs         []func(domain.Document) (bool, error)
	or            [][]domain.Predicate
}

// New returns a new [Query] over the given bucket of src.
func New(src Source, bucket string, opts ...Option) *Query {
	q := &Query{
		src:           src,
		bucket:        bucket,
		matcher:       matcher.NewMatcher(),
		cursorFactory: cursor.NewCursor,
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Where implements [domain.Query].
func (q *Query) Where(p domain.Predicate) domain.Query {
	q.and = append(q.and, p)
	return q
}

// OrWhere implements [domain.Query].
func (q *Query) OrWhere(p domain.Predicate) domain.Query {
	q.or = append(q.or, []domain.Predicate{p})
	return q
}

// OrGroup implements [domain.Query]. An empty group is ignored.
func (q *Query) OrGroup(ps ...domain.Predicate) domain.Query {
	if len(ps) == 0 {
		return q
	}
	q.or = append(q.or, append([]domain.Predicate(nil), ps...))
	return q
}

// WhereFunc implements [domain.Query].
func (q *Query) WhereFunc(fn func(domain.Document) (bool, error)) domain.Query {
	q.funcs = append(q.funcs, fn)
	return q
}

// Execute implements [domain.Query].
func (q *Query) Execute(ctx context.Context) ([]domain.Document, error) {
	docs, err := q.src.GetAll(ctx, q.bucket)
	if err != nil {
		return nil, err
	}

	res := make([]domain.Document, 0, len(docs))
	for _, doc := range docs {
		ok, err := q.match(doc)
		if err != nil {
			return nil, err
		}
		if ok {
			res = append(res, doc)
		}
	}
	return res, nil
}

// First implements [domain.Query].
func (q *Query) First(ctx context.Context) (domain.Document, error) {
	docs, err := q.Execute(ctx)
	if err != nil || len(docs) == 0 {
		return nil, err
	}
	return docs[0], nil
}

// Count implements [domain.Query].
func (q *Query) Count(ctx context.Context) (int, error) {
	docs, err := q.Execute(ctx)
	if err != nil {
		return 0, err
	}
	return len(docs), nil
}

// Cursor implements [domain.Query].
func (q *Query) Cursor(ctx context.Context, options ...domain.CursorOption) (domain.Cursor, error) {
	docs, err := q.Execute(ctx)
	if err != nil {
		return nil, err
	}
	return q.cursorFactory(ctx, docs, options...)
}

// Seq executes the query and wraps the result in a [Seq].
func (q *Query) Seq(ctx context.Context) (Seq[domain.Document], error) {
	docs, err := q.Execute(ctx)
	if err != nil {
		return Seq[domain.Document]{}, err
	}
	return Seq[domain.Document]{items: docs}, nil
}

func (q *Query) match(doc domain.Document) (bool, error) {
	ok, err := q.matcher.MatchAll(doc, q.and)
	if err != nil || !ok {
		return false, err
	}

	for _, fn := range q.funcs {
		if ok, err := fn(doc); err != nil || !ok {
			return false, err
		}
	}

	if len(q.or) == 0 {
		return true, nil
	}
	for _, group := range q.or {
		ok, err := q.matcher.MatchAny(doc, group)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}
