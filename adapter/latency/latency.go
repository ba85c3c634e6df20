// Package latency wraps a [domain.Store] in an asynchronous API that emulates
// the latency of a remote database.
//
// Every call returns a [Future] right away and runs the underlying operation
// once the configured delay has elapsed. Canceling the context before that
// drops the operation without running it; once started, an operation always
// runs to completion.
package latency

import (
	"context"
	"io"
	"log"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/vinicius-lino-figueiredo/bucketdb/domain"
)

// Store is the asynchronous counterpart of [domain.Store].
type Store struct {
	store   domain.Store
	delay   time.Duration
	jitter  time.Duration
	logf    func(format string, args ...any)
	verbose bool
}

// New returns a new [Store] running operations against store.
func New(store domain.Store, opts ...Option) *Store {
	s := &Store{
		store: store,
		logf:  log.Printf,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) nextDelay() time.Duration {
	d := s.delay
	if s.jitter > 0 {
		d += rand.N(s.jitter)
	}
	return d
}

// schedule runs fn after the emulated latency and resolves the returned
// future with its result.
func schedule[T any](s *Store, ctx context.Context, op string, fn func(context.Context) (T, error)) *Future[T] {
	f := newFuture[T]()
	if err := ctx.Err(); err != nil {
		var zero T
		f.resolve(zero, err)
		return f
	}

	delay := s.nextDelay()
	if s.verbose {
		s.logf("bucketdb/latency: %s scheduled in %v", op, delay)
	}

	var (
		mu       sync.Mutex
		started  bool
		timer    *time.Timer
		stopCtx  func() bool
		canceled bool
	)
	mu.Lock()
	defer mu.Unlock()

	timer = time.AfterFunc(delay, func() {
		mu.Lock()
		if canceled {
			mu.Unlock()
			return
		}
		started = true
		stopCtx()
		mu.Unlock()

		if s.verbose {
			s.logf("bucketdb/latency: %s started", op)
		}
		value, err := fn(context.WithoutCancel(ctx))
		if err != nil {
			s.logf("bucketdb/latency: %s failed: %v", op, err)
		}
		f.resolve(value, err)
	})
	stopCtx = context.AfterFunc(ctx, func() {
		mu.Lock()
		defer mu.Unlock()
		if started {
			return
		}
		canceled = true
		timer.Stop()
		if s.verbose {
			s.logf("bucketdb/latency: %s canceled", op)
		}
		var zero T
		f.resolve(zero, context.Cause(ctx))
	})
	return f
}

type none = struct{}

func noValue(err error) (none, error) {
	return none{}, err
}

// CreateBucket schedules [domain.Store.CreateBucket].
func (s *Store) CreateBucket(ctx context.Context, name string) *Future[none] {
	return schedule(s, ctx, "create bucket", func(ctx context.Context) (none, error) {
		return noValue(s.store.CreateBucket(ctx, name))
	})
}

// DeleteBucket schedules [domain.Store.DeleteBucket].
func (s *Store) DeleteBucket(ctx context.Context, name string) *Future[none] {
	return schedule(s, ctx, "delete bucket", func(ctx context.Context) (none, error) {
		return noValue(s.store.DeleteBucket(ctx, name))
	})
}

// ListBuckets schedules [domain.Store.ListBuckets].
func (s *Store) ListBuckets(ctx context.Context) *Future[[]string] {
	return schedule(s, ctx, "list buckets", s.store.ListBuckets)
}

// Insert schedules [domain.Store.Insert].
func (s *Store) Insert(ctx context.Context, bucket string, doc any) *Future[domain.Document] {
	return schedule(s, ctx, "insert", func(ctx context.Context) (domain.Document, error) {
		return s.store.Insert(ctx, bucket, doc)
	})
}

// Get schedules [domain.Store.Get]. Unlike the synchronous store, a missing
// document resolves with [domain.ErrNotFound].
func (s *Store) Get(ctx context.Context, bucket string, id any) *Future[domain.Document] {
	return schedule(s, ctx, "get", func(ctx context.Context) (domain.Document, error) {
		doc, err := s.store.Get(ctx, bucket, id)
		if err == nil && doc == nil {
			return nil, domain.ErrNotFound
		}
		return doc, err
	})
}

// GetAll schedules [domain.Store.GetAll].
func (s *Store) GetAll(ctx context.Context, bucket string) *Future[[]domain.Document] {
	return schedule(s, ctx, "get all", func(ctx context.Context) ([]domain.Document, error) {
		return s.store.GetAll(ctx, bucket)
	})
}

// Update schedules [domain.Store.Update].
func (s *Store) Update(ctx context.Context, bucket string, doc any) *Future[domain.Document] {
	return schedule(s, ctx, "update", func(ctx context.Context) (domain.Document, error) {
		return s.store.Update(ctx, bucket, doc)
	})
}

// Delete schedules [domain.Store.Delete].
func (s *Store) Delete(ctx context.Context, bucket string, id any) *Future[none] {
	return schedule(s, ctx, "delete", func(ctx context.Context) (none, error) {
		return noValue(s.store.Delete(ctx, bucket, id))
	})
}

// Filter schedules [domain.Store.Filter].
func (s *Store) Filter(ctx context.Context, bucket string, fields any) *Future[[]domain.Document] {
	return schedule(s, ctx, "filter", func(ctx context.Context) ([]domain.Document, error) {
		return s.store.Filter(ctx, bucket, fields)
	})
}

// Query returns a query builder over the wrapped store. Run it with
// [Store.Execute] to keep the emulated latency.
func (s *Store) Query(bucket string) domain.Query {
	return s.store.Query(bucket)
}

// Execute schedules [domain.Query.Execute].
func (s *Store) Execute(ctx context.Context, q domain.Query) *Future[[]domain.Document] {
	return schedule(s, ctx, "query", q.Execute)
}

// Transact schedules [domain.Store.Transact].
func (s *Store) Transact(ctx context.Context, buckets []string, fn func(domain.Tx) error) *Future[none] {
	return schedule(s, ctx, "transact", func(ctx context.Context) (none, error) {
		return noValue(s.store.Transact(ctx, buckets, fn))
	})
}

// Dump schedules [domain.Store.Dump].
func (s *Store) Dump(ctx context.Context, buckets ...string) *Future[domain.Snapshot] {
	return schedule(s, ctx, "dump", func(ctx context.Context) (domain.Snapshot, error) {
		return s.store.Dump(ctx, buckets...)
	})
}

// Export schedules [domain.Store.Export].
func (s *Store) Export(ctx context.Context, w io.Writer, buckets ...string) *Future[none] {
	return schedule(s, ctx, "export", func(ctx context.Context) (none, error) {
		return noValue(s.store.Export(ctx, w, buckets...))
	})
}

// Import schedules [domain.Store.Import].
func (s *Store) Import(ctx context.Context, snap domain.Snapshot, overwrite bool) *Future[none] {
	return schedule(s, ctx, "import", func(ctx context.Context) (none, error) {
		return noValue(s.store.Import(ctx, snap, overwrite))
	})
}

// ImportFrom schedules [domain.Store.ImportFrom].
func (s *Store) ImportFrom(ctx context.Context, r io.Reader, overwrite bool) *Future[none] {
	return schedule(s, ctx, "import", func(ctx context.Context) (none, error) {
		return noValue(s.store.ImportFrom(ctx, r, overwrite))
	})
}

// Close closes the wrapped store right away.
func (s *Store) Close() error {
	return s.store.Close()
}
