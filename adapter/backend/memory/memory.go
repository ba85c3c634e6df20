// Package memory contains a [domain.Backend] that keeps documents in memory.
// Each bucket is an AVL tree keyed by insertion sequence, so listing a bucket
// returns its documents in creation order.
package memory

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/vinicius-lino-figueiredo/bst"
	"github.com/vinicius-lino-figueiredo/bst/adapter/avl"
	"github.com/vinicius-lino-figueiredo/bucketdb/adapter/data"
	"github.com/vinicius-lino-figueiredo/bucketdb/domain"
	"github.com/vinicius-lino-figueiredo/bucketdb/pkg/ctxsync"
)

// ErrQuotaExceeded is returned when storing a document would go past the limit
// set with [WithQuota].
var ErrQuotaExceeded = errors.New("document quota exceeded")

type entry struct {
	key string
	doc domain.Document
}

type seqComparer struct{}

// CompareKeys implements bst.Comparer.
func (seqComparer) CompareKeys(a, b uint64) (int, error) {
	return cmp.Compare(a, b), nil
}

// CompareValues implements bst.Comparer.
func (seqComparer) CompareValues(a, b *entry) (bool, error) {
	return a == b, nil
}

type bucket struct {
	tree bst.BST[uint64, *entry]
	ids  map[string]uint64
	seq  uint64
}

func newBucket() *bucket {
	return &bucket{
		tree: avl.NewBST(true, 8, bst.Comparer[uint64, *entry](seqComparer{})),
		ids:  make(map[string]uint64),
	}
}

func (b *bucket) lookup(key string) (uint64, *entry, error) {
	seq, ok := b.ids[key]
	if !ok {
		return 0, nil, nil
	}
	node, err := b.tree.Search(seq)
	if err != nil || node == nil {
		return 0, nil, err
	}
	values := node.Values()
	if len(values) == 0 {
		return 0, nil, nil
	}
	return seq, values[0], nil
}

// Backend implements [domain.Backend].
type Backend struct {
	mu      *ctxsync.Mutex
	buckets map[string]*bucket
	order   []string
	quota   int
	count   int
}

// NewBackend returns a new, empty, in-memory [domain.Backend].
func NewBackend(opts ...Option) *Backend {
	b := &Backend{
		mu:      ctxsync.NewMutex(),
		buckets: make(map[string]*bucket),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Get implements [domain.Backend].
func (b *Backend) Get(ctx context.Context, bucketName string, id any) (domain.Document, error) {
	if err := b.mu.LockWithContext(ctx); err != nil {
		return nil, err
	}
	defer b.mu.Unlock()

	bkt, ok := b.buckets[bucketName]
	if !ok {
		return nil, nil
	}
	key, err := data.IDKey(id)
	if err != nil {
		return nil, err
	}
	_, e, err := bkt.lookup(key)
	if err != nil || e == nil {
		return nil, err
	}
	return data.Clone(e.doc), nil
}

// Put implements [domain.Backend].
func (b *Backend) Put(ctx context.Context, bucketName string, doc domain.Document) (domain.Document, error) {
	if err := b.mu.LockWithContext(ctx); err != nil {
		return nil, err
	}
	defer b.mu.Unlock()

	if _, err := b.put(bucketName, doc); err != nil {
		return nil, err
	}
	return data.Clone(doc), nil
}

// Delete implements [domain.Backend].
func (b *Backend) Delete(ctx context.Context, bucketName string, id any) (bool, error) {
	if err := b.mu.LockWithContext(ctx); err != nil {
		return false, err
	}
	defer b.mu.Unlock()

	undo, err := b.delete(bucketName, id)
	return undo != nil, err
}

// ListAll implements [domain.Backend].
func (b *Backend) ListAll(ctx context.Context, bucketName string) ([]domain.Document, error) {
	if err := b.mu.LockWithContext(ctx); err != nil {
		return nil, err
	}
	defer b.mu.Unlock()

	bkt, ok := b.buckets[bucketName]
	if !ok {
		return []domain.Document{}, nil
	}
	res := make([]domain.Document, 0, len(bkt.ids))
	for e := range bkt.tree.GetAll() {
		res = append(res, data.Clone(e.doc))
	}
	return res, nil
}

// ListBuckets implements [domain.Backend]. Buckets are listed in creation
// order.
func (b *Backend) ListBuckets(ctx context.Context) ([]string, error) {
	if err := b.mu.LockWithContext(ctx); err != nil {
		return nil, err
	}
	defer b.mu.Unlock()
	return slices.Clone(b.order), nil
}

// CreateBucket implements [domain.Backend].
func (b *Backend) CreateBucket(ctx context.Context, name string) error {
	if err := b.mu.LockWithContext(ctx); err != nil {
		return err
	}
	defer b.mu.Unlock()

	if _, ok := b.buckets[name]; !ok {
		b.buckets[name] = newBucket()
		b.order = append(b.order, name)
	}
	return nil
}

// DeleteBucket implements [domain.Backend].
func (b *Backend) DeleteBucket(ctx context.Context, name string) error {
	if err := b.mu.LockWithContext(ctx); err != nil {
		return err
	}
	defer b.mu.Unlock()

	bkt, ok := b.buckets[name]
	if !ok {
		return nil
	}
	b.count -= len(bkt.ids)
	delete(b.buckets, name)
	b.order = slices.DeleteFunc(b.order, func(s string) bool { return s == name })
	return nil
}

// CommitBatch implements [domain.Backend]. Operations are applied in order and
// undone in reverse order if any of them fails.
func (b *Backend) CommitBatch(ctx context.Context, buckets []string, ops []domain.Operation) error {
	if err := b.mu.LockWithContext(ctx); err != nil {
		return err
	}
	defer b.mu.Unlock()

	for _, name := range buckets {
		if _, ok := b.buckets[name]; !ok {
			return domain.ErrBucketNotFound{Bucket: name}
		}
	}
	for _, op := range ops {
		if !slices.Contains(buckets, op.Bucket) {
			return domain.ErrBucketNotFound{Bucket: op.Bucket}
		}
	}

	undo := make([]func(), 0, len(ops))
	rollback := func() {
		for _, u := range slices.Backward(undo) {
			u()
		}
	}
	for n, op := range ops {
		var u func()
		var err error
		switch op.Type {
		case domain.OpPut:
			u, err = b.put(op.Bucket, op.Doc)
		case domain.OpDelete:
			u, err = b.delete(op.Bucket, op.ID)
		default:
			err = fmt.Errorf("unknown operation type %d", op.Type)
		}
		if err != nil {
			rollback()
			return fmt.Errorf("operation %d: %w", n, err)
		}
		if u != nil {
			undo = append(undo, u)
		}
	}
	return nil
}

// Close implements [domain.Backend].
func (b *Backend) Close() error {
	return nil
}

// put stores doc and returns the function that reverts it. The caller must
// hold the lock.
func (b *Backend) put(bucketName string, doc domain.Document) (func(), error) {
	bkt, ok := b.buckets[bucketName]
	if !ok {
		return nil, domain.ErrBucketNotFound{Bucket: bucketName}
	}
	if doc == nil {
		return nil, domain.ErrMissingID
	}
	key, err := data.IDKey(doc.ID())
	if err != nil {
		return nil, err
	}

	_, e, err := bkt.lookup(key)
	if err != nil {
		return nil, err
	}
	if e != nil {
		old := e.doc
		e.doc = data.Clone(doc)
		return func() { e.doc = old }, nil
	}

	if b.quota > 0 && b.count >= b.quota {
		return nil, ErrQuotaExceeded
	}

	bkt.seq++
	seq := bkt.seq
	e = &entry{key: key, doc: data.Clone(doc)}
	if err := bkt.tree.Insert(seq, e); err != nil {
		return nil, err
	}
	bkt.ids[key] = seq
	b.count++
	return func() {
		_ = bkt.tree.Delete(seq, &e)
		delete(bkt.ids, key)
		b.count--
	}, nil
}

// delete removes a document and returns the function that restores it in the
// same position, or nil if there was nothing to delete. The caller must hold
// the lock.
func (b *Backend) delete(bucketName string, id any) (func(), error) {
	bkt, ok := b.buckets[bucketName]
	if !ok {
		return nil, nil
	}
	key, err := data.IDKey(id)
	if err != nil {
		return nil, err
	}
	seq, e, err := bkt.lookup(key)
	if err != nil || e == nil {
		return nil, err
	}
	if err := bkt.tree.Delete(seq, &e); err != nil {
		return nil, err
	}
	delete(bkt.ids, key)
	b.count--
	return func() {
		_ = bkt.tree.Insert(seq, e)
		bkt.ids[key] = seq
		b.count++
	}, nil
}
