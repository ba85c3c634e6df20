package datastore

import (
	"context"
	"slices"

	"github.com/vinicius-lino-figueiredo/bucketdb/adapter/data"
	"github.com/vinicius-lino-figueiredo/bucketdb/domain"
)

// Transact implements domain.Store. The store stays locked while fn runs, so
// fn must only use the given [domain.Tx] and never call the store itself.
func (d *Datastore) Transact(ctx context.Context, buckets []string, fn func(domain.Tx) error) error {
	return d.executor.Do(ctx, func() error {
		for _, name := range buckets {
			ok, err := d.bucketExists(ctx, name)
			if err != nil {
				return err
			}
			if !ok {
				return domain.ErrBucketNotFound{Bucket: name}
			}
		}

		tx := &transaction{
			d:       d,
			ctx:     ctx,
			buckets: slices.Clone(buckets),
			pending: make(map[string]map[string]domain.Document, len(buckets)),
		}
		defer func() { tx.done = true }()

		if err := fn(tx); err != nil {
			return err
		}
		if len(tx.ops) == 0 {
			return nil
		}
		if err := d.backend.CommitBatch(ctx, tx.buckets, tx.ops); err != nil {
			return backendErr("commit", err)
		}
		d.retireDeletes(tx.ops)
		return nil
	})
}

// transaction implements domain.Tx. Queued writes are kept in pending, by
// bucket and id key, so reads through the writers see them. A nil document
// in pending marks a queued deletion.
type transaction struct {
	d       *Datastore
	ctx     context.Context
	buckets []string
	ops     []domain.Operation
	pending map[string]map[string]domain.Document
	done    bool
}

// Bucket implements domain.Tx.
func (t *transaction) Bucket(name string) (domain.BucketWriter, error) {
	if t.done {
		return nil, domain.ErrTxDone
	}
	if !slices.Contains(t.buckets, name) {
		return nil, domain.ErrBucketNotFound{Bucket: name}
	}
	return &bucketWriter{tx: t, bucket: name}, nil
}

func (t *transaction) get(bucket string, id any) (domain.Document, error) {
	key, err := data.IDKey(id)
	if err != nil {
		return nil, err
	}
	if doc, ok := t.pending[bucket][key]; ok {
		return data.Clone(doc), nil
	}
	doc, err := t.d.backend.Get(t.ctx, bucket, id)
	return doc, backendErr("get", err)
}

func (t *transaction) queue(op domain.Operation, key string) {
	if t.pending[op.Bucket] == nil {
		t.pending[op.Bucket] = make(map[string]domain.Document)
	}
	t.pending[op.Bucket][key] = op.Doc
	t.ops = append(t.ops, op)
}

// bucketWriter implements domain.BucketWriter.
type bucketWriter struct {
	tx     *transaction
	bucket string
}

func (w *bucketWriter) getter() func(any) (domain.Document, error) {
	return func(id any) (domain.Document, error) {
		return w.tx.get(w.bucket, id)
	}
}

// Add implements domain.BucketWriter.
func (w *bucketWriter) Add(newDoc any) (domain.Document, error) {
	if w.tx.done {
		return nil, domain.ErrTxDone
	}
	doc, err := w.tx.d.prepareDocumentForInsertion(newDoc, w.getter())
	if err != nil {
		return nil, err
	}
	return w.put(doc)
}

// Update implements domain.BucketWriter.
func (w *bucketWriter) Update(doc any) (domain.Document, error) {
	if w.tx.done {
		return nil, domain.ErrTxDone
	}
	merged, err := w.tx.d.merge(doc, w.getter())
	if err != nil {
		return nil, err
	}
	return w.put(merged)
}

func (w *bucketWriter) put(doc domain.Document) (domain.Document, error) {
	key, err := data.IDKey(doc.ID())
	if err != nil {
		return nil, err
	}
	w.tx.queue(domain.Operation{
		Type:   domain.OpPut,
		Bucket: w.bucket,
		Doc:    data.Clone(doc),
	}, key)
	return data.Clone(doc), nil
}

// Delete implements domain.BucketWriter.
func (w *bucketWriter) Delete(id any) error {
	if w.tx.done {
		return domain.ErrTxDone
	}
	key, err := data.IDKey(id)
	if err != nil {
		return err
	}
	w.tx.queue(domain.Operation{
		Type:   domain.OpDelete,
		Bucket: w.bucket,
		ID:     id,
	}, key)
	return nil
}

// Get implements domain.BucketWriter.
func (w *bucketWriter) Get(id any) (domain.Document, error) {
	if w.tx.done {
		return nil, domain.ErrTxDone
	}
	return w.tx.get(w.bucket, id)
}
