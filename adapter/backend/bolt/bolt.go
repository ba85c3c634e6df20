// Package bolt contains a [domain.Backend] persisted in a bbolt file.
//
// Every store bucket is a top level bbolt bucket holding two nested buckets:
// "docs" maps a big-endian insertion sequence to the msgpack encoded document,
// and "ids" maps the id key of a document to its sequence. Iterating "docs"
// therefore yields documents in creation order.
package bolt

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"go.etcd.io/bbolt"

	"github.com/vinicius-lino-figueiredo/bucketdb/adapter/data"
	"github.com/vinicius-lino-figueiredo/bucketdb/domain"
)

var (
	docsBucket = []byte("docs")
	idsBucket  = []byte("ids")
)

// Backend implements [domain.Backend].
type Backend struct {
	db *bbolt.DB
}

// Open opens or creates the bbolt file at path.
func Open(path string, opts ...Option) (*Backend, error) {
	o := options{timeout: 10 * time.Second}
	for _, opt := range opts {
		opt(&o)
	}

	bopt := *bbolt.DefaultOptions
	bopt.Timeout = o.timeout
	bopt.NoSync = o.noSync
	bopt.FreelistType = bbolt.FreelistMapType

	db, err := bbolt.Open(path, 0o666, &bopt)
	if err != nil {
		return nil, fmt.Errorf("bolt: %w", err)
	}
	return &Backend{db: db}, nil
}

// Get implements [domain.Backend].
func (b *Backend) Get(ctx context.Context, bucket string, id any) (domain.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	key, err := data.IDKey(id)
	if err != nil {
		return nil, err
	}

	var doc domain.Document
	err = b.db.View(func(tx *bbolt.Tx) error {
		root := tx.Bucket([]byte(bucket))
		if root == nil {
			return nil
		}
		seq := root.Bucket(idsBucket).Get([]byte(key))
		if seq == nil {
			return nil
		}
		raw := root.Bucket(docsBucket).Get(seq)
		if raw == nil {
			return nil
		}
		doc, err = decodeDoc(raw)
		return err
	})
	return doc, err
}

// Put implements [domain.Backend].
func (b *Backend) Put(ctx context.Context, bucket string, doc domain.Document) (domain.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	err := b.db.Update(func(tx *bbolt.Tx) error {
		return put(tx, bucket, doc)
	})
	if err != nil {
		return nil, err
	}
	return data.Clone(doc), nil
}

// Delete implements [domain.Backend].
func (b *Backend) Delete(ctx context.Context, bucket string, id any) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	var deleted bool
	err := b.db.Update(func(tx *bbolt.Tx) error {
		var err error
		deleted, err = remove(tx, bucket, id)
		return err
	})
	return deleted, err
}

// ListAll implements [domain.Backend].
func (b *Backend) ListAll(ctx context.Context, bucket string) ([]domain.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	docs := []domain.Document{}
	err := b.db.View(func(tx *bbolt.Tx) error {
		root := tx.Bucket([]byte(bucket))
		if root == nil {
			return nil
		}
		return root.Bucket(docsBucket).ForEach(func(_, raw []byte) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			doc, err := decodeDoc(raw)
			if err != nil {
				return err
			}
			docs = append(docs, doc)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return docs, nil
}

// ListBuckets implements [domain.Backend]. Names are listed in byte order.
func (b *Backend) ListBuckets(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	names := []string{}
	err := b.db.View(func(tx *bbolt.Tx) error {
		return tx.ForEach(func(name []byte, _ *bbolt.Bucket) error {
			names = append(names, string(name))
			return nil
		})
	})
	return names, err
}

// CreateBucket implements [domain.Backend].
func (b *Backend) CreateBucket(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if name == "" {
		return bbolt.ErrBucketNameRequired
	}
	return b.db.Update(func(tx *bbolt.Tx) error {
		root, err := tx.CreateBucketIfNotExists([]byte(name))
		if err != nil {
			return err
		}
		if _, err := root.CreateBucketIfNotExists(docsBucket); err != nil {
			return err
		}
		_, err = root.CreateBucketIfNotExists(idsBucket)
		return err
	})
}

// DeleteBucket implements [domain.Backend].
func (b *Backend) DeleteBucket(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return b.db.Update(func(tx *bbolt.Tx) error {
		err := tx.DeleteBucket([]byte(name))
		if errors.Is(err, bbolt.ErrBucketNotFound) {
			return nil
		}
		return err
	})
}

// CommitBatch implements [domain.Backend]. The whole batch runs in a single
// bbolt write transaction.
func (b *Backend) CommitBatch(ctx context.Context, buckets []string, ops []domain.Operation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return b.db.Update(func(tx *bbolt.Tx) error {
		for _, name := range buckets {
			if tx.Bucket([]byte(name)) == nil {
				return domain.ErrBucketNotFound{Bucket: name}
			}
		}
		for n, op := range ops {
			if !slices.Contains(buckets, op.Bucket) {
				return domain.ErrBucketNotFound{Bucket: op.Bucket}
			}
			var err error
			switch op.Type {
			case domain.OpPut:
				err = put(tx, op.Bucket, op.Doc)
			case domain.OpDelete:
				_, err = remove(tx, op.Bucket, op.ID)
			default:
				err = fmt.Errorf("unknown operation type %d", op.Type)
			}
			if err != nil {
				return fmt.Errorf("operation %d: %w", n, err)
			}
		}
		return nil
	})
}

// Close implements [domain.Backend].
func (b *Backend) Close() error {
	return b.db.Close()
}

func put(tx *bbolt.Tx, bucket string, doc domain.Document) error {
	root := tx.Bucket([]byte(bucket))
	if root == nil {
		return domain.ErrBucketNotFound{Bucket: bucket}
	}
	if doc == nil {
		return domain.ErrMissingID
	}
	key, err := data.IDKey(doc.ID())
	if err != nil {
		return err
	}
	raw, err := encodeDoc(doc)
	if err != nil {
		return err
	}

	ids, docs := root.Bucket(idsBucket), root.Bucket(docsBucket)
	seq := ids.Get([]byte(key))
	if seq == nil {
		next, err := root.NextSequence()
		if err != nil {
			return err
		}
		seq = seqKey(next)
		if err := ids.Put([]byte(key), seq); err != nil {
			return err
		}
	}
	return docs.Put(slices.Clone(seq), raw)
}

func remove(tx *bbolt.Tx, bucket string, id any) (bool, error) {
	root := tx.Bucket([]byte(bucket))
	if root == nil {
		return false, nil
	}
	key, err := data.IDKey(id)
	if err != nil {
		return false, err
	}
	ids := root.Bucket(idsBucket)
	seq := ids.Get([]byte(key))
	if seq == nil {
		return false, nil
	}
	if err := root.Bucket(docsBucket).Delete(seq); err != nil {
		return false, err
	}
	return true, ids.Delete([]byte(key))
}
