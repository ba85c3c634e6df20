package datastore

import (
	"context"
	"fmt"
	"io"
	"maps"
	"slices"
	"time"

	"github.com/dolmen-go/contextio"

	"github.com/vinicius-lino-figueiredo/bucketdb/adapter/data"
	"github.com/vinicius-lino-figueiredo/bucketdb/domain"
)

// Dump implements domain.Store.
func (d *Datastore) Dump(ctx context.Context, buckets ...string) (domain.Snapshot, error) {
	var snap domain.Snapshot
	err := d.executor.Do(ctx, func() error {
		var err error
		snap, err = d.dump(ctx, buckets)
		return err
	})
	return snap, err
}

func (d *Datastore) dump(ctx context.Context, buckets []string) (domain.Snapshot, error) {
	names, err := d.backend.ListBuckets(ctx)
	if err != nil {
		return nil, backendErr("list buckets", err)
	}
	if len(buckets) > 0 {
		for _, name := range buckets {
			if !slices.Contains(names, name) {
				return nil, domain.ErrBucketNotFound{Bucket: name}
			}
		}
		names = buckets
	}

	snap := make(domain.Snapshot, len(names))
	for _, name := range names {
		docs, err := d.backend.ListAll(ctx, name)
		if err != nil {
			return nil, backendErr("list", err)
		}
		snap[name] = docs
	}
	return snap, nil
}

// Export implements domain.Store.
func (d *Datastore) Export(ctx context.Context, w io.Writer, buckets ...string) error {
	snap, err := d.Dump(ctx, buckets...)
	if err != nil {
		return err
	}
	b, err := d.serializer.Serialize(ctx, snap)
	if err != nil {
		return err
	}
	_, err = contextio.NewWriter(ctx, w).Write(b)
	return err
}

// ImportFrom implements domain.Store. Nothing is imported unless the whole
// input parses.
func (d *Datastore) ImportFrom(ctx context.Context, r io.Reader, overwrite bool) error {
	b, err := io.ReadAll(contextio.NewReader(ctx, r))
	if err != nil {
		return fmt.Errorf("reading snapshot: %w", err)
	}
	snap, err := d.deserializer.Deserialize(ctx, b)
	if err != nil {
		return err
	}
	return d.Import(ctx, snap, overwrite)
}

// Import implements domain.Store. Buckets are imported in name order, each of
// them atomically. When a bucket fails, the buckets before it stay imported.
func (d *Datastore) Import(ctx context.Context, snap domain.Snapshot, overwrite bool) error {
	return d.executor.Do(ctx, func() error {
		for _, name := range slices.Sorted(maps.Keys(snap)) {
			if err := d.importBucket(ctx, name, snap[name], overwrite); err != nil {
				d.logf("bucketdb: import of bucket %q failed: %v", name, err)
				return err
			}
		}
		return nil
	})
}

func (d *Datastore) importBucket(ctx context.Context, name string, docs []domain.Document, overwrite bool) error {
	existed, err := d.bucketExists(ctx, name)
	if err != nil {
		return err
	}
	if !existed {
		if err := d.backend.CreateBucket(ctx, name); err != nil {
			return backendErr("create bucket", err)
		}
	}

	ops, err := d.importOps(ctx, name, docs, overwrite)
	if err == nil && len(ops) > 0 {
		err = backendErr("commit", d.backend.CommitBatch(ctx, []string{name}, ops))
		if err == nil {
			d.retireDeletes(ops)
		}
	}
	if err != nil && !existed {
		if dropErr := d.backend.DeleteBucket(context.WithoutCancel(ctx), name); dropErr != nil {
			d.logf("bucketdb: cannot remove bucket %q after failed import: %v", name, dropErr)
		}
	}
	return err
}

func (d *Datastore) importOps(ctx context.Context, name string, docs []domain.Document, overwrite bool) ([]domain.Operation, error) {
	current, err := d.backend.ListAll(ctx, name)
	if err != nil {
		return nil, backendErr("list", err)
	}

	ops := make([]domain.Operation, 0, len(docs)+len(current))
	seen := make(map[string]bool, len(current)+len(docs))
	for _, doc := range current {
		if overwrite {
			ops = append(ops, domain.Operation{Type: domain.OpDelete, Bucket: name, ID: doc.ID()})
			continue
		}
		key, err := data.IDKey(doc.ID())
		if err != nil {
			return nil, err
		}
		seen[key] = true
	}

	for n, in := range docs {
		doc, err := d.documentFactory(in)
		if err != nil {
			return nil, fmt.Errorf("document %d: %w", n, err)
		}
		if d.timestampData {
			parseTimestamps(doc)
		}
		if !hasID(doc) {
			id, err := d.createNewID(func(any) (domain.Document, error) { return nil, nil })
			if err != nil {
				return nil, err
			}
			doc.Set(domain.IDField, id)
		}
		key, err := data.IDKey(doc.ID())
		if err != nil {
			return nil, fmt.Errorf("document %d: %w", n, err)
		}
		if !overwrite && seen[key] {
			d.logf("bucketdb: import into %q skipped document with existing id %v", name, doc.ID())
			continue
		}
		seen[key] = true
		ops = append(ops, domain.Operation{Type: domain.OpPut, Bucket: name, Doc: doc})
	}
	return ops, nil
}

// parseTimestamps turns the timestamp fields of an imported document back into
// [time.Time] when they hold RFC 3339 text, as written by text snapshots.
func parseTimestamps(doc domain.Document) {
	for _, field := range [...]string{CreatedAtField, UpdatedAtField} {
		str, ok := doc.Get(field).(string)
		if !ok {
			continue
		}
		if t, err := time.Parse(time.RFC3339Nano, str); err == nil {
			doc.Set(field, t)
		}
	}
}
