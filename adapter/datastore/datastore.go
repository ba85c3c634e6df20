// Package datastore contains the default [domain.Store] implementation.
package datastore

import (
	"context"
	"errors"
	"log"
	"slices"

	"github.com/vinicius-lino-figueiredo/bucketdb/adapter/backend/memory"
	"github.com/vinicius-lino-figueiredo/bucketdb/adapter/comparer"
	"github.com/vinicius-lino-figueiredo/bucketdb/adapter/cursor"
	"github.com/vinicius-lino-figueiredo/bucketdb/adapter/data"
	"github.com/vinicius-lino-figueiredo/bucketdb/adapter/decoder"
	"github.com/vinicius-lino-figueiredo/bucketdb/adapter/deserializer"
	"github.com/vinicius-lino-figueiredo/bucketdb/adapter/fieldnavigator"
	"github.com/vinicius-lino-figueiredo/bucketdb/adapter/idgenerator"
	"github.com/vinicius-lino-figueiredo/bucketdb/adapter/matcher"
	"github.com/vinicius-lino-figueiredo/bucketdb/adapter/query"
	"github.com/vinicius-lino-figueiredo/bucketdb/adapter/serializer"
	"github.com/vinicius-lino-figueiredo/bucketdb/adapter/timegetter"
	"github.com/vinicius-lino-figueiredo/bucketdb/domain"
	"github.com/vinicius-lino-figueiredo/bucketdb/pkg/ctxsync"
)

// Timestamp fields set when [WithTimestamps] is enabled.
const (
	CreatedAtField = "createdAt"
	UpdatedAtField = "updatedAt"
)

// Datastore implements domain.Store.
type Datastore struct {
	backend         domain.Backend
	timestampData   bool
	executor        *ctxsync.Mutex
	serializer      domain.Serializer
	deserializer    domain.Deserializer
	comparer        domain.Comparer
	documentFactory domain.DocumentFactory
	cursorFactory   domain.CursorFactory
	decoder         domain.Decoder
	matcher         domain.Matcher
	timeGetter      domain.TimeGetter
	fieldNavigator  domain.FieldNavigator
	idGenerator     domain.IDGenerator
	logf            func(format string, args ...any)
	// retired holds the id keys of every document deleted during the
	// lifetime of the store. Generated ids never take one of them.
	retired map[string]struct{}
}

// NewDatastore returns a new implementation of Datastore.
func NewDatastore(options ...Option) *Datastore {
	d := &Datastore{
		executor:        ctxsync.NewMutex(),
		serializer:      serializer.NewSerializer(),
		deserializer:    deserializer.NewDeserializer(),
		comparer:        comparer.NewComparer(),
		documentFactory: data.NewDocument,
		cursorFactory:   cursor.NewCursor,
		decoder:         decoder.NewDecoder(),
		timeGetter:      timegetter.NewTimeGetter(),
		fieldNavigator:  fieldnavigator.NewFieldNavigator(),
		idGenerator:     idgenerator.NewIDGenerator(),
		logf:            log.Printf,
		retired:         make(map[string]struct{}),
	}
	for _, option := range options {
		option(d)
	}
	if d.backend == nil {
		d.backend = memory.NewBackend()
	}
	if d.matcher == nil {
		d.matcher = matcher.NewMatcher(
			matcher.WithComparer(d.comparer),
			matcher.WithFieldNavigator(d.fieldNavigator),
		)
	}
	return d
}

// CreateBucket implements domain.Store.
func (d *Datastore) CreateBucket(ctx context.Context, name string) error {
	return d.executor.Do(ctx, func() error {
		return backendErr("create bucket", d.backend.CreateBucket(ctx, name))
	})
}

// DeleteBucket implements domain.Store.
func (d *Datastore) DeleteBucket(ctx context.Context, name string) error {
	return d.executor.Do(ctx, func() error {
		docs, err := d.backend.ListAll(ctx, name)
		if err != nil {
			return backendErr("list", err)
		}
		if err := d.backend.DeleteBucket(ctx, name); err != nil {
			return backendErr("delete bucket", err)
		}
		for _, doc := range docs {
			d.retire(doc.ID())
		}
		return nil
	})
}

// ListBuckets implements domain.Store.
func (d *Datastore) ListBuckets(ctx context.Context) ([]string, error) {
	var names []string
	err := d.executor.Do(ctx, func() error {
		var err error
		names, err = d.backend.ListBuckets(ctx)
		return backendErr("list buckets", err)
	})
	return names, err
}

// Insert implements domain.Store.
func (d *Datastore) Insert(ctx context.Context, bucket string, newDoc any) (domain.Document, error) {
	var res domain.Document
	err := d.executor.Do(ctx, func() error {
		doc, err := d.prepareDocumentForInsertion(newDoc, func(id any) (domain.Document, error) {
			return d.backend.Get(ctx, bucket, id)
		})
		if err != nil {
			return err
		}
		existed, err := d.bucketExists(ctx, bucket)
		if err != nil {
			return err
		}
		if !existed {
			if err := d.backend.CreateBucket(ctx, bucket); err != nil {
				return backendErr("create bucket", err)
			}
		}
		res, err = d.backend.Put(ctx, bucket, doc)
		if err != nil && !existed {
			if dropErr := d.backend.DeleteBucket(context.WithoutCancel(ctx), bucket); dropErr != nil {
				d.logf("bucketdb: cannot remove bucket %q after failed insert: %v", bucket, dropErr)
			}
		}
		return backendErr("put", err)
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// prepareDocumentForInsertion builds the document to be stored, assigning an
// id when needed. get looks up existing documents by id.
func (d *Datastore) prepareDocumentForInsertion(newDoc any, get func(any) (domain.Document, error)) (domain.Document, error) {
	doc, err := d.documentFactory(newDoc)
	if err != nil {
		return nil, err
	}

	if !hasID(doc) {
		id, err := d.createNewID(get)
		if err != nil {
			return nil, err
		}
		doc.Set(domain.IDField, id)
	} else {
		if _, err := data.IDKey(doc.ID()); err != nil {
			return nil, err
		}
		existing, err := get(doc.ID())
		if err != nil {
			return nil, backendErr("get", err)
		}
		if existing != nil {
			return nil, domain.ErrDuplicateID
		}
	}

	if d.timestampData {
		now := d.timeGetter.GetTime()
		if !doc.Has(CreatedAtField) {
			doc.Set(CreatedAtField, now)
		}
		doc.Set(UpdatedAtField, now)
	}
	return doc, nil
}

func (d *Datastore) createNewID(get func(any) (domain.Document, error)) (string, error) {
	for {
		id, err := d.idGenerator.GenerateID()
		if err != nil {
			return "", err
		}
		if d.isRetired(id) {
			continue
		}
		existing, err := get(id)
		if err != nil {
			return "", backendErr("get", err)
		}
		if existing == nil {
			return id, nil
		}
	}
}

// hasID reports whether doc carries an id. An empty string counts as none.
func hasID(doc domain.Document) bool {
	id := doc.ID()
	return id != nil && id != ""
}

func (d *Datastore) retire(id any) {
	if key, err := data.IDKey(id); err == nil {
		d.retired[key] = struct{}{}
	}
}

func (d *Datastore) retireDeletes(ops []domain.Operation) {
	for _, op := range ops {
		if op.Type == domain.OpDelete {
			d.retire(op.ID)
		}
	}
}

func (d *Datastore) isRetired(id string) bool {
	key, err := data.IDKey(id)
	if err != nil {
		return false
	}
	_, ok := d.retired[key]
	return ok
}

// Get implements domain.Store.
func (d *Datastore) Get(ctx context.Context, bucket string, id any) (domain.Document, error) {
	var res domain.Document
	err := d.executor.Do(ctx, func() error {
		var err error
		res, err = d.backend.Get(ctx, bucket, id)
		return backendErr("get", err)
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// GetAll implements domain.Store. It also makes the store a [query.Source].
func (d *Datastore) GetAll(ctx context.Context, bucket string) ([]domain.Document, error) {
	var res []domain.Document
	err := d.executor.Do(ctx, func() error {
		var err error
		res, err = d.backend.ListAll(ctx, bucket)
		return backendErr("list", err)
	})
	return res, err
}

// Update implements domain.Store.
func (d *Datastore) Update(ctx context.Context, bucket string, doc any) (domain.Document, error) {
	var res domain.Document
	err := d.executor.Do(ctx, func() error {
		merged, err := d.merge(doc, func(id any) (domain.Document, error) {
			return d.backend.Get(ctx, bucket, id)
		})
		if err != nil {
			return err
		}
		res, err = d.backend.Put(ctx, bucket, merged)
		return backendErr("put", err)
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// merge copies the top level fields of doc over the stored document with
// the same id.
func (d *Datastore) merge(in any, get func(any) (domain.Document, error)) (domain.Document, error) {
	doc, err := d.documentFactory(in)
	if err != nil {
		return nil, err
	}
	if doc.ID() == nil {
		return nil, domain.ErrMissingID
	}
	current, err := get(doc.ID())
	if err != nil {
		return nil, backendErr("get", err)
	}
	if current == nil {
		return nil, domain.ErrNotFound
	}

	for k, v := range doc.Iter() {
		if k == domain.IDField {
			continue
		}
		current.Set(k, v)
	}
	if d.timestampData {
		current.Set(UpdatedAtField, d.timeGetter.GetTime())
	}
	return current, nil
}

// Delete implements domain.Store.
func (d *Datastore) Delete(ctx context.Context, bucket string, id any) error {
	return d.executor.Do(ctx, func() error {
		deleted, err := d.backend.Delete(ctx, bucket, id)
		if err != nil {
			return backendErr("delete", err)
		}
		if deleted {
			d.retire(id)
		}
		return nil
	})
}

// Filter implements domain.Store.
func (d *Datastore) Filter(ctx context.Context, bucket string, fields any) ([]domain.Document, error) {
	want, err := d.documentFactory(fields)
	if err != nil {
		return nil, err
	}
	docs, err := d.GetAll(ctx, bucket)
	if err != nil {
		return nil, err
	}
	res := make([]domain.Document, 0, len(docs))
	for _, doc := range docs {
		ok, err := d.matcher.MatchFields(doc, want)
		if err != nil {
			return nil, err
		}
		if ok {
			res = append(res, doc)
		}
	}
	return res, nil
}

// Query implements domain.Store.
func (d *Datastore) Query(bucket string) domain.Query {
	return d.NewQuery(bucket)
}

// NewQuery returns the concrete query builder, which also offers
// [query.Query.Seq].
func (d *Datastore) NewQuery(bucket string) *query.Query {
	return query.New(d, bucket,
		query.WithMatcher(d.matcher),
		query.WithCursorFactory(d.newCursor),
	)
}

func (d *Datastore) newCursor(ctx context.Context, docs []domain.Document, options ...domain.CursorOption) (domain.Cursor, error) {
	opts := append([]domain.CursorOption{domain.WithCursorDecoder(d.decoder)}, options...)
	return d.cursorFactory(ctx, docs, opts...)
}

// Close implements domain.Store.
func (d *Datastore) Close() error {
	d.executor.Lock()
	defer d.executor.Unlock()
	return backendErr("close", d.backend.Close())
}

func (d *Datastore) bucketExists(ctx context.Context, name string) (bool, error) {
	names, err := d.backend.ListBuckets(ctx)
	if err != nil {
		return false, backendErr("list buckets", err)
	}
	return slices.Contains(names, name), nil
}

// backendErr wraps errors returned by the backend in
// [domain.ErrBackendFailure], leaving store and context errors untouched.
func backendErr(op string, err error) error {
	if err == nil || isStoreError(err) {
		return err
	}
	return domain.ErrBackendFailure{Op: op, Err: err}
}

func isStoreError(err error) bool {
	for _, target := range []error{
		context.Canceled,
		context.DeadlineExceeded,
		domain.ErrNotFound,
		domain.ErrMissingID,
		domain.ErrDuplicateID,
		domain.ErrInvalidID,
		domain.ErrTxDone,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	var bnf domain.ErrBucketNotFound
	var bf domain.ErrBackendFailure
	return errors.As(err, &bnf) || errors.As(err, &bf)
}

// Serializer returns the serializer used by Export.
func (d *Datastore) Serializer() domain.Serializer {
	return d.serializer
}
