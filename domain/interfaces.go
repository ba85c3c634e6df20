// Package domain contains domain-specific interfaces, entities and errors for
// bucketdb.
//
// This package defines the core interfaces that must be implemented by
// adapters (storage backends, matchers, comparers, codecs) as well as the
// public API exposed by the document store.
package domain

import (
	"context"
	"io"
	"iter"
	"time"
)

// Store is the document store API: bucket lifecycle, CRUD, filtering,
// queries, transactions and snapshot export/import. Operations are serialized,
// one at a time, against the underlying [Backend].
type Store interface {
	// CreateBucket creates the named bucket. Creating an existing bucket is
	// a no-op and never clears its documents.
	CreateBucket(ctx context.Context, name string) error

	// DeleteBucket removes a bucket and all of its documents. Deleting a
	// missing bucket is a no-op.
	DeleteBucket(ctx context.Context, name string) error

	// ListBuckets returns the names of the current buckets, in an order
	// that is stable for the lifetime of the store.
	ListBuckets(ctx context.Context) ([]string, error)

	// Insert stores a new document and returns a copy of it, including
	// the assigned id. A missing or empty id is generated, never taking an
	// id deleted earlier in the life of the store. The bucket is created
	// if it does not exist, and removed again if storing fails. Insert
	// accepts maps and structs, using the "bucketdb" struct tag to rename
	// fields; a zero id field in a struct counts as missing.
	Insert(ctx context.Context, bucket string, doc any) (Document, error)

	// Get returns the document with the given id, or nil if either the
	// document or the bucket does not exist.
	Get(ctx context.Context, bucket string, id any) (Document, error)

	// GetAll returns every document of the bucket in creation order. A
	// missing bucket yields an empty result.
	GetAll(ctx context.Context, bucket string) ([]Document, error)

	// Update merges the fields of doc into the stored document with the
	// same id. Fields absent from doc are kept. Returns [ErrNotFound] if
	// there is no such document.
	Update(ctx context.Context, bucket string, doc any) (Document, error)

	// Delete removes the document with the given id. Deleting a missing
	// document is not an error.
	Delete(ctx context.Context, bucket string, id any) error

	// Filter returns the documents in which every given field, addressed
	// by dot path, is loosely equal to the given value.
	Filter(ctx context.Context, bucket string, fields any) ([]Document, error)

	// Query returns a new [Query] over the bucket.
	Query(bucket string) Query

	// Transact runs fn with write handles to the named buckets and
	// commits every queued operation atomically once fn returns nil. If fn
	// returns an error, none of the operations take effect and the error
	// is returned unchanged.
	Transact(ctx context.Context, buckets []string, fn func(Tx) error) error

	// Dump returns the documents of the named buckets, or of every bucket
	// if none is named.
	Dump(ctx context.Context, buckets ...string) (Snapshot, error)

	// Export serializes a dump of the named buckets into w.
	Export(ctx context.Context, w io.Writer, buckets ...string) error

	// Import restores a snapshot. With overwrite, each bucket in the
	// snapshot is replaced. Without it, documents are appended.
	Import(ctx context.Context, snap Snapshot, overwrite bool) error

	// ImportFrom parses a serialized snapshot from r and imports it.
	ImportFrom(ctx context.Context, r io.Reader, overwrite bool) error

	// Close releases the backend.
	Close() error
}

// Query accumulates conditions over a bucket. A document is returned when it
// matches every AND condition and, if there is at least one OR group, at least
// one predicate of at least one OR group.
type Query interface {
	// Where appends a predicate to the AND list.
	Where(p Predicate) Query
	// OrWhere appends an OR group holding a single predicate.
	OrWhere(p Predicate) Query
	// OrGroup appends an OR group of predicates, satisfied when any of
	// them matches.
	OrGroup(ps ...Predicate) Query
	// WhereFunc appends an arbitrary condition to the AND list.
	WhereFunc(fn func(Document) (bool, error)) Query
	// Execute returns the matching documents in storage order.
	Execute(ctx context.Context) ([]Document, error)
	// First returns the first matching document, or nil.
	First(ctx context.Context) (Document, error)
	// Count returns the number of matching documents.
	Count(ctx context.Context) (int, error)
	// Cursor returns a [Cursor] over the matching documents.
	Cursor(ctx context.Context, options ...CursorOption) (Cursor, error)
}

// Tx is handed to the function given to [Store.Transact].
type Tx interface {
	// Bucket returns a write handle for one of the buckets named when the
	// transaction was opened.
	Bucket(name string) (BucketWriter, error)
}

// BucketWriter queues operations against a bucket during a transaction.
// Nothing is applied until the transaction commits, but reads made through
// the handle see earlier queued operations.
type BucketWriter interface {
	// Add queues the insertion of a document, assigning an id if needed.
	Add(doc any) (Document, error)
	// Update queues a merge into an existing document.
	Update(doc any) (Document, error)
	// Delete queues the removal of a document.
	Delete(id any) error
	// Get reads a document including the queued operations.
	Get(id any) (Document, error)
}

// Backend is the narrow key-value capability the store is built on. Buckets
// keep documents in creation order, and replacing a document keeps its
// position.
type Backend interface {
	// Get returns the document or nil when either it or the bucket is
	// absent.
	Get(ctx context.Context, bucket string, id any) (Document, error)
	// Put inserts or replaces a document by id. Fails with
	// [ErrBucketNotFound] if the bucket does not exist.
	Put(ctx context.Context, bucket string, doc Document) (Document, error)
	// Delete removes a document and reports whether it existed.
	Delete(ctx context.Context, bucket string, id any) (bool, error)
	// ListAll returns every document of a bucket in creation order.
	ListAll(ctx context.Context, bucket string) ([]Document, error)
	// ListBuckets returns the bucket names.
	ListBuckets(ctx context.Context) ([]string, error)
	// CreateBucket creates a bucket if it does not exist.
	CreateBucket(ctx context.Context, name string) error
	// DeleteBucket deletes a bucket if it exists.
	DeleteBucket(ctx context.Context, name string) error
	// CommitBatch applies every operation or none of them. Every
	// operation must target one of the given buckets.
	CommitBatch(ctx context.Context, buckets []string, ops []Operation) error
	// Close releases the backend resources.
	Close() error
}

// Getter represents a value that can be treated as undefined.
type Getter interface {
	// Get returns the value and a bool that indicates whether the value
	// counts as defined. An address that points to an unset key, or that
	// goes through a value that is not a document, is undefined. A value
	// explicitly set to nil is defined.
	Get() (value any, defined bool)
}

// FieldNavigator provides field access with dot notation.
type FieldNavigator interface {
	// GetAddress splits a dot-path field name into its parts.
	GetAddress(field string) ([]string, error)
	// GetField follows the path parts inside obj.
	GetField(obj any, fieldParts ...string) (Getter, error)
}

// Comparer provides ordering and equality for document values.
type Comparer interface {
	// Compare returns -1, 0, or 1 following a total order over all
	// supported types. Used for sorting.
	Compare(any, any) (int, error)
	// Comparable returns true if two values are of comparable types.
	Comparable(any, any) bool
	// LooseEqual reports whether two values are equal after type
	// coercion.
	LooseEqual(any, any) bool
	// LooseCompare compares two values after type coercion. The bool is
	// false when the values cannot be ordered.
	LooseCompare(any, any) (int, bool)
}

// Matcher evaluates predicates against documents.
type Matcher interface {
	// Compare applies the operator to an already resolved value.
	Compare(resolved any, op Operator, expected any) bool
	// Match resolves the predicate field and compares it.
	Match(doc Document, p Predicate) (bool, error)
	// MatchAll reports whether every predicate matches.
	MatchAll(doc Document, ps []Predicate) (bool, error)
	// MatchAny reports whether at least one predicate matches.
	MatchAny(doc Document, ps []Predicate) (bool, error)
	// MatchFields reports whether every field of fields is loosely equal
	// to the value found at the same dot path in doc.
	MatchFields(doc Document, fields Document) (bool, error)
}

// Projector keeps only the selected fields of documents.
type Projector interface {
	// Project returns a new document holding only the given dot paths.
	Project(doc Document, fields ...string) (Document, error)
}

// Document represents a record stored in a bucket.
type Document interface {
	// ID returns the document id, or nil if unset.
	ID() any
	// D returns the subdocument for the given key, if any.
	D(string) Document
	// Get returns the value under the given key, or nil if unset.
	Get(string) any
	// Set sets the value under the given key.
	Set(string, any)
	// Unset unsets the value under the given key.
	Unset(string)
	// Iter returns an unordered sequence of key-value pairs.
	Iter() iter.Seq2[string, any]
	// Keys returns an unordered sequence of keys.
	Keys() iter.Seq[string]
	// Values returns an unordered sequence of values.
	Values() iter.Seq[any]
	// Has reports whether a value is set under the given key.
	Has(string) bool
	// Len returns the number of set fields.
	Len() int
}

// IDGenerator creates ids for new documents.
type IDGenerator interface {
	// GenerateID returns a new random id.
	GenerateID() (string, error)
}

// TimeGetter provides current time for timestamping operations.
type TimeGetter interface {
	// GetTime returns the current time.
	GetTime() time.Time
}

// Decoder converts between different data representations.
type Decoder interface {
	// Decode converts source into target, which must be a pointer.
	Decode(source any, target any) error
}

// Cursor provides iteration over query results.
type Cursor interface {
	// Scan decodes the current document into target.
	Scan(ctx context.Context, target any) error
	// Next advances the cursor, returning true if a document is available.
	Next() bool
	// Err returns any error that occurred during iteration.
	Err() error
	// Close releases cursor resources.
	Close() error
}

// Serializer converts snapshots to bytes.
type Serializer interface {
	// Serialize encodes a snapshot.
	Serialize(ctx context.Context, snap Snapshot) ([]byte, error)
}

// Deserializer converts bytes back to snapshots.
type Deserializer interface {
	// Deserialize decodes a snapshot. Malformed input results in
	// [ErrParse].
	Deserialize(ctx context.Context, data []byte) (Snapshot, error)
}
