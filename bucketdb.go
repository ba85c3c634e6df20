// Package bucketdb provides an embedded document store for golang.
//
// Documents are schemaless maps grouped in named buckets. They can be filtered
// by dot-path predicates, queried with AND/OR conditions, written in atomic
// multi-bucket transactions and exported to or imported from JSON and YAML
// snapshots.
//
// The basic usage starts with creating a new [Store], which can be done by
// calling [NewStore]. Without a backend option, documents live in memory only.
package bucketdb

import (
	"github.com/vinicius-lino-figueiredo/bucketdb/adapter/backend/bolt"
	"github.com/vinicius-lino-figueiredo/bucketdb/adapter/backend/memory"
	"github.com/vinicius-lino-figueiredo/bucketdb/adapter/backend/sqlite"
	"github.com/vinicius-lino-figueiredo/bucketdb/adapter/data"
	"github.com/vinicius-lino-figueiredo/bucketdb/adapter/datastore"
	"github.com/vinicius-lino-figueiredo/bucketdb/domain"
)

var (
	// ErrNotFound is returned by [Store.Update] and by transaction updates
	// when the target document does not exist.
	ErrNotFound = domain.ErrNotFound
	// ErrMissingID is returned when an update is given a document without
	// an id.
	ErrMissingID = domain.ErrMissingID
	// ErrDuplicateID is returned when inserting a document whose id is
	// already used in the bucket.
	ErrDuplicateID = domain.ErrDuplicateID
	// ErrInvalidID is returned when an id is neither a string nor a number.
	ErrInvalidID = domain.ErrInvalidID
	// ErrCursorClosed is returned when trying to perform operations on a
	// closed [Cursor].
	ErrCursorClosed = domain.ErrCursorClosed
	// ErrScanBeforeNext is returned when calling [Cursor.Scan] before
	// calling [Cursor.Next].
	ErrScanBeforeNext = domain.ErrScanBeforeNext
	// ErrTargetNil is returned when user provides a nil value as a target
	// to decode data.
	ErrTargetNil = domain.ErrTargetNil
	// ErrNonPointer is returned when the decode target is not a pointer.
	ErrNonPointer = domain.ErrNonPointer
	// ErrTxDone is returned by a [BucketWriter] used after its transaction
	// finished.
	ErrTxDone = domain.ErrTxDone
)

// ErrBucketNotFound is returned when an operation needs a bucket that does not
// exist, such as opening a transaction over it.
type ErrBucketNotFound = domain.ErrBucketNotFound

// ErrParse is returned by [Store.ImportFrom] when the input is not a valid
// snapshot.
type ErrParse = domain.ErrParse

// ErrBackendFailure wraps errors returned by the [Backend].
type ErrBackendFailure = domain.ErrBackendFailure

// ErrDecode is returned by [Decoder.Decode] to easily wrap third party decoding
// errors.
type ErrDecode = domain.ErrDecode

// ErrDocumentType is returned when an user passes a value that is invalid or
// contains an invalid sub value for creating a document.
type ErrDocumentType = domain.ErrDocumentType

// ErrCannotCompare is returned when [Comparer.Compare] is called with two
// values that cannot be compared by the current [Comparer] interface.
type ErrCannotCompare = domain.ErrCannotCompare

// Supported predicate operators.
const (
	Eq  = domain.Eq
	Neq = domain.Neq
	Lt  = domain.Lt
	Lte = domain.Lte
	Gt  = domain.Gt
	Gte = domain.Gte
)

// NewStore creates a new [Store] with the provided configuration options:
//
// - [WithBackend]: sets where documents are kept. Defaults to memory.
//
// - [WithTimestamps]: enables automatic createdAt and updatedAt fields.
//
// - [WithSerializer]: sets the serializer used by [Store.Export].
//
// - [WithDeserializer]: sets the deserializer used by [Store.ImportFrom].
//
// - [WithComparer]: sets the comparer for value comparison operations.
//
// - [WithDocumentFactory]: sets the function for creating [Document] instances.
//
// - [WithDecoder]: sets the decoder used by [Cursor.Scan].
//
// - [WithMatcher]: sets the matcher implementation for query evaluation.
//
// - [WithCursorFactory]: sets the function for creating cursor instances.
//
// - [WithTimeGetter]: sets the time getter for timestamping operations.
//
// - [WithFieldNavigator]: sets how dot paths are resolved.
//
// - [WithIDGenerator]: sets the generator of new document ids.
//
// - [WithLogf]: sets where import skips and failures are reported.
func NewStore(options ...Option) Store {
	return datastore.NewDatastore(options...)
}

// NewMemoryBackend returns an empty [Backend] that keeps documents in memory.
func NewMemoryBackend() Backend {
	return memory.NewBackend()
}

// OpenBolt opens, creating it if needed, a bbolt file [Backend] at path.
func OpenBolt(path string, options ...bolt.Option) (Backend, error) {
	b, err := bolt.Open(path, options...)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// OpenSQLite opens, creating it if needed, a SQLite file [Backend] at path.
func OpenSQLite(path string, options ...sqlite.Option) (Backend, error) {
	b, err := sqlite.Open(path, options...)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// P returns a [Predicate] comparing the value at a dot path.
func P(field string, op Operator, value any) Predicate {
	return Predicate{Field: field, Operator: op, Value: value}
}

// Store is the document store API. See [domain.Store].
type Store = domain.Store

// Backend is the storage a [Store] is built on.
type Backend = domain.Backend

// Query accumulates conditions over a bucket.
type Query = domain.Query

// Predicate tests a single field, addressed by dot path.
type Predicate = domain.Predicate

// Operator is the comparison applied by a [Predicate].
type Operator = domain.Operator

// Tx is handed to the function given to [Store.Transact].
type Tx = domain.Tx

// BucketWriter queues operations against a bucket during a transaction.
type BucketWriter = domain.BucketWriter

// Snapshot maps bucket names to their documents.
type Snapshot = domain.Snapshot

// Document is a stored document.
type Document = domain.Document

// Cursor walks query results.
type Cursor = domain.Cursor

// Comparer compares document values.
type Comparer = domain.Comparer

// Decoder decodes documents into user types.
type Decoder = domain.Decoder

// M is the default [Document] implementation.
type M = data.M

// Option configures a [Store].
type Option = datastore.Option

var (
	// WithBackend sets where documents are kept.
	WithBackend = datastore.WithBackend
	// WithTimestamps enables automatic createdAt and updatedAt fields.
	WithTimestamps = datastore.WithTimestamps
	// WithSerializer sets the serializer used by exports.
	WithSerializer = datastore.WithSerializer
	// WithDeserializer sets the deserializer used by imports.
	WithDeserializer = datastore.WithDeserializer
	// WithComparer sets the comparer for value comparison operations.
	WithComparer = datastore.WithComparer
	// WithDocumentFactory sets the function for creating documents.
	WithDocumentFactory = datastore.WithDocumentFactory
	// WithDecoder sets the decoder used by cursors.
	WithDecoder = datastore.WithDecoder
	// WithMatcher sets the matcher implementation for query evaluation.
	WithMatcher = datastore.WithMatcher
	// WithCursorFactory sets the function for creating cursor instances.
	WithCursorFactory = datastore.WithCursorFactory
	// WithTimeGetter sets the time getter for timestamping operations.
	WithTimeGetter = datastore.WithTimeGetter
	// WithFieldNavigator sets how dot paths are resolved.
	WithFieldNavigator = datastore.WithFieldNavigator
	// WithIDGenerator sets the generator of new document ids.
	WithIDGenerator = datastore.WithIDGenerator
	// WithLogf sets the logging function. nil silences logging.
	WithLogf = datastore.WithLogf
)
