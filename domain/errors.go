package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when the target document of an operation
	// does not exist.
	ErrNotFound = errors.New("document not found")
	// ErrMissingID is returned by update operations when the document has
	// no id.
	ErrMissingID = errors.New("document has no id")
	// ErrDuplicateID is returned when inserting a document whose id is
	// already used in the bucket.
	ErrDuplicateID = errors.New("duplicate document id")
	// ErrInvalidID is returned when an id is neither a string nor a
	// number.
	ErrInvalidID = errors.New("id must be a string or a number")
	// ErrCursorClosed is returned when trying to perform operations on a
	// closed [Cursor].
	ErrCursorClosed = errors.New("cursor is closed")
	// ErrScanBeforeNext is returned when calling [Cursor.Scan] before
	// calling [Cursor.Next].
	ErrScanBeforeNext = errors.New("scan called before next")
	// ErrTargetNil is returned when a nil target is given to a decoder.
	ErrTargetNil = errors.New("target interface is nil")
	// ErrNonPointer is returned when the decoding target is not a pointer.
	ErrNonPointer = errors.New("target must be a pointer")
)

// ErrBucketNotFound is returned by operations that require an existing
// bucket, such as transactions.
type ErrBucketNotFound struct {
	Bucket string
}

// Error implements [error].
func (e ErrBucketNotFound) Error() string {
	return fmt.Sprintf("bucket %q not found", e.Bucket)
}

// ErrParse is returned when a serialized snapshot cannot be read.
type ErrParse struct {
	Err error
}

// Error implements [error].
func (e ErrParse) Error() string {
	return fmt.Sprintf("cannot parse snapshot: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e ErrParse) Unwrap() error { return e.Err }

// ErrBackendFailure wraps an error returned by the storage backend itself.
type ErrBackendFailure struct {
	Op  string
	Err error
}

// Error implements [error].
func (e ErrBackendFailure) Error() string {
	return fmt.Sprintf("backend %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e ErrBackendFailure) Unwrap() error { return e.Err }

// ErrDecode is returned by [Decoder.Decode] to wrap third party decoding
// errors.
type ErrDecode struct {
	Source any
	Target any
}

// Error implements [error].
func (e ErrDecode) Error() string {
	return fmt.Sprintf("cannot decode %T into %T", e.Source, e.Target)
}

// ErrDocumentType is returned when a value cannot be turned into a
// [Document].
type ErrDocumentType struct {
	Value any
}

// Error implements [error].
func (e ErrDocumentType) Error() string {
	return fmt.Sprintf("expected map or struct, got %T", e.Value)
}

// ErrCannotCompare is returned by [Comparer.Compare] when the values are of
// types outside the supported total order.
type ErrCannotCompare struct {
	A, B any
}

// Error implements [error].
func (e ErrCannotCompare) Error() string {
	return fmt.Sprintf("cannot compare unexpected types %T and %T", e.A, e.B)
}

// ErrTxDone is returned by a [BucketWriter] used after its transaction has
// finished.
var ErrTxDone = errors.New("transaction already finished")
