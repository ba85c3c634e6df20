package domain

import "context"

// IDField is the name of the field holding the document id.
const IDField = "id"

// Operator is the comparison applied by a [Predicate].
type Operator string

// Supported operators. Any other value is evaluated as [Eq].
const (
	Eq  Operator = "eq"
	Neq Operator = "neq"
	Lt  Operator = "lt"
	Lte Operator = "lte"
	Gt  Operator = "gt"
	Gte Operator = "gte"
)

// Predicate tests a single field, addressed by dot path.
type Predicate struct {
	Field    string
	Operator Operator
	Value    any
}

// OpType identifies the kind of a queued [Operation].
type OpType uint8

const (
	// OpPut inserts or replaces Doc.
	OpPut OpType = iota + 1
	// OpDelete removes the document identified by ID.
	OpDelete
)

// Operation is a backend mutation queued by a transaction.
type Operation struct {
	Type   OpType
	Bucket string
	Doc    Document
	ID     any
}

// Snapshot maps bucket names to their documents, in bucket order.
type Snapshot = map[string][]Document

// Undefined is the value resolved for a path that does not exist in a
// document. It is a [Getter] reporting an undefined value, and differs from an
// explicit nil.
var Undefined Getter = undefined{}

type undefined struct{}

func (undefined) Get() (any, bool) { return nil, false }

func (undefined) String() string { return "undefined" }

// DocumentFactory represents a function that constructs [Document] instances
// from maps or structs. If nil is provided, returns an empty document.
type DocumentFactory = func(any) (Document, error)

// CursorFactory represents a function that constructs [Cursor] instances from
// a set of documents.
type CursorFactory = func(context.Context, []Document, ...CursorOption) (Cursor, error)
