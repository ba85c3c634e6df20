package query

import (
	"cmp"
	"iter"
	"slices"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/vinicius-lino-figueiredo/bucketdb/adapter/comparer"
	"github.com/vinicius-lino-figueiredo/bucketdb/adapter/data"
	"github.com/vinicius-lino-figueiredo/bucketdb/adapter/fieldnavigator"
	"github.com/vinicius-lino-figueiredo/bucketdb/adapter/projector"
	"github.com/vinicius-lino-figueiredo/bucketdb/domain"
)

// Seq is an immutable ordered sequence. Every method returns a new Seq and
// leaves the receiver untouched.
type Seq[T any] struct {
	items []T
}

// From returns a [Seq] holding a copy of items.
func From[T any](items []T) Seq[T] {
	return Seq[T]{items: slices.Clone(items)}
}

// Where keeps the items for which pred returns true.
func (s Seq[T]) Where(pred func(T) bool) Seq[T] {
	res := make([]T, 0, len(s.items))
	for _, item := range s.items {
		if pred(item) {
			res = append(res, item)
		}
	}
	return Seq[T]{items: res}
}

// OrderByFunc sorts the items in ascending order of cmp. Items that compare
// equal keep their relative order.
func (s Seq[T]) OrderByFunc(cmp func(a, b T) int) Seq[T] {
	res := slices.Clone(s.items)
	slices.SortStableFunc(res, cmp)
	return Seq[T]{items: res}
}

// OrderByDescendingFunc sorts the items in descending order of cmp. Items that
// compare equal keep their relative order.
func (s Seq[T]) OrderByDescendingFunc(cmp func(a, b T) int) Seq[T] {
	return s.OrderByFunc(func(a, b T) int { return cmp(b, a) })
}

// FirstOrDefault returns the first item matching every pred. The bool is false
// when there is no such item.
func (s Seq[T]) FirstOrDefault(pred ...func(T) bool) (T, bool) {
next:
	for _, item := range s.items {
		for _, p := range pred {
			if !p(item) {
				continue next
			}
		}
		return item, true
	}
	var zero T
	return zero, false
}

// Slice returns a copy of the items.
func (s Seq[T]) Slice() []T {
	return slices.Clone(s.items)
}

// Len returns the number of items.
func (s Seq[T]) Len() int {
	return len(s.items)
}

// All returns an iterator over the items.
func (s Seq[T]) All() iter.Seq[T] {
	return slices.Values(s.items)
}

// OrderBy sorts s in ascending order of the key returned by key. It is stable.
func OrderBy[T any, K cmp.Ordered](s Seq[T], key func(T) K) Seq[T] {
	return s.OrderByFunc(func(a, b T) int { return cmp.Compare(key(a), key(b)) })
}

// OrderByDescending sorts s in descending order of the key returned by key. It
// is stable.
func OrderByDescending[T any, K cmp.Ordered](s Seq[T], key func(T) K) Seq[T] {
	return s.OrderByDescendingFunc(func(a, b T) int { return cmp.Compare(key(a), key(b)) })
}

// Select maps every item of s through fn, keeping the order.
func Select[T, U any](s Seq[T], fn func(T) U) Seq[U] {
	res := make([]U, len(s.items))
	for n, item := range s.items {
		res[n] = fn(item)
	}
	return Seq[U]{items: res}
}

var (
	defaultComparer  = comparer.NewComparer()
	defaultNavigator = fieldnavigator.NewFieldNavigator()
	defaultProjector = projector.NewProjector()
)

// ByField returns a comparator of documents by the value found at the given
// dot path, following the total order of [comparer.Comparer.Compare].
// Undefined values sort first and values that cannot be compared are treated
// as equal.
func ByField(field string) func(a, b domain.Document) int {
	addr, addrErr := defaultNavigator.GetAddress(field)
	return func(a, b domain.Document) int {
		if addrErr != nil {
			return 0
		}
		av, _ := defaultNavigator.GetField(a, addr...)
		bv, _ := defaultNavigator.GetField(b, addr...)
		c, err := defaultComparer.Compare(av, bv)
		if err != nil {
			return 0
		}
		return c
	}
}

// Project replaces every document of s with one holding only fields.
func Project(s Seq[domain.Document], fields ...string) (Seq[domain.Document], error) {
	res := make([]domain.Document, len(s.items))
	for n, doc := range s.items {
		projected, err := defaultProjector.Project(doc, fields...)
		if err != nil {
			return Seq[domain.Document]{}, err
		}
		res[n] = projected
	}
	return Seq[domain.Document]{items: res}, nil
}

// ExprFunc compiles a boolean expr-lang expression into a condition accepted
// by [Query.WhereFunc]. Top level document fields are the expression
// variables; a field absent from a document is nil.
func ExprFunc(src string) (func(domain.Document) (bool, error), error) {
	prg, err := expr.Compile(src, expr.AsBool(), expr.AllowUndefinedVariables())
	if err != nil {
		return nil, err
	}
	return func(doc domain.Document) (bool, error) {
		env, _ := data.Plain(doc).(map[string]any)
		if env == nil {
			env = map[string]any{}
		}
		res, err := vm.Run(prg, env)
		if err != nil {
			return false, err
		}
		ok, _ := res.(bool)
		return ok, nil
	}, nil
}
