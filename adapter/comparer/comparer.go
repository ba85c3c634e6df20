// Package comparer orders and compares document values. [Comparer.Compare]
// is a strict total order used for sorting, while [Comparer.LooseEqual] and
// [Comparer.LooseCompare] coerce types before comparing, the way predicates
// evaluate them.
package comparer

import (
	"cmp"
	"math"
	"math/big"
	"slices"
	"time"

	"github.com/vinicius-lino-figueiredo/bucketdb/domain"
)

// Comparer implements domain.Comparer.
type Comparer struct{}

// NewComparer returns a new implementation of domain.Comparer.
func NewComparer() domain.Comparer {
	return &Comparer{}
}

// Comparable implements domain.Comparer.
func (c *Comparer) Comparable(a, b any) bool {
	if !isSet(a) || !isSet(b) {
		return false
	}
	a, b = getVal(a), getVal(b)

	equal := false
	if _, ok := asNumber(a); ok {
		_, equal = asNumber(b)
		return equal
	}

	switch a.(type) {
	case string:
		_, equal = b.(string)
	case time.Time:
		_, equal = b.(time.Time)
	default:
		return false
	}
	return equal
}

// Compare implements domain.Comparer. Undefined sorts before nil, followed by
// numbers, strings, booleans, times, arrays and documents.
func (c *Comparer) Compare(a any, b any) (int, error) {

	// [domain.Getter]. Equivalent to js undefined
	if c, ok := checkUndefined(a, b); ok {
		return c, nil
	}

	a, b = getVal(a), getVal(b)

	if c, ok := checkNil(a, b); ok {
		return c, nil
	}

	if c, ok := checkNumbers(a, b); ok {
		return c, nil
	}

	if c, ok := checkOrdered[string](a, b); ok {
		return c, nil
	}

	if c, ok := checkBooleans(a, b); ok {
		return c, nil
	}

	if c, ok := checkTime(a, b); ok {
		return c, nil
	}

	if c, ok, err := c.checkArrays(a, b); err != nil || ok {
		return c, err
	}

	if c, ok, err := c.checkDocs(a, b); err != nil || ok {
		return c, err
	}

	return 0, domain.ErrCannotCompare{A: a, B: b}
}

func checkUndefined(a, b any) (int, bool) {
	if !isSet(a) {
		if !isSet(b) {
			return 0, true
		}
		return -1, true
	}
	if !isSet(b) {
		return 1, true
	}
	return 0, false
}

func checkNil(a, b any) (int, bool) {
	if a == nil {
		if b == nil {
			return 0, true
		}
		return -1, true
	}
	if b == nil {
		return 1, true
	}
	return 0, false
}

func checkNumbers(a, b any) (int, bool) {
	an, aok := asNumber(a)
	bn, bok := asNumber(b)
	switch {
	case aok && bok:
		// NaN sorts before every other number
		switch aNaN, bNaN := an == nil, bn == nil; {
		case aNaN && bNaN:
			return 0, true
		case aNaN:
			return -1, true
		case bNaN:
			return 1, true
		}
		return an.Cmp(bn), true
	case aok:
		return -1, true
	case bok:
		return 1, true
	}
	return 0, false
}

func checkOrdered[T cmp.Ordered](a, b any) (int, bool) {
	if a, ok := a.(T); ok {
		if b, ok := b.(T); ok {
			return cmp.Compare(a, b), true
		}
		return -1, true
	}
	if _, ok := b.(T); ok {
		return 1, true
	}
	return 0, false
}

func checkBooleans(a, b any) (int, bool) {
	if a, ok := a.(bool); ok {
		if b, ok := b.(bool); ok {
			return compareBool(a, b), true
		}
		return -1, true
	}
	if _, ok := b.(bool); ok {
		return 1, true
	}
	return 0, false
}

func checkTime(a, b any) (int, bool) {
	if a, ok := a.(time.Time); ok {
		if b, ok := b.(time.Time); ok {
			return a.Compare(b), true
		}
		return -1, true
	}
	if _, ok := b.(time.Time); ok {
		return 1, true
	}
	return 0, false
}

func (c *Comparer) checkArrays(a, b any) (int, bool, error) {
	if a, ok := a.([]any); ok {
		if b, ok := b.([]any); ok {
			comp, err := c.compareArray(a, b)
			return comp, true, err
		}
		return -1, true, nil
	}
	if _, ok := b.([]any); ok {
		return 1, true, nil
	}
	return 0, false, nil
}

func (c *Comparer) checkDocs(a, b any) (int, bool, error) {
	if a, ok := a.(domain.Document); ok {
		if b, ok := b.(domain.Document); ok {
			comp, err := c.compareDoc(a, b)
			return comp, true, err
		}
		return -1, true, nil
	}
	if _, ok := b.(domain.Document); ok {
		return 1, true, nil
	}
	return 0, false, nil
}

func (c *Comparer) compareArray(a, b []any) (int, error) {
	for i := range min(len(a), len(b)) {
		comp, err := c.Compare(a[i], b[i])
		if err != nil {
			return 0, err
		}
		if comp != 0 {
			return comp, nil
		}
	}

	// Common section was identical, longest one wins
	return cmp.Compare(len(a), len(b)), nil
}

func compareBool(a, b bool) int {
	if a == b {
		return 0
	}
	if a {
		return 1
	}
	return -1
}

func (c *Comparer) compareDoc(a domain.Document, b domain.Document) (int, error) {
	aKeys := slices.Sorted(a.Keys())
	bKeys := slices.Sorted(b.Keys())

	for i := range min(len(aKeys), len(bKeys)) {
		comp, err := c.Compare(a.Get(aKeys[i]), b.Get(bKeys[i]))
		if err != nil {
			return 0, err
		}
		if comp != 0 {
			return comp, nil
		}
	}

	if comp := cmp.Compare(a.Len(), b.Len()); comp != 0 {
		return comp, nil
	}

	return slices.Compare(aKeys, bKeys), nil
}

// asNumber reports whether v is a Go number. The returned value is nil for
// NaN, which big.Float cannot hold.
func asNumber(v any) (*big.Float, bool) {
	r := big.NewFloat(0)
	switch n := v.(type) {
	case int:
		r.SetInt64(int64(n))
	case int8:
		r.SetInt64(int64(n))
	case int16:
		r.SetInt64(int64(n))
	case int32:
		r.SetInt64(int64(n))
	case int64:
		r.SetInt64(n)
	case uint:
		r.SetUint64(uint64(n))
	case uint8:
		r.SetUint64(uint64(n))
	case uint16:
		r.SetUint64(uint64(n))
	case uint32:
		r.SetUint64(uint64(n))
	case uint64:
		r.SetUint64(n)
	case float32:
		return floatNumber(float64(n)), true
	case float64:
		return floatNumber(n), true
	default:
		return nil, false
	}
	return r, true
}

func floatNumber(f float64) *big.Float {
	if math.IsNaN(f) {
		return nil
	}
	return big.NewFloat(f)
}

func isSet(v any) bool {
	if g, ok := v.(domain.Getter); ok {
		_, isSet := g.Get()
		return isSet
	}
	return true
}

func getVal(v any) any {
	if g, ok := v.(domain.Getter); ok {
		val, _ := g.Get()
		return val
	}
	return v
}
