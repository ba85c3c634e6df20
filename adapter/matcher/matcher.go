// Package matcher contains the default implementation of [domain.Matcher],
// evaluating field predicates with loose equality and coercing relational
// comparisons.
package matcher

import (
	"github.com/vinicius-lino-figueiredo/bucketdb/adapter/comparer"
	"github.com/vinicius-lino-figueiredo/bucketdb/adapter/fieldnavigator"
	"github.com/vinicius-lino-figueiredo/bucketdb/domain"
)

// Matcher implements [domain.Matcher].
type Matcher struct {
	comparer       domain.Comparer
	fieldNavigator domain.FieldNavigator
}

// NewMatcher returns a new implementation of domain.Matcher.
func NewMatcher(options ...Option) domain.Matcher {
	m := &Matcher{
		comparer:       comparer.NewComparer(),
		fieldNavigator: fieldnavigator.NewFieldNavigator(),
	}
	for _, option := range options {
		option(m)
	}
	return m
}

// Compare implements [domain.Matcher]. The resolved value may be a
// [domain.Getter], such as [domain.Undefined]. An unknown operator is
// evaluated as [domain.Eq].
func (m *Matcher) Compare(resolved any, op domain.Operator, expected any) bool {
	switch op {
	case domain.Neq:
		return !m.comparer.LooseEqual(resolved, expected)
	case domain.Lt:
		c, ok := m.comparer.LooseCompare(resolved, expected)
		return ok && c < 0
	case domain.Lte:
		c, ok := m.comparer.LooseCompare(resolved, expected)
		return ok && c <= 0
	case domain.Gt:
		c, ok := m.comparer.LooseCompare(resolved, expected)
		return ok && c > 0
	case domain.Gte:
		c, ok := m.comparer.LooseCompare(resolved, expected)
		return ok && c >= 0
	default:
		return m.comparer.LooseEqual(resolved, expected)
	}
}

// Match implements [domain.Matcher].
func (m *Matcher) Match(doc domain.Document, p domain.Predicate) (bool, error) {
	resolved, err := m.resolve(doc, p.Field)
	if err != nil {
		return false, err
	}
	return m.Compare(resolved, p.Operator, p.Value), nil
}

// MatchAll implements [domain.Matcher]. An empty list matches every document.
func (m *Matcher) MatchAll(doc domain.Document, ps []domain.Predicate) (bool, error) {
	for _, p := range ps {
		ok, err := m.Match(doc, p)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

// MatchAny implements [domain.Matcher]. An empty list matches nothing.
func (m *Matcher) MatchAny(doc domain.Document, ps []domain.Predicate) (bool, error) {
	for _, p := range ps {
		ok, err := m.Match(doc, p)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// MatchFields implements [domain.Matcher]. Keys of fields are dot paths.
func (m *Matcher) MatchFields(doc domain.Document, fields domain.Document) (bool, error) {
	if fields == nil {
		return true, nil
	}
	for field, value := range fields.Iter() {
		resolved, err := m.resolve(doc, field)
		if err != nil {
			return false, err
		}
		if !m.comparer.LooseEqual(resolved, value) {
			return false, nil
		}
	}
	return true, nil
}

func (m *Matcher) resolve(doc domain.Document, field string) (domain.Getter, error) {
	addr, err := m.fieldNavigator.GetAddress(field)
	if err != nil {
		return nil, err
	}
	return m.fieldNavigator.GetField(doc, addr...)
}
