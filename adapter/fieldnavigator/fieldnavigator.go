// Package fieldnavigator resolves dot-separated field paths inside documents.
package fieldnavigator

import (
	"errors"
	"strings"

	"github.com/vinicius-lino-figueiredo/bucketdb/domain"
)

// ErrEmptyField is returned when an empty path is given to
// [FieldNavigator.GetAddress].
var ErrEmptyField = errors.New("field path cannot be empty")

// FieldNavigator implements [domain.FieldNavigator]. Paths never descend into
// arrays: a list is a leaf value and any further segment is undefined.
type FieldNavigator struct{}

// NewFieldNavigator returns a new instance of [domain.FieldNavigator].
func NewFieldNavigator() domain.FieldNavigator {
	return &FieldNavigator{}
}

// GetAddress implements [domain.FieldNavigator].
func (fn *FieldNavigator) GetAddress(field string) ([]string, error) {
	if field == "" {
		return nil, ErrEmptyField
	}
	return strings.Split(field, "."), nil
}

// GetField implements [domain.FieldNavigator].
func (fn *FieldNavigator) GetField(obj any, fieldParts ...string) (domain.Getter, error) {
	if len(fieldParts) == 0 {
		return domain.Undefined, nil
	}

	var res domain.Getter = domain.Undefined
	curr := obj
	for _, part := range fieldParts {
		switch t := curr.(type) {
		case domain.Document:
			if t == nil || !t.Has(part) {
				return domain.Undefined, nil
			}
			res = NewGetterWithDoc(t, part)
			curr = t.Get(part)
		case map[string]any:
			if _, ok := t[part]; !ok {
				return domain.Undefined, nil
			}
			res = &MapGetter{Map: t, Key: part}
			curr = t[part]
		default:
			return domain.Undefined, nil
		}
	}
	return res, nil
}
