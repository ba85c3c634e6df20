package fieldnavigator

import "github.com/vinicius-lino-figueiredo/bucketdb/domain"

// DocGetter is a [domain.Getter] that reads a specific key in a
// [domain.Document].
type DocGetter struct {
	Doc domain.Document
	Key string
}

// NewGetterWithDoc returns a new implementation of [domain.Getter] that will
// represent a value from a [domain.Document].
func NewGetterWithDoc(doc domain.Document, key string) domain.Getter {
	return &DocGetter{Doc: doc, Key: key}
}

// Get implements [domain.Getter].
func (d *DocGetter) Get() (value any, defined bool) {
	return d.Doc.Get(d.Key), d.Doc.Has(d.Key)
}

// MapGetter is a [domain.Getter] that reads a specific key in a plain map.
type MapGetter struct {
	Map map[string]any
	Key string
}

// Get implements [domain.Getter].
func (m *MapGetter) Get() (value any, defined bool) {
	value, defined = m.Map[m.Key]
	return value, defined
}

// ValueGetter is a [domain.Getter] of a value that is always defined.
type ValueGetter struct {
	V any
}

// NewValueGetter returns a [domain.Getter] that always yields v.
func NewValueGetter(v any) domain.Getter {
	return &ValueGetter{V: v}
}

// Get implements [domain.Getter].
func (r *ValueGetter) Get() (value any, defined bool) {
	return r.V, true
}
