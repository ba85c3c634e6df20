// Package data contains the default [domain.Document] implementation and the
// helpers used to build, copy and identify documents.
package data

import (
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"maps"
	"reflect"
	"slices"
	"strings"
	"time"

	goreflect "github.com/goccy/go-reflect"

	"github.com/vinicius-lino-figueiredo/bucketdb/domain"
)

// TagName is the struct tag read when converting structs into documents.
const TagName = "bucketdb"

var (
	// ErrMapKeyType is returned when a map with non-string keys is found
	// inside a value being converted into a document.
	ErrMapKeyType = errors.New("map keys must be strings")

	timeTyp = goreflect.TypeOf(*new(time.Time))
)

// M implements domain.Document by using a hashed map.
type M map[string]any

// NewDocument returns a new instance of [domain.Document]. Nested maps and
// structs become nested documents, and slices become []any.
func NewDocument(in any) (domain.Document, error) {
	if in == nil {
		return M{}, nil
	}

	switch t := in.(type) {
	case domain.Document:
		return Clone(t), nil
	case map[string]any:
		return parseAnyMap(t)
	}

	r := goreflect.ValueNoEscapeOf(in)
	k := r.Kind()
	for k == goreflect.Interface || k == reflect.Pointer {
		if r.IsNil() {
			return M{}, nil
		}
		r = r.Elem()
		k = r.Kind()
	}
	if (k != goreflect.Struct && k != goreflect.Map) || r.Type() == timeTyp {
		return nil, domain.ErrDocumentType{Value: in}
	}
	doc, err := parseReflect(r)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return M{}, nil
	}
	return doc.(domain.Document), nil
}

// Normalize converts decoded values into the representation used by stored
// documents: maps and structs become [M], slices become []any, JSON numbers
// become int64 or float64. Scalars are returned unchanged.
func Normalize(v any) (any, error) {
	switch t := v.(type) {
	case nil, string, bool, time.Time,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return t, nil
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i, nil
		}
		return t.Float64()
	case domain.Document:
		return cloneDoc(t), nil
	case map[string]any:
		return parseAnyMap(t)
	case map[any]any:
		res := make(M, len(t))
		for k, v := range t {
			key, ok := k.(string)
			if !ok {
				return nil, fmt.Errorf("%w: got %T", ErrMapKeyType, k)
			}
			val, err := Normalize(v)
			if err != nil {
				return nil, err
			}
			res[key] = val
		}
		return res, nil
	case []any:
		res := make([]any, len(t))
		for n, v := range t {
			val, err := Normalize(v)
			if err != nil {
				return nil, err
			}
			res[n] = val
		}
		return res, nil
	default:
		return parseReflect(goreflect.ValueNoEscapeOf(v))
	}
}

// Clone returns a deep copy of doc.
func Clone(doc domain.Document) domain.Document {
	if doc == nil {
		return nil
	}
	return cloneDoc(doc)
}

func cloneDoc(doc domain.Document) M {
	res := make(M, doc.Len())
	for k, v := range doc.Iter() {
		res[k] = cloneAny(v)
	}
	return res
}

func cloneAny(v any) any {
	switch t := v.(type) {
	case domain.Document:
		return cloneDoc(t)
	case []any:
		res := make([]any, len(t))
		for n, v := range t {
			res[n] = cloneAny(v)
		}
		return res
	default:
		return t
	}
}

// Plain converts a document into nested map[string]any values, for libraries
// that do not know about [domain.Document].
func Plain(v any) any {
	switch t := v.(type) {
	case domain.Document:
		res := make(map[string]any, t.Len())
		for k, v := range t.Iter() {
			res[k] = Plain(v)
		}
		return res
	case []any:
		res := make([]any, len(t))
		for n, v := range t {
			res[n] = Plain(v)
		}
		return res
	default:
		return t
	}
}

func parseAnyMap(m map[string]any) (M, error) {
	res := make(M, len(m))
	for k, v := range m {
		val, err := Normalize(v)
		if err != nil {
			return nil, err
		}
		res[k] = val
	}
	return res, nil
}

func parseReflect(r goreflect.Value) (any, error) {
	for r.Kind() == reflect.Pointer || r.Kind() == goreflect.Interface {
		if r.IsNil() {
			return nil, nil
		}
		r = r.Elem()
	}
	switch r.Kind() {
	case goreflect.Invalid:
		return nil, nil
	case goreflect.Slice:
		if r.IsNil() {
			return nil, nil
		}
		fallthrough
	case goreflect.Array:
		return parseList(r)
	case goreflect.Struct:
		if r.Type() == timeTyp {
			return r.Interface(), nil
		}
		return parseStruct(r)
	case goreflect.Map:
		if r.IsNil() {
			return nil, nil
		}
		return parseMapReflect(r)
	case goreflect.Chan, goreflect.Func:
		if r.IsNil() {
			return nil, nil
		}
		return r.Interface(), nil
	default:
		return r.Interface(), nil
	}
}

func parseStruct(r goreflect.Value) (domain.Document, error) {
	typ := r.Type()
	numField := r.NumField()

	res := make(M, numField)

	for n := range numField {
		field := typ.Field(n)
		if field.PkgPath != "" {
			continue
		}

		fieldInfo, err := parseField(r.Field(n), field)
		if err != nil {
			return nil, err
		}

		if fieldInfo == nil {
			continue
		}
		// a zero id field means the id is yet to be assigned
		if fieldInfo.name == domain.IDField && r.Field(n).IsZero() {
			continue
		}
		res[fieldInfo.name] = fieldInfo.value
	}
	return res, nil
}

func parseMapReflect(v goreflect.Value) (domain.Document, error) {
	if v.Type().Key().Kind() != goreflect.String {
		return nil, fmt.Errorf("%w: got %s", ErrMapKeyType, v.Type().Key())
	}
	res := make(M, v.Len())
	for _, k := range v.MapKeys() {
		var err error
		if res[k.String()], err = parseReflect(v.MapIndex(k)); err != nil {
			return nil, err
		}
	}
	return res, nil
}

type field struct {
	name  string
	value any
}

func parseField(r goreflect.Value, typ goreflect.StructField) (*field, error) {
	name := typ.Name
	var tagSegments []string
	if tag, ok := typ.Tag.Lookup(TagName); ok {
		if tag == "-" {
			return nil, nil
		}
		tagSegments = strings.Split(tag, ",")
		if tagSegments[0] != "" {
			name = tagSegments[0]
		}
		tagSegments = tagSegments[1:]
	}
	if slices.Contains(tagSegments, "omitempty") && isNullable(typ.Type) && r.IsNil() {
		return nil, nil
	}
	if slices.Contains(tagSegments, "omitzero") && r.IsZero() {
		return nil, nil
	}

	value, err := parseReflect(r)
	if err != nil {
		return nil, err
	}

	return &field{name: name, value: value}, nil
}

func parseList(r goreflect.Value) (any, error) {
	length := r.Len()
	res := make([]any, length)
	for i := range length {
		v, err := parseReflect(r.Index(i))
		if err != nil {
			return nil, err
		}
		res[i] = v
	}
	return res, nil
}

func isNullable(t goreflect.Type) bool {
	k := t.Kind()
	return k == reflect.Pointer ||
		k == reflect.Slice ||
		k == reflect.Map ||
		k == reflect.Interface ||
		k == reflect.Func ||
		k == reflect.Chan
}

// ID implements domain.Document
func (d M) ID() any {
	return d[domain.IDField]
}

// Get implements domain.Document
func (d M) Get(key string) any {
	return d[key]
}

// Set implements domain.Document
func (d M) Set(key string, value any) {
	d[key] = value
}

// Unset implements domain.Document
func (d M) Unset(key string) {
	delete(d, key)
}

// D implements domain.Document
func (d M) D(key string) domain.Document {
	if doc, ok := d[key].(domain.Document); ok {
		return doc
	}
	return nil
}

// Iter implements domain.Document.
func (d M) Iter() iter.Seq2[string, any] {
	return maps.All(d)
}

// Keys implements domain.Document.
func (d M) Keys() iter.Seq[string] {
	return maps.Keys(d)
}

// Len implements domain.Document.
func (d M) Len() int {
	return len(d)
}

// Values implements domain.Document.
func (d M) Values() iter.Seq[any] {
	return maps.Values(d)
}

// Has implements domain.Document.
func (d M) Has(key string) bool {
	_, has := d[key]
	return has
}
