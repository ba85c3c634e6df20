// Package deserializer contains the default [domain.Deserializer]
// implementation.
package deserializer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/goccy/go-yaml"
	"github.com/vinicius-lino-figueiredo/bucketdb/adapter/data"
	"github.com/vinicius-lino-figueiredo/bucketdb/adapter/serializer"
	"github.com/vinicius-lino-figueiredo/bucketdb/domain"
)

// ErrTrailingData is returned when a snapshot is followed by more content.
var ErrTrailingData = errors.New("unexpected data after snapshot")

// Deserializer implements [domain.Deserializer].
type Deserializer struct {
	format serializer.Format
}

// NewDeserializer returns a new instance of domain.Deserializer.
func NewDeserializer(opts ...Option) domain.Deserializer {
	d := Deserializer{format: serializer.JSON}
	for _, opt := range opts {
		opt(&d)
	}
	return &d
}

// Deserialize implements [domain.Deserializer]. The top level value must be an
// object of arrays of objects. Any other shape fails with [domain.ErrParse].
func (d *Deserializer) Deserialize(ctx context.Context, b []byte) (domain.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var raw any
	var err error
	switch d.format {
	case serializer.YAML:
		err = yaml.Unmarshal(b, &raw)
	case serializer.JSON:
		raw, err = decodeJSON(b)
	default:
		err = fmt.Errorf("unknown snapshot format %s", d.format)
	}
	if err != nil {
		return nil, domain.ErrParse{Err: err}
	}

	snap, err := toSnapshot(raw)
	if err != nil {
		return nil, domain.ErrParse{Err: err}
	}
	return snap, nil
}

func decodeJSON(b []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, ErrTrailingData
	}
	return raw, nil
}

func toSnapshot(raw any) (domain.Snapshot, error) {
	top, err := asObject(raw)
	if err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}

	snap := make(domain.Snapshot, len(top))
	for bucket, value := range top {
		list, ok := value.([]any)
		if !ok {
			return nil, fmt.Errorf("bucket %q: expected array, got %T", bucket, value)
		}
		docs := make([]domain.Document, len(list))
		for n, item := range list {
			obj, err := asObject(item)
			if err != nil {
				return nil, fmt.Errorf("bucket %q item %d: %w", bucket, n, err)
			}
			doc, err := data.Normalize(obj)
			if err != nil {
				return nil, fmt.Errorf("bucket %q item %d: %w", bucket, n, err)
			}
			docs[n] = doc.(domain.Document)
		}
		snap[bucket] = docs
	}
	return snap, nil
}

func asObject(v any) (map[string]any, error) {
	switch t := v.(type) {
	case map[string]any:
		return t, nil
	case map[any]any:
		res := make(map[string]any, len(t))
		for k, v := range t {
			key, ok := k.(string)
			if !ok {
				return nil, fmt.Errorf("%w: got %T", data.ErrMapKeyType, k)
			}
			res[key] = v
		}
		return res, nil
	default:
		return nil, fmt.Errorf("expected object, got %T", v)
	}
}
