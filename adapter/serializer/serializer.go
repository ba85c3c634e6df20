// Package serializer contains the default [domain.Serializer] implementation.
// Snapshots are written as a single object mapping bucket names to arrays of
// documents, either as JSON or YAML.
package serializer

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/goccy/go-yaml"
	"github.com/vinicius-lino-figueiredo/bucketdb/adapter/data"
	"github.com/vinicius-lino-figueiredo/bucketdb/domain"
)

// Format is a snapshot text format.
type Format uint8

const (
	// JSON is the default snapshot format.
	JSON Format = iota
	// YAML writes the same structure as JSON in YAML syntax.
	YAML
)

// String implements [fmt.Stringer].
func (f Format) String() string {
	switch f {
	case JSON:
		return "json"
	case YAML:
		return "yaml"
	default:
		return fmt.Sprintf("Format(%d)", uint8(f))
	}
}

// ParseFormat returns the format with the given name.
func ParseFormat(name string) (Format, error) {
	switch name {
	case "json", "":
		return JSON, nil
	case "yaml", "yml":
		return YAML, nil
	default:
		return 0, fmt.Errorf("unknown snapshot format %q", name)
	}
}

// Serializer implements domain.Serializer.
type Serializer struct {
	format Format
	indent string
}

// NewSerializer returns a new implementation of domain.Serializer.
func NewSerializer(opts ...Option) domain.Serializer {
	s := Serializer{format: JSON}
	for _, opt := range opts {
		opt(&s)
	}
	return &s
}

// Serialize implements domain.Serializer.
func (s *Serializer) Serialize(ctx context.Context, snap domain.Snapshot) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make(map[string][]any, len(snap))
	for bucket, docs := range snap {
		plain := make([]any, len(docs))
		for n, doc := range docs {
			plain[n] = data.Plain(doc)
		}
		out[bucket] = plain
	}

	switch s.format {
	case YAML:
		return yaml.Marshal(out)
	case JSON:
		if s.indent != "" {
			return json.MarshalIndent(out, "", s.indent)
		}
		return json.Marshal(out)
	default:
		return nil, fmt.Errorf("unknown snapshot format %s", s.format)
	}
}
