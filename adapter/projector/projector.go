// Package projector contains the default [domain.Projector] implementation.
package projector

import (
	"github.com/vinicius-lino-figueiredo/bucketdb/adapter/data"
	"github.com/vinicius-lino-figueiredo/bucketdb/adapter/fieldnavigator"
	"github.com/vinicius-lino-figueiredo/bucketdb/domain"
)

// Projector implements [domain.Projector].
type Projector struct {
	fn     domain.FieldNavigator
	docFac domain.DocumentFactory
}

// NewProjector returns a new implementation of [domain.Projector].
func NewProjector(opts ...Option) domain.Projector {
	p := Projector{docFac: data.NewDocument}
	for _, opt := range opts {
		opt(&p)
	}
	if p.fn == nil {
		p.fn = fieldnavigator.NewFieldNavigator()
	}
	return &p
}

// Project implements [domain.Projector]. Nested paths rebuild their parent
// documents, and paths that are undefined in doc are left out. Without fields,
// a copy of the whole document is returned.
func (q *Projector) Project(doc domain.Document, fields ...string) (domain.Document, error) {
	if len(fields) == 0 {
		return data.Clone(doc), nil
	}

	res, err := q.docFac(nil)
	if err != nil {
		return nil, err
	}

	for _, field := range fields {
		addr, err := q.fn.GetAddress(field)
		if err != nil {
			return nil, err
		}
		g, err := q.fn.GetField(doc, addr...)
		if err != nil {
			return nil, err
		}
		value, defined := g.Get()
		if !defined {
			continue
		}
		if err := q.set(res, addr, value); err != nil {
			return nil, err
		}
	}
	return res, nil
}

func (q *Projector) set(doc domain.Document, addr []string, value any) error {
	curr := doc
	for _, part := range addr[:len(addr)-1] {
		next := curr.D(part)
		if next == nil {
			var err error
			if next, err = q.docFac(nil); err != nil {
				return err
			}
			curr.Set(part, next)
		}
		curr = next
	}
	copied, err := data.Normalize(value)
	if err != nil {
		return err
	}
	curr.Set(addr[len(addr)-1], copied)
	return nil
}
