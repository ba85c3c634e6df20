// Package idgenerator contains the default [domain.IDGenerator]
// implementation, producing random UUIDs.
package idgenerator

import (
	"crypto/rand"
	"io"

	"github.com/google/uuid"
	"github.com/vinicius-lino-figueiredo/bucketdb/domain"
)

// IDGenerator implements [domain.IDGenerator].
type IDGenerator struct {
	reader      io.Reader
	timeOrdered bool
}

// NewIDGenerator returns a new implementation of [domain.IDGenerator].
func NewIDGenerator(opts ...Option) domain.IDGenerator {
	i := IDGenerator{
		reader: rand.Reader,
	}
	for _, opt := range opts {
		opt(&i)
	}
	return &i
}

// GenerateID implements [domain.IDGenerator]. It returns a UUID in its
// canonical text form.
func (i *IDGenerator) GenerateID() (string, error) {
	newID := uuid.NewRandomFromReader
	if i.timeOrdered {
		newID = uuid.NewV7FromReader
	}
	id, err := newID(i.reader)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
