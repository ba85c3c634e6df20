// Package cursor contains the default [domain.Cursor] implementation, used to
// walk query results and decode them into user types.
package cursor

import (
	"context"

	"github.com/vinicius-lino-figueiredo/bucketdb/adapter/decoder"
	"github.com/vinicius-lino-figueiredo/bucketdb/domain"
)

// Cursor implements domain.Cursor.
type Cursor struct {
	docs   []domain.Document
	ctx    context.Context
	cancel context.CancelCauseFunc
	dec    domain.Decoder
	pos    int
}

// NewCursor returns a new implementation of Cursor. The cursor stops once
// ctx is done.
func NewCursor(ctx context.Context, docs []domain.Document, options ...domain.CursorOption) (domain.Cursor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	opts := domain.CursorOptions{
		Decoder: decoder.NewDecoder(),
	}
	for _, option := range options {
		option(&opts)
	}

	ctx, cancel := context.WithCancelCause(ctx)
	return &Cursor{
		docs:   docs,
		ctx:    ctx,
		cancel: cancel,
		dec:    opts.Decoder,
		pos:    -1,
	}, nil
}

// Err implements domain.Cursor. After [Cursor.Close] it returns
// [domain.ErrCursorClosed].
func (c *Cursor) Err() error {
	return context.Cause(c.ctx)
}

// Scan implements domain.Cursor.
func (c *Cursor) Scan(ctx context.Context, target any) error {
	if err := context.Cause(c.ctx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if c.pos < 0 {
		return domain.ErrScanBeforeNext
	}
	return c.dec.Decode(c.docs[c.pos], target)
}

// Close implements domain.Cursor. Closing twice returns
// [domain.ErrCursorClosed].
func (c *Cursor) Close() error {
	if err := context.Cause(c.ctx); err != nil {
		return err
	}
	c.cancel(domain.ErrCursorClosed)
	c.docs = nil
	return nil
}

// Next implements domain.Cursor.
func (c *Cursor) Next() bool {
	if c.ctx.Err() != nil {
		return false
	}
	if c.pos+1 < len(c.docs) {
		c.pos++
		return true
	}
	return false
}
