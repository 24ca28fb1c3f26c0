// Package cursor contains the default [domain.Cursor] implementation, reading
// from documents already selected by a store.
package cursor

import (
	"context"
	"maps"

	"github.com/vinicius-lino-figueiredo/godm/adapter/decoder"
	"github.com/vinicius-lino-figueiredo/godm/domain"
)

// Cursor implements [domain.Cursor] over a slice of raw documents.
type Cursor struct {
	docs   []domain.M
	pos    int
	ctx    context.Context
	cancel context.CancelCauseFunc
	dec    domain.Decoder
}

// NewCursor returns a cursor over docs. The cursor is closed when ctx is done.
func NewCursor(ctx context.Context, docs []domain.M, opts ...Option) (domain.Cursor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancelCause(ctx)
	cur := &Cursor{
		docs:   docs,
		pos:    -1,
		ctx:    ctx,
		cancel: cancel,
		dec:    decoder.NewDecoder(),
	}
	for _, opt := range opts {
		opt(cur)
	}
	return cur, nil
}

// Err implements [domain.Cursor].
func (c *Cursor) Err() error {
	return context.Cause(c.ctx)
}

// Next implements [domain.Cursor].
func (c *Cursor) Next() bool {
	if c.ctx.Err() != nil || c.pos+1 >= len(c.docs) {
		return false
	}
	c.pos++
	return true
}

// Remaining returns how many documents Next has not reached yet.
func (c *Cursor) Remaining() int {
	if c.ctx.Err() != nil {
		return 0
	}
	return len(c.docs) - c.pos - 1
}

// Scan implements [domain.Cursor]. Scanning into a *domain.M copies the raw
// document without decoding it.
func (c *Cursor) Scan(ctx context.Context, target any) error {
	if c.ctx.Err() != nil {
		return context.Cause(c.ctx)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if c.pos < 0 {
		return domain.ErrScanBeforeNext
	}

	doc := c.docs[c.pos]
	switch t := target.(type) {
	case nil:
		return domain.ErrTargetNil
	case *domain.M:
		if t == nil {
			return domain.ErrTargetNil
		}
		*t = maps.Clone(doc)
		return nil
	}
	return c.dec.Decode(doc, target)
}

// Close implements [domain.Cursor]. Closing twice returns
// [domain.ErrCursorClosed].
func (c *Cursor) Close() error {
	if c.ctx.Err() != nil {
		return context.Cause(c.ctx)
	}
	c.cancel(domain.ErrCursorClosed)
	c.docs = nil
	return nil
}
