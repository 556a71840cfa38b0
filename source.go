package sunburnt

import "context"

// SliceSource adapts an in-memory record slice to the RecordSource contract.
type SliceSource []any

// Records returns a cursor over the slice.
func (s SliceSource) Records(_ context.Context) RecordCursor {
	return &sliceCursor{records: s}
}

type sliceCursor struct {
	records []any
	pos     int
}

func (c *sliceCursor) Next() bool {
	if c.pos >= len(c.records) {
		return false
	}
	c.pos++
	return true
}

func (c *sliceCursor) Record() any { return c.records[c.pos-1] }

func (c *sliceCursor) Err() error { return nil }
