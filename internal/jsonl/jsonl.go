// Package jsonl streams line-delimited JSON files as indexing records.
package jsonl

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/WiserTogether/sunburnt"
)

// 10 MiB line cap guards against unbounded scanner growth on corrupt input.
const maxLineSize = 10 << 20

// Compile-time check: FileSource implements sunburnt.RecordSource.
var _ sunburnt.RecordSource = (*FileSource)(nil)

// FileSource reads one JSON object per line and yields each as a
// string-keyed map record. Blank lines are skipped.
type FileSource struct {
	path string
}

// NewFileSource creates a source over the given JSONL file.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Records opens the file and returns a single-pass cursor over its lines.
func (s *FileSource) Records(ctx context.Context) sunburnt.RecordCursor {
	f, err := os.Open(s.path)
	if err != nil {
		return &cursor{err: fmt.Errorf("open %s: %w", s.path, err)}
	}

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64<<10), maxLineSize)

	return &cursor{ctx: ctx, file: f, scanner: sc}
}

type cursor struct {
	ctx     context.Context
	file    *os.File
	scanner *bufio.Scanner
	line    int
	record  map[string]any
	err     error
}

func (c *cursor) Next() bool {
	if c.err != nil || c.scanner == nil {
		return false
	}
	if err := c.ctx.Err(); err != nil {
		c.fail(err)
		return false
	}

	for c.scanner.Scan() {
		c.line++
		data := c.scanner.Bytes()
		if len(data) == 0 {
			continue
		}

		var record map[string]any
		if err := json.Unmarshal(data, &record); err != nil {
			c.fail(fmt.Errorf("line %d: %w", c.line, err))
			return false
		}
		c.record = record
		return true
	}

	c.fail(c.scanner.Err())
	return false
}

func (c *cursor) Record() any {
	return c.record
}

func (c *cursor) Err() error {
	return c.err
}

func (c *cursor) fail(err error) {
	c.err = err
	if c.file != nil {
		c.file.Close()
		c.file = nil
	}
	c.scanner = nil
}
