// Package parquet streams parquet files as indexing records. Rows are
// decoded generically into string-keyed maps, so the file schema does not
// need to be known at compile time.
package parquet

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/parquet-go/parquet-go"

	"github.com/WiserTogether/sunburnt"
)

const rowBufferSize = 1000

// Compile-time check: FileSource implements sunburnt.RecordSource.
var _ sunburnt.RecordSource = (*FileSource)(nil)

// FileSource reads one parquet file and yields each row as a string-keyed
// map record. Repeated leaf values of a column collect into a slice.
type FileSource struct {
	path string
}

// NewFileSource creates a source over the given parquet file.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Records opens the file and returns a single-pass cursor over its rows.
func (s *FileSource) Records(ctx context.Context) sunburnt.RecordCursor {
	f, err := os.Open(filepath.Clean(s.path))
	if err != nil {
		return &cursor{err: fmt.Errorf("open %s: %w", s.path, err)}
	}

	stat, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return &cursor{err: fmt.Errorf("stat %s: %w", s.path, err)}
	}

	pf, err := parquet.OpenFile(f, stat.Size())
	if err != nil {
		_ = f.Close()
		return &cursor{err: fmt.Errorf("open parquet %s: %w", s.path, err)}
	}

	// Leaf column index -> top-level field name.
	names := make([]string, len(pf.Schema().Columns()))
	for i, path := range pf.Schema().Columns() {
		if len(path) > 0 {
			names[i] = path[0]
		}
	}

	return &cursor{
		ctx:     ctx,
		file:    f,
		groups:  pf.RowGroups(),
		names:   names,
		buf:     make([]parquet.Row, rowBufferSize),
		bufUsed: 0,
		bufPos:  0,
	}
}

// rowReader is the slice of the row group reader surface the cursor needs.
type rowReader interface {
	ReadRows([]parquet.Row) (int, error)
}

type cursor struct {
	ctx    context.Context
	file   *os.File
	groups []parquet.RowGroup
	reader rowReader
	names  []string

	buf     []parquet.Row
	bufUsed int
	bufPos  int

	record map[string]any
	err    error
}

func (c *cursor) Next() bool {
	if c.err != nil || c.file == nil {
		return false
	}
	if err := c.ctx.Err(); err != nil {
		c.fail(err)
		return false
	}

	row, ok := c.nextRow()
	if !ok {
		return false
	}
	c.record = decodeRow(row, c.names)
	return true
}

func (c *cursor) Record() any {
	return c.record
}

func (c *cursor) Err() error {
	return c.err
}

// nextRow pulls the next buffered row, refilling from the current row group
// and advancing through row groups as each drains.
func (c *cursor) nextRow() (parquet.Row, bool) {
	for {
		if c.bufPos < c.bufUsed {
			row := c.buf[c.bufPos]
			c.bufPos++
			return row, true
		}

		if c.reader == nil {
			if len(c.groups) == 0 {
				c.fail(nil)
				return nil, false
			}
			c.reader = parquet.NewRowGroupReader(c.groups[0])
			c.groups = c.groups[1:]
		}

		n, err := c.reader.ReadRows(c.buf)
		c.bufUsed = n
		c.bufPos = 0
		if err != nil {
			if !errors.Is(err, io.EOF) {
				c.fail(fmt.Errorf("read rows: %w", err))
				return nil, false
			}
			c.reader = nil
			if n == 0 {
				continue
			}
		}
		if n == 0 && c.reader != nil {
			c.reader = nil
		}
	}
}

func (c *cursor) fail(err error) {
	c.err = err
	if c.file != nil {
		_ = c.file.Close()
		c.file = nil
	}
}

// decodeRow converts a generic parquet row into a map keyed by top-level
// field name. A column yielding several non-null leaf values becomes a slice.
func decodeRow(row parquet.Row, names []string) map[string]any {
	counts := make(map[int]int)
	for _, v := range row {
		if !v.IsNull() {
			counts[v.Column()]++
		}
	}

	record := make(map[string]any)
	for _, v := range row {
		if v.IsNull() {
			continue
		}
		col := v.Column()
		if col < 0 || col >= len(names) || names[col] == "" {
			continue
		}
		name := names[col]
		value := decodeValue(v)

		if counts[col] > 1 {
			existing, _ := record[name].([]any)
			record[name] = append(existing, value)
			continue
		}
		record[name] = value
	}
	return record
}

func decodeValue(v parquet.Value) any {
	switch v.Kind() {
	case parquet.Boolean:
		return v.Boolean()
	case parquet.Int32:
		return int64(v.Int32())
	case parquet.Int64:
		return v.Int64()
	case parquet.Float:
		return float64(v.Float())
	case parquet.Double:
		return v.Double()
	default:
		return v.String()
	}
}
