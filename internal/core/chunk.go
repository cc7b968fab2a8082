package core

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Chunk is a bounded batch of source rows.
type Chunk struct {
	Index int      // 1-based chunk number
	Start int64    // 1-based number of the first data row in the source
	Rows  [][]string
}

// ChunkReader splits a CSV stream into chunks of at most size rows,
// preserving source order. The header row is consumed on construction.
type ChunkReader struct {
	r      *csv.Reader
	header []string
	size   int
	index  int
	read   int64
	done   bool
	na     map[string]struct{}
}

// NewChunkReader reads the header from r and prepares to deliver chunks of size rows.
// Returns ErrEmptySource if r contains no header.
func NewChunkReader(r io.Reader, size int) (*ChunkReader, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: chunk size must be positive, got %d", ErrInvalidJob, size)
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptySource
	}
	if err != nil {
		return nil, fmt.Errorf("invalid csv header: %w", err)
	}

	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	return &ChunkReader{r: cr, header: header, size: size}, nil
}

// Header returns the column names from the first line of the source.
func (c *ChunkReader) Header() []string {
	return c.header
}

// SetNAValues makes every data cell exactly equal to one of values read as
// empty, and therefore as NULL once converted.
func (c *ChunkReader) SetNAValues(values []string) {
	if len(values) == 0 {
		c.na = nil
		return
	}
	c.na = make(map[string]struct{}, len(values))
	for _, v := range values {
		c.na[v] = struct{}{}
	}
}

// Rows returns the number of data rows delivered so far.
func (c *ChunkReader) Rows() int64 {
	return c.read
}

// Next returns the next chunk. It returns io.EOF once the source is exhausted;
// a final short chunk is returned with a nil error.
func (c *ChunkReader) Next() (*Chunk, error) {
	if c.done {
		return nil, io.EOF
	}

	chunk := &Chunk{Index: c.index + 1, Start: c.read + 1}
	width := len(c.header)

	for len(chunk.Rows) < c.size {
		record, err := c.r.Read()
		if errors.Is(err, io.EOF) {
			c.done = true
			break
		}
		if err != nil {
			return nil, fmt.Errorf("invalid csv at row %d: %w", c.read+1, err)
		}

		c.read++
		switch {
		case len(record) > width:
			return nil, fmt.Errorf("invalid csv at row %d: expected %d fields, got %d", c.read, width, len(record))
		case len(record) < width:
			padded := make([]string, width)
			copy(padded, record)
			record = padded
		}
		if c.na != nil {
			for i, cell := range record {
				if _, ok := c.na[cell]; ok {
					record[i] = ""
				}
			}
		}
		chunk.Rows = append(chunk.Rows, record)
	}

	if len(chunk.Rows) == 0 {
		return nil, io.EOF
	}

	c.index++
	return chunk, nil
}

// ReadAll returns every remaining row as a single chunk.
// An empty chunk is returned for a header-only source.
func (c *ChunkReader) ReadAll() (*Chunk, error) {
	all := &Chunk{Index: c.index + 1, Start: c.read + 1}
	for {
		chunk, err := c.Next()
		if errors.Is(err, io.EOF) {
			return all, nil
		}
		if err != nil {
			return nil, err
		}
		all.Rows = append(all.Rows, chunk.Rows...)
	}
}

// ConvertRows coerces every cell of chunk to the type of its column.
func ConvertRows(chunk *Chunk, cols []Column) ([][]any, error) {
	out := make([][]any, len(chunk.Rows))
	for i, row := range chunk.Rows {
		values := make([]any, len(cols))
		for j, col := range cols {
			var raw string
			if j < len(row) {
				raw = row[j]
			}
			v, err := Convert(raw, col.Type)
			if err != nil {
				return nil, &CellError{Row: chunk.Start + int64(i), Column: col.Name, Value: raw, Err: err}
			}
			values[j] = v
		}
		out[i] = values
	}
	return out, nil
}
