// Package flatfile reads and writes the delimited text extracts and
// artifacts the pipeline works with. Columns are always resolved by
// header name, never by position, and numeric fields parse tolerantly.
package flatfile

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// Reader parses delimited text with a header row. The header is read
// once into a name->index table; rows are then resolved through that
// table rather than by per-row lookup.
type Reader struct {
	delimiter  rune
	lazyQuotes bool
	trimSpace  bool
	headerMap  map[string]int
	headers    []string
	currentRow int
	reader     *csv.Reader
}

// ReaderOption is a functional option for Reader configuration
type ReaderOption func(*Reader)

// WithDelimiter sets the field delimiter (default is tab)
func WithDelimiter(d rune) ReaderOption {
	return func(r *Reader) {
		r.delimiter = d
	}
}

// WithLazyQuotes enables lazy quote handling
func WithLazyQuotes(lazy bool) ReaderOption {
	return func(r *Reader) {
		r.lazyQuotes = lazy
	}
}

// WithTrimSpace enables trimming of leading/trailing spaces from fields
func WithTrimSpace(trim bool) ReaderOption {
	return func(r *Reader) {
		r.trimSpace = trim
	}
}

// NewReader creates a Reader over r, stripping a UTF-8 BOM if present.
func NewReader(r io.Reader, opts ...ReaderOption) (*Reader, error) {
	fr := &Reader{
		delimiter:  '\t',
		lazyQuotes: true,
		trimSpace:  true,
		headerMap:  make(map[string]int),
	}
	for _, opt := range opts {
		opt(fr)
	}

	buf := bufio.NewReader(r)
	head, err := buf.Peek(3)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if len(head) >= 3 && head[0] == 0xEF && head[1] == 0xBB && head[2] == 0xBF {
		_, _ = buf.Discard(3)
	}

	fr.reader = csv.NewReader(buf)
	fr.reader.Comma = fr.delimiter
	fr.reader.LazyQuotes = fr.lazyQuotes
	fr.reader.TrimLeadingSpace = false
	fr.reader.FieldsPerRecord = -1

	return fr, nil
}

// NewReaderFromBytes creates a Reader from a byte slice
func NewReaderFromBytes(data []byte, opts ...ReaderOption) (*Reader, error) {
	return NewReader(bytes.NewReader(data), opts...)
}

// ParseHeader reads the header row and builds the column index table.
func (r *Reader) ParseHeader() error {
	record, err := r.reader.Read()
	if err == io.EOF {
		return ErrMissingHeader
	}
	if err != nil {
		return fmt.Errorf("failed to read header: %w", err)
	}

	r.headers = make([]string, len(record))
	for i, h := range record {
		header := h
		if r.trimSpace {
			header = strings.TrimSpace(header)
		}
		r.headers[i] = header
		r.headerMap[header] = i
	}
	if len(r.headers) == 0 {
		return ErrMissingHeader
	}

	r.currentRow = 1
	return nil
}

// Headers returns the parsed header names
func (r *Reader) Headers() []string {
	return r.headers
}

// HasColumn checks if a header exists
func (r *Reader) HasColumn(name string) bool {
	_, ok := r.headerMap[name]
	return ok
}

// ColumnIndex returns the index of a column by header name
func (r *Reader) ColumnIndex(name string) (int, bool) {
	idx, ok := r.headerMap[name]
	return idx, ok
}

// RequireColumns checks that all named columns are present and returns
// the missing ones.
func (r *Reader) RequireColumns(names ...string) []string {
	var missing []string
	for _, n := range names {
		if !r.HasColumn(n) {
			missing = append(missing, n)
		}
	}
	return missing
}

// Row is one parsed data row with its source line number
type Row struct {
	LineNumber int
	fields     []string
	headerMap  map[string]int
	trimSpace  bool
}

// Get returns the value of a column by header name; absent columns and
// short rows yield the empty string.
func (row *Row) Get(header string) string {
	idx, ok := row.headerMap[header]
	if !ok || idx >= len(row.fields) {
		return ""
	}
	v := row.fields[idx]
	if row.trimSpace {
		v = strings.TrimSpace(v)
	}
	return v
}

// IsEmpty returns true if the row has no non-empty fields
func (row *Row) IsEmpty() bool {
	for _, v := range row.fields {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// ReadRow reads the next data row
func (r *Reader) ReadRow() (*Row, error) {
	record, err := r.reader.Read()
	if err == io.EOF {
		return nil, io.EOF
	}
	r.currentRow++
	if err != nil {
		return nil, fmt.Errorf("error reading row %d: %w", r.currentRow, err)
	}
	return &Row{
		LineNumber: r.currentRow,
		fields:     record,
		headerMap:  r.headerMap,
		trimSpace:  r.trimSpace,
	}, nil
}

// EachRow streams all data rows through fn, skipping blank lines. Rows
// the csv reader cannot parse are counted, never fatal.
func (r *Reader) EachRow(fn func(*Row)) (malformed int, err error) {
	for {
		row, err := r.ReadRow()
		if err == io.EOF {
			return malformed, nil
		}
		if err != nil {
			malformed++
			continue
		}
		if row.IsEmpty() {
			continue
		}
		fn(row)
	}
}
