package flatfile

import (
	"bufio"
	"io"
	"strings"
)

// Writer emits delimited text with RFC4180-style quoting: fields
// containing the delimiter, a quote, or a line break are wrapped in
// double quotes with internal quotes doubled. Columns marked as text
// columns are always quoted so spreadsheet-style consumers keep leading
// zeros instead of coercing codes to numbers.
type Writer struct {
	w           *bufio.Writer
	delimiter   rune
	textColumns map[int]bool
}

// WriterOption is a functional option for Writer configuration
type WriterOption func(*Writer)

// WithWriteDelimiter sets the output field delimiter (default is tab)
func WithWriteDelimiter(d rune) WriterOption {
	return func(w *Writer) {
		w.delimiter = d
	}
}

// WithTextColumns marks column indices whose values are always quoted
// to force literal-text storage.
func WithTextColumns(cols ...int) WriterOption {
	return func(w *Writer) {
		for _, c := range cols {
			w.textColumns[c] = true
		}
	}
}

// NewWriter creates a Writer over w
func NewWriter(w io.Writer, opts ...WriterOption) *Writer {
	fw := &Writer{
		w:           bufio.NewWriter(w),
		delimiter:   '\t',
		textColumns: make(map[int]bool),
	}
	for _, opt := range opts {
		opt(fw)
	}
	return fw
}

// Write emits one record
func (w *Writer) Write(record []string) error {
	for i, field := range record {
		if i > 0 {
			if _, err := w.w.WriteRune(w.delimiter); err != nil {
				return err
			}
		}
		if err := w.writeField(field, w.textColumns[i]); err != nil {
			return err
		}
	}
	_, err := w.w.WriteString("\r\n")
	return err
}

// WriteAll emits all records and flushes
func (w *Writer) WriteAll(records [][]string) error {
	for _, rec := range records {
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return w.Flush()
}

// Flush writes buffered output to the underlying writer
func (w *Writer) Flush() error {
	return w.w.Flush()
}

func (w *Writer) writeField(field string, forceQuote bool) error {
	if !forceQuote && !w.needsQuoting(field) {
		_, err := w.w.WriteString(field)
		return err
	}
	if err := w.w.WriteByte('"'); err != nil {
		return err
	}
	if _, err := w.w.WriteString(strings.ReplaceAll(field, `"`, `""`)); err != nil {
		return err
	}
	return w.w.WriteByte('"')
}

func (w *Writer) needsQuoting(field string) bool {
	return strings.ContainsRune(field, w.delimiter) ||
		strings.ContainsAny(field, "\"\r\n")
}
