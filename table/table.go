// Package table reads and writes delimited rows.
package table

import (
	"encoding/csv"
	"errors"
	"io"

	"github.com/klauspost/readahead"
)

// Reader reads rows from a comma-separated stream. Rows may have differing
// lengths.
type Reader struct {
	ra  io.ReadCloser
	csv *csv.Reader
}

// NewReader returns a reader prefetching from r in the background.
func NewReader(r io.Reader) *Reader {
	ra := readahead.NewReader(r)

	c := csv.NewReader(ra)
	c.FieldsPerRecord = -1
	c.LazyQuotes = true

	return &Reader{ra: ra, csv: c}
}

// Read returns the next row, or io.EOF at end of stream.
func (r *Reader) Read() ([]string, error) {
	row, err := r.csv.Read()
	if err != nil && !errors.Is(err, io.EOF) {
		e := ErrRead.Wrap(err)

		if pe := new(csv.ParseError); errors.As(err, &pe) {
			e = e.With(lineAttr(pe.Line))
		}

		return nil, e
	}

	return row, err
}

// Close stops the background reader. It does not close the underlying
// stream.
func (r *Reader) Close() error { return r.ra.Close() }

// Writer writes rows, quoting fields that contain a comma, quote or line
// break.
type Writer struct {
	csv  *csv.Writer
	rows int
}

// NewWriter returns a writer to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// Write writes one row.
func (w *Writer) Write(row []string) error {
	if err := w.csv.Write(row); err != nil {
		return ErrWrite.Wrap(err)
	}

	w.rows++

	return nil
}

// Rows returns the number of rows written.
func (w *Writer) Rows() int { return w.rows }

// Flush writes buffered rows to the underlying writer.
func (w *Writer) Flush() error {
	w.csv.Flush()

	if err := w.csv.Error(); err != nil {
		return ErrWrite.Wrap(err)
	}

	return nil
}
