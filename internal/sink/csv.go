package sink

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/dirscrape/internal/model"
)

// Opener provides the writer records are written to.
// *Target implements it.
type Opener interface {
	Open() (io.WriteCloser, error)
}

// Writer writes always-quoted CSV rows.
type Writer struct {
	w *bufio.Writer
}

// NewWriter creates a Writer on w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// WriteHeader writes the fixed column labels.
func (w *Writer) WriteHeader() error {
	return w.writeRow(model.CSVHeader)
}

// Write writes one record as a row.
func (w *Writer) Write(rec model.Record) error {
	return w.writeRow(rec.Fields())
}

// Flush writes any buffered data to the underlying writer.
func (w *Writer) Flush() error {
	return w.w.Flush()
}

func (w *Writer) writeRow(fields []string) error {
	for i, field := range fields {
		if i > 0 {
			if err := w.w.WriteByte(','); err != nil {
				return err
			}
		}
		if _, err := w.w.WriteString(quote(field)); err != nil {
			return err
		}
	}
	return w.w.WriteByte('\n')
}

// quote encloses field in double quotes, doubling embedded quotes.
func quote(field string) string {
	return `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
}

// WriteRecords writes the header and one row per record to the writer
// opened from dst. With no records dst is never opened.
func WriteRecords(dst Opener, records []model.Record) (err error) {
	if len(records) == 0 {
		return nil
	}

	out, err := dst.Open()
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close CSV output: %w", cerr)
		}
	}()

	w := NewWriter(out)
	if err := w.WriteHeader(); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for i, rec := range records {
		if err := w.Write(rec); err != nil {
			return fmt.Errorf("failed to write CSV record %d: %w", i+1, err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to write CSV output: %w", err)
	}
	return nil
}
