package report

import (
	"io"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/nao1215/dirscrape/internal/model"
)

// Writer renders a crawl result.
type Writer interface {
	// Write outputs the result and returns the number of bytes written.
	Write(result *model.CrawlResult) (int, error)
}

// MultiWriter writes to multiple Writers in order and stops on the first
// error.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the result to all configured Writers.
// Returns the total bytes written across all writers.
func (m *MultiWriter) Write(result *model.CrawlResult) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(result)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// WriteAll writes every non-nil result with w.
func WriteAll(w Writer, results []*model.CrawlResult) (int, error) {
	var total int
	for _, r := range results {
		if r == nil {
			continue
		}
		n, err := w.Write(r)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// Stats are the counters shown in every report.
type Stats struct {
	Visited  int           `json:"visited"`
	Pending  int           `json:"pending"`
	Records  int           `json:"records"`
	Failures int           `json:"failures"`
	Duration time.Duration `json:"duration_ns"`
}

// NewStats computes the counters of result.
func NewStats(result *model.CrawlResult) Stats {
	return Stats{
		Visited:  len(result.Visited),
		Pending:  len(result.Pending),
		Records:  len(result.Records),
		Failures: len(result.Failures),
		Duration: result.Duration(),
	}
}

// outcomeText describes an outcome for people.
func outcomeText(o model.Outcome) string {
	switch o {
	case model.OutcomeDrained:
		return "Complete (no pages left)"
	case model.OutcomeBudgetReached:
		return "Stopped at record limit"
	case model.OutcomeCancelled:
		return "Interrupted (partial results)"
	default:
		return "Unknown"
	}
}

// truncate shortens s to at most width terminal cells. Names and addresses
// are often accented or CJK text, so width is measured in cells, not bytes.
func truncate(s string, width int) string {
	return runewidth.Truncate(s, width, "...")
}

// orDash returns s, or "-" when s is empty.
func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
