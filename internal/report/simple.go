package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/nao1215/dirscrape/internal/model"
)

// timeLayout formats times in reports.
const timeLayout = "2006-01-02 15:04:05 MST"

// SimpleWriter outputs a human-readable summary of a run.
type SimpleWriter struct {
	baseWriter

	// verbose lists every record and failure instead of only counting them.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables listing of records and failures.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{baseWriter: newBaseWriter(output)}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the summary.
func (w *SimpleWriter) Write(result *model.CrawlResult) (int, error) {
	var sb strings.Builder
	stats := NewStats(result)

	rule := strings.Repeat("-", 70)

	fmt.Fprintf(&sb, "%s\n", rule)
	fmt.Fprintf(&sb, "Seed:      %s\n", result.Seed)
	fmt.Fprintf(&sb, "Started:   %s\n", result.StartedAt.Format(timeLayout))
	fmt.Fprintf(&sb, "Duration:  %s\n", stats.Duration.Round(time.Millisecond))
	fmt.Fprintf(&sb, "Status:    %s\n", outcomeText(result.Outcome))
	fmt.Fprintf(&sb, "Visited:   %d URLs (%d pending)\n", stats.Visited, stats.Pending)
	fmt.Fprintf(&sb, "Records:   %d\n", stats.Records)
	fmt.Fprintf(&sb, "Failures:  %d\n", stats.Failures)

	if w.verbose {
		if len(result.Records) > 0 {
			fmt.Fprintf(&sb, "\nRecords:\n")
			for _, r := range result.Records {
				fmt.Fprintf(&sb, "  [+] %s\n", truncate(orDash(r.Name), 66))
			}
		}
		if len(result.Failures) > 0 {
			fmt.Fprintf(&sb, "\nFailures:\n")
			for _, f := range result.Failures {
				fmt.Fprintf(&sb, "  [!] %s\n      %s\n", f.URL, f.Error)
			}
		}
	}
	fmt.Fprintf(&sb, "%s\n", rule)

	return io.WriteString(w.output, sb.String())
}
