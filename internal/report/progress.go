package report

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/mattn/go-runewidth"

	"github.com/nao1215/dirscrape/internal/crawler"
)

// ProgressPrinter keeps one status line up to date on a terminal.
//
// The line is rewritten in place with a carriage return and padded so a
// shorter line fully covers a longer previous one. It is only printed while
// URLs are pending. Update is safe for concurrent use, so one printer can
// observe every engine of a batch.
type ProgressPrinter struct {
	mu sync.Mutex

	out io.Writer

	// showSeed prefixes the line with the seed, for batch runs.
	showSeed bool

	// lastWidth is the display width of the previous line.
	lastWidth int
}

// ProgressOption configures a ProgressPrinter.
type ProgressOption func(*ProgressPrinter)

// WithSeedPrefix prefixes every line with the seed of the run.
func WithSeedPrefix(show bool) ProgressOption {
	return func(p *ProgressPrinter) {
		p.showSeed = show
	}
}

// NewProgressPrinter creates a printer writing to out (typically stderr).
func NewProgressPrinter(out io.Writer, opts ...ProgressOption) *ProgressPrinter {
	p := &ProgressPrinter{out: out}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// FormatProgress renders the status line for p without padding.
func FormatProgress(p crawler.Progress) string {
	secs := int64(p.Elapsed.Seconds())
	return fmt.Sprintf("Done %d/%d (%.2f%%) URLs, found %d enterprises on %dm / %ds",
		p.Visited,
		p.Known(),
		p.Fraction()*100,
		p.Records,
		secs/60,
		secs%60,
	)
}

// Update redraws the line. It matches crawler.ProgressFunc.
func (p *ProgressPrinter) Update(pr crawler.Progress) {
	if pr.Pending == 0 {
		return
	}

	line := FormatProgress(pr)
	if p.showSeed {
		line = "[" + pr.Seed + "] " + line
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	width := runewidth.StringWidth(line)
	pad := ""
	if p.lastWidth > width {
		pad = strings.Repeat(" ", p.lastWidth-width)
	}
	p.lastWidth = width

	_, _ = fmt.Fprintf(p.out, "%s%s\r", line, pad) //nolint:errcheck // best effort terminal output
}

// BudgetReached prints the notice shown when the record limit stopped the
// crawl, on a line of its own.
func (p *ProgressPrinter) BudgetReached(maxRecords uint) {
	p.mu.Lock()
	defer p.mu.Unlock()

	_, _ = fmt.Fprintf(p.out, "\nReached maximum number of records for scrapping: %d\n", maxRecords) //nolint:errcheck
	p.lastWidth = 0
}

// Finish moves past the status line if one was printed.
func (p *ProgressPrinter) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.lastWidth > 0 {
		_, _ = fmt.Fprintln(p.out) //nolint:errcheck
		p.lastWidth = 0
	}
}
