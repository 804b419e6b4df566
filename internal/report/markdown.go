package report

import (
	"io"
	"strconv"
	"time"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/dirscrape/internal/model"
)

// Column widths of the records table, in terminal cells.
const (
	nameWidth    = 40
	addressWidth = 40
	contactWidth = 30
)

// MarkdownWriter outputs a run summary in Markdown.
type MarkdownWriter struct {
	baseWriter

	// runID is shown in the header when the run comes from the archive.
	runID int64
}

// MarkdownWriterOption configures a MarkdownWriter.
type MarkdownWriterOption func(*MarkdownWriter)

// WithRunID shows the archive run ID in the header.
func WithRunID(id int64) MarkdownWriterOption {
	return func(w *MarkdownWriter) {
		w.runID = id
	}
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer, opts ...MarkdownWriterOption) *MarkdownWriter {
	w := &MarkdownWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the run summary in Markdown.
func (w *MarkdownWriter) Write(result *model.CrawlResult) (int, error) {
	md := markdown.NewMarkdown(w.output)
	stats := NewStats(result)

	w.writeHeader(md, result, stats)
	w.writeAlert(md, result, stats)
	w.writeChart(md, stats)
	w.writeRecords(md, result)
	w.writeFailures(md, result)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, result *model.CrawlResult, stats Stats) {
	md.H1("Directory Crawl Report")
	md.PlainText("")

	rows := [][]string{
		{"Seed", "`" + result.Seed + "`"},
		{"Started", result.StartedAt.Format(timeLayout)},
		{"Duration", stats.Duration.Round(time.Millisecond).String()},
		{"Status", outcomeText(result.Outcome)},
		{"URLs Visited", strconv.Itoa(stats.Visited)},
		{"URLs Pending", strconv.Itoa(stats.Pending)},
		{"Records", strconv.Itoa(stats.Records)},
		{"Failures", strconv.Itoa(stats.Failures)},
	}
	if w.runID > 0 {
		rows = append([][]string{{"Run", strconv.FormatInt(w.runID, 10)}}, rows...)
	}

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, result *model.CrawlResult, stats Stats) {
	switch {
	case result.Outcome == model.OutcomeCancelled:
		md.Warningf("The crawl was interrupted. %d URL(s) were never fetched.", stats.Pending)
	case stats.Failures > 0:
		md.Importantf("%d URL(s) could not be fetched. See Failures below.", stats.Failures)
	case stats.Records == 0:
		md.Note("No detail card was found on any visited page.")
	default:
		md.Tip("All visited URLs were fetched successfully.")
	}
	md.PlainText("")
}

// writeChart shows how visited pages split between detail pages, other
// pages and failures.
func (w *MarkdownWriter) writeChart(md *markdown.Markdown, stats Stats) {
	if stats.Visited == 0 {
		return
	}

	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Visited Pages"),
		piechart.WithShowData(true),
	)

	// Every record comes from one successfully fetched page.
	other := stats.Visited - stats.Records - stats.Failures
	if stats.Records > 0 {
		chart.LabelAndIntValue("Detail pages", uint64(stats.Records))
	}
	if other > 0 {
		chart.LabelAndIntValue("Other pages", uint64(other))
	}
	if stats.Failures > 0 {
		chart.LabelAndIntValue("Failed", uint64(stats.Failures))
	}

	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

func (w *MarkdownWriter) writeRecords(md *markdown.Markdown, result *model.CrawlResult) {
	md.H2("Records")
	md.PlainText("")

	if len(result.Records) == 0 {
		md.PlainText("No records collected.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(result.Records))
	for i, r := range result.Records {
		rows[i] = []string{
			strconv.Itoa(i + 1),
			truncate(orDash(r.Name), nameWidth),
			truncate(orDash(r.Address), addressWidth),
			orDash(r.Phone),
			orDash(r.Email),
			truncate(orDash(r.ContactPerson), contactWidth),
		}
	}

	md.Table(markdown.TableSet{
		Header: append([]string{"#"}, model.CSVHeader...),
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeFailures(md *markdown.Markdown, result *model.CrawlResult) {
	if len(result.Failures) == 0 {
		return
	}

	md.H2("Failures")
	md.PlainText("")

	rows := make([][]string, len(result.Failures))
	for i, f := range result.Failures {
		rows[i] = []string{"`" + f.URL + "`", f.Error}
	}
	md.Table(markdown.TableSet{
		Header: []string{"URL", "Error"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [dirscrape](https://github.com/nao1215/dirscrape)*")
}
