// Package report renders crawl runs for people and tools.
//
// Writers turn a model.CrawlResult into:
//   - SimpleWriter: a plain text summary for the terminal
//   - MarkdownWriter: a Markdown document (--summary, dirscrape report)
//   - JSONWriter: structured JSON for other tools
//
// ProgressPrinter is the live single-line progress display shown on stderr
// while a crawl runs. It observes the crawler and never affects it.
package report
