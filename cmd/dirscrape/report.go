package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nao1215/dirscrape/internal/report"
	"github.com/nao1215/dirscrape/internal/sink"
)

// Report output formats.
const (
	formatText     = "text"
	formatMarkdown = "markdown"
	formatJSON     = "json"
	formatCSV      = "csv"
)

// errUnknownFormat is returned for an unsupported --format value.
var errUnknownFormat = errors.New("unknown report format (use text, markdown, json or csv)")

// NewReportCmd creates the report command.
func NewReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report <run-id>",
		Short: "Show an archived crawl run",
		Long: `Report renders a run stored with 'dirscrape crawl --save'.

Formats:
  text      counters and outcome (add --verbose to list records and failures)
  markdown  summary with tables of records and failures
  json      the full run including visited and pending URLs
  csv       the records of the run, exactly as crawl writes them

Examples:
  # Show run 3
  dirscrape report 3

  # Write a Markdown report to a file
  dirscrape report 3 -f markdown -o report.md

  # Export the records of run 3 again
  dirscrape report 3 -f csv -o members.csv`,
		Args: cobra.ExactArgs(1),
		RunE: runReportCmd,
	}

	cmd.Flags().StringP("format", "f", formatText,
		"Output format: text, markdown, json or csv")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")
	cmd.Flags().String("db-dir", "",
		"Directory holding the run archive (default: XDG data directory)")

	return cmd
}

// runReportCmd executes the report command.
func runReportCmd(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return fmt.Errorf("invalid run ID %q: must be a positive integer", args[0])
	}

	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	format = strings.ToLower(format)
	if !isKnownFormat(format) {
		return fmt.Errorf("%w: %q", errUnknownFormat, format)
	}

	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	archive, err := openArchive(cmd)
	if err != nil {
		return err
	}
	defer archive.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	_, result, err := archive.GetRun(ctx, id)
	if err != nil {
		return err
	}

	if format == formatCSV {
		target := outputPath
		if target == "" {
			target = sink.Stdout
		}
		return sink.WriteRecords(sink.NewTarget(target, cmd.OutOrStdout()), result.Records)
	}

	return withOutput(outputPath, cmd.OutOrStdout(), func(w io.Writer) error {
		_, err := newReportWriter(w, format, id, getVerboseFlag(cmd)).Write(result)
		return err
	})
}

func isKnownFormat(format string) bool {
	switch format {
	case formatText, formatMarkdown, formatJSON, formatCSV:
		return true
	default:
		return false
	}
}

// newReportWriter returns the writer for format. format must be known.
func newReportWriter(w io.Writer, format string, runID int64, verbose bool) report.Writer {
	switch format {
	case formatMarkdown:
		return report.NewMarkdownWriter(w, report.WithRunID(runID))
	case formatJSON:
		return report.NewJSONWriter(w, report.WithPrettyPrint(), report.WithVersion(getVersion()))
	default:
		return report.NewSimpleWriter(w, report.WithVerbose(verbose))
	}
}

// withOutput calls write with the file at path, or with stdout when path is
// empty.
func withOutput(path string, stdout io.Writer, write func(io.Writer) error) (err error) {
	if path == "" {
		return write(stdout)
	}

	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	// Reports contain contact data, keep them private to the owner.
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600) //nolint:gosec // User-provided output path is intentional
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close output file: %w", cerr)
		}
	}()

	return write(f)
}
