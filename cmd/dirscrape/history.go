package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/nao1215/dirscrape/internal/config"
	"github.com/nao1215/dirscrape/internal/database"
)

// historyDateLayout formats run start times in the history listing.
const historyDateLayout = "2006-01-02 15:04:05"

// seedColumnWidth is the display width of the seed column.
const seedColumnWidth = 40

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [seed-url]",
		Short: "List archived crawl runs",
		Long: `History lists the runs stored with 'dirscrape crawl --save', newest first.

Pass a seed URL to list only the runs of that seed.

Examples:
  # List the latest runs
  dirscrape history

  # List every run of one seed
  dirscrape history --limit 0 "https://www.example.org/socios"

  # Remove a run from the archive
  dirscrape history --delete 3`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "n", 20,
		"Maximum number of runs to list (0 lists all)")
	cmd.Flags().Int64("delete", 0,
		"Delete the run with this ID instead of listing")
	cmd.Flags().String("db-dir", "",
		"Directory holding the run archive (default: XDG data directory)")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}

	deleteID, err := cmd.Flags().GetInt64("delete")
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

	if deleteID > 0 {
		if err := archive.DeleteRun(ctx, deleteID); err != nil {
			return fmt.Errorf("failed to delete run %d: %w", deleteID, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted run %d\n", deleteID)
		return nil
	}

	var seed string
	if len(args) > 0 {
		seed = args[0]
	}
	return listRuns(ctx, cmd.OutOrStdout(), archive, seed, limit)
}

// openArchive opens the archive in --db-dir or the XDG data directory.
func openArchive(cmd *cobra.Command) (*database.Archive, error) {
	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return nil, err
	}
	if dbDir == "" {
		dbDir = config.XDGDataDir()
	}

	archive, err := database.Open(dbDir, database.DefaultOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return archive, nil
}

// listRuns prints the archived runs as a table.
func listRuns(ctx context.Context, out io.Writer, archive *database.Archive, seed string, limit int) error {
	runs, err := archive.ListRuns(ctx, seed, limit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if len(runs) == 0 {
		if seed != "" {
			fmt.Fprintf(out, "No runs found for %s\n", seed)
		} else {
			fmt.Fprintln(out, "No runs found")
		}
		fmt.Fprintln(out, "\nUse 'dirscrape crawl --save' to archive a run.")
		return nil
	}

	fmt.Fprintf(out, "%d runs:\n\n", len(runs))
	fmt.Fprintf(out, "  %-6s  %-19s  %s  %-14s  %8s  %8s  %8s\n",
		"ID", "Started", runewidth.FillRight("Seed", seedColumnWidth), "Outcome", "Visited", "Records", "Duration")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 6+2+19+2+seedColumnWidth+2+14+3*10))

	for _, run := range runs {
		seedCell := runewidth.FillRight(runewidth.Truncate(run.Seed, seedColumnWidth, "..."), seedColumnWidth)
		fmt.Fprintf(out, "  %-6d  %-19s  %s  %-14s  %8d  %8d  %8s\n",
			run.ID,
			run.StartedAt.Local().Format(historyDateLayout),
			seedCell,
			run.Outcome,
			run.Visited,
			run.Records,
			run.Duration().Round(time.Second),
		)
	}

	fmt.Fprintln(out, "\nUse 'dirscrape report <id>' to show a run.")
	return nil
}
