// Package main provides the entry point for the dirscrape CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for dirscrape.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dirscrape",
		Short: "Crawl a member directory website into CSV",
		Long: `dirscrape crawls a paginated member directory website, starting from a
seed URL, and extracts one contact record per member detail page.

Each record holds the business name, address, phone, email and contact
person. Records are written as a CSV table in discovery order, either to
standard output or to a file.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewCrawlCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewReportCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
