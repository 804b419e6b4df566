package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/dirscrape/internal/config"
	"github.com/nao1215/dirscrape/internal/crawler"
	"github.com/nao1215/dirscrape/internal/database"
	"github.com/nao1215/dirscrape/internal/extract"
	"github.com/nao1215/dirscrape/internal/fetch"
	securelog "github.com/nao1215/dirscrape/internal/log"
	"github.com/nao1215/dirscrape/internal/model"
	"github.com/nao1215/dirscrape/internal/report"
	"github.com/nao1215/dirscrape/internal/sink"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl",
		Short: "Crawl a directory site and write its records as CSV",
		Long: `Crawl starts from a seed URL, follows pagination and member detail links,
and extracts one record per member detail page.

Every URL is fetched at most once. A fetch that times out is retried up to
--retries-on-timeout attempts; any other failure skips the URL. Records are
written after the crawl ends, with every field double-quoted. When no record
was found the CSV target is not created at all.

Repeating --url crawls several sites as independent runs; a seed given twice
is crawled once. --max-records applies to each seed separately, so two seeds
with -m 1 can write two rows.

Examples:
  # Crawl a directory and print the CSV table
  dirscrape crawl -u "https://www.example.org/socios"

  # Write the first 100 records to a file
  dirscrape crawl -u "https://www.example.org/socios" -c members.csv -m 100

  # Crawl two directories, two at a time, and archive the runs
  dirscrape crawl -u https://a.example.org/ -u https://b.example.org/ --batch 2 --save

  # Route requests through a SOCKS5 proxy
  dirscrape crawl -u "https://www.example.org/socios" --proxy 127.0.0.1:9050

Site profiles (.dirscrape) adapt selectors and labels to other sites.
Run 'dirscrape init' to create one.`,
		Args: cobra.NoArgs,
		RunE: runCrawlCmd,
	}

	// Crawl target and output
	cmd.Flags().StringArrayP("url", "u", nil,
		"Seed URL to start crawling from (repeat for several sites)")
	cmd.Flags().StringP("csv", "c", config.DefaultCSVTarget,
		`CSV output file path, or "stdout"`)
	cmd.Flags().UintP("max-records", "m", config.DefaultMaxRecords,
		"Stop each seed after this many records (0 means unlimited)")

	// Fetch behavior
	cmd.Flags().UintP("timeout", "t", uint(config.DefaultTimeout/time.Second),
		"Timeout in seconds for each fetch attempt")
	cmd.Flags().UintP("retries-on-timeout", "r", config.DefaultRetriesOnTimeout,
		"Number of attempts for a URL whose fetches time out")
	cmd.Flags().String("user-agent", "",
		"User-Agent header (overrides the site profile)")
	cmd.Flags().String("proxy", "",
		"SOCKS5 proxy address (e.g., 127.0.0.1:9050)")
	cmd.Flags().Int64("max-body-size", config.DefaultMaxBodySize,
		"Maximum response body size in bytes")

	// Batch crawling
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of seeds crawled concurrently")

	// Configuration file
	cmd.Flags().String("config", "",
		"Site profile file path (default: .dirscrape in current or home directory)")

	// Reporting
	cmd.Flags().Bool("save", false,
		"Archive the run in the local database (see 'dirscrape history')")
	cmd.Flags().String("summary", "",
		"Write a Markdown run summary to the specified file")
	cmd.Flags().Bool("no-progress", false,
		"Do not print the progress line")
	cmd.Flags().Bool("log-json", false,
		"Write logs as JSON")

	return cmd
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cmd.ErrOrStderr(), cfg.Verbose, cfg.LogJSON)
	slog.SetDefault(logger)

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runCrawl(ctx, cfg, cmd.OutOrStdout(), cmd.ErrOrStderr(), logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from cobra command flags and loads the
// site profile file.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error

	seeds, err := cmd.Flags().GetStringArray("url")
	if err != nil {
		return nil, err
	}
	cfg.Seeds = uniqueSeeds(seeds)

	cfg.CSVTarget, err = cmd.Flags().GetString("csv")
	if err != nil {
		return nil, err
	}

	cfg.MaxRecords, err = cmd.Flags().GetUint("max-records")
	if err != nil {
		return nil, err
	}

	timeoutSecs, err := cmd.Flags().GetUint("timeout")
	if err != nil {
		return nil, err
	}
	cfg.Timeout = secondsToDuration(timeoutSecs)

	cfg.RetriesOnTimeout, err = cmd.Flags().GetUint("retries-on-timeout")
	if err != nil {
		return nil, err
	}

	cfg.UserAgent, err = cmd.Flags().GetString("user-agent")
	if err != nil {
		return nil, err
	}

	cfg.ProxyAddress, err = cmd.Flags().GetString("proxy")
	if err != nil {
		return nil, err
	}

	cfg.MaxBodySize, err = cmd.Flags().GetInt64("max-body-size")
	if err != nil {
		return nil, err
	}

	cfg.BatchSize, err = cmd.Flags().GetInt("batch")
	if err != nil {
		return nil, err
	}

	cfg.SaveToDB, err = cmd.Flags().GetBool("save")
	if err != nil {
		return nil, err
	}

	cfg.SummaryFile, err = cmd.Flags().GetString("summary")
	if err != nil {
		return nil, err
	}

	noProgress, err := cmd.Flags().GetBool("no-progress")
	if err != nil {
		return nil, err
	}
	cfg.ShowProgress = !noProgress

	cfg.LogJSON, err = cmd.Flags().GetBool("log-json")
	if err != nil {
		return nil, err
	}

	cfg.Verbose = getVerboseFlag(cmd)

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	cfg.SiteConfigs, err = loadSiteConfigs(cfg.ConfigFilePath)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// uniqueSeeds drops repeated seeds, keeping the first occurrence of each.
// Two engines on the same seed would fetch and write every page twice.
func uniqueSeeds(seeds []string) []string {
	seen := make(map[string]struct{}, len(seeds))
	unique := make([]string, 0, len(seeds))
	for _, seed := range seeds {
		if _, ok := seen[seed]; ok {
			continue
		}
		seen[seed] = struct{}{}
		unique = append(unique, seed)
	}
	return unique
}

// maxTimeoutSecs is the largest timeout a time.Duration can hold.
const maxTimeoutSecs = uint64(math.MaxInt64 / int64(time.Second))

// secondsToDuration converts a --timeout value, capping it instead of
// overflowing.
func secondsToDuration(secs uint) time.Duration {
	if uint64(secs) > maxTimeoutSecs {
		return time.Duration(maxTimeoutSecs) * time.Second
	}
	return time.Duration(secs) * time.Second
}

// loadSiteConfigs loads the site profile file.
// A missing file is only an error when its path was given explicitly;
// otherwise the built-in profile applies.
func loadSiteConfigs(explicitPath string) (*config.File, error) {
	configPath := config.FindConfigFile(explicitPath)
	if configPath == "" {
		if explicitPath != "" {
			return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, explicitPath)
		}
		return &config.File{Sites: make(map[string]config.SiteConfig)}, nil
	}

	siteConfigs, err := config.LoadConfigFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
	}
	return siteConfigs, nil
}

// setupLogger creates the sanitizing logger used by every component.
func setupLogger(w io.Writer, verbose, jsonFormat bool) *slog.Logger {
	if jsonFormat {
		return securelog.NewSecureJSONLogger(w, verbose)
	}
	return securelog.NewSecureLogger(w, verbose)
}

// runCrawl crawls every seed, then writes the CSV table, the archive entry
// and the summary.
//
// Records collected before a cancellation are still written; the
// cancellation is returned afterwards so the process exits non-zero.
func runCrawl(ctx context.Context, cfg *config.Config, stdout, stderr io.Writer, logger *slog.Logger) error {
	logger.Info("starting crawl",
		"seeds", cfg.Seeds,
		"maxRecords", cfg.MaxRecords,
		"timeout", cfg.Timeout,
		"retriesOnTimeout", cfg.RetriesOnTimeout,
		"batchSize", cfg.BatchSize,
	)

	client, err := fetch.NewHTTPClient(cfg.ProxyAddress)
	if err != nil {
		return fmt.Errorf("failed to create HTTP client: %w", err)
	}

	printer := report.NewProgressPrinter(stderr, report.WithSeedPrefix(len(cfg.Seeds) > 1))

	factory, err := newEngineFactory(cfg, client, printer, logger)
	if err != nil {
		return err
	}

	results, crawlErr := crawler.NewBatch(factory,
		crawler.WithConcurrency(cfg.BatchSize),
		crawler.WithBatchLogger(logger),
	).Run(ctx, cfg.Seeds)

	for _, result := range results {
		if result != nil && result.Outcome == model.OutcomeBudgetReached {
			printer.BudgetReached(cfg.MaxRecords)
		}
	}
	printer.Finish()

	if !anyRecords(results) {
		logger.Warn("no records found, CSV not written", "seeds", cfg.Seeds)
	}

	target := sink.NewTarget(cfg.CSVTarget, stdout)
	if err := sink.WriteRecords(target, model.MergeRecords(results)); err != nil {
		return fmt.Errorf("failed to write CSV to %s: %w", target, err)
	}

	if cfg.SaveToDB {
		// The crawl context may already be cancelled; the runs are still stored.
		if err := saveRuns(context.WithoutCancel(ctx), cfg.DBDir, results, stderr, logger); err != nil {
			return err
		}
	}

	if err := writeSummaries(cfg, results, stderr); err != nil {
		return err
	}

	if crawlErr != nil {
		return fmt.Errorf("crawl interrupted: %w", crawlErr)
	}
	return nil
}

// newEngineFactory prepares a fetcher and an extractor for every seed from
// the profile of its site. Invalid selectors are reported before any
// request is sent.
func newEngineFactory(cfg *config.Config, client *http.Client, printer *report.ProgressPrinter, logger *slog.Logger) (crawler.EngineFactory, error) {
	type seedSetup struct {
		fetcher   *fetch.Fetcher
		extractor *extract.Extractor
	}

	setups := make(map[string]seedSetup, len(cfg.Seeds))
	for _, seed := range cfg.Seeds {
		if _, ok := setups[seed]; ok {
			continue
		}

		site := cfg.SiteConfigs.SiteConfigForURL(seed)
		extractor, err := extract.New(site)
		if err != nil {
			return nil, fmt.Errorf("invalid site profile for %s: %w", seed, err)
		}

		userAgent := site.UserAgent
		if cfg.UserAgent != "" {
			userAgent = cfg.UserAgent
		}

		fetcher := fetch.New(client, cfg.Timeout, cfg.RetriesOnTimeout,
			fetch.WithUserAgent(userAgent),
			fetch.WithCookie(site.Cookie),
			fetch.WithHeaders(site.Headers),
			fetch.WithMaxBodySize(cfg.MaxBodySize),
			fetch.WithLogger(logger),
		)

		setups[seed] = seedSetup{fetcher: fetcher, extractor: extractor}
	}

	return func(seed string) *crawler.Engine {
		setup := setups[seed]
		opts := []crawler.Option{
			crawler.WithMaxRecords(cfg.MaxRecords),
			crawler.WithLogger(logger),
		}
		if cfg.ShowProgress {
			opts = append(opts, crawler.WithProgress(printer.Update))
		}
		return crawler.New(setup.fetcher, setup.extractor, opts...)
	}, nil
}

// saveRuns stores every finished run in the archive under dbDir.
func saveRuns(ctx context.Context, dbDir string, results []*model.CrawlResult, stderr io.Writer, logger *slog.Logger) error {
	archive, err := database.Open(dbDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer archive.Close()

	var errs []error
	for _, result := range results {
		if result == nil {
			continue
		}
		id, err := archive.SaveRun(ctx, result)
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to save run for %s: %w", result.Seed, err))
			continue
		}
		logger.Info("run saved to database", "id", id, "seed", result.Seed)
		fmt.Fprintf(stderr, "Saved run %d for %s\n", id, result.Seed)
	}
	return errors.Join(errs...)
}

// anyRecords reports whether some run collected a record.
func anyRecords(results []*model.CrawlResult) bool {
	for _, result := range results {
		if result != nil && result.HasRecords() {
			return true
		}
	}
	return false
}

// writeSummaries renders every run once to each enabled summary: the text
// summary on stderr with --verbose and the Markdown file of --summary.
func writeSummaries(cfg *config.Config, results []*model.CrawlResult, stderr io.Writer) error {
	write := func(writers ...report.Writer) error {
		if cfg.Verbose {
			writers = append([]report.Writer{report.NewSimpleWriter(stderr)}, writers...)
		}
		if len(writers) == 0 {
			return nil
		}
		_, err := report.WriteAll(report.NewMultiWriter(writers...), results)
		return err
	}

	if cfg.SummaryFile == "" {
		return write()
	}

	err := withOutput(cfg.SummaryFile, io.Discard, func(w io.Writer) error {
		return write(report.NewMarkdownWriter(w))
	})
	if err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	return nil
}
