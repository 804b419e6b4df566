package config

import (
	"net/url"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// DefaultTimeout is the per-attempt request timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultRetriesOnTimeout is how many attempts a URL gets when every
	// attempt times out. Other failures are never retried.
	DefaultRetriesOnTimeout = 3

	// DefaultMaxRecords of 0 means no record budget.
	DefaultMaxRecords = 0

	// DefaultCSVTarget writes the CSV table to standard output.
	DefaultCSVTarget = "stdout"

	// DefaultBatchSize crawls seeds one after another.
	DefaultBatchSize = 1

	// DefaultUserAgent is sent with every request.
	// The member directory rejects requests without a browser-like agent.
	DefaultUserAgent = "Mozilla 5.0"

	// DefaultMaxBodySize limits how much of a response body is read.
	DefaultMaxBodySize = 10 * 1024 * 1024 // 10MB

	// AppName is the application name used for XDG directory paths.
	AppName = "dirscrape"
)

// Config holds all options of a crawl invocation.
// It is populated from CLI flags and passed down explicitly rather than
// being kept in global state.
type Config struct {
	// Seeds are the starting URLs. Usually one; several seeds are crawled
	// as independent runs and their records concatenated in seed order.
	Seeds []string

	// CSVTarget is a file path or "stdout".
	CSVTarget string

	// MaxRecords stops a crawl once this many records were collected.
	// 0 means unlimited.
	MaxRecords uint

	// Timeout applies to each fetch attempt, including reading the body.
	Timeout time.Duration

	// RetriesOnTimeout is the number of attempts allowed when they time out.
	RetriesOnTimeout uint

	// UserAgent overrides the profile's User-Agent when non-empty.
	UserAgent string

	// ProxyAddress routes requests through a SOCKS5 proxy ("host:port").
	// Empty means direct connections.
	ProxyAddress string

	// MaxBodySize is the maximum response body size in bytes to read.
	// 0 means DefaultMaxBodySize.
	MaxBodySize int64

	// BatchSize is the number of seeds crawled concurrently.
	BatchSize int

	// ConfigFilePath is the site profile file path.
	// If empty, the default search order of FindConfigFile applies.
	ConfigFilePath string

	// SiteConfigs holds the loaded site profiles.
	SiteConfigs *File

	// SaveToDB archives finished runs in the SQLite database under DBDir.
	SaveToDB bool

	// DBDir is the directory holding the run archive.
	DBDir string

	// SummaryFile is a Markdown file to write a run summary to.
	// Empty disables the summary.
	SummaryFile string

	// ShowProgress prints the progress line on stderr while crawling.
	ShowProgress bool

	// Verbose enables debug logging.
	Verbose bool

	// LogJSON switches the log output to JSON.
	LogJSON bool
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		CSVTarget:        DefaultCSVTarget,
		MaxRecords:       DefaultMaxRecords,
		Timeout:          DefaultTimeout,
		RetriesOnTimeout: DefaultRetriesOnTimeout,
		MaxBodySize:      DefaultMaxBodySize,
		BatchSize:        DefaultBatchSize,
		DBDir:            XDGDataDir(),
		ShowProgress:     true,
	}
}

// XDGDataDir returns the XDG data directory for dirscrape.
// On Linux: ~/.local/share/dirscrape
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for dirscrape.
// On Linux: ~/.config/dirscrape
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid and returns the first
// problem found.
func (c *Config) Validate() error {
	if len(c.Seeds) == 0 {
		return ErrNoSeed
	}
	for _, seed := range c.Seeds {
		if !isAbsoluteHTTPURL(seed) {
			return ErrInvalidSeed
		}
	}

	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.RetriesOnTimeout == 0 {
		return ErrInvalidRetries
	}

	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}

	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	if c.CSVTarget == "" {
		return ErrEmptyCSVTarget
	}

	return nil
}

// isAbsoluteHTTPURL reports whether s parses as an http or https URL with a host.
func isAbsoluteHTTPURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
