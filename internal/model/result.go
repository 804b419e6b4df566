package model

import "time"

// Outcome describes why a crawl loop stopped.
type Outcome string

const (
	// OutcomeDrained means the frontier became empty.
	OutcomeDrained Outcome = "drained"

	// OutcomeBudgetReached means the configured record budget was collected.
	// The frontier may still contain URLs; they are never fetched.
	OutcomeBudgetReached Outcome = "budget_reached"

	// OutcomeCancelled means the caller's context was cancelled mid-crawl.
	OutcomeCancelled Outcome = "cancelled"
)

// String returns the outcome as a plain string.
func (o Outcome) String() string {
	return string(o)
}

// Failure records a URL whose fetch failed.
// The error is kept as text so results can be archived and rendered.
type Failure struct {
	// URL is the URL that failed.
	URL string `json:"url"`

	// Error is the error message returned by the fetcher.
	Error string `json:"error"`
}

// CrawlResult is everything one crawl run produced.
// It is created by the crawl engine and handed to the sink, the run archive
// and the report writers once the loop has ended.
type CrawlResult struct {
	// Seed is the starting URL.
	Seed string `json:"seed"`

	// StartedAt is when the crawl loop began.
	StartedAt time.Time `json:"started_at"`

	// FinishedAt is when the crawl loop ended.
	FinishedAt time.Time `json:"finished_at"`

	// Outcome tells why the loop stopped.
	Outcome Outcome `json:"outcome"`

	// Visited lists every dequeued URL in the order it was processed,
	// successful or not.
	Visited []string `json:"visited"`

	// Pending lists the URLs still in the frontier when the loop stopped.
	// Empty unless the budget was reached or the crawl was cancelled.
	Pending []string `json:"pending,omitempty"`

	// Records holds the extracted records in discovery order.
	Records []Record `json:"records"`

	// Failures holds the URLs whose fetch failed.
	Failures []Failure `json:"failures,omitempty"`
}

// NewCrawlResult creates an empty result for the given seed.
func NewCrawlResult(seed string) *CrawlResult {
	return &CrawlResult{
		Seed:     seed,
		Visited:  make([]string, 0),
		Records:  make([]Record, 0),
		Failures: make([]Failure, 0),
	}
}

// Duration returns how long the crawl ran.
// Zero if the crawl has not finished.
func (r *CrawlResult) Duration() time.Duration {
	if r.FinishedAt.IsZero() || r.StartedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// HasRecords reports whether at least one record was collected.
func (r *CrawlResult) HasRecords() bool {
	return len(r.Records) > 0
}

// MergeRecords concatenates the records of several results in the given order.
// Used when more than one seed was crawled in a single invocation.
func MergeRecords(results []*CrawlResult) []Record {
	records := make([]Record, 0)
	for _, r := range results {
		if r == nil {
			continue
		}
		records = append(records, r.Records...)
	}
	return records
}
