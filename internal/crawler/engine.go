package crawler

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/nao1215/dirscrape/internal/extract"
	"github.com/nao1215/dirscrape/internal/model"
)

// Fetcher returns the body of a URL as text.
// *fetch.Fetcher implements it.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (string, error)
}

// State is the phase of an Engine run.
type State int32

const (
	// StateIdle means Run has not been called yet.
	StateIdle State = iota
	// StateRunning means the loop is popping and fetching URLs.
	StateRunning
	// StateDraining means the frontier became empty.
	StateDraining
	// StateBudgetReached means the record budget was collected.
	StateBudgetReached
	// StateCancelled means the context was cancelled.
	StateCancelled
	// StateDone means the result has been finalized.
	StateDone
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateDraining:
		return "draining"
	case StateBudgetReached:
		return "budget_reached"
	case StateCancelled:
		return "cancelled"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

// Engine crawls one directory sequentially.
type Engine struct {
	// fetcher downloads pages.
	fetcher Fetcher

	// extractor finds links and records in fetched pages.
	extractor *extract.Extractor

	// maxRecords stops the crawl once this many records were collected.
	// 0 means unlimited.
	maxRecords uint

	// progress is called after every iteration. May be nil.
	progress ProgressFunc

	// logger receives fetch failures.
	logger *slog.Logger

	// state is the current State, readable from other goroutines.
	state atomic.Int32
}

// Option configures an Engine.
type Option func(*Engine)

// WithMaxRecords sets the record budget. 0 means unlimited.
func WithMaxRecords(n uint) Option {
	return func(e *Engine) {
		e.maxRecords = n
	}
}

// WithProgress sets the progress observer.
func WithProgress(fn ProgressFunc) Option {
	return func(e *Engine) {
		e.progress = fn
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// New creates an Engine. A nil extractor uses the built-in site profile.
func New(fetcher Fetcher, extractor *extract.Extractor, opts ...Option) *Engine {
	if extractor == nil {
		extractor = extract.Default()
	}

	e := &Engine{
		fetcher:   fetcher,
		extractor: extractor,
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.logger == nil {
		e.logger = slog.Default()
	}

	return e
}

// State returns the phase of the current or last run.
func (e *Engine) State() State {
	return State(e.state.Load())
}

func (e *Engine) setState(s State) {
	e.state.Store(int32(s))
}

// Run crawls from seed until the frontier is empty, the record budget is
// reached or ctx is cancelled.
//
// Per-URL failures never end the run; they are logged and kept in the
// result. The only error returned is ctx.Err(), together with the partial
// result collected until then.
func (e *Engine) Run(ctx context.Context, seed string) (*model.CrawlResult, error) {
	result := model.NewCrawlResult(seed)
	result.StartedAt = time.Now()
	frontier := NewFrontier(seed)

	e.setState(StateRunning)

	var runErr error
	for {
		if err := ctx.Err(); err != nil {
			e.setState(StateCancelled)
			result.Outcome = model.OutcomeCancelled
			runErr = err
			break
		}

		u, ok := frontier.Pop()
		if !ok {
			e.setState(StateDraining)
			result.Outcome = model.OutcomeDrained
			break
		}

		if !e.visit(ctx, u, frontier, result) {
			// Interrupted mid-fetch: the URL was not visited.
			frontier.Unpop()
			continue
		}
		result.Visited = append(result.Visited, u)

		if e.progress != nil {
			e.progress(Progress{
				Seed:    seed,
				URL:     u,
				Visited: frontier.Visited(),
				Pending: frontier.Len(),
				Records: len(result.Records),
				Elapsed: time.Since(result.StartedAt),
			})
		}

		if e.maxRecords > 0 && uint(len(result.Records)) >= e.maxRecords {
			e.setState(StateBudgetReached)
			result.Outcome = model.OutcomeBudgetReached
			e.logger.Info("record budget reached",
				"seed", seed,
				"max_records", e.maxRecords,
			)
			break
		}
	}

	result.Pending = frontier.Pending()
	result.FinishedAt = time.Now()
	e.setState(StateDone)

	return result, runErr
}

// visit fetches u and folds what it yields into the frontier and result.
// It returns false only when ctx was cancelled during the fetch.
func (e *Engine) visit(ctx context.Context, u string, frontier *Frontier, result *model.CrawlResult) bool {
	body, err := e.fetcher.Fetch(ctx, u)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		e.fail(u, err, result)
		return true
	}

	page, err := e.extractor.Extract(body)
	if err != nil {
		e.fail(u, err, result)
		return true
	}

	for _, link := range page.Links() {
		frontier.Push(link)
	}

	if page.HasRecord {
		if page.Record.IsZero() {
			// Still written as a row of empty fields.
			e.logger.Warn("detail card without known labels", "url", u)
		}
		result.Records = append(result.Records, page.Record)
	}

	return true
}

func (e *Engine) fail(u string, err error, result *model.CrawlResult) {
	e.logger.Warn("failed to process page",
		"url", u,
		"error", err,
	)
	result.Failures = append(result.Failures, model.Failure{URL: u, Error: err.Error()})
}
