package crawler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/dirscrape/internal/model"
)

// defaultConcurrency is the number of seeds crawled at once by default.
const defaultConcurrency = 1

// Batch crawls several seeds with independent engines.
type Batch struct {
	// engineFactory creates a fresh Engine for each seed.
	engineFactory EngineFactory

	// concurrency is the maximum number of engines running at once.
	concurrency int

	// logger is used for batch-level logging.
	logger *slog.Logger
}

// EngineFactory builds the engine that crawls seed. It lets every seed use
// the profile of its own site.
type EngineFactory func(seed string) *Engine

// BatchOption configures a Batch.
type BatchOption func(*Batch)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *Batch) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent engines.
// Non-positive values keep the default of 1.
func WithConcurrency(n int) BatchOption {
	return func(b *Batch) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatch creates a Batch. engineFactory is called once per seed.
func NewBatch(engineFactory EngineFactory, opts ...BatchOption) *Batch {
	b := &Batch{
		engineFactory: engineFactory,
		concurrency:   defaultConcurrency,
	}

	for _, opt := range opts {
		opt(b)
	}

	if b.logger == nil {
		b.logger = slog.Default()
	}

	return b
}

// Run crawls every seed and returns the results in seed order.
//
// A cancelled run keeps its partial result. Seeds that never started because
// ctx was cancelled first have a nil entry. The returned error is ctx.Err()
// if the batch was cancelled, nil otherwise.
func (b *Batch) Run(ctx context.Context, seeds []string) ([]*model.CrawlResult, error) {
	b.logger.Info("starting batch crawl",
		"seeds", len(seeds),
		"concurrency", b.concurrency,
	)

	startTime := time.Now()
	results := make([]*model.CrawlResult, len(seeds))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)

	for i, seed := range seeds {
		i, seed := i, seed
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}

			b.logger.Info("crawling seed",
				"seed", seed,
				"index", i+1,
				"total", len(seeds),
			)

			engine := b.engineFactory(seed)
			result, err := engine.Run(gctx, seed)

			mu.Lock()
			results[i] = result
			mu.Unlock()

			if err != nil {
				b.logger.Warn("crawl interrupted",
					"seed", seed,
					"state", engine.State(),
					"error", err,
				)
				// Other seeds keep going until ctx itself is cancelled.
				return nil
			}

			b.logger.Info("seed completed",
				"seed", seed,
				"state", engine.State(),
				"records", len(result.Records),
				"visited", len(result.Visited),
			)
			return nil
		})
	}

	_ = g.Wait() //nolint:errcheck // goroutines never return errors

	b.logger.Info("batch crawl complete",
		"seeds", len(seeds),
		"elapsed", time.Since(startTime),
	)

	return results, ctx.Err()
}
