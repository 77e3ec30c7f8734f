package pipeline

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/mdcrawl/internal/model"
)

// ScrapeFunc scrapes one seed. (*Scraper).Scrape bound to an output
// directory satisfies it.
type ScrapeFunc func(ctx context.Context, seed string) (*model.RunReport, error)

// Result is the outcome of one seed in a batch.
type Result struct {
	// Seed is the seed as given.
	Seed string

	// Report is the run report. It is nil when the run could not start.
	Report *model.RunReport

	// Err is the error returned for the seed.
	Err error
}

// BatchProcessor crawls several seeds concurrently. Seeds are independent:
// a failing seed never stops the others.
type BatchProcessor struct {
	scrape      ScrapeFunc
	concurrency int
	logger      *slog.Logger
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of seeds crawled at once.
// Default is 1.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a new BatchProcessor.
func NewBatchProcessor(scrape ScrapeFunc, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		scrape:      scrape,
		concurrency: 1,
	}
	for _, opt := range opts {
		opt(bp)
	}
	if bp.logger == nil {
		bp.logger = slog.Default()
	}
	return bp
}

// ProcessBatch crawls seeds and returns one Result per seed in input order.
// The error is non-nil only when ctx ended; seeds not started by then carry
// the context error in their Result.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, seeds []string) ([]Result, error) {
	results := make([]Result, len(seeds))
	err := bp.ProcessBatchWithCallback(ctx, seeds, func(r Result, index int) {
		results[index] = r
	})
	return results, err
}

// ProcessBatchWithCallback crawls seeds and calls callback as each one
// finishes. callback runs on the worker goroutine and must be safe for
// concurrent use. Each index is reported exactly once.
func (bp *BatchProcessor) ProcessBatchWithCallback(
	ctx context.Context,
	seeds []string,
	callback func(result Result, index int),
) error {
	bp.logger.Info("starting batch",
		"seeds", len(seeds),
		"concurrency", bp.concurrency,
	)
	startTime := time.Now()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, seed := range seeds {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				callback(Result{Seed: seed, Err: err}, i)
				return err
			}

			bp.logger.Info("crawling seed",
				"seed", seed,
				"index", i+1,
				"total", len(seeds),
			)

			report, err := bp.scrape(ctx, seed)
			callback(Result{Seed: seed, Report: report, Err: err}, i)

			if err != nil {
				bp.logger.Warn("seed failed", "seed", seed, "error", err)
				// Only the end of ctx stops the batch.
				if ctx.Err() != nil {
					return ctx.Err()
				}
				return nil
			}
			bp.logger.Info("seed completed", "seed", seed)
			return nil
		})
	}

	err := g.Wait()
	bp.logger.Info("batch complete",
		"seeds", len(seeds),
		"elapsed", time.Since(startTime),
	)
	return err
}
