package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nao1215/mdcrawl/internal/crawler"
	"github.com/nao1215/mdcrawl/internal/fetch"
	"github.com/nao1215/mdcrawl/internal/filename"
	"github.com/nao1215/mdcrawl/internal/output"
)

// PrepareStep creates the output directory and, for fresh runs, empties
// the output file. Failure here is fatal.
type PrepareStep struct {
	logger *slog.Logger
}

// NewPrepareStep creates a PrepareStep.
func NewPrepareStep(logger *slog.Logger) *PrepareStep {
	return &PrepareStep{logger: logger}
}

// Name implements Step.
func (s *PrepareStep) Name() string { return "prepare" }

// Do implements Step.
func (s *PrepareStep) Do(_ context.Context, run *Run) error {
	if err := output.Prepare(run.OutputDir); err != nil {
		return err
	}
	if run.Config.Fresh {
		if err := output.Truncate(run.OutputPath); err != nil {
			return err
		}
		s.logger.Info("output truncated", "path", run.OutputPath)
	}
	return nil
}

// StrategyBuilder returns the fetch strategies for a run, in priority order.
type StrategyBuilder func(run *Run) ([]fetch.Strategy, error)

// CrawlStep crawls the seed and stores the report on the run.
type CrawlStep struct {
	strategies StrategyBuilder
	appender   crawler.Appender
	logger     *slog.Logger
}

// NewCrawlStep creates a CrawlStep.
func NewCrawlStep(strategies StrategyBuilder, appender crawler.Appender, logger *slog.Logger) *CrawlStep {
	return &CrawlStep{strategies: strategies, appender: appender, logger: logger}
}

// Name implements Step.
func (s *CrawlStep) Name() string { return "crawl" }

// Do implements Step. On cancellation the partial report is kept on the run
// and the context error is returned.
func (s *CrawlStep) Do(ctx context.Context, run *Run) error {
	strategies, err := s.strategies(run)
	if err != nil {
		return fmt.Errorf("build fetch strategies: %w", err)
	}
	order, err := crawler.ParseOrder(run.Config.FrontierOrder)
	if err != nil {
		return err
	}

	chain := fetch.NewChain(strategies, fetch.WithChainLogger(s.logger))
	spider := crawler.NewSpider(chain, s.appender,
		crawler.WithMaxDepth(run.Config.MaxDepth),
		crawler.WithMaxPages(run.Config.MaxPages),
		crawler.WithFrontierOrder(order),
		crawler.WithConcurrency(run.Config.Concurrency),
		crawler.WithIgnorePatterns(run.Site.IgnorePatterns),
		crawler.WithFollowPatterns(run.Site.FollowPatterns),
		crawler.WithLogger(s.logger),
		crawler.WithObserver(run.observer()),
	)

	report, err := spider.Crawl(ctx, run.Seed, run.OutputPath)
	if report != nil {
		run.Report = report
	}
	return err
}

// AggregateStep writes the whole aggregate text of the run to its own
// file, replacing any previous content. It does nothing without
// AggregateDir. A write failure is recorded in the report, not returned.
type AggregateStep struct {
	logger *slog.Logger
}

// NewAggregateStep creates an AggregateStep.
func NewAggregateStep(logger *slog.Logger) *AggregateStep {
	return &AggregateStep{logger: logger}
}

// Name implements Step.
func (s *AggregateStep) Name() string { return "aggregate" }

// Do implements Step.
func (s *AggregateStep) Do(_ context.Context, run *Run) error {
	dir := run.Config.AggregateDir
	if dir == "" || run.Report == nil {
		return nil
	}
	path := filename.For(run.Seed, dir)
	if err := output.WriteFile(run.Report.Text, path); err != nil {
		s.logger.Warn("aggregate write failed", "path", path, "error", err)
		run.Report.AddError(err)
		return nil
	}
	s.logger.Info("aggregate written", "path", path, "bytes", len(run.Report.Text))
	return nil
}
