package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nao1215/mdcrawl/internal/config"
	"github.com/nao1215/mdcrawl/internal/crawler"
	"github.com/nao1215/mdcrawl/internal/database"
	"github.com/nao1215/mdcrawl/internal/fetch"
	"github.com/nao1215/mdcrawl/internal/filename"
	"github.com/nao1215/mdcrawl/internal/model"
	"github.com/nao1215/mdcrawl/internal/output"
	"github.com/nao1215/mdcrawl/internal/proxy"
)

// Scraper runs the scrape pipeline for one seed at a time. A Scraper may
// be shared by concurrent Scrape calls: the appender serializes writes and
// the browser limiter is shared, while every call gets its own crawl state.
type Scraper struct {
	cfg        *config.Config
	client     *proxy.Client
	limiter    *fetch.BrowserLimiter
	appender   *output.Appender
	journal    *database.Journal
	strategies StrategyBuilder
	logger     *slog.Logger
}

// ScraperOption configures a Scraper.
type ScraperOption func(*Scraper)

// WithScraperLogger sets the logger.
func WithScraperLogger(logger *slog.Logger) ScraperOption {
	return func(s *Scraper) {
		s.logger = logger
	}
}

// WithJournal records every run and page in j.
func WithJournal(j *database.Journal) ScraperOption {
	return func(s *Scraper) {
		s.journal = j
	}
}

// WithProxyClient sets the client the primary strategy gets its
// http.Client from. The default dials directly.
func WithProxyClient(c *proxy.Client) ScraperOption {
	return func(s *Scraper) {
		s.client = c
	}
}

// WithStrategyBuilder replaces strategy construction, e.g. with stubs.
func WithStrategyBuilder(b StrategyBuilder) ScraperOption {
	return func(s *Scraper) {
		s.strategies = b
	}
}

// NewScraper creates a Scraper for a validated cfg.
func NewScraper(cfg *config.Config, opts ...ScraperOption) (*Scraper, error) {
	s := &Scraper{
		cfg:      cfg,
		limiter:  fetch.NewBrowserLimiter(cfg.MaxBrowsers),
		appender: output.NewAppender(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.client == nil {
		client, err := proxy.NewClient(proxy.WithTimeout(cfg.HTTPTimeout))
		if err != nil {
			return nil, err
		}
		s.client = client
	}
	if s.strategies == nil {
		s.strategies = s.buildStrategies
	}
	return s, nil
}

// Scrape crawls seed and appends page texts to the seed's file in
// outputDir. Per-URL failures are collected in the report. The error is
// non-nil for an invalid seed, an output directory that cannot be created,
// or a run that was canceled or timed out; in the last case the partial
// report is returned too.
func (s *Scraper) Scrape(ctx context.Context, seed, outputDir string) (*model.RunReport, error) {
	seed = strings.TrimSpace(seed)
	if _, err := crawler.ParseSeed(seed); err != nil {
		return nil, err
	}

	site := s.cfg.SiteConfigs.ForURL(seed)
	cfg := s.cfg.Apply(site)
	if cfg.MaxDepth < 0 || cfg.MaxPages < 0 {
		return nil, fmt.Errorf("site configuration for %s: %w", seed, config.ErrInvalidDepth)
	}

	if cfg.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.RunTimeout)
		defer cancel()
	}

	run := &Run{
		Seed:       seed,
		OutputDir:  outputDir,
		OutputPath: filename.For(seed, outputDir),
		Config:     cfg,
		Site:       site,
	}

	finish := s.startJournal(ctx, run)

	p := New(WithLogger(s.logger))
	p.AddSteps(
		NewPrepareStep(s.logger),
		NewCrawlStep(s.strategies, s.appender, s.logger),
		NewAggregateStep(s.logger),
	)
	err := p.Execute(ctx, run)

	if run.Report != nil {
		finish(run.Report)
	} else {
		failed := model.NewRunReport(seed, run.OutputPath)
		failed.AddError(err)
		failed.Finish()
		finish(failed)
	}
	return run.Report, err
}

// startJournal opens a journal run and registers the page observer. The
// returned func stores the totals. A journal failure never fails the scrape.
func (s *Scraper) startJournal(ctx context.Context, run *Run) func(*model.RunReport) {
	if s.journal == nil {
		return func(*model.RunReport) {}
	}

	runID, err := s.journal.StartRun(ctx, run.Seed, run.OutputPath, time.Now())
	if err != nil {
		s.logger.Warn("journal unavailable for run", "seed", run.Seed, "error", err)
		return func(*model.RunReport) {}
	}
	run.Observe(s.journal.Observer(ctx, runID, s.logger))

	return func(report *model.RunReport) {
		if err := s.journal.FinishRun(context.WithoutCancel(ctx), runID, report); err != nil {
			s.logger.Warn("journal finish failed", "seed", run.Seed, "error", err)
		}
	}
}

// buildStrategies is the default StrategyBuilder.
func (s *Scraper) buildStrategies(run *Run) ([]fetch.Strategy, error) {
	cfg := run.Config
	headers := fetch.SiteHeaders(run.Site.Headers, run.Site.Cookie)
	strategies := make([]fetch.Strategy, 0, len(cfg.Strategies))
	for _, name := range cfg.Strategies {
		switch name {
		case fetch.StrategyHTTP:
			client := s.client.HTTPClientWithConfig(run.Site.Cookie, run.Site.Headers)
			strategies = append(strategies, fetch.NewHTTPStrategy(client,
				fetch.WithHTTPUserAgent(cfg.UserAgent),
				fetch.WithHTTPMaxBodySize(cfg.MaxBodySize),
				fetch.WithHTTPLogger(s.logger),
			))
		case fetch.StrategyChromedp:
			strategies = append(strategies, fetch.NewChromedpStrategy(
				fetch.WithChromedpTimeout(cfg.NavigationTimeout),
				fetch.WithChromedpUserAgent(cfg.UserAgent),
				fetch.WithChromedpLimiter(s.limiter),
				fetch.WithChromedpExecPath(cfg.BrowserPath),
				fetch.WithChromedpHeaders(headers),
				fetch.WithChromedpLogger(s.logger),
			))
		case fetch.StrategyRod:
			strategies = append(strategies, fetch.NewRodStrategy(
				fetch.WithRodTimeout(cfg.NavigationTimeout),
				fetch.WithRodLimiter(s.limiter),
				fetch.WithRodBinPath(cfg.BrowserPath),
				fetch.WithRodHeaders(headers),
				fetch.WithRodLogger(s.logger),
			))
		default:
			return nil, &config.UnknownStrategyError{Name: name}
		}
	}
	return strategies, nil
}
