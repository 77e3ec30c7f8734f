package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/mdcrawl/internal/config"
	"github.com/nao1215/mdcrawl/internal/database"
	"github.com/nao1215/mdcrawl/internal/model"
	"github.com/nao1215/mdcrawl/internal/pipeline"
	"github.com/nao1215/mdcrawl/internal/proxy"
	"github.com/nao1215/mdcrawl/internal/report"
)

// NewScrapeCmd creates the scrape command.
func NewScrapeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scrape [seed-url...]",
		Short: "Crawl sites and append their text to markdown files",
		Long: `Scrape crawls each seed URL and appends the text of every same-origin page
within the depth limit to <output-dir>/<host>_<path>_content.md.

Each block of text is followed by a line of 100 hyphens. Pages whose text was
already written in the same run are skipped. Unreachable pages are logged and
skipped; they never stop the run.

Examples:
  # Crawl one site
  mdcrawl scrape https://docs.example.com/

  # Crawl seeds from a file, two at a time
  mdcrawl scrape --list seeds.txt --batch 2

  # Render with a browser first and start from an empty file
  mdcrawl scrape --strategies chromedp,http --fresh https://app.example.com/

  # Also write the whole text of each run for a summarizer
  mdcrawl scrape --aggregate-dir output https://docs.example.com/

  # Route the HTTP fetcher through a SOCKS5 proxy
  mdcrawl scrape --proxy 127.0.0.1:1080 https://docs.example.com/`,
		Args: cobra.ArbitraryArgs,
		RunE: runScrapeCmd,
	}

	// Output flags
	cmd.Flags().StringP("output-dir", "o", config.DefaultOutputDir,
		"Directory receiving the markdown files")
	cmd.Flags().String("aggregate-dir", "",
		"Also write the whole text of each run to this directory, replacing old content")
	cmd.Flags().Bool("fresh", false,
		"Empty each seed's markdown file before crawling it")

	// Crawl flags
	cmd.Flags().StringP("list", "l", "",
		"File with one seed URL per line")
	cmd.Flags().IntP("depth", "d", config.DefaultMaxDepth,
		"Maximum link distance from the seed")
	cmd.Flags().IntP("max-pages", "p", 0,
		"Maximum pages per seed (0 = unlimited)")
	cmd.Flags().String("order", config.DefaultFrontierOrder,
		"Frontier order: lifo or fifo")
	cmd.Flags().IntP("concurrency", "w", config.DefaultConcurrency,
		"Crawl workers per seed")
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of seeds crawled at once")
	cmd.Flags().Duration("run-timeout", 0,
		"Bound on one seed's run (0 = none)")

	// Fetch flags
	cmd.Flags().StringSliceP("strategies", "s", config.DefaultStrategies(),
		"Fetch strategies in priority order (http, chromedp, rod)")
	cmd.Flags().Int("max-browsers", config.DefaultMaxBrowsers,
		"Maximum concurrent headless browsers")
	cmd.Flags().String("browser-path", "",
		"Chrome or Chromium binary (default: auto-detect)")
	cmd.Flags().Duration("nav-timeout", config.DefaultNavigationTimeout,
		"Timeout for one browser navigation")
	cmd.Flags().DurationP("timeout", "t", config.DefaultHTTPTimeout,
		"Timeout for one HTTP request")
	cmd.Flags().StringP("user-agent", "u", config.DefaultUserAgent,
		"User-Agent header of the HTTP fetcher")
	cmd.Flags().String("proxy", "",
		"SOCKS5 proxy for the HTTP fetcher ([user:pass@]host:port)")
	cmd.Flags().Bool("tor", false,
		"Start an embedded Tor daemon and fetch through it")
	cmd.Flags().DurationP("tor-timeout", "T", config.DefaultTorStartupTimeout,
		"Timeout for embedded Tor startup")

	// Configuration and journal
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .mdcrawl in current or home directory)")
	cmd.Flags().Bool("no-journal", false,
		"Do not record the run in the crawl journal")
	cmd.Flags().String("db-dir", config.XDGDataDir(),
		"Directory holding the crawl journal")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("report-file", "r", "",
		"Write reports to this file instead of stdout")

	return cmd
}

func runScrapeCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildScrapeConfig(cmd, args)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := newLogger(cmd)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runScrape(ctx, cfg, cmd.OutOrStdout(), logger)
}

// buildScrapeConfig creates a Config from cobra command flags and the
// configuration file.
func buildScrapeConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	flags := cmd.Flags()

	var err error
	if cfg.OutputDir, err = flags.GetString("output-dir"); err != nil {
		return nil, err
	}
	if cfg.AggregateDir, err = flags.GetString("aggregate-dir"); err != nil {
		return nil, err
	}
	if cfg.Fresh, err = flags.GetBool("fresh"); err != nil {
		return nil, err
	}
	if cfg.MaxDepth, err = flags.GetInt("depth"); err != nil {
		return nil, err
	}
	if cfg.MaxPages, err = flags.GetInt("max-pages"); err != nil {
		return nil, err
	}
	if cfg.FrontierOrder, err = flags.GetString("order"); err != nil {
		return nil, err
	}
	if cfg.Concurrency, err = flags.GetInt("concurrency"); err != nil {
		return nil, err
	}
	if cfg.BatchSize, err = flags.GetInt("batch"); err != nil {
		return nil, err
	}
	if cfg.RunTimeout, err = flags.GetDuration("run-timeout"); err != nil {
		return nil, err
	}
	if cfg.Strategies, err = flags.GetStringSlice("strategies"); err != nil {
		return nil, err
	}
	if cfg.MaxBrowsers, err = flags.GetInt("max-browsers"); err != nil {
		return nil, err
	}
	if cfg.BrowserPath, err = flags.GetString("browser-path"); err != nil {
		return nil, err
	}
	if cfg.NavigationTimeout, err = flags.GetDuration("nav-timeout"); err != nil {
		return nil, err
	}
	if cfg.HTTPTimeout, err = flags.GetDuration("timeout"); err != nil {
		return nil, err
	}
	if cfg.UserAgent, err = flags.GetString("user-agent"); err != nil {
		return nil, err
	}
	if cfg.ProxyAddress, err = flags.GetString("proxy"); err != nil {
		return nil, err
	}
	if cfg.UseTor, err = flags.GetBool("tor"); err != nil {
		return nil, err
	}
	if cfg.TorStartupTimeout, err = flags.GetDuration("tor-timeout"); err != nil {
		return nil, err
	}
	if cfg.ConfigFilePath, err = flags.GetString("config"); err != nil {
		return nil, err
	}
	noJournal, err := flags.GetBool("no-journal")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noJournal
	if cfg.DBDir, err = flags.GetString("db-dir"); err != nil {
		return nil, err
	}
	if cfg.JSONReport, err = flags.GetBool("json"); err != nil {
		return nil, err
	}
	if cfg.MarkdownReport, err = flags.GetBool("markdown"); err != nil {
		return nil, err
	}
	if cfg.ReportFile, err = flags.GetString("report-file"); err != nil {
		return nil, err
	}
	cfg.Verbose = getBoolFlag(cmd, "verbose")
	cfg.LogJSON = getBoolFlag(cmd, "log-json")

	if _, err := cfg.LoadSiteConfigs(); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	listPath, err := flags.GetString("list")
	if err != nil {
		return nil, err
	}
	cfg.Targets = append(cfg.Targets, args...)
	if listPath != "" {
		seeds, err := readSeedList(listPath)
		if err != nil {
			return nil, err
		}
		cfg.Targets = append(cfg.Targets, seeds...)
	}

	return cfg, nil
}

// readSeedList reads one seed per line. Blank lines and lines starting
// with # are skipped.
func readSeedList(path string) ([]string, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open seed list: %w", err)
	}
	defer f.Close()

	var seeds []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		seeds = append(seeds, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read seed list: %w", err)
	}
	return seeds, nil
}

// runScrape crawls every target and prints one report per seed.
func runScrape(ctx context.Context, cfg *config.Config, stdout io.Writer, logger *slog.Logger) error {
	logger.Info("starting scrape",
		"seeds", len(cfg.Targets),
		"outputDir", cfg.OutputDir,
		"strategies", cfg.Strategies,
		"batch", cfg.BatchSize,
	)

	client, cleanup, err := newProxyClient(ctx, cfg, stdout, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	opts := []pipeline.ScraperOption{
		pipeline.WithScraperLogger(logger),
		pipeline.WithProxyClient(client),
	}
	if cfg.SaveToDB {
		journal, err := database.Open(cfg.JournalPath(), database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open journal: %w", err)
		}
		defer journal.Close()
		logger.Debug("journal opened", "path", journal.Path())
		opts = append(opts, pipeline.WithJournal(journal))
	}

	scraper, err := pipeline.NewScraper(cfg, opts...)
	if err != nil {
		return err
	}

	out, closeOut, err := reportOutput(cfg, stdout)
	if err != nil {
		return err
	}
	defer closeOut()
	writer := newReportWriter(cfg, out)

	bp := pipeline.NewBatchProcessor(
		func(ctx context.Context, seed string) (*model.RunReport, error) {
			return scraper.Scrape(ctx, seed, cfg.OutputDir)
		},
		pipeline.WithConcurrency(cfg.BatchSize),
		pipeline.WithBatchLogger(logger),
	)

	startTime := time.Now()
	var (
		mu     sync.Mutex
		failed int
	)
	err = bp.ProcessBatchWithCallback(ctx, cfg.Targets, func(r pipeline.Result, _ int) {
		mu.Lock()
		defer mu.Unlock()

		if r.Err != nil && !errors.Is(r.Err, context.Canceled) {
			failed++
			fmt.Fprintf(os.Stderr, "Scrape error for %s: %v\n", r.Seed, r.Err)
		}
		if r.Report == nil {
			return
		}
		if _, err := writer.Write(r.Report); err != nil {
			logger.Error("report failed", "seed", r.Seed, "error", err)
		}
	})

	logger.Info("scrape finished",
		"seeds", len(cfg.Targets),
		"failed", failed,
		"elapsed", time.Since(startTime).Round(time.Millisecond),
	)

	if err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d seeds failed", failed, len(cfg.Targets))
	}
	return nil
}

// newProxyClient returns the client the HTTP fetcher dials through. With
// --tor it starts the embedded daemon; the returned cleanup stops it.
func newProxyClient(ctx context.Context, cfg *config.Config, stdout io.Writer, logger *slog.Logger) (*proxy.Client, func(), error) {
	noop := func() {}

	switch {
	case cfg.UseTor:
		return startEmbeddedTor(ctx, cfg, stdout, logger)

	case cfg.ProxyAddress != "":
		client, err := proxy.NewClient(
			proxy.WithProxyAddress(cfg.ProxyAddress),
			proxy.WithTimeout(cfg.HTTPTimeout),
		)
		if err != nil {
			return nil, noop, fmt.Errorf("failed to create proxy client: %w", err)
		}
		if err := client.CheckConnection(ctx); err != nil {
			return nil, noop, fmt.Errorf("proxy check failed: %w (make sure a SOCKS5 proxy is running at %s)",
				err, client.ProxyAddress())
		}
		logger.Info("proxy connection verified", "address", client.ProxyAddress())
		return client, noop, nil

	default:
		client, err := proxy.NewClient(proxy.WithTimeout(cfg.HTTPTimeout))
		if err != nil {
			return nil, noop, err
		}
		return client, noop, nil
	}
}

// startEmbeddedTor starts an embedded Tor daemon and returns a client
// dialing through its SOCKS port.
func startEmbeddedTor(ctx context.Context, cfg *config.Config, stdout io.Writer, logger *slog.Logger) (*proxy.Client, func(), error) {
	fmt.Fprintln(stdout, "Starting embedded Tor daemon...")
	fmt.Fprintf(stdout, "This may take 1-3 minutes while Tor bootstraps and connects to the network.\n\n")

	embeddedTor := proxy.NewEmbeddedTor(proxy.WithStartupTimeout(cfg.TorStartupTimeout))
	if err := embeddedTor.Start(ctx); err != nil {
		return nil, func() {}, fmt.Errorf("failed to start embedded Tor: %w", err)
	}
	stopTor := func() {
		logger.Info("stopping embedded Tor daemon")
		if err := embeddedTor.Stop(); err != nil {
			logger.Error("failed to stop embedded Tor", "error", err)
		}
	}

	logger.Info("embedded Tor daemon started", "socksAddr", embeddedTor.SocksAddr())

	client, err := embeddedTor.NewClient(proxy.WithTimeout(cfg.HTTPTimeout))
	if err != nil {
		stopTor()
		return nil, func() {}, fmt.Errorf("failed to create Tor client: %w", err)
	}
	if err := client.CheckConnection(ctx); err != nil {
		stopTor()
		return nil, func() {}, fmt.Errorf("embedded Tor proxy check failed: %w", err)
	}
	return client, stopTor, nil
}

// reportOutput returns where reports go: the report file, or stdout.
func reportOutput(cfg *config.Config, stdout io.Writer) (io.Writer, func(), error) {
	if cfg.ReportFile == "" {
		return stdout, func() {}, nil
	}

	if dir := filepath.Dir(cfg.ReportFile); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, nil, fmt.Errorf("failed to create report directory: %w", err)
		}
	}
	f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create report file: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}

// newReportWriter returns the report writer selected by the flags.
func newReportWriter(cfg *config.Config, w io.Writer) report.Writer {
	switch {
	case cfg.JSONReport:
		return report.NewJSONWriter(w, report.WithPrettyPrint(), report.WithVersion(getVersion()))
	case cfg.MarkdownReport:
		return report.NewMarkdownWriter(w)
	default:
		return report.NewSimpleWriter(w, report.WithVerbose(cfg.Verbose))
	}
}
