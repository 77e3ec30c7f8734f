package config

import (
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/adrg/xdg"

	"github.com/nao1215/mdcrawl/internal/fetch"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "mdcrawl"

	// DefaultOutputDir is where markdown files are written.
	DefaultOutputDir = "./markdown"

	// DefaultMaxDepth is the link distance from the seed beyond which nothing
	// is fetched. 2 means the seed, its links and their links.
	DefaultMaxDepth = 2

	// DefaultFrontierOrder pops the most recently discovered URL first.
	DefaultFrontierOrder = "lifo"

	// DefaultConcurrency is the number of crawl workers per seed.
	// One worker fetches strictly sequentially.
	DefaultConcurrency = 1

	// DefaultBatchSize is the number of seeds crawled at once.
	DefaultBatchSize = 1

	// DefaultMaxBrowsers caps concurrent headless browser instances across
	// all workers and seeds. Each instance costs hundreds of MB.
	DefaultMaxBrowsers = 2

	// DefaultNavigationTimeout bounds one browser navigation.
	DefaultNavigationTimeout = 30 * time.Second

	// DefaultHTTPTimeout bounds one request of the primary strategy.
	DefaultHTTPTimeout = 30 * time.Second

	// DefaultTorStartupTimeout is the maximum time to wait for the embedded
	// Tor daemon to bootstrap.
	DefaultTorStartupTimeout = 3 * time.Minute

	// DefaultUserAgent identifies mdcrawl in HTTP requests.
	DefaultUserAgent = fetch.DefaultUserAgent

	// DefaultMaxBodySize limits the response body size read by the primary
	// strategy.
	DefaultMaxBodySize = fetch.DefaultMaxBodySize

	// JournalFile is the SQLite journal file name inside DBDir.
	JournalFile = "mdcrawl.db"

	// DefaultSummaryDir is where `mdcrawl summarize` writes its output.
	DefaultSummaryDir = "output_files"
)

// DefaultStrategies is the fetch strategy priority used when none is configured.
func DefaultStrategies() []string {
	return []string{fetch.StrategyHTTP, fetch.StrategyChromedp}
}

// KnownStrategies lists the strategy names accepted in configuration.
func KnownStrategies() []string {
	return []string{fetch.StrategyHTTP, fetch.StrategyChromedp, fetch.StrategyRod}
}

// Config holds all configuration options for a scrape.
// It is populated from CLI flags and passed down explicitly; nothing reads
// global state.
type Config struct {
	// Targets are the seed URLs. Each seed is its own run with its own
	// output file and state.
	Targets []string

	// OutputDir is the directory the per-seed markdown files go to.
	OutputDir string

	// AggregateDir, when set, receives the whole aggregate text of each run
	// as a plain file, ready for the summarizer.
	AggregateDir string

	// Fresh truncates each seed's output file before its run.
	// Without it, runs keep appending to what is already there.
	Fresh bool

	// MaxDepth is the maximum link distance from the seed.
	// Depth 0 means only fetch the seed.
	MaxDepth int

	// MaxPages caps the URLs fetched per seed. 0 means no limit.
	MaxPages int

	// FrontierOrder is "lifo" or "fifo".
	FrontierOrder string

	// Concurrency is the number of crawl workers per seed.
	Concurrency int

	// BatchSize is the number of seeds crawled at once.
	BatchSize int

	// Strategies is the fetch strategy priority order.
	Strategies []string

	// MaxBrowsers caps concurrent headless browsers.
	MaxBrowsers int

	// BrowserPath is the Chrome or Chromium binary used by browser
	// strategies. Empty lets each driver locate one.
	BrowserPath string

	// NavigationTimeout bounds one browser navigation.
	NavigationTimeout time.Duration

	// HTTPTimeout bounds one request of the primary strategy.
	HTTPTimeout time.Duration

	// RunTimeout bounds a whole seed run. 0 means no bound.
	RunTimeout time.Duration

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string

	// MaxBodySize is the maximum response body size in bytes to read.
	MaxBodySize int64

	// ProxyAddress routes the primary strategy through a SOCKS5 proxy
	// ("host:port"). Empty means a direct connection.
	ProxyAddress string

	// UseTor starts an embedded Tor daemon and routes the primary strategy
	// through it. Mutually exclusive with ProxyAddress.
	UseTor bool

	// TorStartupTimeout is the maximum time to wait for the embedded Tor
	// daemon to bootstrap.
	TorStartupTimeout time.Duration

	// Verbose enables detailed log output using slog.LevelDebug.
	Verbose bool

	// LogJSON switches the log handler to JSON.
	LogJSON bool

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .mdcrawl in the current directory
	// and then in the user's home directory.
	ConfigFilePath string

	// SiteConfigs holds site-specific configurations loaded from the config file.
	SiteConfigs *File

	// JSONReport prints the run report as JSON.
	// Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport prints the run report as GitHub Flavored Markdown.
	// Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the report.
	// When set, the report is written to this file instead of stdout.
	ReportFile string

	// DBDir is the directory holding the crawl journal.
	// Defaults to the XDG data directory (~/.local/share/mdcrawl on Linux).
	DBDir string

	// SaveToDB records runs in the journal.
	SaveToDB bool
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		OutputDir:         DefaultOutputDir,
		MaxDepth:          DefaultMaxDepth,
		FrontierOrder:     DefaultFrontierOrder,
		Concurrency:       DefaultConcurrency,
		BatchSize:         DefaultBatchSize,
		Strategies:        DefaultStrategies(),
		MaxBrowsers:       DefaultMaxBrowsers,
		NavigationTimeout: DefaultNavigationTimeout,
		HTTPTimeout:       DefaultHTTPTimeout,
		TorStartupTimeout: DefaultTorStartupTimeout,
		UserAgent:         DefaultUserAgent,
		MaxBodySize:       DefaultMaxBodySize,
		DBDir:             XDGDataDir(),
		SaveToDB:          true,
	}
}

// XDGDataDir returns the XDG data directory for mdcrawl.
// On Linux: ~/.local/share/mdcrawl
// On macOS: ~/Library/Application Support/mdcrawl
// On Windows: %LOCALAPPDATA%\mdcrawl
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for mdcrawl.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// XDGCacheDir returns the XDG cache directory for mdcrawl.
// Browser user-data directories live under it.
func XDGCacheDir() string {
	return filepath.Join(xdg.CacheHome, AppName)
}

// JournalPath returns the path of the SQLite journal.
func (c *Config) JournalPath() string {
	return filepath.Join(c.DBDir, JournalFile)
}

// Validate checks if the configuration is valid.
// It returns the first problem found.
func (c *Config) Validate() error {
	if len(c.Targets) == 0 {
		return ErrNoTarget
	}
	if c.OutputDir == "" {
		return ErrNoOutputDir
	}
	if c.MaxDepth < 0 {
		return ErrInvalidDepth
	}
	if c.MaxPages < 0 {
		return ErrInvalidMaxPages
	}
	switch strings.ToLower(c.FrontierOrder) {
	case "lifo", "fifo":
	default:
		return ErrInvalidFrontierOrder
	}
	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}
	if err := validateStrategies(c.Strategies); err != nil {
		return err
	}
	if c.MaxBrowsers <= 0 {
		return ErrInvalidMaxBrowsers
	}
	if c.NavigationTimeout <= 0 || c.HTTPTimeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.RunTimeout < 0 {
		return ErrInvalidRunTimeout
	}
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}
	if c.ProxyAddress != "" && c.UseTor {
		return ErrConflictingProxy
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	return nil
}

func validateStrategies(names []string) error {
	if len(names) == 0 {
		return ErrNoStrategies
	}
	known := KnownStrategies()
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if !slices.Contains(known, name) {
			return &UnknownStrategyError{Name: name}
		}
		if seen[name] {
			return &UnknownStrategyError{Name: name, Duplicate: true}
		}
		seen[name] = true
	}
	return nil
}
