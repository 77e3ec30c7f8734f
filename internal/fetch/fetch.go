package fetch

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
)

// Strategy names used in configuration and reports.
const (
	StrategyHTTP     = "http"
	StrategyChromedp = "chromedp"
	StrategyRod      = "rod"
)

// DefaultNavigationTimeout bounds a single browser navigation.
const DefaultNavigationTimeout = 30 * time.Second

// Result is the output of one successful fetch.
type Result struct {
	// Text is the normalized page text.
	Text string

	// HTML is the raw (for browsers, rendered) HTML used for link discovery.
	HTML string

	// Strategy is the name of the strategy that produced the result.
	Strategy string
}

// Strategy turns a URL into a Result.
// Implementations must honor ctx cancellation and release every resource
// they acquire before returning.
type Strategy interface {
	// Name returns the strategy name for logging and reports.
	Name() string

	// Fetch retrieves pageURL.
	Fetch(ctx context.Context, pageURL string) (*Result, error)
}

// Fetcher is what the crawler depends on.
type Fetcher interface {
	Fetch(ctx context.Context, pageURL string) (*Result, error)
}

// Chain tries strategies in priority order until one succeeds.
type Chain struct {
	strategies []Strategy
	logger     *slog.Logger
}

// ChainOption configures a Chain.
type ChainOption func(*Chain)

// WithChainLogger sets the logger used to report strategy failures.
func WithChainLogger(logger *slog.Logger) ChainOption {
	return func(c *Chain) {
		c.logger = logger
	}
}

// NewChain creates a Chain trying strategies in the given order.
func NewChain(strategies []Strategy, opts ...ChainOption) *Chain {
	c := &Chain{
		strategies: strategies,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// Strategies returns the strategy names in priority order.
func (c *Chain) Strategies() []string {
	names := make([]string, len(c.strategies))
	for i, s := range c.strategies {
		names[i] = s.Name()
	}
	return names
}

// Fetch tries each strategy in order and returns the first usable result.
// A result is usable only when it carries HTML. When every strategy fails
// the returned error is an *Error.
func (c *Chain) Fetch(ctx context.Context, pageURL string) (*Result, error) {
	if len(c.strategies) == 0 {
		return nil, &Error{URL: pageURL, Err: ErrNoStrategies}
	}

	var attempts []error
	last := ""
	for _, strategy := range c.strategies {
		last = strategy.Name()

		if err := ctx.Err(); err != nil {
			attempts = append(attempts, &attemptError{strategy: last, err: err})
			break
		}

		c.logger.Debug("fetching", "url", pageURL, "strategy", last)
		result, err := strategy.Fetch(ctx, pageURL)
		if err == nil {
			err = validate(result)
		}
		if err != nil {
			c.logger.Info("strategy failed", "url", pageURL, "strategy", last, "error", err)
			attempts = append(attempts, &attemptError{strategy: last, err: err})
			continue
		}

		result.Strategy = last
		return result, nil
	}

	return nil, &Error{URL: pageURL, Strategy: last, Err: errors.Join(attempts...)}
}

// validate enforces the Result contract shared by all strategies.
func validate(result *Result) error {
	if result == nil || strings.TrimSpace(result.HTML) == "" {
		return ErrNoHTML
	}
	return nil
}

// SiteHeaders merges headers and cookie into one header map for the
// browser strategies. A non-empty cookie replaces any Cookie header.
// It returns nil when there is nothing to send.
func SiteHeaders(headers map[string]string, cookie string) map[string]string {
	if len(headers) == 0 && cookie == "" {
		return nil
	}
	out := make(map[string]string, len(headers)+1)
	for k, v := range headers {
		if cookie != "" && strings.EqualFold(k, "Cookie") {
			continue
		}
		out[k] = v
	}
	if cookie != "" {
		out["Cookie"] = cookie
	}
	return out
}
