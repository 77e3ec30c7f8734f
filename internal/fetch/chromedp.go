package fetch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
)

// ChromedpStrategy renders pages in a headless Chrome driven by chromedp.
// Every Fetch launches its own browser process and tears it down before
// returning, so no browser state is shared between pages.
type ChromedpStrategy struct {
	timeout   time.Duration
	userAgent string
	limiter   *BrowserLimiter
	execPath  string
	headers   map[string]string
	logger    *slog.Logger
}

// ChromedpOption configures a ChromedpStrategy.
type ChromedpOption func(*ChromedpStrategy)

// WithChromedpTimeout sets the navigation bound.
func WithChromedpTimeout(d time.Duration) ChromedpOption {
	return func(s *ChromedpStrategy) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithChromedpUserAgent sets the browser User-Agent.
func WithChromedpUserAgent(ua string) ChromedpOption {
	return func(s *ChromedpStrategy) {
		s.userAgent = ua
	}
}

// WithChromedpLimiter shares a browser limiter with other strategies.
func WithChromedpLimiter(l *BrowserLimiter) ChromedpOption {
	return func(s *ChromedpStrategy) {
		s.limiter = l
	}
}

// WithChromedpExecPath sets the Chrome binary. Empty means autodetect.
func WithChromedpExecPath(path string) ChromedpOption {
	return func(s *ChromedpStrategy) {
		s.execPath = path
	}
}

// WithChromedpHeaders sets extra request headers for every request the
// page makes, e.g. a site's Cookie or Authorization header.
func WithChromedpHeaders(headers map[string]string) ChromedpOption {
	return func(s *ChromedpStrategy) {
		s.headers = headers
	}
}

// WithChromedpLogger sets the logger.
func WithChromedpLogger(logger *slog.Logger) ChromedpOption {
	return func(s *ChromedpStrategy) {
		s.logger = logger
	}
}

// NewChromedpStrategy creates a ChromedpStrategy.
func NewChromedpStrategy(opts ...ChromedpOption) *ChromedpStrategy {
	s := &ChromedpStrategy{
		timeout:   DefaultNavigationTimeout,
		userAgent: DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Name implements Strategy.
func (s *ChromedpStrategy) Name() string {
	return StrategyChromedp
}

// allocatorOptions returns the exec allocator flags for one browser.
func (s *ChromedpStrategy) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Headless,
		chromedp.DisableGPU,
		chromedp.NoSandbox,
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(s.userAgent),
	)
	if s.execPath != "" {
		opts = append(opts, chromedp.ExecPath(s.execPath))
	}
	return opts
}

// Fetch implements Strategy.
func (s *ChromedpStrategy) Fetch(ctx context.Context, pageURL string) (*Result, error) {
	release, err := s.limiter.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, s.allocatorOptions()...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx,
		chromedp.WithErrorf(func(format string, args ...any) {
			s.logger.Debug("chromedp", "detail", fmt.Sprintf(format, args...))
		}),
	)
	defer cancelBrowser()

	navCtx, cancelNav := context.WithTimeout(browserCtx, s.timeout)
	defer cancelNav()

	var rendered string
	actions := make([]chromedp.Action, 0, 5)
	if len(s.headers) > 0 {
		h := make(network.Headers, len(s.headers))
		for k, v := range s.headers {
			h[k] = v
		}
		actions = append(actions, network.Enable(), network.SetExtraHTTPHeaders(h))
	}
	actions = append(actions,
		chromedp.Navigate(pageURL),
		chromedp.WaitReady("body"),
		chromedp.OuterHTML("html", &rendered),
	)
	err = chromedp.Run(navCtx, actions...)
	if err != nil {
		if ctx.Err() == nil && errors.Is(navCtx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w after %s: %s", ErrNavigationTimeout, s.timeout, pageURL)
		}
		return nil, fmt.Errorf("render %s: %w", pageURL, err)
	}

	text, err := renderedHTMLToText(rendered)
	if err != nil {
		return nil, err
	}

	return &Result{Text: text, HTML: rendered}, nil
}
