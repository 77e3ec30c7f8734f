package fetch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/stealth"
)

// rodStableDuration is how long the DOM must stay unchanged before capture.
const rodStableDuration = 500 * time.Millisecond

// RodStrategy renders pages with go-rod and stealth patches applied.
// Like ChromedpStrategy it owns one browser per Fetch call.
type RodStrategy struct {
	timeout time.Duration
	limiter *BrowserLimiter
	binPath string
	headers map[string]string
	logger  *slog.Logger
}

// RodOption configures a RodStrategy.
type RodOption func(*RodStrategy)

// WithRodTimeout sets the bound on browser launch plus navigation.
func WithRodTimeout(d time.Duration) RodOption {
	return func(s *RodStrategy) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithRodLimiter shares a browser limiter with other strategies.
func WithRodLimiter(l *BrowserLimiter) RodOption {
	return func(s *RodStrategy) {
		s.limiter = l
	}
}

// WithRodBinPath sets the browser binary. Empty lets rod find or download one.
func WithRodBinPath(path string) RodOption {
	return func(s *RodStrategy) {
		s.binPath = path
	}
}

// WithRodHeaders sets extra request headers for every request the page makes.
func WithRodHeaders(headers map[string]string) RodOption {
	return func(s *RodStrategy) {
		s.headers = headers
	}
}

// WithRodLogger sets the logger.
func WithRodLogger(logger *slog.Logger) RodOption {
	return func(s *RodStrategy) {
		s.logger = logger
	}
}

// NewRodStrategy creates a RodStrategy.
func NewRodStrategy(opts ...RodOption) *RodStrategy {
	s := &RodStrategy{
		timeout: DefaultNavigationTimeout,
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
func (s *RodStrategy) Name() string {
	return StrategyRod
}

// Fetch implements Strategy.
func (s *RodStrategy) Fetch(ctx context.Context, pageURL string) (*Result, error) {
	release, err := s.limiter.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	// The timeout bounds the browser launch as well as the navigation.
	navCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	l := launcher.New().
		Context(navCtx).
		Headless(true).
		Set("disable-gpu").
		Set("no-sandbox").
		Set("disable-dev-shm-usage")
	if s.binPath != "" {
		l = l.Bin(s.binPath)
	}
	defer func() {
		l.Kill()
		l.Cleanup()
	}()

	controlURL, err := l.Launch()
	if err != nil {
		return nil, s.timeoutError(ctx, navCtx, "launch browser for "+pageURL, err)
	}

	browser := rod.New().ControlURL(controlURL).Context(navCtx)
	if err := browser.Connect(); err != nil {
		return nil, s.timeoutError(ctx, navCtx, "connect to browser for "+pageURL, err)
	}
	defer func() {
		if err := browser.Close(); err != nil {
			s.logger.Debug("close browser", "error", err)
		}
	}()

	page, err := stealth.Page(browser)
	if err != nil {
		return nil, fmt.Errorf("open tab: %w", err)
	}

	if len(s.headers) > 0 {
		dict := make([]string, 0, 2*len(s.headers))
		for k, v := range s.headers {
			dict = append(dict, k, v)
		}
		if _, err := page.SetExtraHeaders(dict); err != nil {
			return nil, fmt.Errorf("set extra headers: %w", err)
		}
	}

	if err := page.Navigate(pageURL); err != nil {
		return nil, s.timeoutError(ctx, navCtx, "navigate to "+pageURL, err)
	}
	if err := page.WaitStable(rodStableDuration); err != nil {
		return nil, s.timeoutError(ctx, navCtx, "navigate to "+pageURL, err)
	}

	rendered, err := page.HTML()
	if err != nil {
		return nil, fmt.Errorf("read rendered HTML of %s: %w", pageURL, err)
	}

	text, err := renderedHTMLToText(rendered)
	if err != nil {
		return nil, err
	}

	return &Result{Text: text, HTML: rendered}, nil
}

// timeoutError maps a deadline hit on the navigation context to
// ErrNavigationTimeout while leaving run-level cancellation untouched.
func (s *RodStrategy) timeoutError(ctx, navCtx context.Context, op string, err error) error {
	if ctx.Err() == nil && errors.Is(navCtx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w after %s: %s", ErrNavigationTimeout, s.timeout, op)
	}
	return fmt.Errorf("%s: %w", op, err)
}
