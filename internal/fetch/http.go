package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultUserAgent is sent by the HTTP and browser strategies.
	DefaultUserAgent = "mdcrawl/1.0 (+https://github.com/nao1215/mdcrawl)"

	// DefaultMaxBodySize caps how much of a response body is read.
	DefaultMaxBodySize = 10 * 1024 * 1024 // 10MB

	// defaultHTTPTimeout is used when NewHTTPStrategy is given a nil client.
	defaultHTTPTimeout = 30 * time.Second
)

// HTTPStrategy fetches pages with a plain HTTP client and extracts the main
// content as markdown. It is the primary strategy: cheap, but blind to
// content rendered by JavaScript.
type HTTPStrategy struct {
	client      *http.Client
	userAgent   string
	maxBodySize int64
	logger      *slog.Logger
}

// HTTPOption configures an HTTPStrategy.
type HTTPOption func(*HTTPStrategy)

// WithHTTPUserAgent sets the User-Agent header.
func WithHTTPUserAgent(ua string) HTTPOption {
	return func(s *HTTPStrategy) {
		s.userAgent = ua
	}
}

// WithHTTPMaxBodySize sets the maximum number of body bytes read.
func WithHTTPMaxBodySize(size int64) HTTPOption {
	return func(s *HTTPStrategy) {
		if size > 0 {
			s.maxBodySize = size
		}
	}
}

// WithHTTPLogger sets the logger.
func WithHTTPLogger(logger *slog.Logger) HTTPOption {
	return func(s *HTTPStrategy) {
		s.logger = logger
	}
}

// NewHTTPStrategy creates an HTTPStrategy using client.
// The client carries transport concerns (proxy, injected headers, timeout).
func NewHTTPStrategy(client *http.Client, opts ...HTTPOption) *HTTPStrategy {
	if client == nil {
		client = &http.Client{Timeout: defaultHTTPTimeout}
	}
	s := &HTTPStrategy{
		client:      client,
		userAgent:   DefaultUserAgent,
		maxBodySize: DefaultMaxBodySize,
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
func (s *HTTPStrategy) Name() string {
	return StrategyHTTP
}

// Fetch implements Strategy.
func (s *HTTPStrategy) Fetch(ctx context.Context, pageURL string) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType != "" && !strings.Contains(strings.ToLower(contentType), "html") {
		return nil, fmt.Errorf("%w: %s", ErrNotHTML, contentType)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, s.maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil, ErrNoHTML
	}

	text, err := articleToText(body, pageURL)
	if err != nil {
		return nil, err
	}
	if text == "" {
		return nil, ErrNoContent
	}

	s.logger.Debug("extracted page", "url", pageURL, "bytes", len(body), "textBytes", len(text))

	return &Result{Text: text, HTML: string(body)}, nil
}
