package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/mdcrawl/internal/fetch"
	"github.com/nao1215/mdcrawl/internal/model"
)

// DefaultMaxDepth is the link distance from the seed beyond which nothing
// is fetched. The seed has depth 0.
const DefaultMaxDepth = 2

// Appender persists accepted page text. output.Appender implements it.
type Appender interface {
	Append(text, path string) error
}

// Observer is called once per fetched URL with its record.
// With more than one worker it may be called concurrently.
type Observer func(model.PageRecord)

// Spider crawls one site per Crawl call.
// A Spider holds configuration only and may run several crawls at once;
// all traversal state belongs to the call.
type Spider struct {
	fetcher  fetch.Fetcher
	appender Appender

	// maxDepth limits how deep to crawl from the starting URL.
	// 0 means only the starting page, 1 means one level of links, etc.
	maxDepth int

	// maxPages limits the number of URLs fetched per run. 0 means no limit.
	maxPages int

	// order is the frontier pop order.
	order Order

	// concurrency is the number of workers per run.
	concurrency int

	// ignorePatterns are URL path patterns to skip during crawling.
	// Patterns use glob syntax (e.g., "/admin/*", "*.pdf").
	ignorePatterns []string

	// followPatterns are URL path patterns to follow during crawling.
	// If set, only URLs matching these patterns are crawled.
	// Empty means all URLs are allowed (subject to ignorePatterns).
	followPatterns []string

	logger   *slog.Logger
	observer Observer
}

// SpiderOption configures a Spider.
type SpiderOption func(*Spider)

// WithMaxDepth sets the maximum crawl depth.
// 0 = only the starting page, 1 = starting page plus linked pages, etc.
func WithMaxDepth(depth int) SpiderOption {
	return func(s *Spider) {
		if depth >= 0 {
			s.maxDepth = depth
		}
	}
}

// WithMaxPages sets the maximum number of pages to fetch. 0 disables the limit.
func WithMaxPages(maxPages int) SpiderOption {
	return func(s *Spider) {
		if maxPages >= 0 {
			s.maxPages = maxPages
		}
	}
}

// WithFrontierOrder sets the frontier pop order.
func WithFrontierOrder(order Order) SpiderOption {
	return func(s *Spider) {
		if order == OrderLIFO || order == OrderFIFO {
			s.order = order
		}
	}
}

// WithConcurrency sets the number of workers per run.
func WithConcurrency(n int) SpiderOption {
	return func(s *Spider) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithIgnorePatterns sets URL path patterns to skip during crawling.
// Patterns use glob syntax (e.g., "/admin/*", "*.pdf", "/logout*").
// URLs matching any of these patterns will not be crawled.
func WithIgnorePatterns(patterns []string) SpiderOption {
	return func(s *Spider) {
		s.ignorePatterns = patterns
	}
}

// WithFollowPatterns sets URL path patterns to follow during crawling.
// If set, only URLs matching at least one pattern are crawled.
// The seed itself is always fetched.
func WithFollowPatterns(patterns []string) SpiderOption {
	return func(s *Spider) {
		s.followPatterns = patterns
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) SpiderOption {
	return func(s *Spider) {
		s.logger = logger
	}
}

// WithObserver registers a callback for every fetched URL.
func WithObserver(observer Observer) SpiderOption {
	return func(s *Spider) {
		s.observer = observer
	}
}

// NewSpider creates a Spider that fetches with fetcher and writes with appender.
func NewSpider(fetcher fetch.Fetcher, appender Appender, opts ...SpiderOption) *Spider {
	s := &Spider{
		fetcher:     fetcher,
		appender:    appender,
		maxDepth:    DefaultMaxDepth,
		order:       OrderLIFO,
		concurrency: 1,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Crawl traverses the site of seed and appends every new page text to
// outputPath.
//
// Per-URL failures never end the run. Fetch and write failures are recorded
// in the report's Errors and Pages. The returned error is non-nil only when
// the seed is invalid or ctx ends the run early; in the latter case the
// partial report is returned along with ctx.Err().
func (s *Spider) Crawl(ctx context.Context, seed, outputPath string) (*model.RunReport, error) {
	start, err := ParseSeed(seed)
	if err != nil {
		return nil, err
	}

	r := newRun(s, start, filepath.Clean(outputPath))
	r.push(Entry{URL: start.String(), Depth: 0})

	s.logger.Info("crawl started", "seed", r.report.Seed, "output", r.report.OutputPath,
		"maxDepth", s.maxDepth, "order", string(s.order), "workers", s.concurrency)

	g, gctx := errgroup.WithContext(ctx)
	stop := context.AfterFunc(gctx, r.wake)
	defer stop()

	for range s.concurrency {
		g.Go(func() error {
			r.work(gctx)
			return nil
		})
	}
	_ = g.Wait() //nolint:errcheck // workers never return errors

	r.report.Finish()

	if err := ctx.Err(); err != nil {
		r.report.Canceled = true
		s.logger.Warn("crawl interrupted", "seed", r.report.Seed, "error", err,
			"fetched", r.report.Fetched(), "pending", r.pending())
		return r.report, err
	}

	s.logger.Info("crawl finished", "seed", r.report.Seed,
		"fetched", r.report.Fetched(),
		"written", r.report.Count(model.StatusWritten),
		"failed", len(r.report.Errors),
		"duration", r.report.Duration())

	return r.report, nil
}

// ParseSeed validates seed and normalizes it the same way visited keys are:
// lowercase host, no fragment, "/" for an empty path.
func ParseSeed(seed string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(seed))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSeed, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: %q needs an http or https scheme", ErrInvalidSeed, seed)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("%w: %q has no host", ErrInvalidSeed, seed)
	}
	u.Fragment = ""
	u.Host = strings.ToLower(u.Host)
	if u.Path == "" {
		u.Path = "/"
	}
	return u, nil
}

// run is the state of one Crawl call.
type run struct {
	spider     *Spider
	seed       *url.URL
	outputPath string

	mu       sync.Mutex
	cond     *sync.Cond
	frontier *frontier
	visited  map[string]bool
	seen     map[string]bool
	claimed  int
	inFlight int
	text     strings.Builder
	report   *model.RunReport
}

func newRun(s *Spider, seed *url.URL, outputPath string) *run {
	r := &run{
		spider:     s,
		seed:       seed,
		outputPath: outputPath,
		frontier:   newFrontier(s.order),
		visited:    make(map[string]bool),
		seen:       make(map[string]bool),
		report:     model.NewRunReport(seed.String(), outputPath),
	}
	r.cond = sync.NewCond(&r.mu)
	return r
}

// work processes entries until the frontier is drained or ctx is done.
func (r *run) work(ctx context.Context) {
	for {
		entry, ok := r.next(ctx)
		if !ok {
			return
		}
		r.process(ctx, entry)
		r.done()
	}
}

// next blocks until an entry is claimed. It returns false when no work is
// left: the frontier is empty and nothing is in flight, the page budget is
// spent, or ctx is done.
//
// Entries already visited or deeper than the bound are discarded here. The
// visited check and insert happen under the same lock, so a URL is claimed
// by exactly one worker.
func (r *run) next(ctx context.Context) (Entry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for {
		if ctx.Err() != nil {
			return Entry{}, false
		}
		if limit := r.spider.maxPages; limit > 0 && r.claimed >= limit {
			r.cond.Broadcast()
			return Entry{}, false
		}

		entry, ok := r.frontier.pop()
		if !ok {
			if r.inFlight == 0 {
				r.cond.Broadcast()
				return Entry{}, false
			}
			r.cond.Wait()
			continue
		}

		if entry.Depth > r.spider.maxDepth {
			continue
		}
		key := normalizeURL(entry.URL)
		if r.visited[key] {
			continue
		}
		r.visited[key] = true
		r.claimed++
		r.inFlight++
		return entry, true
	}
}

// done releases a claimed entry and wakes waiting workers.
func (r *run) done() {
	r.mu.Lock()
	r.inFlight--
	r.mu.Unlock()
	r.cond.Broadcast()
}

// wake unblocks every waiting worker so it can observe cancellation.
func (r *run) wake() {
	r.mu.Lock()
	r.cond.Broadcast()
	r.mu.Unlock()
}

func (r *run) push(e Entry) {
	r.mu.Lock()
	r.frontier.push(e)
	r.mu.Unlock()
	r.cond.Signal()
}

func (r *run) pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frontier.len()
}

func (r *run) isVisited(rawURL string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.visited[normalizeURL(rawURL)]
}

// process fetches one entry, persists new text and pushes its links.
// No lock is held across the fetch or the append.
func (r *run) process(ctx context.Context, entry Entry) {
	logger := r.spider.logger
	record := model.PageRecord{URL: entry.URL, Depth: entry.Depth}

	result, err := r.spider.fetcher.Fetch(ctx, entry.URL)
	if err != nil {
		if ctx.Err() != nil {
			// Interrupted, not failed. The run reports the cancellation.
			return
		}
		logger.Warn("skipping URL", "url", entry.URL, "depth", entry.Depth, "error", err)
		record.Status = model.StatusFetchFailed
		record.Error = err.Error()
		r.record(record, err)
		return
	}

	record.Strategy = result.Strategy
	record.Bytes = len(result.Text)

	var writeErr error
	if result.Text != "" {
		record.Fingerprint = model.Fingerprint(result.Text)
	}
	switch {
	case result.Text == "":
		record.Status = model.StatusEmpty
	case !r.accept(record.Fingerprint, result.Text):
		record.Status = model.StatusDuplicate
		logger.Debug("duplicate content", "url", entry.URL, "fingerprint", record.Fingerprint)
	default:
		record.Status = model.StatusWritten
		if err := r.spider.appender.Append(result.Text, r.outputPath); err != nil {
			logger.Error("append failed", "url", entry.URL, "path", r.outputPath, "error", err)
			record.Status = model.StatusWriteFailed
			record.Error = err.Error()
			writeErr = err
		}
	}

	if entry.Depth < r.spider.maxDepth {
		record.Links = r.enqueueLinks(entry, result.HTML)
	}

	logger.Info("page processed", "url", entry.URL, "depth", entry.Depth,
		"strategy", record.Strategy, "status", string(record.Status), "links", record.Links)
	r.record(record, writeErr)
}

// accept records fingerprint and adds text to the aggregate when the text
// is new to the run. It reports whether the text should be written.
func (r *run) accept(fingerprint, text string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.seen[fingerprint] {
		return false
	}
	r.seen[fingerprint] = true
	r.text.WriteString(text)
	r.text.WriteString("\n")
	r.report.Text = r.text.String()
	return true
}

// enqueueLinks pushes the same-origin, unvisited links of rawHTML at
// entry.Depth+1 and returns how many were pushed.
func (r *run) enqueueLinks(entry Entry, rawHTML string) int {
	logger := r.spider.logger

	parser, err := NewParser(entry.URL)
	if err != nil {
		logger.Debug("cannot parse page URL", "url", entry.URL, "error", err)
		return 0
	}
	parsed, err := parser.Parse(strings.NewReader(rawHTML))
	if err != nil {
		logger.Debug("cannot parse HTML", "url", entry.URL, "error", err)
		return 0
	}
	for _, linkErr := range parsed.Invalid {
		logger.Debug("skipping link", "error", linkErr)
	}

	pushed := 0
	for _, link := range parsed.Links {
		if !r.isSameOrigin(link) || !r.spider.shouldCrawl(link) || r.isVisited(link) {
			continue
		}
		r.push(Entry{URL: link, Depth: entry.Depth + 1})
		pushed++
	}
	return pushed
}

// record stores a page record and notifies the observer.
func (r *run) record(p model.PageRecord, err error) {
	r.mu.Lock()
	r.report.AddPage(p)
	r.report.AddError(err)
	r.mu.Unlock()

	if r.spider.observer != nil {
		r.spider.observer(p)
	}
}

// isSameOrigin reports whether target has the seed's scheme and host.
func (r *run) isSameOrigin(target string) bool {
	u, err := url.Parse(target)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Scheme, r.seed.Scheme) && strings.EqualFold(u.Host, r.seed.Host)
}

// normalizeURL normalizes a URL for the visited set.
// The fragment is dropped, scheme and host are lowercased, and an empty
// path becomes "/".
func normalizeURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	u.Fragment = ""
	u.RawFragment = ""
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	if u.Path == "" {
		u.Path = "/"
	}

	return u.String()
}

// shouldCrawl checks if a URL should be crawled based on ignore/follow patterns.
//
// Logic:
//  1. If URL matches any ignorePattern, skip it (return false)
//  2. If followPatterns is set and URL matches none, skip it (return false)
//  3. Otherwise, crawl it (return true)
func (s *Spider) shouldCrawl(targetURL string) bool {
	u, err := url.Parse(targetURL)
	if err != nil {
		return false
	}

	path := u.Path
	if path == "" {
		path = "/"
	}

	for _, pattern := range s.ignorePatterns {
		if matchPattern(pattern, path) {
			return false
		}
	}

	if len(s.followPatterns) > 0 {
		for _, pattern := range s.followPatterns {
			if matchPattern(pattern, path) {
				return true
			}
		}
		return false
	}

	return true
}

// matchPattern checks if a path matches a glob pattern.
// Patterns can use:
//   - * to match any sequence of non-separator characters
//   - ? to match any single character
//
// Examples:
//   - "/admin/*" matches "/admin/dashboard", "/admin/users"
//   - "*.pdf" matches "/docs/file.pdf"
//   - "/api/v?" matches "/api/v1", "/api/v2"
func matchPattern(pattern, path string) bool {
	if strings.HasSuffix(pattern, "/*") {
		prefix := strings.TrimSuffix(pattern, "/*")
		if strings.HasPrefix(path, prefix+"/") || path == prefix {
			return true
		}
	}

	if strings.HasPrefix(pattern, "*.") {
		if strings.HasSuffix(path, strings.TrimPrefix(pattern, "*")) {
			return true
		}
	}

	matched, err := filepath.Match(pattern, path)
	if err != nil {
		return false
	}
	if matched {
		return true
	}

	// Bare file patterns like "index?.html" match the last segment.
	if strings.ContainsAny(pattern, "*?") && !strings.Contains(pattern, "/") {
		matched, err := filepath.Match(pattern, filepath.Base(path))
		if err == nil && matched {
			return true
		}
	}

	return false
}
