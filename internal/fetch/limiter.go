package fetch

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// DefaultMaxBrowsers is the default cap on concurrently running browsers.
const DefaultMaxBrowsers = 2

// BrowserLimiter caps the number of browser instances alive at once.
// Browsers are expensive; every browser strategy acquires a slot before
// launching and releases it after teardown. A nil *BrowserLimiter never
// blocks.
type BrowserLimiter struct {
	sem *semaphore.Weighted
}

// NewBrowserLimiter creates a limiter allowing n concurrent browsers.
// n <= 0 uses DefaultMaxBrowsers.
func NewBrowserLimiter(n int) *BrowserLimiter {
	if n <= 0 {
		n = DefaultMaxBrowsers
	}
	return &BrowserLimiter{sem: semaphore.NewWeighted(int64(n))}
}

// Acquire blocks until a slot is free or ctx is done.
// The returned release func must be called exactly once.
func (l *BrowserLimiter) Acquire(ctx context.Context) (func(), error) {
	if l == nil {
		return func() {}, nil
	}
	if err := l.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	return func() { l.sem.Release(1) }, nil
}
