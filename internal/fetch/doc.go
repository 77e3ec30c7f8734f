// Package fetch retrieves a page as normalized text plus its raw HTML.
//
// # Strategies
//
// A Strategy is one way of turning a URL into a Result. Three are provided:
//
//   - HTTPStrategy: a plain HTTP GET, article extraction with go-readability
//     and markdown conversion with html-to-markdown. Cheap and fast.
//   - ChromedpStrategy: a headless Chrome instance driven by chromedp that
//     captures the fully rendered DOM. Used when the cheap path fails.
//   - RodStrategy: the same contract on top of go-rod with stealth patches.
//
// A Chain tries strategies in a fixed priority order and stops at the first
// success. Strategies are never run concurrently for the same URL.
//
// # Browser lifecycle
//
// Browser strategies launch an isolated browser per Fetch call and release
// it on every exit path, including timeout and cancellation. A shared
// BrowserLimiter caps how many browsers run at once.
package fetch
