// Package crawler traverses one website from a seed URL.
//
// # Architecture
//
// The Spider coordinates a run. It pops frontier entries, fetches each page
// through a fetch.Fetcher, drops text it has already seen in the run, hands
// new text to an Appender, and pushes the same-origin links it finds back on
// the frontier until the depth bound is reached.
//
// # Components
//
//   - Spider: the run loop and its options
//   - Parser: anchor extraction from the HTML a fetch returned
//   - frontier: the LIFO or FIFO queue of pending entries
//
// # Run state
//
// The visited set, content fingerprints and frontier are created per Crawl
// call and dropped when it returns. A URL may be pushed many times but is
// fetched at most once; the visited check and insert happen under one lock.
//
// # Usage
//
//	spider := crawler.NewSpider(chain, output.NewAppender(), crawler.WithMaxDepth(2))
//	report, err := spider.Crawl(ctx, "https://example.com/", "markdown/_example-_content.md")
package crawler
