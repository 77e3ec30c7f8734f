// Package database keeps the crawl journal, an SQLite file recording every
// scrape run and the pages it visited.
//
// The journal is append-only from the crawler's point of view: pages are
// written through an observer as the crawl proceeds and nothing in a run
// ever reads them back. It exists for `mdcrawl history` and for auditing
// what a run fetched, deduplicated or failed on.
//
// The driver is modernc.org/sqlite, which needs no cgo.
package database
