// Package pipeline wires configuration, fetch strategies, the crawler, the
// output writer and the journal into one scrape run per seed.
//
// A run is a short sequence of steps: prepare the output directory, crawl,
// then write the aggregate text. Scraper builds and executes that pipeline
// for a seed; BatchProcessor runs several seeds with bounded concurrency,
// each with its own state.
package pipeline
