// Package textnorm turns crawled markdown into plain, deduplicated text.
//
// Crawled pages are dominated by navigation chrome, ad slots and link
// noise. Normalize applies a fixed, deterministic sequence of regex and
// line-level filters so the same input always yields the same output,
// which the crawler relies on for content fingerprinting.
package textnorm
