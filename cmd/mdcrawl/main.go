// Package main provides the entry point for the mdcrawl CLI.
//
// mdcrawl crawls a documentation site from a seed URL and appends the
// readable text of every same-origin page to one markdown file per seed.
//
// Usage:
//
//	mdcrawl scrape <seed-url>
//	mdcrawl scrape --list <file>
//	mdcrawl clear [dir]
//
// See --help for all available options.
package main

func main() {
	Execute()
}
