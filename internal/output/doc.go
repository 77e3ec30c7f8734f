// Package output persists crawl results on disk.
//
// The Appender adds one block per accepted page to a run's markdown file.
// Each block is the page text, a newline, a separator line of 100 hyphens
// and a newline. Every Append opens, writes, syncs and closes the file, so
// the blocks written before a crash survive it.
//
// ClearMarkdown is the explicit reset operation that deletes the markdown
// files a previous run left behind. It never runs implicitly.
package output
