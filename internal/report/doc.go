// Package report renders a finished model.RunReport for people and tools.
//
//   - SimpleWriter: plain text for the terminal
//   - MarkdownWriter: a markdown document with a mermaid status chart
//   - JSONWriter: the report plus counts and error messages as JSON
//
// All writers implement Writer and can be combined with MultiWriter, which
// is how the scrape command prints to stdout and a report file at once.
package report
