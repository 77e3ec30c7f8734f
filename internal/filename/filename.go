// Package filename maps crawl seed URLs to output file paths.
package filename

import (
	"path/filepath"
	"regexp"
	"strings"
)

// Suffix is appended to every mapped file name.
const Suffix = "_content.md"

// whitespaceRegex matches any whitespace run in a URL.
var whitespaceRegex = regexp.MustCompile(`\s`)

// replacements are applied in order after the scheme is stripped.
// "www" is dropped last so that "www." has already become "www_".
var replacements = []struct {
	old string
	new string
}{
	{"/", "-"},
	{".com", ""},
	{".inc", ""},
	{".", "_"},
	{"www", ""},
}

// For returns the output path for rawURL under dir.
//
// The mapping is a pure string transform: whitespace becomes '_', the
// http(s) scheme is dropped, path separators become '-', the ".com" and
// ".inc" substrings and "www" are removed, remaining dots become '_', and
// Suffix is appended. Distinct URLs may collide; the same URL always maps
// to the same path.
func For(rawURL, dir string) string {
	name := whitespaceRegex.ReplaceAllString(rawURL, "_")
	name = strings.TrimPrefix(name, "https://")
	name = strings.TrimPrefix(name, "http://")
	for _, r := range replacements {
		name = strings.ReplaceAll(name, r.old, r.new)
	}
	return filepath.Join(dir, name+Suffix)
}
