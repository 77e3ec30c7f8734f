// Package config provides configuration structures and utilities for mdcrawl.
// It defines the crawl, fetch, output and report options, and loads per-site
// overrides from the .mdcrawl YAML file.
package config
