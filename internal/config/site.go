package config

import (
	"fmt"
	"maps"
	"net/url"
	"strings"
	"time"
)

// SiteConfig holds the overrides for one host.
type SiteConfig struct {
	// Cookie is sent with every request of every strategy, the browser
	// fallbacks included. It replaces any Cookie entry in Headers.
	// Format: "name=value" or "name1=value1; name2=value2"
	Cookie string `yaml:"cookie,omitempty"`

	// Headers are custom HTTP headers sent by every strategy.
	Headers map[string]string `yaml:"headers,omitempty"`

	// Depth overrides the global crawl depth for this site.
	// If nil, the global MaxDepth is used. Zero fetches the seed only.
	Depth *int `yaml:"depth,omitempty"`

	// MaxPages overrides the global page limit for this site.
	MaxPages int `yaml:"maxPages,omitempty"`

	// Strategies overrides the strategy priority, e.g. browser first for
	// sites that render everything with JavaScript.
	Strategies []string `yaml:"strategies,omitempty"`

	// IgnorePatterns are URL path patterns to skip during crawling.
	// Patterns are matched against the URL path using glob syntax.
	IgnorePatterns []string `yaml:"ignorePatterns,omitempty"`

	// FollowPatterns are URL path patterns to follow during crawling.
	// If specified, only URLs matching these patterns are crawled.
	FollowPatterns []string `yaml:"followPatterns,omitempty"`
}

// File represents the structure of the .mdcrawl configuration file.
type File struct {
	// Sites maps hosts to their overrides.
	// Keys are hosts as they appear in URLs (e.g., "docs.example.com").
	Sites map[string]SiteConfig `yaml:"sites,omitempty"`

	// Defaults apply to every site unless the site overrides them.
	Defaults SiteConfig `yaml:"defaults,omitempty"`

	// Summarizer configures `mdcrawl summarize`.
	Summarizer SummarizerConfig `yaml:"summarizer,omitempty"`
}

// SummarizerConfig describes the external summarizer command.
type SummarizerConfig struct {
	// Command is the argv of the agent. Arguments may contain the
	// placeholders {input}, {output_dir} and {target}.
	Command []string `yaml:"command,omitempty"`

	// OutputDir is where the summary is written. Empty means
	// DefaultSummaryDir.
	OutputDir string `yaml:"outputDir,omitempty"`

	// Timeout bounds one summarizer run, e.g. "10m". Empty means no bound.
	Timeout string `yaml:"timeout,omitempty"`
}

// GetSiteConfig returns the merged configuration for host.
// A nil File yields the zero SiteConfig.
func (cf *File) GetSiteConfig(host string) SiteConfig {
	if cf == nil {
		return SiteConfig{}
	}

	result := cf.Defaults
	if len(cf.Defaults.Headers) > 0 {
		result.Headers = maps.Clone(cf.Defaults.Headers)
	}

	siteConfig, ok := cf.Sites[strings.ToLower(host)]
	if !ok {
		return result
	}

	if siteConfig.Cookie != "" {
		result.Cookie = siteConfig.Cookie
	}
	if siteConfig.Depth != nil {
		result.Depth = siteConfig.Depth
	}
	if siteConfig.MaxPages != 0 {
		result.MaxPages = siteConfig.MaxPages
	}
	if len(siteConfig.Headers) > 0 {
		if result.Headers == nil {
			result.Headers = make(map[string]string)
		}
		maps.Copy(result.Headers, siteConfig.Headers)
	}
	if len(siteConfig.Strategies) > 0 {
		result.Strategies = siteConfig.Strategies
	}
	if len(siteConfig.IgnorePatterns) > 0 {
		result.IgnorePatterns = siteConfig.IgnorePatterns
	}
	if len(siteConfig.FollowPatterns) > 0 {
		result.FollowPatterns = siteConfig.FollowPatterns
	}

	return result
}

// ForURL returns the merged configuration for the host of rawURL.
func (cf *File) ForURL(rawURL string) SiteConfig {
	u, err := url.Parse(rawURL)
	if err != nil {
		return cf.GetSiteConfig("")
	}
	return cf.GetSiteConfig(u.Host)
}

// Validate checks the strategy lists in the file.
func (cf *File) Validate() error {
	if cf == nil {
		return nil
	}
	if len(cf.Defaults.Strategies) > 0 {
		if err := validateStrategies(cf.Defaults.Strategies); err != nil {
			return err
		}
	}
	for _, site := range cf.Sites {
		if len(site.Strategies) > 0 {
			if err := validateStrategies(site.Strategies); err != nil {
				return err
			}
		}
	}
	if _, err := cf.Summarizer.TimeoutDuration(); err != nil {
		return err
	}
	return nil
}

// TimeoutDuration parses Timeout. An empty Timeout is zero.
func (s SummarizerConfig) TimeoutDuration() (time.Duration, error) {
	if s.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s.Timeout)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSummarizerTimeout, s.Timeout)
	}
	return d, nil
}

// Apply returns a copy of c with the overrides of site applied.
// Only scalar crawl limits and the strategy list are carried on Config;
// headers, cookie and patterns are read from the SiteConfig directly.
func (c *Config) Apply(site SiteConfig) *Config {
	out := *c
	if site.Depth != nil {
		out.MaxDepth = *site.Depth
	}
	if site.MaxPages != 0 {
		out.MaxPages = site.MaxPages
	}
	if len(site.Strategies) > 0 {
		out.Strategies = site.Strategies
	}
	return &out
}
