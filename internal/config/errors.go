package config

import (
	"errors"
	"fmt"
	"strings"
)

// Configuration validation errors.
// These errors are returned by Config.Validate() and can be matched with
// errors.Is.
var (
	// ErrNoTarget is returned when no seed URL is specified.
	ErrNoTarget = errors.New("no target specified: provide a seed URL or use --list")

	// ErrNoOutputDir is returned when the output directory is empty.
	ErrNoOutputDir = errors.New("no output directory specified")

	// ErrInvalidDepth is returned when the crawl depth is negative.
	ErrInvalidDepth = errors.New("invalid depth: must be non-negative")

	// ErrInvalidMaxPages is returned when the page limit is negative.
	// Use 0 for no limit.
	ErrInvalidMaxPages = errors.New("invalid max pages: must be non-negative")

	// ErrInvalidFrontierOrder is returned for an order other than lifo or fifo.
	ErrInvalidFrontierOrder = errors.New("invalid frontier order: must be lifo or fifo")

	// ErrInvalidSummarizerTimeout is returned for an unparsable summarizer
	// timeout in the config file.
	ErrInvalidSummarizerTimeout = errors.New("invalid summarizer timeout")

	// ErrInvalidConcurrency is returned when the worker count is not positive.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrNoStrategies is returned when the strategy list is empty.
	ErrNoStrategies = errors.New("no fetch strategies configured")

	// ErrUnknownStrategy is matched by every *UnknownStrategyError.
	ErrUnknownStrategy = errors.New("unknown fetch strategy")

	// ErrInvalidMaxBrowsers is returned when the browser cap is not positive.
	ErrInvalidMaxBrowsers = errors.New("invalid max browsers: must be positive")

	// ErrInvalidTimeout is returned when a per-request timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidRunTimeout is returned when the run timeout is negative.
	// Use 0 for no bound.
	ErrInvalidRunTimeout = errors.New("invalid run timeout: must be non-negative")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrConflictingProxy is returned when both --proxy and --tor are given.
	ErrConflictingProxy = errors.New("conflicting proxy settings: --proxy and --tor cannot be used together")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")
)

// UnknownStrategyError reports a strategy name that is not recognized or
// appears twice.
type UnknownStrategyError struct {
	Name      string
	Duplicate bool
}

// Error implements the error interface.
func (e *UnknownStrategyError) Error() string {
	if e.Duplicate {
		return fmt.Sprintf("fetch strategy %q listed twice", e.Name)
	}
	return fmt.Sprintf("unknown fetch strategy %q (known: %s)", e.Name, strings.Join(KnownStrategies(), ", "))
}

// Is makes errors.Is(err, ErrUnknownStrategy) true.
func (e *UnknownStrategyError) Is(target error) bool {
	return target == ErrUnknownStrategy
}
