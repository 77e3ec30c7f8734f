package fetch

import (
	"errors"
	"fmt"
)

// Strategy failure causes.
var (
	// ErrNoContent is returned when a page yields no text after normalization.
	ErrNoContent = errors.New("no content extracted")

	// ErrNoHTML is returned when a strategy cannot supply the raw HTML the
	// crawler needs for link discovery.
	ErrNoHTML = errors.New("no HTML returned")

	// ErrUnexpectedStatus is returned for non-2xx HTTP responses.
	ErrUnexpectedStatus = errors.New("unexpected HTTP status")

	// ErrNotHTML is returned when the response is not an HTML document.
	ErrNotHTML = errors.New("response is not HTML")

	// ErrNavigationTimeout is returned when a browser navigation exceeds its
	// bound. The chain treats it like any other strategy failure.
	ErrNavigationTimeout = errors.New("navigation timed out")

	// ErrNoStrategies is returned by a Chain with nothing to try.
	ErrNoStrategies = errors.New("no fetch strategies configured")
)

// Error reports that every strategy failed for a URL.
// Strategy names the last strategy attempted; Err joins the error of every
// attempt in order, so errors.Is and errors.As see each cause.
type Error struct {
	URL      string
	Strategy string
	Err      error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("fetch %s: all strategies failed (last %s): %v", e.URL, e.Strategy, e.Err)
}

// Unwrap returns the joined attempt errors.
func (e *Error) Unwrap() error {
	return e.Err
}

// attemptError tags a strategy failure with the strategy name.
type attemptError struct {
	strategy string
	err      error
}

func (e *attemptError) Error() string {
	return e.strategy + ": " + e.err.Error()
}

func (e *attemptError) Unwrap() error {
	return e.err
}
