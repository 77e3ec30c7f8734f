package crawler

import (
	"errors"
	"fmt"
)

// ErrInvalidSeed is returned when the seed is not an absolute http(s) URL.
var ErrInvalidSeed = errors.New("invalid seed URL")

// LinkResolutionError reports an href that could not be resolved against
// the page it appeared on. The link is skipped; the page is not failed.
type LinkResolutionError struct {
	Base string
	Href string
	Err  error
}

// Error implements the error interface.
func (e *LinkResolutionError) Error() string {
	return fmt.Sprintf("resolve %q against %s: %v", e.Href, e.Base, e.Err)
}

// Unwrap returns the parse error.
func (e *LinkResolutionError) Unwrap() error {
	return e.Err
}
