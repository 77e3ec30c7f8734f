package model

import (
	"encoding/hex"

	"golang.org/x/crypto/sha3"
)

// PageStatus is the outcome of processing one URL.
type PageStatus string

const (
	// StatusWritten means the text was new and appended to the output file.
	StatusWritten PageStatus = "written"

	// StatusDuplicate means another URL in the same run produced identical
	// text, so nothing was appended.
	StatusDuplicate PageStatus = "duplicate"

	// StatusEmpty means the fetch succeeded but yielded no text to append.
	// Links are still followed.
	StatusEmpty PageStatus = "empty"

	// StatusFetchFailed means every fetch strategy failed.
	StatusFetchFailed PageStatus = "fetch_failed"

	// StatusWriteFailed means the text was new but the append failed.
	StatusWriteFailed PageStatus = "write_failed"
)

// PageRecord describes what happened to one processed URL.
// A record exists only for URLs that were actually fetched; entries skipped
// because they were already visited or too deep produce none.
type PageRecord struct {
	// URL is the absolute URL that was fetched.
	URL string `json:"url"`

	// Depth is the link distance from the seed. The seed has depth 0.
	Depth int `json:"depth"`

	// Strategy names the fetch strategy that succeeded.
	// Empty when every strategy failed.
	Strategy string `json:"strategy,omitempty"`

	// Status is the outcome.
	Status PageStatus `json:"status"`

	// Fingerprint is the SHA3-256 of the normalized text, hex encoded.
	Fingerprint string `json:"fingerprint,omitempty"`

	// Bytes is the length of the normalized text.
	Bytes int `json:"bytes"`

	// Links is the number of same-origin links pushed to the frontier.
	Links int `json:"links"`

	// Error is the failure message for failed statuses.
	Error string `json:"error,omitempty"`
}

// Fingerprint returns the hex encoded SHA3-256 of text.
// It is the content dedup key of a run.
func Fingerprint(text string) string {
	sum := sha3.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// Failed reports whether the record is a failure of any kind.
func (p PageRecord) Failed() bool {
	return p.Status == StatusFetchFailed || p.Status == StatusWriteFailed
}
