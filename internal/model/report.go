package model

import (
	"errors"
	"time"
)

// RunReport is the result of one scrape run.
//
// Text is the aggregate of every accepted page text, each followed by a
// newline, in processing order. It is what was written to OutputPath minus
// the separator lines.
type RunReport struct {
	// Seed is the URL the run started from.
	Seed string `json:"seed"`

	// OutputPath is the markdown file the run appended to.
	OutputPath string `json:"output_path"`

	// StartedAt is when the run began.
	StartedAt time.Time `json:"started_at"`

	// FinishedAt is when the run ended.
	FinishedAt time.Time `json:"finished_at"`

	// Pages holds one record per fetched URL in processing order.
	Pages []PageRecord `json:"pages"`

	// Text is the aggregate text of the run.
	Text string `json:"-"`

	// Errors collects the non-fatal errors of the run: fetch failures and
	// write failures. They are reported, never returned as the run error.
	Errors []error `json:"-"`

	// Canceled is true when the run stopped before the frontier drained.
	Canceled bool `json:"canceled"`
}

// NewRunReport creates a report for seed writing to outputPath.
func NewRunReport(seed, outputPath string) *RunReport {
	return &RunReport{
		Seed:       seed,
		OutputPath: outputPath,
		StartedAt:  time.Now(),
		Pages:      make([]PageRecord, 0),
	}
}

// AddPage records the outcome of one processed URL.
func (r *RunReport) AddPage(p PageRecord) {
	r.Pages = append(r.Pages, p)
}

// AddError collects a non-fatal error.
func (r *RunReport) AddError(err error) {
	if err != nil {
		r.Errors = append(r.Errors, err)
	}
}

// Finish stamps the end time.
func (r *RunReport) Finish() {
	r.FinishedAt = time.Now()
}

// Duration returns how long the run took. It is zero until Finish is called.
func (r *RunReport) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Count returns the number of pages with the given status.
func (r *RunReport) Count(status PageStatus) int {
	n := 0
	for _, p := range r.Pages {
		if p.Status == status {
			n++
		}
	}
	return n
}

// Fetched returns the number of URLs that were fetched, successfully or not.
func (r *RunReport) Fetched() int {
	return len(r.Pages)
}

// Err joins the collected errors. It returns nil when the run was clean.
func (r *RunReport) Err() error {
	return errors.Join(r.Errors...)
}

// ErrorMessages returns the collected errors as strings.
func (r *RunReport) ErrorMessages() []string {
	msgs := make([]string, 0, len(r.Errors))
	for _, err := range r.Errors {
		msgs = append(msgs, err.Error())
	}
	return msgs
}
