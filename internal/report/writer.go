package report

import (
	"io"

	"github.com/nao1215/mdcrawl/internal/model"
)

// Writer renders run reports.
type Writer interface {
	// Write renders report and returns the number of bytes written.
	Write(report *model.RunReport) (int, error)
}

// MultiWriter fans a report out to several Writers.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write writes to each Writer in order and stops at the first error.
func (m *MultiWriter) Write(report *model.RunReport) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(report)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// statusOrder is the display order of page statuses in every format.
var statusOrder = []model.PageStatus{
	model.StatusWritten,
	model.StatusDuplicate,
	model.StatusEmpty,
	model.StatusFetchFailed,
	model.StatusWriteFailed,
}

// runState is the one-word outcome of a run.
func runState(r *model.RunReport) string {
	switch {
	case r.Canceled:
		return "canceled"
	case len(r.Errors) > 0:
		return "completed with errors"
	default:
		return "complete"
	}
}
