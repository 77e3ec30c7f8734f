package summarize

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// TargetExt is appended to the user supplied name to form the output file.
const TargetExt = ".txt"

var (
	// ErrInvalidRequest is returned for a request missing a field.
	ErrInvalidRequest = errors.New("invalid summarize request")

	// ErrNoOutput is returned when the collaborator did not write the
	// target file.
	ErrNoOutput = errors.New("summarizer produced no output file")

	// ErrMultipleOutputs is returned when the collaborator wrote more than
	// one file into the output directory.
	ErrMultipleOutputs = errors.New("summarizer produced more than one output file")
)

// Request is one summarization job.
type Request struct {
	// InputPath is the plain text file to summarize.
	InputPath string

	// OutputDir receives the summary.
	OutputDir string

	// Name is the user supplied base name of the output file.
	Name string
}

// Target returns the full path of the expected output file.
func (r Request) Target() string {
	return filepath.Join(r.OutputDir, TargetFilename(r.Name))
}

// Validate checks that every field is set, that Name is a bare file name
// and that InputPath is a regular file.
func (r Request) Validate() error {
	switch {
	case r.InputPath == "":
		return fmt.Errorf("%w: input path is empty", ErrInvalidRequest)
	case r.OutputDir == "":
		return fmt.Errorf("%w: output directory is empty", ErrInvalidRequest)
	case strings.TrimSpace(r.Name) == "":
		return fmt.Errorf("%w: name is empty", ErrInvalidRequest)
	case strings.ContainsAny(r.Name, `/\`) || r.Name == "." || r.Name == "..":
		return fmt.Errorf("%w: name %q must not contain a path", ErrInvalidRequest, r.Name)
	}

	info, err := os.Stat(r.InputPath)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%w: %s is not a regular file", ErrInvalidRequest, r.InputPath)
	}
	return nil
}

// TargetFilename returns the output file name for name.
func TargetFilename(name string) string {
	return name + TargetExt
}

// Summarizer turns an input text file into one markdown summary.
type Summarizer interface {
	// Summarize runs the job and returns the path of the written summary.
	Summarize(ctx context.Context, req Request) (string, error)
}
