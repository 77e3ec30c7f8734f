package output

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Separator is the line written after every block.
var Separator = strings.Repeat("-", 100)

// FileMode is the permission used for files created by this package.
const FileMode = 0o644

// DirMode is the permission used for directories created by this package.
const DirMode = 0o755

// Appender appends blocks to output files.
// It is safe for concurrent use; appends are serialized so blocks from
// concurrent workers never interleave.
type Appender struct {
	mu sync.Mutex
}

// NewAppender creates an Appender.
func NewAppender() *Appender {
	return &Appender{}
}

// Append writes text followed by the separator line to path, creating the
// file if needed. The file is synced and closed before Append returns.
// Failures are returned as *WriteError.
func (a *Appender) Append(text, path string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	f, err := os.OpenFile(filepath.Clean(path), os.O_APPEND|os.O_CREATE|os.O_WRONLY, FileMode)
	if err != nil {
		return &WriteError{Path: path, Err: err}
	}

	if _, err := f.WriteString(Block(text)); err != nil {
		_ = f.Close() //nolint:errcheck // the write error is the one worth reporting
		return &WriteError{Path: path, Err: err}
	}
	if err := f.Sync(); err != nil {
		_ = f.Close() //nolint:errcheck // the sync error is the one worth reporting
		return &WriteError{Path: path, Err: err}
	}
	if err := f.Close(); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	return nil
}

// Block returns the bytes Append writes for text.
func Block(text string) string {
	return text + "\n" + Separator + "\n"
}

// Prepare creates dir and its parents. A run cannot start when this fails.
func Prepare(dir string) error {
	if err := os.MkdirAll(dir, DirMode); err != nil {
		return fmt.Errorf("create output directory %s: %w", dir, err)
	}
	return nil
}

// WriteFile replaces the content of path with text.
// It is used for the aggregate text handed to the summarizer.
func WriteFile(text, path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := Prepare(dir); err != nil {
			return &WriteError{Path: path, Err: err}
		}
	}
	if err := os.WriteFile(filepath.Clean(path), []byte(text), FileMode); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	return nil
}

// Truncate empties path, creating it when missing. Appends after it start
// from an empty file.
func Truncate(path string) error {
	f, err := os.OpenFile(filepath.Clean(path), os.O_CREATE|os.O_TRUNC|os.O_WRONLY, FileMode)
	if err != nil {
		return &WriteError{Path: path, Err: err}
	}
	if err := f.Close(); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	return nil
}
