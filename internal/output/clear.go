package output

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// MarkdownExt is the extension of the files ClearMarkdown removes.
const MarkdownExt = ".md"

// ClearMarkdown deletes every .md file under dir, recursively, and returns
// the removed paths. The extension match is case-sensitive, so .MD is kept. Other files and the directories themselves are kept.
// A missing dir is not an error. A file that cannot be removed does not stop
// the walk; all such failures are returned joined.
func ClearMarkdown(dir string, logger *slog.Logger) ([]string, error) {
	if logger == nil {
		logger = slog.Default()
	}

	removed := make([]string, 0)
	var errs []error

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir && errors.Is(err, fs.ErrNotExist) {
				return fs.SkipAll
			}
			errs = append(errs, err)
			return nil
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), MarkdownExt) {
			return nil
		}

		if err := os.Remove(path); err != nil {
			errs = append(errs, fmt.Errorf("remove %s: %w", path, err))
			return nil
		}
		logger.Info("deleted", "path", path)
		removed = append(removed, path)
		return nil
	})
	if err != nil {
		errs = append(errs, err)
	}

	return removed, errors.Join(errs...)
}
