package output

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestAppender tests incremental block writes.
func TestAppender(t *testing.T) {
	t.Parallel()

	t.Run("writes text then separator", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "site_content.md")
		a := NewAppender()

		if err := a.Append("Hello", path); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		got, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("failed to read output: %v", err)
		}
		want := "Hello\n" + strings.Repeat("-", 100) + "\n"
		if string(got) != want {
			t.Errorf("got %q, want %q", got, want)
		}
	})

	t.Run("appends in call order and never truncates", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "site_content.md")
		if err := os.WriteFile(path, []byte("previous run\n"), FileMode); err != nil {
			t.Fatalf("failed to seed file: %v", err)
		}

		a := NewAppender()
		for _, text := range []string{"one", "two"} {
			if err := a.Append(text, path); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		}

		got, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("failed to read output: %v", err)
		}
		want := "previous run\n" + Block("one") + Block("two")
		if string(got) != want {
			t.Errorf("got %q, want %q", got, want)
		}
	})

	t.Run("concurrent appends never interleave", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "site_content.md")
		a := NewAppender()

		const workers = 16
		text := strings.Repeat("x", 4096)
		var wg sync.WaitGroup
		for range workers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if err := a.Append(text, path); err != nil {
					t.Errorf("unexpected error: %v", err)
				}
			}()
		}
		wg.Wait()

		got, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("failed to read output: %v", err)
		}
		if string(got) != strings.Repeat(Block(text), workers) {
			t.Error("blocks were interleaved or lost")
		}
	})

	t.Run("missing directory returns WriteError", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "missing", "site_content.md")
		err := NewAppender().Append("Hello", path)

		var writeErr *WriteError
		if !errors.As(err, &writeErr) {
			t.Fatalf("expected *WriteError, got %T (%v)", err, err)
		}
		if writeErr.Path != path {
			t.Errorf("expected path %q, got %q", path, writeErr.Path)
		}
		if !errors.Is(err, os.ErrNotExist) {
			t.Error("expected the cause to unwrap to os.ErrNotExist")
		}
	})
}

// TestPrepare tests output directory creation.
func TestPrepare(t *testing.T) {
	t.Parallel()

	t.Run("creates nested directories", func(t *testing.T) {
		t.Parallel()

		dir := filepath.Join(t.TempDir(), "a", "b")
		if err := Prepare(dir); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Errorf("expected directory to exist, err=%v", err)
		}
	})

	t.Run("fails when a file is in the way", func(t *testing.T) {
		t.Parallel()

		file := filepath.Join(t.TempDir(), "file")
		if err := os.WriteFile(file, nil, FileMode); err != nil {
			t.Fatalf("failed to seed file: %v", err)
		}
		if err := Prepare(filepath.Join(file, "sub")); err == nil {
			t.Error("expected error")
		}
	})
}

// TestWriteFile tests whole-file writes.
func TestWriteFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "agg", "site.txt")
	if err := WriteFile("first", path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := WriteFile("second", path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read: %v", err)
	}
	if string(got) != "second" {
		t.Errorf("expected file to be replaced, got %q", got)
	}
}

// TestTruncate tests emptying an output file before a fresh run.
func TestTruncate(t *testing.T) {
	t.Parallel()

	t.Run("empties existing file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "site.md")
		a := NewAppender()
		if err := a.Append("stale", path); err != nil {
			t.Fatal(err)
		}
		if err := Truncate(path); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := a.Append("fresh", path); err != nil {
			t.Fatal(err)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if string(data) != Block("fresh") {
			t.Errorf("unexpected content %q", data)
		}
	})

	t.Run("creates missing file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "new.md")
		if err := Truncate(path); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		info, err := os.Stat(path)
		if err != nil || info.Size() != 0 {
			t.Errorf("expected empty file, got %v %v", info, err)
		}
	})

	t.Run("missing directory is a WriteError", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "nope", "site.md")
		var writeErr *WriteError
		if err := Truncate(path); !errors.As(err, &writeErr) {
			t.Errorf("expected *WriteError, got %v", err)
		}
	})
}

// TestClearMarkdown tests the reset operation.
func TestClearMarkdown(t *testing.T) {
	t.Parallel()

	t.Run("removes only markdown files recursively", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		files := map[string]bool{
			"a_content.md":        true,
			"nested/b_content.md": true,
			"nested/deep/c.md":    true,
			"nested/C.MD":         false,
			"upper.Md":            false,
			"keep.txt":            false,
			"nested/keep.json":    false,
		}
		for name := range files {
			path := filepath.Join(dir, name)
			if err := os.MkdirAll(filepath.Dir(path), DirMode); err != nil {
				t.Fatalf("mkdir: %v", err)
			}
			if err := os.WriteFile(path, []byte("x"), FileMode); err != nil {
				t.Fatalf("write: %v", err)
			}
		}

		removed, err := ClearMarkdown(dir, discardLogger())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(removed) != 3 {
			t.Errorf("expected 3 removed, got %d: %v", len(removed), removed)
		}
		sort.Strings(removed)

		for name, shouldRemove := range files {
			_, statErr := os.Stat(filepath.Join(dir, name))
			exists := statErr == nil
			if shouldRemove && exists {
				t.Errorf("%s should have been removed", name)
			}
			if !shouldRemove && !exists {
				t.Errorf("%s should have been kept", name)
			}
		}
		if _, err := os.Stat(filepath.Join(dir, "nested", "deep")); err != nil {
			t.Error("directories should be kept")
		}
	})

	t.Run("missing directory is not an error", func(t *testing.T) {
		t.Parallel()

		removed, err := ClearMarkdown(filepath.Join(t.TempDir(), "nope"), discardLogger())
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if len(removed) != 0 {
			t.Errorf("expected nothing removed, got %v", removed)
		}
	})
}
