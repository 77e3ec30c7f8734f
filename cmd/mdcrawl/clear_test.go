package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRunClearCmd(t *testing.T) {
	t.Parallel()

	t.Run("deletes markdown files only", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		files := map[string]bool{
			"a_content.md":     true,
			"sub/b_content.md": true,
			"notes.txt":        false,
		}
		for name := range files {
			path := filepath.Join(dir, name)
			if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
				t.Fatal(err)
			}
			if err := os.WriteFile(path, []byte("x"), 0o600); err != nil {
				t.Fatal(err)
			}
		}

		var out bytes.Buffer
		cmd := NewClearCmd()
		cmd.SetOut(&out)
		cmd.SetErr(io.Discard)
		cmd.SetArgs([]string{dir})
		if err := cmd.Execute(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		for name, deleted := range files {
			_, err := os.Stat(filepath.Join(dir, name))
			if deleted && err == nil {
				t.Errorf("expected %s to be deleted", name)
			}
			if !deleted && err != nil {
				t.Errorf("expected %s to be kept: %v", name, err)
			}
		}
		if got := strings.Count(out.String(), "deleted: "); got != 2 {
			t.Errorf("expected 2 deleted lines, got %q", out.String())
		}
		if _, err := os.Stat(filepath.Join(dir, "sub")); err != nil {
			t.Error("expected directories to be kept")
		}
	})

	t.Run("missing directory", func(t *testing.T) {
		t.Parallel()

		var out bytes.Buffer
		cmd := NewClearCmd()
		cmd.SetOut(&out)
		cmd.SetErr(io.Discard)
		cmd.SetArgs([]string{filepath.Join(t.TempDir(), "none")})
		if err := cmd.Execute(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out.String(), "no markdown files") {
			t.Errorf("unexpected output %q", out.String())
		}
	})
}
