package database

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/nao1215/mdcrawl/internal/model"
)

// setupTestJournal creates a journal in a temporary directory.
func setupTestJournal(t *testing.T) *Journal {
	t.Helper()

	j, err := Open(filepath.Join(t.TempDir(), "mdcrawl.db"), DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open journal: %v", err)
	}
	t.Cleanup(func() { _ = j.Close() })
	return j
}

// TestOpen tests journal creation and the CreateIfNotExists switch.
func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates missing directories", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "a", "b", "mdcrawl.db")
		j, err := Open(path, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open journal: %v", err)
		}
		defer j.Close()

		if _, err := os.Stat(path); err != nil {
			t.Errorf("journal file was not created: %v", err)
		}
		if j.Path() != path {
			t.Errorf("Path() = %q, want %q", j.Path(), path)
		}
	})

	t.Run("missing journal without create", func(t *testing.T) {
		t.Parallel()

		dir := filepath.Join(t.TempDir(), "none")
		_, err := Open(filepath.Join(dir, "mdcrawl.db"), Options{})
		if !errors.Is(err, ErrJournalNotFound) {
			t.Fatalf("expected ErrJournalNotFound, got %v", err)
		}
		if _, statErr := os.Stat(dir); !os.IsNotExist(statErr) {
			t.Error("directory should not be created")
		}
	})

	t.Run("reopens existing journal", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "mdcrawl.db")
		j1, err := Open(path, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to create journal: %v", err)
		}
		if _, err := j1.StartRun(context.Background(), "https://example.com/", "out.md", time.Now()); err != nil {
			t.Fatalf("StartRun: %v", err)
		}
		_ = j1.Close()

		j2, err := Open(path, Options{EnableWAL: true})
		if err != nil {
			t.Fatalf("failed to reopen journal: %v", err)
		}
		defer j2.Close()

		runs, err := j2.ListRuns(context.Background(), "", 0)
		if err != nil {
			t.Fatalf("ListRuns: %v", err)
		}
		if len(runs) != 1 {
			t.Errorf("expected 1 run after reopen, got %d", len(runs))
		}
	})
}

// TestDefaultOptions tests the default option values.
func TestDefaultOptions(t *testing.T) {
	t.Parallel()

	opts := DefaultOptions()
	if !opts.CreateIfNotExists || !opts.EnableWAL {
		t.Errorf("unexpected defaults %+v", opts)
	}
}

// TestJournalRunLifecycle tests start, page records and finish of a run.
func TestJournalRunLifecycle(t *testing.T) {
	t.Parallel()

	j := setupTestJournal(t)
	ctx := context.Background()

	report := model.NewRunReport("https://example.com/", "markdown/example_com.md")
	runID, err := j.StartRun(ctx, report.Seed, report.OutputPath, report.StartedAt)
	if err != nil {
		t.Fatalf("StartRun: %v", err)
	}

	pages := []model.PageRecord{
		{URL: "https://example.com/", Depth: 0, Strategy: "http", Status: model.StatusWritten, Fingerprint: "aa", Bytes: 10, Links: 2},
		{URL: "https://example.com/a", Depth: 1, Strategy: "http", Status: model.StatusDuplicate, Fingerprint: "aa", Bytes: 10},
		{URL: "https://example.com/b", Depth: 1, Status: model.StatusFetchFailed, Error: "all strategies failed"},
	}
	for _, p := range pages {
		if err := j.SavePage(ctx, runID, p); err != nil {
			t.Fatalf("SavePage: %v", err)
		}
		report.AddPage(p)
	}
	report.AddError(errors.New("all strategies failed"))
	report.Finish()

	if err := j.FinishRun(ctx, runID, report); err != nil {
		t.Fatalf("FinishRun: %v", err)
	}

	got, err := j.Pages(ctx, runID)
	if err != nil {
		t.Fatalf("Pages: %v", err)
	}
	if len(got) != len(pages) {
		t.Fatalf("expected %d pages, got %d", len(pages), len(got))
	}
	for i := range pages {
		if got[i] != pages[i] {
			t.Errorf("page %d = %+v, want %+v", i, got[i], pages[i])
		}
	}

	runs, err := j.ListRuns(ctx, "https://example.com/", 0)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
	run := runs[0]
	if run.Written != 1 || run.Duplicates != 1 || run.Failed != 1 || run.Errors != 1 {
		t.Errorf("unexpected totals %+v", run)
	}
	if run.OutputPath != "markdown/example_com.md" {
		t.Errorf("unexpected output path %q", run.OutputPath)
	}
	if run.StartedAt.IsZero() || run.FinishedAt.IsZero() {
		t.Errorf("expected timestamps, got %+v", run)
	}
	if run.Canceled {
		t.Error("run should not be canceled")
	}
}

// TestJournalListRuns tests filtering and ordering of the history.
func TestJournalListRuns(t *testing.T) {
	t.Parallel()

	j := setupTestJournal(t)
	ctx := context.Background()

	seeds := []string{"https://a.example/", "https://b.example/", "https://a.example/"}
	for _, s := range seeds {
		if _, err := j.StartRun(ctx, s, "out.md", time.Now()); err != nil {
			t.Fatalf("StartRun: %v", err)
		}
	}

	tests := []struct {
		name  string
		seed  string
		limit int
		want  int
	}{
		{name: "all", want: 3},
		{name: "by seed", seed: "https://a.example/", want: 2},
		{name: "limit", limit: 1, want: 1},
		{name: "unknown seed", seed: "https://c.example/", want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			runs, err := j.ListRuns(ctx, tt.seed, tt.limit)
			if err != nil {
				t.Fatalf("ListRuns: %v", err)
			}
			if len(runs) != tt.want {
				t.Errorf("expected %d runs, got %d", tt.want, len(runs))
			}
			for i := 1; i < len(runs); i++ {
				if runs[i-1].ID < runs[i].ID {
					t.Error("expected newest first")
				}
			}
		})
	}
}

// TestJournalObserver tests concurrent saves through the observer.
func TestJournalObserver(t *testing.T) {
	t.Parallel()

	j := setupTestJournal(t)
	ctx, cancel := context.WithCancel(context.Background())

	runID, err := j.StartRun(ctx, "https://example.com/", "out.md", time.Now())
	if err != nil {
		t.Fatalf("StartRun: %v", err)
	}
	observe := j.Observer(ctx, runID, nil)

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			observe(model.PageRecord{URL: "https://example.com/" + string(rune('a'+i)), Status: model.StatusWritten})
		}()
	}
	wg.Wait()

	// Records arriving after cancellation are still saved.
	cancel()
	observe(model.PageRecord{URL: "https://example.com/late", Status: model.StatusEmpty})

	pages, err := j.Pages(context.Background(), runID)
	if err != nil {
		t.Fatalf("Pages: %v", err)
	}
	if len(pages) != 9 {
		t.Errorf("expected 9 pages, got %d", len(pages))
	}
}

// TestParseTimestamp tests timestamp parsing fallbacks.
func TestParseTimestamp(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 1, 2, 3, 4, 5, 6, time.UTC)
	if got := parseTimestamp(formatTimestamp(now)); !got.Equal(now) {
		t.Errorf("round trip = %v, want %v", got, now)
	}
	if got := parseTimestamp("2025-01-02 03:04:05"); got.IsZero() {
		t.Error("expected SQLite datetime format to parse")
	}
	if got := parseTimestamp(""); !got.IsZero() {
		t.Errorf("expected zero time, got %v", got)
	}
	if formatTimestamp(time.Time{}) != "" {
		t.Error("expected empty string for zero time")
	}
}
