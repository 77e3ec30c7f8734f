package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/mdcrawl/internal/config"
	"github.com/nao1215/mdcrawl/internal/database"
)

func TestRunHistoryCmd(t *testing.T) {
	t.Parallel()

	t.Run("no journal yet", func(t *testing.T) {
		t.Parallel()

		var out bytes.Buffer
		cmd := NewHistoryCmd()
		cmd.SetOut(&out)
		cmd.SetArgs([]string{"--db-dir", t.TempDir()})
		if err := cmd.Execute(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out.String(), "No runs recorded") {
			t.Errorf("unexpected output %q", out.String())
		}
	})

	t.Run("lists runs and pages", func(t *testing.T) {
		t.Parallel()

		dbDir := t.TempDir()
		journal, err := database.Open(filepath.Join(dbDir, config.JournalFile), database.DefaultOptions())
		if err != nil {
			t.Fatal(err)
		}
		ctx := context.Background()
		report := newTestReport()
		runID, err := journal.StartRun(ctx, report.Seed, report.OutputPath, time.Now())
		if err != nil {
			t.Fatal(err)
		}
		for _, p := range report.Pages {
			if err := journal.SavePage(ctx, runID, p); err != nil {
				t.Fatal(err)
			}
		}
		if err := journal.FinishRun(ctx, runID, report); err != nil {
			t.Fatal(err)
		}
		if err := journal.Close(); err != nil {
			t.Fatal(err)
		}

		var out bytes.Buffer
		cmd := NewHistoryCmd()
		cmd.SetOut(&out)
		cmd.SetArgs([]string{"--db-dir", dbDir, report.Seed})
		if err := cmd.Execute(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out.String(), report.Seed) || !strings.Contains(out.String(), "complete") {
			t.Errorf("expected run row, got %q", out.String())
		}

		out.Reset()
		cmd = NewHistoryCmd()
		cmd.SetOut(&out)
		cmd.SetArgs([]string{"--db-dir", dbDir, "--run", "1"})
		if err := cmd.Execute(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out.String(), "written") || !strings.Contains(out.String(), "https://example.com/") {
			t.Errorf("expected page row, got %q", out.String())
		}
	})
}
