package model

import (
	"errors"
	"testing"
	"time"
)

// TestRunReport tests report bookkeeping.
func TestRunReport(t *testing.T) {
	t.Parallel()

	t.Run("counts pages by status", func(t *testing.T) {
		t.Parallel()

		r := NewRunReport("https://example.com/", "markdown/_example-_content.md")
		r.AddPage(PageRecord{URL: "https://example.com/", Status: StatusWritten})
		r.AddPage(PageRecord{URL: "https://example.com/a", Status: StatusDuplicate})
		r.AddPage(PageRecord{URL: "https://example.com/b", Status: StatusWritten})
		r.AddPage(PageRecord{URL: "https://example.com/c", Status: StatusFetchFailed})

		if r.Fetched() != 4 {
			t.Errorf("expected 4 fetched, got %d", r.Fetched())
		}
		if r.Count(StatusWritten) != 2 {
			t.Errorf("expected 2 written, got %d", r.Count(StatusWritten))
		}
		if r.Count(StatusWriteFailed) != 0 {
			t.Errorf("expected 0 write failures, got %d", r.Count(StatusWriteFailed))
		}
	})

	t.Run("collects errors and ignores nil", func(t *testing.T) {
		t.Parallel()

		errA := errors.New("a failed")
		r := NewRunReport("https://example.com/", "out.md")
		if r.Err() != nil {
			t.Error("expected nil Err for a clean run")
		}

		r.AddError(nil)
		r.AddError(errA)

		if len(r.Errors) != 1 {
			t.Fatalf("expected 1 error, got %d", len(r.Errors))
		}
		if !errors.Is(r.Err(), errA) {
			t.Error("expected joined error to contain errA")
		}
		msgs := r.ErrorMessages()
		if len(msgs) != 1 || msgs[0] != "a failed" {
			t.Errorf("unexpected messages %v", msgs)
		}
	})

	t.Run("duration is zero until finished", func(t *testing.T) {
		t.Parallel()

		r := NewRunReport("https://example.com/", "out.md")
		if r.Duration() != 0 {
			t.Error("expected zero duration before Finish")
		}

		r.StartedAt = time.Now().Add(-time.Second)
		r.Finish()
		if r.Duration() < time.Second {
			t.Errorf("expected at least 1s, got %s", r.Duration())
		}
	})
}
