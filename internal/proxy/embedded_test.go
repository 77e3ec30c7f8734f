package proxy

import (
	"errors"
	"testing"
	"time"
)

// TestNewEmbeddedTor tests EmbeddedTor without starting a daemon.
func TestNewEmbeddedTor(t *testing.T) {
	t.Parallel()

	t.Run("default timeout", func(t *testing.T) {
		t.Parallel()

		if got := NewEmbeddedTor().startupTimeout; got != DefaultTorStartupTimeout {
			t.Errorf("expected %v, got %v", DefaultTorStartupTimeout, got)
		}
	})

	t.Run("startup timeout option", func(t *testing.T) {
		t.Parallel()

		if got := NewEmbeddedTor(WithStartupTimeout(time.Minute)).startupTimeout; got != time.Minute {
			t.Errorf("expected 1m, got %v", got)
		}
		if got := NewEmbeddedTor(WithStartupTimeout(0)).startupTimeout; got != DefaultTorStartupTimeout {
			t.Errorf("zero should keep default, got %v", got)
		}
	})

	t.Run("unstarted instance", func(t *testing.T) {
		t.Parallel()

		e := NewEmbeddedTor()
		if e.IsRunning() || e.SocksAddr() != "" {
			t.Error("expected stopped state before Start")
		}
		if err := e.Stop(); err != nil {
			t.Errorf("Stop on unstarted instance: %v", err)
		}
		if _, err := e.NewClient(); !errors.Is(err, ErrTorNotRunning) {
			t.Errorf("expected ErrTorNotRunning, got %v", err)
		}
	})
}
