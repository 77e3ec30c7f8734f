package model

import "testing"

// TestFingerprint tests the content dedup key.
func TestFingerprint(t *testing.T) {
	t.Parallel()

	t.Run("known SHA3-256 vectors", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			in   string
			want string
		}{
			{"", "a7ffc6f8bf1ed76651c14756a061d662f580ff4de43b49fa82d80a4b80f8434a"},
			{"abc", "3a985da74fe225b2045c172d6bd390bd855f086e3e9d525b46bfe24511431532"},
		}
		for _, tt := range tests {
			if got := Fingerprint(tt.in); got != tt.want {
				t.Errorf("Fingerprint(%q) = %s, want %s", tt.in, got, tt.want)
			}
		}
	})

	t.Run("identical text gives identical fingerprint", func(t *testing.T) {
		t.Parallel()

		if Fingerprint("Home\nAbout") != Fingerprint("Home\nAbout") {
			t.Error("expected stable fingerprint")
		}
		if Fingerprint("Home") == Fingerprint("Home ") {
			t.Error("expected different text to differ")
		}
	})
}

// TestPageRecordFailed tests failure classification.
func TestPageRecordFailed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status PageStatus
		want   bool
	}{
		{StatusWritten, false},
		{StatusDuplicate, false},
		{StatusEmpty, false},
		{StatusFetchFailed, true},
		{StatusWriteFailed, true},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			t.Parallel()

			if got := (PageRecord{Status: tt.status}).Failed(); got != tt.want {
				t.Errorf("Failed() = %v, want %v", got, tt.want)
			}
		})
	}
}
