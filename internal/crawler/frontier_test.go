package crawler

import "testing"

// TestFrontier tests pop order.
func TestFrontier(t *testing.T) {
	t.Parallel()

	tests := []struct {
		order Order
		want  []string
	}{
		{OrderLIFO, []string{"c", "b", "a"}},
		{OrderFIFO, []string{"a", "b", "c"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.order), func(t *testing.T) {
			t.Parallel()

			f := newFrontier(tt.order)
			for _, u := range []string{"a", "b", "c"} {
				f.push(Entry{URL: u})
			}
			if f.len() != 3 {
				t.Fatalf("expected 3 entries, got %d", f.len())
			}

			for i, want := range tt.want {
				e, ok := f.pop()
				if !ok {
					t.Fatalf("pop %d: frontier empty", i)
				}
				if e.URL != want {
					t.Errorf("pop %d: got %q, want %q", i, e.URL, want)
				}
			}
			if _, ok := f.pop(); ok {
				t.Error("expected empty frontier")
			}
		})
	}
}

// TestParseOrder tests configuration parsing.
func TestParseOrder(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    Order
		wantErr bool
	}{
		{"lifo", OrderLIFO, false},
		{"", OrderLIFO, false},
		{" FIFO ", OrderFIFO, false},
		{"random", "", true},
	}

	for _, tt := range tests {
		got, err := ParseOrder(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseOrder(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseOrder(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
