package id

import (
	"regexp"
	"testing"
)

var reHex8 = regexp.MustCompile(`^[a-f0-9]{8}$`)

func TestNewShortID_Format(t *testing.T) {
	got := NewShortID()

	if len(got) != 8 {
		t.Fatalf("length = %d, want 8 (got=%q)", len(got), got)
	}
	if !reHex8.MatchString(got) {
		t.Fatalf("not 8-char lowercase hex: %q", got)
	}
}

func TestNewShortID_Uniqueness(t *testing.T) {
	const n = 200
	seen := make(map[string]struct{}, n)
	for i := 0; i < n; i++ {
		id := NewShortID()
		if _, ok := seen[id]; ok {
			t.Fatalf("duplicate id after %d iterations: %q", i, id)
		}
		seen[id] = struct{}{}
	}
}
