package booking

import (
	"strings"
	"testing"
	"time"
)

func TestNewBookingNumberFormat(t *testing.T) {
	now := time.Date(2026, time.March, 7, 15, 30, 0, 0, time.UTC)

	num := NewBookingNumber(now)

	parts := strings.Split(num, "-")
	if len(parts) != 3 {
		t.Fatalf("expected 3 parts, got %d: %q", len(parts), num)
	}
	if parts[0] != "NM" {
		t.Fatalf("expected NM prefix, got %q", parts[0])
	}
	if parts[1] != "20260307" {
		t.Fatalf("expected date part 20260307, got %q", parts[1])
	}
	if len(parts[2]) != 6 {
		t.Fatalf("expected 6 character suffix, got %q", parts[2])
	}
	if parts[2] != strings.ToUpper(parts[2]) {
		t.Fatalf("expected uppercase suffix, got %q", parts[2])
	}
}

func TestNewBookingNumberUnique(t *testing.T) {
	now := time.Now()
	seen := make(map[string]struct{})

	for i := 0; i < 1000; i++ {
		num := NewBookingNumber(now)
		if _, dup := seen[num]; dup {
			t.Fatalf("duplicate booking number: %q", num)
		}
		seen[num] = struct{}{}
	}
}
