package report

import (
	"testing"
	"time"
)

func TestMonthRange(t *testing.T) {
	cases := []struct {
		name  string
		year  int
		month int
		start string
		end   string
	}{
		{name: "mid year", year: 2026, month: 3, start: "2026-03-01", end: "2026-04-01"},
		{name: "december rolls over", year: 2025, month: 12, start: "2025-12-01", end: "2026-01-01"},
		{name: "leap february", year: 2028, month: 2, start: "2028-02-01", end: "2028-03-01"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			start, end := MonthRange(tc.year, tc.month)
			if got := start.Format("2006-01-02"); got != tc.start {
				t.Fatalf("expected start %s, got %s", tc.start, got)
			}
			if got := end.Format("2006-01-02"); got != tc.end {
				t.Fatalf("expected end %s, got %s", tc.end, got)
			}
			if start.Location() != time.UTC {
				t.Fatal("expected UTC range")
			}
		})
	}
}

func TestValidPeriod(t *testing.T) {
	cases := []struct {
		year, month int
		valid       bool
	}{
		{2026, 1, true},
		{2026, 12, true},
		{2026, 0, false},
		{2026, 13, false},
		{1999, 6, false},
		{0, 6, false},
	}

	for _, tc := range cases {
		if got := validPeriod(tc.year, tc.month); got != tc.valid {
			t.Fatalf("%d-%d: expected %v, got %v", tc.year, tc.month, tc.valid, got)
		}
	}
}
