package format

import (
	"testing"
	"time"
)

func TestFormatCount(t *testing.T) {
	cases := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1500, "1.5K"},
		{2_500_000, "2.5M"},
		{1_234_567, "1.2M"},
		// values within 0.01 of a whole number switch to 3 decimals
		{1_000, "1.000K"},
		{1_000_000, "1.000M"},
		{999_995, "999.995K"},
		{2_005_000, "2.005M"},
	}
	for _, tc := range cases {
		if got := FormatCount(tc.in); got != tc.want {
			t.Fatalf("FormatCount(%d) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestUsagePercentage(t *testing.T) {
	if got := UsagePercentage(0, 100); got != 0 {
		t.Fatalf("expected 0 for zero usage, got %v", got)
	}
	if got := UsagePercentage(50, 0); got != 0 {
		t.Fatalf("expected 0 for zero limit, got %v", got)
	}
	if got := UsagePercentage(50, 100); got != 50 {
		t.Fatalf("expected 50, got %v", got)
	}
	// tiny nonzero usage never collapses to literal zero
	if got := UsagePercentage(1, 1_000_000); got < 0.001 {
		t.Fatalf("expected floor of 0.001, got %v", got)
	}
}

func TestFormatPercentage(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0.001, "0.001%"},
		{0.5, "0.50%"},
		{1, "1.0%"},
		{42.35, "42.3%"},
	}
	for _, tc := range cases {
		if got := FormatPercentage(tc.in); got != tc.want {
			t.Fatalf("FormatPercentage(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestDaysUntil(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	if got := DaysUntil(now.AddDate(0, 0, 30), now); got != 30 {
		t.Fatalf("expected 30 days, got %d", got)
	}
	// partial days round up
	if got := DaysUntil(now.Add(36*time.Hour), now); got != 2 {
		t.Fatalf("expected 2 days, got %d", got)
	}
	// never negative, even past the boundary
	if got := DaysUntil(now.AddDate(0, 0, -5), now); got != 0 {
		t.Fatalf("expected 0 days, got %d", got)
	}
	if got := DaysUntil(now, now); got != 0 {
		t.Fatalf("expected 0 at the boundary, got %d", got)
	}
}
