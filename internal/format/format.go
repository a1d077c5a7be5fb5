// Package format renders quota numbers for display. The rules carry
// exact thresholds so that tiny nonzero usage never shows as a flat "0".
package format

import (
	"math"
	"strconv"
	"time"
)

// FormatCount renders a token count in compact form: 2500000 -> "2.5M",
// 1500 -> "1.5K", 999 -> "999". Scaled values that land within 0.01 of a
// whole number render with 3 decimals instead of 1; the rule is odd but
// long-standing client output depends on it.
func FormatCount(n int64) string {
	switch {
	case n >= 1_000_000:
		return scaled(float64(n)/1e6, "M")
	case n >= 1_000:
		return scaled(float64(n)/1e3, "K")
	default:
		return strconv.FormatInt(n, 10)
	}
}

func scaled(v float64, suffix string) string {
	frac := v - math.Floor(v)
	if frac < 0.01 || frac > 0.99 {
		return strconv.FormatFloat(v, 'f', 3, 64) + suffix
	}
	return strconv.FormatFloat(v, 'f', 1, 64) + suffix
}

// UsagePercentage computes used/limit as a percentage. Zero limit or
// zero usage yields 0; any nonzero usage is floored at 0.001 so it never
// rounds down to a literal zero.
func UsagePercentage(used, limit int64) float64 {
	if limit <= 0 || used <= 0 {
		return 0
	}
	pct := float64(used) / float64(limit) * 100
	if pct < 0.001 {
		return 0.001
	}
	return pct
}

// FormatPercentage renders a percentage with precision that grows as the
// value shrinks: 3 decimals below 0.01, 2 below 1, otherwise 1.
func FormatPercentage(p float64) string {
	switch {
	case p < 0.01:
		return strconv.FormatFloat(p, 'f', 3, 64) + "%"
	case p < 1:
		return strconv.FormatFloat(p, 'f', 2, 64) + "%"
	default:
		return strconv.FormatFloat(p, 'f', 1, 64) + "%"
	}
}

// DaysUntil returns the whole days remaining until periodEnd, rounding
// partial days up and never going negative.
func DaysUntil(periodEnd, now time.Time) int {
	d := periodEnd.Sub(now)
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d.Hours() / 24))
}
