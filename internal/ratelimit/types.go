// Package ratelimit throttles the generation endpoints with fixed
// per-minute windows, backed by Redis when configured and process
// memory otherwise.
package ratelimit

import (
	"context"
	"time"
)

// Window is the fixed rate limit window length.
const Window = time.Minute

// Result describes the outcome of a rate limit check.
type Result struct {
	Allowed   bool
	Remaining int
	Reset     time.Time
}

// Limiter provides rate limit checks.
type Limiter interface {
	Allow(ctx context.Context, key string, limit int, now time.Time) (Result, error)
}

// windowStart truncates now to the containing window.
func windowStart(now time.Time) int64 {
	return now.Unix() / int64(Window/time.Second)
}

// windowReset returns when the window containing now rolls over.
func windowReset(now time.Time) time.Time {
	seconds := int64(Window / time.Second)
	return time.Unix((now.Unix()/seconds+1)*seconds, 0).UTC()
}
