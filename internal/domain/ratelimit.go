package domain

import (
	"context"
	"time"
)

// RateLimitResult reports the outcome of a single rate limit check.
type RateLimitResult struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetAt    time.Time
	RetryAfter time.Duration
}

// BatchRateLimitResult reports the outcome of a batch reservation.
// Granted is the number of slots actually consumed; when allowPartial is
// false it is either the full request or zero.
type BatchRateLimitResult struct {
	Allowed    bool
	Granted    int
	Limit      int
	Remaining  int
	ResetAt    time.Time
	RetryAfter time.Duration
}

// RateLimiter defines the interface (port) for a sliding-window rate
// limiter scoped by identifier. Implementations must make each check
// atomic with respect to concurrent callers.
type RateLimiter interface {
	// Check atomically tests and consumes one slot for the identifier
	Check(ctx context.Context, identifier string) (*RateLimitResult, error)

	// CheckBatch atomically reserves n slots. If capacity is insufficient
	// and allowPartial is false, nothing is consumed.
	CheckBatch(ctx context.Context, identifier string, n int, allowPartial bool) (*BatchRateLimitResult, error)

	// Status reads the current window without consuming a slot
	Status(ctx context.Context, identifier string) (*RateLimitResult, error)
}
