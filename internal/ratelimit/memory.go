// Package ratelimit bounds outbound HubSpot requests to the external quota.
// Two implementations of domain.RateLimiter exist: an in-memory sliding
// window for single-instance deployments and a Redis-backed one for
// deployments sharing the quota across instances.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"leadsync/internal/domain"
)

// MemoryLimiter is a true sliding-window limiter: the timestamps of
// in-window requests are tracked per identifier, not a fixed-bucket
// counter. All operations are atomic with respect to concurrent callers.
type MemoryLimiter struct {
	mu          sync.Mutex
	maxRequests int
	window      time.Duration
	buckets     map[string][]time.Time
	lastSweep   time.Time

	// now is the clock, injectable for tests.
	now func() time.Time
}

// NewMemoryLimiter creates an in-memory sliding window limiter allowing
// maxRequests per window for each identifier independently.
func NewMemoryLimiter(maxRequests int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		maxRequests: maxRequests,
		window:      window,
		buckets:     make(map[string][]time.Time),
		now:         time.Now,
	}
}

// Check atomically tests and consumes one slot for the identifier.
func (l *MemoryLimiter) Check(ctx context.Context, identifier string) (*domain.RateLimitResult, error) {
	batch, err := l.CheckBatch(ctx, identifier, 1, false)
	if err != nil {
		return nil, err
	}
	return &domain.RateLimitResult{
		Allowed:    batch.Allowed,
		Limit:      batch.Limit,
		Remaining:  batch.Remaining,
		ResetAt:    batch.ResetAt,
		RetryAfter: batch.RetryAfter,
	}, nil
}

// CheckBatch atomically reserves n slots. If capacity is insufficient and
// allowPartial is false, nothing is consumed.
func (l *MemoryLimiter) CheckBatch(_ context.Context, identifier string, n int, allowPartial bool) (*domain.BatchRateLimitResult, error) {
	if n <= 0 {
		return nil, domain.NewInvalidInputError("batch size must be positive")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweepLocked(now)

	inWindow := l.pruneLocked(identifier, now)
	available := l.maxRequests - len(inWindow)

	granted := 0
	switch {
	case available >= n:
		granted = n
	case allowPartial && available > 0:
		granted = available
	}

	for i := 0; i < granted; i++ {
		inWindow = append(inWindow, now)
	}
	if granted > 0 {
		l.buckets[identifier] = inWindow
	}

	result := &domain.BatchRateLimitResult{
		Allowed:   granted > 0,
		Granted:   granted,
		Limit:     l.maxRequests,
		Remaining: l.maxRequests - len(inWindow),
		ResetAt:   l.resetAtLocked(inWindow, now),
	}
	if granted < n {
		result.RetryAfter = result.ResetAt.Sub(now)
		if result.RetryAfter < 0 {
			result.RetryAfter = 0
		}
	}
	if granted == 0 {
		result.Allowed = false
	}
	return result, nil
}

// Status reads the current window for the identifier without consuming.
func (l *MemoryLimiter) Status(_ context.Context, identifier string) (*domain.RateLimitResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	inWindow := l.pruneLocked(identifier, now)
	if len(inWindow) > 0 {
		l.buckets[identifier] = inWindow
	}

	remaining := l.maxRequests - len(inWindow)
	result := &domain.RateLimitResult{
		Allowed:   remaining > 0,
		Limit:     l.maxRequests,
		Remaining: remaining,
		ResetAt:   l.resetAtLocked(inWindow, now),
	}
	if remaining <= 0 {
		result.RetryAfter = result.ResetAt.Sub(now)
	}
	return result, nil
}

// pruneLocked drops timestamps that have left the window. A request made
// exactly window ago no longer counts; it never counts twice.
func (l *MemoryLimiter) pruneLocked(identifier string, now time.Time) []time.Time {
	bucket := l.buckets[identifier]
	cutoff := now.Add(-l.window)
	pruned := bucket[:0]
	for _, t := range bucket {
		if t.After(cutoff) {
			pruned = append(pruned, t)
		}
	}
	if len(pruned) == 0 {
		delete(l.buckets, identifier)
		return nil
	}
	l.buckets[identifier] = pruned
	return pruned
}

// resetAtLocked is when the oldest in-window request leaves the window.
func (l *MemoryLimiter) resetAtLocked(inWindow []time.Time, now time.Time) time.Time {
	if len(inWindow) == 0 {
		return now.Add(l.window)
	}
	oldest := inWindow[0]
	for _, t := range inWindow[1:] {
		if t.Before(oldest) {
			oldest = t
		}
	}
	return oldest.Add(l.window)
}

// sweepLocked garbage-collects buckets unused well past their window so
// memory stays bounded under many identifiers.
func (l *MemoryLimiter) sweepLocked(now time.Time) {
	if now.Sub(l.lastSweep) < l.window {
		return
	}
	l.lastSweep = now
	cutoff := now.Add(-l.window)
	for identifier, bucket := range l.buckets {
		stale := true
		for _, t := range bucket {
			if t.After(cutoff) {
				stale = false
				break
			}
		}
		if stale {
			delete(l.buckets, identifier)
		}
	}
}
