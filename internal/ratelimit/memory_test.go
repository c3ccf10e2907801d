package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// fakeClock lets tests move the limiter's view of time deterministically.
type fakeClock struct {
	current time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.current
}

func (c *fakeClock) Advance(d time.Duration) {
	c.current = c.current.Add(d)
}

func newTestLimiter(maxRequests int, window time.Duration) (*MemoryLimiter, *fakeClock) {
	clock := &fakeClock{current: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	limiter := NewMemoryLimiter(maxRequests, window)
	limiter.now = clock.Now
	return limiter, clock
}

func TestMemoryLimiter_ExactlyNWithinWindow(t *testing.T) {
	limiter, _ := newTestLimiter(5, 10*time.Second)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		result, err := limiter.Check(ctx, "hubspot")
		assert.NoError(t, err)
		assert.True(t, result.Allowed, "request %d should be allowed", i+1)
		assert.Equal(t, 5-i-1, result.Remaining)
	}

	result, err := limiter.Check(ctx, "hubspot")
	assert.NoError(t, err)
	assert.False(t, result.Allowed)
	assert.Equal(t, 0, result.Remaining)
	assert.Greater(t, result.RetryAfter, time.Duration(0))
}

func TestMemoryLimiter_SlidingWindowBoundary(t *testing.T) {
	limiter, clock := newTestLimiter(2, 10*time.Second)
	ctx := context.Background()

	first, err := limiter.Check(ctx, "hubspot")
	assert.NoError(t, err)
	assert.True(t, first.Allowed)

	clock.Advance(5 * time.Second)
	second, err := limiter.Check(ctx, "hubspot")
	assert.NoError(t, err)
	assert.True(t, second.Allowed)

	// Window is full at t=5s; t=9.999s is still inside the first request's window.
	clock.Advance(4*time.Second + 999*time.Millisecond)
	rejected, err := limiter.Check(ctx, "hubspot")
	assert.NoError(t, err)
	assert.False(t, rejected.Allowed)

	// At exactly t=10s the first request has left the window.
	clock.Advance(1 * time.Millisecond)
	allowed, err := limiter.Check(ctx, "hubspot")
	assert.NoError(t, err)
	assert.True(t, allowed.Allowed)
}

func TestMemoryLimiter_IdentifiersAreIndependent(t *testing.T) {
	limiter, _ := newTestLimiter(1, 10*time.Second)
	ctx := context.Background()

	first, err := limiter.Check(ctx, "client-a")
	assert.NoError(t, err)
	assert.True(t, first.Allowed)

	exhausted, err := limiter.Check(ctx, "client-a")
	assert.NoError(t, err)
	assert.False(t, exhausted.Allowed)

	other, err := limiter.Check(ctx, "client-b")
	assert.NoError(t, err)
	assert.True(t, other.Allowed)
}

func TestMemoryLimiter_BatchAllOrNothing(t *testing.T) {
	limiter, _ := newTestLimiter(5, 10*time.Second)
	ctx := context.Background()

	granted, err := limiter.CheckBatch(ctx, "hubspot", 3, false)
	assert.NoError(t, err)
	assert.True(t, granted.Allowed)
	assert.Equal(t, 3, granted.Granted)
	assert.Equal(t, 2, granted.Remaining)

	// Asking for 3 with only 2 available must consume nothing.
	rejected, err := limiter.CheckBatch(ctx, "hubspot", 3, false)
	assert.NoError(t, err)
	assert.False(t, rejected.Allowed)
	assert.Zero(t, rejected.Granted)
	assert.Equal(t, 2, rejected.Remaining)

	// The two untouched slots are still available.
	remainder, err := limiter.CheckBatch(ctx, "hubspot", 2, false)
	assert.NoError(t, err)
	assert.True(t, remainder.Allowed)
	assert.Equal(t, 2, remainder.Granted)
}

func TestMemoryLimiter_BatchPartial(t *testing.T) {
	limiter, _ := newTestLimiter(5, 10*time.Second)
	ctx := context.Background()

	_, err := limiter.CheckBatch(ctx, "hubspot", 3, false)
	assert.NoError(t, err)

	partial, err := limiter.CheckBatch(ctx, "hubspot", 4, true)
	assert.NoError(t, err)
	assert.True(t, partial.Allowed)
	assert.Equal(t, 2, partial.Granted)
	assert.Zero(t, partial.Remaining)
	assert.Greater(t, partial.RetryAfter, time.Duration(0))

	exhausted, err := limiter.CheckBatch(ctx, "hubspot", 1, true)
	assert.NoError(t, err)
	assert.False(t, exhausted.Allowed)
	assert.Zero(t, exhausted.Granted)
}

func TestMemoryLimiter_BatchInvalidSize(t *testing.T) {
	limiter, _ := newTestLimiter(5, 10*time.Second)
	_, err := limiter.CheckBatch(context.Background(), "hubspot", 0, false)
	assert.Error(t, err)
}

func TestMemoryLimiter_StatusDoesNotConsume(t *testing.T) {
	limiter, _ := newTestLimiter(2, 10*time.Second)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		status, err := limiter.Status(ctx, "hubspot")
		assert.NoError(t, err)
		assert.Equal(t, 2, status.Remaining)
	}

	result, err := limiter.Check(ctx, "hubspot")
	assert.NoError(t, err)
	assert.True(t, result.Allowed)
}

func TestMemoryLimiter_StaleBucketsSwept(t *testing.T) {
	limiter, clock := newTestLimiter(5, 10*time.Second)
	ctx := context.Background()

	_, err := limiter.Check(ctx, "old-client")
	assert.NoError(t, err)
	assert.Len(t, limiter.buckets, 1)

	clock.Advance(30 * time.Second)
	_, err = limiter.Check(ctx, "new-client")
	assert.NoError(t, err)

	limiter.mu.Lock()
	_, oldExists := limiter.buckets["old-client"]
	limiter.mu.Unlock()
	assert.False(t, oldExists)
}
