package ratelimit

import (
	"context"
	"fmt"
	"time"

	"leadsync/internal/cache"
	"leadsync/internal/domain"
	"leadsync/internal/util"

	"github.com/redis/go-redis/v9"
)

// slidingWindowScript prunes, counts and reserves in a single atomic EVAL.
// KEYS[1]   sorted-set key for the identifier
// ARGV[1]   now in microseconds
// ARGV[2]   window in microseconds
// ARGV[3]   max requests
// ARGV[4]   slots requested
// ARGV[5]   1 when partial grants are allowed
// ARGV[6]   unique member prefix for this call
// Returns {granted, in-window count after grant, oldest score or 0}.
const slidingWindowScript = `
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])
local n = tonumber(ARGV[4])
local partial = tonumber(ARGV[5])
redis.call('ZREMRANGEBYSCORE', key, 0, now - window)
local count = redis.call('ZCARD', key)
local available = limit - count
local granted = 0
if available >= n then
  granted = n
elseif partial == 1 and available > 0 then
  granted = available
end
for i = 1, granted do
  redis.call('ZADD', key, now, ARGV[6] .. ':' .. i)
end
if granted > 0 then
  redis.call('PEXPIRE', key, math.ceil(window / 1000))
end
local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
local oldestScore = 0
if oldest[2] then
  oldestScore = tonumber(oldest[2])
end
return {granted, count + granted, oldestScore}
`

// RedisLimiter is a sliding-window limiter backed by a Redis sorted set,
// for deployments where multiple instances share the HubSpot quota. The
// window bookkeeping runs inside a Lua script, so concurrent instances
// cannot overshoot the quota.
type RedisLimiter struct {
	client      *redis.Client
	maxRequests int
	window      time.Duration

	// now and member are injectable for tests.
	now    func() time.Time
	member func() string
}

// NewRedisLimiter creates a Redis-backed sliding window limiter.
func NewRedisLimiter(client *redis.Client, maxRequests int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{
		client:      client,
		maxRequests: maxRequests,
		window:      window,
		now:         time.Now,
		member:      util.NewULID,
	}
}

// Check atomically tests and consumes one slot for the identifier.
func (l *RedisLimiter) Check(ctx context.Context, identifier string) (*domain.RateLimitResult, error) {
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

// CheckBatch atomically reserves n slots via the Lua script.
func (l *RedisLimiter) CheckBatch(ctx context.Context, identifier string, n int, allowPartial bool) (*domain.BatchRateLimitResult, error) {
	if n <= 0 {
		return nil, domain.NewInvalidInputError("batch size must be positive")
	}

	now := l.now()
	partial := 0
	if allowPartial {
		partial = 1
	}

	raw, err := l.client.Eval(ctx, slidingWindowScript,
		[]string{cache.RateLimitKey(identifier)},
		now.UnixMicro(),
		l.window.Microseconds(),
		l.maxRequests,
		n,
		partial,
		l.member(),
	).Result()
	if err != nil {
		return nil, fmt.Errorf("rate limit script failed: %w", err)
	}

	values, ok := raw.([]interface{})
	if !ok || len(values) != 3 {
		return nil, fmt.Errorf("unexpected rate limit script result: %v", raw)
	}
	granted := int(values[0].(int64))
	count := int(values[1].(int64))
	oldestMicro := values[2].(int64)

	resetAt := now.Add(l.window)
	if oldestMicro > 0 {
		resetAt = time.UnixMicro(oldestMicro).Add(l.window)
	}

	result := &domain.BatchRateLimitResult{
		Allowed:   granted > 0,
		Granted:   granted,
		Limit:     l.maxRequests,
		Remaining: l.maxRequests - count,
		ResetAt:   resetAt,
	}
	if granted < n {
		result.RetryAfter = resetAt.Sub(now)
		if result.RetryAfter < 0 {
			result.RetryAfter = 0
		}
	}
	return result, nil
}

// Status reads the current window without consuming a slot.
func (l *RedisLimiter) Status(ctx context.Context, identifier string) (*domain.RateLimitResult, error) {
	now := l.now()
	key := cache.RateLimitKey(identifier)
	cutoff := fmt.Sprintf("(%d", now.Add(-l.window).UnixMicro())

	count, err := l.client.ZCount(ctx, key, cutoff, "+inf").Result()
	if err != nil {
		return nil, fmt.Errorf("rate limit status failed: %w", err)
	}

	remaining := l.maxRequests - int(count)
	result := &domain.RateLimitResult{
		Allowed:   remaining > 0,
		Limit:     l.maxRequests,
		Remaining: remaining,
		ResetAt:   now.Add(l.window),
	}
	if remaining <= 0 {
		result.RetryAfter = l.window
	}
	return result, nil
}
