package ratelimit

import (
	"strconv"

	"leadsync/internal/domain"
)

// Standard rate-limit header names exposed to any HTTP layer wrapping the core.
const (
	HeaderLimit      = "X-RateLimit-Limit"
	HeaderRemaining  = "X-RateLimit-Remaining"
	HeaderReset      = "X-RateLimit-Reset"
	HeaderRetryAfter = "Retry-After"
)

// Headers converts a rate limit result into standard HTTP response headers.
// Retry-After is present only when the window is exhausted.
func Headers(result *domain.RateLimitResult) map[string]string {
	headers := map[string]string{
		HeaderLimit:     strconv.Itoa(result.Limit),
		HeaderRemaining: strconv.Itoa(result.Remaining),
		HeaderReset:     strconv.FormatInt(result.ResetAt.Unix(), 10),
	}
	if !result.Allowed && result.RetryAfter > 0 {
		seconds := int(result.RetryAfter.Seconds())
		if seconds < 1 {
			seconds = 1
		}
		headers[HeaderRetryAfter] = strconv.Itoa(seconds)
	}
	return headers
}
