package cache

import "strings"

const (
	GlobalKeyPrefix = "leadsync"
)

// GenerateCacheKey generates a cache key for a given service, object type, and identifier.
// If paramsKey are provided, they are joined by "_" and appended to the cache key.
func GenerateCacheKey(serviceName, objectType, identifier string, paramsKey ...string) string {
	baseKey := strings.Join([]string{GlobalKeyPrefix, serviceName, objectType, identifier}, ":")
	if len(paramsKey) > 0 {
		return strings.Join([]string{baseKey, strings.Join(paramsKey, "_")}, ":")
	}
	return baseKey
}

// ResultCacheKey is the key under which a completed assessment's results are cached.
func ResultCacheKey(assessmentID string) string {
	return GenerateCacheKey("assessment", "result", assessmentID)
}

// RateLimitKey is the sorted-set key backing the Redis sliding window for an identifier.
func RateLimitKey(identifier string) string {
	return GenerateCacheKey("ratelimit", "window", identifier)
}
