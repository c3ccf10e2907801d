package dto

// ComponentHealth represents the status of a single dependency
type ComponentHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// HealthResponse represents the aggregate health check result
// @Description Aggregate health of the API and its dependencies
type HealthResponse struct {
	Status     string                     `json:"status"`
	CheckedAt  string                     `json:"checked_at"`
	Components map[string]ComponentHealth `json:"components"`
}

// RateLimitStatusResponse reports current limiter utilization
type RateLimitStatusResponse struct {
	Used        int     `json:"used"`
	Limit       int     `json:"limit"`
	Utilization float64 `json:"utilization"`
}

// SyncMetricsResponse represents operational sync metrics
type SyncMetricsResponse struct {
	QueueDepth       int                     `json:"queue_depth"`
	DeadLetters      int                     `json:"dead_letters"`
	FailuresLastHour int                     `json:"failures_last_hour"`
	SuccessRate      float64                 `json:"success_rate"`
	RateLimit        RateLimitStatusResponse `json:"rate_limit"`
}
