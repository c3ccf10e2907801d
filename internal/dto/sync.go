package dto

// SyncQueueEntryResponse represents a retry queue entry in the admin API
type SyncQueueEntryResponse struct {
	ID           string `json:"id"`
	AssessmentID string `json:"assessment_id"`
	ErrorType    string `json:"error_type,omitempty"`
	RetryCount   int    `json:"retry_count"`
	MaxRetries   int    `json:"max_retries"`
	Priority     int    `json:"priority"`
	Status       string `json:"status"`
	NextRetryAt  string `json:"next_retry_at,omitempty"`
	LastError    string `json:"last_error,omitempty"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
}

// DeadLetterListResponse lists permanently failed sync entries
type DeadLetterListResponse struct {
	Entries []SyncQueueEntryResponse `json:"entries"`
	Count   int                      `json:"count"`
}

// ProcessQueueResponse summarizes one manual drain of the retry queue
type ProcessQueueResponse struct {
	Processed int `json:"processed"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

// SyncStatsResponse reports queue depth and sync health counters
type SyncStatsResponse struct {
	StatusCounts    map[string]int `json:"status_counts"`
	FailuresLastHour int           `json:"failures_last_hour"`
}
