package domain

import (
	"encoding/json"
	"time"
)

// Queue entry statuses. completed and failed are terminal.
const (
	QueueStatusPending    = "pending"
	QueueStatusProcessing = "processing"
	QueueStatusCompleted  = "completed"
	QueueStatusFailed     = "failed"
)

// Error type classifications for failed sync attempts.
const (
	ErrorTypeRateLimit  = "rate_limit"
	ErrorTypeServer     = "server_error"
	ErrorTypeAuth       = "auth_error"
	ErrorTypeValidation = "validation_error"
)

// SyncQueueEntry is a pending or attempted HubSpot sync job tied to one
// assessment. retryCount never exceeds maxRetries while the entry is live;
// once exhausted the entry is dead-lettered and nextRetryAt cleared.
type SyncQueueEntry struct {
	ID           string
	AssessmentID string
	Payload      json.RawMessage
	ErrorType    string
	RetryCount   int
	MaxRetries   int
	Priority     int
	Status       string
	NextRetryAt  *time.Time
	LastError    string
	ProcessedAt  *time.Time

	HubspotContactID string
	HubspotDealID    string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsTerminal reports whether the entry has reached a final state.
func (e *SyncQueueEntry) IsTerminal() bool {
	return e.Status == QueueStatusCompleted || e.Status == QueueStatusFailed
}

// IsRetryable reports whether the error classification permits another
// attempt. Validation errors are permanently non-retryable: resending
// identical invalid data cannot succeed.
func (e *SyncQueueEntry) IsRetryable() bool {
	return e.ErrorType != ErrorTypeValidation
}
