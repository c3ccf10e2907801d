package models

import (
	"database/sql"
	"time"
)

// SyncQueueEntry is the database model for a HubSpot retry queue job.
type SyncQueueEntry struct {
	ID           string         `db:"id"`
	AssessmentID string         `db:"assessment_id"`
	Payload      []byte         `db:"payload"`
	ErrorType    sql.NullString `db:"error_type"`
	RetryCount   int            `db:"retry_count"`
	MaxRetries   int            `db:"max_retries"`
	Priority     int            `db:"priority"`
	Status       string         `db:"status"`
	NextRetryAt  sql.NullTime   `db:"next_retry_at"`
	LastError    sql.NullString `db:"last_error"`
	ProcessedAt  sql.NullTime   `db:"processed_at"`

	HubspotContactID sql.NullString `db:"hubspot_contact_id"`
	HubspotDealID    sql.NullString `db:"hubspot_deal_id"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}
