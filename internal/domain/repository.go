package domain

import (
	"context"
	"time"
)

// AssessmentRepository defines the interface for assessment persistence
type AssessmentRepository interface {
	// Create persists a new assessment
	Create(ctx context.Context, assessment *Assessment) error

	// GetByID retrieves an assessment by its ID. Returns nil, nil when not found.
	GetByID(ctx context.Context, id string) (*Assessment, error)

	// Update persists changes to an existing assessment
	Update(ctx context.Context, assessment *Assessment) error

	// UpdateSyncState updates only the HubSpot sync bookkeeping fields
	UpdateSyncState(ctx context.Context, assessment *Assessment) error

	// GetScrubCandidates returns completed, unscrubbed assessments older than
	// the given cutoff, up to limit
	GetScrubCandidates(ctx context.Context, before time.Time, limit int) ([]*Assessment, error)
}

// SessionRepository defines the interface for assessment session persistence
type SessionRepository interface {
	// Create persists a new session
	Create(ctx context.Context, session *AssessmentSession) error

	// GetByID retrieves a session by its ID. Returns nil, nil when not found.
	GetByID(ctx context.Context, id string) (*AssessmentSession, error)

	// Touch extends the session expiry
	Touch(ctx context.Context, session *AssessmentSession) error

	// DeleteExpired removes all sessions that expired before now and
	// returns the number deleted
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// SyncQueueRepository defines the persistence contract for the retry queue.
// ClaimPending must be atomic: two concurrent processors never claim the
// same entry.
type SyncQueueRepository interface {
	// Create persists a new queue entry
	Create(ctx context.Context, entry *SyncQueueEntry) error

	// GetByID retrieves an entry by its ID. Returns nil, nil when not found.
	GetByID(ctx context.Context, id string) (*SyncQueueEntry, error)

	// GetPending returns entries with status pending and nextRetryAt <= now,
	// ordered by priority ascending then by age
	GetPending(ctx context.Context, now time.Time, limit int) ([]*SyncQueueEntry, error)

	// ClaimPending atomically transitions up to limit ready entries from
	// pending to processing and returns them in priority-then-age order
	ClaimPending(ctx context.Context, now time.Time, limit int) ([]*SyncQueueEntry, error)

	// Update persists changes to an existing entry
	Update(ctx context.Context, entry *SyncQueueEntry) error

	// GetDeadLetters returns all entries with status failed
	GetDeadLetters(ctx context.Context) ([]*SyncQueueEntry, error)

	// CountByStatus returns the number of entries per status
	CountByStatus(ctx context.Context) (map[string]int, error)

	// CountFailuresSince returns the number of failed attempts recorded
	// after the given instant
	CountFailuresSince(ctx context.Context, since time.Time) (int, error)
}

// TransactionManager runs a function within a database transaction. The
// repositories participate through the context.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
