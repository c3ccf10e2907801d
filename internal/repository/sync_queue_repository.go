package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"leadsync/internal/domain"
	"leadsync/internal/repository/models"
	"leadsync/internal/util"

	"github.com/jmoiron/sqlx"
)

// sqlxSyncQueueRepository implements domain.SyncQueueRepository using sqlx.
type sqlxSyncQueueRepository struct {
	db *sqlx.DB
}

// NewSQLXSyncQueueRepository creates a new instance of sqlxSyncQueueRepository.
func NewSQLXSyncQueueRepository(db *sqlx.DB) domain.SyncQueueRepository {
	return &sqlxSyncQueueRepository{db: db}
}

func toDomainSyncQueueEntry(m *models.SyncQueueEntry) *domain.SyncQueueEntry {
	if m == nil {
		return nil
	}
	return &domain.SyncQueueEntry{
		ID:               m.ID,
		AssessmentID:     m.AssessmentID,
		Payload:          m.Payload,
		ErrorType:        m.ErrorType.String,
		RetryCount:       m.RetryCount,
		MaxRetries:       m.MaxRetries,
		Priority:         m.Priority,
		Status:           m.Status,
		NextRetryAt:      util.NullTimeToTimePtr(m.NextRetryAt),
		LastError:        m.LastError.String,
		ProcessedAt:      util.NullTimeToTimePtr(m.ProcessedAt),
		HubspotContactID: m.HubspotContactID.String,
		HubspotDealID:    m.HubspotDealID.String,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

func fromDomainSyncQueueEntry(e *domain.SyncQueueEntry) *models.SyncQueueEntry {
	if e == nil {
		return nil
	}
	return &models.SyncQueueEntry{
		ID:               e.ID,
		AssessmentID:     e.AssessmentID,
		Payload:          e.Payload,
		ErrorType:        util.StringToNullString(e.ErrorType),
		RetryCount:       e.RetryCount,
		MaxRetries:       e.MaxRetries,
		Priority:         e.Priority,
		Status:           e.Status,
		NextRetryAt:      util.TimePtrToNullTime(e.NextRetryAt),
		LastError:        util.StringToNullString(e.LastError),
		ProcessedAt:      util.TimePtrToNullTime(e.ProcessedAt),
		HubspotContactID: util.StringToNullString(e.HubspotContactID),
		HubspotDealID:    util.StringToNullString(e.HubspotDealID),
		CreatedAt:        e.CreatedAt,
		UpdatedAt:        e.UpdatedAt,
	}
}

// Create inserts a new queue entry.
func (r *sqlxSyncQueueRepository) Create(ctx context.Context, entry *domain.SyncQueueEntry) error {
	m := fromDomainSyncQueueEntry(entry)
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	m.UpdatedAt = time.Now()

	query := `INSERT INTO hubspot_sync_queue (
	            id, assessment_id, payload, error_type, retry_count, max_retries,
	            priority, status, next_retry_at, last_error, processed_at,
	            hubspot_contact_id, hubspot_deal_id, created_at, updated_at)
	          VALUES (:id, :assessment_id, :payload, :error_type, :retry_count, :max_retries,
	            :priority, :status, :next_retry_at, :last_error, :processed_at,
	            :hubspot_contact_id, :hubspot_deal_id, :created_at, :updated_at)`

	executor := GetExecutor(ctx, r.db)
	if _, err := executor.NamedExecContext(ctx, query, m); err != nil {
		return fmt.Errorf("failed to create sync queue entry: %w", err)
	}
	return nil
}

// GetByID retrieves an entry by its ID. Returns nil, nil when not found.
func (r *sqlxSyncQueueRepository) GetByID(ctx context.Context, id string) (*domain.SyncQueueEntry, error) {
	var m models.SyncQueueEntry
	query := `SELECT * FROM hubspot_sync_queue WHERE id = $1`

	executor := GetExecutor(ctx, r.db)
	if err := executor.GetContext(ctx, &m, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get sync queue entry by id: %w", err)
	}
	return toDomainSyncQueueEntry(&m), nil
}

// GetPending returns ready entries ordered by priority ascending then age.
func (r *sqlxSyncQueueRepository) GetPending(ctx context.Context, now time.Time, limit int) ([]*domain.SyncQueueEntry, error) {
	var ms []models.SyncQueueEntry
	query := `SELECT * FROM hubspot_sync_queue
	          WHERE status = 'pending' AND next_retry_at <= $1
	          ORDER BY priority ASC, created_at ASC
	          LIMIT $2`

	executor := GetExecutor(ctx, r.db)
	if err := executor.SelectContext(ctx, &ms, query, now, limit); err != nil {
		return nil, fmt.Errorf("failed to get pending sync queue entries: %w", err)
	}
	return toDomainSyncQueueEntries(ms), nil
}

// ClaimPending atomically transitions up to limit ready entries to
// processing. FOR UPDATE SKIP LOCKED guarantees two concurrent processors
// never claim the same entry.
func (r *sqlxSyncQueueRepository) ClaimPending(ctx context.Context, now time.Time, limit int) ([]*domain.SyncQueueEntry, error) {
	var ms []models.SyncQueueEntry
	query := `UPDATE hubspot_sync_queue SET status = 'processing', updated_at = $1
	          WHERE id IN (
	            SELECT id FROM hubspot_sync_queue
	            WHERE status = 'pending' AND next_retry_at <= $2
	            ORDER BY priority ASC, created_at ASC
	            LIMIT $3
	            FOR UPDATE SKIP LOCKED)
	          RETURNING *`

	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryxContext(ctx, query, now, now, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to claim pending sync queue entries: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var m models.SyncQueueEntry
		if err := rows.StructScan(&m); err != nil {
			return nil, fmt.Errorf("failed to scan claimed sync queue entry: %w", err)
		}
		ms = append(ms, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate claimed sync queue entries: %w", err)
	}

	// RETURNING order is not guaranteed; restore priority-then-age order.
	entries := toDomainSyncQueueEntries(ms)
	sortEntriesByPriorityThenAge(entries)
	return entries, nil
}

// Update persists changes to an existing entry.
func (r *sqlxSyncQueueRepository) Update(ctx context.Context, entry *domain.SyncQueueEntry) error {
	m := fromDomainSyncQueueEntry(entry)
	m.UpdatedAt = time.Now()

	query := `UPDATE hubspot_sync_queue SET
	            error_type = :error_type,
	            retry_count = :retry_count,
	            status = :status,
	            next_retry_at = :next_retry_at,
	            last_error = :last_error,
	            processed_at = :processed_at,
	            hubspot_contact_id = :hubspot_contact_id,
	            hubspot_deal_id = :hubspot_deal_id,
	            updated_at = :updated_at
	          WHERE id = :id`

	executor := GetExecutor(ctx, r.db)
	result, err := executor.NamedExecContext(ctx, query, m)
	if err != nil {
		return fmt.Errorf("failed to update sync queue entry: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read update result: %w", err)
	}
	if rows == 0 {
		return domain.NewNotFoundError(fmt.Sprintf("sync queue entry not found with ID: %s", entry.ID))
	}
	return nil
}

// GetDeadLetters returns all entries with status failed, newest first.
func (r *sqlxSyncQueueRepository) GetDeadLetters(ctx context.Context) ([]*domain.SyncQueueEntry, error) {
	var ms []models.SyncQueueEntry
	query := `SELECT * FROM hubspot_sync_queue WHERE status = 'failed' ORDER BY updated_at DESC`

	executor := GetExecutor(ctx, r.db)
	if err := executor.SelectContext(ctx, &ms, query); err != nil {
		return nil, fmt.Errorf("failed to get dead letter entries: %w", err)
	}
	return toDomainSyncQueueEntries(ms), nil
}

// CountByStatus returns the number of entries per status.
func (r *sqlxSyncQueueRepository) CountByStatus(ctx context.Context) (map[string]int, error) {
	query := `SELECT status, COUNT(*) AS cnt FROM hubspot_sync_queue GROUP BY status`

	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryxContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to count sync queue entries by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan status count: %w", err)
		}
		counts[status] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate status counts: %w", err)
	}
	return counts, nil
}

// CountFailuresSince returns the number of entries with a recorded failure
// after the given instant.
func (r *sqlxSyncQueueRepository) CountFailuresSince(ctx context.Context, since time.Time) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM hubspot_sync_queue
	          WHERE last_error IS NOT NULL AND updated_at >= $1`

	executor := GetExecutor(ctx, r.db)
	if err := executor.GetContext(ctx, &count, query, since); err != nil {
		return 0, fmt.Errorf("failed to count recent sync failures: %w", err)
	}
	return count, nil
}

func toDomainSyncQueueEntries(ms []models.SyncQueueEntry) []*domain.SyncQueueEntry {
	entries := make([]*domain.SyncQueueEntry, 0, len(ms))
	for i := range ms {
		entries = append(entries, toDomainSyncQueueEntry(&ms[i]))
	}
	return entries
}

func sortEntriesByPriorityThenAge(entries []*domain.SyncQueueEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Priority != entries[j].Priority {
			return entries[i].Priority < entries[j].Priority
		}
		return entries[i].CreatedAt.Before(entries[j].CreatedAt)
	})
}
