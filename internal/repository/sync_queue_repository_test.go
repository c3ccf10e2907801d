package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"leadsync/internal/domain"
	"leadsync/internal/repository/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
)

// setupQueueTestDB creates a new sqlx.DB instance and sqlmock for sync queue repository testing.
func setupQueueTestDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	mockDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("Failed to create sqlmock: %v", err)
	}
	sqlxDB := sqlx.NewDb(mockDB, "sqlmock")
	return sqlxDB, mock
}

var queueColumns = []string{
	"id", "assessment_id", "payload", "error_type", "retry_count", "max_retries",
	"priority", "status", "next_retry_at", "last_error", "processed_at",
	"hubspot_contact_id", "hubspot_deal_id", "created_at", "updated_at",
}

func TestToDomainSyncQueueEntry(t *testing.T) {
	now := time.Now().Truncate(time.Second)
	nextRetry := now.Add(time.Minute)
	m := &models.SyncQueueEntry{
		ID:           "entry1",
		AssessmentID: "assessment1",
		Payload:      []byte(`{"email":"lead@example.com"}`),
		ErrorType:    sql.NullString{String: domain.ErrorTypeServer, Valid: true},
		RetryCount:   2,
		MaxRetries:   5,
		Priority:     3,
		Status:       domain.QueueStatusPending,
		NextRetryAt:  sql.NullTime{Time: nextRetry, Valid: true},
		LastError:    sql.NullString{String: "boom", Valid: true},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	e := toDomainSyncQueueEntry(m)
	assert.NotNil(t, e)
	assert.Equal(t, m.ID, e.ID)
	assert.Equal(t, m.AssessmentID, e.AssessmentID)
	assert.JSONEq(t, `{"email":"lead@example.com"}`, string(e.Payload))
	assert.Equal(t, domain.ErrorTypeServer, e.ErrorType)
	assert.Equal(t, 2, e.RetryCount)
	assert.NotNil(t, e.NextRetryAt)
	assert.True(t, nextRetry.Equal(*e.NextRetryAt))
	assert.Nil(t, e.ProcessedAt)

	assert.Nil(t, toDomainSyncQueueEntry(nil))
}

func TestFromDomainSyncQueueEntry_NullFields(t *testing.T) {
	e := &domain.SyncQueueEntry{
		ID:           "entry1",
		AssessmentID: "assessment1",
		Status:       domain.QueueStatusFailed,
	}
	m := fromDomainSyncQueueEntry(e)
	assert.False(t, m.NextRetryAt.Valid)
	assert.False(t, m.LastError.Valid)
	assert.False(t, m.ProcessedAt.Valid)
	assert.False(t, m.ErrorType.Valid)
}

func TestSyncQueueRepository_Create(t *testing.T) {
	db, mock := setupQueueTestDB(t)
	defer db.Close()
	repo := NewSQLXSyncQueueRepository(db)

	now := time.Now()
	entry := &domain.SyncQueueEntry{
		ID:           "entry1",
		AssessmentID: "assessment1",
		Payload:      []byte(`{}`),
		ErrorType:    domain.ErrorTypeRateLimit,
		MaxRetries:   5,
		Priority:     5,
		Status:       domain.QueueStatusPending,
		NextRetryAt:  &now,
	}

	mock.ExpectExec(`INSERT INTO hubspot_sync_queue`).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.Create(context.Background(), entry)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSyncQueueRepository_GetByID_NotFound(t *testing.T) {
	db, mock := setupQueueTestDB(t)
	defer db.Close()
	repo := NewSQLXSyncQueueRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM hubspot_sync_queue WHERE id = $1`)).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	entry, err := repo.GetByID(context.Background(), "missing")
	assert.NoError(t, err)
	assert.Nil(t, entry)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSyncQueueRepository_GetPending(t *testing.T) {
	db, mock := setupQueueTestDB(t)
	defer db.Close()
	repo := NewSQLXSyncQueueRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(queueColumns).
		AddRow("entry1", "assessment1", []byte(`{}`), "server_error", 1, 5, 1, "pending",
			now.Add(-time.Minute), "boom", nil, nil, nil, now.Add(-time.Hour), now).
		AddRow("entry2", "assessment2", []byte(`{}`), "rate_limit", 0, 5, 5, "pending",
			now.Add(-time.Minute), nil, nil, nil, nil, now.Add(-2*time.Hour), now)

	mock.ExpectQuery(`SELECT \* FROM hubspot_sync_queue\s+WHERE status = 'pending' AND next_retry_at <= \$1`).
		WillReturnRows(rows)

	entries, err := repo.GetPending(context.Background(), now, 10)
	assert.NoError(t, err)
	assert.Len(t, entries, 2)
	assert.Equal(t, "entry1", entries[0].ID)
	assert.Equal(t, 1, entries[0].Priority)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSyncQueueRepository_ClaimPending_OrdersByPriorityThenAge(t *testing.T) {
	db, mock := setupQueueTestDB(t)
	defer db.Close()
	repo := NewSQLXSyncQueueRepository(db)

	now := time.Now()
	older := now.Add(-2 * time.Hour)
	newer := now.Add(-1 * time.Hour)

	// RETURNING rows arrive in arbitrary order.
	rows := sqlmock.NewRows(queueColumns).
		AddRow("low-priority", "a1", []byte(`{}`), nil, 0, 5, 7, "processing",
			now, nil, nil, nil, nil, older, now).
		AddRow("newer-high", "a2", []byte(`{}`), nil, 0, 5, 1, "processing",
			now, nil, nil, nil, nil, newer, now).
		AddRow("older-high", "a3", []byte(`{}`), nil, 0, 5, 1, "processing",
			now, nil, nil, nil, nil, older, now)

	mock.ExpectQuery(`UPDATE hubspot_sync_queue SET status = 'processing'`).
		WillReturnRows(rows)

	entries, err := repo.ClaimPending(context.Background(), now, 10)
	assert.NoError(t, err)
	assert.Len(t, entries, 3)
	assert.Equal(t, "older-high", entries[0].ID)
	assert.Equal(t, "newer-high", entries[1].ID)
	assert.Equal(t, "low-priority", entries[2].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSyncQueueRepository_Update_NotFound(t *testing.T) {
	db, mock := setupQueueTestDB(t)
	defer db.Close()
	repo := NewSQLXSyncQueueRepository(db)

	mock.ExpectExec(`UPDATE hubspot_sync_queue SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), &domain.SyncQueueEntry{ID: "missing", Status: domain.QueueStatusPending})
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSyncQueueRepository_GetDeadLetters(t *testing.T) {
	db, mock := setupQueueTestDB(t)
	defer db.Close()
	repo := NewSQLXSyncQueueRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(queueColumns).
		AddRow("dead1", "a1", []byte(`{}`), "validation_error", 0, 5, 5, "failed",
			nil, "invalid email", nil, nil, nil, now, now)

	mock.ExpectQuery(`SELECT \* FROM hubspot_sync_queue WHERE status = 'failed'`).
		WillReturnRows(rows)

	entries, err := repo.GetDeadLetters(context.Background())
	assert.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.Equal(t, domain.QueueStatusFailed, entries[0].Status)
	assert.Nil(t, entries[0].NextRetryAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSyncQueueRepository_CountByStatus(t *testing.T) {
	db, mock := setupQueueTestDB(t)
	defer db.Close()
	repo := NewSQLXSyncQueueRepository(db)

	rows := sqlmock.NewRows([]string{"status", "cnt"}).
		AddRow("pending", 4).
		AddRow("failed", 2)

	mock.ExpectQuery(`SELECT status, COUNT\(\*\) AS cnt FROM hubspot_sync_queue GROUP BY status`).
		WillReturnRows(rows)

	counts, err := repo.CountByStatus(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, map[string]int{"pending": 4, "failed": 2}, counts)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSyncQueueRepository_CountFailuresSince(t *testing.T) {
	db, mock := setupQueueTestDB(t)
	defer db.Close()
	repo := NewSQLXSyncQueueRepository(db)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM hubspot_sync_queue`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	count, err := repo.CountFailuresSince(context.Background(), time.Now().Add(-time.Hour))
	assert.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
