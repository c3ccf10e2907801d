package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"leadsync/internal/domain"
	"leadsync/internal/repository/models"

	"github.com/jmoiron/sqlx"
)

// sqlxSessionRepository implements domain.SessionRepository using sqlx.
type sqlxSessionRepository struct {
	db *sqlx.DB
}

// NewSQLXSessionRepository creates a new instance of sqlxSessionRepository.
func NewSQLXSessionRepository(db *sqlx.DB) domain.SessionRepository {
	return &sqlxSessionRepository{db: db}
}

func toDomainSession(m *models.AssessmentSession) *domain.AssessmentSession {
	if m == nil {
		return nil
	}
	return &domain.AssessmentSession{
		ID:             m.ID,
		AssessmentID:   m.AssessmentID,
		CreatedAt:      m.CreatedAt,
		LastActivityAt: m.LastActivityAt,
		ExpiresAt:      m.ExpiresAt,
	}
}

// Create inserts a new session.
func (r *sqlxSessionRepository) Create(ctx context.Context, session *domain.AssessmentSession) error {
	query := `INSERT INTO assessment_sessions (id, assessment_id, created_at, last_activity_at, expires_at)
	          VALUES ($1, $2, $3, $4, $5)`

	executor := GetExecutor(ctx, r.db)
	_, err := executor.ExecContext(ctx, query,
		session.ID,
		session.AssessmentID,
		session.CreatedAt,
		session.LastActivityAt,
		session.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// GetByID retrieves a session by its ID. Returns nil, nil when not found.
func (r *sqlxSessionRepository) GetByID(ctx context.Context, id string) (*domain.AssessmentSession, error) {
	var m models.AssessmentSession
	query := `SELECT * FROM assessment_sessions WHERE id = $1`

	executor := GetExecutor(ctx, r.db)
	if err := executor.GetContext(ctx, &m, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get session by id: %w", err)
	}
	return toDomainSession(&m), nil
}

// Touch extends the session expiry.
func (r *sqlxSessionRepository) Touch(ctx context.Context, session *domain.AssessmentSession) error {
	query := `UPDATE assessment_sessions SET last_activity_at = $1, expires_at = $2 WHERE id = $3`

	executor := GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, query, session.LastActivityAt, session.ExpiresAt, session.ID)
	if err != nil {
		return fmt.Errorf("failed to touch session: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read touch result: %w", err)
	}
	if rows == 0 {
		return domain.NewSessionExpiredError(session.ID)
	}
	return nil
}

// DeleteExpired removes sessions that expired before now.
func (r *sqlxSessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	query := `DELETE FROM assessment_sessions WHERE expires_at < $1`

	executor := GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read delete result: %w", err)
	}
	return deleted, nil
}
