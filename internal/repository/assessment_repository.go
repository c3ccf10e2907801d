package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"leadsync/internal/domain"
	"leadsync/internal/repository/models"
	"leadsync/internal/util"

	"github.com/jmoiron/sqlx"
)

// sqlxAssessmentRepository implements domain.AssessmentRepository using sqlx.
type sqlxAssessmentRepository struct {
	db *sqlx.DB
}

// NewSQLXAssessmentRepository creates a new instance of sqlxAssessmentRepository.
func NewSQLXAssessmentRepository(db *sqlx.DB) domain.AssessmentRepository {
	return &sqlxAssessmentRepository{db: db}
}

func toDomainAssessment(m *models.Assessment) *domain.Assessment {
	if m == nil {
		return nil
	}

	var breakdown *domain.ScoreBreakdown
	if m.ScoreBreakdown.Valid {
		b := m.ScoreBreakdown.Breakdown
		breakdown = &b
	}

	return &domain.Assessment{
		ID:              m.ID,
		SessionID:       m.SessionID.String,
		Responses:       m.Responses,
		TotalScore:      m.TotalScore.Float64,
		ScoreBreakdown:  breakdown,
		Category:        m.Category.String,
		Recommendations: m.Recommendations,
		Insight:         m.Insight.String,
		Contact: domain.ContactInfo{
			Email:     m.Email.String,
			FirstName: m.FirstName.String,
			LastName:  m.LastName.String,
			Company:   m.Company.String,
			Phone:     m.Phone.String,
			Industry:  m.Industry.String,
		},
		HubspotSyncStatus:   m.HubspotSyncStatus,
		HubspotSyncAttempts: m.HubspotSyncAttempts,
		HubspotSyncError:    m.HubspotSyncError.String,
		HubspotContactID:    m.HubspotContactID.String,
		HubspotDealID:       m.HubspotDealID.String,
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
		CompletedAt:         util.NullTimeToTimePtr(m.CompletedAt),
		EmailScrubbedAt:     util.NullTimeToTimePtr(m.EmailScrubbedAt),
	}
}

func fromDomainAssessment(a *domain.Assessment) *models.Assessment {
	if a == nil {
		return nil
	}

	var breakdown models.NullScoreBreakdown
	if a.ScoreBreakdown != nil {
		breakdown = models.NullScoreBreakdown{Breakdown: *a.ScoreBreakdown, Valid: true}
	}

	var totalScore sql.NullFloat64
	if a.IsCompleted() {
		totalScore = sql.NullFloat64{Float64: a.TotalScore, Valid: true}
	}

	return &models.Assessment{
		ID:                  a.ID,
		SessionID:           util.StringToNullString(a.SessionID),
		Responses:           a.Responses,
		TotalScore:          totalScore,
		ScoreBreakdown:      breakdown,
		Category:            util.StringToNullString(a.Category),
		Recommendations:     a.Recommendations,
		Insight:             util.StringToNullString(a.Insight),
		Email:               util.StringToNullString(a.Contact.Email),
		FirstName:           util.StringToNullString(a.Contact.FirstName),
		LastName:            util.StringToNullString(a.Contact.LastName),
		Company:             util.StringToNullString(a.Contact.Company),
		Phone:               util.StringToNullString(a.Contact.Phone),
		Industry:            util.StringToNullString(a.Contact.Industry),
		HubspotSyncStatus:   a.HubspotSyncStatus,
		HubspotSyncAttempts: a.HubspotSyncAttempts,
		HubspotSyncError:    util.StringToNullString(a.HubspotSyncError),
		HubspotContactID:    util.StringToNullString(a.HubspotContactID),
		HubspotDealID:       util.StringToNullString(a.HubspotDealID),
		CreatedAt:           a.CreatedAt,
		UpdatedAt:           a.UpdatedAt,
		CompletedAt:         util.TimePtrToNullTime(a.CompletedAt),
		EmailScrubbedAt:     util.TimePtrToNullTime(a.EmailScrubbedAt),
	}
}

// Create inserts a new assessment into the database.
func (r *sqlxAssessmentRepository) Create(ctx context.Context, assessment *domain.Assessment) error {
	m := fromDomainAssessment(assessment)
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	m.UpdatedAt = time.Now()
	if m.HubspotSyncStatus == "" {
		m.HubspotSyncStatus = domain.SyncStatusNotRequired
	}

	query := `INSERT INTO assessments (
	            id, session_id, responses, total_score, score_breakdown, category,
	            recommendations, insight, email, first_name, last_name, company, phone,
	            industry, hubspot_sync_status, hubspot_sync_attempts, hubspot_sync_error,
	            hubspot_contact_id, hubspot_deal_id, created_at, updated_at, completed_at,
	            email_scrubbed_at)
	          VALUES (:id, :session_id, :responses, :total_score, :score_breakdown, :category,
	            :recommendations, :insight, :email, :first_name, :last_name, :company, :phone,
	            :industry, :hubspot_sync_status, :hubspot_sync_attempts, :hubspot_sync_error,
	            :hubspot_contact_id, :hubspot_deal_id, :created_at, :updated_at, :completed_at,
	            :email_scrubbed_at)`

	executor := GetExecutor(ctx, r.db)
	if _, err := executor.NamedExecContext(ctx, query, m); err != nil {
		return fmt.Errorf("failed to create assessment: %w", err)
	}
	return nil
}

// GetByID retrieves an assessment by its ID. Returns nil, nil when not found.
func (r *sqlxAssessmentRepository) GetByID(ctx context.Context, id string) (*domain.Assessment, error) {
	var m models.Assessment
	query := `SELECT * FROM assessments WHERE id = $1`

	executor := GetExecutor(ctx, r.db)
	if err := executor.GetContext(ctx, &m, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get assessment by id: %w", err)
	}
	return toDomainAssessment(&m), nil
}

// Update persists changes to an existing assessment.
func (r *sqlxAssessmentRepository) Update(ctx context.Context, assessment *domain.Assessment) error {
	m := fromDomainAssessment(assessment)
	m.UpdatedAt = time.Now()

	query := `UPDATE assessments SET
	            responses = :responses,
	            total_score = :total_score,
	            score_breakdown = :score_breakdown,
	            category = :category,
	            recommendations = :recommendations,
	            insight = :insight,
	            email = :email,
	            first_name = :first_name,
	            last_name = :last_name,
	            company = :company,
	            phone = :phone,
	            industry = :industry,
	            hubspot_sync_status = :hubspot_sync_status,
	            hubspot_sync_attempts = :hubspot_sync_attempts,
	            hubspot_sync_error = :hubspot_sync_error,
	            hubspot_contact_id = :hubspot_contact_id,
	            hubspot_deal_id = :hubspot_deal_id,
	            updated_at = :updated_at,
	            completed_at = :completed_at,
	            email_scrubbed_at = :email_scrubbed_at
	          WHERE id = :id`

	executor := GetExecutor(ctx, r.db)
	result, err := executor.NamedExecContext(ctx, query, m)
	if err != nil {
		return fmt.Errorf("failed to update assessment: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read update result: %w", err)
	}
	if rows == 0 {
		return domain.NewAssessmentNotFoundError(assessment.ID)
	}
	return nil
}

// UpdateSyncState updates only the HubSpot sync bookkeeping fields.
func (r *sqlxAssessmentRepository) UpdateSyncState(ctx context.Context, assessment *domain.Assessment) error {
	query := `UPDATE assessments SET
	            hubspot_sync_status = $1,
	            hubspot_sync_attempts = $2,
	            hubspot_sync_error = $3,
	            hubspot_contact_id = $4,
	            hubspot_deal_id = $5,
	            updated_at = $6
	          WHERE id = $7`

	executor := GetExecutor(ctx, r.db)
	_, err := executor.ExecContext(ctx, query,
		assessment.HubspotSyncStatus,
		assessment.HubspotSyncAttempts,
		util.StringToNullString(assessment.HubspotSyncError),
		util.StringToNullString(assessment.HubspotContactID),
		util.StringToNullString(assessment.HubspotDealID),
		time.Now(),
		assessment.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update assessment sync state: %w", err)
	}
	return nil
}

// GetScrubCandidates returns completed, unscrubbed assessments whose
// completion predates the cutoff and which still carry contact data.
func (r *sqlxAssessmentRepository) GetScrubCandidates(ctx context.Context, before time.Time, limit int) ([]*domain.Assessment, error) {
	var ms []models.Assessment
	query := `SELECT * FROM assessments
	          WHERE completed_at IS NOT NULL
	            AND completed_at <= $1
	            AND email_scrubbed_at IS NULL
	            AND (email IS NOT NULL OR first_name IS NOT NULL OR last_name IS NOT NULL
	                 OR company IS NOT NULL OR phone IS NOT NULL)
	          ORDER BY completed_at ASC
	          LIMIT $2`

	executor := GetExecutor(ctx, r.db)
	if err := executor.SelectContext(ctx, &ms, query, before, limit); err != nil {
		return nil, fmt.Errorf("failed to get scrub candidates: %w", err)
	}

	assessments := make([]*domain.Assessment, 0, len(ms))
	for i := range ms {
		assessments = append(assessments, toDomainAssessment(&ms[i]))
	}
	return assessments, nil
}
