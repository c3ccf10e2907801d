package models

import (
	"database/sql"
	"time"
)

// Assessment is the database model for a quiz attempt. Contact fields are
// nullable and independently optional; score fields are null until completion.
type Assessment struct {
	ID              string             `db:"id"`
	SessionID       sql.NullString     `db:"session_id"`
	Responses       ResponseMap        `db:"responses"`
	TotalScore      sql.NullFloat64    `db:"total_score"`
	ScoreBreakdown  NullScoreBreakdown `db:"score_breakdown"`
	Category        sql.NullString     `db:"category"`
	Recommendations StringSlice        `db:"recommendations"`
	Insight         sql.NullString     `db:"insight"`

	Email     sql.NullString `db:"email"`
	FirstName sql.NullString `db:"first_name"`
	LastName  sql.NullString `db:"last_name"`
	Company   sql.NullString `db:"company"`
	Phone     sql.NullString `db:"phone"`
	Industry  sql.NullString `db:"industry"`

	HubspotSyncStatus   string         `db:"hubspot_sync_status"`
	HubspotSyncAttempts int            `db:"hubspot_sync_attempts"`
	HubspotSyncError    sql.NullString `db:"hubspot_sync_error"`
	HubspotContactID    sql.NullString `db:"hubspot_contact_id"`
	HubspotDealID       sql.NullString `db:"hubspot_deal_id"`

	CreatedAt       time.Time    `db:"created_at"`
	UpdatedAt       time.Time    `db:"updated_at"`
	CompletedAt     sql.NullTime `db:"completed_at"`
	EmailScrubbedAt sql.NullTime `db:"email_scrubbed_at"`
}

// AssessmentSession is the database model for ephemeral in-progress state.
type AssessmentSession struct {
	ID             string    `db:"id"`
	AssessmentID   string    `db:"assessment_id"`
	CreatedAt      time.Time `db:"created_at"`
	LastActivityAt time.Time `db:"last_activity_at"`
	ExpiresAt      time.Time `db:"expires_at"`
}
