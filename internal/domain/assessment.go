package domain

import (
	"strings"
	"time"
)

// Sync status values recorded on an assessment.
const (
	SyncStatusNotRequired = "not_required"
	SyncStatusPending     = "pending"
	SyncStatusSynced      = "synced"
	SyncStatusFailed      = "failed"
)

// ScoreBreakdown holds the normalized 0-100 sub-scores for the four
// weighted assessment categories.
type ScoreBreakdown struct {
	ValueCreation  float64 `json:"value_creation"`
	CustomerSafety float64 `json:"customer_safety"`
	RiskManagement float64 `json:"risk_management"`
	Governance     float64 `json:"governance"`
}

// ContactInfo is the optional lead-capture data attached to an assessment.
// Any subset of fields may be present.
type ContactInfo struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Company   string `json:"company"`
	Phone     string `json:"phone"`
	Industry  string `json:"industry"`
}

// HasEmail reports whether a usable email address is present.
func (c ContactInfo) HasEmail() bool {
	return strings.TrimSpace(c.Email) != ""
}

// Assessment represents a single quiz attempt. Score fields are populated
// only after completion.
type Assessment struct {
	ID             string
	SessionID      string
	Responses      map[string]string
	TotalScore     float64
	ScoreBreakdown *ScoreBreakdown
	Category       string
	Recommendations []string
	Insight        string

	Contact ContactInfo

	HubspotSyncStatus   string
	HubspotSyncAttempts int
	HubspotSyncError    string
	HubspotContactID    string
	HubspotDealID       string

	CreatedAt       time.Time
	UpdatedAt       time.Time
	CompletedAt     *time.Time
	EmailScrubbedAt *time.Time
}

// IsCompleted reports whether the assessment has been finalized and scored.
func (a *Assessment) IsCompleted() bool {
	return a.CompletedAt != nil
}

// Scrub removes PII from the assessment while leaving score, category and
// response analytics fields untouched.
func (a *Assessment) Scrub(at time.Time) {
	a.Contact = ContactInfo{}
	a.EmailScrubbedAt = &at
}

// AssessmentSession is the ephemeral in-progress state for an assessment.
// It expires after a fixed TTL, extended on activity.
type AssessmentSession struct {
	ID             string
	AssessmentID   string
	CreatedAt      time.Time
	LastActivityAt time.Time
	ExpiresAt      time.Time
}

// IsExpired reports whether the session has passed its TTL.
func (s *AssessmentSession) IsExpired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// Touch extends the session TTL from the given instant.
func (s *AssessmentSession) Touch(now time.Time, ttl time.Duration) {
	s.LastActivityAt = now
	s.ExpiresAt = now.Add(ttl)
}
