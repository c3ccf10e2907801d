package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"leadsync/internal/config"
	"leadsync/internal/domain"
	"leadsync/internal/logger"
	"leadsync/internal/qualification"

	"go.uber.org/zap"
)

// hubspotRateLimitIdentifier scopes all outbound CRM calls to one shared
// quota bucket.
const hubspotRateLimitIdentifier = "hubspot:api"

// SyncOutcome reports the result of one sync attempt.
type SyncOutcome struct {
	Success   bool   `json:"success"`
	Skipped   bool   `json:"skipped"`
	Reason    string `json:"reason,omitempty"`
	ContactID string `json:"contact_id,omitempty"`
	DealID    string `json:"deal_id,omitempty"`
	Tier      int    `json:"tier"`
}

// syncPayload is the serialized form stored on retry queue entries.
type syncPayload struct {
	Contact   domain.ContactInfo    `json:"contact"`
	Score     float64               `json:"score"`
	Category  string                `json:"category"`
	Breakdown *domain.ScoreBreakdown `json:"breakdown,omitempty"`
	Completed *time.Time            `json:"completed_at,omitempty"`
}

// SyncService pushes qualified leads into HubSpot.
type SyncService interface {
	// CreateOrUpdateContact qualifies the assessment and, when warranted,
	// syncs a contact (and a deal for executive-tier leads). API failures
	// propagate to the caller for retry routing.
	CreateOrUpdateContact(ctx context.Context, assessment *domain.Assessment) (*SyncOutcome, error)

	// AttemptSync replays a queued entry. Implements SyncAttempter.
	AttemptSync(ctx context.Context, entry *domain.SyncQueueEntry) (string, string, error)

	// BuildPayload serializes an assessment for queue storage.
	BuildPayload(assessment *domain.Assessment) (json.RawMessage, error)
}

// syncService implements SyncService
type syncService struct {
	client     domain.HubSpotClient
	limiter    domain.RateLimiter
	engine     *qualification.Engine
	repo       domain.AssessmentRepository
	hubspotCfg config.HubSpotConfig
	now        func() time.Time
}

// NewSyncService creates a new instance of syncService
func NewSyncService(
	client domain.HubSpotClient,
	limiter domain.RateLimiter,
	engine *qualification.Engine,
	repo domain.AssessmentRepository,
	hubspotCfg config.HubSpotConfig,
) SyncService {
	return &syncService{
		client:     client,
		limiter:    limiter,
		engine:     engine,
		repo:       repo,
		hubspotCfg: hubspotCfg,
		now:        time.Now,
	}
}

func (s *syncService) CreateOrUpdateContact(ctx context.Context, assessment *domain.Assessment) (*SyncOutcome, error) {
	l := logger.Get()

	result, err := s.engine.Qualify(assessment)
	if err != nil {
		return nil, err
	}

	if !result.HubspotSyncRequired {
		l.Info("Sync skipped for unqualified lead",
			zap.String("assessment_id", assessment.ID),
			zap.Int("tier", result.Tier),
		)
		return &SyncOutcome{
			Success: true,
			Skipped: true,
			Reason:  "no contact information, tier 0",
			Tier:    result.Tier,
		}, nil
	}

	limit, err := s.limiter.Check(ctx, hubspotRateLimitIdentifier)
	if err != nil {
		return nil, domain.NewInternalError("rate limiter check failed", err)
	}
	if !limit.Allowed {
		return nil, domain.NewRateLimitedError(limit.RetryAfter)
	}

	contactID, err := s.client.CreateOrUpdateContact(ctx, s.buildContactProperties(assessment, result))
	if err != nil {
		l.Warn("HubSpot contact sync failed",
			zap.String("assessment_id", assessment.ID),
			zap.Error(err),
		)
		return nil, err
	}

	outcome := &SyncOutcome{
		Success:   true,
		ContactID: contactID,
		Tier:      result.Tier,
	}

	if result.DealCreationRequired {
		dealID, err := s.client.CreateDeal(ctx, s.buildDealProperties(assessment), contactID)
		if err != nil {
			l.Warn("HubSpot deal creation failed",
				zap.String("assessment_id", assessment.ID),
				zap.String("contact_id", contactID),
				zap.Error(err),
			)
			return nil, err
		}
		outcome.DealID = dealID
	}

	l.Info("HubSpot sync completed",
		zap.String("assessment_id", assessment.ID),
		zap.String("contact_id", outcome.ContactID),
		zap.String("deal_id", outcome.DealID),
		zap.Int("tier", result.Tier),
	)
	return outcome, nil
}

// AttemptSync rebuilds an assessment from the queued payload and replays the
// sync. Returns the external IDs so the queue can record them.
func (s *syncService) AttemptSync(ctx context.Context, entry *domain.SyncQueueEntry) (string, string, error) {
	assessment, err := s.repo.GetByID(ctx, entry.AssessmentID)
	if err != nil {
		return "", "", err
	}
	if assessment == nil {
		return "", "", domain.NewAssessmentNotFoundError(entry.AssessmentID)
	}

	// The queued payload is the contact snapshot taken at enqueue time; it
	// survives later PII scrubbing of the assessment row.
	if len(entry.Payload) > 0 {
		var payload syncPayload
		if err := json.Unmarshal(entry.Payload, &payload); err == nil && payload.Contact.HasEmail() {
			assessment.Contact = payload.Contact
		}
	}

	outcome, err := s.CreateOrUpdateContact(ctx, assessment)
	if err != nil {
		assessment.HubspotSyncAttempts++
		assessment.HubspotSyncError = err.Error()
		if updateErr := s.repo.UpdateSyncState(ctx, assessment); updateErr != nil {
			logger.Get().Error("Failed to persist sync failure state",
				zap.String("assessment_id", assessment.ID),
				zap.Error(updateErr),
			)
		}
		return "", "", err
	}

	assessment.HubspotSyncStatus = domain.SyncStatusSynced
	assessment.HubspotSyncAttempts++
	assessment.HubspotSyncError = ""
	assessment.HubspotContactID = outcome.ContactID
	assessment.HubspotDealID = outcome.DealID
	if err := s.repo.UpdateSyncState(ctx, assessment); err != nil {
		logger.Get().Error("Failed to persist sync success state",
			zap.String("assessment_id", assessment.ID),
			zap.Error(err),
		)
	}
	return outcome.ContactID, outcome.DealID, nil
}

func (s *syncService) BuildPayload(assessment *domain.Assessment) (json.RawMessage, error) {
	payload := syncPayload{
		Contact:   assessment.Contact,
		Score:     assessment.TotalScore,
		Category:  assessment.Category,
		Breakdown: assessment.ScoreBreakdown,
		Completed: assessment.CompletedAt,
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, domain.NewInternalError("failed to serialize sync payload", err)
	}
	return raw, nil
}

func (s *syncService) buildContactProperties(a *domain.Assessment, q *domain.QualificationResult) *domain.ContactProperties {
	props := &domain.ContactProperties{
		Email:     a.Contact.Email,
		FirstName: a.Contact.FirstName,
		LastName:  a.Contact.LastName,
		Company:   a.Contact.Company,
		Phone:     a.Contact.Phone,

		AssessmentScore:    formatScore(a.TotalScore),
		AssessmentCategory: a.Category,
		LeadQuality:        q.LeadQuality,
		LeadSource:         s.hubspotCfg.LeadSource,
	}

	if a.ScoreBreakdown != nil {
		props.ValueScore = formatScore(a.ScoreBreakdown.ValueCreation)
		props.CustomerScore = formatScore(a.ScoreBreakdown.CustomerSafety)
		props.RiskScore = formatScore(a.ScoreBreakdown.RiskManagement)
		props.GovernanceScore = formatScore(a.ScoreBreakdown.Governance)
	}

	if a.CompletedAt != nil {
		props.AssessmentDate = a.CompletedAt.UTC().Format("2006-01-02")
		props.CompletionTime = a.CompletedAt.UTC().Format(time.RFC3339)
	}

	return props
}

func (s *syncService) buildDealProperties(a *domain.Assessment) *domain.DealProperties {
	name := strings.TrimSpace(strings.TrimSpace(a.Contact.FirstName+" "+a.Contact.LastName) + " - " + a.Contact.Company)
	name = strings.Trim(name, "- ")
	if name == "" {
		name = a.Contact.Email
	}

	return &domain.DealProperties{
		DealName:  fmt.Sprintf("%s - Executive Briefing", name),
		Pipeline:  s.hubspotCfg.Pipeline,
		DealStage: s.hubspotCfg.DealStage,
		Amount:    s.hubspotCfg.DealAmount,
	}
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}
