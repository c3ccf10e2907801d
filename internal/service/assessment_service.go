package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"leadsync/internal/cache"
	"leadsync/internal/config"
	"leadsync/internal/domain"
	"leadsync/internal/dto"
	"leadsync/internal/logger"
	"leadsync/internal/qualification"
	"leadsync/internal/scoring"
	"leadsync/internal/util"

	"go.uber.org/zap"
)

const resultCacheTTL = time.Hour

// AssessmentService drives the assessment lifecycle from session start
// through scoring and CRM handoff.
type AssessmentService interface {
	Start(ctx context.Context) (*dto.StartAssessmentResponse, error)
	SaveResponses(ctx context.Context, assessmentID string, req *dto.SaveResponsesRequest) error
	Complete(ctx context.Context, assessmentID string, req *dto.CompleteAssessmentRequest) (*dto.AssessmentResultResponse, error)
	GetResults(ctx context.Context, assessmentID string) (*dto.AssessmentResultResponse, error)
}

// assessmentService implements AssessmentService
type assessmentService struct {
	repo        domain.AssessmentRepository
	sessions    domain.SessionRepository
	txManager   domain.TransactionManager
	syncService SyncService
	retryQueue  RetryQueueService
	engine      *qualification.Engine
	cache       domain.Cache
	insights    domain.InsightGenerator
	sessionCfg  config.SessionConfig
	now         func() time.Time
}

// NewAssessmentService creates a new instance of assessmentService.
// insights may be nil; narrative insights are then omitted.
func NewAssessmentService(
	repo domain.AssessmentRepository,
	sessions domain.SessionRepository,
	txManager domain.TransactionManager,
	syncService SyncService,
	retryQueue RetryQueueService,
	engine *qualification.Engine,
	cacheAdapter domain.Cache,
	insights domain.InsightGenerator,
	sessionCfg config.SessionConfig,
) AssessmentService {
	return &assessmentService{
		repo:        repo,
		sessions:    sessions,
		txManager:   txManager,
		syncService: syncService,
		retryQueue:  retryQueue,
		engine:      engine,
		cache:       cacheAdapter,
		insights:    insights,
		sessionCfg:  sessionCfg,
		now:         time.Now,
	}
}

// Start creates a fresh assessment with an attached session.
func (s *assessmentService) Start(ctx context.Context) (*dto.StartAssessmentResponse, error) {
	now := s.now()

	session := &domain.AssessmentSession{
		ID:             util.NewULID(),
		AssessmentID:   util.NewULID(),
		CreatedAt:      now,
		LastActivityAt: now,
		ExpiresAt:      now.Add(s.sessionCfg.TTL),
	}

	assessment := &domain.Assessment{
		ID:                session.AssessmentID,
		SessionID:         session.ID,
		Responses:         map[string]string{},
		HubspotSyncStatus: domain.SyncStatusNotRequired,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	// Both rows or neither; an assessment without its session is unusable.
	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.repo.Create(txCtx, assessment); err != nil {
			return err
		}
		return s.sessions.Create(txCtx, session)
	})
	if err != nil {
		return nil, err
	}

	logger.Get().Info("Assessment started",
		zap.String("assessment_id", assessment.ID),
		zap.String("session_id", session.ID),
	)

	return &dto.StartAssessmentResponse{
		AssessmentID: assessment.ID,
		SessionID:    session.ID,
		ExpiresAt:    session.ExpiresAt.UTC().Format(time.RFC3339),
	}, nil
}

// SaveResponses merges step answers into the assessment and extends the
// session TTL.
func (s *assessmentService) SaveResponses(ctx context.Context, assessmentID string, req *dto.SaveResponsesRequest) error {
	assessment, err := s.loadForSession(ctx, assessmentID, req.SessionID)
	if err != nil {
		return err
	}
	if assessment.IsCompleted() {
		return domain.NewInvalidInputError("assessment is already completed")
	}

	if assessment.Responses == nil {
		assessment.Responses = map[string]string{}
	}
	for questionID, choice := range req.Responses {
		assessment.Responses[questionID] = choice
	}

	return s.repo.Update(ctx, assessment)
}

// Complete finalizes the assessment: score, persist, qualify and attempt an
// immediate CRM sync, falling back to the retry queue on transient failure.
// Results are always returned to the caller regardless of sync outcome.
func (s *assessmentService) Complete(ctx context.Context, assessmentID string, req *dto.CompleteAssessmentRequest) (*dto.AssessmentResultResponse, error) {
	l := logger.Get()

	assessment, err := s.loadForSession(ctx, assessmentID, req.SessionID)
	if err != nil {
		return nil, err
	}
	if assessment.IsCompleted() {
		return s.buildResult(assessment), nil
	}

	if assessment.Responses == nil {
		assessment.Responses = map[string]string{}
	}
	for questionID, choice := range req.Responses {
		assessment.Responses[questionID] = choice
	}
	if req.Contact != nil {
		assessment.Contact = domain.ContactInfo{
			Email:     req.Contact.Email,
			FirstName: req.Contact.FirstName,
			LastName:  req.Contact.LastName,
			Company:   req.Contact.Company,
			Phone:     req.Contact.Phone,
			Industry:  req.Contact.Industry,
		}
	}

	score := scoring.Calculate(assessment.Responses)
	if score.SkippedAnswers > 0 {
		l.Warn("Skipped unrecognized answers during scoring",
			zap.String("assessment_id", assessment.ID),
			zap.Int("skipped", score.SkippedAnswers),
		)
	}

	now := s.now()
	breakdown := score.Breakdown
	assessment.TotalScore = score.TotalScore
	assessment.ScoreBreakdown = &breakdown
	assessment.Category = score.Category
	assessment.Recommendations = score.Recommendations
	assessment.CompletedAt = &now

	qual, err := s.engine.Qualify(assessment)
	if err != nil {
		return nil, err
	}
	if qual.HubspotSyncRequired {
		assessment.HubspotSyncStatus = domain.SyncStatusPending
	}

	if s.insights != nil {
		insight, insightErr := s.insights.GenerateInsight(ctx, assessment)
		if insightErr != nil {
			// Insights are cosmetic; the result never depends on them.
			l.Warn("Insight generation failed",
				zap.String("assessment_id", assessment.ID),
				zap.Error(insightErr),
			)
		} else {
			assessment.Insight = insight
		}
	}

	if err := s.repo.Update(ctx, assessment); err != nil {
		return nil, err
	}

	s.syncOrEnqueue(ctx, assessment)

	result := s.buildResult(assessment)
	s.cacheResult(ctx, result)
	return result, nil
}

// syncOrEnqueue attempts an immediate sync and routes failures to the retry
// queue. Sync problems never surface to the assessment caller.
func (s *assessmentService) syncOrEnqueue(ctx context.Context, assessment *domain.Assessment) {
	l := logger.Get()

	outcome, err := s.syncService.CreateOrUpdateContact(ctx, assessment)
	if err == nil {
		if outcome.Skipped {
			assessment.HubspotSyncStatus = domain.SyncStatusNotRequired
		} else {
			assessment.HubspotSyncStatus = domain.SyncStatusSynced
			assessment.HubspotSyncAttempts++
			assessment.HubspotContactID = outcome.ContactID
			assessment.HubspotDealID = outcome.DealID
		}
		if updateErr := s.repo.UpdateSyncState(ctx, assessment); updateErr != nil {
			l.Error("Failed to persist sync state",
				zap.String("assessment_id", assessment.ID),
				zap.Error(updateErr),
			)
		}
		return
	}

	errorType := domain.ClassifySyncError(err)
	assessment.HubspotSyncStatus = domain.SyncStatusPending
	assessment.HubspotSyncAttempts++
	assessment.HubspotSyncError = err.Error()

	payload, payloadErr := s.syncService.BuildPayload(assessment)
	if payloadErr != nil {
		l.Error("Failed to build sync payload",
			zap.String("assessment_id", assessment.ID),
			zap.Error(payloadErr),
		)
		payload = json.RawMessage("{}")
	}

	if entry, queueErr := s.retryQueue.QueueForRetry(ctx, assessment.ID, payload, errorType, nil); queueErr != nil {
		l.Error("Failed to enqueue sync retry",
			zap.String("assessment_id", assessment.ID),
			zap.Error(queueErr),
		)
		assessment.HubspotSyncStatus = domain.SyncStatusFailed
	} else if entry.Status == domain.QueueStatusFailed {
		// Dead-lettered on arrival; there will be no retries.
		assessment.HubspotSyncStatus = domain.SyncStatusFailed
	} else {
		l.Info("Sync deferred to retry queue",
			zap.String("assessment_id", assessment.ID),
			zap.String("error_type", errorType),
		)
	}

	if updateErr := s.repo.UpdateSyncState(ctx, assessment); updateErr != nil {
		l.Error("Failed to persist sync state",
			zap.String("assessment_id", assessment.ID),
			zap.Error(updateErr),
		)
	}
}

// GetResults returns the scored outcome, served from cache when possible.
func (s *assessmentService) GetResults(ctx context.Context, assessmentID string) (*dto.AssessmentResultResponse, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, cache.ResultCacheKey(assessmentID))
		if err == nil {
			var result dto.AssessmentResultResponse
			if jsonErr := json.Unmarshal([]byte(cached), &result); jsonErr == nil {
				return &result, nil
			}
		} else if !errors.Is(err, domain.ErrCacheMiss) {
			logger.Get().Warn("Result cache read failed",
				zap.String("assessment_id", assessmentID),
				zap.Error(err),
			)
		}
	}

	assessment, err := s.repo.GetByID(ctx, assessmentID)
	if err != nil {
		return nil, err
	}
	if assessment == nil {
		return nil, domain.NewAssessmentNotFoundError(assessmentID)
	}
	if !assessment.IsCompleted() {
		return nil, domain.NewAssessmentIncompleteError(assessmentID)
	}

	result := s.buildResult(assessment)
	s.cacheResult(ctx, result)
	return result, nil
}

func (s *assessmentService) loadForSession(ctx context.Context, assessmentID, sessionID string) (*domain.Assessment, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil || session.AssessmentID != assessmentID {
		return nil, domain.NewAssessmentNotFoundError(assessmentID)
	}

	now := s.now()
	if session.IsExpired(now) {
		return nil, domain.NewSessionExpiredError(sessionID)
	}
	session.Touch(now, s.sessionCfg.TTL)
	if err := s.sessions.Touch(ctx, session); err != nil {
		return nil, err
	}

	assessment, err := s.repo.GetByID(ctx, assessmentID)
	if err != nil {
		return nil, err
	}
	if assessment == nil {
		return nil, domain.NewAssessmentNotFoundError(assessmentID)
	}
	return assessment, nil
}

func (s *assessmentService) buildResult(a *domain.Assessment) *dto.AssessmentResultResponse {
	result := &dto.AssessmentResultResponse{
		AssessmentID:    a.ID,
		TotalScore:      a.TotalScore,
		Category:        a.Category,
		Recommendations: a.Recommendations,
		Insight:         a.Insight,
		SyncStatus:      a.HubspotSyncStatus,
	}
	if a.ScoreBreakdown != nil {
		result.ScoreBreakdown = &dto.ScoreBreakdownResponse{
			ValueCreation:  a.ScoreBreakdown.ValueCreation,
			CustomerSafety: a.ScoreBreakdown.CustomerSafety,
			RiskManagement: a.ScoreBreakdown.RiskManagement,
			Governance:     a.ScoreBreakdown.Governance,
		}
	}
	if a.CompletedAt != nil {
		result.CompletedAt = a.CompletedAt.UTC().Format(time.RFC3339)
	}
	return result
}

func (s *assessmentService) cacheResult(ctx context.Context, result *dto.AssessmentResultResponse) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, cache.ResultCacheKey(result.AssessmentID), string(raw), resultCacheTTL); err != nil {
		logger.Get().Warn("Result cache write failed",
			zap.String("assessment_id", result.AssessmentID),
			zap.Error(err),
		)
	}
}
