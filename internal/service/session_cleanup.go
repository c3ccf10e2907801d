package service

import (
	"context"
	"time"

	"leadsync/internal/config"
	"leadsync/internal/domain"
	"leadsync/internal/logger"

	"go.uber.org/zap"
)

const scrubBatchSize = 100

// CleanupResult summarizes one maintenance pass.
type CleanupResult struct {
	SessionsDeleted int64
	Scrubbed        int
}

// CleanupService removes expired sessions and scrubs contact PII from
// assessments past the retention window. Scrubbing leaves score and
// response analytics fields untouched.
type CleanupService interface {
	Run(ctx context.Context) (*CleanupResult, error)
}

// cleanupService implements CleanupService
type cleanupService struct {
	sessions   domain.SessionRepository
	repo       domain.AssessmentRepository
	sessionCfg config.SessionConfig
	now        func() time.Time
}

// NewCleanupService creates a new instance of cleanupService
func NewCleanupService(
	sessions domain.SessionRepository,
	repo domain.AssessmentRepository,
	sessionCfg config.SessionConfig,
) CleanupService {
	return &cleanupService{
		sessions:   sessions,
		repo:       repo,
		sessionCfg: sessionCfg,
		now:        time.Now,
	}
}

func (s *cleanupService) Run(ctx context.Context) (*CleanupResult, error) {
	l := logger.Get()
	now := s.now()
	result := &CleanupResult{}

	deleted, err := s.sessions.DeleteExpired(ctx, now)
	if err != nil {
		return nil, domain.NewInternalError("failed to delete expired sessions", err)
	}
	result.SessionsDeleted = deleted

	if s.sessionCfg.ScrubAfter <= 0 {
		return result, nil
	}

	cutoff := now.Add(-s.sessionCfg.ScrubAfter)
	candidates, err := s.repo.GetScrubCandidates(ctx, cutoff, scrubBatchSize)
	if err != nil {
		return nil, domain.NewInternalError("failed to fetch scrub candidates", err)
	}

	for _, assessment := range candidates {
		assessment.Scrub(now)
		if err := s.repo.Update(ctx, assessment); err != nil {
			l.Error("Failed to scrub assessment",
				zap.String("assessment_id", assessment.ID),
				zap.Error(err),
			)
			continue
		}
		result.Scrubbed++
	}

	if result.SessionsDeleted > 0 || result.Scrubbed > 0 {
		l.Info("Cleanup pass finished",
			zap.Int64("sessions_deleted", result.SessionsDeleted),
			zap.Int("assessments_scrubbed", result.Scrubbed),
		)
	}
	return result, nil
}
