package service

import (
	"context"
	"encoding/json"
	"time"

	"leadsync/internal/domain"
	"leadsync/internal/logger"
	"leadsync/internal/util"

	"go.uber.org/zap"
)

const (
	DefaultQueuePriority = 5
	DefaultMaxRetries    = 5
)

// retryDelays holds the backoff schedule in seconds, indexed by retry count.
// Counts beyond the table reuse the last entry.
var retryDelays = []time.Duration{
	60 * time.Second,
	300 * time.Second,
	900 * time.Second,
	1800 * time.Second,
	3600 * time.Second,
}

// CalculateRetryDelay returns the backoff before the next attempt for the
// given retry count. Never unbounded: counts past the schedule are capped
// at the final delay.
func CalculateRetryDelay(retryCount int) time.Duration {
	if retryCount < 0 {
		retryCount = 0
	}
	if retryCount >= len(retryDelays) {
		return retryDelays[len(retryDelays)-1]
	}
	return retryDelays[retryCount]
}

// QueueOptions tunes a new retry queue entry.
type QueueOptions struct {
	Priority   int
	MaxRetries int
}

// ProcessResult summarizes one drain of the retry queue.
type ProcessResult struct {
	Processed int
	Succeeded int
	Failed    int
}

// SyncAttempter performs one sync attempt for a claimed queue entry and
// returns the external IDs on success. ProcessPendingQueue depends on this
// rather than on the full sync service.
type SyncAttempter interface {
	AttemptSync(ctx context.Context, entry *domain.SyncQueueEntry) (contactID, dealID string, err error)
}

// RetryQueueService manages the persistent HubSpot sync retry queue.
type RetryQueueService interface {
	QueueForRetry(ctx context.Context, assessmentID string, payload json.RawMessage, errorType string, opts *QueueOptions) (*domain.SyncQueueEntry, error)
	GetPendingEntries(ctx context.Context, limit int) ([]*domain.SyncQueueEntry, error)
	RecordFailedAttempt(ctx context.Context, entryID string, errorMessage string) (*domain.SyncQueueEntry, error)
	RecordSuccessfulSync(ctx context.Context, entryID string, contactID, dealID string) (*domain.SyncQueueEntry, error)
	GetDeadLetterQueue(ctx context.Context) ([]*domain.SyncQueueEntry, error)
	ProcessPendingQueue(ctx context.Context, batchSize int, attempter SyncAttempter) (*ProcessResult, error)
	Stats(ctx context.Context) (map[string]int, int, error)
}

// retryQueueService implements RetryQueueService
type retryQueueService struct {
	repo        domain.SyncQueueRepository
	assessments domain.AssessmentRepository
	now         func() time.Time
}

// NewRetryQueueService creates a new instance of retryQueueService
func NewRetryQueueService(repo domain.SyncQueueRepository, assessments domain.AssessmentRepository) RetryQueueService {
	return &retryQueueService{
		repo:        repo,
		assessments: assessments,
		now:         time.Now,
	}
}

// QueueForRetry persists a new pending entry, immediately eligible for
// processing. validation_error payloads are dead-lettered on arrival since
// resending identical invalid data cannot succeed.
func (s *retryQueueService) QueueForRetry(ctx context.Context, assessmentID string, payload json.RawMessage, errorType string, opts *QueueOptions) (*domain.SyncQueueEntry, error) {
	if assessmentID == "" {
		return nil, domain.NewInvalidInputError("assessment id is required")
	}

	priority := DefaultQueuePriority
	maxRetries := DefaultMaxRetries
	if opts != nil {
		if opts.Priority > 0 {
			priority = opts.Priority
		}
		if opts.MaxRetries > 0 {
			maxRetries = opts.MaxRetries
		}
	}

	now := s.now()
	entry := &domain.SyncQueueEntry{
		ID:           util.NewULID(),
		AssessmentID: assessmentID,
		Payload:      payload,
		ErrorType:    errorType,
		RetryCount:   0,
		MaxRetries:   maxRetries,
		Priority:     priority,
		Status:       domain.QueueStatusPending,
		NextRetryAt:  &now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if !entry.IsRetryable() {
		entry.Status = domain.QueueStatusFailed
		entry.NextRetryAt = nil
		entry.LastError = "validation error, not retryable"
	}

	if err := s.repo.Create(ctx, entry); err != nil {
		return nil, domain.NewSyncQueueError("failed to enqueue sync entry", err)
	}

	logger.Get().Info("Queued sync entry",
		zap.String("entry_id", entry.ID),
		zap.String("assessment_id", assessmentID),
		zap.String("error_type", errorType),
		zap.String("status", entry.Status),
	)
	return entry, nil
}

// GetPendingEntries returns ready entries in priority-then-age order without
// claiming them.
func (s *retryQueueService) GetPendingEntries(ctx context.Context, limit int) ([]*domain.SyncQueueEntry, error) {
	entries, err := s.repo.GetPending(ctx, s.now(), limit)
	if err != nil {
		return nil, domain.NewSyncQueueError("failed to fetch pending entries", err)
	}
	return entries, nil
}

// RecordFailedAttempt increments the retry count and reschedules with
// backoff keyed by the new count. Exhausting the budget, or a validation
// error classification, dead-letters the entry.
func (s *retryQueueService) RecordFailedAttempt(ctx context.Context, entryID string, errorMessage string) (*domain.SyncQueueEntry, error) {
	entry, err := s.repo.GetByID(ctx, entryID)
	if err != nil {
		return nil, domain.NewSyncQueueError("failed to load queue entry", err)
	}
	if entry == nil {
		return nil, domain.NewNotFoundError("sync queue entry not found: "+entryID)
	}
	if entry.IsTerminal() {
		// Terminal states are frozen.
		return entry, nil
	}

	entry.RetryCount++
	entry.LastError = errorMessage
	entry.UpdatedAt = s.now()

	if entry.RetryCount > entry.MaxRetries || !entry.IsRetryable() {
		entry.Status = domain.QueueStatusFailed
		entry.NextRetryAt = nil
		logger.Get().Warn("Sync entry dead-lettered",
			zap.String("entry_id", entry.ID),
			zap.String("assessment_id", entry.AssessmentID),
			zap.Int("retry_count", entry.RetryCount),
			zap.String("last_error", errorMessage),
		)
	} else {
		// The first recorded failure reschedules 60s out, the second 300s,
		// and so on.
		next := s.now().Add(CalculateRetryDelay(entry.RetryCount - 1))
		entry.Status = domain.QueueStatusPending
		entry.NextRetryAt = &next
	}

	if err := s.repo.Update(ctx, entry); err != nil {
		return nil, domain.NewSyncQueueError("failed to record failed attempt", err)
	}

	if entry.Status == domain.QueueStatusFailed {
		s.markAssessmentFailed(ctx, entry.AssessmentID, errorMessage)
	}
	return entry, nil
}

// markAssessmentFailed mirrors a dead-lettered entry onto the owning
// assessment so its sync status reads failed rather than pending forever.
// Bookkeeping only; a failure here never fails the queue transition.
func (s *retryQueueService) markAssessmentFailed(ctx context.Context, assessmentID, errorMessage string) {
	l := logger.Get()

	assessment, err := s.assessments.GetByID(ctx, assessmentID)
	if err != nil || assessment == nil {
		l.Error("Failed to load assessment for dead-lettered entry",
			zap.String("assessment_id", assessmentID),
			zap.Error(err),
		)
		return
	}

	assessment.HubspotSyncStatus = domain.SyncStatusFailed
	assessment.HubspotSyncError = errorMessage
	if err := s.assessments.UpdateSyncState(ctx, assessment); err != nil {
		l.Error("Failed to mark assessment sync as failed",
			zap.String("assessment_id", assessmentID),
			zap.Error(err),
		)
	}
}

// RecordSuccessfulSync completes the entry and stores the external IDs.
func (s *retryQueueService) RecordSuccessfulSync(ctx context.Context, entryID string, contactID, dealID string) (*domain.SyncQueueEntry, error) {
	entry, err := s.repo.GetByID(ctx, entryID)
	if err != nil {
		return nil, domain.NewSyncQueueError("failed to load queue entry", err)
	}
	if entry == nil {
		return nil, domain.NewNotFoundError("sync queue entry not found: "+entryID)
	}
	if entry.IsTerminal() {
		return entry, nil
	}

	now := s.now()
	entry.Status = domain.QueueStatusCompleted
	entry.ProcessedAt = &now
	entry.NextRetryAt = nil
	entry.HubspotContactID = contactID
	entry.HubspotDealID = dealID
	entry.UpdatedAt = now

	if err := s.repo.Update(ctx, entry); err != nil {
		return nil, domain.NewSyncQueueError("failed to record successful sync", err)
	}
	return entry, nil
}

// GetDeadLetterQueue returns all permanently failed entries.
func (s *retryQueueService) GetDeadLetterQueue(ctx context.Context) ([]*domain.SyncQueueEntry, error) {
	entries, err := s.repo.GetDeadLetters(ctx)
	if err != nil {
		return nil, domain.NewSyncQueueError("failed to fetch dead letters", err)
	}
	return entries, nil
}

// ProcessPendingQueue atomically claims up to batchSize ready entries and
// attempts each one. One entry's failure never aborts the batch.
func (s *retryQueueService) ProcessPendingQueue(ctx context.Context, batchSize int, attempter SyncAttempter) (*ProcessResult, error) {
	l := logger.Get()

	entries, err := s.repo.ClaimPending(ctx, s.now(), batchSize)
	if err != nil {
		return nil, domain.NewSyncQueueError("failed to claim pending entries", err)
	}

	result := &ProcessResult{}
	for _, entry := range entries {
		result.Processed++

		contactID, dealID, attemptErr := attempter.AttemptSync(ctx, entry)
		if attemptErr != nil {
			result.Failed++
			if _, err := s.RecordFailedAttempt(ctx, entry.ID, attemptErr.Error()); err != nil {
				l.Error("Failed to record sync failure",
					zap.String("entry_id", entry.ID),
					zap.Error(err),
				)
			}
			continue
		}

		result.Succeeded++
		if _, err := s.RecordSuccessfulSync(ctx, entry.ID, contactID, dealID); err != nil {
			l.Error("Failed to record sync success",
				zap.String("entry_id", entry.ID),
				zap.Error(err),
			)
		}
	}

	if result.Processed > 0 {
		l.Info("Processed retry queue batch",
			zap.Int("processed", result.Processed),
			zap.Int("succeeded", result.Succeeded),
			zap.Int("failed", result.Failed),
		)
	}
	return result, nil
}

// Stats reports queue depth per status and the failure count for the
// trailing hour.
func (s *retryQueueService) Stats(ctx context.Context) (map[string]int, int, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, 0, domain.NewSyncQueueError("failed to count queue entries", err)
	}
	failures, err := s.repo.CountFailuresSince(ctx, s.now().Add(-time.Hour))
	if err != nil {
		return nil, 0, domain.NewSyncQueueError("failed to count recent failures", err)
	}
	return counts, failures, nil
}
