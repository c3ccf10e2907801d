package service

import (
	"context"
	"time"

	"leadsync/internal/domain"
	"leadsync/internal/dto"
	"leadsync/internal/logger"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Health status values.
const (
	HealthStatusHealthy   = "healthy"
	HealthStatusDegraded  = "degraded"
	HealthStatusUnhealthy = "unhealthy"
)

// Pinger is the minimal database surface the health monitor needs.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthService aggregates dependency checks and rolling sync metrics.
// Read-only observability; it never mutates the systems it inspects.
type HealthService interface {
	Check(ctx context.Context) *dto.HealthResponse
	Metrics(ctx context.Context) (*dto.SyncMetricsResponse, error)
}

// healthService implements HealthService
type healthService struct {
	hubspot   domain.HubSpotClient
	db        Pinger
	limiter   domain.RateLimiter
	queueRepo domain.SyncQueueRepository
	now       func() time.Time
}

// NewHealthService creates a new instance of healthService
func NewHealthService(
	hubspot domain.HubSpotClient,
	db Pinger,
	limiter domain.RateLimiter,
	queueRepo domain.SyncQueueRepository,
) HealthService {
	return &healthService{
		hubspot:   hubspot,
		db:        db,
		limiter:   limiter,
		queueRepo: queueRepo,
		now:       time.Now,
	}
}

// Check runs all dependency probes in parallel. healthy when every check
// passes, unhealthy when none do, degraded otherwise.
func (s *healthService) Check(ctx context.Context) *dto.HealthResponse {
	checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	components := map[string]dto.ComponentHealth{}
	results := make([]struct {
		name string
		err  error
	}, 4)

	g, gctx := errgroup.WithContext(checkCtx)
	g.Go(func() error {
		results[0].name = "hubspot"
		results[0].err = s.hubspot.Ping(gctx)
		return nil
	})
	g.Go(func() error {
		results[1].name = "database"
		results[1].err = s.db.PingContext(gctx)
		return nil
	})
	g.Go(func() error {
		results[2].name = "rate_limiter"
		_, err := s.limiter.Status(gctx, hubspotRateLimitIdentifier)
		results[2].err = err
		return nil
	})
	g.Go(func() error {
		results[3].name = "sync_queue"
		_, err := s.queueRepo.CountByStatus(gctx)
		results[3].err = err
		return nil
	})
	_ = g.Wait()

	passed := 0
	for _, r := range results {
		component := dto.ComponentHealth{Status: "up"}
		if r.err != nil {
			component.Status = "down"
			component.Message = r.err.Error()
			logger.Get().Warn("Health check failed",
				zap.String("component", r.name),
				zap.Error(r.err),
			)
		} else {
			passed++
		}
		components[r.name] = component
	}

	status := HealthStatusDegraded
	switch passed {
	case len(results):
		status = HealthStatusHealthy
	case 0:
		status = HealthStatusUnhealthy
	}

	return &dto.HealthResponse{
		Status:     status,
		CheckedAt:  s.now().UTC().Format(time.RFC3339),
		Components: components,
	}
}

// Metrics reports rolling sync counters and rate-limit utilization.
func (s *healthService) Metrics(ctx context.Context) (*dto.SyncMetricsResponse, error) {
	counts, err := s.queueRepo.CountByStatus(ctx)
	if err != nil {
		return nil, domain.NewInternalError("failed to read queue counts", err)
	}

	failuresLastHour, err := s.queueRepo.CountFailuresSince(ctx, s.now().Add(-time.Hour))
	if err != nil {
		return nil, domain.NewInternalError("failed to read recent failures", err)
	}

	limitStatus, err := s.limiter.Status(ctx, hubspotRateLimitIdentifier)
	if err != nil {
		return nil, domain.NewInternalError("failed to read rate limiter status", err)
	}

	completed := counts[domain.QueueStatusCompleted]
	failed := counts[domain.QueueStatusFailed]
	total := completed + failed
	successRate := 1.0
	if total > 0 {
		successRate = float64(completed) / float64(total)
	}

	used := limitStatus.Limit - limitStatus.Remaining
	utilization := 0.0
	if limitStatus.Limit > 0 {
		utilization = float64(used) / float64(limitStatus.Limit) * 100
	}

	return &dto.SyncMetricsResponse{
		QueueDepth:       counts[domain.QueueStatusPending] + counts[domain.QueueStatusProcessing],
		DeadLetters:      failed,
		FailuresLastHour: failuresLastHour,
		SuccessRate:      successRate,
		RateLimit: dto.RateLimitStatusResponse{
			Used:        used,
			Limit:       limitStatus.Limit,
			Utilization: utilization,
		},
	}, nil
}
