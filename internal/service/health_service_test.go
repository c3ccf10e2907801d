package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"leadsync/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type healthFixture struct {
	client    *MockHubSpotClient
	db        *MockPinger
	limiter   *MockRateLimiter
	queueRepo *MockSyncQueueRepository
	service   HealthService
}

func newHealthFixture() *healthFixture {
	f := &healthFixture{
		client:    new(MockHubSpotClient),
		db:        new(MockPinger),
		limiter:   new(MockRateLimiter),
		queueRepo: new(MockSyncQueueRepository),
	}
	f.service = NewHealthService(f.client, f.db, f.limiter, f.queueRepo)
	return f
}

func TestHealthCheck_AllUp(t *testing.T) {
	f := newHealthFixture()

	f.client.On("Ping", mock.Anything).Return(nil)
	f.db.On("PingContext", mock.Anything).Return(nil)
	f.limiter.On("Status", mock.Anything, "hubspot:api").Return(allowedLimit(), nil)
	f.queueRepo.On("CountByStatus", mock.Anything).Return(map[string]int{}, nil)

	resp := f.service.Check(context.Background())
	assert.Equal(t, HealthStatusHealthy, resp.Status)
	assert.Len(t, resp.Components, 4)
	for name, component := range resp.Components {
		assert.Equal(t, "up", component.Status, "component %s", name)
	}
}

func TestHealthCheck_PartialFailure(t *testing.T) {
	f := newHealthFixture()

	f.client.On("Ping", mock.Anything).Return(errors.New("hubspot unreachable"))
	f.db.On("PingContext", mock.Anything).Return(nil)
	f.limiter.On("Status", mock.Anything, "hubspot:api").Return(allowedLimit(), nil)
	f.queueRepo.On("CountByStatus", mock.Anything).Return(map[string]int{}, nil)

	resp := f.service.Check(context.Background())
	assert.Equal(t, HealthStatusDegraded, resp.Status)
	assert.Equal(t, "down", resp.Components["hubspot"].Status)
	assert.Equal(t, "up", resp.Components["database"].Status)
}

func TestHealthCheck_TotalFailure(t *testing.T) {
	f := newHealthFixture()

	down := errors.New("down")
	f.client.On("Ping", mock.Anything).Return(down)
	f.db.On("PingContext", mock.Anything).Return(down)
	f.limiter.On("Status", mock.Anything, "hubspot:api").Return(nil, down)
	f.queueRepo.On("CountByStatus", mock.Anything).Return(nil, down)

	resp := f.service.Check(context.Background())
	assert.Equal(t, HealthStatusUnhealthy, resp.Status)
}

func TestMetrics(t *testing.T) {
	f := newHealthFixture()

	f.queueRepo.On("CountByStatus", mock.Anything).Return(map[string]int{
		domain.QueueStatusPending:    4,
		domain.QueueStatusProcessing: 1,
		domain.QueueStatusCompleted:  90,
		domain.QueueStatusFailed:     10,
	}, nil)
	f.queueRepo.On("CountFailuresSince", mock.Anything, mock.AnythingOfType("time.Time")).Return(3, nil)
	f.limiter.On("Status", mock.Anything, "hubspot:api").Return(&domain.RateLimitResult{
		Allowed:   true,
		Limit:     100,
		Remaining: 40,
		ResetAt:   time.Now(),
	}, nil)

	metrics, err := f.service.Metrics(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 5, metrics.QueueDepth)
	assert.Equal(t, 10, metrics.DeadLetters)
	assert.Equal(t, 3, metrics.FailuresLastHour)
	assert.InDelta(t, 0.9, metrics.SuccessRate, 1e-9)
	assert.Equal(t, 60, metrics.RateLimit.Used)
	assert.InDelta(t, 60.0, metrics.RateLimit.Utilization, 1e-9)
}

func TestMetrics_NoHistory(t *testing.T) {
	f := newHealthFixture()

	f.queueRepo.On("CountByStatus", mock.Anything).Return(map[string]int{}, nil)
	f.queueRepo.On("CountFailuresSince", mock.Anything, mock.AnythingOfType("time.Time")).Return(0, nil)
	f.limiter.On("Status", mock.Anything, "hubspot:api").Return(allowedLimit(), nil)

	metrics, err := f.service.Metrics(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 1.0, metrics.SuccessRate)
	assert.Equal(t, 0, metrics.QueueDepth)
}
