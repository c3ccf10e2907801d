package service

import (
	"context"
	"time"

	"leadsync/internal/domain"

	"github.com/stretchr/testify/mock"
)

// --- MockAssessmentRepository ---
type MockAssessmentRepository struct {
	mock.Mock
}

func (m *MockAssessmentRepository) Create(ctx context.Context, assessment *domain.Assessment) error {
	args := m.Called(ctx, assessment)
	return args.Error(0)
}

func (m *MockAssessmentRepository) GetByID(ctx context.Context, id string) (*domain.Assessment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Assessment), args.Error(1)
}

func (m *MockAssessmentRepository) Update(ctx context.Context, assessment *domain.Assessment) error {
	args := m.Called(ctx, assessment)
	return args.Error(0)
}

func (m *MockAssessmentRepository) UpdateSyncState(ctx context.Context, assessment *domain.Assessment) error {
	args := m.Called(ctx, assessment)
	return args.Error(0)
}

func (m *MockAssessmentRepository) GetScrubCandidates(ctx context.Context, before time.Time, limit int) ([]*domain.Assessment, error) {
	args := m.Called(ctx, before, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Assessment), args.Error(1)
}

// --- MockSessionRepository ---
type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) Create(ctx context.Context, session *domain.AssessmentSession) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockSessionRepository) GetByID(ctx context.Context, id string) (*domain.AssessmentSession, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AssessmentSession), args.Error(1)
}

func (m *MockSessionRepository) Touch(ctx context.Context, session *domain.AssessmentSession) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockSessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

// --- MockSyncQueueRepository ---
type MockSyncQueueRepository struct {
	mock.Mock
}

func (m *MockSyncQueueRepository) Create(ctx context.Context, entry *domain.SyncQueueEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockSyncQueueRepository) GetByID(ctx context.Context, id string) (*domain.SyncQueueEntry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SyncQueueEntry), args.Error(1)
}

func (m *MockSyncQueueRepository) GetPending(ctx context.Context, now time.Time, limit int) ([]*domain.SyncQueueEntry, error) {
	args := m.Called(ctx, now, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.SyncQueueEntry), args.Error(1)
}

func (m *MockSyncQueueRepository) ClaimPending(ctx context.Context, now time.Time, limit int) ([]*domain.SyncQueueEntry, error) {
	args := m.Called(ctx, now, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.SyncQueueEntry), args.Error(1)
}

func (m *MockSyncQueueRepository) Update(ctx context.Context, entry *domain.SyncQueueEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockSyncQueueRepository) GetDeadLetters(ctx context.Context) ([]*domain.SyncQueueEntry, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.SyncQueueEntry), args.Error(1)
}

func (m *MockSyncQueueRepository) CountByStatus(ctx context.Context) (map[string]int, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int), args.Error(1)
}

func (m *MockSyncQueueRepository) CountFailuresSince(ctx context.Context, since time.Time) (int, error) {
	args := m.Called(ctx, since)
	return args.Int(0), args.Error(1)
}

// --- MockHubSpotClient ---
type MockHubSpotClient struct {
	mock.Mock
}

func (m *MockHubSpotClient) CreateOrUpdateContact(ctx context.Context, props *domain.ContactProperties) (string, error) {
	args := m.Called(ctx, props)
	return args.String(0), args.Error(1)
}

func (m *MockHubSpotClient) CreateDeal(ctx context.Context, props *domain.DealProperties, contactID string) (string, error) {
	args := m.Called(ctx, props, contactID)
	return args.String(0), args.Error(1)
}

func (m *MockHubSpotClient) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// --- MockRateLimiter ---
type MockRateLimiter struct {
	mock.Mock
}

func (m *MockRateLimiter) Check(ctx context.Context, identifier string) (*domain.RateLimitResult, error) {
	args := m.Called(ctx, identifier)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RateLimitResult), args.Error(1)
}

func (m *MockRateLimiter) CheckBatch(ctx context.Context, identifier string, n int, allowPartial bool) (*domain.BatchRateLimitResult, error) {
	args := m.Called(ctx, identifier, n, allowPartial)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BatchRateLimitResult), args.Error(1)
}

func (m *MockRateLimiter) Status(ctx context.Context, identifier string) (*domain.RateLimitResult, error) {
	args := m.Called(ctx, identifier)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RateLimitResult), args.Error(1)
}

// --- MockCache ---
type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockCache) Set(ctx context.Context, key string, value string, expiration time.Duration) error {
	args := m.Called(ctx, key, value, expiration)
	return args.Error(0)
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockCache) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// --- MockInsightGenerator ---
type MockInsightGenerator struct {
	mock.Mock
}

func (m *MockInsightGenerator) GenerateInsight(ctx context.Context, assessment *domain.Assessment) (string, error) {
	args := m.Called(ctx, assessment)
	return args.String(0), args.Error(1)
}

// --- MockPinger ---
type MockPinger struct {
	mock.Mock
}

func (m *MockPinger) PingContext(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// --- FakeTransactionManager ---
// Runs the function inline; Scopes counts transactions opened.
type FakeTransactionManager struct {
	Scopes int
}

func (f *FakeTransactionManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	f.Scopes++
	return fn(ctx)
}

// --- MockSyncAttempter ---
type MockSyncAttempter struct {
	mock.Mock
}

func (m *MockSyncAttempter) AttemptSync(ctx context.Context, entry *domain.SyncQueueEntry) (string, string, error) {
	args := m.Called(ctx, entry)
	return args.String(0), args.String(1), args.Error(2)
}
