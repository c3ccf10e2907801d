package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"leadsync/internal/cache"
	"leadsync/internal/config"
	"leadsync/internal/database"
	"leadsync/internal/domain"
	"leadsync/internal/hubspot"
	"leadsync/internal/logger"
	"leadsync/internal/qualification"
	"leadsync/internal/ratelimit"
	"leadsync/internal/repository"
	"leadsync/internal/service"

	"go.uber.org/zap"
)

// The worker drains the retry queue on a fixed interval and periodically
// removes expired sessions and scrubs aged contact data.
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Initialize(cfg.Logger); err != nil {
		panic(err)
	}
	appLogger := logger.Get()
	defer logger.Sync()

	db, err := database.NewSQLXPostgresDB(cfg.GetDSN())
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}

	assessmentRepository := repository.NewSQLXAssessmentRepository(db)
	sessionRepository := repository.NewSQLXSessionRepository(db)
	syncQueueRepository := repository.NewSQLXSyncQueueRepository(db)

	window := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
	var limiter domain.RateLimiter
	if cfg.RateLimit.Store == "redis" {
		redisClient, err := cache.NewRedisClient(cfg.Redis)
		if err != nil {
			appLogger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		limiter = ratelimit.NewRedisLimiter(redisClient, cfg.RateLimit.MaxRequests, window)
	} else {
		limiter = ratelimit.NewMemoryLimiter(cfg.RateLimit.MaxRequests, window)
	}

	engine := qualification.NewEngine()
	hubspotClient := hubspot.NewClient(cfg.HubSpot)

	retryQueueService := service.NewRetryQueueService(syncQueueRepository, assessmentRepository)
	syncService := service.NewSyncService(hubspotClient, limiter, engine, assessmentRepository, cfg.HubSpot)
	cleanupService := service.NewCleanupService(sessionRepository, assessmentRepository, cfg.Session)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	retryTicker := time.NewTicker(cfg.Retry.ProcessInterval)
	defer retryTicker.Stop()
	cleanupTicker := time.NewTicker(cfg.Session.CleanupInterval)
	defer cleanupTicker.Stop()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	appLogger.Info("Sync worker started",
		zap.Duration("retry_interval", cfg.Retry.ProcessInterval),
		zap.Duration("cleanup_interval", cfg.Session.CleanupInterval),
		zap.Int("batch_size", cfg.Retry.BatchSize),
	)

	for {
		select {
		case <-retryTicker.C:
			// The service logs each processed batch.
			if _, err := retryQueueService.ProcessPendingQueue(ctx, cfg.Retry.BatchSize, syncService); err != nil {
				appLogger.Error("Retry queue processing failed", zap.Error(err))
			}
		case <-cleanupTicker.C:
			result, err := cleanupService.Run(ctx)
			if err != nil {
				appLogger.Error("Session cleanup failed", zap.Error(err))
				continue
			}
			appLogger.Info("Session cleanup complete",
				zap.Int64("sessions_deleted", result.SessionsDeleted),
				zap.Int("assessments_scrubbed", result.Scrubbed),
			)
		case <-quit:
			appLogger.Info("Sync worker shutting down")
			return
		}
	}
}
