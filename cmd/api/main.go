// @title LeadSync API
// @version 1.0
// @description AI readiness assessment and HubSpot lead sync API.
// @host localhost:8090
// @BasePath /api
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type 'Bearer YOUR_JWT_TOKEN' to authorize.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"leadsync/internal/adapter"
	"leadsync/internal/adapter/insight"
	"leadsync/internal/cache"
	"leadsync/internal/config"
	"leadsync/internal/database"
	"leadsync/internal/domain"
	"leadsync/internal/handler"
	"leadsync/internal/hubspot"
	"leadsync/internal/logger"
	"leadsync/internal/middleware"
	"leadsync/internal/qualification"
	"leadsync/internal/ratelimit"
	"leadsync/internal/repository"
	"leadsync/internal/service"
	"leadsync/internal/validation"

	_ "leadsync/cmd/api/docs"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"go.uber.org/zap"
)

// requestLogger is a middleware that logs HTTP requests
func requestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		path := c.Path()
		method := c.Method()

		err := c.Next()

		duration := time.Since(start)
		status := c.Response().StatusCode()

		logger.Get().Info("HTTP Request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Duration("duration", duration),
			zap.String("ip", c.IP()),
		)

		return err
	}
}

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

	// Connect to database
	db, err := database.NewSQLXPostgresDB(cfg.GetDSN())
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}

	// Initialize Redis client
	redisClient, err := cache.NewRedisClient(cfg.Redis)
	if err != nil {
		appLogger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	appLogger.Info("Successfully connected to Redis")
	cacheAdapter := adapter.NewRedisCacheAdapter(redisClient)

	// Initialize repositories
	assessmentRepository := repository.NewSQLXAssessmentRepository(db)
	sessionRepository := repository.NewSQLXSessionRepository(db)
	syncQueueRepository := repository.NewSQLXSyncQueueRepository(db)
	txManager := repository.NewTransactionManagerAdapter(db)

	// Rate limiter guards the HubSpot API budget
	window := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
	var limiter domain.RateLimiter
	switch cfg.RateLimit.Store {
	case "redis":
		limiter = ratelimit.NewRedisLimiter(redisClient, cfg.RateLimit.MaxRequests, window)
		appLogger.Info("Using Redis rate limiter")
	default:
		limiter = ratelimit.NewMemoryLimiter(cfg.RateLimit.MaxRequests, window)
		appLogger.Info("Using in-memory rate limiter")
	}

	// Optional LLM-backed insight generation
	insightGenerator, err := insight.NewLLMInsightGenerator(cfg.Insight)
	if err != nil {
		appLogger.Fatal("Failed to create insight generator", zap.Error(err))
	}
	if insightGenerator != nil {
		appLogger.Info("Insight generator initialized", zap.String("source", cfg.Insight.Source))
	}

	engine := qualification.NewEngine()
	hubspotClient := hubspot.NewClient(cfg.HubSpot)

	// Initialize services
	retryQueueService := service.NewRetryQueueService(syncQueueRepository, assessmentRepository)
	syncService := service.NewSyncService(hubspotClient, limiter, engine, assessmentRepository, cfg.HubSpot)
	assessmentService := service.NewAssessmentService(
		assessmentRepository,
		sessionRepository,
		txManager,
		syncService,
		retryQueueService,
		engine,
		cacheAdapter,
		insightGenerator,
		cfg.Session,
	)
	healthService := service.NewHealthService(hubspotClient, db, limiter, syncQueueRepository)

	// Initialize handlers
	assessmentHandler := handler.NewAssessmentHandler(assessmentService, validation.NewValidator())
	adminHandler := handler.NewAdminHandler(retryQueueService, syncService, cfg.Retry.BatchSize)
	healthHandler := handler.NewHealthHandler(healthService)

	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		BodyLimit:    1 * 1024 * 1024,
		ErrorHandler: middleware.ErrorHandler(),
	})

	app.Use(requestLogger())
	app.Use(cors.New(cors.Config{AllowOrigins: "*", AllowMethods: "GET,POST,PUT,DELETE,OPTIONS", AllowHeaders: "Origin,Content-Type,Accept,Authorization", MaxAge: 300}))
	app.Use(recover.New())

	app.Get("/swagger/*", swagger.HandlerDefault)

	// API group
	apiGroup := app.Group("/api")

	// Assessment routes
	apiGroup.Post("/assessments", assessmentHandler.Start)
	apiGroup.Put("/assessments/:id/responses", assessmentHandler.SaveResponses)
	apiGroup.Post("/assessments/:id/complete", assessmentHandler.Complete)
	apiGroup.Get("/assessments/:id/results", assessmentHandler.GetResults)

	// Health routes
	apiGroup.Get("/health", healthHandler.Check)
	apiGroup.Get("/health/metrics", healthHandler.Metrics)

	// Admin routes (all protected)
	adminGroup := apiGroup.Group("/admin", middleware.AdminProtected(cfg.Admin.JWTSecret))
	adminGroup.Get("/sync/dead-letter", adminHandler.GetDeadLetters)
	adminGroup.Post("/sync/process", adminHandler.ProcessQueue)
	adminGroup.Get("/sync/stats", adminHandler.GetStats)

	// Start server
	go func() {
		appLogger.Info("Starting server", zap.Int("port", cfg.Server.Port), zap.String("env", os.Getenv("ENV")))
		if err := app.Listen(":" + strconv.Itoa(cfg.Server.Port)); err != nil {
			appLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(ctx); err != nil {
		appLogger.Fatal("Server forced to shutdown", zap.Error(err))
	}
	appLogger.Info("Server exited gracefully")
}
