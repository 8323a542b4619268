package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	settingsapp "github.com/opsdesk/backend/internal/application/settings"
	treasuryapp "github.com/opsdesk/backend/internal/application/treasury"
	"github.com/opsdesk/backend/internal/domain/treasury"
	"github.com/opsdesk/backend/internal/infrastructure/auth"
	"github.com/opsdesk/backend/internal/infrastructure/config"
	"github.com/opsdesk/backend/internal/infrastructure/event"
	"github.com/opsdesk/backend/internal/infrastructure/logger"
	"github.com/opsdesk/backend/internal/infrastructure/notification"
	"github.com/opsdesk/backend/internal/infrastructure/persistence"
	"github.com/opsdesk/backend/internal/infrastructure/storage"
	"github.com/opsdesk/backend/internal/interfaces/http/handler"
	"github.com/opsdesk/backend/internal/interfaces/http/middleware"
	"github.com/opsdesk/backend/internal/interfaces/http/router"
)

const version = "1.0.0"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting treasury backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Database connection with a zap-backed GORM logger
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Repositories and adapters
	txManager := persistence.NewGormTransactionManager(db.DB)
	cashEventRepo := persistence.NewGormCashEventRepository(db.DB)
	handoverRepo := persistence.NewGormHandoverRepository(db.DB)
	movementRepo := persistence.NewGormMovementRepository(db.DB)
	depositRepo := persistence.NewGormDepositRepository(db.DB)
	settingsRepo := persistence.NewGormSettingsRepository(db.DB)
	orderFacts := persistence.NewGormOrderFactsRepository(db.DB)
	auditSink := persistence.NewGormAuditSink(db.DB)

	// Evidence storage is optional; movements and deposits work without
	// attachments when no bucket is configured
	var evidenceStore treasury.EvidenceStore
	var evidenceSigner handler.EvidenceURLSigner
	if cfg.Storage.Bucket != "" {
		s3Store, err := storage.NewS3EvidenceStore(&cfg.Storage)
		if err != nil {
			log.Fatal("Failed to initialize evidence store", zap.Error(err))
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := s3Store.EnsureBucket(ctx); err != nil {
			cancel()
			log.Fatal("Failed to ensure evidence bucket", zap.Error(err))
		}
		cancel()
		evidenceStore = s3Store
		evidenceSigner = s3Store
		log.Info("Evidence store ready", zap.String("bucket", s3Store.GetBucket()))
	} else {
		log.Warn("Evidence storage not configured, attachments are disabled")
	}

	// Event bus with the Redis channel notifier when Redis is configured
	eventBus := event.NewInMemoryEventBus(log)
	if cfg.Redis.Host != "" {
		notifier, err := notification.NewRedisNotifier(cfg.Redis, log)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer func() {
			if err := notifier.Close(); err != nil {
				log.Error("Error closing Redis notifier", zap.Error(err))
			}
		}()
		eventBus.Subscribe(notifier)
		log.Info("Redis event notifier registered", zap.String("addr", cfg.Redis.Addr()))
	}
	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Application services
	settingsService := settingsapp.NewService(settingsRepo, txManager, log)
	aggregatorService := treasuryapp.NewAggregatorService(log,
		persistence.NewMessengerEventSource(db.DB),
		persistence.NewWarehouseEventSource(db.DB),
		persistence.NewPOSEventSource(db.DB),
		persistence.NewAdhocEventSource(db.DB),
	)
	acceptanceService := treasuryapp.NewAcceptanceService(
		cashEventRepo, handoverRepo, orderFacts, txManager, auditSink, eventBus, log)
	handoverService := treasuryapp.NewHandoverService(
		handoverRepo, cashEventRepo, txManager, auditSink, eventBus, log)
	movementService := treasuryapp.NewMovementService(
		movementRepo, settingsService, evidenceStore, txManager, auditSink, eventBus, log)
	depositService := treasuryapp.NewDepositService(
		depositRepo, orderFacts, settingsService, evidenceStore, txManager, auditSink, eventBus, log)
	balanceService := treasuryapp.NewBalanceService(
		cashEventRepo, movementRepo, depositRepo, settingsService, log)

	// Auth
	jwtService := auth.NewJWTService(cfg.JWT)
	var tokenBlacklist auth.TokenBlacklist
	if cfg.Redis.Host != "" {
		blacklist, err := auth.NewRedisTokenBlacklist(cfg.Redis)
		if err != nil {
			log.Fatal("Failed to connect to Redis for token blacklist", zap.Error(err))
		}
		defer func() {
			if err := blacklist.Close(); err != nil {
				log.Error("Error closing token blacklist", zap.Error(err))
			}
		}()
		tokenBlacklist = blacklist
	}

	// Gin engine and middleware stack
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	middleware.SetupValidator()

	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	engine.Use(middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
		JWTService:     jwtService,
		TokenBlacklist: tokenBlacklist,
		SkipPaths: []string{
			"/health",
			"/ready",
			"/api/v1/health",
		},
		Logger: log,
	}))

	// Routes
	router.NewRouter(engine, router.Handlers{
		System:     handler.NewSystemHandler(db, version),
		CashEvents: handler.NewCashEventHandler(aggregatorService, acceptanceService),
		Handovers:  handler.NewHandoverHandler(handoverService, handoverService),
		Movements:  handler.NewMovementHandler(movementService, evidenceSigner),
		Deposits:   handler.NewDepositHandler(depositService),
		Balance:    handler.NewBalanceHandler(balanceService),
		Settings:   handler.NewSettingsHandler(settingsService),
	}, router.WithAPIVersion("v1")).Setup()

	// HTTP server
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
