package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	assetapp "github.com/erp/accounting/internal/application/asset"
	eventapp "github.com/erp/accounting/internal/application/event"
	financeapp "github.com/erp/accounting/internal/application/finance"
	inventoryapp "github.com/erp/accounting/internal/application/inventory"
	ledgerapp "github.com/erp/accounting/internal/application/ledger"
	posapp "github.com/erp/accounting/internal/application/pos"
	tradeapp "github.com/erp/accounting/internal/application/trade"
	"github.com/erp/accounting/internal/domain/ledger"
	"github.com/erp/accounting/internal/domain/shared"
	"github.com/erp/accounting/internal/infrastructure/cache"
	"github.com/erp/accounting/internal/infrastructure/config"
	"github.com/erp/accounting/internal/infrastructure/event"
	"github.com/erp/accounting/internal/infrastructure/logger"
	"github.com/erp/accounting/internal/infrastructure/migration"
	"github.com/erp/accounting/internal/infrastructure/persistence"
	"github.com/erp/accounting/internal/infrastructure/scheduler"
	"github.com/erp/accounting/internal/infrastructure/telemetry"
	"github.com/erp/accounting/internal/interfaces/http/handler"
	"github.com/erp/accounting/internal/interfaces/http/middleware"
	"github.com/erp/accounting/internal/interfaces/http/router"
	"github.com/erp/accounting/migrations"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	baseLog, err := logger.NewFromConfig(cfg.Log, cfg.App.Env)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	// Telemetry first so the zap bridge and otelgin see the global providers
	providers, err := telemetry.Setup(context.Background(), cfg.Telemetry, baseLog)
	if err != nil {
		baseLog.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	log := providers.BridgeLogger(baseLog)
	defer func() {
		_ = log.Sync()
	}()
	meter := providers.Meter(cfg.Telemetry.ServiceName)

	log.Info("Starting ERP Accounting",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("resolution_policy", cfg.Posting.ResolutionPolicy),
	)

	gormLog := logger.NewSQLLogger(log, logger.SQLLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh))
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if _, err := telemetry.InstrumentDB(db.DB, cfg.Telemetry, meter, log); err != nil {
		log.Fatal("Failed to instrument database", zap.Error(err))
	}
	log.Info("Database connected successfully")

	if err := migrate(db, log); err != nil {
		log.Fatal("Failed to apply migrations", zap.Error(err))
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = cache.Connect(cache.RedisConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Warn("Redis unavailable, continuing with in-process stores", zap.Error(err))
			redisClient = nil
		} else {
			defer func() { _ = redisClient.Close() }()
		}
	}

	idempotencyStore, err := cache.NewIdempotencyStoreFactory(cfg.Redis,
		cache.WithLogger(log),
		cache.WithClient(redisClient),
	).CreateStore()
	if err != nil {
		log.Fatal("Failed to create idempotency store", zap.Error(err))
	}
	defer func() { _ = idempotencyStore.Close() }()

	// Events recorded inside a write-set land in the outbox of the same
	// transaction; the processor relays them to the bus after commit.
	eventSerializer := event.NewEventSerializer()
	event.RegisterAllEvents(eventSerializer)
	scope := persistence.NewGormTransactionScope(db.DB, event.NewRecorderFactory(eventSerializer))
	outboxRepo := event.NewGormOutboxRepository(db.DB)

	postingMetrics, err := telemetry.NewPostingMetrics(meter)
	if err != nil {
		log.Fatal("Failed to create posting metrics", zap.Error(err))
	}
	if err := telemetry.RegisterOutboxGauge(meter, outboxRepo); err != nil {
		log.Fatal("Failed to register outbox gauge", zap.Error(err))
	}

	policy := ledger.ResolutionPolicy(cfg.Posting.ResolutionPolicy)
	poster := ledgerapp.NewPoster(policy, log)
	poster.SetObserver(postingMetrics)

	// Application services
	accountService := ledgerapp.NewAccountService(scope)
	roleService := ledgerapp.NewRoleMappingService(scope, policy, log)
	journalService := ledgerapp.NewJournalService(scope, poster)

	documentService := financeapp.NewDocumentService(scope, poster, log)
	paymentService := financeapp.NewPaymentService(scope, poster, log)
	paymentService.SetIdempotencyStore(idempotencyStore, cfg.Posting.IdempotencyTTL)
	agingService := financeapp.NewAgingService(scope)
	overdueService := financeapp.NewOverdueService(scope, cfg.Scheduler.BatchSize, log)

	saleService := posapp.NewSaleService(scope, poster, log)
	saleService.SetIdempotencyStore(idempotencyStore, cfg.Posting.IdempotencyTTL)
	sessionService := posapp.NewCashSessionService(scope, cfg.Posting.CashVarianceTolerance, log)
	sessionService.SetObserver(postingMetrics)
	paymentMethodService := posapp.NewPaymentMethodService(scope)

	warehouseService := inventoryapp.NewWarehouseService(scope, log)
	transferService := inventoryapp.NewTransferService(scope, log)
	opnameService := inventoryapp.NewOpnameService(scope, poster, log)

	orderService := tradeapp.NewOrderService(scope)
	invoicingService := tradeapp.NewInvoicingService(scope, poster, log)

	assetService := assetapp.NewAssetService(scope, log)
	runOptions := assetapp.DefaultRunOptions()
	runOptions.Workers = cfg.Scheduler.Workers
	runOptions.BatchSize = cfg.Scheduler.BatchSize
	depreciationService := assetapp.NewDepreciationService(scope, poster, runOptions, log)

	outboxService := eventapp.NewOutboxService(outboxRepo, log)

	// Event bus and handlers for cross-context reactions
	eventBus := event.NewInMemoryEventBus(log)
	documentPaidHandler := tradeapp.NewDocumentPaidHandler(scope, log)
	cashVarianceHandler := posapp.NewCashVarianceHandler(log)
	// the relay delivers at least once; handled event ids are remembered
	// in the idempotency store
	for _, h := range event.WrapHandlersWithIdempotency(
		[]shared.EventHandler{documentPaidHandler, cashVarianceHandler},
		idempotencyStore, log,
		event.WithIdempotencyTTL(cfg.Event.HandlerDedupTTL),
	) {
		eventBus.Subscribe(h)
	}
	log.Info("Event handlers registered",
		zap.Strings("document_paid_events", documentPaidHandler.EventTypes()),
		zap.Strings("cash_variance_events", cashVarianceHandler.EventTypes()),
	)

	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	if cfg.Event.ProcessorEnabled {
		processorConfig := event.OutboxProcessorConfig{
			BatchSize:        cfg.Event.BatchSize,
			PollInterval:     cfg.Event.PollInterval,
			CleanupEnabled:   cfg.Event.CleanupEnabled,
			CleanupRetention: cfg.Event.CleanupRetention,
			CleanupInterval:  cfg.Event.CleanupInterval,
		}
		outboxProcessor := event.NewOutboxProcessor(outboxRepo, eventBus, eventSerializer, processorConfig, log)
		if err := outboxProcessor.Start(context.Background()); err != nil {
			log.Fatal("Failed to start outbox processor", zap.Error(err))
		}
		defer func() {
			if err := outboxProcessor.Stop(context.Background()); err != nil {
				log.Error("Error stopping outbox processor", zap.Error(err))
			}
		}()
		log.Info("Outbox processor started",
			zap.Int("batch_size", processorConfig.BatchSize),
			zap.Duration("poll_interval", processorConfig.PollInterval),
		)
	}

	// Monthly depreciation and the daily overdue sweep
	if cfg.Scheduler.Enabled {
		executor := scheduler.NewAccountingExecutor(depreciationService, overdueService, log)
		jobScheduler := scheduler.NewScheduler(scheduler.SchedulerConfigFrom(cfg.Scheduler), executor, log)
		jobScheduler.OnFinished(func(job *scheduler.Job) {
			if job.Status == scheduler.JobStatusFailed {
				log.Error("Scheduled job gave up",
					zap.String("job_id", job.ID.String()),
					zap.String("type", string(job.Type)),
					zap.String("error", job.Error),
				)
			}
		})
		if err := jobScheduler.Start(context.Background()); err != nil {
			log.Fatal("Failed to start scheduler", zap.Error(err))
		}
		defer func() {
			if err := jobScheduler.Stop(context.Background()); err != nil {
				log.Error("Error stopping scheduler", zap.Error(err))
			}
		}()

		trigger := scheduler.NewCronTrigger(scheduler.CronTriggerConfigFrom(cfg.Scheduler), jobScheduler, log)
		if err := trigger.Start(context.Background()); err != nil {
			log.Fatal("Failed to start cron trigger", zap.Error(err))
		}
		defer func() {
			if err := trigger.Stop(context.Background()); err != nil {
				log.Error("Error stopping cron trigger", zap.Error(err))
			}
		}()
		log.Info("Scheduler started",
			zap.Int("max_concurrent_jobs", cfg.Scheduler.MaxConcurrentJobs),
			zap.Int("depreciation_day", cfg.Scheduler.DepreciationDay),
			zap.Duration("job_timeout", cfg.Scheduler.JobTimeout),
		)
	}

	// HTTP handlers
	checks := []handler.HealthCheck{{Name: "database", Check: func(ctx context.Context) error { return db.Ping() }}}
	if redisClient != nil {
		checks = append(checks, handler.HealthCheck{Name: "redis", Check: func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}})
	}
	handlers := router.Handlers{
		Accounts:  handler.NewAccountHandler(accountService),
		Roles:     handler.NewRoleMappingHandler(roleService),
		Journal:   handler.NewJournalHandler(journalService),
		Finance:   handler.NewFinanceHandler(documentService, paymentService, agingService),
		POS:       handler.NewPOSHandler(saleService, sessionService, paymentMethodService),
		Inventory: handler.NewInventoryHandler(warehouseService, transferService, opnameService),
		Orders:    handler.NewOrderHandler(orderService, invoicingService),
		Assets:    handler.NewAssetHandler(assetService, depreciationService),
		Outbox:    handler.NewOutboxHandler(outboxService),
		System:    handler.NewSystemHandler(cfg.App.Name, version, checks...),
		Jobs:      handler.NewJobsHandler(depreciationService, overdueService),
	}

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	httpMetrics, err := middleware.HTTPMetrics(meter)
	if err != nil {
		log.Fatal("Failed to create HTTP metrics", zap.Error(err))
	}

	// Middleware order:
	// request id, request logger, panic recovery, tracing, security headers,
	// CORS, body limit, company scope, span enrichment, metrics
	engine.Use(middleware.RequestID())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
	}))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORS(cfg.HTTP))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	engine.Use(middleware.CompanyScope(middleware.DefaultCompanyScopeConfig()))
	engine.Use(middleware.SpanAttributes())
	engine.Use(httpMetrics)

	var writeLimit gin.HandlerFunc
	if cfg.HTTP.RateLimitEnabled {
		rateLimiter, err := middleware.NewRateLimiter(cfg.HTTP, redisClient)
		if err != nil {
			log.Fatal("Failed to create rate limiter", zap.Error(err))
		}
		writeLimit = middleware.RateLimit(rateLimiter)
		log.Info("Rate limiting enabled",
			zap.Int64("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
			zap.Bool("shared_store", redisClient != nil),
		)
	}

	// Health endpoint outside API versioning
	engine.GET("/health", handlers.System.Health)

	router.NewRouter(engine, router.WithAPIVersion("v1")).
		RegisterAPI(handlers, writeLimit).
		Setup()

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
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownTimeout := cfg.HTTP.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := providers.Shutdown(ctx); err != nil {
		log.Error("Telemetry shutdown failed", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// migrate brings the schema up to the embedded migration set
func migrate(db *persistence.Database, log *zap.Logger) error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	m, err := migration.New(sqlDB, migrations.FS, log)
	if err != nil {
		return err
	}
	return m.Up()
}
