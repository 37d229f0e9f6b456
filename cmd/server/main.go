package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	anomalyapp "github.com/fleet/backend/internal/application/anomaly"
	eventapp "github.com/fleet/backend/internal/application/event"
	ledgerapp "github.com/fleet/backend/internal/application/ledger"
	registryapp "github.com/fleet/backend/internal/application/registry"
	routeapp "github.com/fleet/backend/internal/application/route"
	"github.com/fleet/backend/internal/infrastructure/auth"
	"github.com/fleet/backend/internal/infrastructure/cache"
	"github.com/fleet/backend/internal/infrastructure/config"
	"github.com/fleet/backend/internal/infrastructure/event"
	"github.com/fleet/backend/internal/infrastructure/logger"
	"github.com/fleet/backend/internal/infrastructure/persistence"
	"github.com/fleet/backend/internal/infrastructure/telemetry"
	"github.com/fleet/backend/internal/interfaces/http/handler"
	"github.com/fleet/backend/internal/interfaces/http/middleware"
	"github.com/fleet/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

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

	log.Info("Starting Fleet Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Initialize database connection
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLogLevel)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Initialize OpenTelemetry tracing and metrics
	tracerProvider, err := telemetry.NewTracerProvider(context.Background(), telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	// Continuous profiling (Pyroscope). Must start before span profiles are
	// enabled on the tracer provider.
	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:           cfg.Profiling.Enabled,
		ServerAddress:     cfg.Profiling.ServerAddress,
		ApplicationName:   cfg.Profiling.ApplicationName,
		BasicAuthUser:     cfg.Profiling.BasicAuthUser,
		BasicAuthPassword: cfg.Profiling.BasicAuthPassword,
		ProfileCPU:        true,
		ProfileAllocSpace: true,
		ProfileInuseSpace: true,
		ProfileGoroutines: true,
	}, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	defer func() {
		if err := profiler.Stop(); err != nil {
			log.Error("Error stopping profiler", zap.Error(err))
		}
	}()
	if profiler.IsEnabled() {
		if err := tracerProvider.EnableSpanProfiles(); err != nil {
			log.Warn("Failed to enable span profiles", zap.Error(err))
		}
	}

	meterProvider, err := telemetry.NewMeterProvider(context.Background(), telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := meterProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down meter provider", zap.Error(err))
		}
	}()

	// Database query metrics (connection pool, query latency, slow queries)
	dbMetrics, err := telemetry.RegisterDBMetrics(db.DB, meterProvider, telemetry.DBMetricsConfig{
		Enabled:            cfg.Telemetry.Enabled,
		SlowQueryThreshold: cfg.Telemetry.DBSlowQueryThresh,
	}, log)
	if err != nil {
		log.Warn("Failed to register database metrics", zap.Error(err))
	}
	if dbMetrics != nil {
		defer dbMetrics.Stop()
	}

	// Database query tracing (otelgorm)
	if cfg.Telemetry.DBTraceEnabled {
		dbTracing := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
			Enabled:          true,
			LogFullSQL:       cfg.Telemetry.DBLogFullSQL,
			SlowQueryThresh:  cfg.Telemetry.DBSlowQueryThresh,
			DBSystem:         "postgresql",
			WithoutVariables: !cfg.Telemetry.DBLogFullSQL,
		}, log)
		if err := dbTracing.RegisterOtelGorm(db.DB); err != nil {
			log.Warn("Failed to register database tracing", zap.Error(err))
		}
	}

	// Initialize repositories
	plantRepo := persistence.NewGormPlantRepository(db.DB)
	vehicleRepo := persistence.NewGormVehicleRepository(db.DB)
	clientRepo := persistence.NewGormClientRepository(db.DB)
	routeRepo := persistence.NewGormRouteRepository(db.DB)
	movementRepo := persistence.NewGormMovementRepository(db.DB)
	anomalyRepo := persistence.NewGormAnomalyRepository(db.DB)
	outboxRepo := event.NewGormOutboxRepository(db.DB)

	// Transaction scopes for multi-repository writes
	routeScope := persistence.NewGormRouteTransactionScope(db.DB)
	ledgerScope := persistence.NewGormLedgerTransactionScope(db.DB)

	// Initialize event serializer and register all event types
	eventSerializer := event.NewEventSerializer()
	event.RegisterAllEvents(eventSerializer)

	// Create outbox publisher for transactional event saving and inject it
	// into the route persistence layer, so lifecycle events are written in
	// the same transaction as the transition they describe
	outboxPublisher := event.NewOutboxPublisher(eventSerializer)
	routeRepo.SetOutboxEventSaver(outboxPublisher)
	routeScope.SetOutboxEventSaver(outboxPublisher)

	// Summary cache: Redis when reachable, in-memory otherwise
	var summaryCache ledgerapp.SummaryCache
	redisSummaryCache, err := cache.NewRedisSummaryCache(cache.RedisConfig{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}, cfg.Ledger.SummaryCacheTTL, log)
	if err != nil {
		log.Warn("Redis unavailable, using in-memory summary cache", zap.Error(err))
		summaryCache = cache.NewInMemorySummaryCache(
			cache.WithSummaryTTL(cfg.Ledger.SummaryCacheTTL),
			cache.WithSummaryLogger(log),
		)
	} else {
		summaryCache = redisSummaryCache
	}

	// Business metrics with periodic fleet gauge collection
	businessMetrics, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter:         meterProvider.Meter("fleet.business"),
		Logger:        log,
		FleetProvider: telemetry.NewGormFleetMetricsProvider(db.DB),
	})
	if err != nil {
		log.Fatal("Failed to initialize business metrics", zap.Error(err))
	}
	businessMetrics.StartPeriodicCollection(context.Background(), telemetry.NewGormTenantProvider(db.DB), 0)
	defer businessMetrics.Stop()

	// Initialize application services
	plantService := registryapp.NewPlantService(plantRepo, routeRepo)
	vehicleService := registryapp.NewVehicleService(vehicleRepo, routeRepo)
	clientService := registryapp.NewClientService(clientRepo)

	ledgerService := ledgerapp.NewService(ledgerScope, movementRepo)
	ledgerService.SetQuantityUnit(cfg.Ledger.QuantityUnit)
	ledgerService.SetSummaryCache(summaryCache)
	ledgerService.SetBusinessMetrics(businessMetrics)

	lifecycleService := routeapp.NewLifecycleService(routeScope, routeRepo, movementRepo, plantRepo, vehicleRepo, clientRepo)
	lifecycleService.SetQuantityUnit(cfg.Ledger.QuantityUnit)
	lifecycleService.SetBusinessMetrics(businessMetrics)

	deliveryService := routeapp.NewDeliveryService(routeScope, routeRepo)
	deliveryService.SetQuantityUnit(cfg.Ledger.QuantityUnit)
	deliveryService.SetOverageTolerance(decimal.NewFromFloat(cfg.Delivery.OverageTolerance))
	deliveryService.SetBusinessMetrics(businessMetrics)

	reconciliationService := routeapp.NewReconciliationService(routeScope, routeRepo)
	reconciliationService.SetQuantityUnit(cfg.Ledger.QuantityUnit)
	reconciliationService.SetThresholds(
		decimal.NewFromFloat(cfg.Reconciliation.ShrinkageThreshold),
		decimal.NewFromFloat(cfg.Reconciliation.CriticalThreshold),
	)
	reconciliationService.SetBusinessMetrics(businessMetrics)

	anomalyService := anomalyapp.NewService(anomalyRepo)
	anomalyService.SetBusinessMetrics(businessMetrics)

	outboxService := eventapp.NewOutboxService(outboxRepo, log)

	jwtService := auth.NewJWTService(cfg.JWT)

	// Token revocation checks back onto Redis; without it revocation is
	// process-local only
	var tokenBlacklist auth.TokenBlacklist
	redisBlacklist, err := auth.NewRedisTokenBlacklist(auth.RedisTokenBlacklistConfig{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Warn("Redis unavailable, using in-memory token blacklist", zap.Error(err))
		tokenBlacklist = auth.NewInMemoryTokenBlacklist()
	} else {
		tokenBlacklist = redisBlacklist
	}

	// Initialize event bus and handlers
	eventBus := event.NewInMemoryEventBus(log)

	// Ledger-affecting route events drop the cached inventory summary.
	// The handler is wrapped for idempotency because events reach the bus
	// twice: directly after commit and again through the outbox processor.
	idempotencyStore, err := cache.NewIdempotencyStoreFactory(cfg.Redis, cache.WithLogger(log)).CreateStore()
	if err != nil {
		log.Fatal("Failed to create idempotency store", zap.Error(err))
	}
	invalidationHandler := ledgerapp.NewSummaryInvalidationHandler(summaryCache)
	eventBus.Subscribe(event.NewIdempotentHandler(invalidationHandler, idempotencyStore, log))

	log.Info("Event handlers registered",
		zap.Strings("summary_invalidation_events", invalidationHandler.EventTypes()),
	)

	// Start event bus
	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Initialize and start the outbox processor for guaranteed event delivery.
	// It drains the outbox_events table and publishes entries to the event bus.
	if cfg.Event.ProcessorEnabled {
		outboxProcessorConfig := event.DefaultOutboxProcessorConfig()
		outboxProcessorConfig.BatchSize = cfg.Event.BatchSize
		outboxProcessorConfig.PollInterval = cfg.Event.PollInterval
		outboxProcessorConfig.CleanupEnabled = cfg.Event.CleanupEnabled
		outboxProcessorConfig.CleanupRetention = cfg.Event.CleanupRetention

		outboxProcessor := event.NewOutboxProcessor(outboxRepo, eventBus, eventSerializer, outboxProcessorConfig, log)
		if err := outboxProcessor.Start(context.Background()); err != nil {
			log.Fatal("Failed to start outbox processor", zap.Error(err))
		}
		defer func() {
			if err := outboxProcessor.Stop(context.Background()); err != nil {
				log.Error("Error stopping outbox processor", zap.Error(err))
			}
		}()
		log.Info("Outbox processor started",
			zap.Int("batch_size", outboxProcessorConfig.BatchSize),
			zap.Duration("poll_interval", outboxProcessorConfig.PollInterval),
		)
	}

	// Inject event bus into services that publish events
	lifecycleService.SetEventPublisher(eventBus)
	deliveryService.SetEventPublisher(eventBus)
	reconciliationService.SetEventPublisher(eventBus)

	// Initialize HTTP handlers
	plantHandler := handler.NewPlantHandler(plantService)
	vehicleHandler := handler.NewVehicleHandler(vehicleService)
	clientHandler := handler.NewClientHandler(clientService)
	routeHandler := handler.NewRouteHandler(lifecycleService, deliveryService, reconciliationService)
	ledgerHandler := handler.NewLedgerHandler(ledgerService)
	anomalyHandler := handler.NewAnomalyHandler(anomalyService)
	outboxHandler := handler.NewOutboxHandler(outboxService)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	// Initialize router with custom middleware
	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Logger - Log requests
	// 4. Tracing/Metrics - OpenTelemetry instrumentation
	// 5. Security - Add security headers
	// 6. CORS - Handle cross-origin requests
	// 7. BodyLimit - Limit request body size
	// 8. RateLimit - Apply rate limiting (if enabled)
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
	}))
	engine.Use(middleware.HTTPMetrics(middleware.HTTPMetricsConfig{
		MeterProvider: meterProvider,
		ServiceName:   cfg.Telemetry.ServiceName,
		Enabled:       cfg.Telemetry.Enabled,
	}))
	engine.Use(middleware.ProfilingWithConfig(middleware.ProfilingConfig{
		Enabled:   cfg.Profiling.Enabled,
		SkipPaths: []string{"/health", "/api/v1/ping"},
	}))
	engine.Use(middleware.Secure())

	// Configure CORS from config
	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	// Body size limit
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Rate limiting (if enabled)
	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db, log))

	// Setup API routes using router
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	// Apply JWT authentication middleware to API routes
	jwtConfig := middleware.JWTMiddlewareConfig{
		JWTService:     jwtService,
		TokenBlacklist: tokenBlacklist,
		SkipPaths: []string{
			"/api/v1/ping",
			"/api/v1/system/ping",
			"/api/v1/system/info",
		},
		Logger: log,
	}
	r.Use(middleware.JWTAuthMiddlewareWithConfig(jwtConfig))

	// Tenant resolution: JWT claims first, X-Tenant-ID header as fallback.
	// Not required here because handlers fall back to the development tenant.
	r.Use(middleware.TenantMiddlewareWithConfig(middleware.TenantMiddlewareConfig{
		HeaderEnabled: true,
		JWTEnabled:    true,
		SkipPaths: []string{
			"/api/v1/ping",
			"/api/v1/system/ping",
			"/api/v1/system/info",
		},
		Required: false,
		Logger:   log,
	}))

	// Registry domain (plants, vehicles, clients)
	registryRoutes := router.NewDomainGroup("registry", "/registry")

	// Plant routes
	registryRoutes.POST("/plants", plantHandler.Create)
	registryRoutes.GET("/plants", plantHandler.List)
	registryRoutes.GET("/plants/:id", plantHandler.GetByID)
	registryRoutes.PUT("/plants/:id", plantHandler.Update)
	registryRoutes.POST("/plants/:id/activate", plantHandler.Activate)
	registryRoutes.POST("/plants/:id/deactivate", plantHandler.Deactivate)

	// Vehicle routes
	registryRoutes.POST("/vehicles", vehicleHandler.Create)
	registryRoutes.GET("/vehicles", vehicleHandler.List)
	registryRoutes.GET("/vehicles/:id", vehicleHandler.GetByID)
	registryRoutes.PUT("/vehicles/:id/driver", vehicleHandler.AssignDriver)
	registryRoutes.DELETE("/vehicles/:id/driver", vehicleHandler.UnassignDriver)
	registryRoutes.POST("/vehicles/:id/activate", vehicleHandler.Activate)
	registryRoutes.POST("/vehicles/:id/deactivate", vehicleHandler.Deactivate)

	// Client routes
	registryRoutes.POST("/clients", clientHandler.Create)
	registryRoutes.GET("/clients", clientHandler.List)
	registryRoutes.GET("/clients/:id", clientHandler.GetByID)
	registryRoutes.PUT("/clients/:id", clientHandler.Update)
	registryRoutes.POST("/clients/:id/block", clientHandler.Block)
	registryRoutes.POST("/clients/:id/restrict", clientHandler.Restrict)
	registryRoutes.POST("/clients/:id/unblock", clientHandler.Unblock)

	// Route domain (lifecycle, delivery execution, return review)
	routeRoutes := router.NewDomainGroup("routes", "/routes")
	routeRoutes.POST("", routeHandler.Create)
	routeRoutes.GET("", routeHandler.List)
	routeRoutes.GET("/active", routeHandler.ListActive)
	routeRoutes.GET("/number/:number", routeHandler.GetByRouteNumber)
	routeRoutes.GET("/:id", routeHandler.GetByID)
	routeRoutes.POST("/:id/start", routeHandler.Start)
	routeRoutes.POST("/:id/finish", routeHandler.Finish)
	routeRoutes.POST("/:id/cancel", routeHandler.Cancel)
	routeRoutes.POST("/:id/flag", routeHandler.Flag)
	routeRoutes.POST("/:id/close", routeHandler.Close)
	routeRoutes.POST("/:id/deliveries/:deliveryId/complete", routeHandler.CompleteDelivery)
	routeRoutes.POST("/:id/deliveries/:deliveryId/incident", routeHandler.ReportDeliveryIncident)
	routeRoutes.POST("/:id/deliveries/:deliveryId/skip", routeHandler.SkipDelivery)

	// Ledger domain (movements, balances, summary)
	ledgerRoutes := router.NewDomainGroup("ledger", "/ledger")
	ledgerRoutes.POST("/adjustments", ledgerHandler.PostAdjustment)
	ledgerRoutes.GET("/balance", ledgerHandler.Balance)
	ledgerRoutes.GET("/summary", ledgerHandler.Summary)
	ledgerRoutes.GET("/movements", ledgerHandler.List)
	ledgerRoutes.GET("/movements/reference/:refType/:refId", ledgerHandler.ListByReference)
	ledgerRoutes.GET("/movements/:id", ledgerHandler.GetMovement)

	// Anomaly domain (review queue)
	anomalyRoutes := router.NewDomainGroup("anomaly", "/anomalies")
	anomalyRoutes.POST("", anomalyHandler.Create)
	anomalyRoutes.GET("", anomalyHandler.List)
	anomalyRoutes.GET("/open", anomalyHandler.ListOpen)
	anomalyRoutes.GET("/route/:routeId", anomalyHandler.ListByRoute)
	anomalyRoutes.GET("/:id", anomalyHandler.GetByID)
	anomalyRoutes.POST("/:id/review", anomalyHandler.StartReview)
	anomalyRoutes.POST("/:id/resolve", anomalyHandler.Resolve)
	anomalyRoutes.POST("/:id/dismiss", anomalyHandler.Dismiss)

	// Register all domain groups
	r.Register(registryRoutes).
		Register(routeRoutes).
		Register(ledgerRoutes).
		Register(anomalyRoutes)

	// System routes
	systemHandler := handler.NewSystemHandler()
	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", systemHandler.GetSystemInfo)
	systemRoutes.GET("/ping", systemHandler.Ping)

	// Outbox management (dead letter inspection and replay)
	systemRoutes.GET("/outbox/stats", outboxHandler.GetStats)
	systemRoutes.GET("/outbox/dead", outboxHandler.GetDeadLetterEntries)
	systemRoutes.POST("/outbox/dead/retry-all", outboxHandler.RetryAllDeadEntries)
	systemRoutes.GET("/outbox/:id", outboxHandler.GetEntry)
	systemRoutes.POST("/outbox/:id/retry", outboxHandler.RetryDeadEntry)
	r.Register(systemRoutes)

	// Setup routes
	r.Setup()

	// Also keep a simple ping at root API level for basic health checks
	engine.GET("/api/v1/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
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

// healthHandler returns a handler for health check endpoints
func healthHandler(db *persistence.Database, _ *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
