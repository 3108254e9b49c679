package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	commissionapp "github.com/casaverde/backoffice/internal/application/commission"
	ledgerapp "github.com/casaverde/backoffice/internal/application/ledger"
	treasuryapp "github.com/casaverde/backoffice/internal/application/treasury"
	"github.com/casaverde/backoffice/internal/domain/ledger"
	"github.com/casaverde/backoffice/internal/domain/shared"
	"github.com/casaverde/backoffice/internal/infrastructure/auth"
	"github.com/casaverde/backoffice/internal/infrastructure/cache"
	"github.com/casaverde/backoffice/internal/infrastructure/config"
	"github.com/casaverde/backoffice/internal/infrastructure/logger"
	"github.com/casaverde/backoffice/internal/infrastructure/persistence"
	"github.com/casaverde/backoffice/internal/interfaces/http/handler"
	"github.com/casaverde/backoffice/internal/interfaces/http/middleware"
	"github.com/casaverde/backoffice/internal/interfaces/http/router"
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

	log.Info("Starting CasaVerde Backoffice",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
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

	// Idempotency store: Redis when configured, in-memory otherwise.
	// The in-memory store is per-instance, so replays can slip through
	// behind a load balancer; the request-level form token still holds.
	var idempotencyStore shared.IdempotencyStore
	if cfg.Redis.Host != "" {
		store, err := cache.NewRedisIdempotencyStore(cache.RedisConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		idempotencyStore = store
		log.Info("Redis idempotency store connected",
			zap.String("host", cfg.Redis.Host),
			zap.Int("port", cfg.Redis.Port),
		)
	} else {
		idempotencyStore = cache.NewInMemoryIdempotencyStore()
		log.Warn("Redis not configured, using in-memory idempotency store")
	}
	defer func() {
		if err := idempotencyStore.Close(); err != nil {
			log.Error("Error closing idempotency store", zap.Error(err))
		}
	}()

	// Fallback mora parameters for projects migrated without their own
	moraFallback := ledger.MoraConfig{
		GraceDays:   cfg.Mora.GraceDays,
		MonthlyRate: decimal.NewFromFloat(cfg.Mora.MonthlyRatePct).Div(decimal.NewFromInt(100)),
	}

	// Initialize repositories
	txManager := persistence.NewGormTransactionManager(db.DB)
	saleRepo := persistence.NewGormSaleRepository(db.DB)
	projectRepo := persistence.NewGormProjectRepositoryWithFallback(db.DB, moraFallback)
	saleLogRepo := persistence.NewGormSaleLogRepository(db.DB)
	scheduleRepo := persistence.NewGormScheduleItemRepository(db.DB)
	applicationRepo := persistence.NewGormApplicationRepository(db.DB)
	receiptRepo := persistence.NewGormReceiptRepository(db.DB)
	methodRepo := persistence.NewGormPaymentMethodRepository(db.DB)
	requestRepo := persistence.NewGormTreasuryRequestRepository(db.DB)
	scaleRepo := persistence.NewGormScaleRepository(db.DB)
	participantRepo := persistence.NewGormParticipantRepository(db.DB)
	paymentRepo := persistence.NewGormPaymentRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)

	// Initialize application services
	receiptService := ledgerapp.NewReceiptService(
		txManager, saleRepo, projectRepo, scheduleRepo, applicationRepo, receiptRepo, saleLogRepo,
	)
	treasuryService := treasuryapp.NewService(
		txManager, requestRepo, saleRepo, scheduleRepo, applicationRepo,
		methodRepo, userRepo, receiptService, idempotencyStore, log,
	)
	commissionService := commissionapp.NewLiquidationService(
		txManager, saleRepo, saleLogRepo, receiptRepo, scaleRepo, participantRepo, paymentRepo, log,
	)

	jwtService := auth.NewJWTService(cfg.JWT)

	// Initialize HTTP handlers
	handlers := router.Handlers{
		System:     handler.NewSystemHandler(),
		Treasury:   handler.NewTreasuryHandler(treasuryService),
		Ledger:     handler.NewLedgerHandler(receiptService),
		Commission: handler.NewCommissionHandler(commissionService),
	}

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

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
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

	// Rate limiting (if enabled)
	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	// Health check endpoints (outside API versioning)
	router.HealthRoutes(engine, healthHandler(db))

	// Setup API routes using router
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	// JWT guards the back-office endpoints. The treasury endpoints the
	// collections front end calls carry the static API token instead,
	// so they skip JWT by prefix.
	jwtConfig := middleware.JWTMiddlewareConfig{
		JWTService: jwtService,
		SkipPaths: []string{
			"/api/v1/system/ping",
			"/api/v1/system/info",
		},
		SkipPathPrefixes: []string{
			"/api/v1/tesoreria/",
			"/api/v1/recibos/",
		},
		Logger: log,
	}
	r.Use(middleware.JWTAuthMiddlewareWithConfig(jwtConfig))

	// Static token guard for the externally-called treasury endpoints
	if !cfg.Treasury.AuthRequired {
		log.Warn("Treasury API token authentication is disabled")
	}
	apiToken := middleware.APIToken(middleware.APITokenConfig{
		Required: cfg.Treasury.AuthRequired,
		Token:    cfg.Treasury.APIToken,
	})

	router.BuildRoutes(r, handlers, apiToken)

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
func healthHandler(db *persistence.Database) gin.HandlerFunc {
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
