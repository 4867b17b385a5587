package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	fertilizerapp "github.com/smartfertilizer/backend/internal/application/fertilizer"
	identityapp "github.com/smartfertilizer/backend/internal/application/identity"
	soilapp "github.com/smartfertilizer/backend/internal/application/soil"
	"github.com/smartfertilizer/backend/internal/infrastructure/auth"
	"github.com/smartfertilizer/backend/internal/infrastructure/config"
	"github.com/smartfertilizer/backend/internal/infrastructure/export"
	"github.com/smartfertilizer/backend/internal/infrastructure/location"
	"github.com/smartfertilizer/backend/internal/infrastructure/logger"
	"github.com/smartfertilizer/backend/internal/infrastructure/persistence"
	"github.com/smartfertilizer/backend/internal/infrastructure/prediction"
	"github.com/smartfertilizer/backend/internal/infrastructure/printing"
	"github.com/smartfertilizer/backend/internal/infrastructure/storage"
	"github.com/smartfertilizer/backend/internal/infrastructure/telemetry"
	"github.com/smartfertilizer/backend/internal/interfaces/http/handler"
	"github.com/smartfertilizer/backend/internal/interfaces/http/middleware"
	"github.com/smartfertilizer/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	_ "github.com/smartfertilizer/backend/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

//	@title			SmartFertilizer API
//	@version		1.0
//	@description	Soil readings, AI fertilizer recommendations and farmer accounts
//	@termsOfService	http://swagger.io/terms/

//	@contact.name	API Support
//	@contact.url	https://github.com/smartfertilizer/backend

//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT

//	@host		localhost:3000
//	@BasePath	/api

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

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
		_ = log.Sync()
	}()

	ctx := context.Background()

	// Telemetry
	tracerProvider, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize metrics", zap.Error(err))
	}
	loggerProvider, err := telemetry.NewLoggerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize log export", zap.Error(err))
	}
	log = loggerProvider.Bridge(log, zapcore.InfoLevel)

	profiler, err := telemetry.NewProfiler(cfg.Profiling, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	if profiler.IsEnabled() {
		tracerProvider.EnableSpanProfiles()
	}

	businessMetrics, err := telemetry.NewBusinessMetrics(meterProvider.Meter("smartfertilizer"))
	if err != nil {
		log.Fatal("Failed to register business metrics", zap.Error(err))
	}

	log.Info("Starting SmartFertilizer backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Database
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Database.SlowThreshold))
	db, err := persistence.NewDatabase(&cfg.Database, persistence.WithLogger(gormLog))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if cfg.Database.Driver == "sqlite" {
		if err := persistence.AutoMigrate(db.DB); err != nil {
			log.Fatal("Failed to migrate sqlite schema", zap.Error(err))
		}
	}
	if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracingConfig{
		Enabled:          cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		DBName:           cfg.Database.DBName,
		IncludeVariables: !cfg.App.IsProduction(),
		SlowQueryThresh:  cfg.Database.SlowThreshold,
	}, log); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}
	log.Info("Database connected successfully", zap.String("driver", cfg.Database.Driver))

	// Repositories
	userRepo := persistence.NewGormUserRepository(db.DB)
	readingRepo := persistence.NewGormSoilReadingRepository(db.DB)
	recommendationRepo := persistence.NewGormRecommendationRepository(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB)

	// Session revocation
	var blacklist auth.TokenBlacklist
	if cfg.Redis.Enabled {
		redisBlacklist, err := auth.NewRedisTokenBlacklist(cfg.Redis)
		if err != nil {
			log.Fatal("Failed to connect to redis", zap.Error(err))
		}
		defer func() {
			if err := redisBlacklist.Close(); err != nil {
				log.Error("Error closing redis", zap.Error(err))
			}
		}()
		blacklist = redisBlacklist
	} else {
		blacklist = auth.NewInMemoryTokenBlacklist()
		log.Warn("Redis disabled, token revocation is process-local")
	}

	// Collaborators
	predictor := prediction.NewClient(cfg.AI, log)
	locationService := location.NewService(cfg.Location, log, location.WithMetrics(businessMetrics))

	pdfRenderer, err := printing.NewChromedpRenderer(printing.ChromedpConfigFrom(cfg.Report, log))
	if err != nil {
		log.Fatal("Failed to create PDF renderer", zap.Error(err))
	}
	defer func() {
		if err := pdfRenderer.Close(); err != nil {
			log.Error("Error closing PDF renderer", zap.Error(err))
		}
	}()
	reports, err := printing.NewRecommendationReports(pdfRenderer, log)
	if err != nil {
		log.Fatal("Failed to load report templates", zap.Error(err))
	}

	// Application services
	jwtService := auth.NewJWTService(cfg.JWT)
	authService := identityapp.NewAuthService(
		userRepo,
		jwtService,
		blacklist,
		identityapp.NewLogResetNotifier(log),
		db,
		identityapp.AuthServiceConfig{
			ResetTokenTTL:    cfg.PasswordReset.TTL,
			FrontendURL:      cfg.App.FrontendURL,
			ExposeResetToken: !cfg.App.IsProduction(),
		},
		log,
	)

	soilService := soilapp.NewService(readingRepo, log)
	soilService.SetExporter(export.NewWorkbookExporter(time.UTC))

	recommendationService := fertilizerapp.NewRecommendationService(predictor, recommendationRepo, txScope, log)
	recommendationService.SetMetrics(businessMetrics)
	recommendationService.SetReportRenderer(reports)

	if cfg.Storage.Enabled {
		archive, err := storage.NewS3ObjectStorage(&cfg.Storage,
			storage.WithLogger(log),
			storage.WithPresignExpiration(cfg.Storage.PresignExpiration),
		)
		if err != nil {
			log.Fatal("Failed to create report storage", zap.Error(err))
		}
		if err := archive.EnsureBucket(ctx); err != nil {
			log.Fatal("Failed to prepare report bucket", zap.Error(err), zap.String("bucket", archive.Bucket()))
		}
		recommendationService.SetReportArchive(archive)
		log.Info("Report archive enabled", zap.String("bucket", archive.Bucket()))
	}

	// HTTP handlers
	base := handler.NewBaseHandler(cfg.App.IsProduction())
	handlers := router.Handlers{
		Auth:       handler.NewAuthHandler(base, authService),
		Soil:       handler.NewSoilHandler(base, soilService),
		Fertilizer: handler.NewFertilizerHandler(base, recommendationService),
		Location:   handler.NewLocationHandler(base, locationService),
		Health:     handler.NewHealthHandler(db, predictor),
	}

	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Middleware order:
	// RequestID, Tracing, Recovery, Logger, Metrics, Profiling, Security, CORS, BodyLimit, RateLimit
	engine.Use(middleware.RequestID())
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
	}))
	engine.Use(middleware.SpanEnricher())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.HTTPMetrics(businessMetrics))
	engine.Use(middleware.ProfilingWithConfig(middleware.ProfilingConfig{
		Enabled:          profiler.IsEnabled(),
		SkipPaths:        middleware.DefaultProfilingConfig().SkipPaths,
		SkipPathPrefixes: middleware.DefaultProfilingConfig().SkipPathPrefixes,
	}))
	engine.Use(middleware.SecureWithConfig(middleware.DefaultSecurityConfig()))
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfigFrom(cfg.HTTP)))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	if cfg.HTTP.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		defer limiter.Stop()
		engine.Use(middleware.RateLimit(limiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	guards := router.Guards{
		Authenticate: middleware.JWTAuthMiddleware(middleware.JWTMiddlewareConfig{
			JWTService:     jwtService,
			TokenBlacklist: blacklist,
			Users:          userRepo,
			Logger:         log,
		}),
	}
	if cfg.HTTP.AuthRateLimitEnabled {
		authLimiter := middleware.NewRateLimiter(cfg.HTTP.AuthRateLimitRequests, cfg.HTTP.AuthRateLimitWindow)
		defer authLimiter.Stop()
		guards.AuthRateLimit = middleware.RateLimitWithMessage(authLimiter, middleware.MsgAuthRateLimited)
	}

	if cfg.Swagger.Enabled {
		engine.GET("/swagger/*any",
			middleware.SwaggerProtection(middleware.SwaggerConfigFrom(cfg.Swagger), guards.Authenticate),
			ginSwagger.WrapHandler(swaggerFiles.Handler),
		)
	}

	r := router.NewRouter(engine)
	router.RegisterAPI(engine, r, handlers, guards)
	r.Setup()

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

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	// Flush telemetry after the last request has finished
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down tracer provider", zap.Error(err))
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down meter provider", zap.Error(err))
	}
	if err := profiler.Stop(); err != nil {
		log.Error("Error stopping profiler", zap.Error(err))
	}
	if err := loggerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down logger provider", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
