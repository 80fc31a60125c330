package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/application/storefront"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/pricing"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
	"github.com/storefront/backend/internal/infrastructure/catalogsource"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/infrastructure/scheduler"
	"github.com/storefront/backend/internal/infrastructure/telemetry"
	"github.com/storefront/backend/internal/interfaces/http/handler"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
	"github.com/storefront/backend/internal/interfaces/http/router"
)

//	@title			Storefront Widget API
//	@version		1.0
//	@description	Catalog, cart and checkout handoff for the storefront widget
//	@BasePath		/api/v1

// version is overridden at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	}, cfg.App.Name)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting storefront backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	ctx := context.Background()

	// Telemetry
	telemetryCfg := telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		Insecure:          cfg.Telemetry.Insecure,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		MetricsInterval:   cfg.Telemetry.MetricsInterval,
		ExportLogs:        cfg.Telemetry.ExportLogs,
	}
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetryCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetryCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	logProvider, err := telemetry.NewLoggerProvider(ctx, telemetryCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize logger provider", zap.Error(err))
	}
	level, _ := logger.ParseLevel(cfg.Log.Level)
	log = logProvider.Bridge(log, level)

	meter := meterProvider.Meter("storefront")
	storefrontMetrics, err := telemetry.NewStorefrontMetrics(meter, cfg.Pricing.Currency)
	if err != nil {
		log.Fatal("Failed to create storefront metrics", zap.Error(err))
	}

	// Domain
	policy, err := pricing.NewPolicy(pricing.Config{
		Rate:          cfg.Pricing.Rate,
		Currency:      valueobject.Currency(cfg.Pricing.Currency),
		CurrencyLabel: cfg.Pricing.CurrencyLabel,
		Locale:        cfg.Pricing.Locale,
	})
	if err != nil {
		log.Fatal("Invalid pricing configuration", zap.Error(err))
	}
	store := catalog.NewStore()
	composer, err := order.NewComposer(order.Config{
		BaseURL:    cfg.Handoff.BaseURL,
		Recipient:  cfg.Handoff.Recipient,
		TitleWidth: cfg.Handoff.TitleWidth,
	}, store, policy)
	if err != nil {
		log.Fatal("Invalid handoff configuration", zap.Error(err))
	}

	// Application
	sourceCfg := catalogsource.DefaultConfig()
	sourceCfg.Endpoint = cfg.Catalog.Endpoint
	sourceCfg.Timeout = cfg.Catalog.Timeout
	sourceCfg.MaxResponseSize = cfg.Catalog.MaxResponseSize
	sourceCfg.UserAgent = cfg.App.Name + "/" + version
	source, err := catalogsource.NewHTTPSource(sourceCfg, log.Named("catalogsource"))
	if err != nil {
		log.Fatal("Invalid catalog source", zap.Error(err))
	}

	catalogService := storefront.NewCatalogService(store, source, policy, log.Named("catalog"),
		storefront.WithCardTitleWidth(cfg.Catalog.CardTitleWidth),
		storefront.WithMetrics(storefrontMetrics),
	)

	sessionManager := storefront.NewSessionManager(storefront.SessionManagerConfig{
		IdleTTL:     cfg.Session.IdleTTL,
		MaxSessions: cfg.Session.MaxSessions,
		Session: storefront.SessionConfig{
			ToastDuration: cfg.Toast.Duration,
			Strict:        *cfg.Session.Strict,
		},
	}, storefront.SessionDeps{
		Store:    store,
		Catalog:  catalogService,
		Pricing:  policy,
		Composer: composer,
		Logger:   log.Named("session"),
		Metrics:  storefrontMetrics,
	})
	catalogService.Subscribe(sessionManager.ReconcileAll)

	if _, err := telemetry.ObserveActiveSessions(meter, sessionManager.Len); err != nil {
		log.Fatal("Failed to register session gauge", zap.Error(err))
	}

	limiter := middleware.NewRateLimiter(middleware.RateLimitConfig{
		RequestsPerSecond: cfg.HTTP.RateLimitRPS,
		Burst:             cfg.HTTP.RateLimitBurst,
		IdleTimeout:       cfg.Session.IdleTTL,
	})

	reloadLimiter := middleware.NewRateLimiter(middleware.RateLimitConfig{
		RequestsPerSecond: cfg.HTTP.ReloadLimitRPS,
		Burst:             cfg.HTTP.ReloadLimitBurst,
		IdleTimeout:       cfg.Session.IdleTTL,
	})

	sweeper, err := scheduler.NewSessionSweeper(sessionManager, log.Named("sweeper"), scheduler.SessionSweeperConfig{
		Enabled:  true,
		Interval: cfg.Session.SweepInterval,
	}, limiter, reloadLimiter)
	if err != nil {
		log.Fatal("Invalid sweeper configuration", zap.Error(err))
	}
	if err := sweeper.Start(ctx); err != nil {
		log.Fatal("Failed to start session sweeper", zap.Error(err))
	}

	// HTTP
	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Invalid trusted proxies", zap.Error(err))
	}

	httpMetrics, err := middleware.HTTPMetrics(meter)
	if err != nil {
		log.Fatal("Failed to create HTTP metrics", zap.Error(err))
	}

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	corsCfg.AllowMethods = cfg.HTTP.CORSAllowMethods
	corsCfg.AllowHeaders = cfg.HTTP.CORSAllowHeaders

	engine.Use(
		logger.Recovery(log),
		middleware.RequestID(),
		middleware.Tracing(middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     tracerProvider.IsEnabled(),
		}),
		middleware.SpanEnricher(),
		httpMetrics,
		logger.GinMiddleware(log),
		middleware.CORS(corsCfg),
		middleware.Secure(),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
	)

	storefrontHandler := handler.NewStorefrontHandler(catalogService, sessionManager)
	systemHandler := handler.NewSystemHandler(catalogService, sessionManager, version)

	r := router.NewRouter(engine)
	r.Register(router.NewStorefrontRoutes(storefrontHandler, router.StorefrontLimits{
		CreateSession: middleware.RateLimit(limiter),
		Reload:        middleware.RateLimit(reloadLimiter),
	}))
	r.Setup()
	router.RegisterSystemRoutes(engine, systemHandler)
	for _, route := range r.Routes() {
		log.Debug("Route registered",
			zap.String("group", route.Group),
			zap.String("method", route.Method),
			zap.String("path", route.Path),
		)
	}

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

	if cfg.Catalog.LoadOnStart {
		catalogService.LoadAsync(ctx)
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := sweeper.Stop(shutdownCtx); err != nil {
		log.Warn("Session sweeper did not stop cleanly", zap.Error(err))
	}
	sessionManager.CloseAll()

	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Meter provider shutdown failed", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Tracer provider shutdown failed", zap.Error(err))
	}
	if err := logProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Logger provider shutdown failed", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
