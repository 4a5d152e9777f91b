// @title           Document Library API
// @version         1.0
// @description     Upload, moderate, discover and discuss documents.
// @BasePath        /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"doclib/internal/config"
	"doclib/internal/database"
	"doclib/internal/handlers/web"
	"doclib/internal/middleware"
	"doclib/internal/monitoring"
	"doclib/internal/response"
	"doclib/internal/router"
	"doclib/internal/services"
	"doclib/internal/utils/appinfo"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := initLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("Application stopped with error", zap.Error(err))
	}
	logger.Info("Application shutdown completed")
}

func run(cfg *config.Config, logger *zap.Logger) error {
	logger.Info("Starting document library",
		zap.String("version", appinfo.Version()),
		zap.String("environment", cfg.Server.Environment),
		zap.String("port", cfg.Server.Port),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := monitoring.NewMetrics(appinfo.Name, registry)

	// Database
	dbManager, err := database.InitDB(ctx, cfg, logger, metrics)
	if err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}
	defer dbManager.Close()

	// Services
	serviceCollection, err := services.NewServiceCollection(ctx, dbManager, cfg, metrics, logger)
	if err != nil {
		return fmt.Errorf("initialize services: %w", err)
	}

	responseConfig := response.DefaultConfig()
	responseConfig.PrettyJSON = cfg.IsDevelopment()
	responseBuilder := response.NewBuilder(responseConfig, logger)

	authMiddleware := middleware.NewAuthMiddleware(serviceCollection.Auth, responseBuilder, logger)

	hub := web.NewNotificationHub(
		serviceCollection.Notifications,
		cfg.Server.CORSOrigins,
		cfg.Library.NotificationBuffer,
		metrics,
		logger,
	)
	if err := hub.Subscribe(serviceCollection.EventBus); err != nil {
		return fmt.Errorf("subscribe notification hub: %w", err)
	}

	if err := serviceCollection.Start(ctx); err != nil {
		return fmt.Errorf("start services: %w", err)
	}

	dashboard := monitoring.NewDashboard(logger, appinfo.Version(), cfg.Server.Environment)
	registerHealthChecks(dashboard, serviceCollection)

	var rateLimiter, authLimiter *middleware.RateLimiter
	if cfg.RateLimit.Enabled {
		limits := middleware.DefaultRateLimiterConfig()
		limits.RequestsPerSecond = cfg.RateLimit.RequestsPerSecond
		limits.Burst = cfg.RateLimit.Burst
		rateLimiter = middleware.NewRateLimiter(limits, responseBuilder, logger)

		credentials := middleware.DefaultRateLimiterConfig()
		credentials.RequestsPerSecond = 0.2
		credentials.Burst = 5
		credentials.WhitelistedIPs = nil
		authLimiter = middleware.NewRateLimiter(credentials, responseBuilder, logger)
	}

	handler := router.SetupRouter(&router.Dependencies{
		Config:          cfg,
		Services:        serviceCollection,
		AuthMiddleware:  authMiddleware,
		ResponseBuilder: responseBuilder,
		Hub:             hub,
		Dashboard:       dashboard,
		Metrics:         metrics,
		Gatherer:        registry,
		RateLimiter:     rateLimiter,
		AuthLimiter:     authLimiter,
		Logger:          logger,
	})

	server := &http.Server{
		Addr:              net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler:           handler,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		MaxHeaderBytes:    cfg.Server.MaxHeaderBytes,
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          zap.NewStdLog(logger.Named("http")),
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting HTTP server", zap.String("address", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	if rateLimiter != nil {
		g.Go(func() error {
			rateLimiter.Run(gctx, cfg.RateLimit.CleanupInterval)
			return nil
		})
		g.Go(func() error {
			authLimiter.Run(gctx, cfg.RateLimit.CleanupInterval)
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down application...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulTimeout)
		defer cancel()

		// Websockets are hijacked and invisible to server.Shutdown.
		hub.Shutdown()
		var errs []error
		if err := server.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("http server shutdown: %w", err))
		}
		if err := serviceCollection.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, err)
		}
		return errors.Join(errs...)
	})

	return g.Wait()
}

func registerHealthChecks(dashboard *monitoring.Dashboard, sc *services.ServiceCollection) {
	dashboard.Register("database", true, sc.DBManager.Ping)
	dashboard.Register("cache", false, sc.Cache.Health)
	dashboard.Register("events", false, func(context.Context) error { return sc.EventBus.Health() })
	dashboard.Register("storage", false, func(context.Context) error {
		if sc.Storage == nil {
			return errors.New("no storage backend configured")
		}
		return nil
	})
}

// initLogger builds the zap logger from LOG_LEVEL and LOG_FORMAT
func initLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var zc zap.Config
	if strings.EqualFold(cfg.Format, "json") {
		zc = zap.NewProductionConfig()
	} else {
		zc = zap.NewDevelopmentConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.EncoderConfig.TimeKey = "timestamp"
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := zc.Build(zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	if err != nil {
		return nil, err
	}
	return logger.With(zap.String("service", appinfo.Name)), nil
}
