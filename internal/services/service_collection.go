// file: internal/services/service_collection.go
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"doclib/internal/cache"
	"doclib/internal/config"
	"doclib/internal/database"
	"doclib/internal/events"
	"doclib/internal/monitoring"
	"doclib/internal/repositories"
	"doclib/internal/utils"

	"go.uber.org/zap"
)

// ServiceCollection holds every service together with the infrastructure
// they share.
type ServiceCollection struct {
	Documents     DocumentService
	Listing       ListingService
	Favorites     FavoriteService
	Ratings       RatingService
	Comments      CommentService
	Notifications NotificationService
	Categories    CategoryService
	History       HistoryService
	Auth          AuthService

	Repositories *repositories.Collection
	Cache        cache.Cache
	Loader       *cache.Loader
	Locker       cache.Locker
	EventBus     events.EventBus
	Storage      utils.FileStorage
	Metrics      *monitoring.Metrics
	Logger       *zap.Logger
	Config       *config.Config
	DBManager    *database.Manager
}

// NewServiceCollection wires repositories, infrastructure and services
func NewServiceCollection(
	ctx context.Context,
	dbManager *database.Manager,
	cfg *config.Config,
	metrics *monitoring.Metrics,
	logger *zap.Logger,
) (*ServiceCollection, error) {
	if dbManager == nil {
		return nil, errors.New("database manager is required")
	}
	if cfg == nil {
		return nil, errors.New("config is required")
	}

	repos, err := repositories.NewCollection(dbManager, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create repositories: %w", err)
	}

	c, err := cache.NewCache(&cfg.Cache, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create cache: %w", err)
	}

	storage, err := utils.NewFileStorage(ctx, &cfg.Storage, logger)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to create file storage: %w", err)
	}

	bus := events.NewEventBus(&events.EventBusConfig{
		BufferSize:     cfg.Library.EventQueueSize,
		WorkerCount:    cfg.Library.EventWorkers,
		HandlerTimeout: 10 * time.Second,
	}, logger)
	if err := events.RegisterMetricsHandlers(bus, metrics, logger); err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to register event handlers: %w", err)
	}

	sc := &ServiceCollection{
		Repositories: repos,
		Cache:        c,
		Loader:       cache.NewLoader(c, metrics, logger),
		Locker:       cache.NewLocker(c, logger),
		EventBus:     bus,
		Storage:      storage,
		Metrics:      metrics,
		Logger:       logger,
		Config:       cfg,
		DBManager:    dbManager,
	}
	sc.wire()

	logger.Info("Service collection initialized",
		zap.String("cache", cfg.Cache.Provider),
		zap.String("storage", storage.Name()),
		zap.String("upload_profile", cfg.Storage.Profile),
	)
	return sc, nil
}

func (sc *ServiceCollection) wire() {
	cfg, repos, logger := sc.Config, sc.Repositories, sc.Logger

	sc.Notifications = NewNotificationService(repos.Notification, repos.Document, sc.EventBus, sc.Metrics, logger)
	sc.History = NewHistoryService(repos.History, sc.EventBus, sc.Loader, logger)
	sc.Categories = NewCategoryService(repos.Category, sc.Loader, cfg.Cache.TTL, logger)
	sc.Listing = NewListingService(repos.Document, repos.Category, sc.Loader, cfg.Cache.ListTTL, logger)
	sc.Favorites = NewFavoriteService(repos.Favorite, repos.Document, sc.EventBus, sc.Loader, cfg.Library.FavoriteLimit, logger)
	sc.Ratings = NewRatingService(repos.Rating, repos.Document, sc.Notifications, sc.Locker, cfg.Library.RatingLockTTL, sc.EventBus, sc.Loader, logger)
	sc.Comments = NewCommentService(repos.Comment, repos.Document, sc.Notifications, sc.EventBus, logger)
	sc.Auth = NewAuthService(repos.User, cfg.Auth, cfg.OAuth, logger)
	sc.Documents = NewDocumentService(DocumentServiceDeps{
		Documents:  repos.Document,
		Categories: repos.Category,
		History:    sc.History,
		Notifier:   sc.Notifications,
		Storage:    sc.Storage,
		Files:      utils.NewFileValidator(utils.ProfileFor(cfg.Storage.Profile), logger),
		Events:     sc.EventBus,
		Loader:     sc.Loader,
		Metrics:    sc.Metrics,
		Logger:     logger,
		Config:     &cfg.Library,
	})
}

// Start launches the event bus workers
func (sc *ServiceCollection) Start(ctx context.Context) error {
	return sc.EventBus.Start(ctx)
}

// HealthCheck reports per-dependency errors; an empty map means healthy.
func (sc *ServiceCollection) HealthCheck(ctx context.Context) map[string]error {
	issues := make(map[string]error)
	if err := sc.Repositories.HealthCheck(ctx); err != nil {
		issues["database"] = err
	}
	if err := sc.Cache.Health(ctx); err != nil {
		issues["cache"] = err
	}
	if err := sc.EventBus.Health(); err != nil {
		issues["events"] = err
	}
	return issues
}

// Shutdown drains the event bus and closes the cache
func (sc *ServiceCollection) Shutdown(ctx context.Context) error {
	var errs []error
	if err := sc.EventBus.Stop(ctx); err != nil {
		errs = append(errs, fmt.Errorf("event bus: %w", err))
	}
	if err := sc.Cache.Close(); err != nil {
		errs = append(errs, fmt.Errorf("cache: %w", err))
	}
	sc.Logger.Info("Service collection stopped")
	return errors.Join(errs...)
}
