// file: internal/repositories/collection.go
package repositories

import (
	"context"
	"fmt"
	"time"

	"doclib/internal/database"

	"go.uber.org/zap"
)

// Collection holds all repository instances for dependency injection
type Collection struct {
	User         UserRepository
	Category     CategoryRepository
	Document     DocumentRepository
	Favorite     FavoriteRepository
	Rating       RatingRepository
	Comment      CommentRepository
	Notification NotificationRepository
	History      HistoryRepository

	db     *database.Manager
	logger *zap.Logger
}

// NewCollection creates a new repository collection with all dependencies
func NewCollection(db *database.Manager, logger *zap.Logger) (*Collection, error) {
	if db == nil {
		return nil, fmt.Errorf("database manager is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &Collection{
		User:         NewUserRepository(db, logger),
		Category:     NewCategoryRepository(db, logger),
		Document:     NewDocumentRepository(db, logger),
		Favorite:     NewFavoriteRepository(db, logger),
		Rating:       NewRatingRepository(db, logger),
		Comment:      NewCommentRepository(db, logger),
		Notification: NewNotificationRepository(db, logger),
		History:      NewHistoryRepository(db, logger),
		db:           db,
		logger:       logger,
	}

	logger.Info("Repository collection initialized successfully")
	return c, nil
}

// HealthCheck pings the database and reports how long it took.
// It is registered with the monitoring dashboard as a critical check.
func (c *Collection) HealthCheck(ctx context.Context) error {
	start := time.Now()
	err := c.db.Ping(ctx)
	if err != nil {
		c.logger.Warn("Database health check failed",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)),
		)
		return err
	}
	return nil
}

// GetDB returns the underlying database manager for advanced operations
func (c *Collection) GetDB() *database.Manager {
	return c.db
}
