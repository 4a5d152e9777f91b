// file: internal/services/favorite_service.go
package services

import (
	"context"
	"errors"

	"doclib/internal/cache"
	"doclib/internal/events"
	"doclib/internal/models"
	"doclib/internal/repositories"

	"go.uber.org/zap"
)

// DefaultFavoriteLimit caps how many documents one user may favorite
const DefaultFavoriteLimit = 100

type favoriteService struct {
	favorites repositories.FavoriteRepository
	docs      repositories.DocumentRepository
	events    events.EventBus
	loader    *cache.Loader
	limit     int
	logger    *zap.Logger
}

// NewFavoriteService creates a favorite service. A non-positive limit
// falls back to DefaultFavoriteLimit.
func NewFavoriteService(
	favorites repositories.FavoriteRepository,
	docs repositories.DocumentRepository,
	bus events.EventBus,
	loader *cache.Loader,
	limit int,
	logger *zap.Logger,
) FavoriteService {
	if limit <= 0 {
		limit = DefaultFavoriteLimit
	}
	return &favoriteService{favorites: favorites, docs: docs, events: bus, loader: loader, limit: limit, logger: logger}
}

// Toggle adds or removes the favorite. Membership and favoriteCount change
// in one transaction inside the repository.
func (s *favoriteService) Toggle(ctx context.Context, userID, documentID int64) (*models.FavoriteToggleResult, error) {
	if _, err := requireApproved(ctx, s.docs, s.logger, documentID); err != nil {
		return nil, err
	}

	result, err := s.favorites.Toggle(context.WithoutCancel(ctx), userID, documentID, s.limit)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrLimitExceeded):
			return nil, NewLimitExceededError("favorite limit reached", s.limit)
		case errors.Is(err, repositories.ErrNotFound):
			return nil, EntityNotFoundError("document", documentID)
		}
		return nil, internalError(s.logger, "failed to toggle favorite", err,
			zap.Int64("user_id", userID), zap.Int64("document_id", documentID))
	}

	invalidateListings(ctx, s.loader)
	kind := events.EngagementUnfavor
	if result.IsFavorite {
		kind = events.EngagementFavorite
	}
	publishEngagement(ctx, s.events, s.logger, kind, documentID, &userID)
	return result, nil
}

func (s *favoriteService) IsFavorite(ctx context.Context, userID, documentID int64) (bool, error) {
	ok, err := s.favorites.Exists(ctx, userID, documentID)
	if err != nil {
		return false, internalError(s.logger, "failed to check favorite", err)
	}
	return ok, nil
}

func (s *favoriteService) ListMine(ctx context.Context, userID int64, p models.PaginationParams) (*models.Page[*models.Document], error) {
	p = models.NewPaginationParams(p.Page, p.Limit)
	docs, total, err := s.favorites.ListByUser(ctx, userID, p)
	if err != nil {
		return nil, internalError(s.logger, "failed to list favorites", err, zap.Int64("user_id", userID))
	}
	return models.NewPage(docs, total, p), nil
}

// ===============================
// SHARED ENGAGEMENT HELPERS
// ===============================

// requireApproved loads a document that engagement may target. Missing
// and unapproved documents are both NotFound.
func requireApproved(ctx context.Context, docs repositories.DocumentRepository, logger *zap.Logger, documentID int64) (*models.Document, error) {
	doc, err := docs.GetByID(ctx, documentID)
	if err != nil {
		return nil, internalError(logger, "failed to load document", err, zap.Int64("document_id", documentID))
	}
	if doc == nil || doc.Status != models.StatusApproved {
		return nil, EntityNotFoundError("document", documentID)
	}
	return doc, nil
}

func publishEngagement(ctx context.Context, bus events.EventBus, logger *zap.Logger, kind string, documentID int64, userID *int64) {
	if bus == nil {
		return
	}
	if err := bus.PublishAsync(ctx, events.NewEngagementEvent(kind, documentID, userID)); err != nil {
		logger.Debug("Engagement event dropped", zap.String("kind", kind), zap.Error(err))
	}
}
