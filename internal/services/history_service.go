// file: internal/services/history_service.go
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

type historyService struct {
	history repositories.HistoryRepository
	events  events.EventBus
	loader  *cache.Loader
	logger  *zap.Logger
}

// NewHistoryService creates the view and download history service
func NewHistoryService(history repositories.HistoryRepository, bus events.EventBus, loader *cache.Loader, logger *zap.Logger) HistoryService {
	return &historyService{history: history, events: bus, loader: loader, logger: logger}
}

// RecordView bumps viewCount and, for signed-in viewers, the view history row.
func (s *historyService) RecordView(ctx context.Context, documentID int64, viewerID *int64) error {
	if err := s.history.RecordView(context.WithoutCancel(ctx), documentID, viewerID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return EntityNotFoundError("document", documentID)
		}
		return internalError(s.logger, "failed to record view", err, zap.Int64("document_id", documentID))
	}
	invalidateListings(ctx, s.loader)
	publishEngagement(ctx, s.events, s.logger, events.EngagementView, documentID, viewerID)
	return nil
}

func (s *historyService) RecordDownload(ctx context.Context, documentID int64, userID *int64, ip, device string) error {
	if err := s.history.RecordDownload(context.WithoutCancel(ctx), documentID, userID, ip, device); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return EntityNotFoundError("document", documentID)
		}
		return internalError(s.logger, "failed to record download", err, zap.Int64("document_id", documentID))
	}
	invalidateListings(ctx, s.loader)
	publishEngagement(ctx, s.events, s.logger, events.EngagementDownload, documentID, userID)
	return nil
}

func (s *historyService) ListViews(ctx context.Context, userID int64, p models.PaginationParams) (*models.Page[*models.ViewHistory], error) {
	p = models.NewPaginationParams(p.Page, p.Limit)
	items, total, err := s.history.ListViews(ctx, userID, p)
	if err != nil {
		return nil, internalError(s.logger, "failed to list view history", err, zap.Int64("user_id", userID))
	}
	return models.NewPage(items, total, p), nil
}

func (s *historyService) ListDownloads(ctx context.Context, userID int64, p models.PaginationParams) (*models.Page[*models.DownloadHistory], error) {
	p = models.NewPaginationParams(p.Page, p.Limit)
	items, total, err := s.history.ListDownloads(ctx, userID, p)
	if err != nil {
		return nil, internalError(s.logger, "failed to list download history", err, zap.Int64("user_id", userID))
	}
	return models.NewPage(items, total, p), nil
}
