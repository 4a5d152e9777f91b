// file: internal/services/notification_service.go
package services

import (
	"context"
	"errors"
	"fmt"

	"doclib/internal/events"
	"doclib/internal/models"
	"doclib/internal/monitoring"
	"doclib/internal/repositories"
	"doclib/internal/utils"

	"go.uber.org/zap"
)

type notificationService struct {
	notifications repositories.NotificationRepository
	docs          repositories.DocumentRepository
	events        events.EventBus
	metrics       *monitoring.Metrics
	logger        *zap.Logger
}

// NewNotificationService creates the notification side channel. Created
// notifications are published as notification.created for live push.
func NewNotificationService(
	notifications repositories.NotificationRepository,
	docs repositories.DocumentRepository,
	bus events.EventBus,
	metrics *monitoring.Metrics,
	logger *zap.Logger,
) NotificationService {
	return &notificationService{
		notifications: notifications,
		docs:          docs,
		events:        bus,
		metrics:       metrics,
		logger:        logger,
	}
}

// NotifyDocumentOwner tells the owner of a document about activity on it.
// Actors acting on their own document get nothing and (nil, nil) is returned.
func (s *notificationService) NotifyDocumentOwner(ctx context.Context, documentID, actorID int64, notificationType, actorName string) (*models.Notification, error) {
	if !models.ValidNotificationType(notificationType) {
		return nil, InvalidInputError("type", "unknown notification type")
	}

	doc, err := s.docs.GetByID(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve document owner: %w", err)
	}
	if doc == nil {
		return nil, EntityNotFoundError("document", documentID)
	}
	if doc.UploaderID == actorID {
		return nil, nil
	}

	message, link := describeNotification(notificationType, doc, actorName)
	n := &models.Notification{
		UserID:  doc.UploaderID,
		Type:    notificationType,
		Message: message,
		Link:    link,
	}
	err = s.notifications.Create(ctx, n)
	s.metrics.RecordNotification(notificationType, err)
	if err != nil {
		s.logger.Error("Failed to create notification",
			zap.Int64("document_id", documentID),
			zap.Int64("recipient_id", doc.UploaderID),
			zap.String("type", notificationType),
			zap.Error(err))
		return nil, err
	}

	if s.events != nil {
		if err := s.events.PublishAsync(ctx, events.NewNotificationCreatedEvent(n)); err != nil {
			s.logger.Warn("Live notification push skipped", zap.Int64("notification_id", n.ID), zap.Error(err))
		}
	}
	return n, nil
}

func describeNotification(notificationType string, doc *models.Document, actorName string) (string, string) {
	if actorName == "" {
		actorName = "Someone"
	}
	base := "/documents/" + doc.Slug
	title := utils.TruncateContent(doc.Title, 12)
	switch notificationType {
	case models.NotificationDocumentApproved:
		return fmt.Sprintf("Your document %q has been approved", title), base
	case models.NotificationNewRating:
		return fmt.Sprintf("%s rated your document %q", actorName, title), base + "#ratings"
	case models.NotificationNewComment:
		return fmt.Sprintf("%s commented on your document %q", actorName, title), base + "#comments"
	default:
		return fmt.Sprintf("There is new activity on %q", title), base
	}
}

// ===============================
// CONSUMER OPERATIONS
// ===============================

func (s *notificationService) List(ctx context.Context, userID int64, unreadOnly bool, p models.PaginationParams) (*models.Page[*models.Notification], error) {
	p = models.NewPaginationParams(p.Page, p.Limit)
	items, total, err := s.notifications.List(ctx, userID, unreadOnly, p)
	if err != nil {
		return nil, internalError(s.logger, "failed to list notifications", err, zap.Int64("user_id", userID))
	}
	return models.NewPage(items, total, p), nil
}

func (s *notificationService) UnreadCount(ctx context.Context, userID int64) (int64, error) {
	count, err := s.notifications.UnreadCount(ctx, userID)
	if err != nil {
		return 0, internalError(s.logger, "failed to count notifications", err, zap.Int64("user_id", userID))
	}
	return count, nil
}

func (s *notificationService) MarkRead(ctx context.Context, notificationID, userID int64) error {
	return s.setRead(ctx, notificationID, userID, true)
}

func (s *notificationService) MarkUnread(ctx context.Context, notificationID, userID int64) error {
	return s.setRead(ctx, notificationID, userID, false)
}

func (s *notificationService) setRead(ctx context.Context, notificationID, userID int64, read bool) error {
	if _, err := s.owned(ctx, notificationID, userID); err != nil {
		return err
	}
	if err := s.notifications.SetRead(ctx, notificationID, read); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return EntityNotFoundError("notification", notificationID)
		}
		return internalError(s.logger, "failed to update notification", err, zap.Int64("notification_id", notificationID))
	}
	return nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	n, err := s.notifications.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, internalError(s.logger, "failed to mark notifications read", err, zap.Int64("user_id", userID))
	}
	return n, nil
}

func (s *notificationService) Delete(ctx context.Context, notificationID, userID int64) error {
	if _, err := s.owned(ctx, notificationID, userID); err != nil {
		return err
	}
	if err := s.notifications.Delete(ctx, notificationID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return EntityNotFoundError("notification", notificationID)
		}
		return internalError(s.logger, "failed to delete notification", err, zap.Int64("notification_id", notificationID))
	}
	return nil
}

func (s *notificationService) DeleteAll(ctx context.Context, userID int64) (int64, error) {
	n, err := s.notifications.DeleteAll(ctx, userID)
	if err != nil {
		return 0, internalError(s.logger, "failed to delete notifications", err, zap.Int64("user_id", userID))
	}
	return n, nil
}

// owned loads a notification and checks it belongs to userID
func (s *notificationService) owned(ctx context.Context, notificationID, userID int64) (*models.Notification, error) {
	n, err := s.notifications.GetByID(ctx, notificationID)
	if err != nil {
		return nil, internalError(s.logger, "failed to load notification", err, zap.Int64("notification_id", notificationID))
	}
	if n == nil {
		return nil, EntityNotFoundError("notification", notificationID)
	}
	if !n.IsOwnedBy(userID) {
		return nil, InsufficientPermissionsError("modify", "notification")
	}
	return n, nil
}
