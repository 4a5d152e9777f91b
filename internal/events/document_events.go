package events

import (
	"context"

	"doclib/internal/models"
	"doclib/internal/monitoring"

	"go.uber.org/zap"
)

// Event types published by the services.
const (
	TypeDocumentUploaded      = "document.uploaded"
	TypeDocumentStatusChanged = "document.status_changed"
	TypeDocumentDeleted       = "document.deleted"
	TypeEngagement            = "engagement.recorded"
	TypeNotificationCreated   = "notification.created"
)

// Engagement kinds carried by EngagementEvent.
const (
	EngagementView     = "view"
	EngagementDownload = "download"
	EngagementFavorite = "favorite"
	EngagementUnfavor  = "unfavorite"
	EngagementRating   = "rating"
	EngagementUnrate   = "unrate"
	EngagementComment  = "comment"
	EngagementReport   = "report"
)

// DocumentUploadedEvent is emitted after a document row and its blobs exist
type DocumentUploadedEvent struct {
	BaseEvent
	DocumentID int64  `json:"documentId"`
	Slug       string `json:"slug"`
	Format     string `json:"format"`
	Size       int64  `json:"size"`
}

func NewDocumentUploadedEvent(doc *models.Document) *DocumentUploadedEvent {
	uploader := doc.UploaderID
	return &DocumentUploadedEvent{
		BaseEvent:  newBaseEvent(TypeDocumentUploaded, &uploader),
		DocumentID: doc.ID,
		Slug:       doc.Slug,
		Format:     doc.File.Format,
		Size:       doc.File.Size,
	}
}

// DocumentStatusChangedEvent is emitted on approve and reject
type DocumentStatusChangedEvent struct {
	BaseEvent
	DocumentID int64                 `json:"documentId"`
	From       models.DocumentStatus `json:"from"`
	To         models.DocumentStatus `json:"to"`
}

func NewDocumentStatusChangedEvent(documentID, adminID int64, from, to models.DocumentStatus) *DocumentStatusChangedEvent {
	return &DocumentStatusChangedEvent{
		BaseEvent:  newBaseEvent(TypeDocumentStatusChanged, &adminID),
		DocumentID: documentID,
		From:       from,
		To:         to,
	}
}

// DocumentDeletedEvent is emitted after the row is gone
type DocumentDeletedEvent struct {
	BaseEvent
	DocumentID int64 `json:"documentId"`
}

func NewDocumentDeletedEvent(documentID, actorID int64) *DocumentDeletedEvent {
	return &DocumentDeletedEvent{
		BaseEvent:  newBaseEvent(TypeDocumentDeleted, &actorID),
		DocumentID: documentID,
	}
}

// EngagementEvent records a view, download, favorite, rating or comment.
// UserID is nil for anonymous engagement.
type EngagementEvent struct {
	BaseEvent
	Kind       string `json:"kind"`
	DocumentID int64  `json:"documentId"`
}

func NewEngagementEvent(kind string, documentID int64, userID *int64) *EngagementEvent {
	return &EngagementEvent{
		BaseEvent:  newBaseEvent(TypeEngagement, userID),
		Kind:       kind,
		DocumentID: documentID,
	}
}

// NotificationCreatedEvent carries a persisted notification to live listeners
type NotificationCreatedEvent struct {
	BaseEvent
	Notification *models.Notification `json:"notification"`
}

func NewNotificationCreatedEvent(n *models.Notification) *NotificationCreatedEvent {
	recipient := n.UserID
	return &NotificationCreatedEvent{
		BaseEvent:    newBaseEvent(TypeNotificationCreated, &recipient),
		Notification: n,
	}
}

// RegisterMetricsHandlers feeds domain events into the Prometheus counters.
func RegisterMetricsHandlers(bus EventBus, metrics *monitoring.Metrics, logger *zap.Logger) error {
	handlers := map[string]EventHandler{
		TypeDocumentUploaded: NewTypedEventHandler("metrics.upload",
			func(ctx context.Context, e *DocumentUploadedEvent) error {
				metrics.RecordUpload("success")
				return nil
			}),
		TypeDocumentStatusChanged: NewTypedEventHandler("metrics.transition",
			func(ctx context.Context, e *DocumentStatusChangedEvent) error {
				metrics.RecordTransition(string(e.To))
				return nil
			}),
		TypeEngagement: NewTypedEventHandler("metrics.engagement",
			func(ctx context.Context, e *EngagementEvent) error {
				metrics.RecordEngagement(e.Kind)
				return nil
			}),
	}

	for eventType, h := range handlers {
		if err := bus.Subscribe(eventType, h); err != nil {
			return err
		}
	}

	return bus.SubscribePattern("document.*", NewEventHandlerFunc("audit.document",
		func(ctx context.Context, e Event) error {
			fields := []zap.Field{
				zap.String("event_id", e.GetEventID()),
				zap.String("event_type", e.GetEventType()),
			}
			if uid := e.GetUserID(); uid != nil {
				fields = append(fields, zap.Int64("actor_id", *uid))
			}
			logger.Info("Document event", fields...)
			return nil
		}))
}
