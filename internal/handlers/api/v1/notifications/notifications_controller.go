// ===============================
// FILE: internal/handlers/api/v1/notifications/notifications_controller.go
// ===============================

package notifications

import (
	"context"
	"net/http"

	"doclib/internal/handlers/api/v1/apiutil"
	"doclib/internal/response"
	"doclib/internal/services"

	"go.uber.org/zap"
)

// NotificationController serves the caller's notifications
type NotificationController struct {
	notifications    services.NotificationService
	logger           *zap.Logger
	responseBuilder  *response.Builder
	paginationParser *response.PaginationParser
}

// NewNotificationController creates a new notification controller
func NewNotificationController(notifications services.NotificationService, logger *zap.Logger, responseBuilder *response.Builder) *NotificationController {
	return &NotificationController{
		notifications:    notifications,
		logger:           logger,
		responseBuilder:  responseBuilder,
		paginationParser: response.NewPaginationParser(response.DefaultPaginationConfig()),
	}
}

// ListNotifications handles GET /api/v1/notifications?unreadOnly=true
func (c *NotificationController) ListNotifications(w http.ResponseWriter, r *http.Request) {
	actor, err := apiutil.RequireActor(r)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	unreadOnly := apiutil.QueryBool(r, "unreadOnly", false)
	page, err := c.notifications.List(r.Context(), actor.UserID, unreadOnly, c.paginationParser.ParseFromRequest(r))
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteSuccess(w, r, page)
}

// UnreadCount handles GET /api/v1/notifications/unread-count
func (c *NotificationController) UnreadCount(w http.ResponseWriter, r *http.Request) {
	actor, err := apiutil.RequireActor(r)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	count, err := c.notifications.UnreadCount(r.Context(), actor.UserID)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteSuccess(w, r, map[string]int64{"count": count})
}

// MarkRead handles POST /api/v1/notifications/{id}/read
func (c *NotificationController) MarkRead(w http.ResponseWriter, r *http.Request) {
	c.mutate(w, r, c.notifications.MarkRead, "Notification marked as read")
}

// MarkUnread handles POST /api/v1/notifications/{id}/unread
func (c *NotificationController) MarkUnread(w http.ResponseWriter, r *http.Request) {
	c.mutate(w, r, c.notifications.MarkUnread, "Notification marked as unread")
}

// DeleteNotification handles DELETE /api/v1/notifications/{id}
func (c *NotificationController) DeleteNotification(w http.ResponseWriter, r *http.Request) {
	c.mutate(w, r, c.notifications.Delete, "Notification deleted")
}

// MarkAllRead handles POST /api/v1/notifications/read-all
func (c *NotificationController) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	actor, err := apiutil.RequireActor(r)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	n, err := c.notifications.MarkAllRead(r.Context(), actor.UserID)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteSuccess(w, r, map[string]int64{"updated": n})
}

// DeleteAll handles DELETE /api/v1/notifications
func (c *NotificationController) DeleteAll(w http.ResponseWriter, r *http.Request) {
	actor, err := apiutil.RequireActor(r)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	n, err := c.notifications.DeleteAll(r.Context(), actor.UserID)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteSuccess(w, r, map[string]int64{"deleted": n})
}

func (c *NotificationController) mutate(
	w http.ResponseWriter,
	r *http.Request,
	op func(ctx context.Context, notificationID, userID int64) error,
	message string,
) {
	actor, err := apiutil.RequireActor(r)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	id, err := apiutil.PathID(r, "id")
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	if err := op(r.Context(), id, actor.UserID); err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteMessage(w, r, message)
}
