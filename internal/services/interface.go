// file: internal/services/interface.go
package services

import (
	"context"

	"doclib/internal/models"
)

// ===============================
// CORE SERVICE INTERFACES
// ===============================

// DocumentService owns the document lifecycle and moderation status machine
type DocumentService interface {
	Upload(ctx context.Context, req *UploadDocumentRequest) (*models.Document, error)
	// Get resolves a numeric id or a slug. Hidden documents are NotFound
	// for everyone but their owner and admins.
	Get(ctx context.Context, idOrSlug string, viewer *Actor) (*models.Document, error)
	Update(ctx context.Context, documentID int64, patch *models.DocumentPatch, actorID int64) (*models.Document, error)
	Delete(ctx context.Context, documentID int64, actor Actor) error

	// Moderation. Approve may return the document together with a
	// SideEffectError when the owner could not be notified.
	Approve(ctx context.Context, documentID, adminID int64) (*models.Document, error)
	Reject(ctx context.Context, documentID, adminID int64) (*models.Document, error)
	SetFeatured(ctx context.Context, documentID int64, featured bool) (*models.Document, error)

	// Download records the download and then resolves the blob.
	Download(ctx context.Context, req *DownloadRequest) (*DownloadResult, error)
}

// ListingService searches, filters, sorts and paginates documents
type ListingService interface {
	List(ctx context.Context, req *ListDocumentsRequest) (*models.Page[*models.Document], error)
}

// FavoriteService manages per-user favorites
type FavoriteService interface {
	Toggle(ctx context.Context, userID, documentID int64) (*models.FavoriteToggleResult, error)
	IsFavorite(ctx context.Context, userID, documentID int64) (bool, error)
	ListMine(ctx context.Context, userID int64, p models.PaginationParams) (*models.Page[*models.Document], error)
}

// RatingService manages ratings and the aggregates derived from them
type RatingService interface {
	Upsert(ctx context.Context, req *RateDocumentRequest) (*RatingResult, error)
	Delete(ctx context.Context, userID, documentID int64) (*models.RatingAggregate, error)
	GetMine(ctx context.Context, userID, documentID int64) (*models.Rating, error)
	List(ctx context.Context, documentID int64, p models.PaginationParams) (*models.Page[*models.Rating], error)
	Distribution(ctx context.Context, documentID int64) (*models.RatingDistribution, error)
}

// CommentService manages document comments with one level of replies
type CommentService interface {
	Create(ctx context.Context, req *CreateCommentRequest) (*models.Comment, error)
	Update(ctx context.Context, commentID int64, content string, actor Actor) (*models.Comment, error)
	Delete(ctx context.Context, commentID int64, actor Actor) error
	Report(ctx context.Context, commentID, reporterID int64) error
	List(ctx context.Context, documentID int64, p models.PaginationParams, newestFirst bool) (*models.Page[*models.Comment], error)
}

// Notifier is the side channel the engagement services call after commit
type Notifier interface {
	NotifyDocumentOwner(ctx context.Context, documentID, actorID int64, notificationType, actorName string) (*models.Notification, error)
}

// NotificationService delivers and manages a user's notifications
type NotificationService interface {
	Notifier

	List(ctx context.Context, userID int64, unreadOnly bool, p models.PaginationParams) (*models.Page[*models.Notification], error)
	UnreadCount(ctx context.Context, userID int64) (int64, error)
	MarkRead(ctx context.Context, notificationID, userID int64) error
	MarkUnread(ctx context.Context, notificationID, userID int64) error
	MarkAllRead(ctx context.Context, userID int64) (int64, error)
	Delete(ctx context.Context, notificationID, userID int64) error
	DeleteAll(ctx context.Context, userID int64) (int64, error)
}

// CategoryService manages categories
type CategoryService interface {
	Create(ctx context.Context, req *CategoryRequest) (*models.Category, error)
	Update(ctx context.Context, id int64, req *CategoryRequest) (*models.Category, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]*models.Category, error)
	GetBySlug(ctx context.Context, slug string) (*models.Category, error)
}

// HistoryService records and lists views and downloads
type HistoryService interface {
	RecordView(ctx context.Context, documentID int64, viewerID *int64) error
	RecordDownload(ctx context.Context, documentID int64, userID *int64, ip, device string) error
	ListViews(ctx context.Context, userID int64, p models.PaginationParams) (*models.Page[*models.ViewHistory], error)
	ListDownloads(ctx context.Context, userID int64, p models.PaginationParams) (*models.Page[*models.DownloadHistory], error)
}

// AuthService issues and validates identities
type AuthService interface {
	Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error)
	Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error)
	Me(ctx context.Context, userID int64) (*models.User, error)
	ValidateToken(token string) (*Claims, error)

	GoogleEnabled() bool
	GoogleAuthURL(state string) string
	GoogleCallback(ctx context.Context, code string) (*AuthResponse, error)
}
