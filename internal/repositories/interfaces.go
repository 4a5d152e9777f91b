// file: internal/repositories/interfaces.go
package repositories

import (
	"context"

	"doclib/internal/models"
)

// ===============================
// CORE REPOSITORY INTERFACES
// ===============================
//
// Getters return (nil, nil) when the row does not exist. Mutations that
// match no row return ErrNotFound.

// UserRepository defines the contract for user data operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// CategoryRepository defines the contract for category data operations
type CategoryRepository interface {
	Create(ctx context.Context, category *models.Category) error
	Update(ctx context.Context, category *models.Category) error
	// Delete returns ErrInUse while documents reference the category.
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*models.Category, error)
	GetBySlug(ctx context.Context, slug string) (*models.Category, error)
	List(ctx context.Context) ([]*models.Category, error)
}

// DocumentRepository defines the contract for document data operations
type DocumentRepository interface {
	// Create returns ErrDuplicate when the slug is taken.
	Create(ctx context.Context, doc *models.Document) error
	GetByID(ctx context.Context, id int64) (*models.Document, error)
	GetBySlug(ctx context.Context, slug string) (*models.Document, error)
	SlugExists(ctx context.Context, slug string, excludeID int64) (bool, error)
	// Update writes editable fields; ErrDuplicate on slug collision.
	Update(ctx context.Context, doc *models.Document) error
	// UpdateStatus moves a document only if it is still in status from.
	// It returns false when another writer changed the status first.
	UpdateStatus(ctx context.Context, id int64, from, to models.DocumentStatus, isPublic bool) (bool, error)
	SetFeatured(ctx context.Context, id int64, featured bool) error
	// Delete removes the document and its engagement rows in one transaction.
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, q models.DocumentQuery) ([]*models.Document, error)
	Count(ctx context.Context, q models.DocumentQuery) (int64, error)
}

// FavoriteRepository defines the contract for favorites
type FavoriteRepository interface {
	// Toggle flips membership and the document counter atomically.
	// Adding past limit returns ErrLimitExceeded.
	Toggle(ctx context.Context, userID, documentID int64, limit int) (*models.FavoriteToggleResult, error)
	Exists(ctx context.Context, userID, documentID int64) (bool, error)
	ListByUser(ctx context.Context, userID int64, p models.PaginationParams) ([]*models.Document, int64, error)
}

// RatingRepository defines the contract for ratings
type RatingRepository interface {
	// Upsert inserts or replaces the user's rating; created reports an insert.
	Upsert(ctx context.Context, rating *models.Rating) (created bool, err error)
	Get(ctx context.Context, userID, documentID int64) (*models.Rating, error)
	Delete(ctx context.Context, userID, documentID int64) error
	// Stats returns the count and score sum of a document's ratings.
	Stats(ctx context.Context, documentID int64) (count int64, sum int64, err error)
	UpdateAggregate(ctx context.Context, documentID int64, agg models.RatingAggregate) error
	// Distribution returns rating counts keyed by star value.
	Distribution(ctx context.Context, documentID int64) (map[int]int64, error)
	ListByDocument(ctx context.Context, documentID int64, p models.PaginationParams) ([]*models.Rating, int64, error)
}

// CommentRepository defines the contract for comments
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id int64) (*models.Comment, error)
	UpdateContent(ctx context.Context, id int64, content string) error
	SoftDelete(ctx context.Context, id int64) error
	// MarkReported returns false when the comment was already reported.
	MarkReported(ctx context.Context, id int64) (bool, error)
	ListTopLevel(ctx context.Context, documentID int64, p models.PaginationParams, newestFirst bool) ([]*models.Comment, int64, error)
	ListReplies(ctx context.Context, parentIDs []int64) ([]*models.Comment, error)
}

// NotificationRepository defines the contract for notifications
type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	GetByID(ctx context.Context, id int64) (*models.Notification, error)
	List(ctx context.Context, userID int64, unreadOnly bool, p models.PaginationParams) ([]*models.Notification, int64, error)
	SetRead(ctx context.Context, id int64, read bool) error
	MarkAllRead(ctx context.Context, userID int64) (int64, error)
	Delete(ctx context.Context, id int64) error
	DeleteAll(ctx context.Context, userID int64) (int64, error)
	UnreadCount(ctx context.Context, userID int64) (int64, error)
}

// HistoryRepository records views and downloads together with counters
type HistoryRepository interface {
	// RecordView increments the view counter and, for a signed-in viewer,
	// upserts the view history row in the same transaction.
	RecordView(ctx context.Context, documentID int64, userID *int64) error
	RecordDownload(ctx context.Context, documentID int64, userID *int64, ip, device string) error
	ListViews(ctx context.Context, userID int64, p models.PaginationParams) ([]*models.ViewHistory, int64, error)
	ListDownloads(ctx context.Context, userID int64, p models.PaginationParams) ([]*models.DownloadHistory, int64, error)
}
