// file: internal/models/models.go
package models

import (
	"time"
)

// ===============================
// CORE ENTITIES
// ===============================

const (
	RoleAdmin    = "admin"
	RoleUploader = "uploader"
	RoleMember   = "member"
)

// User is an account that can upload, rate, comment and receive notifications.
type User struct {
	ID           int64     `json:"id" db:"id"`
	Name         string    `json:"name" db:"name" validate:"required,min=2,max=100"`
	Email        string    `json:"email" db:"email" validate:"required,email,max=320"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         string    `json:"role" db:"role" validate:"required,oneof=admin uploader member"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

// IsAdmin reports whether the user has the admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// UserRef is the public projection of a user embedded in other payloads.
type UserRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Category groups documents. Slug is unique.
type Category struct {
	ID          int64     `json:"id" db:"id"`
	Name        string    `json:"name" db:"name" validate:"required,max=100"`
	Slug        string    `json:"slug" db:"slug"`
	Description *string   `json:"description,omitempty" db:"description"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`

	// Computed fields (not in DB)
	DocumentCount int64 `json:"documentCount" db:"-"`
}

// CategoryRef is the category projection embedded in document summaries.
type CategoryRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// ===============================
// ENGAGEMENT
// ===============================

// Favorite links a user to a document. (UserID, DocumentID) is unique.
type Favorite struct {
	UserID     int64     `json:"userId" db:"user_id"`
	DocumentID int64     `json:"documentId" db:"document_id"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
}

// FavoriteToggleResult is the outcome of flipping a favorite.
type FavoriteToggleResult struct {
	IsFavorite    bool  `json:"isFavorite"`
	FavoriteCount int64 `json:"favoriteCount"`
}

// Rating is a single user's score for a document. (UserID, DocumentID) is unique.
type Rating struct {
	ID         int64     `json:"id" db:"id"`
	UserID     int64     `json:"userId" db:"user_id"`
	DocumentID int64     `json:"documentId" db:"document_id"`
	Score      int       `json:"score" db:"score"`
	Review     *string   `json:"review,omitempty" db:"review"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt  time.Time `json:"updatedAt" db:"updated_at"`

	User *UserRef `json:"user,omitempty" db:"-"`
}

// RatingAggregate is the denormalized rating summary kept on a document.
type RatingAggregate struct {
	AverageRating float64 `json:"averageRating"`
	TotalRatings  int64   `json:"totalRatings"`
}

// RatingBucket is one star level of a rating distribution.
type RatingBucket struct {
	Stars      int     `json:"stars"`
	Count      int64   `json:"count"`
	Percentage float64 `json:"percentage"`
}

// RatingDistribution lists buckets for stars 5 down to 1.
type RatingDistribution struct {
	TotalRatings int64          `json:"totalRatings"`
	Buckets      []RatingBucket `json:"distribution"`
}

// Comment belongs to a document. Replies are at most one level deep.
type Comment struct {
	ID              int64     `json:"id" db:"id"`
	DocumentID      int64     `json:"documentId" db:"document_id"`
	UserID          int64     `json:"userId" db:"user_id"`
	ParentCommentID *int64    `json:"parentCommentId,omitempty" db:"parent_comment_id"`
	Content         string    `json:"content" db:"content" validate:"required,min=1,max=5000"`
	IsDeleted       bool      `json:"isDeleted" db:"is_deleted"`
	IsEdited        bool      `json:"isEdited" db:"is_edited"`
	IsReported      bool      `json:"isReported" db:"is_reported"`
	CreatedAt       time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time `json:"updatedAt" db:"updated_at"`

	// Joined / assembled
	User    UserRef    `json:"user" db:"-"`
	Replies []*Comment `json:"replies,omitempty" db:"-"`
}

// IsOwnedBy checks if the user wrote the comment
func (c *Comment) IsOwnedBy(userID int64) bool {
	return c.UserID == userID
}

// IsReply reports whether the comment has a parent
func (c *Comment) IsReply() bool {
	return c.ParentCommentID != nil
}

// DocumentRef is the document projection used in history and favorites listings.
type DocumentRef struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	Slug  string `json:"slug"`
}

// ViewHistory keeps the latest view of a document per user.
type ViewHistory struct {
	UserID     int64       `json:"userId" db:"user_id"`
	DocumentID int64       `json:"documentId" db:"document_id"`
	ViewedAt   time.Time   `json:"viewedAt" db:"viewed_at"`
	Document   DocumentRef `json:"document" db:"-"`
}

// DownloadHistory keeps the latest download of a document per user.
type DownloadHistory struct {
	UserID       int64       `json:"userId" db:"user_id"`
	DocumentID   int64       `json:"documentId" db:"document_id"`
	DownloadedAt time.Time   `json:"downloadedAt" db:"downloaded_at"`
	IPAddress    string      `json:"ipAddress" db:"ip_address"`
	DeviceInfo   string      `json:"deviceInfo" db:"device_info"`
	Document     DocumentRef `json:"document" db:"-"`
}

// ===============================
// NOTIFICATIONS
// ===============================

const (
	NotificationNewComment       = "new_comment"
	NotificationDocumentApproved = "document_approved"
	NotificationNewRating        = "new_rating"
	NotificationSystem           = "system"
)

// Notification is a per-user message about activity on their documents.
type Notification struct {
	ID        int64      `json:"id" db:"id"`
	UserID    int64      `json:"userId" db:"user_id"`
	Type      string     `json:"type" db:"type" validate:"required,oneof=new_comment document_approved new_rating system"`
	Message   string     `json:"message" db:"message"`
	Link      string     `json:"link" db:"link"`
	IsRead    bool       `json:"isRead" db:"is_read"`
	ReadAt    *time.Time `json:"readAt,omitempty" db:"read_at"`
	CreatedAt time.Time  `json:"createdAt" db:"created_at"`
}

// IsOwnedBy checks if the notification belongs to the user
func (n *Notification) IsOwnedBy(userID int64) bool {
	return n.UserID == userID
}

// ValidNotificationType reports whether t is a known notification type
func ValidNotificationType(t string) bool {
	switch t {
	case NotificationNewComment, NotificationDocumentApproved, NotificationNewRating, NotificationSystem:
		return true
	}
	return false
}
