// file: internal/services/types.go
package services

import (
	"io"
	"mime/multipart"

	"doclib/internal/models"
)

// Actor is the authenticated caller of an operation.
type Actor struct {
	UserID int64
	Name   string
	Role   string
}

// IsAdmin reports whether the actor has the admin role
func (a Actor) IsAdmin() bool {
	return a.Role == models.RoleAdmin
}

// viewerID returns 0 for anonymous viewers
func viewerID(a *Actor) int64 {
	if a == nil {
		return 0
	}
	return a.UserID
}

// ===============================
// DOCUMENT TYPES
// ===============================

// UploadDocumentRequest carries the multipart upload form
type UploadDocumentRequest struct {
	Title       string   `json:"title" validate:"required,notblank,max=255"`
	Description string   `json:"description" validate:"max=5000"`
	Tags        []string `json:"tags" validate:"max=20,dive,max=50"`
	CategoryID  int64    `json:"categoryId" validate:"required,gt=0"`
	OwnerID     int64    `json:"-" validate:"required,gt=0"`

	File      *multipart.FileHeader `json:"-"`
	Thumbnail *multipart.FileHeader `json:"-"`
}

// DownloadRequest identifies a download and who made it
type DownloadRequest struct {
	DocumentID int64
	Viewer     *Actor
	IPAddress  string
	DeviceInfo string
}

// DownloadResult is either a stream of a locally stored blob or a URL to
// redirect the client to.
type DownloadResult struct {
	FileName    string
	MimeType    string
	Size        int64
	Reader      io.ReadCloser
	RedirectURL string
}

// ListDocumentsRequest holds raw listing parameters. The listing service
// validates and normalizes them.
type ListDocumentsRequest struct {
	Scope  models.ListScope
	Viewer *Actor

	CategorySlug string
	UploaderID   string
	Format       string
	Search       string
	Status       string
	DateField    string
	StartDate    string
	EndDate      string
	SortBy       string
	SortOrder    string

	Pagination models.PaginationParams
}

// ===============================
// ENGAGEMENT TYPES
// ===============================

// RateDocumentRequest creates or replaces a user's rating
type RateDocumentRequest struct {
	UserID     int64   `json:"-"`
	UserName   string  `json:"-"`
	DocumentID int64   `json:"-"`
	Score      int     `json:"score" validate:"required,min=1,max=5"`
	Review     *string `json:"review,omitempty" validate:"omitempty,max=2000"`
}

// RatingResult is the saved rating with the refreshed aggregate
type RatingResult struct {
	Rating    *models.Rating         `json:"rating"`
	Aggregate models.RatingAggregate `json:"aggregate"`
	Created   bool                   `json:"created"`
}

// CreateCommentRequest adds a comment or a reply
type CreateCommentRequest struct {
	UserID          int64  `json:"-"`
	UserName        string `json:"-"`
	DocumentID      int64  `json:"-"`
	Content         string `json:"content" validate:"required,notblank,max=5000"`
	ParentCommentID *int64 `json:"parentCommentId,omitempty" validate:"omitempty,gt=0"`
}

// UpdateCommentRequest edits a comment body
type UpdateCommentRequest struct {
	Content string `json:"content" validate:"required,notblank,max=5000"`
}

// CategoryRequest creates or replaces a category
type CategoryRequest struct {
	Name        string  `json:"name" validate:"required,notblank,max=100"`
	Slug        string  `json:"slug,omitempty" validate:"omitempty,max=120"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=1000"`
}

// ===============================
// AUTH TYPES
// ===============================

// RegisterRequest creates a password account
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,notblank,min=2,max=100"`
	Email    string `json:"email" validate:"required,email,max=320"`
	Password string `json:"password" validate:"required,password"`
}

// LoginRequest authenticates a password account
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse is returned after a successful sign-in
type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresAt int64        `json:"expiresAt"`
	User      *models.User `json:"user"`
}
