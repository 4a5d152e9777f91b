package models

import (
	"errors"
	"time"
)

// DocumentStatus is the moderation state of a document.
type DocumentStatus string

const (
	StatusPending  DocumentStatus = "pending"
	StatusApproved DocumentStatus = "approved"
	StatusRejected DocumentStatus = "rejected"
)

var (
	// ErrStatusUnchanged is returned when a document is moved to the status it already has.
	ErrStatusUnchanged = errors.New("document already has this status")
	// ErrInvalidTransition is returned for any move out of a terminal status.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrNotApproved is returned when featuring a document that is not approved.
	ErrNotApproved = errors.New("only approved documents can be featured")
)

// Valid reports whether s is one of the known statuses
func (s DocumentStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// CanTransitionTo checks a moderation move. Only pending documents move,
// and only to approved or rejected.
func (s DocumentStatus) CanTransitionTo(next DocumentStatus) error {
	if s == next {
		return ErrStatusUnchanged
	}
	if s != StatusPending {
		return ErrInvalidTransition
	}
	if next != StatusApproved && next != StatusRejected {
		return ErrInvalidTransition
	}
	return nil
}

// FileInfo describes the stored blob of a document.
type FileInfo struct {
	URL        string `json:"url"`
	Name       string `json:"name"`
	MimeType   string `json:"mimeType"`
	Size       int64  `json:"size"`
	Format     string `json:"format"`
	StorageKey string `json:"-"`
}

// ThumbnailInfo describes an optional preview image.
type ThumbnailInfo struct {
	URL        string `json:"url"`
	StorageKey string `json:"-"`
}

// Document is an uploaded file with moderation status and engagement counters.
type Document struct {
	ID          int64          `json:"id" db:"id"`
	Title       string         `json:"title" db:"title"`
	Description string         `json:"description" db:"description"`
	File        FileInfo       `json:"file"`
	Thumbnail   *ThumbnailInfo `json:"thumbnail,omitempty"`
	Slug        string         `json:"slug" db:"slug"`
	Status      DocumentStatus `json:"status" db:"status"`
	IsPublic    bool           `json:"isPublic" db:"is_public"`
	IsFeatured  bool           `json:"isFeatured" db:"is_featured"`
	Tags        []string       `json:"tags" db:"tags"`

	// Counters
	ViewCount     int64   `json:"viewCount" db:"view_count"`
	DownloadCount int64   `json:"downloadCount" db:"download_count"`
	FavoriteCount int64   `json:"favoriteCount" db:"favorite_count"`
	AverageRating float64 `json:"averageRating" db:"average_rating"`
	TotalRatings  int64   `json:"totalRatings" db:"total_ratings"`

	UploaderID int64     `json:"uploaderId" db:"uploader_id"`
	CategoryID int64     `json:"categoryId" db:"category_id"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt  time.Time `json:"updatedAt" db:"updated_at"`

	// Joined fields
	Category *CategoryRef `json:"category,omitempty" db:"-"`
	Uploader *UserRef     `json:"uploader,omitempty" db:"-"`
}

// IsOwnedBy checks if the user uploaded the document
func (d *Document) IsOwnedBy(userID int64) bool {
	return d.UploaderID == userID
}

// IsPubliclyVisible reports whether anonymous users may see the document
func (d *Document) IsPubliclyVisible() bool {
	return d.Status == StatusApproved && d.IsPublic
}

// IsVisibleTo reports whether the given viewer may read the document.
func (d *Document) IsVisibleTo(userID int64, isAdmin bool) bool {
	if d.IsPubliclyVisible() || isAdmin {
		return true
	}
	return userID != 0 && d.IsOwnedBy(userID)
}

// CanFeature returns ErrNotApproved unless the document is approved
func (d *Document) CanFeature() error {
	if d.Status != StatusApproved {
		return ErrNotApproved
	}
	return nil
}

// DocumentPatch carries the optional fields of an update. Nil means unchanged.
type DocumentPatch struct {
	Title       *string
	Description *string
	Tags        []string
	CategoryID  *int64
	IsPublic    *bool
}

// ===============================
// LISTING QUERY
// ===============================

// ListScope selects which documents a listing may include.
type ListScope string

const (
	ScopePublic   ListScope = "public"
	ScopeMine     ListScope = "mine"
	ScopeAdmin    ListScope = "admin"
	ScopeFeatured ListScope = "featured"
)

// Sortable fields for document listings.
const (
	SortViewCount     = "viewCount"
	SortDownloadCount = "downloadCount"
	SortFavoriteCount = "favoriteCount"
	SortAverageRating = "averageRating"
	SortCreatedAt     = "createdAt"
)

// DocumentQuery is a validated, normalized listing request.
type DocumentQuery struct {
	Scope      ListScope
	OwnerID    int64
	CategoryID *int64
	UploaderID *int64
	Format     string
	Search     string
	Status     *DocumentStatus
	DateField  string
	StartDate  *time.Time
	EndDate    *time.Time
	SortField  string
	SortDesc   bool
	Pagination PaginationParams
}
