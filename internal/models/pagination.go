package models

// ===============================
// PAGINATION
// ===============================

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// PaginationParams is a normalized page request
type PaginationParams struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// NewPaginationParams normalizes page and limit. Non-positive values fall
// back to defaults and limit is clamped to MaxLimit.
func NewPaginationParams(page, limit int) PaginationParams {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return PaginationParams{Page: page, Limit: limit}
}

// Offset returns the row offset for the page
func (p PaginationParams) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

// Page is the paginated payload returned inside the response envelope.
type Page[T any] struct {
	TotalItems  int64 `json:"totalItems"`
	TotalPages  int   `json:"totalPages"`
	CurrentPage int   `json:"currentPage"`
	Items       []T   `json:"items"`
}

// NewPage builds a page; items is never encoded as null.
func NewPage[T any](items []T, total int64, p PaginationParams) *Page[T] {
	if items == nil {
		items = []T{}
	}
	totalPages := 0
	if p.Limit > 0 {
		totalPages = int((total + int64(p.Limit) - 1) / int64(p.Limit))
	}
	return &Page[T]{
		TotalItems:  total,
		TotalPages:  totalPages,
		CurrentPage: p.Page,
		Items:       items,
	}
}

// EmptyPage returns a page with no items
func EmptyPage[T any](p PaginationParams) *Page[T] {
	return NewPage[T](nil, 0, p)
}
