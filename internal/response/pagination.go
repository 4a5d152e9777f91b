// File: internal/response/pagination.go
package response

import (
	"net/http"
	"net/url"
	"strconv"

	"doclib/internal/models"
)

// PaginationConfig holds pagination configuration
type PaginationConfig struct {
	DefaultPageSize int
	MaxPageSize     int
	PageParam       string
	SizeParam       string
}

// DefaultPaginationConfig returns default pagination configuration
func DefaultPaginationConfig() *PaginationConfig {
	return &PaginationConfig{
		DefaultPageSize: models.DefaultLimit,
		MaxPageSize:     models.MaxLimit,
		PageParam:       "page",
		SizeParam:       "limit",
	}
}

// PaginationParser reads page and limit from query strings. Values that are
// missing, malformed or out of range fall back to defaults rather than
// failing the request; limit is clamped to MaxPageSize.
type PaginationParser struct {
	config *PaginationConfig
}

// NewPaginationParser creates a new pagination parser
func NewPaginationParser(config *PaginationConfig) *PaginationParser {
	if config == nil {
		config = DefaultPaginationConfig()
	}
	return &PaginationParser{config: config}
}

// ParseFromQuery parses pagination parameters from query string
func (p *PaginationParser) ParseFromQuery(query url.Values) models.PaginationParams {
	page, err := strconv.Atoi(query.Get(p.config.PageParam))
	if err != nil || page < 1 {
		page = 1
	}
	size, err := strconv.Atoi(query.Get(p.config.SizeParam))
	if err != nil || size < 1 {
		size = p.config.DefaultPageSize
	}
	if size > p.config.MaxPageSize {
		size = p.config.MaxPageSize
	}
	return models.PaginationParams{Page: page, Limit: size}
}

// ParseFromRequest parses pagination parameters from HTTP request
func (p *PaginationParser) ParseFromRequest(r *http.Request) models.PaginationParams {
	return p.ParseFromQuery(r.URL.Query())
}
