// file: internal/services/listing_service.go
package services

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"doclib/internal/cache"
	"doclib/internal/models"
	"doclib/internal/repositories"
	"doclib/internal/utils"

	"go.uber.org/zap"
	"golang.org/x/exp/slices"
	"golang.org/x/sync/errgroup"
)

const (
	listCachePrefix     = "documents:list:"
	categoryCachePrefix = "categories:"
	maxSearchLength     = 200
)

var sortFields = []string{
	models.SortViewCount,
	models.SortDownloadCount,
	models.SortFavoriteCount,
	models.SortAverageRating,
	models.SortCreatedAt,
}

var dateFields = []string{"createdAt", "updatedAt"}

// invalidateListings drops every cached listing page. Any write that
// changes a listed counter or aggregate must call it.
func invalidateListings(ctx context.Context, loader *cache.Loader) {
	if loader != nil {
		loader.Invalidate(context.WithoutCancel(ctx), listCachePrefix+"*")
	}
}

// listingService implements ListingService
type listingService struct {
	docs       repositories.DocumentRepository
	categories repositories.CategoryRepository
	loader     *cache.Loader
	listTTL    time.Duration
	logger     *zap.Logger
}

// NewListingService creates a listing service. Public and featured pages
// are cached for listTTL; a zero TTL disables caching.
func NewListingService(
	docs repositories.DocumentRepository,
	categories repositories.CategoryRepository,
	loader *cache.Loader,
	listTTL time.Duration,
	logger *zap.Logger,
) ListingService {
	return &listingService{
		docs:       docs,
		categories: categories,
		loader:     loader,
		listTTL:    listTTL,
		logger:     logger,
	}
}

func (s *listingService) List(ctx context.Context, req *ListDocumentsRequest) (*models.Page[*models.Document], error) {
	q, err := s.buildQuery(req)
	if err != nil {
		return nil, err
	}

	if slug := strings.TrimSpace(strings.ToLower(req.CategorySlug)); slug != "" {
		category, err := s.categoryBySlug(ctx, slug)
		if err != nil {
			return nil, internalError(s.logger, "failed to resolve category", err, zap.String("category", slug))
		}
		if category == nil {
			return models.EmptyPage[*models.Document](q.Pagination), nil
		}
		q.CategoryID = &category.ID
	}

	cacheable := s.loader != nil && s.listTTL > 0 &&
		(q.Scope == models.ScopePublic || q.Scope == models.ScopeFeatured)
	if !cacheable {
		return s.fetch(ctx, q)
	}
	return cache.Load(ctx, s.loader, "documents", listCacheKey(q), s.listTTL,
		func(ctx context.Context) (*models.Page[*models.Document], error) {
			return s.fetch(ctx, q)
		})
}

// fetch runs the count and page queries in parallel
func (s *listingService) fetch(ctx context.Context, q models.DocumentQuery) (*models.Page[*models.Document], error) {
	var (
		total int64
		docs  []*models.Document
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		total, err = s.docs.Count(gctx, q)
		return err
	})
	g.Go(func() error {
		var err error
		docs, err = s.docs.List(gctx, q)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, internalError(s.logger, "failed to list documents", err, zap.String("scope", string(q.Scope)))
	}
	return models.NewPage(docs, total, q.Pagination), nil
}

func (s *listingService) categoryBySlug(ctx context.Context, slug string) (*models.Category, error) {
	fn := func(ctx context.Context) (*models.Category, error) {
		return s.categories.GetBySlug(ctx, slug)
	}
	if s.loader == nil {
		return fn(ctx)
	}
	return cache.Load(ctx, s.loader, "categories", categoryCachePrefix+"slug:"+slug, s.listTTL, fn)
}

// buildQuery validates raw parameters into a DocumentQuery. Everything
// except the category slug is checked here so bad input fails before any
// storage call.
func (s *listingService) buildQuery(req *ListDocumentsRequest) (models.DocumentQuery, error) {
	q := models.DocumentQuery{
		Scope:      req.Scope,
		Pagination: models.NewPaginationParams(req.Pagination.Page, req.Pagination.Limit),
	}

	switch q.Scope {
	case "", models.ScopePublic:
		q.Scope = models.ScopePublic
	case models.ScopeFeatured:
	case models.ScopeMine:
		if req.Viewer == nil {
			return q, NewUnauthorizedError("authentication required")
		}
		q.OwnerID = req.Viewer.UserID
	case models.ScopeAdmin:
		if req.Viewer == nil || !req.Viewer.IsAdmin() {
			return q, InsufficientPermissionsError("list", "all documents")
		}
	default:
		return q, InvalidInputError("scope", "unknown listing scope")
	}

	if v := strings.TrimSpace(req.Status); v != "" && (q.Scope == models.ScopeMine || q.Scope == models.ScopeAdmin) {
		status := models.DocumentStatus(strings.ToLower(v))
		if !status.Valid() {
			return q, InvalidInputError("status", "must be one of pending, approved, rejected")
		}
		q.Status = &status
	}

	if v := strings.TrimSpace(req.UploaderID); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			return q, InvalidInputError("uploader", "must be a positive integer id")
		}
		q.UploaderID = &id
	}

	if v := strings.TrimSpace(req.Format); v != "" {
		format := utils.FormatFromExtension(v)
		if !utils.IsKnownFormat(format) {
			return q, InvalidInputError("format", fmt.Sprintf("must be one of %s", strings.Join(utils.KnownFormats, ", ")))
		}
		q.Format = format
	}

	q.Search = strings.TrimSpace(req.Search)
	if len(q.Search) > maxSearchLength {
		return q, InvalidInputError("search", fmt.Sprintf("must be at most %d characters", maxSearchLength))
	}

	q.DateField = models.SortCreatedAt
	if v := strings.TrimSpace(req.DateField); v != "" {
		if !slices.Contains(dateFields, v) {
			return q, InvalidInputError("dateField", "must be createdAt or updatedAt")
		}
		q.DateField = v
	}
	start, err := parseDateParam(req.StartDate, false)
	if err != nil {
		return q, InvalidInputError("startDate", err.Error())
	}
	end, err := parseDateParam(req.EndDate, true)
	if err != nil {
		return q, InvalidInputError("endDate", err.Error())
	}
	if start != nil && end != nil && start.After(*end) {
		return q, NewValidationError("startDate must not be after endDate", nil)
	}
	q.StartDate, q.EndDate = start, end

	q.SortField = models.SortCreatedAt
	if v := strings.TrimSpace(req.SortBy); v != "" {
		if !slices.Contains(sortFields, v) {
			return q, InvalidInputError("sortBy", fmt.Sprintf("must be one of %s", strings.Join(sortFields, ", ")))
		}
		q.SortField = v
	}
	switch strings.ToLower(strings.TrimSpace(req.SortOrder)) {
	case "", "desc":
		q.SortDesc = true
	case "asc":
		q.SortDesc = false
	default:
		return q, InvalidInputError("sortOrder", "must be asc or desc")
	}

	return q, nil
}

// parseDateParam accepts RFC3339 or YYYY-MM-DD. A date-only end bound
// covers the whole day.
func parseDateParam(v string, endOfDay bool) (*time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.DateOnly, v)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q, use YYYY-MM-DD or RFC3339", v)
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}

// listCacheKey encodes every field that changes the result
func listCacheKey(q models.DocumentQuery) string {
	v := url.Values{}
	v.Set("scope", string(q.Scope))
	v.Set("page", strconv.Itoa(q.Pagination.Page))
	v.Set("limit", strconv.Itoa(q.Pagination.Limit))
	v.Set("sort", q.SortField)
	v.Set("desc", strconv.FormatBool(q.SortDesc))
	v.Set("q", strings.ToLower(q.Search))
	v.Set("format", q.Format)
	v.Set("dateField", q.DateField)
	if q.CategoryID != nil {
		v.Set("category", strconv.FormatInt(*q.CategoryID, 10))
	}
	if q.UploaderID != nil {
		v.Set("uploader", strconv.FormatInt(*q.UploaderID, 10))
	}
	if q.StartDate != nil {
		v.Set("start", q.StartDate.UTC().Format(time.RFC3339Nano))
	}
	if q.EndDate != nil {
		v.Set("end", q.EndDate.UTC().Format(time.RFC3339Nano))
	}
	return listCachePrefix + v.Encode()
}
