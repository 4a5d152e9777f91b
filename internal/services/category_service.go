// file: internal/services/category_service.go
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"doclib/internal/cache"
	"doclib/internal/models"
	"doclib/internal/repositories"
	"doclib/internal/utils"
	"doclib/internal/validation"

	"go.uber.org/zap"
)

type categoryService struct {
	categories repositories.CategoryRepository
	loader     *cache.Loader
	ttl        time.Duration
	logger     *zap.Logger
}

// NewCategoryService creates a category service with read-through caching
func NewCategoryService(categories repositories.CategoryRepository, loader *cache.Loader, ttl time.Duration, logger *zap.Logger) CategoryService {
	return &categoryService{categories: categories, loader: loader, ttl: ttl, logger: logger}
}

func (s *categoryService) Create(ctx context.Context, req *CategoryRequest) (*models.Category, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	c := &models.Category{
		Name:        validation.SanitizeString(req.Name),
		Slug:        categorySlug(req),
		Description: req.Description,
	}
	if err := s.categories.Create(ctx, c); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, NewConflictError("a category with this slug already exists", "DUPLICATE_SLUG")
		}
		return nil, internalError(s.logger, "failed to create category", err)
	}
	s.invalidate(ctx)
	s.logger.Info("Category created", zap.Int64("category_id", c.ID), zap.String("slug", c.Slug))
	return c, nil
}

func (s *categoryService) Update(ctx context.Context, id int64, req *CategoryRequest) (*models.Category, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	c, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return nil, internalError(s.logger, "failed to load category", err, zap.Int64("category_id", id))
	}
	if c == nil {
		return nil, EntityNotFoundError("category", id)
	}

	c.Name = validation.SanitizeString(req.Name)
	c.Slug = categorySlug(req)
	c.Description = req.Description
	if err := s.categories.Update(ctx, c); err != nil {
		switch {
		case errors.Is(err, repositories.ErrNotFound):
			return nil, EntityNotFoundError("category", id)
		case errors.Is(err, repositories.ErrDuplicate):
			return nil, NewConflictError("a category with this slug already exists", "DUPLICATE_SLUG")
		}
		return nil, internalError(s.logger, "failed to update category", err, zap.Int64("category_id", id))
	}
	s.invalidate(ctx)
	return c, nil
}

// Delete refuses while documents still reference the category
func (s *categoryService) Delete(ctx context.Context, id int64) error {
	if err := s.categories.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, repositories.ErrNotFound):
			return EntityNotFoundError("category", id)
		case errors.Is(err, repositories.ErrInUse):
			return NewConflictError("category still has documents", "CATEGORY_IN_USE")
		}
		return internalError(s.logger, "failed to delete category", err, zap.Int64("category_id", id))
	}
	s.invalidate(ctx)
	return nil
}

func (s *categoryService) List(ctx context.Context) ([]*models.Category, error) {
	list, err := cache.Load(ctx, s.loader, "categories", categoryCachePrefix+"all", s.ttl,
		func(ctx context.Context) ([]*models.Category, error) {
			return s.categories.List(ctx)
		})
	if err != nil {
		return nil, internalError(s.logger, "failed to list categories", err)
	}
	if list == nil {
		list = []*models.Category{}
	}
	return list, nil
}

func (s *categoryService) GetBySlug(ctx context.Context, slug string) (*models.Category, error) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	c, err := cache.Load(ctx, s.loader, "categories", categoryCachePrefix+"slug:"+slug, s.ttl,
		func(ctx context.Context) (*models.Category, error) {
			return s.categories.GetBySlug(ctx, slug)
		})
	if err != nil {
		return nil, internalError(s.logger, "failed to load category", err, zap.String("slug", slug))
	}
	if c == nil {
		return nil, EntityNotFoundError("category", slug)
	}
	return c, nil
}

func (s *categoryService) invalidate(ctx context.Context) {
	s.loader.Invalidate(ctx, categoryCachePrefix+"*")
	s.loader.Invalidate(ctx, listCachePrefix+"*")
}

func categorySlug(req *CategoryRequest) string {
	if slug := strings.TrimSpace(req.Slug); slug != "" {
		return utils.Slugify(slug)
	}
	return utils.Slugify(req.Name)
}
