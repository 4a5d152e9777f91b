// ===============================
// FILE: internal/handlers/api/v1/categories/categories_controller.go
// ===============================

package categories

import (
	"net/http"

	"doclib/internal/handlers/api/v1/apiutil"
	"doclib/internal/response"
	"doclib/internal/services"

	"go.uber.org/zap"
)

// CategoryController serves category reads and admin mutations
type CategoryController struct {
	categories      services.CategoryService
	logger          *zap.Logger
	responseBuilder *response.Builder
}

// NewCategoryController creates a new category controller
func NewCategoryController(categories services.CategoryService, logger *zap.Logger, responseBuilder *response.Builder) *CategoryController {
	return &CategoryController{categories: categories, logger: logger, responseBuilder: responseBuilder}
}

// ListCategories handles GET /api/v1/categories
func (c *CategoryController) ListCategories(w http.ResponseWriter, r *http.Request) {
	list, err := c.categories.List(r.Context())
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteSuccess(w, r, list)
}

// GetCategory handles GET /api/v1/categories/{slug}
func (c *CategoryController) GetCategory(w http.ResponseWriter, r *http.Request) {
	category, err := c.categories.GetBySlug(r.Context(), apiutil.PathString(r, "slug"))
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteSuccess(w, r, category)
}

// CreateCategory handles POST /api/v1/categories
func (c *CategoryController) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req services.CategoryRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	category, err := c.categories.Create(r.Context(), &req)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteCreated(w, r, category)
}

// UpdateCategory handles PUT /api/v1/categories/{id}
func (c *CategoryController) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := apiutil.PathID(r, "id")
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	var req services.CategoryRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	category, err := c.categories.Update(r.Context(), id, &req)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteSuccess(w, r, category)
}

// DeleteCategory handles DELETE /api/v1/categories/{id}
func (c *CategoryController) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := apiutil.PathID(r, "id")
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	if err := c.categories.Delete(r.Context(), id); err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteMessage(w, r, "Category deleted")
}
