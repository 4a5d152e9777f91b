// ===============================
// FILE: internal/handlers/api/v1/favorites/favorites_controller.go
// ===============================

package favorites

import (
	"net/http"

	"doclib/internal/handlers/api/v1/apiutil"
	"doclib/internal/response"
	"doclib/internal/services"

	"go.uber.org/zap"
)

// FavoriteController toggles and lists favorites
type FavoriteController struct {
	favorites        services.FavoriteService
	logger           *zap.Logger
	responseBuilder  *response.Builder
	paginationParser *response.PaginationParser
}

// NewFavoriteController creates a new favorite controller
func NewFavoriteController(favorites services.FavoriteService, logger *zap.Logger, responseBuilder *response.Builder) *FavoriteController {
	return &FavoriteController{
		favorites:        favorites,
		logger:           logger,
		responseBuilder:  responseBuilder,
		paginationParser: response.NewPaginationParser(response.DefaultPaginationConfig()),
	}
}

// ToggleFavorite handles POST /api/v1/documents/{id}/favorite
func (c *FavoriteController) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	actor, err := apiutil.RequireActor(r)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	documentID, err := apiutil.PathID(r, "id")
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	result, err := c.favorites.Toggle(r.Context(), actor.UserID, documentID)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteSuccess(w, r, result)
}

// ListFavorites handles GET /api/v1/me/favorites
func (c *FavoriteController) ListFavorites(w http.ResponseWriter, r *http.Request) {
	actor, err := apiutil.RequireActor(r)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	page, err := c.favorites.ListMine(r.Context(), actor.UserID, c.paginationParser.ParseFromRequest(r))
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteSuccess(w, r, page)
}
