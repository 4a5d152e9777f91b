// ===============================
// FILE: internal/handlers/api/v1/users/history_controller.go
// ===============================

package users

import (
	"net/http"

	"doclib/internal/handlers/api/v1/apiutil"
	"doclib/internal/response"
	"doclib/internal/services"

	"go.uber.org/zap"
)

// HistoryController lists the caller's view and download history
type HistoryController struct {
	history          services.HistoryService
	logger           *zap.Logger
	responseBuilder  *response.Builder
	paginationParser *response.PaginationParser
}

// NewHistoryController creates a new history controller
func NewHistoryController(history services.HistoryService, logger *zap.Logger, responseBuilder *response.Builder) *HistoryController {
	return &HistoryController{
		history:          history,
		logger:           logger,
		responseBuilder:  responseBuilder,
		paginationParser: response.NewPaginationParser(response.DefaultPaginationConfig()),
	}
}

// ListViews handles GET /api/v1/me/views
func (c *HistoryController) ListViews(w http.ResponseWriter, r *http.Request) {
	actor, err := apiutil.RequireActor(r)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	page, err := c.history.ListViews(r.Context(), actor.UserID, c.paginationParser.ParseFromRequest(r))
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteSuccess(w, r, page)
}

// ListDownloads handles GET /api/v1/me/downloads
func (c *HistoryController) ListDownloads(w http.ResponseWriter, r *http.Request) {
	actor, err := apiutil.RequireActor(r)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	page, err := c.history.ListDownloads(r.Context(), actor.UserID, c.paginationParser.ParseFromRequest(r))
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteSuccess(w, r, page)
}
