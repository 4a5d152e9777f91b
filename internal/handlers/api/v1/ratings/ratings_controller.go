// ===============================
// FILE: internal/handlers/api/v1/ratings/ratings_controller.go
// ===============================

package ratings

import (
	"net/http"

	"doclib/internal/handlers/api/v1/apiutil"
	"doclib/internal/response"
	"doclib/internal/services"

	"go.uber.org/zap"
)

// RatingController handles rating endpoints
type RatingController struct {
	ratings          services.RatingService
	logger           *zap.Logger
	responseBuilder  *response.Builder
	paginationParser *response.PaginationParser
}

// NewRatingController creates a new rating controller
func NewRatingController(ratings services.RatingService, logger *zap.Logger, responseBuilder *response.Builder) *RatingController {
	return &RatingController{
		ratings:          ratings,
		logger:           logger,
		responseBuilder:  responseBuilder,
		paginationParser: response.NewPaginationParser(response.DefaultPaginationConfig()),
	}
}

// RateDocument handles PUT /api/v1/documents/{id}/rating. It answers 201
// for a first rating and 200 when an existing one was replaced.
func (c *RatingController) RateDocument(w http.ResponseWriter, r *http.Request) {
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

	var req services.RateDocumentRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	req.UserID = actor.UserID
	req.UserName = actor.Name
	req.DocumentID = documentID

	result, err := c.ratings.Upsert(r.Context(), &req)
	status := http.StatusOK
	if result != nil && result.Created {
		status = http.StatusCreated
	}
	c.responseBuilder.WriteResult(w, r, status, result, err)
}

// DeleteRating handles DELETE /api/v1/documents/{id}/rating
func (c *RatingController) DeleteRating(w http.ResponseWriter, r *http.Request) {
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
	agg, err := c.ratings.Delete(r.Context(), actor.UserID, documentID)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteSuccess(w, r, agg)
}

// GetMyRating handles GET /api/v1/documents/{id}/rating
func (c *RatingController) GetMyRating(w http.ResponseWriter, r *http.Request) {
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
	rating, err := c.ratings.GetMine(r.Context(), actor.UserID, documentID)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteSuccess(w, r, rating)
}

// ListRatings handles GET /api/v1/documents/{id}/ratings
func (c *RatingController) ListRatings(w http.ResponseWriter, r *http.Request) {
	documentID, err := apiutil.PathID(r, "id")
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	page, err := c.ratings.List(r.Context(), documentID, c.paginationParser.ParseFromRequest(r))
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteSuccess(w, r, page)
}

// GetDistribution handles GET /api/v1/documents/{id}/ratings/distribution
func (c *RatingController) GetDistribution(w http.ResponseWriter, r *http.Request) {
	documentID, err := apiutil.PathID(r, "id")
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	dist, err := c.ratings.Distribution(r.Context(), documentID)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteSuccess(w, r, dist)
}
