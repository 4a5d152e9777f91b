// ===============================
// FILE: internal/handlers/api/v1/comments/comments_controller.go
// ===============================

package comments

import (
	"net/http"
	"strings"

	"doclib/internal/handlers/api/v1/apiutil"
	"doclib/internal/response"
	"doclib/internal/services"

	"go.uber.org/zap"
)

// CommentController handles comment API endpoints
type CommentController struct {
	comments         services.CommentService
	logger           *zap.Logger
	responseBuilder  *response.Builder
	paginationParser *response.PaginationParser
}

// NewCommentController creates a new comment controller
func NewCommentController(comments services.CommentService, logger *zap.Logger, responseBuilder *response.Builder) *CommentController {
	return &CommentController{
		comments:         comments,
		logger:           logger,
		responseBuilder:  responseBuilder,
		paginationParser: response.NewPaginationParser(response.DefaultPaginationConfig()),
	}
}

// ListComments handles GET /api/v1/documents/{id}/comments?sort=asc|desc
func (c *CommentController) ListComments(w http.ResponseWriter, r *http.Request) {
	documentID, err := apiutil.PathID(r, "id")
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	newestFirst := true
	switch strings.ToLower(r.URL.Query().Get("sort")) {
	case "", "desc":
	case "asc":
		newestFirst = false
	default:
		c.responseBuilder.WriteError(w, r, services.InvalidInputError("sort", "must be asc or desc"))
		return
	}

	page, err := c.comments.List(r.Context(), documentID, c.paginationParser.ParseFromRequest(r), newestFirst)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteSuccess(w, r, page)
}

// CreateComment handles POST /api/v1/documents/{id}/comments
func (c *CommentController) CreateComment(w http.ResponseWriter, r *http.Request) {
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

	var req services.CreateCommentRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	req.UserID = actor.UserID
	req.UserName = actor.Name
	req.DocumentID = documentID

	comment, err := c.comments.Create(r.Context(), &req)
	c.responseBuilder.WriteResult(w, r, http.StatusCreated, comment, err)
}

// UpdateComment handles PUT /api/v1/comments/{id}
func (c *CommentController) UpdateComment(w http.ResponseWriter, r *http.Request) {
	actor, err := apiutil.RequireActor(r)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	commentID, err := apiutil.PathID(r, "id")
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	var req services.UpdateCommentRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	comment, err := c.comments.Update(r.Context(), commentID, req.Content, actor)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteSuccess(w, r, comment)
}

// DeleteComment handles DELETE /api/v1/comments/{id}
func (c *CommentController) DeleteComment(w http.ResponseWriter, r *http.Request) {
	actor, err := apiutil.RequireActor(r)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	commentID, err := apiutil.PathID(r, "id")
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	if err := c.comments.Delete(r.Context(), commentID, actor); err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteMessage(w, r, "Comment deleted")
}

// ReportComment handles POST /api/v1/comments/{id}/report
func (c *CommentController) ReportComment(w http.ResponseWriter, r *http.Request) {
	actor, err := apiutil.RequireActor(r)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	commentID, err := apiutil.PathID(r, "id")
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	if err := c.comments.Report(r.Context(), commentID, actor.UserID); err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.logger.Info("Comment reported", zap.Int64("comment_id", commentID), zap.Int64("reporter_id", actor.UserID))
	c.responseBuilder.WriteMessage(w, r, "Comment reported")
}
