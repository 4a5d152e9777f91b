package documents

import (
	"net/http"

	"doclib/internal/handlers/api/v1/apiutil"
	"doclib/internal/models"

	"go.uber.org/zap"
)

// ApproveDocument handles POST /api/v1/admin/documents/{id}/approve. A
// failed owner notification still answers 200 with a message.
func (c *DocumentController) ApproveDocument(w http.ResponseWriter, r *http.Request) {
	c.moderate(w, r, models.StatusApproved)
}

// RejectDocument handles POST /api/v1/admin/documents/{id}/reject
func (c *DocumentController) RejectDocument(w http.ResponseWriter, r *http.Request) {
	c.moderate(w, r, models.StatusRejected)
}

func (c *DocumentController) moderate(w http.ResponseWriter, r *http.Request, target models.DocumentStatus) {
	actor, err := apiutil.RequireActor(r)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	id, err := apiutil.PathID(r, "id")
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	var doc *models.Document
	if target == models.StatusApproved {
		doc, err = c.documents.Approve(r.Context(), id, actor.UserID)
	} else {
		doc, err = c.documents.Reject(r.Context(), id, actor.UserID)
	}
	if doc != nil {
		c.logger.Info("Document moderated",
			zap.Int64("document_id", id),
			zap.Int64("admin_id", actor.UserID),
			zap.String("status", string(target)),
		)
	}
	c.responseBuilder.WriteResult(w, r, http.StatusOK, doc, err)
}

// FeatureDocument handles POST /api/v1/admin/documents/{id}/feature
func (c *DocumentController) FeatureDocument(w http.ResponseWriter, r *http.Request) {
	c.setFeatured(w, r, true)
}

// UnfeatureDocument handles DELETE /api/v1/admin/documents/{id}/feature
func (c *DocumentController) UnfeatureDocument(w http.ResponseWriter, r *http.Request) {
	c.setFeatured(w, r, false)
}

func (c *DocumentController) setFeatured(w http.ResponseWriter, r *http.Request, featured bool) {
	id, err := apiutil.PathID(r, "id")
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	doc, err := c.documents.SetFeatured(r.Context(), id, featured)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteSuccess(w, r, doc)
}
