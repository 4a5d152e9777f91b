// ===============================
// FILE: internal/handlers/api/v1/documents/documents_controller.go
// ===============================

package documents

import (
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"doclib/internal/handlers/api/v1/apiutil"
	"doclib/internal/middleware"
	"doclib/internal/models"
	"doclib/internal/response"
	"doclib/internal/services"
	"doclib/internal/utils"

	"go.uber.org/zap"
)

// maxMemory is how much of a multipart form is kept in memory; the rest
// spills to temporary files.
const maxMemory = 8 << 20

// DocumentController handles document endpoints
type DocumentController struct {
	documents        services.DocumentService
	listing          services.ListingService
	history          services.HistoryService
	logger           *zap.Logger
	responseBuilder  *response.Builder
	paginationParser *response.PaginationParser
}

// NewDocumentController creates a new document controller
func NewDocumentController(
	documents services.DocumentService,
	listing services.ListingService,
	history services.HistoryService,
	logger *zap.Logger,
	responseBuilder *response.Builder,
) *DocumentController {
	return &DocumentController{
		documents:        documents,
		listing:          listing,
		history:          history,
		logger:           logger,
		responseBuilder:  responseBuilder,
		paginationParser: response.NewPaginationParser(response.DefaultPaginationConfig()),
	}
}

// UpdateDocumentRequest is the JSON body of PUT /documents/{id}. Absent
// fields are left unchanged.
type UpdateDocumentRequest struct {
	Title       *string  `json:"title,omitempty"`
	Description *string  `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	CategoryID  *int64   `json:"categoryId,omitempty"`
	IsPublic    *bool    `json:"isPublic,omitempty"`
}

// ===============================
// LISTING
// ===============================

// ListDocuments handles GET /api/v1/documents
func (c *DocumentController) ListDocuments(w http.ResponseWriter, r *http.Request) {
	c.list(w, r, models.ScopePublic)
}

// ListFeatured handles GET /api/v1/documents/featured
func (c *DocumentController) ListFeatured(w http.ResponseWriter, r *http.Request) {
	c.list(w, r, models.ScopeFeatured)
}

// ListMine handles GET /api/v1/documents/mine
func (c *DocumentController) ListMine(w http.ResponseWriter, r *http.Request) {
	c.list(w, r, models.ScopeMine)
}

// ListAdmin handles GET /api/v1/admin/documents
func (c *DocumentController) ListAdmin(w http.ResponseWriter, r *http.Request) {
	c.list(w, r, models.ScopeAdmin)
}

func (c *DocumentController) list(w http.ResponseWriter, r *http.Request, scope models.ListScope) {
	page, err := c.listing.List(r.Context(), c.listRequest(r, scope))
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteSuccess(w, r, page)
}

func (c *DocumentController) listRequest(r *http.Request, scope models.ListScope) *services.ListDocumentsRequest {
	q := r.URL.Query()
	return &services.ListDocumentsRequest{
		Scope:        scope,
		Viewer:       apiutil.Actor(r),
		CategorySlug: q.Get("category"),
		UploaderID:   q.Get("uploader"),
		Format:       q.Get("format"),
		Search:       q.Get("search"),
		Status:       q.Get("status"),
		DateField:    q.Get("dateField"),
		StartDate:    q.Get("startDate"),
		EndDate:      q.Get("endDate"),
		SortBy:       q.Get("sortBy"),
		SortOrder:    q.Get("sortOrder"),
		Pagination:   c.paginationParser.ParseFromQuery(q),
	}
}

// ===============================
// SINGLE DOCUMENT
// ===============================

// GetDocument handles GET /api/v1/documents/{idOrSlug} and records a view
func (c *DocumentController) GetDocument(w http.ResponseWriter, r *http.Request) {
	actor := apiutil.Actor(r)
	doc, err := c.documents.Get(r.Context(), apiutil.PathString(r, "idOrSlug"), actor)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	var viewerID *int64
	if actor != nil {
		viewerID = &actor.UserID
	}
	if err := c.history.RecordView(r.Context(), doc.ID, viewerID); err != nil {
		// The read itself succeeded; a lost view only skews the counter
		middleware.GetRequestLogger(r.Context()).Warn("Failed to record view",
			zap.Int64("document_id", doc.ID),
			zap.Error(err),
		)
	} else {
		doc.ViewCount++
	}
	c.responseBuilder.WriteSuccess(w, r, doc)
}

// UploadDocument handles POST /api/v1/documents (multipart/form-data)
func (c *DocumentController) UploadDocument(w http.ResponseWriter, r *http.Request) {
	actor, err := apiutil.RequireActor(r)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	if err := r.ParseMultipartForm(maxMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			c.responseBuilder.WriteError(w, r, services.NewUploadError("upload is too large", err))
			return
		}
		c.responseBuilder.WriteError(w, r, services.NewValidationError("expected a multipart/form-data body", err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	req := &services.UploadDocumentRequest{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Tags:        formTags(r),
		OwnerID:     actor.UserID,
		File:        formFile(r, "file"),
		Thumbnail:   formFile(r, "thumbnail"),
	}
	if raw := r.FormValue("categoryId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.responseBuilder.WriteError(w, r, services.InvalidInputError("categoryId", "must be an integer"))
			return
		}
		req.CategoryID = id
	}

	doc, err := c.documents.Upload(r.Context(), req)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.logger.Info("Document uploaded via API",
		zap.Int64("document_id", doc.ID),
		zap.Int64("user_id", actor.UserID),
		zap.String("slug", doc.Slug),
	)
	c.responseBuilder.WriteCreated(w, r, doc)
}

// UpdateDocument handles PUT /api/v1/documents/{id}
func (c *DocumentController) UpdateDocument(w http.ResponseWriter, r *http.Request) {
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
	var req UpdateDocumentRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	doc, err := c.documents.Update(r.Context(), id, &models.DocumentPatch{
		Title:       req.Title,
		Description: req.Description,
		Tags:        req.Tags,
		CategoryID:  req.CategoryID,
		IsPublic:    req.IsPublic,
	}, actor.UserID)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteSuccess(w, r, doc)
}

// DeleteDocument handles DELETE /api/v1/documents/{id}
func (c *DocumentController) DeleteDocument(w http.ResponseWriter, r *http.Request) {
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
	if err := c.documents.Delete(r.Context(), id, actor); err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteMessage(w, r, "Document deleted")
}

// DownloadDocument handles GET /api/v1/documents/{id}/download. Local blobs
// are streamed; remote ones are answered with a redirect.
func (c *DocumentController) DownloadDocument(w http.ResponseWriter, r *http.Request) {
	id, err := apiutil.PathID(r, "id")
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	result, err := c.documents.Download(r.Context(), &services.DownloadRequest{
		DocumentID: id,
		Viewer:     apiutil.Actor(r),
		IPAddress:  middleware.ClientIP(r),
		DeviceInfo: utils.DeviceInfo(r),
	})
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	if result.RedirectURL != "" {
		w.Header().Set("Cache-Control", "no-store")
		http.Redirect(w, r, result.RedirectURL, http.StatusFound)
		return
	}
	defer result.Reader.Close()

	h := w.Header()
	h.Set("Content-Type", result.MimeType)
	h.Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": result.FileName}))
	if result.Size > 0 {
		h.Set("Content-Length", strconv.FormatInt(result.Size, 10))
	}
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, result.Reader); err != nil {
		middleware.GetRequestLogger(r.Context()).Warn("Download stream interrupted",
			zap.Int64("document_id", id),
			zap.Error(err),
		)
	}
}

// ===============================
// HELPERS
// ===============================

func formFile(r *http.Request, field string) *multipart.FileHeader {
	if r.MultipartForm == nil {
		return nil
	}
	if files := r.MultipartForm.File[field]; len(files) > 0 {
		return files[0]
	}
	return nil
}

// formTags accepts repeated tags fields as well as one comma-separated value
func formTags(r *http.Request) []string {
	var tags []string
	for _, raw := range r.MultipartForm.Value["tags"] {
		for _, t := range strings.Split(raw, ",") {
			if t = strings.TrimSpace(t); t != "" {
				tags = append(tags, t)
			}
		}
	}
	return tags
}
