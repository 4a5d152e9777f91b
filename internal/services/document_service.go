// file: internal/services/document_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"doclib/internal/cache"
	"doclib/internal/config"
	"doclib/internal/events"
	"doclib/internal/models"
	"doclib/internal/monitoring"
	"doclib/internal/repositories"
	"doclib/internal/utils"
	"doclib/internal/validation"

	"go.uber.org/zap"
)

const (
	documentsFolder  = "documents"
	thumbnailsFolder = "thumbnails"
)

// documentService implements DocumentService
type documentService struct {
	docs       repositories.DocumentRepository
	categories repositories.CategoryRepository
	history    HistoryService
	notifier   Notifier
	storage    utils.FileStorage
	files      *utils.FileValidator
	thumbs     *utils.FileValidator
	events     events.EventBus
	loader     *cache.Loader
	metrics    *monitoring.Metrics
	logger     *zap.Logger
	config     *config.LibraryConfig
}

// DocumentServiceDeps groups the collaborators of the document service
type DocumentServiceDeps struct {
	Documents  repositories.DocumentRepository
	Categories repositories.CategoryRepository
	History    HistoryService
	Notifier   Notifier
	Storage    utils.FileStorage
	Files      *utils.FileValidator
	Thumbnails *utils.FileValidator
	Events     events.EventBus
	Loader     *cache.Loader
	Metrics    *monitoring.Metrics
	Logger     *zap.Logger
	Config     *config.LibraryConfig
}

// NewDocumentService creates a new document service
func NewDocumentService(deps DocumentServiceDeps) DocumentService {
	if deps.Config == nil {
		deps.Config = &config.LibraryConfig{SlugMaxAttempts: 20}
	}
	if deps.Thumbnails == nil {
		deps.Thumbnails = utils.NewFileValidator(utils.ImageProfile(2<<20), deps.Logger)
	}
	return &documentService{
		docs:       deps.Documents,
		categories: deps.Categories,
		history:    deps.History,
		notifier:   deps.Notifier,
		storage:    deps.Storage,
		files:      deps.Files,
		thumbs:     deps.Thumbnails,
		events:     deps.Events,
		loader:     deps.Loader,
		metrics:    deps.Metrics,
		logger:     deps.Logger,
		config:     deps.Config,
	}
}

// ===============================
// UPLOAD
// ===============================

// Upload validates the request, stores the blobs and persists a pending
// document. Blobs written before a later failure are removed again.
func (s *documentService) Upload(ctx context.Context, req *UploadDocumentRequest) (*models.Document, error) {
	if err := validateRequest(req); err != nil {
		s.metrics.RecordUpload("rejected")
		return nil, err
	}
	if req.File == nil {
		s.metrics.RecordUpload("rejected")
		return nil, InvalidInputError("file", "a file is required")
	}

	category, err := s.categories.GetByID(ctx, req.CategoryID)
	if err != nil {
		return nil, internalError(s.logger, "failed to load category", err, zap.Int64("category_id", req.CategoryID))
	}
	if category == nil {
		s.metrics.RecordUpload("rejected")
		return nil, NewValidationError("category does not exist", nil)
	}

	meta, err := s.files.Validate(ctx, req.File)
	if err != nil {
		s.metrics.RecordUpload("rejected")
		return nil, mapFileError(err)
	}
	if req.Thumbnail != nil {
		if _, err := s.thumbs.Validate(ctx, req.Thumbnail); err != nil {
			s.metrics.RecordUpload("rejected")
			return nil, mapFileError(err)
		}
	}

	// From here on the client can no longer abort half way.
	ctx = context.WithoutCancel(ctx)

	stored, err := s.storage.Upload(ctx, req.File, documentsFolder)
	if err != nil {
		s.metrics.RecordUpload("failure")
		s.logger.Error("Failed to store document file", zap.String("filename", meta.Name), zap.Error(err))
		return nil, NewUploadError("failed to store file", err)
	}
	written := []string{stored.Key}

	doc := &models.Document{
		Title:       validation.SanitizeString(req.Title),
		Description: strings.TrimSpace(req.Description),
		File: models.FileInfo{
			URL:        stored.URL,
			Name:       meta.Name,
			MimeType:   meta.MimeType,
			Size:       meta.Size,
			Format:     meta.Format,
			StorageKey: stored.Key,
		},
		Status:     models.StatusPending,
		IsPublic:   false,
		Tags:       validation.NormalizeTags(req.Tags),
		UploaderID: req.OwnerID,
		CategoryID: category.ID,
	}

	if req.Thumbnail != nil {
		thumb, err := s.storage.Upload(ctx, req.Thumbnail, thumbnailsFolder)
		if err != nil {
			s.cleanupBlobs(ctx, written)
			s.metrics.RecordUpload("failure")
			return nil, NewUploadError("failed to store thumbnail", err)
		}
		written = append(written, thumb.Key)
		doc.Thumbnail = &models.ThumbnailInfo{URL: thumb.URL, StorageKey: thumb.Key}
	}

	if err := s.createWithUniqueSlug(ctx, doc); err != nil {
		s.cleanupBlobs(ctx, written)
		s.metrics.RecordUpload("failure")
		s.logger.Error("Failed to persist document", zap.String("title", doc.Title), zap.Error(err))
		return nil, NewUploadError("failed to save document", err)
	}

	created, err := s.docs.GetByID(ctx, doc.ID)
	if err != nil || created == nil {
		s.logger.Warn("Failed to reload created document", zap.Int64("document_id", doc.ID), zap.Error(err))
		created = doc
	}

	s.publish(ctx, events.NewDocumentUploadedEvent(created))
	s.logger.Info("Document uploaded",
		zap.Int64("document_id", created.ID),
		zap.Int64("uploader_id", created.UploaderID),
		zap.String("slug", created.Slug),
	)
	return created, nil
}

// createWithUniqueSlug inserts doc, moving to the next numeric suffix each
// time the slug is taken. Concurrent uploads of one title race on the
// unique index, so the insert itself is the collision check.
func (s *documentService) createWithUniqueSlug(ctx context.Context, doc *models.Document) error {
	base := utils.Slugify(doc.Title)
	for n := 1; n <= s.maxSlugAttempts(); n++ {
		doc.Slug = fmt.Sprintf("%s-%d", base, n)
		err := s.docs.Create(ctx, doc)
		if err == nil {
			return nil
		}
		if !errors.Is(err, repositories.ErrDuplicate) {
			return err
		}
	}

	doc.Slug = base + "-" + randomSuffix()
	return s.docs.Create(ctx, doc)
}

func (s *documentService) maxSlugAttempts() int {
	if s.config.SlugMaxAttempts > 0 {
		return s.config.SlugMaxAttempts
	}
	return 20
}

func randomSuffix() string {
	return strconv.FormatInt(time.Now().UnixNano(), 36)
}

func (s *documentService) cleanupBlobs(ctx context.Context, keys []string) {
	for _, key := range keys {
		if err := s.storage.Delete(ctx, key); err != nil {
			s.logger.Error("Failed to clean up blob", zap.String("key", key), zap.Error(err))
		}
	}
}

func mapFileError(err error) error {
	switch {
	case errors.Is(err, utils.ErrInvalidContentType), errors.Is(err, utils.ErrInvalidExtension):
		return NewUnsupportedMediaTypeError(err.Error())
	case errors.Is(err, utils.ErrFileTooLarge), errors.Is(err, utils.ErrEmptyFile):
		return NewUploadError(err.Error(), err)
	default:
		return NewUploadError("failed to read uploaded file", err)
	}
}

// ===============================
// READ
// ===============================

func (s *documentService) Get(ctx context.Context, idOrSlug string, viewer *Actor) (*models.Document, error) {
	doc, err := s.lookup(ctx, idOrSlug)
	if err != nil {
		return nil, err
	}
	isAdmin := viewer != nil && viewer.IsAdmin()
	if !doc.IsVisibleTo(viewerID(viewer), isAdmin) {
		return nil, EntityNotFoundError("document", idOrSlug)
	}
	return doc, nil
}

func (s *documentService) lookup(ctx context.Context, idOrSlug string) (*models.Document, error) {
	var (
		doc *models.Document
		err error
	)
	if id, convErr := strconv.ParseInt(idOrSlug, 10, 64); convErr == nil {
		doc, err = s.docs.GetByID(ctx, id)
	} else {
		doc, err = s.docs.GetBySlug(ctx, strings.ToLower(idOrSlug))
	}
	if err != nil {
		return nil, internalError(s.logger, "failed to load document", err, zap.String("document", idOrSlug))
	}
	if doc == nil {
		return nil, EntityNotFoundError("document", idOrSlug)
	}
	return doc, nil
}

func (s *documentService) mustGet(ctx context.Context, documentID int64) (*models.Document, error) {
	doc, err := s.docs.GetByID(ctx, documentID)
	if err != nil {
		return nil, internalError(s.logger, "failed to load document", err, zap.Int64("document_id", documentID))
	}
	if doc == nil {
		return nil, EntityNotFoundError("document", documentID)
	}
	return doc, nil
}

// ===============================
// MODERATION
// ===============================

func (s *documentService) Approve(ctx context.Context, documentID, adminID int64) (*models.Document, error) {
	doc, err := s.transition(ctx, documentID, adminID, models.StatusApproved)
	if err != nil {
		return nil, err
	}

	_, notifyErr := s.notifier.NotifyDocumentOwner(context.WithoutCancel(ctx), doc.ID, adminID, models.NotificationDocumentApproved, "")
	return doc, NewSideEffectError("notification", notifyErr)
}

func (s *documentService) Reject(ctx context.Context, documentID, adminID int64) (*models.Document, error) {
	return s.transition(ctx, documentID, adminID, models.StatusRejected)
}

func (s *documentService) transition(ctx context.Context, documentID, adminID int64, to models.DocumentStatus) (*models.Document, error) {
	doc, err := s.mustGet(ctx, documentID)
	if err != nil {
		return nil, err
	}

	from := doc.Status
	if err := from.CanTransitionTo(to); err != nil {
		return nil, transitionConflict(from, to, err)
	}

	ctx = context.WithoutCancel(ctx)
	ok, err := s.docs.UpdateStatus(ctx, documentID, from, to, to == models.StatusApproved)
	if err != nil {
		return nil, internalError(s.logger, "failed to update document status", err, zap.Int64("document_id", documentID))
	}
	if !ok {
		return nil, NewConflictError("document status was changed by another request", "STATUS_CHANGED")
	}

	s.logger.Info("Document status changed",
		zap.Int64("document_id", documentID),
		zap.Int64("admin_id", adminID),
		zap.String("from", string(from)),
		zap.String("to", string(to)),
	)
	s.publish(ctx, events.NewDocumentStatusChangedEvent(documentID, adminID, from, to))
	s.invalidateListings(ctx)

	return s.mustGet(ctx, documentID)
}

func transitionConflict(from, to models.DocumentStatus, err error) error {
	if errors.Is(err, models.ErrStatusUnchanged) {
		return NewConflictError(fmt.Sprintf("document is already %s", to), "STATUS_UNCHANGED")
	}
	return NewConflictError(fmt.Sprintf("cannot move a %s document to %s", from, to), "INVALID_TRANSITION")
}

func (s *documentService) SetFeatured(ctx context.Context, documentID int64, featured bool) (*models.Document, error) {
	doc, err := s.mustGet(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if featured {
		if err := doc.CanFeature(); err != nil {
			return nil, NewValidationError(err.Error(), err)
		}
	}

	if err := s.docs.SetFeatured(ctx, documentID, featured); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, EntityNotFoundError("document", documentID)
		}
		return nil, internalError(s.logger, "failed to update featured flag", err, zap.Int64("document_id", documentID))
	}
	s.invalidateListings(ctx)
	return s.mustGet(ctx, documentID)
}

// ===============================
// UPDATE / DELETE
// ===============================

func (s *documentService) Update(ctx context.Context, documentID int64, patch *models.DocumentPatch, actorID int64) (*models.Document, error) {
	doc, err := s.mustGet(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if !doc.IsOwnedBy(actorID) {
		return nil, InsufficientPermissionsError("update", "document")
	}
	if patch == nil {
		return doc, nil
	}

	titleChanged := false
	if patch.Title != nil {
		title := validation.SanitizeString(*patch.Title)
		if title == "" {
			return nil, InvalidInputError("title", "must not be blank")
		}
		if len(title) > 255 {
			return nil, InvalidInputError("title", "must be at most 255 characters")
		}
		titleChanged = title != doc.Title
		doc.Title = title
	}
	if patch.Description != nil {
		doc.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.Tags != nil {
		doc.Tags = validation.NormalizeTags(patch.Tags)
	}
	if patch.IsPublic != nil {
		doc.IsPublic = *patch.IsPublic
	}
	if patch.CategoryID != nil && *patch.CategoryID != doc.CategoryID {
		category, err := s.categories.GetByID(ctx, *patch.CategoryID)
		if err != nil {
			return nil, internalError(s.logger, "failed to load category", err)
		}
		if category == nil {
			return nil, NewValidationError("category does not exist", nil)
		}
		doc.CategoryID = category.ID
	}

	ctx = context.WithoutCancel(ctx)
	if titleChanged {
		err = s.updateWithUniqueSlug(ctx, doc)
	} else {
		err = s.docs.Update(ctx, doc)
	}
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, EntityNotFoundError("document", documentID)
		}
		return nil, internalError(s.logger, "failed to update document", err, zap.Int64("document_id", documentID))
	}

	s.invalidateListings(ctx)
	return s.mustGet(ctx, documentID)
}

// updateWithUniqueSlug regenerates the slug for a new title. The
// document's own slug never counts as a collision.
func (s *documentService) updateWithUniqueSlug(ctx context.Context, doc *models.Document) error {
	base := utils.Slugify(doc.Title)
	for n := 1; n <= s.maxSlugAttempts(); n++ {
		candidate := fmt.Sprintf("%s-%d", base, n)
		taken, err := s.docs.SlugExists(ctx, candidate, doc.ID)
		if err != nil {
			return err
		}
		if taken {
			continue
		}
		doc.Slug = candidate
		err = s.docs.Update(ctx, doc)
		if errors.Is(err, repositories.ErrDuplicate) {
			continue
		}
		return err
	}

	doc.Slug = base + "-" + randomSuffix()
	return s.docs.Update(ctx, doc)
}

// Delete removes the record with its engagement rows, then the blobs.
func (s *documentService) Delete(ctx context.Context, documentID int64, actor Actor) error {
	doc, err := s.mustGet(ctx, documentID)
	if err != nil {
		return err
	}
	if !doc.IsOwnedBy(actor.UserID) && !actor.IsAdmin() {
		return InsufficientPermissionsError("delete", "document")
	}

	ctx = context.WithoutCancel(ctx)
	if err := s.docs.Delete(ctx, documentID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return EntityNotFoundError("document", documentID)
		}
		return internalError(s.logger, "failed to delete document", err, zap.Int64("document_id", documentID))
	}

	keys := []string{doc.File.StorageKey}
	if doc.Thumbnail != nil {
		keys = append(keys, doc.Thumbnail.StorageKey)
	}
	s.cleanupBlobs(ctx, keys)

	s.publish(ctx, events.NewDocumentDeletedEvent(documentID, actor.UserID))
	s.invalidateListings(ctx)
	s.logger.Info("Document deleted", zap.Int64("document_id", documentID), zap.Int64("actor_id", actor.UserID))
	return nil
}

// ===============================
// DOWNLOAD
// ===============================

func (s *documentService) Download(ctx context.Context, req *DownloadRequest) (*DownloadResult, error) {
	doc, err := s.mustGet(ctx, req.DocumentID)
	if err != nil {
		return nil, err
	}
	isAdmin := req.Viewer != nil && req.Viewer.IsAdmin()
	if !doc.IsVisibleTo(viewerID(req.Viewer), isAdmin) {
		return nil, EntityNotFoundError("document", req.DocumentID)
	}

	var userID *int64
	if req.Viewer != nil {
		id := req.Viewer.UserID
		userID = &id
	}
	if err := s.history.RecordDownload(ctx, doc.ID, userID, req.IPAddress, req.DeviceInfo); err != nil {
		return nil, err
	}

	blob, err := s.storage.Serve(ctx, doc.File.StorageKey, doc.File.URL)
	if err != nil {
		if errors.Is(err, utils.ErrBlobNotFound) {
			return nil, NewNotFoundError("file not found")
		}
		return nil, internalError(s.logger, "failed to open document file", err, zap.Int64("document_id", doc.ID))
	}

	size := blob.Size
	if size == 0 {
		size = doc.File.Size
	}
	return &DownloadResult{
		FileName:    doc.File.Name,
		MimeType:    doc.File.MimeType,
		Size:        size,
		Reader:      blob.Reader,
		RedirectURL: blob.RedirectURL,
	}, nil
}

// ===============================
// HELPERS
// ===============================

func (s *documentService) publish(ctx context.Context, event events.Event) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishAsync(ctx, event); err != nil {
		s.logger.Warn("Failed to publish event", zap.String("event_type", event.GetEventType()), zap.Error(err))
	}
}

func (s *documentService) invalidateListings(ctx context.Context) {
	invalidateListings(ctx, s.loader)
}
