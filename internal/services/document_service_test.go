package services

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"sync"
	"testing"

	"doclib/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentUpload(t *testing.T) {
	ctx := context.Background()

	t.Run("stores a pending private document", func(t *testing.T) {
		lib := newLibrary(t)
		cat := lib.category(t, "Science")

		doc := lib.upload(t, ownerID, cat.ID, "Intro to Go")
		assert.Equal(t, models.StatusPending, doc.Status)
		assert.False(t, doc.IsPublic)
		assert.False(t, doc.IsFeatured)
		assert.Equal(t, "intro-to-go-1", doc.Slug)
		assert.Equal(t, "pdf", doc.File.Format)
		assert.Equal(t, "application/pdf", doc.File.MimeType)
		assert.Equal(t, 1, lib.storage.count())
	})

	t.Run("unknown category stores nothing", func(t *testing.T) {
		lib := newLibrary(t)
		_, err := lib.documents.Upload(ctx, &UploadDocumentRequest{
			Title:      "Orphan",
			CategoryID: 404,
			OwnerID:    ownerID,
			File:       buildFileHeader(t, "notes.pdf", pdfBytes),
		})
		require.Error(t, err)
		assert.Equal(t, ErrTypeValidation, serviceErrorType(err))
		assert.Zero(t, lib.storage.count())
	})

	t.Run("missing file", func(t *testing.T) {
		lib := newLibrary(t)
		cat := lib.category(t, "Science")
		_, err := lib.documents.Upload(ctx, &UploadDocumentRequest{Title: "Empty", CategoryID: cat.ID, OwnerID: ownerID})
		assert.Equal(t, ErrTypeValidation, serviceErrorType(err))
	})

	t.Run("blank title", func(t *testing.T) {
		lib := newLibrary(t)
		cat := lib.category(t, "Science")
		_, err := lib.documents.Upload(ctx, &UploadDocumentRequest{
			Title:      "   ",
			CategoryID: cat.ID,
			OwnerID:    ownerID,
			File:       buildFileHeader(t, "notes.pdf", pdfBytes),
		})
		assert.Equal(t, ErrTypeValidation, serviceErrorType(err))
	})

	t.Run("disallowed type", func(t *testing.T) {
		lib := newLibrary(t)
		cat := lib.category(t, "Science")
		_, err := lib.documents.Upload(ctx, &UploadDocumentRequest{
			Title:      "Script",
			CategoryID: cat.ID,
			OwnerID:    ownerID,
			File:       buildFileHeader(t, "run.exe", []byte("MZ\x90\x00 not a document")),
		})
		assert.Equal(t, ErrTypeUnsupportedMediaType, serviceErrorType(err))
		assert.Zero(t, lib.storage.count())
	})

	t.Run("failed insert removes the stored blob", func(t *testing.T) {
		lib := newLibrary(t)
		cat := lib.category(t, "Science")
		lib.store.failDocCreate = true

		_, err := lib.documents.Upload(ctx, &UploadDocumentRequest{
			Title:      "Doomed",
			CategoryID: cat.ID,
			OwnerID:    ownerID,
			File:       buildFileHeader(t, "notes.pdf", pdfBytes),
		})
		assert.Equal(t, ErrTypeUpload, serviceErrorType(err))
		assert.Zero(t, lib.storage.count())
		assert.Len(t, lib.storage.deleted, 1)
	})

	t.Run("storage failure", func(t *testing.T) {
		lib := newLibrary(t)
		cat := lib.category(t, "Science")
		lib.storage.failAt = documentsFolder

		_, err := lib.documents.Upload(ctx, &UploadDocumentRequest{
			Title:      "Unstored",
			CategoryID: cat.ID,
			OwnerID:    ownerID,
			File:       buildFileHeader(t, "notes.pdf", pdfBytes),
		})
		assert.Equal(t, ErrTypeUpload, serviceErrorType(err))
	})
}

func TestDocumentSlugUniqueness(t *testing.T) {
	lib := newLibrary(t)
	cat := lib.category(t, "Science")

	const uploads = 20
	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		slugs = map[string]bool{}
		errs  []error
	)
	for i := 0; i < uploads; i++ {
		file := buildFileHeader(t, "notes.pdf", pdfBytes)
		wg.Add(1)
		go func() {
			defer wg.Done()
			doc, err := lib.documents.Upload(context.Background(), &UploadDocumentRequest{
				Title:      "Same Title",
				CategoryID: cat.ID,
				OwnerID:    ownerID,
				File:       file,
			})
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			slugs[doc.Slug] = true
		}()
	}
	wg.Wait()

	require.Empty(t, errs)
	assert.Len(t, slugs, uploads)
	pattern := regexp.MustCompile(`^same-title-\d+$`)
	for slug := range slugs {
		assert.Regexp(t, pattern, slug)
	}
}

func TestDocumentStatusTransitions(t *testing.T) {
	ctx := context.Background()

	t.Run("approve makes public and notifies the owner once", func(t *testing.T) {
		lib := newLibrary(t)
		cat := lib.category(t, "Science")
		doc := lib.upload(t, ownerID, cat.ID, "Moderated")

		approved, err := lib.documents.Approve(ctx, doc.ID, adminID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusApproved, approved.Status)
		assert.True(t, approved.IsPublic)

		notes := lib.notificationsFor(ownerID)
		require.Len(t, notes, 1)
		assert.Equal(t, models.NotificationDocumentApproved, notes[0].Type)
		assert.Equal(t, "/documents/"+doc.Slug, notes[0].Link)
	})

	t.Run("owner is notified after the caller goes away", func(t *testing.T) {
		lib := newLibrary(t)
		cat := lib.category(t, "Science")
		doc := lib.upload(t, ownerID, cat.ID, "Abandoned")

		gone, cancel := context.WithCancel(ctx)
		cancel()

		approved, err := lib.documents.Approve(gone, doc.ID, adminID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusApproved, approved.Status)
		assert.Len(t, lib.notificationsFor(ownerID), 1)
	})

	t.Run("repeat approval conflicts", func(t *testing.T) {
		lib := newLibrary(t)
		cat := lib.category(t, "Science")
		doc := lib.approved(t, ownerID, cat.ID, "Twice")

		_, err := lib.documents.Approve(ctx, doc.ID, adminID)
		require.Error(t, err)
		assert.Equal(t, "STATUS_UNCHANGED", GetServiceError(err).Code)
		assert.Len(t, lib.notificationsFor(ownerID), 1)
	})

	t.Run("terminal statuses do not move", func(t *testing.T) {
		lib := newLibrary(t)
		cat := lib.category(t, "Science")

		rejected := lib.upload(t, ownerID, cat.ID, "Rejected")
		_, err := lib.documents.Reject(ctx, rejected.ID, adminID)
		require.NoError(t, err)
		_, err = lib.documents.Approve(ctx, rejected.ID, adminID)
		assert.Equal(t, "INVALID_TRANSITION", GetServiceError(err).Code)

		approved := lib.approved(t, ownerID, cat.ID, "Approved")
		_, err = lib.documents.Reject(ctx, approved.ID, adminID)
		assert.Equal(t, "INVALID_TRANSITION", GetServiceError(err).Code)
	})

	t.Run("missing document", func(t *testing.T) {
		lib := newLibrary(t)
		_, err := lib.documents.Approve(ctx, 404, adminID)
		assert.True(t, IsNotFoundError(err))
	})

	t.Run("notification failure is a side effect", func(t *testing.T) {
		lib := newLibrary(t)
		cat := lib.category(t, "Science")
		doc := lib.upload(t, ownerID, cat.ID, "Quiet")
		lib.store.failNotifications = true

		approved, err := lib.documents.Approve(ctx, doc.ID, adminID)
		require.Error(t, err)
		assert.True(t, IsSideEffectError(err))
		require.NotNil(t, approved)
		assert.Equal(t, models.StatusApproved, approved.Status)
	})
}

func TestDocumentFeature(t *testing.T) {
	ctx := context.Background()
	lib := newLibrary(t)
	cat := lib.category(t, "Science")

	pending := lib.upload(t, ownerID, cat.ID, "Pending")
	_, err := lib.documents.SetFeatured(ctx, pending.ID, true)
	assert.Equal(t, ErrTypeValidation, serviceErrorType(err))

	approved := lib.approved(t, ownerID, cat.ID, "Shiny")
	doc, err := lib.documents.SetFeatured(ctx, approved.ID, true)
	require.NoError(t, err)
	assert.True(t, doc.IsFeatured)

	doc, err = lib.documents.SetFeatured(ctx, approved.ID, false)
	require.NoError(t, err)
	assert.False(t, doc.IsFeatured)
}

func TestDocumentVisibility(t *testing.T) {
	ctx := context.Background()
	lib := newLibrary(t)
	cat := lib.category(t, "Science")
	doc := lib.upload(t, ownerID, cat.ID, "Hidden")

	tests := []struct {
		name    string
		viewer  *Actor
		visible bool
	}{
		{"anonymous", nil, false},
		{"other user", &reader, false},
		{"owner", &owner, true},
		{"admin", &admin, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := lib.documents.Get(ctx, doc.Slug, tt.viewer)
			if tt.visible {
				require.NoError(t, err)
				assert.Equal(t, doc.ID, got.ID)
				return
			}
			assert.True(t, IsNotFoundError(err))
		})
	}

	t.Run("numeric id lookup", func(t *testing.T) {
		got, err := lib.documents.Get(ctx, fmt.Sprint(doc.ID), &owner)
		require.NoError(t, err)
		assert.Equal(t, doc.Slug, got.Slug)
	})
}

func TestDocumentUpdate(t *testing.T) {
	ctx := context.Background()
	lib := newLibrary(t)
	cat := lib.category(t, "Science")
	doc := lib.upload(t, ownerID, cat.ID, "Draft Notes")

	t.Run("only the owner may edit", func(t *testing.T) {
		title := "Hijacked"
		_, err := lib.documents.Update(ctx, doc.ID, &models.DocumentPatch{Title: &title}, readerID)
		assert.Equal(t, ErrTypeForbidden, serviceErrorType(err))
	})

	t.Run("same title keeps the slug", func(t *testing.T) {
		title := "Draft Notes"
		updated, err := lib.documents.Update(ctx, doc.ID, &models.DocumentPatch{Title: &title}, ownerID)
		require.NoError(t, err)
		assert.Equal(t, doc.Slug, updated.Slug)
	})

	t.Run("new title regenerates the slug", func(t *testing.T) {
		title := "Final Notes"
		desc := "  revised  "
		updated, err := lib.documents.Update(ctx, doc.ID, &models.DocumentPatch{
			Title:       &title,
			Description: &desc,
			Tags:        []string{"Go", "go", " notes "},
		}, ownerID)
		require.NoError(t, err)
		assert.Equal(t, "final-notes-1", updated.Slug)
		assert.Equal(t, "revised", updated.Description)
		assert.Equal(t, []string{"go", "notes"}, updated.Tags)
	})

	t.Run("unknown category", func(t *testing.T) {
		missing := int64(404)
		_, err := lib.documents.Update(ctx, doc.ID, &models.DocumentPatch{CategoryID: &missing}, ownerID)
		assert.Equal(t, ErrTypeValidation, serviceErrorType(err))
	})
}

func TestDocumentDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("stranger is forbidden", func(t *testing.T) {
		lib := newLibrary(t)
		cat := lib.category(t, "Science")
		doc := lib.upload(t, ownerID, cat.ID, "Keep")
		err := lib.documents.Delete(ctx, doc.ID, reader)
		assert.Equal(t, ErrTypeForbidden, serviceErrorType(err))
	})

	t.Run("admin removes record, engagement and blob", func(t *testing.T) {
		lib := newLibrary(t)
		cat := lib.category(t, "Science")
		doc := lib.approved(t, ownerID, cat.ID, "Gone")

		_, err := lib.favorites.Toggle(ctx, readerID, doc.ID)
		require.NoError(t, err)
		_, err = lib.ratings.Upsert(ctx, &RateDocumentRequest{UserID: readerID, DocumentID: doc.ID, Score: 4})
		require.NoError(t, err)

		require.NoError(t, lib.documents.Delete(ctx, doc.ID, admin))
		assert.Zero(t, lib.storage.count())
		assert.Empty(t, lib.store.favorites)
		assert.Empty(t, lib.store.ratings)

		_, err = lib.documents.Get(ctx, doc.Slug, &admin)
		assert.True(t, IsNotFoundError(err))
	})
}

func TestDocumentDownload(t *testing.T) {
	ctx := context.Background()
	lib := newLibrary(t)
	cat := lib.category(t, "Science")
	doc := lib.approved(t, ownerID, cat.ID, "Readable")

	result, err := lib.documents.Download(ctx, &DownloadRequest{
		DocumentID: doc.ID,
		Viewer:     &reader,
		IPAddress:  "203.0.113.9",
		DeviceInfo: "curl/8.0",
	})
	require.NoError(t, err)
	defer result.Reader.Close()

	body, err := io.ReadAll(result.Reader)
	require.NoError(t, err)
	assert.Equal(t, pdfBytes, body)
	assert.Equal(t, "notes.pdf", result.FileName)

	page, err := lib.history.ListDownloads(ctx, readerID, models.PaginationParams{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "203.0.113.9", page.Items[0].IPAddress)

	got, err := lib.documents.Get(ctx, doc.Slug, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.DownloadCount)

	t.Run("hidden documents are not downloadable", func(t *testing.T) {
		pending := lib.upload(t, ownerID, cat.ID, "Secret")
		_, err := lib.documents.Download(ctx, &DownloadRequest{DocumentID: pending.ID})
		assert.True(t, IsNotFoundError(err))
	})
}
