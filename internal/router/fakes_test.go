package router

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"

	"doclib/internal/models"
	"doclib/internal/services"

	"github.com/golang-jwt/jwt/v5"
)

// calls records what the fakes were asked to do
type calls struct {
	mu  sync.Mutex
	log []string
	// last captured arguments
	listReq    *services.ListDocumentsRequest
	getKey     string
	upload     *services.UploadDocumentRequest
	newest     *bool
	viewed     []int64
	download   *services.DownloadRequest
	markedRead []int64
}

func (c *calls) add(s string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.log = append(c.log, s)
}

func (c *calls) has(s string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, l := range c.log {
		if l == s {
			return true
		}
	}
	return false
}

// ===============================
// AUTH
// ===============================

type fakeAuth struct {
	c       *calls
	google  bool
	tokens  map[string]*services.Claims
	loginOK bool
}

func newFakeAuth(c *calls) *fakeAuth {
	mk := func(sub, role string) *services.Claims {
		return &services.Claims{Name: "User " + sub, Role: role, RegisteredClaims: jwt.RegisteredClaims{Subject: sub}}
	}
	return &fakeAuth{c: c, loginOK: true, tokens: map[string]*services.Claims{
		"member": mk("7", models.RoleUploader),
		"admin":  mk("1", models.RoleAdmin),
	}}
}

func (f *fakeAuth) Register(ctx context.Context, req *services.RegisterRequest) (*services.AuthResponse, error) {
	f.c.add("auth.register")
	return &services.AuthResponse{Token: "t", User: &models.User{ID: 9, Name: req.Name, Email: req.Email, Role: models.RoleUploader}}, nil
}

func (f *fakeAuth) Login(ctx context.Context, req *services.LoginRequest) (*services.AuthResponse, error) {
	f.c.add("auth.login")
	if !f.loginOK {
		return nil, services.NewUnauthorizedError("Invalid credentials")
	}
	return &services.AuthResponse{Token: "t", User: &models.User{ID: 7, Email: req.Email}}, nil
}

func (f *fakeAuth) Me(ctx context.Context, userID int64) (*models.User, error) {
	return &models.User{ID: userID, Name: "User", Role: models.RoleUploader}, nil
}

func (f *fakeAuth) ValidateToken(token string) (*services.Claims, error) {
	if c, ok := f.tokens[token]; ok {
		return c, nil
	}
	return nil, errors.New("token signature is invalid")
}

func (f *fakeAuth) GoogleEnabled() bool               { return f.google }
func (f *fakeAuth) GoogleAuthURL(state string) string { return "https://accounts.example.com/auth?state=" + state }
func (f *fakeAuth) GoogleCallback(ctx context.Context, code string) (*services.AuthResponse, error) {
	f.c.add("auth.google:" + code)
	return &services.AuthResponse{Token: "g", User: &models.User{ID: 3}}, nil
}

// ===============================
// DOCUMENTS
// ===============================

type fakeDocuments struct {
	c          *calls
	approveErr error
	remote     bool
}

func (f *fakeDocuments) Upload(ctx context.Context, req *services.UploadDocumentRequest) (*models.Document, error) {
	f.c.mu.Lock()
	f.c.upload = req
	f.c.mu.Unlock()
	return &models.Document{ID: 50, Title: req.Title, Slug: "uploaded", Status: models.StatusPending, UploaderID: req.OwnerID}, nil
}

func (f *fakeDocuments) Get(ctx context.Context, idOrSlug string, viewer *services.Actor) (*models.Document, error) {
	f.c.mu.Lock()
	f.c.getKey = idOrSlug
	f.c.mu.Unlock()
	if idOrSlug == "missing" {
		return nil, services.NewNotFoundError("Document not found")
	}
	return &models.Document{ID: 42, Slug: idOrSlug, Status: models.StatusApproved, ViewCount: 10}, nil
}

func (f *fakeDocuments) Update(ctx context.Context, id int64, patch *models.DocumentPatch, actorID int64) (*models.Document, error) {
	if actorID != 7 {
		return nil, services.NewForbiddenError("Not the owner")
	}
	doc := &models.Document{ID: id}
	if patch.Title != nil {
		doc.Title = *patch.Title
	}
	return doc, nil
}

func (f *fakeDocuments) Delete(ctx context.Context, id int64, actor services.Actor) error {
	f.c.add("documents.delete")
	return nil
}

func (f *fakeDocuments) Approve(ctx context.Context, id, adminID int64) (*models.Document, error) {
	f.c.add("documents.approve")
	if f.approveErr != nil && !services.IsSideEffectError(f.approveErr) {
		return nil, f.approveErr
	}
	return &models.Document{ID: id, Status: models.StatusApproved}, f.approveErr
}

func (f *fakeDocuments) Reject(ctx context.Context, id, adminID int64) (*models.Document, error) {
	f.c.add("documents.reject")
	return &models.Document{ID: id, Status: models.StatusRejected}, nil
}

func (f *fakeDocuments) SetFeatured(ctx context.Context, id int64, featured bool) (*models.Document, error) {
	return &models.Document{ID: id, IsFeatured: featured}, nil
}

func (f *fakeDocuments) Download(ctx context.Context, req *services.DownloadRequest) (*services.DownloadResult, error) {
	f.c.mu.Lock()
	f.c.download = req
	f.c.mu.Unlock()
	if f.remote {
		return &services.DownloadResult{RedirectURL: "https://cdn.example.com/documents/report.pdf"}, nil
	}
	body := "%PDF-1.7 fake"
	return &services.DownloadResult{
		FileName: "quarterly report.pdf",
		MimeType: "application/pdf",
		Size:     int64(len(body)),
		Reader:   io.NopCloser(strings.NewReader(body)),
	}, nil
}

type fakeListing struct{ c *calls }

func (f *fakeListing) List(ctx context.Context, req *services.ListDocumentsRequest) (*models.Page[*models.Document], error) {
	f.c.mu.Lock()
	f.c.listReq = req
	f.c.mu.Unlock()
	if req.SortBy == "bogus" {
		return nil, services.InvalidInputError("sortBy", "unknown field")
	}
	return models.NewPage([]*models.Document{{ID: 1}, {ID: 2}}, 2, req.Pagination), nil
}

// ===============================
// ENGAGEMENT
// ===============================

type fakeFavorites struct{}

func (fakeFavorites) Toggle(ctx context.Context, userID, documentID int64) (*models.FavoriteToggleResult, error) {
	return &models.FavoriteToggleResult{IsFavorite: true, FavoriteCount: 4}, nil
}
func (fakeFavorites) IsFavorite(ctx context.Context, userID, documentID int64) (bool, error) {
	return true, nil
}
func (fakeFavorites) ListMine(ctx context.Context, userID int64, p models.PaginationParams) (*models.Page[*models.Document], error) {
	return models.EmptyPage[*models.Document](p), nil
}

type fakeRatings struct{ existing map[int64]bool }

func (f *fakeRatings) Upsert(ctx context.Context, req *services.RateDocumentRequest) (*services.RatingResult, error) {
	created := !f.existing[req.DocumentID]
	f.existing[req.DocumentID] = true
	return &services.RatingResult{
		Rating:    &models.Rating{DocumentID: req.DocumentID, UserID: req.UserID, Score: req.Score},
		Aggregate: models.RatingAggregate{AverageRating: float64(req.Score), TotalRatings: 1},
		Created:   created,
	}, nil
}
func (f *fakeRatings) Delete(ctx context.Context, userID, documentID int64) (*models.RatingAggregate, error) {
	return &models.RatingAggregate{}, nil
}
func (f *fakeRatings) GetMine(ctx context.Context, userID, documentID int64) (*models.Rating, error) {
	if !f.existing[documentID] {
		return nil, services.NewNotFoundError("Rating not found")
	}
	return &models.Rating{DocumentID: documentID, UserID: userID, Score: 4}, nil
}
func (f *fakeRatings) List(ctx context.Context, documentID int64, p models.PaginationParams) (*models.Page[*models.Rating], error) {
	return models.EmptyPage[*models.Rating](p), nil
}
func (f *fakeRatings) Distribution(ctx context.Context, documentID int64) (*models.RatingDistribution, error) {
	return &models.RatingDistribution{}, nil
}

type fakeComments struct{ c *calls }

func (f *fakeComments) Create(ctx context.Context, req *services.CreateCommentRequest) (*models.Comment, error) {
	return &models.Comment{ID: 8, DocumentID: req.DocumentID, UserID: req.UserID, Content: req.Content}, nil
}
func (f *fakeComments) Update(ctx context.Context, id int64, content string, actor services.Actor) (*models.Comment, error) {
	return &models.Comment{ID: id, Content: content}, nil
}
func (f *fakeComments) Delete(ctx context.Context, id int64, actor services.Actor) error { return nil }
func (f *fakeComments) Report(ctx context.Context, id, reporterID int64) error {
	if id == 99 {
		return services.NewConflictError("You already reported this comment", "ALREADY_REPORTED")
	}
	return nil
}
func (f *fakeComments) List(ctx context.Context, documentID int64, p models.PaginationParams, newestFirst bool) (*models.Page[*models.Comment], error) {
	f.c.mu.Lock()
	f.c.newest = &newestFirst
	f.c.mu.Unlock()
	return models.EmptyPage[*models.Comment](p), nil
}

// ===============================
// NOTIFICATIONS, CATEGORIES, HISTORY
// ===============================

type fakeNotifications struct{ c *calls }

func (f *fakeNotifications) NotifyDocumentOwner(ctx context.Context, documentID, actorID int64, notificationType, actorName string) (*models.Notification, error) {
	return nil, nil
}
func (f *fakeNotifications) List(ctx context.Context, userID int64, unreadOnly bool, p models.PaginationParams) (*models.Page[*models.Notification], error) {
	return models.EmptyPage[*models.Notification](p), nil
}
func (f *fakeNotifications) UnreadCount(ctx context.Context, userID int64) (int64, error) {
	return 2, nil
}
func (f *fakeNotifications) MarkRead(ctx context.Context, id, userID int64) error {
	f.c.mu.Lock()
	f.c.markedRead = append(f.c.markedRead, id)
	f.c.mu.Unlock()
	return nil
}
func (f *fakeNotifications) MarkUnread(ctx context.Context, id, userID int64) error { return nil }
func (f *fakeNotifications) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	return 5, nil
}
func (f *fakeNotifications) Delete(ctx context.Context, id, userID int64) error {
	if id == 404 {
		return services.NewNotFoundError("Notification not found")
	}
	return nil
}
func (f *fakeNotifications) DeleteAll(ctx context.Context, userID int64) (int64, error) {
	return 3, nil
}

type fakeCategories struct{ c *calls }

func (f *fakeCategories) Create(ctx context.Context, req *services.CategoryRequest) (*models.Category, error) {
	f.c.add("categories.create")
	return &models.Category{ID: 3, Name: req.Name, Slug: "science"}, nil
}
func (f *fakeCategories) Update(ctx context.Context, id int64, req *services.CategoryRequest) (*models.Category, error) {
	return &models.Category{ID: id, Name: req.Name}, nil
}
func (f *fakeCategories) Delete(ctx context.Context, id int64) error { return nil }
func (f *fakeCategories) List(ctx context.Context) ([]*models.Category, error) {
	return []*models.Category{{ID: 1, Name: "Science", Slug: "science"}}, nil
}
func (f *fakeCategories) GetBySlug(ctx context.Context, slug string) (*models.Category, error) {
	f.c.add("categories.slug:" + slug)
	return &models.Category{ID: 1, Slug: slug}, nil
}

type fakeHistory struct {
	c       *calls
	failing bool
}

func (f *fakeHistory) RecordView(ctx context.Context, documentID int64, viewerID *int64) error {
	if f.failing {
		return errors.New("insert view: connection reset")
	}
	f.c.mu.Lock()
	f.c.viewed = append(f.c.viewed, documentID)
	f.c.mu.Unlock()
	return nil
}
func (f *fakeHistory) RecordDownload(ctx context.Context, documentID int64, userID *int64, ip, device string) error {
	return nil
}
func (f *fakeHistory) ListViews(ctx context.Context, userID int64, p models.PaginationParams) (*models.Page[*models.ViewHistory], error) {
	return models.EmptyPage[*models.ViewHistory](p), nil
}
func (f *fakeHistory) ListDownloads(ctx context.Context, userID int64, p models.PaginationParams) (*models.Page[*models.DownloadHistory], error) {
	return models.EmptyPage[*models.DownloadHistory](p), nil
}
