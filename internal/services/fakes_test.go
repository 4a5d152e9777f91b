package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"doclib/internal/cache"
	"doclib/internal/config"
	"doclib/internal/models"
	"doclib/internal/repositories"
	"doclib/internal/utils"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// memStore backs every fake repository so cross-table effects (cascades,
// counters, aggregates) behave like the SQL implementation.
type memStore struct {
	mu     sync.Mutex
	nextID int64

	users         map[int64]*models.User
	categories    map[int64]*models.Category
	docs          map[int64]*models.Document
	favorites     map[[2]int64]time.Time
	ratings       map[[2]int64]*models.Rating
	comments      map[int64]*models.Comment
	notifications map[int64]*models.Notification
	views         map[[2]int64]*models.ViewHistory
	downloads     map[[2]int64]*models.DownloadHistory

	failNotifications bool
	failDocCreate     bool
}

func newMemStore() *memStore {
	return &memStore{
		users:         map[int64]*models.User{},
		categories:    map[int64]*models.Category{},
		docs:          map[int64]*models.Document{},
		favorites:     map[[2]int64]time.Time{},
		ratings:       map[[2]int64]*models.Rating{},
		comments:      map[int64]*models.Comment{},
		notifications: map[int64]*models.Notification{},
		views:         map[[2]int64]*models.ViewHistory{},
		downloads:     map[[2]int64]*models.DownloadHistory{},
	}
}

func (m *memStore) id() int64 {
	m.nextID++
	return m.nextID
}

// ===============================
// USERS / CATEGORIES
// ===============================

type fakeUsers struct{ *memStore }

func (r fakeUsers) Create(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return repositories.ErrDuplicate
		}
	}
	u.ID = r.id()
	u.CreatedAt = time.Now()
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r fakeUsers) GetByID(_ context.Context, id int64) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (r fakeUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

type fakeCategories struct{ *memStore }

func (r fakeCategories) Create(_ context.Context, c *models.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.categories {
		if existing.Slug == c.Slug {
			return repositories.ErrDuplicate
		}
	}
	c.ID = r.id()
	c.CreatedAt, c.UpdatedAt = time.Now(), time.Now()
	cp := *c
	r.categories[c.ID] = &cp
	return nil
}

func (r fakeCategories) Update(_ context.Context, c *models.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.categories[c.ID]; !ok {
		return repositories.ErrNotFound
	}
	for _, existing := range r.categories {
		if existing.Slug == c.Slug && existing.ID != c.ID {
			return repositories.ErrDuplicate
		}
	}
	cp := *c
	r.categories[c.ID] = &cp
	return nil
}

func (r fakeCategories) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.categories[id]; !ok {
		return repositories.ErrNotFound
	}
	for _, d := range r.docs {
		if d.CategoryID == id {
			return repositories.ErrInUse
		}
	}
	delete(r.categories, id)
	return nil
}

func (r fakeCategories) GetByID(_ context.Context, id int64) (*models.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.categories[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, nil
}

func (r fakeCategories) GetBySlug(_ context.Context, slug string) (*models.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.categories {
		if c.Slug == slug {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (r fakeCategories) List(_ context.Context) ([]*models.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Category
	for _, c := range r.categories {
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// ===============================
// DOCUMENTS
// ===============================

type fakeDocuments struct{ *memStore }

func (r fakeDocuments) slugTaken(slug string, excludeID int64) bool {
	for _, d := range r.docs {
		if d.Slug == slug && d.ID != excludeID {
			return true
		}
	}
	return false
}

func (r fakeDocuments) Create(_ context.Context, doc *models.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failDocCreate {
		return errors.New("connection reset")
	}
	if r.slugTaken(doc.Slug, 0) {
		return repositories.ErrDuplicate
	}
	doc.ID = r.id()
	doc.CreatedAt, doc.UpdatedAt = time.Now(), time.Now()
	cp := *doc
	r.docs[doc.ID] = &cp
	return nil
}

func (r fakeDocuments) GetByID(_ context.Context, id int64) (*models.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if d, ok := r.docs[id]; ok {
		cp := *d
		return &cp, nil
	}
	return nil, nil
}

func (r fakeDocuments) GetBySlug(_ context.Context, slug string) (*models.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range r.docs {
		if d.Slug == slug {
			cp := *d
			return &cp, nil
		}
	}
	return nil, nil
}

func (r fakeDocuments) SlugExists(_ context.Context, slug string, excludeID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.slugTaken(slug, excludeID), nil
}

func (r fakeDocuments) Update(_ context.Context, doc *models.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.docs[doc.ID]
	if !ok {
		return repositories.ErrNotFound
	}
	if r.slugTaken(doc.Slug, doc.ID) {
		return repositories.ErrDuplicate
	}
	current.Title, current.Description, current.Slug = doc.Title, doc.Description, doc.Slug
	current.Tags, current.CategoryID, current.IsPublic = doc.Tags, doc.CategoryID, doc.IsPublic
	current.UpdatedAt = time.Now()
	return nil
}

func (r fakeDocuments) UpdateStatus(_ context.Context, id int64, from, to models.DocumentStatus, isPublic bool) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.docs[id]
	if !ok || d.Status != from {
		return false, nil
	}
	d.Status, d.IsPublic, d.UpdatedAt = to, isPublic, time.Now()
	return true, nil
}

func (r fakeDocuments) SetFeatured(_ context.Context, id int64, featured bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.docs[id]
	if !ok {
		return repositories.ErrNotFound
	}
	d.IsFeatured = featured
	return nil
}

func (r fakeDocuments) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.docs[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.docs, id)
	for k := range r.favorites {
		if k[1] == id {
			delete(r.favorites, k)
		}
	}
	for k := range r.ratings {
		if k[1] == id {
			delete(r.ratings, k)
		}
	}
	for k, c := range r.comments {
		if c.DocumentID == id {
			delete(r.comments, k)
		}
	}
	for k := range r.views {
		if k[1] == id {
			delete(r.views, k)
		}
	}
	for k := range r.downloads {
		if k[1] == id {
			delete(r.downloads, k)
		}
	}
	return nil
}

func (r fakeDocuments) matching(q models.DocumentQuery) []*models.Document {
	var out []*models.Document
	for _, d := range r.docs {
		switch q.Scope {
		case models.ScopePublic:
			if !d.IsPubliclyVisible() {
				continue
			}
		case models.ScopeFeatured:
			if !d.IsPubliclyVisible() || !d.IsFeatured {
				continue
			}
		case models.ScopeMine:
			if d.UploaderID != q.OwnerID {
				continue
			}
		}
		if q.Status != nil && d.Status != *q.Status {
			continue
		}
		if q.CategoryID != nil && d.CategoryID != *q.CategoryID {
			continue
		}
		if q.UploaderID != nil && d.UploaderID != *q.UploaderID {
			continue
		}
		if q.Format != "" && d.File.Format != q.Format {
			continue
		}
		if q.Search != "" && !strings.Contains(strings.ToLower(d.Title+" "+d.Description), strings.ToLower(q.Search)) {
			continue
		}
		at := d.CreatedAt
		if q.DateField == "updatedAt" {
			at = d.UpdatedAt
		}
		if q.StartDate != nil && at.Before(*q.StartDate) {
			continue
		}
		if q.EndDate != nil && at.After(*q.EndDate) {
			continue
		}
		cp := *d
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if q.SortDesc {
			return out[i].ID > out[j].ID
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (r fakeDocuments) List(_ context.Context, q models.DocumentQuery) ([]*models.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := r.matching(q)
	start := q.Pagination.Offset()
	if start >= len(all) {
		return nil, nil
	}
	end := min(start+q.Pagination.Limit, len(all))
	return all[start:end], nil
}

func (r fakeDocuments) Count(_ context.Context, q models.DocumentQuery) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.matching(q))), nil
}

// ===============================
// ENGAGEMENT
// ===============================

type fakeFavorites struct{ *memStore }

func (r fakeFavorites) Toggle(_ context.Context, userID, documentID int64, limit int) (*models.FavoriteToggleResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.docs[documentID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	key := [2]int64{userID, documentID}
	if _, exists := r.favorites[key]; exists {
		delete(r.favorites, key)
		d.FavoriteCount--
		return &models.FavoriteToggleResult{IsFavorite: false, FavoriteCount: d.FavoriteCount}, nil
	}
	owned := 0
	for k := range r.favorites {
		if k[0] == userID {
			owned++
		}
	}
	if owned >= limit {
		return nil, repositories.ErrLimitExceeded
	}
	r.favorites[key] = time.Now()
	d.FavoriteCount++
	return &models.FavoriteToggleResult{IsFavorite: true, FavoriteCount: d.FavoriteCount}, nil
}

func (r fakeFavorites) Exists(_ context.Context, userID, documentID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.favorites[[2]int64{userID, documentID}]
	return ok, nil
}

func (r fakeFavorites) ListByUser(_ context.Context, userID int64, p models.PaginationParams) ([]*models.Document, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Document
	for k := range r.favorites {
		if k[0] == userID {
			cp := *r.docs[k[1]]
			out = append(out, &cp)
		}
	}
	return out, int64(len(out)), nil
}

type fakeRatings struct{ *memStore }

func (r fakeRatings) Upsert(_ context.Context, rating *models.Rating) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.docs[rating.DocumentID]; !ok {
		return false, repositories.ErrNotFound
	}
	key := [2]int64{rating.UserID, rating.DocumentID}
	now := time.Now()
	if existing, ok := r.ratings[key]; ok {
		existing.Score, existing.Review, existing.UpdatedAt = rating.Score, rating.Review, now
		*rating = *existing
		return false, nil
	}
	rating.ID = r.id()
	rating.CreatedAt, rating.UpdatedAt = now, now
	cp := *rating
	r.ratings[key] = &cp
	return true, nil
}

func (r fakeRatings) Get(_ context.Context, userID, documentID int64) (*models.Rating, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rt, ok := r.ratings[[2]int64{userID, documentID}]; ok {
		cp := *rt
		return &cp, nil
	}
	return nil, nil
}

func (r fakeRatings) Delete(_ context.Context, userID, documentID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := [2]int64{userID, documentID}
	if _, ok := r.ratings[key]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.ratings, key)
	return nil
}

func (r fakeRatings) Stats(_ context.Context, documentID int64) (int64, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count, sum int64
	for k, rt := range r.ratings {
		if k[1] == documentID {
			count++
			sum += int64(rt.Score)
		}
	}
	return count, sum, nil
}

func (r fakeRatings) UpdateAggregate(_ context.Context, documentID int64, agg models.RatingAggregate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.docs[documentID]
	if !ok {
		return repositories.ErrNotFound
	}
	d.AverageRating, d.TotalRatings = agg.AverageRating, agg.TotalRatings
	return nil
}

func (r fakeRatings) Distribution(_ context.Context, documentID int64) (map[int]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := map[int]int64{}
	for k, rt := range r.ratings {
		if k[1] == documentID {
			out[rt.Score]++
		}
	}
	return out, nil
}

func (r fakeRatings) ListByDocument(_ context.Context, documentID int64, p models.PaginationParams) ([]*models.Rating, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Rating
	for k, rt := range r.ratings {
		if k[1] == documentID {
			cp := *rt
			out = append(out, &cp)
		}
	}
	return out, int64(len(out)), nil
}

type fakeComments struct{ *memStore }

func (r fakeComments) Create(_ context.Context, c *models.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c.ID = r.id()
	c.CreatedAt, c.UpdatedAt = time.Now(), time.Now()
	cp := *c
	r.comments[c.ID] = &cp
	return nil
}

func (r fakeComments) GetByID(_ context.Context, id int64) (*models.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.comments[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, nil
}

func (r fakeComments) UpdateContent(_ context.Context, id int64, content string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.comments[id]
	if !ok || c.IsDeleted {
		return repositories.ErrNotFound
	}
	c.Content, c.IsEdited = content, true
	return nil
}

func (r fakeComments) SoftDelete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.comments[id]
	if !ok || c.IsDeleted {
		return repositories.ErrNotFound
	}
	c.IsDeleted = true
	return nil
}

func (r fakeComments) MarkReported(_ context.Context, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.comments[id]
	if !ok || c.IsReported {
		return false, nil
	}
	c.IsReported = true
	return true, nil
}

func (r fakeComments) ListTopLevel(_ context.Context, documentID int64, p models.PaginationParams, newestFirst bool) ([]*models.Comment, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Comment
	for _, c := range r.comments {
		if c.DocumentID == documentID && !c.IsReply() && !c.IsDeleted {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if newestFirst {
			return out[i].ID > out[j].ID
		}
		return out[i].ID < out[j].ID
	})
	return out, int64(len(out)), nil
}

func (r fakeComments) ListReplies(_ context.Context, parentIDs []int64) ([]*models.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	parents := map[int64]bool{}
	for _, id := range parentIDs {
		parents[id] = true
	}
	var out []*models.Comment
	for _, c := range r.comments {
		if c.IsReply() && parents[*c.ParentCommentID] && !c.IsDeleted {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ===============================
// NOTIFICATIONS / HISTORY
// ===============================

type fakeNotifications struct{ *memStore }

func (r fakeNotifications) Create(ctx context.Context, n *models.Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failNotifications {
		return errors.New("notifications table unavailable")
	}
	n.ID = r.id()
	n.CreatedAt = time.Now()
	cp := *n
	r.notifications[n.ID] = &cp
	return nil
}

func (r fakeNotifications) GetByID(_ context.Context, id int64) (*models.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n, ok := r.notifications[id]; ok {
		cp := *n
		return &cp, nil
	}
	return nil, nil
}

func (r fakeNotifications) forUser(userID int64, unreadOnly bool) []*models.Notification {
	var out []*models.Notification
	for _, n := range r.notifications {
		if n.UserID == userID && (!unreadOnly || !n.IsRead) {
			cp := *n
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func (r fakeNotifications) List(_ context.Context, userID int64, unreadOnly bool, _ models.PaginationParams) ([]*models.Notification, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.forUser(userID, unreadOnly)
	return out, int64(len(out)), nil
}

func (r fakeNotifications) SetRead(_ context.Context, id int64, read bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.notifications[id]
	if !ok {
		return repositories.ErrNotFound
	}
	n.IsRead = read
	if read {
		now := time.Now()
		n.ReadAt = &now
	} else {
		n.ReadAt = nil
	}
	return nil
}

func (r fakeNotifications) MarkAllRead(_ context.Context, userID int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var changed int64
	for _, n := range r.notifications {
		if n.UserID == userID && !n.IsRead {
			n.IsRead = true
			changed++
		}
	}
	return changed, nil
}

func (r fakeNotifications) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.notifications[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.notifications, id)
	return nil
}

func (r fakeNotifications) DeleteAll(_ context.Context, userID int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var removed int64
	for id, n := range r.notifications {
		if n.UserID == userID {
			delete(r.notifications, id)
			removed++
		}
	}
	return removed, nil
}

func (r fakeNotifications) UnreadCount(_ context.Context, userID int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.forUser(userID, true))), nil
}

type fakeHistory struct{ *memStore }

func (r fakeHistory) RecordView(_ context.Context, documentID int64, userID *int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.docs[documentID]
	if !ok {
		return repositories.ErrNotFound
	}
	d.ViewCount++
	if userID != nil {
		r.views[[2]int64{*userID, documentID}] = &models.ViewHistory{UserID: *userID, DocumentID: documentID, ViewedAt: time.Now()}
	}
	return nil
}

func (r fakeHistory) RecordDownload(_ context.Context, documentID int64, userID *int64, ip, device string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.docs[documentID]
	if !ok {
		return repositories.ErrNotFound
	}
	d.DownloadCount++
	if userID != nil {
		r.downloads[[2]int64{*userID, documentID}] = &models.DownloadHistory{
			UserID: *userID, DocumentID: documentID, DownloadedAt: time.Now(), IPAddress: ip, DeviceInfo: device,
		}
	}
	return nil
}

func (r fakeHistory) ListViews(_ context.Context, userID int64, _ models.PaginationParams) ([]*models.ViewHistory, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.ViewHistory
	for k, v := range r.views {
		if k[0] == userID {
			cp := *v
			out = append(out, &cp)
		}
	}
	return out, int64(len(out)), nil
}

func (r fakeHistory) ListDownloads(_ context.Context, userID int64, _ models.PaginationParams) ([]*models.DownloadHistory, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.DownloadHistory
	for k, v := range r.downloads {
		if k[0] == userID {
			cp := *v
			out = append(out, &cp)
		}
	}
	return out, int64(len(out)), nil
}

// ===============================
// BLOB STORAGE
// ===============================

type fakeStorage struct {
	mu      sync.Mutex
	blobs   map[string][]byte
	deleted []string
	failAt  string
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{blobs: map[string][]byte{}}
}

func (s *fakeStorage) Upload(_ context.Context, fh *multipart.FileHeader, folder string) (*utils.UploadResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failAt == folder {
		return nil, errors.New("bucket unavailable")
	}
	name, err := utils.BlobName(fh.Filename)
	if err != nil {
		return nil, err
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	key := folder + "/" + name
	s.blobs[key] = data
	return &utils.UploadResult{URL: "/files/" + key, Key: key, Size: int64(len(data))}, nil
}

func (s *fakeStorage) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, key)
	s.deleted = append(s.deleted, key)
	return nil
}

func (s *fakeStorage) Serve(_ context.Context, key, _ string) (*utils.Download, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.blobs[key]
	if !ok {
		return nil, utils.ErrBlobNotFound
	}
	return &utils.Download{Reader: io.NopCloser(bytes.NewReader(data)), Size: int64(len(data))}, nil
}

func (s *fakeStorage) Name() string { return "fake" }

func (s *fakeStorage) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.blobs)
}

// ===============================
// FIXTURE
// ===============================

// library wires every service over one memStore
type library struct {
	store   *memStore
	storage *fakeStorage
	loader  *cache.Loader

	documents     DocumentService
	listing       ListingService
	favorites     FavoriteService
	ratings       RatingService
	comments      CommentService
	notifications NotificationService
	categories    CategoryService
	history       HistoryService
	auth          AuthService
}

func newLibrary(t *testing.T) *library {
	t.Helper()
	logger := zap.NewNop()
	store := newMemStore()
	storage := newFakeStorage()

	c := cache.NewMemoryCache(&config.CacheConfig{MaxKeys: 1000, TTL: time.Minute, CleanupInterval: time.Minute}, logger)
	t.Cleanup(func() { c.Close() })
	loader := cache.NewLoader(c, nil, logger)

	docs := fakeDocuments{store}
	cats := fakeCategories{store}

	lib := &library{store: store, storage: storage, loader: loader}
	lib.notifications = NewNotificationService(fakeNotifications{store}, docs, nil, nil, logger)
	lib.history = NewHistoryService(fakeHistory{store}, nil, loader, logger)
	lib.categories = NewCategoryService(cats, loader, time.Minute, logger)
	lib.listing = NewListingService(docs, cats, loader, time.Minute, logger)
	lib.favorites = NewFavoriteService(fakeFavorites{store}, docs, nil, loader, 3, logger)
	lib.ratings = NewRatingService(fakeRatings{store}, docs, lib.notifications, cache.NewMemoryLocker(), time.Second, nil, loader, logger)
	lib.comments = NewCommentService(fakeComments{store}, docs, lib.notifications, nil, logger)
	lib.auth = NewAuthService(fakeUsers{store}, config.AuthConfig{
		JWTSecret:   "test-secret-test-secret-test-secret",
		JWTExpiry:   time.Hour,
		JWTIssuer:   "doclib-test",
		BCryptCost:  4,
		AdminEmails: []string{"root@example.com"},
	}, config.OAuthConfig{}, logger)
	lib.documents = NewDocumentService(DocumentServiceDeps{
		Documents:  docs,
		Categories: cats,
		History:    lib.history,
		Notifier:   lib.notifications,
		Storage:    storage,
		Files:      utils.NewFileValidator(utils.ProfileFor(utils.ProfileStandard), logger),
		Loader:     loader,
		Logger:     logger,
		Config:     &config.LibraryConfig{SlugMaxAttempts: 50},
	})
	return lib
}

func (l *library) category(t *testing.T, name string) *models.Category {
	t.Helper()
	c, err := l.categories.Create(context.Background(), &CategoryRequest{Name: name})
	require.NoError(t, err)
	return c
}

func (l *library) upload(t *testing.T, ownerID, categoryID int64, title string) *models.Document {
	t.Helper()
	doc, err := l.documents.Upload(context.Background(), &UploadDocumentRequest{
		Title:      title,
		CategoryID: categoryID,
		OwnerID:    ownerID,
		File:       buildFileHeader(t, "notes.pdf", pdfBytes),
	})
	require.NoError(t, err)
	return doc
}

// approved uploads and approves a document owned by ownerID
func (l *library) approved(t *testing.T, ownerID, categoryID int64, title string) *models.Document {
	t.Helper()
	doc := l.upload(t, ownerID, categoryID, title)
	approved, err := l.documents.Approve(context.Background(), doc.ID, adminID)
	require.NoError(t, err)
	return approved
}

func (l *library) notificationsFor(userID int64) []*models.Notification {
	l.store.mu.Lock()
	defer l.store.mu.Unlock()
	return fakeNotifications{l.store}.forUser(userID, false)
}

const (
	ownerID  int64 = 1001
	readerID int64 = 1002
	adminID  int64 = 1999
)

var (
	owner  = Actor{UserID: ownerID, Name: "Olivia", Role: models.RoleUploader}
	reader = Actor{UserID: readerID, Name: "Rafael", Role: models.RoleMember}
	admin  = Actor{UserID: adminID, Name: "Ada", Role: models.RoleAdmin}
)

var pdfBytes = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\n")

func buildFileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(32<<20))
	_, fh, err := req.FormFile("file")
	require.NoError(t, err)
	return fh
}

// serviceErrorType returns the ServiceError type of err or ""
func serviceErrorType(err error) string {
	var se *ServiceError
	if errors.As(err, &se) {
		return se.Type
	}
	return ""
}
