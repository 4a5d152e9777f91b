package services

import (
	"context"
	"testing"
	"time"

	"doclib/internal/config"
	"doclib/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestAuth(t *testing.T) {
	ctx := context.Background()

	t.Run("register then login round trip", func(t *testing.T) {
		lib := newLibrary(t)
		reg, err := lib.auth.Register(ctx, &RegisterRequest{Name: "Grace", Email: "Grace@Example.com", Password: "Str0ng!pass"})
		require.NoError(t, err)
		assert.Equal(t, "grace@example.com", reg.User.Email)
		assert.Equal(t, models.RoleUploader, reg.User.Role)

		login, err := lib.auth.Login(ctx, &LoginRequest{Email: "grace@example.com", Password: "Str0ng!pass"})
		require.NoError(t, err)

		claims, err := lib.auth.ValidateToken(login.Token)
		require.NoError(t, err)
		id, err := claims.UserID()
		require.NoError(t, err)
		assert.Equal(t, reg.User.ID, id)
		assert.Equal(t, models.RoleUploader, claims.Role)

		me, err := lib.auth.Me(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "Grace", me.Name)
	})

	t.Run("admin emails get the admin role", func(t *testing.T) {
		lib := newLibrary(t)
		reg, err := lib.auth.Register(ctx, &RegisterRequest{Name: "Root", Email: "root@example.com", Password: "Str0ng!pass"})
		require.NoError(t, err)
		assert.Equal(t, models.RoleAdmin, reg.User.Role)
	})

	t.Run("duplicate email", func(t *testing.T) {
		lib := newLibrary(t)
		req := &RegisterRequest{Name: "Twin", Email: "twin@example.com", Password: "Str0ng!pass"}
		_, err := lib.auth.Register(ctx, req)
		require.NoError(t, err)
		_, err = lib.auth.Register(ctx, req)
		assert.Equal(t, "EMAIL_TAKEN", GetServiceError(err).Code)
	})

	t.Run("wrong password and unknown user look the same", func(t *testing.T) {
		lib := newLibrary(t)
		_, err := lib.auth.Register(ctx, &RegisterRequest{Name: "Alan", Email: "alan@example.com", Password: "Str0ng!pass"})
		require.NoError(t, err)

		_, err = lib.auth.Login(ctx, &LoginRequest{Email: "alan@example.com", Password: "wrong"})
		assert.Equal(t, ErrTypeUnauthorized, serviceErrorType(err))
		_, err2 := lib.auth.Login(ctx, &LoginRequest{Email: "nobody@example.com", Password: "wrong"})
		assert.Equal(t, GetServiceError(err).Message, GetServiceError(err2).Message)
	})

	t.Run("weak password", func(t *testing.T) {
		lib := newLibrary(t)
		_, err := lib.auth.Register(ctx, &RegisterRequest{Name: "Weak", Email: "weak@example.com", Password: "short"})
		assert.Equal(t, ErrTypeValidation, serviceErrorType(err))
	})

	t.Run("tampered and foreign tokens are rejected", func(t *testing.T) {
		lib := newLibrary(t)
		reg, err := lib.auth.Register(ctx, &RegisterRequest{Name: "Eve", Email: "eve@example.com", Password: "Str0ng!pass"})
		require.NoError(t, err)

		_, err = lib.auth.ValidateToken(reg.Token + "x")
		assert.Equal(t, ErrTypeUnauthorized, serviceErrorType(err))

		foreign := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
			Role: models.RoleAdmin,
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "1",
				Issuer:    "doclib-test",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		})
		signed, err := foreign.SignedString([]byte("some-other-secret"))
		require.NoError(t, err)
		_, err = lib.auth.ValidateToken(signed)
		assert.Equal(t, ErrTypeUnauthorized, serviceErrorType(err))
	})

	t.Run("expired token", func(t *testing.T) {
		svc := NewAuthService(fakeUsers{newMemStore()}, config.AuthConfig{
			JWTSecret:  "test-secret-test-secret-test-secret",
			JWTExpiry:  -time.Minute,
			JWTIssuer:  "doclib-test",
			BCryptCost: 4,
		}, config.OAuthConfig{}, zap.NewNop())
		reg, err := svc.Register(ctx, &RegisterRequest{Name: "Old", Email: "old@example.com", Password: "Str0ng!pass"})
		require.NoError(t, err)
		_, err = svc.ValidateToken(reg.Token)
		assert.Equal(t, ErrTypeUnauthorized, serviceErrorType(err))
	})

	t.Run("google disabled", func(t *testing.T) {
		lib := newLibrary(t)
		assert.False(t, lib.auth.GoogleEnabled())
		assert.Empty(t, lib.auth.GoogleAuthURL("state"))
		_, err := lib.auth.GoogleCallback(ctx, "code")
		assert.True(t, IsNotFoundError(err))
	})

	t.Run("google auth url carries the state", func(t *testing.T) {
		svc := NewAuthService(fakeUsers{newMemStore()}, config.AuthConfig{}, config.OAuthConfig{
			GoogleEnabled:     true,
			GoogleClientID:    "client-id",
			GoogleRedirectURL: "http://localhost:8080/api/v1/auth/google/callback",
		}, zap.NewNop())
		url := svc.GoogleAuthURL("xyz")
		assert.Contains(t, url, "accounts.google.com")
		assert.Contains(t, url, "state=xyz")
		assert.Contains(t, url, "client_id=client-id")
	})
}

func TestNotifications(t *testing.T) {
	ctx := context.Background()
	lib := newLibrary(t)
	cat := lib.category(t, "Science")
	doc := lib.upload(t, ownerID, cat.ID, "Watched")

	t.Run("acting on your own document is silent", func(t *testing.T) {
		n, err := lib.notifications.NotifyDocumentOwner(ctx, doc.ID, ownerID, models.NotificationNewComment, "Olivia")
		require.NoError(t, err)
		assert.Nil(t, n)
	})

	t.Run("unknown type", func(t *testing.T) {
		_, err := lib.notifications.NotifyDocumentOwner(ctx, doc.ID, readerID, "party", "Rafael")
		assert.Equal(t, ErrTypeValidation, serviceErrorType(err))
	})

	n, err := lib.notifications.NotifyDocumentOwner(ctx, doc.ID, readerID, models.NotificationNewComment, "Rafael")
	require.NoError(t, err)
	require.NotNil(t, n)
	assert.Equal(t, ownerID, n.UserID)

	t.Run("only the recipient may touch it", func(t *testing.T) {
		assert.Equal(t, ErrTypeForbidden, serviceErrorType(lib.notifications.MarkRead(ctx, n.ID, readerID)))
		assert.Equal(t, ErrTypeForbidden, serviceErrorType(lib.notifications.Delete(ctx, n.ID, readerID)))
		assert.True(t, IsNotFoundError(lib.notifications.MarkRead(ctx, 999999, ownerID)))
	})

	t.Run("read state", func(t *testing.T) {
		count, err := lib.notifications.UnreadCount(ctx, ownerID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)

		require.NoError(t, lib.notifications.MarkRead(ctx, n.ID, ownerID))
		unread, err := lib.notifications.List(ctx, ownerID, true, models.PaginationParams{})
		require.NoError(t, err)
		assert.Empty(t, unread.Items)

		require.NoError(t, lib.notifications.MarkUnread(ctx, n.ID, ownerID))
		changed, err := lib.notifications.MarkAllRead(ctx, ownerID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), changed)
	})

	t.Run("delete all is scoped to the user", func(t *testing.T) {
		_, err := lib.notifications.NotifyDocumentOwner(ctx, doc.ID, adminID, models.NotificationSystem, "")
		require.NoError(t, err)
		removed, err := lib.notifications.DeleteAll(ctx, readerID)
		require.NoError(t, err)
		assert.Zero(t, removed)

		removed, err = lib.notifications.DeleteAll(ctx, ownerID)
		require.NoError(t, err)
		assert.Equal(t, int64(2), removed)
	})
}

func TestCategories(t *testing.T) {
	ctx := context.Background()
	lib := newLibrary(t)

	cat, err := lib.categories.Create(ctx, &CategoryRequest{Name: "Computer Science"})
	require.NoError(t, err)
	assert.Equal(t, "computer-science", cat.Slug)

	_, err = lib.categories.Create(ctx, &CategoryRequest{Name: "Computer  Science!"})
	assert.Equal(t, "DUPLICATE_SLUG", GetServiceError(err).Code)

	list, err := lib.categories.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	t.Run("update refreshes cached lookups", func(t *testing.T) {
		_, err := lib.categories.GetBySlug(ctx, "computer-science")
		require.NoError(t, err)

		updated, err := lib.categories.Update(ctx, cat.ID, &CategoryRequest{Name: "Computing", Slug: "computing"})
		require.NoError(t, err)
		assert.Equal(t, "computing", updated.Slug)

		_, err = lib.categories.GetBySlug(ctx, "computer-science")
		assert.True(t, IsNotFoundError(err))
		got, err := lib.categories.GetBySlug(ctx, "Computing")
		require.NoError(t, err)
		assert.Equal(t, cat.ID, got.ID)
	})

	t.Run("categories in use cannot be deleted", func(t *testing.T) {
		lib.upload(t, ownerID, cat.ID, "Anchored")
		err := lib.categories.Delete(ctx, cat.ID)
		assert.Equal(t, "CATEGORY_IN_USE", GetServiceError(err).Code)
	})

	t.Run("empty category", func(t *testing.T) {
		empty := lib.category(t, "Empty")
		require.NoError(t, lib.categories.Delete(ctx, empty.ID))
		assert.True(t, IsNotFoundError(lib.categories.Delete(ctx, empty.ID)))
	})
}

func TestHistory(t *testing.T) {
	ctx := context.Background()
	lib := newLibrary(t)
	cat := lib.category(t, "Science")
	doc := lib.approved(t, ownerID, cat.ID, "Seen")

	viewer := readerID
	require.NoError(t, lib.history.RecordView(ctx, doc.ID, &viewer))
	require.NoError(t, lib.history.RecordView(ctx, doc.ID, &viewer))
	require.NoError(t, lib.history.RecordView(ctx, doc.ID, nil))

	views, err := lib.history.ListViews(ctx, readerID, models.PaginationParams{})
	require.NoError(t, err)
	assert.Len(t, views.Items, 1)

	got, err := lib.documents.Get(ctx, doc.Slug, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(3), got.ViewCount)

	assert.True(t, IsNotFoundError(lib.history.RecordView(ctx, 404, nil)))
}

// TestLibraryScenario walks a document from upload to engagement.
func TestLibraryScenario(t *testing.T) {
	ctx := context.Background()
	lib := newLibrary(t)
	cat := lib.category(t, "Science")

	doc := lib.upload(t, ownerID, cat.ID, "Intro to Go")
	assert.Equal(t, "intro-to-go-1", doc.Slug)
	assert.Equal(t, models.StatusPending, doc.Status)

	approved, err := lib.documents.Approve(ctx, doc.ID, adminID)
	require.NoError(t, err)
	assert.True(t, approved.IsPublic)
	assert.Len(t, lib.notificationsFor(ownerID), 1)

	before, err := lib.listing.List(ctx, &ListDocumentsRequest{CategorySlug: cat.Slug})
	require.NoError(t, err)
	require.Len(t, before.Items, 1)
	assert.Zero(t, before.Items[0].TotalRatings)

	on, err := lib.favorites.Toggle(ctx, readerID, doc.ID)
	require.NoError(t, err)
	assert.True(t, on.IsFavorite)
	off, err := lib.favorites.Toggle(ctx, readerID, doc.ID)
	require.NoError(t, err)
	assert.False(t, off.IsFavorite)
	assert.Zero(t, off.FavoriteCount)

	_, err = lib.ratings.Upsert(ctx, &RateDocumentRequest{UserID: readerID, UserName: "Rafael", DocumentID: doc.ID, Score: 5})
	require.NoError(t, err)
	res, err := lib.ratings.Upsert(ctx, &RateDocumentRequest{UserID: readerID, UserName: "Rafael", DocumentID: doc.ID, Score: 3})
	require.NoError(t, err)
	assert.Equal(t, 3.0, res.Aggregate.AverageRating)
	assert.Equal(t, int64(1), res.Aggregate.TotalRatings)

	page, err := lib.ratings.List(ctx, doc.ID, models.PaginationParams{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.TotalItems)

	listed, err := lib.listing.List(ctx, &ListDocumentsRequest{CategorySlug: cat.Slug})
	require.NoError(t, err)
	require.Len(t, listed.Items, 1)
	assert.Equal(t, 3.0, listed.Items[0].AverageRating)
	assert.Equal(t, int64(1), listed.Items[0].TotalRatings)
	assert.Zero(t, listed.Items[0].FavoriteCount)
}
