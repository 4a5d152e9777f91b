//go:build integration

package repositories

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"doclib/internal/config"
	"doclib/internal/database"
	"doclib/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"go.uber.org/zap"
)

func setupCollection(t *testing.T) *Collection {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("doclib"),
		tcpostgres.WithUsername("doclib"),
		tcpostgres.WithPassword("doclib"),
		tcpostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = testcontainers.TerminateContainer(container)
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	cfg := &config.DatabaseConfig{
		URL:                dsn,
		MaxOpenConns:       10,
		MaxIdleConns:       5,
		ConnMaxLifetime:    time.Minute,
		SlowQueryThreshold: time.Second,
		ConnectTimeout:     10 * time.Second,
	}
	db, err := database.NewManager(cfg, zap.NewNop(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	migrations, err := filepath.Abs("../../migrations")
	require.NoError(t, err)
	require.NoError(t, db.Migrate(migrations))

	c, err := NewCollection(db, zap.NewNop())
	require.NoError(t, err)
	return c
}

func seedUser(t *testing.T, c *Collection, email string) *models.User {
	t.Helper()
	u := &models.User{Name: "User " + email, Email: email, PasswordHash: "x", Role: models.RoleMember}
	require.NoError(t, c.User.Create(context.Background(), u))
	return u
}

func seedDocument(t *testing.T, c *Collection, uploader, category int64, slug string) *models.Document {
	t.Helper()
	doc := &models.Document{
		Title:       "Doc " + slug,
		Description: "about " + slug,
		File:        models.FileInfo{URL: "/uploads/" + slug, Name: slug + ".pdf", MimeType: "application/pdf", Size: 10, Format: "pdf", StorageKey: slug},
		Slug:        slug,
		Status:      models.StatusPending,
		IsPublic:    true,
		Tags:        []string{"go", "db"},
		UploaderID:  uploader,
		CategoryID:  category,
	}
	require.NoError(t, c.Document.Create(context.Background(), doc))
	return doc
}

func TestRepositories_Postgres(t *testing.T) {
	if testing.Short() {
		t.Skip("integration test")
	}
	c := setupCollection(t)
	ctx := context.Background()

	owner := seedUser(t, c, "owner@example.com")
	reader := seedUser(t, c, "reader@example.com")
	cat := &models.Category{Name: "Guides", Slug: "guides"}
	require.NoError(t, c.Category.Create(ctx, cat))

	t.Run("duplicate slug is rejected", func(t *testing.T) {
		seedDocument(t, c, owner.ID, cat.ID, "dup")
		err := c.Document.Create(ctx, &models.Document{
			Title: "again", File: models.FileInfo{Format: "pdf"}, Slug: "dup",
			Status: models.StatusPending, UploaderID: owner.ID, CategoryID: cat.ID,
		})
		assert.ErrorIs(t, err, ErrDuplicate)
	})

	t.Run("status compare and set", func(t *testing.T) {
		doc := seedDocument(t, c, owner.ID, cat.ID, "cas")

		ok, err := c.Document.UpdateStatus(ctx, doc.ID, models.StatusPending, models.StatusApproved, true)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = c.Document.UpdateStatus(ctx, doc.ID, models.StatusPending, models.StatusRejected, false)
		require.NoError(t, err)
		assert.False(t, ok)

		got, err := c.Document.GetByID(ctx, doc.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusApproved, got.Status)
		assert.Equal(t, []string{"go", "db"}, got.Tags)
	})

	t.Run("favorite toggle respects limit", func(t *testing.T) {
		a := seedDocument(t, c, owner.ID, cat.ID, "fav-a")
		b := seedDocument(t, c, owner.ID, cat.ID, "fav-b")

		res, err := c.Favorite.Toggle(ctx, reader.ID, a.ID, 1)
		require.NoError(t, err)
		assert.True(t, res.IsFavorite)
		assert.EqualValues(t, 1, res.FavoriteCount)

		_, err = c.Favorite.Toggle(ctx, reader.ID, b.ID, 1)
		assert.ErrorIs(t, err, ErrLimitExceeded)

		res, err = c.Favorite.Toggle(ctx, reader.ID, a.ID, 1)
		require.NoError(t, err)
		assert.False(t, res.IsFavorite)
		assert.EqualValues(t, 0, res.FavoriteCount)
	})

	t.Run("concurrent favorites never exceed the limit", func(t *testing.T) {
		u := seedUser(t, c, "racer@example.com")
		var docs []*models.Document
		for i := 0; i < 5; i++ {
			docs = append(docs, seedDocument(t, c, owner.ID, cat.ID, fmt.Sprintf("race-%d", i)))
		}

		var wg sync.WaitGroup
		for _, d := range docs {
			wg.Add(1)
			go func(id int64) {
				defer wg.Done()
				_, _ = c.Favorite.Toggle(ctx, u.ID, id, 3)
			}(d.ID)
		}
		wg.Wait()

		var n int
		require.NoError(t, c.GetDB().QueryRowContext(ctx,
			`SELECT COUNT(*) FROM favorites WHERE user_id = $1`, u.ID).Scan(&n))
		assert.Equal(t, 3, n)
	})

	t.Run("rating upsert and distribution", func(t *testing.T) {
		doc := seedDocument(t, c, owner.ID, cat.ID, "rated")

		created, err := c.Rating.Upsert(ctx, &models.Rating{UserID: reader.ID, DocumentID: doc.ID, Score: 4})
		require.NoError(t, err)
		assert.True(t, created)

		created, err = c.Rating.Upsert(ctx, &models.Rating{UserID: reader.ID, DocumentID: doc.ID, Score: 2})
		require.NoError(t, err)
		assert.False(t, created)

		count, sum, err := c.Rating.Stats(ctx, doc.ID)
		require.NoError(t, err)
		assert.EqualValues(t, 1, count)
		assert.EqualValues(t, 2, sum)

		dist, err := c.Rating.Distribution(ctx, doc.ID)
		require.NoError(t, err)
		assert.Equal(t, map[int]int64{2: 1}, dist)
	})

	t.Run("delete cascades engagement", func(t *testing.T) {
		doc := seedDocument(t, c, owner.ID, cat.ID, "cascade")
		_, err := c.Favorite.Toggle(ctx, reader.ID, doc.ID, 100)
		require.NoError(t, err)
		require.NoError(t, c.History.RecordView(ctx, doc.ID, &reader.ID))
		require.NoError(t, c.Comment.Create(ctx, &models.Comment{DocumentID: doc.ID, UserID: reader.ID, Content: "hi"}))

		require.NoError(t, c.Document.Delete(ctx, doc.ID))

		for _, table := range []string{"favorites", "view_history", "comments"} {
			var n int
			require.NoError(t, c.GetDB().QueryRowContext(ctx,
				`SELECT COUNT(*) FROM `+table+` WHERE document_id = $1`, doc.ID).Scan(&n))
			assert.Zero(t, n, table)
		}
	})

	t.Run("category in use cannot be deleted", func(t *testing.T) {
		assert.ErrorIs(t, c.Category.Delete(ctx, cat.ID), ErrInUse)
	})

	t.Run("search matches tags and uploader", func(t *testing.T) {
		doc := seedDocument(t, c, owner.ID, cat.ID, "searchable")
		_, err := c.Document.UpdateStatus(ctx, doc.ID, models.StatusPending, models.StatusApproved, true)
		require.NoError(t, err)

		q := models.DocumentQuery{
			Scope:      models.ScopePublic,
			Search:     "DB",
			SortField:  models.SortCreatedAt,
			SortDesc:   true,
			Pagination: models.NewPaginationParams(1, 50),
		}
		docs, err := c.Document.List(ctx, q)
		require.NoError(t, err)
		total, err := c.Document.Count(ctx, q)
		require.NoError(t, err)
		assert.EqualValues(t, len(docs), total)
		assert.NotEmpty(t, docs)
	})
}
