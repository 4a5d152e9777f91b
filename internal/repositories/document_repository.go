// internal/repositories/document_repository.go
package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"doclib/internal/database"
	"doclib/internal/models"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

// documentRepository implements DocumentRepository
type documentRepository struct {
	*BaseRepository
}

// NewDocumentRepository creates a new instance of DocumentRepository
func NewDocumentRepository(db *database.Manager, logger *zap.Logger) DocumentRepository {
	return &documentRepository{
		BaseRepository: NewBaseRepository(db, logger),
	}
}

// Rating aggregates are computed from ratings rows at read time.
const documentSelect = `
	SELECT
		d.id, d.title, d.description,
		d.file_url, d.file_name, d.file_mime_type, d.file_size, d.file_format, d.file_storage_key,
		d.thumbnail_url, d.thumbnail_storage_key,
		d.slug, d.status, d.is_public, d.is_featured, d.tags,
		d.view_count, d.download_count, d.favorite_count,
		COALESCE(rs.avg_rating, 0), rs.total,
		d.uploader_id, d.category_id, d.created_at, d.updated_at,
		c.name, c.slug, u.name
	FROM documents d
	INNER JOIN categories c ON c.id = d.category_id
	INNER JOIN users u ON u.id = d.uploader_id
	LEFT JOIN LATERAL (
		SELECT ROUND(AVG(r.score)::numeric, 1)::float8 AS avg_rating, COUNT(*) AS total
		FROM ratings r
		WHERE r.document_id = d.id
	) rs ON TRUE`

// sortColumns maps API sort fields to SQL expressions.
var sortColumns = map[string]string{
	models.SortViewCount:     "d.view_count",
	models.SortDownloadCount: "d.download_count",
	models.SortFavoriteCount: "d.favorite_count",
	models.SortAverageRating: "COALESCE(rs.avg_rating, 0)",
	models.SortCreatedAt:     "d.created_at",
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanDocument(s rowScanner) (*models.Document, error) {
	var (
		doc          models.Document
		thumbURL     sql.NullString
		thumbKey     sql.NullString
		categoryName string
		categorySlug string
		uploaderName string
		status       string
	)

	err := s.Scan(
		&doc.ID, &doc.Title, &doc.Description,
		&doc.File.URL, &doc.File.Name, &doc.File.MimeType, &doc.File.Size, &doc.File.Format, &doc.File.StorageKey,
		&thumbURL, &thumbKey,
		&doc.Slug, &status, &doc.IsPublic, &doc.IsFeatured, pq.Array(&doc.Tags),
		&doc.ViewCount, &doc.DownloadCount, &doc.FavoriteCount,
		&doc.AverageRating, &doc.TotalRatings,
		&doc.UploaderID, &doc.CategoryID, &doc.CreatedAt, &doc.UpdatedAt,
		&categoryName, &categorySlug, &uploaderName,
	)
	if err != nil {
		return nil, err
	}

	doc.Status = models.DocumentStatus(status)
	if thumbURL.Valid {
		doc.Thumbnail = &models.ThumbnailInfo{URL: thumbURL.String, StorageKey: thumbKey.String}
	}
	if doc.Tags == nil {
		doc.Tags = []string{}
	}
	doc.Category = &models.CategoryRef{ID: doc.CategoryID, Name: categoryName, Slug: categorySlug}
	doc.Uploader = &models.UserRef{ID: doc.UploaderID, Name: uploaderName}
	return &doc, nil
}

// ===============================
// BASIC CRUD OPERATIONS
// ===============================

// Create inserts a pending document
func (r *documentRepository) Create(ctx context.Context, doc *models.Document) error {
	var thumbURL, thumbKey sql.NullString
	if doc.Thumbnail != nil {
		thumbURL = sql.NullString{String: doc.Thumbnail.URL, Valid: true}
		thumbKey = sql.NullString{String: doc.Thumbnail.StorageKey, Valid: true}
	}

	query := `
		INSERT INTO documents (
			title, description,
			file_url, file_name, file_mime_type, file_size, file_format, file_storage_key,
			thumbnail_url, thumbnail_storage_key,
			slug, status, is_public, is_featured, tags,
			uploader_id, category_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING id, created_at, updated_at`

	err := r.QueryRowContext(ctx, query,
		doc.Title, doc.Description,
		doc.File.URL, doc.File.Name, doc.File.MimeType, doc.File.Size, doc.File.Format, doc.File.StorageKey,
		thumbURL, thumbKey,
		doc.Slug, string(doc.Status), doc.IsPublic, doc.IsFeatured, pq.Array(doc.Tags),
		doc.UploaderID, doc.CategoryID,
	).Scan(&doc.ID, &doc.CreatedAt, &doc.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, "documents_slug_key") {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create document: %w", err)
	}

	r.GetLogger().Info("Document created",
		zap.Int64("document_id", doc.ID),
		zap.Int64("uploader_id", doc.UploaderID),
		zap.String("slug", doc.Slug),
	)
	return nil
}

// GetByID retrieves a document with category, uploader and rating aggregates
func (r *documentRepository) GetByID(ctx context.Context, id int64) (*models.Document, error) {
	doc, err := scanDocument(r.QueryRowContext(ctx, documentSelect+" WHERE d.id = $1", id))
	if err != nil {
		if r.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get document by ID: %w", err)
	}
	return doc, nil
}

// GetBySlug retrieves a document by its unique slug
func (r *documentRepository) GetBySlug(ctx context.Context, slug string) (*models.Document, error) {
	doc, err := scanDocument(r.QueryRowContext(ctx, documentSelect+" WHERE d.slug = $1", slug))
	if err != nil {
		if r.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get document by slug: %w", err)
	}
	return doc, nil
}

// SlugExists checks slug usage, ignoring the document excludeID (0 = none)
func (r *documentRepository) SlugExists(ctx context.Context, slug string, excludeID int64) (bool, error) {
	var exists bool
	err := r.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM documents WHERE slug = $1 AND id <> $2)`,
		slug, excludeID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check slug: %w", err)
	}
	return exists, nil
}

// Update writes the editable fields of a document
func (r *documentRepository) Update(ctx context.Context, doc *models.Document) error {
	query := `
		UPDATE documents
		SET title = $2, description = $3, tags = $4, category_id = $5, slug = $6,
			is_public = $7, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.QueryRowContext(ctx, query,
		doc.ID, doc.Title, doc.Description, pq.Array(doc.Tags), doc.CategoryID, doc.Slug, doc.IsPublic,
	).Scan(&doc.UpdatedAt)
	if err != nil {
		if r.IsNotFound(err) {
			return ErrNotFound
		}
		if isUniqueViolation(err, "documents_slug_key") {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to update document: %w", err)
	}
	return nil
}

// UpdateStatus performs a compare-and-set on the moderation status.
// Leaving approved clears the featured flag.
func (r *documentRepository) UpdateStatus(ctx context.Context, id int64, from, to models.DocumentStatus, isPublic bool) (bool, error) {
	query := `
		UPDATE documents
		SET status = $3,
			is_public = $4,
			is_featured = CASE WHEN $3 = 'approved' THEN is_featured ELSE FALSE END,
			updated_at = NOW()
		WHERE id = $1 AND status = $2`

	res, err := r.ExecContext(ctx, query, id, string(from), string(to), isPublic)
	if err != nil {
		return false, fmt.Errorf("failed to update document status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	if n > 0 {
		r.GetLogger().Info("Document status changed",
			zap.Int64("document_id", id),
			zap.String("from", string(from)),
			zap.String("to", string(to)),
		)
	}
	return n > 0, nil
}

// SetFeatured toggles the featured flag
func (r *documentRepository) SetFeatured(ctx context.Context, id int64, featured bool) error {
	res, err := r.ExecContext(ctx,
		`UPDATE documents SET is_featured = $2, updated_at = NOW() WHERE id = $1`,
		id, featured,
	)
	if err != nil {
		return fmt.Errorf("failed to set featured flag: %w", err)
	}
	return requireAffected(res)
}

// Delete removes a document and every engagement row pointing at it.
func (r *documentRepository) Delete(ctx context.Context, id int64) error {
	return r.WithTransaction(ctx, func(tx *sql.Tx) error {
		for _, stmt := range []string{
			`DELETE FROM favorites WHERE document_id = $1`,
			`DELETE FROM ratings WHERE document_id = $1`,
			`DELETE FROM comments WHERE document_id = $1`,
			`DELETE FROM view_history WHERE document_id = $1`,
			`DELETE FROM download_history WHERE document_id = $1`,
		} {
			if _, err := tx.ExecContext(ctx, stmt, id); err != nil {
				return fmt.Errorf("failed to delete document engagement: %w", err)
			}
		}

		res, err := tx.ExecContext(ctx, `DELETE FROM documents WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("failed to delete document: %w", err)
		}
		return requireAffected(res)
	})
}

// ===============================
// LISTING
// ===============================

func buildDocumentWhere(q models.DocumentQuery) *whereBuilder {
	w := &whereBuilder{}

	switch q.Scope {
	case models.ScopeMine:
		w.add("d.uploader_id = ?", q.OwnerID)
	case models.ScopeAdmin:
	case models.ScopeFeatured:
		w.add("d.status = 'approved' AND d.is_public AND d.is_featured")
	default:
		w.add("d.status = 'approved' AND d.is_public")
	}

	if q.Status != nil && (q.Scope == models.ScopeMine || q.Scope == models.ScopeAdmin) {
		w.add("d.status = ?", string(*q.Status))
	}
	if q.CategoryID != nil {
		w.add("d.category_id = ?", *q.CategoryID)
	}
	if q.UploaderID != nil {
		w.add("d.uploader_id = ?", *q.UploaderID)
	}
	if q.Format != "" {
		w.add("d.file_format = ?", q.Format)
	}
	if q.Search != "" {
		p := w.nextArg("%" + escapeLike(q.Search) + "%")
		w.clauses = append(w.clauses, fmt.Sprintf(
			"(d.title ILIKE %[1]s OR d.description ILIKE %[1]s OR u.name ILIKE %[1]s"+
				" OR EXISTS (SELECT 1 FROM unnest(d.tags) AS t(tag) WHERE t.tag ILIKE %[1]s))", p))
	}

	column := "d.created_at"
	if q.DateField == "updatedAt" {
		column = "d.updated_at"
	}
	if q.StartDate != nil {
		w.add(column+" >= ?", *q.StartDate)
	}
	if q.EndDate != nil {
		w.add(column+" <= ?", *q.EndDate)
	}
	return w
}

// List returns one page of documents matching q
func (r *documentRepository) List(ctx context.Context, q models.DocumentQuery) ([]*models.Document, error) {
	w := buildDocumentWhere(q)

	sortExpr, ok := sortColumns[q.SortField]
	if !ok {
		sortExpr = sortColumns[models.SortCreatedAt]
	}
	direction := "ASC"
	if q.SortDesc {
		direction = "DESC"
	}

	var sb strings.Builder
	sb.WriteString(documentSelect)
	sb.WriteString(w.sql())
	fmt.Fprintf(&sb, " ORDER BY %s %s, d.id %s", sortExpr, direction, direction)
	fmt.Fprintf(&sb, " LIMIT %s OFFSET %s", w.nextArg(q.Pagination.Limit), w.nextArg(q.Pagination.Offset()))

	rows, err := r.QueryContext(ctx, sb.String(), w.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	docs := make([]*models.Document, 0, q.Pagination.Limit)
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// Count returns the number of documents matching q
func (r *documentRepository) Count(ctx context.Context, q models.DocumentQuery) (int64, error) {
	w := buildDocumentWhere(q)
	query := `SELECT COUNT(*) FROM documents d INNER JOIN users u ON u.id = d.uploader_id` + w.sql()

	var total int64
	if err := r.QueryRowContext(ctx, query, w.args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count documents: %w", err)
	}
	return total, nil
}
