package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"doclib/internal/database"
	"doclib/internal/models"

	"go.uber.org/zap"
)

// categoryRepository implements CategoryRepository
type categoryRepository struct {
	*BaseRepository
}

// NewCategoryRepository creates a new instance of CategoryRepository
func NewCategoryRepository(db *database.Manager, logger *zap.Logger) CategoryRepository {
	return &categoryRepository{
		BaseRepository: NewBaseRepository(db, logger),
	}
}

func (r *categoryRepository) Create(ctx context.Context, c *models.Category) error {
	query := `
		INSERT INTO categories (name, slug, description)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`

	err := r.QueryRowContext(ctx, query, c.Name, c.Slug, c.Description).
		Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, "") {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create category: %w", err)
	}
	return nil
}

func (r *categoryRepository) Update(ctx context.Context, c *models.Category) error {
	query := `
		UPDATE categories SET name = $2, slug = $3, description = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.QueryRowContext(ctx, query, c.ID, c.Name, c.Slug, c.Description).Scan(&c.UpdatedAt)
	if err != nil {
		if r.IsNotFound(err) {
			return ErrNotFound
		}
		if isUniqueViolation(err, "") {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to update category: %w", err)
	}
	return nil
}

// Delete refuses while any document references the category. The check and
// delete share a transaction holding a row lock on the category.
func (r *categoryRepository) Delete(ctx context.Context, id int64) error {
	return r.WithTransaction(ctx, func(tx *sql.Tx) error {
		var locked int64
		err := tx.QueryRowContext(ctx, `SELECT id FROM categories WHERE id = $1 FOR UPDATE`, id).Scan(&locked)
		if err != nil {
			if r.IsNotFound(err) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to lock category: %w", err)
		}

		var inUse bool
		if err := tx.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM documents WHERE category_id = $1)`, id,
		).Scan(&inUse); err != nil {
			return fmt.Errorf("failed to check category usage: %w", err)
		}
		if inUse {
			return ErrInUse
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id); err != nil {
			return fmt.Errorf("failed to delete category: %w", err)
		}
		return nil
	})
}

const categorySelect = `
	SELECT c.id, c.name, c.slug, c.description, c.created_at, c.updated_at,
		(SELECT COUNT(*) FROM documents d WHERE d.category_id = c.id) AS document_count
	FROM categories c`

func scanCategory(s rowScanner) (*models.Category, error) {
	var c models.Category
	if err := s.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.CreatedAt, &c.UpdatedAt, &c.DocumentCount); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *categoryRepository) GetByID(ctx context.Context, id int64) (*models.Category, error) {
	c, err := scanCategory(r.QueryRowContext(ctx, categorySelect+` WHERE c.id = $1`, id))
	if err != nil {
		if r.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return c, nil
}

func (r *categoryRepository) GetBySlug(ctx context.Context, slug string) (*models.Category, error) {
	c, err := scanCategory(r.QueryRowContext(ctx, categorySelect+` WHERE c.slug = $1`, slug))
	if err != nil {
		if r.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get category by slug: %w", err)
	}
	return c, nil
}

func (r *categoryRepository) List(ctx context.Context) ([]*models.Category, error) {
	rows, err := r.QueryContext(ctx, categorySelect+` ORDER BY c.name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var out []*models.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
