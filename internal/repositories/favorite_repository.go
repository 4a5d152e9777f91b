package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"doclib/internal/database"
	"doclib/internal/models"

	"go.uber.org/zap"
)

// favoriteRepository implements FavoriteRepository
type favoriteRepository struct {
	*BaseRepository
}

// NewFavoriteRepository creates a new instance of FavoriteRepository
func NewFavoriteRepository(db *database.Manager, logger *zap.Logger) FavoriteRepository {
	return &favoriteRepository{
		BaseRepository: NewBaseRepository(db, logger),
	}
}

// Toggle removes an existing favorite or adds a new one. The user row is
// locked so concurrent toggles by one user cannot overshoot the limit, and
// the membership change and counter update commit together.
func (r *favoriteRepository) Toggle(ctx context.Context, userID, documentID int64, limit int) (*models.FavoriteToggleResult, error) {
	result := &models.FavoriteToggleResult{}

	err := r.WithTransaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `SELECT 1 FROM users WHERE id = $1 FOR UPDATE`, userID); err != nil {
			return fmt.Errorf("failed to lock user: %w", err)
		}

		res, err := tx.ExecContext(ctx,
			`DELETE FROM favorites WHERE user_id = $1 AND document_id = $2`, userID, documentID)
		if err != nil {
			return fmt.Errorf("failed to remove favorite: %w", err)
		}
		removed, err := res.RowsAffected()
		if err != nil {
			return err
		}

		if removed > 0 {
			result.IsFavorite = false
			return tx.QueryRowContext(ctx, `
				UPDATE documents SET favorite_count = GREATEST(favorite_count - 1, 0)
				WHERE id = $1
				RETURNING favorite_count`, documentID).Scan(&result.FavoriteCount)
		}

		var count int64
		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM favorites WHERE user_id = $1`, userID).Scan(&count); err != nil {
			return fmt.Errorf("failed to count favorites: %w", err)
		}
		if count >= int64(limit) {
			return ErrLimitExceeded
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO favorites (user_id, document_id) VALUES ($1, $2)`, userID, documentID); err != nil {
			return fmt.Errorf("failed to add favorite: %w", err)
		}

		result.IsFavorite = true
		return tx.QueryRowContext(ctx, `
			UPDATE documents SET favorite_count = favorite_count + 1
			WHERE id = $1
			RETURNING favorite_count`, documentID).Scan(&result.FavoriteCount)
	})
	if err != nil {
		if r.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	r.GetLogger().Debug("Favorite toggled",
		zap.Int64("user_id", userID),
		zap.Int64("document_id", documentID),
		zap.Bool("is_favorite", result.IsFavorite),
	)
	return result, nil
}

func (r *favoriteRepository) Exists(ctx context.Context, userID, documentID int64) (bool, error) {
	var exists bool
	err := r.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM favorites WHERE user_id = $1 AND document_id = $2)`,
		userID, documentID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check favorite: %w", err)
	}
	return exists, nil
}

// ListByUser returns favorited documents that are still publicly visible, newest favorite first
func (r *favoriteRepository) ListByUser(ctx context.Context, userID int64, p models.PaginationParams) ([]*models.Document, int64, error) {
	const visible = ` WHERE f.user_id = $1 AND d.status = 'approved' AND d.is_public`

	var total int64
	if err := r.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM favorites f INNER JOIN documents d ON d.id = f.document_id`+visible,
		userID,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count favorites: %w", err)
	}

	query := documentSelect + ` INNER JOIN favorites f ON f.document_id = d.id` + visible +
		` ORDER BY f.created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.QueryContext(ctx, query, userID, p.Limit, p.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list favorites: %w", err)
	}
	defer rows.Close()

	docs := make([]*models.Document, 0, p.Limit)
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan favorite: %w", err)
		}
		docs = append(docs, doc)
	}
	return docs, total, rows.Err()
}
