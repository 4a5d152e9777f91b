package repositories

import (
	"context"
	"fmt"

	"doclib/internal/database"
	"doclib/internal/models"

	"go.uber.org/zap"
)

// ratingRepository implements RatingRepository
type ratingRepository struct {
	*BaseRepository
}

// NewRatingRepository creates a new instance of RatingRepository
func NewRatingRepository(db *database.Manager, logger *zap.Logger) RatingRepository {
	return &ratingRepository{
		BaseRepository: NewBaseRepository(db, logger),
	}
}

// Upsert relies on the (user_id, document_id) unique key; xmax = 0 only
// holds for a freshly inserted tuple.
func (r *ratingRepository) Upsert(ctx context.Context, rating *models.Rating) (bool, error) {
	query := `
		INSERT INTO ratings (user_id, document_id, score, review)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, document_id)
		DO UPDATE SET score = EXCLUDED.score, review = EXCLUDED.review, updated_at = NOW()
		RETURNING id, created_at, updated_at, (xmax = 0) AS inserted`

	var inserted bool
	err := r.QueryRowContext(ctx, query, rating.UserID, rating.DocumentID, rating.Score, rating.Review).
		Scan(&rating.ID, &rating.CreatedAt, &rating.UpdatedAt, &inserted)
	if err != nil {
		return false, fmt.Errorf("failed to upsert rating: %w", err)
	}
	return inserted, nil
}

func (r *ratingRepository) Get(ctx context.Context, userID, documentID int64) (*models.Rating, error) {
	query := `
		SELECT r.id, r.user_id, r.document_id, r.score, r.review, r.created_at, r.updated_at, u.name
		FROM ratings r
		INNER JOIN users u ON u.id = r.user_id
		WHERE r.user_id = $1 AND r.document_id = $2`

	rating := &models.Rating{User: &models.UserRef{}}
	err := r.QueryRowContext(ctx, query, userID, documentID).Scan(
		&rating.ID, &rating.UserID, &rating.DocumentID, &rating.Score, &rating.Review,
		&rating.CreatedAt, &rating.UpdatedAt, &rating.User.Name,
	)
	if err != nil {
		if r.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get rating: %w", err)
	}
	rating.User.ID = rating.UserID
	return rating, nil
}

func (r *ratingRepository) Delete(ctx context.Context, userID, documentID int64) error {
	res, err := r.ExecContext(ctx,
		`DELETE FROM ratings WHERE user_id = $1 AND document_id = $2`, userID, documentID)
	if err != nil {
		return fmt.Errorf("failed to delete rating: %w", err)
	}
	return requireAffected(res)
}

func (r *ratingRepository) Stats(ctx context.Context, documentID int64) (int64, int64, error) {
	var count, sum int64
	err := r.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(score), 0) FROM ratings WHERE document_id = $1`, documentID,
	).Scan(&count, &sum)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to aggregate ratings: %w", err)
	}
	return count, sum, nil
}

// UpdateAggregate stores the denormalized average without touching updated_at.
func (r *ratingRepository) UpdateAggregate(ctx context.Context, documentID int64, agg models.RatingAggregate) error {
	res, err := r.ExecContext(ctx,
		`UPDATE documents SET average_rating = $2, total_ratings = $3 WHERE id = $1`,
		documentID, agg.AverageRating, agg.TotalRatings,
	)
	if err != nil {
		return fmt.Errorf("failed to store rating aggregate: %w", err)
	}
	return requireAffected(res)
}

func (r *ratingRepository) Distribution(ctx context.Context, documentID int64) (map[int]int64, error) {
	rows, err := r.QueryContext(ctx,
		`SELECT score, COUNT(*) FROM ratings WHERE document_id = $1 GROUP BY score`, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load rating distribution: %w", err)
	}
	defer rows.Close()

	out := make(map[int]int64, 5)
	for rows.Next() {
		var score int
		var count int64
		if err := rows.Scan(&score, &count); err != nil {
			return nil, err
		}
		out[score] = count
	}
	return out, rows.Err()
}

func (r *ratingRepository) ListByDocument(ctx context.Context, documentID int64, p models.PaginationParams) ([]*models.Rating, int64, error) {
	var total int64
	if err := r.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM ratings WHERE document_id = $1`, documentID,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count ratings: %w", err)
	}

	query := `
		SELECT r.id, r.user_id, r.document_id, r.score, r.review, r.created_at, r.updated_at, u.name
		FROM ratings r
		INNER JOIN users u ON u.id = r.user_id
		WHERE r.document_id = $1
		ORDER BY r.updated_at DESC, r.id DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.QueryContext(ctx, query, documentID, p.Limit, p.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list ratings: %w", err)
	}
	defer rows.Close()

	out := make([]*models.Rating, 0, p.Limit)
	for rows.Next() {
		rating := &models.Rating{User: &models.UserRef{}}
		if err := rows.Scan(
			&rating.ID, &rating.UserID, &rating.DocumentID, &rating.Score, &rating.Review,
			&rating.CreatedAt, &rating.UpdatedAt, &rating.User.Name,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan rating: %w", err)
		}
		rating.User.ID = rating.UserID
		out = append(out, rating)
	}
	return out, total, rows.Err()
}
