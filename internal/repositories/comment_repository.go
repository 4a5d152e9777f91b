// internal/repositories/comment_repository.go
package repositories

import (
	"context"
	"fmt"

	"doclib/internal/database"
	"doclib/internal/models"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

// commentRepository implements CommentRepository
type commentRepository struct {
	*BaseRepository
}

// NewCommentRepository creates a new instance of CommentRepository
func NewCommentRepository(db *database.Manager, logger *zap.Logger) CommentRepository {
	return &commentRepository{
		BaseRepository: NewBaseRepository(db, logger),
	}
}

const commentSelect = `
	SELECT c.id, c.document_id, c.user_id, c.parent_comment_id, c.content,
		c.is_deleted, c.is_edited, c.is_reported, c.created_at, c.updated_at,
		u.name
	FROM comments c
	INNER JOIN users u ON c.user_id = u.id`

func scanComment(s rowScanner) (*models.Comment, error) {
	var c models.Comment
	err := s.Scan(
		&c.ID, &c.DocumentID, &c.UserID, &c.ParentCommentID, &c.Content,
		&c.IsDeleted, &c.IsEdited, &c.IsReported, &c.CreatedAt, &c.UpdatedAt,
		&c.User.Name,
	)
	if err != nil {
		return nil, err
	}
	c.User.ID = c.UserID
	return &c, nil
}

// ===============================
// BASIC CRUD OPERATIONS
// ===============================

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	query := `
		INSERT INTO comments (document_id, user_id, parent_comment_id, content)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`

	err := r.QueryRowContext(ctx, query,
		comment.DocumentID, comment.UserID, comment.ParentCommentID, comment.Content,
	).Scan(&comment.ID, &comment.CreatedAt, &comment.UpdatedAt)
	if err != nil {
		r.GetLogger().Error("Failed to create comment",
			zap.Error(err),
			zap.Int64("user_id", comment.UserID),
			zap.Int64("document_id", comment.DocumentID),
		)
		return fmt.Errorf("failed to create comment: %w", err)
	}

	r.GetLogger().Info("Comment created successfully",
		zap.Int64("comment_id", comment.ID),
		zap.Int64("user_id", comment.UserID),
	)
	return nil
}

// GetByID retrieves a comment including soft-deleted ones
func (r *commentRepository) GetByID(ctx context.Context, id int64) (*models.Comment, error) {
	c, err := scanComment(r.QueryRowContext(ctx, commentSelect+` WHERE c.id = $1`, id))
	if err != nil {
		if r.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get comment by ID: %w", err)
	}
	return c, nil
}

func (r *commentRepository) UpdateContent(ctx context.Context, id int64, content string) error {
	res, err := r.ExecContext(ctx, `
		UPDATE comments SET content = $2, is_edited = TRUE, updated_at = NOW()
		WHERE id = $1 AND NOT is_deleted`, id, content)
	if err != nil {
		return fmt.Errorf("failed to update comment: %w", err)
	}
	return requireAffected(res)
}

func (r *commentRepository) SoftDelete(ctx context.Context, id int64) error {
	res, err := r.ExecContext(ctx, `
		UPDATE comments SET is_deleted = TRUE, updated_at = NOW()
		WHERE id = $1 AND NOT is_deleted`, id)
	if err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	return requireAffected(res)
}

// MarkReported flips the flag only once, so concurrent reports cannot both succeed
func (r *commentRepository) MarkReported(ctx context.Context, id int64) (bool, error) {
	res, err := r.ExecContext(ctx, `
		UPDATE comments SET is_reported = TRUE
		WHERE id = $1 AND NOT is_reported`, id)
	if err != nil {
		return false, fmt.Errorf("failed to report comment: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ===============================
// LISTING
// ===============================

// ListTopLevel returns one page of non-deleted top-level comments
func (r *commentRepository) ListTopLevel(ctx context.Context, documentID int64, p models.PaginationParams, newestFirst bool) ([]*models.Comment, int64, error) {
	const where = ` WHERE c.document_id = $1 AND c.parent_comment_id IS NULL AND NOT c.is_deleted`

	var total int64
	if err := r.QueryRowContext(ctx, `SELECT COUNT(*) FROM comments c`+where, documentID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count comments: %w", err)
	}

	order := "ASC"
	if newestFirst {
		order = "DESC"
	}
	query := commentSelect + where + fmt.Sprintf(` ORDER BY c.created_at %s, c.id %s LIMIT $2 OFFSET $3`, order, order)

	rows, err := r.QueryContext(ctx, query, documentID, p.Limit, p.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	comments := make([]*models.Comment, 0, p.Limit)
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, c)
	}
	return comments, total, rows.Err()
}

// ListReplies loads non-deleted replies of the given parents in one query, oldest first
func (r *commentRepository) ListReplies(ctx context.Context, parentIDs []int64) ([]*models.Comment, error) {
	if len(parentIDs) == 0 {
		return nil, nil
	}

	query := commentSelect + `
		WHERE c.parent_comment_id = ANY($1) AND NOT c.is_deleted
		ORDER BY c.created_at ASC, c.id ASC`

	rows, err := r.QueryContext(ctx, query, pq.Array(parentIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to list replies: %w", err)
	}
	defer rows.Close()

	var replies []*models.Comment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reply: %w", err)
		}
		replies = append(replies, c)
	}
	return replies, rows.Err()
}
