package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"doclib/internal/database"
	"doclib/internal/models"

	"go.uber.org/zap"
)

// historyRepository implements HistoryRepository
type historyRepository struct {
	*BaseRepository
}

// NewHistoryRepository creates a new instance of HistoryRepository
func NewHistoryRepository(db *database.Manager, logger *zap.Logger) HistoryRepository {
	return &historyRepository{
		BaseRepository: NewBaseRepository(db, logger),
	}
}

func (r *historyRepository) RecordView(ctx context.Context, documentID int64, userID *int64) error {
	return r.WithTransaction(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE documents SET view_count = view_count + 1 WHERE id = $1`, documentID)
		if err != nil {
			return fmt.Errorf("failed to increment view count: %w", err)
		}
		if err := requireAffected(res); err != nil {
			return err
		}
		if userID == nil {
			return nil
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO view_history (user_id, document_id, viewed_at)
			VALUES ($1, $2, NOW())
			ON CONFLICT (user_id, document_id) DO UPDATE SET viewed_at = EXCLUDED.viewed_at`,
			*userID, documentID)
		if err != nil {
			return fmt.Errorf("failed to record view history: %w", err)
		}
		return nil
	})
}

func (r *historyRepository) RecordDownload(ctx context.Context, documentID int64, userID *int64, ip, device string) error {
	return r.WithTransaction(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE documents SET download_count = download_count + 1 WHERE id = $1`, documentID)
		if err != nil {
			return fmt.Errorf("failed to increment download count: %w", err)
		}
		if err := requireAffected(res); err != nil {
			return err
		}
		if userID == nil {
			return nil
		}

		// Only the most recent download per (user, document) is kept.
		_, err = tx.ExecContext(ctx, `
			INSERT INTO download_history (user_id, document_id, downloaded_at, ip_address, device_info)
			VALUES ($1, $2, NOW(), $3, $4)
			ON CONFLICT (user_id, document_id) DO UPDATE
			SET downloaded_at = EXCLUDED.downloaded_at,
				ip_address = EXCLUDED.ip_address,
				device_info = EXCLUDED.device_info`,
			*userID, documentID, ip, device)
		if err != nil {
			return fmt.Errorf("failed to record download history: %w", err)
		}
		return nil
	})
}

func (r *historyRepository) ListViews(ctx context.Context, userID int64, p models.PaginationParams) ([]*models.ViewHistory, int64, error) {
	var total int64
	if err := r.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM view_history WHERE user_id = $1`, userID,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count view history: %w", err)
	}

	rows, err := r.QueryContext(ctx, `
		SELECT h.user_id, h.document_id, h.viewed_at, d.title, d.slug
		FROM view_history h
		INNER JOIN documents d ON d.id = h.document_id
		WHERE h.user_id = $1
		ORDER BY h.viewed_at DESC
		LIMIT $2 OFFSET $3`, userID, p.Limit, p.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list view history: %w", err)
	}
	defer rows.Close()

	out := make([]*models.ViewHistory, 0, p.Limit)
	for rows.Next() {
		var h models.ViewHistory
		if err := rows.Scan(&h.UserID, &h.DocumentID, &h.ViewedAt, &h.Document.Title, &h.Document.Slug); err != nil {
			return nil, 0, fmt.Errorf("failed to scan view history: %w", err)
		}
		h.Document.ID = h.DocumentID
		out = append(out, &h)
	}
	return out, total, rows.Err()
}

func (r *historyRepository) ListDownloads(ctx context.Context, userID int64, p models.PaginationParams) ([]*models.DownloadHistory, int64, error) {
	var total int64
	if err := r.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM download_history WHERE user_id = $1`, userID,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count download history: %w", err)
	}

	rows, err := r.QueryContext(ctx, `
		SELECT h.user_id, h.document_id, h.downloaded_at, h.ip_address, h.device_info, d.title, d.slug
		FROM download_history h
		INNER JOIN documents d ON d.id = h.document_id
		WHERE h.user_id = $1
		ORDER BY h.downloaded_at DESC
		LIMIT $2 OFFSET $3`, userID, p.Limit, p.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list download history: %w", err)
	}
	defer rows.Close()

	out := make([]*models.DownloadHistory, 0, p.Limit)
	for rows.Next() {
		var h models.DownloadHistory
		if err := rows.Scan(&h.UserID, &h.DocumentID, &h.DownloadedAt, &h.IPAddress, &h.DeviceInfo,
			&h.Document.Title, &h.Document.Slug); err != nil {
			return nil, 0, fmt.Errorf("failed to scan download history: %w", err)
		}
		h.Document.ID = h.DocumentID
		out = append(out, &h)
	}
	return out, total, rows.Err()
}
