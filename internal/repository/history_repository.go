package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/vidstream/vidstream-api/internal/domain"
	"github.com/vidstream/vidstream-api/pkg/database"
)

// historyRepository implements HistoryRepository on Postgres.
type historyRepository struct {
	db *database.Postgres
}

// NewHistoryRepository creates a new history repository.
func NewHistoryRepository(db *database.Postgres) HistoryRepository {
	return &historyRepository{db: db}
}

// GetVideo retrieves a video by id.
func (r *historyRepository) GetVideo(ctx context.Context, videoID string) (*domain.Video, error) {
	query := `
		SELECT id, owner_id, title, url, thumbnail_url, duration_seconds, views, created_at
		FROM videos
		WHERE id = $1
	`

	video := &domain.Video{}
	err := r.db.DB.QueryRowContext(ctx, query, videoID).Scan(
		&video.ID,
		&video.OwnerID,
		&video.Title,
		&video.URL,
		&video.ThumbnailURL,
		&video.Duration,
		&video.Views,
		&video.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("video %s not found: %w", videoID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get video: %w", err)
	}

	return video, nil
}

// RecordWatch upserts the (user, video) entry, refreshing watched_at and
// bumping the video's view counter.
func (r *historyRepository) RecordWatch(ctx context.Context, userID, videoID string) error {
	query := `
		INSERT INTO watch_history (id, user_id, video_id, watched_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (user_id, video_id)
		DO UPDATE SET watched_at = NOW()
	`

	if _, err := r.db.DB.ExecContext(ctx, query, uuid.New().String(), userID, videoID); err != nil {
		return fmt.Errorf("failed to record watch: %w", err)
	}

	if _, err := r.db.DB.ExecContext(ctx, `UPDATE videos SET views = views + 1 WHERE id = $1`, videoID); err != nil {
		return fmt.Errorf("failed to bump view count: %w", err)
	}

	return nil
}

// ListHistory returns the user's watch history, most recent first, each entry
// joined with its video and the video owner's public summary.
func (r *historyRepository) ListHistory(ctx context.Context, userID string, limit, offset int) ([]domain.WatchEntry, error) {
	query := `
		SELECT v.id, v.owner_id, v.title, v.url, v.thumbnail_url, v.duration_seconds, v.views, v.created_at,
		       u.id, u.username, u.email, u.full_name, u.avatar_url, COALESCE(u.cover_image_url, ''), u.created_at, u.updated_at,
		       h.watched_at
		FROM watch_history h
		JOIN videos v ON v.id = h.video_id
		JOIN users u ON u.id = v.owner_id
		WHERE h.user_id = $1
		ORDER BY h.watched_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.DB.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list watch history: %w", err)
	}
	defer rows.Close()

	var entries []domain.WatchEntry
	for rows.Next() {
		var e domain.WatchEntry
		err := rows.Scan(
			&e.Video.ID,
			&e.Video.OwnerID,
			&e.Video.Title,
			&e.Video.URL,
			&e.Video.ThumbnailURL,
			&e.Video.Duration,
			&e.Video.Views,
			&e.Video.CreatedAt,
			&e.Owner.ID,
			&e.Owner.Username,
			&e.Owner.Email,
			&e.Owner.FullName,
			&e.Owner.AvatarURL,
			&e.Owner.CoverURL,
			&e.Owner.CreatedAt,
			&e.Owner.UpdatedAt,
			&e.WatchedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan watch entry: %w", err)
		}

		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate watch history: %w", err)
	}

	return entries, nil
}
