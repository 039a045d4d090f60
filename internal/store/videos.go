package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"reelreview/internal/video"
)

const videoColumns = "id, title, source_url, thumbnail_url, duration_ms, frame_rate, width, height, allow_downloads, created_at"

// VideoRecord is a stored asset with its registration time.
type VideoRecord struct {
	video.Asset
	CreatedAt time.Time
}

// SaveVideo inserts the asset or replaces the descriptor of an existing one.
// The registration time of an existing asset is preserved.
func (s *Store) SaveVideo(ctx context.Context, asset video.Asset) error {
	now := formatTime(time.Now())
	_, err := s.execWithRetry(ctx,
		`INSERT INTO videos (
            id, title, source_url, thumbnail_url, duration_ms, frame_rate,
            width, height, allow_downloads, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(id) DO UPDATE SET
            title = excluded.title,
            source_url = excluded.source_url,
            thumbnail_url = excluded.thumbnail_url,
            duration_ms = excluded.duration_ms,
            frame_rate = excluded.frame_rate,
            width = excluded.width,
            height = excluded.height,
            allow_downloads = excluded.allow_downloads,
            updated_at = excluded.updated_at`,
		asset.ID,
		asset.Title,
		nullableString(asset.SourceURL),
		nullableString(asset.ThumbnailURL),
		asset.DurationMs,
		asset.FrameRate,
		asset.Width,
		asset.Height,
		boolToInt(asset.AllowDownloads),
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("save video: %w", err)
	}
	return nil
}

// GetVideo fetches a video by id. A missing video returns nil without error.
func (s *Store) GetVideo(ctx context.Context, id string) (*VideoRecord, error) {
	row := s.db.QueryRowContext(ensureContext(ctx), `SELECT `+videoColumns+` FROM videos WHERE id = ?`, id)
	rec, err := scanVideo(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get video: %w", err)
	}
	return rec, nil
}

// ListVideos returns every video ordered by registration time.
func (s *Store) ListVideos(ctx context.Context) ([]*VideoRecord, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx), `SELECT `+videoColumns+` FROM videos ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list videos: %w", err)
	}
	defer rows.Close()

	var out []*VideoRecord
	for rows.Next() {
		rec, err := scanVideo(rows)
		if err != nil {
			return nil, fmt.Errorf("scan video: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// RemoveVideo deletes a video together with its comments and sessions.
func (s *Store) RemoveVideo(ctx context.Context, id string) (bool, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM videos WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("remove video: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("remove video rows: %w", err)
	}
	return affected > 0, nil
}

func scanVideo(scanner rowScanner) (*VideoRecord, error) {
	var (
		rec          VideoRecord
		sourceURL    sql.NullString
		thumbnailURL sql.NullString
		allow        int
		createdRaw   sql.NullString
	)
	if err := scanner.Scan(
		&rec.ID,
		&rec.Title,
		&sourceURL,
		&thumbnailURL,
		&rec.DurationMs,
		&rec.FrameRate,
		&rec.Width,
		&rec.Height,
		&allow,
		&createdRaw,
	); err != nil {
		return nil, err
	}
	rec.SourceURL = sourceURL.String
	rec.ThumbnailURL = thumbnailURL.String
	rec.AllowDownloads = allow != 0
	rec.CreatedAt = parseTime(createdRaw)
	return &rec, nil
}
