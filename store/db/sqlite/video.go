package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"

	"github.com/videoscope/videoscope/store"
)

// UpsertVideo inserts a video, or refreshes the record registered at the
// same path. The existing id is kept on path conflict.
func (d *DB) UpsertVideo(ctx context.Context, upsert *store.Video) (*store.Video, error) {
	now := time.Now().Unix()
	stmt := `
		INSERT INTO video (id, name, path, size_bytes, created_ts, updated_ts)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (path) DO UPDATE SET
			name = excluded.name,
			size_bytes = excluded.size_bytes,
			updated_ts = excluded.updated_ts
		RETURNING id, name, path, size_bytes, created_ts, updated_ts
	`
	var video store.Video
	err := d.db.QueryRowContext(ctx, stmt,
		upsert.ID,
		upsert.Name,
		upsert.Path,
		upsert.SizeBytes,
		now,
		now,
	).Scan(
		&video.ID,
		&video.Name,
		&video.Path,
		&video.SizeBytes,
		&video.CreatedTs,
		&video.UpdatedTs,
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to upsert video")
	}
	return &video, nil
}

// GetVideo returns the first match for the find filter, or nil when none exists.
func (d *DB) GetVideo(ctx context.Context, find *store.FindVideo) (*store.Video, error) {
	where, args := []string{"1 = 1"}, []any{}
	if find.ID != nil {
		where, args = append(where, "id = ?"), append(args, *find.ID)
	}
	if find.Path != nil {
		where, args = append(where, "path = ?"), append(args, *find.Path)
	}
	if len(where) == 1 {
		return nil, errors.New("find filter required")
	}

	query := `SELECT id, name, path, size_bytes, created_ts, updated_ts FROM video WHERE ` + where[0]
	for _, cond := range where[1:] {
		query += " AND " + cond
	}

	var video store.Video
	err := d.db.QueryRowContext(ctx, query, args...).Scan(
		&video.ID,
		&video.Name,
		&video.Path,
		&video.SizeBytes,
		&video.CreatedTs,
		&video.UpdatedTs,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get video")
	}
	return &video, nil
}

// ListVideos lists all registered videos, most recently registered first.
func (d *DB) ListVideos(ctx context.Context) ([]*store.Video, error) {
	stmt := `SELECT id, name, path, size_bytes, created_ts, updated_ts FROM video ORDER BY created_ts DESC`
	rows, err := d.db.QueryContext(ctx, stmt)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list videos")
	}
	defer rows.Close()

	var videos []*store.Video
	for rows.Next() {
		var video store.Video
		if err := rows.Scan(
			&video.ID,
			&video.Name,
			&video.Path,
			&video.SizeBytes,
			&video.CreatedTs,
			&video.UpdatedTs,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan video")
		}
		videos = append(videos, &video)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate videos")
	}
	return videos, nil
}
