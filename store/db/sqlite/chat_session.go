package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/pkg/errors"

	"github.com/videoscope/videoscope/store"
)

// GetChatSession returns the session for a video, or nil when none exists.
func (d *DB) GetChatSession(ctx context.Context, videoID string) (*store.ChatSession, error) {
	stmt := `
		SELECT video_id, video_name, video_path, conversation_summary, recent_messages, total_messages, created_ts, updated_ts
		FROM chat_session
		WHERE video_id = ?
	`
	session, err := scanChatSession(d.db.QueryRowContext(ctx, stmt, videoID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get chat session")
	}
	return session, nil
}

// UpsertChatSession inserts or replaces the session for a video.
func (d *DB) UpsertChatSession(ctx context.Context, upsert *store.ChatSession) (*store.ChatSession, error) {
	messagesJSON, err := json.Marshal(upsert.RecentMessages)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal recent messages")
	}
	if upsert.RecentMessages == nil {
		messagesJSON = []byte("[]")
	}

	now := time.Now().Unix()
	stmt := `
		INSERT INTO chat_session (video_id, video_name, video_path, conversation_summary, recent_messages, total_messages, created_ts, updated_ts)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (video_id) DO UPDATE SET
			video_name = excluded.video_name,
			video_path = excluded.video_path,
			conversation_summary = excluded.conversation_summary,
			recent_messages = excluded.recent_messages,
			total_messages = excluded.total_messages,
			updated_ts = excluded.updated_ts
		RETURNING video_id, video_name, video_path, conversation_summary, recent_messages, total_messages, created_ts, updated_ts
	`
	session, err := scanChatSession(d.db.QueryRowContext(ctx, stmt,
		upsert.VideoID,
		upsert.VideoName,
		upsert.VideoPath,
		upsert.ConversationSummary,
		string(messagesJSON),
		upsert.TotalMessages,
		now,
		now,
	))
	if err != nil {
		return nil, errors.Wrap(err, "failed to upsert chat session")
	}
	return session, nil
}

// DeleteChatSession removes the session for a video.
func (d *DB) DeleteChatSession(ctx context.Context, videoID string) error {
	stmt := `DELETE FROM chat_session WHERE video_id = ?`
	if _, err := d.db.ExecContext(ctx, stmt, videoID); err != nil {
		return errors.Wrap(err, "failed to delete chat session")
	}
	return nil
}

// ListChatSessions lists all sessions, most recently updated first.
func (d *DB) ListChatSessions(ctx context.Context) ([]*store.ChatSession, error) {
	stmt := `
		SELECT video_id, video_name, video_path, conversation_summary, recent_messages, total_messages, created_ts, updated_ts
		FROM chat_session
		ORDER BY updated_ts DESC
	`
	rows, err := d.db.QueryContext(ctx, stmt)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list chat sessions")
	}
	defer rows.Close()

	var sessions []*store.ChatSession
	for rows.Next() {
		session, err := scanChatSession(rows)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan chat session")
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate chat sessions")
	}
	return sessions, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanChatSession(row rowScanner) (*store.ChatSession, error) {
	var session store.ChatSession
	var messagesJSON string
	if err := row.Scan(
		&session.VideoID,
		&session.VideoName,
		&session.VideoPath,
		&session.ConversationSummary,
		&messagesJSON,
		&session.TotalMessages,
		&session.CreatedTs,
		&session.UpdatedTs,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(messagesJSON), &session.RecentMessages); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal recent messages")
	}
	return &session, nil
}
