package store

import (
	"context"
	"database/sql"
)

// App state keys.
const (
	AppStateLastVideoID = "last_active_video_id"
)

// Driver is an interface for database drivers.
type Driver interface {
	GetDB() *sql.DB
	Migrate(ctx context.Context) error
	Close() error

	// ChatSession model related methods.
	GetChatSession(ctx context.Context, videoID string) (*ChatSession, error)
	UpsertChatSession(ctx context.Context, upsert *ChatSession) (*ChatSession, error)
	DeleteChatSession(ctx context.Context, videoID string) error
	ListChatSessions(ctx context.Context) ([]*ChatSession, error)

	// Video model related methods.
	UpsertVideo(ctx context.Context, upsert *Video) (*Video, error)
	GetVideo(ctx context.Context, find *FindVideo) (*Video, error)
	ListVideos(ctx context.Context) ([]*Video, error)

	// App state related methods. GetAppState returns "" when the key is unset.
	GetAppState(ctx context.Context, key string) (string, error)
	SetAppState(ctx context.Context, key, value string) error
}
