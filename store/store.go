package store

import (
	"context"

	"github.com/videoscope/videoscope/internal/profile"
)

// Store provides database access to all raw objects.
type Store struct {
	profile *profile.Profile
	driver  Driver
}

// New creates a new instance of Store.
func New(driver Driver, profile *profile.Profile) *Store {
	return &Store{
		driver:  driver,
		profile: profile,
	}
}

func (s *Store) GetDriver() Driver {
	return s.driver
}

func (s *Store) Migrate(ctx context.Context) error {
	return s.driver.Migrate(ctx)
}

func (s *Store) Close() error {
	return s.driver.Close()
}

func (s *Store) GetChatSession(ctx context.Context, videoID string) (*ChatSession, error) {
	return s.driver.GetChatSession(ctx, videoID)
}

func (s *Store) UpsertChatSession(ctx context.Context, upsert *ChatSession) (*ChatSession, error) {
	return s.driver.UpsertChatSession(ctx, upsert)
}

func (s *Store) DeleteChatSession(ctx context.Context, videoID string) error {
	return s.driver.DeleteChatSession(ctx, videoID)
}

func (s *Store) ListChatSessions(ctx context.Context) ([]*ChatSession, error) {
	return s.driver.ListChatSessions(ctx)
}

func (s *Store) UpsertVideo(ctx context.Context, upsert *Video) (*Video, error) {
	return s.driver.UpsertVideo(ctx, upsert)
}

func (s *Store) GetVideo(ctx context.Context, find *FindVideo) (*Video, error) {
	return s.driver.GetVideo(ctx, find)
}

func (s *Store) ListVideos(ctx context.Context) ([]*Video, error) {
	return s.driver.ListVideos(ctx)
}

func (s *Store) GetAppState(ctx context.Context, key string) (string, error) {
	return s.driver.GetAppState(ctx, key)
}

func (s *Store) SetAppState(ctx context.Context, key, value string) error {
	return s.driver.SetAppState(ctx, key, value)
}
