package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/videoscope/videoscope/internal/profile"
	"github.com/videoscope/videoscope/store"
)

func newTestDriver(t *testing.T) store.Driver {
	t.Helper()
	p := &profile.Profile{
		Driver: "sqlite",
		DSN:    filepath.Join(t.TempDir(), "videoscope_test.db"),
	}
	driver, err := NewDB(p)
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	t.Cleanup(func() { driver.Close() })
	if err := driver.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return driver
}

func TestChatSessionRoundTrip(t *testing.T) {
	driver := newTestDriver(t)
	ctx := context.Background()

	got, err := driver.GetChatSession(ctx, "vid-1")
	if err != nil {
		t.Fatalf("GetChatSession: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil session for unknown video, got %+v", got)
	}

	session := &store.ChatSession{
		VideoID:             "vid-1",
		VideoName:           "demo.mp4",
		VideoPath:           "/videos/demo.mp4",
		ConversationSummary: "talked about cars",
		RecentMessages: []store.ChatMessage{
			{Role: store.RoleUser, Content: "what cars appear?", Timestamp: 100},
			{Role: store.RoleAssistant, Content: "two sedans", Timestamp: 101},
		},
		TotalMessages: 2,
	}
	saved, err := driver.UpsertChatSession(ctx, session)
	if err != nil {
		t.Fatalf("UpsertChatSession: %v", err)
	}
	if saved.CreatedTs == 0 || saved.UpdatedTs == 0 {
		t.Error("expected timestamps to be set on upsert")
	}

	got, err = driver.GetChatSession(ctx, "vid-1")
	if err != nil {
		t.Fatalf("GetChatSession: %v", err)
	}
	if got == nil {
		t.Fatal("expected saved session")
	}
	if got.TotalMessages != 2 {
		t.Errorf("TotalMessages = %d, want 2", got.TotalMessages)
	}
	if len(got.RecentMessages) != 2 {
		t.Fatalf("RecentMessages len = %d, want 2", len(got.RecentMessages))
	}
	if got.RecentMessages[0].Content != "what cars appear?" {
		t.Errorf("unexpected first message %q", got.RecentMessages[0].Content)
	}
	if got.ConversationSummary != "talked about cars" {
		t.Errorf("unexpected summary %q", got.ConversationSummary)
	}

	session.TotalMessages = 3
	session.RecentMessages = append(session.RecentMessages, store.ChatMessage{
		Role: store.RoleUser, Content: "anything else?", Timestamp: 102,
	})
	if _, err := driver.UpsertChatSession(ctx, session); err != nil {
		t.Fatalf("UpsertChatSession update: %v", err)
	}
	got, err = driver.GetChatSession(ctx, "vid-1")
	if err != nil {
		t.Fatalf("GetChatSession: %v", err)
	}
	if got.TotalMessages != 3 || len(got.RecentMessages) != 3 {
		t.Errorf("update not applied: total=%d recent=%d", got.TotalMessages, len(got.RecentMessages))
	}

	if err := driver.DeleteChatSession(ctx, "vid-1"); err != nil {
		t.Fatalf("DeleteChatSession: %v", err)
	}
	got, err = driver.GetChatSession(ctx, "vid-1")
	if err != nil {
		t.Fatalf("GetChatSession after delete: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil session after delete, got %+v", got)
	}
}

func TestChatSessionEmptyMessages(t *testing.T) {
	driver := newTestDriver(t)
	ctx := context.Background()

	saved, err := driver.UpsertChatSession(ctx, &store.ChatSession{VideoID: "vid-empty"})
	if err != nil {
		t.Fatalf("UpsertChatSession: %v", err)
	}
	if len(saved.RecentMessages) != 0 {
		t.Errorf("expected empty messages, got %d", len(saved.RecentMessages))
	}
}

func TestVideoRegistry(t *testing.T) {
	driver := newTestDriver(t)
	ctx := context.Background()

	video, err := driver.UpsertVideo(ctx, &store.Video{
		ID:        "vid-1",
		Name:      "demo.mp4",
		Path:      "/videos/demo.mp4",
		SizeBytes: 1024,
	})
	if err != nil {
		t.Fatalf("UpsertVideo: %v", err)
	}
	if video.ID != "vid-1" {
		t.Errorf("ID = %q, want vid-1", video.ID)
	}

	// Re-registering the same path keeps the original id.
	again, err := driver.UpsertVideo(ctx, &store.Video{
		ID:        "vid-2",
		Name:      "demo-renamed.mp4",
		Path:      "/videos/demo.mp4",
		SizeBytes: 2048,
	})
	if err != nil {
		t.Fatalf("UpsertVideo again: %v", err)
	}
	if again.ID != "vid-1" {
		t.Errorf("ID after path conflict = %q, want vid-1", again.ID)
	}
	if again.Name != "demo-renamed.mp4" || again.SizeBytes != 2048 {
		t.Errorf("metadata not refreshed: %+v", again)
	}

	id := "vid-1"
	found, err := driver.GetVideo(ctx, &store.FindVideo{ID: &id})
	if err != nil {
		t.Fatalf("GetVideo: %v", err)
	}
	if found == nil || found.Path != "/videos/demo.mp4" {
		t.Errorf("unexpected video %+v", found)
	}

	missing := "nope"
	found, err = driver.GetVideo(ctx, &store.FindVideo{ID: &missing})
	if err != nil {
		t.Fatalf("GetVideo missing: %v", err)
	}
	if found != nil {
		t.Errorf("expected nil for unknown id, got %+v", found)
	}

	if _, err := driver.GetVideo(ctx, &store.FindVideo{}); err == nil {
		t.Error("expected error for empty find filter")
	}

	videos, err := driver.ListVideos(ctx)
	if err != nil {
		t.Fatalf("ListVideos: %v", err)
	}
	if len(videos) != 1 {
		t.Errorf("ListVideos len = %d, want 1", len(videos))
	}
}

func TestAppState(t *testing.T) {
	driver := newTestDriver(t)
	ctx := context.Background()

	value, err := driver.GetAppState(ctx, store.AppStateLastVideoID)
	if err != nil {
		t.Fatalf("GetAppState: %v", err)
	}
	if value != "" {
		t.Errorf("expected empty value for unset key, got %q", value)
	}

	if err := driver.SetAppState(ctx, store.AppStateLastVideoID, "vid-9"); err != nil {
		t.Fatalf("SetAppState: %v", err)
	}
	if err := driver.SetAppState(ctx, store.AppStateLastVideoID, "vid-10"); err != nil {
		t.Fatalf("SetAppState overwrite: %v", err)
	}

	value, err = driver.GetAppState(ctx, store.AppStateLastVideoID)
	if err != nil {
		t.Fatalf("GetAppState: %v", err)
	}
	if value != "vid-10" {
		t.Errorf("value = %q, want vid-10", value)
	}
}
