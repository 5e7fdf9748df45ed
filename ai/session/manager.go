// Package session manages per-video chat sessions: the retained recent
// window, the rolling conversation summary, and the lifetime turn count.
package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/videoscope/videoscope/ai/metrics"
	"github.com/videoscope/videoscope/ai/summary"
	"github.com/videoscope/videoscope/store"
)

// Manager serializes session mutations per video id. Different videos
// never block each other.
type Manager struct {
	store      *store.Store
	summarizer *summary.ConversationSummarizer
	maxRecent  int
	metrics    *metrics.Exporter

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewManager creates a session manager. maxRecent is the retention bound
// for the recent window; exporter may be nil.
func NewManager(st *store.Store, summarizer *summary.ConversationSummarizer, maxRecent int, exporter *metrics.Exporter) *Manager {
	if maxRecent <= 0 {
		maxRecent = 10
	}
	return &Manager{
		store:      st,
		summarizer: summarizer,
		maxRecent:  maxRecent,
		metrics:    exporter,
		locks:      make(map[string]*sync.Mutex),
	}
}

// lockFor returns the mutex guarding one video's session.
func (m *Manager) lockFor(videoID string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	lock, ok := m.locks[videoID]
	if !ok {
		lock = &sync.Mutex{}
		m.locks[videoID] = lock
	}
	return lock
}

// Get returns the session for a video, or nil when none exists.
func (m *Manager) Get(ctx context.Context, videoID string) (*store.ChatSession, error) {
	return m.store.GetChatSession(ctx, videoID)
}

// Ensure returns the session for a video, creating an empty one if missing.
func (m *Manager) Ensure(ctx context.Context, videoID, videoName, videoPath string) (*store.ChatSession, error) {
	lock := m.lockFor(videoID)
	lock.Lock()
	defer lock.Unlock()

	session, err := m.store.GetChatSession(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if session != nil {
		return session, nil
	}
	return m.store.UpsertChatSession(ctx, &store.ChatSession{
		VideoID:   videoID,
		VideoName: videoName,
		VideoPath: videoPath,
	})
}

// AppendTurn appends one turn to a video's session and persists it.
// When the recent window overflows the retention bound, the oldest turns
// are dropped and folded into the rolling summary. The lifetime counter
// always grows by one, trimmed or not.
func (m *Manager) AppendTurn(ctx context.Context, videoID, role, content string) (*store.ChatSession, error) {
	lock := m.lockFor(videoID)
	lock.Lock()
	defer lock.Unlock()

	session, err := m.store.GetChatSession(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		session = &store.ChatSession{VideoID: videoID}
	}

	session.RecentMessages = append(session.RecentMessages, store.ChatMessage{
		Role:      role,
		Content:   content,
		Timestamp: time.Now().Unix(),
	})
	session.TotalMessages++

	if len(session.RecentMessages) > m.maxRecent {
		if err := m.trim(ctx, session); err != nil {
			return nil, err
		}
	}

	return m.store.UpsertChatSession(ctx, session)
}

// trim drops the oldest turns down to the retention bound and folds them
// into the conversation summary. The summary is regenerated only here.
func (m *Manager) trim(ctx context.Context, session *store.ChatSession) error {
	overflow := len(session.RecentMessages) - m.maxRecent
	dropped := session.RecentMessages[:overflow]
	session.RecentMessages = append([]store.ChatMessage(nil), session.RecentMessages[overflow:]...)

	turns := make([]summary.Turn, 0, len(dropped))
	for _, msg := range dropped {
		turns = append(turns, summary.Turn{Role: msg.Role, Content: msg.Content})
	}

	droppedSummary := m.summarizer.SummarizeTurns(ctx, turns)
	merged := m.summarizer.Merge(ctx, session.ConversationSummary, droppedSummary.Summary)
	session.ConversationSummary = merged.Summary

	if m.metrics != nil {
		m.metrics.RecordSummaryRegen(merged.Source)
	}
	return nil
}

// Summary returns the rolling conversation summary for a video.
func (m *Manager) Summary(ctx context.Context, videoID string) (string, error) {
	session, err := m.store.GetChatSession(ctx, videoID)
	if err != nil {
		return "", err
	}
	if session == nil {
		return "", nil
	}
	return session.ConversationSummary, nil
}

// SetSummary overwrites the rolling conversation summary for a video.
func (m *Manager) SetSummary(ctx context.Context, videoID, text string) error {
	lock := m.lockFor(videoID)
	lock.Lock()
	defer lock.Unlock()

	session, err := m.store.GetChatSession(ctx, videoID)
	if err != nil {
		return err
	}
	if session == nil {
		session = &store.ChatSession{VideoID: videoID}
	}
	session.ConversationSummary = text
	_, err = m.store.UpsertChatSession(ctx, session)
	return err
}

// Digest returns the rolling summary for a video, generating a transient
// one from the retained messages when none has been persisted yet. The
// generated summary is not written back; persistence stays tied to trims.
func (m *Manager) Digest(ctx context.Context, videoID string) (string, error) {
	session, err := m.store.GetChatSession(ctx, videoID)
	if err != nil {
		return "", err
	}
	if session == nil {
		return "", nil
	}
	if session.ConversationSummary != "" {
		return session.ConversationSummary, nil
	}
	if len(session.RecentMessages) == 0 {
		return "", nil
	}

	turns := make([]summary.Turn, 0, len(session.RecentMessages))
	for _, msg := range session.RecentMessages {
		turns = append(turns, summary.Turn{Role: msg.Role, Content: msg.Content})
	}
	return m.summarizer.SummarizeTurns(ctx, turns).Summary, nil
}

// Clear removes a video's session. Other videos' sessions are untouched.
func (m *Manager) Clear(ctx context.Context, videoID string) error {
	lock := m.lockFor(videoID)
	lock.Lock()
	defer lock.Unlock()
	return m.store.DeleteChatSession(ctx, videoID)
}

// ContextPrompt renders the session as LLM context: the rolling summary
// first, then the retained recent turns in order. Empty when the video
// has no history.
func (m *Manager) ContextPrompt(ctx context.Context, videoID string) (string, error) {
	session, err := m.store.GetChatSession(ctx, videoID)
	if err != nil {
		return "", err
	}
	if session == nil {
		return "", nil
	}

	var b strings.Builder
	if session.ConversationSummary != "" {
		fmt.Fprintf(&b, "Previous conversation summary: %s\n", session.ConversationSummary)
	}
	if len(session.RecentMessages) > 0 {
		b.WriteString("Recent messages:\n")
		for _, msg := range session.RecentMessages {
			fmt.Fprintf(&b, "%s: %s\n", msg.Role, msg.Content)
		}
	}
	return strings.TrimRight(b.String(), "\n"), nil
}
