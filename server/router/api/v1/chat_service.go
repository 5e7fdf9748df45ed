package v1

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/videoscope/videoscope/ai/agents"
	"github.com/videoscope/videoscope/store"
)

// SendChatMessageRequest is one chat message bound to a video.
type SendChatMessageRequest struct {
	VideoID string `json:"video_id"`
	Message string `json:"message"`
	// TaskType optionally bypasses intent classification.
	TaskType string `json:"task_type,omitempty"`
	// Context optionally replaces the stored conversation context.
	Context string `json:"context,omitempty"`
}

// SendChatMessage handles POST /api/v1/chat/messages. The response is a
// stream of newline-delimited JSON chunks; failures surface as an
// error-typed chunk, so the stream itself always completes with 200.
func (s *APIV1Service) SendChatMessage(c echo.Context) error {
	var req SendChatMessageRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "malformed request body")
	}
	if req.Message == "" {
		return fail(c, http.StatusBadRequest, "message is required")
	}

	ctx := c.Request().Context()

	videoID := req.VideoID
	if videoID == "" {
		// Fall back to the last active video, matching desktop behavior
		// where the open video is implicit.
		last, err := s.Store.GetAppState(ctx, store.AppStateLastVideoID)
		if err != nil {
			return fail(c, http.StatusInternalServerError, "failed to resolve active video")
		}
		videoID = last
	}

	task := &agents.VideoTask{
		Description: req.Message,
		TaskType:    req.TaskType,
		VideoID:     videoID,
		Context:     req.Context,
	}
	if videoID != "" {
		video, err := s.Store.GetVideo(ctx, &store.FindVideo{ID: &videoID})
		if err != nil {
			return fail(c, http.StatusInternalServerError, "failed to load video")
		}
		if video != nil {
			task.FilePath = video.Path
		}
	}

	resp := c.Response()
	resp.Header().Set(echo.HeaderContentType, "application/x-ndjson")
	resp.WriteHeader(http.StatusOK)
	encoder := json.NewEncoder(resp)

	emit := func(chunk *agents.Chunk) error {
		if err := encoder.Encode(chunk); err != nil {
			return err
		}
		resp.Flush()
		return nil
	}

	if err := s.Coordinator.ProcessMessage(ctx, task, emit); err != nil {
		// Transport is broken; nothing left to send.
		slog.Error("chat stream aborted", "video_id", videoID, "error", err)
	}
	return nil
}

// ChatHistoryResponse mirrors the persisted session for the frontend.
type ChatHistoryResponse struct {
	VideoID             string              `json:"video_id"`
	VideoName           string              `json:"video_name,omitempty"`
	ConversationSummary string              `json:"conversation_summary,omitempty"`
	RecentMessages      []store.ChatMessage `json:"recent_messages"`
	TotalMessages       int                 `json:"total_messages"`
	CreatedTs           int64               `json:"created_ts,omitempty"`
	UpdatedTs           int64               `json:"updated_ts,omitempty"`
}

// GetChatHistory handles GET /api/v1/chat/:videoID/history. With
// include_full_messages=false the messages are omitted and a summary is
// generated on the fly when none has been persisted yet.
func (s *APIV1Service) GetChatHistory(c echo.Context) error {
	videoID := c.Param("videoID")
	ctx := c.Request().Context()

	session, err := s.Sessions.Get(ctx, videoID)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "failed to load chat history")
	}
	if session == nil {
		return ok(c, ChatHistoryResponse{VideoID: videoID, RecentMessages: []store.ChatMessage{}})
	}

	history := sessionToHistory(session)
	if c.QueryParam("include_full_messages") == "false" {
		digest, err := s.Sessions.Digest(ctx, videoID)
		if err != nil {
			return fail(c, http.StatusInternalServerError, "failed to summarize chat history")
		}
		history.ConversationSummary = digest
		history.RecentMessages = []store.ChatMessage{}
	}
	return ok(c, history)
}

// ClearChatHistory handles DELETE /api/v1/chat/:videoID/history.
func (s *APIV1Service) ClearChatHistory(c echo.Context) error {
	videoID := c.Param("videoID")
	if err := s.Sessions.Clear(c.Request().Context(), videoID); err != nil {
		return fail(c, http.StatusInternalServerError, "failed to clear chat history")
	}
	return ok(c, map[string]string{"video_id": videoID})
}

func sessionToHistory(session *store.ChatSession) ChatHistoryResponse {
	messages := session.RecentMessages
	if messages == nil {
		messages = []store.ChatMessage{}
	}
	return ChatHistoryResponse{
		VideoID:             session.VideoID,
		VideoName:           session.VideoName,
		ConversationSummary: session.ConversationSummary,
		RecentMessages:      messages,
		TotalMessages:       session.TotalMessages,
		CreatedTs:           session.CreatedTs,
		UpdatedTs:           session.UpdatedTs,
	}
}
