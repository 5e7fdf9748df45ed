package v1

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/lithammer/shortuuid/v4"

	"github.com/videoscope/videoscope/store"
)

var videoExtensions = map[string]bool{
	".mp4":  true,
	".avi":  true,
	".mov":  true,
	".mkv":  true,
	".wmv":  true,
	".flv":  true,
	".webm": true,
}

// RegisterLocalVideoRequest registers a video already on the local disk.
type RegisterLocalVideoRequest struct {
	Path        string `json:"path"`
	DisplayName string `json:"display_name,omitempty"`
}

// RegisterLocalVideo handles POST /api/v1/videos. The file is referenced
// in place, never copied. The registered video becomes the active one.
func (s *APIV1Service) RegisterLocalVideo(c echo.Context) error {
	var req RegisterLocalVideoRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "malformed request body")
	}
	if req.Path == "" {
		return fail(c, http.StatusBadRequest, "path is required")
	}

	info, err := os.Stat(req.Path)
	if err != nil {
		return fail(c, http.StatusNotFound, "video file not found")
	}
	if info.IsDir() {
		return fail(c, http.StatusBadRequest, "path is a directory")
	}
	if !videoExtensions[strings.ToLower(filepath.Ext(req.Path))] {
		return fail(c, http.StatusBadRequest, "unsupported video format")
	}

	name := req.DisplayName
	if name == "" {
		name = filepath.Base(req.Path)
	}

	ctx := c.Request().Context()
	video, err := s.Store.UpsertVideo(ctx, &store.Video{
		ID:        shortuuid.New(),
		Name:      name,
		Path:      req.Path,
		SizeBytes: info.Size(),
	})
	if err != nil {
		return fail(c, http.StatusInternalServerError, "failed to register video")
	}

	if err := s.Store.SetAppState(ctx, store.AppStateLastVideoID, video.ID); err != nil {
		return fail(c, http.StatusInternalServerError, "failed to set active video")
	}
	if _, err := s.Sessions.Ensure(ctx, video.ID, video.Name, video.Path); err != nil {
		return fail(c, http.StatusInternalServerError, "failed to create chat session")
	}

	return ok(c, video)
}

// ListVideos handles GET /api/v1/videos.
func (s *APIV1Service) ListVideos(c echo.Context) error {
	videos, err := s.Store.ListVideos(c.Request().Context())
	if err != nil {
		return fail(c, http.StatusInternalServerError, "failed to list videos")
	}
	if videos == nil {
		videos = []*store.Video{}
	}
	return ok(c, videos)
}

// LastSessionResponse describes the most recently active video session.
type LastSessionResponse struct {
	Video   *store.Video        `json:"video,omitempty"`
	History ChatHistoryResponse `json:"history"`
}

// GetLastSession handles GET /api/v1/sessions/last. It restores the
// session of the last active video on app startup.
func (s *APIV1Service) GetLastSession(c echo.Context) error {
	ctx := c.Request().Context()
	videoID, err := s.Store.GetAppState(ctx, store.AppStateLastVideoID)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "failed to load app state")
	}
	if videoID == "" {
		return fail(c, http.StatusNotFound, "no previous session")
	}

	video, err := s.Store.GetVideo(ctx, &store.FindVideo{ID: &videoID})
	if err != nil {
		return fail(c, http.StatusInternalServerError, "failed to load video")
	}

	session, err := s.Sessions.Get(ctx, videoID)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "failed to load chat history")
	}
	resp := LastSessionResponse{Video: video}
	if session != nil {
		resp.History = sessionToHistory(session)
	} else {
		resp.History = ChatHistoryResponse{VideoID: videoID, RecentMessages: []store.ChatMessage{}}
	}
	return ok(c, resp)
}

// ResumeSession handles POST /api/v1/sessions/:videoID/resume. It marks
// the video as active and returns its history.
func (s *APIV1Service) ResumeSession(c echo.Context) error {
	videoID := c.Param("videoID")
	ctx := c.Request().Context()

	video, err := s.Store.GetVideo(ctx, &store.FindVideo{ID: &videoID})
	if err != nil {
		return fail(c, http.StatusInternalServerError, "failed to load video")
	}
	if video == nil {
		return fail(c, http.StatusNotFound, "unknown video")
	}

	if err := s.Store.SetAppState(ctx, store.AppStateLastVideoID, videoID); err != nil {
		return fail(c, http.StatusInternalServerError, "failed to set active video")
	}

	session, err := s.Sessions.Ensure(ctx, video.ID, video.Name, video.Path)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "failed to load chat session")
	}
	return ok(c, LastSessionResponse{Video: video, History: sessionToHistory(session)})
}
