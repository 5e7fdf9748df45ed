// Package v1 serves the HTTP API consumed by the desktop frontend.
package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/videoscope/videoscope/ai/agents"
	"github.com/videoscope/videoscope/ai/metrics"
	"github.com/videoscope/videoscope/ai/session"
	"github.com/videoscope/videoscope/internal/profile"
	"github.com/videoscope/videoscope/server/middleware"
	"github.com/videoscope/videoscope/store"
)

// APIV1Service wires the coordinator and stores into the API routes.
type APIV1Service struct {
	Profile     *profile.Profile
	Store       *store.Store
	Coordinator *agents.Coordinator
	Sessions    *session.Manager
	Metrics     *metrics.Exporter

	limiter *middleware.RateLimiter
}

// NewAPIV1Service creates the API service.
func NewAPIV1Service(p *profile.Profile, st *store.Store, coordinator *agents.Coordinator, sessions *session.Manager, exporter *metrics.Exporter) *APIV1Service {
	return &APIV1Service{
		Profile:     p,
		Store:       st,
		Coordinator: coordinator,
		Sessions:    sessions,
		Metrics:     exporter,
		limiter:     middleware.NewRateLimiter(5, 10),
	}
}

// response is the common envelope for non-streamed replies.
type response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func ok(c echo.Context, data any) error {
	return c.JSON(http.StatusOK, response{Success: true, Data: data})
}

func fail(c echo.Context, code int, message string) error {
	return c.JSON(code, response{Success: false, Message: message})
}

// Register mounts all v1 routes on the echo server.
func (s *APIV1Service) Register(e *echo.Echo) {
	e.GET("/healthz", s.Healthz)
	if s.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(s.Metrics.Handler()))
	}

	g := e.Group("/api/v1")
	g.Use(echomw.CORS())
	g.Use(s.limiter.Middleware())

	g.POST("/chat/messages", s.SendChatMessage)
	g.GET("/chat/:videoID/history", s.GetChatHistory)
	g.DELETE("/chat/:videoID/history", s.ClearChatHistory)

	g.POST("/videos", s.RegisterLocalVideo)
	g.GET("/videos", s.ListVideos)
	g.GET("/sessions/last", s.GetLastSession)
	g.POST("/sessions/:videoID/resume", s.ResumeSession)

	g.GET("/routing/explain", s.ExplainRouting)
	g.GET("/agents", s.AgentHealth)
}

// Healthz reports process liveness.
func (s *APIV1Service) Healthz(c echo.Context) error {
	return ok(c, map[string]string{"status": "ok", "version": s.Profile.Version})
}
