// Package server assembles the AI stack and serves the HTTP API.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/videoscope/videoscope/ai/agents"
	"github.com/videoscope/videoscope/ai/llm"
	"github.com/videoscope/videoscope/ai/metrics"
	"github.com/videoscope/videoscope/ai/session"
	"github.com/videoscope/videoscope/ai/summary"
	"github.com/videoscope/videoscope/ai/tools"
	"github.com/videoscope/videoscope/internal/profile"
	apiv1 "github.com/videoscope/videoscope/server/router/api/v1"
	"github.com/videoscope/videoscope/store"
)

// Server owns the echo instance and the assembled AI stack.
type Server struct {
	e *echo.Echo

	Profile     *profile.Profile
	Store       *store.Store
	Coordinator *agents.Coordinator
}

// NewServer assembles the LLM service, summarizer, session manager,
// agents and coordinator, and mounts the API routes.
func NewServer(ctx context.Context, p *profile.Profile, st *store.Store) (*Server, error) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogURI:    true,
		LogStatus: true,
		LogValuesFunc: func(_ echo.Context, v echomw.RequestLoggerValues) error {
			slog.Debug("http request", "uri", v.URI, "status", v.Status)
			return nil
		},
	}))

	var llmService llm.Service
	if p.IsLLMEnabled() {
		var err error
		llmService, err = llm.NewService(&llm.Config{
			Provider: p.LLMProvider,
			Model:    p.LLMModel,
			APIKey:   p.LLMAPIKey,
			BaseURL:  p.LLMBaseURL,
			Timeout:  p.LLMTimeout,
		})
		if err != nil {
			return nil, errors.Wrap(err, "create llm service")
		}
		go llmService.Warmup(ctx)
	} else {
		slog.Warn("LLM disabled, summaries and reports use deterministic fallbacks")
	}

	exporter := metrics.NewExporter(metrics.DefaultConfig())
	summarizer := summary.NewConversationSummarizer(llmService)
	sessions := session.NewManager(st, summarizer, p.MaxRecentMessages, exporter)

	coordinator := agents.NewCoordinator(nil, sessions, exporter, agents.CoordinatorConfig{
		ConfidenceFloor:   p.ConfidenceFloor,
		AgentTimeout:      time.Duration(p.AgentTimeout) * time.Second,
		MaxConcurrentRuns: int64(p.MaxConcurrentRuns),
	})

	transcriber := tools.NewWhisperTranscriber(p.WhisperPath, p.WhisperModel, p.FFmpegPath)
	detector := tools.NewExecDetector(p.DetectorPath)
	reportDir := filepath.Join(p.Data, "reports")

	for _, agent := range []agents.Agent{
		agents.NewTranscriptionAgent(transcriber, exporter),
		agents.NewVisionAgent(detector, exporter),
		agents.NewReportAgent(llmService, reportDir),
		agents.NewReclarifyAgent(llmService, coordinator.Registry()),
	} {
		if err := coordinator.RegisterAgent(agent); err != nil {
			return nil, err
		}
	}

	apiService := apiv1.NewAPIV1Service(p, st, coordinator, sessions, exporter)
	apiService.Register(e)

	return &Server{
		e:           e,
		Profile:     p,
		Store:       st,
		Coordinator: coordinator,
	}, nil
}

// Start begins serving. It returns once the listener stops.
func (s *Server) Start(_ context.Context) error {
	address := fmt.Sprintf("%s:%d", s.Profile.Addr, s.Profile.Port)
	slog.Info("server listening", "address", address)
	return s.e.Start(address)
}

// Shutdown drains in-flight requests and closes the store.
func (s *Server) Shutdown(ctx context.Context) {
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := s.e.Shutdown(shutdownCtx); err != nil {
		slog.Error("failed to shut down server", "error", err)
	}
	if err := s.Store.Close(); err != nil {
		slog.Error("failed to close store", "error", err)
	}
	slog.Info("server shutdown complete")
}
