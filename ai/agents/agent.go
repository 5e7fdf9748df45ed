// Package agents holds the agent contract, the concrete video-analysis
// agents and the coordinator that routes chat messages between them.
package agents

import (
	"context"

	"github.com/videoscope/videoscope/ai/routing"
)

// Registered agent names.
const (
	TranscriptionAgentName = "transcription_agent"
	VisionAgentName        = "vision_agent"
	ReportAgentName        = "report_agent"
	ReclarifyAgentName     = "reclarify_agent"
)

// VideoTask is one chat request bound to a video.
type VideoTask struct {
	// Description is the user's message, the routing input.
	Description string
	// TaskType optionally names an agent class directly, bypassing
	// classification. Legacy compatibility path.
	TaskType string
	// VideoID keys the chat session. Empty for sessionless requests.
	VideoID string
	// FilePath is the local path of the registered video, if any.
	FilePath string
	// Context is prior-conversation context injected by the coordinator.
	Context string
}

// Result is the final payload of a successful agent execution.
type Result struct {
	Content string
	Data    map[string]any
}

// Agent wraps one ML capability behind a uniform contract.
type Agent interface {
	Name() string
	// Capability returns the agent's static routing profile.
	Capability() *routing.AgentCapability
	// CanHandle reports whether the agent accepts an explicit task type.
	CanHandle(task *VideoTask) bool
	// Execute runs the task. Intermediate progress goes through emit;
	// the returned result is final.
	Execute(ctx context.Context, task *VideoTask, emit EmitFunc) (*Result, error)
}
