package agents

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/videoscope/videoscope/ai/llm"
	"github.com/videoscope/videoscope/ai/routing"
)

const reclarifySystemPrompt = `You are the assistant of a desktop video-analysis application.
The app can transcribe video audio, detect objects in video frames and
generate analysis reports. Answer briefly. If the user's request needs one
of those capabilities, tell them how to phrase it; otherwise just help
with their question.`

// ReclarifyAgent handles conversational and ambiguous requests without
// invoking any ML pipeline. It is the human-in-the-loop fallback.
type ReclarifyAgent struct {
	llm      llm.Service
	registry *routing.CapabilityRegistry
}

// NewReclarifyAgent creates the reclarify agent. llmService may be nil.
func NewReclarifyAgent(llmService llm.Service, registry *routing.CapabilityRegistry) *ReclarifyAgent {
	return &ReclarifyAgent{llm: llmService, registry: registry}
}

func (a *ReclarifyAgent) Name() string {
	return ReclarifyAgentName
}

func (a *ReclarifyAgent) Capability() *routing.AgentCapability {
	return &routing.AgentCapability{
		Capabilities: []string{
			"Clarify ambiguous user requests",
			"General conversation and guidance",
			"Ask for missing inputs",
		},
		IntentKeywords: []string{
			"clarify", "clarification", "ask", "question", "help", "explain",
			"what", "how", "why", "chat", "talk", "conversation",
		},
		Categories: []routing.Category{routing.CategoryText},
		ExampleTasks: []string{
			"I'm not sure what I need",
			"Can you help me decide what to do?",
			"Explain how this app works",
		},
		RoutingPriority: 5,
	}
}

func (a *ReclarifyAgent) CanHandle(task *VideoTask) bool {
	switch task.TaskType {
	case "text", "analysis", "chat", "clarify":
		return true
	}
	return false
}

func (a *ReclarifyAgent) Execute(ctx context.Context, task *VideoTask, emit EmitFunc) (*Result, error) {
	content := a.answer(ctx, task)
	return &Result{
		Content: content,
		Data:    map[string]any{"video_id": task.VideoID},
	}, nil
}

func (a *ReclarifyAgent) answer(ctx context.Context, task *VideoTask) string {
	if a.llm != nil {
		prompt := task.Description
		if task.Context != "" {
			prompt = fmt.Sprintf("[Context from previous conversation: %s]\n\nUser message: %s", task.Context, task.Description)
		}
		content, _, err := a.llm.Chat(ctx, []llm.Message{
			llm.SystemPrompt(reclarifySystemPrompt),
			llm.UserMessage(prompt),
		})
		if err == nil {
			return content
		}
		slog.Warn("reclarify LLM call failed, using capability guide", "error", err)
	}
	return a.capabilityGuide(task.Description)
}

// capabilityGuide lists what the registered agents can do, asking the user
// to rephrase toward one of those capabilities.
func (a *ReclarifyAgent) capabilityGuide(request string) string {
	var b strings.Builder
	b.WriteString("I can help with video-analysis workflows handled by the registered agents.\n\n")
	if request != "" {
		fmt.Fprintf(&b, "Your latest request was: %q\n\n", request)
	}
	b.WriteString("Available agents and focus areas:\n")
	for _, name := range a.registry.Names() {
		capability, err := a.registry.Get(name)
		if err != nil {
			continue
		}
		fmt.Fprintf(&b, "- %s: %s\n", name, strings.Join(capability.Capabilities, "; "))
	}
	b.WriteString("\nPlease rephrase your question so it clearly maps to one of these capabilities.")
	return b.String()
}
