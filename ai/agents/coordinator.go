package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/semaphore"

	"github.com/videoscope/videoscope/ai/metrics"
	"github.com/videoscope/videoscope/ai/routing"
	"github.com/videoscope/videoscope/ai/session"
	"github.com/videoscope/videoscope/store"
)

// CoordinatorConfig tunes the coordinator's dispatch policy.
type CoordinatorConfig struct {
	// ConfidenceFloor is the minimum classification score required before
	// an agent is dispatched without clarification.
	ConfidenceFloor float64
	// AgentTimeout bounds one agent execution. Zero means 5 minutes.
	AgentTimeout time.Duration
	// MaxConcurrentRuns caps agent executions in flight. Zero means 2.
	MaxConcurrentRuns int64
}

// Coordinator routes chat messages to agents and streams typed chunks
// back to the caller. Exactly one agent handles each message.
type Coordinator struct {
	registry   *routing.CapabilityRegistry
	classifier *routing.IntentClassifier
	sessions   *session.Manager
	metrics    *metrics.Exporter

	agents          map[string]Agent
	confidenceFloor float64
	agentTimeout    time.Duration
	sem             *semaphore.Weighted
}

// NewCoordinator creates a coordinator. sessions and exporter may be nil
// for sessionless or unmetered use.
func NewCoordinator(registry *routing.CapabilityRegistry, sessions *session.Manager, exporter *metrics.Exporter, cfg CoordinatorConfig) *Coordinator {
	if cfg.AgentTimeout <= 0 {
		cfg.AgentTimeout = 5 * time.Minute
	}
	if cfg.MaxConcurrentRuns <= 0 {
		cfg.MaxConcurrentRuns = 2
	}
	if registry == nil {
		registry = routing.NewCapabilityRegistry()
	}
	return &Coordinator{
		registry:        registry,
		classifier:      routing.NewIntentClassifier(registry),
		sessions:        sessions,
		metrics:         exporter,
		agents:          make(map[string]Agent),
		confidenceFloor: cfg.ConfidenceFloor,
		agentTimeout:    cfg.AgentTimeout,
		sem:             semaphore.NewWeighted(cfg.MaxConcurrentRuns),
	}
}

// RegisterAgent registers an agent and its capability profile.
func (c *Coordinator) RegisterAgent(agent Agent) error {
	if err := c.registry.Register(agent.Name(), agent.Capability()); err != nil {
		return errors.Wrapf(err, "register agent %s", agent.Name())
	}
	c.agents[agent.Name()] = agent
	slog.Info("agent registered", "agent", agent.Name(), "priority", agent.Capability().RoutingPriority)
	return nil
}

// AgentNames returns the registered agent names, sorted.
func (c *Coordinator) AgentNames() []string {
	names := make([]string, 0, len(c.agents))
	for name := range c.agents {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Agent returns a registered agent by name.
func (c *Coordinator) Agent(name string) (Agent, bool) {
	agent, ok := c.agents[name]
	return agent, ok
}

// Registry returns the capability registry backing routing decisions.
func (c *Coordinator) Registry() *routing.CapabilityRegistry {
	return c.registry
}

// Capability returns the registered capability profile for an agent.
func (c *Coordinator) Capability(name string) (*routing.AgentCapability, error) {
	return c.registry.Get(name)
}

// ExplainRouting exposes the classifier's ranked explanation.
func (c *Coordinator) ExplainRouting(description string) *routing.Explanation {
	return c.classifier.ExplainRouting(description)
}

// ProcessMessage handles one chat message end to end: records the user
// turn, routes, executes, streams chunks through emit and records the
// assistant turn. Agent failures surface as a single error chunk; the
// returned error is non-nil only when the transport itself fails.
func (c *Coordinator) ProcessMessage(ctx context.Context, task *VideoTask, emit EmitFunc) error {
	if c.metrics != nil {
		c.metrics.ChatStarted()
		defer c.metrics.ChatFinished()
		c.metrics.RecordChatTurn()
	}

	if err := c.prepareSession(ctx, task); err != nil {
		// Fatal for this request only; the process and other sessions live on.
		slog.Error("session store failure", "video_id", task.VideoID, "error", err)
		return emit(&Chunk{Type: ChunkError, Content: "Error: " + err.Error(), AgentName: "coordinator"})
	}

	var emitted []*Chunk
	record := func(chunk *Chunk) error {
		emitted = append(emitted, chunk)
		return emit(chunk)
	}

	if err := record(&Chunk{Type: ChunkProgress, Content: "Processing your request...", AgentName: "coordinator"}); err != nil {
		return err
	}

	agent, candidate := c.routeTask(task)
	if agent == nil {
		return c.clarify(ctx, task, record)
	}
	if c.metrics != nil {
		outcome := "dispatched"
		if candidate == nil {
			outcome = "override"
		}
		score := 0.0
		if candidate != nil {
			score = candidate.Score
		}
		c.metrics.RecordRoutingDecision(agent.Name(), outcome, score)
	}

	result, err := c.runAgent(ctx, agent, task, record)
	if err != nil {
		// Contained here: one error chunk, the turn is still recorded.
		msg := "Error: " + err.Error()
		if err := record(&Chunk{Type: ChunkError, Content: msg, AgentName: agent.Name()}); err != nil {
			return err
		}
		c.recordAssistantTurn(ctx, task, msg)
		return nil
	}

	resultJSON, _ := json.Marshal(map[string]any{
		"agent": agent.Name(),
		"data":  result.Data,
	})
	if err := record(&Chunk{
		Type:       ChunkResult,
		Content:    result.Content,
		AgentName:  agent.Name(),
		ResultJSON: string(resultJSON),
	}); err != nil {
		return err
	}

	c.recordAssistantTurn(ctx, task, AuthoritativeAnswer(emitted))
	return nil
}

// prepareSession injects prior-conversation context into the task and
// records the user turn. Context is captured before the append so the
// current message is not its own context.
func (c *Coordinator) prepareSession(ctx context.Context, task *VideoTask) error {
	if c.sessions == nil || task.VideoID == "" {
		return nil
	}
	if task.Context == "" {
		prompt, err := c.sessions.ContextPrompt(ctx, task.VideoID)
		if err != nil {
			return errors.Wrap(err, "load session context")
		}
		task.Context = prompt
	}
	if _, err := c.sessions.AppendTurn(ctx, task.VideoID, store.RoleUser, task.Description); err != nil {
		return errors.Wrap(err, "record user turn")
	}
	return nil
}

// routeTask picks the agent for one task. An explicit task type wins and
// skips classification entirely; an unknown task type falls back to
// classification. The second return is nil on the override path.
func (c *Coordinator) routeTask(task *VideoTask) (Agent, *routing.Candidate) {
	if task.TaskType != "" {
		for _, name := range c.AgentNames() {
			agent := c.agents[name]
			if agent.CanHandle(task) {
				slog.Info("legacy routing", "task_type", task.TaskType, "agent", name)
				return agent, nil
			}
		}
		slog.Warn("task type matched no agent, falling back to classification", "task_type", task.TaskType)
	}

	candidates := c.classifier.Classify(task.Description)
	if len(candidates) == 0 || candidates[0].Score < c.confidenceFloor {
		return nil, nil
	}
	best := candidates[0]
	agent, ok := c.agents[best.Agent]
	if !ok {
		return nil, nil
	}
	return agent, &best
}

// runAgent executes one agent under the concurrency cap and timeout.
// A panic inside the agent is converted to an error.
func (c *Coordinator) runAgent(ctx context.Context, agent Agent, task *VideoTask, emit EmitFunc) (result *Result, err error) {
	if err := c.sem.Acquire(ctx, 1); err != nil {
		return nil, errors.Wrap(err, "waiting for agent slot")
	}
	defer c.sem.Release(1)

	runCtx, cancel := context.WithTimeout(ctx, c.agentTimeout)
	defer cancel()

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("agent %s panicked: %v", agent.Name(), r)
			result = nil
		}
		if c.metrics != nil {
			c.metrics.RecordAgentRun(agent.Name(), time.Since(start), err == nil)
		}
	}()

	result, err = agent.Execute(runCtx, task, emit)
	if err == nil && result == nil {
		err = errors.Errorf("agent %s returned no result", agent.Name())
	}
	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		err = errors.Errorf("agent %s timed out after %s", agent.Name(), c.agentTimeout)
	}
	return result, err
}

// clarify handles the no-match path: a clarification message streams back
// as a message chunk and is recorded as the assistant turn. No ML agent
// runs.
func (c *Coordinator) clarify(ctx context.Context, task *VideoTask, emit EmitFunc) error {
	if c.metrics != nil {
		c.metrics.RecordRoutingDecision("none", "clarify", 0)
	}
	slog.Info("no agent cleared the confidence floor", "description", task.Description)

	content := c.clarificationMessage(task.Description)
	if err := emit(&Chunk{Type: ChunkMessage, Content: content, AgentName: "coordinator"}); err != nil {
		return err
	}
	c.recordAssistantTurn(ctx, task, content)
	return nil
}

func (c *Coordinator) clarificationMessage(request string) string {
	var b strings.Builder
	b.WriteString("I can only help with video-analysis workflows handled by the registered agents.\n\n")
	fmt.Fprintf(&b, "Your latest request was: %q\n\n", request)
	b.WriteString("Available agents and focus areas:\n")
	names := c.registry.Names()
	if len(names) == 0 {
		b.WriteString("- No agents are currently registered.\n")
	}
	for _, name := range names {
		capability, err := c.registry.Get(name)
		if err != nil {
			continue
		}
		fmt.Fprintf(&b, "- %s: %s\n", name, strings.Join(capability.Capabilities, "; "))
	}
	b.WriteString("\nPlease rephrase your question so it clearly maps to one of these capabilities.\n")
	b.WriteString("For example:\n")
	b.WriteString("- \"Detect objects in the uploaded video.\"\n")
	b.WriteString("- \"Generate a transcript for my clip.\"\n")
	b.WriteString("- \"Summarize what happens in the video I just uploaded.\"")
	return b.String()
}

// recordAssistantTurn stores the assistant's side of the exchange. Session
// write failures are logged, not surfaced: the user already has the answer.
func (c *Coordinator) recordAssistantTurn(ctx context.Context, task *VideoTask, content string) {
	if c.sessions == nil || task.VideoID == "" || content == "" {
		return
	}
	if _, err := c.sessions.AppendTurn(ctx, task.VideoID, store.RoleAssistant, content); err != nil {
		slog.Error("failed to record assistant turn", "video_id", task.VideoID, "error", err)
	}
}
