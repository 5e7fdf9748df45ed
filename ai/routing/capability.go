// Package routing matches free-text requests to the agents best suited to
// handle them. Capabilities are declared by each agent at startup and looked
// up by the IntentClassifier; no routing decision is made in this file.
package routing

import (
	"errors"
	"sort"
	"strings"
	"sync"
)

// ErrAgentNotFound is returned when a capability lookup names an unknown agent.
var ErrAgentNotFound = errors.New("agent not found")

// Category is a high-level grouping of agent capabilities.
type Category string

const (
	CategoryAudio      Category = "audio"
	CategoryVision     Category = "vision"
	CategoryText       Category = "text"
	CategoryGeneration Category = "generation"
	CategoryAnalysis   Category = "analysis"
)

// AgentCapability is the static, declarative description of what one agent
// can do. Registered once per agent at process startup and immutable after.
type AgentCapability struct {
	// Capabilities are human-readable descriptions, documentation only.
	Capabilities []string `json:"capabilities"`

	// IntentKeywords are lowercase keywords and phrases used for matching.
	// A keyword counts as a hit when it appears anywhere in the normalized
	// description; multi-word phrases like "what said" rely on this.
	IntentKeywords []string `json:"intent_keywords"`

	// Categories group agents for tie-breaking and documentation.
	Categories []Category `json:"categories"`

	// ExampleTasks are sample descriptions used for calibration and tests.
	ExampleTasks []string `json:"example_tasks"`

	// RoutingPriority breaks ties among agents with equal match scores.
	// Range 1-10, higher wins.
	RoutingPriority int `json:"routing_priority"`
}

// MatchScore scores a task description against this capability and returns
// the score together with the keywords that fired.
//
// The score is 0.7*keyword_density + 0.3*priority/10 when at least one
// keyword matches, and exactly 0 otherwise. It is monotonic in the number of
// matched keywords and stays within [0,1].
func (c *AgentCapability) MatchScore(description string) (float64, []string) {
	if len(c.IntentKeywords) == 0 {
		return 0, nil
	}

	normalized := strings.ToLower(description)
	var matched []string
	for _, keyword := range c.IntentKeywords {
		if matchesKeyword(normalized, keyword) {
			matched = append(matched, keyword)
		}
	}
	if len(matched) == 0 {
		return 0, nil
	}

	density := float64(len(matched)) / float64(len(c.IntentKeywords))
	priority := float64(c.RoutingPriority) / 10.0
	return 0.7*density + 0.3*priority, matched
}

// matchesKeyword checks if the keyword occurs in the normalized text.
// ASCII keywords must sit on word boundaries to avoid partial matches
// ("car" must not fire on "scarf"); non-ASCII keywords use containment.
func matchesKeyword(text, keyword string) bool {
	idx := strings.Index(text, keyword)
	if idx == -1 {
		return false
	}

	if isNonASCII(keyword) {
		return true
	}

	// Check word boundaries at every occurrence.
	for idx != -1 {
		leftOk := (idx == 0) || !isWordChar(text[idx-1])
		end := idx + len(keyword)
		rightOk := (end == len(text)) || !isWordChar(text[end])
		if leftOk && rightOk {
			return true
		}

		next := strings.Index(text[idx+1:], keyword)
		if next == -1 {
			break
		}
		idx += 1 + next
	}

	return false
}

func isNonASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 128 {
			return true
		}
	}
	return false
}

func isWordChar(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9') || b == '_'
}

// CapabilityRegistry maps agent names to their declared capabilities.
// Registration is additive and last-writer-wins by name; agents register
// once at startup, so overwrites indicate a deliberate re-registration.
type CapabilityRegistry struct {
	mu           sync.RWMutex
	capabilities map[string]*AgentCapability
}

// NewCapabilityRegistry creates an empty registry.
func NewCapabilityRegistry() *CapabilityRegistry {
	return &CapabilityRegistry{
		capabilities: make(map[string]*AgentCapability),
	}
}

// Register records the capability profile for an agent name.
// IntentKeywords must be non-empty; keywords are normalized to lowercase.
func (r *CapabilityRegistry) Register(agentName string, capability *AgentCapability) error {
	if agentName == "" {
		return errors.New("agent name required")
	}
	if capability == nil || len(capability.IntentKeywords) == 0 {
		return errors.New("capability requires at least one intent keyword")
	}

	normalized := *capability
	normalized.IntentKeywords = make([]string, 0, len(capability.IntentKeywords))
	for _, kw := range capability.IntentKeywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" {
			normalized.IntentKeywords = append(normalized.IntentKeywords, kw)
		}
	}
	if len(normalized.IntentKeywords) == 0 {
		return errors.New("capability requires at least one intent keyword")
	}
	if normalized.RoutingPriority < 1 {
		normalized.RoutingPriority = 1
	}
	if normalized.RoutingPriority > 10 {
		normalized.RoutingPriority = 10
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.capabilities[agentName] = &normalized
	return nil
}

// Get returns the capability for an agent name.
func (r *CapabilityRegistry) Get(agentName string) (*AgentCapability, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	capability, ok := r.capabilities[agentName]
	if !ok {
		return nil, ErrAgentNotFound
	}
	return capability, nil
}

// All returns a copy of the registered capabilities keyed by agent name.
func (r *CapabilityRegistry) All() map[string]*AgentCapability {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make(map[string]*AgentCapability, len(r.capabilities))
	for name, capability := range r.capabilities {
		result[name] = capability
	}
	return result
}

// Names returns the registered agent names in lexicographic order.
// Stable ordering keeps classification deterministic.
func (r *CapabilityRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.capabilities))
	for name := range r.capabilities {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
