package routing

import (
	"log/slog"
	"sort"
)

// Candidate is one ranked classification result.
type Candidate struct {
	Agent           string   `json:"agent"`
	Score           float64  `json:"score"`
	MatchedKeywords []string `json:"matched_keywords"`
	Priority        int      `json:"priority"`
}

// Explanation is the full routing explanation for a description, retained
// for debugging and the /routing/explain endpoint.
type Explanation struct {
	Description   string      `json:"description"`
	AgentsChecked int         `json:"agents_checked"`
	Matches       []Candidate `json:"matches"`
}

// IntentClassifier scores a free-text task description against every
// registered agent's capability profile and returns ranked candidates.
type IntentClassifier struct {
	registry *CapabilityRegistry
}

// NewIntentClassifier creates a classifier over the given registry.
func NewIntentClassifier(registry *CapabilityRegistry) *IntentClassifier {
	return &IntentClassifier{registry: registry}
}

// Classify returns all agents with a non-zero match score for the
// description, ranked by score descending. Ties break by routing priority
// descending, then agent name ascending, so repeated calls over a fixed
// registry always produce the same ordering.
func (c *IntentClassifier) Classify(description string) []Candidate {
	if description == "" {
		slog.Warn("empty task description provided to classifier")
		return nil
	}

	var candidates []Candidate
	for _, name := range c.registry.Names() {
		capability, err := c.registry.Get(name)
		if err != nil {
			continue
		}
		score, matched := capability.MatchScore(description)
		if score <= 0 {
			continue
		}
		candidates = append(candidates, Candidate{
			Agent:           name,
			Score:           score,
			MatchedKeywords: matched,
			Priority:        capability.RoutingPriority,
		})
	}

	sortCandidates(candidates)

	slog.Debug("intent classification", "description", description, "candidates", len(candidates))
	return candidates
}

// BestAgent returns the single best agent for the description, applying the
// confidence floor. Returns ("", false) when no agent clears the floor,
// which signals the clarification path upstream.
func (c *IntentClassifier) BestAgent(description string, confidenceFloor float64) (string, bool) {
	candidates := c.Classify(description)
	if len(candidates) == 0 {
		slog.Warn("no agent matched description", "description", description)
		return "", false
	}

	best := candidates[0]
	if best.Score < confidenceFloor {
		slog.Info("best candidate below confidence floor",
			"agent", best.Agent,
			"score", best.Score,
			"floor", confidenceFloor,
		)
		return "", false
	}

	slog.Info("intent routing decision",
		"description", description,
		"agent", best.Agent,
		"score", best.Score,
	)
	return best.Agent, true
}

// ExplainRouting returns the ranked candidates plus the keywords that fired
// per agent. It never fails; an unmatched description yields an explanation
// with an empty match list.
func (c *IntentClassifier) ExplainRouting(description string) *Explanation {
	explanation := &Explanation{
		Description:   description,
		AgentsChecked: len(c.registry.Names()),
	}
	if description == "" {
		return explanation
	}
	explanation.Matches = c.Classify(description)
	return explanation
}

// sortCandidates orders by score descending, routing priority descending,
// then agent name ascending. The final comparison makes ordering total.
func sortCandidates(candidates []Candidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		if candidates[i].Priority != candidates[j].Priority {
			return candidates[i].Priority > candidates[j].Priority
		}
		return candidates[i].Agent < candidates[j].Agent
	})
}
