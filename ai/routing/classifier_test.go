package routing

import (
	"reflect"
	"testing"
)

// newTestRegistry mirrors the production agent set with the same keyword
// profiles and priorities.
func newTestRegistry(t *testing.T) *CapabilityRegistry {
	t.Helper()
	registry := NewCapabilityRegistry()

	register := func(name string, capability *AgentCapability) {
		if err := registry.Register(name, capability); err != nil {
			t.Fatalf("register %s: %v", name, err)
		}
	}

	register("transcription_agent", &AgentCapability{
		IntentKeywords: []string{
			"transcribe", "transcript", "speech", "audio",
			"what said", "subtitles",
		},
		Categories:      []Category{CategoryAudio, CategoryText},
		RoutingPriority: 8,
	})
	register("vision_agent", &AgentCapability{
		IntentKeywords: []string{
			"detect", "object", "person", "car", "track",
			"what happens", "describe video",
		},
		Categories:      []Category{CategoryVision, CategoryAnalysis},
		RoutingPriority: 9,
	})
	register("report_agent", &AgentCapability{
		IntentKeywords:  []string{"report", "pdf", "document", "generate report"},
		Categories:      []Category{CategoryGeneration, CategoryText},
		RoutingPriority: 7,
	})
	register("reclarify_agent", &AgentCapability{
		IntentKeywords:  []string{"help", "explain", "clarify", "chat"},
		Categories:      []Category{CategoryText},
		RoutingPriority: 5,
	})

	return registry
}

func TestIntentClassifier_TranscribeRoutesToTranscription(t *testing.T) {
	classifier := NewIntentClassifier(newTestRegistry(t))

	candidates := classifier.Classify("Transcribe the video")
	if len(candidates) == 0 {
		t.Fatal("expected at least one candidate")
	}
	if candidates[0].Agent != "transcription_agent" {
		t.Errorf("top candidate = %s, want transcription_agent", candidates[0].Agent)
	}
	if !reflect.DeepEqual(candidates[0].MatchedKeywords, []string{"transcribe"}) {
		t.Errorf("matched keywords = %v, want [transcribe]", candidates[0].MatchedKeywords)
	}

	agent, ok := classifier.BestAgent("Transcribe the video", 0.0)
	if !ok || agent != "transcription_agent" {
		t.Errorf("BestAgent = %q (%v), want transcription_agent", agent, ok)
	}
}

func TestIntentClassifier_GibberishMatchesNothing(t *testing.T) {
	classifier := NewIntentClassifier(newTestRegistry(t))

	if candidates := classifier.Classify("asdkjhasd"); len(candidates) != 0 {
		t.Errorf("expected no candidates, got %v", candidates)
	}
	if agent, ok := classifier.BestAgent("asdkjhasd", 0.0); ok {
		t.Errorf("expected no best agent, got %q", agent)
	}
}

func TestIntentClassifier_EmptyDescription(t *testing.T) {
	classifier := NewIntentClassifier(newTestRegistry(t))

	if candidates := classifier.Classify(""); candidates != nil {
		t.Errorf("expected nil candidates for empty description, got %v", candidates)
	}
	if _, ok := classifier.BestAgent("", 0.0); ok {
		t.Error("expected no best agent for empty description")
	}
}

func TestIntentClassifier_Deterministic(t *testing.T) {
	classifier := NewIntentClassifier(newTestRegistry(t))
	description := "transcribe the speech and detect every object"

	first := classifier.Classify(description)
	for i := 0; i < 10; i++ {
		again := classifier.Classify(description)
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("classification not deterministic: %v vs %v", first, again)
		}
	}
}

func TestIntentClassifier_TieBreak(t *testing.T) {
	registry := NewCapabilityRegistry()
	// Identical keyword sets, different priorities: same density, the
	// priority term decides. Equal priorities fall back to name order.
	_ = registry.Register("b_agent", &AgentCapability{IntentKeywords: []string{"analyze"}, RoutingPriority: 5})
	_ = registry.Register("a_agent", &AgentCapability{IntentKeywords: []string{"analyze"}, RoutingPriority: 5})
	_ = registry.Register("c_agent", &AgentCapability{IntentKeywords: []string{"analyze"}, RoutingPriority: 9})

	classifier := NewIntentClassifier(registry)
	candidates := classifier.Classify("analyze this")
	if len(candidates) != 3 {
		t.Fatalf("expected 3 candidates, got %d", len(candidates))
	}
	want := []string{"c_agent", "a_agent", "b_agent"}
	for i, name := range want {
		if candidates[i].Agent != name {
			t.Errorf("candidates[%d] = %s, want %s", i, candidates[i].Agent, name)
		}
	}
}

func TestIntentClassifier_ConfidenceFloor(t *testing.T) {
	registry := NewCapabilityRegistry()
	// One hit out of many keywords keeps the density term small enough to
	// fall under a strict floor.
	_ = registry.Register("wide_agent", &AgentCapability{
		IntentKeywords:  []string{"alpha", "beta", "gamma", "delta", "epsilon", "zeta", "eta", "theta", "iota", "kappa"},
		RoutingPriority: 1,
	})
	classifier := NewIntentClassifier(registry)

	if _, ok := classifier.BestAgent("alpha only", 0.5); ok {
		t.Error("expected candidate below floor to be rejected")
	}
	if agent, ok := classifier.BestAgent("alpha only", 0.05); !ok || agent != "wide_agent" {
		t.Errorf("expected wide_agent above floor, got %q (%v)", agent, ok)
	}
}

func TestIntentClassifier_ExplainRouting(t *testing.T) {
	classifier := NewIntentClassifier(newTestRegistry(t))

	explanation := classifier.ExplainRouting("transcribe and detect objects")
	if explanation.AgentsChecked != 4 {
		t.Errorf("AgentsChecked = %d, want 4", explanation.AgentsChecked)
	}
	if len(explanation.Matches) < 2 {
		t.Fatalf("expected transcription and vision to match, got %v", explanation.Matches)
	}
	for _, match := range explanation.Matches {
		if len(match.MatchedKeywords) == 0 {
			t.Errorf("match %s has no keywords", match.Agent)
		}
	}

	// Never fails, even on empty input.
	empty := classifier.ExplainRouting("")
	if empty == nil || len(empty.Matches) != 0 {
		t.Errorf("expected well-formed empty explanation, got %+v", empty)
	}
}
