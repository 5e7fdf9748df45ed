package routing

import (
	"errors"
	"testing"
)

func TestAgentCapability_MatchScore(t *testing.T) {
	capability := &AgentCapability{
		IntentKeywords:  []string{"transcribe", "transcript", "speech", "audio"},
		RoutingPriority: 8,
	}

	tests := []struct {
		name        string
		description string
		wantZero    bool
		wantMatched []string
	}{
		{
			name:        "single keyword hit",
			description: "Transcribe the video",
			wantMatched: []string{"transcribe"},
		},
		{
			name:        "multiple keyword hits",
			description: "generate a transcript of the speech",
			wantMatched: []string{"transcript", "speech"},
		},
		{
			name:        "no keywords",
			description: "detect objects in the frame",
			wantZero:    true,
		},
		{
			name:        "empty description",
			description: "",
			wantZero:    true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			score, matched := capability.MatchScore(tc.description)
			if tc.wantZero {
				if score != 0 {
					t.Errorf("expected zero score, got %v", score)
				}
				return
			}
			if score <= 0 || score > 1 {
				t.Errorf("score out of range: %v", score)
			}
			if len(matched) != len(tc.wantMatched) {
				t.Fatalf("matched = %v, want %v", matched, tc.wantMatched)
			}
			for i, kw := range tc.wantMatched {
				if matched[i] != kw {
					t.Errorf("matched[%d] = %q, want %q", i, matched[i], kw)
				}
			}
		})
	}
}

func TestAgentCapability_MatchScoreMonotonic(t *testing.T) {
	capability := &AgentCapability{
		IntentKeywords:  []string{"detect", "object", "person", "track"},
		RoutingPriority: 9,
	}

	one, _ := capability.MatchScore("detect something")
	two, _ := capability.MatchScore("detect an object")
	three, _ := capability.MatchScore("detect and track an object")

	if !(one < two && two < three) {
		t.Errorf("score not monotonic in matched keywords: %v %v %v", one, two, three)
	}
}

func TestMatchesKeyword_WordBoundaries(t *testing.T) {
	tests := []struct {
		text    string
		keyword string
		want    bool
	}{
		{"a red car drives by", "car", true},
		{"she wore a scarf", "car", false},
		{"cars on the road", "car", false},
		{"what said in the video", "what said", true},
		{"somewhat saidly", "what said", false},
		{"car", "car", true},
	}

	for _, tc := range tests {
		if got := matchesKeyword(tc.text, tc.keyword); got != tc.want {
			t.Errorf("matchesKeyword(%q, %q) = %v, want %v", tc.text, tc.keyword, got, tc.want)
		}
	}
}

func TestCapabilityRegistry_Register(t *testing.T) {
	registry := NewCapabilityRegistry()

	if err := registry.Register("vision_agent", &AgentCapability{
		IntentKeywords:  []string{"Detect", " OBJECT "},
		RoutingPriority: 9,
	}); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	capability, err := registry.Get("vision_agent")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if capability.IntentKeywords[0] != "detect" || capability.IntentKeywords[1] != "object" {
		t.Errorf("keywords not normalized: %v", capability.IntentKeywords)
	}
}

func TestCapabilityRegistry_RegisterRejectsEmptyKeywords(t *testing.T) {
	registry := NewCapabilityRegistry()

	if err := registry.Register("bad_agent", &AgentCapability{}); err == nil {
		t.Error("expected error for empty keywords")
	}
	if err := registry.Register("", &AgentCapability{IntentKeywords: []string{"x"}}); err == nil {
		t.Error("expected error for empty name")
	}
}

func TestCapabilityRegistry_LastWriterWins(t *testing.T) {
	registry := NewCapabilityRegistry()

	_ = registry.Register("agent", &AgentCapability{IntentKeywords: []string{"old"}, RoutingPriority: 1})
	_ = registry.Register("agent", &AgentCapability{IntentKeywords: []string{"new"}, RoutingPriority: 5})

	capability, err := registry.Get("agent")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if capability.IntentKeywords[0] != "new" || capability.RoutingPriority != 5 {
		t.Errorf("re-registration did not overwrite: %+v", capability)
	}
	if len(registry.Names()) != 1 {
		t.Errorf("expected single registration, got %v", registry.Names())
	}
}

func TestCapabilityRegistry_GetUnknown(t *testing.T) {
	registry := NewCapabilityRegistry()

	_, err := registry.Get("nope")
	if !errors.Is(err, ErrAgentNotFound) {
		t.Errorf("expected ErrAgentNotFound, got %v", err)
	}
}

func TestCapabilityRegistry_PriorityClamped(t *testing.T) {
	registry := NewCapabilityRegistry()

	_ = registry.Register("low", &AgentCapability{IntentKeywords: []string{"a"}, RoutingPriority: 0})
	_ = registry.Register("high", &AgentCapability{IntentKeywords: []string{"b"}, RoutingPriority: 42})

	low, _ := registry.Get("low")
	high, _ := registry.Get("high")
	if low.RoutingPriority != 1 {
		t.Errorf("low priority = %d, want 1", low.RoutingPriority)
	}
	if high.RoutingPriority != 10 {
		t.Errorf("high priority = %d, want 10", high.RoutingPriority)
	}
}
