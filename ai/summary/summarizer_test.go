package summary

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/videoscope/videoscope/ai/llm"
)

// stubLLM returns a fixed reply or error for every chat call.
type stubLLM struct {
	reply string
	err   error
	calls int
}

func (s *stubLLM) Chat(_ context.Context, _ []llm.Message) (string, *llm.CallStats, error) {
	s.calls++
	return s.reply, &llm.CallStats{}, s.err
}

func (s *stubLLM) Warmup(context.Context) {}

func TestSummarizeTurns_UsesLLM(t *testing.T) {
	stub := &stubLLM{reply: "The user asked for a transcript."}
	s := NewConversationSummarizer(stub)

	result := s.SummarizeTurns(context.Background(), []Turn{
		{Role: "user", Content: "transcribe the video"},
		{Role: "assistant", Content: "Here is the transcript."},
	})

	if result.Source != "llm" {
		t.Errorf("source = %s, want llm", result.Source)
	}
	if result.Summary != "The user asked for a transcript." {
		t.Errorf("unexpected summary: %q", result.Summary)
	}
	if stub.calls != 1 {
		t.Errorf("llm calls = %d, want 1", stub.calls)
	}
}

func TestSummarizeTurns_FallbackOnLLMError(t *testing.T) {
	s := NewConversationSummarizer(&stubLLM{err: errors.New("connection refused")})

	result := s.SummarizeTurns(context.Background(), []Turn{
		{Role: "user", Content: "what cars appear in the video?"},
	})

	if result.Source != "fallback_digest" {
		t.Errorf("source = %s, want fallback_digest", result.Source)
	}
	if !strings.Contains(result.Summary, "what cars appear in the vide") {
		t.Errorf("digest missing content fragment: %q", result.Summary)
	}
}

func TestSummarizeTurns_NilLLM(t *testing.T) {
	s := NewConversationSummarizer(nil)

	result := s.SummarizeTurns(context.Background(), []Turn{
		{Role: "user", Content: "detect objects"},
	})
	if result.Source != "fallback_digest" || result.Summary == "" {
		t.Errorf("unexpected result: %+v", result)
	}

	if empty := s.SummarizeTurns(context.Background(), nil); empty.Summary != "" {
		t.Errorf("expected empty summary for no turns, got %q", empty.Summary)
	}
}

func TestMerge(t *testing.T) {
	t.Run("llm merge", func(t *testing.T) {
		s := NewConversationSummarizer(&stubLLM{reply: "merged"})
		result := s.Merge(context.Background(), "old", "new")
		if result.Source != "llm" || result.Summary != "merged" {
			t.Errorf("unexpected result: %+v", result)
		}
	})

	t.Run("concat on llm failure", func(t *testing.T) {
		s := NewConversationSummarizer(&stubLLM{err: errors.New("down")})
		result := s.Merge(context.Background(), "old", "new")
		if result.Source != "fallback_concat" || result.Summary != "old new" {
			t.Errorf("unexpected result: %+v", result)
		}
	})

	t.Run("one side empty skips llm", func(t *testing.T) {
		stub := &stubLLM{reply: "should not be used"}
		s := NewConversationSummarizer(stub)
		if result := s.Merge(context.Background(), "", "only"); result.Summary != "only" {
			t.Errorf("unexpected summary: %q", result.Summary)
		}
		if result := s.Merge(context.Background(), "only", ""); result.Summary != "only" {
			t.Errorf("unexpected summary: %q", result.Summary)
		}
		if stub.calls != 0 {
			t.Errorf("llm should not be called, got %d calls", stub.calls)
		}
	})
}

func TestTruncateRunes(t *testing.T) {
	if got := truncateRunes("héllo wörld", 5); utf8Len(got) != 5 {
		t.Errorf("truncateRunes produced %q", got)
	}
	if got := truncateRunes("short", 100); got != "short" {
		t.Errorf("truncateRunes modified short string: %q", got)
	}
}

func utf8Len(s string) int {
	n := 0
	for range s {
		n++
	}
	return n
}
