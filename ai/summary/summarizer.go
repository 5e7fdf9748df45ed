// Package summary produces the rolling conversation digest kept per video.
// Summaries come from the LLM when it is reachable and degrade to
// deterministic fallbacks when it is not; a summarization failure never
// fails the chat turn that triggered it.
package summary

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/videoscope/videoscope/ai/llm"
)

// Turn is one conversation exchange entry handed to the summarizer.
type Turn struct {
	Role    string
	Content string
}

// Result is a produced summary plus its provenance.
type Result struct {
	Summary string
	Source  string // "llm" | "fallback_digest" | "fallback_concat" | "fallback_truncate"
	Latency time.Duration
}

const (
	// Per-message cap before the text reaches the prompt.
	maxMessageLen = 500
	// Upper bound for any produced summary, in runes.
	maxSummaryLen = 800
)

const summarizeSystemPrompt = "You summarize conversations between a user and a video-analysis assistant. " +
	"Extract the key questions, findings, and conclusions in two to three sentences. " +
	"Keep concrete details such as detected objects, transcript topics, and report requests."

// ConversationSummarizer generates and merges conversation summaries.
// A nil LLM service is valid and routes every call to the fallbacks.
type ConversationSummarizer struct {
	llm llm.Service
}

// NewConversationSummarizer creates a summarizer backed by the given LLM.
func NewConversationSummarizer(service llm.Service) *ConversationSummarizer {
	return &ConversationSummarizer{llm: service}
}

// SummarizeTurns digests a batch of conversation turns. Never returns an
// error: when the LLM call fails the deterministic digest is used instead.
func (s *ConversationSummarizer) SummarizeTurns(ctx context.Context, turns []Turn) *Result {
	if len(turns) == 0 {
		return &Result{Source: "fallback_truncate"}
	}

	if s.llm != nil {
		start := time.Now()
		var sb strings.Builder
		sb.WriteString("Summarize the following conversation:\n\n")
		for _, turn := range turns {
			sb.WriteString(strings.ToUpper(turn.Role))
			sb.WriteString(": ")
			sb.WriteString(truncateRunes(turn.Content, maxMessageLen))
			sb.WriteString("\n")
		}

		content, _, err := s.llm.Chat(ctx, []llm.Message{
			llm.SystemPrompt(summarizeSystemPrompt),
			llm.UserMessage(sb.String()),
		})
		if err == nil && strings.TrimSpace(content) != "" {
			return &Result{
				Summary: truncateRunes(strings.TrimSpace(content), maxSummaryLen),
				Source:  "llm",
				Latency: time.Since(start),
			}
		}
		slog.Warn("llm summarization failed, using fallback digest", "error", err)
	}

	return fallbackDigest(turns)
}

// Merge combines the existing rolling summary with the summary of newly
// trimmed turns. Never returns an error.
func (s *ConversationSummarizer) Merge(ctx context.Context, oldSummary, newSummary string) *Result {
	oldSummary = strings.TrimSpace(oldSummary)
	newSummary = strings.TrimSpace(newSummary)
	if oldSummary == "" {
		return &Result{Summary: newSummary, Source: "fallback_concat"}
	}
	if newSummary == "" {
		return &Result{Summary: oldSummary, Source: "fallback_concat"}
	}

	if s.llm != nil {
		start := time.Now()
		prompt := fmt.Sprintf(
			"Merge these two conversation summaries into one concise summary, keeping the most recent details when they conflict.\n\nEarlier summary:\n%s\n\nNewer summary:\n%s",
			oldSummary, newSummary,
		)
		content, _, err := s.llm.Chat(ctx, []llm.Message{
			llm.SystemPrompt(summarizeSystemPrompt),
			llm.UserMessage(prompt),
		})
		if err == nil && strings.TrimSpace(content) != "" {
			return &Result{
				Summary: truncateRunes(strings.TrimSpace(content), maxSummaryLen),
				Source:  "llm",
				Latency: time.Since(start),
			}
		}
		slog.Warn("llm summary merge failed, concatenating", "error", err)
	}

	return &Result{
		Summary: truncateRunes(oldSummary+" "+newSummary, maxSummaryLen),
		Source:  "fallback_concat",
	}
}

// SummarizeText digests arbitrary text, used for on-demand history summaries.
func (s *ConversationSummarizer) SummarizeText(ctx context.Context, text string) *Result {
	text = strings.TrimSpace(text)
	if text == "" {
		return &Result{Source: "fallback_truncate"}
	}
	return s.SummarizeTurns(ctx, []Turn{{Role: "user", Content: text}})
}
