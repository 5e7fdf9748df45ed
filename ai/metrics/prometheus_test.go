package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestExporter(t *testing.T) {
	exporter := NewExporter(DefaultConfig())

	t.Run("RecordRoutingDecision", func(t *testing.T) {
		exporter.RecordRoutingDecision("transcription_agent", "dispatched", 0.36)
		exporter.RecordRoutingDecision("vision_agent", "dispatched", 0.51)
		exporter.RecordRoutingDecision("reclarify_agent", "clarify", 0)
	})

	t.Run("RecordAgentRun", func(t *testing.T) {
		exporter.RecordAgentRun("transcription_agent", 2*time.Second, true)
		exporter.RecordAgentRun("vision_agent", 500*time.Millisecond, false)
	})

	t.Run("RecordToolCall", func(t *testing.T) {
		exporter.RecordToolCall("whisper", 3*time.Second, true)
		exporter.RecordToolCall("detector", 100*time.Millisecond, false)
	})

	t.Run("ChatGauges", func(t *testing.T) {
		exporter.ChatStarted()
		exporter.RecordChatTurn()
		exporter.ChatFinished()
	})

	t.Run("RecordSummaryRegen", func(t *testing.T) {
		exporter.RecordSummaryRegen("llm")
		exporter.RecordSummaryRegen("fallback_digest")
	})
}

func TestExporterHandler(t *testing.T) {
	exporter := NewExporter(DefaultConfig())

	exporter.RecordRoutingDecision("transcription_agent", "dispatched", 0.36)
	exporter.RecordAgentRun("transcription_agent", time.Second, true)
	exporter.RecordChatTurn()

	req := httptest.NewRequest("GET", "/metrics", http.NoBody)
	w := httptest.NewRecorder()

	exporter.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}

	body := w.Body.String()
	if !strings.Contains(body, "videoscope_ai_routing_decisions_total") {
		t.Error("expected routing_decisions_total metric in output")
	}
	if !strings.Contains(body, "videoscope_ai_agent_runs_total") {
		t.Error("expected agent_runs_total metric in output")
	}
	if !strings.Contains(body, "videoscope_ai_chat_turns_total") {
		t.Error("expected chat_turns_total metric in output")
	}
}
