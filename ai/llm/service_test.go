package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServiceRequiresModel(t *testing.T) {
	_, err := NewService(nil)
	require.Error(t, err)

	_, err = NewService(&Config{Provider: "ollama"})
	require.Error(t, err)
}

func TestNewServiceDefaults(t *testing.T) {
	svc, err := NewService(&Config{Provider: "ollama", Model: "llama3.1"})
	require.NoError(t, err)

	s, ok := svc.(*service)
	require.True(t, ok)
	assert.Equal(t, "llama3.1", s.model)
	assert.Equal(t, 120, s.timeout)
	assert.Equal(t, 2048, s.maxTokens)
	assert.InDelta(t, 0.7, float64(s.temperature), 0.001)
}

func TestMessageHelpers(t *testing.T) {
	assert.Equal(t, Message{Role: "system", Content: "be brief"}, SystemPrompt("be brief"))
	assert.Equal(t, Message{Role: "user", Content: "hi"}, UserMessage("hi"))
	assert.Equal(t, Message{Role: "assistant", Content: "hello"}, AssistantMessage("hello"))
}

func TestConvertMessages(t *testing.T) {
	converted := convertMessages([]Message{
		SystemPrompt("sys"),
		UserMessage("question"),
	})
	require.Len(t, converted, 2)
	assert.Equal(t, "system", converted[0].Role)
	assert.Equal(t, "sys", converted[0].Content)
	assert.Equal(t, "user", converted[1].Role)
	assert.Equal(t, "question", converted[1].Content)
}
