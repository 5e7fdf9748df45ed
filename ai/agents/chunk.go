package agents

// ChunkType tags one unit of a streamed chat response.
type ChunkType string

const (
	// ChunkMessage is an informational message, e.g. a clarification request.
	ChunkMessage ChunkType = "message"
	// ChunkProgress is a partial or intermediate update.
	ChunkProgress ChunkType = "progress"
	// ChunkResult carries the final payload of a successful execution.
	ChunkResult ChunkType = "result"
	// ChunkError carries a human-readable failure message.
	ChunkError ChunkType = "error"
)

// Chunk is one unit of a streamed response.
type Chunk struct {
	Type       ChunkType `json:"type"`
	Content    string    `json:"content"`
	AgentName  string    `json:"agent_name,omitempty"`
	ResultJSON string    `json:"result_json,omitempty"`
}

// EmitFunc delivers one chunk to the stream consumer. A non-nil error
// aborts the execution; the transport is gone.
type EmitFunc func(chunk *Chunk) error

// AuthoritativeAnswer picks "the answer" from an emitted chunk sequence:
// scanning from the end, the last result chunk wins; failing that, the
// most recent chunk with non-empty content.
func AuthoritativeAnswer(chunks []*Chunk) string {
	for i := len(chunks) - 1; i >= 0; i-- {
		if chunks[i].Type == ChunkResult {
			return chunks[i].Content
		}
	}
	for i := len(chunks) - 1; i >= 0; i-- {
		if chunks[i].Content != "" {
			return chunks[i].Content
		}
	}
	return ""
}
