package store

// Message roles within a chat session.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is one turn kept in a session's recent window.
type ChatMessage struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp"`
}

// ChatSession is the per-video conversation record. RecentMessages holds
// only the retained window; older turns live on in ConversationSummary.
// TotalMessages counts every turn ever appended, including trimmed ones.
type ChatSession struct {
	VideoID             string
	VideoName           string
	VideoPath           string
	ConversationSummary string
	RecentMessages      []ChatMessage
	TotalMessages       int
	CreatedTs           int64
	UpdatedTs           int64
}
