package store

import "time"

// Turn is one user/assistant exchange inside a chat session.
type Turn struct {
	Role      string    `json:"role"` // "user" | "assistant"
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Conversation is the active in-memory state of a chat session. The
// persisted ChatSession row keeps the durable history; this keeps the
// working window handed to the processing service on each message.
type Conversation struct {
	SessionId string `json:"session_id"`
	UserId    string `json:"user_id"`
	ChatType  string `json:"chat_type"` // "project" | "transcript"
	Turns     []Turn `json:"turns"`
	LastQuery string `json:"last_query"`
}

const (
	ChatTypeProject    = "project"
	ChatTypeTranscript = "transcript"

	RoleUser      = "user"
	RoleAssistant = "assistant"
)
