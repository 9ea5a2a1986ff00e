package ai

import "time"

// Message roles as stored in chat history.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Message is a single entry in the caller-owned chat history.
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Turn is one message in the sequence sent to a model backend.
// System-role history entries are local annotations and never become turns.
type Turn struct {
	Role    string
	Content string
}

// Request is the normalized request shape shared by all provider adapters.
// It is constructed fresh per call and owned by the adapter for the duration
// of that call only.
type Request struct {
	SystemPrompt string
	Turns        []Turn
}
