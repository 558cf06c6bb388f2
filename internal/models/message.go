// Package models defines the shared data structures for the chatcore service.
package models

import "time"

// Role identifies the author of a conversation message.
type Role string

const (
	RoleUser  Role = "user"
	RoleAI    Role = "ai"
	RoleAgent Role = "agent"
)

// Message is a single conversation turn. Messages are immutable once
// appended to a conversation history.
type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// TurnEntry is the caller-supplied history shape of the web chat channel.
// The web channel is stateless: the widget echoes history on every request.
type TurnEntry struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the web chat request body.
type ChatRequest struct {
	Message             string      `json:"message"`
	ConversationHistory []TurnEntry `json:"conversationHistory,omitempty"`
}

// ChatResponse is the web chat response body.
type ChatResponse struct {
	Message    string `json:"message"`
	NeedsAgent bool   `json:"needsAgent,omitempty"`
	Error      string `json:"error,omitempty"`
}

// HistoryFromTurns converts caller-supplied turns into messages.
func HistoryFromTurns(turns []TurnEntry) []Message {
	msgs := make([]Message, 0, len(turns))
	for _, t := range turns {
		msgs = append(msgs, Message{Role: t.Role, Content: t.Content})
	}
	return msgs
}
