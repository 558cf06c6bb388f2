// Package conversation owns per-user conversation state: the append-only
// message history and the AI/agent handoff state machine.
package conversation

import (
	"time"

	"github.com/induxo/chatcore/internal/models"
)

// HistoryCap bounds the retained history per conversation. Oldest entries
// are dropped first once the cap is exceeded.
const HistoryCap = 20

// State is the conversation record for one channel-specific user id.
// Mutate only through Store.Update, which serializes access per key.
type State struct {
	UserID       string            `json:"userId"`
	Status       models.Status     `json:"status"`
	AgentID      string            `json:"agentId,omitempty"`
	CreatedAt    time.Time         `json:"createdAt"`
	LastActivity time.Time         `json:"lastActivity"`
	History      []models.Message  `json:"conversationHistory"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// Append adds a message to the history, evicting the oldest entry once
// the cap is exceeded.
func (s *State) Append(role models.Role, content string, at time.Time) {
	s.History = append(s.History, models.Message{Role: role, Content: content, Timestamp: at})
	if len(s.History) > HistoryCap {
		s.History = append(s.History[:0], s.History[len(s.History)-HistoryCap:]...)
	}
}

// LastHistory returns up to n most recent messages, oldest first.
func (s *State) LastHistory(n int) []models.Message {
	if n <= 0 || len(s.History) <= n {
		return s.History
	}
	return s.History[len(s.History)-n:]
}

// RequestAgent transitions toward human handling after a needs-agent
// decision. Reports whether the status changed.
func (s *State) RequestAgent() bool {
	switch s.Status {
	case models.StatusAIActive:
		s.Status = models.StatusPendingAgent
		return true
	case models.StatusPendingAgent:
		// Already waiting; the AI keeps serving in the meantime.
		return false
	case models.StatusAgentActive:
		// A human is already on it.
		return false
	default:
		return false
	}
}

// BindAgent binds a human agent to the conversation. Idempotent when the
// same agent is already bound.
func (s *State) BindAgent(agentID string) bool {
	switch s.Status {
	case models.StatusAIActive, models.StatusPendingAgent:
		s.Status = models.StatusAgentActive
		s.AgentID = agentID
		return true
	case models.StatusAgentActive:
		s.AgentID = agentID
		return false
	default:
		return false
	}
}

// ReleaseAgent returns the conversation to AI handling and clears the
// agent binding. Reports whether an agent was actually bound.
func (s *State) ReleaseAgent() bool {
	switch s.Status {
	case models.StatusAgentActive:
		s.Status = models.StatusAIActive
		s.AgentID = ""
		return true
	case models.StatusPendingAgent:
		s.Status = models.StatusAIActive
		return true
	case models.StatusAIActive:
		return false
	default:
		return false
	}
}

// AIShouldAnswer reports whether the AI answers inbound user messages in
// the current status. While pending, the AI keeps the user engaged; once
// an agent is active the AI stays silent.
func (s *State) AIShouldAnswer() bool {
	switch s.Status {
	case models.StatusAIActive, models.StatusPendingAgent:
		return true
	case models.StatusAgentActive:
		return false
	default:
		return false
	}
}
