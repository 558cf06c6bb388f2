package models

import (
	"encoding/json"
	"fmt"
)

// Status is the conversation handling state. The zero value is
// StatusAIActive, which is the initial state of every conversation.
type Status int

const (
	// StatusAIActive means the AI answers every inbound message.
	StatusAIActive Status = iota

	// StatusPendingAgent means a human was requested but has not yet
	// responded. The AI keeps answering to hold the conversation.
	StatusPendingAgent

	// StatusAgentActive means a human agent is bound and answering;
	// the AI stays silent.
	StatusAgentActive
)

var statusNames = map[Status]string{
	StatusAIActive:     "ai_active",
	StatusPendingAgent: "pending_agent",
	StatusAgentActive:  "agent_active",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// MarshalJSON encodes the status as its wire string.
func (s Status) MarshalJSON() ([]byte, error) {
	name, ok := statusNames[s]
	if !ok {
		return nil, fmt.Errorf("unknown status %d", int(s))
	}
	return json.Marshal(name)
}

// UnmarshalJSON decodes a wire string into a status.
func (s *Status) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	for st, n := range statusNames {
		if n == name {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("unknown status %q", name)
}
