package models

import (
	"encoding/json"
	"testing"
)

func TestStatusRoundTrip(t *testing.T) {
	tests := []struct {
		status Status
		wire   string
	}{
		{StatusAIActive, `"ai_active"`},
		{StatusPendingAgent, `"pending_agent"`},
		{StatusAgentActive, `"agent_active"`},
	}

	for _, tt := range tests {
		t.Run(tt.status.String(), func(t *testing.T) {
			data, err := json.Marshal(tt.status)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			if string(data) != tt.wire {
				t.Errorf("marshal = %s, want %s", data, tt.wire)
			}

			var got Status
			if err := json.Unmarshal(data, &got); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if got != tt.status {
				t.Errorf("round trip = %v, want %v", got, tt.status)
			}
		})
	}
}

func TestStatusUnmarshalUnknown(t *testing.T) {
	var s Status
	if err := json.Unmarshal([]byte(`"escalated"`), &s); err == nil {
		t.Error("expected error for unknown status string")
	}
}

func TestStatusZeroValueIsAIActive(t *testing.T) {
	var s Status
	if s != StatusAIActive {
		t.Errorf("zero value = %v, want ai_active", s)
	}
}
