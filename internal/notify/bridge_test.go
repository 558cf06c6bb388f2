package notify

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/induxo/chatcore/internal/conversation"
	"github.com/induxo/chatcore/internal/models"
)

type fakeSender struct {
	sent []struct{ to, body string }
	err  error
}

func (f *fakeSender) SendText(ctx context.Context, to, body string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, struct{ to, body string }{to, body})
	return nil
}

func stateWithHistory(n int) conversation.State {
	var st conversation.State
	st.UserID = "491711234"
	for i := 0; i < n; i++ {
		role := models.RoleUser
		if i%2 == 1 {
			role = models.RoleAI
		}
		st.Append(role, "turn", time.Now())
	}
	return st
}

func TestNotifyDeliversToAllAgents(t *testing.T) {
	sender := &fakeSender{}
	b := NewBridge(sender, []string{"agent-1", "agent-2"}, nil)

	delivered := b.Notify(context.Background(), "491711234", "I need a human", stateWithHistory(3))
	if !delivered {
		t.Error("delivered = false, want true")
	}
	if len(sender.sent) != 2 {
		t.Fatalf("sent %d alerts, want 2", len(sender.sent))
	}
	if !strings.Contains(sender.sent[0].body, "491711234") {
		t.Error("alert missing user id")
	}
	if !strings.Contains(sender.sent[0].body, "I need a human") {
		t.Error("alert missing triggering message")
	}
}

func TestNotifyLimitsHistoryPreview(t *testing.T) {
	sender := &fakeSender{}
	b := NewBridge(sender, []string{"agent-1"}, nil)

	b.Notify(context.Background(), "u", "trigger", stateWithHistory(12))

	body := sender.sent[0].body
	if got := strings.Count(body, "turn"); got != historyPreview {
		t.Errorf("alert contains %d history turns, want %d", got, historyPreview)
	}
}

func TestNotifyFailureIsSwallowed(t *testing.T) {
	sender := &fakeSender{err: errors.New("transport down")}
	b := NewBridge(sender, []string{"agent-1"}, nil)

	// Must not panic or propagate; returns best-effort false.
	if b.Notify(context.Background(), "u", "t", stateWithHistory(1)) {
		t.Error("delivered = true despite transport failure")
	}
}

func TestNotifyWithoutConfiguration(t *testing.T) {
	b := NewBridge(nil, nil, nil)
	if b.Notify(context.Background(), "u", "t", conversation.State{}) {
		t.Error("delivered = true with no configuration")
	}
}
