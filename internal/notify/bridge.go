// Package notify pushes handoff alerts to the human-agent channel.
// Delivery is best-effort: a failed notification is logged and swallowed,
// never failing the user-facing turn.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/induxo/chatcore/internal/conversation"
	"github.com/induxo/chatcore/internal/models"
)

// historyPreview is how many recent turns are included in an alert.
const historyPreview = 5

// Sender delivers a text message over the agent channel transport.
type Sender interface {
	SendText(ctx context.Context, to, body string) error
}

// Bridge formats and delivers handoff alerts to the configured agent
// numbers.
type Bridge struct {
	sender Sender
	agents []string
	logger *slog.Logger
}

// NewBridge creates a Bridge. With no agent numbers configured every
// Notify is a logged no-op.
func NewBridge(sender Sender, agents []string, logger *slog.Logger) *Bridge {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bridge{sender: sender, agents: agents, logger: logger}
}

// Notify sends a handoff alert for the user's conversation. Returns
// whether at least one agent received it; the caller must not fail the
// turn either way.
func (b *Bridge) Notify(ctx context.Context, userID, trigger string, st conversation.State) bool {
	if len(b.agents) == 0 || b.sender == nil {
		b.logger.Warn("handoff alert dropped: no agent channel configured", "user", userID)
		return false
	}

	body := formatAlert(userID, trigger, st)
	delivered := false
	for _, agent := range b.agents {
		if err := b.sender.SendText(ctx, agent, body); err != nil {
			b.logger.Error("handoff alert delivery failed", "agent", agent, "user", userID, "error", err)
			continue
		}
		delivered = true
	}

	b.logger.Info("handoff alert", "id", uuid.NewString(), "user", userID, "delivered", delivered)
	return delivered
}

var roleLabels = map[models.Role]string{
	models.RoleUser:  "Customer",
	models.RoleAI:    "Assistant",
	models.RoleAgent: "Agent",
}

// formatAlert renders the alert text: header, recent history, trigger.
func formatAlert(userID, trigger string, st conversation.State) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Customer %s is asking for a human.\n\nRecent conversation:\n", userID)

	for _, msg := range st.LastHistory(historyPreview) {
		label, ok := roleLabels[msg.Role]
		if !ok {
			label = string(msg.Role)
		}
		fmt.Fprintf(&sb, "%s: %s\n", label, msg.Content)
	}

	fmt.Fprintf(&sb, "\nTriggering message: %s\n", trigger)
	sb.WriteString("Reply here to take over, or send /takeover to claim the conversation.")
	return sb.String()
}
