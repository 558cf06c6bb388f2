package whatsapp

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/induxo/chatcore/internal/conversation"
	"github.com/induxo/chatcore/internal/generator"
	"github.com/induxo/chatcore/internal/models"
)

// Canned user-facing messages. Kept free of any operational detail.
const (
	agentAckMessage = "One of our team members will follow up with you here shortly. " +
		"In the meantime I'm happy to keep helping."
	closingMessage = "Thanks for chatting with us! If anything else comes up, " +
		"just send a message and our assistant will pick it up."
	welcomeBackMessage = "You're back with our automated assistant. How can I help?"
	noConversationMsg  = "No customer conversation is waiting or assigned to you right now."
	agentHelpText      = "Commands: /takeover (claim the waiting conversation), " +
		"/ai (hand back to the assistant), /done (close and hand back). " +
		"Plain text is forwarded to the customer."
)

// Responder generates a reply for an inbound user message.
type Responder interface {
	Respond(ctx context.Context, userMessage string, history []models.Message) generator.Reply
}

// Sender delivers outbound text over the channel transport.
type Sender interface {
	SendText(ctx context.Context, to, body string) error
}

// Notifier pushes a handoff alert to the human-agent channel.
type Notifier interface {
	Notify(ctx context.Context, userID, trigger string, st conversation.State) bool
}

// Adapter is the WhatsApp channel adapter: it translates webhook
// deliveries into conversation-state updates and pushes replies back
// over the Graph API.
type Adapter struct {
	store       *conversation.Store
	responder   Responder
	sender      Sender
	notifier    Notifier
	dedupe      Deduper
	agents      map[string]bool
	verifyToken string
	logger      *slog.Logger
}

// Options configures an Adapter.
type Options struct {
	Store       *conversation.Store
	Responder   Responder
	Sender      Sender
	Notifier    Notifier
	Dedupe      Deduper // nil disables redelivery suppression
	AgentList   []string
	VerifyToken string
	Logger      *slog.Logger
}

// NewAdapter creates the WhatsApp adapter.
func NewAdapter(opts Options) *Adapter {
	agents := make(map[string]bool, len(opts.AgentList))
	for _, a := range opts.AgentList {
		agents[a] = true
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Adapter{
		store:       opts.Store,
		responder:   opts.Responder,
		sender:      opts.Sender,
		notifier:    opts.Notifier,
		dedupe:      opts.Dedupe,
		agents:      agents,
		verifyToken: opts.VerifyToken,
		logger:      logger,
	}
}

// Webhook handles both webhook verbs: the GET verification handshake and
// POST message delivery.
func (a *Adapter) Webhook(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		a.verify(w, r)
	case http.MethodPost:
		a.deliver(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// verify echoes the challenge when the shared secret matches.
func (a *Adapter) verify(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("hub.mode") == "subscribe" && q.Get("hub.verify_token") == a.verifyToken && a.verifyToken != "" {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(q.Get("hub.challenge")))
		return
	}
	w.WriteHeader(http.StatusForbidden)
}

// deliver processes a message delivery. The acknowledgment is
// unconditional so the provider does not redeliver excessively.
func (a *Adapter) deliver(w http.ResponseWriter, r *http.Request) {
	defer func() {
		w.WriteHeader(http.StatusOK)
	}()

	var payload WebhookPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		a.logger.Warn("undecodable webhook payload", "error", err)
		return
	}

	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			// Status-only callbacks (sent/delivered/read) are a no-op.
			for _, msg := range change.Value.Messages {
				a.processMessage(r.Context(), msg)
			}
		}
	}
}

func (a *Adapter) processMessage(ctx context.Context, msg InboundMessage) {
	if msg.Type != "text" || msg.Text == nil {
		return
	}
	text := strings.TrimSpace(msg.Text.Body)
	if text == "" {
		return
	}

	if a.dedupe != nil && a.dedupe.Seen(msg.ID) {
		a.logger.Debug("duplicate webhook delivery suppressed", "message_id", msg.ID)
		return
	}

	if a.agents[msg.From] {
		a.handleAgentMessage(ctx, msg.From, text)
		return
	}
	a.handleUserMessage(ctx, msg.From, text)
}

// handleUserMessage runs one end-user turn through the state machine.
func (a *Adapter) handleUserMessage(ctx context.Context, from, text string) {
	st := a.store.Update(from, func(st *conversation.State) {
		st.Append(models.RoleUser, text, time.Now())
	})

	// A bound human agent answers; the AI stays out of the way.
	if !st.AIShouldAnswer() {
		return
	}

	history := st.History[:len(st.History)-1]
	reply := a.responder.Respond(ctx, text, history)

	if err := a.sender.SendText(ctx, from, reply.Message); err != nil {
		a.logger.Error("reply delivery failed", "user", from, "error", err)
	}

	var handoff bool
	st = a.store.Update(from, func(st *conversation.State) {
		st.Append(models.RoleAI, reply.Message, time.Now())
		if reply.NeedsAgent {
			handoff = st.RequestAgent()
		}
	})

	if handoff {
		if a.notifier != nil {
			a.notifier.Notify(ctx, from, text, st)
		}
		if err := a.sender.SendText(ctx, from, agentAckMessage); err != nil {
			a.logger.Error("handoff ack delivery failed", "user", from, "error", err)
		}
	}
}

// handleAgentMessage routes a message from an allow-listed agent number.
func (a *Adapter) handleAgentMessage(ctx context.Context, agent, text string) {
	cmd := ParseCommand(text)

	if cmd == CmdUnknown {
		a.sendToAgent(ctx, agent, agentHelpText)
		return
	}

	target, ok := a.targetConversation(agent)
	if !ok {
		a.sendToAgent(ctx, agent, noConversationMsg)
		return
	}

	switch cmd {
	case CmdNone:
		a.forwardToUser(ctx, agent, target, text)
	case CmdTakeover:
		a.store.Update(target, func(st *conversation.State) {
			st.BindAgent(agent)
		})
		a.sendToAgent(ctx, agent, "You now own the conversation with "+target+".")
	case CmdAI:
		a.store.Update(target, func(st *conversation.State) {
			st.ReleaseAgent()
		})
		if err := a.sender.SendText(ctx, target, welcomeBackMessage); err != nil {
			a.logger.Error("welcome-back delivery failed", "user", target, "error", err)
		}
		a.sendToAgent(ctx, agent, "Handed back to the assistant.")
	case CmdDone:
		a.store.Update(target, func(st *conversation.State) {
			st.ReleaseAgent()
		})
		if err := a.sender.SendText(ctx, target, closingMessage); err != nil {
			a.logger.Error("closing message delivery failed", "user", target, "error", err)
		}
		a.sendToAgent(ctx, agent, "Conversation with "+target+" closed.")
	}
}

// forwardToUser relays an agent's plain message verbatim, binding the
// agent on first reply to a pending conversation.
func (a *Adapter) forwardToUser(ctx context.Context, agent, target, text string) {
	a.store.Update(target, func(st *conversation.State) {
		st.BindAgent(agent)
		st.Append(models.RoleAgent, text, time.Now())
	})
	if err := a.sender.SendText(ctx, target, text); err != nil {
		a.logger.Error("agent forward delivery failed", "user", target, "error", err)
	}
}

// targetConversation picks the conversation an agent's message applies
// to: the one already bound to the agent, else the most recently active
// pending one.
func (a *Adapter) targetConversation(agent string) (string, bool) {
	bound := a.store.Find(func(st conversation.State) bool {
		return st.Status == models.StatusAgentActive && st.AgentID == agent
	})
	if len(bound) > 0 {
		return mostRecent(bound).UserID, true
	}

	pending := a.store.Find(func(st conversation.State) bool {
		return st.Status == models.StatusPendingAgent
	})
	if len(pending) > 0 {
		return mostRecent(pending).UserID, true
	}

	return "", false
}

func mostRecent(states []conversation.State) conversation.State {
	best := states[0]
	for _, st := range states[1:] {
		if st.LastActivity.After(best.LastActivity) {
			best = st
		}
	}
	return best
}

func (a *Adapter) sendToAgent(ctx context.Context, agent, body string) {
	if err := a.sender.SendText(ctx, agent, body); err != nil {
		a.logger.Error("agent message delivery failed", "agent", agent, "error", err)
	}
}
