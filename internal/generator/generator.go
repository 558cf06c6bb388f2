// Package generator produces grounded chat replies and decides when a
// conversation needs a human agent.
package generator

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/induxo/chatcore/internal/llm"
	"github.com/induxo/chatcore/internal/models"
	"github.com/induxo/chatcore/internal/retriever"
)

// historyWindow bounds how many past turns feed the completion prompt.
const historyWindow = 20

// handoffMarker is the token the model emits when a human should take
// over. It is stripped before the reply reaches the user.
const handoffMarker = "[HUMAN_AGENT]"

// ApologyMessage is the static reply when every candidate model failed.
// It must stay free of any operational detail.
const ApologyMessage = "I'm sorry, I'm unable to answer right now. " +
	"A member of our team will follow up with you as soon as possible."

const systemPersona = `You are the customer support assistant of an industrial consulting company.
Answer questions about our services, solutions, and published articles.
Be helpful, concise, and professional. Answer in the language the customer writes in.
If you cannot help with a request, or the customer asks for a human, append the marker ` + handoffMarker + ` to the end of your reply.`

// Retriever supplies grounding snippets for a query.
type Retriever interface {
	Retrieve(ctx context.Context, query string) []retriever.Snippet
}

// Completer generates a reply from a prompt and conversation history.
type Completer interface {
	Complete(ctx context.Context, systemPrompt string, history []models.Message, userMessage string) (string, error)
}

// Reply is the outcome of one generation turn. NeedsAgent is decided
// exactly once per turn, never retroactively.
type Reply struct {
	Message    string
	NeedsAgent bool
}

// Generator wires retrieval, completion, and the handoff policy.
type Generator struct {
	retriever Retriever
	completer Completer
	policy    HandoffPolicy
	logger    *slog.Logger
}

// New creates a Generator. A nil policy uses DefaultHandoffPolicy.
func New(ret Retriever, comp Completer, policy HandoffPolicy, logger *slog.Logger) *Generator {
	if policy == nil {
		policy = DefaultHandoffPolicy
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{retriever: ret, completer: comp, policy: policy, logger: logger}
}

// Respond generates a reply for the user message. Generation exhaustion
// degrades to the static apology with a handoff request; it never
// propagates a raw provider error.
func (g *Generator) Respond(ctx context.Context, userMessage string, history []models.Message) Reply {
	if len(history) > historyWindow {
		history = history[len(history)-historyWindow:]
	}

	snippets := g.retriever.Retrieve(ctx, userMessage)
	system := systemPersona
	if contextBlock := retriever.Render(snippets); contextBlock != "" {
		system += "\n\nUse the following reference material when relevant:\n\n" + contextBlock
	} else {
		system += "\n\nNo reference material is available for this question. Answer from the conversation only, and offer to connect the customer with our team for specifics."
	}

	raw, err := g.completer.Complete(ctx, system, history, userMessage)
	if err != nil {
		var exhausted *llm.ExhaustedError
		if errors.As(err, &exhausted) {
			g.logger.Error("generation exhausted", "models_tried", exhausted.Models, "error", err)
		} else {
			g.logger.Error("generation failed", "error", err)
		}
		// A customer the AI cannot serve at all goes to a human.
		return Reply{Message: ApologyMessage, NeedsAgent: true}
	}

	message, marked := stripMarker(raw)
	if message == "" {
		message = ApologyMessage
		marked = true
	}

	needsAgent := marked || g.policy(userMessage, message)
	return Reply{Message: message, NeedsAgent: needsAgent}
}

// stripMarker removes the handoff marker from a model reply and reports
// whether it was present.
func stripMarker(s string) (string, bool) {
	if !strings.Contains(s, handoffMarker) {
		return strings.TrimSpace(s), false
	}
	return strings.TrimSpace(strings.ReplaceAll(s, handoffMarker, "")), true
}
