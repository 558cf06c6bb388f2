package llm

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/bedrock"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/induxo/chatcore/internal/config"
	"github.com/induxo/chatcore/internal/models"
)

// candidate is one model in the fallback chain.
type candidate struct {
	name  string
	model llms.Model
}

// Completer calls a chat completion API with an ordered list of candidate
// models. Each attempt gets its own timeout and the whole chain shares a
// turn budget, so a hung provider cannot stall a channel indefinitely.
type Completer struct {
	candidates     []candidate
	attemptTimeout time.Duration
	turnBudget     time.Duration
	rec            Recorder
}

// NewCompleter builds the fallback chain from configuration. The first
// model in cfg.LLMModels is the primary, the rest are fallbacks.
func NewCompleter(ctx context.Context, cfg config.Config, rec Recorder) (*Completer, error) {
	candidates := make([]candidate, 0, len(cfg.LLMModels))
	for _, name := range cfg.LLMModels {
		model, err := newModel(ctx, cfg, name)
		if err != nil {
			return nil, fmt.Errorf("create model %s: %w", name, err)
		}
		candidates = append(candidates, candidate{name: name, model: model})
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("no candidate models configured")
	}

	return &Completer{
		candidates:     candidates,
		attemptTimeout: cfg.AttemptTimeout,
		turnBudget:     cfg.TurnBudget,
		rec:            rec,
	}, nil
}

func newModel(ctx context.Context, cfg config.Config, name string) (llms.Model, error) {
	switch cfg.LLMProvider {
	case config.ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OpenAI API key required")
		}
		return openai.New(
			openai.WithToken(cfg.OpenAIAPIKey),
			openai.WithModel(name),
		)

	case config.ProviderAnthropic:
		if cfg.AnthropicAPIKey == "" {
			return nil, fmt.Errorf("Anthropic API key required")
		}
		return anthropic.New(
			anthropic.WithToken(cfg.AnthropicAPIKey),
			anthropic.WithModel(name),
		)

	case config.ProviderOllama:
		return ollama.New(
			ollama.WithModel(name),
			ollama.WithServerURL(cfg.OllamaHost),
		)

	case config.ProviderBedrock:
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
		if err != nil {
			return nil, fmt.Errorf("load AWS config: %w", err)
		}
		client := bedrockruntime.NewFromConfig(awsCfg)
		return bedrock.New(
			bedrock.WithClient(client),
			bedrock.WithModel(name),
		)

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.LLMProvider)
	}
}

// Models returns the candidate model names in order.
func (c *Completer) Models() []string {
	names := make([]string, len(c.candidates))
	for i, cand := range c.candidates {
		names[i] = cand.name
	}
	return names
}

// Complete generates a reply for the user message, trying each candidate
// model in order. Transient failures fall through to the next model;
// fatal API errors and an exhausted chain both return an *ExhaustedError.
func (c *Completer) Complete(ctx context.Context, systemPrompt string, history []models.Message, userMessage string) (string, error) {
	msgs := buildMessages(systemPrompt, history, userMessage)

	ctx, cancel := context.WithTimeout(ctx, c.turnBudget)
	defer cancel()

	var tried []string
	var lastErr error

	for _, cand := range c.candidates {
		if ctx.Err() != nil {
			// Turn budget spent before this candidate got a chance.
			lastErr = ctx.Err()
			break
		}

		reply, err := c.attempt(ctx, cand, msgs)
		if err == nil {
			return reply, nil
		}

		tried = append(tried, cand.name)
		lastErr = err

		if isFatalAPIError(err) {
			slog.Error("fatal completion error, aborting fallback chain", "model", cand.name, "error", err)
			lastErr = wrapFatalError(err)
			break
		}
		slog.Warn("completion attempt failed, trying next model", "model", cand.name, "error", err)
	}

	return "", &ExhaustedError{Models: tried, Err: lastErr}
}

func (c *Completer) attempt(ctx context.Context, cand candidate, msgs []llms.MessageContent) (string, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.attemptTimeout)
	defer cancel()

	start := time.Now()
	resp, err := cand.model.GenerateContent(attemptCtx, msgs)
	duration := time.Since(start)

	if c.rec != nil {
		c.rec.RecordTiming("llm_generate", duration)
	}

	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response choices")
	}

	slog.Debug("completion succeeded", "model", cand.name, "duration_ms", duration.Milliseconds())
	return resp.Choices[0].Content, nil
}

// buildMessages maps a conversation onto the completion API's message
// roles. Agent turns count as assistant-side context: from the model's
// perspective they are answers already given to the user.
func buildMessages(systemPrompt string, history []models.Message, userMessage string) []llms.MessageContent {
	msgs := make([]llms.MessageContent, 0, len(history)+2)
	msgs = append(msgs, llms.TextParts(llms.ChatMessageTypeSystem, systemPrompt))

	for _, m := range history {
		switch m.Role {
		case models.RoleUser:
			msgs = append(msgs, llms.TextParts(llms.ChatMessageTypeHuman, m.Content))
		case models.RoleAI, models.RoleAgent:
			msgs = append(msgs, llms.TextParts(llms.ChatMessageTypeAI, m.Content))
		}
	}

	msgs = append(msgs, llms.TextParts(llms.ChatMessageTypeHuman, userMessage))
	return msgs
}
