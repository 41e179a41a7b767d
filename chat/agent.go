package chat

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"go.uber.org/zap"
)

const DefaultModel = "claude-sonnet-4-20250514"

const systemPrompt = `You are Monty, a crypto paper trading assistant. You manage a
simulated portfolio: real market prices, fake money. You can propose
trades, but every trade requires explicit human approval before it
executes. Use the tools to look up quotes, positions, and history
before giving advice. Be direct about risk and never promise returns.`

// Agent runs the Claude tool-use loop over a tool registry.
type Agent struct {
	client    anthropic.Client
	registry  *Registry
	model     anthropic.Model
	maxTokens int64
	maxTurns  int
	log       *zap.Logger
}

type AgentConfig struct {
	Model     string
	MaxTokens int64
	MaxTurns  int // tool round-trips per user message
}

func NewAgent(registry *Registry, cfg AgentConfig, log *zap.Logger) *Agent {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 4096
	}
	if cfg.MaxTurns <= 0 {
		cfg.MaxTurns = 10
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Agent{
		client:    anthropic.NewClient(), // reads ANTHROPIC_API_KEY
		registry:  registry,
		model:     anthropic.Model(cfg.Model),
		maxTokens: cfg.MaxTokens,
		maxTurns:  cfg.MaxTurns,
		log:       log,
	}
}

// Conversation is one chat session's message history.
type Conversation struct {
	messages []anthropic.MessageParam
}

func NewConversation() *Conversation {
	return &Conversation{}
}

// Send appends a user message, runs the model until it stops asking for
// tools, and returns the assistant's final text.
func (a *Agent) Send(ctx context.Context, conv *Conversation, userText string) (string, error) {
	conv.messages = append(conv.messages, anthropic.NewUserMessage(anthropic.NewTextBlock(userText)))

	tools := a.registry.APITools()
	for turn := 0; turn < a.maxTurns; turn++ {
		msg, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
			Model:     a.model,
			MaxTokens: a.maxTokens,
			System:    []anthropic.TextBlockParam{{Text: systemPrompt}},
			Messages:  conv.messages,
			Tools:     tools,
		})
		if err != nil {
			return "", fmt.Errorf("claude: %w", err)
		}
		conv.messages = append(conv.messages, msg.ToParam())

		var text string
		var results []anthropic.ContentBlockParamUnion
		for _, block := range msg.Content {
			switch variant := block.AsAny().(type) {
			case anthropic.TextBlock:
				text += variant.Text
			case anthropic.ToolUseBlock:
				results = append(results, a.invoke(ctx, variant))
			}
		}

		if len(results) == 0 {
			return text, nil
		}
		conv.messages = append(conv.messages, anthropic.NewUserMessage(results...))
	}
	return "", fmt.Errorf("claude: no final answer after %d tool turns", a.maxTurns)
}

func (a *Agent) invoke(ctx context.Context, use anthropic.ToolUseBlock) anthropic.ContentBlockParamUnion {
	tool, ok := a.registry.Get(use.Name)
	if !ok {
		return anthropic.NewToolResultBlock(use.ID, fmt.Sprintf("unknown tool %q", use.Name), true)
	}

	input := json.RawMessage(use.JSON.Input.Raw())
	a.log.Info("tool call", zap.String("tool", use.Name), zap.ByteString("input", input))

	out, err := tool.Execute(ctx, input)
	if err != nil {
		a.log.Warn("tool failed", zap.String("tool", use.Name), zap.Error(err))
		return anthropic.NewToolResultBlock(use.ID, err.Error(), true)
	}
	return anthropic.NewToolResultBlock(use.ID, out, false)
}
