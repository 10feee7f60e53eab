package llm

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/KamnevVladimir/zen-automation-sub000/internal/config"
	"github.com/KamnevVladimir/zen-automation-sub000/internal/ports"
)

const defaultMaxTokens = 4096

// AnthropicClient implements ports.TextGenerator on the Anthropic messages
// API; selected via llm.provider config.
type AnthropicClient struct {
	client *anthropic.Client
	model  anthropic.Model
}

var _ ports.TextGenerator = (*AnthropicClient)(nil)

// NewAnthropicClient builds a client from configuration.
func NewAnthropicClient(cfg config.LLMConfig) *AnthropicClient {
	client := anthropic.NewClient(option.WithAPIKey(cfg.AnthropicAPIKey))
	model := anthropic.Model(cfg.Model)
	if cfg.Model == "" {
		model = anthropic.ModelClaude3_5HaikuLatest
	}
	return &AnthropicClient{client: &client, model: model}
}

// Complete runs one message exchange.
func (c *AnthropicClient) Complete(ctx context.Context, req ports.CompletionRequest) (string, error) {
	system := req.SystemPrompt
	if req.JSONMode {
		system += "\nRespond with a single JSON object only, no prose around it."
	}

	maxTokens := int64(req.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	resp, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: maxTokens,
		System: []anthropic.TextBlockParam{
			{Text: system},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.UserPrompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic API error: %w", err)
	}
	if len(resp.Content) == 0 {
		return "", fmt.Errorf("no response from anthropic")
	}

	content := resp.Content[0].Text
	if req.JSONMode {
		content = cleanJSONResponse(content)
	}
	return content, nil
}
