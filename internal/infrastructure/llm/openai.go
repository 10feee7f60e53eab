package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/KamnevVladimir/zen-automation-sub000/internal/config"
	"github.com/KamnevVladimir/zen-automation-sub000/internal/ports"
)

// OpenAIClient implements ports.TextGenerator on the OpenAI chat API.
type OpenAIClient struct {
	client *openai.Client
	model  openai.ChatModel
}

var _ ports.TextGenerator = (*OpenAIClient)(nil)

// NewOpenAIClient builds a client from configuration.
func NewOpenAIClient(cfg config.LLMConfig) *OpenAIClient {
	client := openai.NewClient(option.WithAPIKey(cfg.OpenAIAPIKey))
	model := openai.ChatModel(cfg.Model)
	if cfg.Model == "" {
		model = openai.ChatModelGPT4oMini
	}
	return &OpenAIClient{client: &client, model: model}
}

// Complete runs one chat completion. JSON mode is enforced through the
// prompt plus fence-stripping; models keep wrapping JSON in code fences.
func (c *OpenAIClient) Complete(ctx context.Context, req ports.CompletionRequest) (string, error) {
	system := req.SystemPrompt
	if req.JSONMode {
		system += "\nRespond with a single JSON object only, no prose around it."
	}

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(req.UserPrompt),
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from openai")
	}

	content := resp.Choices[0].Message.Content
	if req.JSONMode {
		content = cleanJSONResponse(content)
	}
	return content, nil
}

// cleanJSONResponse strips markdown fences and any prose around the JSON
// object.
func cleanJSONResponse(content string) string {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start >= 0 && end > start {
		content = content[start : end+1]
	}
	return content
}
