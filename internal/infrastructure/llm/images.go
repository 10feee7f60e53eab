package llm

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/KamnevVladimir/zen-automation-sub000/internal/config"
	"github.com/KamnevVladimir/zen-automation-sub000/internal/ports"
)

// OpenAIImageClient implements ports.ImageGenerator on the OpenAI images API.
type OpenAIImageClient struct {
	client *openai.Client
	model  openai.ImageModel
}

var _ ports.ImageGenerator = (*OpenAIImageClient)(nil)

// NewOpenAIImageClient builds an image client from configuration.
func NewOpenAIImageClient(cfg config.LLMConfig) *OpenAIImageClient {
	client := openai.NewClient(option.WithAPIKey(cfg.OpenAIAPIKey))
	model := openai.ImageModel(cfg.ImageModel)
	if cfg.ImageModel == "" {
		model = openai.ImageModelDallE3
	}
	return &OpenAIImageClient{client: &client, model: model}
}

// Generate renders one image and returns its URL.
func (c *OpenAIImageClient) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.Images.Generate(ctx, openai.ImageGenerateParams{
		Prompt: prompt,
		Model:  c.model,
	})
	if err != nil {
		return "", fmt.Errorf("openai image error: %w", err)
	}
	if resp == nil || len(resp.Data) == 0 {
		return "", fmt.Errorf("no image in response")
	}
	return resp.Data[0].URL, nil
}
