package assist

import (
	"context"
	"fmt"
	"os"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIProvider implements Provider using OpenAI
type OpenAIProvider struct {
	client *openai.Client
	model  string
}

// NewOpenAIProvider creates a new OpenAI provider
func NewOpenAIProvider(model string) (*OpenAIProvider, error) {
	apiKey := os.Getenv("RESULTFETCH_OPENAI_KEY")
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("RESULTFETCH_OPENAI_KEY or OPENAI_API_KEY environment variable required")
	}
	return newOpenAIProvider(openai.DefaultConfig(apiKey), model), nil
}

func newOpenAIProvider(cfg openai.ClientConfig, model string) *OpenAIProvider {
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &OpenAIProvider{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

// Fill implements Provider
func (p *OpenAIProvider) Fill(ctx context.Context, bodyText string) (Fields, error) {
	resp, err := p.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: p.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: systemPrompt,
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: buildUserPrompt(bodyText),
				},
			},
			MaxTokens: 256,
		},
	)
	if err != nil {
		return Fields{}, fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return Fields{}, fmt.Errorf("empty response from OpenAI")
	}

	f, err := parseFieldsJSON(resp.Choices[0].Message.Content)
	if err != nil {
		return Fields{}, fmt.Errorf("failed to parse OpenAI response: %w", err)
	}
	return f, nil
}
