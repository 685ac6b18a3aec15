package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/liushuangls/go-anthropic/v2"
)

const claudeMaxTokens = 4096

// ClaudeClient generates completions through the Anthropic API. The API
// has no embedding endpoint, so pairing it with a separate embedding
// provider is the caller's job.
type ClaudeClient struct {
	client  *anthropic.Client
	model   string
	timeout time.Duration
}

func NewClaudeClient(apiKey, model, baseURL string, timeout time.Duration) *ClaudeClient {
	var opts []anthropic.ClientOption
	if baseURL != "" {
		opts = append(opts, anthropic.WithBaseURL(baseURL))
	}
	return &ClaudeClient{
		client:  anthropic.NewClient(apiKey, opts...),
		model:   model,
		timeout: timeout,
	}
}

func (c *ClaudeClient) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := bound(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model: anthropic.Model(c.model),
		Messages: []anthropic.Message{
			anthropic.NewUserTextMessage(prompt),
		},
		MaxTokens: claudeMaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("llm: claude completion: %w", err)
	}
	if len(resp.Content) == 0 || resp.Content[0].Text == nil {
		return "", fmt.Errorf("llm: claude returned no content")
	}
	return *resp.Content[0].Text, nil
}
