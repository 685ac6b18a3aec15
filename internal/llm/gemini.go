package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiClient serves both generation and embeddings through the Google
// Generative AI API.
type GeminiClient struct {
	client     *genai.Client
	model      string
	embedModel string
	timeout    time.Duration
}

func NewGeminiClient(ctx context.Context, apiKey, model, embedModel string, timeout time.Duration) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("llm: gemini client: %w", err)
	}
	return &GeminiClient{
		client:     client,
		model:      model,
		embedModel: embedModel,
		timeout:    timeout,
	}, nil
}

func (c *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := bound(ctx, c.timeout)
	defer cancel()

	model := c.client.GenerativeModel(c.model)
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("llm: gemini completion: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("llm: gemini returned no candidates")
	}
	if txt, ok := resp.Candidates[0].Content.Parts[0].(genai.Text); ok {
		return string(txt), nil
	}
	return "", fmt.Errorf("llm: gemini returned non-text content")
}

func (c *GeminiClient) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	ctx, cancel := bound(ctx, c.timeout)
	defer cancel()

	em := c.client.EmbeddingModel(c.embedModel)
	batch := em.NewBatch()
	for _, t := range texts {
		batch.AddContent(genai.Text(t))
	}
	res, err := em.BatchEmbedContents(ctx, batch)
	if err != nil {
		return nil, fmt.Errorf("llm: gemini embeddings: %w", err)
	}
	if len(res.Embeddings) != len(texts) {
		return nil, fmt.Errorf("llm: gemini returned %d embeddings for %d texts", len(res.Embeddings), len(texts))
	}
	out := make([][]float32, len(res.Embeddings))
	for i, e := range res.Embeddings {
		out[i] = e.Values
	}
	return out, nil
}

// Close releases the underlying API connection.
func (c *GeminiClient) Close() error {
	return c.client.Close()
}
