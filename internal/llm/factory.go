package llm

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Config selects and parameterizes a provider pair.
type Config struct {
	Provider   string
	Model      string
	EmbedModel string
	APIKey     string
	BaseURL    string
	Timeout    time.Duration
}

// NewClients builds the generation and embedding clients for the
// configured provider. Claude has no embedding endpoint, so its
// embedder comes back nil and the caller must wire another provider
// for indexing and retrieval.
func NewClients(ctx context.Context, cfg Config) (LanguageModel, EmbeddingProvider, error) {
	switch strings.ToLower(cfg.Provider) {
	case "openai":
		c := NewOpenAIClient(cfg.APIKey, cfg.Model, cfg.EmbedModel, cfg.BaseURL, cfg.Timeout)
		return c, c, nil

	case "gemini":
		c, err := NewGeminiClient(ctx, cfg.APIKey, cfg.Model, cfg.EmbedModel, cfg.Timeout)
		if err != nil {
			return nil, nil, err
		}
		return c, c, nil

	case "claude":
		return NewClaudeClient(cfg.APIKey, cfg.Model, cfg.BaseURL, cfg.Timeout), nil, nil

	case "ollama":
		// Ollama speaks the OpenAI API under /v1.
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = "http://localhost:11434"
		}
		baseURL = strings.TrimRight(baseURL, "/")
		if !strings.HasSuffix(baseURL, "/v1") {
			baseURL += "/v1"
		}
		apiKey := cfg.APIKey
		if apiKey == "" {
			apiKey = "ollama" // ignored by the server, required by the client
		}
		c := NewOpenAIClient(apiKey, cfg.Model, cfg.EmbedModel, baseURL, cfg.Timeout)
		return c, c, nil

	default:
		return nil, nil, fmt.Errorf("llm: unsupported provider %q", cfg.Provider)
	}
}
