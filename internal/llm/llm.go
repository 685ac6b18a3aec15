// Package llm defines the language-model and embedding capability
// boundaries and their provider implementations. The orchestration core
// depends only on these interfaces, so tests substitute fakes and the
// engine stays provider-agnostic.
package llm

import "context"

// LanguageModel generates a completion for a single prompt string.
type LanguageModel interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// EmbeddingProvider turns a batch of texts into fixed-length vectors.
// The returned slice is index-aligned with the input.
type EmbeddingProvider interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}
