// Package chunk splits note content into overlapping segments sized for
// embedding.
package chunk

import (
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/textsplitter"
)

// Defaults match the ingestion pipeline this engine replaces: segments
// of at most 1000 characters with 150 characters of shared context
// between neighbours.
const (
	DefaultSize    = 1000
	DefaultOverlap = 150
)

// Splitter produces overlapping text segments, preferring paragraph,
// sentence, and word boundaries over hard character cuts.
type Splitter struct {
	size    int
	overlap int
}

// NewSplitter validates the chunking parameters. Overlap must be
// strictly smaller than size, otherwise splitting degenerates.
func NewSplitter(size, overlap int) (*Splitter, error) {
	if size <= 0 {
		return nil, fmt.Errorf("chunk: size must be positive, got %d", size)
	}
	if overlap < 0 {
		return nil, fmt.Errorf("chunk: overlap must not be negative, got %d", overlap)
	}
	if overlap >= size {
		return nil, fmt.Errorf("chunk: overlap %d must be smaller than size %d", overlap, size)
	}
	return &Splitter{size: size, overlap: overlap}, nil
}

// Split chunks text into segments. Empty or whitespace-only input
// yields no segments; input shorter than the chunk size yields exactly
// one segment holding the trimmed text.
func (s *Splitter) Split(text string) ([]string, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, nil
	}
	if len(trimmed) <= s.size {
		return []string{trimmed}, nil
	}
	splitter := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(s.size),
		textsplitter.WithChunkOverlap(s.overlap),
	)
	segments, err := splitter.SplitText(trimmed)
	if err != nil {
		return nil, fmt.Errorf("chunk: split text: %w", err)
	}
	out := make([]string, 0, len(segments))
	for _, seg := range segments {
		if seg = strings.TrimSpace(seg); seg != "" {
			out = append(out, seg)
		}
	}
	return out, nil
}
