// Package vectorstore defines the vector database boundary and its
// Qdrant implementation. The store is the system of record for
// segments; the engine keeps no independent index state.
package vectorstore

import (
	"context"

	"github.com/memomind/memomind/internal/models"
)

// Match is one search hit: the stored segment, its similarity score,
// and (when requested) its embedding vector for diversity re-ranking.
type Match struct {
	Segment models.Segment
	Score   float64
	Vector  []float32
}

// Store is the interface to the external vector database.
type Store interface {
	// EnsureCollection provisions the collection with the configured
	// dimensionality and distance metric. An already-existing
	// collection is benign and must not fail the caller.
	EnsureCollection(ctx context.Context) error
	// Upsert writes segments with their index-aligned vectors.
	Upsert(ctx context.Context, segments []models.Segment, vectors [][]float32) error
	// Search returns up to limit nearest segments for the query vector,
	// highest score first. withVectors controls whether stored vectors
	// come back on each match. Fewer than limit stored points is not an
	// error.
	Search(ctx context.Context, vector []float32, limit int, withVectors bool) ([]Match, error)
	// DeleteByNote removes every segment belonging to the given note
	// title. Used when a vault file disappears.
	DeleteByNote(ctx context.Context, noteTitle string) error
	// Count returns the number of stored segments.
	Count(ctx context.Context) (int, error)
}
