package chat

import (
	"testing"

	"github.com/memomind/memomind/internal/models"
	"github.com/memomind/memomind/internal/vectorstore"
)

func match(id string, vec []float32, score float64) vectorstore.Match {
	return vectorstore.Match{
		Segment: models.Segment{ID: id, Text: id},
		Score:   score,
		Vector:  vec,
	}
}

func TestMMRPrefersDiverseResults(t *testing.T) {
	query := []float32{1, 0}
	// Two near-duplicates aligned with the query, one orthogonal
	// candidate. With a diversity-heavy lambda the orthogonal one
	// must displace the duplicate.
	candidates := []vectorstore.Match{
		match("a", []float32{1, 0}, 1.0),
		match("a2", []float32{0.99, 0.01}, 0.99),
		match("b", []float32{0, 1}, 0.0),
	}

	picked := maximalMarginalRelevance(query, candidates, 2, 0.25)
	if len(picked) != 2 {
		t.Fatalf("picked %d, want 2", len(picked))
	}
	if picked[0].Segment.ID != "a" {
		t.Errorf("first pick = %q, want most relevant %q", picked[0].Segment.ID, "a")
	}
	if picked[1].Segment.ID != "b" {
		t.Errorf("second pick = %q, want diverse %q", picked[1].Segment.ID, "b")
	}
}

func TestMMRHighLambdaTracksRelevance(t *testing.T) {
	query := []float32{1, 0}
	candidates := []vectorstore.Match{
		match("a", []float32{1, 0}, 1.0),
		match("a2", []float32{0.99, 0.01}, 0.99),
		match("b", []float32{0, 1}, 0.0),
	}

	picked := maximalMarginalRelevance(query, candidates, 2, 1.0)
	if picked[0].Segment.ID != "a" || picked[1].Segment.ID != "a2" {
		t.Errorf("picks = %q, %q; want pure relevance order a, a2", picked[0].Segment.ID, picked[1].Segment.ID)
	}
}

func TestMMRBounds(t *testing.T) {
	if got := maximalMarginalRelevance([]float32{1}, nil, 5, 0.5); got != nil {
		t.Errorf("empty candidates: got %v, want nil", got)
	}
	one := []vectorstore.Match{match("a", []float32{1}, 1.0)}
	if got := maximalMarginalRelevance([]float32{1}, one, 10, 0.5); len(got) != 1 {
		t.Errorf("k beyond candidates: got %d picks, want 1", len(got))
	}
	if got := maximalMarginalRelevance([]float32{1}, one, 0, 0.5); got != nil {
		t.Errorf("k=0: got %v, want nil", got)
	}
}
