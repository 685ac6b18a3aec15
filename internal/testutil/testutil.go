// Package testutil provides shared test fixtures: temp vaults, temp
// ledgers, and in-memory fakes for the embedding, generation, and
// vector-store boundaries.
package testutil

import (
	"context"
	"crypto/sha256"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	"github.com/memomind/memomind/internal/index"
	"github.com/memomind/memomind/internal/models"
	"github.com/memomind/memomind/internal/storage"
	"github.com/memomind/memomind/internal/vectorstore"
)

// TestLedger creates a temporary SQLite ledger that is cleaned up with
// the test.
func TestLedger(t *testing.T) *index.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "memomind-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := index.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestVault creates a temporary vault directory with a storage.Provider.
func TestVault(t *testing.T) (string, storage.Provider) {
	t.Helper()
	vaultDir := t.TempDir()
	store, err := storage.NewFS(vaultDir)
	if err != nil {
		t.Fatal(err)
	}
	return vaultDir, store
}

// WriteNote writes a markdown file into a vault directory.
func WriteNote(t *testing.T, vaultDir, rel, content string) {
	t.Helper()
	p := filepath.Join(vaultDir, rel)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// FakeEmbedder returns a deterministic unit vector per input text.
type FakeEmbedder struct {
	Dim   int
	Calls int
}

func (f *FakeEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	f.Calls++
	dim := f.Dim
	if dim == 0 {
		dim = 8
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		h := sha256.Sum256([]byte(text))
		vec := make([]float32, dim)
		var norm float64
		for j := range vec {
			vec[j] = float32(h[j%len(h)]) - 127
			norm += float64(vec[j]) * float64(vec[j])
		}
		norm = math.Sqrt(norm)
		for j := range vec {
			vec[j] = float32(float64(vec[j]) / norm)
		}
		out[i] = vec
	}
	return out, nil
}

// FakeModel records the last prompt and returns a fixed answer.
type FakeModel struct {
	Answer     string
	LastPrompt string
	Err        error
}

func (f *FakeModel) Generate(_ context.Context, prompt string) (string, error) {
	f.LastPrompt = prompt
	if f.Err != nil {
		return "", f.Err
	}
	if f.Answer == "" {
		return "fake answer", nil
	}
	return f.Answer, nil
}

// FakeStore is an in-memory vectorstore.Store ranked by cosine
// similarity.
type FakeStore struct {
	mu       sync.Mutex
	points   map[string]fakePoint
	ensured  int
	Upserts  int
	Searches int
}

type fakePoint struct {
	segment models.Segment
	vector  []float32
}

func NewFakeStore() *FakeStore {
	return &FakeStore{points: make(map[string]fakePoint)}
}

func (f *FakeStore) EnsureCollection(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	// Re-provisioning an existing collection is benign, mirroring the
	// real store's skip-if-exists behaviour.
	f.ensured++
	return nil
}

func (f *FakeStore) Upsert(_ context.Context, segments []models.Segment, vectors [][]float32) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Upserts++
	for i, seg := range segments {
		f.points[seg.ID] = fakePoint{segment: seg, vector: vectors[i]}
	}
	return nil
}

func (f *FakeStore) Search(_ context.Context, vector []float32, limit int, withVectors bool) ([]vectorstore.Match, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Searches++
	matches := make([]vectorstore.Match, 0, len(f.points))
	for _, p := range f.points {
		m := vectorstore.Match{Segment: p.segment, Score: Cosine(vector, p.vector)}
		if withVectors {
			m.Vector = p.vector
		}
		matches = append(matches, m)
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

func (f *FakeStore) DeleteByNote(_ context.Context, noteTitle string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, p := range f.points {
		if p.segment.NoteTitle == noteTitle {
			delete(f.points, id)
		}
	}
	return nil
}

func (f *FakeStore) Count(context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.points), nil
}

// Cosine returns the cosine similarity of two vectors.
func Cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

var _ vectorstore.Store = (*FakeStore)(nil)
