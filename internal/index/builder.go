package index

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/memomind/memomind/internal/chunk"
	"github.com/memomind/memomind/internal/llm"
	"github.com/memomind/memomind/internal/models"
	"github.com/memomind/memomind/internal/vectorstore"
)

// embedBatchSize caps how many segment texts go to the embedding
// service in one request.
const embedBatchSize = 64

// segmentNamespace is the fixed UUIDv5 namespace for segment
// identifiers. IDs derive from (note title, chunk index), so
// re-ingesting an unchanged corpus rewrites the same points instead of
// duplicating them.
var segmentNamespace = uuid.MustParse("8f2f9f2e-1a8e-4f76-9d3c-6f2b9a7c5e41")

// SegmentID returns the deterministic identifier for a note's chunk.
func SegmentID(noteTitle string, chunkIndex int) string {
	return uuid.NewSHA1(segmentNamespace, fmt.Appendf(nil, "%s::%d", noteTitle, chunkIndex)).String()
}

// Builder orchestrates chunking, embedding, and vector-store upserts.
// The vector store is the system of record; the builder holds no index
// state of its own.
type Builder struct {
	splitter *chunk.Splitter
	embedder llm.EmbeddingProvider
	store    vectorstore.Store
	logger   *slog.Logger
}

// NewBuilder wires the index pipeline.
func NewBuilder(splitter *chunk.Splitter, embedder llm.EmbeddingProvider, store vectorstore.Store, logger *slog.Logger) *Builder {
	return &Builder{splitter: splitter, embedder: embedder, store: store, logger: logger}
}

// Segment chunks a note's content and attaches the whole note's
// relational metadata to every resulting segment.
func (b *Builder) Segment(note models.Note) ([]models.Segment, error) {
	chunks, err := b.splitter.Split(note.Content)
	if err != nil {
		return nil, fmt.Errorf("index: chunk note %q: %w", note.Title, err)
	}
	segments := make([]models.Segment, 0, len(chunks))
	for i, text := range chunks {
		segments = append(segments, models.Segment{
			ID:           SegmentID(note.Title, i),
			Text:         text,
			NoteTitle:    note.Title,
			RelatedNotes: note.RelatedNotes,
			References:   note.References,
		})
	}
	return segments, nil
}

// Build indexes an entire corpus: every note is chunked, all segments
// are embedded in batches and upserted to the vector store. Returns the
// number of segments written. Ingestion is at-least-once; a failure
// mid-run leaves earlier batches in place.
func (b *Builder) Build(ctx context.Context, notes []models.Note) (int, error) {
	if err := b.store.EnsureCollection(ctx); err != nil {
		return 0, fmt.Errorf("index: ensure collection: %w", err)
	}

	var segments []models.Segment
	for _, note := range notes {
		segs, err := b.Segment(note)
		if err != nil {
			return 0, err
		}
		segments = append(segments, segs...)
	}

	written := 0
	for start := 0; start < len(segments); start += embedBatchSize {
		end := min(start+embedBatchSize, len(segments))
		batch := segments[start:end]

		texts := make([]string, len(batch))
		for i, seg := range batch {
			texts[i] = seg.Text
		}
		vectors, err := b.embedder.Embed(ctx, texts)
		if err != nil {
			return written, fmt.Errorf("index: embed batch: %w", err)
		}
		if err := b.store.Upsert(ctx, batch, vectors); err != nil {
			return written, fmt.Errorf("index: upsert batch: %w", err)
		}
		written += len(batch)
	}

	b.logger.Info("index: build complete",
		slog.Int("notes", len(notes)),
		slog.Int("segments", written))
	return written, nil
}

// BuildNote re-indexes a single note and returns its segment count.
// Used by sync and the watcher for incremental updates. The note's
// existing points are dropped first: deterministic IDs only overwrite
// chunks that still exist, so a note that shrank would otherwise keep
// its old higher-index chunks retrievable.
func (b *Builder) BuildNote(ctx context.Context, note models.Note) (int, error) {
	segments, err := b.Segment(note)
	if err != nil {
		return 0, err
	}
	if err := b.store.DeleteByNote(ctx, note.Title); err != nil {
		return 0, fmt.Errorf("index: clear note %q: %w", note.Title, err)
	}
	if len(segments) == 0 {
		return 0, nil
	}
	texts := make([]string, len(segments))
	for i, seg := range segments {
		texts[i] = seg.Text
	}
	vectors, err := b.embedder.Embed(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("index: embed note %q: %w", note.Title, err)
	}
	if err := b.store.Upsert(ctx, segments, vectors); err != nil {
		return 0, fmt.Errorf("index: upsert note %q: %w", note.Title, err)
	}
	return len(segments), nil
}
