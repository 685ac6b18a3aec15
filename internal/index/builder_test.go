package index_test

import (
	"context"
	"log/slog"
	"reflect"
	"strings"
	"testing"

	"github.com/memomind/memomind/internal/chunk"
	"github.com/memomind/memomind/internal/index"
	"github.com/memomind/memomind/internal/models"
	"github.com/memomind/memomind/internal/testutil"
)

func newBuilder(t *testing.T, store *testutil.FakeStore) *index.Builder {
	t.Helper()
	splitter, err := chunk.NewSplitter(chunk.DefaultSize, chunk.DefaultOverlap)
	if err != nil {
		t.Fatal(err)
	}
	logger := slog.New(slog.DiscardHandler)
	return index.NewBuilder(splitter, &testutil.FakeEmbedder{Dim: 8}, store, logger)
}

func TestSegmentID_Deterministic(t *testing.T) {
	a := index.SegmentID("My Note", 0)
	b := index.SegmentID("My Note", 0)
	if a != b {
		t.Errorf("same (title, index) produced different IDs: %s vs %s", a, b)
	}
	if index.SegmentID("My Note", 1) == a {
		t.Error("different chunk index produced the same ID")
	}
	if index.SegmentID("Other Note", 0) == a {
		t.Error("different title produced the same ID")
	}
}

func TestSegment_MetadataInherited(t *testing.T) {
	store := testutil.NewFakeStore()
	b := newBuilder(t, store)

	note := models.Note{
		Title:        "Long",
		Content:      strings.Repeat("some words here ", 200), // > 1 chunk
		RelatedNotes: []string{"A", "B"},
		References:   []models.Reference{{Title: "R", Link: "http://r"}},
	}
	segments, err := b.Segment(note)
	if err != nil {
		t.Fatal(err)
	}
	if len(segments) < 2 {
		t.Fatalf("len(segments) = %d, want more than 1", len(segments))
	}
	for i, seg := range segments {
		if !reflect.DeepEqual(seg.RelatedNotes, note.RelatedNotes) {
			t.Errorf("segment %d related = %v, want %v", i, seg.RelatedNotes, note.RelatedNotes)
		}
		if !reflect.DeepEqual(seg.References, note.References) {
			t.Errorf("segment %d references = %v", i, seg.References)
		}
		if seg.NoteTitle != "Long" {
			t.Errorf("segment %d note title = %q", i, seg.NoteTitle)
		}
	}
}

func TestBuild_WritesAllSegments(t *testing.T) {
	store := testutil.NewFakeStore()
	b := newBuilder(t, store)

	notes := []models.Note{
		{Title: "One", Content: "short body"},
		{Title: "Two", Content: strings.Repeat("more words in this one ", 100)},
	}
	n, err := b.Build(context.Background(), notes)
	if err != nil {
		t.Fatal(err)
	}
	count, _ := store.Count(context.Background())
	if n != count {
		t.Errorf("Build returned %d but store holds %d", n, count)
	}
	if n < 3 {
		t.Errorf("segments written = %d, want at least 3", n)
	}
}

func TestBuild_RerunIsIdempotent(t *testing.T) {
	store := testutil.NewFakeStore()
	b := newBuilder(t, store)

	notes := []models.Note{{Title: "Stable", Content: strings.Repeat("text body words ", 150)}}
	first, err := b.Build(context.Background(), notes)
	if err != nil {
		t.Fatal(err)
	}
	second, err := b.Build(context.Background(), notes)
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Errorf("runs wrote different segment counts: %d vs %d", first, second)
	}
	// Deterministic IDs replace prior points instead of duplicating.
	count, _ := store.Count(context.Background())
	if count != first {
		t.Errorf("store holds %d points after re-run, want %d", count, first)
	}
}

func TestBuildNote_ShrunkNoteDropsStaleSegments(t *testing.T) {
	store := testutil.NewFakeStore()
	b := newBuilder(t, store)

	long := models.Note{Title: "Shrinking", Content: strings.Repeat("plenty of words in here ", 300)}
	first, err := b.BuildNote(context.Background(), long)
	if err != nil {
		t.Fatal(err)
	}
	if first < 2 {
		t.Fatalf("initial segments = %d, want more than 1", first)
	}

	short := models.Note{Title: "Shrinking", Content: "just one small chunk now"}
	second, err := b.BuildNote(context.Background(), short)
	if err != nil {
		t.Fatal(err)
	}
	if second != 1 {
		t.Fatalf("segments after rewrite = %d, want 1", second)
	}
	count, _ := store.Count(context.Background())
	if count != second {
		t.Errorf("store holds %d points after rewrite, want %d", count, second)
	}

	// Emptying the note clears its remaining points too.
	if _, err := b.BuildNote(context.Background(), models.Note{Title: "Shrinking"}); err != nil {
		t.Fatal(err)
	}
	count, _ = store.Count(context.Background())
	if count != 0 {
		t.Errorf("store holds %d points after emptying, want 0", count)
	}
}

func TestBuild_EmptyNoteYieldsNoSegments(t *testing.T) {
	store := testutil.NewFakeStore()
	b := newBuilder(t, store)

	n, err := b.Build(context.Background(), []models.Note{{Title: "Empty", Content: "   "}})
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("segments = %d, want 0", n)
	}
}
