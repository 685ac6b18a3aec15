package vectorstore

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/memomind/memomind/internal/models"
)

func TestEnsureCollection_ConflictIsBenign(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/collections/vector_db" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		w.WriteHeader(http.StatusConflict)
	}))
	defer srv.Close()

	q, err := NewQdrant(srv.URL, "vector_db", 4, 0)
	if err != nil {
		t.Fatal(err)
	}
	if err := q.EnsureCollection(context.Background()); err != nil {
		t.Errorf("existing collection should not error, got %v", err)
	}
}

func TestUpsert_SendsPointsWithPayload(t *testing.T) {
	var got struct {
		Points []struct {
			ID      string         `json:"id"`
			Vector  []float32      `json:"vector"`
			Payload map[string]any `json:"payload"`
		} `json:"points"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Write([]byte(`{"status":"ok"}`))
	}))
	defer srv.Close()

	q, err := NewQdrant(srv.URL, "vector_db", 3, 0)
	if err != nil {
		t.Fatal(err)
	}
	seg := models.Segment{
		ID:           "seg-1",
		Text:         "hello",
		NoteTitle:    "Note",
		RelatedNotes: []string{"Other"},
		References:   []models.Reference{{Title: "R", Link: "http://r"}},
	}
	if err := q.Upsert(context.Background(), []models.Segment{seg}, [][]float32{{1, 2, 3}}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if len(got.Points) != 1 || got.Points[0].ID != "seg-1" {
		t.Fatalf("points = %+v", got.Points)
	}
	if got.Points[0].Payload["text"] != "hello" || got.Points[0].Payload["note_title"] != "Note" {
		t.Errorf("payload = %v", got.Points[0].Payload)
	}
}

func TestUpsert_DimensionMismatch(t *testing.T) {
	q, err := NewQdrant("http://localhost:6333", "vector_db", 4, 0)
	if err != nil {
		t.Fatal(err)
	}
	err = q.Upsert(context.Background(), []models.Segment{{ID: "x"}}, [][]float32{{1, 2}})
	if err == nil {
		t.Error("expected dimension mismatch error")
	}
}

func TestSearch_MapsMatches(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		json.NewDecoder(r.Body).Decode(&req)
		if req["with_vector"] != true {
			t.Errorf("with_vector = %v, want true", req["with_vector"])
		}
		w.Write([]byte(`{"result":[
			{"id":"a","score":0.9,"vector":[1,0],"payload":{"text":"t1","note_title":"N1","related_notes":["X"],"references":[{"title":"R","link":"http://r"}]}},
			{"id":"b","score":0.5,"vector":[0,1],"payload":{"text":"t2","note_title":"N2"}}
		]}`))
	}))
	defer srv.Close()

	q, err := NewQdrant(srv.URL, "vector_db", 2, 0)
	if err != nil {
		t.Fatal(err)
	}
	// Fewer stored points than the requested limit is fine.
	matches, err := q.Search(context.Background(), []float32{1, 0}, 10, true)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("len(matches) = %d, want 2", len(matches))
	}
	if matches[0].Segment.ID != "a" || matches[0].Score != 0.9 {
		t.Errorf("match 0 = %+v", matches[0])
	}
	if matches[0].Segment.RelatedNotes[0] != "X" {
		t.Errorf("metadata lost: %+v", matches[0].Segment)
	}
	if len(matches[0].Vector) != 2 {
		t.Errorf("vector missing: %+v", matches[0])
	}
}

func TestCount(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result":{"count":7}}`))
	}))
	defer srv.Close()

	q, err := NewQdrant(srv.URL, "vector_db", 2, 0)
	if err != nil {
		t.Fatal(err)
	}
	n, err := q.Count(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if n != 7 {
		t.Errorf("count = %d, want 7", n)
	}
}
