package vectorstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/memomind/memomind/internal/apperr"
	"github.com/memomind/memomind/internal/models"
)

const defaultHTTPTimeout = 30 * time.Second

// Qdrant implements Store over the Qdrant REST API.
type Qdrant struct {
	client     *http.Client
	baseURL    string
	collection string
	dimension  int
}

// NewQdrant builds a store for the given endpoint and collection.
// timeout bounds every request; zero falls back to a default.
func NewQdrant(baseURL, collection string, dimension int, timeout time.Duration) (*Qdrant, error) {
	base := strings.TrimRight(baseURL, "/")
	if base == "" {
		return nil, errors.New("vectorstore: qdrant url is required")
	}
	if collection == "" {
		return nil, errors.New("vectorstore: collection name is required")
	}
	if dimension <= 0 {
		return nil, fmt.Errorf("vectorstore: dimension must be positive, got %d", dimension)
	}
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	return &Qdrant{
		client:     &http.Client{Timeout: timeout},
		baseURL:    base,
		collection: collection,
		dimension:  dimension,
	}, nil
}

// EnsureCollection creates the collection with cosine distance. A
// conflict response means the collection already exists and is treated
// as benign.
func (q *Qdrant) EnsureCollection(ctx context.Context) error {
	body := map[string]any{
		"vectors": map[string]any{
			"size":     q.dimension,
			"distance": "Cosine",
		},
	}
	err := q.doRequest(ctx, http.MethodPut, "/collections/"+q.collection, body, nil)
	if errors.Is(err, apperr.ErrCollectionExists) {
		return nil
	}
	return err
}

type qdrantPayload struct {
	Text         string             `json:"text"`
	NoteTitle    string             `json:"note_title"`
	RelatedNotes []string           `json:"related_notes"`
	References   []models.Reference `json:"references"`
}

// Upsert writes segments and their vectors as points keyed by segment ID.
func (q *Qdrant) Upsert(ctx context.Context, segments []models.Segment, vectors [][]float32) error {
	if len(segments) == 0 {
		return nil
	}
	if len(segments) != len(vectors) {
		return fmt.Errorf("vectorstore: %d segments but %d vectors", len(segments), len(vectors))
	}
	points := make([]any, 0, len(segments))
	for i, seg := range segments {
		if len(vectors[i]) != q.dimension {
			return fmt.Errorf("vectorstore: segment %s vector has dimension %d, want %d", seg.ID, len(vectors[i]), q.dimension)
		}
		points = append(points, map[string]any{
			"id":     seg.ID,
			"vector": vectors[i],
			"payload": qdrantPayload{
				Text:         seg.Text,
				NoteTitle:    seg.NoteTitle,
				RelatedNotes: seg.RelatedNotes,
				References:   seg.References,
			},
		})
	}
	path := fmt.Sprintf("/collections/%s/points", q.collection)
	return q.doRequest(ctx, http.MethodPut, path, map[string]any{"points": points}, nil)
}

// Search returns the nearest stored segments for the query vector.
func (q *Qdrant) Search(ctx context.Context, vector []float32, limit int, withVectors bool) ([]Match, error) {
	if len(vector) != q.dimension {
		return nil, fmt.Errorf("vectorstore: query vector has dimension %d, want %d", len(vector), q.dimension)
	}
	if limit <= 0 {
		return nil, nil
	}
	request := map[string]any{
		"vector":       vector,
		"limit":        limit,
		"with_payload": true,
		"with_vector":  withVectors,
	}
	var response struct {
		Result []struct {
			ID      any           `json:"id"`
			Score   float64       `json:"score"`
			Payload qdrantPayload `json:"payload"`
			Vector  []float32     `json:"vector"`
		} `json:"result"`
	}
	path := fmt.Sprintf("/collections/%s/points/search", q.collection)
	if err := q.doRequest(ctx, http.MethodPost, path, request, &response); err != nil {
		return nil, err
	}
	matches := make([]Match, 0, len(response.Result))
	for _, r := range response.Result {
		matches = append(matches, Match{
			Segment: models.Segment{
				ID:           fmt.Sprint(r.ID),
				Text:         r.Payload.Text,
				NoteTitle:    r.Payload.NoteTitle,
				RelatedNotes: r.Payload.RelatedNotes,
				References:   r.Payload.References,
			},
			Score:  r.Score,
			Vector: r.Vector,
		})
	}
	return matches, nil
}

// DeleteByNote removes all points whose payload carries the note title.
func (q *Qdrant) DeleteByNote(ctx context.Context, noteTitle string) error {
	request := map[string]any{
		"filter": map[string]any{
			"must": []any{
				map[string]any{
					"key":   "note_title",
					"match": map[string]any{"value": noteTitle},
				},
			},
		},
	}
	path := fmt.Sprintf("/collections/%s/points/delete", q.collection)
	return q.doRequest(ctx, http.MethodPost, path, request, nil)
}

// Count returns the exact number of stored points.
func (q *Qdrant) Count(ctx context.Context) (int, error) {
	var response struct {
		Result struct {
			Count int `json:"count"`
		} `json:"result"`
	}
	path := fmt.Sprintf("/collections/%s/points/count", q.collection)
	if err := q.doRequest(ctx, http.MethodPost, path, map[string]any{"exact": true}, &response); err != nil {
		return 0, err
	}
	return response.Result.Count, nil
}

func (q *Qdrant) doRequest(ctx context.Context, method, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("vectorstore: marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, method, q.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("vectorstore: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := q.client.Do(req)
	if err != nil {
		return fmt.Errorf("vectorstore: request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("vectorstore: read response: %w", err)
	}
	if resp.StatusCode == http.StatusConflict {
		return apperr.ErrCollectionExists
	}
	if resp.StatusCode >= 400 {
		var apiErr struct {
			Status struct {
				Error string `json:"error"`
			} `json:"status"`
		}
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Status.Error != "" {
			if strings.Contains(apiErr.Status.Error, "already exists") {
				return apperr.ErrCollectionExists
			}
			return fmt.Errorf("vectorstore: qdrant %d: %s", resp.StatusCode, apiErr.Status.Error)
		}
		return fmt.Errorf("vectorstore: qdrant returned status %d", resp.StatusCode)
	}
	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("vectorstore: decode response: %w", err)
		}
	}
	return nil
}
