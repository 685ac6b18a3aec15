package mcpserver

import (
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/memomind/memomind/internal/chat"
	"github.com/memomind/memomind/internal/models"
	"github.com/memomind/memomind/internal/testutil"
)

func testServer(t *testing.T) (*Server, *testutil.FakeStore, *testutil.FakeModel) {
	t.Helper()

	vaultDir, store := testutil.TestVault(t)
	testutil.WriteNote(t, vaultDir, "databases.md", "B-trees keep keys sorted.")
	testutil.WriteNote(t, vaultDir, "baking.md", "Sourdough needs a starter.")

	emb := &testutil.FakeEmbedder{}
	vectors := testutil.NewFakeStore()
	model := &testutil.FakeModel{Answer: "B-trees are balanced."}
	orch := chat.NewOrchestrator(model, emb, vectors, slog.New(slog.DiscardHandler))

	seedVectors(t, vectors, emb)

	srv := New(store, orch, emb, vectors, func(context.Context) (int, error) { return 2, nil })
	return srv, vectors, model
}

func seedVectors(t *testing.T, vectors *testutil.FakeStore, emb *testutil.FakeEmbedder) {
	t.Helper()
	segments := []models.Segment{
		{ID: "1", Text: "B-trees keep keys sorted.", NoteTitle: "databases"},
		{ID: "2", Text: "Sourdough needs a starter.", NoteTitle: "baking"},
	}
	texts := []string{segments[0].Text, segments[1].Text}
	vecs, err := emb.Embed(context.Background(), texts)
	if err != nil {
		t.Fatal(err)
	}
	if err := vectors.Upsert(context.Background(), segments, vecs); err != nil {
		t.Fatal(err)
	}
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go has no direct "call tool" test helper, so handlers are
	// invoked directly.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "ask_notes":
		result, err = srv.askNotes(ctx, req)
	case "search_notes":
		result, err = srv.searchNotes(ctx, req)
	case "list_tasks":
		result, err = srv.listTasks(ctx, req)
	case "list_notes":
		result, err = srv.listNotes(ctx, req)
	case "reindex":
		result, err = srv.reindexTool(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestAskNotes(t *testing.T) {
	srv, _, model := testServer(t)

	r := callTool(t, srv, "ask_notes", map[string]interface{}{
		"query": "how do b-trees work?",
	})
	if r.IsError {
		t.Fatalf("unexpected error: %s", resultText(r))
	}
	if got := resultText(r); !strings.Contains(got, "B-trees are balanced.") {
		t.Errorf("answer = %q", got)
	}
	if !strings.Contains(model.LastPrompt, "B-trees keep keys sorted.") {
		t.Error("prompt missing retrieved context")
	}
}

func TestAskNotesWithTask(t *testing.T) {
	srv, _, model := testServer(t)

	r := callTool(t, srv, "ask_notes", map[string]interface{}{
		"query": "sum it up",
		"task":  "Summary",
	})
	if r.IsError {
		t.Fatalf("unexpected error: %s", resultText(r))
	}
	if !strings.Contains(model.LastPrompt, "You are a summarizer") {
		t.Error("prompt missing task instructions")
	}

	r = callTool(t, srv, "ask_notes", map[string]interface{}{
		"query": "q",
		"task":  "Nope",
	})
	if !r.IsError {
		t.Error("expected error for unknown task")
	}
}

func TestSearchNotes(t *testing.T) {
	srv, _, _ := testServer(t)

	r := callTool(t, srv, "search_notes", map[string]interface{}{
		"query": "B-trees keep keys sorted.",
	})
	if r.IsError {
		t.Fatalf("unexpected error: %s", resultText(r))
	}
	text := resultText(r)
	if !strings.Contains(text, `"note": "databases"`) {
		t.Errorf("search result missing note title: %q", text)
	}
}

type emptyEmbedder struct{}

func (emptyEmbedder) Embed(context.Context, []string) ([][]float32, error) {
	return nil, nil
}

func TestSearchNotesRejectsBadEmbedBatch(t *testing.T) {
	_, store := testutil.TestVault(t)
	emb := emptyEmbedder{}
	vectors := testutil.NewFakeStore()
	orch := chat.NewOrchestrator(&testutil.FakeModel{}, emb, vectors, slog.New(slog.DiscardHandler))
	srv := New(store, orch, emb, vectors, func(context.Context) (int, error) { return 0, nil })

	r := callTool(t, srv, "search_notes", map[string]interface{}{"query": "anything"})
	if !r.IsError {
		t.Fatal("expected error when embedder returns no vectors")
	}
	if got := resultText(r); !strings.Contains(got, "want 1") {
		t.Errorf("error text = %q", got)
	}
	if vectors.Searches != 0 {
		t.Errorf("store searched %d times, want 0", vectors.Searches)
	}
}

func TestListTasksAndNotes(t *testing.T) {
	srv, _, _ := testServer(t)

	r := callTool(t, srv, "list_tasks", map[string]interface{}{})
	if got := resultText(r); !strings.Contains(got, "Summary") {
		t.Errorf("tasks = %q", got)
	}

	r = callTool(t, srv, "list_notes", map[string]interface{}{})
	got := resultText(r)
	if !strings.Contains(got, "databases.md") || !strings.Contains(got, "baking.md") {
		t.Errorf("notes = %q", got)
	}
}

func TestReindexTool(t *testing.T) {
	srv, _, _ := testServer(t)

	r := callTool(t, srv, "reindex", map[string]interface{}{})
	if got := resultText(r); got != "indexed 2 segments" {
		t.Errorf("reindex = %q", got)
	}
}
