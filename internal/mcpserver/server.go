// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Memo-Mind tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/memomind/memomind/internal/chat"
	"github.com/memomind/memomind/internal/llm"
	"github.com/memomind/memomind/internal/storage"
	"github.com/memomind/memomind/internal/vectorstore"
)

// ReindexFunc runs a full vault sync and reports how many segments
// were written.
type ReindexFunc func(ctx context.Context) (int, error)

// Server wraps the MCP server with Memo-Mind tools.
type Server struct {
	mcp      *server.MCPServer
	store    storage.Provider
	orch     *chat.Orchestrator
	embedder llm.EmbeddingProvider
	vectors  vectorstore.Store
	reindex  ReindexFunc
}

// New creates a new MCP server with all Memo-Mind tools registered.
func New(store storage.Provider, orch *chat.Orchestrator, embedder llm.EmbeddingProvider, vectors vectorstore.Store, reindex ReindexFunc) *Server {
	s := &Server{store: store, orch: orch, embedder: embedder, vectors: vectors, reindex: reindex}

	s.mcp = server.NewMCPServer(
		"Memo-Mind",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("ask_notes",
		mcp.WithDescription("Answer a question grounded in the indexed notes. "+
			"Optionally shape the response with a task template; call list_tasks for the available names."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Question to answer from the notes")),
		mcp.WithString("task", mcp.Description("Optional task template name (e.g. Summary)")),
	), s.askNotes)

	s.mcp.AddTool(mcp.NewTool("search_notes",
		mcp.WithDescription("Semantic search over note segments. Returns the closest segments with their source note titles."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchNotes)

	s.mcp.AddTool(mcp.NewTool("list_tasks",
		mcp.WithDescription("List the available task template names for ask_notes."),
	), s.listTasks)

	s.mcp.AddTool(mcp.NewTool("list_notes",
		mcp.WithDescription("List all notes or notes in a specific folder."),
		mcp.WithString("folder", mcp.Description("Optional folder to list (empty for all)")),
	), s.listNotes)

	s.mcp.AddTool(mcp.NewTool("reindex",
		mcp.WithDescription("Re-sync the vault into the vector index."),
	), s.reindexTool)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) askNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	task := chat.TaskNone
	if name, tErr := req.RequireString("task"); tErr == nil && name != "" {
		var ok bool
		if task, ok = chat.TaskByName(name); !ok {
			return mcp.NewToolResultError(fmt.Sprintf("unknown task: %s", name)), nil
		}
	}

	// Each tool call is its own conversation.
	sess := chat.NewSession("mcp")
	answer, prov, err := s.orch.Answer(ctx, sess, query, task)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString(answer)
	if len(prov.RelatedNotes) > 0 {
		b.WriteString("\n\nRelated notes: ")
		b.WriteString(strings.Join(prov.RelatedNotes, ", "))
	}
	if len(prov.References) > 0 {
		b.WriteString("\n\nReferences:\n")
		b.WriteString(strings.Join(prov.References, "\n"))
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) searchNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	vecs, err := s.embedder.Embed(ctx, []string{query})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(vecs) != 1 {
		return mcp.NewToolResultError(fmt.Sprintf("embed query: got %d vectors, want 1", len(vecs))), nil
	}
	matches, err := s.vectors.Search(ctx, vecs[0], 10, false)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	type hit struct {
		Note  string  `json:"note"`
		Text  string  `json:"text"`
		Score float64 `json:"score"`
	}
	hits := make([]hit, len(matches))
	for i, m := range matches {
		hits[i] = hit{Note: m.Segment.NoteTitle, Text: m.Segment.Text, Score: m.Score}
	}
	out, _ := json.MarshalIndent(hits, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listTasks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	all := chat.Tasks()
	names := make([]string, len(all))
	for i, t := range all {
		names[i] = t.Name
	}
	return mcp.NewToolResultText(strings.Join(names, "\n")), nil
}

func (s *Server) listNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	folder := ""
	if f, err := req.RequireString("folder"); err == nil {
		folder = f
	}

	metas, err := s.store.List(folder)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var paths []string
	for _, m := range metas {
		paths = append(paths, m.Path)
	}
	return mcp.NewToolResultText(strings.Join(paths, "\n")), nil
}

func (s *Server) reindexTool(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	n, err := s.reindex(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("indexed %d segments", n)), nil
}
