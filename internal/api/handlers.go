package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/memomind/memomind/internal/chat"
)

// Answerer runs one conversational exchange against the indexed vault.
type Answerer interface {
	Answer(ctx context.Context, sess *chat.Session, query string, task chat.Task) (string, chat.Provenance, error)
}

// ReindexFunc runs a full vault sync and reports how many segments
// were written.
type ReindexFunc func(ctx context.Context) (int, error)

// StatsFunc reports ledger totals.
type StatsFunc func() (notes, segments int, err error)

// Handler holds API route handlers.
type Handler struct {
	answerer Answerer
	sessions *SessionStore
	reindex  ReindexFunc
	stats    StatsFunc
}

// NewHandler creates a new Handler.
func NewHandler(answerer Answerer, sessions *SessionStore, reindex ReindexFunc, stats StatsFunc) *Handler {
	return &Handler{answerer: answerer, sessions: sessions, reindex: reindex, stats: stats}
}

// CreateSession handles POST /api/sessions.
//
//	@Summary		Start a new conversation
//	@Tags			chat
//	@Produce		json
//	@Success		201	{object}	SessionResponse
//	@Security		BearerAuth
//	@Router			/sessions [post]
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.Create()
	writeJSON(w, http.StatusCreated, SessionResponse{
		SessionID: sess.ID,
		Greeting:  chat.Greeting,
	})
}

// ListTasks handles GET /api/tasks.
//
//	@Summary		List available task templates
//	@Tags			chat
//	@Produce		json
//	@Success		200	{object}	TasksResponse
//	@Security		BearerAuth
//	@Router			/tasks [get]
func (h *Handler) ListTasks(w http.ResponseWriter, r *http.Request) {
	all := chat.Tasks()
	names := make([]string, len(all))
	for i, t := range all {
		names[i] = t.Name
	}
	writeJSON(w, http.StatusOK, TasksResponse{Tasks: names})
}

// Chat handles POST /api/chat.
//
//	@Summary		Run one conversational exchange
//	@Tags			chat
//	@Accept			json
//	@Produce		json
//	@Param			body	body		ChatRequest	true	"Message to send"
//	@Success		200		{object}	ChatResponse
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/chat [post]
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.SessionID == "" || req.Message == "" {
		writeError(w, http.StatusBadRequest, "session_id and message are required")
		return
	}
	task := chat.TaskNone
	if req.Task != "" {
		var ok bool
		if task, ok = chat.TaskByName(req.Task); !ok {
			writeError(w, http.StatusBadRequest, "unknown task")
			return
		}
	}

	var (
		resp    ChatResponse
		chatErr error
	)
	found := h.sessions.With(req.SessionID, func(sess *chat.Session) {
		answer, prov, err := h.answerer.Answer(r.Context(), sess, req.Message, task)
		if err != nil {
			chatErr = err
			return
		}
		resp = ChatResponse{
			Answer:       answer,
			RelatedNotes: prov.RelatedNotes,
			References:   prov.References,
		}
	})
	if !found {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	if chatErr != nil {
		slog.Error("chat failed", slog.String("session", req.SessionID), slog.String("error", chatErr.Error()))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Reindex handles POST /api/reindex.
//
//	@Summary		Re-sync the vault into the vector index
//	@Tags			index
//	@Produce		json
//	@Success		200	{object}	ReindexResponse
//	@Security		BearerAuth
//	@Router			/reindex [post]
func (h *Handler) Reindex(w http.ResponseWriter, r *http.Request) {
	n, err := h.reindex(r.Context())
	if err != nil {
		slog.Error("reindex failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, ReindexResponse{Indexed: n})
}

// Stats handles GET /api/stats.
//
//	@Summary		Ledger totals for the indexed vault
//	@Tags			index
//	@Produce		json
//	@Success		200	{object}	StatsResponse
//	@Security		BearerAuth
//	@Router			/stats [get]
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	notes, segments, err := h.stats()
	if err != nil {
		slog.Error("stats failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, StatsResponse{Notes: notes, Segments: segments})
}
