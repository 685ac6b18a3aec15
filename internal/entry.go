// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/memomind/memomind/internal/api"
	"github.com/memomind/memomind/internal/chat"
	"github.com/memomind/memomind/internal/chunk"
	"github.com/memomind/memomind/internal/corpus"
	"github.com/memomind/memomind/internal/dataset"
	"github.com/memomind/memomind/internal/index"
	"github.com/memomind/memomind/internal/llm"
	"github.com/memomind/memomind/internal/mcpserver"
	"github.com/memomind/memomind/internal/sse"
	"github.com/memomind/memomind/internal/storage"
	"github.com/memomind/memomind/internal/vectorstore"
)

// engine bundles the wired pipeline shared by every command.
type engine struct {
	logger   *slog.Logger
	store    storage.Provider
	db       *index.DB
	builder  *index.Builder
	model    llm.LanguageModel
	embedder llm.EmbeddingProvider
	vectors  vectorstore.Store
	orch     *chat.Orchestrator
	close    func()
}

func newLogger(cfg *Config) *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)
	return logger
}

// newEngine wires storage, ledger, LLM clients, vector store and
// orchestrator from the configuration. A nil logger falls back to the
// config-derived JSON logger.
func newEngine(ctx context.Context, cfg *Config, logger *slog.Logger) (*engine, error) {
	if logger == nil {
		logger = newLogger(cfg)
	}

	// Ensure vault directory exists.
	if err := os.MkdirAll(cfg.Vault.Path, 0o755); err != nil {
		return nil, fmt.Errorf("create vault dir: %w", err)
	}

	store, err := storage.NewFS(cfg.Vault.Path)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	db, err := index.Open(cfg.Ledger.Path)
	if err != nil {
		return nil, fmt.Errorf("init ledger: %w", err)
	}

	model, embedder, err := llm.NewClients(ctx, llm.Config{
		Provider:   cfg.LLM.Provider,
		Model:      cfg.LLM.Model,
		EmbedModel: cfg.LLM.EmbedModel,
		APIKey:     cfg.LLM.APIKey,
		BaseURL:    cfg.LLM.BaseURL,
		Timeout:    cfg.LLM.Timeout,
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init llm clients: %w", err)
	}
	if embedder == nil {
		db.Close()
		return nil, fmt.Errorf("provider %q has no embedding support; configure openai, gemini or ollama", cfg.LLM.Provider)
	}

	vectors, err := vectorstore.NewQdrant(cfg.Qdrant.URL, cfg.Qdrant.Collection, cfg.Qdrant.Dimension, cfg.LLM.Timeout)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init vector store: %w", err)
	}

	splitter, err := chunk.NewSplitter(chunk.DefaultSize, chunk.DefaultOverlap)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init splitter: %w", err)
	}
	builder := index.NewBuilder(splitter, embedder, vectors, logger)

	orch := chat.NewOrchestrator(model, embedder, vectors, logger,
		chat.WithTopK(cfg.Retrieval.TopK),
		chat.WithFetchK(cfg.Retrieval.FetchK),
		chat.WithLambda(cfg.Retrieval.Lambda),
	)

	return &engine{
		logger:   logger,
		store:    store,
		db:       db,
		builder:  builder,
		model:    model,
		embedder: embedder,
		vectors:  vectors,
		orch:     orch,
		close:    func() { db.Close() },
	}, nil
}

// Run starts the HTTP server, vault watcher and SSE broker. It blocks
// until the context is cancelled or a shutdown signal arrives.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return fmt.Errorf("config is required")
	}
	cfg := app.config

	eng, err := newEngine(ctx, cfg, app.logger)
	if err != nil {
		return err
	}
	defer eng.close()
	logger := eng.logger

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("vault_path", cfg.Vault.Path),
		slog.String("qdrant_url", cfg.Qdrant.URL),
		slog.String("llm_provider", cfg.LLM.Provider),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Initial sync brings the vector index up to date with the vault.
	if n, err := index.Sync(ctx, eng.db, eng.store, eng.builder, logger); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	} else {
		logger.Info("initial sync complete", slog.Int("segments", n))
	}

	// SSE broker.
	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	// Build API handler and router.
	sessions := api.NewSessionStore()
	handler := api.NewHandler(eng.orch, sessions,
		func(ctx context.Context) (int, error) {
			return index.Sync(ctx, eng.db, eng.store, eng.builder, logger)
		},
		eng.db.Stats,
	)
	apiRouter := api.NewRouter(handler, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	g, gCtx := errgroup.WithContext(ctx)

	// Start file watcher with SSE callback.
	g.Go(func() error {
		err := index.Watch(gCtx, eng.db, eng.store, eng.builder, cfg.Vault.Path, logger, func(kind, path string) {
			broker.PublishIngestEvent(kind, path)
		})
		if err != nil {
			logger.Warn("watcher stopped", slog.String("error", err.Error()))
		}
		return nil
	})

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// RunExtract parses the whole vault and writes the note records to a
// JSON file.
func RunExtract(cfg *Config, outPath string) error {
	logger := newLogger(cfg)

	store, err := storage.NewFS(cfg.Vault.Path)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}
	notes, err := corpus.Extract(store, logger)
	if err != nil {
		return fmt.Errorf("extract: %w", err)
	}
	if err := corpus.Save(outPath, notes); err != nil {
		return fmt.Errorf("save corpus: %w", err)
	}
	logger.Info("corpus extracted", slog.Int("notes", len(notes)), slog.String("path", outPath))
	return nil
}

// RunIndex performs a one-shot vault sync into the vector store.
func RunIndex(ctx context.Context, cfg *Config) error {
	eng, err := newEngine(ctx, cfg, nil)
	if err != nil {
		return err
	}
	defer eng.close()

	n, err := index.Sync(ctx, eng.db, eng.store, eng.builder, eng.logger)
	if err != nil {
		return fmt.Errorf("sync: %w", err)
	}
	eng.logger.Info("index complete", slog.Int("segments", n))
	return nil
}

// RunDataset generates question/answer pairs for every note and writes
// them as CSV.
func RunDataset(ctx context.Context, cfg *Config, outPath string) error {
	eng, err := newEngine(ctx, cfg, nil)
	if err != nil {
		return err
	}
	defer eng.close()

	notes, err := corpus.Extract(eng.store, eng.logger)
	if err != nil {
		return fmt.Errorf("extract: %w", err)
	}
	pairs, err := dataset.NewGenerator(eng.model, eng.logger).Generate(ctx, notes)
	if err != nil {
		return fmt.Errorf("generate: %w", err)
	}

	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", outPath, err)
	}
	defer f.Close()
	if err := dataset.WriteCSV(f, pairs); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	eng.logger.Info("dataset written", slog.Int("pairs", len(pairs)), slog.String("path", outPath))
	return nil
}

// RunMCP serves the MCP tools over stdio.
func RunMCP(ctx context.Context, cfg *Config) error {
	eng, err := newEngine(ctx, cfg, nil)
	if err != nil {
		return err
	}
	defer eng.close()

	srv := mcpserver.New(eng.store, eng.orch, eng.embedder, eng.vectors, func(ctx context.Context) (int, error) {
		return index.Sync(ctx, eng.db, eng.store, eng.builder, eng.logger)
	})
	return srv.ServeStdio()
}
