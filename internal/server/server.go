// Package server exposes the bookmind HTTP API: semantic search and
// reindexing over the vector index, plus the CRUD surface for books,
// reviews, users, and documents that feeds it.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/bookmind/bookmind/internal/config"
	"github.com/bookmind/bookmind/internal/embed"
	"github.com/bookmind/bookmind/internal/index"
	"github.com/bookmind/bookmind/internal/search"
	"github.com/bookmind/bookmind/internal/storage"
	"github.com/bookmind/bookmind/internal/summarize"
)

// Server wires the HTTP surface to the search core and storage.
type Server struct {
	cfg        *config.Config
	logger     *slog.Logger
	db         *storage.DB
	store      *index.Store
	embedder   embed.Embedder
	indexer    *index.Indexer
	searcher   *search.Service
	reindexer  *index.Reindexer
	summarizer summarize.Summarizer

	httpServer *http.Server
}

// New creates a Server over the given collaborators.
func New(cfg *config.Config, logger *slog.Logger, db *storage.DB, store *index.Store, embedder embed.Embedder, summarizer summarize.Summarizer) *Server {
	s := &Server{
		cfg:        cfg,
		logger:     logger,
		db:         db,
		store:      store,
		embedder:   embedder,
		indexer:    index.NewIndexer(store, embedder, cfg.Search.MaxReviews),
		searcher:   search.NewService(store, embedder),
		reindexer:  index.NewReindexer(store, embedder, db, cfg.Search.MaxReviews, cfg.Reindex.Workers, logger),
		summarizer: summarizer,
	}

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// routes builds the request multiplexer.
func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)

	mux.HandleFunc("GET /search", s.handleSearch)
	mux.HandleFunc("POST /search", s.handleSearch)

	mux.Handle("POST /reindex-all", s.requireAuth(s.handleReindexAll))
	mux.Handle("POST /reindex/{id}", s.requireAuth(s.handleReindexOne))

	mux.Handle("POST /books", s.requireAuth(s.handleCreateBook))
	mux.HandleFunc("GET /books", s.handleListBooks)
	mux.HandleFunc("GET /books/{id}", s.handleGetBook)
	mux.Handle("PUT /books/{id}", s.requireAuth(s.handleUpdateBook))
	mux.Handle("DELETE /books/{id}", s.requireAuth(s.handleDeleteBook))
	mux.Handle("POST /books/{id}/reviews", s.requireAuth(s.handleAddReview))
	mux.HandleFunc("GET /books/{id}/reviews", s.handleListReviews)
	mux.Handle("POST /books/{id}/summary", s.requireAuth(s.handleGenerateSummary))

	mux.Handle("POST /admin/users", s.requireAdmin(s.handleCreateUser))
	mux.Handle("GET /admin/users", s.requireAdmin(s.handleListUsers))
	mux.Handle("PUT /admin/users/{id}", s.requireAdmin(s.handleUpdateUser))
	mux.Handle("DELETE /admin/users/{id}", s.requireAdmin(s.handleDeleteUser))

	mux.Handle("POST /documents", s.requireAuth(s.handleUploadDocument))
	mux.Handle("GET /documents", s.requireAuth(s.handleListDocuments))
	mux.Handle("DELETE /documents/{id}", s.requireAuth(s.handleDeleteDocument))

	// Diagnostic dump of the in-memory index. Development only.
	if s.cfg.Server.IsDevelopment() {
		mux.Handle("GET /debug/embeddings", s.requireAuth(s.handleDebugEmbeddings))
	}

	return s.withRecovery(s.withRequestLog(mux))
}

// Start runs the HTTP server until it fails or Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("http server listening",
		"addr", s.httpServer.Addr,
		"env", s.cfg.Server.Env,
		"embedder", s.embedder.ModelName())
	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the full middleware-wrapped handler, used by tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Reindexer exposes the reindex controller for startup population.
func (s *Server) Reindexer() *index.Reindexer {
	return s.reindexer
}
