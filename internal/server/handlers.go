package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	apperr "github.com/bookmind/bookmind/internal/errors"
	"github.com/bookmind/bookmind/pkg/version"
)

// handleHealth reports service liveness plus index diagnostics.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":        "ok",
		"version":       version.Version,
		"index_entries": s.store.Size(),
		"embedder":      s.embedder.ModelName(),
		"dimensions":    s.store.Dimensions(),
	})
}

type searchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

// handleSearch serves GET /search?q=...&limit=N and POST /search with a
// JSON body. Both paths go through the same ranked cosine-similarity scan.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest

	switch r.Method {
	case http.MethodPost:
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, apperr.Newf(apperr.ErrCodeInvalidInput, "invalid request body"))
			return
		}
	default:
		req.Query = r.URL.Query().Get("q")
		if raw := r.URL.Query().Get("limit"); raw != "" {
			limit, err := strconv.Atoi(raw)
			if err != nil {
				writeError(w, apperr.Newf(apperr.ErrCodeInvalidInput, "limit %q is not an integer", raw))
				return
			}
			req.Limit = limit
		}
	}

	if req.Limit <= 0 {
		req.Limit = s.cfg.Search.DefaultLimit
	}

	hits, err := s.searcher.Search(r.Context(), req.Query, req.Limit)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"query":   req.Query,
		"results": hits,
	})
}

// handleReindexAll rebuilds the whole vector index from storage.
func (s *Server) handleReindexAll(w http.ResponseWriter, r *http.Request) {
	summary, err := s.reindexer.ReindexAll(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// handleReindexOne re-embeds one book.
func (s *Server) handleReindexOne(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.reindexer.ReindexOne(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"reindexed": id})
}

// handleDebugEmbeddings dumps the in-memory index: keys, source text,
// vector lengths, and metadata. Registered only in development.
func (s *Server) handleDebugEmbeddings(w http.ResponseWriter, r *http.Request) {
	entries := s.store.GetAll()

	type debugEntry struct {
		Key        string `json:"key"`
		SourceText string `json:"source_text"`
		VectorLen  int    `json:"vector_len"`
		Title      string `json:"title"`
		Author     string `json:"author"`
		Kind       string `json:"kind"`
	}

	dump := make([]debugEntry, 0, len(entries))
	for _, entry := range entries {
		dump = append(dump, debugEntry{
			Key:        entry.Key,
			SourceText: entry.SourceText,
			VectorLen:  len(entry.Vector),
			Title:      entry.Metadata.Title,
			Author:     entry.Metadata.Author,
			Kind:       entry.Metadata.Kind,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"size":    len(dump),
		"entries": dump,
	})
}

// pathID parses the {id} path segment.
func pathID(r *http.Request) (int64, error) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Newf(apperr.ErrCodeInvalidInput, "invalid id %q", raw)
	}
	return id, nil
}
