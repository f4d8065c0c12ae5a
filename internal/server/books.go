package server

import (
	"encoding/json"
	"net/http"
	"strings"

	apperr "github.com/bookmind/bookmind/internal/errors"
	"github.com/bookmind/bookmind/internal/storage"
)

type bookRequest struct {
	Title         string `json:"title"`
	Author        string `json:"author"`
	Genre         string `json:"genre"`
	YearPublished int    `json:"year_published"`
	Summary       string `json:"summary"`
}

func (b bookRequest) validate() error {
	if strings.TrimSpace(b.Title) == "" {
		return apperr.Newf(apperr.ErrCodeInvalidInput, "title must not be empty")
	}
	if strings.TrimSpace(b.Author) == "" {
		return apperr.Newf(apperr.ErrCodeInvalidInput, "author must not be empty")
	}
	return nil
}

// handleCreateBook stores a book and indexes it. Indexing failure does not
// fail the request: the index is derived data and a later reindex repairs
// it, so the write is acknowledged and the failure logged.
func (s *Server) handleCreateBook(w http.ResponseWriter, r *http.Request) {
	var req bookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.Newf(apperr.ErrCodeInvalidInput, "invalid request body"))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, err)
		return
	}

	book, err := s.db.CreateBook(r.Context(), storage.Book{
		Title:         req.Title,
		Author:        req.Author,
		Genre:         req.Genre,
		YearPublished: req.YearPublished,
		Summary:       req.Summary,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	if err := s.indexer.IndexBook(r.Context(), book); err != nil {
		s.logger.Warn("indexing failed on book create", "book_id", book.ID, "error", err)
	}

	writeJSON(w, http.StatusCreated, book)
}

func (s *Server) handleListBooks(w http.ResponseWriter, r *http.Request) {
	books, err := s.db.ListBooks(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if books == nil {
		books = []storage.Book{}
	}
	writeJSON(w, http.StatusOK, books)
}

func (s *Server) handleGetBook(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	book, err := s.db.GetBook(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, book)
}

// handleUpdateBook replaces a book's fields and re-indexes it with its
// recent reviews. Same warn-only indexing policy as create.
func (s *Server) handleUpdateBook(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req bookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.Newf(apperr.ErrCodeInvalidInput, "invalid request body"))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, err)
		return
	}

	book := storage.Book{
		ID:            id,
		Title:         req.Title,
		Author:        req.Author,
		Genre:         req.Genre,
		YearPublished: req.YearPublished,
		Summary:       req.Summary,
	}
	if err := s.db.UpdateBook(r.Context(), book); err != nil {
		writeError(w, err)
		return
	}

	s.reindexBookWarnOnly(r, id)
	writeJSON(w, http.StatusOK, book)
}

func (s *Server) handleDeleteBook(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.db.DeleteBook(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	s.indexer.RemoveBook(id)
	w.WriteHeader(http.StatusNoContent)
}

type reviewRequest struct {
	UserID     int64   `json:"user_id"`
	ReviewText string  `json:"review_text"`
	Rating     float64 `json:"rating"`
}

// handleAddReview stores a review and re-embeds the parent book so the new
// review text enriches its index entry.
func (s *Server) handleAddReview(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req reviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.Newf(apperr.ErrCodeInvalidInput, "invalid request body"))
		return
	}
	if strings.TrimSpace(req.ReviewText) == "" {
		writeError(w, apperr.Newf(apperr.ErrCodeInvalidInput, "review_text must not be empty"))
		return
	}
	if req.Rating < 0 || req.Rating > 5 {
		writeError(w, apperr.Newf(apperr.ErrCodeInvalidInput, "rating must be between 0 and 5"))
		return
	}

	// The foreign key would catch a missing book, but a clean 404 beats a
	// surfaced constraint error.
	if _, err := s.db.GetBook(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	review, err := s.db.AddReview(r.Context(), storage.Review{
		BookID:     id,
		UserID:     req.UserID,
		ReviewText: req.ReviewText,
		Rating:     req.Rating,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	s.reindexBookWarnOnly(r, id)
	writeJSON(w, http.StatusCreated, review)
}

func (s *Server) handleListReviews(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if _, err := s.db.GetBook(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	reviews, err := s.db.ReviewsForBook(r.Context(), id, -1)
	if err != nil {
		writeError(w, err)
		return
	}
	if reviews == nil {
		reviews = []storage.Review{}
	}
	writeJSON(w, http.StatusOK, reviews)
}

// handleGenerateSummary asks the summarizer for a book summary, stores it,
// and re-indexes the book so the summary text becomes searchable.
func (s *Server) handleGenerateSummary(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	book, err := s.db.GetBook(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	summary, err := s.summarizer.Summarize(r.Context(), book)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.db.SetBookSummary(r.Context(), id, summary); err != nil {
		writeError(w, err)
		return
	}

	s.reindexBookWarnOnly(r, id)

	book.Summary = summary
	writeJSON(w, http.StatusOK, book)
}

// reindexBookWarnOnly re-embeds one book with its recent reviews, logging
// instead of failing the surrounding request.
func (s *Server) reindexBookWarnOnly(r *http.Request, bookID int64) {
	item, err := s.db.BookWithReviews(r.Context(), bookID, s.cfg.Search.MaxReviews)
	if err != nil {
		s.logger.Warn("loading book for indexing failed", "book_id", bookID, "error", err)
		return
	}
	if err := s.indexer.IndexBookWithReviews(r.Context(), item.Book, item.Reviews); err != nil {
		s.logger.Warn("indexing failed", "book_id", bookID, "error", err)
	}
}
