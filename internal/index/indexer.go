package index

import (
	"context"
	"strings"
	"time"

	"github.com/bookmind/bookmind/internal/embed"
	apperr "github.com/bookmind/bookmind/internal/errors"
	"github.com/bookmind/bookmind/internal/storage"
)

// DefaultMaxReviews bounds how many recent reviews enrich a book's entry.
const DefaultMaxReviews = 5

// Indexer translates book lifecycle events into vector store operations.
// It owns the text-composition policy: what part of a book (and its recent
// reviews) gets embedded.
type Indexer struct {
	store      *Store
	embedder   embed.Embedder
	maxReviews int
}

// NewIndexer creates an Indexer writing to store via embedder. maxReviews
// bounds review enrichment; zero or negative uses DefaultMaxReviews.
func NewIndexer(store *Store, embedder embed.Embedder, maxReviews int) *Indexer {
	if maxReviews <= 0 {
		maxReviews = DefaultMaxReviews
	}
	return &Indexer{
		store:      store,
		embedder:   embedder,
		maxReviews: maxReviews,
	}
}

// IndexBook embeds a book's text and upserts its entry.
func (ix *Indexer) IndexBook(ctx context.Context, book storage.Book) error {
	return ix.IndexBookWithReviews(ctx, book, nil)
}

// IndexBookWithReviews embeds a book's text enriched with its most recent
// reviews and upserts a single entry under the book's key.
//
// Indexing is transactional per key: the embedding happens first, and the
// store is only written on success, so a failed embed leaves the prior
// entry (or absence) intact.
func (ix *Indexer) IndexBookWithReviews(ctx context.Context, book storage.Book, reviews []storage.Review) error {
	text := ix.composeText(book, reviews)

	vector, err := ix.embedder.Embed(ctx, text)
	if err != nil {
		return apperr.IndexingError("embedding book "+BookKey(book.ID), err)
	}

	entry := Entry{
		Key:        BookKey(book.ID),
		SourceText: text,
		Vector:     vector,
		Metadata: Metadata{
			Title:  book.Title,
			Author: book.Author,
			Kind:   KindBook,
		},
		UpdatedAt: time.Now().UTC(),
	}

	if err := ix.store.Upsert(entry); err != nil {
		return apperr.IndexingError("upserting book "+BookKey(book.ID), err)
	}
	return nil
}

// RemoveBook deletes a book's entry. Removing an unindexed book is a no-op.
func (ix *Indexer) RemoveBook(bookID int64) {
	ix.store.Delete(BookKey(bookID))
}

// composeText builds the text to embed. The concatenation order is fixed
// (title, author, summary, genre, then newest-first review texts) so that
// identical inputs always produce identical vectors.
func (ix *Indexer) composeText(book storage.Book, reviews []storage.Review) string {
	parts := make([]string, 0, 4+ix.maxReviews)
	for _, p := range []string{book.Title, book.Author, book.Summary, book.Genre} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}

	count := 0
	for _, review := range reviews {
		if count >= ix.maxReviews {
			break
		}
		if text := strings.TrimSpace(review.ReviewText); text != "" {
			parts = append(parts, text)
			count++
		}
	}

	return strings.Join(parts, "\n")
}
