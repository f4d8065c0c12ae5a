package index

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/bookmind/bookmind/internal/embed"
	"github.com/bookmind/bookmind/internal/storage"
)

// BookProvider enumerates the source-of-truth entities a rebuild reads.
// *storage.DB satisfies it.
type BookProvider interface {
	AllBooksWithReviews(ctx context.Context, maxReviews int) ([]storage.BookWithReviews, error)
	BookWithReviews(ctx context.Context, id int64, maxReviews int) (storage.BookWithReviews, error)
}

// Summary reports the outcome of a full reindex. Both slices are sorted
// ascending for stable output.
type Summary struct {
	Succeeded []int64 `json:"succeeded"`
	Failed    []int64 `json:"failed"`
}

// Reindexer rebuilds the vector store from the current entity set.
type Reindexer struct {
	store      *Store
	embedder   embed.Embedder
	provider   BookProvider
	maxReviews int
	workers    int
	logger     *slog.Logger
}

// NewReindexer creates a Reindexer. workers bounds embedding concurrency
// during a full rebuild; zero or negative means 1.
func NewReindexer(store *Store, embedder embed.Embedder, provider BookProvider, maxReviews, workers int, logger *slog.Logger) *Reindexer {
	if maxReviews <= 0 {
		maxReviews = DefaultMaxReviews
	}
	if workers <= 0 {
		workers = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Reindexer{
		store:      store,
		embedder:   embedder,
		provider:   provider,
		maxReviews: maxReviews,
		workers:    workers,
		logger:     logger,
	}
}

// ReindexAll rebuilds the entire store from the provider.
//
// The rebuild runs against a fresh store that is atomically swapped in at
// the end, so concurrent searches keep seeing the complete previous index
// until the new one is ready. A single entity failing to embed is recorded
// in the summary and skipped; it never aborts the rebuild.
func (r *Reindexer) ReindexAll(ctx context.Context) (Summary, error) {
	items, err := r.provider.AllBooksWithReviews(ctx, r.maxReviews)
	if err != nil {
		return Summary{}, err
	}

	fresh := NewStore(r.store.Dimensions())
	indexer := NewIndexer(fresh, r.embedder, r.maxReviews)

	var mu sync.Mutex
	summary := Summary{Succeeded: []int64{}, Failed: []int64{}}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)

	for _, item := range items {
		g.Go(func() error {
			err := indexer.IndexBookWithReviews(gctx, item.Book, item.Reviews)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				r.logger.Warn("skipping book during reindex",
					"book_id", item.Book.ID, "error", err)
				summary.Failed = append(summary.Failed, item.Book.ID)
				return nil
			}
			summary.Succeeded = append(summary.Succeeded, item.Book.ID)
			return nil
		})
	}

	// Workers never return errors; Wait only propagates context cancellation.
	if err := g.Wait(); err != nil {
		return Summary{}, err
	}
	if err := ctx.Err(); err != nil {
		return Summary{}, err
	}

	sort.Slice(summary.Succeeded, func(i, j int) bool { return summary.Succeeded[i] < summary.Succeeded[j] })
	sort.Slice(summary.Failed, func(i, j int) bool { return summary.Failed[i] < summary.Failed[j] })

	r.store.Replace(fresh)

	r.logger.Info("reindex complete",
		"succeeded", len(summary.Succeeded),
		"failed", len(summary.Failed),
		"entries", r.store.Size())
	return summary, nil
}

// ReindexOne re-embeds a single book in place. Unlike ReindexAll, a failure
// propagates: there is nothing to continue with.
func (r *Reindexer) ReindexOne(ctx context.Context, bookID int64) error {
	item, err := r.provider.BookWithReviews(ctx, bookID, r.maxReviews)
	if err != nil {
		return err
	}

	indexer := NewIndexer(r.store, r.embedder, r.maxReviews)
	return indexer.IndexBookWithReviews(ctx, item.Book, item.Reviews)
}
