package index

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperr "github.com/bookmind/bookmind/internal/errors"
	"github.com/bookmind/bookmind/internal/storage"
)

// fakeProvider serves a fixed entity set.
type fakeProvider struct {
	items []storage.BookWithReviews
}

func (p *fakeProvider) AllBooksWithReviews(ctx context.Context, maxReviews int) ([]storage.BookWithReviews, error) {
	return p.items, nil
}

func (p *fakeProvider) BookWithReviews(ctx context.Context, id int64, maxReviews int) (storage.BookWithReviews, error) {
	for _, item := range p.items {
		if item.Book.ID == id {
			return item, nil
		}
	}
	return storage.BookWithReviews{}, apperr.NotFound("book not found")
}

func makeItems(n int) []storage.BookWithReviews {
	items := make([]storage.BookWithReviews, 0, n)
	for i := 1; i <= n; i++ {
		items = append(items, storage.BookWithReviews{
			Book: storage.Book{ID: int64(i), Title: "Book", Author: "Author", Genre: "genre"},
		})
	}
	return items
}

func TestReindexAllRebuildsStore(t *testing.T) {
	store := NewStore(4)
	provider := &fakeProvider{items: makeItems(3)}
	r := NewReindexer(store, &fakeEmbedder{dimensions: 4}, provider, 5, 2, nil)

	summary, err := r.ReindexAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, summary.Succeeded)
	assert.Empty(t, summary.Failed)
	assert.Equal(t, 3, store.Size())
}

func TestReindexAllSkipsFailingEntity(t *testing.T) {
	store := NewStore(4)
	items := makeItems(5)
	items[2].Book.Title = "poison"
	provider := &fakeProvider{items: items}

	embedder := &fakeEmbedder{
		dimensions: 4,
		embedFn: func(_ context.Context, text string) ([]float32, error) {
			if strings.Contains(text, "poison") {
				return nil, apperr.EmbeddingError("model rejected input", nil)
			}
			return []float32{1, 0, 0, 0}, nil
		},
	}

	r := NewReindexer(store, embedder, provider, 5, 2, nil)
	summary, err := r.ReindexAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []int64{1, 2, 4, 5}, summary.Succeeded)
	assert.Equal(t, []int64{3}, summary.Failed)
	assert.Equal(t, 4, store.Size())

	_, ok := store.Get("book:3")
	assert.False(t, ok)
}

func TestReindexAllReplacesStaleEntries(t *testing.T) {
	store := NewStore(4)
	require.NoError(t, store.Upsert(Entry{Key: "book:999", Vector: []float32{1, 0, 0, 0}}))

	provider := &fakeProvider{items: makeItems(2)}
	r := NewReindexer(store, &fakeEmbedder{dimensions: 4}, provider, 5, 1, nil)

	_, err := r.ReindexAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, store.Size())
	_, ok := store.Get("book:999")
	assert.False(t, ok, "stale entries must not survive a full reindex")
}

func TestReindexAllKeepsOldIndexVisibleDuringRebuild(t *testing.T) {
	store := NewStore(4)
	require.NoError(t, store.Upsert(Entry{Key: "book:1", Vector: []float32{1, 0, 0, 0}}))

	observed := make(chan int, 1)
	embedder := &fakeEmbedder{
		dimensions: 4,
		embedFn: func(context.Context, string) ([]float32, error) {
			// The rebuild is in flight: searches must still see the old index.
			select {
			case observed <- store.Size():
			default:
			}
			return []float32{0, 1, 0, 0}, nil
		},
	}

	provider := &fakeProvider{items: makeItems(2)}
	r := NewReindexer(store, embedder, provider, 5, 1, nil)
	_, err := r.ReindexAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, <-observed)
	assert.Equal(t, 2, store.Size())
}

func TestReindexOne(t *testing.T) {
	store := NewStore(4)
	provider := &fakeProvider{items: makeItems(2)}
	r := NewReindexer(store, &fakeEmbedder{dimensions: 4}, provider, 5, 1, nil)

	require.NoError(t, r.ReindexOne(context.Background(), 1))
	assert.Equal(t, 1, store.Size())

	_, ok := store.Get("book:1")
	assert.True(t, ok)
}

func TestReindexOnePropagatesFailures(t *testing.T) {
	store := NewStore(4)
	provider := &fakeProvider{items: makeItems(1)}

	err := NewReindexer(store, &fakeEmbedder{dimensions: 4}, provider, 5, 1, nil).
		ReindexOne(context.Background(), 42)
	assert.Equal(t, apperr.ErrCodeNotFound, apperr.GetCode(err))

	failing := &fakeEmbedder{
		dimensions: 4,
		embedFn: func(context.Context, string) ([]float32, error) {
			return nil, apperr.EmbeddingError("down", nil)
		},
	}
	err = NewReindexer(store, failing, provider, 5, 1, nil).
		ReindexOne(context.Background(), 1)
	assert.Equal(t, apperr.ErrCodeIndexFailed, apperr.GetCode(err))
	assert.Equal(t, 0, store.Size())
}
