package index

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperr "github.com/bookmind/bookmind/internal/errors"
)

func TestStoreUpsertReplacesExistingKey(t *testing.T) {
	store := NewStore(2)

	require.NoError(t, store.Upsert(Entry{Key: "book:1", Vector: []float32{1, 0}, SourceText: "first"}))
	require.NoError(t, store.Upsert(Entry{Key: "book:1", Vector: []float32{0, 1}, SourceText: "second"}))

	assert.Equal(t, 1, store.Size())

	entry, ok := store.Get("book:1")
	require.True(t, ok)
	assert.Equal(t, "second", entry.SourceText)
	assert.Equal(t, []float32{0, 1}, entry.Vector)
}

func TestStoreUpsertRejectsDimensionMismatch(t *testing.T) {
	store := NewStore(3)

	err := store.Upsert(Entry{Key: "book:1", Vector: []float32{1, 0}})
	require.Error(t, err)
	assert.Equal(t, apperr.ErrCodeDimensionMismatch, apperr.GetCode(err))
	assert.Equal(t, 0, store.Size())
}

func TestStoreUpsertRejectsEmptyKey(t *testing.T) {
	store := NewStore(2)

	err := store.Upsert(Entry{Vector: []float32{1, 0}})
	assert.Equal(t, apperr.ErrCodeInvalidInput, apperr.GetCode(err))
}

func TestStoreUpsertCopiesVector(t *testing.T) {
	store := NewStore(2)
	vec := []float32{1, 0}
	require.NoError(t, store.Upsert(Entry{Key: "book:1", Vector: vec}))

	vec[0] = 42

	entry, _ := store.Get("book:1")
	assert.Equal(t, []float32{1, 0}, entry.Vector)
}

func TestStoreDeleteAbsentKeyIsNoop(t *testing.T) {
	store := NewStore(2)
	require.NoError(t, store.Upsert(Entry{Key: "book:1", Vector: []float32{1, 0}}))

	store.Delete("book:2")
	assert.Equal(t, 1, store.Size())

	store.Delete("book:1")
	assert.Equal(t, 0, store.Size())
}

func TestStoreGetAllSortedByKey(t *testing.T) {
	store := NewStore(2)
	for _, key := range []string{"book:3", "book:1", "book:2"} {
		require.NoError(t, store.Upsert(Entry{Key: key, Vector: []float32{1, 0}}))
	}

	entries := store.GetAll()
	require.Len(t, entries, 3)
	assert.Equal(t, "book:1", entries[0].Key)
	assert.Equal(t, "book:2", entries[1].Key)
	assert.Equal(t, "book:3", entries[2].Key)
}

func TestStoreClear(t *testing.T) {
	store := NewStore(2)
	require.NoError(t, store.Upsert(Entry{Key: "book:1", Vector: []float32{1, 0}}))

	store.Clear()
	assert.Equal(t, 0, store.Size())
	assert.Empty(t, store.GetAll())
}

func TestStoreReplacePublishesFreshContents(t *testing.T) {
	store := NewStore(2)
	require.NoError(t, store.Upsert(Entry{Key: "book:1", Vector: []float32{1, 0}}))
	require.NoError(t, store.Upsert(Entry{Key: "book:2", Vector: []float32{0, 1}}))

	fresh := NewStore(2)
	require.NoError(t, fresh.Upsert(Entry{Key: "book:9", Vector: []float32{1, 0}}))

	store.Replace(fresh)

	assert.Equal(t, 1, store.Size())
	_, ok := store.Get("book:9")
	assert.True(t, ok)
	_, ok = store.Get("book:1")
	assert.False(t, ok)
}

func TestStoreConcurrentReadersAndWriters(t *testing.T) {
	store := NewStore(2)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				key := fmt.Sprintf("book:%d", n)
				_ = store.Upsert(Entry{Key: key, Vector: []float32{float32(j), 1}})
				for _, entry := range store.GetAll() {
					// A reader must never observe a half-written entry.
					assert.Len(t, entry.Vector, 2)
				}
				store.Delete(key)
			}
		}(i)
	}
	wg.Wait()
}
