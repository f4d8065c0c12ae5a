// Package search answers similarity queries against the vector index:
// embed the query, score it against every entry by cosine similarity,
// return the top-K ranked hits.
package search

import (
	"context"
	"math"
	"sort"
	"strings"

	"github.com/bookmind/bookmind/internal/embed"
	apperr "github.com/bookmind/bookmind/internal/errors"
	"github.com/bookmind/bookmind/internal/index"
)

// DefaultLimit is the result count used when a request does not specify one.
const DefaultLimit = 5

// Hit is one ranked search result.
type Hit struct {
	Key      string         `json:"key"`
	Metadata index.Metadata `json:"metadata"`
	Score    float64        `json:"score"`
}

// Service executes semantic searches over a vector store.
type Service struct {
	store    *index.Store
	embedder embed.Embedder
}

// NewService creates a search Service.
func NewService(store *index.Store, embedder embed.Embedder) *Service {
	return &Service{store: store, embedder: embedder}
}

// Search embeds queryText and returns up to topK hits ordered by descending
// similarity, ties broken by ascending key. topK is clamped to the store
// size; non-positive topK falls back to DefaultLimit. An empty store yields
// an empty result, not an error.
func (s *Service) Search(ctx context.Context, queryText string, topK int) ([]Hit, error) {
	if strings.TrimSpace(queryText) == "" {
		return nil, apperr.InvalidQuery("query must not be empty")
	}
	if topK <= 0 {
		topK = DefaultLimit
	}

	entries := s.store.GetAll()
	if len(entries) == 0 {
		return []Hit{}, nil
	}

	qVector, err := s.embedder.Embed(ctx, queryText)
	if err != nil {
		return nil, apperr.SearchError("embedding query", err)
	}

	hits := make([]Hit, 0, len(entries))
	for _, entry := range entries {
		hits = append(hits, Hit{
			Key:      entry.Key,
			Metadata: entry.Metadata,
			Score:    CosineSimilarity(qVector, entry.Vector),
		})
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].Key < hits[j].Key
	})

	if topK > len(hits) {
		topK = len(hits)
	}
	return hits[:topK], nil
}

// CosineSimilarity computes dot(a,b) / (||a|| * ||b||). It returns 0 when
// either norm is zero, guarding against degenerate embeddings instead of
// failing the whole query.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
