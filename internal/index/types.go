// Package index maintains the in-memory vector index derived from book
// content. It is process-lifetime state: built empty at startup, populated
// by a full reindex, and kept consistent with entity lifecycle events by
// the Indexer.
package index

import (
	"fmt"
	"time"
)

// KindBook marks entries derived from book records. Reviews enrich their
// book's entry rather than forming entries of their own.
const KindBook = "book"

// Metadata holds the display fields returned alongside search hits.
// It is never used in scoring.
type Metadata struct {
	Title  string `json:"title"`
	Author string `json:"author"`
	Kind   string `json:"kind"`
}

// Entry is one unit of retrievable content: the embedded text, its vector,
// and the display metadata for result rendering.
type Entry struct {
	Key        string    `json:"key"`
	SourceText string    `json:"source_text"`
	Vector     []float32 `json:"-"`
	Metadata   Metadata  `json:"metadata"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// BookKey returns the index key for a book ID.
func BookKey(id int64) string {
	return fmt.Sprintf("book:%d", id)
}
