//go:build ignore

// Seeds a bookmind database with a synthetic catalog for local testing.
// Usage: go run scripts/seed-books.go -db bookmind.db -books 50 -seed 42
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"

	"github.com/bookmind/bookmind/internal/storage"
)

var (
	dbPath   = flag.String("db", "bookmind.db", "SQLite database to seed")
	numBooks = flag.Int("books", 50, "Number of books to generate")
	seed     = flag.Int64("seed", 42, "Random seed for reproducibility")
)

var (
	titleParts = []string{"Shadow", "River", "Winter", "Garden", "Machine", "Voyage", "Silence", "Archive", "Harbor", "Signal"}
	authors    = []string{"M. Okafor", "L. Fernandez", "J. Whitmore", "A. Tanaka", "R. Novak", "S. Adeyemi", "K. Lindqvist", "P. Marino"}
	genres     = []string{"novel", "science fiction", "mystery", "history", "fantasy", "biography"}
	reviewText = []string{
		"Couldn't put it down, the pacing is relentless.",
		"Beautiful prose but the middle section drags.",
		"A quiet, careful book that rewards patience.",
		"The ending recontextualizes everything before it.",
		"Overhyped, though the world-building is genuinely inventive.",
	}
)

func main() {
	flag.Parse()
	rng := rand.New(rand.NewSource(*seed))

	db, err := storage.Open(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx := context.Background()
	for i := 0; i < *numBooks; i++ {
		title := fmt.Sprintf("The %s of the %s",
			titleParts[rng.Intn(len(titleParts))],
			titleParts[rng.Intn(len(titleParts))])

		book, err := db.CreateBook(ctx, storage.Book{
			Title:         title,
			Author:        authors[rng.Intn(len(authors))],
			Genre:         genres[rng.Intn(len(genres))],
			YearPublished: 1950 + rng.Intn(75),
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "create book: %v\n", err)
			os.Exit(1)
		}

		for r := 0; r < rng.Intn(4); r++ {
			_, err := db.AddReview(ctx, storage.Review{
				BookID:     book.ID,
				UserID:     int64(1 + rng.Intn(10)),
				ReviewText: reviewText[rng.Intn(len(reviewText))],
				Rating:     float64(1 + rng.Intn(5)),
			})
			if err != nil {
				fmt.Fprintf(os.Stderr, "create review: %v\n", err)
				os.Exit(1)
			}
		}
	}

	fmt.Printf("Seeded %d books into %s\n", *numBooks, *dbPath)
}
