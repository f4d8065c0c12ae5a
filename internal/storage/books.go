package storage

import (
	"context"
	"database/sql"
	"fmt"

	apperr "github.com/bookmind/bookmind/internal/errors"
)

const selectBookFields = "id, title, author, genre, year_published, summary"

// CreateBook inserts a new book and returns it with its assigned ID.
func (d *DB) CreateBook(ctx context.Context, book Book) (Book, error) {
	res, err := d.db.ExecContext(ctx, `
		INSERT INTO books (title, author, genre, year_published, summary)
		VALUES (?, ?, ?, ?, ?)
	`, book.Title, book.Author, book.Genre, book.YearPublished, book.Summary)
	if err != nil {
		return Book{}, fmt.Errorf("inserting book: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return Book{}, fmt.Errorf("reading book id: %w", err)
	}
	book.ID = id
	return book, nil
}

// GetBook retrieves a book by ID.
func (d *DB) GetBook(ctx context.Context, id int64) (Book, error) {
	row := d.db.QueryRowContext(ctx,
		"SELECT "+selectBookFields+" FROM books WHERE id = ?", id)

	var b Book
	err := row.Scan(&b.ID, &b.Title, &b.Author, &b.Genre, &b.YearPublished, &b.Summary)
	if err == sql.ErrNoRows {
		return Book{}, apperr.NotFound(fmt.Sprintf("book %d not found", id))
	}
	if err != nil {
		return Book{}, fmt.Errorf("scanning book %d: %w", id, err)
	}
	return b, nil
}

// ListBooks returns all books ordered by ID.
func (d *DB) ListBooks(ctx context.Context) ([]Book, error) {
	rows, err := d.db.QueryContext(ctx,
		"SELECT "+selectBookFields+" FROM books ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("querying books: %w", err)
	}
	defer rows.Close()

	var books []Book
	for rows.Next() {
		var b Book
		if err := rows.Scan(&b.ID, &b.Title, &b.Author, &b.Genre, &b.YearPublished, &b.Summary); err != nil {
			return nil, fmt.Errorf("scanning book: %w", err)
		}
		books = append(books, b)
	}
	return books, rows.Err()
}

// UpdateBook replaces the stored fields for book.ID.
func (d *DB) UpdateBook(ctx context.Context, book Book) error {
	res, err := d.db.ExecContext(ctx, `
		UPDATE books SET title = ?, author = ?, genre = ?, year_published = ?, summary = ?
		WHERE id = ?
	`, book.Title, book.Author, book.Genre, book.YearPublished, book.Summary, book.ID)
	if err != nil {
		return fmt.Errorf("updating book %d: %w", book.ID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking update of book %d: %w", book.ID, err)
	}
	if affected == 0 {
		return apperr.NotFound(fmt.Sprintf("book %d not found", book.ID))
	}
	return nil
}

// SetBookSummary stores a generated summary for the book.
func (d *DB) SetBookSummary(ctx context.Context, id int64, summary string) error {
	res, err := d.db.ExecContext(ctx,
		"UPDATE books SET summary = ? WHERE id = ?", summary, id)
	if err != nil {
		return fmt.Errorf("updating summary of book %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return apperr.NotFound(fmt.Sprintf("book %d not found", id))
	}
	return nil
}

// DeleteBook removes a book and, via cascade, its reviews.
func (d *DB) DeleteBook(ctx context.Context, id int64) error {
	res, err := d.db.ExecContext(ctx, "DELETE FROM books WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting book %d: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return apperr.NotFound(fmt.Sprintf("book %d not found", id))
	}
	return nil
}

// BookWithReviews returns one book with its most recent reviews, newest
// first, bounded by maxReviews (0 = no reviews).
func (d *DB) BookWithReviews(ctx context.Context, id int64, maxReviews int) (BookWithReviews, error) {
	book, err := d.GetBook(ctx, id)
	if err != nil {
		return BookWithReviews{}, err
	}

	reviews, err := d.ReviewsForBook(ctx, id, maxReviews)
	if err != nil {
		return BookWithReviews{}, err
	}

	return BookWithReviews{Book: book, Reviews: reviews}, nil
}

// AllBooksWithReviews enumerates every book with its most recent reviews.
// Used by the reindex controller to rebuild the vector index.
func (d *DB) AllBooksWithReviews(ctx context.Context, maxReviews int) ([]BookWithReviews, error) {
	books, err := d.ListBooks(ctx)
	if err != nil {
		return nil, err
	}

	items := make([]BookWithReviews, 0, len(books))
	for _, book := range books {
		reviews, err := d.ReviewsForBook(ctx, book.ID, maxReviews)
		if err != nil {
			return nil, err
		}
		items = append(items, BookWithReviews{Book: book, Reviews: reviews})
	}
	return items, nil
}
