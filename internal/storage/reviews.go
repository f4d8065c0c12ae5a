package storage

import (
	"context"
	"fmt"
	"time"
)

// AddReview inserts a review for a book and returns it with its assigned ID.
// The referenced book must exist (enforced by the foreign key).
func (d *DB) AddReview(ctx context.Context, review Review) (Review, error) {
	if review.CreatedAt.IsZero() {
		review.CreatedAt = time.Now().UTC()
	}

	res, err := d.db.ExecContext(ctx, `
		INSERT INTO reviews (book_id, user_id, review_text, rating, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, review.BookID, review.UserID, review.ReviewText, review.Rating,
		review.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return Review{}, fmt.Errorf("inserting review for book %d: %w", review.BookID, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return Review{}, fmt.Errorf("reading review id: %w", err)
	}
	review.ID = id
	return review, nil
}

// ReviewsForBook returns the most recent reviews for a book, newest first.
// limit 0 returns no reviews; negative limit returns all.
func (d *DB) ReviewsForBook(ctx context.Context, bookID int64, limit int) ([]Review, error) {
	if limit == 0 {
		return nil, nil
	}
	if limit < 0 {
		limit = -1 // SQLite: negative LIMIT means unlimited
	}

	rows, err := d.db.QueryContext(ctx, `
		SELECT id, book_id, user_id, review_text, rating, created_at
		FROM reviews
		WHERE book_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, bookID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying reviews for book %d: %w", bookID, err)
	}
	defer rows.Close()

	var reviews []Review
	for rows.Next() {
		var r Review
		var createdAt string
		if err := rows.Scan(&r.ID, &r.BookID, &r.UserID, &r.ReviewText, &r.Rating, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning review: %w", err)
		}
		r.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsing review timestamp %q: %w", createdAt, err)
		}
		reviews = append(reviews, r)
	}
	return reviews, rows.Err()
}
