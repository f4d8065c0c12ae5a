package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperr "github.com/bookmind/bookmind/internal/errors"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestBookCRUD(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	book, err := db.CreateBook(ctx, Book{
		Title:         "The Left Hand of Darkness",
		Author:        "Ursula K. Le Guin",
		Genre:         "science fiction",
		YearPublished: 1969,
	})
	require.NoError(t, err)
	assert.Greater(t, book.ID, int64(0))

	got, err := db.GetBook(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, book, got)

	book.Summary = "An envoy on a wintry planet."
	require.NoError(t, db.UpdateBook(ctx, book))

	got, err = db.GetBook(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, book.Summary, got.Summary)

	books, err := db.ListBooks(ctx)
	require.NoError(t, err)
	assert.Len(t, books, 1)

	require.NoError(t, db.DeleteBook(ctx, book.ID))

	_, err = db.GetBook(ctx, book.ID)
	assert.Equal(t, apperr.ErrCodeNotFound, apperr.GetCode(err))
}

func TestGetBookNotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetBook(context.Background(), 9999)
	require.Error(t, err)
	assert.Equal(t, apperr.ErrCodeNotFound, apperr.GetCode(err))
}

func TestUpdateBookNotFound(t *testing.T) {
	db := newTestDB(t)

	err := db.UpdateBook(context.Background(), Book{ID: 42, Title: "x", Author: "y"})
	assert.Equal(t, apperr.ErrCodeNotFound, apperr.GetCode(err))
}

func TestReviewsNewestFirstAndBounded(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	book, err := db.CreateBook(ctx, Book{Title: "Dune", Author: "Frank Herbert", Genre: "science fiction", YearPublished: 1965})
	require.NoError(t, err)

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 7; i++ {
		_, err := db.AddReview(ctx, Review{
			BookID:     book.ID,
			UserID:     1,
			ReviewText: "review",
			Rating:     float64(i),
			CreatedAt:  base.Add(time.Duration(i) * time.Hour),
		})
		require.NoError(t, err)
	}

	reviews, err := db.ReviewsForBook(ctx, book.ID, 5)
	require.NoError(t, err)
	require.Len(t, reviews, 5)
	// Newest first: ratings 6, 5, 4, 3, 2.
	assert.Equal(t, 6.0, reviews[0].Rating)
	assert.Equal(t, 2.0, reviews[4].Rating)

	all, err := db.ReviewsForBook(ctx, book.ID, -1)
	require.NoError(t, err)
	assert.Len(t, all, 7)

	none, err := db.ReviewsForBook(ctx, book.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestDeleteBookCascadesReviews(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	book, err := db.CreateBook(ctx, Book{Title: "Emma", Author: "Jane Austen", Genre: "novel", YearPublished: 1815})
	require.NoError(t, err)

	_, err = db.AddReview(ctx, Review{BookID: book.ID, UserID: 1, ReviewText: "delightful", Rating: 5})
	require.NoError(t, err)

	require.NoError(t, db.DeleteBook(ctx, book.ID))

	reviews, err := db.ReviewsForBook(ctx, book.ID, -1)
	require.NoError(t, err)
	assert.Empty(t, reviews)
}

func TestBookWithReviews(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	book, err := db.CreateBook(ctx, Book{Title: "Ficciones", Author: "Jorge Luis Borges", Genre: "short stories", YearPublished: 1944})
	require.NoError(t, err)

	_, err = db.AddReview(ctx, Review{BookID: book.ID, UserID: 2, ReviewText: "labyrinthine", Rating: 5})
	require.NoError(t, err)

	item, err := db.BookWithReviews(ctx, book.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, book.ID, item.Book.ID)
	assert.Len(t, item.Reviews, 1)
}

func TestAllBooksWithReviews(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		book, err := db.CreateBook(ctx, Book{Title: "Book", Author: "Author", Genre: "genre", YearPublished: 2000 + i})
		require.NoError(t, err)
		_, err = db.AddReview(ctx, Review{BookID: book.ID, UserID: 1, ReviewText: "ok", Rating: 3})
		require.NoError(t, err)
	}

	items, err := db.AllBooksWithReviews(ctx, 5)
	require.NoError(t, err)
	require.Len(t, items, 3)
	for _, item := range items {
		assert.Len(t, item.Reviews, 1)
	}
}

func TestUserLifecycleAndAuth(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	user, err := db.CreateUser(ctx, "alice", "s3cret", []string{AdminRole})
	require.NoError(t, err)
	assert.True(t, user.IsAdmin())
	assert.NotEqual(t, "s3cret", user.PasswordHash)

	// Duplicate usernames are rejected.
	_, err = db.CreateUser(ctx, "alice", "other", nil)
	assert.Equal(t, apperr.ErrCodeConflict, apperr.GetCode(err))

	authed, err := db.Authenticate(ctx, "alice", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, user.ID, authed.ID)

	_, err = db.Authenticate(ctx, "alice", "wrong")
	assert.Equal(t, apperr.ErrCodeUnauthorized, apperr.GetCode(err))

	_, err = db.Authenticate(ctx, "nobody", "s3cret")
	assert.Equal(t, apperr.ErrCodeUnauthorized, apperr.GetCode(err))

	inactive := false
	require.NoError(t, db.UpdateUser(ctx, user.ID, UserUpdate{IsActive: &inactive}))
	_, err = db.Authenticate(ctx, "alice", "s3cret")
	assert.Equal(t, apperr.ErrCodeUnauthorized, apperr.GetCode(err))

	require.NoError(t, db.DeleteUser(ctx, user.ID))
	_, err = db.GetUser(ctx, user.ID)
	assert.Equal(t, apperr.ErrCodeNotFound, apperr.GetCode(err))
}

func TestUpdateUserPasswordAndRoles(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	user, err := db.CreateUser(ctx, "bob", "first", nil)
	require.NoError(t, err)
	assert.False(t, user.IsAdmin())

	newPass := "second"
	require.NoError(t, db.UpdateUser(ctx, user.ID, UserUpdate{
		Password: &newPass,
		Roles:    []string{AdminRole},
	}))

	_, err = db.Authenticate(ctx, "bob", "first")
	require.Error(t, err)

	authed, err := db.Authenticate(ctx, "bob", "second")
	require.NoError(t, err)
	assert.True(t, authed.IsAdmin())
}

func TestCreateUserValidation(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	_, err := db.CreateUser(ctx, "  ", "pw", nil)
	assert.Equal(t, apperr.ErrCodeInvalidInput, apperr.GetCode(err))

	_, err = db.CreateUser(ctx, "carol", "", nil)
	assert.Equal(t, apperr.ErrCodeInvalidInput, apperr.GetCode(err))
}

func TestDocumentCRUD(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	doc, err := db.CreateDocument(ctx, Document{
		Filename:    "notes.pdf",
		StoredPath:  "/data/documents/notes.pdf",
		ContentType: "application/pdf",
		SizeBytes:   2048,
	})
	require.NoError(t, err)
	assert.Greater(t, doc.ID, int64(0))
	assert.False(t, doc.CreatedAt.IsZero())

	got, err := db.GetDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "notes.pdf", got.Filename)

	docs, err := db.ListDocuments(ctx)
	require.NoError(t, err)
	assert.Len(t, docs, 1)

	require.NoError(t, db.DeleteDocument(ctx, doc.ID))
	_, err = db.GetDocument(ctx, doc.ID)
	assert.Equal(t, apperr.ErrCodeNotFound, apperr.GetCode(err))
}
