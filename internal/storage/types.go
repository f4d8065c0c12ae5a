// Package storage persists books, reviews, users, and document records in
// SQLite. It is the source of truth for all entity content; the vector index
// is derived data rebuilt from here.
package storage

import "time"

// Book is a catalog entry.
type Book struct {
	ID            int64  `json:"id"`
	Title         string `json:"title"`
	Author        string `json:"author"`
	Genre         string `json:"genre"`
	YearPublished int    `json:"year_published"`

	// Summary is the book description, either user-provided or generated
	// by the summarizer.
	Summary string `json:"summary,omitempty"`
}

// Review is a user review of a book.
type Review struct {
	ID         int64     `json:"id"`
	BookID     int64     `json:"book_id"`
	UserID     int64     `json:"user_id"`
	ReviewText string    `json:"review_text"`
	Rating     float64   `json:"rating"`
	CreatedAt  time.Time `json:"created_at"`
}

// BookWithReviews pairs a book with its most recent reviews, newest first.
type BookWithReviews struct {
	Book    Book
	Reviews []Review
}

// User is an account that can authenticate against the API.
type User struct {
	ID           int64    `json:"id"`
	Username     string   `json:"username"`
	PasswordHash string   `json:"-"`
	IsActive     bool     `json:"is_active"`
	Roles        []string `json:"roles"`
}

// AdminRole marks a user allowed to manage other users.
const AdminRole = "admin"

// IsAdmin reports whether the user carries the admin role.
func (u User) IsAdmin() bool {
	for _, r := range u.Roles {
		if r == AdminRole {
			return true
		}
	}
	return false
}

// Document is an uploaded file tracked by the service.
type Document struct {
	ID          int64     `json:"id"`
	Filename    string    `json:"filename"`
	StoredPath  string    `json:"stored_path"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	CreatedAt   time.Time `json:"created_at"`
}
