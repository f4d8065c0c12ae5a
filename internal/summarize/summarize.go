// Package summarize generates short book summaries via an LLM chat API.
// Summaries are stored on the book record and feed into the indexed text.
package summarize

import (
	"context"
	"fmt"
	"os"

	"github.com/bookmind/bookmind/internal/config"
	apperr "github.com/bookmind/bookmind/internal/errors"
	"github.com/bookmind/bookmind/internal/storage"
)

// Summarizer produces a short prose summary of a book.
type Summarizer interface {
	Summarize(ctx context.Context, book storage.Book) (string, error)

	// Available reports whether the summarizer can serve requests.
	Available() bool
}

// New builds the summarizer selected by cfg.
func New(cfg config.SummarizerConfig) (Summarizer, error) {
	switch cfg.Provider {
	case "none":
		return Noop{}, nil
	case "openrouter":
		apiKey := os.Getenv(cfg.APIKeyEnv)
		if apiKey == "" {
			return nil, apperr.Newf(apperr.ErrCodeConfigInvalid,
				"summarizer provider %q requires %s to be set", cfg.Provider, cfg.APIKeyEnv)
		}
		return NewOpenRouter(cfg, apiKey), nil
	default:
		return nil, apperr.Newf(apperr.ErrCodeConfigInvalid,
			"unknown summarizer provider %q", cfg.Provider)
	}
}

// Noop is the disabled summarizer.
type Noop struct{}

// Summarize always fails: summaries are disabled.
func (Noop) Summarize(ctx context.Context, book storage.Book) (string, error) {
	return "", apperr.Newf(apperr.ErrCodeSummaryFailed, "summarizer is disabled")
}

// Available reports false.
func (Noop) Available() bool { return false }

// summaryPrompt builds the user prompt for a book.
func summaryPrompt(book storage.Book) string {
	return fmt.Sprintf(
		"Write a concise 2-3 sentence summary of the book %q by %s (%s, %d). "+
			"Focus on themes and plot, no spoilers.",
		book.Title, book.Author, book.Genre, book.YearPublished)
}
