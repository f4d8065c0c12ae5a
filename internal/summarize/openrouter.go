package summarize

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/bookmind/bookmind/internal/config"
	apperr "github.com/bookmind/bookmind/internal/errors"
	"github.com/bookmind/bookmind/internal/storage"
)

// openRouterRate bounds outbound summary requests. OpenRouter free-tier
// keys throttle aggressively, so stay well under the documented limit.
var openRouterRate = rate.Limit(0.5) // one request per two seconds

// OpenRouter calls an OpenRouter-compatible chat completions API.
type OpenRouter struct {
	baseURL string
	model   string
	apiKey  string
	client  *http.Client
	limiter *rate.Limiter
	timeout time.Duration
}

// NewOpenRouter creates an OpenRouter summarizer.
func NewOpenRouter(cfg config.SummarizerConfig, apiKey string) *OpenRouter {
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &OpenRouter{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		model:   cfg.Model,
		apiKey:  apiKey,
		client:  &http.Client{},
		limiter: rate.NewLimiter(openRouterRate, 1),
		timeout: timeout,
	}
}

// Available reports true: construction already validated the API key.
func (o *OpenRouter) Available() bool { return true }

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Summarize requests a chat completion describing the book.
func (o *OpenRouter) Summarize(ctx context.Context, book storage.Book) (string, error) {
	if err := o.limiter.Wait(ctx); err != nil {
		return "", apperr.New(apperr.ErrCodeSummaryFailed, "waiting for rate limiter", err)
	}

	reqBody := chatRequest{
		Model: o.model,
		Messages: []chatMessage{
			{Role: "user", Content: summaryPrompt(book)},
		},
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling summary request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		o.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("creating summary request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := o.client.Do(req)
	if err != nil {
		return "", apperr.New(apperr.ErrCodeNetworkUnavailable, "summary request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", apperr.New(apperr.ErrCodeSummaryFailed, "reading summary response", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", apperr.Newf(apperr.ErrCodeSummaryFailed,
			"summary API returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", apperr.New(apperr.ErrCodeSummaryFailed, "parsing summary response", err)
	}
	if parsed.Error != nil {
		return "", apperr.Newf(apperr.ErrCodeSummaryFailed, "summary API error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", apperr.Newf(apperr.ErrCodeSummaryFailed, "summary API returned no choices")
	}

	summary := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if summary == "" {
		return "", apperr.Newf(apperr.ErrCodeSummaryFailed, "summary API returned empty content")
	}
	return summary, nil
}
