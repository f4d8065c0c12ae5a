package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_DerivesCategoryFromCode(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		category Category
	}{
		{"config code", ErrCodeConfigInvalid, CategoryConfig},
		{"storage code", ErrCodeNotFound, CategoryStorage},
		{"network code", ErrCodeNetworkTimeout, CategoryNetwork},
		{"validation code", ErrCodeInvalidQuery, CategoryValidation},
		{"internal code", ErrCodeEmbeddingFailed, CategoryInternal},
		{"auth code", ErrCodeUnauthorized, CategoryAuth},
		{"garbage code", "bogus", CategoryInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code, "message", nil)
			assert.Equal(t, tt.category, err.Category)
		})
	}
}

func TestError_FormatsCodeAndMessage(t *testing.T) {
	err := New(ErrCodeInvalidQuery, "query must not be empty", nil)
	assert.Equal(t, "[ERR_403_INVALID_QUERY] query must not be empty", err.Error())
}

func TestUnwrap_ReturnsCause(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := EmbeddingError("embedding service unavailable", cause)

	require.ErrorIs(t, err, cause)
	assert.Equal(t, cause, err.Unwrap())
}

func TestIs_MatchesByCode(t *testing.T) {
	a := New(ErrCodeSearchFailed, "first", nil)
	b := New(ErrCodeSearchFailed, "second", nil)
	c := New(ErrCodeIndexFailed, "other", nil)

	assert.True(t, errors.Is(a, b))
	assert.False(t, errors.Is(a, c))
}

func TestWrap_NilReturnsNil(t *testing.T) {
	assert.Nil(t, Wrap(ErrCodeInternal, nil))
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(EmbeddingError("timeout", nil)))
	assert.False(t, IsRetryable(InvalidQuery("empty")))
	assert.False(t, IsRetryable(fmt.Errorf("plain error")))
	assert.False(t, IsRetryable(nil))
}

func TestWithDetail_Chains(t *testing.T) {
	err := IndexingError("embed failed for key", nil).
		WithDetail("key", "book:42").
		WithDetail("model", "static")

	assert.Equal(t, "book:42", err.Details["key"])
	assert.Equal(t, "static", err.Details["model"])
}

func TestGetCode(t *testing.T) {
	assert.Equal(t, ErrCodeNotFound, GetCode(NotFound("book 7 not found")))
	assert.Equal(t, "", GetCode(fmt.Errorf("plain")))
}
