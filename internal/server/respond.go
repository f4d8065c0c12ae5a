package server

import (
	"encoding/json"
	"errors"
	"net/http"

	apperr "github.com/bookmind/bookmind/internal/errors"
)

// writeJSON serializes v as the response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// errorBody is the JSON error envelope.
type errorBody struct {
	Error   string            `json:"error"`
	Code    string            `json:"code,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

// writeError maps an error to an HTTP status and JSON body.
func writeError(w http.ResponseWriter, err error) {
	var ae *apperr.AppError
	if !errors.As(err, &ae) {
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
		return
	}
	writeJSON(w, statusForCode(ae.Code), errorBody{
		Error:   ae.Message,
		Code:    ae.Code,
		Details: ae.Details,
	})
}

// statusForCode maps error codes to HTTP statuses.
func statusForCode(code string) int {
	switch code {
	case apperr.ErrCodeInvalidQuery, apperr.ErrCodeInvalidInput, apperr.ErrCodeDimensionMismatch:
		return http.StatusBadRequest
	case apperr.ErrCodeNotFound:
		return http.StatusNotFound
	case apperr.ErrCodeConflict:
		return http.StatusConflict
	case apperr.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case apperr.ErrCodeForbidden:
		return http.StatusForbidden
	case apperr.ErrCodeNetworkTimeout:
		return http.StatusGatewayTimeout
	case apperr.ErrCodeNetworkUnavailable, apperr.ErrCodeEmbeddingFailed,
		apperr.ErrCodeSearchFailed, apperr.ErrCodeSummaryFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
