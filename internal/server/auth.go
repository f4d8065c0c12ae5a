package server

import (
	"context"
	"net/http"

	apperr "github.com/bookmind/bookmind/internal/errors"
	"github.com/bookmind/bookmind/internal/storage"
)

type contextKey string

const userContextKey contextKey = "user"

// requireAuth verifies HTTP Basic credentials against the users table and
// stores the authenticated user on the request context.
func (s *Server) requireAuth(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		username, password, ok := r.BasicAuth()
		if !ok {
			w.Header().Set("WWW-Authenticate", `Basic realm="bookmind"`)
			writeError(w, apperr.Newf(apperr.ErrCodeUnauthorized, "credentials required"))
			return
		}

		user, err := s.db.Authenticate(r.Context(), username, password)
		if err != nil {
			w.Header().Set("WWW-Authenticate", `Basic realm="bookmind"`)
			writeError(w, err)
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireAdmin is requireAuth plus an admin role check.
func (s *Server) requireAdmin(next http.HandlerFunc) http.Handler {
	return s.requireAuth(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userFromContext(r.Context())
		if !ok || !user.IsAdmin() {
			writeError(w, apperr.Newf(apperr.ErrCodeForbidden, "admin role required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// userFromContext returns the authenticated user stored by requireAuth.
func userFromContext(ctx context.Context) (storage.User, bool) {
	user, ok := ctx.Value(userContextKey).(storage.User)
	return user, ok
}
