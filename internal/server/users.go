package server

import (
	"encoding/json"
	"net/http"

	apperr "github.com/bookmind/bookmind/internal/errors"
	"github.com/bookmind/bookmind/internal/storage"
)

type createUserRequest struct {
	Username string   `json:"username"`
	Password string   `json:"password"`
	Roles    []string `json:"roles"`
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.Newf(apperr.ErrCodeInvalidInput, "invalid request body"))
		return
	}

	user, err := s.db.CreateUser(r.Context(), req.Username, req.Password, req.Roles)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.db.ListUsers(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if users == nil {
		users = []storage.User{}
	}
	writeJSON(w, http.StatusOK, users)
}

type updateUserRequest struct {
	Username *string  `json:"username"`
	Password *string  `json:"password"`
	IsActive *bool    `json:"is_active"`
	Roles    []string `json:"roles"`
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req updateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.Newf(apperr.ErrCodeInvalidInput, "invalid request body"))
		return
	}

	err = s.db.UpdateUser(r.Context(), id, storage.UserUpdate{
		Username: req.Username,
		Password: req.Password,
		IsActive: req.IsActive,
		Roles:    req.Roles,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	user, err := s.db.GetUser(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	// The last admin cannot delete itself; that would lock everyone out.
	if me, ok := userFromContext(r.Context()); ok && me.ID == id {
		writeError(w, apperr.Newf(apperr.ErrCodeInvalidInput, "cannot delete the authenticated user"))
		return
	}

	if err := s.db.DeleteUser(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
