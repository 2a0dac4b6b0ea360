package rest

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/softdesk-api/go-core/internal/auth"
	"github.com/softdesk-api/go-core/pkg/types"
)

// registerUserHandler creates a new user account. Registration is the
// one open endpoint: principals have to come from somewhere.
func (s *Server) registerUserHandler(w http.ResponseWriter, r *http.Request) {
	var req RegisterUserRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if req.Username == "" {
		WriteError(w, http.StatusBadRequest, "Username is required.")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	user := &types.User{
		Username:        req.Username,
		Email:           req.Email,
		PasswordHash:    hash,
		DateOfBirth:     req.DateOfBirth,
		CanBeContacted:  req.CanBeContacted,
		CanDataBeShared: req.CanDataBeShared,
	}
	if err := s.store.CreateUser(r.Context(), user); err != nil {
		s.writeDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, user)
}

// listUsersHandler lists all users
func (s *Server) listUsersHandler(w http.ResponseWriter, r *http.Request) {
	if !s.authorize(w, r, types.KindUser, types.ActionList, nil) {
		return
	}

	users, err := s.store.ListUsers(r.Context())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, users)
}

// getUserHandler retrieves one user
func (s *Server) getUserHandler(w http.ResponseWriter, r *http.Request) {
	if !s.authorize(w, r, types.KindUser, types.ActionRetrieve, nil) {
		return
	}

	user, err := s.store.GetUser(r.Context(), mux.Vars(r)["pk"])
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, user)
}
