package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/calvinschedulo/schedulo/internal/auth"
	"github.com/calvinschedulo/schedulo/internal/database"
)

type credentialsRequest struct {
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Name     *string `json:"name,omitempty"`
}

type userResponse struct {
	ID       int64   `json:"id"`
	Email    string  `json:"email"`
	Name     *string `json:"name,omitempty"`
	Timezone string  `json:"timezone"`
}

func toUserResponse(u *database.User) userResponse {
	return userResponse{
		ID:       u.ID,
		Email:    u.Email,
		Name:     u.Name,
		Timezone: u.Timezone,
	}
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := s.authService.Signup(req.Email, req.Password, req.Name)
	if err != nil {
		switch {
		case errors.Is(err, database.ErrEmailTaken):
			respondError(w, http.StatusConflict, err.Error())
		case errors.Is(err, auth.ErrWeakPassword):
			respondError(w, http.StatusBadRequest, err.Error())
		default:
			respondError(w, http.StatusBadRequest, err.Error())
		}
		return
	}

	respondJSON(w, http.StatusCreated, toUserResponse(user))
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := s.authService.Login(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			respondError(w, http.StatusUnauthorized, err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, toUserResponse(user))
}
