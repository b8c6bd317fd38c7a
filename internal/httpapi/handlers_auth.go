package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	authsvc "campus-access-control/backend/internal/auth/service"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string    `json:"accessToken"`
	ExpiresAt   time.Time `json:"expiresAt"`
	GuardID     string    `json:"guardId"`
	GuardName   string    `json:"guardName"`
	IsAdmin     bool      `json:"isAdmin"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", "invalid JSON body")
		return
	}

	res, err := s.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, authsvc.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "invalid_credentials", "email or password is incorrect")
			return
		}
		s.logger.Printf("login error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		AccessToken: res.AccessToken,
		ExpiresAt:   res.ExpiresAt,
		GuardID:     res.GuardID,
		GuardName:   res.GuardName,
		IsAdmin:     res.IsAdmin,
	})
}

type registerGuardRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type guardResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"isAdmin"`
	Active  bool   `json:"active"`
}

func (s *Server) handleRegisterGuard(w http.ResponseWriter, r *http.Request) {
	var req registerGuardRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", "invalid JSON body")
		return
	}

	g, err := s.auth.Register(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		if errors.Is(err, authsvc.ErrEmailAlreadyRegistered) {
			writeError(w, http.StatusConflict, "email_taken", err.Error())
			return
		}
		// Validation failures surface with their own messages.
		writeError(w, http.StatusBadRequest, "invalid_guard", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, guardResponse{
		ID: g.ID, Name: g.Name, Email: g.Email, IsAdmin: g.IsAdmin, Active: g.Active,
	})
}
