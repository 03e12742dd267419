package http

import (
	"net/http"

	"duitku/internal/core"
)

type registerRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	FamilyName string `json:"familyName"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	FamilyID *int64 `json:"familyId"`
}

func toUserResponse(u core.User) userResponse {
	return userResponse{ID: u.ID, Name: u.Name, Email: u.Email, FamilyID: u.FamilyID}
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}

	user, token, err := s.identity.Register(r.Context(), req.Name, req.Email, req.Password, req.FamilyName)
	if err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}

	setSessionCookie(w, token, s.sessionExpiry)
	writeJSON(w, http.StatusCreated, toUserResponse(user))
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}

	user, token, err := s.identity.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}

	setSessionCookie(w, token, s.sessionExpiry)
	writeJSON(w, http.StatusOK, toUserResponse(user))
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	clearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFrom(r.Context())
	user, err := s.identity.CurrentUser(r.Context(), claims.UserID)
	if err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(user))
}
