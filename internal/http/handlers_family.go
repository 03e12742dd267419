package http

import (
	"net/http"

	"duitku/internal/core"
	"duitku/internal/services"
)

type familyRequest struct {
	Name string `json:"name"`
}

type familyResponse struct {
	ID      int64          `json:"id"`
	Name    string         `json:"name"`
	OwnerID int64          `json:"ownerId"`
	Members []userResponse `json:"members,omitempty"`
}

func toFamilyResponse(f core.Family) familyResponse {
	return familyResponse{ID: f.ID, Name: f.Name, OwnerID: f.OwnerID}
}

func toOverviewResponse(o services.Overview) familyResponse {
	resp := toFamilyResponse(o.Family)
	resp.Members = make([]userResponse, 0, len(o.Members))
	for _, m := range o.Members {
		resp.Members = append(resp.Members, toUserResponse(m))
	}
	return resp
}

func (s *Server) handleCreateFamily(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFrom(r.Context())

	var req familyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}

	family, err := s.family.Create(r.Context(), claims.UserID, req.Name)
	if err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, toFamilyResponse(family))
}

func (s *Server) handleFamilyOverview(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFrom(r.Context())

	overview, err := s.family.Overview(r.Context(), claims.UserID)
	if err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toOverviewResponse(overview))
}

func (s *Server) handleJoinFamily(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFrom(r.Context())

	var req familyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}

	family, err := s.family.Join(r.Context(), claims.UserID, req.Name)
	if err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toFamilyResponse(family))
}

func (s *Server) handleLeaveFamily(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFrom(r.Context())

	if err := s.family.Leave(r.Context(), claims.UserID); err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type addMemberRequest struct {
	Email string `json:"email"`
}

func (s *Server) handleAddMember(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFrom(r.Context())

	var req addMemberRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}

	member, err := s.family.AddMember(r.Context(), claims.UserID, req.Email)
	if err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(member))
}

func (s *Server) handleRemoveMember(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFrom(r.Context())

	memberID, err := pathID(r)
	if err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}

	if err := s.family.RemoveMember(r.Context(), claims.UserID, memberID); err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
