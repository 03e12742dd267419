package http

import (
	"net/http"

	"duitku/internal/core"
)

type goalRequest struct {
	Name       string     `json:"name"`
	Target     core.Money `json:"target"`
	TargetDate core.Date  `json:"targetDate"`
}

type goalResponse struct {
	ID         int64      `json:"id"`
	Name       string     `json:"name"`
	Target     core.Money `json:"target"`
	Current    core.Money `json:"current"`
	TargetDate core.Date  `json:"targetDate"`
}

func toGoalResponse(g core.FinancialGoal) goalResponse {
	return goalResponse{
		ID:         g.ID,
		Name:       g.Name,
		Target:     g.Target,
		Current:    g.Current,
		TargetDate: g.TargetDate,
	}
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFrom(r.Context())

	var req goalRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}

	created, err := s.goals.Create(r.Context(), core.FinancialGoal{
		UserID:     claims.UserID,
		Name:       req.Name,
		Target:     req.Target,
		TargetDate: req.TargetDate,
		CreatedBy:  claims.Name,
	})
	if err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, toGoalResponse(created))
}

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFrom(r.Context())

	goals, err := s.goals.List(r.Context(), claims.UserID)
	if err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}

	out := make([]goalResponse, 0, len(goals))
	for _, g := range goals {
		out = append(out, toGoalResponse(g))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleUpdateGoal(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFrom(r.Context())

	id, err := pathID(r)
	if err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}

	var req goalRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}

	existing, err := s.goals.Get(r.Context(), claims.UserID, id)
	if err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}

	updated, err := s.goals.Update(r.Context(), core.FinancialGoal{
		ID:         id,
		UserID:     claims.UserID,
		Name:       req.Name,
		Target:     req.Target,
		Current:    existing.Current,
		TargetDate: req.TargetDate,
	})
	if err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toGoalResponse(updated))
}

type addSavingsRequest struct {
	Amount core.Money `json:"amount"`
}

func (s *Server) handleAddSavings(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFrom(r.Context())

	id, err := pathID(r)
	if err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}

	var req addSavingsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}

	goal, err := s.goals.AddSavings(r.Context(), claims.UserID, id, req.Amount)
	if err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toGoalResponse(goal))
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFrom(r.Context())

	id, err := pathID(r)
	if err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}

	if err := s.goals.Delete(r.Context(), claims.UserID, id); err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
