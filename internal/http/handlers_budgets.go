package http

import (
	"net/http"
	"strconv"
	"time"

	"duitku/internal/core"
)

type budgetRequest struct {
	CategoryID int64      `json:"categoryId"`
	Amount     core.Money `json:"amount"`
	Month      int        `json:"month"`
	Year       int        `json:"year"`
}

type budgetResponse struct {
	ID         int64      `json:"id"`
	CategoryID int64      `json:"categoryId"`
	Amount     core.Money `json:"amount"`
	Month      int        `json:"month"`
	Year       int        `json:"year"`
}

type budgetProgressResponse struct {
	budgetResponse
	CategoryName string     `json:"categoryName"`
	Spent        core.Money `json:"spent"`
	Remaining    core.Money `json:"remaining"`
}

func (s *Server) handleSaveBudget(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFrom(r.Context())

	var req budgetRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}

	saved, err := s.budgets.Save(r.Context(), core.Budget{
		UserID:     claims.UserID,
		CategoryID: req.CategoryID,
		Amount:     req.Amount,
		Month:      req.Month,
		Year:       req.Year,
		CreatedBy:  claims.Name,
	})
	if err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, budgetResponse{
		ID:         saved.ID,
		CategoryID: saved.CategoryID,
		Amount:     saved.Amount,
		Month:      saved.Month,
		Year:       saved.Year,
	})
}

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFrom(r.Context())

	now := time.Now().UTC()
	year, month := now.Year(), int(now.Month())
	if v := r.URL.Query().Get("year"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			writeError(r.Context(), w, s.logger, core.ErrValidation)
			return
		}
		year = parsed
	}
	if v := r.URL.Query().Get("month"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			writeError(r.Context(), w, s.logger, core.ErrInvalidMonth)
			return
		}
		month = parsed
	}

	budgets, err := s.budgets.List(r.Context(), claims.UserID, year, month)
	if err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}

	out := make([]budgetProgressResponse, 0, len(budgets))
	for _, b := range budgets {
		out = append(out, budgetProgressResponse{
			budgetResponse: budgetResponse{
				ID:         b.ID,
				CategoryID: b.CategoryID,
				Amount:     b.Amount,
				Month:      b.Month,
				Year:       b.Year,
			},
			CategoryName: b.CategoryName,
			Spent:        b.Spent,
			Remaining:    core.Money{Cents: b.Amount.Cents - b.Spent.Cents},
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFrom(r.Context())

	id, err := pathID(r)
	if err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}

	if err := s.budgets.Delete(r.Context(), claims.UserID, id); err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
