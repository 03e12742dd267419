package http

import (
	"net/http"

	"duitku/internal/core"
)

type expenseRequest struct {
	CategoryID    *int64     `json:"categoryId"`
	Amount        core.Money `json:"amount"`
	Description   string     `json:"description"`
	PaymentMethod string     `json:"paymentMethod"`
	Date          core.Date  `json:"date"`
}

type expenseResponse struct {
	ID            int64      `json:"id"`
	UserID        int64      `json:"userId"`
	CategoryID    *int64     `json:"categoryId"`
	Amount        core.Money `json:"amount"`
	Description   string     `json:"description"`
	PaymentMethod string     `json:"paymentMethod"`
	Date          core.Date  `json:"date"`
	CreatedBy     string     `json:"createdBy"`
}

func toExpenseResponse(e core.Expense) expenseResponse {
	return expenseResponse{
		ID:            e.ID,
		UserID:        e.UserID,
		CategoryID:    e.CategoryID,
		Amount:        e.Amount,
		Description:   e.Description,
		PaymentMethod: e.PaymentMethod,
		Date:          e.Date,
		CreatedBy:     e.CreatedBy,
	}
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFrom(r.Context())

	var req expenseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}

	expense := core.Expense{
		UserID:        claims.UserID,
		CategoryID:    req.CategoryID,
		Amount:        req.Amount,
		Description:   req.Description,
		PaymentMethod: req.PaymentMethod,
		Date:          req.Date,
		CreatedBy:     claims.Name,
	}

	created, err := s.ledger.CreateExpense(r.Context(), expense)
	if err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, toExpenseResponse(created))
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFrom(r.Context())

	expenses, err := s.ledger.ListExpenses(r.Context(), claims.UserID)
	if err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}

	out := make([]expenseResponse, 0, len(expenses))
	for _, e := range expenses {
		out = append(out, toExpenseResponse(e))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFrom(r.Context())

	id, err := pathID(r)
	if err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}

	var req expenseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}

	expense := core.Expense{
		ID:            id,
		UserID:        claims.UserID,
		CategoryID:    req.CategoryID,
		Amount:        req.Amount,
		Description:   req.Description,
		PaymentMethod: req.PaymentMethod,
		Date:          req.Date,
	}

	updated, err := s.ledger.UpdateExpense(r.Context(), expense)
	if err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toExpenseResponse(updated))
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFrom(r.Context())

	id, err := pathID(r)
	if err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}

	if err := s.ledger.DeleteExpense(r.Context(), claims.UserID, id); err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type incomeRequest struct {
	Amount      core.Money `json:"amount"`
	Source      string     `json:"source"`
	Description string     `json:"description"`
	Date        core.Date  `json:"date"`
}

type incomeResponse struct {
	ID          int64      `json:"id"`
	UserID      int64      `json:"userId"`
	Amount      core.Money `json:"amount"`
	Source      string     `json:"source"`
	Description string     `json:"description"`
	Date        core.Date  `json:"date"`
	CreatedBy   string     `json:"createdBy"`
}

func toIncomeResponse(in core.Income) incomeResponse {
	return incomeResponse{
		ID:          in.ID,
		UserID:      in.UserID,
		Amount:      in.Amount,
		Source:      in.Source,
		Description: in.Description,
		Date:        in.Date,
		CreatedBy:   in.CreatedBy,
	}
}

func (s *Server) handleCreateIncome(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFrom(r.Context())

	var req incomeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}

	income := core.Income{
		UserID:      claims.UserID,
		Amount:      req.Amount,
		Source:      req.Source,
		Description: req.Description,
		Date:        req.Date,
		CreatedBy:   claims.Name,
	}

	created, err := s.ledger.CreateIncome(r.Context(), income)
	if err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, toIncomeResponse(created))
}

func (s *Server) handleListIncomes(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFrom(r.Context())

	incomes, err := s.ledger.ListIncomes(r.Context(), claims.UserID)
	if err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}

	out := make([]incomeResponse, 0, len(incomes))
	for _, in := range incomes {
		out = append(out, toIncomeResponse(in))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleUpdateIncome(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFrom(r.Context())

	id, err := pathID(r)
	if err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}

	var req incomeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}

	income := core.Income{
		ID:          id,
		UserID:      claims.UserID,
		Amount:      req.Amount,
		Source:      req.Source,
		Description: req.Description,
		Date:        req.Date,
	}

	updated, err := s.ledger.UpdateIncome(r.Context(), income)
	if err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toIncomeResponse(updated))
}

func (s *Server) handleDeleteIncome(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFrom(r.Context())

	id, err := pathID(r)
	if err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}

	if err := s.ledger.DeleteIncome(r.Context(), claims.UserID, id); err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
