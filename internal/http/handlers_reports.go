package http

import (
	"net/http"

	"duitku/internal/storage"
)

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFrom(r.Context())

	ref, err := queryRef(r)
	if err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}

	summary, err := s.reports.Dashboard(r.Context(), claims.UserID, ref)
	if err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFrom(r.Context())

	ref, err := queryRef(r)
	if err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}
	timeRange, err := queryRange(r)
	if err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}

	buckets, err := s.reports.ChartData(r.Context(), claims.UserID, timeRange, ref)
	if err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, buckets)
}

func (s *Server) handleInsight(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFrom(r.Context())

	ref, err := queryRef(r)
	if err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}
	timeRange, err := queryRange(r)
	if err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}

	insight, err := s.reports.SpendingInsight(r.Context(), claims.UserID, timeRange, ref)
	if err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, insight)
}

func (s *Server) handleSumByCategory(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFrom(r.Context())

	filters, err := queryFilters(r)
	if err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}

	totals, err := s.reports.SumByCategory(r.Context(), claims.UserID, filters)
	if err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, totals)
}

func (s *Server) handleSummaryTotal(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFrom(r.Context())

	filters, err := queryFilters(r)
	if err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}

	total, count, err := s.reports.SummaryTotal(r.Context(), claims.UserID, filters)
	if err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"total": total,
		"count": count,
	})
}

type filteredExpenseResponse struct {
	expenseResponse
	CategoryName string `json:"categoryName"`
}

func toFilteredExpenseResponse(row storage.ExpenseWithCategory) filteredExpenseResponse {
	return filteredExpenseResponse{
		expenseResponse: toExpenseResponse(row.Expense),
		CategoryName:    row.CategoryName,
	}
}

func (s *Server) handleFilteredExpenses(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFrom(r.Context())

	filters, err := queryFilters(r)
	if err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}

	rows, err := s.reports.FilteredExpenses(r.Context(), claims.UserID, filters)
	if err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}

	out := make([]filteredExpenseResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, toFilteredExpenseResponse(row))
	}
	writeJSON(w, http.StatusOK, out)
}
