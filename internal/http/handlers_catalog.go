package http

import (
	"net/http"
	"time"

	"duitku/internal/core"
)

type categoryRequest struct {
	Name string `json:"name"`
}

type categoryResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedBy string    `json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
}

func toCategoryResponse(c core.Category) categoryResponse {
	return categoryResponse{ID: c.ID, Name: c.Name, CreatedBy: c.CreatedBy, CreatedAt: c.CreatedAt}
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFrom(r.Context())

	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}

	created, err := s.catalog.CreateCategory(r.Context(), core.Category{
		UserID:    claims.UserID,
		Name:      req.Name,
		CreatedBy: claims.Name,
	})
	if err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCategoryResponse(created))
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFrom(r.Context())

	categories, err := s.catalog.ListCategories(r.Context(), claims.UserID)
	if err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}

	out := make([]categoryResponse, 0, len(categories))
	for _, c := range categories {
		out = append(out, toCategoryResponse(c))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleRenameCategory(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFrom(r.Context())

	id, err := pathID(r)
	if err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}

	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}

	if err := s.catalog.RenameCategory(r.Context(), claims.UserID, id, req.Name); err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFrom(r.Context())

	id, err := pathID(r)
	if err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}

	if err := s.catalog.DeleteCategory(r.Context(), claims.UserID, id); err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type customReportRequest struct {
	Name    string             `json:"name"`
	Filters core.ReportFilters `json:"filters"`
}

type customReportResponse struct {
	ID        int64              `json:"id"`
	Name      string             `json:"name"`
	Filters   core.ReportFilters `json:"filters"`
	CreatedAt time.Time          `json:"createdAt"`
}

func toCustomReportResponse(cr core.CustomReport) customReportResponse {
	return customReportResponse{ID: cr.ID, Name: cr.Name, Filters: cr.Filters, CreatedAt: cr.CreatedAt}
}

func (s *Server) handleSaveReport(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFrom(r.Context())

	var req customReportRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}

	created, err := s.catalog.SaveReport(r.Context(), core.CustomReport{
		UserID:  claims.UserID,
		Name:    req.Name,
		Filters: req.Filters,
	})
	if err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCustomReportResponse(created))
}

func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFrom(r.Context())

	reports, err := s.catalog.ListReports(r.Context(), claims.UserID)
	if err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}

	out := make([]customReportResponse, 0, len(reports))
	for _, cr := range reports {
		out = append(out, toCustomReportResponse(cr))
	}
	writeJSON(w, http.StatusOK, out)
}

// handleRunReport feeds a saved report's filters straight into the
// aggregation engine.
func (s *Server) handleRunReport(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFrom(r.Context())

	id, err := pathID(r)
	if err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}

	report, err := s.catalog.GetReport(r.Context(), claims.UserID, id)
	if err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}

	byCategory, err := s.reports.SumByCategory(r.Context(), claims.UserID, report.Filters)
	if err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}
	total, count, err := s.reports.SummaryTotal(r.Context(), claims.UserID, report.Filters)
	if err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"report":     toCustomReportResponse(report),
		"byCategory": byCategory,
		"total":      total,
		"count":      count,
	})
}

func (s *Server) handleDeleteReport(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFrom(r.Context())

	id, err := pathID(r)
	if err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}

	if err := s.catalog.DeleteReport(r.Context(), claims.UserID, id); err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
