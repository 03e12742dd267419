package http

import (
	"net/http"
	"time"

	"duitku/internal/core"
)

type recurringRequest struct {
	Kind        core.TransactionKind `json:"type"`
	Amount      core.Money           `json:"amount"`
	Description string               `json:"description"`
	CategoryID  *int64               `json:"categoryId"`
	Source      string               `json:"source"`
	Frequency   core.Frequency       `json:"frequency"`
	StartDate   core.Date            `json:"startDate"`
	EndDate     core.Date            `json:"endDate"`
}

type recurringResponse struct {
	ID          int64                `json:"id"`
	Kind        core.TransactionKind `json:"type"`
	Amount      core.Money           `json:"amount"`
	Description string               `json:"description"`
	CategoryID  *int64               `json:"categoryId"`
	Source      string               `json:"source"`
	Frequency   core.Frequency       `json:"frequency"`
	StartDate   core.Date            `json:"startDate"`
	NextDate    core.Date            `json:"nextDate"`
	EndDate     core.Date            `json:"endDate"`
}

func toRecurringResponse(rt core.RecurringTransaction) recurringResponse {
	return recurringResponse{
		ID:          rt.ID,
		Kind:        rt.Kind,
		Amount:      rt.Amount,
		Description: rt.Description,
		CategoryID:  rt.CategoryID,
		Source:      rt.Source,
		Frequency:   rt.Frequency,
		StartDate:   rt.StartDate,
		NextDate:    rt.NextDate,
		EndDate:     rt.EndDate,
	}
}

func (s *Server) handleCreateRecurring(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFrom(r.Context())

	var req recurringRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}

	created, err := s.recurring.Create(r.Context(), core.RecurringTransaction{
		UserID:      claims.UserID,
		Kind:        req.Kind,
		Amount:      req.Amount,
		Description: req.Description,
		CategoryID:  req.CategoryID,
		Source:      req.Source,
		Frequency:   req.Frequency,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		CreatedBy:   claims.Name,
	})
	if err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, toRecurringResponse(created))
}

func (s *Server) handleListRecurring(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFrom(r.Context())

	defs, err := s.recurring.List(r.Context(), claims.UserID)
	if err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}

	out := make([]recurringResponse, 0, len(defs))
	for _, rt := range defs {
		out = append(out, toRecurringResponse(rt))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleDeleteRecurring(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFrom(r.Context())

	id, err := pathID(r)
	if err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}

	if err := s.recurring.Delete(r.Context(), claims.UserID, id); err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleProcessRecurring triggers a materializer pass over the caller's
// family scope. The worker binary drains every schedule on an interval; this
// endpoint exists for manual catch-ups.
func (s *Server) handleProcessRecurring(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFrom(r.Context())

	result, err := s.recurring.ProcessDue(r.Context(), claims.UserID, time.Now().UTC())
	if err != nil {
		writeError(r.Context(), w, s.logger, err)
		return
	}

	status := http.StatusOK
	if result.Failed > 0 {
		status = http.StatusMultiStatus
	}
	writeJSON(w, status, map[string]int{
		"due":       result.Due,
		"processed": result.Processed,
		"failed":    result.Failed,
	})
}
