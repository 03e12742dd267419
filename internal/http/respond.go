package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"duitku/internal/core"
	"duitku/internal/log"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		json.NewEncoder(w).Encode(v)
	}
}

// writeError maps the domain error taxonomy onto HTTP statuses. Anything
// unclassified is a storage or internal failure: logged in full, surfaced
// as a generic message so internals never leak.
func writeError(ctx context.Context, w http.ResponseWriter, logger *log.Logger, err error) {
	switch {
	case errors.Is(err, core.ErrUnauthenticated):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "authentication required"})
	case errors.Is(err, core.ErrForbidden):
		writeJSON(w, http.StatusForbidden, errorResponse{Error: "operation not allowed"})
	case errors.Is(err, core.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
	case errors.Is(err, core.ErrValidation):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
	default:
		logger.ErrorContext(ctx, "Request failed", log.FieldError, err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "operation failed"})
	}
}

// decodeJSON reads a request body into v, mapping malformed payloads to the
// validation class.
func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if errors.Is(err, core.ErrValidation) || errors.Is(err, core.ErrInvalidAmount) || errors.Is(err, core.ErrInvalidDate) {
			return err
		}
		return core.ErrValidation
	}
	return nil
}
