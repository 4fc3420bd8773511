package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"cashflow/internal/core"
)

// ErrorResponse is the body of every non-validation error reply.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// ValidationResponse carries per-field validation messages.
type ValidationResponse struct {
	Errors core.FieldErrors `json:"errors"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeJSONError(w http.ResponseWriter, status int, code, description string) {
	writeJSON(w, status, ErrorResponse{Error: code, ErrorDescription: description})
}

// writeError maps a service error onto the HTTP status contract:
// field validation failures become 422 with the full field map, missing
// entities 404, name collisions and protected deletes 409, everything
// else a generic 500.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if fe, ok := core.AsFieldErrors(err); ok {
		writeJSON(w, http.StatusUnprocessableEntity, ValidationResponse{Errors: fe})
		return
	}

	switch {
	case errors.Is(err, core.ErrNotFound):
		writeJSONError(w, http.StatusNotFound, "not_found", "Resource not found")
	case errors.Is(err, core.ErrDuplicateName):
		writeJSONError(w, http.StatusConflict, "duplicate_name", "Name already exists in this scope")
	case errors.Is(err, core.ErrReferencedByLedger):
		writeJSONError(w, http.StatusConflict, "referenced", "Ledger records still reference this entity")
	default:
		s.logger.ErrorContext(r.Context(), "request failed",
			"method", r.Method, "path", r.URL.Path, "error", err)
		writeJSONError(w, http.StatusInternalServerError, "server_error", "Internal server error")
	}
}
