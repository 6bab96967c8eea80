package http

import (
	"encoding/json"
	"net/http"

	"fintrack/internal/core"
)

type errorBody struct {
	Error string `json:"error"`
}

// writeJSON serializes v with the given status. Encoding failures after the
// header is written can only be logged, not reported to the client.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Failed encoding response", "error", err)
	}
}

// writeError maps domain errors onto HTTP statuses. Unrecognized errors are
// reported as 500 with a generic body so internals never leak to clients.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	msg := "internal error"

	switch {
	case core.IsConflict(err):
		status = http.StatusConflict
		msg = err.Error()
	case core.IsNotFound(err):
		status = http.StatusNotFound
		msg = err.Error()
	case core.IsClientError(err):
		status = http.StatusUnprocessableEntity
		msg = err.Error()
	}

	if status >= 500 {
		s.logger.ErrorContext(r.Context(), "Request failed",
			"method", r.Method, "path", r.URL.Path, "error", err)
	}
	s.writeJSON(w, status, errorBody{Error: msg})
}
