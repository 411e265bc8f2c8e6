package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/simaogato/portfolio-backend/internal/domain"
)

// mapError maps a service error to an HTTP status code
func mapError(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// writeServiceError writes the mapped status for err.
// Internal errors are logged and their details kept out of the response.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := mapError(err)
	if status == http.StatusInternalServerError {
		s.log.Error().Err(err).Str("path", r.URL.Path).Msg("Request failed")
		s.writeError(w, status, "internal error")
		return
	}
	s.writeError(w, status, err.Error())
}

// writeJSON writes a JSON response
func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	encodeJSON(w, s.log, status, data)
}

// writeError writes an error response
func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	encodeJSON(w, s.log, status, errorBody(message))
}

func errorBody(message string) map[string]string {
	return map[string]string{"error": message}
}

// encodeJSON writes data as the response body; encoding failures go to log
func encodeJSON(w http.ResponseWriter, log zerolog.Logger, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
