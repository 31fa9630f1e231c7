package fakeapi

import (
	"encoding/json"
	"github.com/gorilla/csrf"
	"github.com/myrjola/spasession/internal/errors"
	"log/slog"
	"net/http"
)

// statusSessionExpired is Laravel's "Page Expired" status for CSRF token mismatches.
const statusSessionExpired = 419

type messageResponse struct {
	Message string `json:"message"`
}

type validationResponse struct {
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors"`
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		err = errors.Wrap(err, "encode response")
		s.logger.LogAttrs(r.Context(), slog.LevelError, "failed to write response", errors.SlogError(err))
	}
}

func (s *Server) serverError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		method = r.Method
		uri    = r.URL.RequestURI()
	)

	s.logger.LogAttrs(r.Context(), slog.LevelError, "server error",
		slog.String("method", method), slog.String("uri", uri), errors.SlogError(err))
	s.writeJSON(w, r, http.StatusInternalServerError, messageResponse{Message: "Server Error"})
}

func (s *Server) clientError(w http.ResponseWriter, r *http.Request, status int, message string) {
	var (
		method = r.Method
		uri    = r.URL.RequestURI()
	)

	s.logger.LogAttrs(r.Context(), slog.LevelDebug, http.StatusText(status),
		slog.String("method", method), slog.String("uri", uri))
	s.writeJSON(w, r, status, messageResponse{Message: message})
}

func (s *Server) notFound(w http.ResponseWriter, r *http.Request) {
	s.clientError(w, r, http.StatusNotFound, "Not Found")
}

func (s *Server) csrfFailure(w http.ResponseWriter, r *http.Request) {
	s.logger.LogAttrs(r.Context(), slog.LevelDebug, "csrf verification failed",
		slog.String("uri", r.URL.RequestURI()), errors.SlogError(csrf.FailureReason(r)))
	s.writeJSON(w, r, statusSessionExpired, messageResponse{Message: "CSRF token mismatch."})
}
