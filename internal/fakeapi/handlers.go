package fakeapi

import (
	"encoding/json"
	"github.com/gorilla/csrf"
	"github.com/myrjola/spasession/internal/contexthelpers"
	"github.com/myrjola/spasession/internal/errors"
	"github.com/myrjola/spasession/internal/models"
	"github.com/myrjola/spasession/internal/repositories"
	"golang.org/x/crypto/bcrypt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
)

// healthy responds with a JSON object indicating that the server is healthy.
func (s *Server) healthy(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// csrfCookie hands out the CSRF token as a cookie readable by the client, URL-encoded like Laravel does.
func (s *Server) csrfCookie(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{ //nolint:exhaustruct // defaults are fine for the rest.
		Name:     xsrfCookieName,
		Value:    url.QueryEscape(csrf.Token(r)),
		Path:     "/",
		MaxAge:   int(s.cfg.SessionLifetime.Seconds()),
		Secure:   s.cfg.SecureCookies,
		HttpOnly: false,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	User models.User `json:"user"`
}

func (r loginRequest) validate() map[string][]string {
	fields := map[string][]string{}
	switch {
	case strings.TrimSpace(r.Email) == "":
		fields["email"] = []string{"The email field is required."}
	case !strings.Contains(r.Email, "@"):
		fields["email"] = []string{"The email field must be a valid email address."}
	}
	if r.Password == "" {
		fields["password"] = []string{"The password field is required."}
	}
	return fields
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, r, http.StatusUnprocessableEntity, validationResponse{
			Message: "The request body must be a JSON object.",
			Errors:  map[string][]string{},
		})
		return
	}
	if fields := req.validate(); len(fields) > 0 {
		message := "The given data was invalid."
		if msgs, ok := fields["email"]; ok {
			message = msgs[0]
		} else if msgs, ok = fields["password"]; ok {
			message = msgs[0]
		}
		s.writeJSON(w, r, http.StatusUnprocessableEntity, validationResponse{Message: message, Errors: fields})
		return
	}

	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		s.serverError(w, r, err)
		return
	}
	if err != nil || bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(req.Password)) != nil {
		s.logger.LogAttrs(ctx, slog.LevelInfo, "invalid credentials")
		s.clientError(w, r, http.StatusUnauthorized, "Invalid credentials.")
		return
	}

	// Renew the session token on privilege change to prevent session fixation.
	if err = s.sessionManager.RenewToken(ctx); err != nil {
		s.serverError(w, r, errors.Wrap(err, "renew session token"))
		return
	}
	s.sessionManager.Put(ctx, userIDSessionKey, user.ID)
	s.logger.LogAttrs(ctx, slog.LevelInfo, "user logged in", slog.Int("userID", user.ID))

	s.writeJSON(w, r, http.StatusOK, loginResponse{User: user})
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := s.sessionManager.Destroy(ctx); err != nil {
		s.serverError(w, r, errors.Wrap(err, "destroy session"))
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, "user logged out")
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) user(w http.ResponseWriter, r *http.Request) {
	user, ok := contexthelpers.AuthenticatedUser(r.Context())
	if !ok {
		s.serverError(w, r, errors.New("authenticated user missing from context"))
		return
	}
	s.writeJSON(w, r, http.StatusOK, user)
}

func (s *Server) listHabits(w http.ResponseWriter, r *http.Request) {
	user, ok := contexthelpers.AuthenticatedUser(r.Context())
	if !ok {
		s.serverError(w, r, errors.New("authenticated user missing from context"))
		return
	}
	habits, err := s.habits.ListByUser(r.Context(), user.ID)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, habits)
}
