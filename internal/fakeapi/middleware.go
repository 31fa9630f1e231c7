package fakeapi

import (
	"fmt"
	"github.com/gorilla/csrf"
	"github.com/myrjola/spasession/internal/contexthelpers"
	"github.com/myrjola/spasession/internal/errors"
	"github.com/myrjola/spasession/internal/repositories"
	"log/slog"
	"net/http"
)

const (
	xsrfCookieName   = "XSRF-TOKEN"
	xsrfHeaderName   = "X-XSRF-TOKEN"
	csrfCookieName   = "spasession_csrf"
	userIDSessionKey = "userID"
)

func secureHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Referrer-Policy", "origin-when-cross-origin")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "deny")
		w.Header().Set("Cache-Control", "no-store")

		next.ServeHTTP(w, r)
	})
}

func (s *Server) logRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var (
			proto     = r.Proto
			method    = r.Method
			uri       = r.URL.RequestURI()
			requestID = r.Header.Get("X-Request-Id")
		)

		s.logger.LogAttrs(r.Context(), slog.LevelDebug, "received request",
			slog.String("proto", proto), slog.String("method", method), slog.String("uri", uri),
			slog.String("request_id", requestID))

		next.ServeHTTP(w, r)
	})
}

func (s *Server) recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				w.Header().Set("Connection", "close")
				s.serverError(w, r, fmt.Errorf("%v", err))
			}
		}()

		next.ServeHTTP(w, r)
	})
}

// markPlaintext tells the CSRF middleware that plain http requests are expected, so it skips the Referer check
// that only makes sense over TLS.
func markPlaintext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.TLS == nil {
			r = csrf.PlaintextHTTPRequest(r)
		}
		next.ServeHTTP(w, r)
	})
}

// csrfProtect verifies the X-XSRF-TOKEN header of unsafe requests the way Sanctum does, answering 419 on mismatch.
func (s *Server) csrfProtect() func(http.Handler) http.Handler {
	return csrf.Protect(
		s.csrfKey,
		csrf.Secure(s.cfg.SecureCookies),
		csrf.HttpOnly(true),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.Path("/"),
		csrf.CookieName(csrfCookieName),
		csrf.RequestHeader(xsrfHeaderName),
		csrf.MaxAge(int(s.cfg.SessionLifetime.Seconds())),
		csrf.ErrorHandler(http.HandlerFunc(s.csrfFailure)),
	)
}

// authenticate stores the logged-in user in the request context.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := s.sessionManager.GetInt(r.Context(), userIDSessionKey)

		// User has not yet authenticated
		if userID == 0 {
			next.ServeHTTP(w, r)
			return
		}

		user, err := s.users.Get(r.Context(), userID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				s.sessionManager.Remove(r.Context(), userIDSessionKey)
				next.ServeHTTP(w, r)
				return
			}
			s.serverError(w, r, err)
			return
		}

		next.ServeHTTP(w, contexthelpers.AuthenticateContext(r, user))
	})
}

func (s *Server) requireAuthentication(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !contexthelpers.IsAuthenticated(r.Context()) {
			s.writeJSON(w, r, http.StatusUnauthorized, messageResponse{Message: "Unauthenticated."})
			return
		}
		next.ServeHTTP(w, r)
	})
}
