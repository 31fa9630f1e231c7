package fakeapi

import (
	"github.com/justinas/alice"
	"net/http"
)

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	session := alice.New(s.sessionManager.LoadAndSave, markPlaintext, s.csrfProtect(), s.authenticate)
	protected := session.Append(s.requireAuthentication)

	mux.Handle("GET /sanctum/csrf-cookie", session.ThenFunc(s.csrfCookie))
	mux.Handle("POST /api/login", session.ThenFunc(s.login))
	mux.Handle("POST /api/logout", protected.ThenFunc(s.logout))
	mux.Handle("GET /api/user", protected.ThenFunc(s.user))
	mux.Handle("GET /api/habits", protected.ThenFunc(s.listHabits))
	mux.HandleFunc("GET /api/healthy", s.healthy)
	mux.HandleFunc("/", s.notFound)

	return alice.New(s.recoverPanic, s.logRequest, secureHeaders).Then(mux)
}
