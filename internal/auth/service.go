// Package auth implements the login, logout and identity flows on top of a CSRF-bootstrapped API client.
package auth

import (
	"context"
	"github.com/myrjola/spasession/internal/apiclient"
	"github.com/myrjola/spasession/internal/errors"
	"github.com/myrjola/spasession/internal/models"
	"github.com/myrjola/spasession/internal/session"
	"log/slog"
	"net/http"
)

// Bootstrap is the part of the CSRF handshake the flows depend on.
type Bootstrap interface {
	// Wait blocks until the handshake has finished. It fails when the handshake never started.
	Wait(ctx context.Context) error
}

// Paths are the API endpoints used by the flows, relative to the client's base URL.
type Paths struct {
	Login    string
	Logout   string
	Identity string
}

// DefaultPaths follows the Laravel Sanctum conventions.
func DefaultPaths() Paths {
	return Paths{
		Login:    "/api/login",
		Logout:   "/api/logout",
		Identity: "/api/user",
	}
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LogValue keeps the password out of the logs.
func (c Credentials) LogValue() slog.Value {
	return slog.GroupValue(slog.String("email", c.Email))
}

type Outcome int

const (
	OutcomeFailed Outcome = iota
	OutcomeAuthenticated
)

// Result describes the outcome of one login attempt.
type Result struct {
	Outcome Outcome
	// User is set when Outcome is OutcomeAuthenticated.
	User    models.User
	Failure Failure
	// Status is the HTTP status behind the failure, 0 when no response was received.
	Status  int
	Message string
	// Fields holds per-field validation messages for FailureValidation.
	Fields map[string][]string
	Err    error
}

// Authenticated reports whether the login succeeded.
func (r Result) Authenticated() bool {
	return r.Outcome == OutcomeAuthenticated
}

type loginResponse struct {
	User *models.User `json:"user"`
}

// Service runs the authentication flows for one client and session.
type Service struct {
	client    *apiclient.Client
	bootstrap Bootstrap
	session   *session.Store
	paths     Paths
	logger    *slog.Logger
}

func NewService(
	client *apiclient.Client,
	bootstrap Bootstrap,
	store *session.Store,
	paths Paths,
	logger *slog.Logger,
) *Service {
	return &Service{
		client:    client,
		bootstrap: bootstrap,
		session:   store,
		paths:     paths,
		logger:    logger,
	}
}

// Login submits the credentials once the CSRF handshake has finished and establishes the session on success.
//
// Failures are reported in the Result, never as a panic or a log-only event.
func (s *Service) Login(ctx context.Context, creds Credentials) Result {
	if err := s.bootstrap.Wait(ctx); err != nil {
		return s.failed(ctx, errors.Wrap(err, "wait for csrf bootstrap"), 0)
	}

	resp, err := s.client.Post(ctx, s.paths.Login, creds)
	if err != nil {
		return s.failed(ctx, errors.Wrap(err, "post login", slog.Any("credentials", creds)), 0)
	}

	var body loginResponse
	if err = resp.Decode(&body); err != nil {
		return s.failed(ctx, errors.Join(ErrUnexpectedResponse, err), resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK || body.User == nil {
		return s.failed(ctx, errors.Wrap(ErrUnexpectedResponse, "login response has no user",
			slog.Int("status", resp.StatusCode)), resp.StatusCode)
	}

	user := *body.User
	s.session.Establish(ctx, user, session.CauseLogin)
	return Result{
		Outcome: OutcomeAuthenticated,
		User:    user,
		Failure: FailureNone,
		Status:  resp.StatusCode,
		Message: FailureNone.Message(resp.StatusCode, nil),
		Fields:  nil,
		Err:     nil,
	}
}

// failed builds a failed Result. status overrides the status found in err when non-zero.
func (s *Service) failed(ctx context.Context, err error, status int) Result {
	failure, errStatus := Classify(err)
	if status == 0 {
		status = errStatus
	}
	var (
		fields        map[string][]string
		validationErr *apiclient.ValidationError
	)
	if errors.As(err, &validationErr) {
		fields = validationErr.Fields
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, "login failed",
		slog.String("failure", failure.String()), slog.Int("status", status), errors.SlogError(err))
	return Result{
		Outcome: OutcomeFailed,
		User:    models.User{},
		Failure: failure,
		Status:  status,
		Message: failure.Message(status, err),
		Fields:  fields,
		Err:     err,
	}
}

// Logout clears the local session and then asks the server to end its session.
//
// The local session is cleared regardless of the server's answer. The returned error only reports that the server
// side could not be confirmed.
func (s *Service) Logout(ctx context.Context) error {
	s.session.Clear(ctx, session.CauseLogout)

	if err := s.bootstrap.Wait(ctx); err != nil {
		err = errors.Wrap(err, "wait for csrf bootstrap")
		s.logger.LogAttrs(ctx, slog.LevelWarn, "skipped server logout", errors.SlogError(err))
		return err
	}
	if _, err := s.client.Post(ctx, s.paths.Logout, nil); err != nil {
		err = errors.Wrap(err, "post logout")
		s.logger.LogAttrs(ctx, slog.LevelWarn, "server logout failed", errors.SlogError(err))
		return err
	}
	return nil
}

// Identify asks the server who is logged in. A 401 or 419 is not an error: it reports that nobody is, and leaves
// the local session untouched.
func (s *Service) Identify(ctx context.Context) (models.User, bool, error) {
	user, err := apiclient.Get[models.User](ctx, s.client, s.paths.Identity)
	if err != nil {
		var authErr *apiclient.AuthError
		if errors.As(err, &authErr) {
			return models.User{}, false, nil
		}
		return models.User{}, false, errors.Wrap(err, "get identity")
	}
	if user.ID == 0 && user.Email == "" {
		return models.User{}, false, errors.Wrap(ErrUnexpectedResponse, "identity response has no user")
	}
	s.session.Establish(ctx, user, session.CauseIdentity)
	return user, true, nil
}
