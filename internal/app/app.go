// Package app owns one authenticated API session: the client, its CSRF handshake, the session state and the
// flows operating on them. Front ends render View and call the flows.
package app

import (
	"context"
	"github.com/myrjola/spasession/internal/apiclient"
	"github.com/myrjola/spasession/internal/auth"
	"github.com/myrjola/spasession/internal/config"
	"github.com/myrjola/spasession/internal/csrf"
	"github.com/myrjola/spasession/internal/errors"
	"github.com/myrjola/spasession/internal/habits"
	"github.com/myrjola/spasession/internal/models"
	"github.com/myrjola/spasession/internal/session"
	"log/slog"
	"net/http"
	"sync"
)

// View is the screen a front end should show.
type View int

const (
	// ViewSetup is shown while the CSRF handshake hasn't finished.
	ViewSetup View = iota
	ViewLogin
	ViewDashboard
)

func (v View) String() string {
	switch v {
	case ViewSetup:
		return "setup"
	case ViewLogin:
		return "login"
	case ViewDashboard:
		return "dashboard"
	default:
		return "unknown"
	}
}

type options struct {
	transport http.RoundTripper
}

type Option func(*options)

// WithTransport sends the requests through rt instead of [http.DefaultTransport].
func WithTransport(rt http.RoundTripper) Option {
	return func(o *options) {
		o.transport = rt
	}
}

type App struct {
	logger    *slog.Logger
	client    *apiclient.Client
	store     *session.Store
	bootstrap *csrf.Bootstrapper
	auth      *auth.Service
	form      *auth.LoginForm
	habits    *habits.Client

	closeOnce sync.Once
	eject     func()
}

// New wires a session for cfg. Nothing is sent until Start.
func New(cfg config.Client, logger *slog.Logger, opts ...Option) (*App, error) {
	o := options{transport: nil}
	for _, opt := range opts {
		opt(&o)
	}

	client, err := apiclient.New(apiclient.Config{
		BaseURL:              cfg.BaseURL,
		Transport:            o.transport,
		AllowInsecureCookies: cfg.AllowInsecureCookies,
	}, logger)
	if err != nil {
		return nil, errors.Wrap(err, "new api client")
	}

	store := session.NewStore(logger)
	bootstrap := csrf.New(client, cfg.CSRF(), logger)
	service := auth.NewService(client, bootstrap, store, cfg.AuthPaths(), logger)

	// Any 401 or 419 outside the identity probe means the server no longer knows us. Without a local session,
	// e.g. the server logout answering 401 after an explicit logout, there is nothing to tear down.
	eject := client.Use(apiclient.AuthFailureInterceptor(cfg.IdentityPath,
		func(ctx context.Context, authErr *apiclient.AuthError) {
			if store.ClearIfAuthenticated(ctx, session.CauseAuthFailure) {
				logger.LogAttrs(ctx, slog.LevelInfo, "server rejected session, logged out",
					slog.Int("status", authErr.StatusCode()))
			}
		}))

	return &App{
		logger:    logger,
		client:    client,
		store:     store,
		bootstrap: bootstrap,
		auth:      service,
		form:      auth.NewLoginForm(service),
		habits:    habits.NewClient(client, cfg.HabitsPath),
		closeOnce: sync.Once{},
		eject:     eject,
	}, nil
}

// Start runs the CSRF handshake. A failure is logged and remembered, not returned: the session stays usable and
// mutating requests will be rejected by the server instead.
func (a *App) Start(ctx context.Context) {
	if err := a.bootstrap.Init(ctx); err != nil {
		a.logger.LogAttrs(ctx, slog.LevelWarn, "continuing without csrf token", errors.SlogError(err))
	}
}

// Ready reports whether the handshake has finished, successfully or not.
func (a *App) Ready() bool {
	state := a.bootstrap.State()
	return state == csrf.StateReady || state == csrf.StateFailed
}

// BootstrapErr returns why the handshake failed, nil if it succeeded or hasn't finished.
func (a *App) BootstrapErr() error {
	return a.bootstrap.Err()
}

func (a *App) View() View {
	if !a.Ready() {
		return ViewSetup
	}
	if a.store.Authenticated() {
		return ViewDashboard
	}
	return ViewLogin
}

func (a *App) User() (models.User, bool) {
	return a.store.User()
}

// Subscribe calls fn after every session change until the returned function is called.
func (a *App) Subscribe(fn func(session.Event)) func() {
	return a.store.Subscribe(fn)
}

// Login submits the login form. It returns [auth.ErrSubmitInProgress] while another submission is running.
func (a *App) Login(ctx context.Context, creds auth.Credentials) (auth.Result, error) {
	result, err := a.form.Submit(ctx, creds)
	if err != nil {
		return auth.Result{}, errors.Wrap(err, "submit login form")
	}
	return result, nil
}

// LoginState is the state of the login form.
func (a *App) LoginState() auth.FormState {
	return a.form.State()
}

// Logout ends the session locally and, best effort, on the server.
func (a *App) Logout(ctx context.Context) error {
	return a.auth.Logout(ctx)
}

// Identify restores the session from the server's identity probe, e.g. after a restart with persisted cookies.
func (a *App) Identify(ctx context.Context) (models.User, bool, error) {
	return a.auth.Identify(ctx)
}

// FetchHabits loads the protected resource and the dashboard feedback for it.
func (a *App) FetchHabits(ctx context.Context) ([]models.Habit, habits.Status) {
	list, err := a.habits.List(ctx)
	return list, habits.Summarize(list, err)
}

// Close stops reacting to auth failures. The App must not be used afterwards.
func (a *App) Close() {
	a.closeOnce.Do(a.eject)
}
