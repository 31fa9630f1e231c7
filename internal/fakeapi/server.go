// Package fakeapi is a local stand-in for a Laravel Sanctum JSON API with cookie sessions and CSRF protection.
//
// It serves the same endpoints and status codes as the real backend: the CSRF cookie endpoint, login, logout,
// the identity probe and a protected habits resource.
package fakeapi

import (
	"context"
	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/myrjola/spasession/internal/envstruct"
	"github.com/myrjola/spasession/internal/errors"
	"github.com/myrjola/spasession/internal/pprofserver"
	"github.com/myrjola/spasession/internal/random"
	"github.com/myrjola/spasession/internal/repositories"
	"github.com/myrjola/spasession/internal/sqlite"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

const (
	sessionCookieName = "spasession_session"
	csrfKeyLength     = 32
)

// Server holds the dependencies of the development API.
type Server struct {
	cfg            Config
	logger         *slog.Logger
	db             *sqlite.Database
	sessionStore   *sqlite3store.SQLite3Store
	sessionManager *scs.SessionManager
	users          *repositories.UserRepository
	habits         *repositories.HabitRepository
	csrfKey        []byte
	handler        http.Handler
}

// NewServer opens the database, seeds the demo account and builds the routes.
func NewServer(ctx context.Context, cfg Config, logger *slog.Logger) (*Server, error) {
	var (
		err     error
		db      *sqlite.Database
		csrfKey = []byte(cfg.CSRFKey)
	)
	if len(csrfKey) == 0 {
		if csrfKey, err = random.Key(csrfKeyLength); err != nil {
			return nil, errors.Wrap(err, "generate csrf key")
		}
	}

	if db, err = sqlite.NewDatabase(ctx, cfg.SQLiteURL, logger); err != nil {
		return nil, errors.Wrap(err, "open database", slog.String("url", cfg.SQLiteURL))
	}
	logger.LogAttrs(ctx, slog.LevelDebug, "connected to db")

	sessionStore := sqlite3store.NewWithCleanupInterval(db.ReadWrite.DB, time.Hour)
	sessionManager := scs.New()
	sessionManager.Store = sessionStore
	sessionManager.Lifetime = cfg.SessionLifetime
	sessionManager.Cookie.Name = sessionCookieName
	sessionManager.Cookie.HttpOnly = true
	sessionManager.Cookie.Path = "/"
	sessionManager.Cookie.SameSite = http.SameSiteLaxMode
	sessionManager.Cookie.Secure = cfg.SecureCookies

	s := &Server{
		cfg:            cfg,
		logger:         logger,
		db:             db,
		sessionStore:   sessionStore,
		sessionManager: sessionManager,
		users:          repositories.NewUserRepository(db, logger),
		habits:         repositories.NewHabitRepository(db, logger),
		csrfKey:        csrfKey,
		handler:        nil,
	}
	if err = s.seed(ctx); err != nil {
		_ = s.Close()
		return nil, errors.Wrap(err, "seed database")
	}
	s.handler = s.routes()
	return s, nil
}

// Handler serves the API.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// ExpireSessions deletes every server-side session, as if they had all timed out.
func (s *Server) ExpireSessions(ctx context.Context) error {
	if _, err := s.db.ReadWrite.ExecContext(ctx, "DELETE FROM sessions"); err != nil {
		return errors.Wrap(err, "delete sessions")
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, "expired all sessions")
	return nil
}

// Close stops the session cleanup and closes the database.
func (s *Server) Close() error {
	s.sessionStore.StopCleanup()
	if err := s.db.Close(); err != nil {
		return errors.Wrap(err, "close database")
	}
	return nil
}

// Run starts the development API configured from the environment and blocks until ctx is done or the process
// receives SIGINT or SIGTERM.
//
// lookupEnv has the signature of [os.LookupEnv].
func Run(ctx context.Context, logger *slog.Logger, lookupEnv func(string) (string, bool)) error {
	var cfg Config
	if err := envstruct.Populate(&cfg, lookupEnv); err != nil {
		return errors.Wrap(err, "populate config")
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s, err := NewServer(ctx, cfg, logger)
	if err != nil {
		return errors.Wrap(err, "new server")
	}
	defer func() {
		if closeErr := s.Close(); closeErr != nil {
			logger.LogAttrs(ctx, slog.LevelError, "failed to close server", errors.SlogError(closeErr))
		}
	}()

	pprofserver.Launch(ctx, cfg.PprofPort, logger)
	go s.db.RunOptimizer(ctx, time.Hour)

	return s.configureAndStartServer(ctx, cfg.Addr)
}

func (s *Server) configureAndStartServer(ctx context.Context, addr string) error {
	var err error
	shutdownComplete := make(chan struct{})
	idleTimeout := time.Minute
	defaultTimeout := 5 * time.Second //nolint:mnd // the API answers from a local database.
	srv := &http.Server{
		ErrorLog:          slog.NewLogLogger(s.logger.Handler(), slog.LevelError),
		Handler:           s.handler,
		IdleTimeout:       idleTimeout,
		ReadTimeout:       defaultTimeout,
		WriteTimeout:      defaultTimeout,
		ReadHeaderTimeout: time.Second,
	}

	var listener net.Listener
	if listener, err = net.Listen("tcp", addr); err != nil {
		return errors.Wrap(err, "TCP listen", slog.String("addr", addr))
	}

	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(sigint)

		select {
		case <-sigint:
		case <-ctx.Done():
		}
		s.logger.LogAttrs(ctx, slog.LevelInfo, "shutting down server")

		shutdownContext, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		if shutdownErr := srv.Shutdown(shutdownContext); shutdownErr != nil {
			shutdownErr = errors.Wrap(shutdownErr, "shutdown server")
			s.logger.LogAttrs(ctx, slog.LevelError, "error shutting down server", errors.SlogError(shutdownErr))
		}
		close(shutdownComplete)
	}()

	s.logger.LogAttrs(ctx, slog.LevelInfo, "starting server", slog.Any("addr", listener.Addr().String()))
	if err = srv.Serve(listener); !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server serve")
	}
	<-shutdownComplete

	return nil
}
