// Package csrf installs the server-issued CSRF token on an API client before any mutating request is sent.
//
// The server sets the token as a readable cookie in response to a dedicated GET endpoint. The Bootstrapper reads
// the cookie from the client's cookie jar, URL-decodes it and installs it as a default request header, so every
// later request from the same client echoes it back.
package csrf

import (
	"context"
	"github.com/myrjola/spasession/internal/apiclient"
	"github.com/myrjola/spasession/internal/errors"
	"log/slog"
	"net/url"
	"sync"
)

var (
	// ErrNotReady is returned by Wait when Init has never been called.
	ErrNotReady = errors.NewSentinel("csrf bootstrap not started")
	// ErrCookieMissing is returned by Init when the server didn't set the CSRF cookie.
	ErrCookieMissing = errors.NewSentinel("csrf cookie missing")
)

// State is the lifecycle of a Bootstrapper.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Config names the endpoint, cookie and header of the CSRF handshake.
type Config struct {
	CookiePath string
	CookieName string
	HeaderName string
}

// DefaultConfig follows the Laravel Sanctum conventions.
func DefaultConfig() Config {
	return Config{
		CookiePath: "/sanctum/csrf-cookie",
		CookieName: "XSRF-TOKEN",
		HeaderName: "X-XSRF-TOKEN",
	}
}

// Bootstrapper runs the CSRF handshake at most once per client.
type Bootstrapper struct {
	client *apiclient.Client
	cfg    Config
	logger *slog.Logger

	mu    sync.Mutex
	state State
	done  chan struct{}
	err   error
	token string
}

func New(client *apiclient.Client, cfg Config, logger *slog.Logger) *Bootstrapper {
	return &Bootstrapper{
		client: client,
		cfg:    cfg,
		logger: logger,
		mu:     sync.Mutex{},
		state:  StateIdle,
		done:   make(chan struct{}),
		err:    nil,
		token:  "",
	}
}

// Init fetches the CSRF cookie and installs its decoded value as a default header on the client.
//
// Only the first call performs the handshake. Calls made while it runs wait for it and every call returns its
// outcome. There is no automatic retry after a failure.
func (b *Bootstrapper) Init(ctx context.Context) error {
	b.mu.Lock()
	switch b.state {
	case StateIdle:
		b.state = StateRunning
		b.mu.Unlock()
		return b.run(ctx)
	case StateRunning:
		b.mu.Unlock()
		select {
		case <-b.done:
			return b.Err()
		case <-ctx.Done():
			return errors.Wrap(ctx.Err(), "wait for running csrf bootstrap")
		}
	case StateReady, StateFailed:
		err := b.err
		b.mu.Unlock()
		return err
	default:
		b.mu.Unlock()
		return nil
	}
}

func (b *Bootstrapper) run(ctx context.Context) error {
	b.logger.LogAttrs(ctx, slog.LevelDebug, "fetching csrf cookie", slog.String("path", b.cfg.CookiePath))
	token, err := b.fetch(ctx)

	b.mu.Lock()
	b.token = token
	b.err = err
	if err != nil {
		b.state = StateFailed
	} else {
		b.state = StateReady
	}
	close(b.done)
	b.mu.Unlock()

	if err != nil {
		b.logger.LogAttrs(ctx, slog.LevelWarn, "csrf bootstrap failed, mutating requests will be rejected",
			errors.SlogError(err))
		return err
	}
	b.logger.LogAttrs(ctx, slog.LevelInfo, "csrf header installed", slog.String("header", b.cfg.HeaderName))
	return nil
}

func (b *Bootstrapper) fetch(ctx context.Context) (string, error) {
	if _, err := b.client.Get(ctx, b.cfg.CookiePath); err != nil {
		return "", errors.Wrap(err, "fetch csrf cookie", slog.String("path", b.cfg.CookiePath))
	}

	raw, ok := b.client.Cookie(b.cfg.CookieName)
	if !ok || raw == "" {
		return "", errors.Wrap(ErrCookieMissing, "read csrf cookie", slog.String("cookie", b.cfg.CookieName))
	}

	// Path unescaping leaves '+' alone, matching how browsers decode cookie values.
	token, err := url.PathUnescape(raw)
	if err != nil {
		return "", errors.Wrap(err, "decode csrf cookie", slog.String("cookie", b.cfg.CookieName))
	}

	b.client.SetHeader(b.cfg.HeaderName, token)
	return token, nil
}

// Wait blocks until the handshake has finished, successfully or not. It returns ErrNotReady when Init was never
// called. After a failed handshake requests still go out without the header and the server is expected to reject
// them with a session-expired status.
func (b *Bootstrapper) Wait(ctx context.Context) error {
	if b.State() == StateIdle {
		return ErrNotReady
	}
	select {
	case <-b.done:
		return nil
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "wait for csrf bootstrap")
	}
}

// Done is closed once the handshake has finished.
func (b *Bootstrapper) Done() <-chan struct{} {
	return b.done
}

func (b *Bootstrapper) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Token returns the installed token, empty unless the handshake succeeded.
func (b *Bootstrapper) Token() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.token
}

// Err returns the handshake failure, if any.
func (b *Bootstrapper) Err() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.err
}
