package e2etest

import (
	"context"
	"github.com/myrjola/spasession/internal/app"
	"github.com/myrjola/spasession/internal/auth"
	"github.com/myrjola/spasession/internal/config"
	"github.com/myrjola/spasession/internal/errors"
	"log/slog"
)

// ErrFlowFailed is returned by RunSessionFlow when a step didn't produce the expected outcome.
var ErrFlowFailed = errors.NewSentinel("session flow failed")

// RunSessionFlow drives a full session against cfg.BaseURL the way a user would: handshake, login, identity check,
// protected fetch and logout.
func RunSessionFlow(ctx context.Context, cfg config.Client, creds auth.Credentials, logger *slog.Logger) error {
	a, err := app.New(cfg, logger)
	if err != nil {
		return errors.Wrap(err, "new app")
	}
	defer a.Close()

	a.Start(ctx)
	if err = a.BootstrapErr(); err != nil {
		return errors.Wrap(err, "csrf bootstrap")
	}

	result, err := a.Login(ctx, creds)
	if err != nil {
		return errors.Wrap(err, "login")
	}
	if !result.Authenticated() {
		return errors.Wrap(ErrFlowFailed, "login", slog.String("failure", result.Failure.String()),
			slog.String("message", result.Message))
	}

	if _, ok, identifyErr := a.Identify(ctx); identifyErr != nil || !ok {
		return errors.Wrap(errors.Join(ErrFlowFailed, identifyErr), "identify after login")
	}

	habits, status := a.FetchHabits(ctx)
	if !status.OK {
		return errors.Wrap(ErrFlowFailed, "fetch habits", slog.String("message", status.Message))
	}
	logger.LogAttrs(ctx, slog.LevelInfo, "fetched habits", slog.Int("count", len(habits)))

	if err = a.Logout(ctx); err != nil {
		return errors.Wrap(err, "logout")
	}
	if a.View() != app.ViewLogin {
		return errors.Wrap(ErrFlowFailed, "view after logout", slog.String("view", a.View().String()))
	}
	return nil
}
