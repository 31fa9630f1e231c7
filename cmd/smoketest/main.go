package main

import (
	"context"
	"github.com/joho/godotenv"
	"github.com/myrjola/spasession/internal/auth"
	"github.com/myrjola/spasession/internal/config"
	"github.com/myrjola/spasession/internal/e2etest"
	"github.com/myrjola/spasession/internal/errors"
	"github.com/myrjola/spasession/internal/logging"
	"io/fs"
	"log/slog"
	"os"
	"time"
)

func main() {
	logger := logging.NewLogger(os.Stdout, slog.LevelDebug)
	ctx := context.Background()

	if len(os.Args) != 2 { //nolint:mnd // we expect only the base URL to be passed as argument.
		logger.LogAttrs(ctx, slog.LevelError, "usage: smoketest <base-url>")
		os.Exit(1)
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.LogAttrs(ctx, slog.LevelError, "failure loading .env", errors.SlogError(err))
		os.Exit(1)
	}

	baseURL := os.Args[1]
	ctx = logging.WithAttrs(ctx, slog.String("base_url", baseURL))
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second) //nolint:mnd // 10 seconds
	defer cancel()

	cfg, err := config.Load(os.LookupEnv)
	if err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error loading config", errors.SlogError(err))
		os.Exit(1)
	}
	cfg.BaseURL = baseURL
	creds := auth.Credentials{Email: cfg.Email, Password: cfg.Password}
	if creds.Email == "" {
		creds = auth.Credentials{Email: "test@example.com", Password: "password"}
	}

	if err = e2etest.RunSessionFlow(ctx, cfg, creds, logger); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error testing session flow", errors.SlogError(err))
		cancel()
		os.Exit(1)
	}

	logger.LogAttrs(ctx, slog.LevelInfo, "Smoke test successful 🙌")
}
