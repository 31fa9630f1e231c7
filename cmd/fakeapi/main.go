package main

import (
	"context"
	"github.com/joho/godotenv"
	"github.com/myrjola/spasession/internal/errors"
	"github.com/myrjola/spasession/internal/fakeapi"
	"github.com/myrjola/spasession/internal/logging"
	"io/fs"
	"log/slog"
	"os"
)

func main() {
	logger := logging.NewLogger(os.Stdout, logging.ParseLevel(os.Getenv("FAKEAPI_LOG_LEVEL")))
	ctx := context.Background()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.LogAttrs(ctx, slog.LevelError, "failure loading .env", errors.SlogError(err))
		os.Exit(1)
	}

	if err := fakeapi.Run(ctx, logger, os.LookupEnv); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "failure starting application", errors.SlogError(err))
		os.Exit(1)
	}
}
