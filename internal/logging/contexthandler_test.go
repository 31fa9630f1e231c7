package logging_test

import (
	"bytes"
	"context"
	"github.com/myrjola/spasession/internal/logging"
	"github.com/stretchr/testify/require"
	"log/slog"
	"testing"
)

func TestContextHandler(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewLogger(&buf, slog.LevelDebug)

	ctx := logging.WithAttrs(context.Background(), slog.String("request_id", "abc"))
	sibling := logging.WithAttrs(ctx, slog.String("path", "/api/user"))
	other := logging.WithAttrs(ctx, slog.String("path", "/api/habits"))

	logger.InfoContext(sibling, "request sent")
	require.Contains(t, buf.String(), "request_id=abc")
	require.Contains(t, buf.String(), "path=/api/user")

	buf.Reset()
	logger.InfoContext(other, "request sent")
	require.Contains(t, buf.String(), "path=/api/habits")
	require.NotContains(t, buf.String(), "/api/user")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{in: "debug", want: slog.LevelDebug},
		{in: "INFO", want: slog.LevelInfo},
		{in: "warn", want: slog.LevelWarn},
		{in: "error", want: slog.LevelError},
		{in: "", want: slog.LevelInfo},
		{in: "verbose", want: slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			require.Equal(t, tt.want, logging.ParseLevel(tt.in))
		})
	}
}
