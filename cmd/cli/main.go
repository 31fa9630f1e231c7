package main

import (
	"context"
	"errors"
	"fmt"
	"github.com/joho/godotenv"
	"github.com/myrjola/spasession/cmd/cli/session"
	"github.com/spf13/cobra"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
)

func init() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	rootCmd.AddGroup(session.Group)
	rootCmd.AddCommand(session.Login, session.WhoAmI, session.Habits, session.Dashboard)
	session.AddCredentialFlags(rootCmd)
}

var rootCmd = &cobra.Command{
	Use:           "spasession",
	Short:         "Session-aware client for Sanctum-style JSON APIs",
	Long:          `Logs in to a cookie-session API with CSRF protection and shows the protected resources.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func main() {
	Execute()
}
