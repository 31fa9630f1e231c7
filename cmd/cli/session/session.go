// Package session holds the cli commands that operate on an authenticated session.
package session

import (
	"context"
	"fmt"
	"github.com/myrjola/spasession/internal/apiclient"
	"github.com/myrjola/spasession/internal/app"
	"github.com/myrjola/spasession/internal/auth"
	"github.com/myrjola/spasession/internal/config"
	"github.com/myrjola/spasession/internal/errors"
	"github.com/myrjola/spasession/internal/logging"
	"github.com/myrjola/spasession/internal/models"
	"github.com/myrjola/spasession/internal/tui"
	"github.com/spf13/cobra"
	"io"
	"log/slog"
	"os"
)

var Group = &cobra.Group{
	ID:    "session",
	Title: "Session commands",
}

var (
	// ErrMissingCredentials is returned when no credentials are given and stdin can't be prompted.
	ErrMissingCredentials = errors.NewSentinel("email and password are required")
	// ErrLoginFailed is returned when the server didn't establish a session.
	ErrLoginFailed = errors.NewSentinel("login failed")
)

// AddCredentialFlags registers --email and --password on cmd for all subcommands.
func AddCredentialFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().String("email", "", "account email (default $SPASESSION_EMAIL)")
	cmd.PersistentFlags().String("password", "", "account password (default $SPASESSION_PASSWORD)")
}

var Login = &cobra.Command{
	Use:     "login",
	GroupID: "session",
	Short:   "Log in and report the outcome",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, closeApp, err := loggedIn(cmd)
		if err != nil {
			return err
		}
		defer closeApp()
		return nil
	},
}

var WhoAmI = &cobra.Command{
	Use:     "whoami",
	GroupID: "session",
	Short:   "Log in and show the account the server reports",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, closeApp, err := loggedIn(cmd)
		if err != nil {
			return err
		}
		defer closeApp()
		return whoAmI(cmd.Context(), cmd.OutOrStdout(), a)
	},
}

var Habits = &cobra.Command{
	Use:     "habits",
	GroupID: "session",
	Short:   "Log in and list the habits of the account",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, closeApp, err := loggedIn(cmd)
		if err != nil {
			return err
		}
		defer closeApp()
		return printHabits(cmd.Context(), cmd.OutOrStdout(), a)
	},
}

var Dashboard = &cobra.Command{
	Use:     "dashboard",
	GroupID: "session",
	Short:   "Interactive dashboard",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if !tui.IsInteractive() {
			return errors.New("dashboard needs an interactive terminal")
		}
		a, closeApp, err := loggedIn(cmd)
		if err != nil {
			return err
		}
		defer closeApp()
		return runDashboard(cmd.Context(), cmd.OutOrStdout(), a)
	},
}

// loggedIn starts a session and logs in with the flag, environment or prompted credentials.
func loggedIn(cmd *cobra.Command) (*app.App, func(), error) {
	ctx := cmd.Context()
	cfg, err := config.Load(os.LookupEnv)
	if err != nil {
		return nil, nil, errors.Wrap(err, "load config")
	}
	logger := logging.NewLogger(cmd.ErrOrStderr(), logging.ParseLevel(cfg.LogLevel))

	creds, err := credentials(cmd, cfg)
	if err != nil {
		return nil, nil, err
	}

	a, err := app.New(cfg, logger)
	if err != nil {
		return nil, nil, errors.Wrap(err, "new app")
	}
	a.Start(ctx)

	result, err := a.Login(ctx, creds)
	if err != nil {
		a.Close()
		return nil, nil, errors.Wrap(err, "login")
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), result.Message)
	for field, messages := range result.Fields {
		for _, msg := range messages {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "  %s: %s\n", field, msg)
		}
	}
	if !result.Authenticated() {
		a.Close()
		return nil, nil, errors.Wrap(ErrLoginFailed, "login", slog.String("failure", result.Failure.String()))
	}
	return a, a.Close, nil
}

func credentials(cmd *cobra.Command, cfg config.Client) (auth.Credentials, error) {
	creds := auth.Credentials{Email: cfg.Email, Password: cfg.Password}
	if email, _ := cmd.Flags().GetString("email"); email != "" {
		creds.Email = email
	}
	if password, _ := cmd.Flags().GetString("password"); password != "" {
		creds.Password = password
	}
	if creds.Email != "" && creds.Password != "" {
		return creds, nil
	}
	if !tui.IsInteractive() {
		return auth.Credentials{}, ErrMissingCredentials
	}
	prompted, err := tui.PromptCredentials(cmd.Context(), creds)
	if err != nil {
		return auth.Credentials{}, errors.Wrap(err, "prompt credentials")
	}
	return prompted, nil
}

func whoAmI(ctx context.Context, out io.Writer, a *app.App) error {
	user, ok, err := a.Identify(ctx)
	if err != nil {
		return errors.Wrap(err, "identify")
	}
	if !ok {
		_, _ = fmt.Fprintln(out, "Not signed in.")
		return nil
	}
	printUser(out, user)
	return nil
}

func printUser(out io.Writer, user models.User) {
	_, _ = fmt.Fprintf(out, "%s <%s> (id %d)\n", user.DisplayName(), user.Email, user.ID)
}

func printHabits(ctx context.Context, out io.Writer, a *app.App) error {
	list, status := a.FetchHabits(ctx)
	_, _ = fmt.Fprintln(out, status.Message)
	if !status.OK {
		return errors.New("fetch habits", slog.Int("status", status.Code))
	}
	for _, habit := range list {
		if habit.Description == "" {
			_, _ = fmt.Fprintf(out, "- %s\n", habit.Name)
			continue
		}
		_, _ = fmt.Fprintf(out, "- %s: %s\n", habit.Name, habit.Description)
	}
	return nil
}

func runDashboard(ctx context.Context, out io.Writer, a *app.App) error {
	for a.View() == app.ViewDashboard {
		user, _ := a.User()
		action, err := tui.PromptDashboardAction(ctx, user.DisplayName())
		if err != nil {
			return errors.Wrap(err, "dashboard")
		}
		switch action {
		case tui.ActionHabits:
			// A failed fetch is already reported and may have ended the session.
			_ = printHabits(ctx, out, a)
		case tui.ActionWhoAmI:
			if err = whoAmI(ctx, out, a); err != nil {
				return err
			}
		case tui.ActionLogout:
			if err = a.Logout(ctx); err != nil {
				_, _ = fmt.Fprintln(out, logoutNotice(err))
			}
		case tui.ActionQuit:
			return nil
		}
	}
	_, _ = fmt.Fprintln(out, "Signed out.")
	return nil
}

// logoutNotice explains a failed server logout. The local session is gone either way.
func logoutNotice(err error) string {
	if code, ok := apiclient.StatusCodeOf(err); ok {
		return fmt.Sprintf("Signed out. The server session had already ended (HTTP %d).", code)
	}
	var networkErr *apiclient.NetworkError
	if errors.As(err, &networkErr) {
		return "Signed out locally; the server could not be reached."
	}
	return "Signed out locally; server logout failed: " + err.Error()
}
