// Package tui renders the session screens as huh forms.
package tui

import (
	"context"
	"github.com/charmbracelet/huh"
	"github.com/myrjola/spasession/internal/auth"
	"github.com/myrjola/spasession/internal/errors"
	"os"
	"strings"
)

// Action is what the user picked on the dashboard.
type Action string

const (
	ActionHabits Action = "habits"
	ActionWhoAmI Action = "whoami"
	ActionLogout Action = "logout"
	ActionQuit   Action = "quit"
)

var errRequired = errors.NewSentinel("required")

func required(s string) error {
	if strings.TrimSpace(s) == "" {
		return errRequired
	}
	return nil
}

// PromptCredentials asks for the login fields, prefilled with defaults.
func PromptCredentials(ctx context.Context, defaults auth.Credentials) (auth.Credentials, error) {
	creds := defaults
	form := huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title("Email").
			Placeholder("test@example.com").
			Validate(required).
			Value(&creds.Email),
		huh.NewInput().
			Title("Password").
			EchoMode(huh.EchoModePassword).
			Validate(required).
			Value(&creds.Password),
	))
	if err := form.RunWithContext(ctx); err != nil {
		return auth.Credentials{}, errors.Wrap(err, "credentials prompt")
	}
	return creds, nil
}

// PromptDashboardAction shows the dashboard menu greeting name.
func PromptDashboardAction(ctx context.Context, name string) (Action, error) {
	action := ActionHabits
	form := huh.NewForm(huh.NewGroup(
		huh.NewSelect[Action]().
			Title("Welcome, " + name).
			Options(
				huh.NewOption("Load habits", ActionHabits),
				huh.NewOption("Who am I?", ActionWhoAmI),
				huh.NewOption("Log out", ActionLogout),
				huh.NewOption("Quit", ActionQuit),
			).
			Value(&action),
	))
	if err := form.RunWithContext(ctx); err != nil {
		return "", errors.Wrap(err, "dashboard prompt")
	}
	return action, nil
}

// IsInteractive returns true if stdin is a terminal (not piped).
func IsInteractive() bool {
	fileInfo, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}
