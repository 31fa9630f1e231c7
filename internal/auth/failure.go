package auth

import (
	"context"
	"fmt"
	"github.com/myrjola/spasession/internal/apiclient"
	"github.com/myrjola/spasession/internal/csrf"
	"github.com/myrjola/spasession/internal/errors"
)

// ErrUnexpectedResponse is returned when a 2xx login response doesn't describe a user.
var ErrUnexpectedResponse = errors.NewSentinel("unexpected response")

// Failure classifies why a login attempt failed.
type Failure int

const (
	FailureNone Failure = iota
	FailureNotReady
	FailureInvalidCredentials
	FailureCSRF
	FailureValidation
	FailureServer
	FailureNetwork
	FailureUnexpectedResponse
)

func (f Failure) String() string {
	switch f {
	case FailureNone:
		return "none"
	case FailureNotReady:
		return "not_ready"
	case FailureInvalidCredentials:
		return "invalid_credentials"
	case FailureCSRF:
		return "csrf"
	case FailureValidation:
		return "validation"
	case FailureServer:
		return "server"
	case FailureNetwork:
		return "network"
	case FailureUnexpectedResponse:
		return "unexpected_response"
	default:
		return "unknown"
	}
}

// Message is the text shown to the user for the failure. status is the HTTP status when there was one.
func (f Failure) Message(status int, err error) string {
	switch f {
	case FailureNone:
		return "Signed in. Session established."
	case FailureNotReady:
		return "The security handshake hasn't run yet. Restart the session and try again."
	case FailureInvalidCredentials:
		return "Invalid email or password (HTTP 401)."
	case FailureCSRF:
		return "Session or CSRF token is missing or invalid (HTTP 419). Restart the session and try again."
	case FailureValidation:
		return "The submitted data is invalid (HTTP 422)."
	case FailureServer:
		return fmt.Sprintf("Server error (HTTP %d). Try again later.", status)
	case FailureNetwork:
		if err == nil {
			return "Network error."
		}
		return "Network error: " + rootCause(err).Error()
	case FailureUnexpectedResponse:
		if status == 0 {
			return "Unexpected server response."
		}
		return fmt.Sprintf("Unexpected server response (HTTP %d).", status)
	default:
		return "Login failed."
	}
}

// Classify maps an error from the login path to a Failure and the HTTP status behind it, 0 if none.
func Classify(err error) (Failure, int) {
	if err == nil {
		return FailureNone, 0
	}

	var (
		authErr       *apiclient.AuthError
		validationErr *apiclient.ValidationError
		serverErr     *apiclient.ServerError
		networkErr    *apiclient.NetworkError
	)
	switch {
	case errors.Is(err, csrf.ErrNotReady):
		return FailureNotReady, 0
	case errors.As(err, &authErr):
		if authErr.SessionExpired() {
			return FailureCSRF, authErr.StatusCode()
		}
		return FailureInvalidCredentials, authErr.StatusCode()
	case errors.As(err, &validationErr):
		return FailureValidation, validationErr.StatusCode()
	case errors.As(err, &serverErr):
		return FailureServer, serverErr.StatusCode()
	case errors.As(err, &networkErr),
		errors.Is(err, apiclient.ErrNoResponse),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return FailureNetwork, 0
	default:
		status, _ := apiclient.StatusCodeOf(err)
		return FailureUnexpectedResponse, status
	}
}

func rootCause(err error) error {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err
		}
		err = next
	}
}
