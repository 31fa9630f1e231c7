package apiclient

import (
	"encoding/json"
	"fmt"
	"github.com/myrjola/spasession/internal/errors"
	"net/http"
	"net/url"
)

// StatusSessionExpired is the status a Sanctum API answers with when the session or CSRF token is invalid.
const StatusSessionExpired = 419

var (
	// ErrNoResponse is returned when an interceptor discards a network error without supplying a response.
	ErrNoResponse = errors.NewSentinel("no response")
	// ErrInvalidBaseURL is returned by New when the base URL is not absolute.
	ErrInvalidBaseURL = errors.NewSentinel("base URL must be absolute")
)

// HTTPError is implemented by every error that carries a non-2xx response.
type HTTPError interface {
	error
	StatusCode() int
	RequestURL() *url.URL
	Body() []byte
}

// StatusError carries the response of a failed request.
type StatusError struct {
	Response *Response
	// Message is the "message" field of a JSON error body, if there was one.
	Message string
}

func (e StatusError) StatusCode() int {
	if e.Response == nil {
		return 0
	}
	return e.Response.StatusCode
}

// RequestURL returns the URL that produced the response, after redirects. It is nil when unknown.
func (e StatusError) RequestURL() *url.URL {
	if e.Response == nil {
		return nil
	}
	return e.Response.URL
}

func (e StatusError) Body() []byte {
	if e.Response == nil {
		return nil
	}
	return e.Response.Body
}

func (e StatusError) Error() string {
	var (
		method = ""
		target = "<unknown>"
	)
	if e.Response != nil {
		method = e.Response.Method
		if e.Response.URL != nil {
			target = e.Response.URL.Path
		}
	}
	msg := fmt.Sprintf("%s %s: HTTP %d", method, target, e.StatusCode())
	if e.Message != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Message)
	}
	return msg
}

// AuthError is returned for 401 Unauthorized and 419 session or CSRF token invalid.
type AuthError struct {
	StatusError
}

func (e *AuthError) Error() string {
	return "authentication failed: " + e.StatusError.Error()
}

// SessionExpired reports whether the server rejected the session or CSRF token rather than the credentials.
func (e *AuthError) SessionExpired() bool {
	return e.StatusCode() == StatusSessionExpired
}

// ValidationError is returned for 422 Unprocessable Entity.
type ValidationError struct {
	StatusError
	// Fields maps input names to their validation messages.
	Fields map[string][]string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.StatusError.Error()
}

// ServerError is returned for any other non-2xx status.
type ServerError struct {
	StatusError
}

func (e *ServerError) Error() string {
	return "server error: " + e.StatusError.Error()
}

// NetworkError is returned when no response was received.
type NetworkError struct {
	Method string
	URL    *url.URL
	Err    error
}

func (e *NetworkError) Error() string {
	target := "<unknown>"
	if e.URL != nil {
		target = e.URL.String()
	}
	return fmt.Sprintf("network error: %s %s: %v", e.Method, target, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

type errorBody struct {
	Message string              `json:"message"`
	Error   string              `json:"error"`
	Errors  map[string][]string `json:"errors"`
}

// newStatusError classifies a non-2xx response into the error taxonomy.
func newStatusError(resp *Response) error {
	var body errorBody
	// Error bodies aren't guaranteed to be JSON.
	_ = json.Unmarshal(resp.Body, &body)
	message := body.Message
	if message == "" {
		message = body.Error
	}
	base := StatusError{Response: resp, Message: message}

	switch resp.StatusCode {
	case http.StatusUnauthorized, StatusSessionExpired:
		return &AuthError{StatusError: base}
	case http.StatusUnprocessableEntity:
		return &ValidationError{StatusError: base, Fields: body.Errors}
	default:
		return &ServerError{StatusError: base}
	}
}

// StatusCodeOf returns the HTTP status carried by err, if any.
func StatusCodeOf(err error) (int, bool) {
	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode(), true
	}
	return 0, false
}
