// Package habits reads the protected sample resource of the API.
package habits

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"github.com/myrjola/spasession/internal/apiclient"
	"github.com/myrjola/spasession/internal/errors"
	"github.com/myrjola/spasession/internal/models"
	"log/slog"
	"net/http"
)

type Client struct {
	api  *apiclient.Client
	path string
}

func NewClient(api *apiclient.Client, path string) *Client {
	return &Client{api: api, path: path}
}

// PayloadError is returned when a successful response carries a body that isn't a habit list.
type PayloadError struct {
	StatusCode int
	Err        error
}

func (e *PayloadError) Error() string {
	return fmt.Sprintf("unexpected habits payload (HTTP %d): %v", e.StatusCode, e.Err)
}

func (e *PayloadError) Unwrap() error {
	return e.Err
}

// List fetches the habits of the logged-in user. Both a bare JSON array and a Laravel resource collection
// {"data": [...]} are accepted. A 401 or 419 also ends the local session through the client's auth-failure
// interceptor.
func (c *Client) List(ctx context.Context) ([]models.Habit, error) {
	resp, err := c.api.Get(ctx, c.path)
	if err != nil {
		return nil, errors.Wrap(err, "list habits", slog.String("path", c.path))
	}
	habits, err := decodeHabits(resp.Body)
	if err != nil {
		return nil, errors.Wrap(&PayloadError{StatusCode: resp.StatusCode, Err: err}, "list habits",
			slog.String("path", c.path))
	}
	if habits == nil {
		habits = []models.Habit{}
	}
	return habits, nil
}

func decodeHabits(body []byte) ([]models.Habit, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, nil
	}
	if body[0] == '{' {
		var envelope struct {
			Data *[]models.Habit `json:"data"`
		}
		if err := json.Unmarshal(body, &envelope); err != nil {
			return nil, errors.Wrap(err, "decode habits envelope")
		}
		if envelope.Data == nil {
			return nil, errors.New("habits envelope without data")
		}
		return *envelope.Data, nil
	}
	var habits []models.Habit
	if err := json.Unmarshal(body, &habits); err != nil {
		return nil, errors.Wrap(err, "decode habits")
	}
	return habits, nil
}

// Status is the dashboard feedback for one fetch.
type Status struct {
	OK bool
	// Code is the HTTP status, 0 when no response was received. A 2xx Code with OK false means the body couldn't
	// be read as habits.
	Code    int
	Message string
}

// Summarize turns the outcome of List into dashboard feedback.
func Summarize(habits []models.Habit, err error) Status {
	if err == nil {
		return Status{
			OK:      true,
			Code:    http.StatusOK,
			Message: fmt.Sprintf("Loaded %d habits (HTTP 200).", len(habits)),
		}
	}
	var payloadErr *PayloadError
	if errors.As(err, &payloadErr) {
		return Status{
			OK:      false,
			Code:    payloadErr.StatusCode,
			Message: fmt.Sprintf("Unexpected habits payload (HTTP %d).", payloadErr.StatusCode),
		}
	}
	if code, ok := apiclient.StatusCodeOf(err); ok {
		return Status{
			OK:      false,
			Code:    code,
			Message: fmt.Sprintf("Failed to load habits (HTTP %d).", code),
		}
	}
	return Status{
		OK:      false,
		Code:    0,
		Message: "Failed to load habits: " + err.Error(),
	}
}
