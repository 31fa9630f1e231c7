package e2etest

import (
	"context"
	"github.com/myrjola/spasession/internal/errors"
	"net/http"
	"time"
)

// ErrNotReady is returned by WaitForReady when the endpoint didn't answer in time.
var ErrNotReady = errors.NewSentinel("timeout waiting for endpoint to be ready")

// WaitForReady calls the specified endpoint until it gets a HTTP 200 Success
// response or until the context is cancelled or the 1-second timeout is reached.
func WaitForReady(ctx context.Context, endpoint string) error {
	timeout := 1 * time.Second
	client := http.Client{} //nolint:exhaustruct // zero value is fine for probing.
	startTime := time.Now()
	var (
		err  error
		req  *http.Request
		resp *http.Response
	)
	for {
		if req, err = http.NewRequestWithContext(
			ctx,
			http.MethodGet,
			endpoint,
			nil,
		); err != nil {
			return errors.Wrap(err, "create request")
		}

		if resp, err = client.Do(req); err == nil {
			ok := resp.StatusCode == http.StatusOK
			if err = resp.Body.Close(); err != nil {
				return errors.Wrap(err, "close response body")
			}
			if ok {
				return nil
			}
		}
		select {
		case <-ctx.Done():
			return errors.Wrap(ctx.Err(), "wait for ready")
		default:
			if time.Since(startTime) >= timeout {
				return ErrNotReady
			}
			time.Sleep(50 * time.Millisecond) //nolint:mnd // polling interval
		}
	}
}
