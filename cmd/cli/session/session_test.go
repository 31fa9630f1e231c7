package session

import (
	"github.com/myrjola/spasession/internal/apiclient"
	"github.com/myrjola/spasession/internal/errors"
	"github.com/stretchr/testify/require"
	"net/http"
	"net/url"
	"testing"
)

func TestLogoutNotice(t *testing.T) {
	logoutURL, err := url.Parse("http://localhost:8043/api/logout")
	require.NoError(t, err)
	expired := &apiclient.AuthError{StatusError: apiclient.StatusError{
		Response: &apiclient.Response{
			Method:     http.MethodPost,
			StatusCode: http.StatusUnauthorized,
			Header:     http.Header{},
			Body:       []byte(`{"message":"Unauthenticated."}`),
			URL:        logoutURL,
		},
		Message: "Unauthenticated.",
	}}
	unreachable := &apiclient.NetworkError{Method: http.MethodPost, URL: logoutURL, Err: errors.New("connection refused")}

	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "expired server session",
			err:  errors.Wrap(expired, "post logout"),
			want: "Signed out. The server session had already ended (HTTP 401).",
		},
		{
			name: "server unreachable",
			err:  errors.Wrap(unreachable, "post logout"),
			want: "Signed out locally; the server could not be reached.",
		},
		{
			name: "other failure",
			err:  errors.New("csrf bootstrap not started"),
			want: "Signed out locally; server logout failed: csrf bootstrap not started",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, logoutNotice(tt.err))
		})
	}
}
