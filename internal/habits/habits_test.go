package habits_test

import (
	"context"
	"encoding/json"
	"github.com/myrjola/spasession/internal/apiclient"
	"github.com/myrjola/spasession/internal/habits"
	"github.com/myrjola/spasession/internal/models"
	"github.com/myrjola/spasession/internal/testhelpers"
	"github.com/stretchr/testify/require"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newClient(t *testing.T, handler http.HandlerFunc) *habits.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	api, err := apiclient.New(apiclient.Config{BaseURL: srv.URL, Transport: nil, AllowInsecureCookies: true},
		testhelpers.NewLogger(io.Discard))
	require.NoError(t, err)
	return habits.NewClient(api, "/api/habits")
}

func TestList(t *testing.T) {
	want := []models.Habit{
		{ID: 1, UserID: 1, Name: "Read", Description: "20 pages"},
		{ID: 2, UserID: 1, Name: "Walk", Description: ""},
	}
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/habits", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(want)
	})

	got, err := client.List(context.Background())
	require.NoError(t, err)
	require.Equal(t, want, got)

	status := habits.Summarize(got, err)
	require.True(t, status.OK)
	require.Equal(t, http.StatusOK, status.Code)
	require.Equal(t, "Loaded 2 habits (HTTP 200).", status.Message)
}

func TestList_Empty(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("null"))
	})
	got, err := client.List(context.Background())
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Empty(t, got)
}

func TestList_DataEnvelope(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[{"id":1,"name":"Run"}]}`))
	})
	got, err := client.List(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "Run", got[0].Name)

	status := habits.Summarize(got, err)
	require.True(t, status.OK)
	require.Equal(t, "Loaded 1 habits (HTTP 200).", status.Message)
}

func TestSummarize_UnexpectedPayload(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "object without data", body: `{"items":[]}`},
		{name: "data not a list", body: `{"data":{"id":1}}`},
		{name: "not json", body: `<html></html>`},
		{name: "scalar", body: `42`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newClient(t, func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			})
			_, err := client.List(context.Background())
			var payloadErr *habits.PayloadError
			require.ErrorAs(t, err, &payloadErr)
			require.Equal(t, http.StatusOK, payloadErr.StatusCode)

			status := habits.Summarize(nil, err)
			require.False(t, status.OK)
			require.Equal(t, http.StatusOK, status.Code)
			require.Equal(t, "Unexpected habits payload (HTTP 200).", status.Message)
		})
	}
}

func TestSummarize_Failures(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	_, err := client.List(context.Background())
	status := habits.Summarize(nil, err)
	require.False(t, status.OK)
	require.Equal(t, http.StatusUnauthorized, status.Code)
	require.Equal(t, "Failed to load habits (HTTP 401).", status.Message)

	srv := httptest.NewServer(http.NotFoundHandler())
	baseURL := srv.URL
	srv.Close()
	api, err := apiclient.New(apiclient.Config{BaseURL: baseURL}, testhelpers.NewLogger(io.Discard))
	require.NoError(t, err)
	_, err = habits.NewClient(api, "/api/habits").List(context.Background())
	status = habits.Summarize(nil, err)
	require.False(t, status.OK)
	require.Zero(t, status.Code)
	require.Contains(t, status.Message, "Failed to load habits: ")
	require.NotEqual(t, "Failed to load habits (HTTP 401).", status.Message)
}
