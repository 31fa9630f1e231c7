package csrf_test

import (
	"context"
	"github.com/myrjola/spasession/internal/apiclient"
	"github.com/myrjola/spasession/internal/csrf"
	"github.com/myrjola/spasession/internal/testhelpers"
	"github.com/stretchr/testify/require"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// rawToken contains characters that must survive URL-decoding: '+', '/' and '='.
const rawToken = "eyJpdiI6Ik1a+b/c=="

func newBootstrapper(t *testing.T, handler http.Handler) (*csrf.Bootstrapper, *apiclient.Client) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	logger := testhelpers.NewLogger(io.Discard)
	client, err := apiclient.New(apiclient.Config{BaseURL: srv.URL, AllowInsecureCookies: true}, logger)
	require.NoError(t, err)
	return csrf.New(client, csrf.DefaultConfig(), logger), client
}

func setCSRFCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:  "XSRF-TOKEN",
		Value: url.QueryEscape(rawToken),
		Path:  "/",
	})
	w.WriteHeader(http.StatusNoContent)
}

func TestInit_InstallsDecodedHeader(t *testing.T) {
	var sentHeader atomic.Value
	mux := http.NewServeMux()
	mux.HandleFunc("GET /sanctum/csrf-cookie", func(w http.ResponseWriter, _ *http.Request) {
		setCSRFCookie(w)
	})
	mux.HandleFunc("POST /api/login", func(w http.ResponseWriter, r *http.Request) {
		sentHeader.Store(r.Header.Get("X-XSRF-TOKEN"))
		w.WriteHeader(http.StatusOK)
	})
	bootstrapper, client := newBootstrapper(t, mux)
	ctx := context.Background()

	require.Equal(t, csrf.StateIdle, bootstrapper.State())
	require.NoError(t, bootstrapper.Init(ctx))
	require.Equal(t, csrf.StateReady, bootstrapper.State())
	require.Equal(t, rawToken, bootstrapper.Token())
	require.Equal(t, rawToken, client.Header("X-XSRF-TOKEN"))

	_, err := client.Post(ctx, "/api/login", map[string]string{"email": "test@example.com"})
	require.NoError(t, err)
	require.Equal(t, rawToken, sentHeader.Load())
}

func TestInit_Idempotent(t *testing.T) {
	var (
		hits    atomic.Int32
		release = make(chan struct{})
	)
	bootstrapper, _ := newBootstrapper(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		<-release
		setCSRFCookie(w)
	}))
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 3)
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- bootstrapper.Init(ctx)
		}()
	}
	require.Eventually(t, func() bool { return hits.Load() == 1 }, time.Second, 5*time.Millisecond)
	close(release)
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	require.NoError(t, bootstrapper.Init(ctx))
	require.Equal(t, int32(1), hits.Load())
}

func TestWait(t *testing.T) {
	release := make(chan struct{})
	bootstrapper, _ := newBootstrapper(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		<-release
		setCSRFCookie(w)
	}))
	ctx := context.Background()

	require.ErrorIs(t, bootstrapper.Wait(ctx), csrf.ErrNotReady)

	go func() {
		_ = bootstrapper.Init(ctx)
	}()
	require.Eventually(t, func() bool { return bootstrapper.State() == csrf.StateRunning }, time.Second,
		5*time.Millisecond)

	shortCtx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	require.ErrorIs(t, bootstrapper.Wait(shortCtx), context.DeadlineExceeded)

	close(release)
	require.NoError(t, bootstrapper.Wait(ctx))
	<-bootstrapper.Done()
	require.Equal(t, csrf.StateReady, bootstrapper.State())
}

func TestInit_CookieMissing(t *testing.T) {
	bootstrapper, client := newBootstrapper(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	ctx := context.Background()

	err := bootstrapper.Init(ctx)
	require.ErrorIs(t, err, csrf.ErrCookieMissing)
	require.Equal(t, csrf.StateFailed, bootstrapper.State())
	require.Empty(t, client.Header("X-XSRF-TOKEN"))

	// The handshake is over, requests may go out and fail on the server.
	require.NoError(t, bootstrapper.Wait(ctx))
	require.ErrorIs(t, bootstrapper.Init(ctx), csrf.ErrCookieMissing)
}

func TestInit_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	baseURL := srv.URL
	srv.Close()
	logger := testhelpers.NewLogger(io.Discard)
	client, err := apiclient.New(apiclient.Config{BaseURL: baseURL}, logger)
	require.NoError(t, err)
	bootstrapper := csrf.New(client, csrf.DefaultConfig(), logger)

	err = bootstrapper.Init(context.Background())
	var netErr *apiclient.NetworkError
	require.ErrorAs(t, err, &netErr)
	require.Equal(t, csrf.StateFailed, bootstrapper.State())
	require.NoError(t, bootstrapper.Wait(context.Background()))
	require.Empty(t, bootstrapper.Token())
}
