package auth_test

import (
	"context"
	"github.com/myrjola/spasession/internal/auth"
	"github.com/stretchr/testify/require"
	"net/http"
	"sync/atomic"
	"testing"
	"time"
)

func TestLoginForm(t *testing.T) {
	release := make(chan struct{})
	var attempts atomic.Int32
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) == 1 {
			<-release
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid credentials."})
			return
		}
		respondWithUser(w, r)
	})
	ctx := context.Background()
	require.NoError(t, env.bootstrapper.Init(ctx))
	form := auth.NewLoginForm(env.service)
	require.Equal(t, auth.FormIdle, form.State())

	type submission struct {
		result auth.Result
		err    error
	}
	first := make(chan submission, 1)
	go func() {
		result, err := form.Submit(ctx, auth.Credentials{Email: "test@example.com", Password: "wrong"})
		first <- submission{result: result, err: err}
	}()
	require.Eventually(t, func() bool { return form.State() == auth.FormSubmitting }, time.Second,
		5*time.Millisecond)

	_, err := form.Submit(ctx, auth.Credentials{Email: "test@example.com", Password: "password"})
	require.ErrorIs(t, err, auth.ErrSubmitInProgress)

	close(release)
	got := <-first
	require.NoError(t, got.err)
	require.Equal(t, auth.FailureInvalidCredentials, got.result.Failure)
	require.Equal(t, auth.FormFailed, form.State())
	require.Equal(t, auth.FailureInvalidCredentials.Message(http.StatusUnauthorized, nil), form.Message())
	require.Equal(t, int32(1), env.loginHits.Load())

	// A failed form can be submitted again.
	result, err := form.Submit(ctx, auth.Credentials{Email: "test@example.com", Password: "password"})
	require.NoError(t, err)
	require.True(t, result.Authenticated(), result.Message)
	require.Equal(t, auth.FormAuthenticated, form.State())
	require.True(t, env.store.Authenticated())
}
