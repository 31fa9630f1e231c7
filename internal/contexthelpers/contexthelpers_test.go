package contexthelpers_test

import (
	"github.com/myrjola/spasession/internal/contexthelpers"
	"github.com/myrjola/spasession/internal/models"
	"github.com/stretchr/testify/require"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAuthenticateContext(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/user", nil)
	require.False(t, contexthelpers.IsAuthenticated(r.Context()))
	_, ok := contexthelpers.AuthenticatedUser(r.Context())
	require.False(t, ok)

	r = contexthelpers.AuthenticateContext(r, models.User{ID: 1, Name: "Test", Email: "", PasswordHash: nil})
	require.True(t, contexthelpers.IsAuthenticated(r.Context()))
	user, ok := contexthelpers.AuthenticatedUser(r.Context())
	require.True(t, ok)
	require.Equal(t, 1, user.ID)
}
