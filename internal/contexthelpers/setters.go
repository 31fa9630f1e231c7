package contexthelpers

import (
	"context"
	"github.com/myrjola/spasession/internal/models"
	"net/http"
)

func AuthenticateContext(r *http.Request, user models.User) *http.Request {
	ctx := r.Context()
	ctx = context.WithValue(ctx, isAuthenticatedContextKey, true)
	ctx = context.WithValue(ctx, authenticatedUserContextKey, user)
	return r.WithContext(ctx)
}
