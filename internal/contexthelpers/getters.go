package contexthelpers

import (
	"context"
	"github.com/myrjola/spasession/internal/models"
)

func IsAuthenticated(ctx context.Context) bool {
	isAuthenticated, ok := ctx.Value(isAuthenticatedContextKey).(bool)
	if !ok {
		return false
	}

	return isAuthenticated
}

// AuthenticatedUser returns the user stored by AuthenticateContext.
func AuthenticatedUser(ctx context.Context) (models.User, bool) {
	user, ok := ctx.Value(authenticatedUserContextKey).(models.User)
	return user, ok
}
