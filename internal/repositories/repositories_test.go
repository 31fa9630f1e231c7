package repositories_test

import (
	"context"
	"github.com/myrjola/spasession/internal/models"
	"github.com/myrjola/spasession/internal/repositories"
	"github.com/myrjola/spasession/internal/sqlite"
	"github.com/myrjola/spasession/internal/testhelpers"
	"github.com/stretchr/testify/require"
	"io"
	"testing"
)

// newTestDB creates a new in-memory database for testing purposes.
func newTestDB(t *testing.T) *sqlite.Database {
	t.Helper()
	db, err := sqlite.NewDatabase(context.Background(), ":memory:", testhelpers.NewLogger(io.Discard))
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, db.Close())
	})
	return db
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewUserRepository(newTestDB(t), testhelpers.NewLogger(io.Discard))

	id, err := repo.Upsert(ctx, models.User{
		ID:           0,
		Name:         "Test",
		Email:        " Test@Example.com ",
		PasswordHash: []byte("hash"),
	})
	require.NoError(t, err)
	require.NotZero(t, id)

	user, err := repo.GetByEmail(ctx, "test@example.com")
	require.NoError(t, err)
	require.Equal(t, id, user.ID)
	require.Equal(t, "Test", user.Name)
	require.Equal(t, "test@example.com", user.Email)
	require.Equal(t, []byte("hash"), user.PasswordHash)

	// Upserting the same email updates the record in place.
	sameID, err := repo.Upsert(ctx, models.User{ID: 0, Name: "Renamed", Email: "TEST@example.com",
		PasswordHash: []byte("other")})
	require.NoError(t, err)
	require.Equal(t, id, sameID)
	user, err = repo.Get(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "Renamed", user.Name)
	require.Equal(t, []byte("other"), user.PasswordHash)

	_, err = repo.Get(ctx, id+1)
	require.ErrorIs(t, err, repositories.ErrNotFound)
	_, err = repo.GetByEmail(ctx, "nobody@example.com")
	require.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestHabitRepository(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	logger := testhelpers.NewLogger(io.Discard)
	users := repositories.NewUserRepository(db, logger)
	habits := repositories.NewHabitRepository(db, logger)

	userID, err := users.Upsert(ctx, models.User{ID: 0, Name: "Test", Email: "test@example.com",
		PasswordHash: []byte("hash")})
	require.NoError(t, err)

	got, err := habits.ListByUser(ctx, userID)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Empty(t, got)

	require.NoError(t, habits.ReplaceForUser(ctx, userID, []models.Habit{
		{ID: 0, UserID: 0, Name: "Read", Description: "20 pages"},
		{ID: 0, UserID: 0, Name: "Walk", Description: ""},
	}))
	require.NoError(t, habits.ReplaceForUser(ctx, userID, []models.Habit{
		{ID: 0, UserID: 0, Name: "Stretch", Description: "10 minutes"},
		{ID: 0, UserID: 0, Name: "Journal", Description: ""},
	}))

	got, err = habits.ListByUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "Stretch", got[0].Name)
	require.Equal(t, "10 minutes", got[0].Description)
	require.Equal(t, userID, got[0].UserID)
	require.Equal(t, "Journal", got[1].Name)

	err = habits.ReplaceForUser(ctx, userID+1, []models.Habit{{ID: 0, UserID: 0, Name: "Orphan", Description: ""}})
	require.Error(t, err, "habits must reference an existing user")
}
