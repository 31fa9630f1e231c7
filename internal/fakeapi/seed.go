package fakeapi

import (
	"context"
	"github.com/myrjola/spasession/internal/errors"
	"github.com/myrjola/spasession/internal/models"
	"golang.org/x/crypto/bcrypt"
	"log/slog"
)

var seedHabits = []models.Habit{
	{ID: 0, UserID: 0, Name: "Drink water", Description: "Eight glasses a day"},
	{ID: 0, UserID: 0, Name: "Read", Description: "20 pages before bed"},
	{ID: 0, UserID: 0, Name: "Walk", Description: "10 000 steps"},
}

// seed creates or resets the demo account and its habits.
func (s *Server) seed(ctx context.Context) error {
	if s.cfg.SeedEmail == "" {
		return nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(s.cfg.SeedPassword), s.cfg.BcryptCost)
	if err != nil {
		return errors.Wrap(err, "hash seed password")
	}
	var userID int
	if userID, err = s.users.Upsert(ctx, models.User{
		ID:           0,
		Name:         s.cfg.SeedName,
		Email:        s.cfg.SeedEmail,
		PasswordHash: hash,
	}); err != nil {
		return errors.Wrap(err, "upsert seed user")
	}
	if err = s.habits.ReplaceForUser(ctx, userID, seedHabits); err != nil {
		return errors.Wrap(err, "seed habits")
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, "seeded demo account",
		slog.String("email", s.cfg.SeedEmail), slog.Int("userID", userID))
	return nil
}
