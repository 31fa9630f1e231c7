package repositories

import (
	"context"
	"github.com/myrjola/spasession/internal/errors"
	"github.com/myrjola/spasession/internal/models"
	"github.com/myrjola/spasession/internal/sqlite"
	"log/slog"
)

type HabitRepository struct {
	db     *sqlite.Database
	logger *slog.Logger
}

func NewHabitRepository(db *sqlite.Database, logger *slog.Logger) *HabitRepository {
	return &HabitRepository{
		db:     db,
		logger: logger.With("source", "HabitRepository"),
	}
}

// ListByUser returns the habits of the user ordered by id. It never returns a nil slice.
func (r *HabitRepository) ListByUser(ctx context.Context, userID int) ([]models.Habit, error) {
	habits := []models.Habit{}
	stmt := `SELECT id, user_id, name, description FROM habits WHERE user_id = ? ORDER BY id`
	if err := r.db.ReadOnly.SelectContext(ctx, &habits, stmt, userID); err != nil {
		return nil, errors.Wrap(err, "select habits", slog.Int("userID", userID))
	}
	return habits, nil
}

// ReplaceForUser replaces every habit of the user, keeping the order of habits.
func (r *HabitRepository) ReplaceForUser(ctx context.Context, userID int, habits []models.Habit) error {
	tx, err := r.db.ReadWrite.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin transaction")
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM habits WHERE user_id = ?`, userID); err != nil {
		return errors.Wrap(err, "delete habits", slog.Int("userID", userID))
	}
	for _, habit := range habits {
		if _, err = tx.ExecContext(ctx, `INSERT INTO habits (user_id, name, description) VALUES (?, ?, ?)`,
			userID, habit.Name, habit.Description); err != nil {
			return errors.Wrap(err, "insert habit", slog.String("name", habit.Name))
		}
	}
	if err = tx.Commit(); err != nil {
		return errors.Wrap(err, "commit transaction")
	}
	return nil
}
