package repositories

import (
	"context"
	"database/sql"
	"github.com/myrjola/spasession/internal/errors"
	"github.com/myrjola/spasession/internal/models"
	"github.com/myrjola/spasession/internal/sqlite"
	"log/slog"
	"strings"
)

type UserRepository struct {
	db     *sqlite.Database
	logger *slog.Logger
}

func NewUserRepository(db *sqlite.Database, logger *slog.Logger) *UserRepository {
	return &UserRepository{
		db:     db,
		logger: logger.With("source", "UserRepository"),
	}
}

// Get returns the user with id or ErrNotFound.
func (r *UserRepository) Get(ctx context.Context, id int) (models.User, error) {
	var user models.User
	stmt := `SELECT id, name, email, password_hash FROM users WHERE id = ?`
	if err := r.db.ReadOnly.GetContext(ctx, &user, stmt, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, errors.Wrap(ErrNotFound, "get user", slog.Int("id", id))
		}
		return models.User{}, errors.Wrap(err, "get user", slog.Int("id", id))
	}
	return user, nil
}

// GetByEmail looks the user up by case-insensitive email, returning ErrNotFound when there is none.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User
	stmt := `SELECT id, name, email, password_hash FROM users WHERE email = ?`
	if err := r.db.ReadOnly.GetContext(ctx, &user, stmt, normalizeEmail(email)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, errors.Wrap(ErrNotFound, "get user by email")
		}
		return models.User{}, errors.Wrap(err, "get user by email")
	}
	return user, nil
}

// Upsert creates the user or updates the name and password of the user with the same email. It returns the id.
func (r *UserRepository) Upsert(ctx context.Context, user models.User) (int, error) {
	var id int
	stmt := `INSERT INTO users (name, email, password_hash) VALUES (?, ?, ?)
ON CONFLICT (email) DO UPDATE SET name = excluded.name, password_hash = excluded.password_hash
RETURNING id`
	if err := r.db.ReadWrite.GetContext(ctx, &id, stmt, user.Name, normalizeEmail(user.Email),
		user.PasswordHash); err != nil {
		return 0, errors.Wrap(err, "upsert user")
	}
	r.logger.LogAttrs(ctx, slog.LevelDebug, "upserted user", slog.Int("id", id))
	return id, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
