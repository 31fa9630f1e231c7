package repositories

import "github.com/myrjola/spasession/internal/errors"

// ErrNotFound is returned when a queried record doesn't exist.
var ErrNotFound = errors.NewSentinel("not found")
