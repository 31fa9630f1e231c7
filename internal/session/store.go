// Package session holds who, if anyone, is logged in for one API client.
package session

import (
	"context"
	"github.com/myrjola/spasession/internal/models"
	"log/slog"
	"sync"
)

// Cause explains why the session changed.
type Cause string

const (
	CauseLogin       Cause = "login"
	CauseIdentity    Cause = "identity"
	CauseLogout      Cause = "logout"
	CauseAuthFailure Cause = "auth_failure"
)

// Event is delivered to subscribers after every change.
type Event struct {
	// User is nil when the session was cleared.
	User  *models.User
	Cause Cause
}

// Store is the in-memory session: a user or nothing. It only changes through Establish and the Clear methods.
//
// The user is advisory: it reflects the last successful login or identity check, not a continuously verified
// server session.
type Store struct {
	logger *slog.Logger

	mu          sync.RWMutex
	user        *models.User
	subscribers map[int]func(Event)
	nextID      int
}

func NewStore(logger *slog.Logger) *Store {
	return &Store{
		logger:      logger,
		mu:          sync.RWMutex{},
		user:        nil,
		subscribers: map[int]func(Event){},
		nextID:      0,
	}
}

// Establish records user as logged in.
func (s *Store) Establish(ctx context.Context, user models.User, cause Cause) {
	s.mu.Lock()
	s.user = &user
	s.mu.Unlock()

	s.logger.LogAttrs(ctx, slog.LevelInfo, "session established",
		slog.Int("userID", user.ID), slog.String("cause", string(cause)))
	userCopy := user
	s.publish(Event{User: &userCopy, Cause: cause})
}

// Clear logs the user out locally. Clearing an empty session still notifies subscribers.
func (s *Store) Clear(ctx context.Context, cause Cause) {
	s.mu.Lock()
	hadUser := s.user != nil
	s.user = nil
	s.mu.Unlock()
	s.cleared(ctx, hadUser, cause)
}

// ClearIfAuthenticated is Clear for an existing session only: an empty session stays quiet. It reports whether a
// user was logged out.
func (s *Store) ClearIfAuthenticated(ctx context.Context, cause Cause) bool {
	s.mu.Lock()
	if s.user == nil {
		s.mu.Unlock()
		return false
	}
	s.user = nil
	s.mu.Unlock()
	s.cleared(ctx, true, cause)
	return true
}

func (s *Store) cleared(ctx context.Context, hadUser bool, cause Cause) {
	s.logger.LogAttrs(ctx, slog.LevelInfo, "session cleared",
		slog.Bool("hadUser", hadUser), slog.String("cause", string(cause)))
	s.publish(Event{User: nil, Cause: cause})
}

// User returns the logged-in user.
func (s *Store) User() (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return models.User{}, false //nolint:exhaustruct // zero value
	}
	return *s.user, true
}

func (s *Store) Authenticated() bool {
	_, ok := s.User()
	return ok
}

// Subscribe calls fn after every change until the returned function is called. fn runs on the goroutine that made
// the change, after the store has been updated.
func (s *Store) Subscribe(fn func(Event)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := s.nextID
	s.subscribers[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subscribers, id)
	}
}

func (s *Store) publish(event Event) {
	s.mu.RLock()
	subscribers := make([]func(Event), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subscribers = append(subscribers, fn)
	}
	s.mu.RUnlock()

	for _, fn := range subscribers {
		fn(event)
	}
}
