// Package auth owns the login session: one token, loaded from the local
// store, handed to the API client and dropped on expiry or a 401.
package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"lms-client/internal/model"
	"lms-client/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
)

// Session is safe for concurrent use.
type Session struct {
	mu      sync.RWMutex
	current *model.StoredSession
	repo    repository.SessionRepository
	now     func() time.Time
	logger  zerolog.Logger
}

// NewSession creates an empty session backed by repo.
func NewSession(repo repository.SessionRepository, logger zerolog.Logger) *Session {
	return &Session{
		repo:   repo,
		now:    time.Now,
		logger: logger.With().Str("component", "session").Logger(),
	}
}

// Restore loads the stored login. An expired stored token is cleared and the
// session stays logged out.
func (s *Session) Restore(ctx context.Context) error {
	stored, err := s.repo.Load(ctx)
	if errors.Is(err, model.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	if s.expired(stored) {
		s.logger.Info().Str("user_id", stored.User.ID).Msg("stored session expired")
		return s.repo.Clear(ctx)
	}

	s.mu.Lock()
	s.current = stored
	s.mu.Unlock()

	s.logger.Debug().Str("user_id", stored.User.ID).Msg("session restored")
	return nil
}

// Start records a successful login and persists it.
func (s *Session) Start(ctx context.Context, login *model.LoginResponse) error {
	if login.Token == "" {
		return errors.New("login response carried no token")
	}

	stored := &model.StoredSession{
		Token: login.Token,
		User:  login.User,
	}
	if exp, ok := TokenExpiry(login.Token); ok {
		stored.ExpiresAt = exp
	}

	if err := s.repo.Save(ctx, stored); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}

	s.mu.Lock()
	s.current = stored
	s.mu.Unlock()

	s.logger.Info().
		Str("user_id", stored.User.ID).
		Str("role", stored.User.Role).
		Time("expires_at", stored.ExpiresAt).
		Msg("logged in")
	return nil
}

// Token returns the bearer token, or "" when logged out or expired.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil || s.expired(s.current) {
		return ""
	}
	return s.current.Token
}

// User returns the logged-in user.
func (s *Session) User() (model.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil || s.expired(s.current) {
		return model.User{}, false
	}
	return s.current.User, true
}

// IsLoggedIn reports whether a non-expired token is held.
func (s *Session) IsLoggedIn() bool {
	return s.Token() != ""
}

// RequireUser returns the logged-in user or model.ErrNotLoggedIn.
func (s *Session) RequireUser() (model.User, error) {
	user, ok := s.User()
	if !ok {
		return model.User{}, model.ErrNotLoggedIn
	}
	return user, nil
}

// UpdateUser replaces the cached user after a profile refresh.
func (s *Session) UpdateUser(ctx context.Context, user model.User) error {
	s.mu.Lock()
	if s.current == nil {
		s.mu.Unlock()
		return model.ErrNotLoggedIn
	}
	s.current.User = user
	stored := *s.current
	s.mu.Unlock()

	return s.repo.Save(ctx, &stored)
}

// Invalidate logs out: the in-memory token is dropped and the store cleared.
func (s *Session) Invalidate(ctx context.Context) error {
	s.mu.Lock()
	had := s.current != nil
	s.current = nil
	s.mu.Unlock()

	if had {
		s.logger.Info().Msg("session invalidated")
	}
	return s.repo.Clear(ctx)
}

func (s *Session) expired(stored *model.StoredSession) bool {
	return !stored.ExpiresAt.IsZero() && !s.now().Before(stored.ExpiresAt)
}

// TokenExpiry reads the exp claim of a JWT without verifying its signature;
// only the backend holds the key. Opaque tokens report false.
func TokenExpiry(token string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
