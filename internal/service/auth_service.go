package service

import (
	"context"
	"fmt"
	"strings"

	"lms-client/internal/model"

	"github.com/rs/zerolog"
)

// authService implements AuthService.
type authService struct {
	gateway Gateway
	session Session
	logger  zerolog.Logger
}

// NewAuthService creates a new auth service.
func NewAuthService(gateway Gateway, session Session, logger zerolog.Logger) AuthService {
	return &authService{
		gateway: gateway,
		session: session,
		logger:  logger.With().Str("service", "auth").Logger(),
	}
}

func (s *authService) Login(ctx context.Context, email, password string) (*model.User, error) {
	email = strings.TrimSpace(email)
	var fields []model.FieldError
	if email == "" {
		fields = append(fields, model.FieldError{Field: "email", Message: "Email is required"})
	}
	if password == "" {
		fields = append(fields, model.FieldError{Field: "password", Message: "Password is required"})
	}
	if len(fields) > 0 {
		return nil, model.NewValidationError(fields...)
	}

	var resp model.LoginResponse
	if err := s.gateway.Post(ctx, "/auth/login", model.LoginRequest{Email: email, Password: password}, &resp); err != nil {
		s.logger.Warn().Err(err).Msg("login failed")
		return nil, err
	}

	if err := s.session.Start(ctx, &resp); err != nil {
		return nil, fmt.Errorf("failed to start session: %w", err)
	}
	return &resp.User, nil
}

func (s *authService) Logout(ctx context.Context) error {
	return s.session.Invalidate(ctx)
}

func (s *authService) Me(ctx context.Context) (*model.User, error) {
	if _, err := s.session.RequireUser(); err != nil {
		return nil, err
	}

	var user model.User
	if err := s.gateway.Get(ctx, "/auth/me", &user); err != nil {
		return nil, err
	}
	if err := s.session.UpdateUser(ctx, user); err != nil {
		s.logger.Warn().Err(err).Msg("failed to cache refreshed profile")
	}
	return &user, nil
}
