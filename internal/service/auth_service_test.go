package service

import (
	"context"
	"errors"
	"testing"

	"lms-client/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestAuthService_Login(t *testing.T) {
	tests := []struct {
		name      string
		email     string
		password  string
		setupMock func(*MockGateway)
		expectErr string
	}{
		{
			name:     "Success",
			email:    " asha@example.com ",
			password: "secret",
			setupMock: func(m *MockGateway) {
				m.On("Post", mock.Anything, "/auth/login", model.LoginRequest{Email: "asha@example.com", Password: "secret"}, mock.Anything).
					Run(fill(3, model.LoginResponse{Token: "tok", User: model.User{ID: "u1", Email: "asha@example.com"}})).
					Return(nil)
			},
		},
		{
			name:      "Missing credentials",
			setupMock: func(m *MockGateway) {},
			expectErr: "Email is required; Password is required",
		},
		{
			name:     "Rejected",
			email:    "asha@example.com",
			password: "wrong",
			setupMock: func(m *MockGateway) {
				m.On("Post", mock.Anything, "/auth/login", mock.Anything, mock.Anything).
					Return(errors.New("Invalid email or password"))
			},
			expectErr: "Invalid email or password",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gateway := new(MockGateway)
			tt.setupMock(gateway)
			session := &fakeSession{}
			svc := NewAuthService(gateway, session, zerolog.Nop())

			user, err := svc.Login(context.Background(), tt.email, tt.password)

			if tt.expectErr != "" {
				require.Error(t, err)
				assert.Equal(t, tt.expectErr, err.Error())
				assert.Nil(t, session.started)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "u1", user.ID)
				require.NotNil(t, session.started)
				assert.Equal(t, "tok", session.started.Token)
			}
			gateway.AssertExpectations(t)
		})
	}
}

func TestAuthService_Me(t *testing.T) {
	gateway := new(MockGateway)
	svc := NewAuthService(gateway, &fakeSession{}, zerolog.Nop())

	_, err := svc.Me(context.Background())
	assert.ErrorIs(t, err, model.ErrNotLoggedIn)

	session := loggedIn("u1")
	gateway.On("Get", mock.Anything, "/auth/me", mock.Anything).
		Run(fill(2, model.User{ID: "u1", Name: "Asha Rao", Role: model.RoleInstructor})).
		Return(nil)
	svc = NewAuthService(gateway, session, zerolog.Nop())

	user, err := svc.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Asha Rao", user.Name)
	assert.Equal(t, model.RoleInstructor, session.user.Role)
}

func TestAuthService_Logout(t *testing.T) {
	session := loggedIn("u1")
	svc := NewAuthService(new(MockGateway), session, zerolog.Nop())

	require.NoError(t, svc.Logout(context.Background()))
	assert.True(t, session.invalidated)
}
