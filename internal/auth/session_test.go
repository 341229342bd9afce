package auth

import (
	"context"
	"testing"
	"time"

	"lms-client/internal/database"
	"lms-client/internal/model"
	"lms-client/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *repository.Store {
	t.Helper()
	ctx := context.Background()
	db, err := database.Open(ctx, "sqlite://:memory:", nil, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { database.Close(db) })
	store, err := repository.NewStore(ctx, db)
	require.NoError(t, err)
	return store
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	claims := jwt.MapClaims{"sub": "u1"}
	if !exp.IsZero() {
		claims["exp"] = exp.Unix()
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("server-secret"))
	require.NoError(t, err)
	return token
}

func TestTokenExpiry(t *testing.T) {
	exp := time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC)

	got, ok := TokenExpiry(signedToken(t, exp))
	require.True(t, ok)
	assert.True(t, exp.Equal(got))

	_, ok = TokenExpiry(signedToken(t, time.Time{}))
	assert.False(t, ok, "token without exp")

	_, ok = TokenExpiry("opaque-token")
	assert.False(t, ok)
}

func TestSession_StartAndRestore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Date(2026, 10, 17, 10, 0, 0, 0, time.UTC)

	session := NewSession(store.Sessions, zerolog.Nop())
	session.now = func() time.Time { return now }
	assert.False(t, session.IsLoggedIn())

	token := signedToken(t, now.Add(time.Hour))
	require.NoError(t, session.Start(ctx, &model.LoginResponse{
		Token: token,
		User:  model.User{ID: "u1", Name: "Asha", Role: model.RoleAdmin},
	}))
	assert.Equal(t, token, session.Token())

	restored := NewSession(store.Sessions, zerolog.Nop())
	restored.now = func() time.Time { return now }
	require.NoError(t, restored.Restore(ctx))

	user, err := restored.RequireUser()
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
	assert.Equal(t, token, restored.Token())
}

func TestSession_ExpiredTokenIsLoggedOut(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Date(2026, 10, 17, 10, 0, 0, 0, time.UTC)

	session := NewSession(store.Sessions, zerolog.Nop())
	session.now = func() time.Time { return now }
	require.NoError(t, session.Start(ctx, &model.LoginResponse{
		Token: signedToken(t, now.Add(time.Minute)),
		User:  model.User{ID: "u1"},
	}))
	require.True(t, session.IsLoggedIn())

	now = now.Add(2 * time.Minute)
	assert.False(t, session.IsLoggedIn())
	_, err := session.RequireUser()
	assert.ErrorIs(t, err, model.ErrNotLoggedIn)

	restored := NewSession(store.Sessions, zerolog.Nop())
	restored.now = func() time.Time { return now }
	require.NoError(t, restored.Restore(ctx))
	assert.False(t, restored.IsLoggedIn())

	_, err = store.Sessions.Load(ctx)
	assert.ErrorIs(t, err, model.ErrNotFound, "expired session is cleared from the store")
}

func TestSession_Invalidate(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	session := NewSession(store.Sessions, zerolog.Nop())
	require.NoError(t, session.Start(ctx, &model.LoginResponse{Token: "opaque", User: model.User{ID: "u1"}}))
	require.True(t, session.IsLoggedIn())

	require.NoError(t, session.Invalidate(ctx))

	assert.False(t, session.IsLoggedIn())
	_, err := store.Sessions.Load(ctx)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestSession_StartRejectsEmptyToken(t *testing.T) {
	session := NewSession(newTestStore(t).Sessions, zerolog.Nop())

	err := session.Start(context.Background(), &model.LoginResponse{})

	assert.Error(t, err)
	assert.False(t, session.IsLoggedIn())
}

func TestSession_UpdateUser(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	session := NewSession(store.Sessions, zerolog.Nop())

	assert.ErrorIs(t, session.UpdateUser(ctx, model.User{ID: "u1"}), model.ErrNotLoggedIn)

	require.NoError(t, session.Start(ctx, &model.LoginResponse{Token: "opaque", User: model.User{ID: "u1", Name: "Old"}}))
	require.NoError(t, session.UpdateUser(ctx, model.User{ID: "u1", Name: "New"}))

	stored, err := store.Sessions.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "New", stored.User.Name)
}
