package repository

import (
	"context"
	"testing"
	"time"

	"lms-client/internal/database"
	"lms-client/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()

	db, err := database.Open(ctx, "sqlite://:memory:", nil, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { database.Close(db) })

	store, err := NewStore(ctx, db)
	require.NoError(t, err)
	return store
}

func TestSessionRepository(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	_, err := store.Sessions.Load(ctx)
	assert.ErrorIs(t, err, model.ErrNotFound)

	expires := time.Date(2026, 11, 1, 12, 0, 0, 0, time.UTC)
	session := &model.StoredSession{
		Token:     "token-1",
		User:      model.User{ID: "u1", Name: "Asha", Email: "asha@example.com", Role: model.RoleStudent},
		ExpiresAt: expires,
	}
	require.NoError(t, store.Sessions.Save(ctx, session))

	loaded, err := store.Sessions.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "token-1", loaded.Token)
	assert.Equal(t, "u1", loaded.User.ID)
	assert.Equal(t, "asha@example.com", loaded.User.Email)
	assert.Equal(t, model.RoleStudent, loaded.User.Role)
	assert.True(t, expires.Equal(loaded.ExpiresAt))

	// Saving again replaces the row rather than adding one.
	session.Token = "token-2"
	session.ExpiresAt = time.Time{}
	require.NoError(t, store.Sessions.Save(ctx, session))

	loaded, err = store.Sessions.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "token-2", loaded.Token)
	assert.True(t, loaded.ExpiresAt.IsZero())

	require.NoError(t, store.Sessions.Clear(ctx))
	_, err = store.Sessions.Load(ctx)
	assert.ErrorIs(t, err, model.ErrNotFound)

	assert.NoError(t, store.Sessions.Clear(ctx), "clearing an empty store")
}

func TestWatchedLessonRepository(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	watched, err := store.WatchedLessons.ListWatched(ctx, "u1", "c1")
	require.NoError(t, err)
	assert.Empty(t, watched)

	require.NoError(t, store.WatchedLessons.MarkWatched(ctx, "u1", "c1", "l1"))
	require.NoError(t, store.WatchedLessons.MarkWatched(ctx, "u1", "c1", "l2"))
	require.NoError(t, store.WatchedLessons.MarkWatched(ctx, "u1", "c1", "l1"))
	require.NoError(t, store.WatchedLessons.MarkWatched(ctx, "u1", "c2", "l9"))
	require.NoError(t, store.WatchedLessons.MarkWatched(ctx, "u2", "c1", "l3"))

	watched, err = store.WatchedLessons.ListWatched(ctx, "u1", "c1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"l1", "l2"}, watched)
}

func TestReviewPromptRepository(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	prompted, err := store.ReviewPrompts.IsPrompted(ctx, "u1", "c1")
	require.NoError(t, err)
	assert.False(t, prompted)

	require.NoError(t, store.ReviewPrompts.MarkPrompted(ctx, "u1", "c1"))
	require.NoError(t, store.ReviewPrompts.MarkPrompted(ctx, "u1", "c1"))

	prompted, err = store.ReviewPrompts.IsPrompted(ctx, "u1", "c1")
	require.NoError(t, err)
	assert.True(t, prompted)

	prompted, err = store.ReviewPrompts.IsPrompted(ctx, "u2", "c1")
	require.NoError(t, err)
	assert.False(t, prompted)
}
