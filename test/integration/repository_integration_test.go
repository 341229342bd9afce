package integration

import (
	"context"
	"sync"
	"testing"
	"time"

	"lms-client/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateStore_Postgres_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := SetupTestDB(t)
	store := testDB.Store
	ctx := context.Background()

	t.Run("session round trip", func(t *testing.T) {
		CleanupDB(t, testDB.DB)

		expires := time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC)
		require.NoError(t, store.Sessions.Save(ctx, &model.StoredSession{
			Token:     "pg-token",
			User:      model.User{ID: "u1", Email: "asha@example.com", Role: model.RoleAdmin},
			ExpiresAt: expires,
		}))

		loaded, err := store.Sessions.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, "pg-token", loaded.Token)
		assert.Equal(t, model.RoleAdmin, loaded.User.Role)
		assert.True(t, expires.Equal(loaded.ExpiresAt))

		require.NoError(t, store.Sessions.Clear(ctx))
		_, err = store.Sessions.Load(ctx)
		assert.ErrorIs(t, err, model.ErrNotFound)
	})

	t.Run("concurrent watched marks stay unique", func(t *testing.T) {
		CleanupDB(t, testDB.DB)

		var wg sync.WaitGroup
		errs := make(chan error, 20)
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				lesson := "l1"
				if i%2 == 1 {
					lesson = "l2"
				}
				errs <- store.WatchedLessons.MarkWatched(ctx, "u1", "c1", lesson)
			}(i)
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			require.NoError(t, err)
		}

		watched, err := store.WatchedLessons.ListWatched(ctx, "u1", "c1")
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"l1", "l2"}, watched)
	})

	t.Run("review prompt is remembered per course", func(t *testing.T) {
		CleanupDB(t, testDB.DB)

		prompted, err := store.ReviewPrompts.IsPrompted(ctx, "u1", "c1")
		require.NoError(t, err)
		assert.False(t, prompted)

		require.NoError(t, store.ReviewPrompts.MarkPrompted(ctx, "u1", "c1"))
		require.NoError(t, store.ReviewPrompts.MarkPrompted(ctx, "u1", "c1"))

		prompted, err = store.ReviewPrompts.IsPrompted(ctx, "u1", "c1")
		require.NoError(t, err)
		assert.True(t, prompted)

		prompted, err = store.ReviewPrompts.IsPrompted(ctx, "u1", "c2")
		require.NoError(t, err)
		assert.False(t, prompted)
	})
}
