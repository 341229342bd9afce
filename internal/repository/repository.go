// Package repository persists the client's local state: the login session,
// the lessons a learner has watched and the courses they were already asked
// to review.
package repository

import (
	"context"

	"lms-client/internal/model"
)

// SessionRepository defines data access for the single stored login.
type SessionRepository interface {
	// Load returns the stored session or model.ErrNotFound.
	Load(ctx context.Context) (*model.StoredSession, error)

	// Save replaces the stored session.
	Save(ctx context.Context, session *model.StoredSession) error

	// Clear removes the stored session. Clearing an empty store is not an error.
	Clear(ctx context.Context) error
}

// WatchedLessonRepository tracks videos the learner played to the end.
type WatchedLessonRepository interface {
	// MarkWatched records a lesson; repeated calls are idempotent.
	MarkWatched(ctx context.Context, userID, courseID, lessonID string) error

	// ListWatched returns the watched lesson IDs of a course in the order they were first watched.
	ListWatched(ctx context.Context, userID, courseID string) ([]string, error)
}

// ReviewPromptRepository remembers which completed courses already showed the review prompt.
type ReviewPromptRepository interface {
	IsPrompted(ctx context.Context, userID, courseID string) (bool, error)
	MarkPrompted(ctx context.Context, userID, courseID string) error
}
