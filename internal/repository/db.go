package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// Store bundles the repositories sharing one connection.
type Store struct {
	Sessions       SessionRepository
	WatchedLessons WatchedLessonRepository
	ReviewPrompts  ReviewPromptRepository
}

// Migrate creates or updates the state tables.
func Migrate(ctx context.Context, db *gorm.DB) error {
	if err := db.WithContext(ctx).AutoMigrate(
		&sessionRecord{},
		&watchedLessonRecord{},
		&reviewPromptRecord{},
	); err != nil {
		return fmt.Errorf("failed to migrate local state: %w", err)
	}
	return nil
}

// NewStore migrates db and returns the repositories backed by it.
func NewStore(ctx context.Context, db *gorm.DB) (*Store, error) {
	if err := Migrate(ctx, db); err != nil {
		return nil, err
	}
	return &Store{
		Sessions:       NewSessionRepository(db),
		WatchedLessons: NewWatchedLessonRepository(db),
		ReviewPrompts:  NewReviewPromptRepository(db),
	}, nil
}
