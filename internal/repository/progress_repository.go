package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type watchedLessonRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewWatchedLessonRepository creates a new gorm-backed watched-lesson repository.
func NewWatchedLessonRepository(db *gorm.DB) WatchedLessonRepository {
	return &watchedLessonRepository{db: db, now: time.Now}
}

func (r *watchedLessonRepository) MarkWatched(ctx context.Context, userID, courseID, lessonID string) error {
	rec := watchedLessonRecord{
		UserID:    userID,
		CourseID:  courseID,
		LessonID:  lessonID,
		WatchedAt: r.now().UTC(),
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&rec).Error
	if err != nil {
		return fmt.Errorf("failed to mark lesson %s watched: %w", lessonID, err)
	}
	return nil
}

func (r *watchedLessonRepository) ListWatched(ctx context.Context, userID, courseID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&watchedLessonRecord{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Order("watched_at ASC").
		Order("lesson_id ASC").
		Pluck("lesson_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list watched lessons: %w", err)
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

type reviewPromptRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewReviewPromptRepository creates a new gorm-backed review-prompt repository.
func NewReviewPromptRepository(db *gorm.DB) ReviewPromptRepository {
	return &reviewPromptRepository{db: db, now: time.Now}
}

func (r *reviewPromptRepository) IsPrompted(ctx context.Context, userID, courseID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&reviewPromptRecord{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to read review prompt flag: %w", err)
	}
	return count > 0, nil
}

func (r *reviewPromptRepository) MarkPrompted(ctx context.Context, userID, courseID string) error {
	rec := reviewPromptRecord{
		UserID:     userID,
		CourseID:   courseID,
		PromptedAt: r.now().UTC(),
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&rec).Error
	if err != nil {
		return fmt.Errorf("failed to set review prompt flag: %w", err)
	}
	return nil
}
