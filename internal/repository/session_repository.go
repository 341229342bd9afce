package repository

import (
	"context"
	"errors"
	"fmt"

	"lms-client/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// currentSessionID is the primary key of the only session row.
const currentSessionID = 1

type sessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository creates a new gorm-backed session repository.
func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Load(ctx context.Context) (*model.StoredSession, error) {
	var rec sessionRecord
	err := r.db.WithContext(ctx).First(&rec, currentSessionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	session := &model.StoredSession{
		Token: rec.Token,
		User: model.User{
			ID:       rec.UserID,
			Name:     rec.UserName,
			Email:    rec.UserEmail,
			Role:     rec.UserRole,
			IsActive: true,
		},
	}
	if rec.ExpiresAt != nil {
		session.ExpiresAt = rec.ExpiresAt.UTC()
	}
	return session, nil
}

func (r *sessionRepository) Save(ctx context.Context, session *model.StoredSession) error {
	rec := sessionRecord{
		ID:        currentSessionID,
		Token:     session.Token,
		UserID:    session.User.ID,
		UserName:  session.User.Name,
		UserEmail: session.User.Email,
		UserRole:  session.User.Role,
	}
	if !session.ExpiresAt.IsZero() {
		expires := session.ExpiresAt.UTC()
		rec.ExpiresAt = &expires
	}

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&rec).Error
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (r *sessionRepository) Clear(ctx context.Context) error {
	if err := r.db.WithContext(ctx).Delete(&sessionRecord{}, currentSessionID).Error; err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
