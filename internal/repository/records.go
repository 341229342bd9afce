package repository

import "time"

// sessionRecord is the single-row login table.
type sessionRecord struct {
	ID        uint   `gorm:"primaryKey"`
	Token     string `gorm:"not null"`
	UserID    string `gorm:"not null"`
	UserName  string
	UserEmail string
	UserRole  string
	ExpiresAt *time.Time
	UpdatedAt time.Time
}

func (sessionRecord) TableName() string { return "sessions" }

type watchedLessonRecord struct {
	UserID    string    `gorm:"primaryKey;size:64"`
	CourseID  string    `gorm:"primaryKey;size:64"`
	LessonID  string    `gorm:"primaryKey;size:64"`
	WatchedAt time.Time `gorm:"not null"`
}

func (watchedLessonRecord) TableName() string { return "watched_lessons" }

type reviewPromptRecord struct {
	UserID     string    `gorm:"primaryKey;size:64"`
	CourseID   string    `gorm:"primaryKey;size:64"`
	PromptedAt time.Time `gorm:"not null"`
}

func (reviewPromptRecord) TableName() string { return "review_prompts" }
