package model

import "time"

// Progress is the server-computed progress of a learner through a course.
type Progress struct {
	CourseID             string            `json:"courseId"`
	UserID               string            `json:"userId"`
	CompletedLessons     []CompletedLesson `json:"completedLessons"`
	CompletionPercentage float64           `json:"completionPercentage"`
	LastAccessedAt       *time.Time        `json:"lastAccessedAt,omitempty"`
}

// CompletedLesson records when a lesson was finished.
type CompletedLesson struct {
	LessonID    string    `json:"lessonId"`
	CompletedAt time.Time `json:"completedAt"`
}

// MarkCompleteRequest represents the request payload for completing a lesson.
type MarkCompleteRequest struct {
	CourseID  string `json:"courseId"`
	LessonID  string `json:"lessonId"`
	TimeSpent int    `json:"timeSpent"` // seconds
}

// Enrollment links a user to a course they purchased or joined.
type Enrollment struct {
	ID         string    `json:"_id"`
	CourseID   string    `json:"courseId"`
	UserID     string    `json:"userId"`
	Course     *Course   `json:"course,omitempty"`
	Progress   float64   `json:"progress"`
	Status     string    `json:"status"`
	EnrolledAt time.Time `json:"enrolledAt"`
}

// Certificate is an issued course-completion certificate.
type Certificate struct {
	CertificateID string    `json:"certificateId"`
	CourseID      string    `json:"courseId"`
	CourseName    string    `json:"courseName"`
	IssueDate     time.Time `json:"issueDate"`
	Grade         string    `json:"grade"`
	FinalScore    float64   `json:"finalScore"`
}
