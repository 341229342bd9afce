package service

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"lms-client/internal/model"
	"lms-client/internal/progress"
	"lms-client/internal/repository"

	"github.com/rs/zerolog"
)

// progressService implements ProgressService.
type progressService struct {
	gateway Gateway
	session Session
	watched repository.WatchedLessonRepository
	prompts repository.ReviewPromptRepository
	logger  zerolog.Logger
}

// NewProgressService creates a new progress service.
func NewProgressService(
	gateway Gateway,
	session Session,
	watched repository.WatchedLessonRepository,
	prompts repository.ReviewPromptRepository,
	logger zerolog.Logger,
) ProgressService {
	return &progressService{
		gateway: gateway,
		session: session,
		watched: watched,
		prompts: prompts,
		logger:  logger.With().Str("service", "progress").Logger(),
	}
}

func (s *progressService) Get(ctx context.Context, courseID string) (*model.Progress, error) {
	if _, err := s.session.RequireUser(); err != nil {
		return nil, err
	}
	var p model.Progress
	if err := s.gateway.Get(ctx, "/progress/"+url.PathEscape(courseID), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *progressService) MarkComplete(ctx context.Context, courseID, lessonID string, timeSpent int) (*model.Progress, error) {
	if _, err := s.session.RequireUser(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(courseID) == "" || strings.TrimSpace(lessonID) == "" {
		return nil, model.NewValidationError(model.FieldError{Field: "lessonId", Message: "Course and lesson are required"})
	}
	if timeSpent < 0 {
		timeSpent = 0
	}

	var p model.Progress
	req := model.MarkCompleteRequest{CourseID: courseID, LessonID: lessonID, TimeSpent: timeSpent}
	if err := s.gateway.Post(ctx, "/progress/complete", req, &p); err != nil {
		s.logger.Warn().Err(err).Str("course_id", courseID).Str("lesson_id", lessonID).Msg("failed to mark lesson complete")
		return nil, err
	}

	s.logger.Info().
		Str("course_id", courseID).
		Str("lesson_id", lessonID).
		Float64("completion_percentage", p.CompletionPercentage).
		Msg("lesson completed")

	return &p, nil
}

func (s *progressService) MarkWatched(ctx context.Context, courseID, lessonID string) error {
	user, err := s.session.RequireUser()
	if err != nil {
		return err
	}
	return s.watched.MarkWatched(ctx, user.ID, courseID, lessonID)
}

func (s *progressService) Watched(ctx context.Context, courseID string) ([]string, error) {
	user, err := s.session.RequireUser()
	if err != nil {
		return nil, err
	}
	return s.watched.ListWatched(ctx, user.ID, courseID)
}

func (s *progressService) ShouldPromptReview(ctx context.Context, course *model.Course, p *model.Progress) (bool, error) {
	user, err := s.session.RequireUser()
	if errors.Is(err, model.ErrNotLoggedIn) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if !progress.EligibleForCertificate(course, p) {
		return false, nil
	}
	prompted, err := s.prompts.IsPrompted(ctx, user.ID, course.ID)
	if err != nil {
		return false, err
	}
	return !prompted, nil
}

func (s *progressService) MarkReviewPrompted(ctx context.Context, courseID string) error {
	user, err := s.session.RequireUser()
	if err != nil {
		return err
	}
	return s.prompts.MarkPrompted(ctx, user.ID, courseID)
}
