package service

import (
	"context"
	"errors"
	"net/url"

	"lms-client/internal/model"
	"lms-client/internal/progress"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// CourseDetail is a course together with the learner's progress through it.
// Progress is nil when the user is anonymous or not enrolled.
type CourseDetail struct {
	Course   *model.Course
	Progress *model.Progress
	Summary  progress.Summary
}

// courseService implements CourseService.
type courseService struct {
	gateway Gateway
	session Session
	logger  zerolog.Logger
}

// NewCourseService creates a new course service.
func NewCourseService(gateway Gateway, session Session, logger zerolog.Logger) CourseService {
	return &courseService{
		gateway: gateway,
		session: session,
		logger:  logger.With().Str("service", "course").Logger(),
	}
}

func (s *courseService) List(ctx context.Context) ([]model.Course, error) {
	var courses []model.Course
	if err := s.gateway.Get(ctx, "/courses", &courses); err != nil {
		return nil, err
	}
	return courses, nil
}

func (s *courseService) Get(ctx context.Context, id string) (*model.Course, error) {
	var course model.Course
	if err := s.gateway.Get(ctx, "/courses/"+url.PathEscape(id), &course); err != nil {
		return nil, err
	}
	return &course, nil
}

func (s *courseService) Detail(ctx context.Context, id string) (*CourseDetail, error) {
	detail := &CourseDetail{}
	_, loggedInErr := s.session.RequireUser()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		course, err := s.Get(gctx, id)
		if err != nil {
			return err
		}
		detail.Course = course
		return nil
	})
	if loggedInErr == nil {
		g.Go(func() error {
			var p model.Progress
			err := s.gateway.Get(gctx, "/progress/"+url.PathEscape(id), &p)
			if errors.Is(err, model.ErrNotFound) {
				return nil
			}
			if err != nil {
				return err
			}
			detail.Progress = &p
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		s.logger.Debug().Err(err).Str("course_id", id).Msg("course detail fetch failed")
		return nil, err
	}

	detail.Summary = progress.Summarize(detail.Course, detail.Progress)
	return detail, nil
}

func (s *courseService) SubmitReview(ctx context.Context, courseID string, review model.Review) error {
	if review.Rating < 1 || review.Rating > 5 {
		return model.NewValidationError(model.FieldError{Field: "rating", Message: "Rating must be between 1 and 5"})
	}
	if err := s.gateway.Post(ctx, "/courses/"+url.PathEscape(courseID)+"/reviews", review, nil); err != nil {
		return err
	}
	s.logger.Info().Str("course_id", courseID).Int("rating", review.Rating).Msg("review submitted")
	return nil
}
