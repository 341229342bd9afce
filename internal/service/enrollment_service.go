package service

import (
	"context"
	"net/url"

	"lms-client/internal/model"

	"github.com/rs/zerolog"
)

// enrollmentService implements EnrollmentService.
type enrollmentService struct {
	gateway Gateway
	session Session
	logger  zerolog.Logger
}

// NewEnrollmentService creates a new enrollment service.
func NewEnrollmentService(gateway Gateway, session Session, logger zerolog.Logger) EnrollmentService {
	return &enrollmentService{
		gateway: gateway,
		session: session,
		logger:  logger.With().Str("service", "enrollment").Logger(),
	}
}

func (s *enrollmentService) MyEnrollments(ctx context.Context) ([]model.Enrollment, error) {
	if _, err := s.session.RequireUser(); err != nil {
		return nil, err
	}
	var enrollments []model.Enrollment
	if err := s.gateway.Get(ctx, "/enrollments/my", &enrollments); err != nil {
		return nil, err
	}
	return enrollments, nil
}

// IsEnrolled re-fetches the course; the server is the source of truth.
func (s *enrollmentService) IsEnrolled(ctx context.Context, courseID string) (bool, error) {
	var course model.Course
	if err := s.gateway.Get(ctx, "/courses/"+url.PathEscape(courseID), &course); err != nil {
		return false, err
	}
	return course.IsEnrolled, nil
}

func (s *enrollmentService) SendEnrollmentEmail(ctx context.Context, courseID, orderID string) error {
	req := model.EnrollmentEmailRequest{CourseID: courseID, OrderID: orderID}
	if err := s.gateway.Post(ctx, "/email/enrollment", req, nil); err != nil {
		return err
	}
	s.logger.Debug().Str("course_id", courseID).Str("order_id", orderID).Msg("enrollment email requested")
	return nil
}
