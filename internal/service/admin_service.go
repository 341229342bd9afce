package service

import (
	"context"
	"net/url"
	"slices"
	"time"

	"lms-client/internal/coupon"
	"lms-client/internal/listing"
	"lms-client/internal/model"

	"github.com/rs/zerolog"
)

var assignableRoles = []string{model.RoleStudent, model.RoleInstructor, model.RoleAdmin}

// adminService implements AdminService. Lists are fetched whole and
// searched, filtered, sorted and paginated on the client.
type adminService struct {
	gateway   Gateway
	validator coupon.Validator
	now       func() time.Time
	logger    zerolog.Logger
}

// NewAdminService creates a new admin service.
func NewAdminService(gateway Gateway, validator coupon.Validator, logger zerolog.Logger) AdminService {
	return &adminService{
		gateway:   gateway,
		validator: validator,
		now:       time.Now,
		logger:    logger.With().Str("service", "admin").Logger(),
	}
}

func (s *adminService) ListUsers(ctx context.Context, q listing.Query) (listing.Page[model.User], error) {
	var users []model.User
	if err := s.gateway.Get(ctx, "/admin/users", &users); err != nil {
		return listing.Page[model.User]{}, err
	}
	return listing.Apply(users, listing.UserSpec(), q)
}

func (s *adminService) UpdateUserRole(ctx context.Context, id, role string) (*model.User, error) {
	if !slices.Contains(assignableRoles, role) {
		return nil, model.NewValidationError(model.FieldError{
			Field:   "role",
			Message: "Role must be one of student, instructor, admin",
		})
	}
	return s.updateUser(ctx, id, model.UserUpdate{Role: &role})
}

func (s *adminService) SetUserActive(ctx context.Context, id string, active bool) (*model.User, error) {
	return s.updateUser(ctx, id, model.UserUpdate{IsActive: &active})
}

func (s *adminService) updateUser(ctx context.Context, id string, update model.UserUpdate) (*model.User, error) {
	var user model.User
	if err := s.gateway.Put(ctx, "/admin/users/"+url.PathEscape(id), update, &user); err != nil {
		return nil, err
	}
	s.logger.Info().Str("user_id", id).Msg("user updated")
	return &user, nil
}

func (s *adminService) DeleteUser(ctx context.Context, id string) error {
	if err := s.gateway.Delete(ctx, "/admin/users/"+url.PathEscape(id), nil); err != nil {
		return err
	}
	s.logger.Info().Str("user_id", id).Msg("user deleted")
	return nil
}

func (s *adminService) ListCoupons(ctx context.Context, q listing.Query) (listing.Page[model.Coupon], error) {
	var coupons []model.Coupon
	if err := s.gateway.Get(ctx, "/admin/coupons", &coupons); err != nil {
		return listing.Page[model.Coupon]{}, err
	}
	return listing.Apply(coupons, listing.CouponSpec(s.now()), q)
}

func (s *adminService) GetCoupon(ctx context.Context, id string) (*model.Coupon, error) {
	var c model.Coupon
	if err := s.gateway.Get(ctx, "/admin/coupons/"+url.PathEscape(id), &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *adminService) CreateCoupon(ctx context.Context, draft *model.CouponDraft) (*model.Coupon, error) {
	coupon.Normalise(draft)
	if err := s.validator.Validate(draft); err != nil {
		return nil, err
	}

	var created model.Coupon
	if err := s.gateway.Post(ctx, "/admin/coupons", draft, &created); err != nil {
		return nil, err
	}
	s.logger.Info().Str("coupon_id", created.ID).Str("code", created.Code).Msg("coupon created")
	return &created, nil
}

func (s *adminService) UpdateCoupon(ctx context.Context, id string, draft *model.CouponDraft) (*model.Coupon, error) {
	coupon.Normalise(draft)
	if err := s.validator.Validate(draft); err != nil {
		return nil, err
	}

	var updated model.Coupon
	if err := s.gateway.Put(ctx, "/admin/coupons/"+url.PathEscape(id), draft, &updated); err != nil {
		return nil, err
	}
	s.logger.Info().Str("coupon_id", id).Msg("coupon updated")
	return &updated, nil
}

// ToggleCoupon flips a coupon's active flag, leaving every other field as stored.
func (s *adminService) ToggleCoupon(ctx context.Context, id string) (*model.Coupon, error) {
	current, err := s.GetCoupon(ctx, id)
	if err != nil {
		return nil, err
	}

	draft := current.Draft()
	draft.IsActive = !current.IsActive

	var updated model.Coupon
	if err := s.gateway.Put(ctx, "/admin/coupons/"+url.PathEscape(id), &draft, &updated); err != nil {
		return nil, err
	}
	s.logger.Info().Str("coupon_id", id).Bool("is_active", draft.IsActive).Msg("coupon toggled")
	return &updated, nil
}

func (s *adminService) DeleteCoupon(ctx context.Context, id string) error {
	if err := s.gateway.Delete(ctx, "/admin/coupons/"+url.PathEscape(id), nil); err != nil {
		return err
	}
	s.logger.Info().Str("coupon_id", id).Msg("coupon deleted")
	return nil
}

func (s *adminService) ListCourses(ctx context.Context, q listing.Query) (listing.Page[model.Course], error) {
	var courses []model.Course
	if err := s.gateway.Get(ctx, "/admin/courses", &courses); err != nil {
		return listing.Page[model.Course]{}, err
	}
	return listing.Apply(courses, listing.CourseSpec(), q)
}

func (s *adminService) SetCourseActive(ctx context.Context, id string, active bool) error {
	body := struct {
		IsActive bool `json:"isActive"`
	}{IsActive: active}
	if err := s.gateway.Patch(ctx, "/admin/courses/"+url.PathEscape(id)+"/status", body, nil); err != nil {
		return err
	}
	s.logger.Info().Str("course_id", id).Bool("is_active", active).Msg("course status changed")
	return nil
}

func (s *adminService) DeleteCourse(ctx context.Context, id string) error {
	if err := s.gateway.Delete(ctx, "/admin/courses/"+url.PathEscape(id), nil); err != nil {
		return err
	}
	s.logger.Info().Str("course_id", id).Msg("course deleted")
	return nil
}

func (s *adminService) Reports(ctx context.Context) (*model.ReportSummary, error) {
	var summary model.ReportSummary
	if err := s.gateway.Get(ctx, "/admin/reports", &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}
