package service

import (
	"context"
	"io"

	"lms-client/internal/certificate"
	"lms-client/internal/listing"
	"lms-client/internal/model"
	"lms-client/internal/pricing"
)

// Gateway is the part of the API client the services use.
type Gateway interface {
	Get(ctx context.Context, path string, out any) error
	Post(ctx context.Context, path string, in, out any) error
	Put(ctx context.Context, path string, in, out any) error
	Patch(ctx context.Context, path string, in, out any) error
	Delete(ctx context.Context, path string, out any) error
	Download(ctx context.Context, path string) (io.ReadCloser, string, error)
}

// Session is the login state the services read and update.
type Session interface {
	Start(ctx context.Context, login *model.LoginResponse) error
	Invalidate(ctx context.Context) error
	UpdateUser(ctx context.Context, user model.User) error
	RequireUser() (model.User, error)
}

// AuthService defines login and profile operations.
type AuthService interface {
	// Login exchanges credentials for a token and starts the session.
	Login(ctx context.Context, email, password string) (*model.User, error)

	// Logout clears the session locally.
	Logout(ctx context.Context) error

	// Me refreshes the logged-in user's profile.
	Me(ctx context.Context) (*model.User, error)
}

// CourseService defines catalog operations.
type CourseService interface {
	List(ctx context.Context) ([]model.Course, error)
	Get(ctx context.Context, id string) (*model.Course, error)

	// Detail fetches a course and the learner's progress concurrently.
	Detail(ctx context.Context, id string) (*CourseDetail, error)

	SubmitReview(ctx context.Context, courseID string, review model.Review) error
}

// ProgressService defines learner progress operations.
type ProgressService interface {
	Get(ctx context.Context, courseID string) (*model.Progress, error)

	// MarkComplete records a finished lesson and returns the server's progress verbatim.
	MarkComplete(ctx context.Context, courseID, lessonID string, timeSpent int) (*model.Progress, error)

	// MarkWatched records locally that a lesson's video played to the end.
	MarkWatched(ctx context.Context, courseID, lessonID string) error
	Watched(ctx context.Context, courseID string) ([]string, error)

	// ShouldPromptReview reports a completed course whose review prompt was never shown.
	ShouldPromptReview(ctx context.Context, course *model.Course, p *model.Progress) (bool, error)
	MarkReviewPrompted(ctx context.Context, courseID string) error
}

// PromoService validates promo codes and prices the result.
type PromoService interface {
	Apply(ctx context.Context, code, courseID string, price float64) (*pricing.Quote, error)
}

// PaymentService wraps the single-attempt payment endpoints.
type PaymentService interface {
	CreateOrder(ctx context.Context, req *model.CreateOrderRequest) (*model.PaymentOrder, error)
	Verify(ctx context.Context, req *model.VerifyRequest) (*model.VerifyResponse, error)
}

// EnrollmentService defines enrollment operations.
type EnrollmentService interface {
	MyEnrollments(ctx context.Context) ([]model.Enrollment, error)
	IsEnrolled(ctx context.Context, courseID string) (bool, error)
	SendEnrollmentEmail(ctx context.Context, courseID, orderID string) error
}

// AdminService defines the admin panel operations.
type AdminService interface {
	ListUsers(ctx context.Context, q listing.Query) (listing.Page[model.User], error)
	UpdateUserRole(ctx context.Context, id, role string) (*model.User, error)
	SetUserActive(ctx context.Context, id string, active bool) (*model.User, error)
	DeleteUser(ctx context.Context, id string) error

	ListCoupons(ctx context.Context, q listing.Query) (listing.Page[model.Coupon], error)
	GetCoupon(ctx context.Context, id string) (*model.Coupon, error)
	CreateCoupon(ctx context.Context, draft *model.CouponDraft) (*model.Coupon, error)
	UpdateCoupon(ctx context.Context, id string, draft *model.CouponDraft) (*model.Coupon, error)
	ToggleCoupon(ctx context.Context, id string) (*model.Coupon, error)
	DeleteCoupon(ctx context.Context, id string) error

	ListCourses(ctx context.Context, q listing.Query) (listing.Page[model.Course], error)
	SetCourseActive(ctx context.Context, id string, active bool) error
	DeleteCourse(ctx context.Context, id string) error

	Reports(ctx context.Context) (*model.ReportSummary, error)
}

// CertificateService defines certificate operations.
type CertificateService interface {
	List(ctx context.Context) ([]model.Certificate, error)

	// Download streams a certificate PDF into sink and returns where it was stored.
	Download(ctx context.Context, certificateID string, sink certificate.Sink) (string, error)
}
