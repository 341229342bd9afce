package checkout

import (
	"context"

	"lms-client/internal/model"
	"lms-client/internal/pricing"

	"github.com/stretchr/testify/mock"
)

// MockPaymentService is a mock implementation of service.PaymentService.
type MockPaymentService struct {
	mock.Mock
}

func (m *MockPaymentService) CreateOrder(ctx context.Context, req *model.CreateOrderRequest) (*model.PaymentOrder, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PaymentOrder), args.Error(1)
}

func (m *MockPaymentService) Verify(ctx context.Context, req *model.VerifyRequest) (*model.VerifyResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.VerifyResponse), args.Error(1)
}

// MockEnrollmentService is a mock implementation of service.EnrollmentService.
type MockEnrollmentService struct {
	mock.Mock
}

func (m *MockEnrollmentService) MyEnrollments(ctx context.Context) ([]model.Enrollment, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Enrollment), args.Error(1)
}

func (m *MockEnrollmentService) IsEnrolled(ctx context.Context, courseID string) (bool, error) {
	args := m.Called(ctx, courseID)
	return args.Bool(0), args.Error(1)
}

func (m *MockEnrollmentService) SendEnrollmentEmail(ctx context.Context, courseID, orderID string) error {
	args := m.Called(ctx, courseID, orderID)
	return args.Error(0)
}

// MockPromoService is a mock implementation of service.PromoService.
type MockPromoService struct {
	mock.Mock
}

func (m *MockPromoService) Apply(ctx context.Context, code, courseID string, price float64) (*pricing.Quote, error) {
	args := m.Called(ctx, code, courseID, price)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pricing.Quote), args.Error(1)
}

// fakeWidget records the request and answers with a canned outcome.
type fakeWidget struct {
	got     *WidgetRequest
	payment *model.ProviderPayment
	err     error
}

func (w *fakeWidget) Open(ctx context.Context, req WidgetRequest) (*model.ProviderPayment, error) {
	w.got = &req
	if w.err != nil {
		return nil, w.err
	}
	return w.payment, nil
}
