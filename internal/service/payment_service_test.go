package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"lms-client/internal/certificate"
	"lms-client/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestPaymentService_CreateOrder(t *testing.T) {
	tests := []struct {
		name      string
		response  model.PaymentOrder
		err       error
		expectErr string
	}{
		{"Success", model.PaymentOrder{OrderID: "order_1", Amount: 800, Currency: "INR", Key: "rzp_test"}, nil, ""},
		{"Incomplete response", model.PaymentOrder{Amount: 800}, nil, "missing orderId or key"},
		{"Backend error", model.PaymentOrder{}, errors.New("Course not found"), "Course not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gateway := new(MockGateway)
			gateway.On("Post", mock.Anything, "/payments/create-order", mock.Anything, mock.Anything).
				Run(fill(3, tt.response)).
				Return(tt.err)

			order, err := NewPaymentService(gateway, zerolog.Nop()).CreateOrder(context.Background(), &model.CreateOrderRequest{Amount: 800, CourseID: "c1"})

			if tt.expectErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "order_1", order.OrderID)
		})
	}
}

func TestPaymentService_Verify(t *testing.T) {
	gateway := new(MockGateway)
	req := &model.VerifyRequest{
		ProviderPayment: model.ProviderPayment{OrderID: "order_1", PaymentID: "pay_1", Signature: "sig"},
		CourseID:        "c1",
	}
	gateway.On("Post", mock.Anything, "/payments/verify", req, mock.Anything).
		Run(fill(3, model.VerifyResponse{Success: true})).
		Return(nil)

	resp, err := NewPaymentService(gateway, zerolog.Nop()).Verify(context.Background(), req)

	require.NoError(t, err)
	assert.True(t, resp.Success)
}

func TestEnrollmentService(t *testing.T) {
	gateway := new(MockGateway)
	svc := NewEnrollmentService(gateway, loggedIn("u1"), zerolog.Nop())
	ctx := context.Background()

	gateway.On("Get", mock.Anything, "/enrollments/my", mock.Anything).
		Run(fill(2, []model.Enrollment{{ID: "e1", CourseID: "c1", Progress: 50}})).
		Return(nil)
	gateway.On("Get", mock.Anything, "/courses/c1", mock.Anything).
		Run(fill(2, model.Course{ID: "c1", IsEnrolled: true})).
		Return(nil)
	gateway.On("Post", mock.Anything, "/email/enrollment", model.EnrollmentEmailRequest{CourseID: "c1", OrderID: "order_1"}, nil).
		Return(nil)

	enrollments, err := svc.MyEnrollments(ctx)
	require.NoError(t, err)
	assert.Len(t, enrollments, 1)

	enrolled, err := svc.IsEnrolled(ctx, "c1")
	require.NoError(t, err)
	assert.True(t, enrolled)

	assert.NoError(t, svc.SendEnrollmentEmail(ctx, "c1", "order_1"))
	gateway.AssertExpectations(t)

	_, err = NewEnrollmentService(gateway, &fakeSession{}, zerolog.Nop()).MyEnrollments(ctx)
	assert.ErrorIs(t, err, model.ErrNotLoggedIn)
}

type memorySink struct {
	id   string
	data string
}

func (m *memorySink) Store(ctx context.Context, certificateID string, body io.Reader) (string, error) {
	data, err := io.ReadAll(body)
	m.id, m.data = certificateID, string(data)
	return "mem://" + certificateID, err
}

var _ certificate.Sink = (*memorySink)(nil)

func TestCertificateService_Download(t *testing.T) {
	gateway := new(MockGateway)
	gateway.On("Download", mock.Anything, "/certificates/CERT-1/download").
		Return(io.NopCloser(strings.NewReader("%PDF-1.7")), "application/pdf", nil)
	gateway.On("Download", mock.Anything, "/certificates/missing/download").
		Return(nil, "", model.ErrNotFound)

	svc := NewCertificateService(gateway, loggedIn("u1"), zerolog.Nop())
	sink := &memorySink{}

	location, err := svc.Download(context.Background(), "CERT-1", sink)
	require.NoError(t, err)
	assert.Equal(t, "mem://CERT-1", location)
	assert.Equal(t, "%PDF-1.7", sink.data)

	_, err = svc.Download(context.Background(), "missing", sink)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestCertificateService_List(t *testing.T) {
	gateway := new(MockGateway)
	gateway.On("Get", mock.Anything, "/certificates", mock.Anything).
		Run(fill(2, []model.Certificate{{CertificateID: "CERT-1", CourseName: "Go Basics", Grade: "A"}})).
		Return(nil)

	certs, err := NewCertificateService(gateway, loggedIn("u1"), zerolog.Nop()).List(context.Background())

	require.NoError(t, err)
	require.Len(t, certs, 1)
	assert.Equal(t, "A", certs[0].Grade)
}
