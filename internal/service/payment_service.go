package service

import (
	"context"
	"fmt"

	"lms-client/internal/model"

	"github.com/rs/zerolog"
)

// paymentService implements PaymentService. Each call is a single attempt;
// retry policy belongs to the checkout verifier.
type paymentService struct {
	gateway Gateway
	logger  zerolog.Logger
}

// NewPaymentService creates a new payment service.
func NewPaymentService(gateway Gateway, logger zerolog.Logger) PaymentService {
	return &paymentService{
		gateway: gateway,
		logger:  logger.With().Str("service", "payment").Logger(),
	}
}

func (s *paymentService) CreateOrder(ctx context.Context, req *model.CreateOrderRequest) (*model.PaymentOrder, error) {
	var order model.PaymentOrder
	if err := s.gateway.Post(ctx, "/payments/create-order", req, &order); err != nil {
		s.logger.Error().Err(err).Str("course_id", req.CourseID).Msg("failed to create payment order")
		return nil, err
	}
	if order.OrderID == "" || order.Key == "" {
		return nil, fmt.Errorf("payment order response is missing orderId or key")
	}

	s.logger.Info().
		Str("course_id", req.CourseID).
		Str("order_id", order.OrderID).
		Float64("amount", order.Amount).
		Str("currency", order.Currency).
		Msg("payment order created")

	return &order, nil
}

func (s *paymentService) Verify(ctx context.Context, req *model.VerifyRequest) (*model.VerifyResponse, error) {
	var resp model.VerifyResponse
	if err := s.gateway.Post(ctx, "/payments/verify", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
