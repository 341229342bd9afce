package service

import (
	"context"
	"errors"
	"strings"

	"lms-client/internal/apiclient"
	"lms-client/internal/model"
	"lms-client/internal/pricing"

	"github.com/rs/zerolog"
)

// promoService implements PromoService.
type promoService struct {
	gateway Gateway
	logger  zerolog.Logger
}

// NewPromoService creates a new promo service.
func NewPromoService(gateway Gateway, logger zerolog.Logger) PromoService {
	return &promoService{
		gateway: gateway,
		logger:  logger.With().Str("service", "promo").Logger(),
	}
}

// Apply asks the backend to validate code for a course and prices the
// course with the returned discount. A rejected code is a DomainError
// carrying the backend's message.
func (s *promoService) Apply(ctx context.Context, code, courseID string, price float64) (*pricing.Quote, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, model.NewValidationError(model.FieldError{Field: "promoCode", Message: "Please enter a promo code"})
	}

	var result model.PromoResult
	err := s.gateway.Post(ctx, "/promo/validate", model.PromoRequest{Code: code, CourseID: courseID}, &result)
	if err != nil {
		var apiErr *apiclient.APIError
		if errors.As(err, &apiErr) && apiErr.IsClientError() && !errors.Is(err, model.ErrUnauthorised) {
			s.logger.Debug().Str("promo_code", code).Str("reason", apiErr.Message).Msg("promo code rejected")
			return nil, model.NewDomainError(model.ErrCodeInvalidPromoCode, apiErr.Message)
		}
		return nil, err
	}
	if result.Code == "" {
		result.Code = code
	}

	quote := pricing.Apply(price, &result)
	s.logger.Debug().
		Str("promo_code", code).
		Float64("price", price).
		Float64("final_price", quote.FinalPrice).
		Msg("promo code applied")

	return &quote, nil
}
