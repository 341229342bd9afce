package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"lms-client/internal/apiclient"
	"lms-client/internal/model"
	"lms-client/internal/service"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
)

// VerifyPolicy bounds payment verification.
type VerifyPolicy struct {
	// MaxRetries is the number of retries after the first attempt.
	MaxRetries int
	// Backoff is the linear step: retry n waits Backoff*n.
	Backoff time.Duration
	// Timeout bounds the whole verification including waits.
	Timeout time.Duration
}

// DefaultVerifyPolicy returns 2 retries, 1s linear backoff and a 30s ceiling.
func DefaultVerifyPolicy() VerifyPolicy {
	return VerifyPolicy{
		MaxRetries: 2,
		Backoff:    1 * time.Second,
		Timeout:    30 * time.Second,
	}
}

// Verifier is the one verification path shared by every checkout entry point.
type Verifier struct {
	payments service.PaymentService
	policy   VerifyPolicy
	logger   zerolog.Logger
}

// NewVerifier creates a new verifier.
func NewVerifier(payments service.PaymentService, policy VerifyPolicy, logger zerolog.Logger) *Verifier {
	return &Verifier{
		payments: payments,
		policy:   policy,
		logger:   logger.With().Str("component", "payment-verifier").Logger(),
	}
}

// Verify asks the backend to confirm a payment. Transport failures and 5xx
// responses are retried; 4xx responses and an explicit rejection are final.
// Every failure wraps model.ErrVerificationFailed.
func (v *Verifier) Verify(ctx context.Context, req *model.VerifyRequest) (*model.VerifyResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, v.policy.Timeout)
	defer cancel()

	attempt := 0
	operation := func() (*model.VerifyResponse, error) {
		attempt++
		resp, err := v.payments.Verify(ctx, req)
		if err != nil {
			if apiclient.IsClientError(err) {
				return nil, backoff.Permanent(err)
			}
			return nil, err
		}
		if !resp.Success {
			msg := resp.Message
			if msg == "" {
				msg = model.ErrVerificationFailed.Message
			}
			return nil, backoff.Permanent(model.NewDomainError(model.ErrCodeVerificationFailed, msg))
		}
		return resp, nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(newLinearBackOff(v.policy.Backoff), uint64(max(v.policy.MaxRetries, 0))),
		ctx,
	)
	notify := func(err error, wait time.Duration) {
		v.logger.Warn().
			Err(err).
			Int("attempt", attempt).
			Dur("retry_in", wait).
			Str("order_id", req.OrderID).
			Msg("payment verification failed, retrying")
	}

	resp, err := backoff.RetryNotifyWithData(operation, policy, notify)
	if err != nil {
		v.logger.Error().
			Err(err).
			Int("attempts", attempt).
			Str("order_id", req.OrderID).
			Msg("payment verification failed")
		if errors.Is(err, model.ErrVerificationFailed) {
			return nil, err
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, model.NewDomainError(model.ErrCodeVerificationFailed,
				fmt.Sprintf("Payment verification timed out after %s", v.policy.Timeout))
		}
		return nil, &verifyError{cause: err}
	}

	v.logger.Info().
		Int("attempts", attempt).
		Str("order_id", req.OrderID).
		Str("payment_id", req.PaymentID).
		Msg("payment verified")

	return resp, nil
}

// verifyError keeps the underlying failure inspectable while matching
// model.ErrVerificationFailed.
type verifyError struct {
	cause error
}

func (e *verifyError) Error() string {
	return model.ErrVerificationFailed.Message + ": " + e.cause.Error()
}

func (e *verifyError) Unwrap() []error {
	return []error{model.ErrVerificationFailed, e.cause}
}

// linearBackOff waits step, 2*step, 3*step...
type linearBackOff struct {
	step    time.Duration
	attempt int
}

func newLinearBackOff(step time.Duration) *linearBackOff {
	return &linearBackOff{step: step}
}

func (b *linearBackOff) NextBackOff() time.Duration {
	b.attempt++
	return b.step * time.Duration(b.attempt)
}

func (b *linearBackOff) Reset() {
	b.attempt = 0
}
