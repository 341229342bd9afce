// Package checkout drives a paid enrollment from order creation through the
// payment provider widget to server-side verification.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"lms-client/internal/model"
	"lms-client/internal/pricing"
	"lms-client/internal/service"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "lms-client/internal/checkout"

// State is a checkout step.
type State string

const (
	StateIdle             State = "idle"
	StateOrderCreated     State = "order_created"
	StateAwaitingCallback State = "awaiting_provider_callback"
	StateVerifying        State = "verifying"
	StateSuccess          State = "success"
	StateFailed           State = "failed"
)

// Terminal reports whether no further transition happens without a new Run.
func (s State) Terminal() bool {
	return s == StateSuccess || s == StateFailed
}

// Transition records one state change.
type Transition struct {
	From   State     `json:"from"`
	To     State     `json:"to"`
	At     time.Time `json:"at"`
	Reason string    `json:"reason,omitempty"`
}

// ErrDismissed is returned by a Widget when the user closes it without paying.
var ErrDismissed = errors.New("payment widget dismissed")

// ErrInProgress is returned when Run is called while a checkout is running.
var ErrInProgress = errors.New("checkout already in progress")

// Prefill is shown pre-entered in the provider widget.
type Prefill struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"contact"`
}

// WidgetRequest is everything the provider widget needs to take a payment.
type WidgetRequest struct {
	Key         string  `json:"key"`
	OrderID     string  `json:"order_id"`
	Amount      int64   `json:"amount"`
	Currency    string  `json:"currency"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Prefill     Prefill `json:"prefill"`
}

// Widget opens the provider's payment UI and blocks until it either reports
// a signed payment or is dismissed (ErrDismissed).
type Widget interface {
	Open(ctx context.Context, req WidgetRequest) (*model.ProviderPayment, error)
}

// Request starts a checkout for one course.
type Request struct {
	CourseID    string
	CourseTitle string
	Price       float64
	PromoCode   string
	Billing     *model.BillingInfo
	// RequireBilling rejects a nil or invalid Billing before any request.
	RequireBilling bool
	Buyer          *model.User
}

// Result describes a verified payment.
type Result struct {
	OrderID   string        `json:"orderId"`
	PaymentID string        `json:"paymentId"`
	CourseID  string        `json:"courseId"`
	Quote     pricing.Quote `json:"quote"`
	// Enrolled is the refreshed server view; false when the refresh failed.
	Enrolled bool `json:"enrolled"`
	// SuccessRoute is the page the app navigates to after payment.
	SuccessRoute string `json:"successRoute"`
}

// Dependencies wires a Flow.
type Dependencies struct {
	Payments    service.PaymentService
	Enrollments service.EnrollmentService
	Promos      service.PromoService
	Verifier    *Verifier
	Widget      Widget
	// BrandName is shown as the widget title.
	BrandName string
}

// Flow is the checkout state machine. A Flow runs one checkout at a time and
// can be reused once the previous checkout reaches a terminal state or idle.
type Flow struct {
	deps   Dependencies
	now    func() time.Time
	logger zerolog.Logger

	mu          sync.Mutex
	state       State
	running     bool
	transitions []Transition
}

// NewFlow creates a new checkout flow.
func NewFlow(deps Dependencies, logger zerolog.Logger) *Flow {
	if deps.BrandName == "" {
		deps.BrandName = "LMS"
	}
	return &Flow{
		deps:   deps,
		now:    time.Now,
		state:  StateIdle,
		logger: logger.With().Str("component", "checkout").Logger(),
	}
}

// State returns the current state.
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Transitions returns a copy of the transition log.
func (f *Flow) Transitions() []Transition {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Transition, len(f.transitions))
	copy(out, f.transitions)
	return out
}

// Run executes one checkout. It returns model.ErrPaymentDismissed when the
// user closes the widget, a *model.ValidationError for a bad billing form,
// and an error wrapping model.ErrVerificationFailed when the server does not
// confirm the payment.
func (f *Flow) Run(ctx context.Context, req Request) (*Result, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "checkout.Run", trace.WithAttributes(
		attribute.String("lms.course_id", req.CourseID),
		attribute.Bool("lms.promo", strings.TrimSpace(req.PromoCode) != ""),
	))
	defer span.End()

	result, err := f.run(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetAttributes(attribute.String("lms.order_id", result.OrderID))
	}
	span.SetAttributes(attribute.String("lms.checkout_state", string(f.State())))
	return result, err
}

func (f *Flow) run(ctx context.Context, req Request) (*Result, error) {
	if err := f.begin(); err != nil {
		return nil, err
	}
	defer f.end()

	if strings.TrimSpace(req.CourseID) == "" {
		return nil, model.NewValidationError(model.FieldError{Field: "courseId", Message: "Course is required"})
	}
	if req.RequireBilling || req.Billing != nil {
		if err := ValidateBilling(req.Billing); err != nil {
			return nil, err
		}
	}

	quote, err := f.quote(ctx, req)
	if err != nil {
		return nil, err
	}

	orderReq := &model.CreateOrderRequest{
		Amount:      quote.FinalPrice,
		CourseID:    req.CourseID,
		BillingInfo: req.Billing,
	}
	if quote.PromoCode != "" {
		code := quote.PromoCode
		orderReq.PromoCode = &code
	}

	order, err := f.deps.Payments.CreateOrder(ctx, orderReq)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment order: %w", err)
	}
	f.transition(StateOrderCreated, order.OrderID)

	widgetReq := WidgetRequest{
		Key:         order.Key,
		OrderID:     order.OrderID,
		Amount:      pricing.ToMinorUnits(order.Amount),
		Currency:    order.Currency,
		Name:        f.deps.BrandName,
		Description: req.CourseTitle,
		Prefill:     prefill(req),
	}
	f.transition(StateAwaitingCallback, "")

	payment, err := f.deps.Widget.Open(ctx, widgetReq)
	if err != nil {
		if errors.Is(err, ErrDismissed) {
			f.transition(StateIdle, "dismissed")
			f.logger.Info().Str("order_id", order.OrderID).Msg("payment widget dismissed")
			return nil, model.ErrPaymentDismissed
		}
		f.transition(StateFailed, err.Error())
		return nil, fmt.Errorf("payment widget: %w", err)
	}
	if payment.OrderID != order.OrderID {
		err := fmt.Errorf("provider returned order %q, expected %q", payment.OrderID, order.OrderID)
		f.transition(StateFailed, err.Error())
		return nil, &verifyError{cause: err}
	}

	f.transition(StateVerifying, payment.PaymentID)
	if _, err := f.deps.Verifier.Verify(ctx, &model.VerifyRequest{
		ProviderPayment: *payment,
		CourseID:        req.CourseID,
	}); err != nil {
		f.transition(StateFailed, err.Error())
		return nil, err
	}
	f.transition(StateSuccess, "")

	result := &Result{
		OrderID:      order.OrderID,
		PaymentID:    payment.PaymentID,
		CourseID:     req.CourseID,
		Quote:        quote,
		SuccessRoute: SuccessRoute(req.CourseID, order.OrderID),
	}
	f.afterSuccess(ctx, result)

	return result, nil
}

func (f *Flow) begin() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.running {
		return ErrInProgress
	}
	f.running = true
	if f.state.Terminal() {
		f.transitionLocked(StateIdle, "restart")
	}
	return nil
}

func (f *Flow) end() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.running = false
}

func (f *Flow) quote(ctx context.Context, req Request) (pricing.Quote, error) {
	if strings.TrimSpace(req.PromoCode) == "" {
		return pricing.Apply(req.Price, nil), nil
	}
	q, err := f.deps.Promos.Apply(ctx, req.PromoCode, req.CourseID, req.Price)
	if err != nil {
		return pricing.Quote{}, err
	}
	return *q, nil
}

// afterSuccess sends the confirmation email and refreshes enrollment. Both
// are best-effort: the payment is already verified.
func (f *Flow) afterSuccess(ctx context.Context, result *Result) {
	if err := f.deps.Enrollments.SendEnrollmentEmail(ctx, result.CourseID, result.OrderID); err != nil {
		f.logger.Warn().Err(err).Str("order_id", result.OrderID).Msg("failed to send enrollment email")
	}

	enrolled, err := f.deps.Enrollments.IsEnrolled(ctx, result.CourseID)
	if err != nil {
		f.logger.Warn().Err(err).Str("course_id", result.CourseID).Msg("failed to refresh enrollment")
		return
	}
	result.Enrolled = enrolled
}

func (f *Flow) transition(to State, reason string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.transitionLocked(to, reason)
}

func (f *Flow) transitionLocked(to State, reason string) {
	t := Transition{From: f.state, To: to, At: f.now(), Reason: reason}
	f.transitions = append(f.transitions, t)
	f.state = to
	f.logger.Debug().
		Str("from", string(t.From)).
		Str("to", string(t.To)).
		Str("reason", reason).
		Msg("checkout transition")
}

func prefill(req Request) Prefill {
	var p Prefill
	if req.Buyer != nil {
		p.Name = req.Buyer.Name
		p.Email = req.Buyer.Email
	}
	if req.Billing != nil {
		if req.Billing.FullName != "" {
			p.Name = req.Billing.FullName
		}
		if req.Billing.Email != "" {
			p.Email = req.Billing.Email
		}
		p.Phone = req.Billing.Phone
	}
	return p
}

// SuccessRoute is the post-payment page for a course and order.
func SuccessRoute(courseID, orderID string) string {
	q := url.Values{}
	q.Set("courseId", courseID)
	q.Set("orderId", orderID)
	return "/payment-success?" + q.Encode()
}
