package model

import "strings"

// ErrorResponse represents the error body returned by the LMS backend.
type ErrorResponse struct {
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// Text returns the most specific human-readable message in the body.
func (e ErrorResponse) Text() string {
	if strings.TrimSpace(e.Message) != "" {
		return e.Message
	}
	return e.Error
}

// Standard error codes for client-side failures
const (
	ErrCodeValidation         = "VALIDATION_FAILED"
	ErrCodeInvalidPromoCode   = "INVALID_PROMO_CODE"
	ErrCodeUnauthorised       = "UNAUTHORIZED"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodePaymentDismissed   = "PAYMENT_DISMISSED"
	ErrCodeVerificationFailed = "VERIFICATION_FAILED"
	ErrCodeFileTooLarge       = "FILE_TOO_LARGE"
	ErrCodeFileTypeNotAllowed = "FILE_TYPE_NOT_ALLOWED"
	ErrCodeNotLoggedIn        = "NOT_LOGGED_IN"
)

// Domain errors for business logic
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// Is matches any DomainError carrying the same code, so wrapped copies with a
// different message still compare equal to the sentinel.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrUnauthorised       = NewDomainError(ErrCodeUnauthorised, "Session expired, please log in again")
	ErrNotLoggedIn        = NewDomainError(ErrCodeNotLoggedIn, "You are not logged in")
	ErrInvalidPromoCode   = NewDomainError(ErrCodeInvalidPromoCode, "Invalid promo code")
	ErrNotFound           = NewDomainError(ErrCodeNotFound, "Resource not found")
	ErrPaymentDismissed   = NewDomainError(ErrCodePaymentDismissed, "Payment was cancelled")
	ErrVerificationFailed = NewDomainError(ErrCodeVerificationFailed, "Payment verification failed")
)

// FieldError describes a validation failure on a single field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError is returned when user input is rejected before any request is made.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Message
	}
	return strings.Join(msgs, "; ")
}

// Is reports a match against any ValidationError value.
func (e *ValidationError) Is(target error) bool {
	_, ok := target.(*ValidationError)
	return ok
}

// First returns the first field message, or an empty string.
func (e *ValidationError) First() string {
	if len(e.Fields) == 0 {
		return ""
	}
	return e.Fields[0].Message
}

// NewValidationError builds a ValidationError from field errors.
func NewValidationError(fields ...FieldError) *ValidationError {
	return &ValidationError{Fields: fields}
}
