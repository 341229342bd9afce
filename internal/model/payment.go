package model

// BillingInfo is collected by the checkout form.
type BillingInfo struct {
	FullName   string `json:"fullName" validate:"notblank"`
	Email      string `json:"email" validate:"notblank,email"`
	Phone      string `json:"phone" validate:"notblank,phone"`
	Address    string `json:"address" validate:"notblank"`
	City       string `json:"city" validate:"notblank"`
	State      string `json:"state" validate:"notblank"`
	PostalCode string `json:"postalCode" validate:"notblank,postcode"`
	Country    string `json:"country" validate:"notblank"`
}

// CreateOrderRequest represents the request payload for creating a payment order.
type CreateOrderRequest struct {
	Amount      float64      `json:"amount"`
	CourseID    string       `json:"courseId"`
	PromoCode   *string      `json:"promoCode,omitempty"`
	BillingInfo *BillingInfo `json:"billingInfo,omitempty"`
}

// PaymentOrder is created server-side and consumed by the provider widget.
type PaymentOrder struct {
	OrderID  string  `json:"orderId"`
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
	Key      string  `json:"key"`
}

// ProviderPayment holds the signed identifiers returned by the provider widget.
type ProviderPayment struct {
	OrderID   string `json:"razorpay_order_id"`
	PaymentID string `json:"razorpay_payment_id"`
	Signature string `json:"razorpay_signature"`
}

// VerifyRequest represents the request payload for verifying a payment.
type VerifyRequest struct {
	ProviderPayment
	CourseID string `json:"courseId"`
}

// VerifyResponse is the backend's verdict on a payment.
type VerifyResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// EnrollmentEmailRequest asks the backend to send the enrollment confirmation.
type EnrollmentEmailRequest struct {
	CourseID string `json:"courseId"`
	OrderID  string `json:"orderId,omitempty"`
}
