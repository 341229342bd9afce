package checkout

import (
	"strings"

	"lms-client/internal/model"
	"lms-client/internal/validation"
)

var billingValidator = validation.New(validation.Messages{
	"fullName.notblank":   "Full name is required",
	"email.notblank":      "Email is required",
	"email.email":         "Please enter a valid email address",
	"phone.notblank":      "Phone number is required",
	"phone.phone":         "Please enter a valid phone number",
	"address.notblank":    "Address is required",
	"city.notblank":       "City is required",
	"state.notblank":      "State is required",
	"postalCode.notblank": "Postal code is required",
	"postalCode.postcode": "Please enter a valid postal code",
	"country.notblank":    "Country is required",
})

// ValidateBilling checks the checkout form before any request is made. It
// returns nil or a *model.ValidationError with one message per bad field.
func ValidateBilling(info *model.BillingInfo) error {
	if info == nil {
		return model.NewValidationError(model.FieldError{Field: "billingInfo", Message: "Billing information is required"})
	}
	trimBilling(info)
	return billingValidator.Struct(info)
}

func trimBilling(info *model.BillingInfo) {
	for _, field := range []*string{
		&info.FullName, &info.Email, &info.Phone, &info.Address,
		&info.City, &info.State, &info.PostalCode, &info.Country,
	} {
		*field = strings.TrimSpace(*field)
	}
}
