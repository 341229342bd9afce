package coupon

import (
	"strings"

	"lms-client/internal/model"
	"lms-client/internal/validation"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

const maxPercentageTag = "max_percentage"

var draftMessages = validation.Messages{
	"code.notblank":                "Coupon code is required",
	"description.notblank":         "Description is required",
	"discountType.required":        "Discount type is required",
	"discountType.oneof":           "Discount type must be percentage or fixed",
	"discountValue.gt":             "Discount value must be greater than 0",
	"discountValue.max_percentage": "Percentage discount cannot exceed 100",
	"validFrom.required":           "Valid from date is required",
	"validUntil.required":          "Valid until date is required",
	"validUntil.gtfield":           "Valid until date must be after valid from date",
	"usageLimit.gte":               "Usage limit cannot be negative",
	"perUserLimit.gte":             "Per-user limit cannot be negative",
	"minPurchaseAmount.gte":        "Minimum purchase amount cannot be negative",
}

// draftValidator implements Validator on top of go-playground/validator.
type draftValidator struct {
	v      *validation.Validator
	logger zerolog.Logger
}

// NewValidator creates a new coupon draft validator.
func NewValidator(logger zerolog.Logger) Validator {
	v := validation.New(draftMessages)
	v.RegisterStructValidation(draftStructValidation, model.CouponDraft{})

	return &draftValidator{
		v:      v,
		logger: logger.With().Str("component", "coupon-validator").Logger(),
	}
}

// Validate checks a draft. Field rules come from the struct tags; the
// percentage ceiling depends on the discount type and runs at struct level.
func (d *draftValidator) Validate(draft *model.CouponDraft) error {
	if err := d.v.Struct(draft); err != nil {
		d.logger.Debug().
			Str("code", draft.Code).
			Err(err).
			Msg("coupon draft rejected")
		return err
	}
	return nil
}

func draftStructValidation(sl validator.StructLevel) {
	draft, ok := sl.Current().Interface().(model.CouponDraft)
	if !ok {
		return
	}
	if draft.DiscountType == model.DiscountPercentage && draft.DiscountValue > 100 {
		sl.ReportError(draft.DiscountValue, "discountValue", "DiscountValue", maxPercentageTag, "100")
	}
}

// Normalise trims free-text fields and upper-cases the code, matching how
// the backend stores codes.
func Normalise(draft *model.CouponDraft) {
	draft.Code = strings.ToUpper(strings.TrimSpace(draft.Code))
	draft.Description = strings.TrimSpace(draft.Description)
	draft.DiscountType = strings.ToLower(strings.TrimSpace(draft.DiscountType))
}
