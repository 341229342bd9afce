package model

import "time"

// Discount types supported by coupons and promo codes.
const (
	DiscountPercentage = "percentage"
	DiscountFixed      = "fixed"
)

// Coupon is a discount code managed from the admin panel.
type Coupon struct {
	ID                string    `json:"_id"`
	Code              string    `json:"code"`
	Description       string    `json:"description"`
	DiscountType      string    `json:"discountType"`
	DiscountValue     float64   `json:"discountValue"`
	ValidFrom         time.Time `json:"validFrom"`
	ValidUntil        time.Time `json:"validUntil"`
	UsageLimit        int       `json:"usageLimit"`
	UsedCount         int       `json:"usedCount"`
	PerUserLimit      int       `json:"perUserLimit"`
	MinPurchaseAmount float64   `json:"minPurchaseAmount"`
	IsActive          bool      `json:"isActive"`
	IsGlobal          bool      `json:"isGlobal"`
	ApplicableCourses []string  `json:"applicableCourses,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
}

// CouponDraft is the payload used to create or update a coupon.
type CouponDraft struct {
	Code              string    `json:"code" validate:"notblank"`
	Description       string    `json:"description" validate:"notblank"`
	DiscountType      string    `json:"discountType" validate:"required,oneof=percentage fixed"`
	DiscountValue     float64   `json:"discountValue" validate:"gt=0"`
	ValidFrom         time.Time `json:"validFrom" validate:"required"`
	ValidUntil        time.Time `json:"validUntil" validate:"required,gtfield=ValidFrom"`
	UsageLimit        int       `json:"usageLimit" validate:"gte=0"`
	PerUserLimit      int       `json:"perUserLimit" validate:"gte=0"`
	MinPurchaseAmount float64   `json:"minPurchaseAmount" validate:"gte=0"`
	IsActive          bool      `json:"isActive"`
	IsGlobal          bool      `json:"isGlobal"`
	ApplicableCourses []string  `json:"applicableCourses,omitempty"`
}

// PromoRequest asks the backend to validate a promo code for a course.
type PromoRequest struct {
	Code     string `json:"code"`
	CourseID string `json:"courseId"`
}

// PromoResult is the backend's answer to a successful promo validation.
type PromoResult struct {
	Code         string  `json:"code"`
	Discount     float64 `json:"discount"`
	DiscountType string  `json:"discountType"`
}

// Draft returns the editable fields of c as an update payload.
func (c *Coupon) Draft() CouponDraft {
	return CouponDraft{
		Code:              c.Code,
		Description:       c.Description,
		DiscountType:      c.DiscountType,
		DiscountValue:     c.DiscountValue,
		ValidFrom:         c.ValidFrom,
		ValidUntil:        c.ValidUntil,
		UsageLimit:        c.UsageLimit,
		PerUserLimit:      c.PerUserLimit,
		MinPurchaseAmount: c.MinPurchaseAmount,
		IsActive:          c.IsActive,
		IsGlobal:          c.IsGlobal,
		ApplicableCourses: c.ApplicableCourses,
	}
}
